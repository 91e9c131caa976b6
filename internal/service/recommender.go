// Package service implements the clinical recommendation engine: a
// deterministic, rule-driven pipeline that converts a patient profile into
// a phased physiotherapy treatment plan.
//
// Every stage is a pure transformation over its input; the service only
// adds structured logging around the pipeline. Invoking the engine
// concurrently is safe without locking.
package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fisioflow/recommendation-engine/internal/domain"
	"github.com/fisioflow/recommendation-engine/internal/knowledge"
)

const (
	minConfidence = 50
	maxConfidence = 95
)

// RecommendationService generates and re-scores treatment recommendations
// against the static knowledge base.
type RecommendationService struct {
	logger *logrus.Logger
	kb     *knowledge.Base
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(logger *logrus.Logger, kb *knowledge.Base) *RecommendationService {
	return &RecommendationService{
		logger: logger,
		kb:     kb,
	}
}

// GenerateRecommendation runs the full pipeline: knowledge-base lookup,
// modifier arithmetic, frequency/duration planning, progression planning,
// outcome and risk assessment, and composition of the final plan.
//
// Unknown conditions, empty comorbidity lists and boundary pain values are
// valid inputs that degrade to documented defaults; the only rejection is
// a structurally invalid profile.
func (s *RecommendationService) GenerateRecommendation(profile *domain.PatientProfile) (*domain.TreatmentRecommendation, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid patient profile: %w", err)
	}

	condition := profile.NormalizedCondition()
	entry := s.kb.Lookup(condition, profile.Severity)

	duration := adjustedDuration(entry.BaseDuration, profile)
	frequency := planFrequency(profile)

	recommendation := &domain.TreatmentRecommendation{
		ExerciseIDs:      entry.ExerciseIDs,
		VideoIDs:         entry.VideoIDs,
		Frequency:        frequency,
		Duration:         duration,
		ProgressionPlan:  buildProgressionPlan(entry.ExerciseIDs, duration, profile),
		ExpectedOutcomes: buildExpectedOutcomes(entry, profile),
		RiskFactors:      buildRiskFactors(profile),
		ConfidenceScore:  s.confidenceScore(profile, entry.Known),
		Reasoning:        s.buildReasoning(profile, condition, duration, frequency),
	}

	s.logger.WithFields(logrus.Fields{
		"condition":    condition,
		"known":        entry.Known,
		"severity":     profile.Severity.String(),
		"duration":     duration,
		"frequency":    frequency,
		"phases":       len(recommendation.ProgressionPlan),
		"risk_factors": len(recommendation.RiskFactors),
		"confidence":   recommendation.ConfidenceScore,
	}).Info("Treatment recommendation generated")

	return recommendation, nil
}

// UpdateRecommendationBasedOnProgress re-scores an existing recommendation
// against measured progress. The rules are order-sensitive and conservative:
// fast pain relief shortens the plan, stalled pain relief extends it, and
// low adherence reduces session frequency. The input is never mutated.
func (s *RecommendationService) UpdateRecommendationBasedOnProgress(current *domain.TreatmentRecommendation, progress *domain.ProgressReport) (*domain.TreatmentRecommendation, error) {
	if current == nil {
		return nil, fmt.Errorf("current recommendation is required")
	}
	if err := progress.Validate(); err != nil {
		return nil, fmt.Errorf("invalid progress report: %w", err)
	}

	updated := current.Clone()

	if progress.PainReduction > 50 && progress.WeeksCompleted < 4 {
		updated.Duration -= 2
		if updated.Duration < 4 {
			updated.Duration = 4
		}
	}

	if progress.PainReduction < 20 && progress.WeeksCompleted > 4 {
		updated.Duration += 2
	}

	if progress.Adherence < 60 {
		updated.Frequency--
		if updated.Frequency < 2 {
			updated.Frequency = 2
		}
	}

	s.logger.WithFields(logrus.Fields{
		"pain_reduction":  progress.PainReduction,
		"adherence":       progress.Adherence,
		"weeks_completed": progress.WeeksCompleted,
		"duration_before": current.Duration,
		"duration_after":  updated.Duration,
		"frequency_after": updated.Frequency,
	}).Info("Recommendation re-scored from progress")

	return updated, nil
}

// confidenceScore is the heuristic 50-95 score expressing how much the
// engine trusts its own recommendation given input completeness and
// case complexity.
func (s *RecommendationService) confidenceScore(profile *domain.PatientProfile, knownCondition bool) int {
	score := 80

	// Core clinical fields all present and in range.
	if profile.NormalizedCondition() != "" && profile.Severity.IsValid() &&
		profile.PainLevel >= 0 && profile.PainLevel <= 10 {
		score += 10
	}

	if knownCondition {
		score += 10
	}

	if len(profile.Comorbidities) > 2 {
		score -= 15
	}

	if profile.Age > 75 || profile.Age < 18 {
		score -= 10
	}

	if score < minConfidence {
		score = minConfidence
	}
	if score > maxConfidence {
		score = maxConfidence
	}

	return score
}

// buildReasoning composes the natural-language rationale: the core plan
// statement, conditional clauses in a fixed order, and the evidence
// disclaimer. Clauses whose trigger is false are omitted entirely.
func (s *RecommendationService) buildReasoning(profile *domain.PatientProfile, condition string, duration, frequency int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plano de tratamento para %s de intensidade %s: %d semanas com %d sessões semanais.",
		condition, profile.Severity.Describe(), duration, frequency)

	if profile.Age > 65 {
		b.WriteString(" A idade do paciente recomenda uma progressão mais cautelosa entre as fases.")
	}

	if profile.PainLevel > 6 {
		b.WriteString(" O nível de dor elevado prioriza técnicas de analgesia nas fases iniciais.")
	}

	if profile.Lifestyle == domain.SEDENTARY {
		b.WriteString(" O estilo de vida sedentário requer ênfase em educação e adesão ao programa.")
	}

	b.WriteString(" Recomendações baseadas em diretrizes clínicas e evidências atuais.")

	return b.String()
}
