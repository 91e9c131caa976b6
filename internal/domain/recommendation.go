package domain

import (
	"time"

	"github.com/google/uuid"
)

// TreatmentRecommendation is the immutable output of the recommendation
// engine: a phased physiotherapy treatment plan with expected outcomes,
// risk assessment and a heuristic confidence score.
//
// Re-running the engine with the same PatientProfile must produce an
// identical recommendation; determinism is a core invariant of the engine.
type TreatmentRecommendation struct {
	ExerciseIDs      []string          `json:"exercise_ids"`
	VideoIDs         []string          `json:"video_ids"`
	Frequency        int               `json:"frequency"` // sessions per week, 1-7
	Duration         int               `json:"duration"`  // total weeks, >= 1
	ProgressionPlan  []ProgressionStep `json:"progression_plan"`
	ExpectedOutcomes []ExpectedOutcome `json:"expected_outcomes"`
	RiskFactors      []RiskFactor      `json:"risk_factors"`
	ConfidenceScore  int               `json:"confidence_score"` // 50-95
	Reasoning        string            `json:"reasoning"`
}

// ProgressionStep describes one phase of the plan: when it starts, which
// subset of the plan's exercises it uses and at what intensity.
type ProgressionStep struct {
	Week          int      `json:"week"` // start week of the phase, >= 1
	Phase         Phase    `json:"phase"`
	Exercises     []string `json:"exercises"`
	Intensity     int      `json:"intensity"` // 1-10
	Modifications []string `json:"modifications"`
}

// ExpectedOutcome is a projected clinical result with its timeframe and the
// engine's confidence in the projection.
type ExpectedOutcome struct {
	Metric              OutcomeMetric `json:"metric"`
	ExpectedImprovement int           `json:"expected_improvement"` // percent, 0-90 clamped
	Timeframe           int           `json:"timeframe"`            // weeks, >= 1
	Confidence          int           `json:"confidence"`           // 0-95 clamped
}

// RiskFactor is an identified treatment risk with advisory mitigations.
type RiskFactor struct {
	Factor     string    `json:"factor"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Mitigation []string  `json:"mitigation"`
}

// ProgressReport carries measured treatment progress used by the
// re-scoring path. Percentages are 0-100.
type ProgressReport struct {
	PainReduction       int `json:"pain_reduction"`
	MobilityImprovement int `json:"mobility_improvement"`
	Adherence           int `json:"adherence"`
	WeeksCompleted      int `json:"weeks_completed"`
}

// Validate ensures the progress report is structurally valid.
func (r *ProgressReport) Validate() error {
	if r.PainReduction < 0 || r.PainReduction > 100 {
		return &ValidationError{Field: "pain_reduction", Message: "must be between 0 and 100", Value: r.PainReduction}
	}
	if r.MobilityImprovement < 0 || r.MobilityImprovement > 100 {
		return &ValidationError{Field: "mobility_improvement", Message: "must be between 0 and 100", Value: r.MobilityImprovement}
	}
	if r.Adherence < 0 || r.Adherence > 100 {
		return &ValidationError{Field: "adherence", Message: "must be between 0 and 100", Value: r.Adherence}
	}
	if r.WeeksCompleted < 0 {
		return &ValidationError{Field: "weeks_completed", Message: "must not be negative", Value: r.WeeksCompleted}
	}
	return nil
}

// Clone returns a deep copy of the recommendation. The re-scoring path
// operates on a copy so that stored recommendations are never mutated.
func (t *TreatmentRecommendation) Clone() *TreatmentRecommendation {
	out := &TreatmentRecommendation{
		ExerciseIDs:     append([]string(nil), t.ExerciseIDs...),
		VideoIDs:        append([]string(nil), t.VideoIDs...),
		Frequency:       t.Frequency,
		Duration:        t.Duration,
		ConfidenceScore: t.ConfidenceScore,
		Reasoning:       t.Reasoning,
	}

	out.ProgressionPlan = make([]ProgressionStep, len(t.ProgressionPlan))
	for i, step := range t.ProgressionPlan {
		out.ProgressionPlan[i] = ProgressionStep{
			Week:          step.Week,
			Phase:         step.Phase,
			Exercises:     append([]string(nil), step.Exercises...),
			Intensity:     step.Intensity,
			Modifications: append([]string(nil), step.Modifications...),
		}
	}

	out.ExpectedOutcomes = append([]ExpectedOutcome(nil), t.ExpectedOutcomes...)

	out.RiskFactors = make([]RiskFactor, len(t.RiskFactors))
	for i, rf := range t.RiskFactors {
		out.RiskFactors[i] = RiskFactor{
			Factor:     rf.Factor,
			RiskLevel:  rf.RiskLevel,
			Mitigation: append([]string(nil), rf.Mitigation...),
		}
	}

	return out
}

// RecommendationRecord is the persisted form of a generated recommendation:
// the profile it was generated from and the recommendation itself, stored
// verbatim and keyed by a server-assigned id.
type RecommendationRecord struct {
	ID             uuid.UUID               `json:"id"`
	Profile        PatientProfile          `json:"profile"`
	Recommendation TreatmentRecommendation `json:"recommendation"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}
