package service

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fisioflow/recommendation-engine/internal/domain"
	"github.com/fisioflow/recommendation-engine/internal/knowledge"
)

func newTestService() *RecommendationService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRecommendationService(logger, knowledge.NewBase())
}

func validProfile() *domain.PatientProfile {
	return &domain.PatientProfile{
		Age:           45,
		Gender:        domain.FEMALE,
		Condition:     "lombalgia",
		Severity:      domain.MODERATE,
		PainLevel:     6,
		MobilityLevel: domain.MOBILITY_MEDIUM,
		Lifestyle:     domain.ACTIVE,
	}
}

func TestGenerateRecommendationModerateLombalgia(t *testing.T) {
	service := newTestService()

	rec, err := service.GenerateRecommendation(validProfile())
	require.NoError(t, err)

	// 45yo active, no comorbidities: every duration modifier is 1.0, so
	// the 8 week baseline stands; frequency stays at the moderate base.
	assert.Equal(t, 8, rec.Duration)
	assert.Equal(t, 3, rec.Frequency)
	assert.NotEmpty(t, rec.ExerciseIDs)
	assert.NotEmpty(t, rec.VideoIDs)
	assert.Len(t, rec.ExpectedOutcomes, 3)
	assert.Empty(t, rec.RiskFactors)
	assert.Equal(t, 95, rec.ConfidenceScore) // 80+10+10 clamped to 95
	assert.Contains(t, rec.Reasoning, "lombalgia")
	assert.Contains(t, rec.Reasoning, "8 semanas")
	assert.Contains(t, rec.Reasoning, "3 sessões semanais")
}

func TestGenerateRecommendationSevereElderlyKnee(t *testing.T) {
	service := newTestService()

	profile := &domain.PatientProfile{
		Age:           70,
		Gender:        domain.MALE,
		Condition:     "joelho",
		Severity:      domain.SEVERE,
		PainLevel:     8,
		MobilityLevel: domain.MOBILITY_LOW,
		Lifestyle:     domain.SEDENTARY,
	}

	rec, err := service.GenerateRecommendation(profile)
	require.NoError(t, err)

	// Base 20 weeks; 0.8 age x 0.8 lifestyle = 0.64 -> round(20/0.64) = 31.
	assert.Equal(t, 31, rec.Duration)
	// Base 4, pain>7 -> 3, sedentary -> 2, age>65 clamps at floor 2.
	assert.Equal(t, 2, rec.Frequency)

	// Long plan: four phases with maintenance near the end.
	require.Len(t, rec.ProgressionPlan, 4)
	assert.Equal(t, domain.MAINTENANCE, rec.ProgressionPlan[3].Phase)
	assert.Equal(t, 29, rec.ProgressionPlan[3].Week)

	// Elderly + high pain + sedentary: three risk factors.
	require.Len(t, rec.RiskFactors, 3)
	assert.Equal(t, "Idade avançada", rec.RiskFactors[0].Factor)
	assert.Equal(t, "Dor intensa", rec.RiskFactors[1].Factor)
	assert.Equal(t, "Sedentarismo", rec.RiskFactors[2].Factor)

	assert.Contains(t, rec.Reasoning, "progressão mais cautelosa")
	assert.Contains(t, rec.Reasoning, "analgesia")
	assert.Contains(t, rec.Reasoning, "sedentário")
}

func TestGenerateRecommendationUnknownConditionFallback(t *testing.T) {
	service := newTestService()

	profile := validProfile()
	profile.Condition = "xyz_unmapped"

	rec, err := service.GenerateRecommendation(profile)
	require.NoError(t, err)

	assert.Equal(t, []string{"avaliacao_geral", "exercicios_basicos", "alongamento_geral"}, rec.ExerciseIDs)
	assert.Equal(t, []string{"introducao_fisioterapia", "exercicios_gerais"}, rec.VideoIDs)
	// Generic 6 week baseline with neutral modifiers.
	assert.Equal(t, 6, rec.Duration)
	// Frequency comes purely from severity/pain/lifestyle/age rules.
	assert.Equal(t, 3, rec.Frequency)
	// 80+10 (complete fields), no known-condition bonus.
	assert.Equal(t, 90, rec.ConfidenceScore)
}

func TestGenerateRecommendationConditionMatchIsCaseInsensitive(t *testing.T) {
	service := newTestService()

	profile := validProfile()
	profile.Condition = "  Lombalgia "

	rec, err := service.GenerateRecommendation(profile)
	require.NoError(t, err)
	assert.Equal(t, 8, rec.Duration)
	assert.Equal(t, 95, rec.ConfidenceScore)
}

func TestGenerateRecommendationIsDeterministic(t *testing.T) {
	service := newTestService()
	profile := &domain.PatientProfile{
		Age:           70,
		Gender:        domain.FEMALE,
		Condition:     "ombro",
		Severity:      domain.SEVERE,
		PainLevel:     8,
		MobilityLevel: domain.MOBILITY_LOW,
		Lifestyle:     domain.SEDENTARY,
		Comorbidities: []string{"diabetes", "arthritis"},
		Goals:         []string{"voltar a dirigir"},
	}

	first, err := service.GenerateRecommendation(profile)
	require.NoError(t, err)
	second, err := service.GenerateRecommendation(profile)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateRecommendationConfidencePenalties(t *testing.T) {
	service := newTestService()

	tests := []struct {
		name   string
		mutate func(*domain.PatientProfile)
		want   int
	}{
		{
			name:   "Known condition with complete fields",
			mutate: func(p *domain.PatientProfile) {},
			want:   95,
		},
		{
			name: "More than two comorbidities",
			mutate: func(p *domain.PatientProfile) {
				p.Comorbidities = []string{"diabetes", "hypertension", "arthritis"}
			},
			want: 85, // 80+10+10-15
		},
		{
			name: "Very elderly patient",
			mutate: func(p *domain.PatientProfile) {
				p.Age = 80
			},
			want: 90, // 80+10+10-10
		},
		{
			name: "Unknown condition with penalties",
			mutate: func(p *domain.PatientProfile) {
				p.Condition = "desconhecida"
				p.Age = 80
				p.Comorbidities = []string{"diabetes", "hypertension", "arthritis"}
			},
			want: 65, // 80+10-15-10
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := validProfile()
			tt.mutate(profile)

			rec, err := service.GenerateRecommendation(profile)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.ConfidenceScore)
			assert.GreaterOrEqual(t, rec.ConfidenceScore, minConfidence)
			assert.LessOrEqual(t, rec.ConfidenceScore, maxConfidence)
		})
	}
}

func TestGenerateRecommendationRejectsInvalidProfile(t *testing.T) {
	service := newTestService()

	tests := []struct {
		name   string
		mutate func(*domain.PatientProfile)
		field  string
	}{
		{"Negative age", func(p *domain.PatientProfile) { p.Age = -1 }, "age"},
		{"Out of range pain", func(p *domain.PatientProfile) { p.PainLevel = 11 }, "pain_level"},
		{"Bad severity", func(p *domain.PatientProfile) { p.Severity = "critical" }, "severity"},
		{"Empty condition", func(p *domain.PatientProfile) { p.Condition = "  " }, "condition"},
		{"Bad lifestyle", func(p *domain.PatientProfile) { p.Lifestyle = "couch" }, "lifestyle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := validProfile()
			tt.mutate(profile)

			rec, err := service.GenerateRecommendation(profile)
			require.Error(t, err)
			assert.Nil(t, rec)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestGenerateRecommendationReasoningOmitsUntriggeredClauses(t *testing.T) {
	service := newTestService()

	rec, err := service.GenerateRecommendation(validProfile())
	require.NoError(t, err)

	assert.NotContains(t, rec.Reasoning, "progressão mais cautelosa")
	assert.NotContains(t, rec.Reasoning, "analgesia")
	assert.NotContains(t, rec.Reasoning, "sedentário")
	assert.Contains(t, rec.Reasoning, "diretrizes clínicas")
}

func TestUpdateRecommendationBasedOnProgress(t *testing.T) {
	service := newTestService()

	base, err := service.GenerateRecommendation(validProfile())
	require.NoError(t, err)

	tests := []struct {
		name          string
		progress      domain.ProgressReport
		wantDuration  int
		wantFrequency int
	}{
		{
			name:          "Neutral progress changes nothing",
			progress:      domain.ProgressReport{PainReduction: 30, MobilityImprovement: 30, Adherence: 80, WeeksCompleted: 5},
			wantDuration:  base.Duration,
			wantFrequency: base.Frequency,
		},
		{
			name:          "Fast pain relief shortens the plan",
			progress:      domain.ProgressReport{PainReduction: 60, Adherence: 80, WeeksCompleted: 3},
			wantDuration:  base.Duration - 2,
			wantFrequency: base.Frequency,
		},
		{
			name:          "Stalled pain relief extends the plan",
			progress:      domain.ProgressReport{PainReduction: 10, Adherence: 80, WeeksCompleted: 5},
			wantDuration:  base.Duration + 2,
			wantFrequency: base.Frequency,
		},
		{
			name:          "Low adherence reduces frequency",
			progress:      domain.ProgressReport{PainReduction: 30, Adherence: 50, WeeksCompleted: 5},
			wantDuration:  base.Duration,
			wantFrequency: base.Frequency - 1,
		},
		{
			name:          "Stalled relief and low adherence stack",
			progress:      domain.ProgressReport{PainReduction: 10, Adherence: 50, WeeksCompleted: 5},
			wantDuration:  base.Duration + 2,
			wantFrequency: base.Frequency - 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := service.UpdateRecommendationBasedOnProgress(base, &tt.progress)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDuration, updated.Duration)
			assert.Equal(t, tt.wantFrequency, updated.Frequency)
		})
	}
}

func TestUpdateRecommendationFloors(t *testing.T) {
	service := newTestService()

	current := &domain.TreatmentRecommendation{Duration: 5, Frequency: 2}

	// Duration floors at 4 even when the shortening rule fires.
	updated, err := service.UpdateRecommendationBasedOnProgress(current, &domain.ProgressReport{
		PainReduction: 80, Adherence: 90, WeeksCompleted: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Duration)

	// Frequency floors at 2 even with poor adherence.
	updated, err = service.UpdateRecommendationBasedOnProgress(current, &domain.ProgressReport{
		PainReduction: 30, Adherence: 40, WeeksCompleted: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Frequency)
}

func TestUpdateRecommendationNeverMutatesInput(t *testing.T) {
	service := newTestService()

	base, err := service.GenerateRecommendation(validProfile())
	require.NoError(t, err)
	snapshot := base.Clone()

	_, err = service.UpdateRecommendationBasedOnProgress(base, &domain.ProgressReport{
		PainReduction: 80, Adherence: 40, WeeksCompleted: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, snapshot, base)
}

func TestUpdateRecommendationRejectsInvalidProgress(t *testing.T) {
	service := newTestService()

	current := &domain.TreatmentRecommendation{Duration: 8, Frequency: 3}

	_, err := service.UpdateRecommendationBasedOnProgress(current, &domain.ProgressReport{PainReduction: 120})
	require.Error(t, err)

	_, err = service.UpdateRecommendationBasedOnProgress(nil, &domain.ProgressReport{})
	require.Error(t, err)
}
