package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() *PatientProfile {
	return &PatientProfile{
		Age:           45,
		Gender:        FEMALE,
		Condition:     "lombalgia",
		Severity:      MODERATE,
		PainLevel:     6,
		MobilityLevel: MOBILITY_MEDIUM,
		Lifestyle:     ACTIVE,
	}
}

func TestProfileValidate(t *testing.T) {
	assert.NoError(t, validProfile().Validate())
}

func TestProfileValidateRejections(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*PatientProfile)
		wantField string
	}{
		{"Zero age", func(p *PatientProfile) { p.Age = 0 }, "age"},
		{"Negative age", func(p *PatientProfile) { p.Age = -3 }, "age"},
		{"Invalid gender", func(p *PatientProfile) { p.Gender = "unknown" }, "gender"},
		{"Blank condition", func(p *PatientProfile) { p.Condition = "   " }, "condition"},
		{"Invalid severity", func(p *PatientProfile) { p.Severity = "critical" }, "severity"},
		{"Pain below range", func(p *PatientProfile) { p.PainLevel = -1 }, "pain_level"},
		{"Pain above range", func(p *PatientProfile) { p.PainLevel = 11 }, "pain_level"},
		{"Invalid mobility", func(p *PatientProfile) { p.MobilityLevel = "none" }, "mobility_level"},
		{"Invalid lifestyle", func(p *PatientProfile) { p.Lifestyle = "athlete" }, "lifestyle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := validProfile()
			tt.mutate(profile)

			err := profile.Validate()
			require.Error(t, err)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestProfileValidateAllowsEmptyOptionalLists(t *testing.T) {
	profile := validProfile()
	profile.PreviousTreatments = nil
	profile.Comorbidities = nil
	profile.Goals = nil
	assert.NoError(t, profile.Validate())
}

func TestNormalizedCondition(t *testing.T) {
	profile := validProfile()
	profile.Condition = "  LomBALgia "
	assert.Equal(t, "lombalgia", profile.NormalizedCondition())
}

func TestHasComorbidity(t *testing.T) {
	profile := validProfile()
	profile.Comorbidities = []string{" Diabetes ", "hipertensao"}

	assert.True(t, profile.HasComorbidity("diabetes"))
	assert.True(t, profile.HasComorbidity("HIPERTENSAO"))
	assert.False(t, profile.HasComorbidity("asma"))
}

func TestProgressReportValidate(t *testing.T) {
	valid := &ProgressReport{PainReduction: 40, MobilityImprovement: 30, Adherence: 85, WeeksCompleted: 3}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name      string
		report    ProgressReport
		wantField string
	}{
		{"Pain over 100", ProgressReport{PainReduction: 120}, "pain_reduction"},
		{"Negative mobility", ProgressReport{MobilityImprovement: -5}, "mobility_improvement"},
		{"Adherence over 100", ProgressReport{Adherence: 101}, "adherence"},
		{"Negative weeks", ProgressReport{WeeksCompleted: -1}, "weeks_completed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.report.Validate()
			require.Error(t, err)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestRecommendationClone(t *testing.T) {
	original := &TreatmentRecommendation{
		ExerciseIDs: []string{"a", "b"},
		VideoIDs:    []string{"v1"},
		Frequency:   3,
		Duration:    8,
		ProgressionPlan: []ProgressionStep{
			{Week: 1, Phase: INITIAL, Exercises: []string{"a"}, Intensity: 3, Modifications: []string{"m1"}},
		},
		ExpectedOutcomes: []ExpectedOutcome{
			{Metric: PAIN_REDUCTION, ExpectedImprovement: 75, Timeframe: 5, Confidence: 80},
		},
		RiskFactors: []RiskFactor{
			{Factor: "Dor intensa", RiskLevel: RISK_HIGH, Mitigation: []string{"monitorar"}},
		},
		ConfidenceScore: 95,
		Reasoning:       "plano",
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	// Mutating the clone must not reach the original.
	clone.ExerciseIDs[0] = "mutated"
	clone.ProgressionPlan[0].Exercises[0] = "mutated"
	clone.RiskFactors[0].Mitigation[0] = "mutated"

	assert.Equal(t, "a", original.ExerciseIDs[0])
	assert.Equal(t, "a", original.ProgressionPlan[0].Exercises[0])
	assert.Equal(t, "monitorar", original.RiskFactors[0].Mitigation[0])
}
