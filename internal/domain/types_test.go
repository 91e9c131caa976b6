package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityIsValid(t *testing.T) {
	assert.True(t, MILD.IsValid())
	assert.True(t, MODERATE.IsValid())
	assert.True(t, SEVERE.IsValid())
	assert.False(t, Severity("critical").IsValid())
	assert.False(t, Severity("").IsValid())
}

func TestSeverityDescribe(t *testing.T) {
	assert.Equal(t, "leve", MILD.Describe())
	assert.Equal(t, "moderada", MODERATE.Describe())
	assert.Equal(t, "grave", SEVERE.Describe())
	assert.Equal(t, "indeterminada", Severity("bogus").Describe())
}

func TestGenderIsValid(t *testing.T) {
	assert.True(t, MALE.IsValid())
	assert.True(t, FEMALE.IsValid())
	assert.True(t, OTHER.IsValid())
	assert.False(t, Gender("unknown").IsValid())
}

func TestLifestyleIsValid(t *testing.T) {
	assert.True(t, SEDENTARY.IsValid())
	assert.True(t, ACTIVE.IsValid())
	assert.True(t, VERY_ACTIVE.IsValid())
	assert.False(t, Lifestyle("athlete").IsValid())
}

func TestMobilityLevelIsValid(t *testing.T) {
	assert.True(t, MOBILITY_LOW.IsValid())
	assert.True(t, MOBILITY_MEDIUM.IsValid())
	assert.True(t, MOBILITY_HIGH.IsValid())
	assert.False(t, MobilityLevel("none").IsValid())
}

func TestPhaseIsValid(t *testing.T) {
	for _, phase := range []Phase{INITIAL, INTERMEDIATE, ADVANCED, MAINTENANCE} {
		assert.True(t, phase.IsValid())
	}
	assert.False(t, Phase("final").IsValid())
}

func TestOutcomeMetricIsValid(t *testing.T) {
	for _, metric := range []OutcomeMetric{PAIN_REDUCTION, MOBILITY_IMPROVEMENT, FUNCTION_IMPROVEMENT, STRENGTH_GAIN} {
		assert.True(t, metric.IsValid())
	}
	assert.False(t, OutcomeMetric("endurance").IsValid())
}

func TestRiskLevelIsValid(t *testing.T) {
	assert.True(t, RISK_LOW.IsValid())
	assert.True(t, RISK_MEDIUM.IsValid())
	assert.True(t, RISK_HIGH.IsValid())
	assert.False(t, RiskLevel("extreme").IsValid())
}
