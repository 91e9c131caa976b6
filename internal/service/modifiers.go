package service

import (
	"math"
	"strings"

	"github.com/fisioflow/recommendation-engine/internal/domain"
)

// Patient attribute modifiers. Age and lifestyle each feed two distinct
// quantities with different arithmetic: a multiplicative factor on treatment
// duration and an additive delta on estimated success rate. The two code
// paths are intentionally kept separate; they are not mathematically
// equivalent and must not be unified.

// comorbidityFactors is the fixed table of duration multipliers per
// recognized comorbidity. Strings outside the table contribute no effect.
var comorbidityFactors = map[string]float64{
	"diabetes":     0.9,
	"hypertension": 0.95,
	"arthritis":    0.85,
	"fibromyalgia": 0.7,
}

// ageDurationModifier scales treatment duration by recovery speed:
// younger patients recover faster, older ones slower.
func ageDurationModifier(age int) float64 {
	switch {
	case age < 30:
		return 1.1
	case age >= 60:
		return 0.8
	default:
		return 1.0
	}
}

// ageSuccessAdjustment is the additive success-rate delta for age.
func ageSuccessAdjustment(age int) int {
	switch {
	case age < 30:
		return 10
	case age > 65:
		return -15
	default:
		return 0
	}
}

// lifestyleDurationModifier scales treatment duration by activity level.
func lifestyleDurationModifier(lifestyle domain.Lifestyle) float64 {
	switch lifestyle {
	case domain.SEDENTARY:
		return 0.8
	case domain.VERY_ACTIVE:
		return 1.2
	default:
		return 1.0
	}
}

// lifestyleSuccessAdjustment is the additive success-rate delta for
// lifestyle.
func lifestyleSuccessAdjustment(lifestyle domain.Lifestyle) int {
	switch lifestyle {
	case domain.VERY_ACTIVE:
		return 5
	case domain.SEDENTARY:
		return -10
	default:
		return 0
	}
}

// comorbidityModifier multiplies the factors of every recognized
// comorbidity on the profile. An empty list yields 1.0.
func comorbidityModifier(comorbidities []string) float64 {
	factor := 1.0
	for _, c := range comorbidities {
		if f, ok := comorbidityFactors[strings.ToLower(strings.TrimSpace(c))]; ok {
			factor *= f
		}
	}
	return factor
}

// combinedDurationModifier is the product of the three duration modifiers.
func combinedDurationModifier(profile *domain.PatientProfile) float64 {
	return ageDurationModifier(profile.Age) *
		lifestyleDurationModifier(profile.Lifestyle) *
		comorbidityModifier(profile.Comorbidities)
}

// adjustedDuration divides the baseline duration by the combined modifier
// and rounds to whole weeks. The plan can both shrink (young, active,
// comorbidity-free) and grow (older patient with diabetes).
func adjustedDuration(baseDuration int, profile *domain.PatientProfile) int {
	duration := int(math.Round(float64(baseDuration) / combinedDurationModifier(profile)))
	if duration < 1 {
		duration = 1
	}
	return duration
}
