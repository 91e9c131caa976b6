package service

import "github.com/fisioflow/recommendation-engine/internal/domain"

// Session frequency planning. Two sequential adjustment passes run over the
// severity baseline, and the floor/ceiling clamp is applied after every
// single step; clamping only once at the end changes behavior at the
// boundaries.

const (
	minFrequency = 2
	maxFrequency = 5
)

// baseFrequency returns the weekly session baseline for a severity tier.
func baseFrequency(severity domain.Severity) int {
	switch severity {
	case domain.MILD:
		return 2
	case domain.MODERATE:
		return 3
	case domain.SEVERE:
		return 4
	default:
		return 2
	}
}

// planFrequency derives sessions/week from severity, pain level, lifestyle
// and age.
func planFrequency(profile *domain.PatientProfile) int {
	frequency := baseFrequency(profile.Severity)

	// Pass 1: pain level.
	if profile.PainLevel > 7 {
		frequency--
		if frequency < minFrequency {
			frequency = minFrequency
		}
	} else if profile.PainLevel < 3 {
		frequency++
		if frequency > maxFrequency {
			frequency = maxFrequency
		}
	}

	// Pass 2: lifestyle, then age.
	if profile.Lifestyle == domain.SEDENTARY {
		frequency--
		if frequency < minFrequency {
			frequency = minFrequency
		}
	} else if profile.Lifestyle == domain.VERY_ACTIVE {
		frequency++
		if frequency > maxFrequency {
			frequency = maxFrequency
		}
	}

	if profile.Age > 65 {
		frequency--
		if frequency < minFrequency {
			frequency = minFrequency
		}
	}

	return frequency
}
