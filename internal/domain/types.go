// Package domain contains the core business entities and types for the
// physiotherapy clinical recommendation engine: patient profiles, treatment
// recommendations and the closed vocabularies that drive the rule tables.
package domain

import "errors"

// Severity classifies the clinical severity of a condition. It selects which
// knowledge-base row is used for exercises, media, duration and success rate.
type Severity string

const (
	MILD     Severity = "mild"
	MODERATE Severity = "moderate"
	SEVERE   Severity = "severe"
)

// Gender of the patient as collected by the intake form.
type Gender string

const (
	MALE   Gender = "male"
	FEMALE Gender = "female"
	OTHER  Gender = "other"
)

// Lifestyle describes the patient's baseline activity level.
type Lifestyle string

const (
	SEDENTARY   Lifestyle = "sedentary"
	ACTIVE      Lifestyle = "active"
	VERY_ACTIVE Lifestyle = "very_active"
)

// MobilityLevel describes the patient's current range of movement.
type MobilityLevel string

const (
	MOBILITY_LOW    MobilityLevel = "low"
	MOBILITY_MEDIUM MobilityLevel = "medium"
	MOBILITY_HIGH   MobilityLevel = "high"
)

// Phase is a named stage of a treatment plan with its own exercise subset
// and intensity.
type Phase string

const (
	INITIAL      Phase = "initial"
	INTERMEDIATE Phase = "intermediate"
	ADVANCED     Phase = "advanced"
	MAINTENANCE  Phase = "maintenance"
)

// OutcomeMetric identifies the clinical dimension an expected outcome
// refers to.
//
// STRENGTH_GAIN is a valid tag that the current rule set never emits; it is
// kept so stored recommendations that may carry it remain representable.
type OutcomeMetric string

const (
	PAIN_REDUCTION       OutcomeMetric = "pain_reduction"
	MOBILITY_IMPROVEMENT OutcomeMetric = "mobility_improvement"
	FUNCTION_IMPROVEMENT OutcomeMetric = "function_improvement"
	STRENGTH_GAIN        OutcomeMetric = "strength_gain"
)

// RiskLevel grades an identified risk factor.
type RiskLevel string

const (
	RISK_LOW    RiskLevel = "low"
	RISK_MEDIUM RiskLevel = "medium"
	RISK_HIGH   RiskLevel = "high"
)

// Validation errors for clinical data integrity.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidSeverity  = errors.New("invalid severity")
	ErrInvalidGender    = errors.New("invalid gender")
	ErrInvalidLifestyle = errors.New("invalid lifestyle")
	ErrInvalidMobility  = errors.New("invalid mobility level")
	ErrInvalidPhase     = errors.New("invalid treatment phase")
	ErrInvalidMetric    = errors.New("invalid outcome metric")
	ErrInvalidRiskLevel = errors.New("invalid risk level")
)

// IsValid reports whether the severity is one of the recognized tiers.
// Only valid severities may enter the recommendation pipeline.
func (s Severity) IsValid() bool {
	switch s {
	case MILD, MODERATE, SEVERE:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// Describe returns the Portuguese clinical label used in generated
// reasoning text and patient-facing reports.
func (s Severity) Describe() string {
	switch s {
	case MILD:
		return "leve"
	case MODERATE:
		return "moderada"
	case SEVERE:
		return "grave"
	default:
		return "indeterminada"
	}
}

// IsValid validates the gender value.
func (g Gender) IsValid() bool {
	switch g {
	case MALE, FEMALE, OTHER:
		return true
	default:
		return false
	}
}

// IsValid validates the lifestyle value.
func (l Lifestyle) IsValid() bool {
	switch l {
	case SEDENTARY, ACTIVE, VERY_ACTIVE:
		return true
	default:
		return false
	}
}

// IsValid validates the mobility level.
func (m MobilityLevel) IsValid() bool {
	switch m {
	case MOBILITY_LOW, MOBILITY_MEDIUM, MOBILITY_HIGH:
		return true
	default:
		return false
	}
}

// IsValid validates the treatment phase.
func (p Phase) IsValid() bool {
	switch p {
	case INITIAL, INTERMEDIATE, ADVANCED, MAINTENANCE:
		return true
	default:
		return false
	}
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// IsValid validates the outcome metric.
func (m OutcomeMetric) IsValid() bool {
	switch m {
	case PAIN_REDUCTION, MOBILITY_IMPROVEMENT, FUNCTION_IMPROVEMENT, STRENGTH_GAIN:
		return true
	default:
		return false
	}
}

// IsValid validates the risk level.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RISK_LOW, RISK_MEDIUM, RISK_HIGH:
		return true
	default:
		return false
	}
}
