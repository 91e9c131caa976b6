package domain

import (
	"fmt"
	"strings"
)

// PatientProfile is the immutable clinical input to the recommendation
// engine. It is constructed at the API boundary from intake form data and
// must pass Validate before entering the pipeline; everything downstream
// treats it as a read-only value.
type PatientProfile struct {
	Age                int           `json:"age" validate:"min=1"`
	Gender             Gender        `json:"gender" validate:"required"`
	Condition          string        `json:"condition" validate:"required"`
	Severity           Severity      `json:"severity" validate:"required"`
	PainLevel          int           `json:"pain_level" validate:"min=0,max=10"`
	MobilityLevel      MobilityLevel `json:"mobility_level" validate:"required"`
	PreviousTreatments []string      `json:"previous_treatments,omitempty"`
	Comorbidities      []string      `json:"comorbidities,omitempty"`
	Lifestyle          Lifestyle     `json:"lifestyle" validate:"required"`
	Goals              []string      `json:"goals,omitempty"`
}

// Validate ensures the profile is structurally valid before it reaches the
// recommendation pipeline. Unknown condition strings and empty optional
// lists are NOT errors; those degrade to documented defaults downstream.
func (p *PatientProfile) Validate() error {
	if p.Age <= 0 {
		return &ValidationError{Field: "age", Message: "must be a positive integer", Value: p.Age}
	}

	if !p.Gender.IsValid() {
		return &ValidationError{Field: "gender", Message: fmt.Sprintf("%v", ErrInvalidGender), Value: string(p.Gender)}
	}

	if strings.TrimSpace(p.Condition) == "" {
		return &ValidationError{Field: "condition", Message: "is required", Value: p.Condition}
	}

	if !p.Severity.IsValid() {
		return &ValidationError{Field: "severity", Message: fmt.Sprintf("%v", ErrInvalidSeverity), Value: string(p.Severity)}
	}

	if p.PainLevel < 0 || p.PainLevel > 10 {
		return &ValidationError{Field: "pain_level", Message: "must be between 0 and 10", Value: p.PainLevel}
	}

	if !p.MobilityLevel.IsValid() {
		return &ValidationError{Field: "mobility_level", Message: fmt.Sprintf("%v", ErrInvalidMobility), Value: string(p.MobilityLevel)}
	}

	if !p.Lifestyle.IsValid() {
		return &ValidationError{Field: "lifestyle", Message: fmt.Sprintf("%v", ErrInvalidLifestyle), Value: string(p.Lifestyle)}
	}

	return nil
}

// NormalizedCondition returns the condition key used for knowledge-base
// lookup: trimmed and lower-cased. Matching is case-insensitive exact.
func (p *PatientProfile) NormalizedCondition() string {
	return strings.ToLower(strings.TrimSpace(p.Condition))
}

// HasComorbidity reports whether the given comorbidity is present in the
// profile, matched case-insensitively.
func (p *PatientProfile) HasComorbidity(name string) bool {
	for _, c := range p.Comorbidities {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return true
		}
	}
	return false
}
