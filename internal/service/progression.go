package service

import (
	"math"

	"github.com/fisioflow/recommendation-engine/internal/domain"
)

// Progression planning: partitions the total duration into clinical phases,
// assigns each phase a deterministic prefix of the exercise list, an
// intensity and advisory modifications.

// phaseFractions determines how much of the exercise list each phase uses.
// Selection is a plain prefix of the list, not a clinical re-ranking.
var phaseFractions = map[domain.Phase]float64{
	domain.INITIAL:      0.6,
	domain.INTERMEDIATE: 0.8,
	domain.ADVANCED:     1.0,
	domain.MAINTENANCE:  0.7,
}

// phaseBaseIntensity is the 1-10 intensity baseline per phase.
var phaseBaseIntensity = map[domain.Phase]int{
	domain.INITIAL:      3,
	domain.INTERMEDIATE: 5,
	domain.ADVANCED:     7,
	domain.MAINTENANCE:  6,
}

// phaseModifications is the advisory text attached to every plan for a
// given phase.
var phaseModifications = map[domain.Phase][]string{
	domain.INITIAL:      {"Foco em exercícios de baixo impacto", "Progressão gradual de carga"},
	domain.INTERMEDIATE: {"Aumento progressivo da intensidade", "Introdução de exercícios funcionais"},
	domain.ADVANCED:     {"Exercícios de fortalecimento avançado", "Preparação para alta"},
	domain.MAINTENANCE:  {"Manutenção dos ganhos obtidos", "Exercícios de autocuidado"},
}

// Conditional modifications appended per phase when the trigger holds.
const (
	elderlyModification  = "Supervisão adicional durante os exercícios"
	highPainModification = "Reduzir amplitude em caso de dor"
)

// phaseStart pairs a phase with its start week.
type phaseStart struct {
	phase domain.Phase
	week  int
}

// phaseLayout determines how many phases the plan has and when each starts,
// based on total duration in weeks.
func phaseLayout(duration int) []phaseStart {
	switch {
	case duration <= 4:
		return []phaseStart{
			{domain.INITIAL, 1},
			{domain.INTERMEDIATE, 3},
		}
	case duration <= 8:
		return []phaseStart{
			{domain.INITIAL, 1},
			{domain.INTERMEDIATE, 3},
			{domain.ADVANCED, 6},
		}
	default:
		maintenanceWeek := duration - 2
		if maintenanceWeek < 12 {
			maintenanceWeek = 12
		}
		return []phaseStart{
			{domain.INITIAL, 1},
			{domain.INTERMEDIATE, 4},
			{domain.ADVANCED, 8},
			{domain.MAINTENANCE, maintenanceWeek},
		}
	}
}

// phaseExercises returns the deterministic prefix of the exercise list for
// a phase: the first ceil(total x fraction) entries.
func phaseExercises(exercises []string, phase domain.Phase) []string {
	count := int(math.Ceil(float64(len(exercises)) * phaseFractions[phase]))
	if count > len(exercises) {
		count = len(exercises)
	}
	return append([]string(nil), exercises[:count]...)
}

// phaseIntensity computes the phase intensity from the baseline with the
// pain, lifestyle and age adjustments, clamped after each adjustment.
func phaseIntensity(phase domain.Phase, profile *domain.PatientProfile) int {
	intensity := phaseBaseIntensity[phase]

	if profile.PainLevel > 6 {
		intensity -= 2
		if intensity < 2 {
			intensity = 2
		}
	}

	if profile.Lifestyle == domain.VERY_ACTIVE {
		intensity++
		if intensity > 8 {
			intensity = 8
		}
	}

	if profile.Age > 65 {
		intensity--
		if intensity < 3 {
			intensity = 3
		}
	}

	return intensity
}

// buildModifications assembles the advisory strings for a phase, appending
// the age and pain conditionals when triggered.
func buildModifications(phase domain.Phase, profile *domain.PatientProfile) []string {
	mods := append([]string(nil), phaseModifications[phase]...)

	if profile.Age > 65 {
		mods = append(mods, elderlyModification)
	}
	if profile.PainLevel > 6 {
		mods = append(mods, highPainModification)
	}

	return mods
}

// buildProgressionPlan assembles the ordered progression steps for a plan.
func buildProgressionPlan(exercises []string, duration int, profile *domain.PatientProfile) []domain.ProgressionStep {
	layout := phaseLayout(duration)

	steps := make([]domain.ProgressionStep, 0, len(layout))
	for _, ps := range layout {
		steps = append(steps, domain.ProgressionStep{
			Week:          ps.week,
			Phase:         ps.phase,
			Exercises:     phaseExercises(exercises, ps.phase),
			Intensity:     phaseIntensity(ps.phase, profile),
			Modifications: buildModifications(ps.phase, profile),
		})
	}

	return steps
}
