package service

import (
	"math"

	"github.com/fisioflow/recommendation-engine/internal/domain"
)

// Outcome and risk assessment. Expected outcomes derive from the
// knowledge-base success rate with additive age and lifestyle deltas;
// risk factors are independent triggers, each with a fixed mitigation list.

// adjustedSuccessRate applies the additive deltas to the baseline. This is
// the success-rate path of the age/lifestyle modifiers and is deliberately
// separate from the multiplicative duration path.
func adjustedSuccessRate(baseRate int, profile *domain.PatientProfile) int {
	rate := baseRate
	rate += ageSuccessAdjustment(profile.Age)
	rate += lifestyleSuccessAdjustment(profile.Lifestyle)
	return rate
}

// clampImprovement bounds an improvement percentage to [0, cap].
func clampImprovement(value, cap int) int {
	if value > cap {
		return cap
	}
	if value < 0 {
		return 0
	}
	return value
}

// buildExpectedOutcomes always emits exactly three outcomes in a fixed
// order: pain reduction, mobility improvement, function improvement.
// STRENGTH_GAIN is never produced by this rule set.
func buildExpectedOutcomes(entry domain.KnowledgeEntry, profile *domain.PatientProfile) []domain.ExpectedOutcome {
	adjusted := adjustedSuccessRate(entry.BaseSuccessRate, profile)

	baseWeeks := entry.BaseDuration
	if !entry.Known {
		baseWeeks = 8
	}

	return []domain.ExpectedOutcome{
		{
			Metric:              domain.PAIN_REDUCTION,
			ExpectedImprovement: clampImprovement(adjusted, 90),
			Timeframe:           int(math.Ceil(float64(baseWeeks) * 0.6)),
			Confidence:          clampImprovement(adjusted+5, 95),
		},
		{
			Metric:              domain.MOBILITY_IMPROVEMENT,
			ExpectedImprovement: clampImprovement(adjusted-5, 85),
			Timeframe:           baseWeeks,
			Confidence:          clampImprovement(adjusted, 90),
		},
		{
			Metric:              domain.FUNCTION_IMPROVEMENT,
			ExpectedImprovement: clampImprovement(adjusted-10, 80),
			Timeframe:           int(math.Ceil(float64(baseWeeks) * 1.2)),
			Confidence:          clampImprovement(adjusted-5, 85),
		},
	}
}

// buildRiskFactors enumerates the independent risk triggers. A profile can
// produce zero to four entries; labels, levels and mitigations are fixed.
func buildRiskFactors(profile *domain.PatientProfile) []domain.RiskFactor {
	risks := make([]domain.RiskFactor, 0, 4)

	if profile.Age > 65 {
		risks = append(risks, domain.RiskFactor{
			Factor:    "Idade avançada",
			RiskLevel: domain.RISK_MEDIUM,
			Mitigation: []string{
				"Supervisão constante durante as sessões",
				"Progressão mais lenta entre fases",
				"Monitorar sinais vitais",
			},
		})
	}

	if profile.PainLevel > 7 {
		risks = append(risks, domain.RiskFactor{
			Factor:    "Dor intensa",
			RiskLevel: domain.RISK_HIGH,
			Mitigation: []string{
				"Iniciar com técnicas de alívio da dor",
				"Evitar exercícios de alto impacto",
				"Reavaliar semanalmente",
			},
		})
	}

	if profile.HasComorbidity("diabetes") {
		risks = append(risks, domain.RiskFactor{
			Factor:    "Diabetes",
			RiskLevel: domain.RISK_MEDIUM,
			Mitigation: []string{
				"Monitorar glicemia antes e após as sessões",
				"Atenção especial à cicatrização",
			},
		})
	}

	if profile.Lifestyle == domain.SEDENTARY {
		risks = append(risks, domain.RiskFactor{
			Factor:    "Sedentarismo",
			RiskLevel: domain.RISK_MEDIUM,
			Mitigation: []string{
				"Iniciar com atividades de baixa intensidade",
				"Educação sobre a importância do movimento",
			},
		})
	}

	return risks
}
