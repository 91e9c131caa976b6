// Package knowledge holds the static clinical knowledge base: per-condition
// tables of exercises, educational media, baseline durations and baseline
// success rates, keyed by severity tier.
//
// The base is constructed once at process startup and never mutated; every
// accessor returns copies, so it is safe for concurrent use without locking.
package knowledge

import (
	"strings"

	"github.com/fisioflow/recommendation-engine/internal/domain"
)

// ConditionKnowledge is one condition's row set: exercise and video ids,
// expected duration in weeks and baseline success rate in percent, each
// keyed by severity tier. Every severity present in one map is present in
// all of them; Lookup falls back to the generic entry otherwise.
type ConditionKnowledge struct {
	Exercises   map[domain.Severity][]string
	Videos      map[domain.Severity][]string
	Duration    map[domain.Severity]int
	SuccessRate map[domain.Severity]int
}

// Defaults applied when the condition key is unknown. Unknown conditions
// are a first-class case, never an error.
const (
	GenericBaseDuration    = 6
	GenericBaseSuccessRate = 70
)

var genericExercises = []string{"avaliacao_geral", "exercicios_basicos", "alongamento_geral"}
var genericVideos = []string{"introducao_fisioterapia", "exercicios_gerais"}

// Base is the immutable knowledge base.
type Base struct {
	conditions map[string]ConditionKnowledge
	titles     map[string]string
}

// NewBase constructs the knowledge base with the built-in condition tables.
func NewBase() *Base {
	return &Base{
		conditions: conditionTables(),
		titles:     mediaTitles(),
	}
}

// Lookup resolves the tables for a condition/severity pair. Condition
// matching is case-insensitive exact match; unknown conditions resolve to
// the generic fallback with Known=false.
func (b *Base) Lookup(condition string, severity domain.Severity) domain.KnowledgeEntry {
	key := strings.ToLower(strings.TrimSpace(condition))

	ck, ok := b.conditions[key]
	if !ok {
		return domain.KnowledgeEntry{
			ExerciseIDs:     append([]string(nil), genericExercises...),
			VideoIDs:        append([]string(nil), genericVideos...),
			BaseDuration:    GenericBaseDuration,
			BaseSuccessRate: GenericBaseSuccessRate,
			Known:           false,
		}
	}

	exercises, ok := ck.Exercises[severity]
	if !ok {
		// Incomplete severity row; degrade to the generic entry rather
		// than failing the lookup.
		return domain.KnowledgeEntry{
			ExerciseIDs:     append([]string(nil), genericExercises...),
			VideoIDs:        append([]string(nil), genericVideos...),
			BaseDuration:    GenericBaseDuration,
			BaseSuccessRate: GenericBaseSuccessRate,
			Known:           false,
		}
	}

	return domain.KnowledgeEntry{
		ExerciseIDs:     append([]string(nil), exercises...),
		VideoIDs:        append([]string(nil), ck.Videos[severity]...),
		BaseDuration:    ck.Duration[severity],
		BaseSuccessRate: ck.SuccessRate[severity],
		Known:           true,
	}
}

// Known reports whether the condition has a dedicated table.
func (b *Base) Known(condition string) bool {
	_, ok := b.conditions[strings.ToLower(strings.TrimSpace(condition))]
	return ok
}

// Conditions returns the list of known condition keys, for diagnostics.
func (b *Base) Conditions() []string {
	keys := make([]string, 0, len(b.conditions))
	for k := range b.conditions {
		keys = append(keys, k)
	}
	return keys
}

// MediaTitle returns the display title for an exercise or video id, or the
// id itself when no title is registered.
func (b *Base) MediaTitle(id string) string {
	if title, ok := b.titles[id]; ok {
		return title
	}
	return id
}

// conditionTables builds the per-condition rule tables. Values mirror the
// clinic's protocol sheets; durations are weeks, success rates percent.
func conditionTables() map[string]ConditionKnowledge {
	return map[string]ConditionKnowledge{
		"lombalgia": {
			Exercises: map[domain.Severity][]string{
				domain.MILD:     {"alongamento_lombar", "fortalecimento_core", "mobilizacao_pelvica"},
				domain.MODERATE: {"alongamento_lombar", "fortalecimento_core", "mobilizacao_pelvica", "estabilizacao_segmentar", "ponte_gluteos"},
				domain.SEVERE:   {"mobilizacao_suave", "alongamento_lombar", "fortalecimento_core", "estabilizacao_segmentar", "ponte_gluteos", "caminhada_progressiva"},
			},
			Videos: map[domain.Severity][]string{
				domain.MILD:     {"video_lombalgia_basico", "video_postura"},
				domain.MODERATE: {"video_lombalgia_basico", "video_postura", "video_core"},
				domain.SEVERE:   {"video_lombalgia_avancado", "video_postura", "video_core"},
			},
			Duration: map[domain.Severity]int{
				domain.MILD:     4,
				domain.MODERATE: 8,
				domain.SEVERE:   12,
			},
			SuccessRate: map[domain.Severity]int{
				domain.MILD:     85,
				domain.MODERATE: 75,
				domain.SEVERE:   65,
			},
		},
		"cervicalgia": {
			Exercises: map[domain.Severity][]string{
				domain.MILD:     {"alongamento_cervical", "fortalecimento_pescoco", "correcao_postural"},
				domain.MODERATE: {"alongamento_cervical", "fortalecimento_pescoco", "correcao_postural", "mobilizacao_escapular"},
				domain.SEVERE:   {"mobilizacao_cervical_suave", "alongamento_cervical", "fortalecimento_pescoco", "correcao_postural", "mobilizacao_escapular"},
			},
			Videos: map[domain.Severity][]string{
				domain.MILD:     {"video_cervical_basico"},
				domain.MODERATE: {"video_cervical_basico", "video_ergonomia"},
				domain.SEVERE:   {"video_cervical_avancado", "video_ergonomia"},
			},
			Duration: map[domain.Severity]int{
				domain.MILD:     4,
				domain.MODERATE: 6,
				domain.SEVERE:   10,
			},
			SuccessRate: map[domain.Severity]int{
				domain.MILD:     80,
				domain.MODERATE: 75,
				domain.SEVERE:   65,
			},
		},
		"ombro": {
			Exercises: map[domain.Severity][]string{
				domain.MILD:     {"pendulo_codman", "alongamento_capsular", "fortalecimento_manguito"},
				domain.MODERATE: {"pendulo_codman", "alongamento_capsular", "fortalecimento_manguito", "mobilizacao_escapular", "exercicios_isometricos"},
				domain.SEVERE:   {"pendulo_codman", "mobilizacao_passiva", "alongamento_capsular", "fortalecimento_manguito", "mobilizacao_escapular", "exercicios_isometricos"},
			},
			Videos: map[domain.Severity][]string{
				domain.MILD:     {"video_ombro_basico"},
				domain.MODERATE: {"video_ombro_basico", "video_manguito"},
				domain.SEVERE:   {"video_ombro_avancado", "video_manguito"},
			},
			Duration: map[domain.Severity]int{
				domain.MILD:     6,
				domain.MODERATE: 10,
				domain.SEVERE:   16,
			},
			SuccessRate: map[domain.Severity]int{
				domain.MILD:     80,
				domain.MODERATE: 70,
				domain.SEVERE:   60,
			},
		},
		"joelho": {
			Exercises: map[domain.Severity][]string{
				domain.MILD:     {"fortalecimento_quadriceps", "alongamento_isquiotibiais", "propriocepcao_basica"},
				domain.MODERATE: {"fortalecimento_quadriceps", "alongamento_isquiotibiais", "propriocepcao_basica", "agachamento_parcial", "fortalecimento_gluteos"},
				domain.SEVERE:   {"mobilizacao_patelar", "fortalecimento_quadriceps", "alongamento_isquiotibiais", "propriocepcao_basica", "agachamento_parcial", "fortalecimento_gluteos", "bicicleta_estacionaria"},
			},
			Videos: map[domain.Severity][]string{
				domain.MILD:     {"video_joelho_basico"},
				domain.MODERATE: {"video_joelho_basico", "video_propriocepcao"},
				domain.SEVERE:   {"video_joelho_avancado", "video_propriocepcao"},
			},
			Duration: map[domain.Severity]int{
				domain.MILD:     6,
				domain.MODERATE: 12,
				domain.SEVERE:   20,
			},
			SuccessRate: map[domain.Severity]int{
				domain.MILD:     85,
				domain.MODERATE: 75,
				domain.SEVERE:   65,
			},
		},
	}
}

// mediaTitles maps exercise and video ids to display titles used when
// enriching API responses.
func mediaTitles() map[string]string {
	return map[string]string{
		"avaliacao_geral":          "Avaliação geral",
		"exercicios_basicos":       "Exercícios básicos",
		"alongamento_geral":        "Alongamento geral",
		"introducao_fisioterapia":  "Introdução à fisioterapia",
		"exercicios_gerais":        "Exercícios gerais",
		"alongamento_lombar":       "Alongamento lombar",
		"fortalecimento_core":      "Fortalecimento do core",
		"mobilizacao_pelvica":      "Mobilização pélvica",
		"estabilizacao_segmentar":  "Estabilização segmentar",
		"ponte_gluteos":            "Ponte de glúteos",
		"mobilizacao_suave":        "Mobilização suave",
		"caminhada_progressiva":    "Caminhada progressiva",
		"alongamento_cervical":     "Alongamento cervical",
		"fortalecimento_pescoco":   "Fortalecimento do pescoço",
		"correcao_postural":        "Correção postural",
		"mobilizacao_escapular":    "Mobilização escapular",
		"mobilizacao_cervical_suave": "Mobilização cervical suave",
		"pendulo_codman":           "Pêndulo de Codman",
		"alongamento_capsular":     "Alongamento capsular",
		"fortalecimento_manguito":  "Fortalecimento do manguito rotador",
		"exercicios_isometricos":   "Exercícios isométricos",
		"mobilizacao_passiva":      "Mobilização passiva",
		"fortalecimento_quadriceps": "Fortalecimento do quadríceps",
		"alongamento_isquiotibiais": "Alongamento de isquiotibiais",
		"propriocepcao_basica":     "Propriocepção básica",
		"agachamento_parcial":      "Agachamento parcial",
		"fortalecimento_gluteos":   "Fortalecimento de glúteos",
		"bicicleta_estacionaria":   "Bicicleta estacionária",
		"mobilizacao_patelar":      "Mobilização patelar",
	}
}
