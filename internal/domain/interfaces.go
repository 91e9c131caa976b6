package domain

import (
	"context"

	"github.com/google/uuid"
)

// RecommendationEngine converts a validated patient profile into a phased
// treatment plan. Both operations are pure: no I/O, no randomness, and the
// input values are never mutated.
type RecommendationEngine interface {
	GenerateRecommendation(profile *PatientProfile) (*TreatmentRecommendation, error)
	UpdateRecommendationBasedOnProgress(current *TreatmentRecommendation, progress *ProgressReport) (*TreatmentRecommendation, error)
}

// KnowledgeLookup is the read-only view of the static clinical knowledge
// base used by the engine.
type KnowledgeLookup interface {
	Lookup(condition string, severity Severity) KnowledgeEntry
	Known(condition string) bool
}

// KnowledgeEntry is the result of a knowledge-base lookup for one
// condition/severity pair.
type KnowledgeEntry struct {
	ExerciseIDs     []string
	VideoIDs        []string
	BaseDuration    int // weeks
	BaseSuccessRate int // percent
	Known           bool
}

// RecommendationStore defines persistence for generated recommendations.
// Records are stored verbatim; the store never reinterprets plan content.
type RecommendationStore interface {
	Create(ctx context.Context, record *RecommendationRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*RecommendationRecord, error)
	Update(ctx context.Context, record *RecommendationRecord) error
	ListByCondition(ctx context.Context, condition string, limit, offset int) ([]*RecommendationRecord, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetDatabaseConfig() *DatabaseConfig
	Validate() error
	GetDatabaseConnectionString() string
	GetRedisConnectionString() string
	IsProduction() bool
	IsDevelopment() bool
}
