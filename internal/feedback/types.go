// Package feedback stores clinician reviews of generated treatment plans.
// Feedback records whether the clinician agreed with a recommendation and
// the adjustments they applied, keyed per clinician per recommendation.
package feedback

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Feedback is one clinician's review of one generated recommendation.
type Feedback struct {
	ID                int64     `json:"id,omitempty"`
	RecommendationID  uuid.UUID `json:"recommendation_id"`
	Clinician         string    `json:"clinician"`
	Agreed            bool      `json:"agreed"`
	AdjustedDuration  int       `json:"adjusted_duration,omitempty"`  // weeks, 0 when unadjusted
	AdjustedFrequency int       `json:"adjusted_frequency,omitempty"` // sessions/week, 0 when unadjusted
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save stores or updates a clinician's feedback. A second review by the
	// same clinician for the same recommendation replaces the first.
	Save(ctx context.Context, fb *Feedback) error

	// Get retrieves one clinician's feedback for a recommendation.
	// Returns nil when no feedback exists.
	Get(ctx context.Context, recommendationID uuid.UUID, clinician string) (*Feedback, error)

	// ListByRecommendation returns all feedback for one recommendation.
	ListByRecommendation(ctx context.Context, recommendationID uuid.UUID) ([]*Feedback, error)

	// Count returns the total number of feedback entries.
	Count(ctx context.Context) (int64, error)

	// ExportJSON exports all feedback to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// Close closes the store and releases resources.
	Close() error
}

// Export is the JSON export format.
type Export struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Feedback   []*Feedback `json:"feedback"`
}
