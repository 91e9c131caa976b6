package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresStore implements the Store interface using PostgreSQL. Used by
// hosted multi-clinic deployments that already run the main database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL feedback store. It creates the
// feedback schema if it does not exist.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS feedback (
			id BIGSERIAL PRIMARY KEY,
			recommendation_id UUID NOT NULL,
			clinician TEXT NOT NULL,
			agreed BOOLEAN NOT NULL DEFAULT FALSE,
			adjusted_duration INTEGER NOT NULL DEFAULT 0,
			adjusted_frequency INTEGER NOT NULL DEFAULT 0,
			notes TEXT DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE(recommendation_id, clinician)
		)`); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL feedback store from a
// connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Save stores or updates a clinician's feedback.
func (s *PostgresStore) Save(ctx context.Context, fb *Feedback) error {
	now := time.Now()

	query := `
		INSERT INTO feedback (
			recommendation_id, clinician, agreed,
			adjusted_duration, adjusted_frequency, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (recommendation_id, clinician) DO UPDATE SET
			agreed = EXCLUDED.agreed,
			adjusted_duration = EXCLUDED.adjusted_duration,
			adjusted_frequency = EXCLUDED.adjusted_frequency,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		fb.RecommendationID,
		fb.Clinician,
		fb.Agreed,
		fb.AdjustedDuration,
		fb.AdjustedFrequency,
		fb.Notes,
		now,
		now,
	).Scan(&fb.ID, &fb.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	fb.UpdatedAt = now
	return nil
}

// Get retrieves one clinician's feedback for a recommendation.
func (s *PostgresStore) Get(ctx context.Context, recommendationID uuid.UUID, clinician string) (*Feedback, error) {
	query := `
		SELECT id, recommendation_id, clinician, agreed,
			adjusted_duration, adjusted_frequency, notes,
			created_at, updated_at
		FROM feedback
		WHERE recommendation_id = $1 AND clinician = $2
		LIMIT 1
	`

	fb := &Feedback{}
	err := s.db.QueryRowContext(ctx, query, recommendationID, clinician).Scan(
		&fb.ID, &fb.RecommendationID, &fb.Clinician, &fb.Agreed,
		&fb.AdjustedDuration, &fb.AdjustedFrequency, &fb.Notes,
		&fb.CreatedAt, &fb.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return fb, nil
}

// ListByRecommendation returns all feedback for one recommendation.
func (s *PostgresStore) ListByRecommendation(ctx context.Context, recommendationID uuid.UUID) ([]*Feedback, error) {
	query := `
		SELECT id, recommendation_id, clinician, agreed,
			adjusted_duration, adjusted_frequency, notes,
			created_at, updated_at
		FROM feedback
		WHERE recommendation_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var result []*Feedback
	for rows.Next() {
		fb := &Feedback{}
		err := rows.Scan(
			&fb.ID, &fb.RecommendationID, &fb.Clinician, &fb.Agreed,
			&fb.AdjustedDuration, &fb.AdjustedFrequency, &fb.Notes,
			&fb.CreatedAt, &fb.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, fb)
	}
	return result, rows.Err()
}

// Count returns the total number of feedback entries.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback").Scan(&count)
	return count, err
}

// ExportJSON exports all feedback to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	query := `
		SELECT id, recommendation_id, clinician, agreed,
			adjusted_duration, adjusted_frequency, notes,
			created_at, updated_at
		FROM feedback
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var all []*Feedback
	for rows.Next() {
		fb := &Feedback{}
		err := rows.Scan(
			&fb.ID, &fb.RecommendationID, &fb.Clinician, &fb.Agreed,
			&fb.AdjustedDuration, &fb.AdjustedFrequency, &fb.Notes,
			&fb.CreatedAt, &fb.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		all = append(all, fb)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Count:      len(all),
		Feedback:   all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
