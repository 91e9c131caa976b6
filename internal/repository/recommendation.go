// Package repository persists generated recommendations in PostgreSQL. The
// profile and the recommendation are stored as JSONB documents so the plan
// content round-trips verbatim.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/fisioflow/recommendation-engine/internal/domain"
)

// RecommendationRepository handles recommendation record persistence
type RecommendationRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewRecommendationRepository creates a new recommendation repository
func NewRecommendationRepository(db *pgxpool.Pool, logger *logrus.Logger) *RecommendationRepository {
	return &RecommendationRepository{
		db:  db,
		log: logger,
	}
}

// Create inserts a new recommendation record into the database
func (r *RecommendationRepository) Create(ctx context.Context, record *domain.RecommendationRecord) error {
	profileJSON, err := json.Marshal(record.Profile)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	recJSON, err := json.Marshal(record.Recommendation)
	if err != nil {
		return fmt.Errorf("marshaling recommendation: %w", err)
	}

	query := `
		INSERT INTO recommendations (
			id, condition, severity, profile, recommendation, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.Profile.NormalizedCondition(),
		record.Profile.Severity.String(),
		profileJSON,
		recJSON,
		record.CreatedAt,
		record.UpdatedAt,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"recommendation_id": record.ID,
			"condition":         record.Profile.NormalizedCondition(),
			"error":             err,
		}).Error("Failed to create recommendation record")
		return fmt.Errorf("creating recommendation record: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"recommendation_id": record.ID,
		"condition":         record.Profile.NormalizedCondition(),
		"severity":          record.Profile.Severity,
	}).Info("Recommendation record created")

	return nil
}

// GetByID retrieves a recommendation record by its ID
func (r *RecommendationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecommendationRecord, error) {
	query := `
		SELECT id, profile, recommendation, created_at, updated_at
		FROM recommendations
		WHERE id = $1`

	var record domain.RecommendationRecord
	var profileJSON, recJSON []byte

	err := r.db.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&profileJSON,
		&recJSON,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("recommendation not found: %w", domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"recommendation_id": id,
			"error":             err,
		}).Error("Failed to get recommendation by ID")
		return nil, fmt.Errorf("getting recommendation by ID: %w", err)
	}

	if err := json.Unmarshal(profileJSON, &record.Profile); err != nil {
		return nil, fmt.Errorf("unmarshaling profile: %w", err)
	}
	if err := json.Unmarshal(recJSON, &record.Recommendation); err != nil {
		return nil, fmt.Errorf("unmarshaling recommendation: %w", err)
	}

	return &record, nil
}

// Update replaces the stored recommendation for an existing record
func (r *RecommendationRepository) Update(ctx context.Context, record *domain.RecommendationRecord) error {
	recJSON, err := json.Marshal(record.Recommendation)
	if err != nil {
		return fmt.Errorf("marshaling recommendation: %w", err)
	}

	query := `
		UPDATE recommendations
		SET recommendation = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, record.ID, recJSON)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"recommendation_id": record.ID,
			"error":             err,
		}).Error("Failed to update recommendation record")
		return fmt.Errorf("updating recommendation record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("recommendation not found: %w", domain.ErrNotFound)
	}

	r.log.WithFields(logrus.Fields{
		"recommendation_id": record.ID,
	}).Info("Recommendation record updated")

	return nil
}

// ListByCondition retrieves recommendation records for a normalized condition
// with pagination, newest first
func (r *RecommendationRepository) ListByCondition(ctx context.Context, condition string, limit, offset int) ([]*domain.RecommendationRecord, error) {
	query := `
		SELECT id, profile, recommendation, created_at, updated_at
		FROM recommendations
		WHERE condition = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, condition, limit, offset)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"condition": condition,
			"error":     err,
		}).Error("Failed to list recommendations by condition")
		return nil, fmt.Errorf("listing recommendations by condition: %w", err)
	}
	defer rows.Close()

	var records []*domain.RecommendationRecord
	for rows.Next() {
		var record domain.RecommendationRecord
		var profileJSON, recJSON []byte

		err := rows.Scan(
			&record.ID,
			&profileJSON,
			&recJSON,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"condition": condition,
				"error":     err,
			}).Error("Failed to scan recommendation row")
			return nil, fmt.Errorf("scanning recommendation row: %w", err)
		}

		if err := json.Unmarshal(profileJSON, &record.Profile); err != nil {
			return nil, fmt.Errorf("unmarshaling profile: %w", err)
		}
		if err := json.Unmarshal(recJSON, &record.Recommendation); err != nil {
			return nil, fmt.Errorf("unmarshaling recommendation: %w", err)
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recommendation rows: %w", err)
	}

	return records, nil
}
