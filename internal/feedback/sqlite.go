package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite. It is the default
// backend for single-clinic installs where no shared database is available.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite feedback store. It creates the
// database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanFeedback scans a row into a Feedback struct.
func scanFeedback(s scanner) (*Feedback, error) {
	fb := &Feedback{}
	var recID string

	err := s.Scan(
		&fb.ID, &recID, &fb.Clinician, &fb.Agreed,
		&fb.AdjustedDuration, &fb.AdjustedFrequency, &fb.Notes,
		&fb.CreatedAt, &fb.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(recID)
	if err != nil {
		return nil, fmt.Errorf("invalid recommendation id in row: %w", err)
	}
	fb.RecommendationID = parsed
	return fb, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recommendation_id TEXT NOT NULL,
		clinician TEXT NOT NULL,
		agreed INTEGER NOT NULL DEFAULT 0,
		adjusted_duration INTEGER NOT NULL DEFAULT 0,
		adjusted_frequency INTEGER NOT NULL DEFAULT 0,
		notes TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(recommendation_id, clinician)
	);

	CREATE INDEX IF NOT EXISTS idx_feedback_recommendation ON feedback(recommendation_id);
	CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Save stores or updates a clinician's feedback.
func (s *SQLiteStore) Save(ctx context.Context, fb *Feedback) error {
	now := time.Now()

	var existingID int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM feedback WHERE recommendation_id = ? AND clinician = ?",
		fb.RecommendationID.String(), fb.Clinician,
	).Scan(&existingID)

	if err == nil {
		fb.ID = existingID
		fb.UpdatedAt = now

		_, err = s.db.ExecContext(ctx, `
			UPDATE feedback SET
				agreed = ?,
				adjusted_duration = ?,
				adjusted_frequency = ?,
				notes = ?,
				updated_at = ?
			WHERE id = ?
		`,
			fb.Agreed,
			fb.AdjustedDuration,
			fb.AdjustedFrequency,
			fb.Notes,
			now,
			existingID,
		)
		return err
	}

	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing: %w", err)
	}

	fb.CreatedAt = now
	fb.UpdatedAt = now

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (
			recommendation_id, clinician, agreed,
			adjusted_duration, adjusted_frequency, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		fb.RecommendationID.String(),
		fb.Clinician,
		fb.Agreed,
		fb.AdjustedDuration,
		fb.AdjustedFrequency,
		fb.Notes,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	fb.ID = id

	return nil
}

// Get retrieves one clinician's feedback for a recommendation.
func (s *SQLiteStore) Get(ctx context.Context, recommendationID uuid.UUID, clinician string) (*Feedback, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, recommendation_id, clinician, agreed,
			adjusted_duration, adjusted_frequency, notes,
			created_at, updated_at
		FROM feedback
		WHERE recommendation_id = ? AND clinician = ?
		LIMIT 1
	`, recommendationID.String(), clinician)

	fb, err := scanFeedback(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return fb, nil
}

// ListByRecommendation returns all feedback for one recommendation.
func (s *SQLiteStore) ListByRecommendation(ctx context.Context, recommendationID uuid.UUID) ([]*Feedback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recommendation_id, clinician, agreed,
			adjusted_duration, adjusted_frequency, notes,
			created_at, updated_at
		FROM feedback
		WHERE recommendation_id = ?
		ORDER BY created_at DESC
	`, recommendationID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, fb)
	}
	return result, rows.Err()
}

// Count returns the total number of feedback entries.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback").Scan(&count)
	return count, err
}

// ExportJSON exports all feedback to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recommendation_id, clinician, agreed,
			adjusted_duration, adjusted_frequency, notes,
			created_at, updated_at
		FROM feedback
		ORDER BY created_at DESC
	`)
	if err != nil {
		return fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var all []*Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
