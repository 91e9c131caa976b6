package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fisioflow/recommendation-engine/internal/database"
	"github.com/fisioflow/recommendation-engine/internal/domain"
)

// generateTestPassword creates a random password for throwaway test databases
func generateTestPassword() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "test_fallback_password_123"
	}
	return "test_" + hex.EncodeToString(bytes)
}

func setupTestDB(t *testing.T) (*database.DB, func()) {
	if os.Getenv("RUN_DB_TESTS") == "" {
		t.Skip("set RUN_DB_TESTS=1 to run container-backed repository tests")
	}

	ctx := context.Background()
	testPassword := generateTestPassword()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	config := domain.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		Database:        "testdb",
		Username:        "testuser",
		Password:        testPassword,
		SSLMode:         "disable",
		MaxConns:        10,
		MinConns:        2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := database.NewConnection(ctx, config, logger)
	if err != nil {
		t.Fatalf("Failed to create database connection: %v", err)
	}

	databaseURL := "postgres://testuser:" + testPassword + "@" + host + ":" + port.Port() + "/testdb?sslmode=disable"
	if err := database.RunMigrations(databaseURL, "../../migrations", logger); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}

	return db, cleanup
}

func testRecord() *domain.RecommendationRecord {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.RecommendationRecord{
		ID: uuid.New(),
		Profile: domain.PatientProfile{
			Age:           45,
			Gender:        domain.FEMALE,
			Condition:     "lombalgia",
			Severity:      domain.MODERATE,
			PainLevel:     6,
			MobilityLevel: domain.MOBILITY_MEDIUM,
			Lifestyle:     domain.ACTIVE,
		},
		Recommendation: domain.TreatmentRecommendation{
			ExerciseIDs:     []string{"alongamento_lombar", "fortalecimento_core"},
			VideoIDs:        []string{"video_alongamento_lombar"},
			Frequency:       3,
			Duration:        8,
			ConfidenceScore: 95,
			Reasoning:       "plano de tratamento",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRecommendationRepository_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewRecommendationRepository(db.Pool, logger)

	record := testRecord()
	ctx := context.Background()

	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve record: %v", err)
	}

	if retrieved.ID != record.ID {
		t.Errorf("Expected ID %s, got %s", record.ID, retrieved.ID)
	}
	if retrieved.Profile.Condition != record.Profile.Condition {
		t.Errorf("Expected condition %s, got %s", record.Profile.Condition, retrieved.Profile.Condition)
	}
	if retrieved.Recommendation.Duration != record.Recommendation.Duration {
		t.Errorf("Expected duration %d, got %d", record.Recommendation.Duration, retrieved.Recommendation.Duration)
	}
}

func TestRecommendationRepository_GetMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewRecommendationRepository(db.Pool, logger)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRecommendationRepository_Update(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewRecommendationRepository(db.Pool, logger)

	record := testRecord()
	ctx := context.Background()

	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}

	record.Recommendation.Duration = 6
	record.Recommendation.Frequency = 2
	if err := repo.Update(ctx, record); err != nil {
		t.Fatalf("Failed to update record: %v", err)
	}

	updated, err := repo.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve updated record: %v", err)
	}
	if updated.Recommendation.Duration != 6 {
		t.Errorf("Expected duration 6, got %d", updated.Recommendation.Duration)
	}
	if updated.Recommendation.Frequency != 2 {
		t.Errorf("Expected frequency 2, got %d", updated.Recommendation.Frequency)
	}
}

func TestRecommendationRepository_UpdateMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewRecommendationRepository(db.Pool, logger)

	record := testRecord()
	if err := repo.Update(context.Background(), record); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRecommendationRepository_ListByCondition(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewRecommendationRepository(db.Pool, logger)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		record := testRecord()
		if i == 2 {
			record.Profile.Condition = "joelho"
		}
		if err := repo.Create(ctx, record); err != nil {
			t.Fatalf("Failed to create record: %v", err)
		}
	}

	records, err := repo.ListByCondition(ctx, "lombalgia", 10, 0)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
	for _, record := range records {
		if record.Profile.NormalizedCondition() != "lombalgia" {
			t.Errorf("Expected condition lombalgia, got %s", record.Profile.Condition)
		}
	}
}
