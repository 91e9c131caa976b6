package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fisioflow/recommendation-engine/internal/domain"
)

func TestNewFeedbackStore(t *testing.T) {
	t.Run("sqlite driver opens store", func(t *testing.T) {
		store, err := newFeedbackStore(domain.FeedbackConfig{
			Driver:     "sqlite",
			SQLitePath: filepath.Join(t.TempDir(), "feedback.db"),
		})
		require.NoError(t, err)
		require.NotNil(t, store)
		defer store.Close()
	})

	t.Run("postgres failure yields nil interface", func(t *testing.T) {
		store, err := newFeedbackStore(domain.FeedbackConfig{
			Driver:      "postgres",
			DatabaseURL: "postgres://invalid@127.0.0.1:1/feedback?sslmode=disable&connect_timeout=1",
		})
		require.Error(t, err)

		// A nil *PostgresStore wrapped in the interface would slip past the
		// handlers' absent-component checks and panic on first use.
		assert.True(t, store == nil)
	})

	t.Run("sqlite failure yields nil interface", func(t *testing.T) {
		// A directory path is not a usable database file.
		store, err := newFeedbackStore(domain.FeedbackConfig{
			Driver:     "sqlite",
			SQLitePath: t.TempDir(),
		})
		require.Error(t, err)
		assert.True(t, store == nil)
	})
}
