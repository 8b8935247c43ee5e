package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/studydeck/studydeck/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations
// applied, sharing the production Open path so the test schema can never
// drift from the real one.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, database.Close())
	})
	return database.DB
}
