package testutil

import (
	"context"
	"os"
	"testing"

	"threadvote/internal/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenTestDB connects to TEST_DATABASE_URL, migrates, and empties every table.
// The test is skipped when the variable is unset.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database test")
	}

	conn, err := db.Open(context.Background(), dsn, "silent", zap.NewNop())
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := conn.Exec("TRUNCATE TABLE votes, comments, posts, users RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("failed to truncate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close(conn)
	})
	return conn
}
