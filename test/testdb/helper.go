package testdb

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/selivandex/finvani-sentiment/internal/adapters/database"
)

// Setup connects to the test database named by TEST_DATABASE_URL, applies
// migrations and empties the article table. Tests are skipped when the
// variable is not set.
func Setup(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(conn.DB, MigrationsDir(t)); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	Truncate(t, conn)

	t.Cleanup(func() {
		Truncate(t, conn)
		if err := conn.Close(); err != nil {
			t.Logf("warning: failed to close database: %v", err)
		}
	})

	return conn
}

// Truncate removes all mirrored articles
func Truncate(t *testing.T, conn *sqlx.DB) {
	t.Helper()

	if _, err := conn.Exec("TRUNCATE news_articles"); err != nil {
		t.Fatalf("failed to truncate news_articles: %v", err)
	}
}

// CountArticles returns the number of rows in news_articles
func CountArticles(t *testing.T, conn *sqlx.DB) int {
	t.Helper()

	var count int
	if err := conn.Get(&count, "SELECT COUNT(*) FROM news_articles"); err != nil {
		t.Fatalf("failed to count articles: %v", err)
	}
	return count
}

// MigrationsDir returns the repository migrations directory
func MigrationsDir(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to locate migrations directory")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}
