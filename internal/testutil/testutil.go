package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/lib/pq"

	"qa-forum/internal/database"
)

// TestDatabase holds a PostgreSQL container with all migrations applied
type TestDatabase struct {
	Container *postgres.PostgresContainer
	DB        *sql.DB
	ConnStr   string
}

// SetupTestDatabase starts PostgreSQL, applies the migrations and registers cleanup on t
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18",
		postgres.WithDatabase("qaforum_test"),
		postgres.WithUsername("qaforum_test"),
		postgres.WithPassword("qaforum_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	tdb := &TestDatabase{Container: container}
	t.Cleanup(func() { tdb.cleanup(t) })

	tdb.ConnStr, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	tdb.DB, err = sql.Open("postgres", tdb.ConnStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	if err := tdb.DB.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := database.NewMigrationExecutor(tdb.DB).RunMigrations(MigrationsDir(t)); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return tdb
}

func (tdb *TestDatabase) cleanup(t *testing.T) {
	if tdb.DB != nil {
		_ = tdb.DB.Close()
	}
	if err := tdb.Container.Terminate(context.Background()); err != nil {
		t.Errorf("Failed to terminate PostgreSQL container: %v", err)
	}
}

// MigrationsDir locates the migrations directory from the module root
func MigrationsDir(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("Failed to find module root above %s", dir)
		}
		dir = parent
	}
}
