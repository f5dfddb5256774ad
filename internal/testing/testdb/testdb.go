// Package testdb builds a throwaway PostgreSQL schema for integration tests.
//
// Tests only run when TEST_DATABASE_URL points at a database the tests may
// write to; otherwise they are skipped. Each call gets its own schema, built
// from the embedded fixture migrations and dropped when the test ends.
package testdb

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/tokenfarms-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// URLEnv names the environment variable holding the test database URL.
const URLEnv = "TEST_DATABASE_URL"

//go:embed migrations/*.sql
var migrations embed.FS

// New returns a pool whose search_path is a fresh, fully migrated schema.
func New(t testing.TB) *database.Database {
	t.Helper()

	dsn := os.Getenv(URLEnv)
	if dsn == "" {
		t.Skipf("%s not set, skipping PostgreSQL integration test", URLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schema := "tokenfarms_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	defer admin.Close(ctx)

	if _, err := admin.Exec(ctx, "create schema "+pgx.Identifier{schema}.Sanitize()); err != nil {
		t.Fatalf("creating schema %s: %v", schema, err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			t.Logf("dropping schema %s: %v", schema, err)
			return
		}
		defer conn.Close(ctx)

		if _, err := conn.Exec(ctx, "drop schema "+pgx.Identifier{schema}.Sanitize()+" cascade"); err != nil {
			t.Logf("dropping schema %s: %v", schema, err)
		}
	})

	if err := migrate(ctx, dsn, schema); err != nil {
		t.Fatalf("migrating schema %s: %v", schema, err)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parsing %s: %v", URLEnv, err)
	}
	poolConfig.ConnConfig.RuntimeParams["search_path"] = schema
	poolConfig.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("creating pool: %v", err)
	}

	logger := zerolog.Nop()
	db := database.FromPool(pool, &logger)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func migrate(ctx context.Context, dsn, schema string) error {
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return err
	}
	connConfig.RuntimeParams["search_path"] = schema

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, "schema_version")
	if err != nil {
		return fmt.Errorf("constructing migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	return m.Migrate(ctx)
}

// Exec runs fixture statements against db, failing the test on error.
func Exec(t testing.TB, db *database.Database, sql string, args ...any) {
	t.Helper()

	if _, err := db.Pool.Exec(context.Background(), sql, args...); err != nil {
		t.Fatalf("fixture exec: %v", err)
	}
}
