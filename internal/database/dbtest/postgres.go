package dbtest

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	"ms-tradein/internal/config"
	"ms-tradein/internal/database"
	"ms-tradein/internal/database/migrations"
	"ms-tradein/internal/logger"
)

// NewPostgres starts a throwaway Postgres container, applies the SQL
// migrations and connects with the given driver ("pq" or "pgdriver"). It
// skips in -short mode or when no container runtime is available.
func NewPostgres(t testing.TB, driver string) *bun.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping Postgres integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "tradein",
				"POSTGRES_PASSWORD": "tradein",
				"POSTGRES_DB":       "tradein",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get mapped port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://tradein:tradein@%s:%s/tradein?sslmode=disable", host, port.Port())

	opts := migrations.Options{MigrationsDir: migrationsDir(), AutoMigrate: true}
	if err := migrations.Apply(dsn, opts, logger.Discard()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := database.Open(ctx, config.DatabaseConfig{
		DSN:            dsn,
		Driver:         driver,
		MaxOpenConns:   10,
		MaxIdleConns:   10,
		MaxLifetime:    time.Minute,
		ConnectRetries: 5,
	}, logger.Discard())
	if err != nil {
		t.Fatalf("Failed to connect to Postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}
