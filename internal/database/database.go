package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-tradein/internal/config"
	"ms-tradein/internal/logger"
)

// Open connects to Postgres, retrying while the server comes up, and wraps
// the pool in bun. DB_DRIVER selects lib/pq ("pq") or bun's pgdriver.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	var sqldb *sql.DB
	switch cfg.Driver {
	case "pgdriver":
		sqldb = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	case "", "pq", "postgres":
		var err error
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}

	var err error
	for i := 1; i <= retries; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = sqldb.PingContext(pingCtx)
		cancel()
		if err == nil {
			break
		}
		log.Warn("DATABASE", fmt.Sprintf("Ping attempt %d/%d failed: %v", i, retries, err))
		if i < retries {
			select {
			case <-ctx.Done():
				sqldb.Close()
				return nil, ctx.Err()
			case <-time.After(time.Duration(i) * time.Second):
			}
		}
	}
	if err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	log.LogDatabase("CONNECT", "postgres", fmt.Sprintf("Connected using %s driver", driverName(cfg.Driver)))
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func driverName(d string) string {
	if d == "pgdriver" {
		return "pgdriver"
	}
	return "lib/pq"
}
