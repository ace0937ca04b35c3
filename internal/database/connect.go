package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bus-fleet/internal/config"
	"bus-fleet/internal/logger"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const retryDelay = 2 * time.Second

// Open connects to the configured database, retrying the ping up to
// ConnectRetries times.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	driverName, err := driverFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if cfg.Driver == "mysql" {
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
	}

	sqldb, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		// a single connection keeps in-memory databases and write locking sane
		sqldb.SetMaxOpenConns(1)
	} else {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
		sqldb.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to %s (attempt %d/%d)", cfg.Driver, i+1, retries))
		if err = sqldb.PingContext(ctx); err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to %s: %v", cfg.Driver, err))
		if i < retries-1 {
			select {
			case <-ctx.Done():
				sqldb.Close()
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	if err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("connect to %s after %d attempts: %w", cfg.Driver, retries, err)
	}

	log.Info("DATABASE", fmt.Sprintf("%s connection successful", cfg.Driver))
	switch cfg.Driver {
	case "sqlite":
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "mysql":
		return bun.NewDB(sqldb, mysqldialect.New()), nil
	default:
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}
}

func driverFor(name string) (string, error) {
	switch name {
	case "postgres", "mysql":
		return name, nil
	case "sqlite":
		return sqliteshim.ShimName, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", name)
	}
}

// mysqlDSN makes updates report matched rather than changed rows, which the
// store relies on to tell a missing record from an unchanged one.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
