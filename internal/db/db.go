package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Harshith014/resumeUploader/config"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	driverName      = "postgres"
	pingTimeout     = 5 * time.Second
	pingAttempts    = 5
	pingBackoff     = time.Second
	connMaxIdleTime = 2 * time.Minute
	connMaxLifetime = 30 * time.Minute
	maxIdleConns    = 5
	maxOpenConns    = 25
)

// Open connects to postgres and pings it, retrying a few times so the
// server can start alongside a database that is still booting.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	conn, err := sql.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, err
	}

	conn.SetConnMaxIdleTime(connMaxIdleTime)
	conn.SetConnMaxLifetime(connMaxLifetime)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetMaxOpenConns(maxOpenConns)

	if err := ping(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func ping(ctx context.Context, conn *sql.DB) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = conn.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		log.Warn().Err(err).Int("attempt", attempt).Msg("database not ready")
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(pingBackoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("ping database after %d attempts: %w", pingAttempts, err)
}
