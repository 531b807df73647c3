package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Options of waiting for the database to become reachable on startup
type WaitOptions struct {
	// Total number of connection attempts, at least one attempt is made
	Attempts int

	// Fixed pause between attempts
	Interval time.Duration

	// Called after every failed attempt. May be nil
	OnRetry func(attempt int, err error)
}

// Run embedded migrations
// Check the example at https://github.com/golang-migrate/migrate/blob/v4.18.1/source/iofs/example_test.go
// dsn: database source name in format postgres://...
func Migrate(dsn string) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithSourceInstance(
		"iofs",
		source,
		strings.NewReplacer(
			"postgres://", "pgx5://", // golang-migrate expects dsn in format 'pgx5://...' only
			"postgresql://", "pgx5://",
		).Replace(dsn),
	)
	if err != nil {
		return fmt.Errorf("error while preparing migrator. Err: %w", err)
	}
	defer migrator.Close() // nolint:errcheck

	err = migrator.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error while applying migrations. Err: %w", err)
	}

	return nil
}

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cant initialize connection pool. Err: %w", err)
	}

	return pool, nil
}

// WaitForDB creates connection pool and pings the database until it answers
// Gives up after opts.Attempts failed pings or when ctx is done
func WaitForDB(ctx context.Context, dsn string, opts WaitOptions) (*pgxpool.Pool, error) {
	pool, err := Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}

	attempts := max(opts.Attempts, 1)
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.Interval), uint64(attempts-1)),
		ctx,
	)

	attempt := 0
	ping := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		return pool.Ping(pingCtx)
	}
	notify := func(err error, _ time.Duration) {
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, err)
		}
	}

	if err := backoff.RetryNotify(ping, b, notify); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database is not reachable after %d attempts. Err: %w", attempt, err)
	}

	return pool, nil
}

// Wait for the database, then apply migrations
func WaitAndMigrate(ctx context.Context, dsn string, opts WaitOptions) (*pgxpool.Pool, error) {
	pool, err := WaitForDB(ctx, dsn, opts)
	if err != nil {
		return nil, err
	}

	if err := Migrate(dsn); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func ConnectAndMigrate(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	return WaitAndMigrate(ctx, dsn, WaitOptions{Attempts: 1})
}
