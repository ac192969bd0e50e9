package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore keeps the local state in a PostgreSQL table, for setups
// that share one state between machines.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a connection to PostgreSQL, waits for it to accept
// connections, runs schema migrations, and returns a ready-to-use store.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS slibuy_kv (
			key         TEXT        PRIMARY KEY,
			value       JSONB       NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (ps *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := ps.db.QueryRowContext(ctx, "SELECT value FROM slibuy_kv WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres: get %q: %w", key, err)
	}
	return value, true, nil
}

func (ps *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO slibuy_kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("postgres: put %q: %w", key, err)
	}
	return nil
}

func (ps *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := ps.db.ExecContext(ctx, "DELETE FROM slibuy_kv WHERE key = $1", key); err != nil {
		return fmt.Errorf("postgres: delete %q: %w", key, err)
	}
	return nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
