package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	platformerrors "github.com/jmgilman/go/errors"

	"hotcache/internal/config"
)

const loadTimeout = 5 * time.Second

type Store struct {
	pool *pgxpool.Pool
}

// EntryRow is one key/value pair as stored upstream.
type EntryRow struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func New(ctx context.Context, cfg config.Config) (*Store, error) {
	return Open(ctx, cfg.DSN(), int32(cfg.Postgres.MaxOpenConns), int32(cfg.Postgres.MaxIdleConns))
}

func Open(ctx context.Context, dsn string, maxConns, minConns int32) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	if minConns > 0 && minConns <= poolCfg.MaxConns {
		poolCfg.MinConns = minConns
	}
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("pgx pool is nil")
	}
	return s.pool.Ping(ctx)
}

// LoadEntries loads every entry, ordered by key.
func (s *Store) LoadEntries(ctx context.Context) ([]EntryRow, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT key, value, updated_at
		FROM entries
		ORDER BY key
	`)
	if err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeDatabase, "query entries")
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[EntryRow])
	if err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeDatabase, "scan entries")
	}
	return out, nil
}
