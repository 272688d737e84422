// Package postgres implements the entity store on PostgreSQL. Each entity
// collection is a table; dotted field paths map to columns joined by "__".
// Felts and hex values are bytea, so byte order is numeric order.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/survivor-labs/survivor-indexer/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Postgres store.
type Config struct {
	DSN      string
	MaxConns int32
}

// querier is the subset of pgxpool.Pool used by Store.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// Store implements db.Store via a pgx connection pool.
type Store struct {
	pool querier
}

// NewStore creates a Postgres store.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Find runs a snapshot read and returns rows as records keyed by field path.
func (s *Store) Find(ctx context.Context, q *db.FindQuery) ([]db.Record, error) {
	query, args, err := BuildFind(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(db.OpFind, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []db.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		rec := make(db.Record, len(fields))
		for i, fd := range fields {
			rec[FieldPath(fd.Name)] = values[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(db.OpFind, err)
	}
	return out, nil
}

// undefinedTable is the SQLSTATE for a missing relation.
const undefinedTable = "42P01"

func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %s", db.ErrCollectionNotFound, pgErr.Message)}
	}
	return &db.Error{Op: op, Err: err}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}
