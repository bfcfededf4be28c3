// Package pgx implements the graph store on PostgreSQL.
package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBStore implements store.GraphStore using PostgreSQL. Entities and
// relationships live in relational tables; path queries run as recursive
// CTEs over the relationship table.
type GraphDBStore struct {
	conn pgxIConn
}

// NewGraphDBStore creates a graph store backed by the given connection pool.
func NewGraphDBStore(pool *pgxpool.Pool) *GraphDBStore {
	return &GraphDBStore{conn: pool}
}

// NewGraphDBStoreWithConnection creates a graph store using an existing
// connection. Useful for running inside a transaction or for tests.
func NewGraphDBStoreWithConnection(conn pgxIConn) *GraphDBStore {
	return &GraphDBStore{conn: conn}
}
