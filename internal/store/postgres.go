package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// psql builds $n-placeholder queries for PostgreSQL.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Postgres implements Store on top of a pgx pool or transaction.
type Postgres struct {
	db Querier
}

// NewPostgres wraps a pgx pool (or anything satisfying Querier).
func NewPostgres(db Querier) *Postgres {
	return &Postgres{db: db}
}

// InTx runs fn against a transaction-scoped store. Display-name uniqueness
// is deliberately not enforced by the schema — a partial sync may commit
// duplicates, and the deduplicator restores the invariant afterwards.
func (p *Postgres) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Postgres{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// exec builds and runs a squirrel statement.
func (p *Postgres) exec(ctx context.Context, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := p.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// noRows normalizes "not found" to (nil, nil) semantics.
func noRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }
