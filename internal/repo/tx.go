package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Transactor runs a unit of work against repositories that share one
// transaction. The transaction commits when fn returns nil and rolls back
// otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(bookmarks BookmarkRepo, tags TagRepo) error) error
}

// beginner is satisfied by *pgxpool.Pool and pgx.Tx. A pgx.Tx begins a
// savepoint, so tests can run a Transactor inside their rollback transaction.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgTransactor struct {
	db beginner
}

// NewTransactor constructs a Transactor that begins its transactions on db.
func NewTransactor(db beginner) Transactor {
	return &pgTransactor{db: db}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(bookmarks BookmarkRepo, tags TagRepo) error) error {
	err := pgx.BeginFunc(ctx, t.db, func(tx pgx.Tx) error {
		return fn(NewBookmarkRepo(tx), NewTagRepo(tx))
	})
	if err != nil {
		return fmt.Errorf("repo.Transactor.WithinTx: %w", err)
	}
	return nil
}
