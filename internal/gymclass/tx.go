package gymclass

import (
	"context"

	"github.com/jmoiron/sqlx"

	"gymhub/internal/db"
	"gymhub/internal/user"
)

// Store groups the repositories a class mutation touches, bound to one transaction.
type Store struct {
	Classes Repository
	Users   user.Repository
}

type Transactor interface {
	InTx(ctx context.Context, fn func(Store) error) error
}

type sqlTransactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) InTx(ctx context.Context, fn func(Store) error) error {
	return db.InTx(ctx, t.db, func(tx *sqlx.Tx) error {
		return fn(Store{
			Classes: NewRepository(tx),
			Users:   user.NewRepository(tx),
		})
	})
}
