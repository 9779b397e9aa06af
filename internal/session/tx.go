package session

import (
	"context"

	"github.com/jmoiron/sqlx"

	"gymhub/internal/db"
	"gymhub/internal/user"
)

// Store is the set of repositories a scheduling change runs against.
type Store struct {
	Sessions Repository
	Users    user.Repository
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
			Sessions: NewRepository(tx),
			Users:    user.NewRepository(tx),
		})
	})
}
