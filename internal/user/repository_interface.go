package user

import (
	"context"

	"gymhub/internal/auth"
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByLogin(ctx context.Context, login string) (*User, error)
	// LockByID loads the user row with FOR UPDATE. Only meaningful inside a transaction.
	LockByID(ctx context.Context, id int) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]User, error)
	ListByRole(ctx context.Context, role auth.Role) ([]User, error)
	Update(ctx context.Context, u *User) (*User, error)
	Delete(ctx context.Context, id int) error
}
