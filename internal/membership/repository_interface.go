package membership

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, m *Membership) (*Membership, error)
	FindByID(ctx context.Context, id int) (*Membership, error)
	// HasActive reports an ACTIVE membership of the user ending after now,
	// other than excludeID.
	HasActive(ctx context.Context, userID int, now time.Time, excludeID int) (bool, error)
	List(ctx context.Context) ([]Membership, error)
	ListByUser(ctx context.Context, userID int) ([]Membership, error)
	ListActiveByUser(ctx context.Context, userID int, now time.Time) ([]Membership, error)
	ListByStatus(ctx context.Context, status Status) ([]Membership, error)
	ListByType(ctx context.Context, t Type) ([]Membership, error)
	ListExpiringBetween(ctx context.Context, start, end time.Time) ([]Membership, error)
	ListExpired(ctx context.Context, now time.Time) ([]Membership, error)
	CountActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, m *Membership) (*Membership, error)
	UpdateStatus(ctx context.Context, id int, status Status) (*Membership, error)
	Renew(ctx context.Context, id int, endDate time.Time) (*Membership, error)
	// ExpireOverdue marks every ACTIVE membership ended before now as EXPIRED.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	Delete(ctx context.Context, id int) error
}
