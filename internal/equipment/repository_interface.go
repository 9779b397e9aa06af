package equipment

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e *Equipment) (*Equipment, error)
	FindByID(ctx context.Context, id int) (*Equipment, error)
	List(ctx context.Context) ([]Equipment, error)
	ListByStatus(ctx context.Context, status Status) ([]Equipment, error)
	ListByType(ctx context.Context, t Type) ([]Equipment, error)
	ListByLocation(ctx context.Context, location string) ([]Equipment, error)
	// ListNeedingMaintenance returns MAINTENANCE equipment whose next
	// maintenance date is at or before now.
	ListNeedingMaintenance(ctx context.Context, now time.Time) ([]Equipment, error)
	ListWarrantyExpiring(ctx context.Context, before time.Time) ([]Equipment, error)
	ListPurchasedBetween(ctx context.Context, start, end time.Time) ([]Equipment, error)
	Search(ctx context.Context, term string) ([]Equipment, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
	Update(ctx context.Context, e *Equipment) (*Equipment, error)
	UpdateStatus(ctx context.Context, id int, status Status) (*Equipment, error)
	ScheduleMaintenance(ctx context.Context, id int, last, next time.Time) (*Equipment, error)
	CompleteMaintenance(ctx context.Context, id int, at time.Time) (*Equipment, error)
	SetWarrantyExpiry(ctx context.Context, id int, expiry time.Time) (*Equipment, error)
	Delete(ctx context.Context, id int) error
}
