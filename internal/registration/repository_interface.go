package registration

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, memberID, gymClassID int, notes string) (*Registration, error)
	FindByID(ctx context.Context, id int) (*Registration, error)
	// LockByID loads the registration with FOR UPDATE. Only meaningful inside a transaction.
	LockByID(ctx context.Context, id int) (*Registration, error)
	HasActive(ctx context.Context, memberID, gymClassID int) (bool, error)
	CountRegistered(ctx context.Context, gymClassID int) (int64, error)
	CountAttendedByMember(ctx context.Context, memberID int) (int64, error)
	List(ctx context.Context) ([]Registration, error)
	ListByMember(ctx context.Context, memberID int) ([]Registration, error)
	ListUpcomingByMember(ctx context.Context, memberID int) ([]RegistrationWithClass, error)
	ListByClass(ctx context.Context, gymClassID int) ([]Registration, error)
	ListByStatus(ctx context.Context, status Status) ([]Registration, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]Registration, error)
	UpdateStatus(ctx context.Context, id int, status Status, attendanceDate *time.Time) (*Registration, error)
	Delete(ctx context.Context, id int) error
}

// AnalyticsRepository aggregates registrations for reporting.
type AnalyticsRepository interface {
	StatsByDay(ctx context.Context, from, to time.Time) ([]StatsByDay, error)
	StatsByClass(ctx context.Context, from, to time.Time) ([]StatsByClass, error)
}
