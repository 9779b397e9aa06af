package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, s *Session) (*Session, error)
	FindByID(ctx context.Context, id int) (*Session, error)
	// HasConflict reports a non-cancelled session of the trainer overlapping
	// [start, end). excludeID skips one session, 0 skips none.
	HasConflict(ctx context.Context, trainerID int, start, end time.Time, excludeID int) (bool, error)
	List(ctx context.Context) ([]Session, error)
	ListByTrainer(ctx context.Context, trainerID int) ([]Session, error)
	ListByMember(ctx context.Context, memberID int) ([]Session, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]Session, error)
	ListUpcomingByTrainer(ctx context.Context, trainerID int, now time.Time) ([]Session, error)
	ListUpcomingByMember(ctx context.Context, memberID int, now time.Time) ([]Session, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]Session, error)
	ListByStatus(ctx context.Context, status Status) ([]Session, error)
	ListScheduledByType(ctx context.Context, t Type) ([]Session, error)
	CountCompletedByTrainer(ctx context.Context, trainerID int) (int64, error)
	CountCompletedByMember(ctx context.Context, memberID int) (int64, error)
	Update(ctx context.Context, s *Session) (*Session, error)
	Reschedule(ctx context.Context, id int, scheduledDate time.Time) (*Session, error)
	UpdateStatus(ctx context.Context, id int, status Status, startTime, endTime *time.Time) (*Session, error)
	Delete(ctx context.Context, id int) error
}
