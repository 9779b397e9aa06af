package gymclass

import "context"

type Repository interface {
	Create(ctx context.Context, g *GymClass) (*GymClass, error)
	FindByID(ctx context.Context, id int) (*GymClass, error)
	// LockByID loads the class with FOR UPDATE. Only meaningful inside a transaction.
	LockByID(ctx context.Context, id int) (*GymClass, error)
	List(ctx context.Context) ([]GymClass, error)
	ListAvailable(ctx context.Context) ([]GymClass, error)
	ListFull(ctx context.Context) ([]GymClass, error)
	ListByStatus(ctx context.Context, status Status) ([]GymClass, error)
	ListByTrainer(ctx context.Context, trainerID int, activeOnly bool) ([]GymClass, error)
	ListByType(ctx context.Context, classType ClassType, activeOnly bool) ([]GymClass, error)
	ListByLocation(ctx context.Context, location string) ([]GymClass, error)
	ListByDay(ctx context.Context, day string) ([]GymClass, error)
	ListByTimeRange(ctx context.Context, start, end string) ([]GymClass, error)
	Search(ctx context.Context, term string) ([]GymClass, error)
	CountActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, g *GymClass) (*GymClass, error)
	UpdateStatus(ctx context.Context, id int, status Status) (*GymClass, error)
	// SaveEnrollment is the only write path for current_enrollment.
	SaveEnrollment(ctx context.Context, g *GymClass) error
	Delete(ctx context.Context, id int) error
}
