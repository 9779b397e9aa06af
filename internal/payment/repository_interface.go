package payment

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) (*Payment, error)
	FindByID(ctx context.Context, id int) (*Payment, error)
	List(ctx context.Context) ([]Payment, error)
	ListByUser(ctx context.Context, userID int) ([]Payment, error)
	ListCompletedByUser(ctx context.Context, userID int) ([]Payment, error)
	ListByStatus(ctx context.Context, status Status) ([]Payment, error)
	ListByType(ctx context.Context, t Type) ([]Payment, error)
	ListByMethod(ctx context.Context, m Method) ([]Payment, error)
	// ListPaidBetween filters on payment_date; userID 0 means every user.
	ListPaidBetween(ctx context.Context, userID int, start, end time.Time) ([]Payment, error)
	ListOverdue(ctx context.Context, now time.Time) ([]Payment, error)
	ListHighValue(ctx context.Context, minCents int64) ([]Payment, error)
	TotalPaidByUser(ctx context.Context, userID int) (int64, error)
	Revenue(ctx context.Context, start, end time.Time) (int64, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
	Update(ctx context.Context, p *Payment) (*Payment, error)
	// Transition moves the payment from t.From to t.To in one conditional
	// update. It returns sql.ErrNoRows when the payment is missing or is not
	// in t.From.
	Transition(ctx context.Context, id int, t Transition, paymentDate *time.Time, notes *string) (*Payment, error)
	Delete(ctx context.Context, id int) error
}
