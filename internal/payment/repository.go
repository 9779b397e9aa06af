package payment

import (
	"context"
	"errors"
	"time"

	"gymhub/internal/db"
)

var ErrPaymentNotFound = errors.New("payment not found")

const paymentColumns = `id, user_id, type, method, status, amount_cents, description, due_date, payment_date,
	transaction_id, notes, created_at, updated_at`

type repository struct {
	db db.DBTX
}

func NewRepository(db db.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) get(ctx context.Context, query string, args ...interface{}) (*Payment, error) {
	var p Payment
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]Payment, error) {
	var payments []Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repository) sum(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) Create(ctx context.Context, p *Payment) (*Payment, error) {
	return r.get(ctx, `
		INSERT INTO payments (user_id, type, method, status, amount_cents, description, due_date, transaction_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+paymentColumns,
		p.UserID, p.Type, p.Method, p.Status, p.AmountCents, p.Description, p.DueDate, p.TransactionID, p.Notes)
}

func (r *repository) FindByID(ctx context.Context, id int) (*Payment, error) {
	return r.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *repository) List(ctx context.Context) ([]Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY created_at DESC, id DESC`)
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *repository) ListCompletedByUser(ctx context.Context, userID int) ([]Payment, error) {
	return r.list(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE user_id = $1 AND status = 'COMPLETED'
		ORDER BY payment_date DESC, id DESC`, userID)
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments WHERE status = $1 ORDER BY id`, status)
}

func (r *repository) ListByType(ctx context.Context, t Type) ([]Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments WHERE type = $1 ORDER BY id`, t)
}

func (r *repository) ListByMethod(ctx context.Context, m Method) ([]Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments WHERE method = $1 ORDER BY id`, m)
}

func (r *repository) ListPaidBetween(ctx context.Context, userID int, start, end time.Time) ([]Payment, error) {
	return r.list(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE ($1 = 0 OR user_id = $1) AND payment_date BETWEEN $2 AND $3
		ORDER BY payment_date, id`, userID, start, end)
}

func (r *repository) ListOverdue(ctx context.Context, now time.Time) ([]Payment, error) {
	return r.list(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE status = 'PENDING' AND due_date <= $1
		ORDER BY due_date, id`, now)
}

func (r *repository) ListHighValue(ctx context.Context, minCents int64) ([]Payment, error) {
	return r.list(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE status = 'COMPLETED' AND amount_cents >= $1
		ORDER BY amount_cents DESC, id`, minCents)
}

func (r *repository) TotalPaidByUser(ctx context.Context, userID int) (int64, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM payments
		WHERE user_id = $1 AND status = 'COMPLETED'`, userID)
}

func (r *repository) Revenue(ctx context.Context, start, end time.Time) (int64, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM payments
		WHERE status = 'COMPLETED' AND payment_date BETWEEN $1 AND $2`, start, end)
}

func (r *repository) CountByStatus(ctx context.Context, status Status) (int64, error) {
	return r.sum(ctx, `SELECT COUNT(*) FROM payments WHERE status = $1`, status)
}

func (r *repository) Update(ctx context.Context, p *Payment) (*Payment, error) {
	return r.get(ctx, `
		UPDATE payments
		SET type = $2, method = $3, amount_cents = $4, description = $5, due_date = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+paymentColumns,
		p.ID, p.Type, p.Method, p.AmountCents, p.Description, p.DueDate)
}

func (r *repository) Transition(ctx context.Context, id int, t Transition, paymentDate *time.Time, notes *string) (*Payment, error) {
	return r.get(ctx, `
		UPDATE payments
		SET status = $3,
			payment_date = COALESCE($4, payment_date),
			notes = COALESCE($5, notes),
			updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+paymentColumns,
		id, t.From, t.To, paymentDate, notes)
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}
