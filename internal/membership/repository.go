package membership

import (
	"context"
	"errors"
	"time"

	"gymhub/internal/db"
)

var ErrMembershipNotFound = errors.New("membership not found")

const membershipColumns = `id, user_id, type, status, price_cents, start_date, end_date, description, created_at, updated_at`

type repository struct {
	db db.DBTX
}

func NewRepository(db db.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) get(ctx context.Context, query string, args ...interface{}) (*Membership, error) {
	var m Membership
	if err := r.db.GetContext(ctx, &m, query, args...); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]Membership, error) {
	var ms []Membership
	if err := r.db.SelectContext(ctx, &ms, query, args...); err != nil {
		return nil, err
	}
	return ms, nil
}

func (r *repository) Create(ctx context.Context, m *Membership) (*Membership, error) {
	return r.get(ctx, `
		INSERT INTO memberships (user_id, type, status, price_cents, start_date, end_date, description)
		VALUES ($1, $2, 'ACTIVE', $3, $4, $5, $6)
		RETURNING `+membershipColumns,
		m.UserID, m.Type, m.PriceCents, m.StartDate, m.EndDate, m.Description)
}

func (r *repository) FindByID(ctx context.Context, id int) (*Membership, error) {
	return r.get(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, id)
}

func (r *repository) HasActive(ctx context.Context, userID int, now time.Time, excludeID int) (bool, error) {
	return db.Exists(ctx, r.db, `
		SELECT EXISTS(
			SELECT 1 FROM memberships
			WHERE user_id = $1 AND status = 'ACTIVE' AND end_date > $2 AND id <> $3
		)`, userID, now, excludeID)
}

func (r *repository) List(ctx context.Context) ([]Membership, error) {
	return r.list(ctx, `SELECT `+membershipColumns+` FROM memberships ORDER BY created_at DESC`)
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Membership, error) {
	return r.list(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE user_id = $1 ORDER BY start_date DESC`, userID)
}

func (r *repository) ListActiveByUser(ctx context.Context, userID int, now time.Time) ([]Membership, error) {
	return r.list(ctx, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE user_id = $1 AND status = 'ACTIVE' AND end_date > $2
		ORDER BY end_date DESC`, userID, now)
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Membership, error) {
	return r.list(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE status = $1 ORDER BY end_date`, status)
}

func (r *repository) ListByType(ctx context.Context, t Type) ([]Membership, error) {
	return r.list(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE type = $1 ORDER BY end_date`, t)
}

func (r *repository) ListExpiringBetween(ctx context.Context, start, end time.Time) ([]Membership, error) {
	return r.list(ctx, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE status = 'ACTIVE' AND end_date BETWEEN $1 AND $2
		ORDER BY end_date`, start, end)
}

func (r *repository) ListExpired(ctx context.Context, now time.Time) ([]Membership, error) {
	return r.list(ctx, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE status = 'ACTIVE' AND end_date < $1
		ORDER BY end_date`, now)
}

func (r *repository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM memberships WHERE status = 'ACTIVE'`); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *repository) Update(ctx context.Context, m *Membership) (*Membership, error) {
	return r.get(ctx, `
		UPDATE memberships
		SET type = $2, price_cents = $3, start_date = $4, end_date = $5, description = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+membershipColumns,
		m.ID, m.Type, m.PriceCents, m.StartDate, m.EndDate, m.Description)
}

func (r *repository) UpdateStatus(ctx context.Context, id int, status Status) (*Membership, error) {
	return r.get(ctx, `
		UPDATE memberships SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+membershipColumns, id, status)
}

func (r *repository) Renew(ctx context.Context, id int, endDate time.Time) (*Membership, error) {
	return r.get(ctx, `
		UPDATE memberships SET end_date = $2, status = 'ACTIVE', updated_at = NOW()
		WHERE id = $1
		RETURNING `+membershipColumns, id, endDate)
}

func (r *repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE memberships SET status = 'EXPIRED', updated_at = NOW()
		WHERE status = 'ACTIVE' AND end_date < $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrMembershipNotFound
	}

	return nil
}
