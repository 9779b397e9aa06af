package session

import (
	"context"
	"errors"
	"time"

	"gymhub/internal/db"
)

var ErrSessionNotFound = errors.New("training session not found")

const sessionColumns = `id, trainer_id, member_id, type, status, scheduled_date, duration, start_time, end_time,
	price_cents, notes, location, created_at, updated_at`

type repository struct {
	db db.DBTX
}

func NewRepository(db db.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) get(ctx context.Context, query string, args ...interface{}) (*Session, error) {
	var s Session
	if err := r.db.GetContext(ctx, &s, query, args...); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]Session, error) {
	var sessions []Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repository) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *repository) Create(ctx context.Context, s *Session) (*Session, error) {
	query := `
		INSERT INTO training_sessions (trainer_id, member_id, type, status, scheduled_date, duration, price_cents, notes, location)
		VALUES ($1, $2, $3, 'SCHEDULED', $4, $5, $6, $7, $8)
		RETURNING ` + sessionColumns

	return r.get(ctx, query, s.TrainerID, s.MemberID, s.Type, s.ScheduledDate, s.Duration, s.PriceCents, s.Notes, s.Location)
}

func (r *repository) FindByID(ctx context.Context, id int) (*Session, error) {
	return r.get(ctx, `SELECT `+sessionColumns+` FROM training_sessions WHERE id = $1`, id)
}

func (r *repository) HasConflict(ctx context.Context, trainerID int, start, end time.Time, excludeID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM training_sessions
			WHERE trainer_id = $1
			  AND status <> 'CANCELLED'
			  AND id <> $4
			  AND scheduled_date < $3
			  AND scheduled_date + make_interval(mins => duration) > $2
		)
	`
	return db.Exists(ctx, r.db, query, trainerID, start, end, excludeID)
}

func (r *repository) List(ctx context.Context) ([]Session, error) {
	return r.list(ctx, `SELECT `+sessionColumns+` FROM training_sessions ORDER BY scheduled_date DESC`)
}

func (r *repository) ListByTrainer(ctx context.Context, trainerID int) ([]Session, error) {
	return r.list(ctx, `SELECT `+sessionColumns+` FROM training_sessions WHERE trainer_id = $1 ORDER BY scheduled_date DESC`, trainerID)
}

func (r *repository) ListByMember(ctx context.Context, memberID int) ([]Session, error) {
	return r.list(ctx, `SELECT `+sessionColumns+` FROM training_sessions WHERE member_id = $1 ORDER BY scheduled_date DESC`, memberID)
}

func (r *repository) ListUpcoming(ctx context.Context, now time.Time) ([]Session, error) {
	return r.list(ctx, `
		SELECT `+sessionColumns+`
		FROM training_sessions
		WHERE scheduled_date >= $1 AND status = 'SCHEDULED'
		ORDER BY scheduled_date`, now)
}

func (r *repository) ListUpcomingByTrainer(ctx context.Context, trainerID int, now time.Time) ([]Session, error) {
	return r.list(ctx, `
		SELECT `+sessionColumns+`
		FROM training_sessions
		WHERE trainer_id = $1 AND scheduled_date >= $2 AND status = 'SCHEDULED'
		ORDER BY scheduled_date`, trainerID, now)
}

func (r *repository) ListUpcomingByMember(ctx context.Context, memberID int, now time.Time) ([]Session, error) {
	return r.list(ctx, `
		SELECT `+sessionColumns+`
		FROM training_sessions
		WHERE member_id = $1 AND scheduled_date >= $2 AND status = 'SCHEDULED'
		ORDER BY scheduled_date`, memberID, now)
}

func (r *repository) ListByDateRange(ctx context.Context, start, end time.Time) ([]Session, error) {
	return r.list(ctx, `
		SELECT `+sessionColumns+`
		FROM training_sessions
		WHERE scheduled_date BETWEEN $1 AND $2
		ORDER BY scheduled_date`, start, end)
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Session, error) {
	return r.list(ctx, `SELECT `+sessionColumns+` FROM training_sessions WHERE status = $1 ORDER BY scheduled_date`, status)
}

func (r *repository) ListScheduledByType(ctx context.Context, t Type) ([]Session, error) {
	return r.list(ctx, `
		SELECT `+sessionColumns+`
		FROM training_sessions
		WHERE type = $1 AND status = 'SCHEDULED'
		ORDER BY scheduled_date`, t)
}

func (r *repository) CountCompletedByTrainer(ctx context.Context, trainerID int) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM training_sessions WHERE trainer_id = $1 AND status = 'COMPLETED'`, trainerID)
}

func (r *repository) CountCompletedByMember(ctx context.Context, memberID int) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM training_sessions WHERE member_id = $1 AND status = 'COMPLETED'`, memberID)
}

func (r *repository) Update(ctx context.Context, s *Session) (*Session, error) {
	return r.get(ctx, `
		UPDATE training_sessions
		SET type = $2, scheduled_date = $3, duration = $4, price_cents = $5, notes = $6, location = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING `+sessionColumns,
		s.ID, s.Type, s.ScheduledDate, s.Duration, s.PriceCents, s.Notes, s.Location)
}

func (r *repository) Reschedule(ctx context.Context, id int, scheduledDate time.Time) (*Session, error) {
	return r.get(ctx, `
		UPDATE training_sessions
		SET scheduled_date = $2, status = 'SCHEDULED', updated_at = NOW()
		WHERE id = $1
		RETURNING `+sessionColumns, id, scheduledDate)
}

func (r *repository) UpdateStatus(ctx context.Context, id int, status Status, startTime, endTime *time.Time) (*Session, error) {
	return r.get(ctx, `
		UPDATE training_sessions
		SET status = $2,
		    start_time = COALESCE($3, start_time),
		    end_time = COALESCE($4, end_time),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+sessionColumns, id, status, startTime, endTime)
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM training_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}
