package registration

import (
	"context"
	"errors"
	"time"

	"gymhub/internal/db"
)

var ErrRegistrationNotFound = errors.New("registration not found")

// Partial unique index over (member_id, gym_class_id) WHERE status <> 'CANCELLED'.
const constraintActiveRegistration = "uq_class_registrations_active"

const registrationColumns = `id, member_id, gym_class_id, status, registration_date, attendance_date, notes, created_at, updated_at`

type repository struct {
	db db.DBTX
}

func NewRepository(db db.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, memberID, gymClassID int, notes string) (*Registration, error) {
	query := `
		INSERT INTO class_registrations (member_id, gym_class_id, status, registration_date, notes)
		VALUES ($1, $2, 'REGISTERED', NOW(), $3)
		RETURNING ` + registrationColumns

	var reg Registration
	err := r.db.GetContext(ctx, &reg, query, memberID, gymClassID, notes)
	if err != nil {
		return nil, err
	}

	return &reg, nil
}

func (r *repository) get(ctx context.Context, query string, args ...interface{}) (*Registration, error) {
	var reg Registration
	if err := r.db.GetContext(ctx, &reg, query, args...); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]Registration, error) {
	var regs []Registration
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*Registration, error) {
	return r.get(ctx, `SELECT `+registrationColumns+` FROM class_registrations WHERE id = $1`, id)
}

func (r *repository) LockByID(ctx context.Context, id int) (*Registration, error) {
	return r.get(ctx, `SELECT `+registrationColumns+` FROM class_registrations WHERE id = $1 FOR UPDATE`, id)
}

// HasActive reports whether a non-cancelled registration links the member and
// class. Attended and no-show rows still hold their spot.
func (r *repository) HasActive(ctx context.Context, memberID, gymClassID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM class_registrations
			WHERE member_id = $1 AND gym_class_id = $2 AND status <> 'CANCELLED'
		)
	`
	return db.Exists(ctx, r.db, query, memberID, gymClassID)
}

func (r *repository) CountRegistered(ctx context.Context, gymClassID int) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM class_registrations
		WHERE gym_class_id = $1 AND status = 'REGISTERED'`, gymClassID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CountAttendedByMember(ctx context.Context, memberID int) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM class_registrations
		WHERE member_id = $1 AND status = 'ATTENDED'`, memberID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) List(ctx context.Context) ([]Registration, error) {
	return r.list(ctx, `SELECT `+registrationColumns+` FROM class_registrations ORDER BY registration_date DESC`)
}

func (r *repository) ListByMember(ctx context.Context, memberID int) ([]Registration, error) {
	return r.list(ctx, `
		SELECT `+registrationColumns+`
		FROM class_registrations
		WHERE member_id = $1
		ORDER BY registration_date DESC`, memberID)
}

func (r *repository) ListUpcomingByMember(ctx context.Context, memberID int) ([]RegistrationWithClass, error) {
	query := `
		SELECT
			cr.id,
			cr.member_id,
			cr.gym_class_id,
			cr.status,
			cr.registration_date,
			cr.attendance_date,
			cr.notes,
			cr.created_at,
			cr.updated_at,
			gc.name AS class_name,
			gc.start_time AS class_start_time,
			gc.end_time AS class_end_time,
			gc.schedule_days
		FROM class_registrations cr
		JOIN gym_classes gc ON cr.gym_class_id = gc.id
		WHERE cr.member_id = $1 AND cr.status = 'REGISTERED' AND gc.status IN ('ACTIVE', 'FULL')
		ORDER BY gc.start_time, cr.id
	`

	var regs []RegistrationWithClass
	if err := r.db.SelectContext(ctx, &regs, query, memberID); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *repository) ListByClass(ctx context.Context, gymClassID int) ([]Registration, error) {
	return r.list(ctx, `
		SELECT `+registrationColumns+`
		FROM class_registrations
		WHERE gym_class_id = $1
		ORDER BY registration_date`, gymClassID)
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Registration, error) {
	return r.list(ctx, `
		SELECT `+registrationColumns+`
		FROM class_registrations
		WHERE status = $1
		ORDER BY registration_date DESC`, status)
}

func (r *repository) ListByDateRange(ctx context.Context, start, end time.Time) ([]Registration, error) {
	return r.list(ctx, `
		SELECT `+registrationColumns+`
		FROM class_registrations
		WHERE registration_date BETWEEN $1 AND $2
		ORDER BY registration_date`, start, end)
}

func (r *repository) UpdateStatus(ctx context.Context, id int, status Status, attendanceDate *time.Time) (*Registration, error) {
	return r.get(ctx, `
		UPDATE class_registrations
		SET status = $2, attendance_date = COALESCE($3, attendance_date), updated_at = NOW()
		WHERE id = $1
		RETURNING `+registrationColumns, id, status, attendanceDate)
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM class_registrations WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}
