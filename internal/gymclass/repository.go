package gymclass

import (
	"context"
	"errors"

	"gymhub/internal/db"
)

var ErrGymClassNotFound = errors.New("gym class not found")

const classColumns = `id, name, description, type, status, trainer_id, start_time, end_time, max_capacity,
	current_enrollment, price_cents, location, schedule_days, created_at, updated_at`

type repository struct {
	db db.DBTX
}

func NewRepository(db db.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, g *GymClass) (*GymClass, error) {
	query := `
		INSERT INTO gym_classes (name, description, type, status, trainer_id, start_time, end_time,
			max_capacity, current_enrollment, price_cents, location, schedule_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + classColumns

	var created GymClass
	err := r.db.GetContext(ctx, &created, query,
		g.Name, g.Description, g.Type, g.Status, g.TrainerID, g.StartTime, g.EndTime,
		g.MaxCapacity, g.CurrentEnrollment, g.PriceCents, g.Location, g.ScheduleDays)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) get(ctx context.Context, query string, args ...interface{}) (*GymClass, error) {
	var g GymClass
	if err := r.db.GetContext(ctx, &g, query, args...); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]GymClass, error) {
	var classes []GymClass
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*GymClass, error) {
	return r.get(ctx, `SELECT `+classColumns+` FROM gym_classes WHERE id = $1`, id)
}

func (r *repository) LockByID(ctx context.Context, id int) (*GymClass, error) {
	return r.get(ctx, `SELECT `+classColumns+` FROM gym_classes WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) List(ctx context.Context) ([]GymClass, error) {
	return r.list(ctx, `SELECT `+classColumns+` FROM gym_classes ORDER BY id`)
}

func (r *repository) ListAvailable(ctx context.Context) ([]GymClass, error) {
	return r.list(ctx, `
		SELECT `+classColumns+`
		FROM gym_classes
		WHERE status = 'ACTIVE' AND current_enrollment < max_capacity
		ORDER BY start_time, id`)
}

func (r *repository) ListFull(ctx context.Context) ([]GymClass, error) {
	return r.list(ctx, `
		SELECT `+classColumns+`
		FROM gym_classes
		WHERE status = 'FULL' OR (status = 'ACTIVE' AND current_enrollment >= max_capacity)
		ORDER BY id`)
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]GymClass, error) {
	return r.list(ctx, `SELECT `+classColumns+` FROM gym_classes WHERE status = $1 ORDER BY id`, status)
}

func (r *repository) ListByTrainer(ctx context.Context, trainerID int, activeOnly bool) ([]GymClass, error) {
	return r.list(ctx, `
		SELECT `+classColumns+`
		FROM gym_classes
		WHERE trainer_id = $1 AND ($2 = FALSE OR status = 'ACTIVE')
		ORDER BY start_time, id`, trainerID, activeOnly)
}

func (r *repository) ListByType(ctx context.Context, classType ClassType, activeOnly bool) ([]GymClass, error) {
	return r.list(ctx, `
		SELECT `+classColumns+`
		FROM gym_classes
		WHERE type = $1 AND ($2 = FALSE OR status = 'ACTIVE')
		ORDER BY start_time, id`, classType, activeOnly)
}

func (r *repository) ListByLocation(ctx context.Context, location string) ([]GymClass, error) {
	return r.list(ctx, `SELECT `+classColumns+` FROM gym_classes WHERE location = $1 ORDER BY start_time, id`, location)
}

func (r *repository) ListByDay(ctx context.Context, day string) ([]GymClass, error) {
	return r.list(ctx, `
		SELECT `+classColumns+`
		FROM gym_classes
		WHERE schedule_days ILIKE '%' || $1 || '%' AND status = 'ACTIVE'
		ORDER BY start_time, id`, day)
}

func (r *repository) ListByTimeRange(ctx context.Context, start, end string) ([]GymClass, error) {
	return r.list(ctx, `
		SELECT `+classColumns+`
		FROM gym_classes
		WHERE start_time BETWEEN $1 AND $2 AND status = 'ACTIVE'
		ORDER BY start_time, id`, start, end)
}

func (r *repository) Search(ctx context.Context, term string) ([]GymClass, error) {
	return r.list(ctx, `
		SELECT `+classColumns+`
		FROM gym_classes
		WHERE name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
		ORDER BY id`, term)
}

func (r *repository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM gym_classes WHERE status = 'ACTIVE'`)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) Update(ctx context.Context, g *GymClass) (*GymClass, error) {
	query := `
		UPDATE gym_classes
		SET name = $2, description = $3, type = $4, status = $5, trainer_id = $6, start_time = $7, end_time = $8,
			max_capacity = $9, price_cents = $10, location = $11, schedule_days = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + classColumns

	var updated GymClass
	err := r.db.GetContext(ctx, &updated, query,
		g.ID, g.Name, g.Description, g.Type, g.Status, g.TrainerID, g.StartTime, g.EndTime,
		g.MaxCapacity, g.PriceCents, g.Location, g.ScheduleDays)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int, status Status) (*GymClass, error) {
	return r.get(ctx, `
		UPDATE gym_classes SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+classColumns, id, status)
}

func (r *repository) SaveEnrollment(ctx context.Context, g *GymClass) error {
	query := `
		UPDATE gym_classes
		SET current_enrollment = $2, status = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, g.ID, g.CurrentEnrollment, g.Status)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrGymClassNotFound
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM gym_classes WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrGymClassNotFound
	}

	return nil
}
