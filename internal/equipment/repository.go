package equipment

import (
	"context"
	"errors"
	"time"

	"gymhub/internal/db"
)

var ErrEquipmentNotFound = errors.New("equipment not found")

const equipmentColumns = `id, name, description, type, status, purchase_price_cents, purchase_date,
	last_maintenance_date, next_maintenance_date, location, serial_number, warranty_expiry, created_at, updated_at`

type repository struct {
	db db.DBTX
}

func NewRepository(db db.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *Equipment) (*Equipment, error) {
	query := `
		INSERT INTO equipment (name, description, type, status, purchase_price_cents, purchase_date,
			last_maintenance_date, next_maintenance_date, location, serial_number, warranty_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + equipmentColumns

	return r.get(ctx, query,
		e.Name, e.Description, e.Type, e.Status, e.PurchasePriceCents, e.PurchaseDate,
		e.LastMaintenanceDate, e.NextMaintenanceDate, e.Location, e.SerialNumber, e.WarrantyExpiry)
}

func (r *repository) get(ctx context.Context, query string, args ...interface{}) (*Equipment, error) {
	var e Equipment
	if err := r.db.GetContext(ctx, &e, query, args...); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]Equipment, error) {
	var items []Equipment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*Equipment, error) {
	return r.get(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE id = $1`, id)
}

func (r *repository) List(ctx context.Context) ([]Equipment, error) {
	return r.list(ctx, `SELECT `+equipmentColumns+` FROM equipment ORDER BY id`)
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Equipment, error) {
	return r.list(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE status = $1 ORDER BY id`, status)
}

func (r *repository) ListByType(ctx context.Context, t Type) ([]Equipment, error) {
	return r.list(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE type = $1 ORDER BY id`, t)
}

func (r *repository) ListByLocation(ctx context.Context, location string) ([]Equipment, error) {
	return r.list(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE location = $1 ORDER BY id`, location)
}

func (r *repository) ListNeedingMaintenance(ctx context.Context, now time.Time) ([]Equipment, error) {
	return r.list(ctx, `
		SELECT `+equipmentColumns+`
		FROM equipment
		WHERE status = 'MAINTENANCE' AND next_maintenance_date <= $1
		ORDER BY next_maintenance_date, id`, now)
}

func (r *repository) ListWarrantyExpiring(ctx context.Context, before time.Time) ([]Equipment, error) {
	return r.list(ctx, `
		SELECT `+equipmentColumns+`
		FROM equipment
		WHERE warranty_expiry <= $1
		ORDER BY warranty_expiry, id`, before)
}

func (r *repository) ListPurchasedBetween(ctx context.Context, start, end time.Time) ([]Equipment, error) {
	return r.list(ctx, `
		SELECT `+equipmentColumns+`
		FROM equipment
		WHERE purchase_date BETWEEN $1 AND $2
		ORDER BY purchase_date, id`, start, end)
}

func (r *repository) Search(ctx context.Context, term string) ([]Equipment, error) {
	return r.list(ctx, `
		SELECT `+equipmentColumns+`
		FROM equipment
		WHERE name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
		ORDER BY id`, term)
}

func (r *repository) CountByStatus(ctx context.Context, status Status) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM equipment WHERE status = $1`, status)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) Update(ctx context.Context, e *Equipment) (*Equipment, error) {
	query := `
		UPDATE equipment
		SET name = $2, description = $3, type = $4, purchase_price_cents = $5, purchase_date = $6,
			last_maintenance_date = $7, next_maintenance_date = $8, location = $9, serial_number = $10,
			warranty_expiry = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + equipmentColumns

	return r.get(ctx, query,
		e.ID, e.Name, e.Description, e.Type, e.PurchasePriceCents, e.PurchaseDate,
		e.LastMaintenanceDate, e.NextMaintenanceDate, e.Location, e.SerialNumber, e.WarrantyExpiry)
}

func (r *repository) UpdateStatus(ctx context.Context, id int, status Status) (*Equipment, error) {
	return r.get(ctx, `
		UPDATE equipment SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+equipmentColumns, id, status)
}

func (r *repository) ScheduleMaintenance(ctx context.Context, id int, last, next time.Time) (*Equipment, error) {
	return r.get(ctx, `
		UPDATE equipment
		SET status = 'MAINTENANCE', last_maintenance_date = $2, next_maintenance_date = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+equipmentColumns, id, last, next)
}

func (r *repository) CompleteMaintenance(ctx context.Context, id int, at time.Time) (*Equipment, error) {
	return r.get(ctx, `
		UPDATE equipment
		SET status = 'AVAILABLE', last_maintenance_date = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+equipmentColumns, id, at)
}

func (r *repository) SetWarrantyExpiry(ctx context.Context, id int, expiry time.Time) (*Equipment, error) {
	return r.get(ctx, `
		UPDATE equipment SET warranty_expiry = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+equipmentColumns, id, expiry)
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrEquipmentNotFound
	}

	return nil
}
