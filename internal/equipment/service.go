package equipment

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"gymhub/internal/apperror"
	"gymhub/internal/db"
	"gymhub/internal/logger"
)

const (
	msgEquipmentNotFound = "Equipment not found"
	msgSerialInUse       = "Serial number is already in use"

	constraintSerial = "equipment_serial_number_key"
)

type Service interface {
	Create(ctx context.Context, req EquipmentRequest) (*Equipment, error)
	GetByID(ctx context.Context, id int) (*Equipment, error)
	List(ctx context.Context) ([]Equipment, error)
	ListByStatus(ctx context.Context, status Status) ([]Equipment, error)
	ListByType(ctx context.Context, t Type) ([]Equipment, error)
	ListByLocation(ctx context.Context, location string) ([]Equipment, error)
	ListAvailable(ctx context.Context) ([]Equipment, error)
	ListNeedingMaintenance(ctx context.Context) ([]Equipment, error)
	ListWarrantyExpiring(ctx context.Context, before time.Time) ([]Equipment, error)
	ListPurchasedBetween(ctx context.Context, start, end time.Time) ([]Equipment, error)
	Search(ctx context.Context, term string) ([]Equipment, error)
	CountAvailable(ctx context.Context) (int64, error)
	CountInMaintenance(ctx context.Context) (int64, error)
	Update(ctx context.Context, id int, req EquipmentRequest) (*Equipment, error)
	UpdateStatus(ctx context.Context, id int, status Status) (*Equipment, error)
	ScheduleMaintenance(ctx context.Context, id int, next time.Time) (*Equipment, error)
	CompleteMaintenance(ctx context.Context, id int) (*Equipment, error)
	SetWarrantyExpiry(ctx context.Context, id int, expiry time.Time) (*Equipment, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *service) Create(ctx context.Context, req EquipmentRequest) (*Equipment, error) {
	e := req.toEquipment(s.now())
	e.Status = StatusAvailable

	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return nil, translateWriteError(err)
	}

	logger.Info("equipment created", "equipment_id", created.ID, "type", created.Type)
	return created, nil
}

func (s *service) GetByID(ctx context.Context, id int) (*Equipment, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateWriteError(err)
	}
	return e, nil
}

func (s *service) List(ctx context.Context) ([]Equipment, error) {
	return wrapList(s.repo.List(ctx))
}

func (s *service) ListByStatus(ctx context.Context, status Status) ([]Equipment, error) {
	return wrapList(s.repo.ListByStatus(ctx, status))
}

func (s *service) ListByType(ctx context.Context, t Type) ([]Equipment, error) {
	return wrapList(s.repo.ListByType(ctx, t))
}

func (s *service) ListByLocation(ctx context.Context, location string) ([]Equipment, error) {
	return wrapList(s.repo.ListByLocation(ctx, location))
}

func (s *service) ListAvailable(ctx context.Context) ([]Equipment, error) {
	return wrapList(s.repo.ListByStatus(ctx, StatusAvailable))
}

func (s *service) ListNeedingMaintenance(ctx context.Context) ([]Equipment, error) {
	return wrapList(s.repo.ListNeedingMaintenance(ctx, s.now()))
}

func (s *service) ListWarrantyExpiring(ctx context.Context, before time.Time) ([]Equipment, error) {
	return wrapList(s.repo.ListWarrantyExpiring(ctx, before))
}

func (s *service) ListPurchasedBetween(ctx context.Context, start, end time.Time) ([]Equipment, error) {
	if start.After(end) {
		return nil, apperror.Invalid("start must not be after end")
	}
	return wrapList(s.repo.ListPurchasedBetween(ctx, start, end))
}

func (s *service) Search(ctx context.Context, term string) ([]Equipment, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperror.Invalid("q query param is required")
	}
	return wrapList(s.repo.Search(ctx, term))
}

func (s *service) CountAvailable(ctx context.Context) (int64, error) {
	return s.count(ctx, StatusAvailable)
}

func (s *service) CountInMaintenance(ctx context.Context) (int64, error) {
	return s.count(ctx, StatusMaintenance)
}

func (s *service) count(ctx context.Context, status Status) (int64, error) {
	n, err := s.repo.CountByStatus(ctx, status)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

// Update replaces the descriptive fields. Status only changes through
// UpdateStatus and the maintenance operations.
func (s *service) Update(ctx context.Context, id int, req EquipmentRequest) (*Equipment, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateWriteError(err)
	}

	next := req.toEquipment(current.PurchaseDate)
	next.ID = id

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		return nil, translateWriteError(err)
	}
	return updated, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int, status Status) (*Equipment, error) {
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, translateWriteError(err)
	}

	logger.Info("equipment status changed", "equipment_id", id, "status", status)
	return updated, nil
}

// ScheduleMaintenance puts the equipment into MAINTENANCE, stamping the last
// maintenance date with now.
func (s *service) ScheduleMaintenance(ctx context.Context, id int, next time.Time) (*Equipment, error) {
	updated, err := s.repo.ScheduleMaintenance(ctx, id, s.now(), next)
	if err != nil {
		return nil, translateWriteError(err)
	}

	logger.Info("equipment maintenance scheduled", "equipment_id", id, "next_maintenance_date", next)
	return updated, nil
}

func (s *service) CompleteMaintenance(ctx context.Context, id int) (*Equipment, error) {
	updated, err := s.repo.CompleteMaintenance(ctx, id, s.now())
	if err != nil {
		return nil, translateWriteError(err)
	}

	logger.Info("equipment maintenance completed", "equipment_id", id)
	return updated, nil
}

func (s *service) SetWarrantyExpiry(ctx context.Context, id int, expiry time.Time) (*Equipment, error) {
	updated, err := s.repo.SetWarrantyExpiry(ctx, id, expiry)
	if err != nil {
		return nil, translateWriteError(err)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrEquipmentNotFound) {
			return apperror.NotFound(msgEquipmentNotFound)
		}
		return apperror.Internal(err)
	}
	return nil
}

func translateWriteError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperror.NotFound(msgEquipmentNotFound)
	case db.IsUniqueViolation(err, constraintSerial):
		return apperror.Conflict(msgSerialInUse)
	default:
		return apperror.Internal(err)
	}
}

func wrapList(items []Equipment, err error) ([]Equipment, error) {
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if items == nil {
		items = []Equipment{}
	}
	return items, nil
}
