package gymclass

import (
	"context"
	"database/sql"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"gymhub/internal/apperror"
	"gymhub/internal/logger"
	"gymhub/internal/telemetry"
)

const (
	msgClassNotFound   = "Gym class not found"
	msgTrainerNotFound = "Trainer not found"
)

type Service interface {
	Create(ctx context.Context, req ClassRequest) (*GymClass, error)
	GetByID(ctx context.Context, id int) (*GymClass, error)
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
	Update(ctx context.Context, id int, req ClassRequest) (*GymClass, error)
	UpdateStatus(ctx context.Context, id int, status Status) (*GymClass, error)
	SetEnrollment(ctx context.Context, id, count int) (*GymClass, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo Repository
	tx   Transactor
}

func NewService(repo Repository, tx Transactor) Service {
	return &service{
		repo: repo,
		tx:   tx,
	}
}

func classFromRequest(req ClassRequest) *GymClass {
	classType, _ := ParseClassType(req.Type)
	return &GymClass{
		Name:         req.Name,
		Description:  req.Description,
		Type:         classType,
		TrainerID:    req.TrainerID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		MaxCapacity:  req.MaxCapacity,
		PriceCents:   req.PriceCents,
		Location:     req.Location,
		ScheduleDays: req.ScheduleDays,
	}
}

func (s *service) Create(ctx context.Context, req ClassRequest) (_ *GymClass, err error) {
	ctx, span := telemetry.StartSpan(ctx, "gymclass.Create", attribute.Int("trainer.id", req.TrainerID))
	defer func() { telemetry.EndSpan(span, err) }()

	var created *GymClass
	err = s.tx.InTx(ctx, func(st Store) error {
		if _, err := st.Users.FindByID(ctx, req.TrainerID); err != nil {
			return notFoundOr(err, msgTrainerNotFound)
		}

		g := classFromRequest(req)
		g.Status = StatusActive

		var err error
		created, err = st.Classes.Create(ctx, g)
		if err != nil {
			return apperror.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("gym class created", "class_id", created.ID, "trainer_id", created.TrainerID)
	return created, nil
}

func (s *service) GetByID(ctx context.Context, id int) (*GymClass, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgClassNotFound)
	}
	return g, nil
}

func (s *service) List(ctx context.Context) ([]GymClass, error) {
	return wrapList(s.repo.List(ctx))
}

func (s *service) ListAvailable(ctx context.Context) ([]GymClass, error) {
	return wrapList(s.repo.ListAvailable(ctx))
}

func (s *service) ListFull(ctx context.Context) ([]GymClass, error) {
	return wrapList(s.repo.ListFull(ctx))
}

func (s *service) ListByStatus(ctx context.Context, status Status) ([]GymClass, error) {
	return wrapList(s.repo.ListByStatus(ctx, status))
}

func (s *service) ListByTrainer(ctx context.Context, trainerID int, activeOnly bool) ([]GymClass, error) {
	return wrapList(s.repo.ListByTrainer(ctx, trainerID, activeOnly))
}

func (s *service) ListByType(ctx context.Context, classType ClassType, activeOnly bool) ([]GymClass, error) {
	return wrapList(s.repo.ListByType(ctx, classType, activeOnly))
}

func (s *service) ListByLocation(ctx context.Context, location string) ([]GymClass, error) {
	return wrapList(s.repo.ListByLocation(ctx, location))
}

func (s *service) ListByDay(ctx context.Context, day string) ([]GymClass, error) {
	return wrapList(s.repo.ListByDay(ctx, day))
}

func (s *service) ListByTimeRange(ctx context.Context, start, end string) ([]GymClass, error) {
	if !timeOfDay.MatchString(start) || !timeOfDay.MatchString(end) {
		return nil, apperror.Invalid("start and end must be HH:MM")
	}
	return wrapList(s.repo.ListByTimeRange(ctx, start, end))
}

func (s *service) Search(ctx context.Context, term string) ([]GymClass, error) {
	if term == "" {
		return nil, apperror.Invalid("q query param is required")
	}
	return wrapList(s.repo.Search(ctx, term))
}

func (s *service) CountActive(ctx context.Context) (int64, error) {
	n, err := s.repo.CountActive(ctx)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

func (s *service) Update(ctx context.Context, id int, req ClassRequest) (_ *GymClass, err error) {
	ctx, span := telemetry.StartSpan(ctx, "gymclass.Update", attribute.Int("class.id", id))
	defer func() { telemetry.EndSpan(span, err) }()

	var updated *GymClass
	err = s.tx.InTx(ctx, func(st Store) error {
		current, err := st.Classes.LockByID(ctx, id)
		if err != nil {
			return notFoundOr(err, msgClassNotFound)
		}
		if _, err := st.Users.FindByID(ctx, req.TrainerID); err != nil {
			return notFoundOr(err, msgTrainerNotFound)
		}

		g := classFromRequest(req)
		g.ID = id
		g.Status = current.Status
		g.CurrentEnrollment = current.CurrentEnrollment
		// A capacity change may flip the class between ACTIVE and FULL.
		if err := g.SetEnrollment(current.CurrentEnrollment); err != nil {
			return apperror.Invalid("Max capacity cannot be below current enrollment")
		}

		updated, err = st.Classes.Update(ctx, g)
		if err != nil {
			return apperror.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int, status Status) (*GymClass, error) {
	var updated *GymClass
	err := s.tx.InTx(ctx, func(st Store) error {
		g, err := st.Classes.LockByID(ctx, id)
		if err != nil {
			return notFoundOr(err, msgClassNotFound)
		}

		g.Status = status
		if err := g.SetEnrollment(g.CurrentEnrollment); err != nil {
			return apperror.Internal(err)
		}

		updated, err = st.Classes.UpdateStatus(ctx, id, g.Status)
		if err != nil {
			return apperror.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) SetEnrollment(ctx context.Context, id, count int) (_ *GymClass, err error) {
	ctx, span := telemetry.StartSpan(ctx, "gymclass.SetEnrollment",
		attribute.Int("class.id", id), attribute.Int("class.enrollment", count))
	defer func() { telemetry.EndSpan(span, err) }()

	var g *GymClass
	err = s.tx.InTx(ctx, func(st Store) error {
		var err error
		g, err = st.Classes.LockByID(ctx, id)
		if err != nil {
			return notFoundOr(err, msgClassNotFound)
		}

		if err := g.SetEnrollment(count); err != nil {
			return apperror.Wrap(apperror.KindInvalid, "Enrollment must be between 0 and max capacity", err)
		}

		if err := st.Classes.SaveEnrollment(ctx, g); err != nil {
			return apperror.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("class enrollment set", "class_id", id, "enrollment", count, "status", g.Status)
	return g, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrGymClassNotFound) {
			return apperror.NotFound(msgClassNotFound)
		}
		return apperror.Internal(err)
	}
	return nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(msg)
	}
	return apperror.Internal(err)
}

func wrapList(classes []GymClass, err error) ([]GymClass, error) {
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return classes, nil
}
