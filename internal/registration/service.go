package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"gymhub/internal/apperror"
	"gymhub/internal/auth"
	"gymhub/internal/db"
	"gymhub/internal/gymclass"
	"gymhub/internal/logger"
	"gymhub/internal/metrics"
	"gymhub/internal/telemetry"
	"gymhub/internal/user"
)

const (
	msgMemberOrClassNotFound = "Member or gym class not found"
	msgAlreadyRegistered     = "Member is already registered for this class"
	msgClassFull             = "Class is already full"
	msgClassUnavailable      = "Class is not available for registration"
	msgRegistrationNotFound  = "Registration not found"
	msgAlreadyCancelled      = "Registration is already cancelled"
	msgAccessDenied          = "Access denied"
)

const (
	GroupByDay   = "day"
	GroupByClass = "class"
)

// Notifier delivers registration e-mails. Failures are logged and never
// undo a committed change.
type Notifier interface {
	SendClassRegistration(ctx context.Context, to, name, className, schedule string) error
	SendClassCancellation(ctx context.Context, to, name, className string) error
}

type Service interface {
	Register(ctx context.Context, caller auth.Caller, req RegisterRequest) (*Registration, error)
	Cancel(ctx context.Context, caller auth.Caller, id int) (*Registration, error)
	UpdateStatus(ctx context.Context, id int, status Status) (*Registration, error)
	MarkAttendance(ctx context.Context, id int) (*Registration, error)
	MarkNoShow(ctx context.Context, id int) (*Registration, error)
	Delete(ctx context.Context, id int) error
	GetByID(ctx context.Context, id int) (*Registration, error)
	List(ctx context.Context) ([]Registration, error)
	ListByMember(ctx context.Context, memberID int) ([]Registration, error)
	ListUpcomingByMember(ctx context.Context, memberID int) ([]RegistrationWithClass, error)
	ListByClass(ctx context.Context, gymClassID int) ([]Registration, error)
	ListByStatus(ctx context.Context, status Status) ([]Registration, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]Registration, error)
	CountRegistered(ctx context.Context, gymClassID int) (int64, error)
	CountAttendedByMember(ctx context.Context, memberID int) (int64, error)
	IsRegistered(ctx context.Context, caller auth.Caller, memberID, gymClassID int) (bool, error)
	Analytics(ctx context.Context, groupBy string, from, to time.Time) (interface{}, error)
}

type service struct {
	repo      Repository
	analytics AnalyticsRepository
	tx        Transactor
	notifier  Notifier
}

func NewService(repo Repository, analytics AnalyticsRepository, tx Transactor, notifier Notifier) Service {
	return &service{
		repo:      repo,
		analytics: analytics,
		tx:        tx,
		notifier:  notifier,
	}
}

// Register enrolls a member in a class. The class row is locked for the
// duration of the checks so concurrent registrations cannot overbook it.
func (s *service) Register(ctx context.Context, caller auth.Caller, req RegisterRequest) (_ *Registration, err error) {
	ctx, span := telemetry.StartSpan(ctx, "registration.Register",
		attribute.Int("member.id", req.MemberID), attribute.Int("class.id", req.GymClassID))
	defer func() {
		metrics.RecordRegistration(registrationOutcome(err))
		telemetry.EndSpan(span, err)
	}()

	if !auth.Allow(caller, req.MemberID, auth.StaffRoles...) {
		return nil, apperror.Forbidden(msgAccessDenied)
	}

	var (
		reg    *Registration
		member *user.User
		class  *gymclass.GymClass
	)
	err = s.tx.InTx(ctx, func(st Store) error {
		var err error
		member, err = st.Users.FindByID(ctx, req.MemberID)
		if err != nil {
			return notFoundOr(err, msgMemberOrClassNotFound)
		}
		class, err = st.Classes.LockByID(ctx, req.GymClassID)
		if err != nil {
			return notFoundOr(err, msgMemberOrClassNotFound)
		}

		registered, err := st.Registrations.HasActive(ctx, req.MemberID, req.GymClassID)
		if err != nil {
			return apperror.Internal(err)
		}
		if registered {
			return apperror.Conflict(msgAlreadyRegistered)
		}

		if class.IsFull() {
			return apperror.Conflict(msgClassFull)
		}
		if class.Status != gymclass.StatusActive {
			return apperror.Conflict(msgClassUnavailable)
		}

		reg, err = st.Registrations.Create(ctx, req.MemberID, req.GymClassID, req.Notes)
		if err != nil {
			if db.IsUniqueViolation(err, constraintActiveRegistration) {
				return apperror.Conflict(msgAlreadyRegistered)
			}
			return apperror.Internal(err)
		}

		if err := class.AdjustEnrollment(1); err != nil {
			return apperror.Internal(err)
		}
		if err := st.Classes.SaveEnrollment(ctx, class); err != nil {
			return apperror.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("member registered for class",
		"registration_id", reg.ID,
		"member_id", reg.MemberID,
		"class_id", reg.GymClassID,
		"enrollment", class.CurrentEnrollment,
		"class_status", class.Status,
	)

	schedule := fmt.Sprintf("%s %s-%s", class.ScheduleDays, class.StartTime, class.EndTime)
	if err := s.notifier.SendClassRegistration(ctx, member.Email, member.FirstName, class.Name, schedule); err != nil {
		logger.Warn("registration email not queued", "registration_id", reg.ID, "error", err)
	}

	return reg, nil
}

// lockForChange locks the class before the registration so every enrollment
// change takes locks in the same order as Register.
func lockForChange(ctx context.Context, st Store, id int) (*Registration, *gymclass.GymClass, error) {
	reg, err := st.Registrations.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, msgRegistrationNotFound)
	}

	class, err := st.Classes.LockByID(ctx, reg.GymClassID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, apperror.Internal(err)
	}

	reg, err = st.Registrations.LockByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, msgRegistrationNotFound)
	}
	return reg, class, nil
}

// releaseSpot gives back the spot held by a registration leaving the
// REGISTERED-or-later states for CANCELLED or deletion.
func releaseSpot(ctx context.Context, st Store, class *gymclass.GymClass, regID int) error {
	if class == nil {
		return nil
	}
	if err := class.AdjustEnrollment(-1); err != nil {
		logger.Warn("enrollment already at zero, leaving counter unchanged",
			"class_id", class.ID, "registration_id", regID)
		return nil
	}
	if err := st.Classes.SaveEnrollment(ctx, class); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *service) Cancel(ctx context.Context, caller auth.Caller, id int) (_ *Registration, err error) {
	ctx, span := telemetry.StartSpan(ctx, "registration.Cancel", attribute.Int("registration.id", id))
	defer func() { telemetry.EndSpan(span, err) }()

	var (
		cancelled *Registration
		class     *gymclass.GymClass
		member    *user.User
	)
	err = s.tx.InTx(ctx, func(st Store) error {
		reg, c, err := lockForChange(ctx, st, id)
		if err != nil {
			return err
		}
		class = c

		if !auth.Allow(caller, reg.MemberID, auth.StaffRoles...) {
			return apperror.Forbidden(msgAccessDenied)
		}
		if reg.Status == StatusCancelled {
			return apperror.Conflict(msgAlreadyCancelled)
		}

		cancelled, err = st.Registrations.UpdateStatus(ctx, id, StatusCancelled, nil)
		if err != nil {
			return apperror.Internal(err)
		}
		if err := releaseSpot(ctx, st, class, id); err != nil {
			return err
		}

		member, err = st.Users.FindByID(ctx, reg.MemberID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return apperror.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCancellation()
	logger.Info("class registration cancelled", "registration_id", id, "class_id", cancelled.GymClassID)
	if class != nil && member != nil {
		if err := s.notifier.SendClassCancellation(ctx, member.Email, member.FirstName, class.Name); err != nil {
			logger.Warn("cancellation email not queued", "registration_id", id, "error", err)
		}
	}
	return cancelled, nil
}

// UpdateStatus moves a registration between states. Moving to CANCELLED goes
// through Cancel's enrollment handling; a cancelled registration cannot be
// reopened.
func (s *service) UpdateStatus(ctx context.Context, id int, status Status) (*Registration, error) {
	var updated *Registration
	err := s.tx.InTx(ctx, func(st Store) error {
		reg, class, err := lockForChange(ctx, st, id)
		if err != nil {
			return err
		}

		if reg.Status == StatusCancelled {
			return apperror.Conflict(msgAlreadyCancelled)
		}

		var attended *time.Time
		if status == StatusAttended {
			now := time.Now()
			attended = &now
		}

		updated, err = st.Registrations.UpdateStatus(ctx, id, status, attended)
		if err != nil {
			if db.IsUniqueViolation(err, constraintActiveRegistration) {
				return apperror.Conflict(msgAlreadyRegistered)
			}
			return apperror.Internal(err)
		}

		if status == StatusCancelled {
			return releaseSpot(ctx, st, class, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == StatusCancelled {
		metrics.RecordCancellation()
	}
	return updated, nil
}

func (s *service) MarkAttendance(ctx context.Context, id int) (*Registration, error) {
	return s.UpdateStatus(ctx, id, StatusAttended)
}

func (s *service) MarkNoShow(ctx context.Context, id int) (*Registration, error) {
	return s.UpdateStatus(ctx, id, StatusNoShow)
}

func (s *service) Delete(ctx context.Context, id int) error {
	return s.tx.InTx(ctx, func(st Store) error {
		reg, class, err := lockForChange(ctx, st, id)
		if err != nil {
			return err
		}

		if reg.Status != StatusCancelled {
			if err := releaseSpot(ctx, st, class, id); err != nil {
				return err
			}
		}

		if err := st.Registrations.Delete(ctx, id); err != nil {
			if errors.Is(err, ErrRegistrationNotFound) {
				return apperror.NotFound(msgRegistrationNotFound)
			}
			return apperror.Internal(err)
		}
		return nil
	})
}

func (s *service) GetByID(ctx context.Context, id int) (*Registration, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgRegistrationNotFound)
	}
	return reg, nil
}

func (s *service) List(ctx context.Context) ([]Registration, error) {
	return wrapList(s.repo.List(ctx))
}

func (s *service) ListByMember(ctx context.Context, memberID int) ([]Registration, error) {
	return wrapList(s.repo.ListByMember(ctx, memberID))
}

func (s *service) ListUpcomingByMember(ctx context.Context, memberID int) ([]RegistrationWithClass, error) {
	regs, err := s.repo.ListUpcomingByMember(ctx, memberID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return regs, nil
}

func (s *service) ListByClass(ctx context.Context, gymClassID int) ([]Registration, error) {
	return wrapList(s.repo.ListByClass(ctx, gymClassID))
}

func (s *service) ListByStatus(ctx context.Context, status Status) ([]Registration, error) {
	return wrapList(s.repo.ListByStatus(ctx, status))
}

func (s *service) ListByDateRange(ctx context.Context, start, end time.Time) ([]Registration, error) {
	return wrapList(s.repo.ListByDateRange(ctx, start, end))
}

func (s *service) CountRegistered(ctx context.Context, gymClassID int) (int64, error) {
	n, err := s.repo.CountRegistered(ctx, gymClassID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

func (s *service) CountAttendedByMember(ctx context.Context, memberID int) (int64, error) {
	n, err := s.repo.CountAttendedByMember(ctx, memberID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

func (s *service) IsRegistered(ctx context.Context, caller auth.Caller, memberID, gymClassID int) (bool, error) {
	if !auth.Allow(caller, memberID, auth.StaffRoles...) {
		return false, apperror.Forbidden(msgAccessDenied)
	}
	ok, err := s.repo.HasActive(ctx, memberID, gymClassID)
	if err != nil {
		return false, apperror.Internal(err)
	}
	return ok, nil
}

func (s *service) Analytics(ctx context.Context, groupBy string, from, to time.Time) (interface{}, error) {
	switch groupBy {
	case GroupByDay, "":
		stats, err := s.analytics.StatsByDay(ctx, from, to)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if stats == nil {
			stats = []StatsByDay{}
		}
		return stats, nil
	case GroupByClass:
		stats, err := s.analytics.StatsByClass(ctx, from, to)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if stats == nil {
			stats = []StatsByClass{}
		}
		return stats, nil
	default:
		return nil, apperror.Invalid("group_by must be day or class")
	}
}

func registrationOutcome(err error) string {
	if err == nil {
		return "success"
	}
	switch apperror.Message(err) {
	case msgClassFull:
		return "full"
	case msgAlreadyRegistered:
		return "duplicate"
	case msgClassUnavailable:
		return "unavailable"
	}
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return "not_found"
	case apperror.KindForbidden:
		return "forbidden"
	}
	return "error"
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(msg)
	}
	return apperror.Internal(err)
}

func wrapList(regs []Registration, err error) ([]Registration, error) {
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if regs == nil {
		regs = []Registration{}
	}
	return regs, nil
}
