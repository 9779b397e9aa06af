package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"gymhub/internal/apperror"
	"gymhub/internal/auth"
	"gymhub/internal/logger"
	"gymhub/internal/metrics"
	"gymhub/internal/telemetry"
	"gymhub/internal/user"
)

const (
	msgSessionNotFound    = "Training session not found"
	msgTrainerNotFound    = "Trainer not found"
	msgMemberNotFound     = "Member not found"
	msgTrainerUnavailable = "Trainer is not available at the scheduled time"
)

// Notifier tells members about scheduled sessions.
type Notifier interface {
	SendSessionScheduled(ctx context.Context, to, name, sessionType string, when time.Time, durationMinutes int) error
}

type Service interface {
	Create(ctx context.Context, req SessionRequest) (*Session, error)
	Book(ctx context.Context, caller auth.Caller, req SessionRequest) (*Session, error)
	GetByID(ctx context.Context, id int) (*Session, error)
	List(ctx context.Context) ([]Session, error)
	ListByTrainer(ctx context.Context, trainerID int) ([]Session, error)
	ListByMember(ctx context.Context, memberID int) ([]Session, error)
	ListUpcoming(ctx context.Context) ([]Session, error)
	ListUpcomingByTrainer(ctx context.Context, trainerID int) ([]Session, error)
	ListUpcomingByMember(ctx context.Context, memberID int) ([]Session, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]Session, error)
	ListByStatus(ctx context.Context, status Status) ([]Session, error)
	ListScheduledByType(ctx context.Context, t Type) ([]Session, error)
	CountCompletedByTrainer(ctx context.Context, trainerID int) (int64, error)
	CountCompletedByMember(ctx context.Context, memberID int) (int64, error)
	Update(ctx context.Context, id int, req UpdateRequest) (*Session, error)
	UpdateStatus(ctx context.Context, id int, status Status) (*Session, error)
	Reschedule(ctx context.Context, id int, scheduledDate time.Time) (*Session, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo     Repository
	tx       Transactor
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, tx Transactor, notifier Notifier) Service {
	return &service{
		repo:     repo,
		tx:       tx,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create schedules a session. The trainer row stays locked until commit, so
// two overlapping requests for the same trainer are checked one after the other.
func (s *service) Create(ctx context.Context, req SessionRequest) (_ *Session, err error) {
	ctx, span := telemetry.StartSpan(ctx, "session.Create",
		attribute.Int("trainer.id", req.TrainerID), attribute.Int("member.id", req.MemberID))
	defer func() {
		metrics.RecordTrainingSession(sessionOutcome(err))
		telemetry.EndSpan(span, err)
	}()

	t, _ := ParseType(req.Type)
	candidate := &Session{
		TrainerID:     req.TrainerID,
		MemberID:      req.MemberID,
		Type:          t,
		ScheduledDate: req.ScheduledDate,
		Duration:      req.Duration,
		PriceCents:    req.PriceCents,
		Notes:         req.Notes,
		Location:      req.Location,
	}

	var (
		created *Session
		member  *user.User
	)
	err = s.tx.InTx(ctx, func(st Store) error {
		if _, err := st.Users.LockByID(ctx, req.TrainerID); err != nil {
			return notFoundOr(err, msgTrainerNotFound)
		}

		var err error
		member, err = st.Users.FindByID(ctx, req.MemberID)
		if err != nil {
			return notFoundOr(err, msgMemberNotFound)
		}

		if err := checkAvailable(ctx, st, candidate, 0); err != nil {
			return err
		}

		created, err = st.Sessions.Create(ctx, candidate)
		if err != nil {
			return apperror.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("training session scheduled",
		"session_id", created.ID,
		"trainer_id", created.TrainerID,
		"member_id", created.MemberID,
		"scheduled_date", created.ScheduledDate,
	)

	if err := s.notifier.SendSessionScheduled(ctx, member.Email, member.FirstName, string(created.Type), created.ScheduledDate, created.Duration); err != nil {
		logger.Warn("session email not queued", "session_id", created.ID, "error", err)
	}

	return created, nil
}

// Book is the member-facing Create: members may only book for themselves.
func (s *service) Book(ctx context.Context, caller auth.Caller, req SessionRequest) (*Session, error) {
	if caller.Role != auth.RoleMember || caller.ID != req.MemberID {
		return nil, apperror.Forbidden("Members can only book sessions for themselves")
	}
	return s.Create(ctx, req)
}

func checkAvailable(ctx context.Context, st Store, candidate *Session, excludeID int) error {
	busy, err := st.Sessions.HasConflict(ctx, candidate.TrainerID, candidate.ScheduledDate, candidate.EndsAt(), excludeID)
	if err != nil {
		return apperror.Internal(err)
	}
	if busy {
		return apperror.Conflict(msgTrainerUnavailable)
	}
	return nil
}

// lockSession loads a session and locks its trainer before any rescheduling check.
func lockSession(ctx context.Context, st Store, id int) (*Session, error) {
	current, err := st.Sessions.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgSessionNotFound)
	}
	if _, err := st.Users.LockByID(ctx, current.TrainerID); err != nil {
		return nil, notFoundOr(err, msgTrainerNotFound)
	}
	return current, nil
}

// Update changes the session's details. A new time window is re-checked
// against the trainer's other sessions unless the session is cancelled.
func (s *service) Update(ctx context.Context, id int, req UpdateRequest) (*Session, error) {
	var updated *Session
	err := s.tx.InTx(ctx, func(st Store) error {
		current, err := lockSession(ctx, st, id)
		if err != nil {
			return err
		}

		t, _ := ParseType(req.Type)
		next := *current
		next.Type = t
		next.ScheduledDate = req.ScheduledDate
		next.Duration = req.Duration
		next.PriceCents = req.PriceCents
		next.Notes = req.Notes
		next.Location = req.Location

		if next.Status != StatusCancelled {
			if err := checkAvailable(ctx, st, &next, id); err != nil {
				return err
			}
		}

		updated, err = st.Sessions.Update(ctx, &next)
		if err != nil {
			return notFoundOr(err, msgSessionNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Reschedule moves the session and puts it back to SCHEDULED.
func (s *service) Reschedule(ctx context.Context, id int, scheduledDate time.Time) (*Session, error) {
	var moved *Session
	err := s.tx.InTx(ctx, func(st Store) error {
		current, err := lockSession(ctx, st, id)
		if err != nil {
			return err
		}

		next := *current
		next.ScheduledDate = scheduledDate
		if err := checkAvailable(ctx, st, &next, id); err != nil {
			return err
		}

		moved, err = st.Sessions.Reschedule(ctx, id, scheduledDate)
		if err != nil {
			return notFoundOr(err, msgSessionNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("training session rescheduled", "session_id", id, "scheduled_date", scheduledDate)
	return moved, nil
}

// UpdateStatus stamps start_time when a session starts and end_time when it completes.
// Reviving a cancelled session re-checks the trainer's calendar first.
func (s *service) UpdateStatus(ctx context.Context, id int, status Status) (*Session, error) {
	var startTime, endTime *time.Time
	now := s.now()
	switch status {
	case StatusInProgress:
		startTime = &now
	case StatusCompleted:
		endTime = &now
	}

	var updated *Session
	err := s.tx.InTx(ctx, func(st Store) error {
		current, err := lockSession(ctx, st, id)
		if err != nil {
			return err
		}

		if current.Status == StatusCancelled && status != StatusCancelled {
			if err := checkAvailable(ctx, st, current, id); err != nil {
				return err
			}
		}

		updated, err = st.Sessions.UpdateStatus(ctx, id, status, startTime, endTime)
		if err != nil {
			return notFoundOr(err, msgSessionNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return apperror.NotFound(msgSessionNotFound)
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id int) (*Session, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgSessionNotFound)
	}
	return found, nil
}

func (s *service) List(ctx context.Context) ([]Session, error) {
	return wrapList(s.repo.List(ctx))
}

func (s *service) ListByTrainer(ctx context.Context, trainerID int) ([]Session, error) {
	return wrapList(s.repo.ListByTrainer(ctx, trainerID))
}

func (s *service) ListByMember(ctx context.Context, memberID int) ([]Session, error) {
	return wrapList(s.repo.ListByMember(ctx, memberID))
}

func (s *service) ListUpcoming(ctx context.Context) ([]Session, error) {
	return wrapList(s.repo.ListUpcoming(ctx, s.now()))
}

func (s *service) ListUpcomingByTrainer(ctx context.Context, trainerID int) ([]Session, error) {
	return wrapList(s.repo.ListUpcomingByTrainer(ctx, trainerID, s.now()))
}

func (s *service) ListUpcomingByMember(ctx context.Context, memberID int) ([]Session, error) {
	return wrapList(s.repo.ListUpcomingByMember(ctx, memberID, s.now()))
}

func (s *service) ListByDateRange(ctx context.Context, start, end time.Time) ([]Session, error) {
	return wrapList(s.repo.ListByDateRange(ctx, start, end))
}

func (s *service) ListByStatus(ctx context.Context, status Status) ([]Session, error) {
	return wrapList(s.repo.ListByStatus(ctx, status))
}

func (s *service) ListScheduledByType(ctx context.Context, t Type) ([]Session, error) {
	return wrapList(s.repo.ListScheduledByType(ctx, t))
}

func (s *service) CountCompletedByTrainer(ctx context.Context, trainerID int) (int64, error) {
	n, err := s.repo.CountCompletedByTrainer(ctx, trainerID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

func (s *service) CountCompletedByMember(ctx context.Context, memberID int) (int64, error) {
	n, err := s.repo.CountCompletedByMember(ctx, memberID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

func sessionOutcome(err error) string {
	switch {
	case err == nil:
		return "scheduled"
	case apperror.Message(err) == msgTrainerUnavailable:
		return "conflict"
	case apperror.Is(err, apperror.KindNotFound):
		return "not_found"
	}
	return "error"
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(msg)
	}
	return apperror.Internal(err)
}

func wrapList(sessions []Session, err error) ([]Session, error) {
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return sessions, nil
}
