package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"gymhub/internal/apperror"
	"gymhub/internal/logger"
	"gymhub/internal/metrics"
	"gymhub/internal/telemetry"
	"gymhub/internal/user"
)

const (
	msgMembershipNotFound = "Membership not found"
	msgUserNotFound       = "User not found"
	msgAlreadyActive      = "User already has an active membership"
)

// Notifier tells users their membership is active.
type Notifier interface {
	SendMembershipActivated(ctx context.Context, to, name, membershipType string, endDate time.Time) error
}

type Service interface {
	Plans() []Plan
	Create(ctx context.Context, req MembershipRequest) (*Membership, error)
	GetByID(ctx context.Context, id int) (*Membership, error)
	List(ctx context.Context) ([]Membership, error)
	ListByUser(ctx context.Context, userID int) ([]Membership, error)
	ListActiveByUser(ctx context.Context, userID int) ([]Membership, error)
	HasActive(ctx context.Context, userID int) (bool, error)
	ListByStatus(ctx context.Context, status Status) ([]Membership, error)
	ListByType(ctx context.Context, t Type) ([]Membership, error)
	ListExpiringBetween(ctx context.Context, start, end time.Time) ([]Membership, error)
	ListExpired(ctx context.Context) ([]Membership, error)
	CountActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, id int, req MembershipRequest) (*Membership, error)
	UpdateStatus(ctx context.Context, id int, status Status) (*Membership, error)
	Renew(ctx context.Context, id int, endDate time.Time) (*Membership, error)
	ExpireOverdue(ctx context.Context) (int64, error)
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

func (s *service) Plans() []Plan {
	return Plans()
}

// Create opens a membership. The user row is locked while the active check
// runs, so two concurrent requests for one user cannot both succeed.
func (s *service) Create(ctx context.Context, req MembershipRequest) (_ *Membership, err error) {
	ctx, span := telemetry.StartSpan(ctx, "membership.Create", attribute.Int("user.id", req.UserID))
	defer func() { telemetry.EndSpan(span, err) }()

	var (
		created *Membership
		owner   *user.User
	)
	err = s.tx.InTx(ctx, func(st Store) error {
		var err error
		owner, err = st.Users.LockByID(ctx, req.UserID)
		if err != nil {
			return notFoundOr(err, msgUserNotFound)
		}

		if err := ensureNoOtherActive(ctx, st, req.UserID, s.now(), 0); err != nil {
			return err
		}

		created, err = st.Memberships.Create(ctx, req.resolve())
		if err != nil {
			return apperror.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordMembership(string(created.Type))
	logger.Info("membership created",
		"membership_id", created.ID,
		"user_id", created.UserID,
		"type", created.Type,
		"end_date", created.EndDate,
	)
	s.notifyActivated(ctx, owner, created)

	return created, nil
}

func (s *service) notifyActivated(ctx context.Context, owner *user.User, m *Membership) {
	if owner == nil {
		return
	}
	if err := s.notifier.SendMembershipActivated(ctx, owner.Email, owner.FirstName, string(m.Type), m.EndDate); err != nil {
		logger.Warn("membership email not queued", "membership_id", m.ID, "error", err)
	}
}

func ensureNoOtherActive(ctx context.Context, st Store, userID int, now time.Time, excludeID int) error {
	active, err := st.Memberships.HasActive(ctx, userID, now, excludeID)
	if err != nil {
		return apperror.Internal(err)
	}
	if active {
		return apperror.Conflict(msgAlreadyActive)
	}
	return nil
}

// activate runs fn for membership id with its owner locked, after making sure
// the owner holds no other active membership.
func (s *service) activate(ctx context.Context, id int, fn func(st Store) (*Membership, error)) (*Membership, error) {
	var (
		updated *Membership
		owner   *user.User
	)
	err := s.tx.InTx(ctx, func(st Store) error {
		current, err := st.Memberships.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, msgMembershipNotFound)
		}

		owner, err = st.Users.LockByID(ctx, current.UserID)
		if err != nil {
			return notFoundOr(err, msgUserNotFound)
		}

		if err := ensureNoOtherActive(ctx, st, current.UserID, s.now(), id); err != nil {
			return err
		}

		updated, err = fn(st)
		if err != nil {
			return notFoundOr(err, msgMembershipNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyActivated(ctx, owner, updated)
	return updated, nil
}

// UpdateStatus changes the status. Moving to ACTIVE is subject to the same
// one-active-membership rule as Create.
func (s *service) UpdateStatus(ctx context.Context, id int, status Status) (*Membership, error) {
	if status == StatusActive {
		return s.activate(ctx, id, func(st Store) (*Membership, error) {
			return st.Memberships.UpdateStatus(ctx, id, status)
		})
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, notFoundOr(err, msgMembershipNotFound)
	}
	return updated, nil
}

// Renew extends the membership to endDate and reactivates it.
func (s *service) Renew(ctx context.Context, id int, endDate time.Time) (*Membership, error) {
	if !endDate.After(s.now()) {
		return nil, apperror.Invalid("end_date must be in the future")
	}

	renewed, err := s.activate(ctx, id, func(st Store) (*Membership, error) {
		return st.Memberships.Renew(ctx, id, endDate)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("membership renewed", "membership_id", id, "end_date", endDate)
	return renewed, nil
}

// Update replaces type, price, dates and description. Owner and status are kept.
// An active membership whose end date stays in the future is re-checked
// against the owner's other memberships.
func (s *service) Update(ctx context.Context, id int, req MembershipRequest) (_ *Membership, err error) {
	ctx, span := telemetry.StartSpan(ctx, "membership.Update", attribute.Int("membership.id", id))
	defer func() { telemetry.EndSpan(span, err) }()

	var updated *Membership
	err = s.tx.InTx(ctx, func(st Store) error {
		current, err := st.Memberships.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, msgMembershipNotFound)
		}
		if req.UserID != current.UserID {
			return apperror.Invalid("Membership owner cannot be changed")
		}

		next := req.resolve()
		next.ID = id

		now := s.now()
		if current.Status == StatusActive && next.EndDate.After(now) {
			if _, err := st.Users.LockByID(ctx, current.UserID); err != nil {
				return notFoundOr(err, msgUserNotFound)
			}
			if err := ensureNoOtherActive(ctx, st, current.UserID, now, id); err != nil {
				return err
			}
		}

		updated, err = st.Memberships.Update(ctx, next)
		if err != nil {
			return notFoundOr(err, msgMembershipNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, apperror.Internal(err)
	}
	logger.Info("overdue memberships expired", "count", n)
	return n, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			return apperror.NotFound(msgMembershipNotFound)
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id int) (*Membership, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgMembershipNotFound)
	}
	return m, nil
}

func (s *service) List(ctx context.Context) ([]Membership, error) {
	return wrapList(s.repo.List(ctx))
}

func (s *service) ListByUser(ctx context.Context, userID int) ([]Membership, error) {
	return wrapList(s.repo.ListByUser(ctx, userID))
}

func (s *service) ListActiveByUser(ctx context.Context, userID int) ([]Membership, error) {
	return wrapList(s.repo.ListActiveByUser(ctx, userID, s.now()))
}

func (s *service) HasActive(ctx context.Context, userID int) (bool, error) {
	ok, err := s.repo.HasActive(ctx, userID, s.now(), 0)
	if err != nil {
		return false, apperror.Internal(err)
	}
	return ok, nil
}

func (s *service) ListByStatus(ctx context.Context, status Status) ([]Membership, error) {
	return wrapList(s.repo.ListByStatus(ctx, status))
}

func (s *service) ListByType(ctx context.Context, t Type) ([]Membership, error) {
	return wrapList(s.repo.ListByType(ctx, t))
}

func (s *service) ListExpiringBetween(ctx context.Context, start, end time.Time) ([]Membership, error) {
	return wrapList(s.repo.ListExpiringBetween(ctx, start, end))
}

func (s *service) ListExpired(ctx context.Context) ([]Membership, error) {
	return wrapList(s.repo.ListExpired(ctx, s.now()))
}

func (s *service) CountActive(ctx context.Context) (int64, error) {
	n, err := s.repo.CountActive(ctx)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(msg)
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(err)
}

func wrapList(ms []Membership, err error) ([]Membership, error) {
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if ms == nil {
		ms = []Membership{}
	}
	return ms, nil
}
