package payment

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"gymhub/internal/apperror"
	"gymhub/internal/logger"
	"gymhub/internal/metrics"
	"gymhub/internal/telemetry"
	"gymhub/internal/user"
)

const (
	msgPaymentNotFound = "Payment not found"
	msgUserNotFound    = "User not found"
)

type Notifier interface {
	SendPaymentReceipt(ctx context.Context, to, name, transactionID string, amountCents int64) error
}

type Service interface {
	Create(ctx context.Context, req PaymentRequest) (*Payment, error)
	CreateMembershipPayment(ctx context.Context, req QuickPaymentRequest) (*Payment, error)
	CreateClassPayment(ctx context.Context, req QuickPaymentRequest) (*Payment, error)
	CreateTrainingPayment(ctx context.Context, req QuickPaymentRequest) (*Payment, error)
	GetByID(ctx context.Context, id int) (*Payment, error)
	List(ctx context.Context) ([]Payment, error)
	ListByUser(ctx context.Context, userID int) ([]Payment, error)
	ListCompletedByUser(ctx context.Context, userID int) ([]Payment, error)
	ListByStatus(ctx context.Context, status Status) ([]Payment, error)
	ListByType(ctx context.Context, t Type) ([]Payment, error)
	ListByMethod(ctx context.Context, m Method) ([]Payment, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]Payment, error)
	ListByUserAndDateRange(ctx context.Context, userID int, start, end time.Time) ([]Payment, error)
	ListOverdue(ctx context.Context) ([]Payment, error)
	ListHighValue(ctx context.Context, minCents int64) ([]Payment, error)
	TotalPaidByUser(ctx context.Context, userID int) (int64, error)
	Revenue(ctx context.Context, start, end time.Time) (int64, error)
	CountCompleted(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int64, error)
	Update(ctx context.Context, id int, req PaymentRequest) (*Payment, error)
	Process(ctx context.Context, id int) (*Payment, error)
	Refund(ctx context.Context, id int, notes string) (*Payment, error)
	Cancel(ctx context.Context, id int) (*Payment, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo     Repository
	users    user.Repository
	notifier Notifier
	now      func() time.Time
	newTxnID func() string
}

func NewService(repo Repository, users user.Repository, notifier Notifier) Service {
	return &service{
		repo:     repo,
		users:    users,
		notifier: notifier,
		now:      time.Now,
		newTxnID: NewTransactionID,
	}
}

// NewTransactionID returns "TXN-" followed by the first eight characters of a
// random UUID, upper-cased.
func NewTransactionID() string {
	return "TXN-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *service) Create(ctx context.Context, req PaymentRequest) (*Payment, error) {
	t, _ := ParseType(req.Type)
	m, _ := ParseMethod(req.Method)
	return s.create(ctx, &Payment{
		UserID:      req.UserID,
		Type:        t,
		Method:      m,
		AmountCents: req.AmountCents,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
}

func (s *service) CreateMembershipPayment(ctx context.Context, req QuickPaymentRequest) (*Payment, error) {
	return s.createQuick(ctx, membershipFee, req)
}

func (s *service) CreateClassPayment(ctx context.Context, req QuickPaymentRequest) (*Payment, error) {
	return s.createQuick(ctx, classFee, req)
}

func (s *service) CreateTrainingPayment(ctx context.Context, req QuickPaymentRequest) (*Payment, error) {
	return s.createQuick(ctx, trainingSession, req)
}

func (s *service) createQuick(ctx context.Context, q quickPayment, req QuickPaymentRequest) (*Payment, error) {
	m, _ := ParseMethod(req.Method)
	due := s.now().Add(q.DueIn)
	return s.create(ctx, &Payment{
		UserID:      req.UserID,
		Type:        q.Type,
		Method:      m,
		AmountCents: req.AmountCents,
		Description: q.Description,
		DueDate:     &due,
	})
}

func (s *service) create(ctx context.Context, p *Payment) (_ *Payment, err error) {
	ctx, span := telemetry.StartSpan(ctx, "payment.Create",
		attribute.Int("user.id", p.UserID),
		attribute.String("payment.type", string(p.Type)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if _, err := s.users.FindByID(ctx, p.UserID); err != nil {
		return nil, notFoundOr(err, msgUserNotFound)
	}

	p.Status = StatusPending
	p.TransactionID = s.newTxnID()

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	metrics.RecordPaymentTransition(string(StatusPending))
	logger.Info("payment created",
		"payment_id", created.ID,
		"user_id", created.UserID,
		"type", created.Type,
		"amount_cents", created.AmountCents,
		"transaction_id", created.TransactionID,
	)
	return created, nil
}

// transition applies t as a compare-and-swap. A payment that exists but is
// not in t.From yields Conflict.
func (s *service) transition(ctx context.Context, id int, t Transition, paymentDate *time.Time, notes *string) (_ *Payment, err error) {
	ctx, span := telemetry.StartSpan(ctx, "payment.Transition",
		attribute.Int("payment.id", id),
		attribute.String("payment.to", string(t.To)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	updated, err := s.repo.Transition(ctx, id, t, paymentDate, notes)
	if err == nil {
		metrics.RecordPaymentTransition(string(t.To))
		logger.Info("payment status changed", "payment_id", id, "from", t.From, "to", t.To)
		return updated, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Internal(err)
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFoundOr(err, msgPaymentNotFound)
	}
	return nil, apperror.Conflict(t.Conflict)
}

// Process completes a pending payment and queues a receipt for the payer.
func (s *service) Process(ctx context.Context, id int) (*Payment, error) {
	now := s.now()
	p, err := s.transition(ctx, id, Process, &now, nil)
	if err != nil {
		return nil, err
	}

	s.sendReceipt(ctx, p)
	return p, nil
}

func (s *service) sendReceipt(ctx context.Context, p *Payment) {
	payer, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		logger.Warn("payment receipt skipped", "payment_id", p.ID, "error", err)
		return
	}
	if err := s.notifier.SendPaymentReceipt(ctx, payer.Email, payer.FirstName, p.TransactionID, p.AmountCents); err != nil {
		logger.Warn("payment receipt not queued", "payment_id", p.ID, "error", err)
	}
}

func (s *service) Refund(ctx context.Context, id int, notes string) (*Payment, error) {
	return s.transition(ctx, id, Refund, nil, &notes)
}

func (s *service) Cancel(ctx context.Context, id int) (*Payment, error) {
	return s.transition(ctx, id, Cancel, nil, nil)
}

// Update changes type, method, amount, description and due date. The
// transaction id and status are left alone.
func (s *service) Update(ctx context.Context, id int, req PaymentRequest) (*Payment, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgPaymentNotFound)
	}
	if req.UserID != current.UserID {
		return nil, apperror.Invalid("Payment owner cannot be changed")
	}

	t, _ := ParseType(req.Type)
	m, _ := ParseMethod(req.Method)
	updated, err := s.repo.Update(ctx, &Payment{
		ID:          id,
		Type:        t,
		Method:      m,
		AmountCents: req.AmountCents,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return nil, notFoundOr(err, msgPaymentNotFound)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			return apperror.NotFound(msgPaymentNotFound)
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id int) (*Payment, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgPaymentNotFound)
	}
	return p, nil
}

func (s *service) List(ctx context.Context) ([]Payment, error) {
	return wrapList(s.repo.List(ctx))
}

func (s *service) ListByUser(ctx context.Context, userID int) ([]Payment, error) {
	return wrapList(s.repo.ListByUser(ctx, userID))
}

func (s *service) ListCompletedByUser(ctx context.Context, userID int) ([]Payment, error) {
	return wrapList(s.repo.ListCompletedByUser(ctx, userID))
}

func (s *service) ListByStatus(ctx context.Context, status Status) ([]Payment, error) {
	return wrapList(s.repo.ListByStatus(ctx, status))
}

func (s *service) ListByType(ctx context.Context, t Type) ([]Payment, error) {
	return wrapList(s.repo.ListByType(ctx, t))
}

func (s *service) ListByMethod(ctx context.Context, m Method) ([]Payment, error) {
	return wrapList(s.repo.ListByMethod(ctx, m))
}

func (s *service) ListByDateRange(ctx context.Context, start, end time.Time) ([]Payment, error) {
	return wrapList(s.repo.ListPaidBetween(ctx, 0, start, end))
}

func (s *service) ListByUserAndDateRange(ctx context.Context, userID int, start, end time.Time) ([]Payment, error) {
	return wrapList(s.repo.ListPaidBetween(ctx, userID, start, end))
}

func (s *service) ListOverdue(ctx context.Context) ([]Payment, error) {
	return wrapList(s.repo.ListOverdue(ctx, s.now()))
}

func (s *service) ListHighValue(ctx context.Context, minCents int64) ([]Payment, error) {
	if minCents <= 0 {
		return nil, apperror.Invalid("min must be positive")
	}
	return wrapList(s.repo.ListHighValue(ctx, minCents))
}

func (s *service) TotalPaidByUser(ctx context.Context, userID int) (int64, error) {
	return internalOnly(s.repo.TotalPaidByUser(ctx, userID))
}

func (s *service) Revenue(ctx context.Context, start, end time.Time) (int64, error) {
	return internalOnly(s.repo.Revenue(ctx, start, end))
}

func (s *service) CountCompleted(ctx context.Context) (int64, error) {
	return internalOnly(s.repo.CountByStatus(ctx, StatusCompleted))
}

func (s *service) CountPending(ctx context.Context) (int64, error) {
	return internalOnly(s.repo.CountByStatus(ctx, StatusPending))
}

func internalOnly(n int64, err error) (int64, error) {
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(msg)
	}
	return apperror.Internal(err)
}

func wrapList(payments []Payment, err error) ([]Payment, error) {
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if payments == nil {
		payments = []Payment{}
	}
	return payments, nil
}
