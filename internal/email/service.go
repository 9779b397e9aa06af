package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gymhub/internal/logger"
	"gymhub/internal/metrics"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"

	maxTries   = 3
	retryDelay = 5 * time.Second
	popTimeout = 2 * time.Second

	timeLayout = "Jan 2, 2006 at 3:04 PM"
	signature  = "- GymHub Team"
)

const (
	TypeClassRegistration = "class_registration"
	TypeClassCancellation = "class_cancellation"
	TypeSessionScheduled  = "session_scheduled"
	TypePaymentReceipt    = "payment_receipt"
	TypeMembership        = "membership_activated"
	TypeGeneric           = "generic"
)

type EmailJob struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
	send     func(EmailJob) error
}

// New builds a queue-backed mailer. The redis client is shared with other
// components and is not closed by the service.
func New(rdb *redis.Client, fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass string) *Service {
	s := &Service{
		redis:    rdb,
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
	s.send = s.sendNow
	return s
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, TypeGeneric, to, name, subject, body)
}

func (s *Service) enqueue(ctx context.Context, emailType, to, name, subject, body string) error {
	job := EmailJob{
		ID:      uuid.NewString(),
		Type:    emailType,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Error("failed to marshal email job", "error", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Error("failed to queue email", "to", to, "type", emailType, "error", err)
		metrics.RecordEmail(emailType, "queue_failed")
		return err
	}

	metrics.RecordEmail(emailType, "queued")
	logger.Info("email queued", "job_id", job.ID, "type", emailType, "to", to)
	return nil
}

// Start consumes the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, popTimeout, queueKey).Result()
	if err != nil {
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("bad email payload", "error", err)
		return
	}

	s.deliver(ctx, job)
	metrics.SetEmailQueueLength(s.QueueLength(ctx))
}

func (s *Service) deliver(ctx context.Context, job EmailJob) {
	job.Tries++
	logger.Debug("sending email", "job_id", job.ID, "to", job.To, "attempt", job.Tries)

	err := s.send(job)
	if err == nil {
		metrics.RecordEmail(job.Type, "sent")
		logger.Info("email sent", "job_id", job.ID, "to", job.To)
		return
	}

	logger.Warn("email delivery failed", "job_id", job.ID, "to", job.To, "attempt", job.Tries, "error", err)

	if job.Tries >= maxTries {
		metrics.RecordEmail(job.Type, "failed")
		s.saveFailed(ctx, job, err)
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(retryDelay):
	}

	data, _ := json.Marshal(job)
	if err := s.redis.LPush(context.WithoutCancel(ctx), queueKey, data).Err(); err != nil {
		logger.Error("failed to requeue email", "job_id", job.ID, "error", err)
	}
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(ctx context.Context, job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.WithoutCancel(ctx), failedQueueKey, data)
	logger.Error("email moved to failed queue", "job_id", job.ID, "to", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) SendClassRegistration(ctx context.Context, to, name, className, schedule string) error {
	subject := "Class Registration Confirmed - " + className
	body := fmt.Sprintf(`Hi %s,

You are registered for %s.

Schedule: %s

See you in class!

%s`, name, className, schedule, signature)

	return s.enqueue(ctx, TypeClassRegistration, to, name, subject, body)
}

func (s *Service) SendClassCancellation(ctx context.Context, to, name, className string) error {
	subject := "Class Registration Cancelled - " + className
	body := fmt.Sprintf(`Hi %s,

Your registration for %s has been cancelled.

%s`, name, className, signature)

	return s.enqueue(ctx, TypeClassCancellation, to, name, subject, body)
}

func (s *Service) SendSessionScheduled(ctx context.Context, to, name, sessionType string, when time.Time, durationMinutes int) error {
	subject := "Training Session Scheduled"
	body := fmt.Sprintf(`Hi %s,

Your training session is scheduled.

Type: %s
Time: %s
Duration: %d minutes

%s`, name, sessionType, when.Format(timeLayout), durationMinutes, signature)

	return s.enqueue(ctx, TypeSessionScheduled, to, name, subject, body)
}

func (s *Service) SendPaymentReceipt(ctx context.Context, to, name, transactionID string, amountCents int64) error {
	subject := "Payment Receipt - " + transactionID
	body := fmt.Sprintf(`Hi %s,

We received your payment.

Transaction: %s
Amount: %d.%02d

%s`, name, transactionID, amountCents/100, amountCents%100, signature)

	return s.enqueue(ctx, TypePaymentReceipt, to, name, subject, body)
}

func (s *Service) SendMembershipActivated(ctx context.Context, to, name, membershipType string, endDate time.Time) error {
	subject := "Membership Activated - " + membershipType
	body := fmt.Sprintf(`Hi %s,

Your %s membership is active until %s.

%s`, name, membershipType, endDate.Format("Jan 2, 2006"), signature)

	return s.enqueue(ctx, TypeMembership, to, name, subject, body)
}
