package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ClassRegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_class_registrations_total",
			Help: "Class registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	ClassCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymhub_class_cancellations_total",
			Help: "Total number of class registration cancellations",
		},
	)

	TrainingSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_training_sessions_total",
			Help: "Training session scheduling attempts by outcome",
		},
		[]string{"outcome"},
	)

	MembershipsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_memberships_created_total",
			Help: "Total number of memberships created",
		},
		[]string{"type"},
	)

	PaymentTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_payment_transitions_total",
			Help: "Payment status transitions",
		},
		[]string{"to"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymhub_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordRegistration counts a registration attempt; outcome is "success" or an apperror kind.
func RecordRegistration(outcome string) {
	ClassRegistrationsTotal.WithLabelValues(outcome).Inc()
}

func RecordCancellation() {
	ClassCancellationsTotal.Inc()
}

func RecordTrainingSession(outcome string) {
	TrainingSessionsTotal.WithLabelValues(outcome).Inc()
}

func RecordMembership(membershipType string) {
	MembershipsCreatedTotal.WithLabelValues(membershipType).Inc()
}

func RecordPaymentTransition(to string) {
	PaymentTransitionsTotal.WithLabelValues(to).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func SetEmailQueueLength(n int64) {
	EmailQueueLength.Set(float64(n))
}
