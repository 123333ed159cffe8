package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	paymentVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Payment verification calls by outcome",
		},
		[]string{"outcome"},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Tickets created by the issuance path",
		},
	)

	remindersDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_dispatched_total",
			Help: "Reminder sweep dispatch results",
		},
		[]string{"result"},
	)

	paymentsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_expired_total",
			Help: "Pending payments failed by the expiry sweep",
		},
	)
)

func TrackVerification(outcome string) {
	paymentVerifications.WithLabelValues(outcome).Inc()
}

func TrackTicketIssued() {
	ticketsIssued.Inc()
}

func TrackReminderDispatch(result string) {
	remindersDispatched.WithLabelValues(result).Inc()
}

func TrackPaymentsExpired(n int) {
	paymentsExpired.Add(float64(n))
}
