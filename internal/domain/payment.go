package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusSuccess  PaymentStatus = "SUCCESS"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Payment is one purchase attempt, keyed by a globally unique reference.
// TicketNumber is generated at initialization so that retried or
// concurrent verifications all converge on the same ticket.
type Payment struct {
	ID               string
	Reference        string
	UserID           string
	UserEmail        string
	EventID          string
	Amount           int64
	Currency         string
	Status           PaymentStatus
	TicketNumber     string
	ReminderOffset   ReminderOffset
	ProviderResponse []byte
	TicketID         *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
