package domain

import "time"

type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "PENDING"
	TicketStatusPaid      TicketStatus = "PAID"
	TicketStatusUsed      TicketStatus = "USED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

type Ticket struct {
	ID             string
	TicketNumber   string
	EventID        string
	UserID         string
	UserEmail      string
	QRData         string
	Status         TicketStatus
	Price          int64
	PaymentID      string
	ReminderOffset ReminderOffset
	ScannedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
