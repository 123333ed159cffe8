package email

import (
	"context"
	"log"
	"time"
)

// Sender is the outbound mail sink. Delivery is best-effort: callers
// log failures and move on, issuance never blocks on it.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

type TicketConfirmation struct {
	EventTitle   string
	TicketNumber string
	EventDate    time.Time
	Venue        string
	QRData       string
}

type EventReminder struct {
	EventTitle   string
	EventDate    time.Time
	Venue        string
	TicketNumber string
}

func (s *Sender) SendTicketConfirmation(ctx context.Context, toEmail string, msg TicketConfirmation) error {
	log.Printf("email: ticket confirmation to %s, ticket %s for %q at %s", toEmail, msg.TicketNumber, msg.EventTitle, msg.Venue)
	return nil
}

func (s *Sender) SendEventReminder(ctx context.Context, toEmail string, msg EventReminder) error {
	log.Printf("email: event reminder to %s, %q on %s at %s (ticket %s)", toEmail, msg.EventTitle, msg.EventDate.Format(time.RFC1123), msg.Venue, msg.TicketNumber)
	return nil
}
