// Package scheduler owns the reminder sweep: a periodic batch poll
// over due reminders. Polling rather than per-reminder timers keeps the
// component stateless across restarts; a crashed worker just resumes on
// the next tick.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/avdeev-m/ticketline/internal/domain"
	"github.com/avdeev-m/ticketline/internal/email"
	"github.com/avdeev-m/ticketline/internal/monitoring"
	"github.com/avdeev-m/ticketline/internal/repository"
)

type EmailSender interface {
	SendEventReminder(ctx context.Context, toEmail string, msg email.EventReminder) error
}

type ReminderScheduler struct {
	reminders repository.ReminderRepository
	tickets   repository.TicketRepository
	events    repository.EventRepository
	sender    EmailSender
	batchSize int
}

func NewReminderScheduler(
	reminders repository.ReminderRepository,
	tickets repository.TicketRepository,
	events repository.EventRepository,
	sender EmailSender,
	batchSize int,
) *ReminderScheduler {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ReminderScheduler{
		reminders: reminders,
		tickets:   tickets,
		events:    events,
		sender:    sender,
		batchSize: batchSize,
	}
}

// Run ticks on the given interval until the context is canceled.
func (s *ReminderScheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, err := s.Tick(ctx)
			if err != nil {
				log.Printf("reminder sweep error: %v", err)
				continue
			}
			if sent > 0 {
				log.Printf("reminder sweep dispatched %d reminders", sent)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Tick runs one sweep: claim each due reminder with a conditional
// update, then dispatch. Claiming first means two racing scheduler
// instances produce exactly one send per reminder; a dispatch failure
// after a won claim is logged and not retried.
func (s *ReminderScheduler) Tick(ctx context.Context) (int, error) {
	due, err := s.reminders.DueBefore(ctx, time.Now(), s.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, reminder := range due {
		claimed, err := s.reminders.Claim(ctx, reminder.ID)
		if err != nil {
			log.Printf("claim reminder %s: %v", reminder.ID, err)
			continue
		}
		if !claimed {
			monitoring.TrackReminderDispatch("lost_claim")
			continue
		}

		if err := s.dispatch(ctx, reminder); err != nil {
			log.Printf("dispatch reminder %s: %v", reminder.ID, err)
			monitoring.TrackReminderDispatch("error")
			continue
		}
		monitoring.TrackReminderDispatch("sent")
		sent++
	}
	return sent, nil
}

func (s *ReminderScheduler) dispatch(ctx context.Context, reminder domain.Reminder) error {
	ticket, err := s.tickets.GetByID(ctx, reminder.TicketID)
	if err != nil {
		return err
	}
	event, err := s.events.GetByID(ctx, reminder.EventID)
	if err != nil {
		return err
	}

	return s.sender.SendEventReminder(ctx, ticket.UserEmail, email.EventReminder{
		EventTitle:   event.Title,
		EventDate:    event.StartDate,
		Venue:        event.Venue,
		TicketNumber: ticket.TicketNumber,
	})
}
