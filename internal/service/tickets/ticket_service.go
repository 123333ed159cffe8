package tickets

import (
	"context"
	"errors"
	"log"

	"github.com/avdeev-m/ticketline/internal/domain"
	"github.com/avdeev-m/ticketline/internal/qrticket"
	"github.com/avdeev-m/ticketline/internal/repository"
)

type TicketUseCase interface {
	ScanTicket(ctx context.Context, qrData string) (*domain.Ticket, error)
	UpdateReminder(ctx context.Context, ticketID string, offset domain.ReminderOffset) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
}

type TicketService struct {
	tickets   repository.TicketRepository
	events    repository.EventRepository
	reminders repository.ReminderRepository
}

func NewTicketService(tickets repository.TicketRepository, events repository.EventRepository, reminders repository.ReminderRepository) *TicketService {
	return &TicketService{tickets: tickets, events: events, reminders: reminders}
}

// ScanTicket flips a paid ticket to used. The conditional update makes
// a second scan of the same code fail instead of silently passing.
func (s *TicketService) ScanTicket(ctx context.Context, qrData string) (*domain.Ticket, error) {
	claims := qrticket.Decode(qrData)
	if claims == nil {
		return nil, domain.ErrInvalidTicketCode
	}

	ticket, err := s.tickets.GetByNumber(ctx, claims.TicketNumber)
	if err != nil {
		return nil, err
	}
	if !qrticket.Verify(qrData, ticket.TicketNumber) {
		return nil, domain.ErrInvalidTicketCode
	}

	switch ticket.Status {
	case domain.TicketStatusUsed:
		return ticket, domain.ErrTicketAlreadyUsed
	case domain.TicketStatusPaid:
	default:
		return nil, domain.ErrInvalidTicketCode
	}

	used, err := s.tickets.MarkUsed(ctx, ticket.TicketNumber)
	if errors.Is(err, domain.ErrTicketAlreadyUsed) {
		// Lost the race to another scanner; report the winner's result.
		if current, getErr := s.tickets.GetByNumber(ctx, ticket.TicketNumber); getErr == nil {
			return current, domain.ErrTicketAlreadyUsed
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	log.Printf("ticket %s scanned", used.TicketNumber)
	return used, nil
}

// UpdateReminder changes the ticket's reminder preference and moves the
// unsent reminder accordingly. Once the reminder has fired the
// reschedule is a no-op; no new reminder is created retroactively.
func (s *TicketService) UpdateReminder(ctx context.Context, ticketID string, offset domain.ReminderOffset) (*domain.Ticket, error) {
	if !offset.Valid() {
		return nil, errors.New("invalid reminder offset")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}

	if err := s.tickets.UpdateReminderOffset(ctx, ticketID, offset); err != nil {
		return nil, err
	}
	ticket.ReminderOffset = offset

	moved, err := s.reminders.RescheduleUnsent(ctx, ticketID, offset.ReminderDate(event.StartDate))
	if err != nil {
		return nil, err
	}
	if moved == 0 {
		log.Printf("reminder for ticket %s already sent, schedule unchanged", ticket.TicketNumber)
	}

	return ticket, nil
}

func (s *TicketService) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	return s.tickets.GetByNumber(ctx, ticketNumber)
}

var _ TicketUseCase = (*TicketService)(nil)
