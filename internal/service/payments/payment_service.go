package payments

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/avdeev-m/ticketline/internal/domain"
	"github.com/avdeev-m/ticketline/internal/kafka"
	"github.com/avdeev-m/ticketline/internal/monitoring"
	"github.com/avdeev-m/ticketline/internal/paystack"
	"github.com/avdeev-m/ticketline/internal/qrticket"
	"github.com/avdeev-m/ticketline/internal/repository"
	"github.com/google/uuid"
)

type PaymentUseCase interface {
	InitializePayment(ctx context.Context, input InitializePaymentInput) (*InitializeResult, error)
	InitializeDemoPayment(ctx context.Context, input InitializePaymentInput) (*VerifyOutcome, error)
	VerifyPayment(ctx context.Context, reference string) (*VerifyOutcome, error)
	GetPaymentStatus(ctx context.Context, reference string) (*VerifyOutcome, error)
	ExpirePendingPayments(ctx context.Context) ([]domain.Payment, error)
}

// Oracle is the remote payment provider: the source of truth for
// whether money actually moved.
type Oracle interface {
	Initialize(ctx context.Context, email string, amountMinorUnits int64, reference string, metadata map[string]string) (*paystack.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

type Cache interface {
	AcquireVerifyLock(ctx context.Context, reference string, ttl time.Duration) (bool, error)
	ReleaseVerifyLock(ctx context.Context, reference string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type PaymentService struct {
	payments           repository.PaymentRepository
	tickets            repository.TicketRepository
	events             repository.EventRepository
	reminders          repository.ReminderRepository
	cache              Cache
	producer           Producer
	oracle             Oracle
	paymentTopic       string
	notificationsTopic string
	currency           string
	pendingTTL         time.Duration
	verifyLockTTL      time.Duration
}

type InitializePaymentInput struct {
	EventID   string                `json:"event_id"`
	UserID    string                `json:"user_id"`
	UserEmail string                `json:"user_email"`
	Reminder  domain.ReminderOffset `json:"reminder"`
}

type InitializeResult struct {
	PaymentURL string `json:"payment_url"`
	Reference  string `json:"reference"`
	AccessCode string `json:"access_code"`
}

type VerifyOutcome struct {
	Payment *domain.Payment `json:"payment"`
	Ticket  *domain.Ticket  `json:"ticket,omitempty"`
}

type PaymentServiceOption func(*PaymentService)

func WithNotificationsTopic(topic string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.notificationsTopic = topic
	}
}

func NewPaymentService(
	payments repository.PaymentRepository,
	tickets repository.TicketRepository,
	events repository.EventRepository,
	reminders repository.ReminderRepository,
	cache Cache,
	producer Producer,
	oracle Oracle,
	paymentTopic string,
	currency string,
	pendingTTL, verifyLockTTL time.Duration,
	opts ...PaymentServiceOption,
) *PaymentService {
	service := &PaymentService{
		payments:      payments,
		tickets:       tickets,
		events:        events,
		reminders:     reminders,
		cache:         cache,
		producer:      producer,
		oracle:        oracle,
		paymentTopic:  paymentTopic,
		currency:      currency,
		pendingTTL:    pendingTTL,
		verifyLockTTL: verifyLockTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *PaymentService) InitializePayment(ctx context.Context, input InitializePaymentInput) (*InitializeResult, error) {
	event, payment, err := s.preparePayment(ctx, input, "")
	if err != nil {
		return nil, err
	}

	initRes, err := s.oracle.Initialize(ctx, payment.UserEmail, payment.Amount, payment.Reference, map[string]string{
		"event_id":      event.ID,
		"event_title":   event.Title,
		"ticket_number": payment.TicketNumber,
		"user_id":       payment.UserID,
	})
	if err != nil {
		return nil, err
	}

	if snapshot, err := json.Marshal(initRes); err == nil {
		if _, err := s.payments.UpdateStatus(ctx, payment.Reference, domain.PaymentStatusPending, snapshot); err != nil {
			log.Printf("store provider snapshot for %s: %v", payment.Reference, err)
		}
	}

	s.publish(ctx, s.paymentTopic, kafka.PaymentEvent{
		Type:         "payment_initialized",
		Reference:    payment.Reference,
		EventID:      event.ID,
		UserEmail:    payment.UserEmail,
		TicketNumber: payment.TicketNumber,
		EventTitle:   event.Title,
		Status:       string(payment.Status),
	})

	return &InitializeResult{
		PaymentURL: initRes.AuthorizationURL,
		Reference:  initRes.Reference,
		AccessCode: initRes.AccessCode,
	}, nil
}

// InitializeDemoPayment bypasses the provider entirely: the payment is
// created already successful and issuance runs immediately, through the
// same create-if-absent path as real verification.
func (s *PaymentService) InitializeDemoPayment(ctx context.Context, input InitializePaymentInput) (*VerifyOutcome, error) {
	event, payment, err := s.preparePayment(ctx, input, "DEMO-")
	if err != nil {
		return nil, err
	}

	snapshot, _ := json.Marshal(map[string]string{"reference": payment.Reference, "channel": "demo", "status": "success"})
	payment, err = s.payments.UpdateStatus(ctx, payment.Reference, domain.PaymentStatusSuccess, snapshot)
	if err != nil {
		return nil, err
	}

	ticket, err := s.issue(ctx, payment, event)
	if err != nil {
		return nil, err
	}
	return &VerifyOutcome{Payment: payment, Ticket: ticket}, nil
}

// preparePayment runs the shared initialization front half: catalog
// checks, identifier generation and the pending payment insert.
func (s *PaymentService) preparePayment(ctx context.Context, input InitializePaymentInput, refPrefix string) (*domain.Event, *domain.Payment, error) {
	if input.EventID == "" {
		return nil, nil, errors.New("event id is required")
	}
	if input.UserID == "" || input.UserEmail == "" {
		return nil, nil, errors.New("user id and email are required")
	}

	event, err := s.events.GetByID(ctx, input.EventID)
	if err != nil {
		return nil, nil, err
	}
	if event.Status != domain.EventStatusPublished {
		return nil, nil, domain.ErrEventNotOnSale
	}
	// Best-effort gate; the authoritative decrement happens inside the
	// issuance transaction.
	if event.AvailableTickets <= 0 {
		return nil, nil, domain.ErrSoldOut
	}

	offset := input.Reminder
	if !offset.Valid() {
		offset = event.DefaultReminder
	}

	payment := &domain.Payment{
		ID:             uuid.NewString(),
		Reference:      refPrefix + domain.GenerateReference(),
		UserID:         input.UserID,
		UserEmail:      input.UserEmail,
		EventID:        event.ID,
		Amount:         event.TicketPrice,
		Currency:       s.currency,
		Status:         domain.PaymentStatusPending,
		TicketNumber:   domain.GenerateTicketNumber(),
		ReminderOffset: offset,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, nil, err
	}

	log.Printf("payment %s initialized for event %s", payment.Reference, event.ID)
	return event, payment, nil
}

func (s *PaymentService) VerifyPayment(ctx context.Context, reference string) (*VerifyOutcome, error) {
	if reference == "" {
		return nil, errors.New("reference is required")
	}

	payment, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	// Idempotency fast path: the redirect flow and the webhook both hit
	// verify, so a resolved payment just returns its ticket.
	if payment.Status == domain.PaymentStatusSuccess {
		ticket, err := s.tickets.GetByPaymentID(ctx, payment.ID)
		if err == nil {
			monitoring.TrackVerification("already_verified")
			return &VerifyOutcome{Payment: payment, Ticket: ticket}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		log.Printf("payment %s successful but ticket missing, re-running issuance", reference)
	}

	if payment.Status == domain.PaymentStatusFailed {
		monitoring.TrackVerification("failed")
		return nil, domain.ErrVerificationFailed
	}

	if s.cache != nil {
		locked, err := s.cache.AcquireVerifyLock(ctx, reference, s.verifyLockTTL)
		if err != nil {
			log.Printf("verify lock for %s: %v", reference, err)
		} else if locked {
			defer func() {
				_ = s.cache.ReleaseVerifyLock(ctx, reference)
			}()
		}
	}

	result, err := s.oracle.Verify(ctx, reference)
	if err != nil {
		// Transport failures leave the payment pending; the client can
		// safely retry.
		monitoring.TrackVerification("oracle_unavailable")
		return nil, err
	}

	if !result.Succeeded() {
		if _, err := s.payments.UpdateStatus(ctx, reference, domain.PaymentStatusFailed, result.Raw); err != nil {
			return nil, err
		}
		monitoring.TrackVerification("rejected")
		return nil, domain.ErrVerificationFailed
	}

	payment, err = s.payments.UpdateStatus(ctx, reference, domain.PaymentStatusSuccess, result.Raw)
	if err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, payment.EventID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.issue(ctx, payment, event)
	if err != nil {
		return nil, err
	}

	monitoring.TrackVerification("success")
	log.Printf("payment %s verified, ticket %s", reference, ticket.TicketNumber)
	return &VerifyOutcome{Payment: payment, Ticket: ticket}, nil
}

// issue creates the ticket bound to the payment if it does not exist
// yet. Only the call that actually inserts the row triggers inventory
// decrement, reminder creation and the confirmation notification.
func (s *PaymentService) issue(ctx context.Context, payment *domain.Payment, event *domain.Event) (*domain.Ticket, error) {
	ticket, isNew, err := s.tickets.CreateIfAbsent(ctx, &domain.Ticket{
		ID:           uuid.NewString(),
		TicketNumber: payment.TicketNumber,
		EventID:      event.ID,
		UserID:       payment.UserID,
		UserEmail:    payment.UserEmail,
		QRData: qrticket.Encode(qrticket.Claims{
			TicketNumber: payment.TicketNumber,
			EventID:      event.ID,
			UserID:       payment.UserID,
			EventTitle:   event.Title,
		}),
		Status:         domain.TicketStatusPaid,
		Price:          payment.Amount,
		PaymentID:      payment.ID,
		ReminderOffset: payment.ReminderOffset,
	})
	if err != nil {
		return nil, err
	}

	// Tolerant of the race where a concurrent call created the ticket:
	// the binding is simply re-pointed at whichever row won.
	if payment.TicketID == nil || *payment.TicketID != ticket.ID {
		if err := s.payments.BindTicket(ctx, payment.ID, ticket.ID); err != nil {
			log.Printf("bind ticket %s to payment %s: %v", ticket.ID, payment.ID, err)
		}
		payment.TicketID = &ticket.ID
	}

	if !isNew {
		return ticket, nil
	}

	monitoring.TrackTicketIssued()

	reminder := &domain.Reminder{
		ID:           uuid.NewString(),
		UserID:       payment.UserID,
		EventID:      event.ID,
		TicketID:     ticket.ID,
		ScheduledFor: ticket.ReminderOffset.ReminderDate(event.StartDate),
	}
	if err := s.reminders.Create(ctx, reminder); err != nil {
		log.Printf("create reminder for ticket %s: %v", ticket.TicketNumber, err)
	}

	confirmation := kafka.PaymentEvent{
		Type:         "ticket_confirmed",
		Reference:    payment.Reference,
		EventID:      event.ID,
		UserEmail:    payment.UserEmail,
		TicketNumber: ticket.TicketNumber,
		EventTitle:   event.Title,
		EventDate:    event.StartDate,
		Venue:        event.Venue,
		QRData:       ticket.QRData,
		Status:       string(payment.Status),
	}
	s.publish(ctx, s.paymentTopic, confirmation)
	if s.notificationsTopic != "" {
		s.publish(ctx, s.notificationsTopic, confirmation)
	}

	return ticket, nil
}

func (s *PaymentService) GetPaymentStatus(ctx context.Context, reference string) (*VerifyOutcome, error) {
	payment, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	outcome := &VerifyOutcome{Payment: payment}
	if payment.Status == domain.PaymentStatusSuccess {
		if ticket, err := s.tickets.GetByPaymentID(ctx, payment.ID); err == nil {
			outcome.Ticket = ticket
		}
	}
	return outcome, nil
}

// ExpirePendingPayments fails pending payments older than the TTL.
// Rows are kept, so a late verify finds the record and gets a final
// rejection instead of a dangling reference.
func (s *PaymentService) ExpirePendingPayments(ctx context.Context) ([]domain.Payment, error) {
	expired, err := s.payments.ExpirePendingBefore(ctx, time.Now().Add(-s.pendingTTL))
	if err != nil {
		return nil, err
	}

	for _, p := range expired {
		s.publish(ctx, s.paymentTopic, kafka.PaymentEvent{
			Type:      "payment_expired",
			Reference: p.Reference,
			EventID:   p.EventID,
			UserEmail: p.UserEmail,
			Status:    string(p.Status),
		})
	}
	monitoring.TrackPaymentsExpired(len(expired))
	return expired, nil
}

func (s *PaymentService) publish(ctx context.Context, topic string, event kafka.PaymentEvent) {
	if s.producer == nil || topic == "" {
		return
	}
	if err := s.producer.Publish(ctx, topic, event.Reference, event); err != nil {
		log.Printf("publish %s for %s: %v", event.Type, event.Reference, err)
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)
