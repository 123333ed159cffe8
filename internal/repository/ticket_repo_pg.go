package repository

import (
	"context"
	"errors"

	"github.com/avdeev-m/ticketline/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	// CreateIfAbsent inserts the ticket keyed by its ticket number and
	// decrements event inventory in the same transaction. When the
	// number already exists it returns the stored ticket with
	// isNew=false and touches nothing.
	CreateIfAbsent(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, bool, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*domain.Ticket, error)
	MarkUsed(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	UpdateReminderOffset(ctx context.Context, ticketID string, offset domain.ReminderOffset) error
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

const ticketColumns = `id, ticket_number, event_id, user_id, user_email, qr_data, status, price, payment_id, reminder_offset, scanned_at, created_at, updated_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(&t.ID, &t.TicketNumber, &t.EventID, &t.UserID, &t.UserEmail, &t.QRData, &t.Status, &t.Price, &t.PaymentID, &t.ReminderOffset, &t.ScannedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGTicketRepository) CreateIfAbsent(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	// The unique key on ticket_number is the serialization point: of
	// two racing verifications only one insert lands.
	created, err := scanTicket(tx.QueryRow(ctx, `INSERT INTO tickets (id, ticket_number, event_id, user_id, user_email, qr_data, status, price, payment_id, reminder_offset)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (ticket_number) DO NOTHING
		RETURNING `+ticketColumns,
		ticket.ID, ticket.TicketNumber, ticket.EventID, ticket.UserID, ticket.UserEmail, ticket.QRData, ticket.Status, ticket.Price, ticket.PaymentID, ticket.ReminderOffset))
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := scanTicket(tx.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE ticket_number=$1`, ticket.TicketNumber))
		if err != nil {
			return nil, false, err
		}
		return existing, false, tx.Commit(ctx)
	}
	if err != nil {
		return nil, false, err
	}

	res, err := tx.Exec(ctx, `UPDATE events SET available_tickets = available_tickets - 1, updated_at = now()
		WHERE id=$1 AND available_tickets > 0`, ticket.EventID)
	if err != nil {
		return nil, false, err
	}
	if res.RowsAffected() == 0 {
		return nil, false, domain.ErrSoldOut
	}

	return created, true, tx.Commit(ctx)
}

func (r *PGTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return t, err
}

func (r *PGTicketRepository) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE ticket_number=$1`, ticketNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return t, err
}

func (r *PGTicketRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE payment_id=$1`, paymentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return t, err
}

func (r *PGTicketRepository) MarkUsed(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, `UPDATE tickets SET status=$1, scanned_at=now(), updated_at=now()
		WHERE ticket_number=$2 AND status=$3 RETURNING `+ticketColumns,
		domain.TicketStatusUsed, ticketNumber, domain.TicketStatusPaid))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either unknown or already used; the caller disambiguates.
		return nil, domain.ErrTicketAlreadyUsed
	}
	return t, err
}

func (r *PGTicketRepository) UpdateReminderOffset(ctx context.Context, ticketID string, offset domain.ReminderOffset) error {
	res, err := r.db.Exec(ctx, `UPDATE tickets SET reminder_offset=$1, updated_at=now() WHERE id=$2`, offset, ticketID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ TicketRepository = (*PGTicketRepository)(nil)
