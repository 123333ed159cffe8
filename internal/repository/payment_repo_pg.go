package repository

import (
	"context"
	"errors"
	"time"

	"github.com/avdeev-m/ticketline/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, reference string, status domain.PaymentStatus, providerResponse []byte) (*domain.Payment, error)
	BindTicket(ctx context.Context, paymentID, ticketID string) error
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Payment, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

const paymentColumns = `id, reference, user_id, user_email, event_id, amount, currency, status, ticket_number, reminder_offset, provider_response, ticket_id, created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.Reference, &p.UserID, &p.UserEmail, &p.EventID, &p.Amount, &p.Currency, &p.Status, &p.TicketNumber, &p.ReminderOffset, &p.ProviderResponse, &p.TicketID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return r.db.QueryRow(ctx, `INSERT INTO payments (id, reference, user_id, user_email, event_id, amount, currency, status, ticket_number, reminder_offset, provider_response)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		payment.ID, payment.Reference, payment.UserID, payment.UserEmail, payment.EventID, payment.Amount, payment.Currency, payment.Status, payment.TicketNumber, payment.ReminderOffset, payment.ProviderResponse).
		Scan(&payment.CreatedAt, &payment.UpdatedAt)
}

func (r *PGPaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE reference=$1`, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *PGPaymentRepository) UpdateStatus(ctx context.Context, reference string, status domain.PaymentStatus, providerResponse []byte) (*domain.Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, `UPDATE payments SET status=$1, provider_response=COALESCE($2, provider_response), updated_at=now()
		WHERE reference=$3 RETURNING `+paymentColumns, status, providerResponse, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *PGPaymentRepository) BindTicket(ctx context.Context, paymentID, ticketID string) error {
	_, err := r.db.Exec(ctx, `UPDATE payments SET ticket_id=$1, updated_at=now() WHERE id=$2 AND (ticket_id IS NULL OR ticket_id <> $1)`, ticketID, paymentID)
	return err
}

func (r *PGPaymentRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `UPDATE payments SET status=$1, updated_at=now()
		WHERE status=$2 AND created_at <= $3 RETURNING `+paymentColumns,
		domain.PaymentStatusFailed, domain.PaymentStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *p)
	}
	return expired, rows.Err()
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
