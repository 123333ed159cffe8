package repository

import (
	"context"
	"time"

	"github.com/avdeev-m/ticketline/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReminderRepository interface {
	Create(ctx context.Context, reminder *domain.Reminder) error
	DueBefore(ctx context.Context, deadline time.Time, limit int) ([]domain.Reminder, error)
	// Claim flips sent=false to sent=true for one reminder. Two sweeps
	// racing on the same row produce exactly one true return.
	Claim(ctx context.Context, id string) (bool, error)
	RescheduleUnsent(ctx context.Context, ticketID string, scheduledFor time.Time) (int64, error)
}

type PGReminderRepository struct {
	db *pgxpool.Pool
}

func NewReminderRepository(db *pgxpool.Pool) ReminderRepository {
	return &PGReminderRepository{db: db}
}

const reminderColumns = `id, user_id, event_id, ticket_id, scheduled_for, sent, sent_at, created_at, updated_at`

func scanReminder(row pgx.Row) (*domain.Reminder, error) {
	var rem domain.Reminder
	if err := row.Scan(&rem.ID, &rem.UserID, &rem.EventID, &rem.TicketID, &rem.ScheduledFor, &rem.Sent, &rem.SentAt, &rem.CreatedAt, &rem.UpdatedAt); err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *PGReminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	return r.db.QueryRow(ctx, `INSERT INTO reminders (id, user_id, event_id, ticket_id, scheduled_for, sent)
		VALUES ($1, $2, $3, $4, $5, false)
		RETURNING created_at, updated_at`,
		reminder.ID, reminder.UserID, reminder.EventID, reminder.TicketID, reminder.ScheduledFor).
		Scan(&reminder.CreatedAt, &reminder.UpdatedAt)
}

func (r *PGReminderRepository) DueBefore(ctx context.Context, deadline time.Time, limit int) ([]domain.Reminder, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reminderColumns+` FROM reminders
		WHERE scheduled_for <= $1 AND sent = false
		ORDER BY scheduled_for LIMIT $2`, deadline, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []domain.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, *rem)
	}
	return due, rows.Err()
}

func (r *PGReminderRepository) Claim(ctx context.Context, id string) (bool, error) {
	res, err := r.db.Exec(ctx, `UPDATE reminders SET sent=true, sent_at=now(), updated_at=now()
		WHERE id=$1 AND sent=false`, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *PGReminderRepository) RescheduleUnsent(ctx context.Context, ticketID string, scheduledFor time.Time) (int64, error) {
	res, err := r.db.Exec(ctx, `UPDATE reminders SET scheduled_for=$1, updated_at=now()
		WHERE ticket_id=$2 AND sent=false`, scheduledFor, ticketID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ ReminderRepository = (*PGReminderRepository)(nil)
