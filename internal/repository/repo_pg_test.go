package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewPaymentRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewPaymentRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewTicketRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewTicketRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewEventRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewEventRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewReminderRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewReminderRepository(pool)
	assert.NotNil(t, repo)
}
