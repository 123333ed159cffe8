package domain

import "time"

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

type Event struct {
	ID               string
	Title            string
	Venue            string
	StartDate        time.Time
	TicketPrice      int64
	TotalTickets     int
	AvailableTickets int
	Status           EventStatus
	DefaultReminder  ReminderOffset
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
