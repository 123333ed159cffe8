package domain

import "time"

// ReminderOffset is how far before the event start the reminder fires.
type ReminderOffset string

const (
	ReminderOneHour   ReminderOffset = "1h"
	ReminderOneDay    ReminderOffset = "1d"
	ReminderThreeDays ReminderOffset = "3d"
	ReminderOneWeek   ReminderOffset = "1w"
	ReminderTwoWeeks  ReminderOffset = "2w"
)

func (o ReminderOffset) Valid() bool {
	switch o {
	case ReminderOneHour, ReminderOneDay, ReminderThreeDays, ReminderOneWeek, ReminderTwoWeeks:
		return true
	}
	return false
}

// ReminderDate resolves the absolute send time for an event starting at eventStart.
func (o ReminderOffset) ReminderDate(eventStart time.Time) time.Time {
	switch o {
	case ReminderOneHour:
		return eventStart.Add(-time.Hour)
	case ReminderOneDay:
		return eventStart.AddDate(0, 0, -1)
	case ReminderThreeDays:
		return eventStart.AddDate(0, 0, -3)
	case ReminderOneWeek:
		return eventStart.AddDate(0, 0, -7)
	case ReminderTwoWeeks:
		return eventStart.AddDate(0, 0, -14)
	}
	return eventStart
}

type Reminder struct {
	ID           string
	UserID       string
	EventID      string
	TicketID     string
	ScheduledFor time.Time
	Sent         bool
	SentAt       *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
