package booking

import (
	"context"
	"time"
)

const (
	EventCreated   = "booking.created"
	EventConfirmed = "booking.confirmed"
	EventRejected  = "booking.rejected"
)

// Publisher delivers domain events to an external broker.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

// Event is the message body published for every booking lifecycle change.
type Event struct {
	Type       string     `json:"type"`
	BookingID  string     `json:"booking_id"`
	UserID     string     `json:"user_id"`
	ResourceID string     `json:"resource_id"`
	SportID    string     `json:"sport_id"`
	Date       string     `json:"date"`
	TimeSlotID string     `json:"time_slot_id"`
	Status     Status     `json:"status"`
	DecidedBy  *string    `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func newEvent(typ string, b *Booking, at time.Time) Event {
	return Event{
		Type:       typ,
		BookingID:  b.ID,
		UserID:     b.UserID,
		ResourceID: b.ResourceID,
		SportID:    b.SportID,
		Date:       b.Date.Format(DateLayout),
		TimeSlotID: b.TimeSlotID,
		Status:     b.Status,
		DecidedBy:  b.DecidedBy,
		DecidedAt:  b.DecidedAt,
		OccurredAt: at.UTC(),
	}
}
