package booking

import (
	"context"
	"time"
)

// Ledger is the authoritative store of bookings and the only place they are mutated.
// Callers serialize mutations per slot key; implementations still guard the
// one-active-booking-per-slot rule on their own.
type Ledger interface {
	// Append assigns ID and CreatedAt and persists b as pending.
	// It returns ErrDuplicateKey if an active booking already holds the slot.
	Append(ctx context.Context, b *Booking) error

	// Transition moves a pending booking to a terminal status. Confirming a
	// booking also rejects any other pending booking on the same slot; those
	// are returned as siblings. It returns ErrNotFound or ErrInvalidTransition.
	Transition(ctx context.Context, id string, to Status, adminID string, at time.Time) (b *Booking, siblings []*Booking, err error)

	GetByID(ctx context.Context, id string) (*Booking, error)

	// Query returns one page of matching bookings and the total match count.
	Query(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// ActiveOnDay returns every pending or confirmed booking of a resource on a date.
	ActiveOnDay(ctx context.Context, resourceID string, date time.Time) ([]*Booking, error)
}
