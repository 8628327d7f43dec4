package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/sport-hall-booking/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrInvalidReference  = apperror.New(http.StatusBadRequest, "unknown sport, resource or time slot")
	ErrInvalidDate       = apperror.New(http.StatusBadRequest, "booking date is in the past")
	ErrSlotConflict      = apperror.New(http.StatusConflict, "time slot already booked")
	ErrInvalidTransition = apperror.New(http.StatusConflict, "booking has already been decided")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidStatus     = apperror.New(http.StatusBadRequest, "invalid booking status")

	// ErrDuplicateKey is returned by a Ledger when the storage layer refuses a
	// second non-rejected booking for the same resource, date and slot.
	ErrDuplicateKey = apperror.New(http.StatusConflict, "duplicate active booking")
)

// DateLayout is the calendar date format used on the wire and in keys.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected:
		return true
	}
	return false
}

// Active reports whether a booking in this status holds its slot.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// SlotState is the derived availability of one slot on one day.
type SlotState string

const (
	SlotFree      SlotState = "free"
	SlotPending   SlotState = "pending"
	SlotConfirmed SlotState = "confirmed"
)

type Booking struct {
	ID         string
	UserID     string
	ResourceID string
	SportID    string
	// Date is a calendar date stored at midnight UTC.
	Date       time.Time
	TimeSlotID string
	Purpose    string
	Status     Status
	CreatedAt  time.Time
	DecidedAt  *time.Time
	DecidedBy  *string
}

// Cursor marks a position in (created_at, id) order for keyset paging.
// The zero Cursor is the position before the first booking.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

func (c *Cursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.ID == ""
}

type Filter struct {
	UserID     string
	ResourceID string
	// ResourceIDs restricts results to a set of resources when non-nil.
	// An empty non-nil slice matches nothing.
	ResourceIDs []string
	Date        *time.Time
	Status      Status
	// After switches to keyset paging in ascending (created_at, id) order.
	// Page and sorting fields are ignored when it is set.
	After     *Cursor
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ConflictError is returned when admission loses to an existing booking.
type ConflictError struct {
	*apperror.AppError
	BookingID string
	Status    Status
}

func newConflictError(bookingID string, status Status) *ConflictError {
	return &ConflictError{AppError: ErrSlotConflict, BookingID: bookingID, Status: status}
}

func (e *ConflictError) Unwrap() error { return e.AppError }

// Details is rendered next to the error message in HTTP responses.
func (e *ConflictError) Details() any {
	return map[string]any{
		"conflict": map[string]string{
			"booking_id": e.BookingID,
			"status":     string(e.Status),
		},
	}
}

// NormalizeDate truncates t to its calendar date at midnight UTC.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(v string) (time.Time, error) {
	return time.Parse(DateLayout, v)
}

// DayKey identifies one resource on one date.
func DayKey(resourceID string, date time.Time) string {
	return resourceID + "|" + date.Format(DateLayout)
}

// SlotKey identifies the unit of exclusivity: one slot of one resource on one date.
func SlotKey(resourceID string, date time.Time, timeSlotID string) string {
	return DayKey(resourceID, date) + "|" + timeSlotID
}

func (b *Booking) clone() *Booking {
	c := *b
	if b.DecidedAt != nil {
		t := *b.DecidedAt
		c.DecidedAt = &t
	}
	if b.DecidedBy != nil {
		s := *b.DecidedBy
		c.DecidedBy = &s
	}
	return &c
}
