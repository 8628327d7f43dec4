package http

import (
	"time"

	"github.com/nekogravitycat/sport-hall-booking/internal/booking"
	"github.com/nekogravitycat/sport-hall-booking/internal/pkg/request"
)

type CreateBookingRequest struct {
	ResourceID string `json:"resource_id" binding:"required,uuid"`
	SportID    string `json:"sport_id" binding:"required,uuid"`
	Date       string `json:"date" binding:"required"`
	TimeSlotID string `json:"time_slot_id" binding:"required,uuid"`
	Purpose    string `json:"purpose" binding:"max=500"`
}

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	ResourceID   string `form:"resource_id" binding:"omitempty,uuid"`
	UserID       string `form:"user_id"`
	Status       string `form:"status" binding:"omitempty,oneof=pending confirmed rejected"`
	Date         string `form:"date"`
	LocationKind string `form:"location_kind" binding:"omitempty,oneof=indoor outdoor"`
	SortBy       string `form:"sort_by" binding:"omitempty,oneof=created_at date status"`
}

// ListPendingRequest defines query parameters for the admin review queue.
type ListPendingRequest struct {
	ResourceID   string `form:"resource_id" binding:"omitempty,uuid"`
	UserID       string `form:"user_id"`
	Date         string `form:"date"`
	LocationKind string `form:"location_kind" binding:"omitempty,oneof=indoor outdoor"`
	Limit        int    `form:"limit,default=100" binding:"min=1,max=500"`
}

type AvailabilityRequest struct {
	Date string `form:"date" binding:"required"`
}

// parseOptionalDate returns nil for an empty value.
func parseOptionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	d, err := booking.ParseDate(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type BookingResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	ResourceID string     `json:"resource_id"`
	SportID    string     `json:"sport_id"`
	Date       string     `json:"date"`
	TimeSlotID string     `json:"time_slot_id"`
	Purpose    string     `json:"purpose"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	DecidedBy  *string    `json:"decided_by,omitempty"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		ResourceID: b.ResourceID,
		SportID:    b.SportID,
		Date:       b.Date.Format(booking.DateLayout),
		TimeSlotID: b.TimeSlotID,
		Purpose:    b.Purpose,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		DecidedAt:  b.DecidedAt,
		DecidedBy:  b.DecidedBy,
	}
}

type PendingResponse struct {
	Items []BookingResponse `json:"items"`
	// Truncated is set when more pending bookings exist beyond the limit.
	Truncated bool `json:"truncated"`
}

type AvailabilityResponse struct {
	ResourceID string                       `json:"resource_id"`
	Date       string                       `json:"date"`
	Slots      map[string]booking.SlotState `json:"slots"`
}
