package http

import (
	"github.com/nekogravitycat/sport-hall-booking/internal/timeslot"
)

type TimeSlotResponse struct {
	ID    string `json:"id"`
	Start string `json:"start_time"`
	End   string `json:"end_time"`
	Label string `json:"label"`
}

func NewResponse(s *timeslot.TimeSlot) TimeSlotResponse {
	return TimeSlotResponse{
		ID:    s.ID,
		Start: s.Start,
		End:   s.End,
		Label: s.Start + " - " + s.End,
	}
}

type CreateRequest struct {
	Start string `json:"start_time" binding:"required"`
	End   string `json:"end_time" binding:"required"`
}
