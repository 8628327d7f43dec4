package http

import (
	"time"

	"github.com/nekogravitycat/sport-hall-booking/internal/pkg/request"
	"github.com/nekogravitycat/sport-hall-booking/internal/sport"
)

// ListSportsRequest defines query parameters for listing sports.
type ListSportsRequest struct {
	request.ListParams
	SortBy string `form:"sort_by" binding:"omitempty,oneof=name created_at"`
}

type SportResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewResponse(s *sport.Sport) SportResponse {
	return SportResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
}

type CreateRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}
