package http

import (
	"time"

	"github.com/nekogravitycat/sport-hall-booking/internal/pkg/request"
	"github.com/nekogravitycat/sport-hall-booking/internal/resource"
)

// ListResourcesRequest defines query parameters for listing resources.
type ListResourcesRequest struct {
	request.ListParams
	SportID      string `form:"sport_id" binding:"omitempty,uuid"`
	LocationKind string `form:"location_kind" binding:"omitempty,oneof=indoor outdoor"`
	SortBy       string `form:"sort_by" binding:"omitempty,oneof=name created_at"`
}

type ResourceResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SportID      string    `json:"sport_id"`
	LocationKind string    `json:"location_kind"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewResponse(r *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID:           r.ID,
		Name:         r.Name,
		SportID:      r.SportID,
		LocationKind: string(r.LocationKind),
		CreatedAt:    r.CreatedAt,
	}
}

type CreateRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=100"`
	SportID      string `json:"sport_id" binding:"required,uuid"`
	LocationKind string `json:"location_kind" binding:"required,oneof=indoor outdoor"`
}
