package resource

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/sport-hall-booking/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "resource not found")
	ErrEmptyName           = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidSport        = apperror.New(http.StatusBadRequest, "invalid sport_id")
	ErrInvalidLocationKind = apperror.New(http.StatusBadRequest, "location_kind must be indoor or outdoor")
)

// LocationKind tells whether a hall is under a roof.
type LocationKind string

const (
	Indoor  LocationKind = "indoor"
	Outdoor LocationKind = "outdoor"
)

// Valid reports whether k is a known location kind.
func (k LocationKind) Valid() bool {
	return k == Indoor || k == Outdoor
}

// Resource represents a bookable unit (e.g., Court A, Main Hall).
type Resource struct {
	ID           string
	Name         string
	SportID      string
	LocationKind LocationKind
	CreatedAt    time.Time
}

// Filter defines parameters for listing resources.
type Filter struct {
	SportID      string
	LocationKind LocationKind
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
