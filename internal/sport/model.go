package sport

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/sport-hall-booking/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, "sport not found")
	ErrNameRequired  = apperror.New(http.StatusBadRequest, "sport name is required")
	ErrDuplicateName = apperror.New(http.StatusConflict, "sport name already exists")
)

// Sport is a category of play that halls are tagged with (e.g. Badminton).
type Sport struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Filter defines parameters for listing sports.
type Filter struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
