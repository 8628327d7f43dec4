package timeslot

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/nekogravitycat/sport-hall-booking/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "time slot not found")
	ErrInvalidClock     = apperror.New(http.StatusBadRequest, "time must be formatted as HH:MM")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrOverlap          = apperror.New(http.StatusConflict, "time slot overlaps an existing slot")
)

const clockLayout = "15:04"

// TimeSlot is a fixed interval within a day, identical for every date.
// Start and End are wall-clock times formatted as HH:MM.
type TimeSlot struct {
	ID        string
	Start     string
	End       string
	CreatedAt time.Time
}

// Minutes returns start and end as minutes since midnight.
func (s TimeSlot) Minutes() (start, end int, err error) {
	if start, err = ParseClock(s.Start); err != nil {
		return 0, 0, err
	}
	if end, err = ParseClock(s.End); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Overlaps reports whether two slots share any instant. Touching slots do not overlap.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	s1, e1, err1 := s.Minutes()
	s2, e2, err2 := o.Minutes()
	if err1 != nil || err2 != nil {
		return false
	}
	return s1 < e2 && s2 < e1
}

// ParseClock parses HH:MM or HH:MM:SS into minutes since midnight.
func ParseClock(v string) (int, error) {
	t, err := time.Parse(clockLayout, v)
	if err != nil {
		t, err = time.Parse("15:04:05", v)
	}
	if err != nil {
		return 0, apperror.WrapAs(err, ErrInvalidClock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NormalizeClock rewrites HH:MM:SS as HH:MM.
func NormalizeClock(v string) (string, error) {
	m, err := ParseClock(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60), nil
}

// ValidateCatalog checks that every slot is well formed and that no two slots overlap.
func ValidateCatalog(slots []*TimeSlot) error {
	type span struct {
		id         string
		start, end int
	}
	spans := make([]span, 0, len(slots))
	for _, s := range slots {
		start, end, err := s.Minutes()
		if err != nil {
			return fmt.Errorf("slot %s: %w", s.ID, err)
		}
		if start >= end {
			return fmt.Errorf("slot %s: %w", s.ID, ErrInvalidTimeRange)
		}
		spans = append(spans, span{s.ID, start, end})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return fmt.Errorf("slots %s and %s: %w", spans[i-1].id, spans[i].id, ErrOverlap)
		}
	}
	return nil
}
