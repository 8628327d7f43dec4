package booking

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLedger is a Ledger kept in process memory. It is used by tests and
// by embedders that do not need durability.
type MemoryLedger struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
	// active maps a slot key to the id of the booking holding it.
	active map[string]string
	now    func() time.Time
	last   time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		bookings: make(map[string]*Booking),
		active:   make(map[string]string),
		now:      time.Now,
	}
}

func (l *MemoryLedger) Append(ctx context.Context, b *Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := SlotKey(b.ResourceID, b.Date, b.TimeSlotID)
	if _, taken := l.active[key]; taken {
		return ErrDuplicateKey
	}

	b.ID = uuid.NewString()
	b.Date = NormalizeDate(b.Date)
	b.Status = StatusPending
	b.CreatedAt = l.stamp()
	b.DecidedAt = nil
	b.DecidedBy = nil

	l.bookings[b.ID] = b.clone()
	l.active[key] = b.ID
	return nil
}

func (l *MemoryLedger) Transition(ctx context.Context, id string, to Status, adminID string, at time.Time) (*Booking, []*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if to != StatusConfirmed && to != StatusRejected {
		return nil, nil, ErrInvalidTransition
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	if b.Status != StatusPending {
		return nil, nil, ErrInvalidTransition
	}

	l.decide(b, to, adminID, at)

	var siblings []*Booking
	if to == StatusConfirmed {
		for _, other := range l.bookings {
			if other.ID != b.ID && other.Status == StatusPending &&
				other.ResourceID == b.ResourceID && other.Date.Equal(b.Date) && other.TimeSlotID == b.TimeSlotID {
				l.decide(other, StatusRejected, adminID, at)
				siblings = append(siblings, other.clone())
			}
		}
		slices.SortFunc(siblings, byCreated)
	}
	return b.clone(), siblings, nil
}

// stamp returns a strictly increasing creation time so that insertion order
// survives sorting. It must be called with mu held.
func (l *MemoryLedger) stamp() time.Time {
	t := l.now().UTC()
	if !t.After(l.last) {
		t = l.last.Add(time.Microsecond)
	}
	l.last = t
	return t
}

// decide must be called with mu held.
func (l *MemoryLedger) decide(b *Booking, to Status, adminID string, at time.Time) {
	decidedAt := at.UTC()
	decidedBy := adminID
	b.Status = to
	b.DecidedAt = &decidedAt
	b.DecidedBy = &decidedBy

	key := SlotKey(b.ResourceID, b.Date, b.TimeSlotID)
	if to == StatusRejected && l.active[key] == b.ID {
		delete(l.active, key)
	}
}

func (l *MemoryLedger) GetByID(ctx context.Context, id string) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b.clone(), nil
}

func (l *MemoryLedger) Query(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	l.mu.RLock()
	var matched []*Booking
	for _, b := range l.bookings {
		if matches(b, filter) {
			matched = append(matched, b.clone())
		}
	}
	l.mu.RUnlock()

	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	if filter.After != nil {
		slices.SortFunc(matched, byCreated)
		total := len(matched)
		if len(matched) > filter.PageSize {
			matched = matched[:filter.PageSize]
		}
		return matched, total, nil
	}

	desc := !strings.EqualFold(filter.SortOrder, "asc")
	slices.SortFunc(matched, func(a, b *Booking) int {
		var c int
		switch filter.SortBy {
		case "date":
			c = a.Date.Compare(b.Date)
		case "status":
			c = cmp.Compare(a.Status, b.Status)
		}
		if c == 0 {
			c = byCreated(a, b)
		}
		if desc {
			return -c
		}
		return c
	})

	total := len(matched)
	if filter.Page < 1 {
		filter.Page = 1
	}
	start := min((filter.Page-1)*filter.PageSize, total)
	end := min(start+filter.PageSize, total)
	return matched[start:end], total, nil
}

func (l *MemoryLedger) ActiveOnDay(ctx context.Context, resourceID string, date time.Time) ([]*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	date = NormalizeDate(date)

	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []*Booking
	for _, b := range l.bookings {
		if b.ResourceID == resourceID && b.Date.Equal(date) && b.Status.Active() {
			result = append(result, b.clone())
		}
	}
	slices.SortFunc(result, byCreated)
	return result, nil
}

func byCreated(a, b *Booking) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func matches(b *Booking, f Filter) bool {
	if f.UserID != "" && b.UserID != f.UserID {
		return false
	}
	if f.ResourceID != "" && b.ResourceID != f.ResourceID {
		return false
	}
	if f.ResourceIDs != nil && !slices.Contains(f.ResourceIDs, b.ResourceID) {
		return false
	}
	if f.Date != nil && !b.Date.Equal(NormalizeDate(*f.Date)) {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.After != nil && !f.After.IsZero() && byCreated(b, &Booking{CreatedAt: f.After.CreatedAt, ID: f.After.ID}) <= 0 {
		return false
	}
	return true
}
