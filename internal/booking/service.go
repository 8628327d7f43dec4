package booking

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/nekogravitycat/sport-hall-booking/internal/metrics"
	"github.com/nekogravitycat/sport-hall-booking/internal/pkg/keylock"
	"github.com/nekogravitycat/sport-hall-booking/internal/resource"
	"github.com/nekogravitycat/sport-hall-booking/internal/sport"
	"github.com/nekogravitycat/sport-hall-booking/internal/timeslot"
)

// Catalog lookups the service depends on.
type (
	ResourceCatalog interface {
		GetByID(ctx context.Context, id string) (*resource.Resource, error)
		IDsByLocationKind(ctx context.Context, kind resource.LocationKind) ([]string, error)
	}
	SportCatalog interface {
		GetByID(ctx context.Context, id string) (*sport.Sport, error)
	}
	SlotCatalog interface {
		GetByID(ctx context.Context, id string) (*timeslot.TimeSlot, error)
		List(ctx context.Context) ([]*timeslot.TimeSlot, error)
	}
)

type CreateRequest struct {
	UserID     string
	ResourceID string
	SportID    string
	Date       time.Time
	TimeSlotID string
	Purpose    string
}

// ListFilter is the caller-facing filter; LocationKind is resolved through
// the resource catalog. All set fields must match.
type ListFilter struct {
	UserID       string
	ResourceID   string
	Date         *time.Time
	Status       Status
	LocationKind resource.LocationKind
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

type PendingFilter struct {
	ResourceID   string
	UserID       string
	Date         *time.Time
	LocationKind resource.LocationKind
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter ListFilter) ([]*Booking, int, error)
	// ListPending yields every pending booking matching the filter. Each range
	// over the sequence runs the query again from the start.
	ListPending(ctx context.Context, filter PendingFilter) iter.Seq2[*Booking, error]
	// Availability maps every catalog slot to its state for the resource and date.
	Availability(ctx context.Context, resourceID string, date time.Time) (map[string]SlotState, error)
	Confirm(ctx context.Context, id, adminID string) (*Booking, error)
	Reject(ctx context.Context, id, adminID string) (*Booking, error)
}

type Option func(*service)

// WithClock overrides the time source used for date checks and decisions.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithLocation sets the zone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(s *service) { s.loc = loc }
}

func WithPublisher(p Publisher) Option {
	return func(s *service) { s.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *service) { s.log = l }
}

// WithDayCache keeps availability per day in memory between writes. Only
// enable it when no other process writes to the same ledger.
func WithDayCache(enabled bool) Option {
	return func(s *service) { s.dayCache = enabled }
}

type service struct {
	ledger    Ledger
	index     *Index
	locks     *keylock.Locker
	resources ResourceCatalog
	sports    SportCatalog
	slots     SlotCatalog

	now       func() time.Time
	loc       *time.Location
	publisher Publisher
	log       *slog.Logger
	dayCache  bool
}

func NewService(ledger Ledger, resources ResourceCatalog, sports SportCatalog, slots SlotCatalog, opts ...Option) Service {
	s := &service{
		ledger:    ledger,
		locks:     keylock.New(),
		resources: resources,
		sports:    sports,
		slots:     slots,
		now:       time.Now,
		loc:       time.UTC,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.index = NewIndex(ledger, s.dayCache)
	return s
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	b, err := s.admit(ctx, req)
	metrics.RecordAdmission(admissionOutcome(err))
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "booking admitted",
		"booking_id", b.ID, "resource_id", b.ResourceID,
		"date", b.Date.Format(DateLayout), "time_slot_id", b.TimeSlotID)
	s.publish(ctx, EventCreated, b)
	return b, nil
}

func (s *service) admit(ctx context.Context, req CreateRequest) (*Booking, error) {
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	date := NormalizeDate(req.Date)
	if date.Before(NormalizeDate(s.now().In(s.loc))) {
		return nil, ErrInvalidDate
	}

	unlock, err := s.locks.Lock(ctx, SlotKey(req.ResourceID, date, req.TimeSlotID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	// The decision reads the ledger itself: a cached day may predate writes
	// made by another process.
	if err := s.checkSlotFree(ctx, req.ResourceID, date, req.TimeSlotID); err != nil {
		return nil, err
	}

	b := &Booking{
		UserID:     req.UserID,
		ResourceID: req.ResourceID,
		SportID:    req.SportID,
		Date:       date,
		TimeSlotID: req.TimeSlotID,
		Purpose:    strings.TrimSpace(req.Purpose),
		Status:     StatusPending,
	}
	if err := s.ledger.Append(ctx, b); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			// Another process won the slot between our read and the insert.
			if err := s.checkSlotFree(ctx, req.ResourceID, date, req.TimeSlotID); err != nil {
				return nil, err
			}
			return nil, ErrSlotConflict
		}
		return nil, err
	}
	s.index.Invalidate(req.ResourceID, date)
	return b, nil
}

// checkSlotFree returns a ConflictError naming the holder when the slot is taken.
func (s *service) checkSlotFree(ctx context.Context, resourceID string, date time.Time, timeSlotID string) error {
	bookings, err := s.ledger.ActiveOnDay(ctx, resourceID, date)
	if err != nil {
		return err
	}
	if hold, ok := buildDay(bookings)[timeSlotID]; ok {
		return newConflictError(hold.BookingID, Status(hold.State))
	}
	return nil
}

func (s *service) checkReferences(ctx context.Context, req CreateRequest) error {
	if req.ResourceID == "" || req.SportID == "" || req.TimeSlotID == "" {
		return ErrInvalidReference
	}

	res, err := s.resources.GetByID(ctx, req.ResourceID)
	if err != nil {
		return asInvalidReference(err, resource.ErrNotFound)
	}
	if _, err := s.sports.GetByID(ctx, req.SportID); err != nil {
		return asInvalidReference(err, sport.ErrNotFound)
	}
	// A hall only hosts the sport it is tagged with.
	if res.SportID != req.SportID {
		return ErrInvalidReference
	}
	if _, err := s.slots.GetByID(ctx, req.TimeSlotID); err != nil {
		return asInvalidReference(err, timeslot.ErrNotFound)
	}
	return nil
}

func asInvalidReference(err, notFound error) error {
	if errors.Is(err, notFound) {
		return ErrInvalidReference
	}
	return err
}

func admissionOutcome(err error) string {
	switch {
	case err == nil:
		return "admitted"
	case errors.Is(err, ErrSlotConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "abandoned"
	default:
		return "error"
	}
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.ledger.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]*Booking, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}

	ids, err := s.resolveLocationKind(ctx, filter.LocationKind)
	if err != nil {
		return nil, 0, err
	}
	return s.ledger.Query(ctx, Filter{
		UserID:      filter.UserID,
		ResourceID:  filter.ResourceID,
		ResourceIDs: ids,
		Date:        filter.Date,
		Status:      filter.Status,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
		SortBy:      filter.SortBy,
		SortOrder:   filter.SortOrder,
	})
}

// resolveLocationKind returns nil when kind is empty, meaning no constraint.
func (s *service) resolveLocationKind(ctx context.Context, kind resource.LocationKind) ([]string, error) {
	if kind == "" {
		return nil, nil
	}
	ids, err := s.resources.IDsByLocationKind(ctx, kind)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

const pendingPageSize = 50

func (s *service) ListPending(ctx context.Context, filter PendingFilter) iter.Seq2[*Booking, error] {
	return func(yield func(*Booking, error) bool) {
		ids, err := s.resolveLocationKind(ctx, filter.LocationKind)
		if err != nil {
			yield(nil, err)
			return
		}

		q := Filter{
			UserID:      filter.UserID,
			ResourceID:  filter.ResourceID,
			ResourceIDs: ids,
			Date:        filter.Date,
			Status:      StatusPending,
			After:       &Cursor{},
			PageSize:    pendingPageSize,
		}
		for {
			page, _, err := s.ledger.Query(ctx, q)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, b := range page {
				if !yield(b, nil) {
					return
				}
			}
			if len(page) < pendingPageSize {
				return
			}
			last := page[len(page)-1]
			q.After = &Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		}
	}
}

func (s *service) Availability(ctx context.Context, resourceID string, date time.Time) (map[string]SlotState, error) {
	if _, err := s.resources.GetByID(ctx, resourceID); err != nil {
		return nil, err
	}

	catalog, err := s.slots.List(ctx)
	if err != nil {
		return nil, err
	}
	day, err := s.index.QueryDay(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}

	result := make(map[string]SlotState, len(catalog))
	for _, slot := range catalog {
		result[slot.ID] = day.State(slot.ID)
	}
	return result, nil
}

func (s *service) Confirm(ctx context.Context, id, adminID string) (*Booking, error) {
	return s.decide(ctx, id, adminID, StatusConfirmed)
}

func (s *service) Reject(ctx context.Context, id, adminID string) (*Booking, error) {
	return s.decide(ctx, id, adminID, StatusRejected)
}

func (s *service) decide(ctx context.Context, id, adminID string, to Status) (*Booking, error) {
	current, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	b, siblings, err := s.transition(ctx, current, adminID, to)
	if err != nil {
		return nil, err
	}
	metrics.RecordDecision(string(b.Status))

	s.log.InfoContext(ctx, "booking decided",
		"booking_id", b.ID, "status", b.Status, "admin_id", adminID)

	event := EventConfirmed
	if to == StatusRejected {
		event = EventRejected
	}
	s.publish(ctx, event, b)

	for _, sib := range siblings {
		metrics.RecordDecision(string(sib.Status))
		s.log.InfoContext(ctx, "booking rejected by confirmed sibling",
			"booking_id", sib.ID, "confirmed_id", b.ID, "admin_id", adminID)
		s.publish(ctx, EventRejected, sib)
	}
	return b, nil
}

func (s *service) transition(ctx context.Context, current *Booking, adminID string, to Status) (*Booking, []*Booking, error) {
	unlock, err := s.locks.Lock(ctx, SlotKey(current.ResourceID, current.Date, current.TimeSlotID))
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	b, siblings, err := s.ledger.Transition(ctx, current.ID, to, adminID, s.now())
	if err != nil {
		return nil, nil, err
	}
	s.index.Invalidate(b.ResourceID, b.Date)
	return b, siblings, nil
}

func (s *service) publish(ctx context.Context, typ string, b *Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishJSON(ctx, typ, newEvent(typ, b, s.now())); err != nil {
		s.log.WarnContext(ctx, "publish booking event failed",
			"event", typ, "booking_id", b.ID, "error", err)
	}
}
