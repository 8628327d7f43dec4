package booking

import (
	"context"
	"sync"
	"time"

	"github.com/nekogravitycat/sport-hall-booking/internal/resource"
	"github.com/nekogravitycat/sport-hall-booking/internal/sport"
	"github.com/nekogravitycat/sport-hall-booking/internal/timeslot"
)

type fakeCatalog struct {
	resources map[string]*resource.Resource
	sports    map[string]*sport.Sport
	slots     []*timeslot.TimeSlot
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		resources: map[string]*resource.Resource{
			"r1": {ID: "r1", Name: "Hall A", SportID: "badminton", LocationKind: resource.Indoor},
			"r2": {ID: "r2", Name: "Court B", SportID: "badminton", LocationKind: resource.Outdoor},
			"r3": {ID: "r3", Name: "Court C", SportID: "tennis", LocationKind: resource.Outdoor},
		},
		sports: map[string]*sport.Sport{
			"badminton": {ID: "badminton", Name: "Badminton"},
			"tennis":    {ID: "tennis", Name: "Tennis"},
		},
		slots: []*timeslot.TimeSlot{
			{ID: "s1", Start: "08:00", End: "09:00"},
			{ID: "s2", Start: "09:00", End: "10:00"},
		},
	}
}

type resourceCatalog struct{ *fakeCatalog }

func (c resourceCatalog) GetByID(_ context.Context, id string) (*resource.Resource, error) {
	if r, ok := c.resources[id]; ok {
		return r, nil
	}
	return nil, resource.ErrNotFound
}

func (c resourceCatalog) IDsByLocationKind(_ context.Context, kind resource.LocationKind) ([]string, error) {
	var ids []string
	for id, r := range c.resources {
		if r.LocationKind == kind {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type sportCatalog struct{ *fakeCatalog }

func (c sportCatalog) GetByID(_ context.Context, id string) (*sport.Sport, error) {
	if s, ok := c.sports[id]; ok {
		return s, nil
	}
	return nil, sport.ErrNotFound
}

type slotCatalog struct{ *fakeCatalog }

func (c slotCatalog) GetByID(_ context.Context, id string) (*timeslot.TimeSlot, error) {
	for _, s := range c.slots {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, timeslot.ErrNotFound
}

func (c slotCatalog) List(context.Context) ([]*timeslot.TimeSlot, error) {
	return c.slots, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := v.(Event)
	if e.Type != key {
		panic("routing key does not match event type")
	}
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// processingTime is the fixed "now" of every test: the day before 2025-06-11.
var processingTime = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func mustDate(v string) time.Time {
	d, err := ParseDate(v)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	svc       Service
	ledger    *MemoryLedger
	publisher *recordingPublisher
}

func newFixture(opts ...Option) *fixture {
	cat := newFakeCatalog()
	ledger := NewMemoryLedger()
	pub := &recordingPublisher{}
	opts = append([]Option{
		WithClock(func() time.Time { return processingTime }),
		WithPublisher(pub),
	}, opts...)
	return &fixture{
		svc:       NewService(ledger, resourceCatalog{cat}, sportCatalog{cat}, slotCatalog{cat}, opts...),
		ledger:    ledger,
		publisher: pub,
	}
}

func request(user, resourceID, date, slot string) CreateRequest {
	return CreateRequest{
		UserID:     user,
		ResourceID: resourceID,
		SportID:    "badminton",
		Date:       mustDate(date),
		TimeSlotID: slot,
	}
}
