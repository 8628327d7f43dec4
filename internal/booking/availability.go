package booking

import (
	"context"
	"maps"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nekogravitycat/sport-hall-booking/internal/metrics"
)

// Hold is the booking occupying a slot.
type Hold struct {
	BookingID string
	State     SlotState
}

// Day maps time slot ids to their holder. Slots absent from the map are free.
type Day map[string]Hold

// State returns the availability of one slot.
func (d Day) State(timeSlotID string) SlotState {
	if h, ok := d[timeSlotID]; ok {
		return h.State
	}
	return SlotFree
}

const defaultIndexEntries = 4096

// Index answers per-day availability from the ledger. Concurrent queries for
// the same day share one ledger read.
//
// A caching Index also keeps each day until Invalidate drops it, which every
// ledger write for that day must call before releasing its slot lock. Writes
// made by other processes never reach Invalidate, so caching is only correct
// when this process is the sole writer of the ledger.
type Index struct {
	ledger Ledger
	cached bool
	group  singleflight.Group

	mu    sync.Mutex
	cache map[string]Day
	gens  map[string]uint64
	// epoch counts resets of gens, so a load that straddles a reset is never cached.
	epoch      uint64
	maxEntries int
}

func NewIndex(ledger Ledger, cached bool) *Index {
	return &Index{
		ledger:     ledger,
		cached:     cached,
		cache:      make(map[string]Day),
		gens:       make(map[string]uint64),
		maxEntries: defaultIndexEntries,
	}
}

// QueryDay returns the occupied slots of a resource on a date.
// The returned map belongs to the caller.
func (x *Index) QueryDay(ctx context.Context, resourceID string, date time.Time) (Day, error) {
	date = NormalizeDate(date)
	key := DayKey(resourceID, date)

	x.mu.Lock()
	if day, ok := x.cache[key]; ok {
		x.mu.Unlock()
		metrics.RecordCacheHit()
		return maps.Clone(day), nil
	}
	epoch, gen := x.epoch, x.gens[key]
	x.mu.Unlock()
	metrics.RecordCacheMiss()

	// Callers that arrive after an invalidation get a fresh load rather than
	// joining one that started before it. The load outlives any single caller
	// so that one abandoned request cannot fail the others sharing it.
	loadCtx := context.WithoutCancel(ctx)
	flight := key + "#" + strconv.FormatUint(epoch, 10) + "." + strconv.FormatUint(gen, 10)
	ch := x.group.DoChan(flight, func() (any, error) {
		bookings, err := x.ledger.ActiveOnDay(loadCtx, resourceID, date)
		if err != nil {
			return nil, err
		}
		day := buildDay(bookings)

		if x.cached {
			x.mu.Lock()
			if x.epoch == epoch && x.gens[key] == gen {
				if len(x.cache) >= x.maxEntries {
					clear(x.cache)
				}
				x.cache[key] = day
			}
			x.mu.Unlock()
		}
		return day, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return maps.Clone(res.Val.(Day)), nil
	}
}

// Invalidate drops the cached day so the next query reads the ledger.
func (x *Index) Invalidate(resourceID string, date time.Time) {
	key := DayKey(resourceID, NormalizeDate(date))

	x.mu.Lock()
	delete(x.cache, key)
	if len(x.gens) >= x.maxEntries {
		clear(x.gens)
		clear(x.cache)
		x.epoch++
	}
	x.gens[key]++
	x.mu.Unlock()
}

func buildDay(bookings []*Booking) Day {
	day := make(Day, len(bookings))
	for _, b := range bookings {
		state := SlotPending
		if b.Status == StatusConfirmed {
			state = SlotConfirmed
		}
		// A confirmed holder wins over a pending one that slipped in through imported data.
		if prev, ok := day[b.TimeSlotID]; ok && prev.State == SlotConfirmed {
			continue
		}
		day[b.TimeSlotID] = Hold{BookingID: b.ID, State: state}
	}
	return day
}
