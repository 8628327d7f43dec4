package booking

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLedger struct {
	*MemoryLedger
	loads atomic.Int32
	gate  chan struct{}
}

func (l *countingLedger) ActiveOnDay(ctx context.Context, resourceID string, date time.Time) ([]*Booking, error) {
	bookings, err := l.MemoryLedger.ActiveOnDay(ctx, resourceID, date)
	l.loads.Add(1)
	if l.gate != nil {
		<-l.gate
	}
	return bookings, err
}

func appendBooking(t *testing.T, l Ledger, resourceID, date, slot string) *Booking {
	t.Helper()
	b := &Booking{UserID: "u1", ResourceID: resourceID, SportID: "badminton", Date: mustDate(date), TimeSlotID: slot}
	require.NoError(t, l.Append(context.Background(), b))
	return b
}

func TestIndexCachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	ledger := &countingLedger{MemoryLedger: NewMemoryLedger()}
	idx := NewIndex(ledger, true)
	date := mustDate("2025-06-11")

	b := appendBooking(t, ledger, "r1", "2025-06-11", "s1")

	day, err := idx.QueryDay(ctx, "r1", date)
	require.NoError(t, err)
	assert.Equal(t, Day{"s1": {BookingID: b.ID, State: SlotPending}}, day)

	_, err = idx.QueryDay(ctx, "r1", date)
	require.NoError(t, err)
	assert.Equal(t, int32(1), ledger.loads.Load())

	_, _, err = ledger.Transition(ctx, b.ID, StatusConfirmed, "admin1", processingTime)
	require.NoError(t, err)
	idx.Invalidate("r1", date)

	day, err = idx.QueryDay(ctx, "r1", date)
	require.NoError(t, err)
	assert.Equal(t, SlotConfirmed, day.State("s1"))
	assert.Equal(t, SlotFree, day.State("s2"))
	assert.Equal(t, int32(2), ledger.loads.Load())
}

func TestIndexDropsLoadsThatRaceAnInvalidation(t *testing.T) {
	ctx := context.Background()
	ledger := &countingLedger{MemoryLedger: NewMemoryLedger(), gate: make(chan struct{})}
	idx := NewIndex(ledger, true)
	date := mustDate("2025-06-11")

	done := make(chan Day)
	go func() {
		day, err := idx.QueryDay(ctx, "r1", date)
		assert.NoError(t, err)
		done <- day
	}()

	// Wait until the load is in flight, then write and invalidate underneath it.
	require.Eventually(t, func() bool { return ledger.loads.Load() == 1 }, time.Second, time.Millisecond)
	appendBooking(t, ledger, "r1", "2025-06-11", "s1")
	idx.Invalidate("r1", date)
	close(ledger.gate)
	<-done

	day, err := idx.QueryDay(ctx, "r1", date)
	require.NoError(t, err)
	assert.Equal(t, SlotPending, day.State("s1"), "stale load must not be cached")
}

func TestIndexAbandonedCallerDoesNotFailSharedLoad(t *testing.T) {
	ledger := &countingLedger{MemoryLedger: NewMemoryLedger(), gate: make(chan struct{})}
	idx := NewIndex(ledger, false)
	date := mustDate("2025-06-11")
	appendBooking(t, ledger, "r1", "2025-06-11", "s1")

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error)
	go func() {
		_, err := idx.QueryDay(leaderCtx, "r1", date)
		leaderErr <- err
	}()
	require.Eventually(t, func() bool { return ledger.loads.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		day Day
		err error
	}
	follower := make(chan result)
	go func() {
		day, err := idx.QueryDay(context.Background(), "r1", date)
		follower <- result{day, err}
	}()

	cancel()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(ledger.gate)
	res := <-follower
	require.NoError(t, res.err)
	assert.Equal(t, SlotPending, res.day.State("s1"))
}

func TestIndexWithoutCacheAlwaysReadsLedger(t *testing.T) {
	ctx := context.Background()
	ledger := &countingLedger{MemoryLedger: NewMemoryLedger()}
	idx := NewIndex(ledger, false)
	date := mustDate("2025-06-11")

	b := appendBooking(t, ledger, "r1", "2025-06-11", "s1")
	_, err := idx.QueryDay(ctx, "r1", date)
	require.NoError(t, err)

	// No Invalidate: the write happens out of band.
	_, _, err = ledger.Transition(ctx, b.ID, StatusRejected, "admin1", processingTime)
	require.NoError(t, err)

	day, err := idx.QueryDay(ctx, "r1", date)
	require.NoError(t, err)
	assert.Equal(t, SlotFree, day.State("s1"))
	assert.Equal(t, int32(2), ledger.loads.Load())
}

func TestIndexBoundsGenerations(t *testing.T) {
	ctx := context.Background()
	ledger := &countingLedger{MemoryLedger: NewMemoryLedger()}
	idx := NewIndex(ledger, true)
	idx.maxEntries = 2
	date := mustDate("2025-06-11")

	for _, r := range []string{"r1", "r2", "r3", "r4", "r5"} {
		idx.Invalidate(r, date)
	}
	idx.mu.Lock()
	assert.LessOrEqual(t, len(idx.gens), 2)
	idx.mu.Unlock()

	// Caching still works after a reset.
	_, err := idx.QueryDay(ctx, "r1", date)
	require.NoError(t, err)
	_, err = idx.QueryDay(ctx, "r1", date)
	require.NoError(t, err)
	assert.Equal(t, int32(1), ledger.loads.Load())
}

func TestIndexEvictsWhenFull(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(NewMemoryLedger(), true)
	idx.maxEntries = 2

	for _, r := range []string{"r1", "r2", "r3"} {
		_, err := idx.QueryDay(ctx, r, mustDate("2025-06-11"))
		require.NoError(t, err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	assert.LessOrEqual(t, len(idx.cache), 2)
}

func TestBuildDayPrefersConfirmed(t *testing.T) {
	day := buildDay([]*Booking{
		{ID: "a", TimeSlotID: "s1", Status: StatusConfirmed},
		{ID: "b", TimeSlotID: "s1", Status: StatusPending},
		{ID: "c", TimeSlotID: "s2", Status: StatusPending},
	})
	assert.Equal(t, Hold{BookingID: "a", State: SlotConfirmed}, day["s1"])
	assert.Equal(t, Hold{BookingID: "c", State: SlotPending}, day["s2"])
}
