package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/sport-hall-booking/internal/resource"
)

func collect(t *testing.T, seq func(func(*Booking, error) bool)) []*Booking {
	t.Helper()
	var out []*Booking
	for b, err := range seq {
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

// seedMany admits one booking per (resource, slot, day) for 30 days from 2025-06-11.
func seedMany(t *testing.T, f *fixture) []*Booking {
	t.Helper()
	var created []*Booking
	start := mustDate("2025-06-11")
	for day := range 30 {
		date := start.AddDate(0, 0, day).Format(DateLayout)
		for _, res := range []string{"r1", "r2"} {
			for _, slot := range []string{"s1", "s2"} {
				b, err := f.svc.Create(context.Background(), request(fmt.Sprintf("u%d", day%3), res, date, slot))
				require.NoError(t, err)
				created = append(created, b)
			}
		}
	}
	return created
}

func TestListPendingPagesThroughEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created := seedMany(t, f)
	require.Greater(t, len(created), pendingPageSize*2)

	_, err := f.svc.Confirm(ctx, created[0].ID, "admin1")
	require.NoError(t, err)
	_, err = f.svc.Reject(ctx, created[1].ID, "admin1")
	require.NoError(t, err)

	got := collect(t, f.svc.ListPending(ctx, PendingFilter{}))
	assert.Len(t, got, len(created)-2)
	for i, b := range got {
		assert.Equal(t, StatusPending, b.Status)
		if i > 0 {
			assert.Equal(t, -1, byCreated(got[i-1], b), "results are in admission order")
		}
	}
}

func TestListPendingIsRestartable(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedMany(t, f)

	seq := f.svc.ListPending(ctx, PendingFilter{ResourceID: "r2"})
	first := collect(t, seq)
	second := collect(t, seq)
	assert.Equal(t, first, second)
	assert.Len(t, first, 60)

	// A decision between two ranges is visible to the second.
	_, err := f.svc.Confirm(ctx, first[0].ID, "admin1")
	require.NoError(t, err)
	assert.Len(t, collect(t, seq), 59)
}

func TestListPendingStopsEarly(t *testing.T) {
	f := newFixture()
	seedMany(t, f)

	n := 0
	for _, err := range f.svc.ListPending(context.Background(), PendingFilter{}) {
		require.NoError(t, err)
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestListPendingFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedMany(t, f)

	date := mustDate("2025-06-12")
	tests := []struct {
		name   string
		filter PendingFilter
		want   int
		check  func(*Booking) bool
	}{
		{"no filters", PendingFilter{}, 120, nil},
		{"user", PendingFilter{UserID: "u1"}, 40, func(b *Booking) bool { return b.UserID == "u1" }},
		{"date", PendingFilter{Date: &date}, 4, func(b *Booking) bool { return b.Date.Equal(date) }},
		{"indoor", PendingFilter{LocationKind: resource.Indoor}, 60, func(b *Booking) bool { return b.ResourceID == "r1" }},
		{"outdoor and date", PendingFilter{LocationKind: resource.Outdoor, Date: &date}, 2, func(b *Booking) bool {
			return b.ResourceID == "r2" && b.Date.Equal(date)
		}},
		{"resource outside kind", PendingFilter{ResourceID: "r1", LocationKind: resource.Outdoor}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, f.svc.ListPending(ctx, tt.filter))
			assert.Len(t, got, tt.want)
			if tt.check != nil {
				for _, b := range got {
					assert.True(t, tt.check(b), "booking %s does not match filter", b.ID)
				}
			}
		})
	}
}

type failingLedger struct {
	*MemoryLedger
	err error
}

func (l failingLedger) Query(context.Context, Filter) ([]*Booking, int, error) {
	return nil, 0, l.err
}

func TestListPendingYieldsErrors(t *testing.T) {
	cat := newFakeCatalog()
	boom := errors.New("storage down")
	svc := NewService(failingLedger{NewMemoryLedger(), boom}, resourceCatalog{cat}, sportCatalog{cat}, slotCatalog{cat},
		WithClock(func() time.Time { return processingTime }))

	var errs []error
	for b, err := range svc.ListPending(context.Background(), PendingFilter{}) {
		assert.Nil(t, b)
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
}
