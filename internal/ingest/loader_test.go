package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/ianwelles/NihonGo-sub000/internal/trip"
)

type stubSource struct {
	snap *trip.Snapshot
	err  error
}

func (s stubSource) Load(_ context.Context) (*trip.Snapshot, error) {
	return s.snap, s.err
}

type blockingSource struct{}

func (blockingSource) Load(ctx context.Context) (*trip.Snapshot, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFallbackParses(t *testing.T) {
	snap, err := Fallback()
	if err != nil {
		t.Fatalf("fallback: %v", err)
	}
	snap.Normalize()

	if len(snap.Places) == 0 || len(snap.Itinerary) == 0 || len(snap.Tips) == 0 {
		t.Fatalf("expected populated fallback snapshot")
	}
	if snap.StartDate == "" || snap.EndDate == "" {
		t.Fatalf("expected trip dates")
	}

	for _, d := range snap.Itinerary {
		for _, id := range d.HotelIDs {
			p, ok := snap.Places[id]
			if !ok {
				t.Fatalf("day %s: hotel %q not in place map", d.ID(), id)
			}
			if p.Category != trip.CategoryHotel || p.Hotel == nil {
				t.Fatalf("day %s: %q is not a hotel place", d.ID(), id)
			}
		}
		for _, a := range d.Activities {
			if _, ok := snap.Places[a.PlaceID]; !ok {
				t.Fatalf("day %s: activity references unknown place %q", d.ID(), a.PlaceID)
			}
		}
	}

	cities := snap.Cities()
	if len(cities) < 2 {
		t.Fatalf("expected a multi-city fallback trip, got %v", cities)
	}
	for _, p := range snap.Places {
		if snap.Theme.MarkerColor(p.Category) == "" {
			t.Fatalf("place %s: empty marker color", p.ID)
		}
	}
}

func TestLoaderNilSource(t *testing.T) {
	snap, err := NewLoader(nil, 0).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Places) == 0 {
		t.Fatalf("expected fallback snapshot")
	}
}

func TestLoaderUsesSource(t *testing.T) {
	want := &trip.Snapshot{Places: map[string]trip.Place{
		"only": {ID: "only", Name: "Only", Category: trip.CategorySight, City: "Tokyo"},
	}}
	snap, err := NewLoader(stubSource{snap: want}, time.Second).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap != want {
		t.Fatalf("expected source snapshot, got %+v", snap)
	}
}

func TestLoaderFallsBackOnSourceError(t *testing.T) {
	snap, err := NewLoader(stubSource{err: errSource}, time.Second).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := snap.Places["only"]; ok {
		t.Fatalf("expected fallback, not stub data")
	}
	if len(snap.Places) == 0 {
		t.Fatalf("expected fallback snapshot")
	}
}

func TestLoaderFallsBackOnTimeout(t *testing.T) {
	start := time.Now()
	snap, err := NewLoader(blockingSource{}, 20*time.Millisecond).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Places) == 0 {
		t.Fatalf("expected fallback snapshot")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not applied")
	}
}
