package geo

import "testing"

func TestHaversineKm(t *testing.T) {
	// Tokyo (35.6762, 139.6503) to Kyoto (35.0116, 135.7681) ~ 360-370 km
	d := HaversineKm(35.6762, 139.6503, 35.0116, 135.7681)
	if d < 340 || d > 390 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestBoundsExtendAndCenter(t *testing.T) {
	var b Bounds
	if !b.IsEmpty() {
		t.Fatalf("expected empty bounds")
	}

	b.Extend(LatLng{Lat: 35.0, Lng: 135.0})
	b.Extend(LatLng{Lat: 36.0, Lng: 140.0})
	b.Extend(LatLng{Lat: 34.5, Lng: 136.0})

	if b.IsEmpty() {
		t.Fatalf("expected non-empty bounds")
	}
	if b.SouthWest.Lat != 34.5 || b.SouthWest.Lng != 135.0 {
		t.Fatalf("unexpected south west: %+v", b.SouthWest)
	}
	if b.NorthEast.Lat != 36.0 || b.NorthEast.Lng != 140.0 {
		t.Fatalf("unexpected north east: %+v", b.NorthEast)
	}

	c := b.Center()
	if c.Lat != 35.25 || c.Lng != 137.5 {
		t.Fatalf("unexpected center: %+v", c)
	}
	if b.RadiusKm() <= 0 {
		t.Fatalf("expected positive radius")
	}
}

func TestBoundsOfSinglePoint(t *testing.T) {
	b := BoundsOf([]LatLng{{Lat: 35, Lng: 139}})
	if b.SouthWest != b.NorthEast {
		t.Fatalf("single point bounds should collapse")
	}
	if b.RadiusKm() != 0 {
		t.Fatalf("expected zero radius")
	}
}

func TestRectOverlapRatio(t *testing.T) {
	container := Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}

	inside := Rect{Left: 10, Top: 10, Right: 50, Bottom: 50}
	if got := inside.OverlapRatio(container); got != 1 {
		t.Fatalf("expected full overlap, got %v", got)
	}

	half := Rect{Left: -50, Top: 0, Right: 50, Bottom: 100}
	if got := half.OverlapRatio(container); got != 0.5 {
		t.Fatalf("expected half overlap, got %v", got)
	}

	outside := Rect{Left: 200, Top: 200, Right: 300, Bottom: 300}
	if got := outside.OverlapRatio(container); got != 0 {
		t.Fatalf("expected no overlap, got %v", got)
	}

	degenerate := Rect{Left: 10, Top: 10, Right: 10, Bottom: 50}
	if got := degenerate.OverlapRatio(container); got != 0 {
		t.Fatalf("expected zero for degenerate rect, got %v", got)
	}
}
