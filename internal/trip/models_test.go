package trip

import (
	"testing"

	"github.com/ianwelles/NihonGo-sub000/internal/shared/geo"
)

func testSnapshot() *Snapshot {
	snap := &Snapshot{
		Places: map[string]Place{
			"hotel-tokyo": {ID: "hotel-tokyo", Name: "Shinjuku Hotel", Category: CategoryHotel, City: "Tokyo", Coordinate: geo.LatLng{Lat: 35.69, Lng: 139.70}},
			"sensoji":     {ID: "sensoji", Name: "Senso-ji", Category: CategorySight, City: "Tokyo", Coordinate: geo.LatLng{Lat: 35.71, Lng: 139.80}, Description: "Asakusa temple"},
			"ramen-rec":   {ID: "ramen-rec", Name: "Ramen Nagi", Category: CategoryFoodRec, City: "Tokyo", Coordinate: geo.LatLng{Lat: 35.69, Lng: 139.70}},
			"kinkakuji":   {ID: "kinkakuji", Name: "Kinkaku-ji", Category: CategorySight, City: "Kyoto", Coordinate: geo.LatLng{Lat: 35.03, Lng: 135.72}},
		},
		Itinerary: []DayItinerary{
			{
				DayNumber: 4, City: "Kyoto", Date: "Apr 12",
				HotelIDs:   []string{"hotel-tokyo"},
				Activities: []Activity{{PlaceID: "kinkakuji", TimeLabel: "morning"}},
			},
			{
				DayNumber: 1, City: "Tokyo", Date: "Apr 9",
				Activities: []Activity{
					{PlaceID: "sensoji", TimeLabel: "10:00"},
					{PlaceID: "ghost", TimeLabel: "12:00"},
				},
			},
		},
		Theme: Theme{MarkerColors: map[string]string{"hotel": "#e11"}},
	}
	snap.Normalize()
	return snap
}

func TestParseCategory(t *testing.T) {
	if c, ok := ParseCategory("sight_rec"); !ok || c != CategorySightRec {
		t.Fatalf("expected sight_rec to parse")
	}
	if _, ok := ParseCategory("museum"); ok {
		t.Fatalf("expected unknown category to fail")
	}
}

func TestToggleable(t *testing.T) {
	for _, c := range ToggleCategories {
		if !c.Toggleable() {
			t.Fatalf("expected %s toggleable", c)
		}
	}
	if CategoryHotel.Toggleable() || CategorySuggestion.Toggleable() || CategoryBar.Toggleable() {
		t.Fatalf("unexpected toggleable category")
	}
}

func TestMarkerColorFallback(t *testing.T) {
	theme := Theme{MarkerColors: map[string]string{"hotel": "#e11"}}
	if theme.MarkerColor(CategoryHotel) != "#e11" {
		t.Fatalf("expected themed color")
	}
	if theme.MarkerColor(CategoryBar) != defaultMarkerColor {
		t.Fatalf("expected default color for unthemed category")
	}
}

func TestDayID(t *testing.T) {
	d := DayItinerary{DayNumber: 4, City: "Kyoto"}
	if d.ID() != "4-Kyoto" {
		t.Fatalf("unexpected day id: %s", d.ID())
	}
}

func TestNormalizeOrdersItineraryAndPlaces(t *testing.T) {
	snap := testSnapshot()
	if snap.Itinerary[0].DayNumber != 1 || snap.Itinerary[1].DayNumber != 4 {
		t.Fatalf("expected itinerary sorted by day number")
	}

	first := snap.OrderedPlaces()
	second := snap.OrderedPlaces()
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("place order not stable")
		}
	}
}

func TestDayLookup(t *testing.T) {
	snap := testSnapshot()
	if _, ok := snap.Day("4-Kyoto"); !ok {
		t.Fatalf("expected 4-Kyoto to resolve")
	}
	if _, ok := snap.Day("9-Nara"); ok {
		t.Fatalf("expected unknown day to miss")
	}
	if len(snap.DaysInCity("Tokyo")) != 1 {
		t.Fatalf("expected one Tokyo day")
	}
}

func TestCities(t *testing.T) {
	snap := testSnapshot()
	cities := snap.Cities()
	if len(cities) != 2 || cities[0] != "Tokyo" || cities[1] != "Kyoto" {
		t.Fatalf("unexpected cities: %v", cities)
	}
}

func TestResolveDayFallbacksAndErrors(t *testing.T) {
	snap := testSnapshot()
	day, _ := snap.Day("1-Tokyo")
	resolved := snap.ResolveDay(day)

	if resolved.DayID != "1-Tokyo" {
		t.Fatalf("unexpected day id")
	}
	if len(resolved.Entries) != 2 {
		t.Fatalf("expected both activities kept")
	}

	ok := resolved.Entries[0]
	if ok.Error != "" || ok.Place == nil {
		t.Fatalf("expected resolved entry")
	}
	if ok.Label != "Senso-ji" || ok.Description != "Asakusa temple" {
		t.Fatalf("expected place fallbacks, got %+v", ok)
	}

	missing := resolved.Entries[1]
	if missing.Error == "" || missing.Place != nil {
		t.Fatalf("expected inline error for dangling reference")
	}
}

func TestResolveDayKeepsOverrides(t *testing.T) {
	snap := testSnapshot()
	day := DayItinerary{DayNumber: 2, City: "Tokyo", Activities: []Activity{
		{PlaceID: "sensoji", Label: "Temple walk", Description: "own text", URL: "https://example.com"},
	}}
	resolved := snap.ResolveDay(day)
	e := resolved.Entries[0]
	if e.Label != "Temple walk" || e.Description != "own text" || e.URL != "https://example.com" {
		t.Fatalf("overrides should win: %+v", e)
	}
}
