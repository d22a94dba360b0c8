package view

import "github.com/ianwelles/NihonGo-sub000/internal/trip"

// DisplaySet computes the ordered list of places handed to the marker
// renderer: the filtered set for the current selection, then every hotel not
// already present. The force-include step guarantees hotels are never hidden
// by city/day/toggle logic while still letting them take itinerary-priority
// ordering when the current selection references them.
func DisplaySet(snap *trip.Snapshot, activeCity, openDay string, toggles Toggles) []trip.Place {
	set := newPlaceSet(snap)
	visiblePlaces(set, snap, activeCity, openDay, toggles)
	for _, p := range snap.OrderedPlaces() {
		if p.Category == trip.CategoryHotel {
			set.add(p.ID)
		}
	}
	return set.places()
}

// visiblePlaces applies the selection branches, first match wins. Itinerary
// places always precede toggle/suggestion extras; duplicates keep their
// first occurrence.
func visiblePlaces(set *placeSet, snap *trip.Snapshot, activeCity, openDay string, toggles Toggles) {
	switch {
	case activeCity == "" && openDay == "":
		// Trip overview: hotels only, across all cities.
		for _, p := range snap.OrderedPlaces() {
			if p.Category == trip.CategoryHotel {
				set.add(p.ID)
			}
		}

	case openDay != "":
		day, ok := snap.Day(openDay)
		if !ok {
			// Stale day identifier: nothing passes the filter stage.
			return
		}
		for _, a := range day.Activities {
			set.add(a.PlaceID)
		}
		for _, id := range day.HotelIDs {
			set.add(id)
		}
		for _, p := range snap.OrderedPlaces() {
			if p.City != day.City || set.has(p.ID) {
				continue
			}
			if toggles.On(p.Category) || p.Category == trip.CategorySuggestion || p.Category == trip.CategoryHotel {
				set.add(p.ID)
			}
		}

	case activeCity != "":
		// Whole-city view: everything itinerary-bound for the city, then
		// the toggle-gated extras.
		for _, day := range snap.DaysInCity(activeCity) {
			for _, a := range day.Activities {
				set.add(a.PlaceID)
			}
			for _, id := range day.HotelIDs {
				set.add(id)
			}
		}
		for _, p := range snap.OrderedPlaces() {
			if p.City != activeCity || set.has(p.ID) {
				continue
			}
			if toggles.On(p.Category) || p.Category == trip.CategoryHotel || p.Category == trip.CategorySuggestion {
				set.add(p.ID)
			}
		}

	default:
		// Unreachable given the branches above.
		for _, p := range snap.OrderedPlaces() {
			if toggles.On(p.Category) || p.Category == trip.CategoryHotel {
				set.add(p.ID)
			}
		}
	}
}

// placeSet accumulates place ids preserving first-insertion order. Ids that
// do not resolve to a place are dropped here; activity rendering surfaces
// them as inline errors instead.
type placeSet struct {
	snap *trip.Snapshot
	seen map[string]struct{}
	ids  []string
}

func newPlaceSet(snap *trip.Snapshot) *placeSet {
	return &placeSet{snap: snap, seen: map[string]struct{}{}}
}

func (s *placeSet) has(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *placeSet) add(id string) {
	if s.has(id) {
		return
	}
	if _, ok := s.snap.Places[id]; !ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *placeSet) places() []trip.Place {
	out := make([]trip.Place, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.snap.Places[id])
	}
	return out
}
