package trip

import (
	"fmt"
	"sort"

	"github.com/ianwelles/NihonGo-sub000/internal/shared/geo"
)

// Category is the closed set of place kinds. Categories suffixed _rec are
// "recommended extras": they are not itinerary-bound and are shown only when
// their visibility toggle is on.
type Category string

const (
	CategoryHotel       Category = "hotel"
	CategoryFood        Category = "food"
	CategorySight       Category = "sight"
	CategoryTravel      Category = "travel"
	CategoryShopping    Category = "shopping"
	CategorySuggestion  Category = "suggestion"
	CategorySightRec    Category = "sight_rec"
	CategoryFoodRec     Category = "food_rec"
	CategoryBarRec      Category = "bar_rec"
	CategoryBar         Category = "bar"
)

var allCategories = map[Category]struct{}{
	CategoryHotel:      {},
	CategoryFood:       {},
	CategorySight:      {},
	CategoryTravel:     {},
	CategoryShopping:   {},
	CategorySuggestion: {},
	CategorySightRec:   {},
	CategoryFoodRec:    {},
	CategoryBarRec:     {},
	CategoryBar:        {},
}

// ToggleCategories are the four categories controlled by visibility toggles.
var ToggleCategories = []Category{CategorySightRec, CategoryFoodRec, CategoryBarRec, CategoryShopping}

// ParseCategory validates a raw category string against the closed set.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	_, ok := allCategories[c]
	return c, ok
}

// Toggleable reports whether the category is gated by a visibility toggle.
func (c Category) Toggleable() bool {
	for _, t := range ToggleCategories {
		if c == t {
			return true
		}
	}
	return false
}

// defaultMarkerColor is used when the theme has no entry for a category.
const defaultMarkerColor = "#808080"

// HotelInfo carries lodging-only metadata.
type HotelInfo struct {
	Address       string   `json:"address,omitempty"`
	DirectionsURL string   `json:"directions_url,omitempty"`
	Neighborhood  string   `json:"neighborhood,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// Place is a point of interest. Places are created once at snapshot load and
// are immutable for the session.
type Place struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    Category   `json:"category"`
	City        string     `json:"city"`
	Coordinate  geo.LatLng `json:"coordinate"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Hotel       *HotelInfo `json:"hotel,omitempty"`
}

// Activity is a scheduled reference to a Place within a day. Label,
// Description and URL override the referenced place's own fields when set.
type Activity struct {
	PlaceID     string `json:"place_id"`
	TimeLabel   string `json:"time_label,omitempty"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Tip         string `json:"tip,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// DayItinerary is one city-scoped day of the trip. A day spent in two cities
// is two entries sharing the same day number, so (DayNumber, City) is the
// unique key.
type DayItinerary struct {
	DayNumber  int        `json:"day_number"`
	City       string     `json:"city"`
	Date       string     `json:"date"`
	Title      string     `json:"title,omitempty"`
	HotelIDs   []string   `json:"hotel_ids,omitempty"`
	Activities []Activity `json:"activities"`
}

// ID renders the addressable day identifier, e.g. "4-Kyoto".
func (d DayItinerary) ID() string {
	return fmt.Sprintf("%d-%s", d.DayNumber, d.City)
}

// TipCategory groups free-form travel tips.
type TipCategory struct {
	Name string   `json:"name"`
	Tips []string `json:"tips"`
}

// Theme holds the color tables keyed by city and by category string.
type Theme struct {
	CityColors   map[string]string `json:"city_colors"`
	MarkerColors map[string]string `json:"marker_colors"`
}

// MarkerColor looks up the marker color for a category, falling back to a
// single neutral default for unknown or unthemed categories.
func (t Theme) MarkerColor(c Category) string {
	if color, ok := t.MarkerColors[string(c)]; ok && color != "" {
		return color
	}
	return defaultMarkerColor
}

// Snapshot is the full normalized data set for one trip. It is immutable
// once loaded and replaced wholesale on a fresh load.
type Snapshot struct {
	Places    map[string]Place `json:"places"`
	Itinerary []DayItinerary   `json:"itinerary"`
	Tips      []TipCategory    `json:"tips"`
	Theme     Theme            `json:"theme"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`

	// order fixes place iteration so filtering is deterministic.
	order []string
}

// Normalize sorts the itinerary by (city day order) and freezes a stable
// place iteration order. Must be called once after decoding.
func (s *Snapshot) Normalize() {
	if s.Places == nil {
		s.Places = map[string]Place{}
	}
	s.order = make([]string, 0, len(s.Places))
	for id := range s.Places {
		s.order = append(s.order, id)
	}
	sort.Strings(s.order)

	sort.SliceStable(s.Itinerary, func(i, j int) bool {
		return s.Itinerary[i].DayNumber < s.Itinerary[j].DayNumber
	})
}

// OrderedPlaces returns all places in the frozen iteration order.
func (s *Snapshot) OrderedPlaces() []Place {
	out := make([]Place, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.Places[id])
	}
	return out
}

// Day resolves a day identifier to its DayItinerary.
func (s *Snapshot) Day(dayID string) (DayItinerary, bool) {
	for _, d := range s.Itinerary {
		if d.ID() == dayID {
			return d, true
		}
	}
	return DayItinerary{}, false
}

// DaysInCity returns the itinerary entries for one city, day order ascending.
func (s *Snapshot) DaysInCity(city string) []DayItinerary {
	var out []DayItinerary
	for _, d := range s.Itinerary {
		if d.City == city {
			out = append(out, d)
		}
	}
	return out
}

// Cities returns the distinct cities in itinerary order, then any cities
// that only have places, alphabetically.
func (s *Snapshot) Cities() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, d := range s.Itinerary {
		if _, ok := seen[d.City]; !ok {
			seen[d.City] = struct{}{}
			out = append(out, d.City)
		}
	}
	var extra []string
	for _, id := range s.order {
		city := s.Places[id].City
		if city == "" {
			continue
		}
		if _, ok := seen[city]; !ok {
			seen[city] = struct{}{}
			extra = append(extra, city)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// ResolvedActivity pairs an activity with its place. A dangling place
// reference is a data error surfaced inline, never a dropped entry.
type ResolvedActivity struct {
	Activity
	Place *Place `json:"place,omitempty"`
	Error string `json:"error,omitempty"`
}

// ResolvedDay is a day with its activities resolved against the place map.
type ResolvedDay struct {
	DayItinerary
	DayID   string             `json:"day_id"`
	Entries []ResolvedActivity `json:"entries"`
}

// ResolveDay resolves every activity of d. Label, description and URL fall
// back to the referenced place's fields when the activity leaves them empty.
func (s *Snapshot) ResolveDay(d DayItinerary) ResolvedDay {
	out := ResolvedDay{DayItinerary: d, DayID: d.ID(), Entries: make([]ResolvedActivity, 0, len(d.Activities))}
	for _, a := range d.Activities {
		entry := ResolvedActivity{Activity: a}
		if p, ok := s.Places[a.PlaceID]; ok {
			place := p
			entry.Place = &place
			if entry.Label == "" {
				entry.Label = place.Name
			}
			if entry.Description == "" {
				entry.Description = place.Description
			}
			if entry.URL == "" {
				entry.URL = place.URL
			}
		} else {
			entry.Error = fmt.Sprintf("unknown place %q", a.PlaceID)
		}
		out.Entries = append(out.Entries, entry)
	}
	return out
}
