package view

import (
	"sort"

	"github.com/ianwelles/NihonGo-sub000/internal/trip"
)

// ViewportClass is the device class driving layout-dependent behavior.
type ViewportClass string

const (
	ViewportMobile  ViewportClass = "mobile"
	ViewportDesktop ViewportClass = "desktop"
)

// Toggles are the four independent booleans gating the recommendation
// categories. They are overwritten wholesale by the toggle policy whenever
// the city/day selection changes.
type Toggles struct {
	SightRec bool `json:"sight_rec"`
	FoodRec  bool `json:"food_rec"`
	BarRec   bool `json:"bar_rec"`
	Shopping bool `json:"shopping"`
}

func allToggles(v bool) Toggles {
	return Toggles{SightRec: v, FoodRec: v, BarRec: v, Shopping: v}
}

// On reports whether the toggle for a category is set. Categories without a
// toggle are never "on".
func (t Toggles) On(c trip.Category) bool {
	switch c {
	case trip.CategorySightRec:
		return t.SightRec
	case trip.CategoryFoodRec:
		return t.FoodRec
	case trip.CategoryBarRec:
		return t.BarRec
	case trip.CategoryShopping:
		return t.Shopping
	}
	return false
}

// Flip inverts exactly one toggle, leaving the rest untouched. It reports
// whether the category has a toggle at all.
func (t *Toggles) Flip(c trip.Category) bool {
	switch c {
	case trip.CategorySightRec:
		t.SightRec = !t.SightRec
	case trip.CategoryFoodRec:
		t.FoodRec = !t.FoodRec
	case trip.CategoryBarRec:
		t.BarRec = !t.BarRec
	case trip.CategoryShopping:
		t.Shopping = !t.Shopping
	default:
		return false
	}
	return true
}

// State is the minimal set of user-controlled facts for one viewer. It is
// ephemeral: reconstructed fresh each session, never persisted.
type State struct {
	ActiveCity  string        `json:"active_city"`
	OpenDay     string        `json:"open_day"`
	Toggles     Toggles       `json:"toggles"`
	SidebarOpen bool          `json:"sidebar_open"`
	Fullscreen  bool          `json:"fullscreen"`
	Viewport    ViewportClass `json:"viewport"`
	Animating   bool          `json:"animating"`

	// openPopups is the set of places with an open map popup.
	openPopups map[string]struct{}
}

func newState(viewport ViewportClass) State {
	return State{
		Viewport: viewport,
		// Desktop starts with the sidebar open, mobile closed.
		SidebarOpen: viewport != ViewportMobile,
		openPopups:  map[string]struct{}{},
	}
}

// Overview reports whether nothing is selected: the whole-trip view.
func (s State) Overview() bool {
	return s.ActiveCity == "" && s.OpenDay == ""
}

// OpenPopupIDs returns the open popups sorted by place id.
func (s State) OpenPopupIDs() []string {
	ids := make([]string, 0, len(s.openPopups))
	for id := range s.openPopups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// applyTogglePolicy overwrites all four toggles from the current selection:
// a city with no open day shows every recommendation layer, any other state
// hides them all. Manual toggle state does not survive a selection change.
func (s *State) applyTogglePolicy() {
	s.Toggles = allToggles(s.ActiveCity != "" && s.OpenDay == "")
}
