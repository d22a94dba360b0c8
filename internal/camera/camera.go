// Package camera decides whether and how the map viewport follows the
// currently displayed places. Each recomputation is classified into a single
// trigger, and the trigger picks the bounds-fitting animation.
package camera

import "github.com/ianwelles/NihonGo-sub000/internal/shared/geo"

type Trigger string

const (
	TriggerNone          Trigger = ""
	TriggerInitialLoad   Trigger = "initial_load"
	TriggerCityChanged   Trigger = "city_changed"
	TriggerDayChanged    Trigger = "day_changed"
	TriggerLayoutChanged Trigger = "layout_changed"
)

type Animation string

const (
	// AnimationEase snaps to a coarse whole-region view over a long duration.
	AnimationEase Animation = "ease"
	// AnimationFly pans and zooms to a focused view with eased deceleration.
	AnimationFly Animation = "fly"
	// AnimationFit adjusts bounds with a minimal transition.
	AnimationFit Animation = "fit"
)

const (
	overviewMaxZoom = 10.0
	focusMaxZoom    = 14.0

	easeDurationMs = 1200
	flyDurationMs  = 800
	fitDurationMs  = 300
)

// Change records which selection facts moved since the previous computation.
// At most one trigger is acted on per recomputation.
type Change struct {
	InitialLoad   bool
	CityChanged   bool
	DayChanged    bool
	LayoutChanged bool
}

// Classify reduces a change set to its single effective trigger.
func Classify(ch Change) Trigger {
	switch {
	case ch.InitialLoad:
		return TriggerInitialLoad
	case ch.CityChanged:
		return TriggerCityChanged
	case ch.DayChanged:
		return TriggerDayChanged
	case ch.LayoutChanged:
		return TriggerLayoutChanged
	}
	return TriggerNone
}

// Layout is the screen state that shapes fit padding.
type Layout struct {
	Mobile      bool
	SidebarOpen bool
	Fullscreen  bool
}

// Padding is in screen pixels, clockwise from the top.
type Padding struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// PaddingFor returns the fit padding for a layout. The extra bottom padding
// clears the floating city-selector control; the left padding clears the
// desktop sidebar.
func PaddingFor(l Layout) Padding {
	switch {
	case l.Fullscreen:
		return Padding{}
	case l.Mobile:
		return Padding{Top: 24, Right: 24, Bottom: 72, Left: 24}
	case l.SidebarOpen:
		return Padding{Top: 48, Right: 48, Bottom: 48, Left: 408}
	default:
		return Padding{Top: 48, Right: 48, Bottom: 96, Left: 48}
	}
}

// Plan is one programmatic viewport transition.
type Plan struct {
	Trigger    Trigger    `json:"trigger"`
	Bounds     geo.Bounds `json:"bounds"`
	Padding    Padding    `json:"padding"`
	Animation  Animation  `json:"animation"`
	MaxZoom    float64    `json:"max_zoom"`
	DurationMs int        `json:"duration_ms"`
}

// PlanFor computes the transition for a trigger over the displayed places.
// It returns false when there is nothing to do: no trigger, or no places.
// overview marks the "both city and day unset" reset, which gets the same
// coarse ease as the initial load.
func PlanFor(trigger Trigger, places []geo.LatLng, layout Layout, overview bool) (Plan, bool) {
	if trigger == TriggerNone || len(places) == 0 {
		return Plan{}, false
	}

	plan := Plan{
		Trigger: trigger,
		Bounds:  geo.BoundsOf(places),
		Padding: PaddingFor(layout),
	}

	switch {
	case trigger == TriggerInitialLoad || overview:
		plan.Animation = AnimationEase
		plan.MaxZoom = overviewMaxZoom
		plan.DurationMs = easeDurationMs
	case trigger == TriggerCityChanged || trigger == TriggerDayChanged:
		plan.Animation = AnimationFly
		plan.MaxZoom = focusMaxZoom
		plan.DurationMs = flyDurationMs
	default:
		plan.Animation = AnimationFit
		plan.MaxZoom = focusMaxZoom
		plan.DurationMs = fitDurationMs
	}
	return plan, true
}
