// Package popup closes map popups that get dragged mostly out of view.
package popup

import (
	"sort"

	"github.com/ianwelles/NihonGo-sub000/internal/shared/geo"
)

// Monitor measures open popups against the map container during user drags.
type Monitor struct {
	minVisible float64
}

// NewMonitor takes the minimum fraction of a popup's area that must remain
// inside the container.
func NewMonitor(minVisible float64) *Monitor {
	return &Monitor{minVisible: minVisible}
}

// Occluded returns the ids of popups to close, sorted for determinism.
// It only acts on genuine user drags: programmatic transitions may swing
// popups off-screen mid-flight and must not close them.
func (m *Monitor) Occluded(container geo.Rect, popups map[string]geo.Rect, dragging, animating bool) []string {
	if animating || !dragging || len(popups) == 0 {
		return nil
	}

	var closed []string
	for id, rect := range popups {
		if rect.OverlapRatio(container) < m.minVisible {
			closed = append(closed, id)
		}
	}
	sort.Strings(closed)
	return closed
}
