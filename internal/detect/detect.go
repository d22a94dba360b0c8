// Package detect infers the active city from manual map movement. It only
// ever reads the viewport; its output feeds selection state, so it can never
// re-trigger itself through a programmatic transition.
package detect

import (
	"sync"

	"github.com/asim/quadtree"

	"github.com/ianwelles/NihonGo-sub000/internal/shared/geo"
	"github.com/ianwelles/NihonGo-sub000/internal/trip"
)

// City is a pre-aggregated city: the center and radius of the bounding box
// of its places.
type City struct {
	Name     string     `json:"name"`
	Center   geo.LatLng `json:"center"`
	RadiusKm float64    `json:"radius_km"`
}

// Detector resolves a map center and zoom to a city activation decision.
// Thresholds come from configuration rather than being baked in.
type Detector struct {
	snapRadiusKm float64
	zoomIn       float64
	zoomOut      float64

	mu     sync.RWMutex
	qt     *quadtree.QuadTree
	cities []City
}

func New(snapRadiusKm, zoomIn, zoomOut float64) *Detector {
	return &Detector{
		snapRadiusKm: snapRadiusKm,
		zoomIn:       zoomIn,
		zoomOut:      zoomOut,
	}
}

// Rebuild re-aggregates city centers from a snapshot. Called whenever the
// store is replaced.
func (d *Detector) Rebuild(snap *trip.Snapshot) {
	perCity := map[string]*geo.Bounds{}
	var order []string
	for _, p := range snap.OrderedPlaces() {
		if p.City == "" {
			continue
		}
		b, ok := perCity[p.City]
		if !ok {
			b = &geo.Bounds{}
			perCity[p.City] = b
			order = append(order, p.City)
		}
		b.Extend(p.Coordinate)
	}

	// Quadtree over the whole world (lat ±90, lng ±180).
	boundary := quadtree.NewAABB(quadtree.NewPoint(0, 0, nil), quadtree.NewPoint(90, 180, nil))
	qt := quadtree.New(boundary, 0, nil)

	cities := make([]City, 0, len(order))
	for _, name := range order {
		b := perCity[name]
		city := City{Name: name, Center: b.Center(), RadiusKm: b.RadiusKm()}
		cities = append(cities, city)
		qt.Insert(quadtree.NewPoint(city.Center.Lat, city.Center.Lng, city))
	}

	d.mu.Lock()
	d.qt = qt
	d.cities = cities
	d.mu.Unlock()
}

// Cities returns the aggregated city list.
func (d *Detector) Cities() []City {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cities
}

// Detect decides on a city change for a user pan/zoom-end. It returns the
// city to activate ("" to clear) and whether anything should change. At
// intermediate zoom levels it never acts, to avoid flapping between scales.
func (d *Detector) Detect(center geo.LatLng, zoom float64, activeCity string) (string, bool) {
	switch {
	case zoom > d.zoomIn:
		city, ok := d.nearest(center)
		if ok && city.Name != activeCity {
			return city.Name, true
		}
	case zoom < d.zoomOut:
		if activeCity != "" {
			return "", true
		}
	}
	return activeCity, false
}

// nearest finds the closest pre-aggregated city within the snap radius.
// When no city is close enough it reports false: never guess.
func (d *Detector) nearest(center geo.LatLng) (City, bool) {
	d.mu.RLock()
	qt := d.qt
	d.mu.RUnlock()
	if qt == nil {
		return City{}, false
	}

	p := quadtree.NewPoint(center.Lat, center.Lng, nil)
	half := p.HalfPoint(d.snapRadiusKm * 1000)
	points := qt.Search(quadtree.NewAABB(p, half))

	var best City
	var bestKm float64
	found := false
	for _, pt := range points {
		city, ok := pt.Data().(City)
		if !ok {
			continue
		}
		km := geo.HaversineKm(center.Lat, center.Lng, city.Center.Lat, city.Center.Lng)
		if km > d.snapRadiusKm {
			continue
		}
		if !found || km < bestKm {
			best = city
			bestKm = km
			found = true
		}
	}
	return best, found
}
