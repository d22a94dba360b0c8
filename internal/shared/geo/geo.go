package geo

import "math"

const earthRadiusKm = 6371.0

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a geographic bounding box. The zero value is empty.
type Bounds struct {
	SouthWest LatLng `json:"south_west"`
	NorthEast LatLng `json:"north_east"`
	valid     bool
}

// Extend grows the bounds to include p.
func (b *Bounds) Extend(p LatLng) {
	if !b.valid {
		b.SouthWest = p
		b.NorthEast = p
		b.valid = true
		return
	}
	b.SouthWest.Lat = math.Min(b.SouthWest.Lat, p.Lat)
	b.SouthWest.Lng = math.Min(b.SouthWest.Lng, p.Lng)
	b.NorthEast.Lat = math.Max(b.NorthEast.Lat, p.Lat)
	b.NorthEast.Lng = math.Max(b.NorthEast.Lng, p.Lng)
}

// IsEmpty reports whether no point has been added.
func (b Bounds) IsEmpty() bool {
	return !b.valid
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() LatLng {
	return LatLng{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}

// RadiusKm returns the distance from the center to the farthest corner.
func (b Bounds) RadiusKm() float64 {
	c := b.Center()
	return HaversineKm(c.Lat, c.Lng, b.NorthEast.Lat, b.NorthEast.Lng)
}

// BoundsOf computes the bounding box of a set of points.
func BoundsOf(points []LatLng) Bounds {
	var b Bounds
	for _, p := range points {
		b.Extend(p)
	}
	return b
}

// HaversineKm returns the great-circle distance between two coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Rect is an on-screen rectangle in pixels, used for popup occlusion checks.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Area returns the rectangle's area, zero for degenerate rectangles.
func (r Rect) Area() float64 {
	w := r.Right - r.Left
	h := r.Bottom - r.Top
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Intersect returns the overlapping region of two rectangles.
func (r Rect) Intersect(other Rect) Rect {
	return Rect{
		Left:   math.Max(r.Left, other.Left),
		Top:    math.Max(r.Top, other.Top),
		Right:  math.Min(r.Right, other.Right),
		Bottom: math.Min(r.Bottom, other.Bottom),
	}
}

// OverlapRatio returns the fraction of r's area that lies inside container.
func (r Rect) OverlapRatio(container Rect) float64 {
	area := r.Area()
	if area == 0 {
		return 0
	}
	return r.Intersect(container).Area() / area
}
