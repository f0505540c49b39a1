// Package geo provides the geometric primitives used across the engine:
// haversine distances, bounding boxes, and polygon containment.
package geo

import "math"

const earthRadiusM = 6371000.0

// Point represents a geographical coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// Distance calculates the great-circle distance between two points in meters
// using the haversine formula.
func Distance(p1, p2 Point) float64 {
	lat1 := p1.Lat * math.Pi / 180
	lat2 := p2.Lat * math.Pi / 180
	dLat := (p2.Lat - p1.Lat) * math.Pi / 180
	dLng := (p2.Lng - p1.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// Midpoint returns the arithmetic midpoint of two points. Good enough for
// the small zones this engine works with.
func Midpoint(p1, p2 Point) Point {
	return Point{Lat: (p1.Lat + p2.Lat) / 2, Lng: (p1.Lng + p2.Lng) / 2}
}
