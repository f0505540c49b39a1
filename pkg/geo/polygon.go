package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Polygon is a zone boundary as a list of [lat, lng] vertices, as received
// from clients. The ring does not need to be explicitly closed.
type Polygon [][]float64

// Validate checks that the polygon has enough vertices and that every
// vertex is a valid coordinate pair.
func (p Polygon) Validate() error {
	if len(p) < 3 {
		return fmt.Errorf("polygon needs at least 3 vertices, got %d", len(p))
	}
	for i, v := range p {
		if len(v) != 2 {
			return fmt.Errorf("vertex %d: expected [lat, lng] pair, got %d values", i, len(v))
		}
		if v[0] < -90 || v[0] > 90 || v[1] < -180 || v[1] > 180 {
			return fmt.Errorf("vertex %d: coordinates out of range (%f, %f)", i, v[0], v[1])
		}
	}
	return nil
}

// ring converts the polygon to an orb ring in [lng, lat] order, closing it
// if the input left it open.
func (p Polygon) ring() orb.Ring {
	ring := make(orb.Ring, 0, len(p)+1)
	for _, v := range p {
		ring = append(ring, orb.Point{v[1], v[0]})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// Contains reports whether the point lies inside the polygon.
func (p Polygon) Contains(pt Point) bool {
	if len(p) < 3 {
		return false
	}
	return planar.PolygonContains(orb.Polygon{p.ring()}, orb.Point{pt.Lng, pt.Lat})
}

// Centroid returns the vertex average of the polygon. Used for country
// detection, where precision does not matter.
func (p Polygon) Centroid() Point {
	if len(p) == 0 {
		return Point{}
	}
	var sumLat, sumLng float64
	for _, v := range p {
		sumLat += v[0]
		sumLng += v[1]
	}
	n := float64(len(p))
	return Point{Lat: sumLat / n, Lng: sumLng / n}
}

// BoundingBox is a geographic bounding box.
type BoundingBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

// BoundsOf computes the bounding box of a polygon.
func BoundsOf(p Polygon) BoundingBox {
	if len(p) == 0 {
		return BoundingBox{}
	}
	b := BoundingBox{
		South: p[0][0], North: p[0][0],
		West: p[0][1], East: p[0][1],
	}
	for _, v := range p[1:] {
		b.South = math.Min(b.South, v[0])
		b.North = math.Max(b.North, v[0])
		b.West = math.Min(b.West, v[1])
		b.East = math.Max(b.East, v[1])
	}
	return b
}

// Contains reports whether the point lies inside the bounding box.
func (b BoundingBox) Contains(pt Point) bool {
	return pt.Lat >= b.South && pt.Lat <= b.North &&
		pt.Lng >= b.West && pt.Lng <= b.East
}

// Center returns the center point of the bounding box.
func (b BoundingBox) Center() Point {
	return Point{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
}

// ExtendMarine extends the box seaward (south and west) by extensionKM.
// Latitude degrees are ~111 km; longitude degrees shrink with latitude.
func (b BoundingBox) ExtendMarine(extensionKM float64) BoundingBox {
	latExt := extensionKM / 111.0
	midLat := (b.South + b.North) / 2
	lngExt := extensionKM / (111.0 * math.Cos(midLat*math.Pi/180))

	return BoundingBox{
		South: b.South - latExt,
		West:  b.West - lngExt,
		North: b.North,
		East:  b.East,
	}
}
