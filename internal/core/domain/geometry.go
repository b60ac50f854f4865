package domain

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Step advances a projected point along an azimuth. Azimuth 0 is grid north
// and increases clockwise, so sine drives the easting and cosine the northing.
func Step(from Point, azimuthDeg, distance float64) Point {
	rad := azimuthDeg * math.Pi / 180.0
	return Point{
		E: from.E + distance*math.Sin(rad),
		N: from.N + distance*math.Cos(rad),
	}
}

// ComputeMisclosure measures the gap from the last boundary point back to the
// first. It must be called on the ring before CloseRing, otherwise the gap is
// zero by construction. Fewer than two points yield empty Misclosure.
func ComputeMisclosure(boundary []Point) Misclosure {
	if len(boundary) < 2 {
		return Misclosure{}
	}

	first := boundary[0]
	last := boundary[len(boundary)-1]
	dE := last.E - first.E
	dN := last.N - first.N

	dist := math.Hypot(dE, dN)
	// Survey azimuth convention: atan2 takes the easting delta first.
	az := math.Atan2(dE, dN) * 180.0 / math.Pi
	if az < 0 {
		az += 360.0
	}
	return Misclosure{Distance: &dist, AzimuthDeg: &az}
}

// CloseRing appends a copy of the first point when the boundary has two or
// more points and is not already closed. Idempotent.
func CloseRing(boundary []Point) []Point {
	if len(boundary) > 1 && boundary[0] != boundary[len(boundary)-1] {
		return append(boundary, boundary[0])
	}
	return boundary
}

// CloseGeographicRing mirrors CloseRing on the index-paired geographic
// boundary. The closing slot reuses the first entry, which may be nil when
// that point's transformation failed.
func CloseGeographicRing(boundary []*LatLng) []*LatLng {
	if len(boundary) > 1 {
		first, last := boundary[0], boundary[len(boundary)-1]
		if first == nil || last == nil || *first != *last {
			return append(boundary, first)
		}
	}
	return boundary
}

// RingArea computes the planar polygon area in square meters of a closed
// boundary ring. It returns nil unless the ring has at least four points
// (three unique vertices plus the closing point), is actually closed, and is
// simple; a degenerate or self-intersecting ring has no meaningful area.
func RingArea(closed []Point) *float64 {
	if len(closed) < 4 || closed[0] != closed[len(closed)-1] {
		return nil
	}
	if selfIntersects(closed) {
		return nil
	}

	ring := make(orb.Ring, len(closed))
	for i, p := range closed {
		ring[i] = orb.Point{p.E, p.N}
	}

	area := math.Abs(planar.Area(orb.Polygon{ring}))
	if area == 0 || math.IsNaN(area) || math.IsInf(area, 0) {
		return nil
	}
	return &area
}

// selfIntersects reports whether any two non-adjacent edges of a closed ring
// cross. Quadratic, but parcel rings are tiny.
func selfIntersects(closed []Point) bool {
	n := len(closed) - 1 // edges
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			// Skip adjacent edges, including the first/last pair which
			// share the ring's start point.
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if segmentsCross(closed[i], closed[i+1], closed[j], closed[j+1]) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(a, b, c, d Point) bool {
	o1 := orient(a, b, c)
	o2 := orient(a, b, d)
	o3 := orient(c, d, a)
	o4 := orient(c, d, b)

	if o1*o2 < 0 && o3*o4 < 0 {
		return true
	}

	// Collinear overlaps also invalidate the ring.
	if o1 == 0 && onSegment(a, b, c) {
		return true
	}
	if o2 == 0 && onSegment(a, b, d) {
		return true
	}
	if o3 == 0 && onSegment(c, d, a) {
		return true
	}
	if o4 == 0 && onSegment(c, d, b) {
		return true
	}
	return false
}

func orient(a, b, c Point) float64 {
	v := (b.E-a.E)*(c.N-a.N) - (b.N-a.N)*(c.E-a.E)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.E, b.E) <= p.E && p.E <= math.Max(a.E, b.E) &&
		math.Min(a.N, b.N) <= p.N && p.N <= math.Max(a.N, b.N)
}
