// Package exporters turns computed lot geometry into downloadable survey
// files. Exporters consume LotGeometry as-is and never re-derive geometry.
package exporters

import (
	"math"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
)

// Input is everything an exporter needs for one download: the batch of
// computed lots plus the reference monument they hang off.
type Input struct {
	EPSG            string
	Reference       *domain.ReferencePoint
	ReferenceLatLng *domain.LatLng
	Lots            []*domain.LotGeometry
}

// ringClosed reports whether the boundary forms an explicitly closed ring
// with enough vertices to bound an area.
func ringClosed(boundary []domain.Point) bool {
	return len(boundary) >= 4 && boundary[0] == boundary[len(boundary)-1]
}

// perimeter sums segment lengths along the boundary.
func perimeter(boundary []domain.Point) float64 {
	var total float64
	for i := 1; i < len(boundary); i++ {
		total += math.Hypot(
			boundary[i].E-boundary[i-1].E,
			boundary[i].N-boundary[i-1].N,
		)
	}
	return total
}

// geographicRing drops nil slots from an index-paired geographic boundary.
func geographicRing(boundary []*domain.LatLng) []domain.LatLng {
	out := make([]domain.LatLng, 0, len(boundary))
	for _, p := range boundary {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

func areaOrZero(a *float64) float64 {
	if a == nil {
		return 0
	}
	return *a
}
