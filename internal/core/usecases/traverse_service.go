package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
	"github.com/jmdelacruz/lotlocate/internal/core/ports"
	"github.com/jmdelacruz/lotlocate/internal/pkg/metrics"
)

// TraverseService runs the bearing/distance traverse for single lots. It is
// stateless; the per-request transformer and reference point come in with
// each call.
type TraverseService struct{}

// NewTraverseService creates a new TraverseService.
func NewTraverseService() *TraverseService {
	return &TraverseService{}
}

// CalculateLot walks the survey lines of one lot from the reference monument
// and assembles the lot's geometry in both coordinate systems.
//
// The first line is the tie line: stepping along it from the reference point
// yields the POB. Every later line extends the parcel boundary from the
// previous vertex. Any unparseable line aborts the lot with a message naming
// the line; a failed geographic transformation only blanks that point's
// geographic slot. Misclosure is measured before the ring is closed, area
// after.
func (s *TraverseService) CalculateLot(
	ctx context.Context,
	forward ports.Transform,
	ref domain.Point,
	linesText, lotID, lotName string,
) *domain.LotGeometry {
	result := &domain.LotGeometry{
		LotID:   lotID,
		LotName: lotName,
		Status:  domain.StatusSuccess,
	}

	var lines []string
	for _, l := range strings.Split(linesText, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}

	if len(lines) == 0 {
		result.Status = domain.StatusNoData
		result.Message = fmt.Sprintf("Lot %q has no survey lines.", lotName)
		metrics.LotsCalculated.WithLabelValues(string(domain.StatusNoData)).Inc()
		return result
	}

	// Tie line: reference monument to POB.
	pob, err := nextPoint(lines[0], ref)
	if err != nil {
		return s.failLot(result, fmt.Sprintf(
			"Lot %q: invalid tie-line to POB (line 1): %s: %v", lotName, lines[0], err))
	}

	result.Projected.POB = &pob
	result.Projected.TieLine = []domain.Point{ref, pob}
	result.Projected.ParcelBoundary = []domain.Point{pob}

	refLL := transformPoint(forward, ref, "reference point", lotName)
	pobLL := transformPoint(forward, pob, "POB", lotName)
	result.Geographic.POB = pobLL
	result.Geographic.TieLine = []*domain.LatLng{refLL, pobLL}
	result.Geographic.ParcelBoundary = []*domain.LatLng{pobLL}

	current := pob
	for i, line := range lines[1:] {
		next, err := nextPoint(line, current)
		if err != nil {
			return s.failLot(result, fmt.Sprintf(
				"Lot %q: invalid parcel boundary (line %d): %s: %v", lotName, i+2, line, err))
		}

		result.Projected.ParcelBoundary = append(result.Projected.ParcelBoundary, next)
		result.Geographic.ParcelBoundary = append(result.Geographic.ParcelBoundary,
			transformPoint(forward, next, fmt.Sprintf("vertex %d", i+1), lotName))
		current = next
	}

	// Misclosure strictly before closing, so a field-perfect traverse reports
	// ~0 instead of 0 by construction.
	result.Misclosure = domain.ComputeMisclosure(result.Projected.ParcelBoundary)

	result.Projected.ParcelBoundary = domain.CloseRing(result.Projected.ParcelBoundary)
	result.Geographic.ParcelBoundary = domain.CloseGeographicRing(result.Geographic.ParcelBoundary)

	result.AreaSqm = domain.RingArea(result.Projected.ParcelBoundary)
	if result.AreaSqm == nil && len(result.Projected.ParcelBoundary) >= 4 {
		slog.Warn("parcel ring has no computable area", "lot", lotName)
	}

	metrics.LotsCalculated.WithLabelValues(string(domain.StatusSuccess)).Inc()
	return result
}

func (s *TraverseService) failLot(result *domain.LotGeometry, msg string) *domain.LotGeometry {
	slog.Warn("lot calculation failed", "lot", result.LotName, "reason", msg)
	metrics.LotsCalculated.WithLabelValues(string(domain.StatusError)).Inc()
	metrics.SurveyLineFailures.Inc()
	return &domain.LotGeometry{
		LotID:   result.LotID,
		LotName: result.LotName,
		Status:  domain.StatusError,
		Message: msg,
	}
}

// nextPoint parses one survey line and steps from the given point.
func nextPoint(line string, from domain.Point) (domain.Point, error) {
	sl, err := domain.ParseSurveyLine(line)
	if err != nil {
		return domain.Point{}, err
	}
	az, err := sl.Bearing.Azimuth()
	if err != nil {
		return domain.Point{}, fmt.Errorf("azimuth: %w", err)
	}
	return domain.Step(from, az, sl.Distance), nil
}

// transformPoint converts one projected point to WGS 84. Failures degrade the
// output instead of aborting the lot: the caller records a nil slot.
func transformPoint(forward ports.Transform, p domain.Point, desc, lotName string) *domain.LatLng {
	if forward == nil {
		slog.Warn("no geographic transformer available", "lot", lotName, "point", desc)
		return nil
	}
	lng, lat, err := forward(p.E, p.N)
	if err != nil {
		slog.Error("geographic transform failed",
			"lot", lotName, "point", desc, "easting", p.E, "northing", p.N, "error", err)
		metrics.TransformFailures.Inc()
		return nil
	}
	return &domain.LatLng{Lat: lat, Lng: lng}
}
