package usecases_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
	"github.com/jmdelacruz/lotlocate/internal/core/ports"
	"github.com/jmdelacruz/lotlocate/internal/core/usecases"
)

// identityTransform passes projected coordinates through as lon/lat.
func identityTransform(x, y float64) (float64, float64, error) {
	return x, y, nil
}

func failingTransform(x, y float64) (float64, float64, error) {
	return 0, 0, errors.New("out of bounds")
}

var refPoint = domain.Point{E: 500000, N: 1600000}

// squareLot traverses a 100m square rotated 45 degrees from grid north:
// tie line to the POB, then the four sides. The last leg returns exactly
// to the POB.
const squareLot = `N 45D 00′ E;141.42
N 45D 00′ E;100
S 45D 00′ E;100
S 45D 00′ W;100
N 45D 00′ W;100`

func TestCalculateLotSquare(t *testing.T) {
	svc := usecases.NewTraverseService()

	res := svc.CalculateLot(context.Background(), identityTransform, refPoint, squareLot, "lot1", "Lot 1")

	if res.Status != domain.StatusSuccess {
		t.Fatalf("status = %s, message = %q", res.Status, res.Message)
	}
	if res.Projected.POB == nil {
		t.Fatal("no POB")
	}
	if len(res.Projected.TieLine) != 2 {
		t.Fatalf("tie line has %d points", len(res.Projected.TieLine))
	}
	// 4 vertices walked + closing point
	if len(res.Projected.ParcelBoundary) != 6 {
		t.Fatalf("boundary has %d points, want 6", len(res.Projected.ParcelBoundary))
	}
	first := res.Projected.ParcelBoundary[0]
	last := res.Projected.ParcelBoundary[len(res.Projected.ParcelBoundary)-1]
	if first != last {
		t.Error("boundary not closed")
	}

	if res.AreaSqm == nil {
		t.Fatal("no area for a valid square")
	}
	if math.Abs(*res.AreaSqm-10000) > 1 {
		t.Errorf("area = %g, want ~10000", *res.AreaSqm)
	}

	if res.Misclosure.Distance == nil {
		t.Fatal("no misclosure")
	}
	if *res.Misclosure.Distance > 0.01 {
		t.Errorf("misclosure = %gm, want ~0", *res.Misclosure.Distance)
	}

	// Geographic slices mirror projected ones index for index.
	if len(res.Geographic.ParcelBoundary) != len(res.Projected.ParcelBoundary) {
		t.Errorf("geographic boundary length %d != projected %d",
			len(res.Geographic.ParcelBoundary), len(res.Projected.ParcelBoundary))
	}
	for i, ll := range res.Geographic.ParcelBoundary {
		if ll == nil {
			t.Errorf("geographic slot %d nil with a working transform", i)
		}
	}
}

func TestCalculateLotBlankText(t *testing.T) {
	svc := usecases.NewTraverseService()

	res := svc.CalculateLot(context.Background(), identityTransform, refPoint, "  \n\n  ", "lot1", "Lot 1")
	if res.Status != domain.StatusNoData {
		t.Fatalf("status = %s, want nodata", res.Status)
	}
	if !strings.Contains(res.Message, "no survey lines") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestCalculateLotBadTieLine(t *testing.T) {
	svc := usecases.NewTraverseService()

	res := svc.CalculateLot(context.Background(), identityTransform, refPoint, "garbage;xx\nN 10D 00′ E;50", "lot1", "Lot 1")
	if res.Status != domain.StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
	if !strings.Contains(res.Message, "tie-line") || !strings.Contains(res.Message, "line 1") {
		t.Errorf("message = %q, want tie-line failure naming line 1", res.Message)
	}
	if res.Projected.POB != nil {
		t.Error("failed lot kept geometry")
	}
}

func TestCalculateLotBadBoundaryLineNumber(t *testing.T) {
	svc := usecases.NewTraverseService()

	text := "N 45D 00′ E;10\nN 00D 00′ E;10\nbroken"
	res := svc.CalculateLot(context.Background(), identityTransform, refPoint, text, "lot1", "Lot 1")
	if res.Status != domain.StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
	// Line numbers count all survey lines, tie line included.
	if !strings.Contains(res.Message, "line 3") {
		t.Errorf("message = %q, want failure at line 3", res.Message)
	}
}

func TestCalculateLotRejectsNinetyDegreeBearing(t *testing.T) {
	svc := usecases.NewTraverseService()

	// Due east is written "N 90D ..." in sloppy source data; the quadrant
	// system caps degrees at 89 and the lot must fail with the line number.
	text := "N 45D 00′ E;10\nN 90D 00′ E;100"
	res := svc.CalculateLot(context.Background(), identityTransform, refPoint, text, "lot1", "Lot 1")
	if res.Status != domain.StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
	if !strings.Contains(res.Message, "line 2") {
		t.Errorf("message = %q, want failure at line 2", res.Message)
	}
}

func TestCalculateLotSinglePOBOnly(t *testing.T) {
	svc := usecases.NewTraverseService()

	res := svc.CalculateLot(context.Background(), identityTransform, refPoint, "N 45D 00′ E;100", "lot1", "Lot 1")
	if res.Status != domain.StatusSuccess {
		t.Fatalf("status = %s", res.Status)
	}
	if len(res.Projected.ParcelBoundary) != 1 {
		t.Errorf("boundary = %d points, want just the POB", len(res.Projected.ParcelBoundary))
	}
	if res.AreaSqm != nil {
		t.Error("area computed for a single point")
	}
	if res.Misclosure.Distance != nil {
		t.Error("misclosure computed for a single point")
	}
}

func TestCalculateLotTransformFailureIsNonFatal(t *testing.T) {
	svc := usecases.NewTraverseService()

	res := svc.CalculateLot(context.Background(), failingTransform, refPoint, squareLot, "lot1", "Lot 1")
	if res.Status != domain.StatusSuccess {
		t.Fatalf("status = %s; transform failures must not fail the lot", res.Status)
	}
	if res.AreaSqm == nil {
		t.Error("projected area lost to a geographic transform failure")
	}
	for i, ll := range res.Geographic.ParcelBoundary {
		if ll != nil {
			t.Errorf("geographic slot %d populated despite failing transform", i)
		}
	}
	// Index pairing holds even when every slot is nil.
	if len(res.Geographic.ParcelBoundary) != len(res.Projected.ParcelBoundary) {
		t.Error("geographic/projected boundary lengths diverged")
	}
}

var _ ports.Transform = identityTransform
