package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
	"github.com/jmdelacruz/lotlocate/internal/core/ports"
)

// LotInput is one lot's raw survey text as submitted by the caller.
type LotInput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	LinesText string `json:"lines_text"`
}

// PlotRequest is the shared request body for calculation and export calls.
type PlotRequest struct {
	TargetCRS      string     `json:"target_crs"`
	ReferencePoint string     `json:"reference_point"`
	Lots           []LotInput `json:"lots"`
}

// PlotParams is a validated, resolved request: transformer pair built,
// reference monument looked up and (best-effort) transformed for plotting.
type PlotParams struct {
	EPSG      string
	Forward   ports.Transform
	Ref       *domain.ReferencePoint
	RefLatLng *domain.LatLng
	Lots      []LotInput
}

// InputError marks a caller mistake (HTTP 400).
type InputError struct{ Msg string }

func (e *InputError) Error() string { return e.Msg }

// RefDataError marks a server-side reference data failure (HTTP 500).
type RefDataError struct{ Err error }

func (e *RefDataError) Error() string { return e.Err.Error() }
func (e *RefDataError) Unwrap() error { return e.Err }

// PlotService orchestrates a whole calculation or export request: request
// validation, CRS transformer provisioning, reference point resolution and
// the per-lot traverse runs. Lots fail independently; batch preconditions
// fail before any lot is touched.
type PlotService struct {
	refs        *ReferenceService
	traverse    *TraverseService
	crs         ports.TransformerProvider
	events      ports.EventPublisher
	defaultEPSG string
}

// NewPlotService creates a PlotService. events may be nil.
func NewPlotService(
	refs *ReferenceService,
	traverse *TraverseService,
	crs ports.TransformerProvider,
	events ports.EventPublisher,
	defaultEPSG string,
) *PlotService {
	return &PlotService{
		refs:        refs,
		traverse:    traverse,
		crs:         crs,
		events:      events,
		defaultEPSG: defaultEPSG,
	}
}

// Prepare validates request-level preconditions and resolves collaborators.
// It never touches individual lots. A nil Ref in the returned params means
// the caller selected no reference point and submitted no lots.
func (s *PlotService) Prepare(ctx context.Context, req *PlotRequest) (*PlotParams, error) {
	epsg := strings.TrimSpace(req.TargetCRS)
	if epsg == "" {
		epsg = s.defaultEPSG
	}

	forward, _, err := s.crs.GetTransformers(epsg)
	if err != nil {
		return nil, &InputError{Msg: fmt.Sprintf(
			"target CRS EPSG code %q is invalid or not supported: %v", epsg, err)}
	}

	params := &PlotParams{EPSG: epsg, Forward: forward, Lots: req.Lots}

	if req.ReferencePoint == "" {
		if len(req.Lots) > 0 {
			return nil, &InputError{Msg: "a reference point must be selected when lot data is present"}
		}
		return params, nil
	}

	ref, err := s.refs.FindByName(ctx, req.ReferencePoint)
	if err != nil {
		return nil, &RefDataError{Err: err}
	}
	if ref == nil {
		return nil, &InputError{Msg: fmt.Sprintf(
			"selected reference point %q not found", req.ReferencePoint)}
	}
	params.Ref = ref

	// Transforming the monument marker is best-effort; plotting degrades to
	// no marker rather than failing the request.
	if lng, lat, err := forward(ref.Easting, ref.Northing); err == nil {
		params.RefLatLng = &domain.LatLng{Lat: lat, Lng: lng}
	} else {
		slog.Error("reference marker transform failed",
			"reference_point", ref.DisplayName, "error", err)
	}

	return params, nil
}

// CalculateLots runs the traverse for every submitted lot and reports whether
// any of them failed. Lot outcomes are positional: one result per input.
func (s *PlotService) CalculateLots(ctx context.Context, p *PlotParams) ([]*domain.LotGeometry, bool) {
	results := make([]*domain.LotGeometry, 0, len(p.Lots))
	anyError := false

	for i, lot := range p.Lots {
		id, name := lotDefaults(lot, i)
		res := s.traverse.CalculateLot(ctx, p.Forward,
			domain.Point{E: p.Ref.Easting, N: p.Ref.Northing}, lot.LinesText, id, name)
		if res.Status == domain.StatusError {
			anyError = true
		}
		results = append(results, res)
	}

	s.publishBatch(ctx, p, results)
	return results, anyError
}

// CollectForExport computes geometry for exportable lots. Lots with blank
// survey text are skipped entirely; failed lots are kept so exporters that
// can represent errors (KMZ markers) still see them.
func (s *PlotService) CollectForExport(ctx context.Context, p *PlotParams) []*domain.LotGeometry {
	var results []*domain.LotGeometry
	for i, lot := range p.Lots {
		if strings.TrimSpace(lot.LinesText) == "" {
			slog.Info("skipping lot with blank survey text", "lot", lot.Name)
			continue
		}
		id, name := lotDefaults(lot, i)
		results = append(results, s.traverse.CalculateLot(ctx, p.Forward,
			domain.Point{E: p.Ref.Easting, N: p.Ref.Northing}, lot.LinesText, id, name))
	}
	return results
}

func (s *PlotService) publishBatch(ctx context.Context, p *PlotParams, results []*domain.LotGeometry) {
	if s.events == nil {
		return
	}

	evt := &domain.PlotBatchEvent{
		Time:      time.Now().UTC(),
		TargetCRS: p.EPSG,
		Lots:      len(results),
	}
	if p.Ref != nil {
		evt.ReferencePoint = p.Ref.DisplayName
	}
	for _, r := range results {
		switch r.Status {
		case domain.StatusSuccess:
			evt.Succeeded++
		case domain.StatusError:
			evt.Failed++
		}
	}

	if err := s.events.PublishPlotBatch(ctx, evt); err != nil {
		slog.Warn("plot batch event publish failed", "error", err)
	}
}

func lotDefaults(lot LotInput, index int) (id, name string) {
	id, name = lot.ID, lot.Name
	if id == "" {
		id = fmt.Sprintf("missing_id_%d", index)
	}
	if name == "" {
		name = fmt.Sprintf("Unnamed Lot %d", index+1)
	}
	return id, name
}
