package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/jmdelacruz/lotlocate/internal/adapters/http"
	"github.com/jmdelacruz/lotlocate/internal/core/domain"
	"github.com/jmdelacruz/lotlocate/internal/core/ports"
	"github.com/jmdelacruz/lotlocate/internal/core/usecases"
)

// ---- Mocks ----

type mockRefRepo struct {
	listFn func(ctx context.Context) ([]domain.ReferencePoint, error)
}

func (m *mockRefRepo) List(ctx context.Context) ([]domain.ReferencePoint, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockProvider struct{}

func (m *mockProvider) GetTransformers(epsg string) (ports.Transform, ports.Transform, error) {
	identity := func(x, y float64) (float64, float64, error) { return x, y, nil }
	return identity, identity, nil
}

func monuments() []domain.ReferencePoint {
	return []domain.ReferencePoint{
		{DisplayName: "ANTIPOLO - BLLM #1", Easting: 500000, Northing: 1600000},
		{DisplayName: "TAYTAY - BLLM #2", Easting: 510000, Northing: 1590000},
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	repo := &mockRefRepo{listFn: func(ctx context.Context) ([]domain.ReferencePoint, error) {
		return monuments(), nil
	}}
	refs := usecases.NewReferenceService(repo, nil)
	plots := usecases.NewPlotService(refs, usecases.NewTraverseService(), &mockProvider{}, nil, "25393")

	app := fiber.New()
	handler.SetupRoutes(app, &handler.Dependencies{Plots: plots, Refs: refs})
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) ([]byte, int) {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return out, resp.StatusCode
}

// ---- Handlers ----

func TestHealthHandler(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestReferencePointsHandler(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/reference-points", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var out struct {
		Data       []domain.ReferencePoint `json:"data"`
		Pagination handler.Pagination      `json:"pagination"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Data) != 2 || out.Pagination.Total != 2 {
		t.Errorf("data = %d items, total = %d", len(out.Data), out.Pagination.Total)
	}
	if out.Data[0].DisplayName != "ANTIPOLO - BLLM #1" {
		t.Errorf("first point = %q", out.Data[0].DisplayName)
	}
}

func TestReferencePointsPagination(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/reference-points?offset=1&limit=1", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var out struct {
		Data []domain.ReferencePoint `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Data) != 1 || out.Data[0].DisplayName != "TAYTAY - BLLM #2" {
		t.Errorf("page = %+v", out.Data)
	}
	if resp.Header.Get("Link") == "" {
		t.Error("missing Link header")
	}
}

const squareLot = "N 45D 00′ E;141.42\nN 45D 00′ E;100\nS 45D 00′ E;100\nS 45D 00′ W;100\nN 45D 00′ W;100"

func TestCalculatePlots(t *testing.T) {
	app := newTestApp(t)

	body, status := postJSON(t, app, "/v1/plots/calculate", map[string]interface{}{
		"reference_point": "ANTIPOLO - BLLM #1",
		"lots": []map[string]string{
			{"id": "a", "name": "Lot 1", "lines_text": squareLot},
		},
	})
	if status != 200 {
		t.Fatalf("status = %d: %s", status, body)
	}

	var out struct {
		Status          string            `json:"status"`
		TargetCRS       string            `json:"target_crs"`
		ReferenceLatLng *domain.LatLng    `json:"reference_latlng"`
		Lots            []json.RawMessage `json:"lots"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Status != "success" {
		t.Errorf("status = %q", out.Status)
	}
	if out.TargetCRS != "25393" {
		t.Errorf("target_crs = %q, want default", out.TargetCRS)
	}
	if out.ReferenceLatLng == nil {
		t.Error("missing reference marker latlng")
	}
	if len(out.Lots) != 1 {
		t.Fatalf("lots = %d", len(out.Lots))
	}

	var lot struct {
		Status     string `json:"status"`
		Misclosure struct {
			Distance string `json:"distance"`
			Bearing  string `json:"bearing"`
		} `json:"misclosure"`
		Area struct {
			SquareMeters string `json:"square_meters"`
			Hectares     string `json:"hectares"`
		} `json:"area"`
	}
	if err := json.Unmarshal(out.Lots[0], &lot); err != nil {
		t.Fatalf("unmarshal lot: %v", err)
	}
	if lot.Status != "success" {
		t.Errorf("lot status = %q", lot.Status)
	}
	if !strings.HasSuffix(lot.Misclosure.Distance, "m") {
		t.Errorf("misclosure distance = %q", lot.Misclosure.Distance)
	}
	if !strings.Contains(lot.Area.SquareMeters, "sqm") || !strings.Contains(lot.Area.Hectares, "ha") {
		t.Errorf("area = %+v", lot.Area)
	}
}

func TestCalculatePlotsWithErrors(t *testing.T) {
	app := newTestApp(t)

	body, status := postJSON(t, app, "/v1/plots/calculate", map[string]interface{}{
		"reference_point": "ANTIPOLO - BLLM #1",
		"lots": []map[string]string{
			{"name": "Good", "lines_text": squareLot},
			{"name": "Bad", "lines_text": "nonsense"},
		},
	})
	if status != 200 {
		t.Fatalf("status = %d: %s", status, body)
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Status != "success_with_errors" {
		t.Errorf("batch status = %q", out.Status)
	}
}

func TestCalculatePlotsPreconditions(t *testing.T) {
	app := newTestApp(t)

	// Lots without a reference point.
	body, status := postJSON(t, app, "/v1/plots/calculate", map[string]interface{}{
		"lots": []map[string]string{{"name": "Lot 1", "lines_text": squareLot}},
	})
	if status != 400 {
		t.Errorf("no ref point: status = %d: %s", status, body)
	}

	// Unknown reference point.
	body, status = postJSON(t, app, "/v1/plots/calculate", map[string]interface{}{
		"reference_point": "NOWHERE - BLLM #9",
		"lots":            []map[string]string{{"name": "Lot 1", "lines_text": squareLot}},
	})
	if status != 400 {
		t.Errorf("unknown ref: status = %d: %s", status, body)
	}
}

func TestExportGeoJSON(t *testing.T) {
	app := newTestApp(t)

	req := map[string]interface{}{
		"reference_point": "ANTIPOLO - BLLM #1",
		"lots": []map[string]string{
			{"name": "Lot 1", "lines_text": squareLot},
		},
	}
	data, _ := json.Marshal(req)
	httpReq := httptest.NewRequest("POST", "/v1/export/geojson", bytes.NewReader(data))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(httpReq, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}

	cd := resp.Header.Get("Content-Disposition")
	if !strings.Contains(cd, "attachment") || !strings.Contains(cd, "ANTIPOLO_epsg25393_multi_lot_survey.geojson") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("FeatureCollection")) {
		t.Error("body is not GeoJSON")
	}
}

func TestExportRefusesEmptyBatch(t *testing.T) {
	app := newTestApp(t)

	// No reference point and no lots.
	body, status := postJSON(t, app, "/v1/export/kmz", map[string]interface{}{})
	if status != 400 {
		t.Errorf("status = %d: %s", status, body)
	}

	// Reference point but only blank lots.
	body, status = postJSON(t, app, "/v1/export/dxf", map[string]interface{}{
		"reference_point": "ANTIPOLO - BLLM #1",
		"lots":            []map[string]string{{"name": "Blank", "lines_text": "  "}},
	})
	if status != 400 {
		t.Errorf("blank lots: status = %d: %s", status, body)
	}
}

func TestSanitizeFilenameBase(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"ANTIPOLO - BLLM #1", "ANTIPOLO"},
		{"Quezon City (District 2) - MON #4", "QuezonCityDistrict2"},
		{"#!? - x", "fallback"},
		{"", "fallback"},
		{strings.Repeat("A", 40) + " - x", strings.Repeat("A", 30)},
	}
	for _, tc := range cases {
		if got := handler.SanitizeFilenameBase(tc.in, "fallback"); got != tc.want {
			t.Errorf("SanitizeFilenameBase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
