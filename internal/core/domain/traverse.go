package domain

import "time"

// Point is a projected coordinate pair (easting, northing) in meters.
type Point struct {
	E float64 `json:"e"`
	N float64 `json:"n"`
}

// LatLng is a geographic WGS 84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ReferencePoint is a named survey monument with projected coordinates.
type ReferencePoint struct {
	DisplayName string  `json:"display_name"`
	Easting     float64 `json:"eastings"`
	Northing    float64 `json:"northings"`
}

// Status classifies the outcome of a single lot calculation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusNoData  Status = "nodata"
)

// ProjectedCoords holds a lot's geometry in the target projected CRS.
// ParcelBoundary starts at the POB; after closing, its last point repeats
// the first.
type ProjectedCoords struct {
	POB            *Point  `json:"pob_en,omitempty"`
	TieLine        []Point `json:"tie_line_ens,omitempty"`
	ParcelBoundary []Point `json:"parcel_boundary_ens,omitempty"`
}

// GeographicCoords mirrors ProjectedCoords in WGS 84. Every slice is paired
// by index with its projected counterpart; a nil entry marks a point whose
// transformation failed, so the slices never silently diverge in length.
type GeographicCoords struct {
	POB            *LatLng   `json:"pob_latlng,omitempty"`
	TieLine        []*LatLng `json:"tie_line_latlngs,omitempty"`
	ParcelBoundary []*LatLng `json:"parcel_polygon_latlngs,omitempty"`
}

// Misclosure is the gap between the last computed boundary point and the POB,
// measured before the ring is force-closed. Nil fields mean the traverse had
// fewer than two boundary points.
type Misclosure struct {
	Distance   *float64 `json:"distance_raw,omitempty"`
	AzimuthDeg *float64 `json:"azimuth_raw_deg,omitempty"`
}

// LotGeometry is the full outcome of one lot calculation. It is assembled
// once and never mutated afterwards; exporters and response formatters treat
// it as read-only.
type LotGeometry struct {
	LotID      string           `json:"lot_id"`
	LotName    string           `json:"lot_name"`
	Status     Status           `json:"status"`
	Message    string           `json:"message,omitempty"`
	Projected  ProjectedCoords  `json:"projected"`
	Geographic GeographicCoords `json:"latlon"`
	Misclosure Misclosure       `json:"misclosure"`
	AreaSqm    *float64         `json:"area_sqm_raw,omitempty"`
}

// PlotBatchEvent summarises one calculation batch for realtime subscribers.
type PlotBatchEvent struct {
	Time           time.Time `json:"time"`
	ReferencePoint string    `json:"reference_point"`
	TargetCRS      string    `json:"target_crs"`
	Lots           int       `json:"lots"`
	Succeeded      int       `json:"succeeded"`
	Failed         int       `json:"failed"`
}
