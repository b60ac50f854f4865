package exporters

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
	"github.com/jmdelacruz/lotlocate/internal/pkg/metrics"
)

// GeoJSON renders the batch as an indented FeatureCollection in WGS 84.
// Point order follows GeoJSON convention: [longitude, latitude].
func GeoJSON(in *Input) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	if in.Reference != nil && in.ReferenceLatLng != nil {
		f := geojson.NewFeature(orb.Point{in.ReferenceLatLng.Lng, in.ReferenceLatLng.Lat})
		f.Properties["type"] = "REF_MONUMENT"
		f.Properties["name"] = in.Reference.DisplayName
		f.Properties["easting"] = in.Reference.Easting
		f.Properties["northing"] = in.Reference.Northing
		f.Properties["epsg"] = in.EPSG
		fc.Append(f)
	}

	for _, lot := range in.Lots {
		if lot.Status != domain.StatusSuccess {
			continue
		}
		appendLotFeatures(fc, lot)
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal feature collection: %w", err)
	}

	metrics.ExportsGenerated.WithLabelValues("geojson").Inc()
	return data, nil
}

func appendLotFeatures(fc *geojson.FeatureCollection, lot *domain.LotGeometry) {
	if lot.Geographic.POB != nil {
		f := geojson.NewFeature(orb.Point{lot.Geographic.POB.Lng, lot.Geographic.POB.Lat})
		f.Properties["type"] = "POB"
		f.Properties["lot_name"] = lot.LotName
		fc.Append(f)
	}

	if tie := geographicRing(lot.Geographic.TieLine); len(tie) >= 2 {
		f := geojson.NewFeature(lineString(tie))
		f.Properties["type"] = "TIE_LINE"
		f.Properties["lot_name"] = lot.LotName
		fc.Append(f)
	}

	ring := geographicRing(lot.Geographic.ParcelBoundary)
	if len(ring) < 2 {
		return
	}

	if ringClosed(lot.Projected.ParcelBoundary) && lot.AreaSqm != nil {
		f := geojson.NewFeature(orb.Polygon{orb.Ring(lineString(ring))})
		f.Properties["type"] = "PARCEL_BOUNDARY"
		f.Properties["lot_name"] = lot.LotName
		f.Properties["area_sqm"] = *lot.AreaSqm
		if lot.Misclosure.Distance != nil {
			f.Properties["misclosure_m"] = *lot.Misclosure.Distance
		}
		fc.Append(f)
	} else {
		f := geojson.NewFeature(lineString(ring))
		f.Properties["type"] = "PARCEL_BOUNDARY"
		f.Properties["lot_name"] = lot.LotName
		f.Properties["open"] = true
		fc.Append(f)
	}
}

func lineString(pts []domain.LatLng) orb.LineString {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = orb.Point{p.Lng, p.Lat}
	}
	return ls
}
