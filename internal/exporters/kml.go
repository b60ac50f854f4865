package exporters

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image/color"

	kml "github.com/twpayne/go-kml/v2"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
	"github.com/jmdelacruz/lotlocate/internal/pkg/metrics"
)

const (
	iconMonument = "http://maps.google.com/mapfiles/kml/paddle/red-stars.png"
	iconPOB      = "http://maps.google.com/mapfiles/kml/paddle/grn-circle.png"
	iconVertex   = "http://maps.google.com/mapfiles/kml/paddle/wht-blank.png"
	iconError    = "http://maps.google.com/mapfiles/kml/paddle/red-circle.png"
)

// KMZ renders the batch as a Google Earth document: one folder per lot
// with its POB, tie line, vertices and boundary, plus the shared
// reference monument. Failed lots get an error marker at the monument so
// their messages surface in the viewer instead of vanishing.
func KMZ(in *Input) ([]byte, error) {
	var elements []kml.Element

	elements = append(elements,
		kml.Name("Survey Plot"),
		kml.SharedStyle("monument", kml.IconStyle(kml.Icon(kml.Href(iconMonument)))),
		kml.SharedStyle("pob", kml.IconStyle(kml.Icon(kml.Href(iconPOB)))),
		kml.SharedStyle("vertex", kml.IconStyle(kml.Scale(0.6), kml.Icon(kml.Href(iconVertex)))),
		kml.SharedStyle("failed", kml.IconStyle(kml.Icon(kml.Href(iconError)))),
		kml.SharedStyle("tieline", kml.LineStyle(
			kml.Color(color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}), kml.Width(2))),
		kml.SharedStyle("boundary",
			kml.LineStyle(kml.Color(color.RGBA{R: 0x00, G: 0x55, B: 0xff, A: 0xff}), kml.Width(3)),
			kml.PolyStyle(kml.Color(color.RGBA{R: 0x00, G: 0x55, B: 0xff, A: 0x55}))),
	)

	if in.Reference != nil && in.ReferenceLatLng != nil {
		elements = append(elements, kml.Placemark(
			kml.Name(in.Reference.DisplayName),
			kml.Description(fmt.Sprintf("Reference monument<br/>E %.3f N %.3f (EPSG:%s)",
				in.Reference.Easting, in.Reference.Northing, in.EPSG)),
			kml.StyleURL("#monument"),
			kml.Point(kml.Coordinates(coord(*in.ReferenceLatLng))),
		))
	}

	for _, lot := range in.Lots {
		elements = append(elements, lotFolder(in, lot))
	}

	doc := kml.KML(kml.Document(elements...))

	var kmlBuf bytes.Buffer
	if err := doc.WriteIndent(&kmlBuf, "", "  "); err != nil {
		return nil, fmt.Errorf("render KML: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entry, err := zw.Create("doc.kml")
	if err != nil {
		return nil, fmt.Errorf("create doc.kml entry: %w", err)
	}
	if _, err := entry.Write(kmlBuf.Bytes()); err != nil {
		return nil, fmt.Errorf("write doc.kml: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize KMZ: %w", err)
	}

	metrics.ExportsGenerated.WithLabelValues("kmz").Inc()
	return buf.Bytes(), nil
}

func lotFolder(in *Input, lot *domain.LotGeometry) kml.Element {
	if lot.Status != domain.StatusSuccess {
		marker := []kml.Element{
			kml.Name(lot.LotName + " (failed)"),
			kml.Description(lot.Message),
			kml.StyleURL("#failed"),
		}
		if in.ReferenceLatLng != nil {
			marker = append(marker, kml.Point(kml.Coordinates(coord(*in.ReferenceLatLng))))
		}
		return kml.Folder(kml.Name(lot.LotName), kml.Placemark(marker...))
	}

	var children []kml.Element
	children = append(children, kml.Name(lot.LotName))

	if lot.Geographic.POB != nil {
		children = append(children, kml.Placemark(
			kml.Name(lot.LotName+" POB"),
			kml.Description(pobDescription(lot)),
			kml.StyleURL("#pob"),
			kml.Point(kml.Coordinates(coord(*lot.Geographic.POB))),
		))
	}

	if tie := geographicRing(lot.Geographic.TieLine); len(tie) >= 2 {
		children = append(children, kml.Placemark(
			kml.Name(lot.LotName+" tie line"),
			kml.StyleURL("#tieline"),
			kml.LineString(kml.Tessellate(true), kml.Coordinates(coords(tie)...)),
		))
	}

	ring := geographicRing(lot.Geographic.ParcelBoundary)
	for i, v := range ring {
		// Last vertex of a closed ring repeats the first.
		if i == len(ring)-1 && ringClosed(lot.Projected.ParcelBoundary) {
			break
		}
		children = append(children, kml.Placemark(
			kml.Name(fmt.Sprintf("%s corner %d", lot.LotName, i+1)),
			kml.StyleURL("#vertex"),
			kml.Point(kml.Coordinates(coord(v))),
		))
	}

	if len(ring) >= 2 {
		if ringClosed(lot.Projected.ParcelBoundary) && lot.AreaSqm != nil {
			children = append(children, kml.Placemark(
				kml.Name(lot.LotName+" boundary"),
				kml.Description(boundaryDescription(lot)),
				kml.StyleURL("#boundary"),
				kml.Polygon(kml.OuterBoundaryIs(kml.LinearRing(
					kml.Tessellate(true), kml.Coordinates(coords(ring)...)))),
			))
		} else {
			children = append(children, kml.Placemark(
				kml.Name(lot.LotName+" boundary (open)"),
				kml.StyleURL("#boundary"),
				kml.LineString(kml.Tessellate(true), kml.Coordinates(coords(ring)...)),
			))
		}
	}

	return kml.Folder(children...)
}

func pobDescription(lot *domain.LotGeometry) string {
	pob := lot.Projected.POB
	if pob == nil {
		return "Point of beginning"
	}
	return fmt.Sprintf("Point of beginning<br/>E %.3f N %.3f", pob.E, pob.N)
}

func boundaryDescription(lot *domain.LotGeometry) string {
	return fmt.Sprintf("Area: %s (%s)<br/>Misclosure: %s %s",
		domain.FormatAreaSqm(lot.AreaSqm),
		domain.FormatAreaHectares(lot.AreaSqm),
		domain.FormatDistance(lot.Misclosure.Distance),
		domain.FormatAzimuth(lot.Misclosure.AzimuthDeg),
	)
}

func coord(p domain.LatLng) kml.Coordinate {
	return kml.Coordinate{Lon: p.Lng, Lat: p.Lat}
}

func coords(pts []domain.LatLng) []kml.Coordinate {
	out := make([]kml.Coordinate, len(pts))
	for i, p := range pts {
		out[i] = coord(p)
	}
	return out
}
