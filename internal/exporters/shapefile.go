package exporters

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	shp "github.com/jonas-p/go-shp"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
	"github.com/jmdelacruz/lotlocate/internal/pkg/metrics"
)

// Shapefile writes one ESRI shapefile layer per geometry class and zips
// the lot. Layer files are staged in a temp directory because the shp
// writer only targets the filesystem.
func Shapefile(in *Input) ([]byte, error) {
	dir, err := os.MkdirTemp("", "lotlocate-shp-*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := writeMonumentLayer(dir, in); err != nil {
		return nil, err
	}
	if err := writePOBLayer(dir, in); err != nil {
		return nil, err
	}
	if err := writeTieLineLayer(dir, in); err != nil {
		return nil, err
	}
	if err := writeParcelLayers(dir, in); err != nil {
		return nil, err
	}

	data, err := zipDir(dir)
	if err != nil {
		return nil, err
	}

	metrics.ExportsGenerated.WithLabelValues("shapefile").Inc()
	return data, nil
}

func writeMonumentLayer(dir string, in *Input) error {
	if in.Reference == nil {
		return nil
	}

	w, err := shp.Create(filepath.Join(dir, "main_reference_monument.shp"), shp.POINT)
	if err != nil {
		return fmt.Errorf("create monument layer: %w", err)
	}
	defer w.Close()

	w.SetFields([]shp.Field{
		shp.StringField("NAME", 80),
		shp.FloatField("EASTING", 19, 3),
		shp.FloatField("NORTHING", 19, 3),
	})

	w.Write(&shp.Point{X: in.Reference.Easting, Y: in.Reference.Northing})
	if err := writeAttrs(w, 0, in.Reference.DisplayName, in.Reference.Easting, in.Reference.Northing); err != nil {
		return fmt.Errorf("monument layer: %w", err)
	}

	return nil
}

// writeAttrs fills one dbf row, field by field, stopping at the first
// failed write so a truncated layer is reported instead of shipped.
func writeAttrs(w *shp.Writer, row int, values ...interface{}) error {
	for i, v := range values {
		if err := w.WriteAttribute(row, i, v); err != nil {
			return fmt.Errorf("write attribute row %d field %d: %w", row, i, err)
		}
	}
	return nil
}

func writePOBLayer(dir string, in *Input) error {
	w, err := shp.Create(filepath.Join(dir, "all_points_of_beginning.shp"), shp.POINT)
	if err != nil {
		return fmt.Errorf("create POB layer: %w", err)
	}
	defer w.Close()

	w.SetFields([]shp.Field{
		shp.StringField("LOT_NAME", 80),
		shp.FloatField("EASTING", 19, 3),
		shp.FloatField("NORTHING", 19, 3),
	})

	row := 0
	for _, lot := range in.Lots {
		pob := lot.Projected.POB
		if lot.Status != domain.StatusSuccess || pob == nil {
			continue
		}
		w.Write(&shp.Point{X: pob.E, Y: pob.N})
		if err := writeAttrs(w, row, lot.LotName, pob.E, pob.N); err != nil {
			return fmt.Errorf("POB layer: %w", err)
		}
		row++
	}

	return nil
}

func writeTieLineLayer(dir string, in *Input) error {
	w, err := shp.Create(filepath.Join(dir, "all_tie_lines.shp"), shp.POLYLINE)
	if err != nil {
		return fmt.Errorf("create tie line layer: %w", err)
	}
	defer w.Close()

	w.SetFields([]shp.Field{
		shp.StringField("LOT_NAME", 80),
		shp.FloatField("LENGTH_M", 19, 3),
	})

	row := 0
	for _, lot := range in.Lots {
		if lot.Status != domain.StatusSuccess || len(lot.Projected.TieLine) < 2 {
			continue
		}
		pts := make([]shp.Point, len(lot.Projected.TieLine))
		for i, p := range lot.Projected.TieLine {
			pts[i] = shp.Point{X: p.E, Y: p.N}
		}
		w.Write(shp.NewPolyLine([][]shp.Point{pts}))
		if err := writeAttrs(w, row, lot.LotName, perimeter(lot.Projected.TieLine)); err != nil {
			return fmt.Errorf("tie line layer: %w", err)
		}
		row++
	}

	return nil
}

// writeParcelLayers splits boundaries into two layers: valid closed rings
// become polygons, anything open or degenerate becomes a linestring so the
// surveyor can still inspect it.
func writeParcelLayers(dir string, in *Input) error {
	pw, err := shp.Create(filepath.Join(dir, "all_parcel_polygons.shp"), shp.POLYGON)
	if err != nil {
		return fmt.Errorf("create parcel polygon layer: %w", err)
	}
	defer pw.Close()

	lw, err := shp.Create(filepath.Join(dir, "all_parcel_linestrings.shp"), shp.POLYLINE)
	if err != nil {
		return fmt.Errorf("create parcel linestring layer: %w", err)
	}
	defer lw.Close()

	fields := []shp.Field{
		shp.StringField("LOT_NAME", 80),
		shp.FloatField("AREA_SQM", 19, 3),
		shp.FloatField("PERIM_M", 19, 3),
	}
	pw.SetFields(fields)
	lw.SetFields(fields)

	pRow, lRow := 0, 0
	for _, lot := range in.Lots {
		boundary := lot.Projected.ParcelBoundary
		if lot.Status != domain.StatusSuccess || len(boundary) < 2 {
			continue
		}

		pts := make([]shp.Point, len(boundary))
		for i, p := range boundary {
			pts[i] = shp.Point{X: p.E, Y: p.N}
		}

		if ringClosed(boundary) && lot.AreaSqm != nil {
			poly := (*shp.Polygon)(shp.NewPolyLine([][]shp.Point{pts}))
			pw.Write(poly)
			if err := writeAttrs(pw, pRow, lot.LotName, areaOrZero(lot.AreaSqm), perimeter(boundary)); err != nil {
				return fmt.Errorf("parcel polygon layer: %w", err)
			}
			pRow++
			continue
		}

		lw.Write(shp.NewPolyLine([][]shp.Point{pts}))
		if err := writeAttrs(lw, lRow, lot.LotName, 0.0, perimeter(boundary)); err != nil {
			return fmt.Errorf("parcel linestring layer: %w", err)
		}
		lRow++
	}

	return nil
}

func zipDir(dir string) ([]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read staging dir: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", e.Name(), err)
		}
		dst, err := zw.Create(e.Name())
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zip entry %s: %w", e.Name(), err)
		}
		if _, err := io.Copy(dst, f); err != nil {
			f.Close()
			return nil, fmt.Errorf("zip copy %s: %w", e.Name(), err)
		}
		f.Close()
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}

	return buf.Bytes(), nil
}
