package exporters

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yofu/dxf"
	dxfcolor "github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
	"github.com/jmdelacruz/lotlocate/internal/pkg/metrics"
)

const labelHeight = 2.5

// DXF renders the batch as a CAD drawing in projected coordinates, one
// layer per geometry class. The drawing library only writes to disk, so
// the file is staged in a temp directory and read back.
func DXF(in *Input) ([]byte, error) {
	d := dxf.NewDrawing()

	layers := []struct {
		name  string
		color dxfcolor.ColorNumber
	}{
		{"REF_MONUMENT", dxfcolor.Red},
		{"POB", dxfcolor.Green},
		{"TIE_LINES", dxfcolor.Magenta},
		{"PARCEL_BOUNDARIES", dxfcolor.Blue},
		{"LOT_NAMES", dxfcolor.Yellow},
		{"LABELS", dxfcolor.White},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.color, table.LT_CONTINUOUS, false); err != nil {
			return nil, fmt.Errorf("add layer %s: %w", l.name, err)
		}
	}

	if in.Reference != nil {
		d.ChangeLayer("REF_MONUMENT")
		d.Point(in.Reference.Easting, in.Reference.Northing, 0)
		d.ChangeLayer("LABELS")
		d.Text(in.Reference.DisplayName,
			in.Reference.Easting+labelHeight, in.Reference.Northing+labelHeight, 0, labelHeight)
	}

	for _, lot := range in.Lots {
		if lot.Status != domain.StatusSuccess {
			continue
		}
		drawLot(d, lot)
	}

	dir, err := os.MkdirTemp("", "lotlocate-dxf-*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "plot.dxf")
	if err := d.SaveAs(path); err != nil {
		return nil, fmt.Errorf("write DXF: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read DXF back: %w", err)
	}

	metrics.ExportsGenerated.WithLabelValues("dxf").Inc()
	return data, nil
}

func drawLot(d *drawing.Drawing, lot *domain.LotGeometry) {
	if pob := lot.Projected.POB; pob != nil {
		d.ChangeLayer("POB")
		d.Point(pob.E, pob.N, 0)

		d.ChangeLayer("LOT_NAMES")
		d.Text(lot.LotName, pob.E+labelHeight, pob.N+labelHeight, 0, labelHeight)
	}

	if tie := lot.Projected.TieLine; len(tie) >= 2 {
		d.ChangeLayer("TIE_LINES")
		d.Line(tie[0].E, tie[0].N, 0, tie[1].E, tie[1].N, 0)
	}

	boundary := lot.Projected.ParcelBoundary
	if len(boundary) < 2 {
		return
	}

	closed := ringClosed(boundary)
	vertices := boundary
	if closed {
		// LwPolyline's closed flag replaces the repeated last vertex.
		vertices = boundary[:len(boundary)-1]
	}

	verts := make([][]float64, len(vertices))
	for i, p := range vertices {
		verts[i] = []float64{p.E, p.N, 0}
	}

	d.ChangeLayer("PARCEL_BOUNDARIES")
	d.LwPolyline(closed, verts...)

	if lot.AreaSqm != nil && lot.Projected.POB != nil {
		d.ChangeLayer("LABELS")
		d.Text(domain.FormatAreaSqm(lot.AreaSqm),
			lot.Projected.POB.E+labelHeight, lot.Projected.POB.N-2*labelHeight, 0, labelHeight)
	}
}
