package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jmdelacruz/lotlocate/internal/core/usecases"
	"github.com/jmdelacruz/lotlocate/internal/exporters"
)

type exportFormat struct {
	name        string
	suffix      string
	contentType string
	render      func(*exporters.Input) ([]byte, error)
}

var exportFormats = map[string]exportFormat{
	"shapefile": {
		name:        "shapefile",
		suffix:      "shapefiles.zip",
		contentType: "application/zip",
		render:      exporters.Shapefile,
	},
	"kmz": {
		name:        "kmz",
		suffix:      "survey.kmz",
		contentType: "application/vnd.google-earth.kmz",
		render:      exporters.KMZ,
	},
	"dxf": {
		name:        "dxf",
		suffix:      "survey.dxf",
		contentType: "application/dxf",
		render:      exporters.DXF,
	},
	"geojson": {
		name:        "geojson",
		suffix:      "survey.geojson",
		contentType: "application/geo+json",
		render:      exporters.GeoJSON,
	},
}

// ExportHandler streams a survey file download in the requested format.
// The body is the same as the calculate endpoint; lots with blank survey
// text are skipped rather than rejected.
func ExportHandler(deps *Dependencies, format string) fiber.Handler {
	f, ok := exportFormats[format]
	if !ok {
		panic("unknown export format: " + format)
	}

	return func(c *fiber.Ctx) error {
		var req usecases.PlotRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body: "+err.Error())
		}

		params, err := deps.Plots.Prepare(c.UserContext(), &req)
		if err != nil {
			return plotError(c, err)
		}
		if params.Ref == nil {
			return errBadRequest(c, fmt.Sprintf(
				"select a reference point and add lot data before exporting a %s", f.name))
		}

		lots := deps.Plots.CollectForExport(c.UserContext(), params)
		if len(lots) == 0 {
			return errBadRequest(c, fmt.Sprintf(
				"no lots with survey data to export as %s", f.name))
		}

		data, err := f.render(&exporters.Input{
			EPSG:            params.EPSG,
			Reference:       params.Ref,
			ReferenceLatLng: params.RefLatLng,
			Lots:            lots,
		})
		if err != nil {
			return errInternal(c, "export failed: "+err.Error())
		}

		base := SanitizeFilenameBase(params.Ref.DisplayName, "survey_export")
		filename := fmt.Sprintf("%s_epsg%s_multi_lot_%s", base, params.EPSG, f.suffix)

		c.Set(fiber.HeaderContentType, f.contentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
		return c.Send(data)
	}
}
