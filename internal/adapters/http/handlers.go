package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
	"github.com/jmdelacruz/lotlocate/internal/core/usecases"
)

// ReferencePointsHandler returns the monument list with offset pagination.
func ReferencePointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pts, err := deps.Refs.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 500)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 2000 {
			limit = 500
		}

		total := len(pts)
		if offset >= total {
			pts = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			pts = pts[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: pts, Pagination: pg})
	}
}

// misclosureResponse carries both display strings and raw numbers so map
// clients can label without reformatting.
type misclosureResponse struct {
	Distance      string   `json:"distance"`
	Bearing       string   `json:"bearing"`
	DistanceRawM  *float64 `json:"distance_raw_m,omitempty"`
	AzimuthRawDeg *float64 `json:"azimuth_raw_deg,omitempty"`
}

type areaResponse struct {
	SquareMeters string  `json:"square_meters"`
	Hectares     string  `json:"hectares"`
	RawSqm       float64 `json:"raw_sqm"`
}

type lotResponse struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Status         domain.Status       `json:"status"`
	Message        string              `json:"message,omitempty"`
	POB            *domain.LatLng      `json:"pob_latlng,omitempty"`
	TieLine        []*domain.LatLng    `json:"tie_line_latlngs,omitempty"`
	ParcelBoundary []*domain.LatLng    `json:"parcel_polygon_latlngs,omitempty"`
	Misclosure     *misclosureResponse `json:"misclosure,omitempty"`
	Area           *areaResponse       `json:"area,omitempty"`
}

type calculateResponse struct {
	Status          string                 `json:"status"`
	TargetCRS       string                 `json:"target_crs"`
	ReferencePoint  *domain.ReferencePoint `json:"reference_point,omitempty"`
	ReferenceLatLng *domain.LatLng         `json:"reference_latlng,omitempty"`
	Lots            []lotResponse          `json:"lots"`
}

// CalculatePlotsHandler runs the traverse for a batch of lots and returns
// plottable geographic geometry plus formatted closure figures. Request
// preconditions fail the whole batch with 400 before any lot is touched;
// individual lot failures are reported in place.
func CalculatePlotsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req usecases.PlotRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body: "+err.Error())
		}

		params, err := deps.Plots.Prepare(c.UserContext(), &req)
		if err != nil {
			return plotError(c, err)
		}

		resp := calculateResponse{
			Status:          "success",
			TargetCRS:       params.EPSG,
			ReferencePoint:  params.Ref,
			ReferenceLatLng: params.RefLatLng,
			Lots:            []lotResponse{},
		}

		if params.Ref != nil {
			results, anyError := deps.Plots.CalculateLots(c.UserContext(), params)
			if anyError {
				resp.Status = "success_with_errors"
			}
			for _, r := range results {
				resp.Lots = append(resp.Lots, toLotResponse(r))
			}
		}

		return c.JSON(resp)
	}
}

func toLotResponse(r *domain.LotGeometry) lotResponse {
	lot := lotResponse{
		ID:             r.LotID,
		Name:           r.LotName,
		Status:         r.Status,
		Message:        r.Message,
		POB:            r.Geographic.POB,
		TieLine:        r.Geographic.TieLine,
		ParcelBoundary: r.Geographic.ParcelBoundary,
	}

	if r.Status != domain.StatusSuccess {
		return lot
	}

	lot.Misclosure = &misclosureResponse{
		Distance:      domain.FormatDistance(r.Misclosure.Distance),
		Bearing:       domain.FormatAzimuth(r.Misclosure.AzimuthDeg),
		DistanceRawM:  r.Misclosure.Distance,
		AzimuthRawDeg: r.Misclosure.AzimuthDeg,
	}

	if r.AreaSqm != nil {
		lot.Area = &areaResponse{
			SquareMeters: domain.FormatAreaSqm(r.AreaSqm),
			Hectares:     domain.FormatAreaHectares(r.AreaSqm),
			RawSqm:       *r.AreaSqm,
		}
	}

	return lot
}

// plotError translates usecase error types into HTTP responses.
func plotError(c *fiber.Ctx, err error) error {
	var input *usecases.InputError
	if errors.As(err, &input) {
		return errBadRequest(c, input.Msg)
	}
	var refData *usecases.RefDataError
	if errors.As(err, &refData) {
		return errInternal(c, refData.Error())
	}
	return errInternal(c, err.Error())
}
