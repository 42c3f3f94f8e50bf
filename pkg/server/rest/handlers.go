package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/table"
	"github.com/lintang-b-s/navigatorx-table/pkg/server"
	"github.com/lintang-b-s/navigatorx-table/pkg/server/rest/service"
	"github.com/lintang-b-s/navigatorx-table/pkg/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type TableService interface {
	Table(ctx context.Context, coords []datastructure.Coordinate, params table.Params) (*service.TableResult, error)
}

type TableHandler struct {
	svc      TableService
	profile  string
	metrics  *Metrics
	validate *validator.Validate
	trans    ut.Translator
}

func TableRouter(r *chi.Mux, svc TableService, profile string, m *Metrics) {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &TableHandler{
		svc:      svc,
		profile:  profile,
		metrics:  m,
		validate: validate,
		trans:    trans,
	}

	r.Group(func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			r.Post("/table", handler.Table)
		})
		r.Get("/table/v1/{profile}/{coordinates}", handler.TableOSRM)
	})
}

// TableRequest model info
//
//	@Description	request body untuk many-to-many table query
type TableRequest struct {
	Coordinates  []Coord `json:"coordinates" validate:"required,min=1,dive"`
	Sources      []int   `json:"sources,omitempty" validate:"omitempty,dive,gte=0"`
	Destinations []int   `json:"destinations,omitempty" validate:"omitempty,dive,gte=0"`
	Annotations  string  `json:"annotations,omitempty"`
	ScaleFactor  float64 `json:"scale_factor,omitempty" validate:"gte=0"`
}

// Coord model info
//
//	@Description	model untuk koordinat
type Coord struct {
	Lat float64 `json:"lat" validate:"lte=90,gte=-90"`
	Lon float64 `json:"lon" validate:"lte=180,gte=-180"`
}

func (s *TableRequest) Bind(r *http.Request) error {
	if len(s.Coordinates) == 0 {
		return errors.New("coordinates must not be empty")
	}
	return nil
}

// Waypoint model info
//
//	@Description	titik hasil snapping ke road network. location = [lon, lat]
type Waypoint struct {
	Location [2]float64 `json:"location"`
	Distance float64    `json:"distance"`
}

// TableResponse model info
//
//	@Description	response body table query. null artinya tidak ada rute
type TableResponse struct {
	Code         string       `json:"code"`
	QueryID      string       `json:"query_id"`
	Durations    [][]*float64 `json:"durations,omitempty"`
	Distances    [][]*float64 `json:"distances,omitempty"`
	Sources      []Waypoint   `json:"sources"`
	Destinations []Waypoint   `json:"destinations"`
}

func RenderTableResponse(res *service.TableResult) *TableResponse {
	return &TableResponse{
		Code:         "Ok",
		QueryID:      res.QueryID,
		Durations:    nullableRows(table.Rows2D(res.Matrix.Durations)),
		Distances:    nullableRows(table.Rows2D(res.Matrix.Distances)),
		Sources:      waypoints(res.Sources),
		Destinations: waypoints(res.Destinations),
	}
}

// nullableRows turns the unreachable sentinel into a JSON null.
func nullableRows(rows [][]float64) [][]*float64 {
	if rows == nil {
		return nil
	}
	out := make([][]*float64, len(rows))
	for i, row := range rows {
		out[i] = make([]*float64, len(row))
		for j := range row {
			if row[j] == table.Unreachable {
				continue
			}
			out[i][j] = &row[j]
		}
	}
	return out
}

func waypoints(phantoms []datastructure.PhantomNode) []Waypoint {
	out := make([]Waypoint, len(phantoms))
	for i, p := range phantoms {
		loc := p.Location
		if !p.Forward.IsValid() && !p.Reverse.IsValid() {
			loc = p.InputLocation
		}
		out[i] = Waypoint{
			Location: [2]float64{loc.Lon, loc.Lat},
			Distance: p.SnapDistance,
		}
	}
	return out
}

// Table
//
//	@Summary		many-to-many table query. durations (detik) dan/atau distances (meter) antar semua pasangan source x destination
//	@Description	many-to-many table query. durations (detik) dan/atau distances (meter) antar semua pasangan source x destination
//	@Tags			table
//	@Param			body	body	TableRequest	true	"request body table query"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/table [post]
//	@Success		200	{object}	TableResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
//	@Failure		503	{object}	ErrResponse
func (h *TableHandler) Table(w http.ResponseWriter, r *http.Request) {
	data := &TableRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := h.validate.Struct(*data); err != nil {
		render.Render(w, r, ErrValidation(err, translateError(err, h.trans)))
		return
	}

	annotations, err := table.ParseAnnotations(data.Annotations)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	coords := make([]datastructure.Coordinate, 0, len(data.Coordinates))
	for _, c := range data.Coordinates {
		coords = append(coords, datastructure.NewCoordinate(c.Lat, c.Lon))
	}

	h.serve(w, r, coords, table.Params{
		Sources:      data.Sources,
		Destinations: data.Destinations,
		Annotations:  annotations,
		ScaleFactor:  data.ScaleFactor,
	})
}

// TableOSRM
//
//	@Summary		table query gaya OSRM. coordinates = lon,lat;lon,lat atau polyline(...)
//	@Description	table query gaya OSRM. sources/destinations berupa index dipisah ';', annotations = duration,distance
//	@Tags			table
//	@Param			profile			path	string	true	"profile, misal driving"
//	@Param			coordinates		path	string	true	"lon,lat;lon,lat atau polyline(...)"
//	@Param			sources			query	string	false	"index source, misal 0;2"
//	@Param			destinations	query	string	false	"index destination"
//	@Param			annotations		query	string	false	"duration, distance atau duration,distance"
//	@Param			scale_factor	query	number	false	"pengali durations"
//	@Produce		application/json
//	@Router			/table/v1/{profile}/{coordinates} [get]
//	@Success		200	{object}	TableResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
//	@Failure		503	{object}	ErrResponse
func (h *TableHandler) TableOSRM(w http.ResponseWriter, r *http.Request) {
	if profile := chi.URLParam(r, "profile"); h.profile != "" && profile != h.profile {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("unknown profile %q", profile)))
		return
	}

	coords, err := parseCoordinates(chi.URLParam(r, "coordinates"))
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	q, err := osrmQuery(r.URL.RawQuery)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	params := table.Params{}
	if params.Sources, err = util.ParseIndexList(q.Get("sources")); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if params.Destinations, err = util.ParseIndexList(q.Get("destinations")); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if params.Annotations, err = table.ParseAnnotations(q.Get("annotations")); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if s := q.Get("scale_factor"); s != "" {
		if params.ScaleFactor, err = strconv.ParseFloat(s, 64); err != nil {
			render.Render(w, r, ErrInvalidRequest(fmt.Errorf("bad scale_factor: %w", err)))
			return
		}
	}

	h.serve(w, r, coords, params)
}

func (h *TableHandler) serve(w http.ResponseWriter, r *http.Request, coords []datastructure.Coordinate, params table.Params) {
	res, err := h.svc.Table(r.Context(), coords, params)
	if err != nil {
		render.Render(w, r, ErrTableRend(err))
		return
	}
	if h.metrics != nil {
		h.metrics.observeTable(res.Matrix.Rows, res.Matrix.Cols)
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderTableResponse(res))
}

// ErrResponse model info
//
//	@Description	model untuk error response
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	Code          string   `json:"code"`    // TooBig, NoRoute, InvalidRequest, ...
	Message       string   `json:"message"` // user-level message
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		Code:           server.ErrInvalidRequest.String(),
		Message:        err.Error(),
	}
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		Code:           server.ErrInvalidRequest.String(),
		Message:        "invalid request",
		ErrValidation:  vv,
	}
}

// ErrTableRend maps an engine error to its http status. Anything that is not
// a *server.Error is reported as an internal error without its text.
func ErrTableRend(err error) render.Renderer {
	var se *server.Error
	if !errors.As(err, &se) {
		return &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusInternalServerError,
			Code:           server.ErrInternalServerError.String(),
			Message:        "internal server error",
		}
	}

	status := http.StatusInternalServerError
	msg := se.Message()
	switch se.Code() {
	case server.ErrTooBig, server.ErrNoRoute, server.ErrInvalidRequest, server.ErrBadParamInput:
		status = http.StatusBadRequest
	case server.ErrNotFound:
		status = http.StatusNotFound
	case server.ErrIndexNotReady:
		status = http.StatusServiceUnavailable
	default:
		msg = "internal server error"
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		Code:           se.Code().String(),
		Message:        msg,
	}
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}
