package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/table"
	"github.com/lintang-b-s/navigatorx-table/pkg/server"
	"github.com/lintang-b-s/navigatorx-table/pkg/server/rest/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

type fakeTableService struct {
	err        error
	gotCoords  []datastructure.Coordinate
	gotParams  table.Params
	calledWith int
}

func (f *fakeTableService) Table(ctx context.Context, coords []datastructure.Coordinate, params table.Params) (*service.TableResult, error) {
	f.calledWith++
	f.gotCoords = coords
	f.gotParams = params
	if f.err != nil {
		return nil, f.err
	}
	phantoms := make([]datastructure.PhantomNode, len(coords))
	for i, c := range coords {
		phantoms[i] = datastructure.PhantomNode{Location: c, InputLocation: c, SnapDistance: 1}
	}
	// 2x2, [0][1] has no route
	return &service.TableResult{
		QueryID: "q",
		Matrix: &table.Matrix{
			Rows:         2,
			Cols:         2,
			Durations:    mat.NewDense(2, 2, []float64{0, table.Unreachable, 7, 0}),
			Sources:      []int{0, 1},
			Destinations: []int{0, 1},
		},
		Sources:      phantoms[:2],
		Destinations: phantoms[:2],
	}, nil
}

func newTestRouter(svc TableService) *chi.Mux {
	r := chi.NewRouter()
	m := NewMetrics(prometheus.NewRegistry())
	r.Use(PromeHttpMiddleware(m))
	TableRouter(r, svc, "driving", m)
	return r
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestTablePost(t *testing.T) {
	svc := &fakeTableService{}
	r := newTestRouter(svc)

	body := `{"coordinates":[{"lat":-7.7,"lon":110.3},{"lat":-7.8,"lon":110.4}],"sources":[0,1],"annotations":"duration","scale_factor":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/table", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[TableResponse](t, rec)
	assert.Equal(t, "Ok", resp.Code)
	require.Len(t, resp.Durations, 2)
	assert.Nil(t, resp.Durations[0][1])
	require.NotNil(t, resp.Durations[1][0])
	assert.Equal(t, 7.0, *resp.Durations[1][0])
	assert.Nil(t, resp.Distances)
	assert.Equal(t, [2]float64{110.3, -7.7}, resp.Sources[0].Location)

	assert.Equal(t, []int{0, 1}, svc.gotParams.Sources)
	assert.Nil(t, svc.gotParams.Destinations)
	assert.Equal(t, 2.0, svc.gotParams.ScaleFactor)
	assert.Equal(t, table.AnnotationDuration, svc.gotParams.Annotations)
}

func TestTablePostRejected(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty coordinates", `{"coordinates":[]}`},
		{"latitude out of range", `{"coordinates":[{"lat":91,"lon":0}]}`},
		{"negative source", `{"coordinates":[{"lat":1,"lon":1}],"sources":[-1]}`},
		{"unknown annotation", `{"coordinates":[{"lat":1,"lon":1}],"annotations":"speed"}`},
		{"not json", `{`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := &fakeTableService{}
			r := newTestRouter(svc)
			req := httptest.NewRequest(http.MethodPost, "/api/table", bytes.NewBufferString(c.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "InvalidRequest", decode[ErrResponse](t, rec).Code)
			assert.Zero(t, svc.calledWith)
		})
	}
}

func TestTableErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{server.NewErrorf(server.ErrTooBig, "too big"), http.StatusBadRequest, "TooBig"},
		{server.NewErrorf(server.ErrNoRoute, "Could not find a matching segment for coordinate 0"), http.StatusBadRequest, "NoRoute"},
		{server.NewErrorf(server.ErrInvalidRequest, "bad"), http.StatusBadRequest, "InvalidRequest"},
		{server.NewErrorf(server.ErrIndexNotReady, "not ready"), http.StatusServiceUnavailable, "IndexNotReady"},
		{errors.New("boom"), http.StatusInternalServerError, "InternalError"},
	}
	for _, c := range cases {
		t.Run(c.code, func(t *testing.T) {
			r := newTestRouter(&fakeTableService{err: c.err})
			req := httptest.NewRequest(http.MethodGet, "/table/v1/driving/110.3,-7.7;110.4,-7.8", nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, c.status, rec.Code)
			resp := decode[ErrResponse](t, rec)
			assert.Equal(t, c.code, resp.Code)
			assert.NotContains(t, resp.Message, "boom")
		})
	}
}

func TestTableOSRMGet(t *testing.T) {
	t.Run("plain coordinates and query params", func(t *testing.T) {
		svc := &fakeTableService{}
		r := newTestRouter(svc)
		req := httptest.NewRequest(http.MethodGet,
			"/table/v1/driving/110.3,-7.7;110.4,-7.8;110.5,-7.9?sources=0;2&annotations=duration,distance&scale_factor=1.5", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Len(t, svc.gotCoords, 3)
		assert.Equal(t, datastructure.NewCoordinate(-7.8, 110.4), svc.gotCoords[1])
		assert.Equal(t, []int{0, 2}, svc.gotParams.Sources)
		assert.Nil(t, svc.gotParams.Destinations)
		assert.True(t, svc.gotParams.Annotations.Has(table.AnnotationDistance))
		assert.Equal(t, 1.5, svc.gotParams.ScaleFactor)
	})

	t.Run("polyline", func(t *testing.T) {
		svc := &fakeTableService{}
		r := newTestRouter(svc)
		// (38.5,-120.2) (40.7,-120.95) (43.252,-126.453)
		req := httptest.NewRequest(http.MethodGet, "/table/v1/driving/polyline(_p~iF~ps%7CU_ulLnnqC_mqNvxq%60@)", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Len(t, svc.gotCoords, 3)
		assert.InDelta(t, 38.5, svc.gotCoords[0].Lat, 1e-6)
		assert.InDelta(t, -120.2, svc.gotCoords[0].Lon, 1e-6)
		assert.InDelta(t, 43.252, svc.gotCoords[2].Lat, 1e-6)
	})

	bad := map[string]string{
		"wrong profile":    "/table/v1/cycling/110.3,-7.7",
		"bad coordinate":   "/table/v1/driving/110.3",
		"out of range":     "/table/v1/driving/200,10",
		"bad sources":      "/table/v1/driving/110.3,-7.7?sources=a",
		"bad scale factor": "/table/v1/driving/110.3,-7.7?scale_factor=x",
	}
	for name, url := range bad {
		t.Run(name, func(t *testing.T) {
			svc := &fakeTableService{}
			r := newTestRouter(svc)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, svc.calledWith)
		})
	}
}
