package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/heatwire/internal/export"
	"github.com/san-kum/heatwire/internal/heat"
	"github.com/san-kum/heatwire/internal/metrics"
	"github.com/san-kum/heatwire/internal/sim"
	"github.com/san-kum/heatwire/internal/storage"
)

func setup(t *testing.T) (*Server, string) {
	t.Helper()
	st := storage.New(t.TempDir())
	require.NoError(t, st.Init())

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	p := heat.Params{Length: 1.25, Points: 5, Dt: 0.01, Alpha: 0.01, HotEnd: 100, Steps: 10}
	result, err := sim.New(p, sim.WithObservers(rec.ForRun("served", p.Dx()))).Run(context.Background())
	require.NoError(t, err)
	result.Name = "served"

	id, err := st.Save(result)
	require.NoError(t, err)
	return New(st, reg, WithFrameSize(320, 360)), id
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestListRuns(t *testing.T) {
	srv, id := setup(t)

	w := get(t, srv, "/runs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var runs []storage.RunMetadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, "served", runs[0].Name)
}

func TestGetRun(t *testing.T) {
	srv, id := setup(t)

	w := get(t, srv, "/runs/"+id)
	require.Equal(t, http.StatusOK, w.Code)

	var meta storage.RunMetadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, 5, meta.Params.Points)
	assert.Equal(t, 10, meta.Steps)

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/runs/heat_0_missing").Code)
}

func TestGetHistory(t *testing.T) {
	srv, id := setup(t)

	w := get(t, srv, "/runs/"+id+"/history")
	require.Equal(t, http.StatusOK, w.Code)

	var doc export.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Len(t, doc.History, 11)
	assert.Len(t, doc.Times, 11)
	assert.Equal(t, 100.0, doc.History[10][0])
	assert.Len(t, doc.Positions, 5)

	w = get(t, srv, "/runs/"+id+"/history?format=csv")
	require.Equal(t, http.StatusOK, w.Code)
	history, times, err := export.ReadCSV(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 11, history.Len())
	assert.Len(t, times, 11)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/runs/"+id+"/history?format=xml").Code)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/runs/nope/history").Code)
}

func TestGetFrame(t *testing.T) {
	srv, id := setup(t)

	w := get(t, srv, "/runs/"+id+"/frames/3.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 360, img.Bounds().Dy())

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/runs/"+id+"/frames/11.png").Code)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/runs/"+id+"/frames/-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/runs/"+id+"/frames/abc.png").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := setup(t)

	w := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `heatwire_steps_total{run="served"} 10`), body)
	assert.Contains(t, body, "heatwire_max_temperature")
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	st := storage.New(t.TempDir())
	srv := New(st, prometheus.NewRegistry(), WithLogger(zap.New(core)))

	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	w := httptest.NewRecorder()
	srv.writeJSON(w, req, map[string]float64{"heat_content": math.Inf(1)})

	entries := logs.FilterMessage("write response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/runs", entries[0].ContextMap()["path"])
}
