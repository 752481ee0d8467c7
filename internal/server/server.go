// Package server exposes stored runs over HTTP: metadata, history, rendered
// frames and the Prometheus registry.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/san-kum/heatwire/internal/export"
	"github.com/san-kum/heatwire/internal/render"
	"github.com/san-kum/heatwire/internal/storage"
)

type Server struct {
	store    *storage.Store
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	width    int
	height   int
	router   chi.Router
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithFrameSize sets the size of rendered frame PNGs.
func WithFrameSize(width, height int) Option {
	return func(s *Server) {
		s.width = width
		s.height = height
	}
}

// New builds the router. A nil gatherer serves the default registry.
func New(store *storage.Store, gatherer prometheus.Gatherer, opts ...Option) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		store:    store,
		gatherer: gatherer,
		logger:   zap.NewNop(),
		width:    600,
		height:   700,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/runs", s.listRuns)
	r.Get("/runs/{id}", s.getRun)
	r.Get("/runs/{id}/history", s.getHistory)
	r.Get("/runs/{id}/frames/{step}", s.getFrame)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.List()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, r, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	meta, err := s.store.Load(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, r, meta)
}

// getHistory serves the run as a JSON document, or as the stored CSV when
// ?format=csv is given.
func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := s.store.LoadResult(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		if err := export.WriteJSON(w, export.NewDocument(result)); err != nil {
			s.logger.Warn("write history", zap.String("run", id), zap.Error(err))
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		if err := export.WriteCSV(w, result.History, result.Times); err != nil {
			s.logger.Warn("write history", zap.String("run", id), zap.Error(err))
		}
	default:
		http.Error(w, fmt.Sprintf("unknown format %q", r.URL.Query().Get("format")), http.StatusBadRequest)
	}
}

// getFrame renders snapshot {step} of a run. The step may carry a .png suffix.
func (s *Server) getFrame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	k, err := strconv.Atoi(strings.TrimSuffix(chi.URLParam(r, "step"), ".png"))
	if err != nil {
		http.Error(w, "step must be an integer", http.StatusBadRequest)
		return
	}
	meta, err := s.store.Load(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	history, _, err := s.store.LoadHistory(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if k < 0 || k >= history.Len() {
		http.Error(w, fmt.Sprintf("step %d out of range [0, %d)", k, history.Len()), http.StatusNotFound)
		return
	}

	renderer := render.New(meta.Params, history, s.width, s.height)
	w.Header().Set("Content-Type", "image/png")
	if err := renderer.WritePNG(w, k, history.At(k)); err != nil {
		s.logger.Error("render frame", zap.String("run", id), zap.Int("step", k), zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrRunNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}
