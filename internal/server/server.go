// Package server exposes the playground over HTTP: a single page plus a
// small JSON API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"mlp-playground/internal/apperr"
	"mlp-playground/internal/dataset"
	"mlp-playground/internal/model"
	"mlp-playground/internal/persist"
	"mlp-playground/internal/playground"
	"mlp-playground/internal/store"
	"mlp-playground/internal/target"
	"mlp-playground/internal/viz"
)

const maxBodyBytes = 32 << 20

// Server routes requests to a Playground. Charts is the sink the
// playground's Sync writes into.
type Server struct {
	pg         *playground.Playground
	charts     *viz.Memory
	datasetDir string
	mux        *http.ServeMux
}

// New builds the handler. datasetDir may be empty.
func New(pg *playground.Playground, charts *viz.Memory, datasetDir string) *Server {
	s := &Server{pg: pg, charts: charts, datasetDir: datasetDir, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/targets", s.handleTargets)
	s.mux.HandleFunc("GET /api/activations", s.handleActivations)
	s.mux.HandleFunc("POST /api/train", s.handleTrain)
	s.mux.HandleFunc("GET /api/weights", s.handleExport)
	s.mux.HandleFunc("PUT /api/weights", s.handleImport)
	s.mux.HandleFunc("GET /api/charts/loss", s.handleLossChart)
	s.mux.HandleFunc("GET /api/charts/surface", s.handleSurfaceChart)
	s.mux.HandleFunc("GET /api/runs", s.handleRuns)
	s.mux.HandleFunc("POST /api/runs/{id}/load", s.handleLoadRun)
	s.mux.HandleFunc("GET /api/datasets", s.handleDatasets)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := viz.Page{Live: true}
	for _, k := range target.Kinds() {
		page.Targets = append(page.Targets, string(k))
	}
	for _, a := range model.Activations() {
		page.Activations = append(page.Activations, a.String())
	}
	var buf bytes.Buffer
	if err := viz.RenderPage(&buf, page); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, target.Kinds())
}

func (s *Server) handleActivations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Activations())
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var params playground.Params
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&params); err != nil {
		writeError(w, fmt.Errorf("%w: decode train request: %v", apperr.ErrInput, err))
		return
	}
	out, err := s.pg.Train(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.pg.Save()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", persist.DefaultFileName))
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, fmt.Errorf("%w: read artifact: %v", apperr.ErrInput, err))
		return
	}
	kind := target.ParseKind(r.URL.Query().Get("target"))
	if err := s.pg.Load(data, kind); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (s *Server) handleLossChart(w http.ResponseWriter, r *http.Request) {
	loss, ok := s.charts.Loss()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, viz.LossChart(loss))
}

func (s *Server) handleSurfaceChart(w http.ResponseWriter, r *http.Request) {
	series, ok := s.charts.Surfaces()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, viz.SurfacesChart(series))
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, fmt.Errorf("%w: limit %q is not a number", apperr.ErrInput, v))
			return
		}
		limit = n
	}
	runs, err := s.pg.Runs(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleLoadRun(w http.ResponseWriter, r *http.Request) {
	var kind target.Kind
	if v := r.URL.Query().Get("target"); v != "" {
		kind = target.ParseKind(v)
	}
	run, err := s.pg.LoadRun(r.Context(), r.PathValue("id"), kind)
	if err != nil {
		writeError(w, err)
		return
	}
	run.Weights = model.Weights{}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	if s.datasetDir == "" {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	files, err := dataset.Discover(s.datasetDir)
	if err != nil {
		writeError(w, err)
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, files)
}

// StatusFor maps an error to the HTTP status the API reports it with.
func StatusFor(err error) int {
	if errors.Is(err, store.ErrRunNotFound) {
		return http.StatusNotFound
	}
	switch apperr.Kind(err) {
	case "input":
		return http.StatusBadRequest
	case "state":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	log.Printf("request failed kind=%s status=%d err=%v", apperr.Kind(err), status, err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
