// Package api exposes the inference pipeline over HTTP: sample ingestion
// for hosts without a direct serial device, and read-only views of buffer
// state and recorded results.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/pulse.report/internal/db"
	"github.com/banshee-data/pulse.report/internal/engine"
	"github.com/banshee-data/pulse.report/internal/httputil"
	"github.com/banshee-data/pulse.report/internal/report"
	"github.com/banshee-data/pulse.report/internal/version"
)

type Server struct {
	engine    *engine.InferenceEngine
	db        *db.DB
	sessionID string
}

func NewServer(e *engine.InferenceEngine, database *db.DB, sessionID string) *Server {
	return &Server{
		engine:    e,
		db:        database,
		sessionID: sessionID,
	}
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Welcome to the Pulse Server!"))
}

func (s *Server) versionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/samples", s.pushSampleHandler)
	mux.HandleFunc("/api/results", s.listResultsHandler)
	mux.HandleFunc("/api/stats", s.bufferStatsHandler)
	mux.HandleFunc("/api/model", s.modelHandler)
	mux.HandleFunc("/api/report", s.reportHandler)
	mux.HandleFunc("/api/version", s.versionHandler)
	mux.HandleFunc("/", s.homeHandler)
	return mux
}

// SampleRequest is the ingestion payload. Timestamp defaults to the server
// receive time when omitted.
type SampleRequest struct {
	HR            float64            `json:"hr"`
	RRIntervalsMs []float64          `json:"rr_intervals_ms"`
	Timestamp     *time.Time         `json:"timestamp,omitempty"`
	Motion        map[string]float64 `json:"motion,omitempty"`
}

func (s *Server) pushSampleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req SampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid sample payload: %v", err))
		return
	}

	ts := time.Now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	// Push never fails; out-of-range samples are dropped with a warning
	// inside the engine. Accepted-for-processing either way.
	s.engine.Push(req.HR, req.RRIntervalsMs, ts, req.Motion)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) listResultsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = s.sessionID
	}
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	results, err := s.db.ListResults(sessionID, limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to retrieve results: %v", err))
		return
	}

	httputil.WriteJSONOK(w, results)
}

func (s *Server) bufferStatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.engine.BufferStats())
}

func (s *Server) modelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.engine.Model().Metadata())
}

// reportHandler renders the recorded timeline as HTML. This is a debugging
// view, not a UI surface.
func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	since := time.Now().Add(-time.Hour)
	if p := r.URL.Query().Get("since"); p != "" {
		if t, err := time.Parse(time.RFC3339, p); err == nil {
			since = t
		}
	}

	results, err := s.db.ResultsSince(since)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to retrieve results: %v", err))
		return
	}
	if len(results) == 0 {
		httputil.NotFound(w, "no results in the requested range")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderTimeline(w, results); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render report: %v", err))
	}
}
