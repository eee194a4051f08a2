package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pulse.report/internal/db"
	"github.com/banshee-data/pulse.report/internal/engine"
	"github.com/banshee-data/pulse.report/internal/hrv"
)

func newTestServer(t *testing.T) (*Server, *engine.InferenceEngine, *db.DB, string) {
	t.Helper()

	e, err := engine.New(engine.DefaultConfig(), nil)
	require.NoError(t, err)

	database, err := db.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	session, err := database.StartSession("builtin-default", "0.1.0")
	require.NoError(t, err)

	return NewServer(e, database, session), e, database, session
}

func TestHome(t *testing.T) {
	s, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Pulse Server")
}

func TestPushSample(t *testing.T) {
	s, e, _, _ := newTestServer(t)

	body, err := json.Marshal(SampleRequest{
		HR:            72,
		RRIntervalsMs: []float64{850, 840, 830},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/samples", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, e.BufferStats().Count)
}

func TestPushSampleRejectsBadPayload(t *testing.T) {
	s, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/samples", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPushSampleMethodNotAllowed(t *testing.T) {
	s, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/samples", nil)
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// Out-of-range samples are accepted at the HTTP boundary and dropped inside
// the engine; the client cannot distinguish them, matching fire-and-forget
// push semantics.
func TestPushSampleOutOfRangeDropped(t *testing.T) {
	s, e, _, _ := newTestServer(t)

	body, _ := json.Marshal(SampleRequest{HR: 400, RRIntervalsMs: []float64{850}})
	req := httptest.NewRequest(http.MethodPost, "/api/samples", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 0, e.BufferStats().Count)
}

func TestBufferStats(t *testing.T) {
	s, e, _, _ := newTestServer(t)
	e.Push(72, []float64{850, 840}, time.Now(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats engine.BufferStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 2, stats.TotalRRCount)
}

func TestModelMetadata(t *testing.T) {
	s, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/model", nil)
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var md map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &md))
	assert.Equal(t, "builtin-default", md["model_id"])
	assert.Equal(t, float64(3), md["label_count"])
}

func TestVersion(t *testing.T) {
	s, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var v map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, "dev", v["version"])
}

func TestListResults(t *testing.T) {
	s, _, database, session := newTestServer(t)

	result := engine.EmotionResult{
		Timestamp:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Emotion:       "Calm",
		Confidence:    0.8,
		Probabilities: map[string]float64{"Amused": 0.1, "Calm": 0.8, "Stressed": 0.1},
		Features:      hrv.FeatureVector{"hr_mean": 70, "sdnn": 50, "rmssd": 40},
		ModelMetadata: map[string]interface{}{"model_id": "builtin-default", "version": "0.1.0"},
	}
	require.NoError(t, database.RecordResult(session, result))

	req := httptest.NewRequest(http.MethodGet, "/api/results", nil)
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var rows []db.ResultRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Calm", rows[0].Emotion)
	assert.Equal(t, session, rows[0].SessionID)
}

func TestReport(t *testing.T) {
	s, _, database, session := newTestServer(t)

	t.Run("empty range returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
		rec := httptest.NewRecorder()
		s.ServeMux().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("renders HTML when results exist", func(t *testing.T) {
		result := engine.EmotionResult{
			Timestamp:     time.Now(),
			Emotion:       "Calm",
			Confidence:    0.8,
			Probabilities: map[string]float64{"Calm": 0.8},
			Features:      hrv.FeatureVector{"hr_mean": 70, "sdnn": 50, "rmssd": 40},
			ModelMetadata: map[string]interface{}{"model_id": "builtin-default", "version": "0.1.0"},
		}
		require.NoError(t, database.RecordResult(session, result))

		req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
		rec := httptest.NewRecorder()
		s.ServeMux().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "hr_mean")
	})
}
