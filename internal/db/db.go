// Package db persists inference results and session metadata to sqlite.
// The core pipeline has no persistence surface of its own; this is the host
// collaborator that records what the engine emits.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/pulse.report/internal/engine"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the sqlite database at path and ensures the
// schema exists. Schema changes beyond the baseline are managed through
// MigrateUp.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id        TEXT PRIMARY KEY,
			started_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			model_id          TEXT,
			model_version     TEXT
		);
		CREATE TABLE IF NOT EXISTS emotion_results (
			result_id         TEXT PRIMARY KEY,
			session_id        TEXT,
			timestamp         TIMESTAMP,
			emotion           TEXT,
			confidence        DOUBLE,
			probabilities     TEXT,
			features          TEXT,
			model_id          TEXT,
			model_version     TEXT,
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{sqlDB}, nil
}

// ResultRow is one persisted inference result.
type ResultRow struct {
	ResultID      string             `json:"result_id"`
	SessionID     string             `json:"session_id"`
	Timestamp     time.Time          `json:"timestamp"`
	Emotion       string             `json:"emotion"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Features      map[string]float64 `json:"features"`
	ModelID       string             `json:"model_id"`
	ModelVersion  string             `json:"model_version"`
}

// StartSession registers a new session and returns its generated ID.
func (db *DB) StartSession(modelID, modelVersion string) (string, error) {
	sessionID := uuid.New().String()
	_, err := db.Exec(
		`INSERT INTO sessions (session_id, model_id, model_version) VALUES (?, ?, ?)`,
		sessionID, modelID, modelVersion,
	)
	if err != nil {
		return "", fmt.Errorf("failed to start session: %w", err)
	}
	return sessionID, nil
}

// RecordResult persists one engine emission under the given session.
func (db *DB) RecordResult(sessionID string, result engine.EmotionResult) error {
	probs, err := json.Marshal(result.Probabilities)
	if err != nil {
		return fmt.Errorf("failed to marshal probabilities: %w", err)
	}
	features, err := json.Marshal(result.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	modelID, _ := result.ModelMetadata["model_id"].(string)
	modelVersion, _ := result.ModelMetadata["version"].(string)

	_, err = db.Exec(
		`INSERT INTO emotion_results
		 (result_id, session_id, timestamp, emotion, confidence, probabilities, features, model_id, model_version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), sessionID, result.Timestamp.UTC(), result.Emotion,
		result.Confidence, string(probs), string(features), modelID, modelVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}
	return nil
}

// ListResults returns the most recent results for a session, newest first,
// capped at limit.
func (db *DB) ListResults(sessionID string, limit int) ([]ResultRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(
		`SELECT result_id, session_id, timestamp, emotion, confidence, probabilities, features, model_id, model_version
		 FROM emotion_results WHERE session_id = ?
		 ORDER BY timestamp DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// ResultsSince returns all results with a timestamp at or after since,
// oldest first, across sessions.
func (db *DB) ResultsSince(since time.Time) ([]ResultRow, error) {
	rows, err := db.Query(
		`SELECT result_id, session_id, timestamp, emotion, confidence, probabilities, features, model_id, model_version
		 FROM emotion_results WHERE timestamp >= ?
		 ORDER BY timestamp ASC`,
		since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]ResultRow, error) {
	var results []ResultRow
	for rows.Next() {
		var r ResultRow
		var probs, features string
		if err := rows.Scan(&r.ResultID, &r.SessionID, &r.Timestamp, &r.Emotion,
			&r.Confidence, &probs, &features, &r.ModelID, &r.ModelVersion); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(probs), &r.Probabilities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal probabilities: %w", err)
		}
		if err := json.Unmarshal([]byte(features), &r.Features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal features: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// EmotionCounts returns how many results carry each emotion label for a
// session.
func (db *DB) EmotionCounts(sessionID string) (map[string]int, error) {
	rows, err := db.Query(
		`SELECT emotion, COUNT(*) FROM emotion_results WHERE session_id = ? GROUP BY emotion`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query emotion counts: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var emotion string
		var n int
		if err := rows.Scan(&emotion, &n); err != nil {
			return nil, fmt.Errorf("failed to scan emotion count: %w", err)
		}
		counts[emotion] = n
	}
	return counts, rows.Err()
}
