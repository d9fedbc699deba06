package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"narrationgen/pkg/db"
	"narrationgen/pkg/narration"
)

// Store defines the repository interface.
type Store interface {
	JobStore
	StateStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Jobs ---

// RecordOutcome implements narration.Recorder.
func (s *SQLiteStore) RecordOutcome(ctx context.Context, r *narration.Report, o narration.Outcome) error {
	var errText sql.NullString
	if o.Err != nil {
		errText = sql.NullString{String: o.Err.Error(), Valid: true}
	}

	query := `INSERT INTO jobs (id, run_id, video_path, base_name, output_dir, engine, lang, voice, output_path, status, error, duration_ms, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		uuid.NewString(), r.RunID, r.VideoPath, r.BaseName, r.OutputDir, r.Engine,
		o.Job.Language, o.Job.Voice, o.Job.OutputPath, string(o.Status), errText,
		o.Duration.Milliseconds(), o.Elapsed.Milliseconds(), time.Now().UTC(),
	)
	return err
}

const jobColumns = `id, run_id, video_path, base_name, output_dir, engine, lang, voice, output_path, status, error, duration_ms, elapsed_ms, created_at`

// ListJobs returns the most recent jobs, newest first. A limit <= 0 returns all rows.
func (s *SQLiteStore) ListJobs(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanJobs(rows)
}

// ListRunJobs returns the jobs of one run in execution order.
func (s *SQLiteStore) ListRunJobs(ctx context.Context, runID string) ([]JobRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	return scanJobs(rows)
}

func scanJobs(rows *sql.Rows) ([]JobRecord, error) {
	defer rows.Close()

	var out []JobRecord
	for rows.Next() {
		var j JobRecord
		var status string
		var videoPath, baseName, outputDir, engine, voice, outputPath, errText sql.NullString
		var durationMS, elapsedMS sql.NullInt64

		if err := rows.Scan(
			&j.ID, &j.RunID, &videoPath, &baseName, &outputDir, &engine,
			&j.Language, &voice, &outputPath, &status, &errText,
			&durationMS, &elapsedMS, &j.CreatedAt,
		); err != nil {
			return nil, err
		}

		j.VideoPath = videoPath.String
		j.BaseName = baseName.String
		j.OutputDir = outputDir.String
		j.Engine = engine.String
		j.Voice = voice.String
		j.OutputPath = outputPath.String
		j.Status = narration.Status(status)
		j.Error = errText.String
		j.Duration = time.Duration(durationMS.Int64) * time.Millisecond
		j.Elapsed = time.Duration(elapsedMS.Int64) * time.Millisecond
		out = append(out, j)
	}
	return out, rows.Err()
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now())
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}
