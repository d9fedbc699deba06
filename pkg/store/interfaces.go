package store

import (
	"context"
	"time"

	"narrationgen/pkg/narration"
)

// JobRecord is one persisted synthesis attempt.
type JobRecord struct {
	ID         string
	RunID      string
	VideoPath  string
	BaseName   string
	OutputDir  string
	Engine     string
	Language   string
	Voice      string
	OutputPath string
	Status     narration.Status
	Error      string
	Duration   time.Duration
	Elapsed    time.Duration
	CreatedAt  time.Time
}

// JobStore handles the synthesis job history.
type JobStore interface {
	RecordOutcome(ctx context.Context, report *narration.Report, outcome narration.Outcome) error
	ListJobs(ctx context.Context, limit int) ([]JobRecord, error)
	ListRunJobs(ctx context.Context, runID string) ([]JobRecord, error)
}

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}
