// Package history persists one summary record per pipeline run, so degraded
// runs and anomaly counts stay inspectable after the process exits.
package history

import (
	"context"
	"time"
)

// Record is the persisted summary of one pipeline run.
type Record struct {
	RunID        string
	InputPath    string
	StartedAt    time.Time
	FinishedAt   time.Time
	Rows         int
	Anomalies    int
	ZCount       int
	IsoCount     int
	ResCount     int
	MissingSkips int

	// Degraded holds one "detector: reason" entry per detector that could
	// not run.
	Degraded []string
}

// Store is the run-history persistence interface.
type Store interface {
	SaveRun(ctx context.Context, rec *Record) error
	ListRuns(ctx context.Context, limit int) ([]*Record, error)
	Ping(ctx context.Context) error
	Close() error
}
