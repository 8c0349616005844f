package model

import "time"

// RunStatus represents the current state of a consolidation run.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusAnnotating  RunStatus = "annotating"
	RunStatusClustering  RunStatus = "clustering"
	RunStatusMerging     RunStatus = "merging"
	RunStatusReconciling RunStatus = "reconciling"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// Run represents a single consolidation run over a set of sources.
type Run struct {
	ID        string     `json:"id"`
	Sources   []string   `json:"sources"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	RecordsIn     int           `json:"records_in"`
	Clusters      int           `json:"clusters"`
	ContactsOut   int           `json:"contacts_out"`
	Deleted       int           `json:"deleted"`
	ReviewFlagged int           `json:"review_flagged"`
	Phases        []PhaseResult `json:"phases"`
	Error         string        `json:"error,omitempty"`
}

// RunPhase represents a phase within a run.
type RunPhase struct {
	ID        string       `json:"id"`
	RunID     string       `json:"run_id"`
	Name      string       `json:"name"`
	Status    PhaseStatus  `json:"status"`
	Result    *PhaseResult `json:"result,omitempty"`
	StartedAt time.Time    `json:"started_at"`
}

// PhaseStatus represents the current state of a pipeline phase.
type PhaseStatus string

const (
	PhaseStatusRunning  PhaseStatus = "running"
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// PhaseResult holds the outcome of a pipeline phase.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
