// Package store persists consolidation runs, their canonical output, and the
// audit log of overlay decisions. Two backends implement the same interface:
// SQLite (default, single file) and Postgres.
package store

import (
	"context"

	"github.com/nfc18/contactplus/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the consolidation pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, sources []string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Phases
	CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error

	// Canonical output
	SaveContacts(ctx context.Context, runID string, contacts []model.CanonicalContact) error
	ListContacts(ctx context.Context, runID string) ([]model.CanonicalContact, error)

	// Audit log
	AppendAudit(ctx context.Context, entries []model.AuditEntry) error
	ListAudit(ctx context.Context, runID string) ([]model.AuditEntry, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
