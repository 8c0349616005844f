// Package pipeline orchestrates a consolidation run: annotate records with
// quality insights, cluster them across sources, merge each cluster into a
// canonical contact, reconcile human decisions, and report. The output
// guarantee is that every input record ends up in the provenance of exactly
// one contact or one audit-logged deletion, even under partial failures.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nfc18/contactplus/internal/cluster"
	"github.com/nfc18/contactplus/internal/config"
	"github.com/nfc18/contactplus/internal/merge"
	"github.com/nfc18/contactplus/internal/model"
	"github.com/nfc18/contactplus/internal/overlay"
	"github.com/nfc18/contactplus/internal/quality"
	"github.com/nfc18/contactplus/internal/store"
	"github.com/nfc18/contactplus/internal/suggest"
)

// Pipeline runs the consolidation phases over loaded source records.
type Pipeline struct {
	cfg       *config.Config
	store     store.Store
	quality   *quality.Engine
	suggester suggest.Suggester
	resolver  *merge.Resolver
}

// New creates a Pipeline. A nil suggester disables the suggestion pass.
func New(cfg *config.Config, st store.Store, suggester suggest.Suggester) *Pipeline {
	if suggester == nil {
		suggester = suggest.Noop{}
	}
	return &Pipeline{
		cfg:       cfg,
		store:     st,
		quality:   quality.NewEngine(),
		suggester: suggester,
		resolver: merge.NewResolver(
			merge.NewSourcePriority(cfg.Merge.SourcePriority),
			cfg.Merge.DefaultRegion,
			cfg.Merge.PhotoCeilingBytes,
		),
	}
}

// RunOutcome is the full result of one consolidation run.
type RunOutcome struct {
	RunID    string
	Contacts []model.CanonicalContact
	States   map[string]string
	Audit    []model.AuditEntry
	Report   *Report
	Phases   []model.PhaseResult
}

// Run executes the full consolidation for the given records and decisions.
func (p *Pipeline) Run(ctx context.Context, records []model.SourceRecord, sources []string, decisions []model.Decision) (*RunOutcome, error) {
	log := zap.L().With(zap.Int("records", len(records)), zap.Int("sources", len(sources)))
	log.Info("pipeline: starting consolidation")

	run, err := p.store.CreateRun(ctx, sources)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	outcome := &RunOutcome{RunID: run.ID}

	setStatus := func(status model.RunStatus) {
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}

	var phasesMu sync.Mutex
	trackPhase := func(name string, fn func() (*model.PhaseResult, error)) error {
		phase, phaseErr := p.store.CreatePhase(ctx, run.ID, name)
		if phaseErr != nil {
			log.Warn("pipeline: failed to create phase", zap.String("phase", name), zap.Error(phaseErr))
		}

		start := time.Now()
		phaseResult, fnErr := fn()
		duration := time.Since(start).Milliseconds()

		if phaseResult == nil {
			phaseResult = &model.PhaseResult{}
		}
		phaseResult.Name = name
		phaseResult.Duration = duration

		if fnErr != nil {
			phaseResult.Status = model.PhaseStatusFailed
			phaseResult.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else if phaseResult.Status == "" {
			phaseResult.Status = model.PhaseStatusComplete
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		}

		if phase != nil {
			_ = p.store.CompletePhase(ctx, phase.ID, phaseResult)
		}
		phasesMu.Lock()
		outcome.Phases = append(outcome.Phases, *phaseResult)
		phasesMu.Unlock()
		return fnErr
	}

	// ===== Phase 1: Annotate =====
	setStatus(model.RunStatusAnnotating)
	_ = trackPhase("1_annotate", func() (*model.PhaseResult, error) {
		suggested := p.annotate(ctx, records)
		return &model.PhaseResult{
			Metadata: map[string]any{
				"records":     len(records),
				"suggestions": suggested,
			},
		}, nil
	})

	// ===== Phase 2: Cluster =====
	setStatus(model.RunStatusClustering)
	var res cluster.Result
	_ = trackPhase("2_cluster", func() (*model.PhaseResult, error) {
		res = cluster.Resolve(records, p.cfg.Merge.DefaultRegion)
		flagUnidentifiable(records, res.ZeroKey)
		return &model.PhaseResult{
			Metadata: map[string]any{
				"clusters": len(res.Clusters),
				"zero_key": len(res.ZeroKey),
			},
		}, nil
	})

	// ===== Phase 3: Merge =====
	setStatus(model.RunStatusMerging)
	byRef := indexRecords(records)
	contacts := make([]model.CanonicalContact, len(res.Clusters))
	_ = trackPhase("3_merge", func() (*model.PhaseResult, error) {
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(p.mergeLimit())
		for i, c := range res.Clusters {
			g.Go(func() error {
				contacts[i] = p.resolver.Resolve(c, byRef)
				return nil
			})
		}
		_ = g.Wait()
		return &model.PhaseResult{
			Metadata: map[string]any{
				"contacts": len(contacts),
			},
		}, nil
	})

	// ===== Phase 4: Reconcile decisions =====
	setStatus(model.RunStatusReconciling)
	var overlayOut overlay.Outcome
	_ = trackPhase("4_reconcile", func() (*model.PhaseResult, error) {
		if len(decisions) == 0 {
			overlayOut = overlay.Apply(run.ID, contacts, byRef, nil, p.resolver)
			return &model.PhaseResult{
				Status:   model.PhaseStatusSkipped,
				Metadata: map[string]any{"reason": "no decisions"},
			}, nil
		}
		overlayOut = overlay.Apply(run.ID, contacts, byRef, decisions, p.resolver)
		return &model.PhaseResult{
			Metadata: map[string]any{
				"applied": overlayOut.Applied,
				"skipped": overlayOut.Skipped,
				"deleted": len(overlayOut.Audit),
			},
		}, nil
	})
	outcome.Contacts = overlayOut.Contacts
	outcome.States = overlayOut.States
	outcome.Audit = overlayOut.Audit

	// ===== Phase 5: Report =====
	_ = trackPhase("5_report", func() (*model.PhaseResult, error) {
		outcome.Report = BuildReport(run.ID, outcome.Contacts)
		return &model.PhaseResult{
			Metadata: map[string]any{
				"issue_groups": len(outcome.Report.Groups),
			},
		}, nil
	})

	// Persist the canonical set and the audit trail.
	if err := p.store.SaveContacts(ctx, run.ID, outcome.Contacts); err != nil {
		log.Warn("pipeline: failed to save contacts", zap.Error(err))
	}
	if err := p.store.AppendAudit(ctx, outcome.Audit); err != nil {
		log.Warn("pipeline: failed to append audit entries", zap.Error(err))
	}

	result := &model.RunResult{
		RecordsIn:     len(records),
		Clusters:      len(res.Clusters),
		ContactsOut:   len(outcome.Contacts),
		Deleted:       countDeleted(outcome.States),
		ReviewFlagged: countReviewFlagged(outcome.Contacts),
		Phases:        outcome.Phases,
	}
	if saveErr := p.store.UpdateRunResult(ctx, run.ID, result); saveErr != nil {
		log.Warn("pipeline: failed to save run result", zap.Error(saveErr))
	}

	log.Info("pipeline: consolidation complete",
		zap.String("run_id", run.ID),
		zap.Int("clusters", len(res.Clusters)),
		zap.Int("contacts", len(outcome.Contacts)),
		zap.Int("review_flagged", result.ReviewFlagged),
	)

	return outcome, nil
}

// annotate runs the quality engine over every record and, where enabled,
// decorates email-derived names with external suggestions. Records are
// independent, so the pass fans out; each worker touches only its own record.
// Returns the number of suggestions attached.
func (p *Pipeline) annotate(ctx context.Context, records []model.SourceRecord) int {
	limit := p.cfg.Batch.MaxConcurrentRecords
	if limit <= 0 {
		limit = 8
	}

	var suggested int
	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range records {
		g.Go(func() error {
			rec := &records[i]
			rec.Insights = append(rec.Insights, p.quality.Inspect(rec)...)

			if !suggest.Wants(rec) {
				return nil
			}
			s, err := p.suggester.Suggest(gCtx, rec)
			if err != nil {
				// A slow or failing scorer never fails the run.
				zap.L().Debug("pipeline: suggestion unavailable",
					zap.String("record", rec.Ref().String()),
					zap.Error(err),
				)
				return nil
			}
			if s != nil {
				suggest.Decorate(rec, s)
				mu.Lock()
				suggested++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return suggested
}

func (p *Pipeline) mergeLimit() int {
	if p.cfg.Batch.MaxConcurrentMerges > 0 {
		return p.cfg.Batch.MaxConcurrentMerges
	}
	return 8
}

// flagUnidentifiable marks zero-key records for review before the merge so
// the flag lands on the resulting singleton contact.
func flagUnidentifiable(records []model.SourceRecord, zeroKey []int) {
	for _, idx := range zeroKey {
		records[idx].Insights = append(records[idx].Insights, model.QualityInsight{
			IssueType:  model.IssueUnidentifiable,
			Confidence: 1,
			Reasoning:  "record has no name, email, or phone usable as an identity key",
		})
	}
}

func indexRecords(records []model.SourceRecord) map[model.RecordRef]*model.SourceRecord {
	byRef := make(map[model.RecordRef]*model.SourceRecord, len(records))
	for i := range records {
		byRef[records[i].Ref()] = &records[i]
	}
	return byRef
}

func countDeleted(states map[string]string) int {
	n := 0
	for _, s := range states {
		if s == overlay.StateDeleted {
			n++
		}
	}
	return n
}

func countReviewFlagged(contacts []model.CanonicalContact) int {
	n := 0
	for _, c := range contacts {
		if c.Flagged(model.IssueUnidentifiable) || c.Flagged(model.IssueAmbiguousIdentity) {
			n++
		}
	}
	return n
}
