// Package monitoring aggregates run history into health metrics: how often
// consolidation runs fail, how much the input shrinks, and how much of the
// output still needs human review.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/nfc18/contactplus/internal/model"
	"github.com/nfc18/contactplus/internal/store"
)

// MetricsSnapshot is a point-in-time view of consolidation health.
type MetricsSnapshot struct {
	RunsTotal    int     `json:"runs_total"`
	RunsComplete int     `json:"runs_complete"`
	RunsFailed   int     `json:"runs_failed"`
	RunsOther    int     `json:"runs_other"`
	FailRate     float64 `json:"fail_rate"`

	// Totals over completed runs in the window.
	RecordsIn     int `json:"records_in"`
	ContactsOut   int `json:"contacts_out"`
	Deleted       int `json:"deleted"`
	ReviewFlagged int `json:"review_flagged"`

	// DedupRate is the fraction of input records absorbed into another
	// contact, 0 when every record became its own contact.
	DedupRate float64 `json:"dedup_rate"`
	// FlagRate is the fraction of output contacts flagged for review.
	FlagRate float64 `json:"flag_rate"`

	AvgDurSecs float64 `json:"avg_dur_secs"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from stored run history.
type Collector struct {
	store store.Store
}

// NewCollector creates a metrics collector over the given store.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect summarizes the runs created within the lookback window. A zero
// lookback covers all stored runs.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	runs, err := c.store.ListRuns(ctx, store.RunFilter{Limit: 10000})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	var cutoff time.Time
	if lookbackHours > 0 {
		cutoff = time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)
	}

	var totalDur time.Duration
	var durCount int
	for _, r := range runs {
		if !cutoff.IsZero() && r.CreatedAt.Before(cutoff) {
			continue
		}
		snap.RunsTotal++

		switch r.Status {
		case model.RunStatusComplete:
			snap.RunsComplete++
			totalDur += r.UpdatedAt.Sub(r.CreatedAt)
			durCount++
		case model.RunStatusFailed:
			snap.RunsFailed++
		default:
			snap.RunsOther++
		}

		if r.Result != nil {
			snap.RecordsIn += r.Result.RecordsIn
			snap.ContactsOut += r.Result.ContactsOut
			snap.Deleted += r.Result.Deleted
			snap.ReviewFlagged += r.Result.ReviewFlagged
		}
	}

	if finished := snap.RunsComplete + snap.RunsFailed; finished > 0 {
		snap.FailRate = float64(snap.RunsFailed) / float64(finished)
	}
	if snap.RecordsIn > 0 {
		snap.DedupRate = 1 - float64(snap.ContactsOut+snap.Deleted)/float64(snap.RecordsIn)
	}
	if snap.ContactsOut > 0 {
		snap.FlagRate = float64(snap.ReviewFlagged) / float64(snap.ContactsOut)
	}
	if durCount > 0 {
		snap.AvgDurSecs = totalDur.Seconds() / float64(durCount)
	}

	return snap, nil
}
