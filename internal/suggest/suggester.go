// Package suggest decorates records with externally sourced name-correction
// insights before the deterministic merge runs. The service is optional:
// every failure mode (timeout, rate limit, unusable response) degrades to
// "no suggestion available" and the pipeline produces correct, if less
// corrected, output with the pass disabled entirely.
package suggest

import (
	"context"

	"github.com/nfc18/contactplus/internal/model"
)

// autoApplyConfidence is the minimum suggestion confidence at which an
// email-derived-name insight becomes safe to apply automatically.
const autoApplyConfidence = 0.90

// Suggestion is a reconstructed "First Last" value with the scorer's
// confidence.
type Suggestion struct {
	Name       string
	Confidence float64
}

// Suggester proposes a corrected display name for a record whose current
// name looks derived from an email address. A nil suggestion with nil error
// means the scorer had nothing usable to offer.
type Suggester interface {
	Suggest(ctx context.Context, rec *model.SourceRecord) (*Suggestion, error)
}

// Noop is a Suggester that never suggests anything.
type Noop struct{}

// Suggest implements Suggester.
func (Noop) Suggest(context.Context, *model.SourceRecord) (*Suggestion, error) {
	return nil, nil
}

// Decorate upgrades a record's email-derived-name insights with the
// suggestion: the suggested value is attached and, when the scorer's
// confidence clears the auto-apply bar, the insight is marked safe to apply.
// The record's fields themselves are never touched.
func Decorate(rec *model.SourceRecord, s *Suggestion) {
	if s == nil || s.Name == "" {
		return
	}
	for i := range rec.Insights {
		if rec.Insights[i].IssueType != model.IssueEmailDerivedName {
			continue
		}
		rec.Insights[i].SuggestedValue = s.Name
		if s.Confidence >= autoApplyConfidence {
			rec.Insights[i].AutoApplySafe = true
		}
		if s.Confidence < rec.Insights[i].Confidence {
			rec.Insights[i].Confidence = s.Confidence
		}
	}
}

// Wants reports whether a record would benefit from a suggestion: it carries
// an email-derived-name insight without a suggested value yet.
func Wants(rec *model.SourceRecord) bool {
	for _, ins := range rec.Insights {
		if ins.IssueType == model.IssueEmailDerivedName && ins.SuggestedValue == "" {
			return true
		}
	}
	return false
}
