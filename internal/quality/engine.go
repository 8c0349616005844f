// Package quality scores individual contact records for likely data-entry
// defects. The engine only annotates: it never modifies a record. Automatic
// mutation is restricted to the merge resolver's deterministic rules and to
// insights explicitly marked safe to auto-apply.
package quality

import (
	"go.uber.org/zap"

	"github.com/nfc18/contactplus/internal/model"
)

// rule inspects one record and returns zero or more insights. Rules are
// independent and additive; several may fire on the same record.
type rule func(rec *model.SourceRecord) []model.QualityInsight

// Engine runs the detection rules over records.
type Engine struct {
	rules []rule
}

// NewEngine creates an Engine with the full rule set.
func NewEngine() *Engine {
	return &Engine{
		rules: []rule{
			detectEmailDerivedName,
			detectNonPersonalEmails,
			detectBusinessName,
			detectEmbeddedIdentifier,
		},
	}
}

// Inspect returns all insights for a record without mutating it.
func (e *Engine) Inspect(rec *model.SourceRecord) []model.QualityInsight {
	var insights []model.QualityInsight
	for _, r := range e.rules {
		insights = append(insights, r(rec)...)
	}
	if len(insights) > 0 {
		zap.L().Debug("quality: insights detected",
			zap.String("record", rec.Ref().String()),
			zap.Int("count", len(insights)),
		)
	}
	return insights
}
