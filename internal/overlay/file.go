// Package overlay applies human override decisions (keep, split, delete,
// merge) on top of the automatic clustering output. Decisions are
// authoritative for their targets and idempotent: re-applying the same
// decision set to the same automatic output yields the same final contacts.
package overlay

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/nfc18/contactplus/internal/model"
)

// DecisionFile is the on-disk decision format.
type DecisionFile struct {
	Decisions []model.Decision `yaml:"decisions"`
}

// Load reads a YAML decision file. An unreadable or unparseable file is an
// error at this boundary; individually malformed decisions are filtered with
// a warning and never fatal.
func Load(path string) ([]model.Decision, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "overlay: read decision file %s", path)
	}
	var f DecisionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "overlay: parse decision file %s", path)
	}
	return Filter(f.Decisions), nil
}

// Filter drops structurally invalid decisions, logging each. Unknown targets
// are not checked here; Apply resolves them against the actual run output.
func Filter(decisions []model.Decision) []model.Decision {
	out := make([]model.Decision, 0, len(decisions))
	for _, d := range decisions {
		switch {
		case d.Target == "":
			zap.L().Warn("overlay: decision without target skipped")
		case !d.Action.Valid():
			zap.L().Warn("overlay: unknown decision action skipped",
				zap.String("target", d.Target),
				zap.String("action", string(d.Action)),
			)
		case d.Action == model.DecisionSplit && len(d.Groups) == 0:
			zap.L().Warn("overlay: split decision without groups skipped",
				zap.String("target", d.Target),
			)
		case d.Action == model.DecisionMerge && d.MergeWith == "":
			zap.L().Warn("overlay: merge decision without merge_with skipped",
				zap.String("target", d.Target),
			)
		default:
			out = append(out, d)
		}
	}
	return out
}
