package overlay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfc18/contactplus/internal/model"
)

func TestLoad_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
decisions:
  - target: abc123
    action: keep
  - target: def456
    action: split
    groups:
      - ["phone:0", "phone:1"]
      - ["gmail:0"]
    reason: two people behind one email
  - target: aaa111
    action: delete
  - target: bbb222
    action: merge
    merge_with: ccc333
`), 0o644))

	decisions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, decisions, 4)
	assert.Equal(t, model.DecisionSplit, decisions[1].Action)
	assert.Equal(t, [][]string{{"phone:0", "phone:1"}, {"gmail:0"}}, decisions[1].Groups)
	assert.Equal(t, "ccc333", decisions[3].MergeWith)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decisions: [:::"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestFilter_DropsInvalidKeepsRest(t *testing.T) {
	decisions := []model.Decision{
		{Target: "ok1", Action: model.DecisionKeep},
		{Target: "", Action: model.DecisionKeep},                   // no target
		{Target: "bad", Action: model.DecisionAction("promote")},   // unknown action
		{Target: "bad2", Action: model.DecisionSplit},              // split without groups
		{Target: "bad3", Action: model.DecisionMerge},              // merge without counterpart
		{Target: "ok2", Action: model.DecisionDelete, Reason: "x"}, // fine
	}

	out := Filter(decisions)
	require.Len(t, out, 2)
	assert.Equal(t, "ok1", out[0].Target)
	assert.Equal(t, "ok2", out[1].Target)
}
