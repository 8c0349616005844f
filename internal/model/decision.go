package model

// DecisionAction is a human override applied on top of automatic clustering.
type DecisionAction string

const (
	DecisionKeep   DecisionAction = "keep"
	DecisionSplit  DecisionAction = "split"
	DecisionDelete DecisionAction = "delete"
	DecisionMerge  DecisionAction = "merge"
)

// Valid reports whether the action is one of the known decision actions.
func (a DecisionAction) Valid() bool {
	switch a {
	case DecisionKeep, DecisionSplit, DecisionDelete, DecisionMerge:
		return true
	}
	return false
}

// Decision is one human override. Target is a contact ID (or a record ref in
// "source:index" form, which resolves to the contact whose provenance
// contains it). Decisions are authoritative over automatic results for their
// target and idempotent under re-application.
type Decision struct {
	Target string         `json:"target" yaml:"target"`
	Action DecisionAction `json:"action" yaml:"action"`
	// Groups lists the sub-groups for a split, each a list of record refs in
	// "source:index" form. Records of the cluster not named in any group fall
	// into an implicit remainder group.
	Groups [][]string `json:"groups,omitempty" yaml:"groups,omitempty"`
	// MergeWith names the other contact for a merge action.
	MergeWith string `json:"merge_with,omitempty" yaml:"merge_with,omitempty"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
}
