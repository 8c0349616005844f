package model

import "time"

// MergeCluster is a set of records connected transitively through shared
// normalized keys. Clusters partition the input record set: every record
// belongs to exactly one cluster, singletons included. Immutable after
// resolution except for decision-overlay splits.
type MergeCluster struct {
	ContactID string      `json:"contact_id"`
	Members   []RecordRef `json:"members"`
}

// CanonicalContact is the merge output for one cluster. ContactID is derived
// from the sorted member refs, never from arrival order, so re-runs over the
// same inputs produce the same IDs.
type CanonicalContact struct {
	ContactID    string           `json:"contact_id"`
	DisplayName  string           `json:"display_name"`
	Name         NameParts        `json:"name"`
	Emails       []Email          `json:"emails,omitempty"`
	Phones       []Phone          `json:"phones,omitempty"`
	Organization string           `json:"organization,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	Photo        *Photo           `json:"photo,omitempty"`
	Provenance   []RecordRef      `json:"provenance"`
	QualityFlags []QualityInsight `json:"quality_flags,omitempty"`
}

// Flagged reports whether the contact carries an insight of the given issue type.
func (c *CanonicalContact) Flagged(issueType string) bool {
	for _, f := range c.QualityFlags {
		if f.IssueType == issueType {
			return true
		}
	}
	return false
}

// AuditEntry records a suppression or restructuring applied by the decision
// overlay. Deleted contacts keep their full provenance here; nothing is
// silently erased.
type AuditEntry struct {
	ID         int64       `json:"id,omitempty"`
	RunID      string      `json:"run_id"`
	ContactID  string      `json:"contact_id"`
	Action     string      `json:"action"`
	Provenance []RecordRef `json:"provenance"`
	Reason     string      `json:"reason,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}
