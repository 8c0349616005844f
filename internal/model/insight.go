package model

// Issue types produced by the quality heuristics engine.
const (
	IssueEmailDerivedName   = "email_derived_name"
	IssueNonPersonalEmail   = "non_personal_email"
	IssueBusinessName       = "business_name"
	IssueEmbeddedIdentifier = "embedded_identifier"

	// Review markers attached during clustering and merge.
	IssueUnidentifiable    = "unidentifiable"
	IssueAmbiguousIdentity = "ambiguous_identity"
)

// QualityInsight is an advisory finding about a record or canonical contact.
// Insights are additive and never applied automatically unless AutoApplySafe
// is set; detection and application are strictly separated.
type QualityInsight struct {
	IssueType      string  `json:"issue_type"`
	CurrentValue   string  `json:"current_value,omitempty"`
	SuggestedValue string  `json:"suggested_value,omitempty"`
	Confidence     float64 `json:"confidence"`
	AutoApplySafe  bool    `json:"auto_apply_safe"`
	Reasoning      string  `json:"reasoning,omitempty"`
}
