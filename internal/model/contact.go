package model

import "fmt"

// RecordRef identifies one record within one source file. The pair is the
// stable identity used for provenance, audit entries, and decision targets.
type RecordRef struct {
	SourceName  string `json:"source_name"`
	SourceIndex int    `json:"source_index"`
}

// String renders the ref in the "source:index" form used by decision files
// and audit output.
func (r RecordRef) String() string {
	return fmt.Sprintf("%s:%d", r.SourceName, r.SourceIndex)
}

// NameParts holds the structured name components as parsed from the source.
// Any component may be empty.
type NameParts struct {
	Given  string `json:"given,omitempty"`
	Family string `json:"family,omitempty"`
	Middle string `json:"middle,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty"`
}

// IsZero reports whether no component is set.
func (n NameParts) IsZero() bool {
	return n == NameParts{}
}

// Email is one email address with its declared type (home, work, ...).
type Email struct {
	Address string `json:"address"`
	Type    string `json:"type,omitempty"`
}

// Phone is one phone number with its declared type (cell, work, ...).
type Phone struct {
	Number string `json:"number"`
	Type   string `json:"type,omitempty"`
}

// Photo holds the decoded photo bytes and the format declared by the parser
// (e.g. "jpeg", "png").
type Photo struct {
	Data   []byte `json:"data,omitempty"`
	Format string `json:"format,omitempty"`
}

// RawField is an uninterpreted field carried through from the parser so
// nothing a source declared is lost on export.
type RawField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SourceRecord is one contact as parsed from one source file. Records are
// immutable after load; the annotation pass appends Insights but never
// rewrites a parsed field.
type SourceRecord struct {
	SourceName   string           `json:"source_name"`
	SourceIndex  int              `json:"source_index"`
	DisplayName  string           `json:"display_name"`
	Name         NameParts        `json:"name"`
	Emails       []Email          `json:"emails,omitempty"`
	Phones       []Phone          `json:"phones,omitempty"`
	Organization string           `json:"organization,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	Photo        *Photo           `json:"photo,omitempty"`
	Raw          []RawField       `json:"raw,omitempty"`
	Insights     []QualityInsight `json:"insights,omitempty"`
}

// Ref returns the record's provenance reference.
func (r *SourceRecord) Ref() RecordRef {
	return RecordRef{SourceName: r.SourceName, SourceIndex: r.SourceIndex}
}
