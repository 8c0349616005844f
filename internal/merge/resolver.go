// Package merge combines the records of one cluster into a single canonical
// contact under deterministic per-field rules, preserving provenance. Each
// field has its own resolver function over the priority-ordered members; the
// set of rules is closed and lives in this file plus photo.go.
package merge

import (
	"sort"
	"strings"

	"github.com/nfc18/contactplus/internal/model"
	"github.com/nfc18/contactplus/internal/normalize"
)

// Resolver merges clusters into canonical contacts.
type Resolver struct {
	Priority      SourcePriority
	DefaultRegion string
	// PhotoCeiling is the largest encoded photo size in bytes carried on a
	// canonical contact; larger photos walk the downsampling ladder.
	PhotoCeiling int
}

// NewResolver creates a Resolver.
func NewResolver(priority SourcePriority, defaultRegion string, photoCeiling int) *Resolver {
	return &Resolver{Priority: priority, DefaultRegion: defaultRegion, PhotoCeiling: photoCeiling}
}

// Resolve produces the canonical contact for one cluster. Members not found
// in the record index are skipped (and absent from provenance); the cluster
// is never dropped. Resolve never fails: every degradation surfaces as a
// quality flag or an absent optional field.
func (r *Resolver) Resolve(c model.MergeCluster, records map[model.RecordRef]*model.SourceRecord) model.CanonicalContact {
	members := make([]*model.SourceRecord, 0, len(c.Members))
	for _, ref := range c.Members {
		if rec, ok := records[ref]; ok {
			members = append(members, rec)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return r.Priority.Less(members[i].Ref(), members[j].Ref())
	})

	out := model.CanonicalContact{ContactID: c.ContactID}
	for _, m := range members {
		out.Provenance = append(out.Provenance, m.Ref())
	}
	if len(members) == 0 {
		return out
	}

	winner, ambiguous := r.resolveDisplayName(members)
	out.DisplayName = winner.DisplayName
	out.Name = resolveNameParts(winner, members)
	out.Emails = r.resolveEmails(members)
	out.Phones = r.resolvePhones(members)
	out.Organization = resolveOrganization(members)
	out.Notes = resolveNotes(members)
	out.Photo = r.resolvePhoto(members)
	out.QualityFlags = carryInsights(members)

	if ambiguous {
		out.QualityFlags = append(out.QualityFlags, model.QualityInsight{
			IssueType:  model.IssueAmbiguousIdentity,
			Confidence: 1,
			Reasoning:  "equally ranked members disagree on display name",
		})
	}
	return out
}

// resolveDisplayName picks the highest-priority member whose name is not
// flagged as email-derived. When every member is flagged, the longest display
// name is a weak fallback and the flags stay on the contact. The second
// return value reports an unresolvable conflict: equally ranked candidates
// with materially different names.
func (r *Resolver) resolveDisplayName(members []*model.SourceRecord) (*model.SourceRecord, bool) {
	var candidates []*model.SourceRecord
	for _, m := range members {
		if strings.TrimSpace(m.DisplayName) == "" {
			continue
		}
		if !hasInsight(m, model.IssueEmailDerivedName) {
			candidates = append(candidates, m)
		}
	}

	if len(candidates) == 0 {
		// All names flagged (or empty): longest wins as a weak fallback.
		best := members[0]
		for _, m := range members[1:] {
			if len(m.DisplayName) > len(best.DisplayName) {
				best = m
			}
		}
		return best, false
	}

	best := candidates[0]
	bestRank := r.Priority.Rank(best.SourceName)
	ambiguous := false
	for _, m := range candidates[1:] {
		if r.Priority.Rank(m.SourceName) == bestRank && materiallyDifferentNames(best.DisplayName, m.DisplayName) {
			ambiguous = true
		}
	}
	return best, ambiguous
}

// materiallyDifferentNames reports whether two display names differ beyond
// formatting (whitespace, case, Unicode form).
func materiallyDifferentNames(a, b string) bool {
	ka, oka := normalize.Name(a)
	kb, okb := normalize.Name(b)
	if !oka || !okb {
		return a != b
	}
	return ka != kb
}

// resolveNameParts takes the winner's structured name and backfills empty
// components from the remaining members in priority order.
func resolveNameParts(winner *model.SourceRecord, members []*model.SourceRecord) model.NameParts {
	parts := winner.Name
	for _, m := range members {
		if m == winner {
			continue
		}
		if parts.Given == "" {
			parts.Given = m.Name.Given
		}
		if parts.Family == "" {
			parts.Family = m.Name.Family
		}
		if parts.Middle == "" {
			parts.Middle = m.Name.Middle
		}
		if parts.Prefix == "" {
			parts.Prefix = m.Name.Prefix
		}
		if parts.Suffix == "" {
			parts.Suffix = m.Name.Suffix
		}
	}
	return parts
}

// resolveEmails unions member emails de-duplicated by normalized key,
// ordered by first appearance in source-priority order.
func (r *Resolver) resolveEmails(members []*model.SourceRecord) []model.Email {
	seen := make(map[string]struct{})
	var out []model.Email
	for _, m := range members {
		for _, e := range m.Emails {
			key, ok := normalize.Email(e.Address)
			if !ok {
				key = strings.ToLower(strings.TrimSpace(e.Address))
				if key == "" {
					continue
				}
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// resolvePhones unions member phones de-duplicated by normalized key,
// ordered by first appearance in source-priority order.
func (r *Resolver) resolvePhones(members []*model.SourceRecord) []model.Phone {
	seen := make(map[string]struct{})
	var out []model.Phone
	for _, m := range members {
		for _, p := range m.Phones {
			key, ok := normalize.Phone(p.Number, r.DefaultRegion)
			if !ok {
				key = strings.TrimSpace(p.Number)
				if key == "" {
					continue
				}
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// resolveOrganization returns the first non-empty organization in priority order.
func resolveOrganization(members []*model.SourceRecord) string {
	for _, m := range members {
		if org := strings.TrimSpace(m.Organization); org != "" {
			return org
		}
	}
	return ""
}

// noteSeparator joins distinct notes. Notes often carry disambiguating human
// context, so none is ever dropped.
const noteSeparator = " | "

// resolveNotes concatenates distinct non-empty notes (trimmed byte equality)
// in priority order.
func resolveNotes(members []*model.SourceRecord) string {
	seen := make(map[string]struct{})
	var parts []string
	for _, m := range members {
		note := strings.TrimSpace(m.Notes)
		if note == "" {
			continue
		}
		if _, dup := seen[note]; dup {
			continue
		}
		seen[note] = struct{}{}
		parts = append(parts, note)
	}
	return strings.Join(parts, noteSeparator)
}

// carryInsights forwards member insights onto the contact, de-duplicated by
// issue type and current value.
func carryInsights(members []*model.SourceRecord) []model.QualityInsight {
	type dedupKey struct{ issue, value string }
	seen := make(map[dedupKey]struct{})
	var out []model.QualityInsight
	for _, m := range members {
		for _, ins := range m.Insights {
			k := dedupKey{issue: ins.IssueType, value: ins.CurrentValue}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, ins)
		}
	}
	return out
}

func hasInsight(rec *model.SourceRecord, issueType string) bool {
	for _, ins := range rec.Insights {
		if ins.IssueType == issueType {
			return true
		}
	}
	return false
}
