package overlay

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nfc18/contactplus/internal/cluster"
	"github.com/nfc18/contactplus/internal/merge"
	"github.com/nfc18/contactplus/internal/model"
)

// Contact review states.
const (
	StateProposed  = "proposed"
	StateConfirmed = "confirmed"
	StateSplit     = "split"
	StateDeleted   = "deleted"
)

// Outcome is the final contact set after decisions, with the audit trail of
// everything that was suppressed or restructured.
type Outcome struct {
	Contacts []model.CanonicalContact
	// States maps contact ID to its review state. Contacts produced by a
	// split start over as proposed.
	States  map[string]string
	Audit   []model.AuditEntry
	Applied int
	Skipped int
}

// Apply overlays decisions onto the automatic merge output. Unknown targets
// and inapplicable decisions are logged and skipped; the automatic result
// stands for them. Every suppressed contact leaves an audit entry carrying
// its full provenance.
func Apply(
	runID string,
	contacts []model.CanonicalContact,
	records map[model.RecordRef]*model.SourceRecord,
	decisions []model.Decision,
	resolver *merge.Resolver,
) Outcome {
	out := Outcome{States: make(map[string]string, len(contacts))}

	current := make(map[string]model.CanonicalContact, len(contacts))
	for _, c := range contacts {
		current[c.ContactID] = c
		out.States[c.ContactID] = StateProposed
	}

	for _, d := range Filter(decisions) {
		id, ok := resolveTarget(d.Target, current)
		if !ok {
			zap.L().Warn("overlay: decision target not found, skipped",
				zap.String("target", d.Target),
				zap.String("action", string(d.Action)),
			)
			out.Skipped++
			continue
		}

		switch d.Action {
		case model.DecisionKeep:
			out.States[id] = StateConfirmed
			out.Applied++

		case model.DecisionDelete:
			c := current[id]
			out.Audit = append(out.Audit, model.AuditEntry{
				RunID:      runID,
				ContactID:  id,
				Action:     string(model.DecisionDelete),
				Provenance: c.Provenance,
				Reason:     d.Reason,
				CreatedAt:  time.Now().UTC(),
			})
			delete(current, id)
			out.States[id] = StateDeleted
			out.Applied++

		case model.DecisionSplit:
			parts, ok := splitGroups(current[id], d.Groups)
			if !ok {
				out.Skipped++
				continue
			}
			c := current[id]
			out.Audit = append(out.Audit, model.AuditEntry{
				RunID:      runID,
				ContactID:  id,
				Action:     string(model.DecisionSplit),
				Provenance: c.Provenance,
				Reason:     d.Reason,
				CreatedAt:  time.Now().UTC(),
			})
			delete(current, id)
			out.States[id] = StateSplit
			for _, members := range parts {
				sub := model.MergeCluster{ContactID: cluster.ContactID(members), Members: members}
				nc := resolver.Resolve(sub, records)
				current[nc.ContactID] = nc
				out.States[nc.ContactID] = StateProposed
			}
			out.Applied++

		case model.DecisionMerge:
			otherID, ok := resolveTarget(d.MergeWith, current)
			if !ok || otherID == id {
				zap.L().Warn("overlay: merge counterpart not found, skipped",
					zap.String("target", d.Target),
					zap.String("merge_with", d.MergeWith),
				)
				out.Skipped++
				continue
			}
			a, b := current[id], current[otherID]
			members := append(append([]model.RecordRef{}, a.Provenance...), b.Provenance...)
			combined := model.MergeCluster{ContactID: cluster.ContactID(members), Members: members}
			nc := resolver.Resolve(combined, records)
			out.Audit = append(out.Audit, model.AuditEntry{
				RunID:      runID,
				ContactID:  nc.ContactID,
				Action:     string(model.DecisionMerge),
				Provenance: nc.Provenance,
				Reason:     d.Reason,
				CreatedAt:  time.Now().UTC(),
			})
			delete(current, id)
			delete(current, otherID)
			current[nc.ContactID] = nc
			out.States[nc.ContactID] = StateConfirmed
			out.Applied++
		}
	}

	// Deterministic output: surviving contacts in stable ID order.
	out.Contacts = make([]model.CanonicalContact, 0, len(current))
	for _, c := range current {
		out.Contacts = append(out.Contacts, c)
	}
	sort.Slice(out.Contacts, func(i, j int) bool {
		return out.Contacts[i].ContactID < out.Contacts[j].ContactID
	})
	return out
}

// resolveTarget maps a decision target to a live contact ID. The target is
// either a contact ID or a record ref in "source:index" form, which resolves
// to the contact whose provenance contains that record.
func resolveTarget(target string, current map[string]model.CanonicalContact) (string, bool) {
	if _, ok := current[target]; ok {
		return target, true
	}
	ref, ok := parseRef(target)
	if !ok {
		return "", false
	}
	for id, c := range current {
		for _, p := range c.Provenance {
			if p == ref {
				return id, true
			}
		}
	}
	return "", false
}

// parseRef parses "source:index". The index is after the last colon so
// source names containing colons stay parseable.
func parseRef(s string) (model.RecordRef, bool) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return model.RecordRef{}, false
	}
	idx, err := strconv.Atoi(s[i+1:])
	if err != nil || idx < 0 {
		return model.RecordRef{}, false
	}
	return model.RecordRef{SourceName: s[:i], SourceIndex: idx}, true
}

// splitGroups partitions the contact's provenance into the decision's groups
// plus an implicit remainder group for unnamed records. A group naming a
// record outside the cluster invalidates the whole decision.
func splitGroups(c model.CanonicalContact, groups [][]string) ([][]model.RecordRef, bool) {
	inCluster := make(map[model.RecordRef]bool, len(c.Provenance))
	for _, ref := range c.Provenance {
		inCluster[ref] = false // false = not yet assigned
	}

	var parts [][]model.RecordRef
	for _, g := range groups {
		var members []model.RecordRef
		for _, s := range g {
			ref, ok := parseRef(s)
			if !ok {
				zap.L().Warn("overlay: unparseable record ref in split group, decision skipped",
					zap.String("ref", s), zap.String("contact", c.ContactID))
				return nil, false
			}
			assigned, known := inCluster[ref]
			if !known {
				zap.L().Warn("overlay: split group names record outside cluster, decision skipped",
					zap.String("ref", s), zap.String("contact", c.ContactID))
				return nil, false
			}
			if assigned {
				continue // same ref listed twice, keep first placement
			}
			inCluster[ref] = true
			members = append(members, ref)
		}
		if len(members) > 0 {
			parts = append(parts, members)
		}
	}

	var remainder []model.RecordRef
	for _, ref := range c.Provenance {
		if !inCluster[ref] {
			remainder = append(remainder, ref)
		}
	}
	if len(remainder) > 0 {
		parts = append(parts, remainder)
	}
	if len(parts) < 2 {
		zap.L().Warn("overlay: split produces fewer than two groups, decision skipped",
			zap.String("contact", c.ContactID))
		return nil, false
	}
	return parts, true
}
