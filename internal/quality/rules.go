package quality

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nfc18/contactplus/internal/model"
	"github.com/nfc18/contactplus/internal/normalize"
)

// rolePrefixes are local-part prefixes that mark an address as a role or
// machine mailbox rather than a person.
var rolePrefixes = []string{
	"info", "support", "sales", "noreply", "no-reply", "office", "contact",
	"admin", "webmaster", "newsletter", "service", "billing", "hello",
	"mail", "team", "jobs", "hr", "marketing",
}

// businessMarkers are legal-entity and department tokens that suggest a
// business name stored in a personal name field.
var businessMarkers = []string{
	"gmbh", "ag", "kg", "og", "inc", "llc", "ltd", "co", "corp", "sa", "srl",
	"e.u.", "se", "support", "team", "service", "office", "hotline",
	"verein", "institut", "praxis", "kanzlei", "studio", "shop", "store",
}

var (
	bareHandleRe = regexp.MustCompile(`(?i)^[a-z]+[0-9]*$`)
	digitRunRe   = regexp.MustCompile(`[0-9]{4,}`)
)

// detectEmailDerivedName fires when the display name looks like it was filled
// from an email local part: a bare lower-case handle, or an exact match of
// one of the record's email local parts.
func detectEmailDerivedName(rec *model.SourceRecord) []model.QualityInsight {
	name := strings.TrimSpace(rec.DisplayName)
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)

	for _, e := range rec.Emails {
		local, ok := normalize.EmailLocalPart(e.Address)
		if !ok {
			continue
		}
		if lower == local {
			return []model.QualityInsight{{
				IssueType:    model.IssueEmailDerivedName,
				CurrentValue: name,
				Confidence:   0.98,
				Reasoning:    fmt.Sprintf("display name equals local part of %s", e.Address),
			}}
		}
		// Handle dotted local parts: "max.muster" entered as "maxmuster".
		if lower == strings.ReplaceAll(local, ".", "") {
			return []model.QualityInsight{{
				IssueType:    model.IssueEmailDerivedName,
				CurrentValue: name,
				Confidence:   0.95,
				Reasoning:    fmt.Sprintf("display name equals undotted local part of %s", e.Address),
			}}
		}
	}

	// No space, single token of letters with optional trailing digits.
	if !strings.ContainsAny(name, " \t") && bareHandleRe.MatchString(name) && name == lower {
		return []model.QualityInsight{{
			IssueType:    model.IssueEmailDerivedName,
			CurrentValue: name,
			Confidence:   0.85,
			Reasoning:    "display name is a bare lower-case handle",
		}}
	}
	return nil
}

// detectNonPersonalEmails classifies role-mailbox addresses. Removal is only
// auto-safe when another, non-role address remains: the last email on a
// record is never dropped.
func detectNonPersonalEmails(rec *model.SourceRecord) []model.QualityInsight {
	roleCount := 0
	type hit struct {
		addr   string
		prefix string
	}
	var hits []hit
	for _, e := range rec.Emails {
		local, ok := normalize.EmailLocalPart(e.Address)
		if !ok {
			continue
		}
		if p := matchRolePrefix(local); p != "" {
			roleCount++
			hits = append(hits, hit{addr: e.Address, prefix: p})
		}
	}
	if len(hits) == 0 {
		return nil
	}

	personalRemain := len(rec.Emails) - roleCount
	var insights []model.QualityInsight
	for _, h := range hits {
		insights = append(insights, model.QualityInsight{
			IssueType:     model.IssueNonPersonalEmail,
			CurrentValue:  h.addr,
			Confidence:    0.95,
			AutoApplySafe: personalRemain > 0,
			Reasoning:     fmt.Sprintf("local part matches role prefix %q", h.prefix),
		})
	}
	return insights
}

// matchRolePrefix returns the role prefix when the local part equals it or
// starts with it followed by a separator.
func matchRolePrefix(local string) string {
	for _, p := range rolePrefixes {
		if local == p {
			return p
		}
		if strings.HasPrefix(local, p) && len(local) > len(p) {
			switch local[len(p)] {
			case '.', '-', '_', '+', '@':
				return p
			}
		}
	}
	return ""
}

// detectBusinessName flags display names carrying a legal-entity or
// department marker. Reclassification changes downstream merge priority, so
// this is never auto-applied.
func detectBusinessName(rec *model.SourceRecord) []model.QualityInsight {
	name := strings.TrimSpace(rec.DisplayName)
	if name == "" {
		return nil
	}
	for _, tok := range strings.Fields(strings.ToLower(name)) {
		tok = strings.Trim(tok, ".,()&")
		for _, marker := range businessMarkers {
			if tok == marker {
				return []model.QualityInsight{{
					IssueType:    model.IssueBusinessName,
					CurrentValue: name,
					Confidence:   0.7,
					Reasoning:    fmt.Sprintf("name contains business marker %q", marker),
				}}
			}
		}
	}
	return nil
}

// detectEmbeddedIdentifier flags names containing an "@" or a run of four or
// more digits. Confidence scales with pattern specificity.
func detectEmbeddedIdentifier(rec *model.SourceRecord) []model.QualityInsight {
	name := strings.TrimSpace(rec.DisplayName)
	if name == "" {
		return nil
	}
	var insights []model.QualityInsight
	if strings.Contains(name, "@") {
		insights = append(insights, model.QualityInsight{
			IssueType:    model.IssueEmbeddedIdentifier,
			CurrentValue: name,
			Confidence:   0.9,
			Reasoning:    "display name contains '@'",
		})
	}
	if run := digitRunRe.FindString(name); run != "" {
		conf := 0.6
		if len(run) >= 6 {
			conf = 0.8
		}
		insights = append(insights, model.QualityInsight{
			IssueType:    model.IssueEmbeddedIdentifier,
			CurrentValue: name,
			Confidence:   conf,
			Reasoning:    fmt.Sprintf("display name contains digit run %q", run),
		})
	}
	return insights
}
