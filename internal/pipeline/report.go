package pipeline

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/nfc18/contactplus/internal/model"
)

// Report summarizes the quality findings of one run, grouped by issue type
// so a reviewer can work through one class of problem at a time.
type Report struct {
	RunID       string       `json:"run_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Contacts    int          `json:"contacts"`
	Flagged     int          `json:"flagged"`
	Groups      []IssueGroup `json:"groups"`
}

// IssueGroup collects every occurrence of one issue type across the
// canonical contact set.
type IssueGroup struct {
	IssueType string       `json:"issue_type"`
	Count     int          `json:"count"`
	Items     []ReportItem `json:"items"`
}

// ReportItem is a single flagged finding on a canonical contact.
type ReportItem struct {
	ContactID      string  `json:"contact_id"`
	DisplayName    string  `json:"display_name"`
	CurrentValue   string  `json:"current_value,omitempty"`
	SuggestedValue string  `json:"suggested_value,omitempty"`
	Confidence     float64 `json:"confidence"`
	AutoApplySafe  bool    `json:"auto_apply_safe"`
	Reasoning      string  `json:"reasoning,omitempty"`
	Provenance     string  `json:"provenance"`
}

// BuildReport groups the quality flags of the canonical set by issue type.
// Groups are ordered by descending count, items by contact ID, so the same
// input always renders the same report.
func BuildReport(runID string, contacts []model.CanonicalContact) *Report {
	byIssue := make(map[string][]ReportItem)
	flagged := 0
	for i := range contacts {
		c := &contacts[i]
		if len(c.QualityFlags) > 0 {
			flagged++
		}
		for _, f := range c.QualityFlags {
			byIssue[f.IssueType] = append(byIssue[f.IssueType], ReportItem{
				ContactID:      c.ContactID,
				DisplayName:    c.DisplayName,
				CurrentValue:   f.CurrentValue,
				SuggestedValue: f.SuggestedValue,
				Confidence:     f.Confidence,
				AutoApplySafe:  f.AutoApplySafe,
				Reasoning:      f.Reasoning,
				Provenance:     joinRefs(c.Provenance),
			})
		}
	}

	groups := make([]IssueGroup, 0, len(byIssue))
	for issue, items := range byIssue {
		sort.Slice(items, func(a, b int) bool {
			return items[a].ContactID < items[b].ContactID
		})
		groups = append(groups, IssueGroup{IssueType: issue, Count: len(items), Items: items})
	}
	sort.Slice(groups, func(a, b int) bool {
		if groups[a].Count != groups[b].Count {
			return groups[a].Count > groups[b].Count
		}
		return groups[a].IssueType < groups[b].IssueType
	})

	return &Report{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Contacts:    len(contacts),
		Flagged:     flagged,
		Groups:      groups,
	}
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return eris.Wrap(err, "report: encode JSON")
	}
	return nil
}

// WriteXLSX writes the report as a workbook with one sheet per issue type.
func (r *Report) WriteXLSX(path string) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}
	addRow(summary, "Run", r.RunID)
	addRow(summary, "Generated", r.GeneratedAt.Format(time.RFC3339))
	addRow(summary, "Contacts", strconv.Itoa(r.Contacts))
	addRow(summary, "Flagged", strconv.Itoa(r.Flagged))
	addRow(summary)
	addRow(summary, "Issue", "Count")
	for _, g := range r.Groups {
		addRow(summary, g.IssueType, strconv.Itoa(g.Count))
	}

	for _, g := range r.Groups {
		sheet, err := f.AddSheet(sheetName(g.IssueType))
		if err != nil {
			return eris.Wrapf(err, "report: add sheet for %s", g.IssueType)
		}
		addRow(sheet, "Contact ID", "Display Name", "Current", "Suggested", "Confidence", "Auto-Apply", "Reasoning", "Provenance")
		for _, item := range g.Items {
			addRow(sheet,
				item.ContactID,
				item.DisplayName,
				item.CurrentValue,
				item.SuggestedValue,
				strconv.FormatFloat(item.Confidence, 'f', 2, 64),
				strconv.FormatBool(item.AutoApplySafe),
				item.Reasoning,
				item.Provenance,
			)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// sheetName converts an issue type into a sheet title. Excel caps sheet
// names at 31 characters.
func sheetName(issueType string) string {
	name := strings.ReplaceAll(issueType, "_", " ")
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func joinRefs(refs []model.RecordRef) string {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		parts[i] = ref.String()
	}
	return strings.Join(parts, ", ")
}
