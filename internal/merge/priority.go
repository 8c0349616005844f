package merge

import "github.com/nfc18/contactplus/internal/model"

// SourcePriority is a fixed ranking of source names. Earlier names win field
// conflicts. Sources not listed rank below all listed ones and tie-break by
// name, so the ordering is a function of source identity, never load order.
type SourcePriority struct {
	rank map[string]int
	n    int
}

// NewSourcePriority builds a priority ranking from an ordered list of source
// names, highest priority first.
func NewSourcePriority(ordered []string) SourcePriority {
	rank := make(map[string]int, len(ordered))
	for i, name := range ordered {
		if _, dup := rank[name]; !dup {
			rank[name] = i
		}
	}
	return SourcePriority{rank: rank, n: len(rank)}
}

// Rank returns the priority rank for a source name; lower is better.
// Unlisted sources all share the lowest rank.
func (p SourcePriority) Rank(sourceName string) int {
	if r, ok := p.rank[sourceName]; ok {
		return r
	}
	return p.n
}

// Less orders two record refs by source priority, then source name, then
// index within the source.
func (p SourcePriority) Less(a, b model.RecordRef) bool {
	ra, rb := p.Rank(a.SourceName), p.Rank(b.SourceName)
	if ra != rb {
		return ra < rb
	}
	if a.SourceName != b.SourceName {
		return a.SourceName < b.SourceName
	}
	return a.SourceIndex < b.SourceIndex
}
