package cluster

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nfc18/contactplus/internal/identity"
	"github.com/nfc18/contactplus/internal/model"
)

// maxNameOnlySources is the largest number of distinct source files a pure
// name match may span and still drive a merge on its own. Name collisions get
// likelier with every additional source, so beyond this a shared email or
// phone is additionally required (which the email/phone pass already
// provides).
const maxNameOnlySources = 2

// Result is the output of Resolve: the partition plus per-record key counts
// so callers can flag unmatchable records.
type Result struct {
	Clusters []model.MergeCluster
	// ZeroKey lists the indices of records that contributed no key at all.
	ZeroKey []int
}

// Resolve partitions records into merge clusters. Email and phone keys union
// unconditionally; a name key unions its group only when the group spans at
// most maxNameOnlySources distinct sources. Records with zero keys become
// singleton clusters. The partition and the cluster IDs depend only on record
// identity, never on load order.
func Resolve(records []model.SourceRecord, defaultRegion string) Result {
	uf := NewUnionFind(len(records))

	byKey := make(map[model.NormalizedKey][]int)
	var zeroKey []int
	for i := range records {
		keys := identity.Keys(&records[i], defaultRegion)
		if len(keys) == 0 {
			zeroKey = append(zeroKey, i)
			continue
		}
		for _, k := range keys {
			byKey[k] = append(byKey[k], i)
		}
	}

	// Email and phone keys first: these carry identity unconditionally.
	for k, members := range byKey {
		if k.Kind == model.KeyKindName {
			continue
		}
		unionAll(uf, members)
	}

	// Name keys: only within the distinct-source bound.
	nameSkipped := 0
	for k, members := range byKey {
		if k.Kind != model.KeyKindName || len(members) < 2 {
			continue
		}
		if distinctSources(records, members) > maxNameOnlySources {
			nameSkipped++
			continue
		}
		unionAll(uf, members)
	}
	if nameSkipped > 0 {
		zap.L().Info("cluster: name-only groups withheld from merging",
			zap.Int("groups", nameSkipped),
			zap.Int("max_sources", maxNameOnlySources),
		)
	}

	groups := uf.Groups()
	clusters := make([]model.MergeCluster, 0, len(groups))
	for _, g := range groups {
		members := make([]model.RecordRef, len(g))
		for i, idx := range g {
			members[i] = records[idx].Ref()
		}
		clusters = append(clusters, model.MergeCluster{
			ContactID: ContactID(members),
			Members:   members,
		})
	}

	// Deterministic output order regardless of map iteration above.
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].ContactID < clusters[j].ContactID
	})

	return Result{Clusters: clusters, ZeroKey: zeroKey}
}

// ContactID derives a stable cluster identifier from the sorted member refs.
// Re-running over the same inputs in any source order yields the same ID.
func ContactID(members []model.RecordRef) string {
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = m.String()
	}
	sort.Strings(parts)
	sum := sha256.Sum256([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(sum[:])[:16]
}

func unionAll(uf *UnionFind, members []int) {
	for i := 1; i < len(members); i++ {
		uf.Union(members[0], members[i])
	}
}

func distinctSources(records []model.SourceRecord, members []int) int {
	seen := make(map[string]struct{}, len(members))
	for _, idx := range members {
		seen[records[idx].SourceName] = struct{}{}
	}
	return len(seen)
}
