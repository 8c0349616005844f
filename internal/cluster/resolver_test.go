package cluster

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfc18/contactplus/internal/model"
)

func rec(source string, index int, name, email, phone string) model.SourceRecord {
	r := model.SourceRecord{
		SourceName:  source,
		SourceIndex: index,
		DisplayName: name,
	}
	if email != "" {
		r.Emails = []model.Email{{Address: email}}
	}
	if phone != "" {
		r.Phones = []model.Phone{{Number: phone}}
	}
	return r
}

func clusterFor(t *testing.T, res Result, ref model.RecordRef) model.MergeCluster {
	t.Helper()
	for _, c := range res.Clusters {
		for _, m := range c.Members {
			if m == ref {
				return c
			}
		}
	}
	t.Fatalf("no cluster contains %s", ref)
	return model.MergeCluster{}
}

func TestResolve_SharedEmailMerges(t *testing.T) {
	records := []model.SourceRecord{
		rec("phone", 0, "Claudia Platzer", "claudia.platzer@example.com", ""),
		rec("gmail", 0, "claudia.platzer", "Claudia.Platzer@example.com", ""),
	}

	res := Resolve(records, "AT")
	require.Len(t, res.Clusters, 1)
	assert.Len(t, res.Clusters[0].Members, 2)
}

func TestResolve_TransitiveChain(t *testing.T) {
	// A and B share an email; B and C share a phone. All three must land in
	// one cluster even though A and C share nothing directly.
	a := rec("phone", 0, "Max Muster", "max@example.com", "")
	b := rec("gmail", 0, "M. Muster", "max@example.com", "0699 1234567")
	c := rec("work", 0, "Muster Max", "", "+43 699 1234567")

	res := Resolve([]model.SourceRecord{a, b, c}, "AT")
	require.Len(t, res.Clusters, 1)
	assert.Len(t, res.Clusters[0].Members, 3)
}

func TestResolve_BridgingRecordKeepsAllMembers(t *testing.T) {
	// The third record bridges the first two: it shares a phone with the
	// first and an email with the second. Whichever key unions first, the
	// resulting set's union-find root is not the lowest record index, and
	// the cluster must still surface with all three members.
	a := rec("phone", 0, "Max Muster", "", "+43 699 1234567")
	b := rec("gmail", 0, "max.muster", "max@example.com", "")
	c := rec("work", 0, "Muster Max", "max@example.com", "0699 1234567")

	res := Resolve([]model.SourceRecord{a, b, c}, "AT")
	require.Len(t, res.Clusters, 1)
	assert.Len(t, res.Clusters[0].Members, 3)
}

func TestResolve_PartitionInvariantUnderShuffles(t *testing.T) {
	base := []model.SourceRecord{
		rec("phone", 0, "Max Muster", "", "+43 699 1111111"),
		rec("gmail", 0, "max.muster", "max@example.com", ""),
		rec("work", 0, "Muster Max", "max@example.com", "0699 1111111"),
		rec("phone", 1, "Anna Schmidt", "anna@firma.at", ""),
		rec("gmail", 1, "Anna Schmidt", "", ""),
		rec("work", 1, "Eva Gruber", "", "+43 664 2222222"),
		rec("phone", 2, "E. Gruber", "", "0664 2222222"),
		{SourceName: "gmail", SourceIndex: 2}, // zero keys
	}

	var wantIDs []string
	for round := 0; round < 20; round++ {
		records := make([]model.SourceRecord, len(base))
		copy(records, base)
		rnd := rand.New(rand.NewSource(int64(round)))
		rnd.Shuffle(len(records), func(i, j int) {
			records[i], records[j] = records[j], records[i]
		})

		res := Resolve(records, "AT")

		seen := map[model.RecordRef]int{}
		var ids []string
		for _, c := range res.Clusters {
			ids = append(ids, c.ContactID)
			for _, m := range c.Members {
				seen[m]++
			}
		}
		require.Len(t, seen, len(base), "round %d lost records", round)
		for ref, n := range seen {
			require.Equal(t, 1, n, "round %d: record %s in %d clusters", round, ref, n)
		}

		if round == 0 {
			require.Len(t, res.Clusters, 4)
			wantIDs = ids
			continue
		}
		assert.Equal(t, wantIDs, ids, "round %d produced a different partition", round)
	}
}

func TestResolve_PartitionCoversEveryRecord(t *testing.T) {
	records := []model.SourceRecord{
		rec("phone", 0, "Max Muster", "max@example.com", ""),
		rec("gmail", 0, "Anna Schmidt", "anna@example.com", ""),
		rec("work", 0, "Max Muster", "max@example.com", ""),
		{SourceName: "phone", SourceIndex: 1}, // zero keys
	}

	res := Resolve(records, "AT")

	seen := map[model.RecordRef]int{}
	for _, c := range res.Clusters {
		for _, m := range c.Members {
			seen[m]++
		}
	}
	require.Len(t, seen, len(records))
	for ref, n := range seen {
		assert.Equal(t, 1, n, "record %s must be in exactly one cluster", ref)
	}
}

func TestResolve_ZeroKeyRecordIsSingleton(t *testing.T) {
	records := []model.SourceRecord{
		rec("phone", 0, "Max Muster", "", ""),
		{SourceName: "phone", SourceIndex: 1, Notes: "no identity at all"},
	}

	res := Resolve(records, "AT")
	require.Len(t, res.Clusters, 2)
	require.Len(t, res.ZeroKey, 1)
	assert.Equal(t, 1, res.ZeroKey[0])

	c := clusterFor(t, res, model.RecordRef{SourceName: "phone", SourceIndex: 1})
	assert.Len(t, c.Members, 1)
}

func TestResolve_NameOnlyMatchTwoSources(t *testing.T) {
	records := []model.SourceRecord{
		rec("phone", 0, "Claudia Platzer", "", ""),
		rec("gmail", 0, "claudia PLATZER", "", ""),
	}

	res := Resolve(records, "AT")
	require.Len(t, res.Clusters, 1, "a name match across two sources merges")
}

func TestResolve_NameOnlyMatchThreeSourcesWithheld(t *testing.T) {
	records := []model.SourceRecord{
		rec("phone", 0, "Max Muster", "", ""),
		rec("gmail", 0, "Max Muster", "", ""),
		rec("work", 0, "Max Muster", "", ""),
	}

	res := Resolve(records, "AT")
	assert.Len(t, res.Clusters, 3, "a name shared by three sources is too ambiguous to merge on")
}

func TestResolve_ThreeSourcesNameWithEmailStillMerges(t *testing.T) {
	records := []model.SourceRecord{
		rec("phone", 0, "Max Muster", "max@example.com", ""),
		rec("gmail", 0, "Max Muster", "max@example.com", ""),
		rec("work", 0, "Max Muster", "max@example.com", ""),
	}

	res := Resolve(records, "AT")
	assert.Len(t, res.Clusters, 1, "shared email carries identity regardless of source count")
}

func TestResolve_ManyRecordsTwoSourcesNameMerges(t *testing.T) {
	// The bound counts distinct sources, not records.
	records := []model.SourceRecord{
		rec("phone", 0, "Max Muster", "", ""),
		rec("phone", 1, "Max Muster", "", ""),
		rec("gmail", 0, "Max Muster", "", ""),
	}

	res := Resolve(records, "AT")
	assert.Len(t, res.Clusters, 1)
}

func TestResolve_OrderIndependent(t *testing.T) {
	records := []model.SourceRecord{
		rec("phone", 0, "Claudia Platzer", "claudia@example.com", ""),
		rec("gmail", 0, "claudia.platzer", "claudia@example.com", "0699 1234567"),
		rec("work", 0, "Anna Schmidt", "anna@firma.at", ""),
		rec("phone", 1, "A. Schmidt", "anna@firma.at", ""),
	}
	reversed := make([]model.SourceRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	a := Resolve(records, "AT")
	b := Resolve(reversed, "AT")

	require.Len(t, a.Clusters, len(b.Clusters))
	for i := range a.Clusters {
		assert.Equal(t, a.Clusters[i].ContactID, b.Clusters[i].ContactID)
		assert.ElementsMatch(t, a.Clusters[i].Members, b.Clusters[i].Members)
	}
}

func TestContactID_StableUnderMemberOrder(t *testing.T) {
	refs := []model.RecordRef{
		{SourceName: "phone", SourceIndex: 3},
		{SourceName: "gmail", SourceIndex: 0},
	}
	swapped := []model.RecordRef{refs[1], refs[0]}

	assert.Equal(t, ContactID(refs), ContactID(swapped))
	assert.Len(t, ContactID(refs), 16)
}

func TestContactID_DistinctMembersDistinctIDs(t *testing.T) {
	a := ContactID([]model.RecordRef{{SourceName: "phone", SourceIndex: 0}})
	b := ContactID([]model.RecordRef{{SourceName: "phone", SourceIndex: 1}})
	assert.NotEqual(t, a, b)
}
