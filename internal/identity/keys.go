// Package identity turns normalized contact fields into candidate matching
// keys. A single shared key is enough to propose a match: clustering favors
// recall, because false merges are visible and correctable at review while
// false non-merges are invisible.
package identity

import (
	"github.com/nfc18/contactplus/internal/model"
	"github.com/nfc18/contactplus/internal/normalize"
)

// Keys returns the record's candidate matching keys in deterministic order:
// name key first, then email keys in record order, then phone keys in record
// order, de-duplicated. An empty result means the record cannot be safely
// matched against anything and must become its own cluster.
func Keys(rec *model.SourceRecord, defaultRegion string) []model.NormalizedKey {
	var keys []model.NormalizedKey
	seen := make(map[model.NormalizedKey]struct{})

	add := func(k model.NormalizedKey) {
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	if v, ok := normalize.Name(rec.DisplayName); ok {
		add(model.NormalizedKey{Kind: model.KeyKindName, Value: v})
	}
	for _, e := range rec.Emails {
		if v, ok := normalize.Email(e.Address); ok {
			add(model.NormalizedKey{Kind: model.KeyKindEmail, Value: v})
		}
	}
	for _, p := range rec.Phones {
		if v, ok := normalize.Phone(p.Number, defaultRegion); ok {
			add(model.NormalizedKey{Kind: model.KeyKindPhone, Value: v})
		}
	}
	return keys
}
