package model

// KeyKind is the field a normalized key was derived from.
type KeyKind string

const (
	KeyKindName  KeyKind = "name"
	KeyKindEmail KeyKind = "email"
	KeyKindPhone KeyKind = "phone"
)

// NormalizedKey is a typed canonical string derived from one identity-bearing
// field. Records sharing any key are candidates for the same cluster.
type NormalizedKey struct {
	Kind  KeyKind `json:"kind"`
	Value string  `json:"value"`
}

// String renders "kind:value", the form used in map keys and audit output.
func (k NormalizedKey) String() string {
	return string(k.Kind) + ":" + k.Value
}
