package console

import (
	"encoding/json"

	"orderdesk/internal/model"
)

// Fingerprint serializes a snapshot into a deterministic, order-sensitive
// form used purely for change detection. Reordered rows fingerprint
// differently on purpose: ordering comes from the backend and a reorder is a
// state change worth publishing.
func Fingerprint(snap model.OrderSnapshot) string {
	// Struct fields marshal in declaration order and slices in element order,
	// so encoding/json is already a stable structural serialization here.
	buf, err := json.Marshal(snap)
	if err != nil {
		return ""
	}
	return string(buf)
}

// Differs reports whether two fingerprints describe different snapshots.
func Differs(prev, next string) bool {
	return prev != next
}
