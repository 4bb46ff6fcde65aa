package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Checksum returns a hex sha256 fingerprint of v's canonical JSON encoding.
// encoding/json sorts map keys and emits struct fields in declaration
// order, so equal values always produce equal fingerprints.
func Checksum(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Domain payloads are plain data types; marshalling them cannot
		// fail unless a payload grows an unsupported field type.
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Equal reports whether two values have identical canonical encodings.
// Used for change detection: a stable checksum means a write can be skipped.
func Equal(a, b any) bool {
	return Checksum(a) == Checksum(b)
}
