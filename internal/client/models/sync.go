package models

import "encoding/json"

// SchemaVersion is stamped into Metadata on every write and carried in every
// uploaded device record.
const SchemaVersion = "2.0"

// Strategy names the merge policy applied when local and remote values for a
// domain disagree.
type Strategy string

const (
	// StrategyLatestWins replaces the whole value with the side whose
	// metadata is newer.
	StrategyLatestWins Strategy = "latest-wins"

	// StrategyMergeSmart compares field by field and prefers the side whose
	// value is non-empty. Note: this can silently discard an intentional
	// empty value set on one device; kept as inherited behavior.
	StrategyMergeSmart Strategy = "merge-smart"

	// StrategyMergeUnion set-unions collection values, de-duplicating by
	// value equality (or per key for keyed caches, later write winning).
	StrategyMergeUnion Strategy = "merge-union"

	// StrategyMergeByID matches items by ID and keeps the more recently
	// updated full item on both-sided matches.
	StrategyMergeByID Strategy = "merge-by-id"
)

// Metadata describes the local replica of all domains: when it last changed,
// which device wrote it, the schema version, and a content fingerprint used
// to detect no-op syncs.
type Metadata struct {
	LastModified int64  `json:"lastModified"` // epoch millis
	DeviceID     string `json:"deviceId"`
	Version      string `json:"version"`
	Checksum     string `json:"checksum"`
}

// DeviceRecord is a domain payload as last written by one specific device.
type DeviceRecord[T any] struct {
	DeviceID    string `json:"deviceId"`
	Data        T      `json:"data"`
	LastUpdated int64  `json:"lastUpdated"` // epoch millis
	Version     string `json:"version"`
}

// RawDeviceRecord is a DeviceRecord whose payload has not been decoded yet.
// The gateway returns these; the caller decodes Data into the concrete
// domain type.
type RawDeviceRecord struct {
	DeviceID    string          `json:"deviceId"`
	Data        json.RawMessage `json:"data"`
	LastUpdated int64           `json:"lastUpdated"`
	Version     string          `json:"version"`
}

// Envelope is the remote side's answer for one (user, domain) pair: either a
// list of per-device records, or a single legacy blob written before
// multi-device support, or both (a half-migrated account).
type Envelope struct {
	Devices []RawDeviceRecord `json:"devices,omitempty"`
	Legacy  json.RawMessage   `json:"legacy,omitempty"`
}

// Empty reports whether the envelope carries no data at all.
func (e *Envelope) Empty() bool {
	return e == nil || (len(e.Devices) == 0 && len(e.Legacy) == 0)
}

// Conflict records one disagreement between the local and cloud values.
// Conflicts are recorded even when a deterministic strategy silently picks a
// winner, so merges stay auditable.
type Conflict struct {
	DataType      string    `json:"dataType"` // dotted path, e.g. "main.pinnedCurrencies"
	LocalData     any       `json:"localData"`
	CloudData     any       `json:"cloudData"`
	LocalMetadata *Metadata `json:"localMetadata,omitempty"`
	CloudMetadata *Metadata `json:"cloudMetadata,omitempty"`
	Strategy      Strategy  `json:"strategy"`
}

// ReconciliationResult is the sole output type of every per-domain
// reconciliation function.
type ReconciliationResult[T any] struct {
	MergedData   T
	HasConflicts bool
	Conflicts    []Conflict
	Metadata     Metadata
}
