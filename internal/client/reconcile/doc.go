// Package reconcile holds the pure merge logic of the sync engine.
//
// # Overview
//
// One function per data domain takes the local value, a single logical
// remote value, both sides' metadata and a strategy, and returns a
// ReconciliationResult: the merged value plus every detected conflict.
// Nothing in this package performs I/O; callers persist and upload the
// result.
//
// When the backend returns several per-device records for a domain, the
// Fold* functions collapse them into one logical remote value first, using
// the same strategy vocabulary. Records are folded in (lastUpdated,
// deviceId) order, so the outcome does not depend on the order the backend
// listed them in.
//
// # Null handling
//
// All reconcile functions share one rule: two nil sides yield an empty
// default with no conflict, one nil side yields the other side verbatim
// with no conflict, and only two non-nil sides are actually compared.
//
// # Conflicts
//
// A Conflict entry is recorded whenever a strategy had to pick a winner
// between two populated, differing values. Pure unions that keep both
// sides' data do not produce conflicts.
package reconcile
