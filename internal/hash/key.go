// Package hash provides xxHash64-based fingerprinting for the data model
// registry's fast-path lookups (set/item definitions keyed by a 16-byte
// label) and for the metadata container's collision tracker.
package hash

import "github.com/cespare/xxhash/v2"

// Label computes the xxHash64 fingerprint of a 16-byte label, used as the
// registry's hash-map key so lookups don't compare label bytes directly
// during the hot path of resolving an item's set.
func Label(label [16]byte) uint64 {
	return xxhash.Sum64(label[:])
}

// String computes the xxHash64 fingerprint of a string.
func String(s string) uint64 {
	return xxhash.Sum64String(s)
}
