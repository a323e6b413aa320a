package datamodel

import (
	"fmt"

	"github.com/mxfgo/mxf/internal/hash"
	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/ulid"
)

// InstanceUIDTracker enforces spec §3's invariant that every set has a
// unique instance UID within the file. metadata.Graph consults it on every
// set attachment.
type InstanceUIDTracker struct {
	seen map[uint64]ulid.UUID
}

// NewInstanceUIDTracker creates an empty tracker.
func NewInstanceUIDTracker() *InstanceUIDTracker {
	return &InstanceUIDTracker{seen: make(map[uint64]ulid.UUID)}
}

// Track records id as used, returning an error if id was already tracked.
func (t *InstanceUIDTracker) Track(id ulid.UUID) error {
	h := hash.Label([16]byte(id))
	if existing, ok := t.seen[h]; ok && existing == id {
		return fmt.Errorf("%w: instance UID %s already present in graph", mxferrs.ErrDuplicateTag, id)
	}

	t.seen[h] = id

	return nil
}

// Count returns the number of distinct instance UIDs tracked.
func (t *InstanceUIDTracker) Count() int {
	return len(t.seen)
}
