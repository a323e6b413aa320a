package metadata

import "github.com/mxfgo/mxf/ulid"

// Set is a single node in the header metadata object graph: the open
// variant type described in spec §9 Design Notes. Items are keyed by their
// 16-byte item key (not by local tag, which is a per-file write-time
// assignment). A set whose Key is unknown to the data model at read time is
// preserved as an Opaque set so re-write round-trips (spec §4.5).
type Set struct {
	Key         ulid.Key
	InstanceUID ulid.UUID
	Items       map[ulid.Key]Value

	// Opaque holds the set's raw encoded bytes when Key was not recognized
	// by the data model at read time. When Opaque is non-nil, Items is
	// unused and the set is re-emitted byte-for-byte on write.
	Opaque []byte
}

// NewSet creates an empty set with the given key and a freshly assigned
// instance UID (callers typically get the UID from a session-wide
// generator; NewSet itself does not generate one).
func NewSet(key ulid.Key, instanceUID ulid.UUID) *Set {
	return &Set{
		Key:         key,
		InstanceUID: instanceUID,
		Items:       make(map[ulid.Key]Value),
	}
}

// IsOpaque reports whether s was read as an opaque (unknown-to-data-model)
// set.
func (s *Set) IsOpaque() bool {
	return s.Opaque != nil
}

// Set assigns v to item itemKey.
func (s *Set) Set(itemKey ulid.Key, v Value) {
	s.Items[itemKey] = v
}

// Get returns the value at itemKey.
func (s *Set) Get(itemKey ulid.Key) (Value, bool) {
	v, ok := s.Items[itemKey]

	return v, ok
}

// References returns every instance UID referenced by any item in s, owning
// or not, in map-iteration order (callers that need a deterministic write
// order consult Graph's breadth-first traversal instead).
func (s *Set) References() []ulid.UUID {
	var refs []ulid.UUID
	for _, v := range s.Items {
		refs = append(refs, v.ReferencedUUIDs()...)
	}

	return refs
}
