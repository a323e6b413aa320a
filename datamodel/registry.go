// Package datamodel holds the set/item definition registry that the
// metadata object graph is read and written against: which sets exist,
// which item keys belong to which set (including inherited items), each
// item's local tag, type id, and whether it is required (spec §4.4).
package datamodel

import (
	"fmt"

	"github.com/mxfgo/mxf/internal/hash"
	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/ulid"
)

// TypeID enumerates the item value shapes spec §3 lists under "Item values
// are one of...".
type TypeID uint8

const (
	TypeUnknown TypeID = iota
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeInt32
	TypeBool
	TypeRational
	TypeTimestamp
	TypeLabel
	TypeUUID
	TypeUMID
	TypeFixedBytes
	TypeIndirect
	TypeUTF16String
	TypeStrongRef
	TypeWeakRef
	TypeStrongRefBatch
	TypeStrongRefArray
	TypeWeakRefBatch
	TypeWeakRefArray
)

// SetDef describes one registered set definition.
type SetDef struct {
	Name   string
	Key    ulid.Key
	Parent ulid.Key // zero value means no parent
}

// ItemDef describes one registered item definition, owned by a set.
type ItemDef struct {
	Name       string
	SetKey     ulid.Key
	ItemKey    ulid.Key
	LocalTag   uint16 // 0 means "not standard, assign from 0x8000 at write time"
	Type       TypeID
	IsRequired bool
}

// Registry holds the full set/item definition model for one data model
// instance (the built-in SMPTE registry, optionally layered with extension
// definitions). It must be finalized before use by metadata.Graph.
type Registry struct {
	sets  map[uint64]*SetDef
	items map[uint64][]*ItemDef // keyed by set key hash

	finalized bool
	// flatItems is populated by Finalize: for each set key hash, the full
	// transitive item list including inherited items.
	flatItems map[uint64][]*ItemDef
}

// NewRegistry creates an empty registry. Callers typically start from
// NewSMPTERegistry instead, to seed the built-in set/item definitions.
func NewRegistry() *Registry {
	return &Registry{
		sets:  make(map[uint64]*SetDef),
		items: make(map[uint64][]*ItemDef),
	}
}

// RegisterSetDef registers a set definition. parent may be the zero key to
// indicate no parent.
func (r *Registry) RegisterSetDef(name string, parent ulid.Key, key ulid.Key) error {
	if r.finalized {
		return fmt.Errorf("%w: registry already finalized", mxferrs.ErrSetDefCollision)
	}

	h := hash.Label(key)
	if _, exists := r.sets[h]; exists {
		return fmt.Errorf("%w: set %q (key %s)", mxferrs.ErrSetDefCollision, name, ulid.Label(key))
	}

	r.sets[h] = &SetDef{Name: name, Key: key, Parent: parent}

	return nil
}

// RegisterItemDef registers an item definition owned by setKey.
func (r *Registry) RegisterItemDef(name string, setKey, itemKey ulid.Key, localTag uint16, typeID TypeID, isRequired bool) error {
	if r.finalized {
		return fmt.Errorf("%w: registry already finalized", mxferrs.ErrSetDefCollision)
	}

	setHash := hash.Label(setKey)
	def := &ItemDef{
		Name:       name,
		SetKey:     setKey,
		ItemKey:    itemKey,
		LocalTag:   localTag,
		Type:       typeID,
		IsRequired: isRequired,
	}
	r.items[setHash] = append(r.items[setHash], def)

	return nil
}

// RegisterExtension layers a batch of set and item definitions onto the
// registry in one call, e.g. an application's D3 preservation schema or the
// Avid MetaDictionary/Dictionary definitions (spec §4.4 "Applications may
// layer additional extension definitions").
func (r *Registry) RegisterExtension(name string, sets []SetDef, items []ItemDef) error {
	for _, s := range sets {
		if err := r.RegisterSetDef(s.Name, s.Parent, s.Key); err != nil {
			return fmt.Errorf("extension %q: %w", name, err)
		}
	}
	for _, i := range items {
		if err := r.RegisterItemDef(i.Name, i.SetKey, i.ItemKey, i.LocalTag, i.Type, i.IsRequired); err != nil {
			return fmt.Errorf("extension %q: %w", name, err)
		}
	}

	return nil
}

// Finalize resolves each set definition's transitive parent chain and
// materializes a flat item-definition list per set, so that an item defined
// on an ancestor set is recognized as belonging to every descendant.
func (r *Registry) Finalize() error {
	if r.finalized {
		return nil
	}

	r.flatItems = make(map[uint64][]*ItemDef, len(r.sets))

	for setHash, def := range r.sets {
		chain, err := r.ancestorChain(def, make(map[uint64]bool))
		if err != nil {
			return err
		}

		var flat []*ItemDef
		seen := make(map[uint64]int)
		// chain[0] is def itself, chain[len-1] is the root ancestor; walk
		// root-to-leaf so a descendant's own item definitions can shadow an
		// ancestor's by item key.
		for i := len(chain) - 1; i >= 0; i-- {
			ancestorHash := hash.Label(chain[i].Key)
			for _, item := range r.items[ancestorHash] {
				itemHash := hash.Label(item.ItemKey)
				if at, ok := seen[itemHash]; ok {
					flat[at] = item
					continue
				}
				seen[itemHash] = len(flat)
				flat = append(flat, item)
			}
		}

		r.flatItems[setHash] = flat
	}

	r.finalized = true

	return nil
}

// ancestorChain returns def followed by each ancestor up to the root,
// detecting cycles.
func (r *Registry) ancestorChain(def *SetDef, visited map[uint64]bool) ([]*SetDef, error) {
	h := hash.Label(def.Key)
	if visited[h] {
		return nil, fmt.Errorf("%w: at set %q", mxferrs.ErrSchemaCycle, def.Name)
	}
	visited[h] = true

	chain := []*SetDef{def}
	if def.Parent.IsZero() {
		return chain, nil
	}

	parentHash := hash.Label(def.Parent)
	parent, ok := r.sets[parentHash]
	if !ok {
		return nil, fmt.Errorf("%w: set %q parent %s is not registered", mxferrs.ErrUnknownSet, def.Name, ulid.Label(def.Parent))
	}

	rest, err := r.ancestorChain(parent, visited)
	if err != nil {
		return nil, err
	}

	return append(chain, rest...), nil
}

// IsKnownSet reports whether key names a registered set.
func (r *Registry) IsKnownSet(key ulid.Key) bool {
	_, ok := r.sets[hash.Label(key)]

	return ok
}

// SetDefFor returns the set definition for key.
func (r *Registry) SetDefFor(key ulid.Key) (*SetDef, bool) {
	def, ok := r.sets[hash.Label(key)]

	return def, ok
}

// ItemsFor returns the full, inheritance-flattened item list for the set
// named by key. Finalize must have been called first.
func (r *Registry) ItemsFor(setKey ulid.Key) ([]*ItemDef, error) {
	if !r.finalized {
		return nil, fmt.Errorf("%w: registry not finalized", mxferrs.ErrUnknownSet)
	}

	return r.flatItems[hash.Label(setKey)], nil
}

// ItemDefFor returns the item definition for itemKey within setKey's
// flattened item list.
func (r *Registry) ItemDefFor(setKey, itemKey ulid.Key) (*ItemDef, error) {
	items, err := r.ItemsFor(setKey)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.ItemKey == itemKey {
			return item, nil
		}
	}

	return nil, fmt.Errorf("%w: item %s not found in set %s", mxferrs.ErrUnknownItem, ulid.Label(itemKey), ulid.Label(setKey))
}

// RequiredItems returns the subset of ItemsFor(setKey) marked required.
func (r *Registry) RequiredItems(setKey ulid.Key) ([]*ItemDef, error) {
	items, err := r.ItemsFor(setKey)
	if err != nil {
		return nil, err
	}

	var required []*ItemDef
	for _, item := range items {
		if item.IsRequired {
			required = append(required, item)
		}
	}

	return required, nil
}
