package metadata

import (
	"fmt"

	"github.com/mxfgo/mxf/datamodel"
	"github.com/mxfgo/mxf/internal/hash"
	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/ulid"
)

// Graph is the in-memory header metadata object graph: a rooted DAG whose
// root is the Preface set. Strong and weak references are resolved by
// instance UID through Graph's index, never by pointer identity (spec §9
// Design Notes point (ii)).
type Graph struct {
	Registry *datamodel.Registry

	root    *Set
	byUID   map[uint64]*Set
	tracker *datamodel.InstanceUIDTracker
}

// NewGraph creates an empty graph bound to registry, which must already be
// finalized.
func NewGraph(registry *datamodel.Registry) *Graph {
	return &Graph{
		Registry: registry,
		byUID:    make(map[uint64]*Set),
		tracker:  datamodel.NewInstanceUIDTracker(),
	}
}

// Attach registers s in the graph's instance-UID index. It does not imply
// ownership; ownership is recorded separately by whichever item's Value
// references s's instance UID with a strong-reference type.
func (g *Graph) Attach(s *Set) error {
	if err := g.tracker.Track(s.InstanceUID); err != nil {
		return err
	}

	g.byUID[hash.Label([16]byte(s.InstanceUID))] = s

	return nil
}

// SetRoot attaches s and records it as the graph's Preface root.
func (g *Graph) SetRoot(s *Set) error {
	if err := g.Attach(s); err != nil {
		return err
	}
	g.root = s

	return nil
}

// adoptRoot records s as the graph's Preface root without attaching it,
// for callers (the local-set reader) that have already called Attach
// themselves and only need to flag which attached set is the root.
func (g *Graph) adoptRoot(s *Set) {
	g.root = s
}

// Root returns the graph's Preface set, or nil if none has been set.
func (g *Graph) Root() *Set {
	return g.root
}

// Resolve looks up the set with the given instance UID.
func (g *Graph) Resolve(id ulid.UUID) (*Set, bool) {
	s, ok := g.byUID[hash.Label([16]byte(id))]

	return s, ok
}

// ResolveReference resolves v (which must be a reference-typed Value) to
// its target set, returning an error if the reference does not resolve
// (spec §3 invariant: "every strong reference points to an owned set that
// appears exactly once in the graph").
func (g *Graph) ResolveReference(v Value) (*Set, error) {
	if !v.IsReference() || v.Type == datamodel.TypeStrongRefBatch || v.Type == datamodel.TypeWeakRefBatch ||
		v.Type == datamodel.TypeStrongRefArray || v.Type == datamodel.TypeWeakRefArray {
		return nil, fmt.Errorf("%w: value is not a single reference", mxferrs.ErrUnresolvedRef)
	}

	target, ok := g.Resolve(v.Ref)
	if !ok {
		return nil, fmt.Errorf("%w: instance UID %s", mxferrs.ErrUnresolvedRef, v.Ref)
	}

	return target, nil
}

// BreadthFirstOrder returns every attached set in breadth-first order
// starting from the root, so that owners are written before dependents
// (spec §4.5 "Write"). Sets unreachable from the root (should not occur in
// a well-formed graph, but defensively included) are appended afterward in
// map-iteration order.
func (g *Graph) BreadthFirstOrder() []*Set {
	if g.root == nil {
		return nil
	}

	visited := make(map[uint64]bool)
	var order []*Set

	queue := []*Set{g.root}
	visited[hash.Label([16]byte(g.root.InstanceUID))] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)

		if cur.IsOpaque() {
			continue
		}

		for _, v := range cur.Items {
			if !v.IsOwning() {
				continue
			}
			for _, id := range v.ReferencedUUIDs() {
				h := hash.Label([16]byte(id))
				if visited[h] {
					continue
				}
				child, ok := g.byUID[h]
				if !ok {
					continue
				}
				visited[h] = true
				queue = append(queue, child)
			}
		}
	}

	for h, s := range g.byUID {
		if !visited[h] {
			order = append(order, s)
		}
	}

	return order
}
