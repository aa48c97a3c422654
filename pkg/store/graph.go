// Package store implements the in-memory indexed triple store.
//
// A Graph holds a set of triples together with three two-level indexes:
// subject→predicate→objects, predicate→object→subjects and
// object→subject→predicates. Any pattern with at least two bound components
// resolves through an index descent; one- and zero-bound patterns fall back to
// a scan over the full triple set.
//
// The graph does no internal locking. Callers that mutate it from multiple
// goroutines must serialize through a single writer one layer above; see the
// package documentation of pkg/semgraph.
package store

import (
	"sort"

	"github.com/liliang-cn/semgraph/pkg/rdf"
)

// componentSep joins canonical component forms into a triple key. Literals may
// contain spaces, so a plain space join would be ambiguous.
const componentSep = "\x1f"

func tripleKey(s, p, o string) string {
	return s + componentSep + p + componentSep + o
}

type entry struct {
	triple rdf.Triple
	seq    uint64 // insertion order, defines match order
}

// index is a two-level mapping: first component → second component → set of
// third components.
type index map[string]map[string]map[string]struct{}

func (ix index) insert(a, b, c string) {
	second, ok := ix[a]
	if !ok {
		second = make(map[string]map[string]struct{})
		ix[a] = second
	}
	leaf, ok := second[b]
	if !ok {
		leaf = make(map[string]struct{})
		second[b] = leaf
	}
	leaf[c] = struct{}{}
}

// remove deletes one leaf value and prunes emptied branches so index memory
// stays proportional to the live triple set.
func (ix index) remove(a, b, c string) {
	second, ok := ix[a]
	if !ok {
		return
	}
	leaf, ok := second[b]
	if !ok {
		return
	}
	delete(leaf, c)
	if len(leaf) == 0 {
		delete(second, b)
	}
	if len(second) == 0 {
		delete(ix, a)
	}
}

func (ix index) leaf(a, b string) map[string]struct{} {
	second, ok := ix[a]
	if !ok {
		return nil
	}
	return second[b]
}

// Graph is a set of triples with three two-level indexes. The zero value is
// not usable; create graphs with New.
type Graph struct {
	triples map[string]entry
	spo     index // subject → predicate → objects
	pos     index // predicate → object → subjects
	osp     index // object → subject → predicates
	nextSeq uint64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		triples: make(map[string]entry),
		spo:     make(index),
		pos:     make(index),
		osp:     make(index),
	}
}

// Add inserts a triple into the graph and all three indexes. Adding a triple
// that is already a member is a no-op.
func (g *Graph) Add(t rdf.Triple) {
	s, p, o := t.Subject.String(), t.Predicate.String(), t.Object.String()
	key := tripleKey(s, p, o)
	if _, ok := g.triples[key]; ok {
		return
	}
	g.triples[key] = entry{triple: t, seq: g.nextSeq}
	g.nextSeq++
	g.spo.insert(s, p, o)
	g.pos.insert(p, o, s)
	g.osp.insert(o, s, p)
}

// Remove deletes a triple from the graph and all three indexes, pruning
// emptied index branches. Removing a non-member is a no-op.
func (g *Graph) Remove(t rdf.Triple) {
	s, p, o := t.Subject.String(), t.Predicate.String(), t.Object.String()
	key := tripleKey(s, p, o)
	if _, ok := g.triples[key]; !ok {
		return
	}
	delete(g.triples, key)
	g.spo.remove(s, p, o)
	g.pos.remove(p, o, s)
	g.osp.remove(o, s, p)
}

// Has reports whether the triple is a member of the graph.
func (g *Graph) Has(t rdf.Triple) bool {
	_, ok := g.triples[tripleKey(t.Subject.String(), t.Predicate.String(), t.Object.String())]
	return ok
}

// Len returns the number of triples in the graph.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Clear removes all triples and indexes.
func (g *Graph) Clear() {
	g.triples = make(map[string]entry)
	g.spo = make(index)
	g.pos = make(index)
	g.osp = make(index)
}

// Match returns all member triples matching the pattern. A nil component is a
// wildcard. Results are in match order: the order the triples were added.
//
// Patterns with two bound components descend the matching index and resolve
// each candidate through the triple set by key. Patterns with fewer bound
// components scan the full set.
func (g *Graph) Match(subject, predicate, object rdf.Term) []rdf.Triple {
	var s, p, o string
	if subject != nil {
		s = subject.String()
	}
	if predicate != nil {
		p = predicate.String()
	}
	if object != nil {
		o = object.String()
	}

	switch {
	case subject != nil && predicate != nil && object != nil:
		// Fully bound: existence check.
		if e, ok := g.triples[tripleKey(s, p, o)]; ok {
			return []rdf.Triple{e.triple}
		}
		return []rdf.Triple{}

	case subject != nil && predicate != nil:
		return g.fromLeaf(g.spo.leaf(s, p), func(third string) string {
			return tripleKey(s, p, third)
		})

	case predicate != nil && object != nil:
		return g.fromLeaf(g.pos.leaf(p, o), func(third string) string {
			return tripleKey(third, p, o)
		})

	case subject != nil && object != nil:
		return g.fromLeaf(g.osp.leaf(o, s), func(third string) string {
			return tripleKey(s, third, o)
		})

	default:
		// One or zero bound components: scan the full set.
		return g.scan(subject, predicate, object)
	}
}

// fromLeaf resolves an index leaf back to triples via the triple set, ordered
// by insertion.
func (g *Graph) fromLeaf(leaf map[string]struct{}, key func(third string) string) []rdf.Triple {
	if len(leaf) == 0 {
		return []rdf.Triple{}
	}
	entries := make([]entry, 0, len(leaf))
	for third := range leaf {
		if e, ok := g.triples[key(third)]; ok {
			entries = append(entries, e)
		}
	}
	return sorted(entries)
}

func (g *Graph) scan(subject, predicate, object rdf.Term) []rdf.Triple {
	entries := make([]entry, 0, len(g.triples))
	for _, e := range g.triples {
		if subject != nil && e.triple.Subject.String() != subject.String() {
			continue
		}
		if predicate != nil && e.triple.Predicate.String() != predicate.String() {
			continue
		}
		if object != nil && e.triple.Object.String() != object.String() {
			continue
		}
		entries = append(entries, e)
	}
	return sorted(entries)
}

func sorted(entries []entry) []rdf.Triple {
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]rdf.Triple, len(entries))
	for i, e := range entries {
		out[i] = e.triple
	}
	return out
}

// Triples returns all member triples in insertion order.
func (g *Graph) Triples() []rdf.Triple {
	entries := make([]entry, 0, len(g.triples))
	for _, e := range g.triples {
		entries = append(entries, e)
	}
	return sorted(entries)
}

// Merge adds every triple of the other graph to this graph.
func (g *Graph) Merge(other *Graph) {
	for _, t := range other.Triples() {
		g.Add(t)
	}
}

// Filter returns a new graph containing exactly the triples matching the
// pattern. A nil component is a wildcard.
func (g *Graph) Filter(subject, predicate, object rdf.Term) *Graph {
	out := New()
	for _, t := range g.Match(subject, predicate, object) {
		out.Add(t)
	}
	return out
}
