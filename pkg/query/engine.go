package query

import (
	"github.com/liliang-cn/semgraph/pkg/rdf"
	"github.com/liliang-cn/semgraph/pkg/store"
)

// Binding maps a variable name (without the "?" prefix) to the canonical
// string form of the value it was bound to.
type Binding map[string]string

// binding is the executor-internal form holding the bound terms themselves.
type binding map[string]rdf.Term

func (b binding) clone() binding {
	nb := make(binding, len(b)+3)
	for k, v := range b {
		nb[k] = v
	}
	return nb
}

// Engine executes parsed queries against a graph.
type Engine struct {
	graph *store.Graph
}

// NewEngine creates an engine bound to a graph. The engine holds the graph by
// reference; it always queries the live triple set.
func NewEngine(g *store.Graph) *Engine {
	return &Engine{graph: g}
}

// Select executes a SELECT query and returns one binding per solution, in
// match order, truncated to the query's LIMIT. A query with no patterns
// yields an empty result.
//
// Multi-pattern SELECT uses the same left-deep join as CONSTRUCT.
func (e *Engine) Select(q *Query) ([]Binding, error) {
	if q.Kind != KindSelect {
		return nil, wrapError("select", ErrKindMismatch)
	}

	rows := []Binding{}
	for _, b := range e.solve(q.Patterns) {
		row := Binding{}
		if q.Vars == nil {
			for name, term := range b {
				row[name] = term.String()
			}
		} else {
			for _, name := range q.Vars {
				if term, ok := b[name]; ok {
					row[name] = term.String()
				}
			}
		}
		rows = append(rows, row)
		if q.Limit > 0 && len(rows) == q.Limit {
			break
		}
	}
	return rows, nil
}

// Construct executes a CONSTRUCT query: solves the WHERE patterns, then
// instantiates each template once per solution. A template with any unbound
// variable left is dropped whole for that solution, never partially emitted.
// Duplicate instantiations collapse to one triple. The LIMIT applies to the
// resulting triples.
func (e *Engine) Construct(q *Query) ([]rdf.Triple, error) {
	if q.Kind != KindConstruct {
		return nil, wrapError("construct", ErrKindMismatch)
	}

	out := []rdf.Triple{}
	seen := make(map[string]struct{})
	for _, b := range e.solve(q.Patterns) {
		for _, tmpl := range q.Templates {
			t, ok := instantiate(tmpl, b)
			if !ok {
				continue
			}
			key := t.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, t)
			if q.Limit > 0 && len(out) == q.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// solve runs the left-deep nested-loop join over the pattern list. Solutions
// start from a single empty binding; each pattern substitutes the variables
// already bound, matches the store, and extends every surviving binding with
// the newly discovered variables. Patterns sharing no variables combine as an
// unconditional cross step. Zero patterns solve to zero bindings.
func (e *Engine) solve(patterns []Pattern) []binding {
	if len(patterns) == 0 {
		return nil
	}

	bindings := []binding{{}}
	for _, p := range patterns {
		next := []binding{}
		for _, b := range bindings {
			s := resolveTerm(p.Subject, b)
			pr := resolveTerm(p.Predicate, b)
			o := resolveTerm(p.Object, b)
			for _, t := range e.graph.Match(s, pr, o) {
				if nb, ok := extend(b, p, t); ok {
					next = append(next, nb)
				}
			}
		}
		bindings = next
		if len(bindings) == 0 {
			break
		}
	}
	return bindings
}

// resolveTerm returns the concrete term for a component under a binding, or
// nil when the component is a still-unbound variable (a match wildcard).
func resolveTerm(c Component, b binding) rdf.Term {
	if !c.IsVar() {
		return c.Term
	}
	if t, ok := b[c.Var]; ok {
		return t
	}
	return nil
}

// extend binds the pattern's variables against a matched triple. A variable
// appearing twice in one pattern must resolve to the same term.
func extend(b binding, p Pattern, t rdf.Triple) (binding, bool) {
	nb := b.clone()
	slots := []struct {
		c    Component
		term rdf.Term
	}{
		{p.Subject, t.Subject},
		{p.Predicate, t.Predicate},
		{p.Object, t.Object},
	}
	for _, s := range slots {
		if !s.c.IsVar() {
			continue
		}
		if bound, ok := nb[s.c.Var]; ok {
			if bound.String() != s.term.String() {
				return nil, false
			}
			continue
		}
		nb[s.c.Var] = s.term
	}
	return nb, true
}

// instantiate substitutes a solution into one template. It fails when any
// variable of the template is unbound in the solution.
func instantiate(tmpl Pattern, b binding) (rdf.Triple, bool) {
	s, ok := componentTerm(tmpl.Subject, b)
	if !ok {
		return rdf.Triple{}, false
	}
	p, ok := componentTerm(tmpl.Predicate, b)
	if !ok {
		return rdf.Triple{}, false
	}
	o, ok := componentTerm(tmpl.Object, b)
	if !ok {
		return rdf.Triple{}, false
	}
	return rdf.NewTriple(s, p, o), true
}

func componentTerm(c Component, b binding) (rdf.Term, bool) {
	if !c.IsVar() {
		return c.Term, true
	}
	t, ok := b[c.Var]
	return t, ok
}
