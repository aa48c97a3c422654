package query

import (
	"errors"
	"fmt"
	"testing"

	"github.com/liliang-cn/semgraph/pkg/rdf"
	"github.com/liliang-cn/semgraph/pkg/store"
)

func buildGraph(triples ...[3]string) *store.Graph {
	g := store.New()
	for _, t := range triples {
		g.Add(rdf.NewTriple(rdf.NewIRI(t[0]), rdf.NewIRI(t[1]), rdf.NewIRI(t[2])))
	}
	return g
}

func mustParse(t *testing.T, text string) *Query {
	t.Helper()
	q, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", text, err)
	}
	return q
}

func TestSelectSinglePattern(t *testing.T) {
	g := buildGraph(
		[3]string{"ex:A", "ex:type", "ex:Person"},
		[3]string{"ex:B", "ex:type", "ex:Person"},
		[3]string{"ex:C", "ex:type", "ex:Place"},
	)
	e := NewEngine(g)

	rows, err := e.Select(mustParse(t, "SELECT ?s WHERE { ?s ex:type ex:Person }"))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Match order is insertion order.
	if rows[0]["s"] != "ex:A" || rows[1]["s"] != "ex:B" {
		t.Errorf("rows = %v, want [{s:ex:A} {s:ex:B}]", rows)
	}
}

func TestSelectMultiPatternJoin(t *testing.T) {
	g := buildGraph(
		[3]string{"ex:A", "ex:knows", "ex:B"},
		[3]string{"ex:B", "ex:knows", "ex:C"},
		[3]string{"ex:C", "ex:knows", "ex:D"},
	)
	e := NewEngine(g)

	rows, err := e.Select(mustParse(t, "SELECT ?x ?z WHERE { ?x ex:knows ?y . ?y ex:knows ?z }"))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	want := []Binding{
		{"x": "ex:A", "z": "ex:C"},
		{"x": "ex:B", "z": "ex:D"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %v", len(rows), len(want), rows)
	}
	for i := range want {
		for k, v := range want[i] {
			if rows[i][k] != v {
				t.Errorf("row %d: %v, want %v", i, rows[i], want[i])
			}
		}
	}
}

func TestSelectStarBindsAllVariables(t *testing.T) {
	g := buildGraph([3]string{"ex:A", "ex:knows", "ex:B"})
	e := NewEngine(g)

	rows, err := e.Select(mustParse(t, "SELECT * WHERE { ?s ?p ?o }"))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row["s"] != "ex:A" || row["p"] != "ex:knows" || row["o"] != "ex:B" {
		t.Errorf("row = %v", row)
	}
}

func TestSelectLimit(t *testing.T) {
	g := store.New()
	for i := 0; i < 10; i++ {
		g.Add(rdf.NewTriple(rdf.NewIRI(fmt.Sprintf("ex:s%d", i)), rdf.NewIRI("ex:p"), rdf.NewIRI("ex:o")))
	}
	e := NewEngine(g)

	rows, err := e.Select(mustParse(t, "SELECT ?s WHERE { ?s ex:p ex:o } LIMIT 3"))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, row := range rows {
		want := fmt.Sprintf("ex:s%d", i)
		if row["s"] != want {
			t.Errorf("row %d = %v, want s=%s", i, row, want)
		}
	}
}

func TestSelectEmptyWhere(t *testing.T) {
	e := NewEngine(buildGraph([3]string{"ex:A", "ex:p", "ex:B"}))

	rows, err := e.Select(mustParse(t, "SELECT ?s WHERE { }"))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestConstructJoin(t *testing.T) {
	g := buildGraph(
		[3]string{"ex:A", "ex:knows", "ex:B"},
		[3]string{"ex:B", "ex:knows", "ex:C"},
	)
	e := NewEngine(g)

	q := mustParse(t, "CONSTRUCT { ?x ex:indirectlyKnows ?z } WHERE { ?x ex:knows ?y . ?y ex:knows ?z }")
	out, err := e.Construct(q)
	if err != nil {
		t.Fatalf("Construct() error = %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("got %d triples, want 1: %v", len(out), out)
	}
	want := rdf.NewTriple(rdf.NewIRI("ex:A"), rdf.NewIRI("ex:indirectlyKnows"), rdf.NewIRI("ex:C"))
	if !out[0].Equals(want) {
		t.Errorf("triple = %v, want %v", out[0], want)
	}
}

func TestConstructCrossStepForDisjointPatterns(t *testing.T) {
	g := buildGraph(
		[3]string{"ex:A", "ex:type", "ex:Person"},
		[3]string{"ex:B", "ex:type", "ex:Person"},
		[3]string{"ex:X", "ex:type", "ex:Place"},
	)
	e := NewEngine(g)

	q := mustParse(t, "CONSTRUCT { ?p ex:visited ?l } WHERE { ?p ex:type ex:Person . ?l ex:type ex:Place }")
	out, err := e.Construct(q)
	if err != nil {
		t.Fatalf("Construct() error = %v", err)
	}

	// 2 persons x 1 place.
	if len(out) != 2 {
		t.Fatalf("got %d triples, want 2: %v", len(out), out)
	}
}

func TestConstructDropsUnresolvedTemplates(t *testing.T) {
	g := buildGraph([3]string{"ex:A", "ex:knows", "ex:B"})
	e := NewEngine(g)

	q := mustParse(t, "CONSTRUCT { ?x ex:p ?missing . ?x ex:selfKnown true } WHERE { ?x ex:knows ?y }")
	out, err := e.Construct(q)
	if err != nil {
		t.Fatalf("Construct() error = %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("got %d triples, want 1 (unresolved template dropped whole): %v", len(out), out)
	}
	obj, ok := out[0].Object.(rdf.Literal)
	if !ok || obj.Datatype() != rdf.XSDBoolean {
		t.Errorf("object = %v, want boolean literal", out[0].Object)
	}
}

func TestConstructDeduplicates(t *testing.T) {
	g := buildGraph(
		[3]string{"ex:A", "ex:knows", "ex:B"},
		[3]string{"ex:A", "ex:knows", "ex:C"},
	)
	e := NewEngine(g)

	q := mustParse(t, "CONSTRUCT { ?x ex:social true } WHERE { ?x ex:knows ?y }")
	out, err := e.Construct(q)
	if err != nil {
		t.Fatalf("Construct() error = %v", err)
	}
	if len(out) != 1 {
		t.Errorf("got %d triples, want 1 after dedup: %v", len(out), out)
	}
}

func TestConstructLimit(t *testing.T) {
	g := store.New()
	for i := 0; i < 10; i++ {
		g.Add(rdf.NewTriple(rdf.NewIRI(fmt.Sprintf("ex:s%d", i)), rdf.NewIRI("ex:p"), rdf.NewIRI("ex:o")))
	}
	e := NewEngine(g)

	q := mustParse(t, "CONSTRUCT { ?s ex:seen true } WHERE { ?s ex:p ex:o } LIMIT 3")
	out, err := e.Construct(q)
	if err != nil {
		t.Fatalf("Construct() error = %v", err)
	}
	if len(out) != 3 {
		t.Errorf("got %d triples, want 3", len(out))
	}
}

func TestRepeatedVariableInPattern(t *testing.T) {
	g := buildGraph(
		[3]string{"ex:A", "ex:knows", "ex:A"},
		[3]string{"ex:A", "ex:knows", "ex:B"},
	)
	e := NewEngine(g)

	rows, err := e.Select(mustParse(t, "SELECT ?x WHERE { ?x ex:knows ?x }"))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(rows) != 1 || rows[0]["x"] != "ex:A" {
		t.Errorf("rows = %v, want single self-loop binding", rows)
	}
}

func TestKindMismatch(t *testing.T) {
	e := NewEngine(store.New())
	sel := mustParse(t, "SELECT ?s WHERE { ?s ?p ?o }")
	con := mustParse(t, "CONSTRUCT { ?s ex:p ex:o } WHERE { ?s ?p ?o }")

	if _, err := e.Construct(sel); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("Construct(select) error = %v, want ErrKindMismatch", err)
	}
	if _, err := e.Select(con); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("Select(construct) error = %v, want ErrKindMismatch", err)
	}
}

func TestLiteralObjectsInQueries(t *testing.T) {
	g := store.New()
	g.Add(rdf.NewTriple(rdf.NewIRI("ex:a"), rdf.NewIRI("ex:age"), rdf.NewTypedLiteral("30", rdf.XSDInteger)))
	g.Add(rdf.NewTriple(rdf.NewIRI("ex:a"), rdf.NewIRI("ex:name"), rdf.NewLiteral("Alice")))
	e := NewEngine(g)

	rows, err := e.Select(mustParse(t, "SELECT ?s WHERE { ?s ex:age 30 }"))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(rows) != 1 || rows[0]["s"] != "ex:a" {
		t.Errorf("integer object match rows = %v", rows)
	}

	rows, err = e.Select(mustParse(t, `SELECT ?s WHERE { ?s ex:name "Alice" }`))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(rows) != 1 || rows[0]["s"] != "ex:a" {
		t.Errorf("string object match rows = %v", rows)
	}
}
