package rdf

import (
	"strings"
	"testing"
)

func TestLiteralString(t *testing.T) {
	tests := []struct {
		name     string
		literal  Literal
		expected string
	}{
		{
			name:     "plain literal",
			literal:  NewLiteral("hello"),
			expected: `"hello"`,
		},
		{
			name:     "typed literal",
			literal:  NewTypedLiteral("42", XSDInteger),
			expected: `"42"^^<http://www.w3.org/2001/XMLSchema#integer>`,
		},
		{
			name:     "language literal",
			literal:  NewLangLiteral("bonjour", "fr"),
			expected: `"bonjour"@fr`,
		},
		{
			name:     "literal with quotes",
			literal:  NewLiteral(`say "hi"`),
			expected: `"say \"hi\""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.literal.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTermKinds(t *testing.T) {
	tests := []struct {
		name string
		term Term
		kind TermKind
	}{
		{"iri", NewIRI("ex:alice"), KindIRI},
		{"blank", NewBlankNode("b1"), KindBlank},
		{"literal", NewLiteral("v"), KindLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.term.Kind(); got != tt.kind {
				t.Errorf("Kind() = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestBlankNodeGeneratedID(t *testing.T) {
	a := NewBlankNode("")
	b := NewBlankNode("")

	if a.ID() == "" || b.ID() == "" {
		t.Fatal("generated blank node id is empty")
	}
	if a.ID() == b.ID() {
		t.Errorf("generated ids collide: %s", a.ID())
	}
	if !strings.HasPrefix(a.String(), "_:") {
		t.Errorf("String() = %q, want _: prefix", a.String())
	}
}

func TestBlankNodeEqualityByLocalID(t *testing.T) {
	a := NewBlankNode("x")
	b := NewBlankNode("x")
	c := NewBlankNode("y")

	if a.String() != b.String() {
		t.Errorf("same local id compares unequal: %q vs %q", a, b)
	}
	if a.String() == c.String() {
		t.Error("different local ids compare equal")
	}
}

func TestTripleEquals(t *testing.T) {
	base := NewTriple(NewIRI("ex:a"), NewIRI("ex:knows"), NewIRI("ex:b"))

	tests := []struct {
		name     string
		other    Triple
		expected bool
	}{
		{
			name:     "structurally equal copy",
			other:    NewTriple(NewIRI("ex:a"), NewIRI("ex:knows"), NewIRI("ex:b")),
			expected: true,
		},
		{
			name:     "different object",
			other:    NewTriple(NewIRI("ex:a"), NewIRI("ex:knows"), NewIRI("ex:c")),
			expected: false,
		},
		{
			name:     "literal object vs iri object",
			other:    NewTriple(NewIRI("ex:a"), NewIRI("ex:knows"), NewLiteral("ex:b")),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Equals(tt.other); got != tt.expected {
				t.Errorf("Equals() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTripleString(t *testing.T) {
	tr := NewTriple(NewIRI("ex:a"), NewIRI("ex:name"), NewLiteral("Alice"))
	want := `ex:a ex:name "Alice"`
	if got := tr.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
