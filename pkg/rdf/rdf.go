// Package rdf provides the node and triple value types used throughout semgraph.
//
// Terms are small immutable values. Every term exposes a canonical string form
// through String(), and that string is the surrogate equality and hash key used
// by the store and the query engine: two terms are the same term exactly when
// their canonical forms are equal.
//
// Construction is best-effort. Identifier strings are accepted as given and are
// not validated against any IRI grammar.
package rdf

import (
	"fmt"

	"github.com/google/uuid"
)

// TermKind identifies the concrete kind of a Term.
type TermKind int

const (
	// KindIRI is a named resource identifier.
	KindIRI TermKind = iota
	// KindBlank is a locally scoped anonymous node.
	KindBlank
	// KindLiteral is a data value, valid only in object position.
	KindLiteral
)

// String returns the string representation of the term kind.
func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is a node usable in a triple. Implementations are comparable values;
// String returns the canonical form used for equality across the store.
type Term interface {
	// String returns the canonical form of the term.
	String() string
	// Kind reports the concrete kind of the term.
	Kind() TermKind
}

// IRI is an identifier node naming a resource. It is valid in any position.
type IRI struct {
	value string
}

// NewIRI creates an identifier node from a raw identifier string.
func NewIRI(value string) IRI {
	return IRI{value: value}
}

// String returns the identifier string itself.
func (i IRI) String() string { return i.value }

// Kind reports KindIRI.
func (i IRI) Kind() TermKind { return KindIRI }

// BlankNode is an anonymous node. It is addressable only through its local id
// and never globally; two blank nodes are equal exactly when their local ids
// are equal.
type BlankNode struct {
	id string
}

// NewBlankNode creates an anonymous node with the given local id. An empty id
// is replaced with a generated one.
func NewBlankNode(id string) BlankNode {
	if id == "" {
		id = uuid.NewString()
	}
	return BlankNode{id: id}
}

// ID returns the local id of the node.
func (b BlankNode) ID() string { return b.id }

// String returns the canonical "_:id" form.
func (b BlankNode) String() string { return "_:" + b.id }

// Kind reports KindBlank.
func (b BlankNode) Kind() TermKind { return KindBlank }

// Literal is a data value with an optional datatype identifier and an optional
// language tag. Literals are valid only in object position.
type Literal struct {
	value    string
	datatype string
	lang     string
}

// Well-known datatype identifiers assigned by the query engine's literal
// classifier.
const (
	XSDBoolean = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDouble  = "http://www.w3.org/2001/XMLSchema#double"
)

// NewLiteral creates a plain string literal.
func NewLiteral(value string) Literal {
	return Literal{value: value}
}

// NewTypedLiteral creates a literal with a datatype identifier.
func NewTypedLiteral(value, datatype string) Literal {
	return Literal{value: value, datatype: datatype}
}

// NewLangLiteral creates a language-tagged string literal.
func NewLangLiteral(value, lang string) Literal {
	return Literal{value: value, lang: lang}
}

// Value returns the lexical value of the literal.
func (l Literal) Value() string { return l.value }

// Datatype returns the datatype identifier, or "" for plain literals.
func (l Literal) Datatype() string { return l.datatype }

// Lang returns the language tag, or "" for untagged literals.
func (l Literal) Lang() string { return l.lang }

// String returns the canonical form: `"value"`, `"value"^^<datatype>` or
// `"value"@lang`.
func (l Literal) String() string {
	switch {
	case l.datatype != "":
		return fmt.Sprintf("%q^^<%s>", l.value, l.datatype)
	case l.lang != "":
		return fmt.Sprintf("%q@%s", l.value, l.lang)
	default:
		return fmt.Sprintf("%q", l.value)
	}
}

// Kind reports KindLiteral.
func (l Literal) Kind() TermKind { return KindLiteral }

// Triple is one immutable (subject, predicate, object) statement. Equality is
// pairwise equality of the canonical component forms, never identity.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple creates a statement from its three components.
func NewTriple(subject, predicate, object Term) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: object}
}

// Equals reports whether both triples have pairwise equal canonical component
// forms.
func (t Triple) Equals(other Triple) bool {
	return t.Subject.String() == other.Subject.String() &&
		t.Predicate.String() == other.Predicate.String() &&
		t.Object.String() == other.Object.String()
}

// String returns the canonical "subject predicate object" statement form.
func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String()
}
