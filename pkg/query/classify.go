package query

import (
	"regexp"
	"strings"

	"github.com/liliang-cn/semgraph/pkg/rdf"
)

var (
	integerRe = regexp.MustCompile(`^[+-]?\d+$`)
	doubleRe  = regexp.MustCompile(`^[+-]?(?:\d+\.\d*|\.\d+)(?:[eE][+-]?\d+)?$`)
)

// ClassifyObject maps a raw object token to a term using a fixed check order:
//
//  1. quoted string  → plain, typed or language-tagged literal
//  2. true / false   → xsd:boolean literal
//  3. _: prefix      → anonymous node
//  4. integer form   → xsd:integer literal
//  5. decimal form   → xsd:double literal
//  6. anything else  → identifier node
//
// The order is part of the contract: "true" quoted is a string, bare true is
// a boolean.
func ClassifyObject(token string) rdf.Term {
	switch {
	case strings.HasPrefix(token, `"`):
		return parseLiteral(token)
	case token == "true" || token == "false":
		return rdf.NewTypedLiteral(token, rdf.XSDBoolean)
	case strings.HasPrefix(token, "_:"):
		return rdf.NewBlankNode(strings.TrimPrefix(token, "_:"))
	case integerRe.MatchString(token):
		return rdf.NewTypedLiteral(token, rdf.XSDInteger)
	case doubleRe.MatchString(token):
		return rdf.NewTypedLiteral(token, rdf.XSDDouble)
	default:
		return ParseTerm(token)
	}
}
