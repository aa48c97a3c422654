// Package query implements the restricted SELECT/CONSTRUCT interpreter that
// runs against a store.Graph.
//
// The grammar is deliberately small:
//
//	SELECT <vars|*> WHERE { patterns } [LIMIT n]
//	CONSTRUCT { templates } WHERE { patterns } [LIMIT n]
//
// A pattern or template line is "subject predicate object", terminated by a
// period. A ?-prefixed token is a variable; "…", "…"^^<dt>, "…"@lang and _:id
// denote plain, typed and language-tagged literals and anonymous nodes. This
// is not a SPARQL engine: no property paths, no ORDER BY, no aggregation.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/liliang-cn/semgraph/pkg/rdf"
)

// Kind distinguishes the two query forms.
type Kind int

const (
	// KindSelect is a SELECT query producing variable bindings.
	KindSelect Kind = iota
	// KindConstruct is a CONSTRUCT query producing new triples.
	KindConstruct
)

// Component is one slot of a pattern or template: either a variable or a
// concrete term.
type Component struct {
	Var  string   // variable name, without the "?" prefix; "" if concrete
	Term rdf.Term // concrete term; nil if variable
}

// Variable creates a variable component.
func Variable(name string) Component { return Component{Var: name} }

// Concrete creates a concrete-term component.
func Concrete(t rdf.Term) Component { return Component{Term: t} }

// IsVar reports whether the component is a variable.
func (c Component) IsVar() bool { return c.Var != "" }

// Pattern is one subject-predicate-object line of a WHERE or CONSTRUCT block.
type Pattern struct {
	Subject   Component
	Predicate Component
	Object    Component
}

// Query is a parsed SELECT or CONSTRUCT query.
type Query struct {
	Kind      Kind
	Vars      []string  // requested SELECT variables; nil means "*"
	Patterns  []Pattern // WHERE block, in source order
	Templates []Pattern // CONSTRUCT block; unresolved until execution
	Limit     int       // 0 means no limit
}

var (
	selectRe    = regexp.MustCompile(`(?is)^\s*SELECT\s+(.*?)\s+WHERE\s*\{(.*)\}\s*(?:LIMIT\s+(\d+)\s*)?$`)
	constructRe = regexp.MustCompile(`(?is)^\s*CONSTRUCT\s*\{(.*?)\}\s*WHERE\s*\{(.*)\}\s*(?:LIMIT\s+(\d+)\s*)?$`)

	// Pattern blocks split on a period followed by whitespace or end of block.
	// Literal values containing that exact substring are mis-split; there is
	// no escaping mechanism. See DESIGN.md.
	patternSplitRe = regexp.MustCompile(`\.\s+|\.\s*$`)
)

// Parse parses query text into a Query. Text that does not match the
// top-level SELECT or CONSTRUCT shape fails with an error matching
// ErrBadQuery. An empty WHERE block is valid and yields a query with no
// patterns.
func Parse(text string) (*Query, error) {
	if m := selectRe.FindStringSubmatch(text); m != nil {
		return &Query{
			Kind:     KindSelect,
			Vars:     parseVarList(m[1]),
			Patterns: parseBlock(m[2]),
			Limit:    parseLimit(m[3]),
		}, nil
	}
	if m := constructRe.FindStringSubmatch(text); m != nil {
		return &Query{
			Kind:      KindConstruct,
			Templates: parseBlock(m[1]),
			Patterns:  parseBlock(m[2]),
			Limit:     parseLimit(m[3]),
		}, nil
	}
	return nil, wrapError("parse", fmt.Errorf("%w: %q", ErrBadQuery, truncate(text, 80)))
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func parseLimit(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseVarList parses the SELECT variable list. "*" selects all variables,
// represented as nil. Tokens without the "?" prefix are ignored.
func parseVarList(list string) []string {
	vars := []string{}
	for _, tok := range strings.Fields(list) {
		if tok == "*" {
			return nil
		}
		if strings.HasPrefix(tok, "?") && len(tok) > 1 {
			vars = append(vars, tok[1:])
		}
	}
	return vars
}

// parseBlock parses a WHERE or CONSTRUCT block into patterns. Empty lines and
// lines with fewer than three tokens are silently dropped. Concrete object
// tokens go through the literal-shape classifier in both WHERE and CONSTRUCT
// blocks, so that bare tokens like 42 or true denote the same literal in a
// pattern as in a template.
func parseBlock(block string) []Pattern {
	patterns := []Pattern{}
	for _, line := range patternSplitRe.Split(block, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		toks := splitTokens(line)
		if len(toks) < 3 {
			continue
		}
		patterns = append(patterns, Pattern{
			Subject:   parseComponent(toks[0], false),
			Predicate: parseComponent(toks[1], false),
			Object:    parseComponent(toks[2], true),
		})
	}
	return patterns
}

func parseComponent(tok string, object bool) Component {
	if strings.HasPrefix(tok, "?") && len(tok) > 1 {
		return Variable(tok[1:])
	}
	if object {
		return Concrete(ClassifyObject(tok))
	}
	return Concrete(ParseTerm(tok))
}

// splitTokens splits a pattern line on whitespace, keeping quoted literals
// (including their ^^<dt> or @lang suffix) as single tokens.
func splitTokens(line string) []string {
	var toks []string
	var b strings.Builder
	inQuote := false
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			b.WriteRune(r)
			escaped = true
		case r == '"':
			inQuote = !inQuote
			b.WriteRune(r)
		case !inQuote && unicode.IsSpace(r):
			if b.Len() > 0 {
				toks = append(toks, b.String())
				b.Reset()
			}
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		toks = append(toks, b.String())
	}
	return toks
}

// ParseTerm parses a single non-variable token into a term. Quoted tokens
// become literals (with optional ^^<dt> or @lang suffix), _:id becomes an
// anonymous node, <iri> loses its angle brackets, everything else is taken as
// a bare identifier. The function is total: unparseable token shapes degrade
// to identifier nodes.
func ParseTerm(tok string) rdf.Term {
	switch {
	case strings.HasPrefix(tok, "_:"):
		return rdf.NewBlankNode(tok[2:])
	case strings.HasPrefix(tok, `"`):
		return parseLiteral(tok)
	case strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">") && len(tok) > 2:
		return rdf.NewIRI(tok[1 : len(tok)-1])
	default:
		return rdf.NewIRI(tok)
	}
}

func parseLiteral(tok string) rdf.Term {
	end := closingQuote(tok)
	if end < 0 {
		// Unterminated quote: treat the raw token as an identifier.
		return rdf.NewIRI(tok)
	}
	value := unescape(tok[1:end])
	rest := tok[end+1:]
	switch {
	case strings.HasPrefix(rest, "^^"):
		dt := strings.TrimPrefix(rest, "^^")
		dt = strings.TrimPrefix(dt, "<")
		dt = strings.TrimSuffix(dt, ">")
		return rdf.NewTypedLiteral(value, dt)
	case strings.HasPrefix(rest, "@") && len(rest) > 1:
		return rdf.NewLangLiteral(value, rest[1:])
	default:
		return rdf.NewLiteral(value)
	}
}

// closingQuote returns the index of the closing unescaped quote, or -1.
func closingQuote(tok string) int {
	escaped := false
	for i := 1; i < len(tok); i++ {
		switch {
		case escaped:
			escaped = false
		case tok[i] == '\\':
			escaped = true
		case tok[i] == '"':
			return i
		}
	}
	return -1
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}
