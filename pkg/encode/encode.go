// Package encode serializes triples to the RDF text formats the surrounding
// system exchanges: N-Triples, Turtle and JSON-LD. It consumes the graph only
// through its public triple surface and never touches the store's indexes.
package encode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/liliang-cn/semgraph/pkg/rdf"
)

// Format identifies an RDF text format.
type Format int

const (
	// FormatNTriples is line-oriented N-Triples.
	FormatNTriples Format = iota
	// FormatTurtle is Turtle with subject grouping, no prefix directives.
	FormatTurtle
	// FormatJSONLD is flattened JSON-LD, one node object per subject.
	FormatJSONLD
)

// ErrUnsupportedFormat is returned for a format this package cannot handle.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseFormat maps a format name to its Format value.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ntriples", "nt":
		return FormatNTriples, nil
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "jsonld", "json-ld", "json":
		return FormatJSONLD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// String returns the canonical format name.
func (f Format) String() string {
	switch f {
	case FormatNTriples:
		return "ntriples"
	case FormatTurtle:
		return "turtle"
	case FormatJSONLD:
		return "jsonld"
	default:
		return "unknown"
	}
}

// Encode writes triples to w in the given format.
func Encode(w io.Writer, triples []rdf.Triple, f Format) error {
	switch f {
	case FormatNTriples:
		return encodeNTriples(w, triples)
	case FormatTurtle:
		return encodeTurtle(w, triples)
	case FormatJSONLD:
		return encodeJSONLD(w, triples)
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, f)
	}
}

// formatTerm renders a term in N-Triples syntax.
func formatTerm(t rdf.Term) string {
	switch v := t.(type) {
	case rdf.IRI:
		return "<" + v.String() + ">"
	case rdf.BlankNode:
		return v.String()
	case rdf.Literal:
		s := `"` + escapeLiteral(v.Value()) + `"`
		switch {
		case v.Datatype() != "":
			return s + "^^<" + v.Datatype() + ">"
		case v.Lang() != "":
			return s + "@" + v.Lang()
		default:
			return s
		}
	default:
		return t.String()
	}
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

func encodeNTriples(w io.Writer, triples []rdf.Triple) error {
	for _, t := range triples {
		_, err := fmt.Fprintf(w, "%s %s %s .\n",
			formatTerm(t.Subject), formatTerm(t.Predicate), formatTerm(t.Object))
		if err != nil {
			return err
		}
	}
	return nil
}

func encodeTurtle(w io.Writer, triples []rdf.Triple) error {
	subjects, bySubject := groupBySubject(triples)
	for _, subj := range subjects {
		group := bySubject[subj]
		if _, err := fmt.Fprintf(w, "%s ", formatTerm(group[0].Subject)); err != nil {
			return err
		}
		for i, t := range group {
			sep := " ;\n\t"
			if i == len(group)-1 {
				sep = " .\n"
			}
			_, err := fmt.Fprintf(w, "%s %s%s", formatTerm(t.Predicate), formatTerm(t.Object), sep)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func encodeJSONLD(w io.Writer, triples []rdf.Triple) error {
	subjects, bySubject := groupBySubject(triples)
	nodes := make([]map[string]any, 0, len(subjects))
	for _, subj := range subjects {
		node := map[string]any{"@id": subj}
		for _, t := range bySubject[subj] {
			pred := t.Predicate.String()
			values, _ := node[pred].([]any)
			node[pred] = append(values, objectValue(t.Object))
		}
		nodes = append(nodes, node)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(nodes)
}

func objectValue(t rdf.Term) any {
	switch v := t.(type) {
	case rdf.Literal:
		switch {
		case v.Datatype() != "":
			return map[string]any{"@value": v.Value(), "@type": v.Datatype()}
		case v.Lang() != "":
			return map[string]any{"@value": v.Value(), "@language": v.Lang()}
		default:
			return v.Value()
		}
	default:
		return map[string]any{"@id": t.String()}
	}
}

// groupBySubject collects triples per subject, preserving the order subjects
// and statements first appear.
func groupBySubject(triples []rdf.Triple) ([]string, map[string][]rdf.Triple) {
	var subjects []string
	bySubject := make(map[string][]rdf.Triple)
	for _, t := range triples {
		key := t.Subject.String()
		if _, seen := bySubject[key]; !seen {
			subjects = append(subjects, key)
		}
		bySubject[key] = append(bySubject[key], t)
	}
	return subjects, bySubject
}
