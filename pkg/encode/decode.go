package encode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/liliang-cn/semgraph/pkg/rdf"
)

// ErrBadStatement is returned for a line that cannot be parsed as an
// N-Triples statement.
var ErrBadStatement = errors.New("malformed statement")

// DecodeNTriples reads line-oriented N-Triples from r. Blank lines and
// #-comment lines are skipped. Parsing stops at the first malformed
// statement.
func DecodeNTriples(r io.Reader) ([]rdf.Triple, error) {
	var triples []rdf.Triple
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := parseStatement(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		triples = append(triples, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return triples, nil
}

func parseStatement(line string) (rdf.Triple, error) {
	subject, rest, err := scanTerm(line)
	if err != nil {
		return rdf.Triple{}, err
	}
	predicate, rest, err := scanTerm(rest)
	if err != nil {
		return rdf.Triple{}, err
	}
	object, rest, err := scanTerm(rest)
	if err != nil {
		return rdf.Triple{}, err
	}

	rest = strings.TrimSpace(rest)
	if rest != "" && rest != "." {
		return rdf.Triple{}, fmt.Errorf("%w: trailing %q", ErrBadStatement, rest)
	}
	return rdf.NewTriple(subject, predicate, object), nil
}

// scanTerm consumes one term from the front of s and returns the remainder.
func scanTerm(s string) (rdf.Term, string, error) {
	s = strings.TrimLeft(s, " \t")
	switch {
	case s == "":
		return nil, "", fmt.Errorf("%w: unexpected end of statement", ErrBadStatement)

	case s[0] == '<':
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return nil, "", fmt.Errorf("%w: unterminated IRI", ErrBadStatement)
		}
		return rdf.NewIRI(s[1:end]), s[end+1:], nil

	case strings.HasPrefix(s, "_:"):
		end := indexSpace(s)
		return rdf.NewBlankNode(s[2:end]), s[end:], nil

	case s[0] == '"':
		return scanLiteral(s)

	default:
		// Bare token, tolerated for hand-written files.
		end := indexSpace(s)
		tok := s[:end]
		if strings.HasSuffix(tok, ".") && end == len(s) {
			tok = tok[:len(tok)-1]
			return rdf.NewIRI(tok), ".", nil
		}
		return rdf.NewIRI(tok), s[end:], nil
	}
}

func scanLiteral(s string) (rdf.Term, string, error) {
	end := -1
	escaped := false
	for i := 1; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == '"':
			end = i
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return nil, "", fmt.Errorf("%w: unterminated literal", ErrBadStatement)
	}

	value := unescapeLiteral(s[1:end])
	rest := s[end+1:]

	switch {
	case strings.HasPrefix(rest, "^^<"):
		gt := strings.IndexByte(rest, '>')
		if gt < 0 {
			return nil, "", fmt.Errorf("%w: unterminated datatype", ErrBadStatement)
		}
		return rdf.NewTypedLiteral(value, rest[3:gt]), rest[gt+1:], nil

	case strings.HasPrefix(rest, "@"):
		end := indexSpace(rest)
		return rdf.NewLangLiteral(value, rest[1:end]), rest[end:], nil

	default:
		return rdf.NewLiteral(value), rest, nil
	}
}

func indexSpace(s string) int {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return i
	}
	return len(s)
}

func unescapeLiteral(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}
