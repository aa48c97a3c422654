package cache

import (
	"strings"
	"testing"
)

func TestKeyEquivalence(t *testing.T) {
	a := Key("SELECT ?s WHERE { ?s ?p ?o }")
	b := Key("select\n?s\nwhere\n{\n?s ?p ?o\n}")
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}
}

func TestKeyNormalization(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{
			name: "case",
			a:    "SELECT ?s WHERE { ?s ?p ?o }",
			b:    "select ?s where { ?s ?p ?o }",
			same: true,
		},
		{
			name: "bracket spacing",
			a:    "select ?s where {?s ?p ?o}",
			b:    "select ?s where {  ?s ?p ?o  }",
			same: true,
		},
		{
			name: "short prefix stripped",
			a:    "vault1:SELECT ?s WHERE { ?s ?p ?o }",
			b:    "SELECT ?s WHERE { ?s ?p ?o }",
			same: true,
		},
		{
			name: "different queries stay distinct",
			a:    "SELECT ?s WHERE { ?s ex:a ?o }",
			b:    "SELECT ?s WHERE { ?s ex:b ?o }",
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, kb := Key(tt.a), Key(tt.b)
			if (ka == kb) != tt.same {
				t.Errorf("Key(%q) = %q, Key(%q) = %q, same = %v, want %v", tt.a, ka, tt.b, kb, ka == kb, tt.same)
			}
		})
	}
}

func TestKeyLongPrefixNotStripped(t *testing.T) {
	prefix := strings.Repeat("x", 25) + ":"
	if Key(prefix+"select ?s") == Key("select ?s") {
		t.Error("long prefix was stripped; only segments under 20 chars should be")
	}
}

func TestKeyLongQueriesHashed(t *testing.T) {
	long := "SELECT ?s WHERE { " + strings.Repeat("?s ex:p ex:o . ", 200) + "}"
	k := Key(long)
	if !strings.HasPrefix(k, "h:") {
		t.Errorf("Key() = %q, want hashed h: form", k)
	}
	if len(k) > 40 {
		t.Errorf("hashed key too long: %d chars", len(k))
	}
	if k != Key(long) {
		t.Error("hashing is not deterministic")
	}
	if k == Key(long+" x") {
		t.Error("different long queries collide trivially")
	}
}
