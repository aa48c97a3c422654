// Package persist stores graph snapshots in a SQLite file.
//
// The core graph is purely in-memory; this adapter is the external
// persistence collaborator. It works exclusively through the graph's public
// triple surface and round-trips every term kind losslessly.
package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/liliang-cn/semgraph/pkg/rdf"
	"github.com/liliang-cn/semgraph/pkg/store"
)

// ErrSnapshotClosed is returned when using a closed snapshot.
var ErrSnapshotClosed = errors.New("snapshot is closed")

const schema = `
CREATE TABLE IF NOT EXISTS triples (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	subject TEXT NOT NULL,
	subject_kind INTEGER NOT NULL,
	predicate TEXT NOT NULL,
	object TEXT NOT NULL,
	object_kind INTEGER NOT NULL,
	object_datatype TEXT NOT NULL DEFAULT '',
	object_lang TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_triples_subject ON triples(subject);
CREATE INDEX IF NOT EXISTS idx_triples_predicate ON triples(predicate);
`

// Snapshot is a SQLite-backed copy of a graph's triple set.
type Snapshot struct {
	db     *sql.DB
	closed bool
}

// Open opens or creates a snapshot file and ensures the schema exists.
func Open(path string) (*Snapshot, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Snapshot{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Snapshot) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Save replaces the snapshot contents with the graph's current triple set.
func (s *Snapshot) Save(ctx context.Context, g *store.Graph) error {
	if s.closed {
		return ErrSnapshotClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM triples"); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO triples (subject, subject_kind, predicate, object, object_kind, object_datatype, object_lang)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range g.Triples() {
		subj, subjKind := splitNode(t.Subject)
		obj, objKind, dt, lang := splitObject(t.Object)
		if _, err := stmt.ExecContext(ctx, subj, subjKind, t.Predicate.String(), obj, objKind, dt, lang); err != nil {
			return fmt.Errorf("failed to insert triple: %w", err)
		}
	}
	return tx.Commit()
}

// Load adds every stored triple to the graph, in saved order. The graph is
// not cleared first; loading into a populated graph merges.
func (s *Snapshot) Load(ctx context.Context, g *store.Graph) error {
	if s.closed {
		return ErrSnapshotClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT subject, subject_kind, predicate, object, object_kind, object_datatype, object_lang
		FROM triples ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var subj, pred, obj, dt, lang string
		var subjKind, objKind int
		if err := rows.Scan(&subj, &subjKind, &pred, &obj, &objKind, &dt, &lang); err != nil {
			return fmt.Errorf("failed to scan triple: %w", err)
		}
		g.Add(rdf.NewTriple(
			joinNode(subj, rdf.TermKind(subjKind)),
			rdf.NewIRI(pred),
			joinObject(obj, rdf.TermKind(objKind), dt, lang),
		))
	}
	return rows.Err()
}

// Count returns the number of stored triples.
func (s *Snapshot) Count(ctx context.Context) (int, error) {
	if s.closed {
		return 0, ErrSnapshotClosed
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM triples").Scan(&n)
	return n, err
}

func splitNode(t rdf.Term) (string, int) {
	if b, ok := t.(rdf.BlankNode); ok {
		return b.ID(), int(rdf.KindBlank)
	}
	return t.String(), int(rdf.KindIRI)
}

func splitObject(t rdf.Term) (value string, kind int, datatype, lang string) {
	switch v := t.(type) {
	case rdf.Literal:
		return v.Value(), int(rdf.KindLiteral), v.Datatype(), v.Lang()
	case rdf.BlankNode:
		return v.ID(), int(rdf.KindBlank), "", ""
	default:
		return t.String(), int(rdf.KindIRI), "", ""
	}
}

func joinNode(value string, kind rdf.TermKind) rdf.Term {
	if kind == rdf.KindBlank {
		return rdf.NewBlankNode(value)
	}
	return rdf.NewIRI(value)
}

func joinObject(value string, kind rdf.TermKind, datatype, lang string) rdf.Term {
	switch kind {
	case rdf.KindLiteral:
		switch {
		case datatype != "":
			return rdf.NewTypedLiteral(value, datatype)
		case lang != "":
			return rdf.NewLangLiteral(value, lang)
		default:
			return rdf.NewLiteral(value)
		}
	case rdf.KindBlank:
		return rdf.NewBlankNode(value)
	default:
		return rdf.NewIRI(value)
	}
}
