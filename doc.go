// Package semgraph provides an embedded, in-memory semantic triple store
// with a restricted pattern/join query engine and a memoizing query cache.
//
// semgraph is a 100% pure Go library for host applications that index
// factual (subject, predicate, object) statements and answer structured
// queries over them with low latency and repeatable results. The store keeps
// three two-level indexes so any lookup with two bound components resolves
// without scanning, and every query answer is cached behind a normalizing,
// TTL- and capacity-bounded cache.
//
// # Key Components
//
//   - pkg/semgraph: the Store facade tying graph, engine and cache together.
//   - pkg/rdf: identifier, anonymous and literal nodes plus the Triple value.
//   - pkg/store: the in-memory graph with SPO/POS/OSP indexes.
//   - pkg/query: the SELECT/CONSTRUCT parser and join executor.
//   - pkg/cache: the insertion-order-evicting TTL query cache.
//   - pkg/encode and pkg/persist: N-Triples/Turtle/JSON-LD text formats and
//     SQLite snapshots, layered on the public store surface.
//
// # Quick Start
//
//	import (
//	    "github.com/liliang-cn/semgraph/pkg/rdf"
//	    "github.com/liliang-cn/semgraph/pkg/semgraph"
//	)
//
//	func main() {
//	    s, _ := semgraph.Open(semgraph.DefaultConfig())
//	    defer s.Close()
//
//	    s.Add(rdf.NewTriple(rdf.NewIRI("ex:A"), rdf.NewIRI("ex:knows"), rdf.NewIRI("ex:B")))
//	    s.Add(rdf.NewTriple(rdf.NewIRI("ex:B"), rdf.NewIRI("ex:knows"), rdf.NewIRI("ex:C")))
//
//	    res, _ := s.Construct(`CONSTRUCT { ?x ex:indirectlyKnows ?z }
//	        WHERE { ?x ex:knows ?y . ?y ex:knows ?z }`)
//	    // res.Triples: (ex:A, ex:indirectlyKnows, ex:C)
//	}
package semgraph
