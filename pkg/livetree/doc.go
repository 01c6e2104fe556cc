// Package livetree defines the mutable presentation tree that the
// reconciler drives, and provides an in-memory implementation of it.
//
// The interfaces are the primitive surface the reconciler consumes:
// Document creates nodes, Element owns children and attributes, Text
// holds mutable content. Implementations decide where the tree actually
// lives - in process memory (NewMemDocument) or on a remote thin client
// (package remote).
//
// # In-Memory Tree
//
// The in-memory tree is used by tests, dev tooling, and snapshots. It
// keeps per-node write counters so tests can assert that the reconciler
// performs the minimal number of mutations:
//
//	doc := livetree.NewMemDocument()
//	root := doc.CreateElement("div")
//	...
//	html := root.HTML()
package livetree
