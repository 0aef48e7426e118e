// Package lattice provides generalized, extensible dispatch over type
// graphs: a rooted graph of markers describes the shape of runtime data,
// and a family of graph dispatchers interprets that graph to traverse,
// validate, serialize, and deserialize the data.
//
// The package exposes seven pre-populated dispatchers covering the builtin
// marker vocabulary. Traverse walks a value. Validate checks it and reports
// an *invalid.Invalid mirroring the failing subset of the graph. Dictify
// lowers a value to JSON-ready primitives; Undictify is its structural
// inverse and doubles as an input gate for untrusted data. Clone deep
// copies, Mutate updates in place, Graphize zips a value to its graph.
//
// Customize behavior by layering, never by mutating the shared defaults:
//
//	strict := lattice.Validate.Sub().
//		When(marker.KeyString, myStringCheck)
//
// Registration is single-writer-during-setup; after setup, concurrent
// dispatch calls are safe.
package lattice

import (
	"github.com/aretw0/lattice/pkg/dispatch"
)

// Version is the library release, overridable at build time via -ldflags.
var Version = "0.1.0"

// The default dispatcher instances. They are populated during package
// initialization and must not be registered on afterwards; use Sub to
// extend them.
var (
	Traverse  = NewTraverse()
	Validate  = newValidateFrom(Traverse)
	Clone     = NewClone()
	Mutate    = newMutateFrom(Clone)
	Dictify   = newDictifyFrom(Clone)
	Undictify = newUndictifyFrom(Clone)
	Graphize  = NewGraphize()
)

// NewTraverse builds a fresh traversal dispatcher with the builtin
// handlers, independent of the package-level defaults.
func NewTraverse(opts ...dispatch.GraphOption) *dispatch.GraphDispatcher {
	all := append([]dispatch.GraphOption{dispatch.GraphName("traverse")}, opts...)
	d := dispatch.NewGraph(all...)
	registerTraverse(d)
	return d
}

// NewValidate builds a fresh validation stack (a traversal base with
// validation overrides layered on top).
func NewValidate(opts ...dispatch.GraphOption) *dispatch.GraphDispatcher {
	return newValidateFrom(NewTraverse(), opts...)
}

// NewClone builds a fresh deep-copy dispatcher.
func NewClone(opts ...dispatch.GraphOption) *dispatch.GraphDispatcher {
	all := append([]dispatch.GraphOption{dispatch.GraphName("clone")}, opts...)
	d := dispatch.NewGraph(all...)
	registerClone(d)
	return d
}

// NewMutate builds a fresh in-place update dispatcher.
func NewMutate(opts ...dispatch.GraphOption) *dispatch.GraphDispatcher {
	return newMutateFrom(NewClone(), opts...)
}

// NewDictify builds a fresh serialization dispatcher.
func NewDictify(opts ...dispatch.GraphOption) *dispatch.GraphDispatcher {
	return newDictifyFrom(NewClone(), opts...)
}

// NewUndictify builds a fresh deserialization dispatcher.
func NewUndictify(opts ...dispatch.GraphOption) *dispatch.GraphDispatcher {
	return newUndictifyFrom(NewClone(), opts...)
}

// NewGraphize builds a fresh value-to-graph dispatcher.
func NewGraphize(opts ...dispatch.GraphOption) *dispatch.GraphDispatcher {
	all := append([]dispatch.GraphOption{dispatch.GraphName("graphize")}, opts...)
	d := dispatch.NewGraph(all...)
	registerGraphize(d)
	return d
}
