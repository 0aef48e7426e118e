// Package schemaobj derives type graphs from struct field declarations.
//
// A declaring type registers its field-to-marker mapping once; the
// derivation builds an Object marker tagged with the type and a type graph
// whose edges are the declared fields, in declaration order. The result is
// memoized for the process lifetime, and every dispatcher consumes it
// transparently through argument normalization.
package schemaobj

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/aretw0/lattice/pkg/marker"
	"github.com/aretw0/lattice/pkg/typegraph"
)

// registry memoizes derived graphs per declaring type. Single-writer during
// initialization, many readers during operation.
var registry = struct {
	sync.RWMutex
	graphs map[reflect.Type]typegraph.Node
}{graphs: make(map[reflect.Type]typegraph.Node)}

func init() {
	// Lets dispatchers accept a registered struct value, a pointer to one,
	// or its reflect.Type directly as the graph-like argument.
	marker.RegisterResolver(func(v any) (typegraph.Node, bool) {
		t, ok := v.(reflect.Type)
		if !ok {
			t = reflect.TypeOf(v)
		}
		if t == nil {
			return typegraph.Node{}, false
		}
		if g, ok := Lookup(t); ok {
			return g, true
		}
		if t.Kind() == reflect.Pointer {
			return Lookup(t.Elem())
		}
		return typegraph.Node{}, false
	})
}

// Register derives and memoizes the type graph for T from its field
// declaration. Calling it again for the same T returns the original graph
// unchanged. Field types may be markers, type graphs, Traversables, or a
// Ref to a type still being registered — the root node exists before the
// fields resolve, so self-referential declarations work.
func Register[T any](fields []marker.Field, opts ...marker.ObjectOption) typegraph.Node {
	t := typeOf[T]()
	registry.Lock()
	if g, ok := registry.graphs[t]; ok {
		registry.Unlock()
		return g
	}
	obj := marker.NewObject(reflect.Zero(t).Interface(), opts...)
	root := typegraph.New(obj)
	registry.graphs[t] = root
	// Field resolution happens outside the lock: a Ref to this type (or a
	// mutually recursive one) needs to read the registry while resolving.
	registry.Unlock()
	for _, f := range fields {
		root.SetEdge(f.Name, marker.MustGraph(f.Type))
	}
	return root
}

// For returns the memoized graph for T.
func For[T any]() (typegraph.Node, bool) {
	return Lookup(typeOf[T]())
}

// MustFor is For, panicking when T was never registered.
func MustFor[T any]() typegraph.Node {
	g, ok := For[T]()
	if !ok {
		panic(fmt.Sprintf("schemaobj: %v is not registered", typeOf[T]()))
	}
	return g
}

// Lookup returns the memoized graph for a declaring type.
func Lookup(t reflect.Type) (typegraph.Node, bool) {
	registry.RLock()
	defer registry.RUnlock()
	g, ok := registry.graphs[t]
	return g, ok
}

// Ref is a lazy reference to T's graph for use inside field declarations,
// including T's own. Resolution happens when the enclosing declaration
// resolves the field, by which point the root node is registered.
func Ref[T any]() marker.Traversable {
	return ref{t: typeOf[T]()}
}

type ref struct {
	t reflect.Type
}

func (r ref) TypeGraph() typegraph.Node {
	g, ok := Lookup(r.t)
	if !ok {
		panic(fmt.Sprintf("schemaobj: %v referenced before registration", r.t))
	}
	return g
}

// OptionalRef is Ref wrapped in Optional. Self-referential declarations
// need it: an edge pointing back at its own type must tolerate nil or no
// value could ever terminate.
func OptionalRef[T any]() marker.Traversable {
	return optionalRef{t: typeOf[T]()}
}

type optionalRef struct {
	t reflect.Type
}

func (r optionalRef) TypeGraph() typegraph.Node {
	g, ok := Lookup(r.t)
	if !ok {
		panic(fmt.Sprintf("schemaobj: %v referenced before registration", r.t))
	}
	return marker.OptionalOf(g)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
