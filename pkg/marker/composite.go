package marker

import (
	"fmt"
	"strconv"

	"github.com/aretw0/lattice/pkg/typegraph"
)

// Field declares one named child of a schema-shaped marker. Declaration
// order is preserved everywhere: dictify, undictify, validate and error
// trees all enumerate fields in the order they were declared.
type Field struct {
	Name string
	Type any // Marker | typegraph.Node | Traversable
}

// F is shorthand for declaring a Field.
func F(name string, typ any) Field {
	return Field{Name: name, Type: typ}
}

// List marks a homogeneous sequence. Its single "sub" edge names the
// element type.
type List struct{}

func (List) Key() Key       { return KeyList }
func (List) String() string { return "<List>" }

// Of builds the type graph for a list of sub.
func (l List) Of(sub any) typegraph.Node {
	return typegraph.NewGraph().NewNode(l, typegraph.Edge{Name: "sub", To: MustGraph(sub)})
}

// Tuple marks a fixed-length heterogeneous sequence: one edge per position,
// in declaration order. Positions may carry names for error reporting;
// TupleOf numbers them.
type Tuple struct{}

func (Tuple) Key() Key       { return KeyTuple }
func (Tuple) String() string { return "<Tuple>" }

// Of builds the type graph for a tuple with named positions.
func (t Tuple) Of(fields ...Field) typegraph.Node {
	return schemaNode(t, fields)
}

// TupleOf builds the type graph for a tuple typed by position, with edges
// named after the position index.
func TupleOf(subs ...any) typegraph.Node {
	fields := make([]Field, len(subs))
	for i, s := range subs {
		fields[i] = F(strconv.Itoa(i), s)
	}
	return Tuple{}.Of(fields...)
}

// StrMapping marks a string-keyed map with homogeneous values. Its single
// "sub" edge names the value type.
type StrMapping struct{}

func (StrMapping) Key() Key       { return KeyStrMapping }
func (StrMapping) String() string { return "<StrMapping>" }

// Of builds the type graph for a string map with values of sub.
func (m StrMapping) Of(sub any) typegraph.Node {
	return typegraph.NewGraph().NewNode(m, typegraph.Edge{Name: "sub", To: MustGraph(sub)})
}

// ExtraFieldPolicy controls what SchemaMapping does with keys that are not
// declared in the type graph.
type ExtraFieldPolicy int

const (
	// Discard drops extra keys during dictify/undictify; validate complains.
	Discard ExtraFieldPolicy = iota
	// Save preserves extra keys untouched; validate ignores them.
	Save
	// Reject makes undictify and validate fail on extra keys; dictify drops them.
	Reject
)

// SchemaMapping marks a map with a fixed set of declared string keys, one
// edge per key.
type SchemaMapping struct {
	Extra ExtraFieldPolicy
}

func (SchemaMapping) Key() Key       { return KeyMapping }
func (SchemaMapping) String() string { return "<SchemaMapping>" }

// Of builds the type graph for a mapping with the declared fields.
func (m SchemaMapping) Of(fields ...Field) typegraph.Node {
	return schemaNode(m, fields)
}

func schemaNode(m Marker, fields []Field) typegraph.Node {
	g := typegraph.NewGraph()
	edges := make([]typegraph.Edge, 0, len(fields))
	for _, f := range fields {
		edges = append(edges, typegraph.Edge{Name: f.Name, To: MustGraph(f.Type)})
	}
	return g.NewNode(m, edges...)
}

// Wrapper is a marker that transparently delegates to an inner marker.
// Dispatchers with no handler for the concrete wrapper kind fall through to
// the wrapped marker at the same graph position, so wrapping changes
// behavior only for dispatchers that opt in.
type Wrapper interface {
	Marker
	Inner() Marker
}

// Wrap is the base wrapper implementation; embed it to define wrapper kinds.
type Wrap struct {
	Marker Marker
}

func (w Wrap) Key() Key      { return KeyWrapper }
func (w Wrap) Inner() Marker { return w.Marker }
func (w Wrap) String() string {
	return fmt.Sprintf("<Wrapper(%v)>", w.Marker)
}

// WrapGraph overlays a wrapper around the root marker of a graph-like value.
// The wrapped node keeps the original node's children.
func WrapGraph(wrap func(Marker) Wrapper, v any) typegraph.Node {
	tg := MustGraph(v)
	m, ok := tg.Value().(Marker)
	if !ok {
		panic(fmt.Sprintf("type graph root holds %T, not a marker", tg.Value()))
	}
	return typegraph.Overlay(tg, wrap(m))
}

// Optional wraps a marker whose value may be nil (or absent from a mapping).
type Optional struct {
	Wrap
}

func (o Optional) Key() Key { return KeyOptional }
func (o Optional) String() string {
	return fmt.Sprintf("<Optional(%v)>", o.Marker)
}

// OptionalOf builds the type graph for an optional value of v.
func OptionalOf(v any) typegraph.Node {
	return WrapGraph(func(m Marker) Wrapper { return Optional{Wrap{Marker: m}} }, v)
}

// Unwrap removes all wrapper layers and returns the innermost marker.
func Unwrap(m Marker) Marker {
	for {
		w, ok := m.(Wrapper)
		if !ok {
			return m
		}
		m = w.Inner()
	}
}

// FindWrapper walks the wrapper chain looking for a wrapper whose key is or
// descends from want.
func FindWrapper(m Marker, want Key) (Wrapper, bool) {
	for {
		w, ok := m.(Wrapper)
		if !ok {
			return nil, false
		}
		if w.Key().IsA(want) {
			return w, true
		}
		m = w.Inner()
	}
}
