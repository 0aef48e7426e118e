package marker

import (
	"reflect"

	"github.com/aretw0/lattice/pkg/typegraph"
)

// Branch declares one polymorph alternative: the edge name, the runtime
// types it covers, and the branch's type graph.
type Branch struct {
	Name  string
	Types []reflect.Type
	Type  any // Marker | typegraph.Node | Traversable
}

// TypeOf is shorthand for declaring Branch coverage from a prototype value.
func TypeOf(prototype any) reflect.Type {
	return reflect.TypeOf(prototype)
}

// Polymorph marks a position whose shape depends on the runtime type of the
// value. Dispatch selects the branch covering the value's type; the wire
// form is a [name, value] pair recording which branch applied.
type Polymorph struct {
	branches []Branch
}

func (Polymorph) Key() Key       { return KeyPolymorph }
func (Polymorph) String() string { return "<Polymorph>" }

// NameFor returns the name of the first declared branch covering the
// value's runtime type. A branch type matches exactly, as an implemented
// interface, or as the pointee of a pointer value.
func (p Polymorph) NameFor(value any) (string, bool) {
	t := reflect.TypeOf(value)
	if t == nil {
		return "", false
	}
	for _, b := range p.branches {
		for _, want := range b.Types {
			if matchesType(t, want) {
				return b.Name, true
			}
		}
	}
	return "", false
}

func matchesType(t, want reflect.Type) bool {
	if t == want {
		return true
	}
	if want.Kind() == reflect.Interface && t.Implements(want) {
		return true
	}
	return t.Kind() == reflect.Pointer && t.Elem() == want
}

// PolymorphOf builds the type graph for a polymorph with one edge per
// branch, in declaration order.
func PolymorphOf(branches ...Branch) typegraph.Node {
	fields := make([]Field, len(branches))
	for i, b := range branches {
		fields[i] = F(b.Name, b.Type)
	}
	return schemaNode(Polymorph{branches: branches}, fields)
}
