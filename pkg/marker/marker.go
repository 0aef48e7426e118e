// Package marker defines the tag vocabulary that type graphs are built from.
//
// A Marker describes the expected shape of one data node. Markers form an
// open hierarchy: each marker reports a slash-separated Key, and its ancestry
// chain (the key plus every prefix) drives dispatcher resolution. Declaring a
// new marker kind is extending an existing key with another path segment.
package marker

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/typegraph"
)

// Key identifies a marker kind as a slash-separated ancestry path.
// "marker/leaf/typed/string" is a String, which is a TypedLeaf, which is a
// Leaf, which is a Marker.
type Key string

// Builtin keys. User-defined markers extend one of these with Extend.
const (
	KeyMarker      Key = "marker"
	KeyLeaf        Key = "marker/leaf"
	KeyTypedLeaf   Key = "marker/leaf/typed"
	KeyString      Key = "marker/leaf/typed/string"
	KeyInt         Key = "marker/leaf/typed/int"
	KeyFloat       Key = "marker/leaf/typed/float"
	KeyBool        Key = "marker/leaf/typed/bool"
	KeyPassthrough Key = "marker/leaf/passthrough"
	KeyTemporal    Key = "marker/leaf/temporal"
	KeyDate        Key = "marker/leaf/temporal/date"
	KeyDateTime    Key = "marker/leaf/temporal/datetime"
	KeyTime        Key = "marker/leaf/temporal/time"
	KeyList        Key = "marker/list"
	KeyTuple       Key = "marker/tuple"
	KeyStrMapping  Key = "marker/strmapping"
	KeyPolymorph   Key = "marker/polymorph"
	KeySchema      Key = "marker/schema"
	KeyMapping     Key = "marker/schema/mapping"
	KeyObject      Key = "marker/schema/object"
	KeyWrapper     Key = "marker/wrapper"
	KeyOptional    Key = "marker/wrapper/optional"
	KeyValidated   Key = "marker/wrapper/validated"
)

// Extend derives a more specific key from k.
func (k Key) Extend(segment string) Key {
	return k + Key("/"+segment)
}

// Chain returns the candidate keys for dispatch resolution, most specific
// first: the key itself followed by each ancestor prefix.
func (k Key) Chain() []Key {
	s := string(k)
	chain := []Key{k}
	for {
		i := strings.LastIndexByte(s, '/')
		if i < 0 {
			return chain
		}
		s = s[:i]
		chain = append(chain, Key(s))
	}
}

// IsA reports whether k equals ancestor or descends from it.
func (k Key) IsA(ancestor Key) bool {
	return k == ancestor || strings.HasPrefix(string(k), string(ancestor)+"/")
}

// Marker is the tag carried by a type graph node.
type Marker interface {
	Key() Key
}

// Traversable is any value that knows its own type graph. SchemaObj-style
// declarations implement it; dispatchers expand it transparently.
type Traversable interface {
	TypeGraph() typegraph.Node
}

// resolvers are consulted by ToGraph for values that are neither graphs,
// markers, nor Traversables. The schemaobj registry hooks in here, matching
// the associate-a-typegraph extension point.
var resolvers []func(any) (typegraph.Node, bool)

// RegisterResolver adds a conversion hook consulted by ToGraph. Call during
// initialization only.
func RegisterResolver(fn func(any) (typegraph.Node, bool)) {
	resolvers = append(resolvers, fn)
}

// ToGraph converts a graph-like value to a type graph: a typegraph.Node
// passes through, a Marker becomes a single childless node, a Traversable
// expands to its declared graph.
func ToGraph(v any) (typegraph.Node, error) {
	switch x := v.(type) {
	case typegraph.Node:
		return x, nil
	case Traversable:
		return x.TypeGraph(), nil
	case Marker:
		return typegraph.New(x), nil
	}
	for _, fn := range resolvers {
		if n, ok := fn(v); ok {
			return n, nil
		}
	}
	return typegraph.Node{}, fmt.Errorf("cannot convert %T to a type graph", v)
}

// MustGraph is ToGraph for declaration sites where the input is static.
func MustGraph(v any) typegraph.Node {
	n, err := ToGraph(v)
	if err != nil {
		panic(err)
	}
	return n
}
