package dispatch

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/marker"
	"github.com/aretw0/lattice/pkg/typegraph"
)

// DispatchNode is a cursor pairing one type graph position with the active
// dispatcher. Handlers receive it as their view of the world: the marker
// that selected them, the declared children, and the way to recurse.
type DispatchNode struct {
	disp   *GraphDispatcher
	node   typegraph.Node
	target marker.Marker
	depth  int
}

// Dispatcher returns the active (outermost) dispatcher.
func (dg DispatchNode) Dispatcher() *GraphDispatcher { return dg.disp }

// Marker returns the effective marker at this position. After a wrapper
// unwrap this is the inner marker, while Node still reflects the original
// graph node.
func (dg DispatchNode) Marker() marker.Marker { return dg.target }

// Node returns the underlying type graph node.
func (dg DispatchNode) Node() typegraph.Node { return dg.node }

// Collecting reports whether the active dispatcher aggregates child
// failures (collect-all validation mode).
func (dg DispatchNode) Collecting() bool { return dg.disp.collect }

// Edge returns the cursor for a declared child edge.
func (dg DispatchNode) Edge(name string) (DispatchNode, bool) {
	child, ok := dg.node.Child(name)
	if !ok {
		return DispatchNode{}, false
	}
	m, ok := child.Value().(marker.Marker)
	if !ok {
		return DispatchNode{}, false
	}
	return DispatchNode{disp: dg.disp, node: child, target: m, depth: dg.depth + 1}, true
}

// NamedEdge pairs an edge name with its child cursor.
type NamedEdge struct {
	Name string
	Node DispatchNode
}

// Edges returns child cursors in declaration order.
func (dg DispatchNode) Edges() []NamedEdge {
	edges := dg.node.Edges()
	out := make([]NamedEdge, 0, len(edges))
	for _, e := range edges {
		m, ok := e.To.Value().(marker.Marker)
		if !ok {
			continue
		}
		out = append(out, NamedEdge{
			Name: e.Name,
			Node: DispatchNode{disp: dg.disp, node: e.To, target: m, depth: dg.depth + 1},
		})
	}
	return out
}

// EdgeNames returns the declared edge names in declaration order.
func (dg DispatchNode) EdgeNames() []string { return dg.node.EdgeNames() }

// ForMarker returns a cursor identical to this one but dispatching on a
// different marker. Children access still reflects the original node.
func (dg DispatchNode) ForMarker(m marker.Marker) DispatchNode {
	dg.target = m
	return dg
}

// Call resolves and invokes the handler for this position against value.
func (dg DispatchNode) Call(value any) (any, error) {
	d := dg.disp
	if dg.depth >= d.maxDepth {
		return nil, &DepthError{Dispatcher: d.name, Limit: d.maxDepth}
	}
	h, effective, err := d.resolveMarker(dg.target)
	if d.hook != nil {
		key := dg.target.Key()
		if effective != nil {
			key = effective.Key()
		}
		defer func() { d.hook.ObserveDispatch(d.name, key, dg.depth, err) }()
	}
	if err != nil {
		return nil, err
	}
	dg.target = effective
	var out any
	out, err = h(dg, value)
	return out, err
}

// Inner unwraps the current marker by one layer and dispatches the inner
// marker against value at the same position. It is how wrapper handlers
// delegate to the wrapped behavior.
func (dg DispatchNode) Inner(value any) (any, error) {
	w, ok := dg.target.(marker.Wrapper)
	if !ok {
		return nil, fmt.Errorf("marker %q is not a wrapper", dg.target.Key())
	}
	return dg.ForMarker(w.Inner()).Call(value)
}
