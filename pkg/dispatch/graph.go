package dispatch

import (
	"github.com/aretw0/lattice/pkg/marker"
	"github.com/aretw0/lattice/pkg/typegraph"
)

// DefaultMaxDepth bounds recursion for graph dispatch. Type graphs deeper
// than this (or cyclic ones reached through data that never bottoms out)
// fail with ErrDepthExceeded instead of exhausting the stack.
const DefaultMaxDepth = 1000

// GraphHandler is a dispatch target for one type graph node. It receives a
// cursor over the (type graph, dispatcher) pair and the data slice for this
// position; composite handlers recurse by calling back through the cursor.
type GraphHandler func(dg DispatchNode, value any) (any, error)

// Hook observes dispatch activity. Implementations must be safe for
// concurrent use.
type Hook interface {
	// ObserveDispatch is called once per node dispatch with the resolved
	// key (or the primary key on a miss) and the handler outcome.
	ObserveDispatch(dispatcher string, key marker.Key, depth int, err error)
}

// GraphDispatcher is a Dispatcher specialized to (type graph, data) pairs.
// Its key function is the node marker's ancestry chain, with one reserved
// rule evaluated first: a Wrapper marker with no handler registered for its
// own wrapper kind anywhere in the delegation chain is unwrapped, and
// resolution retries against the inner marker at the same graph position.
type GraphDispatcher struct {
	name     string
	tbl      table[GraphHandler]
	collect  bool
	maxDepth int
	hook     Hook
}

// GraphOption configures a GraphDispatcher.
type GraphOption func(*GraphDispatcher)

// GraphName labels the dispatcher for error messages and metrics.
func GraphName(name string) GraphOption {
	return func(d *GraphDispatcher) { d.name = name }
}

// Parents sets the ordered delegation list consulted on local miss.
// Collect mode and depth budget are inherited from the first parent.
func Parents(parents ...*GraphDispatcher) GraphOption {
	return func(d *GraphDispatcher) {
		for _, p := range parents {
			d.tbl.parents = append(d.tbl.parents, &p.tbl)
		}
		if len(parents) > 0 {
			d.collect = parents[0].collect
			d.maxDepth = parents[0].maxDepth
		}
	}
}

// Collect switches the dispatcher to collect-all error aggregation:
// composite handlers gather child Invalids into a graph-shaped aggregate
// instead of returning the first failure. Validate and Undictify run in
// this mode.
func Collect(on bool) GraphOption {
	return func(d *GraphDispatcher) { d.collect = on }
}

// MaxDepth overrides the recursion budget.
func MaxDepth(n int) GraphOption {
	return func(d *GraphDispatcher) { d.maxDepth = n }
}

// WithHook attaches an observation hook.
func WithHook(h Hook) GraphOption {
	return func(d *GraphDispatcher) { d.hook = h }
}

// NewGraph creates a graph dispatcher.
func NewGraph(opts ...GraphOption) *GraphDispatcher {
	d := &GraphDispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	if d.maxDepth == 0 {
		d.maxDepth = DefaultMaxDepth
	}
	return d
}

// Sub creates a new dispatcher layered over this one. Registering on the
// sub shadows this dispatcher for those keys only; everything else
// delegates unchanged. This is the supported way to customize behavior for
// specific node types without mutating shared defaults.
func (d *GraphDispatcher) Sub(opts ...GraphOption) *GraphDispatcher {
	all := append([]GraphOption{Parents(d)}, opts...)
	return NewGraph(all...)
}

// Name returns the dispatcher's label.
func (d *GraphDispatcher) Name() string { return d.name }

// Collecting reports whether the dispatcher aggregates child failures.
func (d *GraphDispatcher) Collecting() bool { return d.collect }

// When registers a handler for a marker key, overwriting any local entry.
func (d *GraphDispatcher) When(k marker.Key, h GraphHandler) *GraphDispatcher {
	d.tbl.set(k, h)
	return d
}

// resolveMarker applies the reserved wrapper rule, then ordinary ancestry
// resolution. It returns the handler together with the effective marker
// (the original, or the innermost unwrapped marker that resolved).
func (d *GraphDispatcher) resolveMarker(m marker.Marker) (GraphHandler, marker.Marker, error) {
	cur := m
	for {
		if w, ok := cur.(marker.Wrapper); ok {
			// Handlers registered for this wrapper kind win; otherwise the
			// wrapper is transparent and resolution retries on the inner
			// marker at the same position.
			if h, ok := d.lookupWrapper(cur.Key()); ok {
				return h, cur, nil
			}
			cur = w.Inner()
			continue
		}
		keys := cur.Key().Chain()
		if h, _, ok := d.tbl.resolve(keys); ok {
			return h, cur, nil
		}
		return nil, nil, &MissError{Dispatcher: d.name, Key: m.Key(), Keys: keys}
	}
}

// lookupWrapper checks the wrapper-specific portion of a wrapper's ancestry
// (everything below the Wrapper base key) across the delegation chain.
func (d *GraphDispatcher) lookupWrapper(k marker.Key) (GraphHandler, bool) {
	for _, candidate := range k.Chain() {
		if candidate == marker.KeyWrapper || !candidate.IsA(marker.KeyWrapper) {
			break
		}
		if h, ok := d.tbl.lookupKey(candidate); ok {
			return h, true
		}
	}
	return nil, false
}

// Call normalizes graphLike (type graph, bare marker, or Traversable),
// then dispatches the root node against value. Normalization happens once
// per top-level call, not per recursive step.
func (d *GraphDispatcher) Call(graphLike any, value any) (any, error) {
	tg, err := marker.ToGraph(graphLike)
	if err != nil {
		return nil, err
	}
	root, err := d.Root(tg)
	if err != nil {
		return nil, err
	}
	return root.Call(value)
}

// Root builds the dispatch cursor for a type graph's root node.
func (d *GraphDispatcher) Root(tg typegraph.Node) (DispatchNode, error) {
	m, ok := tg.Value().(marker.Marker)
	if !ok {
		return DispatchNode{}, &MissError{Dispatcher: d.name, Key: marker.Key("")}
	}
	return DispatchNode{disp: d, node: tg, target: m}, nil
}
