package lattice

import (
	"strconv"

	"github.com/aretw0/lattice/pkg/dispatch"
	"github.com/aretw0/lattice/pkg/marker"
	"github.com/aretw0/lattice/pkg/typegraph"
)

// registerGraphize installs the value-zipping handlers: the result is a
// plain graph mirroring the type graph's decomposition, with runtime
// values at the nodes. Render it with typegraph.Render.
func registerGraphize(d *dispatch.GraphDispatcher) {
	d.When(marker.KeyLeaf, graphizeLeaf)
	d.When(marker.KeyList, graphizeList)
	d.When(marker.KeyTuple, graphizeTuple)
	d.When(marker.KeyStrMapping, graphizeStrMapping)
	d.When(marker.KeyMapping, graphizeMapping)
	d.When(marker.KeyObject, graphizeObject)
	d.When(marker.KeyPolymorph, polymorphDelegate)
	d.When(marker.KeyOptional, graphizeOptional)
}

func graphizeLeaf(dg dispatch.DispatchNode, value any) (any, error) {
	return typegraph.New(value), nil
}

func graphizeOptional(dg dispatch.DispatchNode, value any) (any, error) {
	if value == nil {
		return typegraph.New(nil), nil
	}
	return dg.Inner(value)
}

func graphizeList(dg dispatch.DispatchNode, value any) (any, error) {
	children, err := applyList(dg, value)
	if err != nil {
		return nil, err
	}
	g := typegraph.NewGraph()
	edges := make([]typegraph.Edge, 0, len(children))
	for i, c := range children {
		edges = append(edges, typegraph.Edge{Name: strconv.Itoa(i), To: c.(typegraph.Node)})
	}
	return g.NewNode(value, edges...), nil
}

func graphizeTuple(dg dispatch.DispatchNode, value any) (any, error) {
	children, err := applyTuple(dg, value)
	if err != nil {
		return nil, err
	}
	g := typegraph.NewGraph()
	edges := make([]typegraph.Edge, 0, len(children))
	for i, name := range dg.EdgeNames() {
		edges = append(edges, typegraph.Edge{Name: name, To: children[i].(typegraph.Node)})
	}
	return g.NewNode(value, edges...), nil
}

func graphizeStrMapping(dg dispatch.DispatchNode, value any) (any, error) {
	children, err := applyStrMapping(dg, value)
	if err != nil {
		return nil, err
	}
	g := typegraph.NewGraph()
	edges := make([]typegraph.Edge, 0, len(children))
	for _, k := range sortedKeys(children) {
		edges = append(edges, typegraph.Edge{Name: k, To: children[k].(typegraph.Node)})
	}
	return g.NewNode(value, edges...), nil
}

func graphizeMapping(dg dispatch.DispatchNode, value any) (any, error) {
	m, err := requireMap(dg, value)
	if err != nil {
		return nil, err
	}
	return graphizeFields(dg, value, mapSource(m))
}

func graphizeObject(dg dispatch.DispatchNode, value any) (any, error) {
	obj, err := requireObject(dg, value)
	if err != nil {
		return nil, err
	}
	return graphizeFields(dg, value, objectSource(obj, value))
}

// graphizeFields builds field edges in declaration order.
func graphizeFields(dg dispatch.DispatchNode, value any, get fieldSource) (any, error) {
	children, err := applyFields(dg, get)
	if err != nil {
		return nil, err
	}
	g := typegraph.NewGraph()
	var edges []typegraph.Edge
	for _, name := range dg.EdgeNames() {
		c, ok := children[name]
		if !ok {
			continue
		}
		edges = append(edges, typegraph.Edge{Name: name, To: c.(typegraph.Node)})
	}
	return g.NewNode(value, edges...), nil
}
