package lattice

import (
	"github.com/aretw0/lattice/pkg/dispatch"
	"github.com/aretw0/lattice/pkg/marker"
)

// registerTraverse installs the walking handlers: leaves are no-ops,
// composites recurse per declared edge. Validate layers its checks on top
// of these.
func registerTraverse(d *dispatch.GraphDispatcher) {
	d.When(marker.KeyMarker, traverseLeaf)
	d.When(marker.KeyList, traverseList)
	d.When(marker.KeyTuple, traverseTuple)
	d.When(marker.KeyStrMapping, traverseStrMapping)
	d.When(marker.KeyMapping, traverseMapping)
	d.When(marker.KeyObject, traverseObject)
	d.When(marker.KeyPolymorph, polymorphDelegate)
	d.When(marker.KeyOptional, optionalOrInner)
}

func traverseLeaf(dg dispatch.DispatchNode, value any) (any, error) {
	return nil, nil
}

func traverseList(dg dispatch.DispatchNode, value any) (any, error) {
	_, err := applyList(dg, value)
	return nil, err
}

func traverseTuple(dg dispatch.DispatchNode, value any) (any, error) {
	_, err := applyTuple(dg, value)
	return nil, err
}

func traverseStrMapping(dg dispatch.DispatchNode, value any) (any, error) {
	_, err := applyStrMapping(dg, value)
	return nil, err
}

func traverseMapping(dg dispatch.DispatchNode, value any) (any, error) {
	m, err := requireMap(dg, value)
	if err != nil {
		return nil, err
	}
	_, err = applyFields(dg, mapSource(m))
	return nil, err
}

func traverseObject(dg dispatch.DispatchNode, value any) (any, error) {
	obj, err := requireObject(dg, value)
	if err != nil {
		return nil, err
	}
	_, err = applyFields(dg, objectSource(obj, value))
	return nil, err
}

// optionalOrInner implements the Optional wrapper for every dispatcher:
// nil passes through, anything else delegates to the wrapped marker.
func optionalOrInner(dg dispatch.DispatchNode, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return dg.Inner(value)
}
