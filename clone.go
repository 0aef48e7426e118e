package lattice

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/dispatch"
	"github.com/aretw0/lattice/pkg/marker"
)

// registerClone installs the deep-copy handlers. Leaves pass through
// unchanged; composites rebuild their container from recursed children.
// Dictify and Undictify layer their conversions over these.
func registerClone(d *dispatch.GraphDispatcher) {
	d.When(marker.KeyLeaf, cloneLeaf)
	d.When(marker.KeyList, cloneList)
	d.When(marker.KeyTuple, cloneTuple)
	d.When(marker.KeyStrMapping, cloneStrMapping)
	d.When(marker.KeyMapping, cloneMapping)
	d.When(marker.KeyObject, cloneObject)
	d.When(marker.KeyPolymorph, polymorphDelegate)
	d.When(marker.KeyOptional, optionalOrInner)
}

func cloneLeaf(dg dispatch.DispatchNode, value any) (any, error) {
	return value, nil
}

func cloneList(dg dispatch.DispatchNode, value any) (any, error) {
	out, err := applyList(dg, value)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// cloneTuple rebuilds the sequence positionally. There is no distinct tuple
// type at runtime; the result is a fresh []any of the declared length.
func cloneTuple(dg dispatch.DispatchNode, value any) (any, error) {
	out, err := applyTuple(dg, value)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func cloneStrMapping(dg dispatch.DispatchNode, value any) (any, error) {
	out, err := applyStrMapping(dg, value)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func cloneMapping(dg dispatch.DispatchNode, value any) (any, error) {
	m, err := requireMap(dg, value)
	if err != nil {
		return nil, err
	}
	out, err := applyFields(dg, mapSource(m))
	if err != nil {
		return nil, err
	}
	copyExtras(dg, m, out)
	return out, nil
}

// copyExtras preserves undeclared keys when the mapping's policy is Save.
func copyExtras(dg dispatch.DispatchNode, src, dst map[string]any) {
	sm, ok := dg.Marker().(marker.SchemaMapping)
	if !ok || sm.Extra != marker.Save {
		return
	}
	for _, k := range extraKeys(dg, src) {
		dst[k] = src[k]
	}
}

func cloneObject(dg dispatch.DispatchNode, value any) (any, error) {
	obj, err := requireObject(dg, value)
	if err != nil {
		return nil, err
	}
	fields, err := applyFields(dg, objectSource(obj, value))
	if err != nil {
		return nil, err
	}
	return constructObject(obj, fields)
}

// newMutateFrom layers in-place update handlers over a clone base. Values
// that cannot be written through ([]any, map[string]any, pointer targets)
// fall back to returning the rebuilt copy.
func newMutateFrom(base *dispatch.GraphDispatcher, opts ...dispatch.GraphOption) *dispatch.GraphDispatcher {
	all := append([]dispatch.GraphOption{dispatch.GraphName("mutate")}, opts...)
	d := base.Sub(all...)
	d.When(marker.KeyList, mutateList)
	d.When(marker.KeyTuple, mutateTuple)
	d.When(marker.KeyStrMapping, mutateStrMapping)
	d.When(marker.KeyMapping, mutateMapping)
	d.When(marker.KeyObject, mutateObject)
	return d
}

func mutateList(dg dispatch.DispatchNode, value any) (any, error) {
	out, err := applyList(dg, value)
	if err != nil {
		return nil, err
	}
	if items, ok := value.([]any); ok && len(items) == len(out) {
		copy(items, out)
		return items, nil
	}
	return out, nil
}

func mutateTuple(dg dispatch.DispatchNode, value any) (any, error) {
	out, err := applyTuple(dg, value)
	if err != nil {
		return nil, err
	}
	if items, ok := value.([]any); ok && len(items) == len(out) {
		copy(items, out)
		return items, nil
	}
	return out, nil
}

func mutateStrMapping(dg dispatch.DispatchNode, value any) (any, error) {
	out, err := applyStrMapping(dg, value)
	if err != nil {
		return nil, err
	}
	if m, ok := value.(map[string]any); ok {
		for k, v := range out {
			m[k] = v
		}
		return m, nil
	}
	return out, nil
}

func mutateMapping(dg dispatch.DispatchNode, value any) (any, error) {
	m, err := requireMap(dg, value)
	if err != nil {
		return nil, err
	}
	out, err := applyFields(dg, mapSource(m))
	if err != nil {
		return nil, err
	}
	for k, v := range out {
		m[k] = v
	}
	return m, nil
}

func mutateObject(dg dispatch.DispatchNode, value any) (any, error) {
	obj, err := requireObject(dg, value)
	if err != nil {
		return nil, err
	}
	fields, err := applyFields(dg, objectSource(obj, value))
	if err != nil {
		return nil, err
	}
	for name, v := range fields {
		if err := obj.SetFieldValue(value, name, v); err != nil {
			return nil, fmt.Errorf("mutate %s: %w", obj.Target().Name(), err)
		}
	}
	return value, nil
}
