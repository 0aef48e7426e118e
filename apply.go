package lattice

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/aretw0/lattice/pkg/dispatch"
	"github.com/aretw0/lattice/pkg/invalid"
	"github.com/aretw0/lattice/pkg/marker"
)

// Shared recursion helpers. Composite handlers registered on Traverse and
// Clone recurse through these; the same functions serve the collecting
// dispatchers (Validate, Undictify) because they branch on the cursor's
// collect mode. This mirrors how the dispatchers are layered: Validate
// inherits Traverse's composite handlers, Undictify inherits Clone's.

// asSequence views value as an ordered sequence. Only []any is rebuilt
// cheaply; other slice kinds go through reflection.
func asSequence(value any) ([]any, bool) {
	if items, ok := value.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// applyList recurses into the "sub" edge once per element, preserving
// order. In collect mode, a non-sequence value is a type_error and element
// failures aggregate under their stringified index.
func applyList(dg dispatch.DispatchNode, value any) ([]any, error) {
	sub, ok := dg.Edge("sub")
	if !ok {
		return nil, fmt.Errorf("list marker %q declares no sub edge", dg.Marker().Key())
	}
	items, isSeq := asSequence(value)
	if !isSeq {
		if dg.Collecting() {
			return nil, invalid.Newf(invalid.CodeTypeError, "expected sequence, got %T", value)
		}
		return nil, fmt.Errorf("expected sequence, got %T", value)
	}
	if !dg.Collecting() {
		out := make([]any, 0, len(items))
		for _, item := range items {
			v, err := sub.Call(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	agg := invalid.NewAggregator()
	out := make([]any, 0, len(items))
	for i, item := range items {
		v, err := sub.Call(item)
		agg.Check(strconv.Itoa(i), err)
		if agg.Failed() {
			break
		}
		out = append(out, v)
	}
	if err := agg.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// applyStrMapping recurses into the "sub" edge once per map entry. Keys
// must be strings already (the data is a map[string]any); failures
// aggregate under the key.
func applyStrMapping(dg dispatch.DispatchNode, value any) (map[string]any, error) {
	sub, ok := dg.Edge("sub")
	if !ok {
		return nil, fmt.Errorf("strmapping marker %q declares no sub edge", dg.Marker().Key())
	}
	m, isMap := value.(map[string]any)
	if !isMap {
		if dg.Collecting() {
			return nil, invalid.Newf(invalid.CodeTypeError, "expected mapping, got %T", value)
		}
		return nil, fmt.Errorf("expected mapping, got %T", value)
	}
	out := make(map[string]any, len(m))
	if !dg.Collecting() {
		for k, v := range m {
			res, err := sub.Call(v)
			if err != nil {
				return nil, err
			}
			out[k] = res
		}
		return out, nil
	}
	agg := invalid.NewAggregator()
	for _, k := range sortedKeys(m) {
		res, err := sub.Call(m[k])
		agg.Check(k, err)
		if agg.Failed() {
			break
		}
		out[k] = res
	}
	if err := agg.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// applyTuple recurses positionally: the value must be a sequence with
// exactly one element per declared edge. In collect mode a non-sequence is
// not_iterable, a length mismatch is bad_len, and element failures
// aggregate under their position's edge name.
func applyTuple(dg dispatch.DispatchNode, value any) ([]any, error) {
	edges := dg.Edges()
	items, isSeq := asSequence(value)
	if !isSeq {
		if dg.Collecting() {
			return nil, invalid.Newf(invalid.CodeNotIterable, "expected sequence, got %T", value)
		}
		return nil, fmt.Errorf("expected sequence, got %T", value)
	}
	if len(items) != len(edges) {
		if dg.Collecting() {
			return nil, invalid.Newf(invalid.CodeBadLength,
				"expected %d elements, got %d", len(edges), len(items))
		}
		return nil, fmt.Errorf("expected %d elements, got %d", len(edges), len(items))
	}
	if !dg.Collecting() {
		out := make([]any, 0, len(items))
		for i, e := range edges {
			v, err := e.Node.Call(items[i])
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	agg := invalid.NewAggregator()
	out := make([]any, 0, len(items))
	for i, e := range edges {
		v, err := e.Node.Call(items[i])
		agg.Check(e.Name, err)
		if agg.Failed() {
			break
		}
		if err == nil {
			out = append(out, v)
		}
	}
	if err := agg.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// selectBranch resolves the polymorph branch covering the value's runtime
// type. An uncovered type is a type_error in collect mode and a handler
// fault otherwise.
func selectBranch(dg dispatch.DispatchNode, value any) (string, dispatch.DispatchNode, error) {
	p, ok := dg.Marker().(marker.Polymorph)
	if !ok {
		return "", dispatch.DispatchNode{}, fmt.Errorf("marker %q is not a polymorph", dg.Marker().Key())
	}
	name, ok := p.NameFor(value)
	if !ok {
		if dg.Collecting() {
			return "", dispatch.DispatchNode{}, invalid.Newf(invalid.CodeTypeError,
				"unrecognized type %T", value)
		}
		return "", dispatch.DispatchNode{}, fmt.Errorf("unrecognized type %T", value)
	}
	branch, ok := dg.Edge(name)
	if !ok {
		return "", dispatch.DispatchNode{}, fmt.Errorf("polymorph declares no %q edge", name)
	}
	return name, branch, nil
}

// polymorphDelegate dispatches the selected branch in the value's place.
// Traverse, Clone and Graphize use it unchanged; Dictify and Undictify
// override it to speak the [name, value] wire form.
func polymorphDelegate(dg dispatch.DispatchNode, value any) (any, error) {
	_, branch, err := selectBranch(dg, value)
	if err != nil {
		return nil, err
	}
	return branch.Call(value)
}

// fieldSource abstracts where schema-shaped data comes from: a map for
// SchemaMapping, struct fields for Object.
type fieldSource func(name string) (any, bool)

func mapSource(m map[string]any) fieldSource {
	return func(name string) (any, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func objectSource(obj marker.Object, value any) fieldSource {
	return func(name string) (any, bool) {
		return obj.FieldValue(value, name)
	}
}

// applyFields recurses into every declared field in declaration order.
// Absent fields are a missing_key unless the field's marker chain contains
// Optional, in which case they evaluate as nil. In non-collect mode an
// absent required field is a handler fault and the first failure propagates.
func applyFields(dg dispatch.DispatchNode, get fieldSource) (map[string]any, error) {
	edges := dg.Edges()
	out := make(map[string]any, len(edges))
	if !dg.Collecting() {
		for _, e := range edges {
			v, present := get(e.Name)
			if !present {
				if !edgeOptional(e.Node) {
					return nil, fmt.Errorf("missing key %q", e.Name)
				}
				v = nil
			}
			res, err := e.Node.Call(v)
			if err != nil {
				return nil, err
			}
			out[e.Name] = res
		}
		return out, nil
	}
	agg := invalid.NewAggregator()
	for _, e := range edges {
		v, present := get(e.Name)
		if !present && !edgeOptional(e.Node) {
			agg.Check(e.Name, invalid.New(invalid.CodeMissingKey, ""))
			continue
		}
		res, err := e.Node.Call(v)
		agg.Check(e.Name, err)
		if agg.Failed() {
			break
		}
		if err == nil {
			out[e.Name] = res
		}
	}
	if err := agg.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// requireMap checks that schema-shaped data is a string map. In collect
// mode the failure is a validation error; otherwise it is a handler fault.
func requireMap(dg dispatch.DispatchNode, value any) (map[string]any, error) {
	m, ok := value.(map[string]any)
	if ok {
		return m, nil
	}
	if dg.Collecting() {
		return nil, invalid.Newf(invalid.CodeTypeError, "expected mapping, got %T", value)
	}
	return nil, fmt.Errorf("expected mapping, got %T", value)
}

// requireObject extracts the Object marker at the cursor and, in collect
// mode, checks the value is an instance of its target type.
func requireObject(dg dispatch.DispatchNode, value any) (marker.Object, error) {
	obj, ok := dg.Marker().(marker.Object)
	if !ok {
		return marker.Object{}, fmt.Errorf("marker %q is not an object marker", dg.Marker().Key())
	}
	if dg.Collecting() && !obj.Accepts(value) {
		return marker.Object{}, invalid.Newf(invalid.CodeTypeError,
			"expected %s, got %T", obj.Target().Name(), value)
	}
	return obj, nil
}

// edgeOptional reports whether the edge's marker tolerates absence, i.e.
// its wrapper chain contains Optional.
func edgeOptional(dg dispatch.DispatchNode) bool {
	_, ok := marker.FindWrapper(dg.Marker(), marker.KeyOptional)
	return ok
}

// extraKeys returns the keys of m not declared as edges, sorted for
// deterministic messages.
func extraKeys(dg dispatch.DispatchNode, m map[string]any) []string {
	declared := make(map[string]bool)
	for _, name := range dg.EdgeNames() {
		declared[name] = true
	}
	var extras []string
	for k := range m {
		if !declared[k] {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	return extras
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
