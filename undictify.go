package lattice

import (
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/lattice/pkg/dispatch"
	"github.com/aretw0/lattice/pkg/invalid"
	"github.com/aretw0/lattice/pkg/marker"
)

// newUndictifyFrom layers deserialization handlers over a clone base.
// Undictify runs in collect mode: malformed input of any shape is reported
// through the same Invalid vocabulary as validation, so it doubles as an
// input gate for untrusted data.
func newUndictifyFrom(base *dispatch.GraphDispatcher, opts ...dispatch.GraphOption) *dispatch.GraphDispatcher {
	all := append([]dispatch.GraphOption{
		dispatch.GraphName("undictify"),
		dispatch.Collect(true),
	}, opts...)
	d := base.Sub(all...)
	d.When(marker.KeyDate, undictifyTemporal(dateLayout))
	d.When(marker.KeyDateTime, undictifyTemporal(time.RFC3339))
	d.When(marker.KeyTime, undictifyTemporal(timeLayout))
	d.When(marker.KeyMapping, undictifyMapping)
	d.When(marker.KeyObject, undictifyObject)
	d.When(marker.KeyPolymorph, undictifyPolymorph)
	return d
}

// undictifyTemporal parses the serialized layout back to a time.Time.
// A time.Time input passes through, so undictify is idempotent.
func undictifyTemporal(layout string) dispatch.GraphHandler {
	return func(dg dispatch.DispatchNode, value any) (any, error) {
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			t, err := time.Parse(layout, v)
			if err != nil {
				return nil, invalid.Newf(invalid.CodeBadFormat, "%q does not match %s", v, layout)
			}
			return t, nil
		default:
			return nil, invalid.Newf(invalid.CodeTypeError, "expected string, got %T", value)
		}
	}
}

func undictifyMapping(dg dispatch.DispatchNode, value any) (any, error) {
	m, err := requireMap(dg, value)
	if err != nil {
		return nil, err
	}
	out, err := applyFields(dg, mapSource(m))
	if err != nil {
		return nil, err
	}
	policy := marker.Discard
	if sm, ok := dg.Marker().(marker.SchemaMapping); ok {
		policy = sm.Extra
	}
	switch policy {
	case marker.Save:
		copyExtrasAlways(dg, m, out)
	case marker.Reject:
		if extras := extraKeys(dg, m); len(extras) > 0 {
			return nil, invalid.Newf(invalid.CodeUnexpectedFields, "unexpected keys: %v", extras)
		}
	}
	return out, nil
}

func copyExtrasAlways(dg dispatch.DispatchNode, src, dst map[string]any) {
	for _, k := range extraKeys(dg, src) {
		dst[k] = src[k]
	}
}

// undictifyObject rebuilds the target struct: undictify every declared
// field, reject undeclared keys, then hand the field map to the marker's
// construction contract.
func undictifyObject(dg dispatch.DispatchNode, value any) (any, error) {
	obj, ok := dg.Marker().(marker.Object)
	if !ok {
		return nil, invalid.Newf(invalid.CodeTypeError, "marker %q is not an object marker", dg.Marker().Key())
	}
	m, err := requireMap(dg, value)
	if err != nil {
		return nil, err
	}
	fields, err := applyFields(dg, mapSource(m))
	if err != nil {
		return nil, err
	}
	if extras := extraKeys(dg, m); len(extras) > 0 {
		return nil, invalid.Newf(invalid.CodeUnexpectedFields, "unexpected keys: %v", extras)
	}
	return constructObject(obj, fields)
}

// undictifyPolymorph reads the [name, value] wire pair and undictifies the
// value through the named branch.
func undictifyPolymorph(dg dispatch.DispatchNode, value any) (any, error) {
	pair, ok := asSequence(value)
	if !ok {
		return nil, invalid.Newf(invalid.CodeTypeError, "expected [name, value] pair, got %T", value)
	}
	if len(pair) != 2 {
		return nil, invalid.Newf(invalid.CodeBadList, "expected 2 elements, got %d", len(pair))
	}
	name, ok := pair[0].(string)
	if !ok {
		return nil, invalid.Newf(invalid.CodeTypeError, "branch name must be a string, got %T", pair[0])
	}
	branch, ok := dg.Edge(name)
	if !ok {
		return nil, invalid.Newf(invalid.CodeBadValue, "unknown branch %q", name)
	}
	return branch.Call(pair[1])
}

// constructObject applies the marker's construction contract: a custom
// constructor if one was declared, otherwise mapstructure decoding into a
// fresh instance of the target type.
func constructObject(obj marker.Object, fields map[string]any) (any, error) {
	if fn := obj.Constructor(); fn != nil {
		out, err := fn(fields)
		if err != nil {
			return nil, invalid.Newf(invalid.CodeBadValue, "constructing %s: %v", obj.Target().Name(), err)
		}
		return out, nil
	}
	out, err := decodeObject(obj, fields)
	if err != nil {
		return nil, invalid.Newf(invalid.CodeTypeError, "constructing %s: %v", obj.Target().Name(), err)
	}
	return out, nil
}

func decodeObject(obj marker.Object, fields map[string]any) (any, error) {
	ptr := obj.NewTarget()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  ptr,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(fields); err != nil {
		return nil, err
	}
	if obj.WantsPointer() {
		return ptr, nil
	}
	return reflect.ValueOf(ptr).Elem().Interface(), nil
}
