package lattice

import (
	"strings"
	"time"

	"github.com/aretw0/lattice/pkg/dispatch"
	"github.com/aretw0/lattice/pkg/invalid"
	"github.com/aretw0/lattice/pkg/marker"
	"github.com/aretw0/lattice/pkg/validators"
)

// newValidateFrom layers the validation overrides over a traversal base.
// The composite recursion is inherited; collect mode switches it to
// collect-all aggregation, so a top-level call either returns nil (fully
// valid) or a single *invalid.Invalid mirroring exactly the failing subset
// of the type graph.
func newValidateFrom(base *dispatch.GraphDispatcher, opts ...dispatch.GraphOption) *dispatch.GraphDispatcher {
	all := append([]dispatch.GraphOption{
		dispatch.GraphName("validate"),
		dispatch.Collect(true),
	}, opts...)
	d := base.Sub(all...)
	d.When(marker.KeyString, validateKind("string", func(v any) bool {
		_, ok := v.(string)
		return ok
	}))
	d.When(marker.KeyBool, validateKind("bool", func(v any) bool {
		_, ok := v.(bool)
		return ok
	}))
	d.When(marker.KeyInt, validateKind("int", isInt))
	d.When(marker.KeyFloat, validateKind("float", isNumber))
	d.When(marker.KeyTypedLeaf, validateTypedLeaf)
	d.When(marker.KeyTemporal, validateTemporal)
	d.When(marker.KeyMapping, validateMapping)
	d.When(marker.KeyObject, validateObject)
	d.When(marker.KeyValidated, validateValidated)
	return d
}

// validateKind builds a leaf shape check emitting type_error on mismatch.
func validateKind(name string, ok func(any) bool) dispatch.GraphHandler {
	return func(dg dispatch.DispatchNode, value any) (any, error) {
		if !ok(value) {
			return nil, invalid.Newf(invalid.CodeTypeError, "expected %s, got %T", name, value)
		}
		return nil, nil
	}
}

// isInt accepts Go integer kinds plus whole-number float64, which is what
// JSON decoding produces for integers.
func isInt(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == float64(int64(n))
	default:
		return false
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

func validateTypedLeaf(dg dispatch.DispatchNode, value any) (any, error) {
	tl, ok := dg.Marker().(marker.TypedLeaf)
	if !ok || tl.Check == nil {
		return nil, nil
	}
	if !tl.Check(value) {
		return nil, invalid.Newf(invalid.CodeTypeError, "value %v rejected by %s", value, tl.Name)
	}
	return nil, nil
}

// All temporal markers validate a time.Time; the serialized forms differ
// only in dictify/undictify.
func validateTemporal(dg dispatch.DispatchNode, value any) (any, error) {
	if _, ok := value.(time.Time); !ok {
		return nil, invalid.Newf(invalid.CodeTypeError, "expected time.Time, got %T", value)
	}
	return nil, nil
}

func validateMapping(dg dispatch.DispatchNode, value any) (any, error) {
	m, err := requireMap(dg, value)
	if err != nil {
		return nil, err
	}
	_, err = applyFields(dg, mapSource(m))
	fields, isInvalid := invalid.As(err)
	if err != nil && !isInvalid {
		return nil, err
	}
	return nil, foldExtras(dg, m, fields)
}

// foldExtras applies the extra-field policy on top of any collected field
// failures. Save ignores extras; Discard and Reject report them.
func foldExtras(dg dispatch.DispatchNode, m map[string]any, fields *invalid.Invalid) error {
	policy := marker.Discard
	if sm, ok := dg.Marker().(marker.SchemaMapping); ok {
		policy = sm.Extra
	}
	out := fields
	if out == nil {
		out = invalid.New("", "")
	}
	if policy != marker.Save {
		if extras := extraKeys(dg, m); len(extras) > 0 {
			out.Add(invalid.CodeUnexpectedFields, "unexpected keys: "+strings.Join(extras, ", "))
		}
	}
	return out.OrNil()
}

func validateObject(dg dispatch.DispatchNode, value any) (any, error) {
	obj, err := requireObject(dg, value)
	if err != nil {
		return nil, err
	}
	_, err = applyFields(dg, objectSource(obj, value))
	return nil, err
}

// validateValidated runs the wrapper's validator list, then delegates to
// the wrapped marker. Issues from both aggregate at the same node.
func validateValidated(dg dispatch.DispatchNode, value any) (any, error) {
	v, ok := dg.Marker().(validators.Validated)
	if !ok {
		return dg.Inner(value)
	}
	agg := invalid.NewAggregator()
	for _, check := range v.Validators {
		agg.Absorb(check.Validate(value))
	}
	_, err := dg.Inner(value)
	agg.Absorb(err)
	return nil, agg.Err()
}
