// Package validators provides plug-in value checks that attach to a type
// graph node through the Validated wrapper. Only the Validate dispatcher
// interprets them; every other dispatcher passes through the wrapper
// untouched.
package validators

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/aretw0/lattice/pkg/invalid"
	"github.com/aretw0/lattice/pkg/marker"
	"github.com/aretw0/lattice/pkg/typegraph"
)

// Validator checks one value and reports failures as *invalid.Invalid.
// A nil return means the value passed; nil values are ignored by
// convention (wrap with Optional to permit them, or leave the inner marker
// to reject them).
type Validator interface {
	Name() string
	Validate(value any) error
}

// Validated wraps a marker with an ordered validator list.
type Validated struct {
	marker.Wrap
	Validators []Validator
}

func (v Validated) Key() marker.Key { return marker.KeyValidated }

func (v Validated) String() string {
	return fmt.Sprintf("<Validated(%v)>", v.Marker)
}

// Wrap overlays a Validated wrapper on a graph-like value.
func Wrap(v any, checks ...Validator) typegraph.Node {
	return marker.WrapGraph(func(m marker.Marker) marker.Wrapper {
		return Validated{Wrap: marker.Wrap{Marker: m}, Validators: checks}
	}, v)
}

// InRange requires a value to lie between two endpoints, inclusive. Nil
// endpoints leave that side unbounded. Numbers compare numerically,
// strings lexically.
type InRange struct {
	Low  any
	High any
}

func (r InRange) Name() string { return "in_range" }

func (r InRange) Validate(value any) error {
	if value == nil {
		return nil
	}
	if r.Low != nil {
		if c, ok := compare(value, r.Low); ok && c < 0 {
			return invalid.Newf("range_error/too_low", "%v is below %v", value, r.Low)
		}
	}
	if r.High != nil {
		if c, ok := compare(value, r.High); ok && c > 0 {
			return invalid.Newf("range_error/too_high", "%v is above %v", value, r.High)
		}
	}
	return nil
}

// HasLength requires an exact length.
type HasLength struct {
	Length int
}

func (h HasLength) Name() string { return "has_length" }

func (h HasLength) Validate(value any) error {
	n, ok := lengthOf(value)
	if !ok {
		return nil
	}
	if n != h.Length {
		return invalid.Newf("value_error/wrong_length",
			"expected length %d, not length %d", h.Length, n)
	}
	return nil
}

// LengthInRange bounds a value's length. Nil bounds are open.
type LengthInRange struct {
	Min *int
	Max *int
}

func (l LengthInRange) Name() string { return "length_in_range" }

func (l LengthInRange) Validate(value any) error {
	n, ok := lengthOf(value)
	if !ok {
		return nil
	}
	if l.Min != nil && n < *l.Min {
		return invalid.Newf("value_error/too_short",
			"length %d is lower than minimum %d", n, *l.Min)
	}
	if l.Max != nil && n > *l.Max {
		return invalid.Newf("value_error/too_long",
			"length %d is higher than maximum %d", n, *l.Max)
	}
	return nil
}

// Regexp requires string values to match a pattern.
type Regexp struct {
	Pattern *regexp.Regexp
}

// MustRegexp compiles a pattern into a Regexp validator.
func MustRegexp(pattern string) Regexp {
	return Regexp{Pattern: regexp.MustCompile(pattern)}
}

func (r Regexp) Name() string { return "regexp" }

func (r Regexp) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	if !r.Pattern.MatchString(s) {
		return invalid.Newf("bad_value/pattern", "%q does not match %s", s, r.Pattern)
	}
	return nil
}

// OneOf requires the value to be one of a fixed set.
type OneOf struct {
	Choices []any
}

func (o OneOf) Name() string { return "one_of" }

func (o OneOf) Validate(value any) error {
	for _, c := range o.Choices {
		if reflect.DeepEqual(value, c) {
			return nil
		}
	}
	return invalid.Newf("bad_value/not_in_set", "%v is not an allowed value", value)
}

// compare orders two values when they are comparable with each other:
// numbers numerically, strings lexically.
func compare(a, b any) (int, bool) {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func lengthOf(v any) (int, bool) {
	switch x := v.(type) {
	case string:
		return len(x), true
	case []any:
		return len(x), true
	case map[string]any:
		return len(x), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len(), true
	}
	return 0, false
}
