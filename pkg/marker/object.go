package marker

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/lattice/pkg/typegraph"
)

// ConstructFunc assembles a target value from undictified field values.
type ConstructFunc func(fields map[string]any) (any, error)

// Object marks a Go struct that can be taken apart and reassembled field by
// field. Dictify reads the named fields, undictify collects them into a map
// and hands it to the construction contract (a custom ConstructFunc, or
// mapstructure decoding into the target type by default).
type Object struct {
	target    reflect.Type
	name      string
	construct ConstructFunc
	ptr       bool
}

// ObjectOption configures an Object marker.
type ObjectOption func(*Object)

// WithConstructor supplies a custom construction function used by undictify
// and clone instead of the default decode-into-struct behavior.
func WithConstructor(fn ConstructFunc) ObjectOption {
	return func(o *Object) { o.construct = fn }
}

// WithMarkerName overrides the key segment derived from the target type
// name. Needed when two targets share an unqualified name.
func WithMarkerName(name string) ObjectOption {
	return func(o *Object) { o.name = name }
}

// NewObject creates an Object marker for the type of prototype. A pointer
// prototype is dereferenced; the target must be a struct type.
func NewObject(prototype any, opts ...ObjectOption) Object {
	t := reflect.TypeOf(prototype)
	isPtr := false
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
		isPtr = true
	}
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("object marker target must be a struct, got %T", prototype))
	}
	o := Object{target: t, name: strings.ToLower(t.Name()), ptr: isPtr}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Object) Key() Key       { return KeyObject.Extend(o.name) }
func (o Object) String() string { return fmt.Sprintf("<Object:%s>", o.target.Name()) }

// Target returns the struct type the marker describes.
func (o Object) Target() reflect.Type { return o.target }

// Constructor returns the custom construction function, if any.
func (o Object) Constructor() ConstructFunc { return o.construct }

// NewTarget returns a pointer to a fresh zero value of the target type.
func (o Object) NewTarget() any { return reflect.New(o.target).Interface() }

// WantsPointer reports whether the marker was declared from a pointer
// prototype; reconstruction then yields pointers rather than values.
func (o Object) WantsPointer() bool { return o.ptr }

// Of builds the type graph for the object with the declared fields.
func (o Object) Of(fields ...Field) typegraph.Node {
	return schemaNode(o, fields)
}

// FieldValue reads the named field from a struct (or pointer to struct)
// value. Matching honors mapstructure tags first, then case-insensitive
// field names, the same convention mapstructure applies when decoding.
func (o Object) FieldValue(value any, name string) (any, bool) {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	f, ok := fieldByName(rv.Type(), name)
	if !ok {
		return nil, false
	}
	fv := rv.FieldByIndex(f.Index)
	if fv.Kind() == reflect.Pointer && fv.IsNil() {
		return nil, true
	}
	return fv.Interface(), true
}

// SetFieldValue writes the named field on a pointer-to-struct value.
func (o Object) SetFieldValue(target any, name string, value any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("cannot set field %q on non-pointer %T", name, target)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("cannot set field %q on %s", name, rv.Kind())
	}
	f, ok := fieldByName(rv.Type(), name)
	if !ok {
		return fmt.Errorf("no field %q on %s", name, rv.Type())
	}
	fv := rv.FieldByIndex(f.Index)
	if value == nil {
		fv.SetZero()
		return nil
	}
	vv := reflect.ValueOf(value)
	if !vv.Type().AssignableTo(fv.Type()) {
		switch {
		case canConvert(vv.Type(), fv.Type()):
			vv = vv.Convert(fv.Type())
		case vv.Kind() == reflect.Slice && fv.Kind() == reflect.Slice:
			// Recursion rebuilds sequences as []any; convert back element
			// by element.
			converted, err := convertSlice(vv, fv.Type())
			if err != nil {
				return fmt.Errorf("field %q: %w", name, err)
			}
			vv = converted
		default:
			return fmt.Errorf("field %q: cannot assign %T", name, value)
		}
	}
	fv.Set(vv)
	return nil
}

// canConvert reports whether a reflect conversion from src to dst keeps the
// value intact: numeric kinds convert between each other, everything else
// only within the same kind (named types). Excludes reflect's rune-style
// integer-to-string conversion.
func canConvert(src, dst reflect.Type) bool {
	if isNumericKind(src.Kind()) && isNumericKind(dst.Kind()) {
		return true
	}
	return src.Kind() == dst.Kind() && src.ConvertibleTo(dst)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func convertSlice(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	out := reflect.MakeSlice(dst, src.Len(), src.Len())
	elem := dst.Elem()
	for i := 0; i < src.Len(); i++ {
		ev := src.Index(i)
		if ev.Kind() == reflect.Interface {
			ev = ev.Elem()
		}
		if !ev.IsValid() {
			continue
		}
		if !ev.Type().AssignableTo(elem) {
			if !canConvert(ev.Type(), elem) {
				return reflect.Value{}, fmt.Errorf("cannot assign element %d (%s)", i, ev.Type())
			}
			ev = ev.Convert(elem)
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

// Accepts reports whether value is an instance of the target type (or a
// pointer to one).
func (o Object) Accepts(value any) bool {
	t := reflect.TypeOf(value)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t == o.target
}

func fieldByName(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("mapstructure")
		if tag != "" {
			if tagName, _, _ := strings.Cut(tag, ","); tagName == name {
				return f, true
			}
			continue
		}
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return reflect.StructField{}, false
}
