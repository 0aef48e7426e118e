package marker

import "fmt"

// Leaf markers carry no children. Validation, serialization and parsing
// behavior for each kind lives in the default dispatchers; the markers
// themselves are inert tags.

// String marks a string value.
type String struct{}

func (String) Key() Key       { return KeyString }
func (String) String() string { return "<String>" }

// Int marks an integer value. Whole-number float64 values are accepted by
// validation because JSON decoding produces them.
type Int struct{}

func (Int) Key() Key       { return KeyInt }
func (Int) String() string { return "<Int>" }

// Float marks a floating-point value; integers are accepted too.
type Float struct{}

func (Float) Key() Key       { return KeyFloat }
func (Float) String() string { return "<Float>" }

// Bool marks a boolean value.
type Bool struct{}

func (Bool) Key() Key       { return KeyBool }
func (Bool) String() string { return "<Bool>" }

// Passthrough marks an explicitly uninterpreted value. Every default
// dispatcher passes it through unchanged.
type Passthrough struct{}

func (Passthrough) Key() Key       { return KeyPassthrough }
func (Passthrough) String() string { return "<Passthrough>" }

// Date marks a calendar date, serialized as "2006-01-02".
type Date struct{}

func (Date) Key() Key       { return KeyDate }
func (Date) String() string { return "<Date>" }

// DateTime marks a timestamp, serialized as RFC 3339.
type DateTime struct{}

func (DateTime) Key() Key       { return KeyDateTime }
func (DateTime) String() string { return "<DateTime>" }

// Time marks a time of day, serialized as "15:04:05".
type Time struct{}

func (Time) Key() Key       { return KeyTime }
func (Time) String() string { return "<Time>" }

// TypedLeaf marks a value that must satisfy a named predicate. It is the
// escape hatch for scalar kinds the builtin vocabulary does not cover.
type TypedLeaf struct {
	Name  string
	Check func(any) bool
}

func (t TypedLeaf) Key() Key       { return KeyTypedLeaf.Extend(t.Name) }
func (t TypedLeaf) String() string { return fmt.Sprintf("<TypedLeaf:%s>", t.Name) }
