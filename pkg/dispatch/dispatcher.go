// Package dispatch implements generalized single-argument multi-method
// dispatch and its specialization to type graphs.
//
// A Dispatcher owns a table from keys to handlers plus an ordered list of
// parent dispatchers. Resolution computes a candidate key chain for a value
// (most specific first) and, for each key in order, checks the local table
// and then each parent before moving on to the next key. Registering locally
// shadows a parent for that key only, so layering a dispatcher over another
// is a non-destructive override.
package dispatch

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/marker"
)

// Handler is a dispatch target. It receives the dispatcher the call started
// from, so recursive handlers re-enter through any layered dispatcher that
// was substituted on top.
type Handler func(d *Dispatcher, value any, args ...any) (any, error)

// KeyFunc computes the ordered candidate keys for a value, most specific
// first.
type KeyFunc func(value any) []marker.Key

// MarkerKeys is the default KeyFunc: markers and keys resolve through their
// ancestry chain; anything else dispatches on its Go type name.
func MarkerKeys(value any) []marker.Key {
	switch v := value.(type) {
	case marker.Marker:
		return v.Key().Chain()
	case marker.Key:
		return v.Chain()
	default:
		return []marker.Key{marker.Key(fmt.Sprintf("%T", value))}
	}
}

// Dispatcher chooses a handler based on a single value.
type Dispatcher struct {
	name     string
	keys     KeyFunc
	tbl      table[Handler]
	fallback Handler
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithName labels the dispatcher for error messages and metrics.
func WithName(name string) Option {
	return func(d *Dispatcher) { d.name = name }
}

// WithKeyFunc replaces the candidate-key computation.
func WithKeyFunc(fn KeyFunc) Option {
	return func(d *Dispatcher) { d.keys = fn }
}

// WithParents sets the ordered delegation list consulted on local miss.
// The first parent's key function is inherited unless overridden.
func WithParents(parents ...*Dispatcher) Option {
	return func(d *Dispatcher) {
		for _, p := range parents {
			d.tbl.parents = append(d.tbl.parents, &p.tbl)
		}
		if d.keys == nil && len(parents) > 0 {
			d.keys = parents[0].keys
		}
	}
}

// WithFallback sets the handler used when every candidate key misses.
// Without one, misses fail with a MissError.
func WithFallback(h Handler) Option {
	return func(d *Dispatcher) { d.fallback = h }
}

// New creates a dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	if d.keys == nil {
		d.keys = MarkerKeys
	}
	return d
}

// Sub creates a new dispatcher layered over this one: same key function,
// this dispatcher as sole parent, no local registrations.
func (d *Dispatcher) Sub(opts ...Option) *Dispatcher {
	all := append([]Option{WithKeyFunc(d.keys), WithParents(d)}, opts...)
	return New(all...)
}

// When registers a handler for a key, overwriting any local entry. It
// returns the dispatcher for fluent chaining.
func (d *Dispatcher) When(k marker.Key, h Handler) *Dispatcher {
	d.tbl.set(k, h)
	return d
}

// Resolve finds the handler for a value without invoking it.
func (d *Dispatcher) Resolve(value any) (Handler, error) {
	keys := d.keys(value)
	if h, _, ok := d.tbl.resolve(keys); ok {
		return h, nil
	}
	if d.fallback != nil {
		return d.fallback, nil
	}
	var primary marker.Key
	if len(keys) > 0 {
		primary = keys[0]
	}
	return nil, &MissError{Dispatcher: d.name, Key: primary, Keys: keys}
}

// Call resolves a handler for value and invokes it as
// handler(d, value, args...).
func (d *Dispatcher) Call(value any, args ...any) (any, error) {
	h, err := d.Resolve(value)
	if err != nil {
		return nil, err
	}
	return h(d, value, args...)
}
