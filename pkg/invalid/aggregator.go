package invalid

import "errors"

// Aggregator collects child failures while a composite node is being
// evaluated, so sibling subtrees are always all visited before the combined
// aggregate is surfaced (collect-all, not fail-fast).
type Aggregator struct {
	root *Invalid
	err  error
}

// NewAggregator creates an empty collector.
func NewAggregator() *Aggregator {
	return &Aggregator{root: &Invalid{}}
}

// Own records an issue at the current node itself.
func (a *Aggregator) Own(code, message string) {
	a.root.Add(code, message)
}

// Check inspects the error from evaluating the named child edge. Invalids
// are attached under the edge and absorbed; any other error (dispatch miss,
// handler fault) aborts aggregation and is surfaced unmodified.
func (a *Aggregator) Check(edge string, err error) {
	if err == nil || a.err != nil {
		return
	}
	var inv *Invalid
	if errors.As(err, &inv) {
		a.root.Attach(edge, inv)
		return
	}
	a.err = err
}

// Absorb merges an error's issues and child aggregates at the current node
// itself, with no edge indirection. Wrapper handlers use it to combine
// their own findings with the wrapped marker's.
func (a *Aggregator) Absorb(err error) {
	if err == nil || a.err != nil {
		return
	}
	var inv *Invalid
	if errors.As(err, &inv) {
		a.root.merge(inv)
		return
	}
	a.err = err
}

// Failed reports whether a non-Invalid error was absorbed.
func (a *Aggregator) Failed() bool {
	return a.err != nil
}

// Err returns the non-Invalid error if one occurred, the collected Invalid
// if anything failed, or nil.
func (a *Aggregator) Err() error {
	if a.err != nil {
		return a.err
	}
	return a.root.OrNil()
}

// As extracts an *Invalid from an error chain. Callers use it to distinguish
// recoverable validation failures from programming faults.
func As(err error) (*Invalid, bool) {
	var inv *Invalid
	if errors.As(err, &inv) {
		return inv, true
	}
	return nil, false
}
