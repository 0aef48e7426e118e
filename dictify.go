package lattice

import (
	"time"

	"github.com/aretw0/lattice/pkg/dispatch"
	"github.com/aretw0/lattice/pkg/invalid"
	"github.com/aretw0/lattice/pkg/marker"
)

// Serialized layouts for the temporal markers. Date and Time are calendar
// and clock fragments; DateTime is full RFC 3339.
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// newDictifyFrom layers serialization handlers over a clone base: scalars
// pass through, temporal values become strings, objects become field maps.
// The result contains only JSON-ready primitives, sequences and string
// maps.
func newDictifyFrom(base *dispatch.GraphDispatcher, opts ...dispatch.GraphOption) *dispatch.GraphDispatcher {
	all := append([]dispatch.GraphOption{dispatch.GraphName("dictify")}, opts...)
	d := base.Sub(all...)
	d.When(marker.KeyDate, dictifyTemporal(dateLayout))
	d.When(marker.KeyDateTime, dictifyTemporal(time.RFC3339))
	d.When(marker.KeyTime, dictifyTemporal(timeLayout))
	d.When(marker.KeyObject, dictifyObject)
	d.When(marker.KeyPolymorph, dictifyPolymorph)
	return d
}

func dictifyTemporal(layout string) dispatch.GraphHandler {
	return func(dg dispatch.DispatchNode, value any) (any, error) {
		t, ok := value.(time.Time)
		if !ok {
			return nil, invalid.Newf(invalid.CodeTypeError, "expected time.Time, got %T", value)
		}
		return t.Format(layout), nil
	}
}

// dictifyObject lowers an object to a map of dictified fields, unlike
// clone's object handler which reconstructs the object.
func dictifyObject(dg dispatch.DispatchNode, value any) (any, error) {
	obj, err := requireObject(dg, value)
	if err != nil {
		return nil, err
	}
	return applyFields(dg, objectSource(obj, value))
}

// dictifyPolymorph lowers the value through its branch and records which
// branch applied: the wire form is [name, dictified].
func dictifyPolymorph(dg dispatch.DispatchNode, value any) (any, error) {
	name, branch, err := selectBranch(dg, value)
	if err != nil {
		return nil, err
	}
	inner, err := branch.Call(value)
	if err != nil {
		return nil, err
	}
	return []any{name, inner}, nil
}
