package temporal

import (
	"fmt"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/geo"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

// TInstant is a single value at a single timestamp.
type TInstant struct {
	value datum.Datum
	t     ttime.Timestamp
	bbox  Bbox
}

var _ Temporal = (*TInstant)(nil)

// NewTInstant validates and returns an instant. The timestamp must be
// finite and the datum must carry a valid base type.
func NewTInstant(value datum.Datum, t ttime.Timestamp) (*TInstant, error) {
	if !value.Type().Valid() {
		return nil, fmt.Errorf("%w: invalid base type", errs.ErrTypeMismatch)
	}
	if !t.IsFinite() {
		return nil, fmt.Errorf("%w: instant timestamp must be finite", errs.ErrBadBounds)
	}

	inst := &TInstant{value: value, t: t}
	inst.bbox = instantsBbox([]TInstant{*inst}, true, true)

	return inst, nil
}

// MustTInstant is NewTInstant that panics on error; intended for tests.
func MustTInstant(value datum.Datum, t ttime.Timestamp) *TInstant {
	inst, err := NewTInstant(value, t)
	if err != nil {
		panic(err)
	}

	return inst
}

// Value returns the instant's value.
func (inst *TInstant) Value() datum.Datum { return inst.value }

// Timestamp returns the instant's timestamp.
func (inst *TInstant) Timestamp() ttime.Timestamp { return inst.t }

// BaseType returns the base type of the value.
func (inst *TInstant) BaseType() datum.BaseType { return inst.value.Type() }

// Subtype returns SubtypeInstant.
func (inst *TInstant) Subtype() Subtype { return SubtypeInstant }

// Interpolation returns InterpNone.
func (inst *TInstant) Interpolation() Interp { return InterpNone }

// NumInstants returns 1.
func (inst *TInstant) NumInstants() int { return 1 }

// InstantN returns the instant itself for n == 0.
func (inst *TInstant) InstantN(n int) *TInstant {
	if n != 0 {
		panic(fmt.Sprintf("temporal: instant index %d out of range", n))
	}

	return inst
}

// StartTimestamp returns the instant's timestamp.
func (inst *TInstant) StartTimestamp() ttime.Timestamp { return inst.t }

// EndTimestamp returns the instant's timestamp.
func (inst *TInstant) EndTimestamp() ttime.Timestamp { return inst.t }

// Period returns the degenerate period [t, t].
func (inst *TInstant) Period() span.Span {
	p, err := span.NewPeriod(inst.t, inst.t, true, true)
	if err != nil {
		panic(err)
	}

	return p
}

// Time returns the singleton period set {[t, t]}.
func (inst *TInstant) Time() span.Set {
	return span.MustSet(inst.Period())
}

// Bbox returns the cached bounding box.
func (inst *TInstant) Bbox() Bbox { return inst.bbox }

// ValueAt returns the value when t matches the instant's timestamp.
func (inst *TInstant) ValueAt(t ttime.Timestamp) (datum.Datum, bool) {
	if t != inst.t {
		return datum.Datum{}, false
	}

	return inst.value, true
}

// SRID returns the SRID of a spatial instant, or 0.
func (inst *TInstant) SRID() int32 {
	if p := inst.value.PointVal(); p != nil {
		return p.SRID
	}

	return 0
}

// Point returns the spatial payload of the instant, or nil.
func (inst *TInstant) Point() *geo.Point { return inst.value.PointVal() }

// Equal reports semantic equality.
func (inst *TInstant) Equal(other Temporal) bool {
	o, ok := other.(*TInstant)
	if !ok {
		// A single-instant set or sequence denotes the same function.
		if other.NumInstants() != 1 {
			return false
		}
		o = other.InstantN(0)
	}

	return inst.t == o.t && inst.value.Eq(o.value)
}

// String formats the instant as value@timestamp.
func (inst *TInstant) String() string {
	return fmt.Sprintf("%s@%s", inst.value, inst.t)
}

// clone returns a copy of the instant with deep-copied payload.
func (inst *TInstant) clone() TInstant {
	return TInstant{value: inst.value.Clone(), t: inst.t, bbox: inst.bbox}
}
