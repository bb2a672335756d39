package temporal

import (
	"sort"
	"strings"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

// TInstantSet is a time-ordered set of instants. The value is defined
// only at the listed timestamps.
type TInstantSet struct {
	instants []TInstant
	bbox     Bbox
}

var _ Temporal = (*TInstantSet)(nil)

// NewTInstantSet validates and returns an instant set. Instants must be
// in strictly increasing time order with a homogeneous base type and
// spatial reference.
func NewTInstantSet(instants []*TInstant) (*TInstantSet, error) {
	if err := validateInstants(instants); err != nil {
		return nil, err
	}

	ti := &TInstantSet{instants: copyInstants(instants)}
	ti.bbox = instantsBbox(ti.instants, true, true)

	return ti, nil
}

// MustTInstantSet is NewTInstantSet that panics on error.
func MustTInstantSet(instants ...*TInstant) *TInstantSet {
	ti, err := NewTInstantSet(instants)
	if err != nil {
		panic(err)
	}

	return ti
}

// BaseType returns the base type of the values.
func (ti *TInstantSet) BaseType() datum.BaseType { return ti.instants[0].value.Type() }

// Subtype returns SubtypeInstantSet.
func (ti *TInstantSet) Subtype() Subtype { return SubtypeInstantSet }

// Interpolation returns InterpStep: between listed instants the value is
// simply undefined, and restriction treats each instant independently.
func (ti *TInstantSet) Interpolation() Interp { return InterpStep }

// NumInstants returns the number of instants.
func (ti *TInstantSet) NumInstants() int { return len(ti.instants) }

// InstantN returns the n-th instant in time order.
func (ti *TInstantSet) InstantN(n int) *TInstant { return &ti.instants[n] }

// StartTimestamp returns the first timestamp.
func (ti *TInstantSet) StartTimestamp() ttime.Timestamp { return ti.instants[0].t }

// EndTimestamp returns the last timestamp.
func (ti *TInstantSet) EndTimestamp() ttime.Timestamp {
	return ti.instants[len(ti.instants)-1].t
}

// Period returns the bounding period of the set.
func (ti *TInstantSet) Period() span.Span {
	p, err := span.NewPeriod(ti.StartTimestamp(), ti.EndTimestamp(), true, true)
	if err != nil {
		panic(err)
	}

	return p
}

// Time returns the time support: one degenerate period per instant.
func (ti *TInstantSet) Time() span.Set {
	periods := make([]span.Span, len(ti.instants))
	for i := range ti.instants {
		p, err := span.NewPeriod(ti.instants[i].t, ti.instants[i].t, true, true)
		if err != nil {
			panic(err)
		}
		periods[i] = p
	}

	return span.MustSet(periods...)
}

// Bbox returns the cached bounding box.
func (ti *TInstantSet) Bbox() Bbox { return ti.bbox }

// FindTimestamp locates t among the instants by binary search. When not
// found, pos is the insertion index.
func (ti *TInstantSet) FindTimestamp(t ttime.Timestamp) (pos int, found bool) {
	pos = sort.Search(len(ti.instants), func(i int) bool {
		return ti.instants[i].t >= t
	})
	found = pos < len(ti.instants) && ti.instants[pos].t == t

	return pos, found
}

// ValueAt returns the value at t when t is one of the listed instants.
func (ti *TInstantSet) ValueAt(t ttime.Timestamp) (datum.Datum, bool) {
	pos, found := ti.FindTimestamp(t)
	if !found {
		return datum.Datum{}, false
	}

	return ti.instants[pos].value, true
}

// Equal reports semantic equality.
func (ti *TInstantSet) Equal(other Temporal) bool {
	if ti.BaseType() != other.BaseType() {
		return false
	}
	switch o := other.(type) {
	case *TInstantSet:
		if len(ti.instants) != o.NumInstants() {
			return false
		}
		for i := range ti.instants {
			oi := o.InstantN(i)
			if ti.instants[i].t != oi.t || !ti.instants[i].value.Eq(oi.value) {
				return false
			}
		}
		return true
	case *TInstant:
		return len(ti.instants) == 1 && o.Equal(&ti.instants[0])
	default:
		return false
	}
}

// String formats the set in curly-brace notation.
func (ti *TInstantSet) String() string {
	parts := make([]string, len(ti.instants))
	for i := range ti.instants {
		parts[i] = ti.instants[i].String()
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
