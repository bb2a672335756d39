// Package temporal implements the temporal value kernel: the four
// structural subtypes binding a base type to time, their invariants and
// normalization, synchronization of two temporal values over a common
// time partition, lifted pointwise operators, and restriction to value
// and time domains.
//
// The four subtypes are:
//
//   - TInstant: a single value at a single timestamp.
//   - TInstantSet: an ordered set of instants; the value is defined only
//     at the listed timestamps.
//   - TSequence: an ordered set of instants over a period with bound
//     inclusivity and an interpolation (step or linear); the value is
//     defined at every timestamp of the period.
//   - TSequenceSet: an ordered set of disjoint sequences.
//
// Values are immutable once built: every operator allocates a fresh
// value, and every value caches its bounding box at construction. Shared
// reads across goroutines are safe.
package temporal

import (
	"github.com/arloliu/tempus/box"
	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

// Subtype identifies the structural variant of a temporal value.
type Subtype uint8

const (
	// SubtypeInstant is a single time-stamped value.
	SubtypeInstant Subtype = 0x1
	// SubtypeInstantSet is an unordered-in-value, time-ordered set of
	// instants.
	SubtypeInstantSet Subtype = 0x2
	// SubtypeSequence is a continuous trajectory over one period.
	SubtypeSequence Subtype = 0x3
	// SubtypeSequenceSet is a set of disjoint sequences.
	SubtypeSequenceSet Subtype = 0x4
)

// String returns the name of the subtype.
func (st Subtype) String() string {
	switch st {
	case SubtypeInstant:
		return "Instant"
	case SubtypeInstantSet:
		return "InstantSet"
	case SubtypeSequence:
		return "Sequence"
	case SubtypeSequenceSet:
		return "SequenceSet"
	default:
		return "Unknown"
	}
}

// Valid reports whether the subtype is a member of the enumeration.
func (st Subtype) Valid() bool {
	return st >= SubtypeInstant && st <= SubtypeSequenceSet
}

// Interp is the rule by which a sequence extends its samples over the
// continuous time between them.
type Interp uint8

const (
	// InterpNone marks subtypes without interpolation (instants).
	InterpNone Interp = 0x0
	// InterpStep keeps each value until the next instant.
	InterpStep Interp = 0x1
	// InterpLinear interpolates linearly between consecutive instants.
	InterpLinear Interp = 0x2
)

// String returns the name of the interpolation.
func (ip Interp) String() string {
	switch ip {
	case InterpNone:
		return "None"
	case InterpStep:
		return "Step"
	case InterpLinear:
		return "Linear"
	default:
		return "Unknown"
	}
}

// Bbox is the cached bounding box of a temporal value: a TBox for
// orderable base types and an STBox for spatial ones. It is computed
// once at construction and never mutated.
type Bbox struct {
	T       box.TBox
	ST      box.STBox
	Spatial bool
}

// Overlaps reports whether two bounding boxes share a point.
func (b Bbox) Overlaps(other Bbox) bool {
	if b.Spatial != other.Spatial {
		return false
	}
	if b.Spatial {
		return b.ST.Overlaps(other.ST)
	}

	return b.T.Overlaps(other.T)
}

// Period returns the time projection of the bounding box.
func (b Bbox) Period() span.Span {
	if b.Spatial {
		return b.ST.Period
	}

	return b.T.Period
}

// Union returns the elementwise union of two bounding boxes.
func (b Bbox) Union(other Bbox) Bbox {
	r := b
	if b.Spatial {
		r.ST = b.ST.Union(other.ST)
	} else {
		r.T = b.T.Union(other.T)
	}

	return r
}

// Temporal is the common interface of the four temporal subtypes.
type Temporal interface {
	// BaseType returns the base type of the value dimension.
	BaseType() datum.BaseType

	// Subtype returns the structural variant.
	Subtype() Subtype

	// Interpolation returns the interpolation of the value; InterpNone
	// for instants, InterpStep for instant sets.
	Interpolation() Interp

	// NumInstants returns the number of composing instants.
	NumInstants() int

	// InstantN returns the n-th composing instant in time order.
	InstantN(n int) *TInstant

	// StartTimestamp returns the first timestamp of the value.
	StartTimestamp() ttime.Timestamp

	// EndTimestamp returns the last timestamp of the value.
	EndTimestamp() ttime.Timestamp

	// Period returns the bounding period of the value.
	Period() span.Span

	// Time returns the exact time support as a period set.
	Time() span.Set

	// Bbox returns the cached bounding box.
	Bbox() Bbox

	// ValueAt evaluates the value at a timestamp; ok is false when the
	// timestamp is outside the time support.
	ValueAt(t ttime.Timestamp) (value datum.Datum, ok bool)

	// Equal reports semantic equality: same base type and the same
	// function from time to values.
	Equal(other Temporal) bool

	// String formats the value in the canonical text notation.
	String() string
}

// instantsBbox computes the bounding box of a non-empty slice of
// instants sharing one base type.
func instantsBbox(instants []TInstant, lowerInc, upperInc bool) Bbox {
	first := &instants[0]
	last := &instants[len(instants)-1]
	period, err := span.NewPeriod(first.t, last.t, lowerInc, upperInc)
	if err != nil {
		// Callers validated monotonic timestamps and singleton bounds.
		panic(err)
	}

	bt := first.value.Type()
	if bt.Spatial() && bt != datum.TypeNPoint {
		st := box.FromPoint(instants[0].value.PointVal())
		for i := 1; i < len(instants); i++ {
			st.ExpandPoint(instants[i].value.PointVal())
		}
		st.Period = period
		st.HasT = true

		return Bbox{ST: st, Spatial: true}
	}

	tb := box.FromPeriod(period)
	if bt.Numeric() || bt == datum.TypeNPoint {
		lo, hi := numericValue(instants[0].value), numericValue(instants[0].value)
		for i := 1; i < len(instants); i++ {
			v := numericValue(instants[i].value)
			if v.Lt(lo) {
				lo = v
			}
			if v.Gt(hi) {
				hi = v
			}
		}
		vs, err := span.Make(lo, hi, true, true)
		if err != nil {
			panic(err)
		}
		tb.Span = vs
		tb.HasX = true
	}

	return Bbox{T: tb}
}

// numericValue projects a datum onto the ordered value axis used by
// bounding boxes; network points project to their position.
func numericValue(d datum.Datum) datum.Datum {
	if d.Type() == datum.TypeNPoint {
		return datum.Float8(d.NPointVal().Position)
	}

	return d
}

// interpValue evaluates the value between two instants at timestamp t
// under the given interpolation. The timestamps of the two instants
// must bracket t.
func interpValue(a, b *TInstant, interp Interp, t ttime.Timestamp) (datum.Datum, error) {
	if t == a.t || interp == InterpStep {
		return a.value, nil
	}
	if t == b.t {
		return b.value, nil
	}

	frac := float64(t-a.t) / float64(b.t-a.t)

	return interpolateDatum(a.value, b.value, frac)
}
