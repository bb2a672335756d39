// Package box provides the bounding boxes of the tempus library: the
// value-by-time TBox, the space-by-time STBox, and the TboxNode pair
// used as the traversal value of space-partitioning indexes.
//
// Either dimension of a TBox may be absent; operations over boxes only
// compare the dimensions both operands carry, and directional operators
// require the relevant dimension on both sides.
package box

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

// TBox is a bounding box over value and time. The value span covers the
// values a temporal number takes; the period covers its time extent.
type TBox struct {
	Span   span.Span // value dimension, valid iff HasX
	Period span.Span // time dimension, valid iff HasT
	HasX   bool
	HasT   bool
}

// FromSpan returns a TBox with only a value dimension.
func FromSpan(s span.Span) TBox {
	return TBox{Span: s, HasX: true}
}

// FromPeriod returns a TBox with only a time dimension.
func FromPeriod(p span.Span) TBox {
	return TBox{Period: p, HasT: true}
}

// FromSpanPeriod returns a TBox with both dimensions.
func FromSpanPeriod(s, p span.Span) TBox {
	return TBox{Span: s, Period: p, HasX: true, HasT: true}
}

// IsEmpty reports whether the box carries no dimension at all.
func (b TBox) IsEmpty() bool { return !b.HasX && !b.HasT }

// Equal reports dimension-wise equality.
func (b TBox) Equal(other TBox) bool {
	if b.HasX != other.HasX || b.HasT != other.HasT {
		return false
	}
	if b.HasX && !b.Span.Equal(other.Span) {
		return false
	}
	if b.HasT && !b.Period.Equal(other.Period) {
		return false
	}

	return true
}

// Adjust grows the box in place so it covers other. This is the
// elementwise union primitive used by index insertion and splitting.
func (b *TBox) Adjust(other *TBox) {
	if other.HasX {
		if b.HasX {
			b.Span = b.Span.Extend(other.Span)
		} else {
			b.Span = other.Span
			b.HasX = true
		}
	}
	if other.HasT {
		if b.HasT {
			b.Period = b.Period.Extend(other.Period)
		} else {
			b.Period = other.Period
			b.HasT = true
		}
	}
}

// Union returns the smallest box covering both boxes.
func (b TBox) Union(other TBox) TBox {
	r := b
	r.Adjust(&other)

	return r
}

// Overlaps reports whether the boxes share a point in every dimension
// common to both.
func (b TBox) Overlaps(other TBox) bool {
	if b.HasX && other.HasX && !b.Span.Overlaps(other.Span) {
		return false
	}
	if b.HasT && other.HasT && !b.Period.Overlaps(other.Period) {
		return false
	}

	return true
}

// Contains reports whether the box contains other in every dimension
// common to both.
func (b TBox) Contains(other TBox) bool {
	if b.HasX && other.HasX && !b.Span.ContainsSpan(other.Span) {
		return false
	}
	if b.HasT && other.HasT && !b.Period.ContainsSpan(other.Period) {
		return false
	}

	return true
}

// ContainedBy reports whether other contains the box.
func (b TBox) ContainedBy(other TBox) bool { return other.Contains(b) }

// Same reports whether the boxes are equal on their common dimensions.
func (b TBox) Same(other TBox) bool {
	if b.HasX && other.HasX && !b.Span.Equal(other.Span) {
		return false
	}
	if b.HasT && other.HasT && !b.Period.Equal(other.Period) {
		return false
	}

	return true
}

// Adjacent reports whether the boxes do not overlap and their value
// spans or their periods are adjacent.
func (b TBox) Adjacent(other TBox) bool {
	if b.Overlaps(other) {
		return false
	}
	if b.HasX && other.HasX && b.Span.Adjacent(other.Span) {
		return true
	}
	if b.HasT && other.HasT && b.Period.Adjacent(other.Period) {
		return true
	}

	return false
}

// requireX panics unless both boxes carry the value dimension.
// Directional operators are only defined on shared dimensions; callers
// in the index layer guarantee this.
func requireX(a, b TBox) {
	if !a.HasX || !b.HasX {
		panic("box: value dimension required")
	}
}

func requireT(a, b TBox) {
	if !a.HasT || !b.HasT {
		panic("box: time dimension required")
	}
}

// Left reports whether the box is strictly left of other on the value axis.
func (b TBox) Left(other TBox) bool {
	requireX(b, other)
	return b.Span.Left(other.Span)
}

// OverLeft reports whether the box does not extend right of other.
func (b TBox) OverLeft(other TBox) bool {
	requireX(b, other)
	return b.Span.OverLeft(other.Span)
}

// Right reports whether the box is strictly right of other on the value axis.
func (b TBox) Right(other TBox) bool {
	requireX(b, other)
	return b.Span.Right(other.Span)
}

// OverRight reports whether the box does not extend left of other.
func (b TBox) OverRight(other TBox) bool {
	requireX(b, other)
	return b.Span.OverRight(other.Span)
}

// Before reports whether the box is strictly before other in time.
func (b TBox) Before(other TBox) bool {
	requireT(b, other)
	return b.Period.Left(other.Period)
}

// OverBefore reports whether the box does not extend after other.
func (b TBox) OverBefore(other TBox) bool {
	requireT(b, other)
	return b.Period.OverLeft(other.Period)
}

// After reports whether the box is strictly after other in time.
func (b TBox) After(other TBox) bool {
	requireT(b, other)
	return b.Period.Right(other.Period)
}

// OverAfter reports whether the box does not extend before other.
func (b TBox) OverAfter(other TBox) bool {
	requireT(b, other)
	return b.Period.OverRight(other.Period)
}

// volume returns the generalized volume of the box: the product of the
// extents of its present dimensions, with time measured in seconds to
// keep magnitudes comparable.
func (b TBox) volume() float64 {
	v := 1.0
	if b.HasX {
		v *= b.Span.Upper.Float64() - b.Span.Lower.Float64()
	}
	if b.HasT {
		v *= float64(b.Period.Upper.TimestampVal()-b.Period.Lower.TimestampVal()) /
			float64(ttime.MicrosPerSecond)
	}

	return v
}

// Penalty returns the increase in volume caused by extending the box to
// cover inserted. As in the R-tree paper the change in area is the
// insertion penalty.
func (b TBox) Penalty(inserted TBox) float64 {
	u := b.Union(inserted)

	return u.volume() - b.volume()
}

// NearestDistance returns a lower bound on the distance between any
// value covered by the box and any value covered by other, on the value
// axis. When the time projections are disjoint the boxes can never meet,
// so the distance is +Inf.
func (b TBox) NearestDistance(other TBox) float64 {
	if b.HasT && other.HasT && !b.Period.Overlaps(other.Period) {
		return math.Inf(1)
	}
	if !b.HasX || !other.HasX {
		return 0
	}

	return b.Span.Distance(other.Span)
}

// String formats the box in TBOX XT notation.
func (b TBox) String() string {
	var parts []string
	if b.HasX {
		parts = append(parts, b.Span.String())
	}
	if b.HasT {
		parts = append(parts, b.Period.String())
	}
	kind := ""
	switch {
	case b.HasX && b.HasT:
		kind = "XT"
	case b.HasX:
		kind = "X"
	case b.HasT:
		kind = "T"
	}

	return fmt.Sprintf("TBOX %s(%s)", kind, strings.Join(parts, ","))
}

// FromValueTime returns the TBox of a single numeric value at a single
// timestamp.
func FromValueTime(v datum.Datum, t ttime.Timestamp) (TBox, error) {
	if !v.Type().Numeric() {
		return TBox{}, fmt.Errorf("%w: %s has no value box", errs.ErrTypeMismatch, v.Type())
	}
	vs, err := span.Make(v, v, true, true)
	if err != nil {
		return TBox{}, err
	}
	p, err := span.NewPeriod(t, t, true, true)
	if err != nil {
		return TBox{}, err
	}

	return FromSpanPeriod(vs, p), nil
}
