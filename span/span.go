// Package span provides half-open ranges (spans) and ordered disjoint
// unions of ranges (span sets) over the ordered base types.
//
// A span carries two bounds with per-bound inclusivity. Integer spans
// are kept in a canonical form with an inclusive lower and exclusive
// upper bound, so [1, 3] and [1, 4) compare equal. Span sets maintain
// their spans sorted, non-overlapping and non-adjacent.
package span

import (
	"fmt"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/ttime"
)

// Span is a range over an ordered base type with per-bound inclusivity.
type Span struct {
	Lower    datum.Datum
	Upper    datum.Datum
	LowerInc bool
	UpperInc bool
}

// Make validates and returns a span. It fails with errs.ErrBadBounds
// when lower is above upper, or when the bounds are equal but not both
// inclusive. Integer spans are canonicalized to [L, U+1).
func Make(lower, upper datum.Datum, lowerInc, upperInc bool) (Span, error) {
	if lower.Type() != upper.Type() {
		return Span{}, fmt.Errorf("%w: %s vs %s", errs.ErrBaseMismatch, lower.Type(), upper.Type())
	}
	if !lower.Type().Ordered() {
		return Span{}, fmt.Errorf("%w: %s spans are not ordered", errs.ErrTypeMismatch, lower.Type())
	}

	cmp := lower.Cmp(upper)
	if cmp > 0 {
		return Span{}, fmt.Errorf("%w: lower %s above upper %s", errs.ErrBadBounds, lower, upper)
	}
	if cmp == 0 && !(lowerInc && upperInc) {
		return Span{}, fmt.Errorf("%w: empty span interior", errs.ErrBadBounds)
	}

	s := Span{Lower: lower, Upper: upper, LowerInc: lowerInc, UpperInc: upperInc}
	s.canonicalize()

	return s, nil
}

// MustMake is Make that panics on error; intended for literals in tests.
func MustMake(lower, upper datum.Datum, lowerInc, upperInc bool) Span {
	s, err := Make(lower, upper, lowerInc, upperInc)
	if err != nil {
		panic(err)
	}

	return s
}

// NewPeriod returns a timestamp span.
func NewPeriod(lower, upper ttime.Timestamp, lowerInc, upperInc bool) (Span, error) {
	return Make(datum.TimestampTz(lower), datum.TimestampTz(upper), lowerInc, upperInc)
}

// canonicalize rewrites integer spans to the [L, U+1) form.
func (s *Span) canonicalize() {
	switch s.Lower.Type() {
	case datum.TypeInt4:
		if !s.LowerInc {
			s.Lower = datum.Int4(s.Lower.Int4Val() + 1)
			s.LowerInc = true
		}
		if s.UpperInc {
			s.Upper = datum.Int4(s.Upper.Int4Val() + 1)
			s.UpperInc = false
		}
	case datum.TypeInt8:
		if !s.LowerInc {
			s.Lower = datum.Int8(s.Lower.Int8Val() + 1)
			s.LowerInc = true
		}
		if s.UpperInc {
			s.Upper = datum.Int8(s.Upper.Int8Val() + 1)
			s.UpperInc = false
		}
	}
}

// Type returns the base type of the span bounds.
func (s Span) Type() datum.BaseType { return s.Lower.Type() }

// IsSingleton reports whether the span contains exactly one value.
func (s Span) IsSingleton() bool {
	if s.Lower.Eq(s.Upper) {
		return true
	}
	// Canonical integer form: [n, n+1) is the singleton n.
	switch s.Type() {
	case datum.TypeInt4:
		return s.Upper.Int4Val()-s.Lower.Int4Val() == 1 && !s.UpperInc
	case datum.TypeInt8:
		return s.Upper.Int8Val()-s.Lower.Int8Val() == 1 && !s.UpperInc
	}

	return false
}

// Equal reports bound-wise equality after canonicalization.
func (s Span) Equal(other Span) bool {
	return s.Lower.Eq(other.Lower) && s.Upper.Eq(other.Upper) &&
		s.LowerInc == other.LowerInc && s.UpperInc == other.UpperInc
}

// Contains reports whether the span contains the value.
func (s Span) Contains(v datum.Datum) bool {
	c := v.Cmp(s.Lower)
	if c < 0 || (c == 0 && !s.LowerInc) {
		return false
	}
	c = v.Cmp(s.Upper)
	if c > 0 || (c == 0 && !s.UpperInc) {
		return false
	}

	return true
}

// ContainsSpan reports whether the span contains other entirely.
func (s Span) ContainsSpan(other Span) bool {
	cl := s.Lower.Cmp(other.Lower)
	if cl > 0 || (cl == 0 && !s.LowerInc && other.LowerInc) {
		return false
	}
	cu := s.Upper.Cmp(other.Upper)
	if cu < 0 || (cu == 0 && !s.UpperInc && other.UpperInc) {
		return false
	}

	return true
}

// Overlaps reports whether the two spans share at least one value.
func (s Span) Overlaps(other Span) bool {
	c := s.Lower.Cmp(other.Upper)
	if c > 0 || (c == 0 && !(s.LowerInc && other.UpperInc)) {
		return false
	}
	c = other.Lower.Cmp(s.Upper)
	if c > 0 || (c == 0 && !(other.LowerInc && s.UpperInc)) {
		return false
	}

	return true
}

// Adjacent reports whether the two spans touch without overlapping:
// equal boundary values with exactly one inclusive side.
func (s Span) Adjacent(other Span) bool {
	if s.Upper.Eq(other.Lower) {
		return s.UpperInc != other.LowerInc
	}
	if other.Upper.Eq(s.Lower) {
		return other.UpperInc != s.LowerInc
	}

	return false
}

// Left reports whether the span is strictly before other in value order.
func (s Span) Left(other Span) bool {
	c := s.Upper.Cmp(other.Lower)

	return c < 0 || (c == 0 && !(s.UpperInc && other.LowerInc))
}

// Right reports whether the span is strictly after other.
func (s Span) Right(other Span) bool { return other.Left(s) }

// OverLeft reports whether the span does not extend past the right edge
// of other.
func (s Span) OverLeft(other Span) bool {
	c := s.Upper.Cmp(other.Upper)

	return c < 0 || (c == 0 && (!s.UpperInc || other.UpperInc))
}

// OverRight reports whether the span does not extend past the left edge
// of other.
func (s Span) OverRight(other Span) bool {
	c := s.Lower.Cmp(other.Lower)

	return c > 0 || (c == 0 && (!s.LowerInc || other.LowerInc))
}

// Union returns the smallest span covering both spans. It fails with
// errs.ErrBadBounds when the spans neither overlap nor touch, since the
// union would not be a span.
func (s Span) Union(other Span) (Span, error) {
	if !s.Overlaps(other) && !s.Adjacent(other) {
		return Span{}, fmt.Errorf("%w: union of disjoint spans", errs.ErrBadBounds)
	}

	return s.Extend(other), nil
}

// Extend returns the smallest span covering both spans regardless of
// whether they are disjoint.
func (s Span) Extend(other Span) Span {
	r := s
	cl := other.Lower.Cmp(s.Lower)
	if cl < 0 || (cl == 0 && other.LowerInc) {
		r.Lower = other.Lower
		if cl < 0 {
			r.LowerInc = other.LowerInc
		} else {
			r.LowerInc = r.LowerInc || other.LowerInc
		}
	}
	cu := other.Upper.Cmp(s.Upper)
	if cu > 0 || (cu == 0 && other.UpperInc) {
		r.Upper = other.Upper
		if cu > 0 {
			r.UpperInc = other.UpperInc
		} else {
			r.UpperInc = r.UpperInc || other.UpperInc
		}
	}

	return r
}

// Intersection returns the common sub-span, or false when the spans are
// disjoint.
func (s Span) Intersection(other Span) (Span, bool) {
	if !s.Overlaps(other) {
		return Span{}, false
	}
	r := s
	cl := other.Lower.Cmp(s.Lower)
	if cl > 0 || (cl == 0 && !other.LowerInc) {
		r.Lower = other.Lower
		r.LowerInc = other.LowerInc
	}
	cu := other.Upper.Cmp(s.Upper)
	if cu < 0 || (cu == 0 && !other.UpperInc) {
		r.Upper = other.Upper
		r.UpperInc = other.UpperInc
	}

	return r, true
}

// Minus returns the parts of the span not covered by other, in order.
// The result has zero, one or two spans.
func (s Span) Minus(other Span) []Span {
	inter, ok := s.Intersection(other)
	if !ok {
		return []Span{s}
	}

	var result []Span
	cl := s.Lower.Cmp(inter.Lower)
	if cl < 0 || (cl == 0 && s.LowerInc && !inter.LowerInc) {
		if left, err := Make(s.Lower, inter.Lower, s.LowerInc, !inter.LowerInc); err == nil {
			result = append(result, left)
		}
	}
	cu := inter.Upper.Cmp(s.Upper)
	if cu < 0 || (cu == 0 && s.UpperInc && !inter.UpperInc) {
		if right, err := Make(inter.Upper, s.Upper, !inter.UpperInc, s.UpperInc); err == nil {
			result = append(result, right)
		}
	}

	return result
}

// Distance returns the distance between the two spans promoted to
// float64, or zero when they overlap or touch.
func (s Span) Distance(other Span) float64 {
	if s.Overlaps(other) || s.Adjacent(other) {
		return 0
	}
	if s.Left(other) {
		return other.Lower.Float64() - s.Upper.Float64()
	}

	return s.Lower.Float64() - other.Upper.Float64()
}

// Shift returns the span with both timestamp bounds moved by delta
// microseconds. Only valid for timestamp spans.
func (s Span) Shift(delta int64) Span {
	r := s
	r.Lower = datum.TimestampTz(s.Lower.TimestampVal() + ttime.Timestamp(delta))
	r.Upper = datum.TimestampTz(s.Upper.TimestampVal() + ttime.Timestamp(delta))

	return r
}

// String formats the span with bracket notation reflecting inclusivity.
func (s Span) String() string {
	lb, rb := "(", ")"
	if s.LowerInc {
		lb = "["
	}
	if s.UpperInc {
		rb = "]"
	}

	return fmt.Sprintf("%s%s, %s%s", lb, s.Lower, s.Upper, rb)
}
