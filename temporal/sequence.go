package temporal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/geo"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

// TSequence is a continuous trajectory: ordered instants over a period
// with per-bound inclusivity and an interpolation. Under step
// interpolation each value holds until the next instant; under linear
// interpolation (continuous base types only) the value moves affinely
// between consecutive instants.
type TSequence struct {
	instants []TInstant
	bbox     Bbox
	interp   Interp
	lowerInc bool
	upperInc bool
}

var _ Temporal = (*TSequence)(nil)

// NewTSequence validates, normalizes and returns a sequence.
//
// Rules enforced: strictly increasing timestamps, homogeneous base type
// and spatial reference, linear interpolation only over continuous base
// types, and both bounds inclusive for a singleton sequence.
func NewTSequence(instants []*TInstant, lowerInc, upperInc bool, interp Interp) (*TSequence, error) {
	if err := validateInstants(instants); err != nil {
		return nil, err
	}
	if interp != InterpStep && interp != InterpLinear {
		return nil, fmt.Errorf("%w: sequence interpolation must be step or linear", errs.ErrBadInterp)
	}

	bt := instants[0].BaseType()
	if interp == InterpLinear && !bt.Continuous() {
		return nil, fmt.Errorf("%w: linear interpolation over %s", errs.ErrBadInterp, bt)
	}

	copied := copyInstants(instants)
	if len(copied) == 1 && !(lowerInc && upperInc) {
		return nil, fmt.Errorf("%w: singleton sequence requires inclusive bounds", errs.ErrBadBounds)
	}

	normalized := normalizeInstants(copied, interp)

	seq := &TSequence{
		instants: normalized,
		interp:   interp,
		lowerInc: lowerInc,
		upperInc: upperInc,
	}
	if len(normalized) == 1 {
		seq.lowerInc, seq.upperInc = true, true
	}
	seq.bbox = instantsBbox(seq.instants, seq.lowerInc, seq.upperInc)

	return seq, nil
}

// MustTSequence is NewTSequence that panics on error.
func MustTSequence(instants []*TInstant, lowerInc, upperInc bool, interp Interp) *TSequence {
	seq, err := NewTSequence(instants, lowerInc, upperInc, interp)
	if err != nil {
		panic(err)
	}

	return seq
}

// newTSequenceFromOwned builds a sequence from instants already owned by
// the kernel, skipping validation. Internal constructor for operators
// whose outputs are valid by construction.
func newTSequenceFromOwned(instants []TInstant, lowerInc, upperInc bool, interp Interp) *TSequence {
	if len(instants) == 1 {
		lowerInc, upperInc = true, true
	}
	seq := &TSequence{
		instants: instants,
		interp:   interp,
		lowerInc: lowerInc,
		upperInc: upperInc,
	}
	seq.bbox = instantsBbox(seq.instants, seq.lowerInc, seq.upperInc)

	return seq
}

// normalizeInstants drops redundant instants: under step interpolation
// an instant repeating the previous value adds nothing (except as the
// final bound marker); under linear interpolation an instant collinear
// with its neighbors adds nothing.
func normalizeInstants(instants []TInstant, interp Interp) []TInstant {
	if len(instants) <= 2 {
		return instants
	}

	out := make([]TInstant, 0, len(instants))
	out = append(out, instants[0])
	for i := 1; i < len(instants)-1; i++ {
		prev := &out[len(out)-1]
		cur := &instants[i]
		next := &instants[i+1]
		if redundantInstant(prev, cur, next, interp) {
			continue
		}
		out = append(out, *cur)
	}
	out = append(out, instants[len(instants)-1])

	return out
}

// redundantInstant reports whether cur can be dropped between prev and
// next without changing the denoted function.
func redundantInstant(prev, cur, next *TInstant, interp Interp) bool {
	if interp == InterpStep {
		return cur.value.Eq(prev.value)
	}

	frac := float64(cur.t-prev.t) / float64(next.t-prev.t)
	switch cur.value.Type() {
	case datum.TypeFloat8:
		want := prev.value.Float8Val() + (next.value.Float8Val()-prev.value.Float8Val())*frac
		return cur.value.Float8Val() == want
	case datum.TypeGeomPoint, datum.TypeGeogPoint:
		return geo.Collinear(prev.value.PointVal(), cur.value.PointVal(), next.value.PointVal(), frac, 0)
	case datum.TypeNPoint:
		a, b, m := prev.value.NPointVal(), next.value.NPointVal(), cur.value.NPointVal()
		if a.RouteID != b.RouteID || a.RouteID != m.RouteID {
			return false
		}
		return m.Position == a.Position+(b.Position-a.Position)*frac
	default:
		return false
	}
}

// BaseType returns the base type of the values.
func (seq *TSequence) BaseType() datum.BaseType { return seq.instants[0].value.Type() }

// Subtype returns SubtypeSequence.
func (seq *TSequence) Subtype() Subtype { return SubtypeSequence }

// Interpolation returns the sequence interpolation.
func (seq *TSequence) Interpolation() Interp { return seq.interp }

// LowerInc reports whether the period's lower bound is inclusive.
func (seq *TSequence) LowerInc() bool { return seq.lowerInc }

// UpperInc reports whether the period's upper bound is inclusive.
func (seq *TSequence) UpperInc() bool { return seq.upperInc }

// NumInstants returns the number of instants.
func (seq *TSequence) NumInstants() int { return len(seq.instants) }

// InstantN returns the n-th instant in time order.
func (seq *TSequence) InstantN(n int) *TInstant { return &seq.instants[n] }

// StartTimestamp returns the first timestamp.
func (seq *TSequence) StartTimestamp() ttime.Timestamp { return seq.instants[0].t }

// EndTimestamp returns the last timestamp.
func (seq *TSequence) EndTimestamp() ttime.Timestamp {
	return seq.instants[len(seq.instants)-1].t
}

// StartValue returns the value at the first instant.
func (seq *TSequence) StartValue() datum.Datum { return seq.instants[0].value }

// EndValue returns the value at the last instant.
func (seq *TSequence) EndValue() datum.Datum {
	return seq.instants[len(seq.instants)-1].value
}

// Period returns the period of the sequence with its bound inclusivity.
func (seq *TSequence) Period() span.Span {
	p, err := span.NewPeriod(seq.StartTimestamp(), seq.EndTimestamp(),
		seq.lowerInc, seq.upperInc)
	if err != nil {
		panic(err)
	}

	return p
}

// Time returns the singleton period set of the sequence.
func (seq *TSequence) Time() span.Set { return span.MustSet(seq.Period()) }

// Bbox returns the cached bounding box.
func (seq *TSequence) Bbox() Bbox { return seq.bbox }

// Duration returns the length of the period in microseconds.
func (seq *TSequence) Duration() int64 {
	return int64(seq.EndTimestamp() - seq.StartTimestamp())
}

// SRID returns the SRID of a spatial sequence, or 0.
func (seq *TSequence) SRID() int32 { return seq.instants[0].SRID() }

// FindTimestamp locates the segment enclosing t: the returned position
// is the index of the last instant at or before t. found reports
// whether t falls inside the sequence period.
func (seq *TSequence) FindTimestamp(t ttime.Timestamp) (pos int, found bool) {
	if !seq.containsTimestamp(t) {
		pos = sort.Search(len(seq.instants), func(i int) bool {
			return seq.instants[i].t >= t
		})
		return pos, false
	}

	pos = sort.Search(len(seq.instants), func(i int) bool {
		return seq.instants[i].t > t
	}) - 1
	if pos < 0 {
		pos = 0
	}

	return pos, true
}

// containsTimestamp reports whether t is inside the sequence period,
// honoring bound inclusivity.
func (seq *TSequence) containsTimestamp(t ttime.Timestamp) bool {
	start, end := seq.StartTimestamp(), seq.EndTimestamp()
	if t < start || t > end {
		return false
	}
	if t == start && !seq.lowerInc {
		return false
	}
	if t == end && !seq.upperInc {
		return false
	}

	return true
}

// ValueAt evaluates the sequence at t. Under step interpolation the
// value of the enclosing segment's start instant is returned; under
// linear interpolation the segment is interpolated.
func (seq *TSequence) ValueAt(t ttime.Timestamp) (datum.Datum, bool) {
	pos, found := seq.FindTimestamp(t)
	if !found {
		return datum.Datum{}, false
	}
	if pos == len(seq.instants)-1 || t == seq.instants[pos].t {
		return seq.instants[pos].value, true
	}

	v, err := interpValue(&seq.instants[pos], &seq.instants[pos+1], seq.interp, t)
	if err != nil {
		return datum.Datum{}, false
	}

	return v, true
}

// valueAtAny evaluates the sequence at t treating both bounds as
// inclusive. Restriction uses it to compute boundary instants of
// half-open fragments.
func (seq *TSequence) valueAtAny(t ttime.Timestamp) (datum.Datum, bool) {
	if t < seq.StartTimestamp() || t > seq.EndTimestamp() {
		return datum.Datum{}, false
	}
	pos := sort.Search(len(seq.instants), func(i int) bool {
		return seq.instants[i].t > t
	}) - 1
	if pos < 0 {
		pos = 0
	}
	if pos == len(seq.instants)-1 || t == seq.instants[pos].t {
		return seq.instants[pos].value, true
	}

	v, err := interpValue(&seq.instants[pos], &seq.instants[pos+1], seq.interp, t)
	if err != nil {
		return datum.Datum{}, false
	}

	return v, true
}

// Equal reports semantic equality.
func (seq *TSequence) Equal(other Temporal) bool {
	if seq.BaseType() != other.BaseType() {
		return false
	}
	switch o := other.(type) {
	case *TSequence:
		return seq.equalSeq(o)
	case *TInstant:
		return len(seq.instants) == 1 && o.Equal(&seq.instants[0])
	case *TSequenceSet:
		return o.NumSequences() == 1 && seq.equalSeq(o.SequenceN(0))
	default:
		return false
	}
}

func (seq *TSequence) equalSeq(o *TSequence) bool {
	if len(seq.instants) != len(o.instants) ||
		seq.lowerInc != o.lowerInc || seq.upperInc != o.upperInc {
		return false
	}
	if len(seq.instants) > 1 && seq.interp != o.interp {
		return false
	}
	for i := range seq.instants {
		if seq.instants[i].t != o.instants[i].t ||
			!seq.instants[i].value.Eq(o.instants[i].value) {
			return false
		}
	}

	return true
}

// String formats the sequence with brackets reflecting inclusivity;
// step sequences over continuous base types are prefixed with the
// interpolation marker.
func (seq *TSequence) String() string {
	parts := make([]string, len(seq.instants))
	for i := range seq.instants {
		parts[i] = seq.instants[i].String()
	}
	lb, rb := "(", ")"
	if seq.lowerInc {
		lb = "["
	}
	if seq.upperInc {
		rb = "]"
	}
	prefix := ""
	if seq.interp == InterpStep && seq.BaseType().Continuous() {
		prefix = "Interp=Step;"
	}

	return prefix + lb + strings.Join(parts, ", ") + rb
}

// segment returns the two instants bounding segment i.
func (seq *TSequence) segment(i int) (start, end *TInstant) {
	return &seq.instants[i], &seq.instants[i+1]
}

// atPeriod returns the restriction of the sequence to a period, or nil
// when the intersection is empty.
func (seq *TSequence) atPeriod(p span.Span) *TSequence {
	inter, ok := seq.Period().Intersection(p)
	if !ok {
		return nil
	}
	lower := inter.Lower.TimestampVal()
	upper := inter.Upper.TimestampVal()
	lowerInc, upperInc := inter.LowerInc, inter.UpperInc

	if lower == upper {
		if v, ok := seq.valueAtAny(lower); ok {
			inst := TInstant{value: v.Clone(), t: lower}
			return newTSequenceFromOwned([]TInstant{inst}, true, true, seq.interp)
		}
		return nil
	}

	var out []TInstant
	startVal, ok := seq.valueAtAny(lower)
	if !ok {
		return nil
	}
	out = append(out, TInstant{value: startVal.Clone(), t: lower})
	for i := range seq.instants {
		t := seq.instants[i].t
		if t > lower && t < upper {
			out = append(out, seq.instants[i].clone())
		}
	}
	endVal, ok := seq.valueAtAny(upper)
	if !ok {
		return nil
	}
	out = append(out, TInstant{value: endVal.Clone(), t: upper})

	return newTSequenceFromOwned(normalizeInstants(out, seq.interp), lowerInc, upperInc, seq.interp)
}
