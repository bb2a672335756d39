package temporal

import (
	"sort"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

// Synchronization rewrites two temporal values over a common time
// partition so a pointwise operator can be applied. The partition is the
// union of both arguments' instants restricted to the common period;
// when the lifted operator supplies extra points (crossings, turning
// points) the partition is additionally subdivided at them.

// liftSpec describes a pointwise operator being lifted over time.
type liftSpec struct {
	// f is the pointwise operator.
	f func(a, b datum.Datum) (datum.Datum, error)

	// extraPoints returns additional partition fractions strictly inside
	// a segment pair: operator crossings and turning points. May be nil.
	extraPoints func(a1, a2, b1, b2 datum.Datum) []float64

	// zeroCheck rejects segment pairs whose second operand crosses zero,
	// for lifted division.
	zeroCheck bool

	// linear marks operators that preserve linearity: the result is
	// linear when both inputs are.
	linear bool
}

// syncPoint is one cell of the common partition: the instant value at
// the partition timestamp and the constant value on the open interval
// toward the next partition timestamp.
type syncPoint struct {
	t        ttime.Timestamp
	atPoint  datum.Datum
	interval datum.Datum // valid for all but the last point
}

// liftBinary applies a lifted operator to two temporal values.
// The result subtype is the coarsest among the inputs; nil is returned
// when the time supports are disjoint.
func liftBinary(a, b Temporal, spec liftSpec) (Temporal, error) {
	if a == nil || b == nil {
		return nil, nil
	}
	// Bounding-period rejection.
	if !a.Period().Overlaps(b.Period()) {
		return nil, nil
	}

	// Instant on either side: evaluate the other side at that instant.
	if inst, ok := a.(*TInstant); ok {
		return liftAtInstant(inst, b, spec, false)
	}
	if inst, ok := b.(*TInstant); ok {
		return liftAtInstant(inst, a, spec, true)
	}

	// Discrete sequence on either side: the result is defined only at
	// its instants.
	if ti, ok := a.(*TInstantSet); ok {
		return liftAtInstantSet(ti, b, spec, false)
	}
	if ti, ok := b.(*TInstantSet); ok {
		return liftAtInstantSet(ti, a, spec, true)
	}

	aSeqs := continuousSequences(a)
	bSeqs := continuousSequences(b)
	var frags []*TSequence
	for _, as := range aSeqs {
		for _, bs := range bSeqs {
			fs, err := liftSeqSeq(as, bs, spec)
			if err != nil {
				return nil, err
			}
			frags = append(frags, fs...)
		}
	}
	if len(frags) == 0 {
		return nil, nil
	}
	if _, ok := a.(*TSequenceSet); ok {
		return newTSequenceSetFromOwned(frags), nil
	}
	if _, ok := b.(*TSequenceSet); ok {
		return newTSequenceSetFromOwned(frags), nil
	}

	return seal(frags), nil
}

// liftAtInstant evaluates the lift at a single instant.
func liftAtInstant(inst *TInstant, other Temporal, spec liftSpec, swapped bool) (Temporal, error) {
	ov, ok := other.ValueAt(inst.t)
	if !ok {
		return nil, nil
	}
	v, err := applySpec(spec, inst.value, ov, swapped)
	if err != nil {
		return nil, err
	}

	return NewTInstant(v, inst.t)
}

// liftAtInstantSet evaluates the lift at every instant of a discrete
// sequence where the other operand is defined.
func liftAtInstantSet(ti *TInstantSet, other Temporal, spec liftSpec, swapped bool) (Temporal, error) {
	var out []TInstant
	for i := range ti.instants {
		inst := &ti.instants[i]
		ov, ok := other.ValueAt(inst.t)
		if !ok {
			continue
		}
		v, err := applySpec(spec, inst.value, ov, swapped)
		if err != nil {
			return nil, err
		}
		out = append(out, TInstant{value: v, t: inst.t})
	}

	return sealInstants(out), nil
}

func applySpec(spec liftSpec, a, b datum.Datum, swapped bool) (datum.Datum, error) {
	if swapped {
		return spec.f(b, a)
	}

	return spec.f(a, b)
}

// continuousSequences returns the sequences composing a continuous
// temporal value.
func continuousSequences(tv Temporal) []*TSequence {
	switch t := tv.(type) {
	case *TSequence:
		return []*TSequence{t}
	case *TSequenceSet:
		return t.Sequences()
	default:
		return nil
	}
}

// liftSeqSeq applies the lifted operator over the common period of two
// sequences, producing result fragments.
func liftSeqSeq(a, b *TSequence, spec liftSpec) ([]*TSequence, error) {
	inter, ok := a.Period().Intersection(b.Period())
	if !ok {
		return nil, nil
	}
	as := a.atPeriod(inter)
	bs := b.atPeriod(inter)
	if as == nil || bs == nil {
		return nil, nil
	}

	points, err := buildPartition(as, bs, spec)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, nil
	}

	linearResult := spec.linear &&
		as.interp == InterpLinear && bs.interp == InterpLinear

	if linearResult {
		out := make([]TInstant, len(points))
		for i, p := range points {
			out[i] = TInstant{value: p.atPoint, t: p.t}
		}
		frag := newTSequenceFromOwned(normalizeInstants(out, InterpLinear),
			inter.LowerInc, inter.UpperInc, InterpLinear)
		return []*TSequence{frag}, nil
	}

	return assembleStep(points, inter.LowerInc, inter.UpperInc), nil
}

// buildPartition produces the common partition of two synchronized
// sequences: values at every partition timestamp and on every open
// interval between them.
func buildPartition(as, bs *TSequence, spec liftSpec) ([]syncPoint, error) {
	// Union of instants from both arguments.
	tsSet := map[ttime.Timestamp]struct{}{}
	for i := range as.instants {
		tsSet[as.instants[i].t] = struct{}{}
	}
	for i := range bs.instants {
		tsSet[bs.instants[i].t] = struct{}{}
	}

	// Crossings and turning points subdivide further.
	if spec.extraPoints != nil || spec.zeroCheck {
		base := make([]ttime.Timestamp, 0, len(tsSet))
		for t := range tsSet {
			base = append(base, t)
		}
		sort.Slice(base, func(i, j int) bool { return base[i] < base[j] })
		for i := 0; i+1 < len(base); i++ {
			lo, hi := base[i], base[i+1]
			a1, _ := as.valueAtAny(lo)
			a2, _ := as.valueAtAny(hi)
			b1, _ := bs.valueAtAny(lo)
			b2, _ := bs.valueAtAny(hi)
			if spec.zeroCheck && segmentCrossesZero(b1, b2, bs.interp) {
				return nil, errs.ErrDivZero
			}
			if spec.extraPoints == nil {
				continue
			}
			aa1, aa2 := a1, a2
			bb1, bb2 := b1, b2
			if as.interp == InterpStep {
				aa2 = aa1
			}
			if bs.interp == InterpStep {
				bb2 = bb1
			}
			for _, frac := range spec.extraPoints(aa1, aa2, bb1, bb2) {
				if frac <= 0 || frac >= 1 {
					continue
				}
				t := timestampAtFraction(lo, hi, frac)
				if t > lo && t < hi {
					tsSet[t] = struct{}{}
				}
			}
		}
	}

	ts := make([]ttime.Timestamp, 0, len(tsSet))
	for t := range tsSet {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })

	points := make([]syncPoint, len(ts))
	for i, t := range ts {
		av, ok := as.valueAtAny(t)
		if !ok {
			continue
		}
		bv, ok := bs.valueAtAny(t)
		if !ok {
			continue
		}
		v, err := spec.f(av, bv)
		if err != nil {
			return nil, err
		}
		points[i] = syncPoint{t: t, atPoint: v}
	}

	// Interval values: evaluate strictly inside each cell.
	for i := 0; i+1 < len(points); i++ {
		mid := points[i].t + (points[i+1].t-points[i].t)/2
		if mid == points[i].t {
			points[i].interval = points[i].atPoint
			continue
		}
		av, _ := as.valueAtAny(mid)
		bv, _ := bs.valueAtAny(mid)
		v, err := spec.f(av, bv)
		if err != nil {
			return nil, err
		}
		points[i].interval = v
	}

	return points, nil
}

// segmentCrossesZero reports whether a numeric segment takes the value
// zero strictly inside or at its endpoints.
func segmentCrossesZero(v1, v2 datum.Datum, interp Interp) bool {
	a := v1.Float64()
	b := v2.Float64()
	if a == 0 || (interp == InterpLinear && b == 0) {
		return true
	}
	if interp != InterpLinear {
		return false
	}

	return (a < 0) != (b < 0)
}

// assembleStep builds step fragments from the partition, splitting at
// every point whose value differs from its neighboring intervals so
// crossings become singleton sequences.
func assembleStep(points []syncPoint, lowerInc, upperInc bool) []*TSequence {
	n := len(points)
	if n == 1 {
		out := []TInstant{{value: points[0].atPoint, t: points[0].t}}
		return []*TSequence{newTSequenceFromOwned(out, true, true, InterpStep)}
	}

	var frags []*TSequence
	for i := 0; i+1 < n; i++ {
		p := points[i]
		pointMatches := p.atPoint.Eq(p.interval)
		if !pointMatches {
			inc := lowerInc || i > 0
			if inc {
				single := []TInstant{{value: p.atPoint, t: p.t}}
				frags = append(frags, newTSequenceFromOwned(single, true, true, InterpStep))
			}
		}
		segLower := pointMatches && (lowerInc || i > 0)
		out := []TInstant{
			{value: p.interval, t: p.t},
			{value: p.interval, t: points[i+1].t},
		}
		segUpper := false
		if i+1 == n-1 && upperInc && points[i+1].atPoint.Eq(p.interval) {
			segUpper = true
		}
		frags = append(frags, newTSequenceFromOwned(out, segLower, segUpper, InterpStep))
	}

	last := points[n-1]
	if upperInc && !last.atPoint.Eq(points[n-2].interval) {
		single := []TInstant{{value: last.atPoint, t: last.t}}
		frags = append(frags, newTSequenceFromOwned(single, true, true, InterpStep))
	}

	return mergeFragments(frags)
}

// Synchronize aligns two temporal values over their common time
// partition without applying an operator: it returns both inputs
// restricted and rewritten over the same instants. The partition is
// symmetric in its arguments.
func Synchronize(a, b Temporal) (Temporal, Temporal, error) {
	if a == nil || b == nil || !a.Period().Overlaps(b.Period()) {
		return nil, nil, nil
	}

	left, err := liftBinary(a, b, liftSpec{
		f:      func(x, _ datum.Datum) (datum.Datum, error) { return x, nil },
		linear: true,
	})
	if err != nil {
		return nil, nil, err
	}
	right, err := liftBinary(a, b, liftSpec{
		f:      func(_, y datum.Datum) (datum.Datum, error) { return y, nil },
		linear: true,
	})
	if err != nil {
		return nil, nil, err
	}

	return left, right, nil
}

// CommonPeriod returns the intersection of the bounding periods of two
// temporal values.
func CommonPeriod(a, b Temporal) (span.Span, bool) {
	return a.Period().Intersection(b.Period())
}
