package temporal

import (
	"math"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/geo"
	"github.com/arloliu/tempus/span"
)

// Sequence-level restriction to values and spans. Each function walks
// the segments once, accumulating maximal fragments; boundary values are
// pinned to the query constant so results exactly meet the query
// boundary despite floating point rounding.

// atValue returns the fragments of the sequence where its value equals c.
func (seq *TSequence) atValue(c datum.Datum) []*TSequence {
	n := len(seq.instants)
	if n == 1 {
		if seq.instants[0].value.Eq(c) {
			return []*TSequence{seq}
		}
		return nil
	}

	if seq.interp == InterpStep {
		return seq.atValueStep(c)
	}

	return seq.atValueLinear(c)
}

// atValueStep collects the runs of segments whose start value equals c.
func (seq *TSequence) atValueStep(c datum.Datum) []*TSequence {
	n := len(seq.instants)
	var frags []*TSequence
	for i := 0; i < n-1; i++ {
		if !seq.instants[i].value.Eq(c) {
			continue
		}
		lowerInc := seq.lowerInc || i > 0
		// Extend the run over consecutive equal-valued segments.
		j := i
		for j < n-1 && seq.instants[j].value.Eq(c) {
			j++
		}
		upperT := seq.instants[j].t
		upperInc := false
		if j == n-1 && seq.upperInc && seq.instants[j].value.Eq(c) {
			upperInc = true
		}
		out := []TInstant{
			{value: c.Clone(), t: seq.instants[i].t},
			{value: c.Clone(), t: upperT},
		}
		frags = append(frags, newTSequenceFromOwned(out, lowerInc, upperInc, InterpStep))
		i = j - 1
	}

	// The final instant under an inclusive upper bound holds its own
	// value even when the preceding segment differs.
	last := &seq.instants[n-1]
	if seq.upperInc && last.value.Eq(c) && !seq.instants[n-2].value.Eq(c) {
		out := []TInstant{{value: c.Clone(), t: last.t}}
		frags = append(frags, newTSequenceFromOwned(out, true, true, InterpStep))
	}

	return frags
}

// atValueLinear solves, on each segment, where the interpolated value
// meets c: never, at a single instant, or over the whole segment.
func (seq *TSequence) atValueLinear(c datum.Datum) []*TSequence {
	n := len(seq.instants)
	var frags []*TSequence
	for i := 0; i < n-1; i++ {
		s, e := seq.segment(i)
		segLowerInc := seq.lowerInc || i > 0
		segUpperInc := i == n-2 && seq.upperInc

		if s.value.Eq(c) && e.value.Eq(c) {
			out := []TInstant{{value: c.Clone(), t: s.t}, {value: c.Clone(), t: e.t}}
			frags = append(frags, newTSequenceFromOwned(out, segLowerInc, segUpperInc, InterpLinear))
			continue
		}

		frac, ok := segmentAtValue(s.value, e.value, c)
		if !ok {
			continue
		}
		t := timestampAtFraction(s.t, e.t, frac)
		if t == s.t && !segLowerInc {
			continue
		}
		if t == e.t && i < n-2 {
			// The next segment's start instant reports this crossing.
			continue
		}
		if t == e.t && !segUpperInc {
			continue
		}
		out := []TInstant{{value: c.Clone(), t: t}}
		frags = append(frags, newTSequenceFromOwned(out, true, true, InterpLinear))
	}

	return mergeFragments(frags)
}

// segmentAtValue solves v(θ) = c for θ ∈ [0, 1] on a linear segment
// from a to b.
func segmentAtValue(a, b, c datum.Datum) (float64, bool) {
	switch a.Type() {
	case datum.TypeFloat8:
		av, bv, cv := a.Float8Val(), b.Float8Val(), c.Float8Val()
		if av == bv {
			return 0, av == cv
		}
		frac := (cv - av) / (bv - av)
		if frac < 0 || frac > 1 {
			return 0, false
		}
		return frac, true
	case datum.TypeGeomPoint, datum.TypeGeogPoint:
		return segmentAtPoint(a.PointVal(), b.PointVal(), c.PointVal())
	case datum.TypeNPoint:
		an, bn, cn := a.NPointVal(), b.NPointVal(), c.NPointVal()
		if an.RouteID != cn.RouteID {
			return 0, false
		}
		if an.Position == bn.Position {
			return 0, an.Position == cn.Position
		}
		frac := (cn.Position - an.Position) / (bn.Position - an.Position)
		if frac < 0 || frac > 1 {
			return 0, false
		}
		return frac, true
	default:
		return 0, false
	}
}

// segmentAtPoint locates point c on the segment a->b.
func segmentAtPoint(a, b, c *geo.Point) (float64, bool) {
	const eps = 1e-9

	return geo.Locate(a, b, c, eps)
}

// atSpan returns the fragments of the sequence where its value falls
// inside s.
func (seq *TSequence) atSpan(s span.Span) []*TSequence {
	if !seq.BaseType().Numeric() {
		return nil
	}
	n := len(seq.instants)
	if n == 1 {
		if s.Contains(seq.instants[0].value) {
			return []*TSequence{seq}
		}
		return nil
	}

	if seq.interp == InterpStep {
		return seq.atSpanStep(s)
	}

	return seq.atSpanLinear(s)
}

// atSpanStep collects runs of segments whose start value falls in s.
func (seq *TSequence) atSpanStep(s span.Span) []*TSequence {
	n := len(seq.instants)
	var frags []*TSequence
	for i := 0; i < n-1; i++ {
		if !s.Contains(seq.instants[i].value) {
			continue
		}
		lowerInc := seq.lowerInc || i > 0
		j := i
		for j < n-1 && s.Contains(seq.instants[j].value) {
			j++
		}
		upperInc := j == n-1 && seq.upperInc && s.Contains(seq.instants[j].value)
		out := make([]TInstant, 0, j-i+1)
		for k := i; k <= j; k++ {
			out = append(out, seq.instants[k].clone())
		}
		frags = append(frags, newTSequenceFromOwned(normalizeInstants(out, InterpStep),
			lowerInc, upperInc, InterpStep))
		i = j - 1
	}

	last := &seq.instants[n-1]
	if seq.upperInc && s.Contains(last.value) && !s.Contains(seq.instants[n-2].value) {
		out := []TInstant{last.clone()}
		frags = append(frags, newTSequenceFromOwned(out, true, true, InterpStep))
	}

	return frags
}

// atSpanLinear clips every linear segment against the value span and
// maps the clipped value range back to a time range.
func (seq *TSequence) atSpanLinear(s span.Span) []*TSequence {
	n := len(seq.instants)
	var frags []*TSequence
	for i := 0; i < n-1; i++ {
		st, en := seq.segment(i)
		segLowerInc := seq.lowerInc || i > 0
		segUpperInc := i == n-2 && seq.upperInc
		frag := clipSegmentSpan(st, en, segLowerInc, segUpperInc, s)
		if frag != nil {
			frags = append(frags, frag)
		}
	}

	return mergeFragments(frags)
}

// clipSegmentSpan clips one linear float segment against a value span,
// returning the fragment where the segment's value is inside the span.
func clipSegmentSpan(st, en *TInstant, segLowerInc, segUpperInc bool, s span.Span) *TSequence {
	v1, v2 := st.value.Float8Val(), en.value.Float8Val()
	lo, hi := s.Lower.Float64(), s.Upper.Float64()
	loInc, hiInc := s.LowerInc, s.UpperInc

	if v1 == v2 {
		if !s.Contains(st.value) {
			return nil
		}
		out := []TInstant{st.clone(), en.clone()}
		return newTSequenceFromOwned(out, segLowerInc, segUpperInc, InterpLinear)
	}

	// Fractions at which the segment meets the span bounds.
	up := v2 > v1
	fracOf := func(v float64) float64 { return (v - v1) / (v2 - v1) }

	var fLo, fHi float64
	var fLoInc, fHiInc bool
	if up {
		fLo, fLoInc = math.Max(0, fracOf(lo)), loInc
		fHi, fHiInc = math.Min(1, fracOf(hi)), hiInc
	} else {
		fLo, fLoInc = math.Max(0, fracOf(hi)), hiInc
		fHi, fHiInc = math.Min(1, fracOf(lo)), loInc
	}
	if fLo <= 0 {
		fLo, fLoInc = 0, segLowerInc
	}
	if fHi >= 1 {
		fHi, fHiInc = 1, segUpperInc
	}
	if fLo > fHi || fLo > 1 || fHi < 0 {
		return nil
	}

	t1 := timestampAtFraction(st.t, en.t, fLo)
	t2 := timestampAtFraction(st.t, en.t, fHi)

	valueAt := func(f float64) datum.Datum {
		switch {
		case f <= 0:
			return st.value.Clone()
		case f >= 1:
			return en.value.Clone()
		default:
			return datum.Float8(v1 + (v2-v1)*f)
		}
	}
	d1 := valueAt(fLo)
	d2 := valueAt(fHi)
	// Boundary pinning: a fragment edge created by a span bound carries
	// exactly that bound value.
	if fLo > 0 && fLo < 1 {
		if up {
			d1 = datum.Float8(lo)
		} else {
			d1 = datum.Float8(hi)
		}
	}
	if fHi > 0 && fHi < 1 {
		if up {
			d2 = datum.Float8(hi)
		} else {
			d2 = datum.Float8(lo)
		}
	}

	if t1 == t2 {
		if !fLoInc && !fHiInc {
			return nil
		}
		out := []TInstant{{value: d1, t: t1}}
		return newTSequenceFromOwned(out, true, true, InterpLinear)
	}

	out := []TInstant{{value: d1, t: t1}, {value: d2, t: t2}}

	return newTSequenceFromOwned(out, fLoInc, fHiInc, InterpLinear)
}

// mergeFragments merges touching fragments produced per segment into
// maximal sequences.
func mergeFragments(frags []*TSequence) []*TSequence {
	if len(frags) <= 1 {
		return frags
	}
	out := make([]*TSequence, 0, len(frags))
	cur := frags[0]
	for _, next := range frags[1:] {
		if merged, ok := mergeTouching(cur, next); ok {
			cur = merged
			continue
		}
		out = append(out, cur)
		cur = next
	}
	out = append(out, cur)

	return out
}
