package temporal

import (
	"fmt"

	"github.com/arloliu/tempus/box"
	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/geo"
	"github.com/arloliu/tempus/span"
)

// Restriction of temporal points to geometric regions and
// spatiotemporal boxes. Trajectories are first decomposed into simple
// sub-sequences; each sub-sequence's segments are clipped against the
// region through the external geometry interface and the returned
// fraction ranges are mapped back to time sub-intervals.

// AtGeometry restricts a temporal point to the timestamps where it lies
// within the geometry.
func AtGeometry(tv Temporal, g geo.Geometry) (Temporal, error) {
	if err := requirePoint(tv); err != nil {
		return nil, err
	}
	if g.IsEmpty() {
		return nil, errs.ErrEmptyGeom
	}
	if srid := tv.InstantN(0).SRID(); srid != g.SRID() {
		return nil, fmt.Errorf("%w: %d vs %d", errs.ErrSRIDMismatch, srid, g.SRID())
	}

	switch t := tv.(type) {
	case *TInstant:
		if g.CoversPoint(t.Point()) {
			return t, nil
		}
		return nil, nil
	case *TInstantSet:
		var kept []TInstant
		for i := range t.instants {
			if g.CoversPoint(t.instants[i].Point()) {
				kept = append(kept, t.instants[i].clone())
			}
		}
		return sealInstants(kept), nil
	default:
		simple, err := MakeSimple(tv)
		if err != nil {
			return nil, err
		}
		var frags []*TSequence
		for _, s := range simple {
			frags = append(frags, atGeometrySeq(s, g)...)
		}
		return seal(frags), nil
	}
}

// MinusGeometry restricts a temporal point to the timestamps where it
// lies outside the geometry.
func MinusGeometry(tv Temporal, g geo.Geometry) (Temporal, error) {
	at, err := AtGeometry(tv, g)
	if err != nil {
		return nil, err
	}
	if at == nil {
		return tv, nil
	}
	switch tv.(type) {
	case *TInstant:
		return nil, nil
	case *TInstantSet:
		return minusInstants(tv, at), nil
	default:
		return AtPeriodSet(tv, timeSupport(tv).Minus(timeSupport(at))), nil
	}
}

// atGeometrySeq clips one simple sequence against the geometry.
func atGeometrySeq(seq *TSequence, g geo.Geometry) []*TSequence {
	n := seq.NumInstants()
	if n == 1 {
		if g.CoversPoint(seq.instants[0].Point()) {
			return []*TSequence{seq}
		}
		return nil
	}

	if seq.interp == InterpStep {
		return atGeometrySeqStep(seq, g)
	}

	var frags []*TSequence
	for i := 0; i < n-1; i++ {
		st, en := seq.segment(i)
		segLowerInc := seq.lowerInc || i > 0
		segUpperInc := i == n-2 && seq.upperInc
		for _, fr := range g.ClipSegment(st.Point(), en.Point()) {
			frag := sliceSegmentFraction(st, en, fr.Lower, fr.Upper, segLowerInc, segUpperInc)
			if frag != nil {
				frags = append(frags, frag)
			}
		}
	}

	return mergeFragments(frags)
}

// atGeometrySeqStep keeps the step segments whose held value is covered.
func atGeometrySeqStep(seq *TSequence, g geo.Geometry) []*TSequence {
	n := seq.NumInstants()
	var frags []*TSequence
	for i := 0; i < n-1; i++ {
		if !g.CoversPoint(seq.instants[i].Point()) {
			continue
		}
		lowerInc := seq.lowerInc || i > 0
		j := i
		for j < n-1 && g.CoversPoint(seq.instants[j].Point()) {
			j++
		}
		upperInc := j == n-1 && seq.upperInc && g.CoversPoint(seq.instants[j].Point())
		out := make([]TInstant, 0, j-i+1)
		for k := i; k <= j; k++ {
			out = append(out, seq.instants[k].clone())
		}
		frags = append(frags, newTSequenceFromOwned(normalizeInstants(out, InterpStep),
			lowerInc, upperInc, InterpStep))
		i = j - 1
	}

	last := &seq.instants[n-1]
	if seq.upperInc && g.CoversPoint(last.Point()) && !g.CoversPoint(seq.instants[n-2].Point()) {
		out := []TInstant{last.clone()}
		frags = append(frags, newTSequenceFromOwned(out, true, true, InterpStep))
	}

	return frags
}

// sliceSegmentFraction cuts the sub-sequence of one linear segment
// between two fractions of its duration.
func sliceSegmentFraction(st, en *TInstant, fLo, fHi float64, segLowerInc, segUpperInc bool) *TSequence {
	t1 := timestampAtFraction(st.t, en.t, fLo)
	t2 := timestampAtFraction(st.t, en.t, fHi)

	valueAt := func(f float64) datum.Datum {
		switch {
		case f <= 0:
			return st.value.Clone()
		case f >= 1:
			return en.value.Clone()
		}
		v, err := interpolateDatum(st.value, en.value, f)
		if err != nil {
			return st.value.Clone()
		}
		return v
	}

	if t1 == t2 {
		if t1 == st.t && !segLowerInc {
			return nil
		}
		if t1 == en.t && !segUpperInc {
			return nil
		}
		out := []TInstant{{value: valueAt(fLo), t: t1}}
		return newTSequenceFromOwned(out, true, true, InterpLinear)
	}

	lowerInc := true
	if t1 == st.t {
		lowerInc = segLowerInc
	}
	upperInc := true
	if t2 == en.t {
		upperInc = segUpperInc
	}
	out := []TInstant{{value: valueAt(fLo), t: t1}, {value: valueAt(fHi), t: t2}}

	return newTSequenceFromOwned(out, lowerInc, upperInc, InterpLinear)
}

/*****************************************************************************
 * Restriction to boxes
 *****************************************************************************/

// AtTbox restricts a temporal number to a value-by-time box: the
// composition of the period and value-span restrictions.
func AtTbox(tv Temporal, b box.TBox) Temporal {
	if tv == nil {
		return nil
	}
	result := tv
	if b.HasT {
		result = AtPeriod(result, b.Period)
		if result == nil {
			return nil
		}
	}
	if b.HasX {
		result = AtSpan(result, b.Span)
	}

	return result
}

// MinusTbox removes a value-by-time box from a temporal number.
func MinusTbox(tv Temporal, b box.TBox) Temporal {
	at := AtTbox(tv, b)
	if at == nil {
		return tv
	}
	switch tv.(type) {
	case *TInstant:
		return nil
	case *TInstantSet:
		return minusInstants(tv, at)
	default:
		return AtPeriodSet(tv, timeSupport(tv).Minus(timeSupport(at)))
	}
}

// AtStbox restricts a temporal point to a space-by-time box.
func AtStbox(tv Temporal, b box.STBox) (Temporal, error) {
	if err := requirePoint(tv); err != nil {
		return nil, err
	}
	result := tv
	if b.HasT {
		result = AtPeriod(result, b.Period)
		if result == nil {
			return nil, nil
		}
	}
	if !b.HasX {
		return result, nil
	}

	switch t := result.(type) {
	case *TInstant:
		if b.ContainsPoint(t.Point()) {
			return t, nil
		}
		return nil, nil
	case *TInstantSet:
		var kept []TInstant
		for i := range t.instants {
			if b.ContainsPoint(t.instants[i].Point()) {
				kept = append(kept, t.instants[i].clone())
			}
		}
		return sealInstants(kept), nil
	default:
		var frags []*TSequence
		for _, s := range continuousSequences(result) {
			frags = append(frags, atStboxSeq(s, b)...)
		}
		return seal(frags), nil
	}
}

// MinusStbox removes a space-by-time box from a temporal point.
func MinusStbox(tv Temporal, b box.STBox) (Temporal, error) {
	at, err := AtStbox(tv, b)
	if err != nil {
		return nil, err
	}
	if at == nil {
		return tv, nil
	}
	switch tv.(type) {
	case *TInstant:
		return nil, nil
	case *TInstantSet:
		return minusInstants(tv, at), nil
	default:
		return AtPeriodSet(tv, timeSupport(tv).Minus(timeSupport(at))), nil
	}
}

// atStboxSeq clips a point sequence against the spatial extent of a box
// using per-segment slab clipping.
func atStboxSeq(seq *TSequence, b box.STBox) []*TSequence {
	n := seq.NumInstants()
	if n == 1 {
		if b.ContainsPoint(seq.instants[0].Point()) {
			return []*TSequence{seq}
		}
		return nil
	}

	var frags []*TSequence
	for i := 0; i < n-1; i++ {
		st, en := seq.segment(i)
		segLowerInc := seq.lowerInc || i > 0
		segUpperInc := i == n-2 && seq.upperInc

		if seq.interp == InterpStep {
			if b.ContainsPoint(st.Point()) {
				out := []TInstant{st.clone(), en.clone()}
				frags = append(frags, newTSequenceFromOwned(out, segLowerInc, false, InterpStep))
			}
			if segUpperInc && b.ContainsPoint(en.Point()) {
				out := []TInstant{en.clone()}
				frags = append(frags, newTSequenceFromOwned(out, true, true, InterpStep))
			}
			continue
		}

		fLo, fHi, ok := clipSegmentBox(st.Point(), en.Point(), b)
		if !ok {
			continue
		}
		frag := sliceSegmentFraction(st, en, fLo, fHi, segLowerInc, segUpperInc)
		if frag != nil {
			frags = append(frags, frag)
		}
	}

	return mergeFragments(frags)
}

// clipSegmentBox performs Liang-Barsky clipping of a segment against the
// spatial extent of a box, returning the fraction range inside.
func clipSegmentBox(p, q *geo.Point, b box.STBox) (fLo, fHi float64, ok bool) {
	fLo, fHi = 0, 1
	clip := func(pv, qv, lo, hi float64) bool {
		d := qv - pv
		if d == 0 {
			return pv >= lo && pv <= hi
		}
		t1 := (lo - pv) / d
		t2 := (hi - pv) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > fLo {
			fLo = t1
		}
		if t2 < fHi {
			fHi = t2
		}
		return fLo <= fHi
	}

	if !clip(p.X, q.X, b.Xmin, b.Xmax) {
		return 0, 0, false
	}
	if !clip(p.Y, q.Y, b.Ymin, b.Ymax) {
		return 0, 0, false
	}
	if b.HasZ && p.HasZ {
		if !clip(p.Z, q.Z, b.Zmin, b.Zmax) {
			return 0, 0, false
		}
	}
	if fLo < 0 {
		fLo = 0
	}
	if fHi > 1 {
		fHi = 1
	}
	if fLo > fHi {
		return 0, 0, false
	}

	return fLo, fHi, true
}

/*****************************************************************************
 * Value bounding helpers
 *****************************************************************************/

// ValueSpan returns the value span of a temporal number from its cached
// bounding box.
func ValueSpan(tv Temporal) (span.Span, bool) {
	if tv == nil {
		return span.Span{}, false
	}
	bb := tv.Bbox()
	if bb.Spatial || !bb.T.HasX {
		return span.Span{}, false
	}

	return bb.T.Span, true
}
