package temporal

import (
	"math"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

// The restriction engine exposes, for every temporal subtype and every
// restriction domain, the dual pair at(x, D) and minus(x, D) with
// at(x, D) ⊎ minus(x, D) = x in time. All functions return nil for an
// empty result.
//
// AtValue, AtSpan and the period entry points reject by bounding box or
// period before any per-instant work; the general case is one linear pass accumulating fragments,
// each sealed into a fresh value.

// seal packs sequence fragments into the minimal subtype: nil, the
// single sequence, or a sequence set.
func seal(frags []*TSequence) Temporal {
	switch len(frags) {
	case 0:
		return nil
	case 1:
		return frags[0]
	default:
		return newTSequenceSetFromOwned(frags)
	}
}

// sealInstants packs instants into the minimal subtype.
func sealInstants(instants []TInstant) Temporal {
	switch len(instants) {
	case 0:
		return nil
	case 1:
		inst := instants[0]
		return &TInstant{value: inst.value, t: inst.t, bbox: instantsBbox(instants, true, true)}
	default:
		ti := &TInstantSet{instants: instants}
		ti.bbox = instantsBbox(instants, true, true)
		return ti
	}
}

/*****************************************************************************
 * Restriction to a value
 *****************************************************************************/

// AtValue restricts tv to the timestamps where its value equals v.
func AtValue(tv Temporal, v datum.Datum) Temporal {
	if tv == nil || !valueInBbox(tv, v) {
		return nil
	}

	switch t := tv.(type) {
	case *TInstant:
		if t.value.Eq(v) {
			return t
		}
		return nil
	case *TInstantSet:
		var kept []TInstant
		for i := range t.instants {
			if t.instants[i].value.Eq(v) {
				kept = append(kept, t.instants[i].clone())
			}
		}
		return sealInstants(kept)
	case *TSequence:
		return seal(t.atValue(v))
	case *TSequenceSet:
		var frags []*TSequence
		for _, s := range t.seqs {
			frags = append(frags, s.atValue(v)...)
		}
		return seal(frags)
	default:
		return nil
	}
}

// MinusValue restricts tv to the timestamps where its value differs
// from v.
func MinusValue(tv Temporal, v datum.Datum) Temporal {
	if tv == nil {
		return nil
	}
	if !valueInBbox(tv, v) {
		return tv
	}

	switch t := tv.(type) {
	case *TInstant:
		if t.value.Eq(v) {
			return nil
		}
		return t
	case *TInstantSet:
		var kept []TInstant
		for i := range t.instants {
			if !t.instants[i].value.Eq(v) {
				kept = append(kept, t.instants[i].clone())
			}
		}
		return sealInstants(kept)
	default:
		at := AtValue(tv, v)
		if at == nil {
			return tv
		}
		return AtPeriodSet(tv, timeSupport(tv).Minus(timeSupport(at)))
	}
}

// AtValues restricts tv to the timestamps where its value equals one of
// the given values.
func AtValues(tv Temporal, values []datum.Datum) Temporal {
	values = dedupValues(values)

	switch t := tv.(type) {
	case *TInstant, *TInstantSet:
		var kept []TInstant
		for i := 0; i < tv.NumInstants(); i++ {
			inst := tv.InstantN(i)
			for _, v := range values {
				if inst.value.Eq(v) {
					kept = append(kept, inst.clone())
					break
				}
			}
		}
		if _, ok := t.(*TInstant); ok && len(kept) > 0 {
			return tv
		}
		return sealInstants(kept)
	default:
		var frags []*TSequence
		for _, v := range values {
			if at := AtValue(tv, v); at != nil {
				frags = append(frags, sequencesOf(at)...)
			}
		}
		sortFragments(frags)
		return seal(frags)
	}
}

// MinusValues restricts tv to the timestamps where its value differs
// from all the given values.
func MinusValues(tv Temporal, values []datum.Datum) Temporal {
	at := AtValues(tv, values)
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

// AtMin restricts tv to the timestamps where it reaches its minimum
// value. Only defined for temporal numbers.
func AtMin(tv Temporal) Temporal {
	lo, _, ok := valueRange(tv)
	if !ok {
		return nil
	}

	return AtValue(tv, lo)
}

// AtMax restricts tv to the timestamps where it reaches its maximum
// value.
func AtMax(tv Temporal) Temporal {
	_, hi, ok := valueRange(tv)
	if !ok {
		return nil
	}

	return AtValue(tv, hi)
}

// MinusMin removes the timestamps where tv reaches its minimum value.
func MinusMin(tv Temporal) Temporal {
	lo, _, ok := valueRange(tv)
	if !ok {
		return nil
	}

	return MinusValue(tv, lo)
}

// MinusMax removes the timestamps where tv reaches its maximum value.
func MinusMax(tv Temporal) Temporal {
	_, hi, ok := valueRange(tv)
	if !ok {
		return nil
	}

	return MinusValue(tv, hi)
}

/*****************************************************************************
 * Restriction to a span / span set
 *****************************************************************************/

// AtSpan restricts a temporal number to the timestamps where its value
// falls inside s.
func AtSpan(tv Temporal, s span.Span) Temporal {
	if tv == nil || !spanOverlapsBbox(tv, s) {
		return nil
	}

	switch t := tv.(type) {
	case *TInstant:
		if s.Contains(t.value) {
			return t
		}
		return nil
	case *TInstantSet:
		var kept []TInstant
		for i := range t.instants {
			if s.Contains(t.instants[i].value) {
				kept = append(kept, t.instants[i].clone())
			}
		}
		return sealInstants(kept)
	case *TSequence:
		return seal(t.atSpan(s))
	case *TSequenceSet:
		var frags []*TSequence
		for _, sq := range t.seqs {
			frags = append(frags, sq.atSpan(s)...)
		}
		return seal(frags)
	default:
		return nil
	}
}

// MinusSpan restricts a temporal number to the timestamps where its
// value falls outside s.
func MinusSpan(tv Temporal, s span.Span) Temporal {
	if tv == nil {
		return nil
	}
	if !spanOverlapsBbox(tv, s) {
		return tv
	}

	switch t := tv.(type) {
	case *TInstant:
		if s.Contains(t.value) {
			return nil
		}
		return t
	case *TInstantSet:
		var kept []TInstant
		for i := range t.instants {
			if !s.Contains(t.instants[i].value) {
				kept = append(kept, t.instants[i].clone())
			}
		}
		return sealInstants(kept)
	default:
		at := AtSpan(tv, s)
		if at == nil {
			return tv
		}
		return AtPeriodSet(tv, timeSupport(tv).Minus(timeSupport(at)))
	}
}

// AtSpanSet restricts a temporal number to the timestamps where its
// value falls inside the span set.
func AtSpanSet(tv Temporal, ss span.Set) Temporal {
	if tv == nil || ss.IsEmpty() {
		return nil
	}

	switch tv.(type) {
	case *TInstant, *TInstantSet:
		var kept []TInstant
		for i := 0; i < tv.NumInstants(); i++ {
			inst := tv.InstantN(i)
			if ss.Contains(inst.value) {
				kept = append(kept, inst.clone())
			}
		}
		return sealInstants(kept)
	default:
		var frags []*TSequence
		for _, s := range ss.Spans() {
			if at := AtSpan(tv, s); at != nil {
				frags = append(frags, sequencesOf(at)...)
			}
		}
		sortFragments(frags)
		return seal(frags)
	}
}

// MinusSpanSet restricts a temporal number to the timestamps where its
// value falls outside the span set.
func MinusSpanSet(tv Temporal, ss span.Set) Temporal {
	at := AtSpanSet(tv, ss)
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

/*****************************************************************************
 * Restriction to time
 *****************************************************************************/

// AtTimestamp restricts tv to a single timestamp.
func AtTimestamp(tv Temporal, t ttime.Timestamp) Temporal {
	if tv == nil {
		return nil
	}
	v, ok := tv.ValueAt(t)
	if !ok {
		return nil
	}
	inst := TInstant{value: v.Clone(), t: t}
	inst.bbox = instantsBbox([]TInstant{inst}, true, true)

	return &inst
}

// MinusTimestamp removes a single timestamp from tv.
func MinusTimestamp(tv Temporal, t ttime.Timestamp) Temporal {
	if tv == nil {
		return nil
	}
	if _, ok := tv.ValueAt(t); !ok {
		return tv
	}

	switch tv.(type) {
	case *TInstant:
		return nil
	case *TInstantSet:
		var kept []TInstant
		for i := 0; i < tv.NumInstants(); i++ {
			inst := tv.InstantN(i)
			if inst.t != t {
				kept = append(kept, inst.clone())
			}
		}
		return sealInstants(kept)
	default:
		p, err := span.NewPeriod(t, t, true, true)
		if err != nil {
			return tv
		}
		return AtPeriodSet(tv, timeSupport(tv).MinusSpan(p))
	}
}

// AtTimestampSet restricts tv to a set of timestamps.
func AtTimestampSet(tv Temporal, ts []ttime.Timestamp) Temporal {
	if tv == nil {
		return nil
	}

	var kept []TInstant
	for _, t := range ts {
		if v, ok := tv.ValueAt(t); ok {
			kept = append(kept, TInstant{value: v.Clone(), t: t})
		}
	}

	return sealInstants(kept)
}

// MinusTimestampSet removes a set of timestamps from tv.
func MinusTimestampSet(tv Temporal, ts []ttime.Timestamp) Temporal {
	result := tv
	for _, t := range ts {
		result = MinusTimestamp(result, t)
		if result == nil {
			return nil
		}
	}

	return result
}

// AtPeriod restricts tv to a period.
func AtPeriod(tv Temporal, p span.Span) Temporal {
	if tv == nil || !tv.Period().Overlaps(p) {
		return nil
	}

	switch t := tv.(type) {
	case *TInstant:
		if p.Contains(datum.TimestampTz(t.t)) {
			return t
		}
		return nil
	case *TInstantSet:
		var kept []TInstant
		for i := range t.instants {
			if p.Contains(datum.TimestampTz(t.instants[i].t)) {
				kept = append(kept, t.instants[i].clone())
			}
		}
		return sealInstants(kept)
	case *TSequence:
		if frag := t.atPeriod(p); frag != nil {
			return frag
		}
		return nil
	case *TSequenceSet:
		var frags []*TSequence
		for _, s := range t.seqs {
			if frag := s.atPeriod(p); frag != nil {
				frags = append(frags, frag)
			}
		}
		return seal(frags)
	default:
		return nil
	}
}

// MinusPeriod removes a period from tv.
func MinusPeriod(tv Temporal, p span.Span) Temporal {
	if tv == nil {
		return nil
	}
	if !tv.Period().Overlaps(p) {
		return tv
	}

	switch tv.(type) {
	case *TInstant, *TInstantSet:
		var kept []TInstant
		for i := 0; i < tv.NumInstants(); i++ {
			inst := tv.InstantN(i)
			if !p.Contains(datum.TimestampTz(inst.t)) {
				kept = append(kept, inst.clone())
			}
		}
		if _, isInst := tv.(*TInstant); isInst {
			if len(kept) == 0 {
				return nil
			}
			return tv
		}
		return sealInstants(kept)
	default:
		return AtPeriodSet(tv, timeSupport(tv).MinusSpan(p))
	}
}

// AtPeriodSet restricts tv to a set of periods.
func AtPeriodSet(tv Temporal, ps span.Set) Temporal {
	if tv == nil || ps.IsEmpty() {
		return nil
	}
	if !ps.Overlaps(tv.Period()) {
		return nil
	}

	switch tv.(type) {
	case *TInstant, *TInstantSet:
		var kept []TInstant
		for i := 0; i < tv.NumInstants(); i++ {
			inst := tv.InstantN(i)
			if ps.Contains(datum.TimestampTz(inst.t)) {
				kept = append(kept, inst.clone())
			}
		}
		if _, isInst := tv.(*TInstant); isInst {
			if len(kept) == 0 {
				return nil
			}
			return tv
		}
		return sealInstants(kept)
	default:
		var frags []*TSequence
		for _, p := range ps.Spans() {
			if at := AtPeriod(tv, p); at != nil {
				frags = append(frags, sequencesOf(at)...)
			}
		}
		return seal(frags)
	}
}

// MinusPeriodSet removes a set of periods from tv.
func MinusPeriodSet(tv Temporal, ps span.Set) Temporal {
	if tv == nil {
		return nil
	}
	if ps.IsEmpty() || !ps.Overlaps(tv.Period()) {
		return tv
	}

	switch tv.(type) {
	case *TInstant, *TInstantSet:
		var kept []TInstant
		for i := 0; i < tv.NumInstants(); i++ {
			inst := tv.InstantN(i)
			if !ps.Contains(datum.TimestampTz(inst.t)) {
				kept = append(kept, inst.clone())
			}
		}
		if _, isInst := tv.(*TInstant); isInst {
			if len(kept) == 0 {
				return nil
			}
			return tv
		}
		return sealInstants(kept)
	default:
		return AtPeriodSet(tv, timeSupport(tv).Minus(ps))
	}
}

/*****************************************************************************
 * Helpers
 *****************************************************************************/

// timeSupport returns the exact time support of a temporal value.
func timeSupport(tv Temporal) span.Set { return tv.Time() }

// valueInBbox fast-rejects a value restriction using the cached box.
func valueInBbox(tv Temporal, v datum.Datum) bool {
	bb := tv.Bbox()
	if bb.Spatial {
		p := v.PointVal()
		if p == nil {
			return false
		}
		return bb.ST.ContainsPoint(p)
	}
	if !bb.T.HasX {
		return true
	}

	return bb.T.Span.Contains(numericValue(v))
}

// spanOverlapsBbox fast-rejects a span restriction using the cached box.
func spanOverlapsBbox(tv Temporal, s span.Span) bool {
	bb := tv.Bbox()
	if bb.Spatial || !bb.T.HasX {
		return false
	}

	return bb.T.Span.Overlaps(s)
}

// valueRange returns the extreme values of a temporal number from its
// cached bounding box.
func valueRange(tv Temporal) (lo, hi datum.Datum, ok bool) {
	if tv == nil {
		return datum.Datum{}, datum.Datum{}, false
	}
	bb := tv.Bbox()
	if bb.Spatial || !bb.T.HasX || !tv.BaseType().Numeric() {
		return datum.Datum{}, datum.Datum{}, false
	}

	lo, hi = bb.T.Span.Lower, bb.T.Span.Upper
	// Canonical integer spans store the upper bound exclusive.
	if !bb.T.Span.UpperInc {
		switch hi.Type() {
		case datum.TypeInt4:
			hi = datum.Int4(hi.Int4Val() - 1)
		case datum.TypeInt8:
			hi = datum.Int8(hi.Int8Val() - 1)
		}
	}

	return lo, hi, true
}

// sequencesOf unwraps a sealed restriction result into its fragments.
func sequencesOf(tv Temporal) []*TSequence {
	switch t := tv.(type) {
	case *TSequence:
		return []*TSequence{t}
	case *TSequenceSet:
		return t.Sequences()
	case *TInstant:
		inst := t.clone()
		return []*TSequence{newTSequenceFromOwned([]TInstant{inst}, true, true, InterpStep)}
	default:
		return nil
	}
}

// sortFragments orders fragments by start time.
func sortFragments(frags []*TSequence) {
	for i := 1; i < len(frags); i++ {
		for j := i; j > 0 && frags[j].StartTimestamp() < frags[j-1].StartTimestamp(); j-- {
			frags[j], frags[j-1] = frags[j-1], frags[j]
		}
	}
}

// minusInstants filters the instants of tv not present in at.
func minusInstants(tv, at Temporal) Temporal {
	var kept []TInstant
	for i := 0; i < tv.NumInstants(); i++ {
		inst := tv.InstantN(i)
		if _, ok := at.ValueAt(inst.t); !ok {
			kept = append(kept, inst.clone())
		}
	}

	return sealInstants(kept)
}

// dedupValues removes duplicate datums preserving order.
func dedupValues(values []datum.Datum) []datum.Datum {
	out := values[:0:0]
	for _, v := range values {
		dup := false
		for _, w := range out {
			if v.Eq(w) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}

	return out
}

// timestampAtFraction converts a segment fraction into a timestamp,
// rounding to the nearest microsecond.
func timestampAtFraction(lower, upper ttime.Timestamp, frac float64) ttime.Timestamp {
	if frac <= 0 {
		return lower
	}
	if frac >= 1 {
		return upper
	}

	return lower + ttime.Timestamp(math.Round(frac*float64(upper-lower)))
}
