package temporal

import (
	"sort"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/geo"
	"github.com/arloliu/tempus/span"
)

// Temporal spatial relations between a moving point and a geometry:
// each returns a temporal boolean that is true exactly when the
// relation holds. They are derived from the geometric restriction: the
// point intersects the geometry precisely on the time support of
// at(geometry).

// TIntersects returns the temporal predicate "the moving point is
// inside or on the geometry".
func TIntersects(tv Temporal, g geo.Geometry) (Temporal, error) {
	at, err := AtGeometry(tv, g)
	if err != nil {
		return nil, err
	}

	return boolFromRestriction(tv, at), nil
}

// TDisjoint returns the temporal predicate "the moving point is outside
// the geometry": the pointwise negation of TIntersects.
func TDisjoint(tv Temporal, g geo.Geometry) (Temporal, error) {
	ti, err := TIntersects(tv, g)
	if err != nil {
		return nil, err
	}

	return negateBool(ti), nil
}

// TContains returns the temporal predicate "the geometry properly
// contains the moving point": inside but not on the boundary.
func TContains(tv Temporal, g geo.Geometry) (Temporal, error) {
	inside, err := AtGeometry(tv, g)
	if err != nil {
		return nil, err
	}
	if inside == nil {
		return boolFromRestriction(tv, nil), nil
	}
	onBound := atBoundary(inside, g)

	return boolFromSupport(tv, timeSupport(inside).Minus(onBound)), nil
}

// TTouches returns the temporal predicate "the moving point is exactly
// on the geometry boundary".
func TTouches(tv Temporal, g geo.Geometry) (Temporal, error) {
	inside, err := AtGeometry(tv, g)
	if err != nil {
		return nil, err
	}
	if inside == nil {
		return boolFromRestriction(tv, nil), nil
	}

	return boolFromSupport(tv, atBoundary(inside, g)), nil
}

// atBoundary returns the time support where a restricted temporal point
// sits on the geometry boundary.
func atBoundary(inside Temporal, g geo.Geometry) span.Set {
	var periods []span.Span
	collect := func(seq *TSequence) {
		n := seq.NumInstants()
		for i := 0; i < n; i++ {
			inst := seq.InstantN(i)
			if !g.OnBoundary(inst.Point()) {
				continue
			}
			// A boundary-riding segment contributes a whole period; a
			// crossing contributes a single instant.
			if i < n-1 && g.OnBoundary(midPoint(inst, seq.InstantN(i+1))) {
				p, err := span.NewPeriod(inst.t, seq.InstantN(i+1).t, true, true)
				if err == nil {
					periods = append(periods, p)
				}
				continue
			}
			p, err := span.NewPeriod(inst.t, inst.t, true, true)
			if err == nil {
				periods = append(periods, p)
			}
		}
	}

	switch t := inside.(type) {
	case *TInstant:
		if g.OnBoundary(t.Point()) {
			periods = append(periods, t.Period())
		}
	case *TInstantSet:
		for i := range t.instants {
			if g.OnBoundary(t.instants[i].Point()) {
				periods = append(periods, t.instants[i].Period())
			}
		}
	case *TSequence:
		collect(t)
	case *TSequenceSet:
		for _, s := range t.seqs {
			collect(s)
		}
	}

	if len(periods) == 0 {
		return span.Set{}
	}

	return span.MustSet(periods...)
}

// midPoint interpolates the spatial midpoint of a segment.
func midPoint(a, b *TInstant) *geo.Point {
	return geo.Interpolate(a.Point(), b.Point(), 0.5)
}

// boolFromRestriction builds the temporal boolean that is true on the
// time support of the restriction at and false on the rest of tv.
func boolFromRestriction(tv, at Temporal) Temporal {
	var truthy span.Set
	if at != nil {
		truthy = timeSupport(at)
	}

	return boolFromSupport(tv, truthy)
}

// boolFromSupport builds a temporal boolean over the shape of tv that
// is true exactly on the given time support.
func boolFromSupport(tv Temporal, truthy span.Set) Temporal {
	switch t := tv.(type) {
	case *TInstant:
		v := datum.Bool(truthy.Contains(datum.TimestampTz(t.t)))
		inst := TInstant{value: v, t: t.t}
		inst.bbox = instantsBbox([]TInstant{inst}, true, true)
		return &inst
	case *TInstantSet:
		out := make([]TInstant, len(t.instants))
		for i := range t.instants {
			v := datum.Bool(truthy.Contains(datum.TimestampTz(t.instants[i].t)))
			out[i] = TInstant{value: v, t: t.instants[i].t}
		}
		return sealInstants(out)
	default:
		var frags []*TSequence
		for _, p := range truthy.Spans() {
			frags = append(frags, constantSeq(p, datum.Bool(true), InterpStep))
		}
		falsy := timeSupport(tv).Minus(truthy)
		for _, p := range falsy.Spans() {
			frags = append(frags, constantSeq(p, datum.Bool(false), InterpStep))
		}
		sort.Slice(frags, func(i, j int) bool {
			si, sj := frags[i], frags[j]
			if si.StartTimestamp() != sj.StartTimestamp() {
				return si.StartTimestamp() < sj.StartTimestamp()
			}
			return si.lowerInc && !sj.lowerInc
		})
		return seal(mergeFragments(frags))
	}
}

// negateBool returns the pointwise negation of a temporal boolean.
func negateBool(tv Temporal) Temporal {
	if tv == nil {
		return nil
	}

	neg := func(v datum.Datum) datum.Datum { return datum.Bool(!v.BoolVal()) }
	switch t := tv.(type) {
	case *TInstant:
		inst := TInstant{value: neg(t.value), t: t.t}
		inst.bbox = instantsBbox([]TInstant{inst}, true, true)
		return &inst
	case *TInstantSet:
		out := make([]TInstant, len(t.instants))
		for i := range t.instants {
			out[i] = TInstant{value: neg(t.instants[i].value), t: t.instants[i].t}
		}
		return sealInstants(out)
	case *TSequence:
		out := make([]TInstant, len(t.instants))
		for i := range t.instants {
			out[i] = TInstant{value: neg(t.instants[i].value), t: t.instants[i].t}
		}
		return newTSequenceFromOwned(out, t.lowerInc, t.upperInc, t.interp)
	case *TSequenceSet:
		frags := make([]*TSequence, len(t.seqs))
		for i, s := range t.seqs {
			frags[i] = negateBool(s).(*TSequence)
		}
		return newTSequenceSetFromOwned(frags)
	default:
		return nil
	}
}
