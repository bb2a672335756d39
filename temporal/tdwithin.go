package temporal

import (
	"math"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/geo"
	"github.com/arloliu/tempus/ttime"
)

// TDwithin computes the temporal predicate "the distance between two
// moving points is within d": a temporal boolean that is true exactly on
// the sub-intervals where ‖a(t) − b(t)‖ ≤ d.
//
// On every pair of synchronized linear segments the predicate reduces to
// a quadratic inequality in the segment fraction; the roots are computed
// with a mixture of the quadratic formula and Viète's form for numeric
// stability.

// TDwithin returns the temporal within-distance predicate of two
// temporal points.
func TDwithin(a, b Temporal, dist float64) (Temporal, error) {
	if a == nil || b == nil {
		return nil, nil
	}
	if !a.BaseType().Spatial() || !b.BaseType().Spatial() {
		return nil, errs.ErrTypeMismatch
	}
	if !a.Period().Overlaps(b.Period()) {
		return nil, nil
	}

	within := func(x, y datum.Datum) (datum.Datum, error) {
		d, err := pointDistanceFn(x, y)
		if err != nil {
			return datum.Datum{}, err
		}
		return datum.Bool(d.Float8Val() <= dist), nil
	}

	// Discrete operands reduce to the plain lifted predicate.
	if isDiscrete(a) || isDiscrete(b) {
		return liftBinary(a, b, liftSpec{f: within})
	}

	aSeqs := continuousSequences(a)
	bSeqs := continuousSequences(b)
	var frags []*TSequence
	for _, as := range aSeqs {
		for _, bs := range bSeqs {
			fs, err := tdwithinSeqSeq(as, bs, dist)
			if err != nil {
				return nil, err
			}
			frags = append(frags, fs...)
		}
	}

	return seal(frags), nil
}

// TDwithinValue returns the temporal within-distance predicate of a
// temporal point and a fixed point.
func TDwithinValue(tv Temporal, p *geo.Point, dist float64) (Temporal, error) {
	var c datum.Datum
	if p.Geodetic {
		c = datum.Geog(p)
	} else {
		c = datum.Geom(p)
	}

	return TDwithin(tv, constantOf(tv, c), dist)
}

func isDiscrete(tv Temporal) bool {
	switch tv.(type) {
	case *TInstant, *TInstantSet:
		return true
	default:
		return false
	}
}

// tdwithinSeqSeq builds the boolean fragments over the common period of
// two sequences.
func tdwithinSeqSeq(a, b *TSequence, dist float64) ([]*TSequence, error) {
	inter, ok := a.Period().Intersection(b.Period())
	if !ok {
		return nil, nil
	}
	as := a.atPeriod(inter)
	bs := b.atPeriod(inter)
	if as == nil || bs == nil {
		return nil, nil
	}

	// Union of instants of both operands.
	ts := mergeTimestamps(as, bs)
	if len(ts) == 1 {
		av, _ := as.valueAtAny(ts[0])
		bv, _ := bs.valueAtAny(ts[0])
		d, err := pointDistanceFn(av, bv)
		if err != nil {
			return nil, err
		}
		out := []TInstant{{value: datum.Bool(d.Float8Val() <= dist), t: ts[0]}}
		return []*TSequence{newTSequenceFromOwned(out, true, true, InterpStep)}, nil
	}

	linear := as.interp == InterpLinear && bs.interp == InterpLinear
	var frags []*TSequence
	for i := 0; i+1 < len(ts); i++ {
		lo, hi := ts[i], ts[i+1]
		cellLowerInc := inter.LowerInc || i > 0
		cellUpperInc := i+2 == len(ts) && inter.UpperInc

		av1, _ := as.valueAtAny(lo)
		av2, _ := as.valueAtAny(hi)
		bv1, _ := bs.valueAtAny(lo)
		bv2, _ := bs.valueAtAny(hi)

		cellFrags, err := tdwithinCell(av1, av2, bv1, bv2, lo, hi,
			cellLowerInc, cellUpperInc, linear, dist)
		if err != nil {
			return nil, err
		}
		frags = append(frags, cellFrags...)
	}

	frags = mergeFragments(frags)
	// The final cell may have emitted its excluded end instant; trim the
	// result back to the common period.
	if !inter.UpperInc {
		trimmed := frags[:0]
		for _, f := range frags {
			if f.StartTimestamp() == inter.Upper.TimestampVal() && f.NumInstants() == 1 {
				continue
			}
			if f.EndTimestamp() == inter.Upper.TimestampVal() && f.upperInc {
				f = f.atPeriod(inter)
				if f == nil {
					continue
				}
			}
			trimmed = append(trimmed, f)
		}
		frags = trimmed
	}

	return frags, nil
}

// mergeTimestamps returns the sorted union of the instants of two
// synchronized sequences.
func mergeTimestamps(as, bs *TSequence) []ttime.Timestamp {
	out := make([]ttime.Timestamp, 0, len(as.instants)+len(bs.instants))
	i, j := 0, 0
	for i < len(as.instants) || j < len(bs.instants) {
		switch {
		case i == len(as.instants):
			out = append(out, bs.instants[j].t)
			j++
		case j == len(bs.instants):
			out = append(out, as.instants[i].t)
			i++
		case as.instants[i].t < bs.instants[j].t:
			out = append(out, as.instants[i].t)
			i++
		case as.instants[i].t > bs.instants[j].t:
			out = append(out, bs.instants[j].t)
			j++
		default:
			out = append(out, as.instants[i].t)
			i++
			j++
		}
	}

	return out
}

// tdwithinCell solves one synchronized segment pair, emitting true and
// false fragments over [lo, hi].
func tdwithinCell(av1, av2, bv1, bv2 datum.Datum, lo, hi ttime.Timestamp,
	lowerInc, upperInc, linear bool, dist float64,
) ([]*TSequence, error) {
	if !linear {
		// Step motion: positions are constant on the open cell.
		d, err := pointDistanceFn(av1, bv1)
		if err != nil {
			return nil, err
		}
		v := datum.Bool(d.Float8Val() <= dist)
		out := []TInstant{{value: v, t: lo}, {value: v, t: hi}}
		return []*TSequence{newTSequenceFromOwned(out, lowerInc, upperInc, InterpStep)}, nil
	}

	if av1.Type() == datum.TypeNPoint {
		return tdwithinCellNPoint(av1, av2, bv1, bv2, lo, hi, lowerInc, upperInc, dist)
	}

	p1, p2 := av1.PointVal(), av2.PointVal()
	q1, q2 := bv1.PointVal(), bv2.PointVal()
	if err := geo.Validate(p1, q1); err != nil {
		return nil, err
	}

	t1, t2, count, whole := tdwithinSegment(p1, p2, q1, q2, lo, hi, dist)

	return boolCellFragments(lo, hi, lowerInc, upperInc, t1, t2, count, whole), nil
}

// tdwithinSegment solves the quadratic distance inequality over one
// segment pair. It returns up to two boundary timestamps of the
// within-distance sub-interval; whole marks parallel co-movement where
// the predicate is constant over the cell.
func tdwithinSegment(p1, p2, q1, q2 *geo.Point, lo, hi ttime.Timestamp,
	dist float64,
) (t1, t2 ttime.Timestamp, count int, whole bool) {
	a, b, c := distanceQuadratic(p1, p2, q1, q2, dist)

	// Parallel co-movement: the distance is constant.
	if a == 0 {
		d, _ := geo.Distance(p1, q1)
		if d <= dist {
			return lo, hi, 2, true
		}
		return 0, 0, 0, true
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, 0, false
	}
	duration := float64(hi - lo)
	if disc == 0 {
		frac := -b / (2 * a)
		if frac < 0 || frac > 1 {
			return 0, 0, 0, false
		}
		t := lo + ttime.Timestamp(math.Round(frac*duration))
		return t, t, 1, false
	}

	// Mixture of the quadratic formula and Viète's form for precision.
	var r1, r2 float64
	sq := math.Sqrt(disc)
	if b >= 0 {
		r1 = (-b - sq) / (2 * a)
		r2 = (2 * c) / (-b - sq)
	} else {
		r1 = (2 * c) / (-b + sq)
		r2 = (-b + sq) / (2 * a)
	}
	if r2 < 0 || r1 > 1 {
		return 0, 0, 0, false
	}
	f1 := math.Max(0, r1)
	f2 := math.Min(1, r2)
	t1 = lo + ttime.Timestamp(math.Round(f1*duration))
	t2 = lo + ttime.Timestamp(math.Round(f2*duration))
	if t1 == t2 {
		return t1, t1, 1, false
	}

	return t1, t2, 2, false
}

// distanceQuadratic returns the coefficients of the squared-distance
// quadratic ‖p(θ) − q(θ)‖² − dist² = Aθ² + Bθ + C over one segment pair.
func distanceQuadratic(p1, p2, q1, q2 *geo.Point, dist float64) (a, b, c float64) {
	dax := p2.X - p1.X
	day := p2.Y - p1.Y
	dbx := q2.X - q1.X
	dby := q2.Y - q1.Y
	cx := p1.X - q1.X
	cy := p1.Y - q1.Y
	rx := dax - dbx
	ry := day - dby

	a = rx*rx + ry*ry
	b = 2 * (rx*cx + ry*cy)
	c = cx*cx + cy*cy - dist*dist

	if p1.HasZ && q1.HasZ {
		daz := p2.Z - p1.Z
		dbz := q2.Z - q1.Z
		cz := p1.Z - q1.Z
		rz := daz - dbz
		a += rz * rz
		b += 2 * rz * cz
		c += cz * cz
	}

	return a, b, c
}

// tdwithinCellNPoint handles network points: both operands must move on
// the same route, where the distance is the position difference.
func tdwithinCellNPoint(av1, av2, bv1, bv2 datum.Datum, lo, hi ttime.Timestamp,
	lowerInc, upperInc bool, dist float64,
) ([]*TSequence, error) {
	a1, a2 := av1.NPointVal(), av2.NPointVal()
	b1, b2 := bv1.NPointVal(), bv2.NPointVal()
	if a1.RouteID != b1.RouteID {
		return nil, errs.ErrSegMismatch
	}

	// Relative position difference moves linearly: |r(θ)| ≤ dist.
	r1 := a1.Position - b1.Position
	r2 := a2.Position - b2.Position
	dr := r2 - r1
	duration := float64(hi - lo)

	if dr == 0 {
		v := datum.Bool(math.Abs(r1) <= dist)
		out := []TInstant{{value: v, t: lo}, {value: v, t: hi}}
		return []*TSequence{newTSequenceFromOwned(out, lowerInc, upperInc, InterpStep)}, nil
	}

	f1 := (-dist - r1) / dr
	f2 := (dist - r1) / dr
	if f1 > f2 {
		f1, f2 = f2, f1
	}
	if f2 < 0 || f1 > 1 {
		return boolCellFragments(lo, hi, lowerInc, upperInc, 0, 0, 0, false), nil
	}
	f1 = math.Max(0, f1)
	f2 = math.Min(1, f2)
	t1 := lo + ttime.Timestamp(math.Round(f1*duration))
	t2 := lo + ttime.Timestamp(math.Round(f2*duration))
	count := 2
	if t1 == t2 {
		count = 1
	}

	return boolCellFragments(lo, hi, lowerInc, upperInc, t1, t2, count, false), nil
}

// boolCellFragments emits the true/false step fragments of one cell:
// false before t1, true from t1 until the distance leaves d at t2, and
// false from t2 on.
func boolCellFragments(lo, hi ttime.Timestamp, lowerInc, upperInc bool,
	t1, t2 ttime.Timestamp, count int, whole bool,
) []*TSequence {
	boolSeq := func(v bool, from, to ttime.Timestamp, linc, uinc bool) *TSequence {
		if from == to {
			out := []TInstant{{value: datum.Bool(v), t: from}}
			return newTSequenceFromOwned(out, true, true, InterpStep)
		}
		out := []TInstant{{value: datum.Bool(v), t: from}, {value: datum.Bool(v), t: to}}
		return newTSequenceFromOwned(out, linc, uinc, InterpStep)
	}

	if count == 0 {
		return []*TSequence{boolSeq(false, lo, hi, lowerInc, upperInc)}
	}
	if whole {
		return []*TSequence{boolSeq(true, lo, hi, lowerInc, upperInc)}
	}

	var frags []*TSequence
	if t1 == t2 {
		// Tangent: a single within-distance instant.
		if t1 > lo {
			frags = append(frags, boolSeq(false, lo, t1, lowerInc, false))
		}
		if t1 > lo || lowerInc {
			frags = append(frags, boolSeq(true, t1, t1, true, true))
		}
		if t1 < hi {
			frags = append(frags, boolSeq(false, t1, hi, false, upperInc))
		}
		return frags
	}

	// One step sequence carries the false prefix and the true interval;
	// the instant where the distance leaves d starts a fresh false
	// sequence.
	var lead []TInstant
	if t1 > lo {
		lead = append(lead, TInstant{value: datum.Bool(false), t: lo})
	}
	lead = append(lead, TInstant{value: datum.Bool(true), t: t1})
	leadUpper := false
	if t2 == hi {
		leadUpper = upperInc
	}
	lead = append(lead, TInstant{value: datum.Bool(true), t: t2})
	frags = append(frags, newTSequenceFromOwned(normalizeInstants(lead, InterpStep),
		lowerInc, leadUpper, InterpStep))
	if t2 < hi {
		frags = append(frags, boolSeq(false, t2, hi, true, upperInc))
	}

	return frags
}
