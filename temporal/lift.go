package temporal

import (
	"fmt"
	"math"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/geo"
	"github.com/arloliu/tempus/span"
)

// Lifted operators: arithmetic, comparisons and distance applied
// instant-by-instant over the common time partition of their operands.
// Comparisons subdivide the partition at every crossing so the boolean
// result is exact; products and distances subdivide at turning points so
// the piecewise-linear result tracks the true curve at its extrema.

/*****************************************************************************
 * Temporal arithmetic
 *****************************************************************************/

// Add returns the temporal sum a + b.
func Add(a, b Temporal) (Temporal, error) {
	return liftBinary(a, b, liftSpec{
		f:      func(x, y datum.Datum) (datum.Datum, error) { return x.Add(y) },
		linear: true,
	})
}

// Sub returns the temporal difference a - b.
func Sub(a, b Temporal) (Temporal, error) {
	return liftBinary(a, b, liftSpec{
		f:      func(x, y datum.Datum) (datum.Datum, error) { return x.Sub(y) },
		linear: true,
	})
}

// Mul returns the temporal product a * b. The product of two linear
// segments is quadratic; the partition is subdivided at the turning
// point so the result tracks the extremum.
func Mul(a, b Temporal) (Temporal, error) {
	return liftBinary(a, b, liftSpec{
		f:           func(x, y datum.Datum) (datum.Datum, error) { return x.Mul(y) },
		linear:      true,
		extraPoints: multTurningPoint,
	})
}

// Div returns the temporal quotient a / b. A divisor that is zero at any
// instant of the common partition fails with errs.ErrDivZero.
func Div(a, b Temporal) (Temporal, error) {
	return liftBinary(a, b, liftSpec{
		f:           func(x, y datum.Datum) (datum.Datum, error) { return x.Div(y) },
		linear:      true,
		zeroCheck:   true,
		extraPoints: multTurningPoint,
	})
}

// multTurningPoint returns the fraction at which the product of two
// linear segments reaches its extremum.
func multTurningPoint(a1, a2, b1, b2 datum.Datum) []float64 {
	da := a2.Float64() - a1.Float64()
	db := b2.Float64() - b1.Float64()
	if da == 0 || db == 0 {
		return nil
	}
	frac := -(da*b1.Float64() + db*a1.Float64()) / (2 * da * db)
	if frac <= 0 || frac >= 1 {
		return nil
	}

	return []float64{frac}
}

/*****************************************************************************
 * Temporal comparisons
 *****************************************************************************/

// comparison lifts a datum comparison returning a temporal boolean,
// subdividing at value crossings.
func comparison(a, b Temporal, cmp func(x, y datum.Datum) bool) (Temporal, error) {
	return liftBinary(a, b, liftSpec{
		f: func(x, y datum.Datum) (datum.Datum, error) {
			if x.Type() != y.Type() {
				return datum.Datum{}, fmt.Errorf("%w: %s vs %s", errs.ErrBaseMismatch, x.Type(), y.Type())
			}
			return datum.Bool(cmp(x, y)), nil
		},
		extraPoints: segmentValueCrossing,
	})
}

// TEq returns the temporal equality a #= b.
func TEq(a, b Temporal) (Temporal, error) {
	return comparison(a, b, func(x, y datum.Datum) bool { return x.Eq(y) })
}

// TNe returns the temporal inequality a #<> b.
func TNe(a, b Temporal) (Temporal, error) {
	return comparison(a, b, func(x, y datum.Datum) bool { return !x.Eq(y) })
}

// TLt returns the temporal order a #< b.
func TLt(a, b Temporal) (Temporal, error) {
	return comparison(a, b, func(x, y datum.Datum) bool { return x.Lt(y) })
}

// TLe returns the temporal order a #<= b.
func TLe(a, b Temporal) (Temporal, error) {
	return comparison(a, b, func(x, y datum.Datum) bool { return x.Le(y) })
}

// TGt returns the temporal order a #> b.
func TGt(a, b Temporal) (Temporal, error) {
	return comparison(a, b, func(x, y datum.Datum) bool { return x.Gt(y) })
}

// TGe returns the temporal order a #>= b.
func TGe(a, b Temporal) (Temporal, error) {
	return comparison(a, b, func(x, y datum.Datum) bool { return x.Ge(y) })
}

// segmentValueCrossing returns the fraction at which two linear segments
// take the same value, when one exists strictly inside the segments.
func segmentValueCrossing(a1, a2, b1, b2 datum.Datum) []float64 {
	switch a1.Type() {
	case datum.TypeGeomPoint, datum.TypeGeogPoint:
		return pointSegmentCrossing(a1.PointVal(), a2.PointVal(), b1.PointVal(), b2.PointVal())
	case datum.TypeInt4, datum.TypeInt8, datum.TypeFloat8, datum.TypeNPoint:
		av1, av2 := a1.Float64(), a2.Float64()
		bv1, bv2 := b1.Float64(), b2.Float64()
		denom := (av2 - av1) - (bv2 - bv1)
		if denom == 0 {
			return nil
		}
		frac := (bv1 - av1) / denom
		if frac <= 0 || frac >= 1 {
			return nil
		}
		return []float64{frac}
	default:
		return nil
	}
}

// pointSegmentCrossing solves for the fraction at which two moving
// points coincide: the per-coordinate linear solutions must agree.
func pointSegmentCrossing(p1, p2, q1, q2 *geo.Point) []float64 {
	if p1 == nil || p2 == nil || q1 == nil || q2 == nil {
		return nil
	}
	solve := func(a1, a2, b1, b2 float64) (float64, bool, bool) {
		denom := (a2 - a1) - (b2 - b1)
		if denom == 0 {
			// Coordinates co-move; they agree everywhere or nowhere.
			return 0, a1 == b1, false
		}
		return (b1 - a1) / denom, false, true
	}

	fx, anyX, okX := solve(p1.X, p2.X, q1.X, q2.X)
	fy, anyY, okY := solve(p1.Y, p2.Y, q1.Y, q2.Y)

	var frac float64
	switch {
	case okX && okY:
		if math.Abs(fx-fy) > 1e-9 {
			return nil
		}
		frac = fx
	case okX:
		if !anyY {
			return nil
		}
		frac = fx
	case okY:
		if !anyX {
			return nil
		}
		frac = fy
	default:
		return nil
	}

	if p1.HasZ {
		fz, anyZ, okZ := solve(p1.Z, p2.Z, q1.Z, q2.Z)
		if okZ {
			if math.Abs(fz-frac) > 1e-9 {
				return nil
			}
		} else if !anyZ {
			return nil
		}
	}
	if frac <= 0 || frac >= 1 {
		return nil
	}

	return []float64{frac}
}

/*****************************************************************************
 * Temporal distance
 *****************************************************************************/

// Distance returns the temporal distance between two temporal values:
// |a - b| for numbers, the spatial distance for points. The partition is
// subdivided at closest-approach instants.
func Distance(a, b Temporal) (Temporal, error) {
	if a.BaseType().Spatial() {
		return liftBinary(a, b, liftSpec{
			f:           pointDistanceFn,
			linear:      true,
			extraPoints: distanceTurningPoint,
		})
	}

	return liftBinary(a, b, liftSpec{
		f: func(x, y datum.Datum) (datum.Datum, error) {
			if x.Type() != y.Type() {
				return datum.Datum{}, fmt.Errorf("%w: %s vs %s", errs.ErrBaseMismatch, x.Type(), y.Type())
			}
			return datum.Float8(math.Abs(x.Float64() - y.Float64())), nil
		},
		linear:      true,
		extraPoints: segmentValueCrossing,
	})
}

// pointDistanceFn measures the distance between two point datums.
func pointDistanceFn(x, y datum.Datum) (datum.Datum, error) {
	if x.Type() == datum.TypeNPoint && y.Type() == datum.TypeNPoint {
		xp, yp := x.NPointVal(), y.NPointVal()
		if xp.RouteID != yp.RouteID {
			return datum.Datum{}, errs.ErrSegMismatch
		}
		return datum.Float8(math.Abs(xp.Position - yp.Position)), nil
	}
	if x.PointVal() == nil || y.PointVal() == nil {
		return datum.Datum{}, errs.ErrTypeMismatch
	}
	d, err := geo.Distance(x.PointVal(), y.PointVal())
	if err != nil {
		return datum.Datum{}, err
	}

	return datum.Float8(d), nil
}

// distanceTurningPoint returns the fraction of closest approach between
// two moving points: the minimum of the quadratic squared-distance.
func distanceTurningPoint(a1, a2, b1, b2 datum.Datum) []float64 {
	p1, p2 := a1.PointVal(), a2.PointVal()
	q1, q2 := b1.PointVal(), b2.PointVal()
	if p1 == nil || q1 == nil {
		return nil
	}

	qa, qb, _ := distanceQuadratic(p1, p2, q1, q2, 0)
	if qa == 0 {
		return nil
	}
	frac := -qb / (2 * qa)
	if frac <= 0 || frac >= 1 {
		return nil
	}

	return []float64{frac}
}

// NearestApproachDistance returns the minimum distance ever reached
// between two temporal values.
func NearestApproachDistance(a, b Temporal) (float64, error) {
	d, err := Distance(a, b)
	if err != nil {
		return 0, err
	}
	if d == nil {
		return math.Inf(1), nil
	}
	lo, _, ok := valueRange(d)
	if !ok {
		return math.Inf(1), nil
	}

	return lo.Float64(), nil
}

/*****************************************************************************
 * Scalar operands
 *****************************************************************************/

// constantOf builds a temporal value holding constant c over the shape
// of tv, used to lift scalar operands.
func constantOf(tv Temporal, c datum.Datum) Temporal {
	switch t := tv.(type) {
	case *TInstant:
		inst := TInstant{value: c, t: t.t}
		inst.bbox = instantsBbox([]TInstant{inst}, true, true)
		return &inst
	case *TInstantSet:
		out := make([]TInstant, len(t.instants))
		for i := range t.instants {
			out[i] = TInstant{value: c.Clone(), t: t.instants[i].t}
		}
		return sealInstants(out)
	case *TSequence:
		return constantSeq(t.Period(), c, t.interp)
	case *TSequenceSet:
		frags := make([]*TSequence, len(t.seqs))
		for i, s := range t.seqs {
			frags[i] = constantSeq(s.Period(), c, s.interp)
		}
		return newTSequenceSetFromOwned(frags)
	default:
		return nil
	}
}

// constantSeq builds a constant sequence over a period.
func constantSeq(p span.Span, c datum.Datum, interp Interp) *TSequence {
	lower := p.Lower.TimestampVal()
	upper := p.Upper.TimestampVal()
	if !c.Type().Continuous() {
		interp = InterpStep
	}
	if lower == upper {
		out := []TInstant{{value: c.Clone(), t: lower}}
		return newTSequenceFromOwned(out, true, true, interp)
	}
	out := []TInstant{{value: c.Clone(), t: lower}, {value: c.Clone(), t: upper}}

	return newTSequenceFromOwned(out, p.LowerInc, p.UpperInc, interp)
}

// AddScalar returns tv + c.
func AddScalar(tv Temporal, c datum.Datum) (Temporal, error) {
	return Add(tv, constantOf(tv, c))
}

// SubScalar returns tv - c.
func SubScalar(tv Temporal, c datum.Datum) (Temporal, error) {
	return Sub(tv, constantOf(tv, c))
}

// MulScalar returns tv * c.
func MulScalar(tv Temporal, c datum.Datum) (Temporal, error) {
	return Mul(tv, constantOf(tv, c))
}

// DivScalar returns tv / c.
func DivScalar(tv Temporal, c datum.Datum) (Temporal, error) {
	return Div(tv, constantOf(tv, c))
}

// TEqValue returns the temporal equality tv #= c.
func TEqValue(tv Temporal, c datum.Datum) (Temporal, error) {
	return TEq(tv, constantOf(tv, c))
}

// TNeValue returns the temporal inequality tv #<> c.
func TNeValue(tv Temporal, c datum.Datum) (Temporal, error) {
	return TNe(tv, constantOf(tv, c))
}

// TLtValue returns the temporal order tv #< c.
func TLtValue(tv Temporal, c datum.Datum) (Temporal, error) {
	return TLt(tv, constantOf(tv, c))
}

// TGtValue returns the temporal order tv #> c.
func TGtValue(tv Temporal, c datum.Datum) (Temporal, error) {
	return TGt(tv, constantOf(tv, c))
}

/*****************************************************************************
 * Ever / always predicates
 *****************************************************************************/

// EverEq reports whether tv takes the value c at some instant.
func EverEq(tv Temporal, c datum.Datum) bool {
	return AtValue(tv, c) != nil
}

// AlwaysEq reports whether tv takes the value c at every instant.
func AlwaysEq(tv Temporal, c datum.Datum) bool {
	return tv != nil && MinusValue(tv, c) == nil
}

// EverLt reports whether tv is ever below c.
func EverLt(tv Temporal, c datum.Datum) bool {
	lo, _, ok := valueRange(tv)
	if !ok {
		return false
	}

	return lo.Lt(c)
}

// EverGt reports whether tv is ever above c.
func EverGt(tv Temporal, c datum.Datum) bool {
	_, hi, ok := valueRange(tv)
	if !ok {
		return false
	}

	return hi.Gt(c)
}

// AlwaysLt reports whether tv is below c at every instant.
func AlwaysLt(tv Temporal, c datum.Datum) bool {
	_, hi, ok := valueRange(tv)
	if !ok {
		return false
	}

	return hi.Lt(c)
}

// AlwaysGt reports whether tv is above c at every instant.
func AlwaysGt(tv Temporal, c datum.Datum) bool {
	lo, _, ok := valueRange(tv)
	if !ok {
		return false
	}

	return lo.Gt(c)
}
