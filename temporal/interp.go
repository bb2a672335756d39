package temporal

import (
	"fmt"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/geo"
)

// interpolateDatum returns the value at fraction frac between two datums
// of a continuous base type.
func interpolateDatum(a, b datum.Datum, frac float64) (datum.Datum, error) {
	switch a.Type() {
	case datum.TypeFloat8:
		av, bv := a.Float8Val(), b.Float8Val()
		return datum.Float8(av + (bv-av)*frac), nil
	case datum.TypeGeomPoint:
		return datum.Geom(geo.Interpolate(a.PointVal(), b.PointVal(), frac)), nil
	case datum.TypeGeogPoint:
		return datum.Geog(geo.Interpolate(a.PointVal(), b.PointVal(), frac)), nil
	case datum.TypeNPoint:
		np, err := geo.InterpolateNPoint(a.NPointVal(), b.NPointVal(), frac)
		if err != nil {
			return datum.Datum{}, err
		}
		return datum.NPoint(np), nil
	default:
		return datum.Datum{}, fmt.Errorf("%w: cannot interpolate %s", errs.ErrBadInterp, a.Type())
	}
}

// validateInstants checks the shared instant-array invariants: at least
// one instant, strictly increasing timestamps, homogeneous base type,
// and homogeneous spatial reference for geometric bases.
func validateInstants(instants []*TInstant) error {
	if len(instants) == 0 {
		return fmt.Errorf("%w: at least one instant required", errs.ErrBadBounds)
	}

	bt := instants[0].BaseType()
	for i, inst := range instants {
		if inst.BaseType() != bt {
			return fmt.Errorf("%w: %s vs %s", errs.ErrBaseMismatch, bt, inst.BaseType())
		}
		if i == 0 {
			continue
		}
		prev := instants[i-1]
		if inst.t <= prev.t {
			if inst.t == prev.t && inst.value.Eq(prev.value) {
				// Exact duplicates are tolerated and collapsed by
				// normalization.
				continue
			}
			return fmt.Errorf("%w: %s then %s", errs.ErrNonMonotonicTime, prev.t, inst.t)
		}
	}

	if bt.Spatial() && bt != datum.TypeNPoint {
		first := instants[0].Point()
		for _, inst := range instants[1:] {
			if err := geo.Validate(first, inst.Point()); err != nil {
				return err
			}
		}
	}

	return nil
}

// copyInstants deduplicates exact duplicate timestamps and copies the
// instants into a contiguous backing array.
func copyInstants(instants []*TInstant) []TInstant {
	out := make([]TInstant, 0, len(instants))
	for i, inst := range instants {
		if i > 0 && inst.t == instants[i-1].t {
			continue
		}
		out = append(out, inst.clone())
	}

	return out
}
