// Package tile provides the bucketing and splitting primitives used for
// temporal analytics: value buckets, time buckets, multidimensional tile
// grids, and the split operations that fragment a temporal value along
// them.
package tile

import (
	"fmt"
	"math"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/ttime"
)

// IntBucket returns the start of the integer bucket of the given size
// containing value, with buckets aligned to origin. The division floors
// toward negative infinity; shifts that would leave the int32 range fail
// with errs.ErrRangeOverflow.
func IntBucket(value, size, origin int32) (int32, error) {
	if size <= 0 {
		return 0, fmt.Errorf("%w: bucket size must be positive, got %d", errs.ErrRangeOverflow, size)
	}
	if origin != 0 {
		origin %= size
		if (origin > 0 && value < math.MinInt32+origin) ||
			(origin < 0 && value > math.MaxInt32+origin) {
			return 0, fmt.Errorf("%w: value out of range", errs.ErrRangeOverflow)
		}
		value -= origin
	}

	result := (value / size) * size
	if value < 0 && value%size != 0 {
		// Integer division truncates toward zero; shift one bucket down
		// for negative values with a remainder.
		if result < math.MinInt32+size {
			return 0, fmt.Errorf("%w: value out of range", errs.ErrRangeOverflow)
		}
		result -= size
	}

	return result + origin, nil
}

// FloatBucket returns the start of the float bucket of the given size
// containing value, with buckets aligned to origin.
func FloatBucket(value, size, origin float64) (float64, error) {
	if size <= 0 {
		return 0, fmt.Errorf("%w: bucket size must be positive, got %g", errs.ErrRangeOverflow, size)
	}
	if origin != 0 {
		origin = math.Mod(origin, size)
		value -= origin
	}

	// floor already rounds toward negative infinity.
	return math.Floor(value/size)*size + origin, nil
}

// ValueBucket returns the start of the bucket containing a numeric
// datum; the bucket size and origin must share the datum's base type.
func ValueBucket(value, size, origin datum.Datum) (datum.Datum, error) {
	if value.Type() != size.Type() || value.Type() != origin.Type() {
		return datum.Datum{}, fmt.Errorf("%w: mixed bucket argument types", errs.ErrBaseMismatch)
	}

	switch value.Type() {
	case datum.TypeInt4:
		b, err := IntBucket(value.Int4Val(), size.Int4Val(), origin.Int4Val())
		if err != nil {
			return datum.Datum{}, err
		}
		return datum.Int4(b), nil
	case datum.TypeInt8:
		b, err := int8Bucket(value.Int8Val(), size.Int8Val(), origin.Int8Val())
		if err != nil {
			return datum.Datum{}, err
		}
		return datum.Int8(b), nil
	case datum.TypeFloat8:
		b, err := FloatBucket(value.Float8Val(), size.Float8Val(), origin.Float8Val())
		if err != nil {
			return datum.Datum{}, err
		}
		return datum.Float8(b), nil
	default:
		return datum.Datum{}, fmt.Errorf("%w: %s has no value buckets", errs.ErrTypeMismatch, value.Type())
	}
}

// int8Bucket mirrors IntBucket over int64.
func int8Bucket(value, size, origin int64) (int64, error) {
	if size <= 0 {
		return 0, fmt.Errorf("%w: bucket size must be positive, got %d", errs.ErrRangeOverflow, size)
	}
	if origin != 0 {
		origin %= size
		if (origin > 0 && value < math.MinInt64+origin) ||
			(origin < 0 && value > math.MaxInt64+origin) {
			return 0, fmt.Errorf("%w: value out of range", errs.ErrRangeOverflow)
		}
		value -= origin
	}

	result := (value / size) * size
	if value < 0 && value%size != 0 {
		if result < math.MinInt64+size {
			return 0, fmt.Errorf("%w: value out of range", errs.ErrRangeOverflow)
		}
		result -= size
	}

	return result + origin, nil
}

// TimeBucket returns the start of the time bucket containing t. The
// bucket size is given as an interval, which must not carry a month
// component.
func TimeBucket(t ttime.Timestamp, size ttime.Interval, origin ttime.Timestamp) (ttime.Timestamp, error) {
	units, err := size.Units()
	if err != nil {
		return 0, err
	}

	return ttime.Bucket(t, units, origin)
}

// addValue advances a numeric datum by a bucket size.
func addValue(v, size datum.Datum) datum.Datum {
	sum, err := v.Add(size)
	if err != nil {
		panic(err)
	}

	return sum
}
