package tile

import (
	"fmt"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/temporal"
	"github.com/arloliu/tempus/ttime"
)

// Split operations fragment a temporal value along bucket boundaries.
// Only buckets with a non-empty fragment are returned, in bucket order.

// TimeSplitResult pairs one time bucket with the fragment of the value
// falling inside it.
type TimeSplitResult struct {
	Bucket   ttime.Timestamp
	Fragment temporal.Temporal
}

// TimeSplit fragments tv along time buckets of the given size aligned
// to origin.
func TimeSplit(tv temporal.Temporal, size ttime.Interval, origin ttime.Timestamp) ([]TimeSplitResult, error) {
	if tv == nil {
		return nil, nil
	}
	units, err := size.Units()
	if err != nil {
		return nil, err
	}
	if units <= 0 {
		return nil, fmt.Errorf("%w: bucket size must be positive", errs.ErrRangeOverflow)
	}

	start, err := ttime.Bucket(tv.StartTimestamp(), units, origin)
	if err != nil {
		return nil, err
	}

	var out []TimeSplitResult
	for b := start; b <= tv.EndTimestamp(); b += ttime.Timestamp(units) {
		p, err := span.NewPeriod(b, b+ttime.Timestamp(units), true, false)
		if err != nil {
			return nil, err
		}
		if frag := temporal.AtPeriod(tv, p); frag != nil {
			out = append(out, TimeSplitResult{Bucket: b, Fragment: frag})
		}
	}

	return out, nil
}

// ValueSplitResult pairs one value bucket with the fragment of the
// value falling inside it.
type ValueSplitResult struct {
	Bucket   datum.Datum
	Fragment temporal.Temporal
}

// ValueSplit fragments a temporal number along value buckets of the
// given size aligned to origin.
func ValueSplit(tv temporal.Temporal, size, origin datum.Datum) ([]ValueSplitResult, error) {
	if tv == nil {
		return nil, nil
	}
	vs, ok := temporal.ValueSpan(tv)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no value dimension", errs.ErrTypeMismatch, tv.BaseType())
	}

	start, err := ValueBucket(vs.Lower, size, origin)
	if err != nil {
		return nil, err
	}

	var out []ValueSplitResult
	for b := start; b.Le(vs.Upper); b = addValue(b, size) {
		bucketSpan, err := span.Make(b, addValue(b, size), true, false)
		if err != nil {
			return nil, err
		}
		if frag := temporal.AtSpan(tv, bucketSpan); frag != nil {
			out = append(out, ValueSplitResult{Bucket: b, Fragment: frag})
		}
		if bucketSpan.Contains(vs.Upper) {
			break
		}
	}

	return out, nil
}

// ValueTimeSplitResult pairs one value-by-time tile with the fragment
// of the value falling inside it.
type ValueTimeSplitResult struct {
	ValueBucket datum.Datum
	TimeBucket  ttime.Timestamp
	Fragment    temporal.Temporal
}

// ValueTimeSplit fragments a temporal number along a two-dimensional
// grid of value and time buckets.
func ValueTimeSplit(tv temporal.Temporal, valueSize, valueOrigin datum.Datum,
	timeSize ttime.Interval, timeOrigin ttime.Timestamp,
) ([]ValueTimeSplitResult, error) {
	byValue, err := ValueSplit(tv, valueSize, valueOrigin)
	if err != nil {
		return nil, err
	}

	var out []ValueTimeSplitResult
	for _, vr := range byValue {
		byTime, err := TimeSplit(vr.Fragment, timeSize, timeOrigin)
		if err != nil {
			return nil, err
		}
		for _, tr := range byTime {
			out = append(out, ValueTimeSplitResult{
				ValueBucket: vr.Bucket,
				TimeBucket:  tr.Bucket,
				Fragment:    tr.Fragment,
			})
		}
	}

	return out, nil
}
