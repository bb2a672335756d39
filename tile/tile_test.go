package tile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/tempus/box"
	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/temporal"
	"github.com/arloliu/tempus/ttime"
)

func day(n int64) ttime.Timestamp {
	return ttime.Timestamp((n - 1) * ttime.MicrosPerDay)
}

func TestIntBucket(t *testing.T) {
	t.Run("Positive", func(t *testing.T) {
		b, err := IntBucket(17, 5, 0)
		require.NoError(t, err)
		require.Equal(t, int32(15), b)
	})

	t.Run("Negative truncation corrected", func(t *testing.T) {
		b, err := IntBucket(-1, 5, 0)
		require.NoError(t, err)
		require.Equal(t, int32(-5), b)
	})

	t.Run("Exact negative boundary", func(t *testing.T) {
		b, err := IntBucket(-5, 5, 0)
		require.NoError(t, err)
		require.Equal(t, int32(-5), b)
	})

	t.Run("Offset", func(t *testing.T) {
		b, err := IntBucket(17, 5, 2)
		require.NoError(t, err)
		require.Equal(t, int32(17), b)
	})

	t.Run("Overflow", func(t *testing.T) {
		_, err := IntBucket(-2147483647, 10, 5)
		require.ErrorIs(t, err, errs.ErrRangeOverflow)
	})

	t.Run("Bad size", func(t *testing.T) {
		_, err := IntBucket(1, 0, 0)
		require.ErrorIs(t, err, errs.ErrRangeOverflow)
	})
}

func TestFloatBucket(t *testing.T) {
	b, err := FloatBucket(17.3, 5, 0)
	require.NoError(t, err)
	require.Equal(t, 15.0, b)

	b, err = FloatBucket(-0.1, 5, 0)
	require.NoError(t, err)
	require.Equal(t, -5.0, b)

	b, err = FloatBucket(17.3, 5, 1.5)
	require.NoError(t, err)
	require.Equal(t, 16.5, b)
}

func TestValueBucket(t *testing.T) {
	b, err := ValueBucket(datum.Int8(23), datum.Int8(10), datum.Int8(0))
	require.NoError(t, err)
	require.Equal(t, int64(20), b.Int8Val())

	_, err = ValueBucket(datum.Int4(1), datum.Int8(10), datum.Int8(0))
	require.ErrorIs(t, err, errs.ErrBaseMismatch)

	_, err = ValueBucket(datum.Text("x"), datum.Text("y"), datum.Text("z"))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

func TestTimeSplit(t *testing.T) {
	seq := temporal.MustTSequence([]*temporal.TInstant{
		temporal.MustTInstant(datum.Float8(0), day(1)),
		temporal.MustTInstant(datum.Float8(10), day(6)),
	}, true, true, temporal.InterpLinear)

	results, err := TimeSplit(seq, ttime.Interval{Days: 2}, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)

	var buckets []ttime.Timestamp
	for _, r := range results {
		buckets = append(buckets, r.Bucket)
	}
	want := []ttime.Timestamp{day(1), day(3), day(5)}
	require.Empty(t, cmp.Diff(want, buckets))

	t.Run("Fragments tile the original", func(t *testing.T) {
		total := results[0].Fragment.Time()
		for _, r := range results[1:] {
			total = total.Union(r.Fragment.Time())
		}
		require.True(t, total.Equal(seq.Time()))
	})

	t.Run("Fragment boundary values interpolate", func(t *testing.T) {
		v, ok := results[1].Fragment.ValueAt(day(3))
		require.True(t, ok)
		require.Equal(t, 4.0, v.Float8Val())
	})

	t.Run("Month interval rejected", func(t *testing.T) {
		_, err := TimeSplit(seq, ttime.Interval{Months: 1}, 0)
		require.ErrorIs(t, err, errs.ErrRangeOverflow)
	})
}

func TestValueSplit(t *testing.T) {
	seq := temporal.MustTSequence([]*temporal.TInstant{
		temporal.MustTInstant(datum.Float8(0), day(1)),
		temporal.MustTInstant(datum.Float8(10), day(6)),
	}, true, true, temporal.InterpLinear)

	results, err := ValueSplit(seq, datum.Float8(4), datum.Float8(0))
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, 0.0, results[0].Bucket.Float8Val())
	require.Equal(t, 4.0, results[1].Bucket.Float8Val())
	require.Equal(t, 8.0, results[2].Bucket.Float8Val())

	t.Run("Fragments tile the original", func(t *testing.T) {
		total := results[0].Fragment.Time()
		for _, r := range results[1:] {
			total = total.Union(r.Fragment.Time())
		}
		require.True(t, total.Equal(seq.Time()))
	})
}

func TestValueTimeSplit(t *testing.T) {
	seq := temporal.MustTSequence([]*temporal.TInstant{
		temporal.MustTInstant(datum.Float8(0), day(1)),
		temporal.MustTInstant(datum.Float8(10), day(6)),
	}, true, true, temporal.InterpLinear)

	results, err := ValueTimeSplit(seq,
		datum.Float8(5), datum.Float8(0),
		ttime.Interval{Days: 5}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		frag := r.Fragment
		vs, ok := temporal.ValueSpan(frag)
		require.True(t, ok)
		require.GreaterOrEqual(t, vs.Lower.Float8Val(), r.ValueBucket.Float8Val())
		require.LessOrEqual(t, vs.Upper.Float8Val(), r.ValueBucket.Float8Val()+5)
	}
}

func TestGrid(t *testing.T) {
	vs := span.MustMake(datum.Float8(0), datum.Float8(10), true, true)
	p, err := span.NewPeriod(day(1), day(3), true, true)
	require.NoError(t, err)
	b := box.FromSpanPeriod(vs, p)

	g, err := NewGrid(b, 5, ttime.Interval{Days: 1}, 0, 0)
	require.NoError(t, err)

	tiles := g.Tiles()
	// 3 value buckets (0, 5, 10) by 3 time buckets (days 1-3).
	require.Len(t, tiles, 9)

	t.Run("Tiles cover the box", func(t *testing.T) {
		union := tiles[0]
		for _, tile := range tiles[1:] {
			union.Adjust(&tile)
		}
		require.True(t, union.Contains(b))
	})

	t.Run("Missing dimension", func(t *testing.T) {
		_, err := NewGrid(box.FromSpan(vs), 5, ttime.Interval{Days: 1}, 0, 0)
		require.ErrorIs(t, err, errs.ErrTypeMismatch)
	})
}
