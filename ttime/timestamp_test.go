package ttime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tempus/errs"
)

func TestTimestampConversion(t *testing.T) {
	tm := time.Date(2001, 6, 1, 12, 30, 0, 0, time.UTC)
	ts := FromTime(tm)

	require.Equal(t, tm, ts.ToTime())
	require.Equal(t, tm.UnixMicro(), ts.UnixMicro())
	require.True(t, ts.IsFinite())
}

func TestTimestampSentinels(t *testing.T) {
	require.False(t, NoBegin.IsFinite())
	require.False(t, NoEnd.IsFinite())
	require.Equal(t, "-infinity", NoBegin.String())
	require.Equal(t, "infinity", NoEnd.String())

	parsed, err := Parse("-infinity")
	require.NoError(t, err)
	require.Equal(t, NoBegin, parsed)
}

func TestParse(t *testing.T) {
	t.Run("Date only", func(t *testing.T) {
		ts, err := Parse("2000-01-01")
		require.NoError(t, err)
		require.Equal(t, Timestamp(0), ts)
	})

	t.Run("Full timestamp", func(t *testing.T) {
		ts, err := Parse("2000-01-01 00:00:01+00")
		require.NoError(t, err)
		require.Equal(t, Timestamp(MicrosPerSecond), ts)
	})

	t.Run("Round trip via String", func(t *testing.T) {
		ts, err := Parse("2001-06-01 12:34:56.5+00")
		require.NoError(t, err)
		back, err := Parse(ts.String())
		require.NoError(t, err)
		require.Equal(t, ts, back)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := Parse("not a timestamp")
		require.Error(t, err)
	})
}

func TestBucket(t *testing.T) {
	hour := MicrosPerHour

	t.Run("Aligned", func(t *testing.T) {
		b, err := Bucket(Timestamp(hour*5+1234), hour, 0)
		require.NoError(t, err)
		require.Equal(t, Timestamp(hour*5), b)
	})

	t.Run("Negative floors down", func(t *testing.T) {
		b, err := Bucket(Timestamp(-1), hour, 0)
		require.NoError(t, err)
		require.Equal(t, Timestamp(-hour), b)
	})

	t.Run("Exactly negative boundary", func(t *testing.T) {
		b, err := Bucket(Timestamp(-hour), hour, 0)
		require.NoError(t, err)
		require.Equal(t, Timestamp(-hour), b)
	})

	t.Run("Origin shifts the grid", func(t *testing.T) {
		b, err := Bucket(Timestamp(hour+30), hour, Timestamp(15))
		require.NoError(t, err)
		require.Equal(t, Timestamp(hour+15), b)
	})

	t.Run("Sentinels pass through", func(t *testing.T) {
		b, err := Bucket(NoEnd, hour, 0)
		require.NoError(t, err)
		require.Equal(t, NoEnd, b)
	})

	t.Run("Overflow near the sentinels", func(t *testing.T) {
		_, err := Bucket(NoBegin+1, hour, Timestamp(30))
		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrRangeOverflow)
	})

	t.Run("Non-positive size", func(t *testing.T) {
		_, err := Bucket(Timestamp(100), 0, 0)
		require.ErrorIs(t, err, errs.ErrRangeOverflow)
	})
}

func TestInterval(t *testing.T) {
	t.Run("Units folds days", func(t *testing.T) {
		units, err := Interval{Days: 2, Micros: 500}.Units()
		require.NoError(t, err)
		require.Equal(t, 2*MicrosPerDay+500, units)
	})

	t.Run("Months rejected", func(t *testing.T) {
		_, err := Interval{Months: 1}.Units()
		require.ErrorIs(t, err, errs.ErrRangeOverflow)
	})

	t.Run("ParseInterval", func(t *testing.T) {
		iv, err := ParseInterval("2 hours")
		require.NoError(t, err)
		require.Equal(t, Interval{Micros: 2 * MicrosPerHour}, iv)

		iv, err = ParseInterval("1 day")
		require.NoError(t, err)
		require.Equal(t, Interval{Days: 1}, iv)

		_, err = ParseInterval("three bananas")
		require.Error(t, err)
	})
}
