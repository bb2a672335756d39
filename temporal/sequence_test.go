package temporal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/ttime"
)

func TestNewTInstant(t *testing.T) {
	inst, err := NewTInstant(datum.Float8(1.5), day(1))
	require.NoError(t, err)
	require.Equal(t, SubtypeInstant, inst.Subtype())
	require.Equal(t, datum.TypeFloat8, inst.BaseType())

	v, ok := inst.ValueAt(day(1))
	require.True(t, ok)
	require.Equal(t, 1.5, v.Float8Val())
	undefinedAt(t, inst, day(2))

	_, err = NewTInstant(datum.Float8(1), ttime.NoEnd)
	require.ErrorIs(t, err, errs.ErrBadBounds)
}

func TestNewTSequenceValidation(t *testing.T) {
	t.Run("Non-monotonic timestamps", func(t *testing.T) {
		_, err := NewTSequence([]*TInstant{
			finst(t, 1, day(2)), finst(t, 2, day(1)),
		}, true, true, InterpLinear)
		require.ErrorIs(t, err, errs.ErrNonMonotonicTime)
	})

	t.Run("Duplicate timestamp distinct values", func(t *testing.T) {
		_, err := NewTSequence([]*TInstant{
			finst(t, 1, day(1)), finst(t, 2, day(1)),
		}, true, true, InterpLinear)
		require.ErrorIs(t, err, errs.ErrNonMonotonicTime)
	})

	t.Run("Linear over discrete base type", func(t *testing.T) {
		_, err := NewTSequence([]*TInstant{
			iinst(t, 1, day(1)), iinst(t, 2, day(2)),
		}, true, true, InterpLinear)
		require.ErrorIs(t, err, errs.ErrBadInterp)
	})

	t.Run("Singleton needs inclusive bounds", func(t *testing.T) {
		_, err := NewTSequence([]*TInstant{finst(t, 1, day(1))}, true, false, InterpLinear)
		require.ErrorIs(t, err, errs.ErrBadBounds)
	})

	t.Run("Mixed base types", func(t *testing.T) {
		_, err := NewTSequence([]*TInstant{
			finst(t, 1, day(1)), iinst(t, 2, day(2)),
		}, true, true, InterpStep)
		require.ErrorIs(t, err, errs.ErrBaseMismatch)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := NewTSequence(nil, true, true, InterpLinear)
		require.ErrorIs(t, err, errs.ErrBadBounds)
	})
}

func TestNormalization(t *testing.T) {
	t.Run("Linear drops collinear middle instant", func(t *testing.T) {
		seq := fseq(t, InterpLinear, true, true,
			0.0, day(1), 5.0, day(2), 10.0, day(3))
		require.Equal(t, 2, seq.NumInstants())
		require.Equal(t, day(3), seq.EndTimestamp())
	})

	t.Run("Step drops repeated values", func(t *testing.T) {
		seq := fseq(t, InterpStep, true, true,
			1.0, day(1), 1.0, day(2), 2.0, day(3))
		require.Equal(t, 2, seq.NumInstants())
	})

	t.Run("Idempotent", func(t *testing.T) {
		seq := fseq(t, InterpLinear, true, true,
			0.0, day(1), 5.0, day(2), 10.0, day(3), 3.0, day(4))
		instants := make([]*TInstant, seq.NumInstants())
		for i := range instants {
			instants[i] = seq.InstantN(i)
		}
		again, err := NewTSequence(instants, seq.LowerInc(), seq.UpperInc(), seq.Interpolation())
		require.NoError(t, err)
		require.True(t, seq.Equal(again))
	})

	t.Run("Non-collinear kept", func(t *testing.T) {
		seq := fseq(t, InterpLinear, true, true,
			0.0, day(1), 7.0, day(2), 10.0, day(3))
		require.Equal(t, 3, seq.NumInstants())
	})
}

func TestValueAt(t *testing.T) {
	t.Run("Linear interpolates", func(t *testing.T) {
		seq := fseq(t, InterpLinear, true, true, 0.0, day(1), 10.0, day(3))
		v, ok := seq.ValueAt(day(2))
		require.True(t, ok)
		require.Equal(t, 5.0, v.Float8Val())
	})

	t.Run("Step holds previous value", func(t *testing.T) {
		seq := fseq(t, InterpStep, true, true, 1.0, day(1), 9.0, day(3))
		v, ok := seq.ValueAt(day(2))
		require.True(t, ok)
		require.Equal(t, 1.0, v.Float8Val())

		v, ok = seq.ValueAt(day(3))
		require.True(t, ok)
		require.Equal(t, 9.0, v.Float8Val())
	})

	t.Run("Bound exclusivity", func(t *testing.T) {
		seq := fseq(t, InterpLinear, false, false, 0.0, day(1), 10.0, day(3))
		undefinedAt(t, seq, day(1))
		undefinedAt(t, seq, day(3))
		_, ok := seq.ValueAt(day(2))
		require.True(t, ok)
	})

	t.Run("Outside period", func(t *testing.T) {
		seq := fseq(t, InterpLinear, true, true, 0.0, day(1), 10.0, day(3))
		undefinedAt(t, seq, day(5))
	})
}

func TestFindTimestamp(t *testing.T) {
	seq := fseq(t, InterpLinear, true, true,
		0.0, day(1), 15.0, day(3), 20.0, day(5))

	pos, found := seq.FindTimestamp(day(4))
	require.True(t, found)
	require.Equal(t, 1, pos)

	pos, found = seq.FindTimestamp(day(1))
	require.True(t, found)
	require.Equal(t, 0, pos)

	_, found = seq.FindTimestamp(day(9))
	require.False(t, found)
}

func TestTInstantSet(t *testing.T) {
	ti, err := NewTInstantSet([]*TInstant{
		finst(t, 1, day(1)), finst(t, 2, day(3)), finst(t, 3, day(5)),
	})
	require.NoError(t, err)
	require.Equal(t, SubtypeInstantSet, ti.Subtype())
	require.Equal(t, 3, ti.NumInstants())

	v, ok := ti.ValueAt(day(3))
	require.True(t, ok)
	require.Equal(t, 2.0, v.Float8Val())
	undefinedAt(t, ti, day(2))

	require.Equal(t, 3, ti.Time().NumSpans())
}

func TestTSequenceSet(t *testing.T) {
	s1 := fseq(t, InterpLinear, true, false, 1.0, day(1), 2.0, day(2))
	s2 := fseq(t, InterpLinear, true, true, 5.0, day(4), 6.0, day(5))

	ss, err := NewTSequenceSet([]*TSequence{s2, s1})
	require.NoError(t, err)
	require.Equal(t, 2, ss.NumSequences())
	// Sorted by start time regardless of input order.
	require.Equal(t, day(1), ss.StartTimestamp())
	require.Equal(t, day(5), ss.EndTimestamp())

	t.Run("ValueAt dispatches to the right sequence", func(t *testing.T) {
		v, ok := ss.ValueAt(day(4))
		require.True(t, ok)
		require.Equal(t, 5.0, v.Float8Val())
		undefinedAt(t, ss, day(3))
	})

	t.Run("Touching sequences merge", func(t *testing.T) {
		a := fseq(t, InterpLinear, true, false, 1.0, day(1), 2.0, day(2))
		b := fseq(t, InterpLinear, true, true, 2.0, day(2), 3.0, day(3))
		merged, err := NewTSequenceSet([]*TSequence{a, b})
		require.NoError(t, err)
		require.Equal(t, 1, merged.NumSequences())
	})

	t.Run("Overlapping sequences rejected", func(t *testing.T) {
		a := fseq(t, InterpLinear, true, true, 1.0, day(1), 2.0, day(3))
		b := fseq(t, InterpLinear, true, true, 5.0, day(2), 6.0, day(4))
		_, err := NewTSequenceSet([]*TSequence{a, b})
		require.ErrorIs(t, err, errs.ErrNonMonotonicTime)
	})
}

func TestBboxCaching(t *testing.T) {
	seq := fseq(t, InterpLinear, true, true, 3.0, day(1), 9.0, day(3), 1.0, day(5))
	bb := seq.Bbox()

	require.False(t, bb.Spatial)
	require.True(t, bb.T.HasX)
	require.Equal(t, 1.0, bb.T.Span.Lower.Float8Val())
	require.Equal(t, 9.0, bb.T.Span.Upper.Float8Val())
	require.Equal(t, day(1), bb.T.Period.Lower.TimestampVal())
	require.Equal(t, day(5), bb.T.Period.Upper.TimestampVal())

	t.Run("Every sampled value within the value box", func(t *testing.T) {
		for ts := day(1); ts <= day(5); ts += ttime.Timestamp(ttime.MicrosPerHour * 6) {
			v, ok := seq.ValueAt(ts)
			require.True(t, ok)
			require.True(t, bb.T.Span.Contains(v))
		}
	})
}

func TestSpatialBbox(t *testing.T) {
	seq, err := NewTSequence([]*TInstant{
		pinst(t, 0, 0, day(1)), pinst(t, 4, 2, day(2)),
	}, true, true, InterpLinear)
	require.NoError(t, err)

	bb := seq.Bbox()
	require.True(t, bb.Spatial)
	require.Equal(t, 0.0, bb.ST.Xmin)
	require.Equal(t, 4.0, bb.ST.Xmax)
	require.Equal(t, 2.0, bb.ST.Ymax)
}

func TestShiftAndScale(t *testing.T) {
	seq := fseq(t, InterpLinear, true, true, 0.0, day(1), 10.0, day(3))

	shifted := Shift(seq, int64(ttime.MicrosPerDay))
	require.Equal(t, day(2), shifted.StartTimestamp())
	require.Equal(t, day(4), shifted.EndTimestamp())
	v, ok := shifted.ValueAt(day(3))
	require.True(t, ok)
	require.Equal(t, 5.0, v.Float8Val())

	scaled, err := ScaleTime(seq, int64(ttime.MicrosPerDay))
	require.NoError(t, err)
	require.Equal(t, day(1), scaled.StartTimestamp())
	require.Equal(t, day(2), scaled.EndTimestamp())

	_, err = ScaleTime(seq, -5)
	require.ErrorIs(t, err, errs.ErrBadBounds)
}
