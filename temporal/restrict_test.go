package temporal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

// TestAtValueStep pins the step restriction scenario: the value 1 held
// on [day1, day2) and again at the final inclusive instant.
func TestAtValueStep(t *testing.T) {
	seq, err := NewTSequence([]*TInstant{
		iinst(t, 1, day(1)), iinst(t, 3, day(2)), iinst(t, 1, day(3)),
	}, true, true, InterpStep)
	require.NoError(t, err)

	at := AtValue(seq, datum.Int4(1))
	require.NotNil(t, at)

	ss, ok := at.(*TSequenceSet)
	require.True(t, ok, "expected a sequence set, got %T", at)
	require.Equal(t, 2, ss.NumSequences())

	first := ss.SequenceN(0)
	require.Equal(t, day(1), first.StartTimestamp())
	require.Equal(t, day(2), first.EndTimestamp())
	require.True(t, first.LowerInc())
	require.False(t, first.UpperInc())

	second := ss.SequenceN(1)
	require.Equal(t, day(3), second.StartTimestamp())
	require.Equal(t, day(3), second.EndTimestamp())

	v, ok2 := at.ValueAt(day(1) + ttime.Timestamp(ttime.MicrosPerHour))
	require.True(t, ok2)
	require.Equal(t, int32(1), v.Int4Val())
	undefinedAt(t, at, day(2))
}

// TestAtValueLinearCrossing pins the linear crossing scenario: a ramp
// from 0 to 10 meets value 5 at the exact midpoint.
func TestAtValueLinearCrossing(t *testing.T) {
	seq := fseq(t, InterpLinear, true, true, 0.0, day(1), 10.0, day(3))

	at := AtValue(seq, datum.Float8(5))
	require.NotNil(t, at)
	require.Equal(t, 1, at.NumInstants())

	inst := at.InstantN(0)
	require.Equal(t, day(2), inst.Timestamp())
	require.Equal(t, 5.0, inst.Value().Float8Val())
}

func TestAtValueMisses(t *testing.T) {
	seq := fseq(t, InterpLinear, true, true, 0.0, day(1), 10.0, day(3))

	require.Nil(t, AtValue(seq, datum.Float8(50)))
	require.Nil(t, AtValue(seq, datum.Float8(-1)))
}

func TestMinusValueDuality(t *testing.T) {
	seq := fseq(t, InterpLinear, true, true, 0.0, day(1), 10.0, day(3))
	c := datum.Float8(5)

	at := AtValue(seq, c)
	minus := MinusValue(seq, c)
	require.NotNil(t, at)
	require.NotNil(t, minus)

	atTime := at.Time()
	minusTime := minus.Time()
	require.False(t, atTime.OverlapsSet(minusTime))
	require.True(t, atTime.Union(minusTime).Equal(seq.Time()))
}

func TestAtSpan(t *testing.T) {
	t.Run("Linear clip", func(t *testing.T) {
		seq := fseq(t, InterpLinear, true, true, 0.0, day(1), 10.0, day(11))
		s := span.MustMake(datum.Float8(2), datum.Float8(4), true, true)

		at := AtSpan(seq, s)
		require.NotNil(t, at)
		require.Equal(t, day(3), at.StartTimestamp())
		require.Equal(t, day(5), at.EndTimestamp())

		v, ok := at.ValueAt(day(3))
		require.True(t, ok)
		require.Equal(t, 2.0, v.Float8Val())
		v, ok = at.ValueAt(day(5))
		require.True(t, ok)
		require.Equal(t, 4.0, v.Float8Val())
	})

	t.Run("Exclusive bound clips the boundary instant", func(t *testing.T) {
		seq := fseq(t, InterpLinear, true, true, 0.0, day(1), 10.0, day(11))
		s := span.MustMake(datum.Float8(2), datum.Float8(4), false, true)

		at := AtSpan(seq, s)
		require.NotNil(t, at)
		undefinedAt(t, at, day(3))
		_, ok := at.ValueAt(day(4))
		require.True(t, ok)
	})

	t.Run("Descending segment", func(t *testing.T) {
		seq := fseq(t, InterpLinear, true, true, 10.0, day(1), 0.0, day(11))
		s := span.MustMake(datum.Float8(2), datum.Float8(4), true, true)

		at := AtSpan(seq, s)
		require.NotNil(t, at)
		require.Equal(t, day(7), at.StartTimestamp())
		require.Equal(t, day(9), at.EndTimestamp())
	})

	t.Run("Duality", func(t *testing.T) {
		seq := fseq(t, InterpLinear, true, true, 0.0, day(1), 10.0, day(11))
		s := span.MustMake(datum.Float8(2), datum.Float8(4), true, false)

		at := AtSpan(seq, s)
		minus := MinusSpan(seq, s)
		require.NotNil(t, at)
		require.NotNil(t, minus)
		require.False(t, at.Time().OverlapsSet(minus.Time()))
		require.True(t, at.Time().Union(minus.Time()).Equal(seq.Time()))
	})
}

func TestAtSpanSet(t *testing.T) {
	seq := fseq(t, InterpLinear, true, true, 0.0, day(1), 10.0, day(11))
	ss := span.MustSet(
		span.MustMake(datum.Float8(1), datum.Float8(2), true, true),
		span.MustMake(datum.Float8(8), datum.Float8(9), true, true),
	)

	at := AtSpanSet(seq, ss)
	require.NotNil(t, at)
	sset, ok := at.(*TSequenceSet)
	require.True(t, ok)
	require.Equal(t, 2, sset.NumSequences())
	require.Equal(t, day(2), sset.StartTimestamp())
	require.Equal(t, day(10), sset.EndTimestamp())
}

func TestTimeRestriction(t *testing.T) {
	seq := fseq(t, InterpLinear, true, true, 0.0, day(1), 10.0, day(11))

	t.Run("AtTimestamp", func(t *testing.T) {
		at := AtTimestamp(seq, day(6))
		require.NotNil(t, at)
		require.Equal(t, SubtypeInstant, at.Subtype())
		v, _ := at.ValueAt(day(6))
		require.Equal(t, 5.0, v.Float8Val())

		require.Nil(t, AtTimestamp(seq, day(20)))
	})

	t.Run("MinusTimestamp punches a hole", func(t *testing.T) {
		minus := MinusTimestamp(seq, day(6))
		require.NotNil(t, minus)
		undefinedAt(t, minus, day(6))
		_, ok := minus.ValueAt(day(6) + 1)
		require.True(t, ok)
	})

	t.Run("AtPeriod", func(t *testing.T) {
		p, err := span.NewPeriod(day(3), day(5), true, false)
		require.NoError(t, err)
		at := AtPeriod(seq, p)
		require.NotNil(t, at)
		require.Equal(t, day(3), at.StartTimestamp())
		require.Equal(t, day(5), at.EndTimestamp())
		undefinedAt(t, at, day(5))

		// Interpolated boundary values.
		v, ok := at.ValueAt(day(3))
		require.True(t, ok)
		require.Equal(t, 2.0, v.Float8Val())
	})

	t.Run("MinusPeriod duality", func(t *testing.T) {
		p, err := span.NewPeriod(day(3), day(5), true, false)
		require.NoError(t, err)
		at := AtPeriod(seq, p)
		minus := MinusPeriod(seq, p)
		require.NotNil(t, minus)
		require.False(t, at.Time().OverlapsSet(minus.Time()))
		require.True(t, at.Time().Union(minus.Time()).Equal(seq.Time()))
	})

	t.Run("AtTimestampSet", func(t *testing.T) {
		at := AtTimestampSet(seq, []ttime.Timestamp{day(2), day(6), day(20)})
		require.NotNil(t, at)
		require.Equal(t, 2, at.NumInstants())
	})

	t.Run("AtPeriodSet", func(t *testing.T) {
		p1, _ := span.NewPeriod(day(1), day(2), true, true)
		p2, _ := span.NewPeriod(day(8), day(9), true, true)
		at := AtPeriodSet(seq, span.MustSet(p1, p2))
		require.NotNil(t, at)
		sset, ok := at.(*TSequenceSet)
		require.True(t, ok)
		require.Equal(t, 2, sset.NumSequences())
	})
}

func TestInstantSetRestriction(t *testing.T) {
	ti, err := NewTInstantSet([]*TInstant{
		finst(t, 1, day(1)), finst(t, 2, day(2)), finst(t, 1, day(3)),
	})
	require.NoError(t, err)

	at := AtValue(ti, datum.Float8(1))
	require.NotNil(t, at)
	require.Equal(t, 2, at.NumInstants())

	minus := MinusValue(ti, datum.Float8(1))
	require.NotNil(t, minus)
	require.Equal(t, 1, minus.NumInstants())
	require.Equal(t, SubtypeInstant, minus.Subtype())
}

func TestAtMinMax(t *testing.T) {
	seq := fseq(t, InterpLinear, true, true,
		5.0, day(1), 1.0, day(3), 9.0, day(5))

	atMin := AtMin(seq)
	require.NotNil(t, atMin)
	require.Equal(t, day(3), atMin.StartTimestamp())

	atMax := AtMax(seq)
	require.NotNil(t, atMax)
	require.Equal(t, day(5), atMax.StartTimestamp())

	t.Run("Duality", func(t *testing.T) {
		minusMin := MinusMin(seq)
		require.NotNil(t, minusMin)
		require.False(t, atMin.Time().OverlapsSet(minusMin.Time()))
		require.True(t, atMin.Time().Union(minusMin.Time()).Equal(seq.Time()))
	})
}

func TestRestrictionOnSequenceSet(t *testing.T) {
	s1 := fseq(t, InterpStep, true, false, 1.0, day(1), 2.0, day(2))
	s2 := fseq(t, InterpStep, true, true, 1.0, day(4), 3.0, day(5))
	ss, err := NewTSequenceSet([]*TSequence{s1, s2})
	require.NoError(t, err)

	at := AtValue(ss, datum.Float8(1))
	require.NotNil(t, at)
	boolCheck, ok := at.ValueAt(day(1))
	require.True(t, ok)
	require.Equal(t, 1.0, boolCheck.Float8Val())
	undefinedAt(t, at, day(2))
	_, ok = at.ValueAt(day(4))
	require.True(t, ok)
}
