package temporal

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

// genFloatSeq draws a random float sequence with strictly increasing
// timestamps.
func genFloatSeq(t *rapid.T) *TSequence {
	n := rapid.IntRange(1, 8).Draw(t, "n")
	instants := make([]*TInstant, 0, n)
	ts := rapid.Int64Range(0, 1<<40).Draw(t, "start")
	for i := 0; i < n; i++ {
		v := rapid.Float64Range(-1000, 1000).Draw(t, "v")
		inst, err := NewTInstant(datum.Float8(v), ttime.Timestamp(ts))
		if err != nil {
			t.Fatalf("instant: %v", err)
		}
		instants = append(instants, inst)
		ts += rapid.Int64Range(1, 1<<30).Draw(t, "step")
	}

	lowerInc := rapid.Bool().Draw(t, "lowerInc")
	upperInc := rapid.Bool().Draw(t, "upperInc")
	if n == 1 {
		lowerInc, upperInc = true, true
	}
	interp := InterpLinear
	if rapid.Bool().Draw(t, "step_interp") {
		interp = InterpStep
	}

	seq, err := NewTSequence(instants, lowerInc, upperInc, interp)
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}

	return seq
}

// TestNormalizationIdempotence checks normalize(normalize(x)) ==
// normalize(x) for random sequences.
func TestNormalizationIdempotence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seq := genFloatSeq(rt)

		instants := make([]*TInstant, seq.NumInstants())
		for i := range instants {
			instants[i] = seq.InstantN(i)
		}
		again, err := NewTSequence(instants, seq.LowerInc(), seq.UpperInc(), seq.Interpolation())
		if err != nil {
			rt.Fatalf("renormalize: %v", err)
		}
		if !seq.Equal(again) {
			rt.Fatalf("normalization not idempotent: %s vs %s", seq, again)
		}
	})
}

// TestRestrictionDualityProperty checks that at and minus partition the
// time support for random sequences and values.
func TestRestrictionDualityProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seq := genFloatSeq(rt)
		c := datum.Float8(rapid.Float64Range(-1000, 1000).Draw(rt, "c"))

		at := AtValue(seq, c)
		minus := MinusValue(seq, c)

		var atTime, minusTime span.Set
		if at != nil {
			atTime = at.Time()
		}
		if minus != nil {
			minusTime = minus.Time()
		}

		if at != nil && minus != nil && atTime.OverlapsSet(minusTime) {
			rt.Fatalf("overlapping supports: %s and %s", atTime, minusTime)
		}
		union := atTime.Union(minusTime)
		if !union.Equal(seq.Time()) {
			rt.Fatalf("supports do not cover: %s vs %s", union, seq.Time())
		}
	})
}

// TestValueAtInsideBboxProperty checks that every sampled value lies
// inside the cached value box.
func TestValueAtInsideBboxProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seq := genFloatSeq(rt)
		bb := seq.Bbox()
		require.True(rt, bb.T.HasX)

		start := int64(seq.StartTimestamp())
		end := int64(seq.EndTimestamp())
		ts := rapid.Int64Range(start, end).Draw(rt, "t")
		v, ok := seq.ValueAt(ttime.Timestamp(ts))
		if !ok {
			return
		}
		if !bb.T.Span.Contains(v) {
			rt.Fatalf("value %s at %d outside bbox %s", v, ts, bb.T.Span)
		}
	})
}
