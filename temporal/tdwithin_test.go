package temporal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/geo"
)

// TestTDwithinTwoRoots pins the two-root scenario: p moves diagonally
// from (1,1) to (5,5), q moves horizontally at y=3; with d=1 they are
// within distance on the middle half of the journey.
func TestTDwithinTwoRoots(t *testing.T) {
	p, err := NewTSequence([]*TInstant{
		pinst(t, 1, 1, day(1)), pinst(t, 5, 5, day(5)),
	}, true, true, InterpLinear)
	require.NoError(t, err)
	q, err := NewTSequence([]*TInstant{
		pinst(t, 1, 3, day(1)), pinst(t, 5, 3, day(5)),
	}, true, true, InterpLinear)
	require.NoError(t, err)

	within, err := TDwithin(p, q, 1)
	require.NoError(t, err)
	require.NotNil(t, within)

	// |p(t) - q(t)| = |4θ - 2| <= 1 for θ in [1/4, 3/4]: days 2 to 4.
	boolAt(t, within, day(1), false)
	boolAt(t, within, day(2)-1, false)
	boolAt(t, within, day(2), true)
	boolAt(t, within, day(3), true)
	boolAt(t, within, day(4)-1, true)
	boolAt(t, within, day(4), false)
	boolAt(t, within, day(5), false)

	// The boundary instant where the distance leaves d starts the false
	// fragment, so the set has exactly two sequences.
	ss, ok := within.(*TSequenceSet)
	require.True(t, ok)
	require.Equal(t, 2, ss.NumSequences())
	require.False(t, ss.SequenceN(0).UpperInc())
	require.Equal(t, day(4), ss.SequenceN(1).StartTimestamp())
	require.True(t, ss.SequenceN(1).LowerInc())
}

func TestTDwithinParallel(t *testing.T) {
	t.Run("Within throughout", func(t *testing.T) {
		p, err := NewTSequence([]*TInstant{
			pinst(t, 0, 0, day(1)), pinst(t, 10, 0, day(3)),
		}, true, true, InterpLinear)
		require.NoError(t, err)
		q, err := NewTSequence([]*TInstant{
			pinst(t, 0, 1, day(1)), pinst(t, 10, 1, day(3)),
		}, true, true, InterpLinear)
		require.NoError(t, err)

		within, err := TDwithin(p, q, 2)
		require.NoError(t, err)
		boolAt(t, within, day(1), true)
		boolAt(t, within, day(2), true)
		boolAt(t, within, day(3), true)
	})

	t.Run("Never within", func(t *testing.T) {
		p, err := NewTSequence([]*TInstant{
			pinst(t, 0, 0, day(1)), pinst(t, 10, 0, day(3)),
		}, true, true, InterpLinear)
		require.NoError(t, err)
		q, err := NewTSequence([]*TInstant{
			pinst(t, 0, 5, day(1)), pinst(t, 10, 5, day(3)),
		}, true, true, InterpLinear)
		require.NoError(t, err)

		within, err := TDwithin(p, q, 2)
		require.NoError(t, err)
		boolAt(t, within, day(1), false)
		boolAt(t, within, day(2), false)
	})
}

func TestTDwithinTangent(t *testing.T) {
	// q passes p at exactly distance 2: a single tangent instant.
	p, err := NewTSequence([]*TInstant{
		pinst(t, 0, 0, day(1)), pinst(t, 0, 0, day(3)),
	}, true, true, InterpLinear)
	require.NoError(t, err)
	q, err := NewTSequence([]*TInstant{
		pinst(t, -4, 2, day(1)), pinst(t, 4, 2, day(3)),
	}, true, true, InterpLinear)
	require.NoError(t, err)

	within, err := TDwithin(p, q, 2)
	require.NoError(t, err)

	boolAt(t, within, day(1), false)
	boolAt(t, within, day(2), true)
	boolAt(t, within, day(2)+1, false)
	boolAt(t, within, day(3), false)
}

func TestTDwithinValue(t *testing.T) {
	p, err := NewTSequence([]*TInstant{
		pinst(t, 0, 0, day(1)), pinst(t, 10, 0, day(3)),
	}, true, true, InterpLinear)
	require.NoError(t, err)

	within, err := TDwithinValue(p, geo.NewPoint2D(0, 5, 0), 1)
	require.NoError(t, err)

	boolAt(t, within, day(1), false)
	boolAt(t, within, day(2), true)
	boolAt(t, within, day(3), false)
}

func TestTDwithinTypeErrors(t *testing.T) {
	a := fseq(t, InterpLinear, true, true, 0.0, day(1), 1.0, day(2))
	b := fseq(t, InterpLinear, true, true, 0.0, day(1), 1.0, day(2))

	_, err := TDwithin(a, b, 1)
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

func TestTDwithinInstant(t *testing.T) {
	p := pinst(t, 0, 0, day(1))
	q, err := NewTSequence([]*TInstant{
		pinst(t, 0, 3, day(1)), pinst(t, 0, 9, day(2)),
	}, true, true, InterpLinear)
	require.NoError(t, err)

	within, err := TDwithin(p, q, 5)
	require.NoError(t, err)
	require.Equal(t, SubtypeInstant, within.Subtype())
	boolAt(t, within, day(1), true)
}
