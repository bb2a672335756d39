package geo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tempus/errs"
)

func TestDistance(t *testing.T) {
	t.Run("Planar 2D", func(t *testing.T) {
		d, err := Distance(NewPoint2D(0, 0, 0), NewPoint2D(0, 3, 4))
		require.NoError(t, err)
		require.Equal(t, 5.0, d)
	})

	t.Run("Planar 3D", func(t *testing.T) {
		d, err := Distance(NewPoint3D(0, 0, 0, 0), NewPoint3D(0, 2, 3, 6))
		require.NoError(t, err)
		require.Equal(t, 7.0, d)
	})

	t.Run("Geodetic equator degree", func(t *testing.T) {
		d, err := Distance(NewGeogPoint(4326, 0, 0), NewGeogPoint(4326, 1, 0))
		require.NoError(t, err)
		// One degree of longitude at the equator is about 111 km.
		require.InDelta(t, 111195, d, 500)
	})

	t.Run("SRID mismatch", func(t *testing.T) {
		_, err := Distance(NewPoint2D(4326, 0, 0), NewPoint2D(3857, 0, 0))
		require.ErrorIs(t, err, errs.ErrSRIDMismatch)
	})

	t.Run("Dimension mismatch", func(t *testing.T) {
		_, err := Distance(NewPoint2D(0, 0, 0), NewPoint3D(0, 0, 0, 1))
		require.ErrorIs(t, err, errs.ErrDimMismatch)
	})
}

func TestInterpolate(t *testing.T) {
	p := NewPoint2D(0, 0, 0)
	q := NewPoint2D(0, 10, 20)

	mid := Interpolate(p, q, 0.5)
	require.Equal(t, 5.0, mid.X)
	require.Equal(t, 10.0, mid.Y)

	require.True(t, Interpolate(p, q, 0).Equal(p))
	require.True(t, Interpolate(p, q, 1).Equal(q))
}

func TestLocate(t *testing.T) {
	p := NewPoint2D(0, 0, 0)
	q := NewPoint2D(0, 10, 0)

	frac, ok := Locate(p, q, NewPoint2D(0, 2.5, 0), 1e-9)
	require.True(t, ok)
	require.Equal(t, 0.25, frac)

	_, ok = Locate(p, q, NewPoint2D(0, 5, 1), 1e-9)
	require.False(t, ok)

	_, ok = Locate(p, q, NewPoint2D(0, 11, 0), 1e-9)
	require.False(t, ok)
}

func TestNPoint(t *testing.T) {
	np, err := NewNPoint(7, 0.5)
	require.NoError(t, err)
	require.Equal(t, int64(7), np.RouteID)

	_, err = NewNPoint(7, 1.5)
	require.ErrorIs(t, err, errs.ErrBadBounds)

	t.Run("Interpolate same route", func(t *testing.T) {
		a, _ := NewNPoint(7, 0.2)
		b, _ := NewNPoint(7, 0.6)
		mid, err := InterpolateNPoint(a, b, 0.5)
		require.NoError(t, err)
		require.InEpsilon(t, 0.4, mid.Position, 1e-12)
	})

	t.Run("Route mismatch", func(t *testing.T) {
		a, _ := NewNPoint(7, 0.2)
		b, _ := NewNPoint(8, 0.6)
		_, err := InterpolateNPoint(a, b, 0.5)
		require.ErrorIs(t, err, errs.ErrSegMismatch)
	})
}

func TestPolygon(t *testing.T) {
	// Square with side 10.
	square := NewPolygon(0, []Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	})

	t.Run("CoversPoint", func(t *testing.T) {
		require.True(t, square.CoversPoint(NewPoint2D(0, 5, 5)))
		require.True(t, square.CoversPoint(NewPoint2D(0, 0, 5))) // boundary
		require.False(t, square.CoversPoint(NewPoint2D(0, 15, 5)))
	})

	t.Run("OnBoundary", func(t *testing.T) {
		require.True(t, square.OnBoundary(NewPoint2D(0, 10, 5)))
		require.False(t, square.OnBoundary(NewPoint2D(0, 5, 5)))
	})

	t.Run("ClipSegment crossing", func(t *testing.T) {
		ranges := square.ClipSegment(NewPoint2D(0, -5, 5), NewPoint2D(0, 15, 5))
		require.Len(t, ranges, 1)
		require.InEpsilon(t, 0.25, ranges[0].Lower, 1e-9)
		require.InEpsilon(t, 0.75, ranges[0].Upper, 1e-9)
	})

	t.Run("ClipSegment inside", func(t *testing.T) {
		ranges := square.ClipSegment(NewPoint2D(0, 1, 1), NewPoint2D(0, 9, 9))
		require.Len(t, ranges, 1)
		require.Equal(t, 0.0, ranges[0].Lower)
		require.Equal(t, 1.0, ranges[0].Upper)
	})

	t.Run("ClipSegment outside", func(t *testing.T) {
		ranges := square.ClipSegment(NewPoint2D(0, 20, 20), NewPoint2D(0, 30, 30))
		require.Empty(t, ranges)
	})

	t.Run("Empty polygon", func(t *testing.T) {
		empty := NewPolygon(0, nil)
		require.True(t, empty.IsEmpty())
		require.False(t, empty.CoversPoint(NewPoint2D(0, 0, 0)))
	})
}

func TestSegmentsIntersect(t *testing.T) {
	t.Run("Proper crossing", func(t *testing.T) {
		require.True(t, SegmentsIntersect(
			NewPoint2D(0, 0, 0), NewPoint2D(0, 10, 10),
			NewPoint2D(0, 0, 10), NewPoint2D(0, 10, 0)))
	})

	t.Run("Disjoint", func(t *testing.T) {
		require.False(t, SegmentsIntersect(
			NewPoint2D(0, 0, 0), NewPoint2D(0, 1, 1),
			NewPoint2D(0, 5, 5), NewPoint2D(0, 6, 6)))
	})

	t.Run("Endpoint touch", func(t *testing.T) {
		require.True(t, SegmentsIntersect(
			NewPoint2D(0, 0, 0), NewPoint2D(0, 5, 5),
			NewPoint2D(0, 5, 5), NewPoint2D(0, 9, 1)))
	})
}

func TestSegmentsBacktrack(t *testing.T) {
	a := NewPoint2D(0, 0, 0)
	b := NewPoint2D(0, 10, 0)
	back := NewPoint2D(0, 5, 0)
	forward := NewPoint2D(0, 20, 0)
	turn := NewPoint2D(0, 10, 5)

	require.True(t, SegmentsBacktrack(a, b, back))
	require.False(t, SegmentsBacktrack(a, b, forward))
	require.False(t, SegmentsBacktrack(a, b, turn))
}
