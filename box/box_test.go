package box

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/geo"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

func day(n int64) ttime.Timestamp {
	return ttime.Timestamp(n * ttime.MicrosPerDay)
}

func tbox(t *testing.T, xlo, xhi float64, tlo, thi int64) TBox {
	t.Helper()
	vs, err := span.Make(datum.Float8(xlo), datum.Float8(xhi), true, true)
	require.NoError(t, err)
	p, err := span.NewPeriod(day(tlo), day(thi), true, true)
	require.NoError(t, err)

	return FromSpanPeriod(vs, p)
}

func TestTBoxAdjust(t *testing.T) {
	a := tbox(t, 1, 3, 0, 2)
	b := tbox(t, 2, 7, 1, 5)
	a.Adjust(&b)

	require.Equal(t, 1.0, a.Span.Lower.Float8Val())
	require.Equal(t, 7.0, a.Span.Upper.Float8Val())
	require.Equal(t, day(0), a.Period.Lower.TimestampVal())
	require.Equal(t, day(5), a.Period.Upper.TimestampVal())
}

func TestTBoxAdjustMissingDimension(t *testing.T) {
	vs, err := span.Make(datum.Float8(1), datum.Float8(2), true, true)
	require.NoError(t, err)
	a := FromSpan(vs)
	b := tbox(t, 5, 6, 0, 1)
	a.Adjust(&b)

	require.True(t, a.HasX)
	require.True(t, a.HasT)
	require.Equal(t, 6.0, a.Span.Upper.Float8Val())
}

func TestTBoxPredicates(t *testing.T) {
	a := tbox(t, 1, 5, 0, 10)
	b := tbox(t, 2, 3, 2, 4)
	c := tbox(t, 6, 8, 0, 10)

	require.True(t, a.Overlaps(b))
	require.True(t, a.Contains(b))
	require.True(t, b.ContainedBy(a))
	require.False(t, a.Overlaps(c))
	require.True(t, a.Left(c))
	require.True(t, c.Right(a))
	require.True(t, a.OverLeft(c))
	require.True(t, a.Same(a))
}

func TestTBoxPenalty(t *testing.T) {
	a := tbox(t, 0, 10, 0, 10)
	inside := tbox(t, 2, 3, 2, 3)
	outside := tbox(t, 0, 20, 0, 10)

	require.Equal(t, 0.0, a.Penalty(inside))
	require.Greater(t, a.Penalty(outside), 0.0)
}

func TestTBoxNearestDistance(t *testing.T) {
	a := tbox(t, 0, 2, 0, 10)
	b := tbox(t, 5, 6, 2, 3)
	require.Equal(t, 3.0, a.NearestDistance(b))

	// Disjoint time projections are unreachable.
	c := tbox(t, 5, 6, 20, 30)
	require.True(t, math.IsInf(a.NearestDistance(c), 1))

	// Overlapping spans have zero distance.
	d := tbox(t, 1, 3, 0, 5)
	require.Equal(t, 0.0, a.NearestDistance(d))
}

func TestSTBox(t *testing.T) {
	p1 := geo.NewPoint2D(4326, 1, 2)
	p2 := geo.NewPoint2D(4326, 5, 7)

	a := FromPointTime(p1, day(0))
	b := FromPointTime(p2, day(1))
	a.Adjust(&b)

	require.Equal(t, 1.0, a.Xmin)
	require.Equal(t, 5.0, a.Xmax)
	require.Equal(t, 2.0, a.Ymin)
	require.Equal(t, 7.0, a.Ymax)
	require.True(t, a.ContainsPoint(geo.NewPoint2D(4326, 3, 4)))
	require.False(t, a.ContainsPoint(geo.NewPoint2D(4326, 9, 4)))
}

func TestSTBoxNearestDistance(t *testing.T) {
	a := FromPointTime(geo.NewPoint2D(0, 0, 0), day(0))
	b := FromPointTime(geo.NewPoint2D(0, 3, 4), day(0))

	d, err := a.NearestDistance(b)
	require.NoError(t, err)
	require.Equal(t, 5.0, d)

	c := FromPointTime(geo.NewPoint2D(0, 3, 4), day(9))
	d, err = a.NearestDistance(c)
	require.NoError(t, err)
	require.True(t, math.IsInf(d, 1))
}

func TestSTBoxSRIDMismatch(t *testing.T) {
	a := FromPoint(geo.NewPoint2D(4326, 0, 0))
	b := FromPoint(geo.NewPoint2D(3857, 1, 1))
	_, err := a.NearestDistance(b)
	require.Error(t, err)
}

func TestInitNode(t *testing.T) {
	centroid := tbox(t, 3, 5, 3, 5)
	node := InitNode(centroid)

	require.True(t, math.IsInf(node.Left.Span.Lower.Float8Val(), -1))
	require.True(t, math.IsInf(node.Right.Span.Upper.Float8Val(), 1))
	require.Equal(t, ttime.NoBegin, node.Left.Period.Lower.TimestampVal())
	require.Equal(t, ttime.NoEnd, node.Right.Period.Upper.TimestampVal())
}
