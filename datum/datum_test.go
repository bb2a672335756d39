package datum

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/geo"
)

func TestBaseTypePredicates(t *testing.T) {
	require.True(t, TypeFloat8.Continuous())
	require.True(t, TypeGeomPoint.Continuous())
	require.False(t, TypeInt4.Continuous())

	require.True(t, TypeInt4.Ordered())
	require.True(t, TypeText.Ordered())
	require.False(t, TypeGeomPoint.Ordered())

	require.True(t, TypeInt8.Numeric())
	require.False(t, TypeBool.Numeric())

	require.True(t, TypeNPoint.Spatial())
	require.False(t, TypeFloat8.Spatial())

	require.Equal(t, 8, TypeFloat8.Width())
	require.Equal(t, -1, TypeText.Width())
}

func TestDatumCmp(t *testing.T) {
	require.Equal(t, -1, Int4(1).Cmp(Int4(2)))
	require.Equal(t, 0, Int4(2).Cmp(Int4(2)))
	require.Equal(t, 1, Float8(3.5).Cmp(Float8(1.5)))
	require.Equal(t, -1, Text("a").Cmp(Text("b")))

	require.True(t, Int8(5).Lt(Int8(6)))
	require.True(t, Int8(6).Ge(Int8(6)))
}

func TestDatumArithmetic(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		sum, err := Int4(2).Add(Int4(3))
		require.NoError(t, err)
		require.Equal(t, int32(5), sum.Int4Val())
	})

	t.Run("Float division", func(t *testing.T) {
		q, err := Float8(1).Div(Float8(4))
		require.NoError(t, err)
		require.Equal(t, 0.25, q.Float8Val())
	})

	t.Run("Division by zero", func(t *testing.T) {
		_, err := Float8(1).Div(Float8(0))
		require.ErrorIs(t, err, errs.ErrDivZero)

		_, err = Int4(1).Div(Int4(0))
		require.ErrorIs(t, err, errs.ErrDivZero)
	})

	t.Run("Base mismatch", func(t *testing.T) {
		_, err := Int4(1).Add(Float8(1))
		require.ErrorIs(t, err, errs.ErrBaseMismatch)
	})

	t.Run("Non-numeric", func(t *testing.T) {
		_, err := Text("a").Add(Text("b"))
		require.ErrorIs(t, err, errs.ErrTypeMismatch)
	})
}

func TestDatumClone(t *testing.T) {
	p := geo.NewPoint2D(4326, 1, 2)
	d := Geom(p)
	c := d.Clone()

	require.True(t, d.Eq(c))
	require.NotSame(t, d.PointVal(), c.PointVal())

	// Mutating the clone's payload must not touch the original.
	c.PointVal().X = 99
	require.Equal(t, 1.0, d.PointVal().X)
}

func TestDatumEq(t *testing.T) {
	require.True(t, Bool(true).Eq(Bool(true)))
	require.False(t, Bool(true).Eq(Bool(false)))
	require.False(t, Int4(1).Eq(Int8(1)))
	require.True(t, NPoint(&geo.NPoint{RouteID: 7, Position: 0.5}).
		Eq(NPoint(&geo.NPoint{RouteID: 7, Position: 0.5})))
}

func TestDatumFloat64(t *testing.T) {
	require.Equal(t, 42.0, Int4(42).Float64())
	require.Equal(t, 1.5, Float8(1.5).Float64())
	require.Equal(t, 0.25, NPoint(&geo.NPoint{RouteID: 1, Position: 0.25}).Float64())
}
