package temporal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/geo"
	"github.com/arloliu/tempus/ttime"
)

// day returns midnight of 2000-01-<n> as a timestamp.
func day(n int64) ttime.Timestamp {
	return ttime.Timestamp((n - 1) * ttime.MicrosPerDay)
}

func finst(t *testing.T, v float64, ts ttime.Timestamp) *TInstant {
	t.Helper()
	inst, err := NewTInstant(datum.Float8(v), ts)
	require.NoError(t, err)

	return inst
}

func iinst(t *testing.T, v int32, ts ttime.Timestamp) *TInstant {
	t.Helper()
	inst, err := NewTInstant(datum.Int4(v), ts)
	require.NoError(t, err)

	return inst
}

func pinst(t *testing.T, x, y float64, ts ttime.Timestamp) *TInstant {
	t.Helper()
	inst, err := NewTInstant(datum.Geom(geo.NewPoint2D(0, x, y)), ts)
	require.NoError(t, err)

	return inst
}

func fseq(t *testing.T, interp Interp, linc, uinc bool, points ...any) *TSequence {
	t.Helper()
	require.Zero(t, len(points)%2)
	instants := make([]*TInstant, 0, len(points)/2)
	for i := 0; i < len(points); i += 2 {
		v := points[i].(float64)
		ts := points[i+1].(ttime.Timestamp)
		instants = append(instants, finst(t, v, ts))
	}
	seq, err := NewTSequence(instants, linc, uinc, interp)
	require.NoError(t, err)

	return seq
}

// boolAt asserts the boolean value of a temporal boolean at a
// timestamp.
func boolAt(t *testing.T, tv Temporal, ts ttime.Timestamp, want bool) {
	t.Helper()
	v, ok := tv.ValueAt(ts)
	require.True(t, ok, "no value at %s", ts)
	require.Equal(t, want, v.BoolVal(), "value at %s", ts)
}

// undefinedAt asserts that a temporal value is undefined at a
// timestamp.
func undefinedAt(t *testing.T, tv Temporal, ts ttime.Timestamp) {
	t.Helper()
	_, ok := tv.ValueAt(ts)
	require.False(t, ok, "unexpected value at %s", ts)
}
