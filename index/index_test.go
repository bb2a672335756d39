package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tempus/box"
	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

func day(n int64) ttime.Timestamp {
	return ttime.Timestamp((n - 1) * ttime.MicrosPerDay)
}

func tbox(t *testing.T, xlo, xhi float64, tlo, thi int64) box.TBox {
	t.Helper()
	vs, err := span.Make(datum.Float8(xlo), datum.Float8(xhi), true, true)
	require.NoError(t, err)
	p, err := span.NewPeriod(day(tlo), day(thi), true, true)
	require.NoError(t, err)

	return box.FromSpanPeriod(vs, p)
}

func TestLeafConsistent(t *testing.T) {
	key := tbox(t, 1, 5, 1, 5)

	cases := []struct {
		name     string
		query    box.TBox
		strategy Strategy
		want     bool
	}{
		{"overlaps hit", tbox(t, 4, 8, 4, 8), Overlaps, true},
		{"overlaps miss", tbox(t, 7, 8, 1, 5), Overlaps, false},
		{"contains", tbox(t, 2, 3, 2, 3), Contains, true},
		{"containedBy", tbox(t, 0, 9, 0, 9), ContainedBy, true},
		{"same", tbox(t, 1, 5, 1, 5), Same, true},
		{"left", tbox(t, 7, 9, 1, 5), Left, true},
		{"overleft", tbox(t, 1, 5, 1, 5), OverLeft, true},
		{"right miss", tbox(t, 7, 9, 1, 5), Right, false},
		{"before", tbox(t, 1, 5, 7, 9), Before, true},
		{"after miss", tbox(t, 1, 5, 7, 9), After, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LeafConsistent(key, tc.query, tc.strategy)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	t.Run("Unknown strategy", func(t *testing.T) {
		_, err := LeafConsistent(key, key, Strategy(99))
		require.Error(t, err)
	})
}

func TestInnerConsistentNeverPrunesMatches(t *testing.T) {
	// An inner box covering a leaf must pass whenever the leaf passes.
	leaf := tbox(t, 2, 3, 2, 3)
	inner := tbox(t, 0, 10, 0, 10)
	query := tbox(t, 2.5, 6, 1, 4)

	for s := Overlaps; s <= OverAfter; s++ {
		leafOK, err := LeafConsistent(leaf, query, s)
		require.NoError(t, err)
		if !leafOK {
			continue
		}
		innerOK, err := InnerConsistent(inner, query, s)
		require.NoError(t, err)
		require.True(t, innerOK, "inner pruned a matching leaf under %s", s)
	}
}

func TestUnionPenalty(t *testing.T) {
	entries := []box.TBox{
		tbox(t, 0, 1, 1, 2),
		tbox(t, 5, 6, 3, 4),
		tbox(t, 2, 3, 0, 1),
	}
	u := Union(entries)
	for _, e := range entries {
		require.True(t, u.Contains(e))
	}

	require.Equal(t, 0.0, Penalty(u, entries[0]))
	require.Greater(t, Penalty(entries[0], entries[1]), 0.0)
}

// TestQuadrant4D pins the worked example: centroid [3,5]x[Jan3,Jan5],
// inbox [7,9]x[Jan7,Jan9] lands in quadrant 0b1111.
func TestQuadrant4D(t *testing.T) {
	centroid := tbox(t, 3, 5, 3, 5)
	inBox := tbox(t, 7, 9, 7, 9)

	require.Equal(t, uint8(0xF), Quadrant4D(centroid, inBox))

	require.Equal(t, uint8(0x0), Quadrant4D(centroid, tbox(t, 1, 2, 1, 2)))
	require.Equal(t, uint8(0x8), Quadrant4D(centroid, tbox(t, 4, 5, 1, 3)))
	require.Equal(t, uint8(0x3), Quadrant4D(centroid, tbox(t, 1, 4, 4, 6)))
}

// TestQuadtreeNext pins the next-nodebox example: from the infinite
// root, quadrant 0b1111 of the centroid raises every lower bound to the
// centroid's bounds.
func TestQuadtreeNext(t *testing.T) {
	centroid := tbox(t, 3, 5, 3, 5)
	root := box.InitNode(centroid)

	next := QuadtreeNext(root, centroid, 0xF)

	require.Equal(t, 3.0, next.Left.Span.Lower.Float8Val())
	require.True(t, math.IsInf(next.Left.Span.Upper.Float8Val(), 1))
	require.Equal(t, 5.0, next.Right.Span.Lower.Float8Val())
	require.True(t, math.IsInf(next.Right.Span.Upper.Float8Val(), 1))

	require.Equal(t, day(3), next.Left.Period.Lower.TimestampVal())
	require.Equal(t, ttime.NoEnd, next.Left.Period.Upper.TimestampVal())
	require.Equal(t, day(5), next.Right.Period.Lower.TimestampVal())
	require.Equal(t, ttime.NoEnd, next.Right.Period.Upper.TimestampVal())

	t.Run("Clear bits cap the upper side instead", func(t *testing.T) {
		next := QuadtreeNext(root, centroid, 0x0)
		require.Equal(t, 3.0, next.Left.Span.Upper.Float8Val())
		require.Equal(t, 5.0, next.Right.Span.Upper.Float8Val())
		require.True(t, math.IsInf(next.Left.Span.Lower.Float8Val(), -1))
	})
}

// TestQuadrantCoverage checks that the 16 refined node boxes of a
// centroid classify every box back to the quadrant that produced it.
func TestQuadrantCoverage(t *testing.T) {
	centroid := tbox(t, 3, 5, 3, 5)
	root := box.InitNode(centroid)

	probes := []box.TBox{
		tbox(t, 1, 2, 1, 2), tbox(t, 7, 9, 7, 9), tbox(t, 4, 4, 2, 2),
		tbox(t, 1, 9, 1, 9), tbox(t, 4, 6, 4, 6), tbox(t, 2, 6, 2, 4),
	}
	for _, probe := range probes {
		q := Quadrant4D(centroid, probe)
		child := QuadtreeNext(root, centroid, q)
		require.True(t, Overlap4D(child, probe),
			"probe %s lost by its own quadrant %04b", probe, q)
	}
}

func TestDistanceToNode(t *testing.T) {
	centroid := tbox(t, 3, 5, 3, 5)
	root := box.InitNode(centroid)

	t.Run("Inside has zero distance", func(t *testing.T) {
		require.Equal(t, 0.0, DistanceToNode(tbox(t, 1, 2, 1, 2), root))
	})

	t.Run("Time-disjoint node is infinite", func(t *testing.T) {
		far := box.Node{Left: tbox(t, 20, 30, 10, 20), Right: tbox(t, 25, 35, 15, 25)}
		require.True(t, math.IsInf(DistanceToNode(tbox(t, 4, 4, 1, 2), far), 1))
	})

	t.Run("Value gap measured when time overlaps", func(t *testing.T) {
		node := box.Node{Left: tbox(t, 5, 15, 1, 5), Right: tbox(t, 8, 20, 2, 6)}
		require.Equal(t, 0.0, DistanceToNode(tbox(t, 10, 12, 1, 2), node))
		require.Equal(t, 1.0, DistanceToNode(tbox(t, 1, 4, 1, 2), node))
	})
}

// TestPickSplitOverlapAvoidance pins the split scenario: with one axis
// admitting a zero-overlap split and the other not, the zero-overlap
// axis wins, independent of input order.
func TestPickSplitOverlapAvoidance(t *testing.T) {
	// Value axis: two clusters [0,10] and [100,110] - zero overlap.
	// Time axis: all entries interleave - every split overlaps.
	entries := make([]box.TBox, 0, 10)
	for i := int64(0); i < 5; i++ {
		entries = append(entries, tbox(t, float64(i), float64(i+5), i, i+10))
	}
	for i := int64(0); i < 5; i++ {
		entries = append(entries, tbox(t, float64(100+i), float64(105+i), i, i+10))
	}

	check := func(t *testing.T, entries []box.TBox) SplitResult {
		result, err := PickSplit(entries)
		require.NoError(t, err)
		require.Len(t, result.LeftEntries, 5)
		require.Len(t, result.RightEntries, 5)
		// Groups do not overlap on the value axis.
		require.False(t, result.LeftBox.Span.Overlaps(result.RightBox.Span))
		return result
	}

	first := check(t, entries)

	// Reversing the input order must not change the selected axis.
	reversed := make([]box.TBox, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	second := check(t, reversed)

	require.Equal(t,
		first.LeftBox.Span.Lower.Float8Val(),
		second.LeftBox.Span.Lower.Float8Val())
}

func TestPickSplitErrors(t *testing.T) {
	_, err := PickSplit([]box.TBox{tbox(t, 1, 2, 1, 2)})
	require.Error(t, err)
}

func TestKdtree(t *testing.T) {
	centroid := tbox(t, 3, 5, 3, 5)

	t.Run("LevelCmp cycles the coordinates", func(t *testing.T) {
		query := tbox(t, 4, 4, 2, 6)
		require.Equal(t, 1, LevelCmp(centroid, query, 0))  // xmin 4 > 3
		require.Equal(t, -1, LevelCmp(centroid, query, 1)) // xmax 4 < 5
		require.Equal(t, -1, LevelCmp(centroid, query, 2)) // tmin 2 < 3
		require.Equal(t, 1, LevelCmp(centroid, query, 3))  // tmax 6 > 5
		require.Equal(t, 1, LevelCmp(centroid, query, 4))  // wraps to xmin
	})

	t.Run("KdtreeNext touches exactly one bound", func(t *testing.T) {
		root := box.InitNode(centroid)
		lower := KdtreeNext(root, centroid, 0, 0)
		require.Equal(t, 3.0, lower.Right.Span.Lower.Float8Val())
		require.True(t, math.IsInf(lower.Left.Span.Lower.Float8Val(), -1))
		require.True(t, lower.Left.Period.Equal(root.Left.Period))

		upper := KdtreeNext(root, centroid, 1, 0)
		require.Equal(t, 3.0, upper.Left.Span.Lower.Float8Val())

		timeSplit := KdtreeNext(root, centroid, 0, 2)
		require.Equal(t, day(3), timeSplit.Right.Period.Lower.TimestampVal())
	})

	t.Run("Straddling queries descend both halves", func(t *testing.T) {
		root := box.InitNode(centroid)
		query := tbox(t, 0, 10, 0, 10)
		descend := KdtreeChildren(root, centroid, query, 0, Overlaps)
		require.True(t, descend[0])
		require.True(t, descend[1])
	})
}

func TestTreeScan(t *testing.T) {
	tree := NewTree()
	for i := int64(0); i < 100; i++ {
		tree.Insert(Entry{Box: tbox(t, float64(i), float64(i+1), i, i+1), ID: i})
	}
	require.Equal(t, 100, tree.Len())

	query := tbox(t, 10, 20, 0, 100)
	ids, err := tree.Scan(query, Overlaps)
	require.NoError(t, err)

	// Every box with [i, i+1] overlapping [10, 20]: ids 9 through 20,
	// since the bounds are inclusive.
	require.Len(t, ids, 12)
	seen := map[int64]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	for i := int64(9); i <= 20; i++ {
		require.True(t, seen[i], "missing id %d", i)
	}

	t.Run("Exact agreement for overlap strategies", func(t *testing.T) {
		for _, s := range []Strategy{Overlaps, ContainedBy} {
			ids, err := tree.Scan(query, s)
			require.NoError(t, err)

			want := map[int64]bool{}
			for i := int64(0); i < 100; i++ {
				b := tbox(t, float64(i), float64(i+1), i, i+1)
				ok, err := LeafConsistent(b, query, s)
				require.NoError(t, err)
				if ok {
					want[i] = true
				}
			}
			require.Len(t, ids, len(want), "strategy %s", s)
			for _, id := range ids {
				require.True(t, want[id], "strategy %s returned %d", s, id)
			}
		}
	})

	t.Run("Soundness for directional strategies", func(t *testing.T) {
		for _, s := range []Strategy{Left, Right, Before, After} {
			ids, err := tree.Scan(query, s)
			require.NoError(t, err)
			for _, id := range ids {
				b := tbox(t, float64(id), float64(id+1), id, id+1)
				ok, err := LeafConsistent(b, query, s)
				require.NoError(t, err)
				require.True(t, ok, "strategy %s returned non-matching %d", s, id)
			}
		}
	})
}

func TestTreeNearest(t *testing.T) {
	tree := NewTree()
	for i := int64(0); i < 50; i++ {
		tree.Insert(Entry{Box: tbox(t, float64(10*i), float64(10*i+5), 0, 100), ID: i})
	}

	query := tbox(t, 102, 103, 0, 100)
	got := tree.Nearest(query, 3)
	require.Len(t, got, 3)
	// Entry 10 covers [100,105]: distance zero; 9 and 11 come next.
	require.Equal(t, int64(10), got[0])
	require.ElementsMatch(t, []int64{9, 11}, got[1:])

	t.Run("Time-disjoint entries unreachable", func(t *testing.T) {
		tree := NewTree()
		tree.Insert(Entry{Box: tbox(t, 0, 1, 0, 1), ID: 1})
		query := tbox(t, 0, 1, 50, 60)
		require.Empty(t, tree.Nearest(query, 5))
	})
}
