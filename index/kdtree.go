package index

import (
	"github.com/arloliu/tempus/box"
)

// K-d tree partitioning over temporal boxes: levels cycle through the
// four coordinates xmin, xmax, tmin, tmax, each inner node splitting
// its space at the centroid's value of the level's coordinate into a
// lower half (node 0) and an upper half (node 1).

// LevelCmp compares the query box to the centroid on the coordinate
// dispatched by level mod 4, returning -1, 0 or 1.
func LevelCmp(centroid, query box.TBox, level int) int {
	switch level % 4 {
	case 0:
		return query.Span.Lower.Cmp(centroid.Span.Lower)
	case 1:
		return query.Span.Upper.Cmp(centroid.Span.Upper)
	case 2:
		return query.Period.Lower.Cmp(centroid.Period.Lower)
	default:
		return query.Period.Upper.Cmp(centroid.Period.Upper)
	}
}

// KdtreeNext refines the traversal value for one child half: only the
// single coordinate bound touched at this level changes. Node 0 holds
// the boxes at or below the centroid's coordinate, node 1 the boxes
// above it.
func KdtreeNext(nodebox box.Node, centroid box.TBox, node uint8, level int) box.Node {
	next := nodebox
	switch level % 4 {
	case 0:
		// Split by the lower value bound.
		if node == 0 {
			next.Right.Span.Lower = centroid.Span.Lower
		} else {
			next.Left.Span.Lower = centroid.Span.Lower
		}
	case 1:
		// Split by the upper value bound.
		if node == 0 {
			next.Right.Span.Upper = centroid.Span.Upper
		} else {
			next.Left.Span.Upper = centroid.Span.Upper
		}
	case 2:
		// Split by the lower time bound.
		if node == 0 {
			next.Right.Period.Lower = centroid.Period.Lower
		} else {
			next.Left.Period.Lower = centroid.Period.Lower
		}
	default:
		// Split by the upper time bound.
		if node == 0 {
			next.Right.Period.Upper = centroid.Period.Upper
		} else {
			next.Left.Period.Upper = centroid.Period.Upper
		}
	}

	return next
}

// KdtreeChildren returns which of the two halves a query must descend
// under the given strategy: queries straddling the splitting bound
// descend both.
func KdtreeChildren(nodebox box.Node, centroid, query box.TBox, level int, strategy Strategy) (descend [2]bool) {
	for node := uint8(0); node < 2; node++ {
		child := KdtreeNext(nodebox, centroid, node, level)
		descend[node] = NodeConsistent(child, query, strategy)
	}

	return descend
}
