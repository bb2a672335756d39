package index

import (
	"math"

	"github.com/arloliu/tempus/box"
	"github.com/arloliu/tempus/datum"
)

// Quad-tree partitioning over temporal boxes treated as points in the
// 4-dimensional (xmin, xmax, tmin, tmax) space. Every inner node stores
// a centroid box as its prefix; traversal carries a box.Node whose left
// box holds the elementwise minima and whose right box holds the
// elementwise maxima of the subtree. Each split produces 16 quadrants.

// Quadrant4D returns the quadrant of inBox relative to the centroid: a
// 4-bit selector built by comparing each corner coordinate.
//
//	bit 0x8: inBox.xmin > centroid.xmin
//	bit 0x4: inBox.xmax > centroid.xmax
//	bit 0x2: inBox.tmin > centroid.tmin
//	bit 0x1: inBox.tmax > centroid.tmax
func Quadrant4D(centroid, inBox box.TBox) uint8 {
	var quadrant uint8
	if inBox.Span.Lower.Gt(centroid.Span.Lower) {
		quadrant |= 0x8
	}
	if inBox.Span.Upper.Gt(centroid.Span.Upper) {
		quadrant |= 0x4
	}
	if inBox.Period.Lower.Gt(centroid.Period.Lower) {
		quadrant |= 0x2
	}
	if inBox.Period.Upper.Gt(centroid.Period.Upper) {
		quadrant |= 0x1
	}

	return quadrant
}

// QuadtreeNext refines the traversal value for a child quadrant: each
// quadrant bit replaces one bound of the node with the corresponding
// centroid bound.
//
// With quadrant bit 0x8 set the child's xmin values all exceed the
// centroid's, so the minimum of the lower bounds rises to the
// centroid's xmin; with the bit clear the maximum of the xmin values
// drops to it. The other three bits act on xmax, tmin and tmax in the
// same way.
func QuadtreeNext(nodebox box.Node, centroid box.TBox, quadrant uint8) box.Node {
	next := nodebox

	if quadrant&0x8 != 0 {
		next.Left.Span.Lower = centroid.Span.Lower
	} else {
		next.Left.Span.Upper = centroid.Span.Lower
	}

	if quadrant&0x4 != 0 {
		next.Right.Span.Lower = centroid.Span.Upper
	} else {
		next.Right.Span.Upper = centroid.Span.Upper
	}

	if quadrant&0x2 != 0 {
		next.Left.Period.Lower = centroid.Period.Lower
	} else {
		next.Left.Period.Upper = centroid.Period.Lower
	}

	if quadrant&0x1 != 0 {
		next.Right.Period.Lower = centroid.Period.Upper
	} else {
		next.Right.Period.Upper = centroid.Period.Upper
	}

	return next
}

/*****************************************************************************
 * Inner consistency over traversal values
 *****************************************************************************/

// Overlap4D reports whether any box in the subtree can overlap the
// query: in every dimension the query must reach past the subtree's
// minimal lower bound and before its maximal upper bound.
func Overlap4D(nodebox box.Node, query box.TBox) bool {
	result := true
	if query.HasX {
		result = result &&
			nodebox.Left.Span.Lower.Le(query.Span.Upper) &&
			nodebox.Right.Span.Upper.Ge(query.Span.Lower)
	}
	if query.HasT {
		result = result &&
			nodebox.Left.Period.Lower.Le(query.Period.Upper) &&
			nodebox.Right.Period.Upper.Ge(query.Period.Lower)
	}

	return result
}

// Contain4D reports whether any box in the subtree can contain the
// query.
func Contain4D(nodebox box.Node, query box.TBox) bool {
	result := true
	if query.HasX {
		result = result &&
			nodebox.Left.Span.Lower.Le(query.Span.Lower) &&
			nodebox.Right.Span.Upper.Ge(query.Span.Upper)
	}
	if query.HasT {
		result = result &&
			nodebox.Left.Period.Lower.Le(query.Period.Lower) &&
			nodebox.Right.Period.Upper.Ge(query.Period.Upper)
	}

	return result
}

// Left4D reports whether every box in the subtree sits strictly below
// the query on the value axis: the subtree's greatest upper bound falls
// below the query's lower bound.
func Left4D(nodebox box.Node, query box.TBox) bool {
	return nodebox.Right.Span.Upper.Lt(query.Span.Lower)
}

// OverLeft4D reports whether no box in the subtree extends above the
// query's upper value bound.
func OverLeft4D(nodebox box.Node, query box.TBox) bool {
	return nodebox.Right.Span.Upper.Le(query.Span.Upper)
}

// Right4D reports whether every box in the subtree sits strictly above
// the query on the value axis.
func Right4D(nodebox box.Node, query box.TBox) bool {
	return nodebox.Left.Span.Lower.Gt(query.Span.Upper)
}

// OverRight4D reports whether no box in the subtree extends below the
// query's lower value bound.
func OverRight4D(nodebox box.Node, query box.TBox) bool {
	return nodebox.Left.Span.Lower.Ge(query.Span.Lower)
}

// Before4D reports whether every box in the subtree ends strictly
// before the query in time.
func Before4D(nodebox box.Node, query box.TBox) bool {
	return nodebox.Right.Period.Upper.Lt(query.Period.Lower)
}

// OverBefore4D reports whether no box in the subtree extends after the
// query in time.
func OverBefore4D(nodebox box.Node, query box.TBox) bool {
	return nodebox.Right.Period.Upper.Le(query.Period.Upper)
}

// After4D reports whether every box in the subtree starts strictly
// after the query in time.
func After4D(nodebox box.Node, query box.TBox) bool {
	return nodebox.Left.Period.Lower.Gt(query.Period.Upper)
}

// OverAfter4D reports whether no box in the subtree extends before the
// query in time.
func OverAfter4D(nodebox box.Node, query box.TBox) bool {
	return nodebox.Left.Period.Lower.Ge(query.Period.Lower)
}

// NodeConsistent reports whether a subtree bounded by nodebox can hold
// a box satisfying the query under the given strategy.
func NodeConsistent(nodebox box.Node, query box.TBox, strategy Strategy) bool {
	switch strategy {
	case Overlaps, Adjacent:
		return Overlap4D(nodebox, query)
	case Contains, Same:
		return Contain4D(nodebox, query)
	case ContainedBy:
		return Overlap4D(nodebox, query)
	case Left:
		return !OverRight4D(nodebox, query)
	case OverLeft:
		return !Right4D(nodebox, query)
	case Right:
		return !OverLeft4D(nodebox, query)
	case OverRight:
		return !Left4D(nodebox, query)
	case Before:
		return !OverAfter4D(nodebox, query)
	case OverBefore:
		return !After4D(nodebox, query)
	case After:
		return !OverBefore4D(nodebox, query)
	case OverAfter:
		return !Before4D(nodebox, query)
	default:
		return false
	}
}

// DistanceToNode returns the lower bound for the distance on the value
// axis between the query and any box in the subtree, or +Inf when their
// time projections are disjoint.
func DistanceToNode(query box.TBox, nodebox box.Node) float64 {
	if query.HasT &&
		(query.Period.Lower.Gt(nodebox.Right.Period.Upper) ||
			nodebox.Left.Period.Lower.Gt(query.Period.Upper)) {
		return math.Inf(1)
	}
	if !query.HasX {
		return 0
	}

	switch {
	case query.Span.Upper.Lt(nodebox.Left.Span.Lower):
		return diffValue(nodebox.Left.Span.Lower, query.Span.Upper)
	case query.Span.Lower.Gt(nodebox.Right.Span.Upper):
		return diffValue(query.Span.Lower, nodebox.Right.Span.Upper)
	default:
		return 0
	}
}

// diffValue returns a - b promoted to float64.
func diffValue(a, b datum.Datum) float64 {
	return a.Float64() - b.Float64()
}
