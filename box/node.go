package box

import (
	"fmt"
	"math"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

// Node is the traversal value of a 4-dimensional space-partitioning
// index over temporal boxes. It is a pair of TBoxes where Left stores
// the elementwise minima (of lower bounds and of upper bounds) and
// Right stores the elementwise maxima over the boxes of a subtree:
//
//	Left.Span.Lower  = min of xmin    Right.Span.Lower  = max of xmin
//	Left.Span.Upper  = min of xmax    Right.Span.Upper  = max of xmax
//
// and the same pattern on the time dimension. Nodes are small and are
// passed down by value during traversal.
type Node struct {
	Left  TBox
	Right TBox
}

// InitNode returns the traversal value of the root: no restriction, so
// every bound covers the whole 4D space. The value dimension's infinities
// follow the centroid's base type.
func InitNode(centroid TBox) Node {
	var neg, pos datum.Datum
	switch centroid.Span.Type() {
	case datum.TypeInt4:
		neg, pos = datum.Int4(math.MinInt32), datum.Int4(math.MaxInt32)
	case datum.TypeInt8:
		neg, pos = datum.Int8(math.MinInt64), datum.Int8(math.MaxInt64)
	default:
		neg, pos = datum.Float8(math.Inf(-1)), datum.Float8(math.Inf(1))
	}

	full := span.Span{Lower: neg, Upper: pos, LowerInc: true, UpperInc: true}
	fullPeriod := span.Span{
		Lower:    datum.TimestampTz(ttime.NoBegin),
		Upper:    datum.TimestampTz(ttime.NoEnd),
		LowerInc: true,
		UpperInc: true,
	}
	b := TBox{Span: full, Period: fullPeriod, HasX: true, HasT: true}

	return Node{Left: b, Right: b}
}

// String formats the node as its left/right box pair.
func (n Node) String() string {
	return fmt.Sprintf("Node{left=%s, right=%s}", n.Left, n.Right)
}
