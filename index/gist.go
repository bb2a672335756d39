package index

import (
	"fmt"
	"sort"

	"github.com/arloliu/tempus/box"
	"github.com/arloliu/tempus/errs"
)

// R-tree style support: consistency predicates, union, penalty, and the
// double-sorting node split.

// LeafConsistent reports whether an indexed leaf box satisfies the
// query under the given strategy.
//
// The directional tests use the span predicates, which honor bound
// inclusivity: left([a,b], (b,c]) holds while left([a,b], [b,c]) does
// not, and similarly for right, before and after.
func LeafConsistent(key, query box.TBox, strategy Strategy) (bool, error) {
	switch strategy {
	case Overlaps:
		return key.Overlaps(query), nil
	case Contains:
		return key.Contains(query), nil
	case ContainedBy:
		return key.ContainedBy(query), nil
	case Same:
		return key.Same(query), nil
	case Adjacent:
		return key.Adjacent(query), nil
	case Left:
		return key.Left(query), nil
	case OverLeft:
		return key.OverLeft(query), nil
	case Right:
		return key.Right(query), nil
	case OverRight:
		return key.OverRight(query), nil
	case Before:
		return key.Before(query), nil
	case OverBefore:
		return key.OverBefore(query), nil
	case After:
		return key.After(query), nil
	case OverAfter:
		return key.OverAfter(query), nil
	default:
		return false, fmt.Errorf("%w: strategy %d", errs.ErrTypeMismatch, strategy)
	}
}

// InnerConsistent reports whether any leaf below an inner box can
// satisfy the query under the given strategy: it returns false only
// when the predicate must be false for every descendant.
func InnerConsistent(key, query box.TBox, strategy Strategy) (bool, error) {
	switch strategy {
	case Overlaps, ContainedBy:
		return key.Overlaps(query), nil
	case Contains, Same:
		return key.Contains(query), nil
	case Adjacent:
		return key.Adjacent(query) || key.Overlaps(query), nil
	case Left:
		return !key.OverRight(query), nil
	case OverLeft:
		return !key.Right(query), nil
	case Right:
		return !key.OverLeft(query), nil
	case OverRight:
		return !key.Left(query), nil
	case Before:
		return !key.OverAfter(query), nil
	case OverBefore:
		return !key.After(query), nil
	case After:
		return !key.OverBefore(query), nil
	case OverAfter:
		return !key.Before(query), nil
	default:
		return false, fmt.Errorf("%w: strategy %d", errs.ErrTypeMismatch, strategy)
	}
}

// Union returns the minimal bounding box enclosing all the entries.
func Union(entries []box.TBox) box.TBox {
	if len(entries) == 0 {
		return box.TBox{}
	}
	u := entries[0]
	for i := 1; i < len(entries); i++ {
		u.Adjust(&entries[i])
	}

	return u
}

// Penalty returns the cost of inserting a new entry under an existing
// one: the increase in volume of the enclosing box, as in the R-tree
// paper.
func Penalty(original, inserted box.TBox) float64 {
	return original.Penalty(inserted)
}

/*****************************************************************************
 * Double-sorting split
 *****************************************************************************/

// splitDim enumerates the four sortable coordinates of a box.
type splitDim int

const (
	dimXmin splitDim = iota
	dimXmax
	dimTmin
	dimTmax
)

// valueAxis reports whether the dimension sorts the value axis (as
// opposed to the time axis).
func (d splitDim) valueAxis() bool { return d == dimXmin || d == dimXmax }

// coord projects one sortable coordinate of a box to a float64.
func coord(b box.TBox, d splitDim) float64 {
	switch d {
	case dimXmin:
		return b.Span.Lower.Float64()
	case dimXmax:
		return b.Span.Upper.Float64()
	case dimTmin:
		return float64(b.Period.Lower.TimestampVal())
	default:
		return float64(b.Period.Upper.TimestampVal())
	}
}

// axisRange projects a box onto an axis.
func axisRange(b box.TBox, valueAxis bool) (lo, hi float64) {
	if valueAxis {
		return b.Span.Lower.Float64(), b.Span.Upper.Float64()
	}

	return float64(b.Period.Lower.TimestampVal()), float64(b.Period.Upper.TimestampVal())
}

// SplitResult is the outcome of a node split: the entry indices and the
// bounding box of each group.
type SplitResult struct {
	LeftEntries  []int
	RightEntries []int
	LeftBox      box.TBox
	RightBox     box.TBox

	// splitAxisValue records the axis of the winning split for the
	// common-entry pass: true for the value axis, false for time.
	splitAxisValue bool
}

// splitScore orders candidate splits: overlap along the split axis
// first, then dead space, then entry balance.
type splitScore struct {
	overlap float64
	dead    float64
	balance int
}

func (s splitScore) better(than splitScore) bool {
	if s.overlap != than.overlap {
		return s.overlap < than.overlap
	}
	if s.dead != than.dead {
		return s.dead < than.dead
	}

	return s.balance < than.balance
}

// PickSplit divides the entries into two groups using the double
// sorting split algorithm: every split position along every sortable
// dimension is scored by (overlap, dead space, balance) with overlap as
// the primary criterion, and entries whose projection does not affect
// the chosen axis' overlap are distributed to the group with the
// smaller volume penalty.
func PickSplit(entries []box.TBox) (SplitResult, error) {
	n := len(entries)
	if n < 2 {
		return SplitResult{}, fmt.Errorf("%w: split requires at least two entries", errs.ErrBadBounds)
	}

	var best SplitResult
	bestScore := splitScore{overlap: 0, dead: 0, balance: 0}
	haveBest := false

	for _, dim := range []splitDim{dimXmin, dimXmax, dimTmin, dimTmax} {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return coord(entries[order[a]], dim) < coord(entries[order[b]], dim)
		})

		// Prefix and suffix unions for O(1) group boxes per position.
		prefix := make([]box.TBox, n)
		suffix := make([]box.TBox, n)
		prefix[0] = entries[order[0]]
		for i := 1; i < n; i++ {
			prefix[i] = prefix[i-1]
			prefix[i].Adjust(&entries[order[i]])
		}
		suffix[n-1] = entries[order[n-1]]
		for i := n - 2; i >= 0; i-- {
			suffix[i] = suffix[i+1]
			suffix[i].Adjust(&entries[order[i]])
		}

		for pos := 1; pos < n; pos++ {
			left, right := prefix[pos-1], suffix[pos]
			score := splitScore{
				overlap: axisOverlap(left, right, dim.valueAxis()),
				dead:    deadSpace(left, right),
				balance: abs(pos - (n - pos)),
			}
			if !haveBest || score.better(bestScore) {
				bestScore = score
				haveBest = true
				best = SplitResult{
					LeftEntries:  append([]int(nil), order[:pos]...),
					RightEntries: append([]int(nil), order[pos:]...),
					LeftBox:      left,
					RightBox:     right,
				}
				best.splitAxisValue = dim.valueAxis()
			}
		}
	}

	best.redistributeCommon(entries)

	return best, nil
}

// axisOverlap returns the extent by which the two group boxes overlap
// along the given axis, or zero when they are disjoint there.
func axisOverlap(left, right box.TBox, valueAxis bool) float64 {
	llo, lhi := axisRange(left, valueAxis)
	rlo, rhi := axisRange(right, valueAxis)
	lo := llo
	if rlo > lo {
		lo = rlo
	}
	hi := lhi
	if rhi < hi {
		hi = rhi
	}
	if hi <= lo {
		return 0
	}

	return hi - lo
}

// deadSpace scores the total volume of the two group boxes; smaller
// boxes waste less space.
func deadSpace(left, right box.TBox) float64 {
	return boxVolume(left) + boxVolume(right)
}

// boxVolume measures the generalized volume of a box, with the time
// extent in seconds so magnitudes stay comparable.
func boxVolume(b box.TBox) float64 {
	v := 1.0
	if b.HasX {
		lo, hi := axisRange(b, true)
		v *= hi - lo
	}
	if b.HasT {
		tlo, thi := axisRange(b, false)
		v *= (thi - tlo) / 1e6
	}
	if !b.HasX && !b.HasT {
		return 0
	}

	return v
}

// redistributeCommon moves entries whose projection does not affect the
// chosen axis' overlap to the group with the smaller penalty.
func (r *SplitResult) redistributeCommon(entries []box.TBox) {
	llo, lhi := axisRange(r.LeftBox, r.splitAxisValue)
	rlo, rhi := axisRange(r.RightBox, r.splitAxisValue)
	overlapLo := maxf(llo, rlo)
	overlapHi := minf(lhi, rhi)
	if overlapHi <= overlapLo {
		return
	}

	isCommon := func(idx int) bool {
		lo, hi := axisRange(entries[idx], r.splitAxisValue)
		return lo >= overlapLo && hi <= overlapHi
	}

	var fixedLeft, fixedRight, common []int
	for _, idx := range r.LeftEntries {
		if isCommon(idx) {
			common = append(common, idx)
		} else {
			fixedLeft = append(fixedLeft, idx)
		}
	}
	for _, idx := range r.RightEntries {
		if isCommon(idx) {
			common = append(common, idx)
		} else {
			fixedRight = append(fixedRight, idx)
		}
	}
	// Splitting must leave both groups non-empty.
	if len(fixedLeft) == 0 || len(fixedRight) == 0 {
		return
	}

	leftBox := entries[fixedLeft[0]]
	for _, idx := range fixedLeft[1:] {
		leftBox.Adjust(&entries[idx])
	}
	rightBox := entries[fixedRight[0]]
	for _, idx := range fixedRight[1:] {
		rightBox.Adjust(&entries[idx])
	}

	for _, idx := range common {
		if leftBox.Penalty(entries[idx]) <= rightBox.Penalty(entries[idx]) {
			fixedLeft = append(fixedLeft, idx)
			leftBox.Adjust(&entries[idx])
		} else {
			fixedRight = append(fixedRight, idx)
			rightBox.Adjust(&entries[idx])
		}
	}

	sort.Ints(fixedLeft)
	sort.Ints(fixedRight)
	r.LeftEntries = fixedLeft
	r.RightEntries = fixedRight
	r.LeftBox = leftBox
	r.RightBox = rightBox
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}

	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}

	return b
}
