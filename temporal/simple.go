package temporal

import (
	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/geo"
)

// Simple-path decomposition: a sequence of moving points is simple when
// its planar trajectory does not self-intersect. The decomposition
// produces the minimal ordered partition into simple sub-sequences by
// detecting the earliest self-intersection, splitting there, and
// continuing. Consecutive sub-sequences share an exclusive-inclusive
// boundary at the split instant.

// IsSimple reports whether the trajectory of a temporal point does not
// self-intersect.
func IsSimple(tv Temporal) (bool, error) {
	if err := requirePoint(tv); err != nil {
		return false, err
	}

	switch t := tv.(type) {
	case *TInstant:
		return true, nil
	case *TInstantSet:
		return true, nil
	case *TSequence:
		split, found := findSplit(t, 0)
		_ = split
		return !found, nil
	case *TSequenceSet:
		for _, s := range t.seqs {
			if _, found := findSplit(s, 0); found {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, errs.ErrTypeMismatch
	}
}

// MakeSimple decomposes a temporal point into the minimal ordered list
// of simple sub-sequences.
func MakeSimple(tv Temporal) ([]*TSequence, error) {
	if err := requirePoint(tv); err != nil {
		return nil, err
	}

	switch t := tv.(type) {
	case *TInstant:
		inst := t.clone()
		return []*TSequence{newTSequenceFromOwned([]TInstant{inst}, true, true, InterpLinear)}, nil
	case *TInstantSet:
		out := make([]*TSequence, len(t.instants))
		for i := range t.instants {
			inst := t.instants[i].clone()
			out[i] = newTSequenceFromOwned([]TInstant{inst}, true, true, InterpLinear)
		}
		return out, nil
	case *TSequence:
		return splitSimple(t), nil
	case *TSequenceSet:
		var out []*TSequence
		for _, s := range t.seqs {
			out = append(out, splitSimple(s)...)
		}
		return out, nil
	default:
		return nil, errs.ErrTypeMismatch
	}
}

// requirePoint validates the base type of a spatial decomposition
// argument.
func requirePoint(tv Temporal) error {
	if tv == nil {
		return errs.ErrTypeMismatch
	}
	bt := tv.BaseType()
	if bt != datum.TypeGeomPoint && bt != datum.TypeGeogPoint {
		return errs.ErrTypeMismatch
	}

	return nil
}

// splitSimple splits a sequence at every earliest self-intersection.
func splitSimple(seq *TSequence) []*TSequence {
	if seq.NumInstants() <= 2 || seq.interp == InterpStep {
		return []*TSequence{seq}
	}

	var out []*TSequence
	start := 0
	lowerInc := seq.lowerInc
	for {
		split, found := findSplit(seq, start)
		if !found {
			break
		}
		piece := seq.instants[start : split+1]
		owned := make([]TInstant, len(piece))
		for i := range piece {
			owned[i] = piece[i].clone()
		}
		out = append(out, newTSequenceFromOwned(owned, lowerInc, false, seq.interp))
		start = split
		lowerInc = true
	}

	rest := seq.instants[start:]
	owned := make([]TInstant, len(rest))
	for i := range rest {
		owned[i] = rest[i].clone()
	}
	out = append(out, newTSequenceFromOwned(owned, lowerInc, seq.upperInc, seq.interp))

	return out
}

// findSplit scans forward from instant start and returns the index of
// the first instant at which the trajectory stops being simple: the
// largest prefix [start..split] is simple and the segment beginning at
// split intersects it.
func findSplit(seq *TSequence, start int) (split int, found bool) {
	n := seq.NumInstants()
	for j := start + 1; j < n-1; j++ {
		s1 := seq.instants[j].Point()
		s2 := seq.instants[j+1].Point()

		// Backtracking over the previous segment.
		if j > start && geo.SegmentsBacktrack(seq.instants[j-1].Point(), s1, s2) {
			return j, true
		}

		// Crossing any earlier non-adjacent segment.
		for i := start; i < j-1; i++ {
			if geo.SegmentsIntersect(seq.instants[i].Point(), seq.instants[i+1].Point(), s1, s2) {
				return j, true
			}
		}
	}

	return 0, false
}
