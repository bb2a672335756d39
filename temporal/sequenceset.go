package temporal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

// TSequenceSet is an ordered set of disjoint sequences sharing one base
// type and interpolation. Touching sequences are merged only when their
// junction values agree (see mergeTouching).
type TSequenceSet struct {
	seqs []*TSequence
	bbox Bbox
}

var _ Temporal = (*TSequenceSet)(nil)

// NewTSequenceSet validates, normalizes and returns a sequence set.
// Sequences must share base type and interpolation; they are sorted and
// touching sequences with compatible bounds are merged.
func NewTSequenceSet(seqs []*TSequence) (*TSequenceSet, error) {
	if len(seqs) == 0 {
		return nil, fmt.Errorf("%w: at least one sequence required", errs.ErrBadBounds)
	}

	bt := seqs[0].BaseType()
	interp := seqs[0].Interpolation()
	for _, s := range seqs[1:] {
		if s.BaseType() != bt {
			return nil, fmt.Errorf("%w: %s vs %s", errs.ErrBaseMismatch, bt, s.BaseType())
		}
		if s.NumInstants() > 1 && s.Interpolation() != interp {
			return nil, fmt.Errorf("%w: mixed interpolation in sequence set", errs.ErrBadInterp)
		}
	}

	sorted := make([]*TSequence, len(seqs))
	copy(sorted, seqs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTimestamp() < sorted[j].StartTimestamp()
	})
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		pe, cs := prev.EndTimestamp(), cur.StartTimestamp()
		if pe > cs || (pe == cs && prev.upperInc && cur.lowerInc) {
			return nil, fmt.Errorf("%w: sequences overlap at %s", errs.ErrNonMonotonicTime, cs)
		}
	}

	ss := &TSequenceSet{seqs: normalizeSequences(sorted)}
	ss.bbox = ss.seqs[0].bbox
	for _, s := range ss.seqs[1:] {
		ss.bbox = ss.bbox.Union(s.bbox)
	}

	return ss, nil
}

// MustTSequenceSet is NewTSequenceSet that panics on error.
func MustTSequenceSet(seqs ...*TSequence) *TSequenceSet {
	ss, err := NewTSequenceSet(seqs)
	if err != nil {
		panic(err)
	}

	return ss
}

// newTSequenceSetFromOwned builds a set from fragments already valid by
// construction, merging touching pieces.
func newTSequenceSetFromOwned(seqs []*TSequence) *TSequenceSet {
	ss := &TSequenceSet{seqs: normalizeSequences(seqs)}
	ss.bbox = ss.seqs[0].bbox
	for _, s := range ss.seqs[1:] {
		ss.bbox = ss.bbox.Union(s.bbox)
	}

	return ss
}

// normalizeSequences merges consecutive sequences that touch with
// compatible bounds and matching edge values into one sequence.
func normalizeSequences(seqs []*TSequence) []*TSequence {
	if len(seqs) <= 1 {
		return seqs
	}

	out := make([]*TSequence, 0, len(seqs))
	cur := seqs[0]
	for _, next := range seqs[1:] {
		if merged, ok := mergeTouching(cur, next); ok {
			cur = merged
			continue
		}
		out = append(out, cur)
		cur = next
	}
	out = append(out, cur)

	return out
}

// mergeTouching merges two sequences sharing a boundary timestamp with
// equal values there and at least one inclusive side.
func mergeTouching(a, b *TSequence) (*TSequence, bool) {
	if a.EndTimestamp() != b.StartTimestamp() {
		return nil, false
	}
	if a.NumInstants() > 1 && b.NumInstants() > 1 && a.interp != b.interp {
		return nil, false
	}
	interp := a.interp
	if a.NumInstants() == 1 {
		interp = b.interp
	}

	if a.EndValue().Eq(b.StartValue()) {
		if !a.upperInc && !b.lowerInc {
			// The junction instant belongs to neither side.
			return nil, false
		}
		merged := make([]TInstant, 0, len(a.instants)+len(b.instants))
		merged = append(merged, a.instants...)
		merged = append(merged, b.instants[1:]...)

		return newTSequenceFromOwned(normalizeInstants(merged, interp),
			a.lowerInc, b.upperInc, interp), true
	}

	return nil, false
}

// BaseType returns the base type of the values.
func (ss *TSequenceSet) BaseType() datum.BaseType { return ss.seqs[0].BaseType() }

// Subtype returns SubtypeSequenceSet.
func (ss *TSequenceSet) Subtype() Subtype { return SubtypeSequenceSet }

// Interpolation returns the shared interpolation of the sequences.
func (ss *TSequenceSet) Interpolation() Interp { return ss.seqs[0].Interpolation() }

// NumSequences returns the number of sequences.
func (ss *TSequenceSet) NumSequences() int { return len(ss.seqs) }

// SequenceN returns the n-th sequence in time order.
func (ss *TSequenceSet) SequenceN(n int) *TSequence { return ss.seqs[n] }

// Sequences returns the composing sequences in time order.
func (ss *TSequenceSet) Sequences() []*TSequence {
	out := make([]*TSequence, len(ss.seqs))
	copy(out, ss.seqs)

	return out
}

// NumInstants returns the total number of instants over all sequences.
func (ss *TSequenceSet) NumInstants() int {
	n := 0
	for _, s := range ss.seqs {
		n += s.NumInstants()
	}

	return n
}

// InstantN returns the n-th instant over all sequences in time order.
func (ss *TSequenceSet) InstantN(n int) *TInstant {
	for _, s := range ss.seqs {
		if n < s.NumInstants() {
			return s.InstantN(n)
		}
		n -= s.NumInstants()
	}
	panic("temporal: instant index out of range")
}

// StartTimestamp returns the first timestamp.
func (ss *TSequenceSet) StartTimestamp() ttime.Timestamp {
	return ss.seqs[0].StartTimestamp()
}

// EndTimestamp returns the last timestamp.
func (ss *TSequenceSet) EndTimestamp() ttime.Timestamp {
	return ss.seqs[len(ss.seqs)-1].EndTimestamp()
}

// Period returns the bounding period covering all sequences.
func (ss *TSequenceSet) Period() span.Span {
	first, last := ss.seqs[0], ss.seqs[len(ss.seqs)-1]
	p, err := span.NewPeriod(first.StartTimestamp(), last.EndTimestamp(),
		first.lowerInc, last.upperInc)
	if err != nil {
		panic(err)
	}

	return p
}

// Time returns the exact time support: one period per sequence.
func (ss *TSequenceSet) Time() span.Set {
	periods := make([]span.Span, len(ss.seqs))
	for i, s := range ss.seqs {
		periods[i] = s.Period()
	}

	return span.MustSet(periods...)
}

// Bbox returns the cached bounding box.
func (ss *TSequenceSet) Bbox() Bbox { return ss.bbox }

// FindSequence locates the sequence enclosing t by binary search. When
// no sequence contains t, pos is the index of the first sequence
// starting after t.
func (ss *TSequenceSet) FindSequence(t ttime.Timestamp) (pos int, found bool) {
	pos = sort.Search(len(ss.seqs), func(i int) bool {
		end := ss.seqs[i].EndTimestamp()
		return end > t || (end == t && ss.seqs[i].upperInc)
	})
	if pos < len(ss.seqs) && ss.seqs[pos].containsTimestamp(t) {
		return pos, true
	}

	return pos, false
}

// ValueAt evaluates the set at t by locating the enclosing sequence and
// delegating to it.
func (ss *TSequenceSet) ValueAt(t ttime.Timestamp) (datum.Datum, bool) {
	pos, found := ss.FindSequence(t)
	if !found {
		return datum.Datum{}, false
	}

	return ss.seqs[pos].ValueAt(t)
}

// Equal reports semantic equality.
func (ss *TSequenceSet) Equal(other Temporal) bool {
	if ss.BaseType() != other.BaseType() {
		return false
	}
	switch o := other.(type) {
	case *TSequenceSet:
		if len(ss.seqs) != len(o.seqs) {
			return false
		}
		for i := range ss.seqs {
			if !ss.seqs[i].equalSeq(o.seqs[i]) {
				return false
			}
		}
		return true
	case *TSequence:
		return len(ss.seqs) == 1 && ss.seqs[0].equalSeq(o)
	case *TInstant:
		return len(ss.seqs) == 1 && o.Equal(ss.seqs[0])
	default:
		return false
	}
}

// String formats the set in curly-brace notation.
func (ss *TSequenceSet) String() string {
	parts := make([]string, len(ss.seqs))
	for i, s := range ss.seqs {
		parts[i] = s.String()
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
