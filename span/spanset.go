package span

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
)

// Set is an ordered sequence of non-overlapping, non-adjacent spans over
// one base type. The zero Set is the empty set.
type Set struct {
	spans []Span
}

// NewSet normalizes the given spans into a set: sorts them, merges
// overlapping and adjacent spans, and validates a homogeneous base type.
func NewSet(spans ...Span) (Set, error) {
	if len(spans) == 0 {
		return Set{}, nil
	}
	bt := spans[0].Type()
	for _, s := range spans[1:] {
		if s.Type() != bt {
			return Set{}, fmt.Errorf("%w: %s vs %s", errs.ErrBaseMismatch, bt, s.Type())
		}
	}

	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		c := sorted[i].Lower.Cmp(sorted[j].Lower)
		if c != 0 {
			return c < 0
		}

		return sorted[i].LowerInc && !sorted[j].LowerInc
	})

	merged := make([]Span, 0, len(sorted))
	cur := sorted[0]
	for _, s := range sorted[1:] {
		if cur.Overlaps(s) || cur.Adjacent(s) {
			cur = cur.Extend(s)
			continue
		}
		merged = append(merged, cur)
		cur = s
	}
	merged = append(merged, cur)

	return Set{spans: merged}, nil
}

// MustSet is NewSet that panics on error; intended for literals in tests.
func MustSet(spans ...Span) Set {
	ss, err := NewSet(spans...)
	if err != nil {
		panic(err)
	}

	return ss
}

// IsEmpty reports whether the set has no spans.
func (ss Set) IsEmpty() bool { return len(ss.spans) == 0 }

// NumSpans returns the number of spans in the set.
func (ss Set) NumSpans() int { return len(ss.spans) }

// SpanN returns the n-th span of the set.
func (ss Set) SpanN(n int) Span { return ss.spans[n] }

// Spans returns a copy of the spans in order.
func (ss Set) Spans() []Span {
	out := make([]Span, len(ss.spans))
	copy(out, ss.spans)

	return out
}

// Extent returns the smallest span covering the set, or false when the
// set is empty.
func (ss Set) Extent() (Span, bool) {
	if ss.IsEmpty() {
		return Span{}, false
	}
	ext := ss.spans[0]
	last := ss.spans[len(ss.spans)-1]
	ext.Upper = last.Upper
	ext.UpperInc = last.UpperInc

	return ext, true
}

// Equal reports span-wise equality.
func (ss Set) Equal(other Set) bool {
	if len(ss.spans) != len(other.spans) {
		return false
	}
	for i := range ss.spans {
		if !ss.spans[i].Equal(other.spans[i]) {
			return false
		}
	}

	return true
}

// Contains reports whether any span of the set contains the value.
// Binary search over the ordered spans.
func (ss Set) Contains(v datum.Datum) bool {
	lo, hi := 0, len(ss.spans)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		s := ss.spans[mid]
		if s.Contains(v) {
			return true
		}
		if v.Cmp(s.Lower) < 0 {
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}

	return false
}

// ContainsSpan reports whether some span of the set contains s entirely.
func (ss Set) ContainsSpan(s Span) bool {
	for _, m := range ss.spans {
		if m.ContainsSpan(s) {
			return true
		}
		if m.Right(s) {
			break
		}
	}

	return false
}

// Overlaps reports whether the set shares at least one value with s.
func (ss Set) Overlaps(s Span) bool {
	if ext, ok := ss.Extent(); !ok || !ext.Overlaps(s) {
		return false
	}
	for _, m := range ss.spans {
		if m.Overlaps(s) {
			return true
		}
		if m.Right(s) {
			break
		}
	}

	return false
}

// OverlapsSet reports whether the two sets share at least one value.
// Merge-join over the ordered spans in O(n + m).
func (ss Set) OverlapsSet(other Set) bool {
	i, j := 0, 0
	for i < len(ss.spans) && j < len(other.spans) {
		a, b := ss.spans[i], other.spans[j]
		if a.Overlaps(b) {
			return true
		}
		if a.Left(b) {
			i++
		} else {
			j++
		}
	}

	return false
}

// Union returns the normalized union of the two sets.
func (ss Set) Union(other Set) Set {
	all := make([]Span, 0, len(ss.spans)+len(other.spans))
	all = append(all, ss.spans...)
	all = append(all, other.spans...)
	if len(all) == 0 {
		return Set{}
	}
	u, err := NewSet(all...)
	if err != nil {
		// Both inputs were validated sets of one base type.
		panic(err)
	}

	return u
}

// Intersection returns the common values of the two sets as a set.
// Merge-join over the ordered spans in O(n + m).
func (ss Set) Intersection(other Set) Set {
	var result []Span
	i, j := 0, 0
	for i < len(ss.spans) && j < len(other.spans) {
		a, b := ss.spans[i], other.spans[j]
		if inter, ok := a.Intersection(b); ok {
			result = append(result, inter)
		}
		// Advance the span that ends first.
		if a.OverLeft(b) {
			i++
		} else {
			j++
		}
	}

	return Set{spans: result}
}

// Minus returns the values of the set not covered by other.
func (ss Set) Minus(other Set) Set {
	if other.IsEmpty() {
		return Set{spans: append([]Span(nil), ss.spans...)}
	}

	var result []Span
	for _, s := range ss.spans {
		rest := []Span{s}
		for _, o := range other.spans {
			var next []Span
			for _, r := range rest {
				next = append(next, r.Minus(o)...)
			}
			rest = next
			if len(rest) == 0 {
				break
			}
		}
		result = append(result, rest...)
	}

	return Set{spans: result}
}

// MinusSpan returns the values of the set not covered by s.
func (ss Set) MinusSpan(s Span) Set {
	return ss.Minus(Set{spans: []Span{s}})
}

// AtSpan returns the values of the set inside s.
func (ss Set) AtSpan(s Span) Set {
	return ss.Intersection(Set{spans: []Span{s}})
}

// String formats the set in curly-brace notation.
func (ss Set) String() string {
	if ss.IsEmpty() {
		return "{}"
	}
	parts := make([]string, len(ss.spans))
	for i, s := range ss.spans {
		parts[i] = s.String()
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
