package temporal

import (
	"fmt"

	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/ttime"
)

// Time transformations: shifting a value along the time axis and
// scaling its duration. Both allocate a fresh value with a recomputed
// bounding box, except when the transformation leaves the value
// unchanged (a zero shift, or a value without duration), where the
// input is returned.

// Shift returns tv moved by delta microseconds along the time axis.
func Shift(tv Temporal, delta int64) Temporal {
	if tv == nil || delta == 0 {
		return tv
	}

	move := func(instants []TInstant) []TInstant {
		out := make([]TInstant, len(instants))
		for i := range instants {
			out[i] = TInstant{
				value: instants[i].value.Clone(),
				t:     instants[i].t + ttime.Timestamp(delta),
			}
		}
		return out
	}

	switch t := tv.(type) {
	case *TInstant:
		inst := TInstant{value: t.value.Clone(), t: t.t + ttime.Timestamp(delta)}
		inst.bbox = instantsBbox([]TInstant{inst}, true, true)
		return &inst
	case *TInstantSet:
		return sealInstants(move(t.instants))
	case *TSequence:
		return newTSequenceFromOwned(move(t.instants), t.lowerInc, t.upperInc, t.interp)
	case *TSequenceSet:
		frags := make([]*TSequence, len(t.seqs))
		for i, s := range t.seqs {
			frags[i] = Shift(s, delta).(*TSequence)
		}
		return newTSequenceSetFromOwned(frags)
	default:
		return nil
	}
}

// ScaleTime returns tv stretched so its total duration equals duration
// microseconds, keeping the start timestamp fixed. Fails with
// errs.ErrBadBounds when duration is not positive; a value whose start
// and end timestamps coincide is returned unchanged.
func ScaleTime(tv Temporal, duration int64) (Temporal, error) {
	if tv == nil {
		return nil, nil
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", errs.ErrBadBounds)
	}

	start := tv.StartTimestamp()
	extent := int64(tv.EndTimestamp() - start)
	if extent == 0 {
		return tv, nil
	}
	scale := float64(duration) / float64(extent)

	rescale := func(instants []TInstant) []TInstant {
		out := make([]TInstant, len(instants))
		for i := range instants {
			offset := float64(instants[i].t-start) * scale
			out[i] = TInstant{
				value: instants[i].value.Clone(),
				t:     start + ttime.Timestamp(offset),
			}
		}
		return out
	}

	switch t := tv.(type) {
	case *TInstant:
		return t, nil
	case *TInstantSet:
		return sealInstants(rescale(t.instants)), nil
	case *TSequence:
		return newTSequenceFromOwned(rescale(t.instants), t.lowerInc, t.upperInc, t.interp), nil
	case *TSequenceSet:
		frags := make([]*TSequence, len(t.seqs))
		for i, s := range t.seqs {
			frags[i] = newTSequenceFromOwned(rescale(s.instants), s.lowerInc, s.upperInc, s.interp)
		}
		return newTSequenceSetFromOwned(frags), nil
	default:
		return nil, nil
	}
}
