package wkb

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/temporal"
	"github.com/arloliu/tempus/ttime"
)

// TestRoundTripProperty checks parse(emit(x)) == x for random float
// sequences in both endiannesses and both binary and hex modes.
func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "n")
		instants := make([]*temporal.TInstant, 0, n)
		ts := rapid.Int64Range(0, 1<<40).Draw(rt, "start")
		for i := 0; i < n; i++ {
			v := rapid.Float64Range(-1e6, 1e6).Draw(rt, "v")
			inst, err := temporal.NewTInstant(datum.Float8(v), ttime.Timestamp(ts))
			if err != nil {
				rt.Fatalf("instant: %v", err)
			}
			instants = append(instants, inst)
			ts += rapid.Int64Range(1, 1<<30).Draw(rt, "gap")
		}

		var tv temporal.Temporal
		var err error
		switch rapid.IntRange(0, 2).Draw(rt, "subtype") {
		case 0:
			tv = instants[0]
		case 1:
			tv, err = temporal.NewTInstantSet(instants)
		default:
			lowerInc := rapid.Bool().Draw(rt, "lowerInc")
			upperInc := rapid.Bool().Draw(rt, "upperInc")
			if n == 1 {
				lowerInc, upperInc = true, true
			}
			tv, err = temporal.NewTSequence(instants, lowerInc, upperInc, temporal.InterpLinear)
		}
		if err != nil {
			rt.Fatalf("build: %v", err)
		}

		var opt WriterOption
		if rapid.Bool().Draw(rt, "big") {
			opt = WithBigEndian()
		} else {
			opt = WithLittleEndian()
		}
		w, err := NewWriter(opt)
		if err != nil {
			rt.Fatalf("writer: %v", err)
		}

		if rapid.Bool().Draw(rt, "hex") {
			hexStr, err := w.WriteTemporalHex(tv)
			if err != nil {
				rt.Fatalf("emit hex: %v", err)
			}
			back, err := ParseTemporalHex(hexStr)
			if err != nil {
				rt.Fatalf("parse hex: %v", err)
			}
			if !tv.Equal(back) {
				rt.Fatalf("hex round trip mismatch: %s vs %s", tv, back)
			}
			return
		}

		buf, err := w.WriteTemporal(tv)
		if err != nil {
			rt.Fatalf("emit: %v", err)
		}
		back, err := ParseTemporal(buf)
		if err != nil {
			rt.Fatalf("parse: %v", err)
		}
		if !tv.Equal(back) {
			rt.Fatalf("round trip mismatch: %s vs %s", tv, back)
		}
	})
}
