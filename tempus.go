// Package tempus provides temporal values: entities whose base value
// evolves over time, with construction, canonical binary serialization,
// restriction, synchronized lifted operators, spatial relations for
// moving points, tiling for analytics, and multidimensional index
// support.
//
// A temporal value binds a base type (boolean, integer, float, text,
// point, network point) to a time dimension through one of four
// structural subtypes:
//
//   - Instant: a single time-stamped value
//   - InstantSet: values defined only at listed instants
//   - Sequence: a continuous trajectory over a period, with step or
//     linear interpolation
//   - SequenceSet: a union of disjoint sequences
//
// # Basic Usage
//
// Building a temporal float and restricting it:
//
//	import (
//	    "github.com/arloliu/tempus"
//	    "github.com/arloliu/tempus/datum"
//	    "github.com/arloliu/tempus/temporal"
//	    "github.com/arloliu/tempus/ttime"
//	)
//
//	t0, _ := ttime.Parse("2000-01-01")
//	t1, _ := ttime.Parse("2000-01-02")
//	seq, _ := temporal.NewTSequence([]*temporal.TInstant{
//	    temporal.MustTInstant(datum.Float8(0), t0),
//	    temporal.MustTInstant(datum.Float8(10), t1),
//	}, true, true, temporal.InterpLinear)
//
//	at := temporal.AtValue(seq, datum.Float8(5)) // single instant at midpoint
//
// Serializing to HexWKB and back:
//
//	hexStr, _ := tempus.EncodeHex(seq)
//	back, _ := tempus.DecodeHex(hexStr)
//	// back.Equal(seq) == true
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the wkb
// codec. The library itself lives in the subpackages: temporal (the
// kernel), wkb (the wire codec), span, box, tile and index. For
// fine-grained control use the subpackages directly.
package tempus

import (
	"github.com/arloliu/tempus/temporal"
	"github.com/arloliu/tempus/wkb"
)

// Encode serializes a temporal value to little-endian WKB.
func Encode(tv temporal.Temporal) ([]byte, error) {
	w, err := wkb.NewWriter(wkb.WithLittleEndian())
	if err != nil {
		return nil, err
	}

	return w.WriteTemporal(tv)
}

// Decode deserializes a temporal value from WKB of either endianness.
func Decode(buf []byte) (temporal.Temporal, error) {
	return wkb.ParseTemporal(buf)
}

// EncodeHex serializes a temporal value to uppercase HexWKB.
func EncodeHex(tv temporal.Temporal) (string, error) {
	w, err := wkb.NewWriter(wkb.WithLittleEndian())
	if err != nil {
		return "", err
	}

	return w.WriteTemporalHex(tv)
}

// DecodeHex deserializes a temporal value from HexWKB.
func DecodeHex(s string) (temporal.Temporal, error) {
	return wkb.ParseTemporalHex(s)
}

// Digest returns the xxHash64 content digest of a temporal value's
// canonical WKB form.
func Digest(tv temporal.Temporal) (uint64, error) {
	return wkb.Digest(tv)
}
