package wkb

import (
	"github.com/arloliu/tempus/internal/hash"
	"github.com/arloliu/tempus/temporal"
)

// Digest returns the 64-bit content digest of a temporal value: the
// xxHash64 of its canonical little-endian WKB. Semantically equal
// values with the same declared subtype share a digest, so it can key
// caches and interning tables.
func Digest(tv temporal.Temporal) (uint64, error) {
	w, err := NewWriter(WithLittleEndian())
	if err != nil {
		return 0, err
	}
	buf, err := w.WriteTemporal(tv)
	if err != nil {
		return 0, err
	}

	return hash.Bytes(buf), nil
}
