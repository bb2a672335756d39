package wkb

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/temporal"
)

// HexWKB is the WKB byte stream encoded as uppercase-hex ASCII.

// EncodeHex returns the uppercase-hex encoding of a WKB buffer.
func EncodeHex(buf []byte) string {
	return strings.ToUpper(hex.EncodeToString(buf))
}

// DecodeHex decodes an uppercase- or lowercase-hex WKB string back to
// bytes.
func DecodeHex(s string) ([]byte, error) {
	buf, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrBadHex, err)
	}

	return buf, nil
}

// WriteTemporalHex encodes a temporal value as HexWKB.
func (w *Writer) WriteTemporalHex(tv temporal.Temporal) (string, error) {
	buf, err := w.WriteTemporal(tv)
	if err != nil {
		return "", err
	}

	return EncodeHex(buf), nil
}

// ParseTemporalHex decodes a temporal value from HexWKB.
func ParseTemporalHex(s string) (temporal.Temporal, error) {
	buf, err := DecodeHex(s)
	if err != nil {
		return nil, err
	}

	return ParseTemporal(buf)
}
