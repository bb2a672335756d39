// Package wkb implements the binary wire codec (Well-Known Binary) for
// every tempus type: the four temporal subtypes over every base type,
// spans, span sets, and bounding boxes, plus the uppercase-hex wrapper
// and a framed multi-value packed blob.
//
// Every top-level object starts with a one-byte endian flag (0x00 big,
// 0x01 little); all multi-byte scalars follow that byte order. The
// reader byte-swaps big-endian streams, bounds-checks every read
// against the declared length, and dispatches on a centralized type
// code table.
package wkb

import (
	"fmt"

	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/temporal"
)

// TypeCode identifies the encoded type in the two bytes after the
// endian flag.
type TypeCode uint16

const (
	// TypeTBool is a temporal boolean.
	TypeTBool TypeCode = 0x01
	// TypeTInt4 is a temporal 32-bit integer.
	TypeTInt4 TypeCode = 0x02
	// TypeTInt8 is a temporal 64-bit integer.
	TypeTInt8 TypeCode = 0x03
	// TypeTFloat8 is a temporal float.
	TypeTFloat8 TypeCode = 0x04
	// TypeTText is a temporal text.
	TypeTText TypeCode = 0x05
	// TypeTGeomPoint is a temporal planar point.
	TypeTGeomPoint TypeCode = 0x06
	// TypeTGeogPoint is a temporal geodetic point.
	TypeTGeogPoint TypeCode = 0x07
	// TypeTNPoint is a temporal network point.
	TypeTNPoint TypeCode = 0x08

	// TypeSpan is a span over an ordered base type.
	TypeSpan TypeCode = 0x14
	// TypeSpanSet is an ordered set of spans.
	TypeSpanSet TypeCode = 0x15
	// TypeTBox is a value-by-time bounding box.
	TypeTBox TypeCode = 0x16
	// TypeSTBox is a space-by-time bounding box.
	TypeSTBox TypeCode = 0x17
)

// String returns the name of the type code.
func (tc TypeCode) String() string {
	switch tc {
	case TypeTBool:
		return "TBool"
	case TypeTInt4:
		return "TInt4"
	case TypeTInt8:
		return "TInt8"
	case TypeTFloat8:
		return "TFloat8"
	case TypeTText:
		return "TText"
	case TypeTGeomPoint:
		return "TGeomPoint"
	case TypeTGeogPoint:
		return "TGeogPoint"
	case TypeTNPoint:
		return "TNPoint"
	case TypeSpan:
		return "Span"
	case TypeSpanSet:
		return "SpanSet"
	case TypeTBox:
		return "TBox"
	case TypeSTBox:
		return "STBox"
	default:
		return "Unknown"
	}
}

// Endian flag values.
const (
	wkbBigEndian    = 0x00
	wkbLittleEndian = 0x01
)

// Temporal flag byte layout.
const (
	flagHasZ         = 0x01
	flagGeodetic     = 0x02
	flagHasSRID      = 0x04
	flagInterpShift  = 3
	flagInterpMask   = 0x18
	flagSubtypeShift = 5
	flagSubtypeMask  = 0x60
)

// Bound-inclusivity byte layout for sequences and spans.
const (
	boundLowerInc = 0x01
	boundUpperInc = 0x02
)

// TBox flag byte layout.
const (
	tboxHasX = 0x01
	tboxHasT = 0x02
)

// STBox flag byte layout.
const (
	stboxHasX     = 0x01
	stboxHasZ     = 0x02
	stboxHasT     = 0x04
	stboxGeodetic = 0x08
	stboxHasSRID  = 0x10
)

// temporalTypeCode maps a base type to its temporal type code.
func temporalTypeCode(bt datum.BaseType) (TypeCode, error) {
	switch bt {
	case datum.TypeBool:
		return TypeTBool, nil
	case datum.TypeInt4:
		return TypeTInt4, nil
	case datum.TypeInt8:
		return TypeTInt8, nil
	case datum.TypeFloat8:
		return TypeTFloat8, nil
	case datum.TypeText:
		return TypeTText, nil
	case datum.TypeGeomPoint:
		return TypeTGeomPoint, nil
	case datum.TypeGeogPoint:
		return TypeTGeogPoint, nil
	case datum.TypeNPoint:
		return TypeTNPoint, nil
	default:
		return 0, fmt.Errorf("%w: base type %s", errs.ErrBadWKBType, bt)
	}
}

// temporalBaseType maps a temporal type code back to its base type.
func temporalBaseType(tc TypeCode) (datum.BaseType, error) {
	switch tc {
	case TypeTBool:
		return datum.TypeBool, nil
	case TypeTInt4:
		return datum.TypeInt4, nil
	case TypeTInt8:
		return datum.TypeInt8, nil
	case TypeTFloat8:
		return datum.TypeFloat8, nil
	case TypeTText:
		return datum.TypeText, nil
	case TypeTGeomPoint:
		return datum.TypeGeomPoint, nil
	case TypeTGeogPoint:
		return datum.TypeGeogPoint, nil
	case TypeTNPoint:
		return datum.TypeNPoint, nil
	default:
		return 0, fmt.Errorf("%w: code 0x%04x", errs.ErrBadWKBType, uint16(tc))
	}
}

// packFlags builds the temporal flag byte.
func packFlags(hasZ, geodetic, hasSRID bool, interp temporal.Interp, subtype temporal.Subtype) byte {
	var f byte
	if hasZ {
		f |= flagHasZ
	}
	if geodetic {
		f |= flagGeodetic
	}
	if hasSRID {
		f |= flagHasSRID
	}
	f |= byte(interp) << flagInterpShift
	f |= byte(subtype-1) << flagSubtypeShift

	return f
}

// unpackFlags decodes the temporal flag byte; unknown bit patterns fail
// with errs.ErrBadWKBFlags.
func unpackFlags(f byte) (hasZ, geodetic, hasSRID bool, interp temporal.Interp, subtype temporal.Subtype, err error) {
	if f&0x80 != 0 {
		return false, false, false, 0, 0,
			fmt.Errorf("%w: reserved bit set in 0x%02x", errs.ErrBadWKBFlags, f)
	}
	hasZ = f&flagHasZ != 0
	geodetic = f&flagGeodetic != 0
	hasSRID = f&flagHasSRID != 0
	interp = temporal.Interp((f & flagInterpMask) >> flagInterpShift)
	if interp > temporal.InterpLinear {
		return false, false, false, 0, 0,
			fmt.Errorf("%w: interpolation %d", errs.ErrBadWKBFlags, interp)
	}
	subtype = temporal.Subtype((f&flagSubtypeMask)>>flagSubtypeShift) + 1
	if !subtype.Valid() {
		return false, false, false, 0, 0,
			fmt.Errorf("%w: subtype %d", errs.ErrBadWKBFlags, subtype)
	}

	return hasZ, geodetic, hasSRID, interp, subtype, nil
}
