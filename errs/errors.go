// Package errs defines sentinel errors for the tempus library.
//
// All validation and codec failures surface one of these sentinels,
// usually wrapped with additional context via fmt.Errorf("%w: ...").
// Callers match with errors.Is:
//
//	seq, err := temporal.NewTSequence(instants, true, true, temporal.InterpLinear)
//	if errors.Is(err, errs.ErrNonMonotonicTime) {
//	    // instants out of order
//	}
package errs

import "errors"

// Construction and validation errors.
var (
	// ErrBadBounds indicates an invalid span or period: lower above upper,
	// or an empty interior (equal bounds with an exclusive side).
	ErrBadBounds = errors.New("invalid span bounds")

	// ErrBadInterp indicates an interpolation incompatible with the base
	// type, e.g. linear interpolation over a discrete base type.
	ErrBadInterp = errors.New("invalid interpolation")

	// ErrNonMonotonicTime indicates instants whose timestamps are not
	// strictly increasing, or duplicate timestamps with distinct values.
	ErrNonMonotonicTime = errors.New("timestamps not strictly increasing")

	// ErrTypeMismatch indicates an operator applied to operands of
	// incompatible temporal types.
	ErrTypeMismatch = errors.New("operand type mismatch")

	// ErrBaseMismatch indicates datums of different base types where a
	// single base type is required.
	ErrBaseMismatch = errors.New("base type mismatch")

	// ErrSRIDMismatch indicates spatial operands with different SRIDs.
	ErrSRIDMismatch = errors.New("SRID mismatch")

	// ErrDimMismatch indicates mixed 2D/3D operands where the operation
	// is not well-defined across dimensions.
	ErrDimMismatch = errors.New("spatial dimension mismatch")

	// ErrSegMismatch indicates interpolation between network points on
	// different route segments.
	ErrSegMismatch = errors.New("network segment mismatch")

	// ErrRangeOverflow indicates timestamp or numeric arithmetic that
	// would cross the representable range, e.g. during bucketing.
	ErrRangeOverflow = errors.New("value out of range")

	// ErrDivZero indicates a temporal division whose divisor is zero at
	// some instant of the common partition.
	ErrDivZero = errors.New("division by zero")

	// ErrEmptyGeom indicates an empty geometry argument where a
	// non-empty geometry is required.
	ErrEmptyGeom = errors.New("empty geometry")
)

// Wire codec errors.
var (
	// ErrBadWKBType indicates an unknown type code in a WKB stream.
	ErrBadWKBType = errors.New("unknown WKB type code")

	// ErrBadWKBFlags indicates an inconsistent WKB flag byte, e.g. an
	// unknown subtype or interpolation bit pattern.
	ErrBadWKBFlags = errors.New("invalid WKB flags")

	// ErrBufOverrun indicates a WKB read past the declared buffer length.
	ErrBufOverrun = errors.New("WKB buffer overrun")

	// ErrBadHex indicates HexWKB input that is not valid hexadecimal.
	ErrBadHex = errors.New("invalid hex encoding")

	// ErrInvalidMagic indicates a packed blob without the expected magic
	// number.
	ErrInvalidMagic = errors.New("invalid packed blob magic")

	// ErrInvalidCompression indicates an unknown compression type byte in
	// a packed blob header.
	ErrInvalidCompression = errors.New("invalid compression type")
)
