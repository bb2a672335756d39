package wkb

import (
	"fmt"
	"math"

	"github.com/arloliu/tempus/box"
	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/endian"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/internal/options"
	"github.com/arloliu/tempus/internal/pool"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/temporal"
)

// Writer emits WKB for every tempus type in a selectable endianness.
// A Writer is stateless apart from its configuration and safe for
// concurrent use.
type Writer struct {
	engine endian.EndianEngine
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithLittleEndian makes the writer emit little-endian WKB (default).
func WithLittleEndian() WriterOption {
	return options.NoError(func(w *Writer) {
		w.engine = endian.GetLittleEndianEngine()
	})
}

// WithBigEndian makes the writer emit big-endian WKB.
func WithBigEndian() WriterOption {
	return options.NoError(func(w *Writer) {
		w.engine = endian.GetBigEndianEngine()
	})
}

// NewWriter returns a Writer configured by the given options.
func NewWriter(opts ...WriterOption) (*Writer, error) {
	w := &Writer{engine: endian.GetLittleEndianEngine()}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// endianFlag returns the endian byte matching the writer's engine.
func (w *Writer) endianFlag() byte {
	if w.engine == endian.GetBigEndianEngine() {
		return wkbBigEndian
	}

	return wkbLittleEndian
}

// WriteTemporal encodes a temporal value.
func (w *Writer) WriteTemporal(tv temporal.Temporal) ([]byte, error) {
	if tv == nil {
		return nil, fmt.Errorf("%w: nil temporal value", errs.ErrBadWKBType)
	}
	code, err := temporalTypeCode(tv.BaseType())
	if err != nil {
		return nil, err
	}

	bb := pool.GetWKBBuffer()
	defer pool.PutWKBBuffer(bb)
	buf := bb.B

	var hasZ, geodetic, hasSRID bool
	var srid int32
	bt := tv.BaseType()
	if bt == datum.TypeGeomPoint || bt == datum.TypeGeogPoint {
		p := tv.InstantN(0).Point()
		hasZ = p.HasZ
		geodetic = p.Geodetic
		hasSRID = true
		srid = p.SRID
	}

	buf = append(buf, w.endianFlag())
	buf = w.engine.AppendUint16(buf, uint16(code))
	buf = append(buf, packFlags(hasZ, geodetic, hasSRID, tv.Interpolation(), tv.Subtype()))
	if hasSRID {
		buf = w.engine.AppendUint32(buf, uint32(srid))
	}

	switch t := tv.(type) {
	case *temporal.TInstant:
		buf, err = w.appendInstant(buf, t)
	case *temporal.TInstantSet:
		buf = w.engine.AppendUint32(buf, uint32(t.NumInstants()))
		buf, err = w.appendInstants(buf, t)
	case *temporal.TSequence:
		buf, err = w.appendSequence(buf, t)
	case *temporal.TSequenceSet:
		buf = w.engine.AppendUint32(buf, uint32(t.NumSequences()))
		for _, seq := range t.Sequences() {
			buf, err = w.appendSequence(buf, seq)
			if err != nil {
				break
			}
		}
	default:
		err = fmt.Errorf("%w: subtype %s", errs.ErrBadWKBType, tv.Subtype())
	}
	if err != nil {
		return nil, err
	}

	// Hand the grown backing array back to the pool and return a copy
	// owned by the caller.
	bb.B = buf
	out := make([]byte, len(buf))
	copy(out, buf)

	return out, nil
}

// appendSequence emits count, bound-inclusivity byte and instants.
func (w *Writer) appendSequence(buf []byte, seq *temporal.TSequence) ([]byte, error) {
	buf = w.engine.AppendUint32(buf, uint32(seq.NumInstants()))
	var bounds byte
	if seq.LowerInc() {
		bounds |= boundLowerInc
	}
	if seq.UpperInc() {
		bounds |= boundUpperInc
	}
	buf = append(buf, bounds)

	return w.appendInstants(buf, seq)
}

// appendInstants emits each instant of a temporal value in time order.
func (w *Writer) appendInstants(buf []byte, tv temporal.Temporal) ([]byte, error) {
	var err error
	for i := 0; i < tv.NumInstants(); i++ {
		buf, err = w.appendInstant(buf, tv.InstantN(i))
		if err != nil {
			return nil, err
		}
	}

	return buf, nil
}

// appendInstant emits the base value followed by the 8-byte timestamp.
func (w *Writer) appendInstant(buf []byte, inst *temporal.TInstant) ([]byte, error) {
	buf, err := w.appendDatum(buf, inst.Value())
	if err != nil {
		return nil, err
	}

	return w.engine.AppendUint64(buf, uint64(inst.Timestamp())), nil
}

// appendDatum emits a base value with the width of its base type.
func (w *Writer) appendDatum(buf []byte, d datum.Datum) ([]byte, error) {
	switch d.Type() {
	case datum.TypeBool:
		if d.BoolVal() {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil
	case datum.TypeInt4:
		return w.engine.AppendUint32(buf, uint32(d.Int4Val())), nil
	case datum.TypeInt8:
		return w.engine.AppendUint64(buf, uint64(d.Int8Val())), nil
	case datum.TypeFloat8:
		return w.engine.AppendUint64(buf, math.Float64bits(d.Float8Val())), nil
	case datum.TypeTimestampTz:
		return w.engine.AppendUint64(buf, uint64(d.TimestampVal())), nil
	case datum.TypeText:
		s := d.TextVal()
		buf = w.engine.AppendUint64(buf, uint64(len(s)))
		return append(buf, s...), nil
	case datum.TypeGeomPoint, datum.TypeGeogPoint:
		p := d.PointVal()
		buf = w.engine.AppendUint64(buf, math.Float64bits(p.X))
		buf = w.engine.AppendUint64(buf, math.Float64bits(p.Y))
		if p.HasZ {
			buf = w.engine.AppendUint64(buf, math.Float64bits(p.Z))
		}
		return buf, nil
	case datum.TypeNPoint:
		np := d.NPointVal()
		buf = w.engine.AppendUint64(buf, uint64(np.RouteID))
		return w.engine.AppendUint64(buf, math.Float64bits(np.Position)), nil
	default:
		return nil, fmt.Errorf("%w: base type %s", errs.ErrBadWKBType, d.Type())
	}
}

/*****************************************************************************
 * Spans and boxes
 *****************************************************************************/

// WriteSpan encodes a span.
func (w *Writer) WriteSpan(s span.Span) ([]byte, error) {
	buf := []byte{w.endianFlag()}
	buf = w.engine.AppendUint16(buf, uint16(TypeSpan))
	buf = append(buf, byte(s.Type()))

	return w.appendSpanBody(buf, s)
}

// appendSpanBody emits bounds byte, lower and upper values.
func (w *Writer) appendSpanBody(buf []byte, s span.Span) ([]byte, error) {
	var bounds byte
	if s.LowerInc {
		bounds |= boundLowerInc
	}
	if s.UpperInc {
		bounds |= boundUpperInc
	}
	buf = append(buf, bounds)
	buf, err := w.appendDatum(buf, s.Lower)
	if err != nil {
		return nil, err
	}

	return w.appendDatum(buf, s.Upper)
}

// WriteSpanSet encodes a span set.
func (w *Writer) WriteSpanSet(ss span.Set) ([]byte, error) {
	buf := []byte{w.endianFlag()}
	buf = w.engine.AppendUint16(buf, uint16(TypeSpanSet))
	if ss.IsEmpty() {
		buf = append(buf, 0)
		return w.engine.AppendUint32(buf, 0), nil
	}

	buf = append(buf, byte(ss.SpanN(0).Type()))
	buf = w.engine.AppendUint32(buf, uint32(ss.NumSpans()))
	var err error
	for _, s := range ss.Spans() {
		buf, err = w.appendSpanBody(buf, s)
		if err != nil {
			return nil, err
		}
	}

	return buf, nil
}

// WriteTBox encodes a value-by-time bounding box.
func (w *Writer) WriteTBox(b box.TBox) ([]byte, error) {
	buf := []byte{w.endianFlag()}
	buf = w.engine.AppendUint16(buf, uint16(TypeTBox))
	var flags byte
	if b.HasX {
		flags |= tboxHasX
	}
	if b.HasT {
		flags |= tboxHasT
	}
	buf = append(buf, flags)

	var err error
	if b.HasX {
		buf = append(buf, byte(b.Span.Type()))
		buf, err = w.appendSpanBody(buf, b.Span)
		if err != nil {
			return nil, err
		}
	}
	if b.HasT {
		buf, err = w.appendSpanBody(buf, b.Period)
		if err != nil {
			return nil, err
		}
	}

	return buf, nil
}

// WriteSTBox encodes a space-by-time bounding box.
func (w *Writer) WriteSTBox(b box.STBox) ([]byte, error) {
	buf := []byte{w.endianFlag()}
	buf = w.engine.AppendUint16(buf, uint16(TypeSTBox))
	var flags byte
	if b.HasX {
		flags |= stboxHasX | stboxHasSRID
	}
	if b.HasZ {
		flags |= stboxHasZ
	}
	if b.HasT {
		flags |= stboxHasT
	}
	if b.Geodetic {
		flags |= stboxGeodetic
	}
	buf = append(buf, flags)

	if b.HasX {
		buf = w.engine.AppendUint32(buf, uint32(b.SRID))
		buf = w.engine.AppendUint64(buf, math.Float64bits(b.Xmin))
		buf = w.engine.AppendUint64(buf, math.Float64bits(b.Xmax))
		buf = w.engine.AppendUint64(buf, math.Float64bits(b.Ymin))
		buf = w.engine.AppendUint64(buf, math.Float64bits(b.Ymax))
		if b.HasZ {
			buf = w.engine.AppendUint64(buf, math.Float64bits(b.Zmin))
			buf = w.engine.AppendUint64(buf, math.Float64bits(b.Zmax))
		}
	}
	if b.HasT {
		buf, _ = w.appendSpanBody(buf, b.Period)
	}

	return buf, nil
}
