package wkb

import (
	"fmt"
	"math"

	"github.com/arloliu/tempus/box"
	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/geo"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/temporal"
	"github.com/arloliu/tempus/ttime"
)

// parseState walks a WKB buffer. Every read is bounds-checked against
// the declared length; swap marks a stream whose endianness differs
// from the host representation used for decoding.
type parseState struct {
	buf  []byte
	pos  int
	swap bool

	// Temporal header fields, valid while parsing a temporal payload.
	baseType datum.BaseType
	hasZ     bool
	geodetic bool
	srid     int32
	interp   temporal.Interp
}

// need checks that n more bytes are available.
func (s *parseState) need(n int) error {
	if s.pos+n > len(s.buf) {
		return fmt.Errorf("%w: need %d bytes at offset %d of %d",
			errs.ErrBufOverrun, n, s.pos, len(s.buf))
	}

	return nil
}

func (s *parseState) readByte() (byte, error) {
	if err := s.need(1); err != nil {
		return 0, err
	}
	b := s.buf[s.pos]
	s.pos++

	return b, nil
}

func (s *parseState) readUint16() (uint16, error) {
	if err := s.need(2); err != nil {
		return 0, err
	}
	b0, b1 := s.buf[s.pos], s.buf[s.pos+1]
	s.pos += 2
	if s.swap {
		b0, b1 = b1, b0
	}

	return uint16(b0) | uint16(b1)<<8, nil
}

func (s *parseState) readUint32() (uint32, error) {
	if err := s.need(4); err != nil {
		return 0, err
	}
	var v uint32
	for i := 0; i < 4; i++ {
		idx := i
		if s.swap {
			idx = 3 - i
		}
		v |= uint32(s.buf[s.pos+idx]) << (8 * i)
	}
	s.pos += 4

	return v, nil
}

func (s *parseState) readUint64() (uint64, error) {
	if err := s.need(8); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < 8; i++ {
		idx := i
		if s.swap {
			idx = 7 - i
		}
		v |= uint64(s.buf[s.pos+idx]) << (8 * i)
	}
	s.pos += 8

	return v, nil
}

func (s *parseState) readFloat64() (float64, error) {
	bits, err := s.readUint64()
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(bits), nil
}

func (s *parseState) readTimestamp() (ttime.Timestamp, error) {
	bits, err := s.readUint64()
	if err != nil {
		return 0, err
	}

	return ttime.Timestamp(bits), nil
}

// done reports a fully-consumed buffer; trailing bytes are an error.
func (s *parseState) done() error {
	if s.pos != len(s.buf) {
		return fmt.Errorf("%w: %d trailing bytes", errs.ErrBufOverrun, len(s.buf)-s.pos)
	}

	return nil
}

// newParseState reads the endian flag and prepares the byte-swap mode.
func newParseState(buf []byte) (*parseState, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", errs.ErrBufOverrun)
	}
	s := &parseState{buf: buf, pos: 1}
	switch buf[0] {
	case wkbLittleEndian:
		s.swap = false
	case wkbBigEndian:
		s.swap = true
	default:
		return nil, fmt.Errorf("%w: endian flag 0x%02x", errs.ErrBadWKBFlags, buf[0])
	}

	return s, nil
}

/*****************************************************************************
 * Entry points
 *****************************************************************************/

// ParseTemporal decodes a temporal value from WKB.
func ParseTemporal(buf []byte) (temporal.Temporal, error) {
	s, err := newParseState(buf)
	if err != nil {
		return nil, err
	}
	tv, err := s.parseTemporal()
	if err != nil {
		return nil, err
	}
	if err := s.done(); err != nil {
		return nil, err
	}

	return tv, nil
}

// ParseSpan decodes a span from WKB.
func ParseSpan(buf []byte) (span.Span, error) {
	s, err := newParseState(buf)
	if err != nil {
		return span.Span{}, err
	}
	code, err := s.readUint16()
	if err != nil {
		return span.Span{}, err
	}
	if TypeCode(code) != TypeSpan {
		return span.Span{}, fmt.Errorf("%w: expected Span, got %s", errs.ErrBadWKBType, TypeCode(code))
	}
	bt, err := s.readBaseType()
	if err != nil {
		return span.Span{}, err
	}
	sp, err := s.parseSpanBody(bt)
	if err != nil {
		return span.Span{}, err
	}
	if err := s.done(); err != nil {
		return span.Span{}, err
	}

	return sp, nil
}

// ParseSpanSet decodes a span set from WKB.
func ParseSpanSet(buf []byte) (span.Set, error) {
	s, err := newParseState(buf)
	if err != nil {
		return span.Set{}, err
	}
	code, err := s.readUint16()
	if err != nil {
		return span.Set{}, err
	}
	if TypeCode(code) != TypeSpanSet {
		return span.Set{}, fmt.Errorf("%w: expected SpanSet, got %s", errs.ErrBadWKBType, TypeCode(code))
	}
	btByte, err := s.readByte()
	if err != nil {
		return span.Set{}, err
	}
	count, err := s.readUint32()
	if err != nil {
		return span.Set{}, err
	}
	if count == 0 {
		return span.Set{}, s.done()
	}
	bt := datum.BaseType(btByte)
	if !bt.Valid() {
		return span.Set{}, fmt.Errorf("%w: base type 0x%02x", errs.ErrBadWKBType, btByte)
	}

	spans := make([]span.Span, 0, count)
	for i := uint32(0); i < count; i++ {
		sp, err := s.parseSpanBody(bt)
		if err != nil {
			return span.Set{}, err
		}
		spans = append(spans, sp)
	}
	if err := s.done(); err != nil {
		return span.Set{}, err
	}

	return span.NewSet(spans...)
}

// ParseTBox decodes a value-by-time box from WKB.
func ParseTBox(buf []byte) (box.TBox, error) {
	s, err := newParseState(buf)
	if err != nil {
		return box.TBox{}, err
	}
	code, err := s.readUint16()
	if err != nil {
		return box.TBox{}, err
	}
	if TypeCode(code) != TypeTBox {
		return box.TBox{}, fmt.Errorf("%w: expected TBox, got %s", errs.ErrBadWKBType, TypeCode(code))
	}
	flags, err := s.readByte()
	if err != nil {
		return box.TBox{}, err
	}

	var b box.TBox
	if flags&tboxHasX != 0 {
		bt, err := s.readBaseType()
		if err != nil {
			return box.TBox{}, err
		}
		b.Span, err = s.parseSpanBody(bt)
		if err != nil {
			return box.TBox{}, err
		}
		b.HasX = true
	}
	if flags&tboxHasT != 0 {
		b.Period, err = s.parseSpanBody(datum.TypeTimestampTz)
		if err != nil {
			return box.TBox{}, err
		}
		b.HasT = true
	}
	if err := s.done(); err != nil {
		return box.TBox{}, err
	}

	return b, nil
}

// ParseSTBox decodes a space-by-time box from WKB.
func ParseSTBox(buf []byte) (box.STBox, error) {
	s, err := newParseState(buf)
	if err != nil {
		return box.STBox{}, err
	}
	code, err := s.readUint16()
	if err != nil {
		return box.STBox{}, err
	}
	if TypeCode(code) != TypeSTBox {
		return box.STBox{}, fmt.Errorf("%w: expected STBox, got %s", errs.ErrBadWKBType, TypeCode(code))
	}
	flags, err := s.readByte()
	if err != nil {
		return box.STBox{}, err
	}

	var b box.STBox
	b.Geodetic = flags&stboxGeodetic != 0
	if flags&stboxHasX != 0 {
		b.HasX = true
		b.HasZ = flags&stboxHasZ != 0
		if flags&stboxHasSRID != 0 {
			srid, err := s.readUint32()
			if err != nil {
				return box.STBox{}, err
			}
			b.SRID = int32(srid)
		}
		coords := []*float64{&b.Xmin, &b.Xmax, &b.Ymin, &b.Ymax}
		if b.HasZ {
			coords = append(coords, &b.Zmin, &b.Zmax)
		}
		for _, c := range coords {
			v, err := s.readFloat64()
			if err != nil {
				return box.STBox{}, err
			}
			*c = v
		}
	}
	if flags&stboxHasT != 0 {
		var err error
		b.Period, err = s.parseSpanBody(datum.TypeTimestampTz)
		if err != nil {
			return box.STBox{}, err
		}
		b.HasT = true
	}
	if err := s.done(); err != nil {
		return box.STBox{}, err
	}

	return b, nil
}

/*****************************************************************************
 * Temporal payloads
 *****************************************************************************/

// parseTemporal reads the temporal header and dispatches on the subtype.
func (s *parseState) parseTemporal() (temporal.Temporal, error) {
	code, err := s.readUint16()
	if err != nil {
		return nil, err
	}
	bt, err := temporalBaseType(TypeCode(code))
	if err != nil {
		return nil, err
	}
	flags, err := s.readByte()
	if err != nil {
		return nil, err
	}
	hasZ, geodetic, hasSRID, interp, subtype, err := unpackFlags(flags)
	if err != nil {
		return nil, err
	}

	s.baseType = bt
	s.hasZ = hasZ
	s.geodetic = geodetic
	s.interp = interp
	if hasSRID {
		srid, err := s.readUint32()
		if err != nil {
			return nil, err
		}
		s.srid = int32(srid)
	}

	switch subtype {
	case temporal.SubtypeInstant:
		return s.parseInstant()
	case temporal.SubtypeInstantSet:
		return s.parseInstantSet()
	case temporal.SubtypeSequence:
		return s.parseSequence()
	case temporal.SubtypeSequenceSet:
		return s.parseSequenceSet()
	default:
		return nil, fmt.Errorf("%w: subtype %d", errs.ErrBadWKBFlags, subtype)
	}
}

func (s *parseState) parseInstant() (*temporal.TInstant, error) {
	v, err := s.parseDatum()
	if err != nil {
		return nil, err
	}
	t, err := s.readTimestamp()
	if err != nil {
		return nil, err
	}

	return temporal.NewTInstant(v, t)
}

func (s *parseState) parseInstantSet() (*temporal.TInstantSet, error) {
	count, err := s.readUint32()
	if err != nil {
		return nil, err
	}
	instants, err := s.parseInstants(count)
	if err != nil {
		return nil, err
	}

	return temporal.NewTInstantSet(instants)
}

func (s *parseState) parseSequence() (*temporal.TSequence, error) {
	count, err := s.readUint32()
	if err != nil {
		return nil, err
	}
	bounds, err := s.readByte()
	if err != nil {
		return nil, err
	}
	instants, err := s.parseInstants(count)
	if err != nil {
		return nil, err
	}
	interp := s.interp
	if interp == temporal.InterpNone {
		interp = temporal.InterpStep
	}

	return temporal.NewTSequence(instants,
		bounds&boundLowerInc != 0, bounds&boundUpperInc != 0, interp)
}

func (s *parseState) parseSequenceSet() (*temporal.TSequenceSet, error) {
	seqCount, err := s.readUint32()
	if err != nil {
		return nil, err
	}
	if seqCount == 0 {
		return nil, fmt.Errorf("%w: empty sequence set", errs.ErrBadWKBFlags)
	}
	seqs := make([]*temporal.TSequence, 0, seqCount)
	for i := uint32(0); i < seqCount; i++ {
		seq, err := s.parseSequence()
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
	}

	return temporal.NewTSequenceSet(seqs)
}

func (s *parseState) parseInstants(count uint32) ([]*temporal.TInstant, error) {
	if count == 0 {
		return nil, fmt.Errorf("%w: zero instants", errs.ErrBadWKBFlags)
	}
	// Each instant needs at least one payload byte plus its timestamp.
	if err := s.need(int(count) * 9); err != nil {
		return nil, err
	}

	instants := make([]*temporal.TInstant, 0, count)
	for i := uint32(0); i < count; i++ {
		v, err := s.parseDatum()
		if err != nil {
			return nil, err
		}
		t, err := s.readTimestamp()
		if err != nil {
			return nil, err
		}
		inst, err := temporal.NewTInstant(v, t)
		if err != nil {
			return nil, err
		}
		instants = append(instants, inst)
	}

	return instants, nil
}

// parseDatum reads one base value of the current temporal base type.
func (s *parseState) parseDatum() (datum.Datum, error) {
	return s.parseDatumOf(s.baseType)
}

func (s *parseState) parseDatumOf(bt datum.BaseType) (datum.Datum, error) {
	switch bt {
	case datum.TypeBool:
		b, err := s.readByte()
		if err != nil {
			return datum.Datum{}, err
		}
		return datum.Bool(b != 0), nil
	case datum.TypeInt4:
		v, err := s.readUint32()
		if err != nil {
			return datum.Datum{}, err
		}
		return datum.Int4(int32(v)), nil
	case datum.TypeInt8:
		v, err := s.readUint64()
		if err != nil {
			return datum.Datum{}, err
		}
		return datum.Int8(int64(v)), nil
	case datum.TypeFloat8:
		v, err := s.readFloat64()
		if err != nil {
			return datum.Datum{}, err
		}
		return datum.Float8(v), nil
	case datum.TypeTimestampTz:
		t, err := s.readTimestamp()
		if err != nil {
			return datum.Datum{}, err
		}
		return datum.TimestampTz(t), nil
	case datum.TypeText:
		n, err := s.readUint64()
		if err != nil {
			return datum.Datum{}, err
		}
		if n > uint64(len(s.buf)-s.pos) {
			return datum.Datum{}, fmt.Errorf("%w: text length %d", errs.ErrBufOverrun, n)
		}
		str := string(s.buf[s.pos : s.pos+int(n)])
		s.pos += int(n)
		return datum.Text(str), nil
	case datum.TypeGeomPoint, datum.TypeGeogPoint:
		p := &geo.Point{SRID: s.srid, HasZ: s.hasZ, Geodetic: s.geodetic}
		var err error
		if p.X, err = s.readFloat64(); err != nil {
			return datum.Datum{}, err
		}
		if p.Y, err = s.readFloat64(); err != nil {
			return datum.Datum{}, err
		}
		if s.hasZ {
			if p.Z, err = s.readFloat64(); err != nil {
				return datum.Datum{}, err
			}
		}
		if bt == datum.TypeGeogPoint {
			p.Geodetic = true
			return datum.Geog(p), nil
		}
		return datum.Geom(p), nil
	case datum.TypeNPoint:
		route, err := s.readUint64()
		if err != nil {
			return datum.Datum{}, err
		}
		position, err := s.readFloat64()
		if err != nil {
			return datum.Datum{}, err
		}
		np, err := geo.NewNPoint(int64(route), position)
		if err != nil {
			return datum.Datum{}, err
		}
		return datum.NPoint(np), nil
	default:
		return datum.Datum{}, fmt.Errorf("%w: base type %s", errs.ErrBadWKBType, bt)
	}
}

// readBaseType reads and validates a base type byte.
func (s *parseState) readBaseType() (datum.BaseType, error) {
	b, err := s.readByte()
	if err != nil {
		return 0, err
	}
	bt := datum.BaseType(b)
	if !bt.Valid() {
		return 0, fmt.Errorf("%w: base type 0x%02x", errs.ErrBadWKBType, b)
	}

	return bt, nil
}

// parseSpanBody reads bounds byte, lower and upper values of a span.
func (s *parseState) parseSpanBody(bt datum.BaseType) (span.Span, error) {
	bounds, err := s.readByte()
	if err != nil {
		return span.Span{}, err
	}
	lower, err := s.parseDatumOf(bt)
	if err != nil {
		return span.Span{}, err
	}
	upper, err := s.parseDatumOf(bt)
	if err != nil {
		return span.Span{}, err
	}

	return span.Make(lower, upper, bounds&boundLowerInc != 0, bounds&boundUpperInc != 0)
}
