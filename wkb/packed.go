package wkb

import (
	"fmt"

	"github.com/arloliu/tempus/compress"
	"github.com/arloliu/tempus/endian"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/internal/options"
	"github.com/arloliu/tempus/internal/pool"
	"github.com/arloliu/tempus/temporal"
)

// Packed blobs store many temporal values in one framed, optionally
// compressed buffer: a fixed header followed by a payload of
// length-prefixed WKB values run through a compression codec.
//
// Header layout (16 bytes, always little-endian):
//
//	offset 0-1   magic number 0x7E01
//	offset 2     format version
//	offset 3     compression type
//	offset 4-7   value count
//	offset 8-11  uncompressed payload size
//	offset 12-15 reserved
const (
	packedMagic      uint16 = 0x7E01
	packedVersion    byte   = 0x01
	packedHeaderSize        = 16
)

// Packer writes packed blobs.
type Packer struct {
	writer      *Writer
	compression compress.CompressionType
}

// PackerOption configures a Packer.
type PackerOption = options.Option[*Packer]

// WithCompression selects the payload compression codec.
func WithCompression(ct compress.CompressionType) PackerOption {
	return options.New(func(p *Packer) error {
		if !ct.Valid() {
			return fmt.Errorf("%w: 0x%02x", errs.ErrInvalidCompression, uint8(ct))
		}
		p.compression = ct
		return nil
	})
}

// WithWriter selects the WKB writer used for the values.
func WithWriter(w *Writer) PackerOption {
	return options.NoError(func(p *Packer) {
		p.writer = w
	})
}

// NewPacker returns a Packer configured by the given options. The
// default packs uncompressed little-endian WKB.
func NewPacker(opts ...PackerOption) (*Packer, error) {
	w, err := NewWriter()
	if err != nil {
		return nil, err
	}
	p := &Packer{writer: w, compression: compress.CompressionNone}
	if err := options.Apply(p, opts...); err != nil {
		return nil, err
	}

	return p, nil
}

// Pack encodes the given temporal values into one packed blob.
func (p *Packer) Pack(values []temporal.Temporal) ([]byte, error) {
	engine := endian.GetLittleEndianEngine()

	pb := pool.GetPackedBuffer()
	defer pool.PutPackedBuffer(pb)
	payload := pb.B
	for _, tv := range values {
		buf, err := p.writer.WriteTemporal(tv)
		if err != nil {
			return nil, err
		}
		payload = engine.AppendUint32(payload, uint32(len(buf)))
		payload = append(payload, buf...)
	}
	pb.B = payload

	codec, err := compress.GetCodec(p.compression)
	if err != nil {
		return nil, err
	}
	compressed, err := codec.Compress(payload)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, packedHeaderSize+len(compressed))
	out = engine.AppendUint16(out, packedMagic)
	out = append(out, packedVersion, byte(p.compression))
	out = engine.AppendUint32(out, uint32(len(values)))
	out = engine.AppendUint32(out, uint32(len(payload)))
	out = engine.AppendUint32(out, 0)

	return append(out, compressed...), nil
}

// Unpack decodes every temporal value of a packed blob.
func Unpack(blob []byte) ([]temporal.Temporal, error) {
	if len(blob) < packedHeaderSize {
		return nil, fmt.Errorf("%w: blob shorter than header", errs.ErrBufOverrun)
	}
	engine := endian.GetLittleEndianEngine()
	if engine.Uint16(blob[0:2]) != packedMagic {
		return nil, errs.ErrInvalidMagic
	}
	if blob[2] != packedVersion {
		return nil, fmt.Errorf("%w: version %d", errs.ErrInvalidMagic, blob[2])
	}
	compression := compress.CompressionType(blob[3])
	count := engine.Uint32(blob[4:8])
	rawSize := engine.Uint32(blob[8:12])

	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, err
	}
	payload, err := codec.Decompress(blob[packedHeaderSize:])
	if err != nil {
		return nil, err
	}
	if uint32(len(payload)) != rawSize {
		return nil, fmt.Errorf("%w: payload size %d, header says %d",
			errs.ErrBufOverrun, len(payload), rawSize)
	}

	values := make([]temporal.Temporal, 0, count)
	pos := 0
	for i := uint32(0); i < count; i++ {
		if pos+4 > len(payload) {
			return nil, fmt.Errorf("%w: truncated value length", errs.ErrBufOverrun)
		}
		n := int(engine.Uint32(payload[pos : pos+4]))
		pos += 4
		if pos+n > len(payload) {
			return nil, fmt.Errorf("%w: truncated value payload", errs.ErrBufOverrun)
		}
		tv, err := ParseTemporal(payload[pos : pos+n])
		if err != nil {
			return nil, err
		}
		values = append(values, tv)
		pos += n
	}
	if pos != len(payload) {
		return nil, fmt.Errorf("%w: %d trailing payload bytes", errs.ErrBufOverrun, len(payload)-pos)
	}

	return values, nil
}
