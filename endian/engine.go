// Package endian provides the byte order engine used by the WKB codec.
//
// An EndianEngine unifies the ByteOrder and AppendByteOrder interfaces
// of encoding/binary so the writer can append multi-byte scalars
// without intermediate buffers, and the reader can decode a stream in
// the endianness its leading flag byte declares:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint64(buf, uint64(timestamp))
//
// The engines are the stateless binary.LittleEndian and binary.BigEndian
// values and are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from
// encoding/binary. binary.LittleEndian and binary.BigEndian both
// satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine, the default
// for WKB output.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// CheckEndianness determines the host byte order by inspecting the
// memory layout of a known integer.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// CompareNativeEndian reports whether the engine matches the host byte
// order; decoders use it to pick the swap-free fast path.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}
