package pool

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer(t *testing.T) {
	bb := NewByteBuffer(64)
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 64, bb.Cap())

	n, err := bb.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, []byte("hello"), bb.Bytes())

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 64, bb.Cap())
}

func TestByteBufferGrow(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.Grow(1024)
	require.GreaterOrEqual(t, bb.Cap(), 1024)

	// Growing within capacity is a no-op.
	before := bb.Cap()
	bb.Grow(16)
	require.Equal(t, before, bb.Cap())
}

func TestByteBufferWriteTo(t *testing.T) {
	bb := NewByteBuffer(16)
	_, err := bb.Write([]byte("payload"))
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(7), n)
	require.Equal(t, "payload", out.String())
}

func TestByteBufferPool(t *testing.T) {
	p := NewByteBufferPool(32, 128)

	bb := p.Get()
	require.NotNil(t, bb)
	_, err := bb.Write([]byte("data"))
	require.NoError(t, err)
	p.Put(bb)

	// Returned buffers come back empty.
	bb2 := p.Get()
	require.Equal(t, 0, bb2.Len())
	p.Put(bb2)

	t.Run("Oversized buffers discarded", func(t *testing.T) {
		big := NewByteBuffer(4096)
		p.Put(big) // above threshold: silently dropped
	})

	t.Run("Nil tolerated", func(t *testing.T) {
		p.Put(nil)
	})
}

func TestDefaultPoolsConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bb := GetWKBBuffer()
				_, _ = bb.Write([]byte{0x01, 0x02})
				PutWKBBuffer(bb)

				pb := GetPackedBuffer()
				_, _ = pb.Write([]byte{0x03})
				PutPackedBuffer(pb)
			}
		}()
	}
	wg.Wait()
}
