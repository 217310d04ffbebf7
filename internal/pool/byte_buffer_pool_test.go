package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb.B)
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 1024, bb.Cap())
}

func TestByteBufferWriteAndReset(t *testing.T) {
	bb := NewByteBuffer(StringBufferDefaultSize)
	n, err := bb.Write([]byte("pore_A"))
	require.NoError(t, err)
	require.Equal(t, 6, n)
	bb.MustWrite([]byte("!"))
	require.Equal(t, []byte("pore_A!"), bb.Bytes())

	capBefore := bb.Cap()
	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.Equal(t, capBefore, bb.Cap())
}

func TestByteBufferResize(t *testing.T) {
	bb := NewByteBuffer(16)

	bb.Resize(8)
	require.Equal(t, 8, bb.Len())
	require.Equal(t, 16, bb.Cap())

	bb.Resize(64)
	require.Equal(t, 64, bb.Len())
	require.GreaterOrEqual(t, bb.Cap(), 64)

	require.Panics(t, func() { bb.Resize(-1) })
}

func TestByteBufferGrow(t *testing.T) {
	t.Run("no-op with enough capacity", func(t *testing.T) {
		bb := NewByteBuffer(128)
		bb.Grow(64)
		require.Equal(t, 128, bb.Cap())
	})

	t.Run("small buffer grows by fixed step", func(t *testing.T) {
		bb := NewByteBuffer(16)
		bb.MustWrite([]byte("0123456789abcdef"))
		bb.Grow(1)
		require.GreaterOrEqual(t, bb.Cap(), 16+payloadGrowSmallBufferStep)
		require.Equal(t, []byte("0123456789abcdef"), bb.Bytes())
	})

	t.Run("honors large requirement", func(t *testing.T) {
		bb := NewByteBuffer(0)
		bb.Grow(1 << 20)
		require.GreaterOrEqual(t, bb.Cap(), 1<<20)
	})
}

func TestByteBufferWriteTo(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.MustWrite([]byte("signal"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(6), n)
	require.Equal(t, "signal", out.String())
}

func TestByteBufferPoolDropsOversized(t *testing.T) {
	p := NewByteBufferPool(8, 32)

	bb := p.Get()
	require.Equal(t, 8, bb.Cap())
	bb.MustWrite(make([]byte, 4))
	p.Put(bb)

	again := p.Get()
	require.Equal(t, 0, again.Len())

	big := NewByteBuffer(64)
	p.Put(big) // dropped, must not panic
	p.Put(nil)
}

func TestDefaultPools(t *testing.T) {
	sb := GetStringBuffer()
	require.GreaterOrEqual(t, sb.Cap(), 0)
	PutStringBuffer(sb)

	pb := GetPayloadBuffer()
	require.Equal(t, 0, pb.Len())
	PutPayloadBuffer(pb)
}
