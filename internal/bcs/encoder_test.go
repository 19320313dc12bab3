package bcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteULEB128(t *testing.T) {
	cases := map[uint64][]byte{
		0:       {0x00},
		1:       {0x01},
		127:     {0x7f},
		128:     {0x80, 0x01},
		300:     {0xac, 0x02},
		16384:   {0x80, 0x80, 0x01},
		1 << 32: {0x80, 0x80, 0x80, 0x80, 0x10},
	}
	for v, want := range cases {
		e := NewEncoder()
		e.WriteULEB128(v)
		assert.Equal(t, want, e.Bytes(), "uleb128(%d)", v)
	}
}

func TestEncoderPrimitives(t *testing.T) {
	e := NewEncoder()
	e.WriteU8(7)
	e.WriteU16(0x0102)
	e.WriteU64(1)
	e.WriteBool(true)
	e.WriteBool(false)
	e.WriteString("pool")
	e.WriteFixed([]byte{0xaa, 0xbb})

	want := []byte{
		0x07,
		0x02, 0x01,
		0x01, 0, 0, 0, 0, 0, 0, 0,
		0x01,
		0x00,
		0x04, 'p', 'o', 'o', 'l',
		0xaa, 0xbb,
	}
	assert.Equal(t, want, e.Bytes())
}

func TestU64RoundTrip(t *testing.T) {
	b := U64(500000)
	require.Len(t, b, 8)
	assert.Equal(t, []byte{0x20, 0xa1, 0x07, 0, 0, 0, 0, 0}, b)

	v, err := DecodeU64(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(500000), v)
}

func TestDecodeU64Short(t *testing.T) {
	_, err := DecodeU64([]byte{1, 2, 3})
	require.Error(t, err)

	v, err := DecodeU64([]byte{1, 0, 0, 0, 0, 0, 0, 0, 0xff})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
}
