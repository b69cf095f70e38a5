package binio

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderWriterPrimitivesRoundTrip(t *testing.T) {
	s := NewMemStream(nil)
	w := NewWriter(s)

	require.NoError(t, w.WriteUint16(0xBEEF))
	require.NoError(t, w.WriteInt16(-1))
	require.NoError(t, w.WriteUint32(0xDEADBEEF))
	require.NoError(t, w.WriteInt32(-42))
	require.NoError(t, w.WriteUint64(0x0123456789ABCDEF))
	require.NoError(t, w.WriteFloat64(700.25))
	require.NoError(t, w.WriteFloat32(3.5))
	require.NoError(t, w.WriteByte(0x8B))

	_, err := s.Seek(0, io.SeekStart)
	require.NoError(t, err)
	r := NewReader(s)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	assert.EqualValues(t, 0xBEEF, u16)

	i16, err := r.ReadInt16()
	require.NoError(t, err)
	assert.EqualValues(t, -1, i16)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.EqualValues(t, 0xDEADBEEF, u32)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	assert.EqualValues(t, -42, i32)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.EqualValues(t, 0x0123456789ABCDEF, u64)

	f64, err := r.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, 700.25, f64)

	f32, err := r.ReadFloat32()
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), f32)

	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.EqualValues(t, 0x8B, b)
}

func TestPascalStringRoundTripWithPadding(t *testing.T) {
	s := NewMemStream(nil)
	w := NewWriter(s)
	require.NoError(t, w.WritePascalString("Layer 1", 4))
	require.NoError(t, w.WriteUint16(0xCAFE)) // sentinel to confirm padding consumed correctly

	_, err := s.Seek(0, io.SeekStart)
	require.NoError(t, err)
	r := NewReader(s)

	name, err := r.ReadPascalString(4)
	require.NoError(t, err)
	assert.Equal(t, "Layer 1", name)

	sentinel, err := r.ReadUint16()
	require.NoError(t, err)
	assert.EqualValues(t, 0xCAFE, sentinel)
}

func TestPascalStringEmpty(t *testing.T) {
	s := NewMemStream(nil)
	w := NewWriter(s)
	require.NoError(t, w.WritePascalString("", 2))

	_, err := s.Seek(0, io.SeekStart)
	require.NoError(t, err)
	r := NewReader(s)

	name, err := r.ReadPascalString(2)
	require.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestPatchUint32RestoresCursor(t *testing.T) {
	s := NewMemStream(make([]byte, 8))
	w := NewWriter(s)

	_, err := w.Seek(4, io.SeekStart)
	require.NoError(t, err)
	require.NoError(t, w.WriteUint32(0x11223344))

	cur, err := w.Tell()
	require.NoError(t, err)

	require.NoError(t, w.PatchUint32(0, 0xAABBCCDD))

	after, err := w.Tell()
	require.NoError(t, err)
	assert.Equal(t, cur, after)

	r := NewReader(s)
	_, err = r.Seek(0, io.SeekStart)
	require.NoError(t, err)
	patched, err := r.ReadUint32()
	require.NoError(t, err)
	assert.EqualValues(t, 0xAABBCCDD, patched)
}

func TestReadShortInputErrors(t *testing.T) {
	s := NewMemStream([]byte{0x01})
	r := NewReader(s)
	_, err := r.ReadUint32()
	assert.Error(t, err)
}
