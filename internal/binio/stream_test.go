package binio

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStreamReadWriteSeek(t *testing.T) {
	m := NewMemStream(nil)

	n, err := m.Write([]byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	_, err = m.Seek(0, io.SeekStart)
	require.NoError(t, err)

	buf := make([]byte, 5)
	_, err = m.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	size, err := m.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 11, size)
}

func TestMemStreamReadViewIsZeroCopyWindow(t *testing.T) {
	m := NewMemStream([]byte("0123456789"))

	view, err := m.ReadView(2, 4)
	require.NoError(t, err)
	assert.Equal(t, "2345", string(view))

	_, err = m.ReadView(8, 4)
	assert.Error(t, err)
}

func TestMemStreamWriteGrowsBuffer(t *testing.T) {
	m := NewMemStream(make([]byte, 4))
	_, err := m.Seek(2, io.SeekStart)
	require.NoError(t, err)

	_, err = m.Write([]byte("XYZ"))
	require.NoError(t, err)

	assert.Equal(t, []byte{0, 0, 'X', 'Y', 'Z'}, m.Bytes())
}
