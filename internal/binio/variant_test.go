package binio

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantSize32RoundTrip(t *testing.T) {
	for _, v := range []Version{VersionPSD, VersionPSB} {
		s := NewMemStream(nil)
		w := NewWriter(s)
		require.NoError(t, w.WriteVariantSize32(v, 0x100000001))

		_, err := s.Seek(0, io.SeekStart)
		require.NoError(t, err)
		r := NewReader(s)
		got, err := r.ReadVariantSize32(v)
		require.NoError(t, err)

		if v == VersionPSB {
			assert.EqualValues(t, 0x100000001, got)
			assert.EqualValues(t, 8, VariantSize32Width(v))
		} else {
			// PSD truncates to 32 bits on the wire.
			assert.EqualValues(t, 0x00000001, got)
			assert.EqualValues(t, 4, VariantSize32Width(v))
		}
	}
}

func TestVariantSize16RoundTrip(t *testing.T) {
	for _, v := range []Version{VersionPSD, VersionPSB} {
		s := NewMemStream(nil)
		w := NewWriter(s)
		require.NoError(t, w.WriteVariantSize16(v, 40000))

		_, err := s.Seek(0, io.SeekStart)
		require.NoError(t, err)
		r := NewReader(s)
		got, err := r.ReadVariantSize16(v)
		require.NoError(t, err)
		assert.EqualValues(t, 40000, got)

		if v == VersionPSB {
			assert.EqualValues(t, 4, VariantSize16Width(v))
		} else {
			assert.EqualValues(t, 2, VariantSize16Width(v))
		}
	}
}
