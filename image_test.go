package psd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-photoshop/gopsd/compression"
	"github.com/go-photoshop/gopsd/internal/binio"
)

func testHeader(channels uint16, depth uint16) *FileHeader {
	return &FileHeader{
		Version:  binio.VersionPSD,
		Channels: channels,
		Width:    4,
		Height:   4,
		Depth:    depth,
		Mode:     ColorModeRGBColor,
	}
}

func TestImageDataRoundTripRaw(t *testing.T) {
	h := testHeader(3, 8)
	img := &ImageData{
		Method: compression.MethodRaw,
		Channels: [][]byte{
			make([]byte, 16),
			make([]byte, 16),
			make([]byte, 16),
		},
	}
	for i := range img.Channels[0] {
		img.Channels[0][i] = byte(i)
	}

	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	require.NoError(t, WriteImageData(w, h, img, 6))

	_, err := s.Seek(0, 0)
	require.NoError(t, err)
	r := binio.NewReader(s)
	got, err := ReadImageData(r, h)
	require.NoError(t, err)

	assert.Equal(t, compression.MethodRaw, got.Method)
	require.Len(t, got.Channels, 3)
	assert.Equal(t, img.Channels[0], got.Channels[0])
}

func TestImageDataRoundTripRLE(t *testing.T) {
	h := testHeader(1, 8)
	plane := make([]byte, 16)
	for i := range plane {
		plane[i] = 7
	}
	img := &ImageData{Method: compression.MethodRLE, Channels: [][]byte{plane}}

	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	require.NoError(t, WriteImageData(w, h, img, 6))

	_, err := s.Seek(0, 0)
	require.NoError(t, err)
	r := binio.NewReader(s)
	got, err := ReadImageData(r, h)
	require.NoError(t, err)

	assert.Equal(t, plane, got.Channels[0])
}

func TestImageDataMultiChannelZipRejected(t *testing.T) {
	h := testHeader(3, 8)
	img := &ImageData{
		Method: compression.MethodZip,
		Channels: [][]byte{
			make([]byte, 16),
			make([]byte, 16),
			make([]byte, 16),
		},
	}

	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	err := WriteImageData(w, h, img, 6)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestImageDataMultiChannelZipRejectedOnRead(t *testing.T) {
	h := testHeader(2, 8)

	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	require.NoError(t, w.WriteUint16(uint16(compression.MethodZip)))

	_, err := s.Seek(0, 0)
	require.NoError(t, err)
	r := binio.NewReader(s)
	_, err = ReadImageData(r, h)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCodec)
}

func TestImageDataSingleChannelZipPredictionRoundTrip(t *testing.T) {
	h := testHeader(1, 16)
	plane := make([]byte, 4*4*2)
	for i := range plane {
		plane[i] = byte(i * 3)
	}
	img := &ImageData{Method: compression.MethodZipPrediction, Channels: [][]byte{plane}}

	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	require.NoError(t, WriteImageData(w, h, img, 6))

	_, err := s.Seek(0, 0)
	require.NoError(t, err)
	r := binio.NewReader(s)
	got, err := ReadImageData(r, h)
	require.NoError(t, err)

	assert.Equal(t, plane, got.Channels[0])
}
