package compression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-photoshop/gopsd/internal/binio"
)

func TestChannelUint8RoundTrip(t *testing.T) {
	const width, height = 8, 4
	raw := bytesRange(0, width*height)

	for _, method := range []Method{MethodRaw, MethodRLE, MethodZip, MethodZipPrediction} {
		for _, v := range []binio.Version{binio.VersionPSD, binio.VersionPSB} {
			encoded, err := EncodeChannelUint8(method, raw, width, height, v, 6)
			require.NoError(t, err, "method=%s version=%v", method, v)

			decoded, err := DecodeChannelUint8(method, encoded, width, height, v)
			require.NoError(t, err, "method=%s version=%v", method, v)
			assert.Equal(t, raw, decoded, "method=%s version=%v", method, v)
		}
	}
}

func TestChannelUint16RoundTrip(t *testing.T) {
	const width, height = 6, 3
	samples := make([]uint16, width*height)
	for i := range samples {
		samples[i] = uint16(i*257 + 11)
	}

	for _, method := range []Method{MethodRaw, MethodRLE, MethodZip, MethodZipPrediction} {
		encoded, err := EncodeChannelUint16(method, samples, width, height, binio.VersionPSD, 6)
		require.NoError(t, err, "method=%s", method)

		decoded, err := DecodeChannelUint16(method, encoded, width, height, binio.VersionPSD)
		require.NoError(t, err, "method=%s", method)
		assert.Equal(t, samples, decoded, "method=%s", method)
	}
}

func TestChannelFloat32RoundTrip(t *testing.T) {
	const width, height = 5, 5
	samples := make([]float32, width*height)
	for i := range samples {
		samples[i] = float32(i) / 7.0
	}

	for _, method := range []Method{MethodRaw, MethodRLE, MethodZip, MethodZipPrediction} {
		encoded, err := EncodeChannelFloat32(method, samples, width, height, binio.VersionPSB, 6)
		require.NoError(t, err, "method=%s", method)

		decoded, err := DecodeChannelFloat32(method, encoded, width, height, binio.VersionPSB)
		require.NoError(t, err, "method=%s", method)
		assert.InDeltaSlice(t, samples, decoded, 0.0, "method=%s", method)
	}
}

func TestRowPredictionRoundTrip(t *testing.T) {
	const width, height = 10, 2
	samples := make([]uint16, width*height)
	for i := range samples {
		samples[i] = uint16(i * i)
	}
	original := append([]uint16(nil), samples...)

	ApplyRowPrediction(samples, width, height)
	RemoveRowPrediction(samples, width, height)
	assert.Equal(t, original, samples)
}

func TestFloatPlaneInterleaveRoundTrip(t *testing.T) {
	const width, height = 4, 3
	pixels := bytesRange(0, width*height*4)

	planar := InterleaveFloatPlanes(pixels, width, height)
	back := DeinterleaveFloatPlanes(planar, width, height)
	assert.Equal(t, pixels, back)
}
