package compression

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/internal/binio"
)

// readScanlineSizes reads the per-row compressed-length table that precedes
// an RLE payload: one entry per scanline, width determined by the PSD/PSB
// version (spec's "PSD=uint16, PSB=uint32" variant class).
func readScanlineSizes(src []byte, height int, v binio.Version) ([]int, []byte, error) {
	width := int(binio.VariantSize16Width(v))
	need := width * height
	if len(src) < need {
		return nil, nil, errors.Wrapf(ErrBadData, "rle: scanline size table truncated")
	}
	sizes := make([]int, height)
	for i := 0; i < height; i++ {
		off := i * width
		if width == 2 {
			sizes[i] = int(binary.BigEndian.Uint16(src[off : off+2]))
		} else {
			sizes[i] = int(binary.BigEndian.Uint32(src[off : off+4]))
		}
	}
	return sizes, src[need:], nil
}

func writeScanlineSizes(sizes []int, v binio.Version) []byte {
	width := int(binio.VariantSize16Width(v))
	out := make([]byte, width*len(sizes))
	for i, s := range sizes {
		off := i * width
		if width == 2 {
			binary.BigEndian.PutUint16(out[off:off+2], uint16(s))
		} else {
			binary.BigEndian.PutUint32(out[off:off+4], uint32(s))
		}
	}
	return out
}

// decodeRLEPlanes splits an RLE payload into per-scanline raw byte runs
// of rowBytes width, for any sample width.
func decodeRLEPlanes(src []byte, height, rowBytes int, v binio.Version) ([]byte, error) {
	sizes, payload, err := readScanlineSizes(src, height, v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, rowBytes*height)
	pos := 0
	for y := 0; y < height; y++ {
		n := sizes[y]
		if pos+n > len(payload) {
			return nil, errors.Wrapf(ErrBadData, "rle: scanline %d overruns payload", y)
		}
		if err := DecodePackBits(payload[pos:pos+n], out[y*rowBytes:(y+1)*rowBytes]); err != nil {
			return nil, err
		}
		pos += n
	}
	return out, nil
}

func encodeRLEPlanes(raw []byte, height, rowBytes int, v binio.Version) []byte {
	sizes := make([]int, height)
	scanlines := make([][]byte, height)
	for y := 0; y < height; y++ {
		scanlines[y] = EncodePackBits(raw[y*rowBytes : (y+1)*rowBytes])
		sizes[y] = len(scanlines[y])
	}
	out := writeScanlineSizes(sizes, v)
	for _, s := range scanlines {
		out = append(out, s...)
	}
	return out
}

// DecodeChannelUint8 decodes an 8-bit (or indexed-color/bitmap) channel
// under the given compression method into width*height raw bytes.
func DecodeChannelUint8(method Method, src []byte, width, height int, v binio.Version) ([]byte, error) {
	n := width * height
	switch method {
	case MethodRaw:
		return DecodeRaw(src, n)
	case MethodRLE:
		return decodeRLEPlanes(src, height, width, v)
	case MethodZip:
		return DecodeZip(src, n)
	case MethodZipPrediction:
		out, err := DecodeZip(src, n)
		if err != nil {
			return nil, err
		}
		RemoveRowPrediction(out, width, height)
		return out, nil
	default:
		return nil, ErrInvalidMarker
	}
}

// EncodeChannelUint8 is the write-side mirror of DecodeChannelUint8.
func EncodeChannelUint8(method Method, raw []byte, width, height int, v binio.Version, zipLevel int) ([]byte, error) {
	switch method {
	case MethodRaw:
		return EncodeRaw(raw), nil
	case MethodRLE:
		return encodeRLEPlanes(raw, height, width, v), nil
	case MethodZip:
		return EncodeZip(raw, zipLevel)
	case MethodZipPrediction:
		tmp := append([]byte(nil), raw...)
		ApplyRowPrediction(tmp, width, height)
		return EncodeZip(tmp, zipLevel)
	default:
		return nil, ErrInvalidMarker
	}
}

// DecodeChannelUint16 decodes a 16-bit channel, handling the big-endian
// wire format and (for ZipPrediction) the 16-bit horizontal predictor.
func DecodeChannelUint16(method Method, src []byte, width, height int, v binio.Version) ([]uint16, error) {
	switch method {
	case MethodRaw, MethodRLE:
		raw, err := decodeBytesByMethod(method, src, width*height*2, height, width*2, v)
		if err != nil {
			return nil, err
		}
		return bytesToUint16BE(raw), nil
	case MethodZip:
		raw, err := DecodeZip(src, width*height*2)
		if err != nil {
			return nil, err
		}
		return bytesToUint16BE(raw), nil
	case MethodZipPrediction:
		raw, err := DecodeZip(src, width*height*2)
		if err != nil {
			return nil, err
		}
		samples := bytesToUint16BE(raw)
		RemoveRowPrediction(samples, width, height)
		return samples, nil
	default:
		return nil, ErrInvalidMarker
	}
}

// EncodeChannelUint16 is the write-side mirror of DecodeChannelUint16.
func EncodeChannelUint16(method Method, samples []uint16, width, height int, v binio.Version, zipLevel int) ([]byte, error) {
	switch method {
	case MethodRaw:
		return uint16ToBytesBE(samples), nil
	case MethodRLE:
		return encodeRLEPlanes(uint16ToBytesBE(samples), height, width*2, v), nil
	case MethodZip:
		return EncodeZip(uint16ToBytesBE(samples), zipLevel)
	case MethodZipPrediction:
		tmp := append([]uint16(nil), samples...)
		ApplyRowPrediction(tmp, width, height)
		return EncodeZip(uint16ToBytesBE(tmp), zipLevel)
	default:
		return nil, ErrInvalidMarker
	}
}

// DecodeChannelFloat32 decodes a 32-bit floating point channel. Only Raw,
// RLE, and ZipPrediction are observed in the wild for float channels, but
// all four markers are honored for completeness.
func DecodeChannelFloat32(method Method, src []byte, width, height int, v binio.Version) ([]float32, error) {
	switch method {
	case MethodRaw, MethodRLE:
		raw, err := decodeBytesByMethod(method, src, width*height*4, height, width*4, v)
		if err != nil {
			return nil, err
		}
		return bytesToFloat32BE(raw), nil
	case MethodZip:
		raw, err := DecodeZip(src, width*height*4)
		if err != nil {
			return nil, err
		}
		return bytesToFloat32BE(raw), nil
	case MethodZipPrediction:
		raw, err := DecodeZip(src, width*height*4)
		if err != nil {
			return nil, err
		}
		RemoveFloatRowPrediction(raw, width, height)
		pixelBytes := DeinterleaveFloatPlanes(raw, width, height)
		return bytesToFloat32BE(pixelBytes), nil
	default:
		return nil, ErrInvalidMarker
	}
}

// EncodeChannelFloat32 is the write-side mirror of DecodeChannelFloat32.
func EncodeChannelFloat32(method Method, samples []float32, width, height int, v binio.Version, zipLevel int) ([]byte, error) {
	pixelBytes := float32ToBytesBE(samples)
	switch method {
	case MethodRaw:
		return pixelBytes, nil
	case MethodRLE:
		return encodeRLEPlanes(pixelBytes, height, width*4, v), nil
	case MethodZip:
		return EncodeZip(pixelBytes, zipLevel)
	case MethodZipPrediction:
		planar := InterleaveFloatPlanes(pixelBytes, width, height)
		ApplyFloatRowPrediction(planar, width, height)
		return EncodeZip(planar, zipLevel)
	default:
		return nil, ErrInvalidMarker
	}
}

func decodeBytesByMethod(method Method, src []byte, n, height, rowBytes int, v binio.Version) ([]byte, error) {
	if method == MethodRLE {
		return decodeRLEPlanes(src, height, rowBytes, v)
	}
	return DecodeRaw(src, n)
}

func bytesToUint16BE(b []byte) []uint16 {
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(b[i*2 : i*2+2])
	}
	return out
}

func uint16ToBytesBE(s []uint16) []byte {
	out := make([]byte, len(s)*2)
	for i, v := range s {
		binary.BigEndian.PutUint16(out[i*2:i*2+2], v)
	}
	return out
}

func bytesToFloat32BE(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.BigEndian.Uint32(b[i*4 : i*4+4]))
	}
	return out
}

func float32ToBytesBE(s []float32) []byte {
	out := make([]byte, len(s)*4)
	for i, v := range s {
		binary.BigEndian.PutUint32(out[i*4:i*4+4], math.Float32bits(v))
	}
	return out
}
