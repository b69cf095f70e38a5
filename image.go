package psd

import (
	"math"

	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/compression"
	"github.com/go-photoshop/gopsd/internal/binio"
)

func float32ToBitsBE(f float32) uint32   { return math.Float32bits(f) }
func float32FromBitsBE(b uint32) float32 { return math.Float32frombits(b) }

// ImageData is the document-level flattened composite: a single
// compression method applies to every channel plane (unlike a layer
// record, whose channels each carry their own marker and declared
// length). Depth-dependent sample widths follow FileHeader.Depth the
// same way a layer's channels do.
type ImageData struct {
	Method   compression.Method
	Channels [][]byte // one plane per header.Channels, each depth-width samples wide
}

// ReadImageData reads the trailing section of a document: a 2-byte
// compression marker shared by every plane, then the planes themselves
// in channel order. Raw and RLE planes are self-framing (RLE carries a
// per-scanline size table) so channel boundaries are unambiguous; zip
// and zip-prediction have no declared per-channel length at this
// level (unlike a layer's channel-info table) and Photoshop itself
// never emits them for the composite, so multi-channel zip framing
// here is rejected rather than guessed at.
func ReadImageData(r *binio.Reader, h *FileHeader) (*ImageData, error) {
	marker, err := r.ReadUint16()
	if err != nil {
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	method := compression.Method(marker)
	if (method == compression.MethodZip || method == compression.MethodZipPrediction) && h.Channels > 1 {
		return nil, errors.Wrapf(ErrCodec, "document image: zip composite with %d channels has no unambiguous per-channel framing", h.Channels)
	}

	width, height := int(h.Width), int(h.Height)
	img := &ImageData{Method: method, Channels: make([][]byte, h.Channels)}
	for i := 0; i < int(h.Channels); i++ {
		plane, err := readDocumentPlane(r, method, width, height, h)
		if err != nil {
			return nil, errors.Wrapf(err, "document image channel %d", i)
		}
		img.Channels[i] = plane
	}
	return img, nil
}

func readDocumentPlane(r *binio.Reader, method compression.Method, width, height int, h *FileHeader) ([]byte, error) {
	_, sampleWidth := SampleTypeForDepth(h.Depth)
	raw, err := readPlaneBytes(r, method, width, height, sampleWidth, h.Version)
	if err != nil {
		return nil, err
	}
	return decodeDocumentPlane(method, raw, width, height, h)
}

// readPlaneBytes slices exactly one channel's on-disk bytes out of the
// stream: the full raw extent for MethodRaw, or the scanline-size
// table plus its declared payload for MethodRLE. For the zip methods
// (which the caller accepts only for a single channel) it returns every
// byte left in the stream, via remainderFrom.
func readPlaneBytes(r *binio.Reader, method compression.Method, width, height, sampleWidth int, v binio.Version) ([]byte, error) {
	switch method {
	case compression.MethodRaw:
		return r.ReadBytes(width * height * sampleWidth)
	case compression.MethodRLE:
		tableWidth := int(binio.VariantSize16Width(v))
		table, err := r.ReadBytes(tableWidth * height)
		if err != nil {
			return nil, err
		}
		sizes := make([]int, height)
		total := 0
		for i := 0; i < height; i++ {
			var n int
			if tableWidth == 2 {
				n = int(uint16(table[i*2])<<8 | uint16(table[i*2+1]))
			} else {
				n = int(uint32(table[i*4])<<24 | uint32(table[i*4+1])<<16 | uint32(table[i*4+2])<<8 | uint32(table[i*4+3]))
			}
			sizes[i] = n
			total += n
		}
		payload, err := r.ReadBytes(total)
		if err != nil {
			return nil, err
		}
		return append(table, payload...), nil
	default: // zip / zip-prediction: single channel, consume the rest
		return remainderFrom(r), nil
	}
}

func decodeDocumentPlane(method compression.Method, raw []byte, width, height int, h *FileHeader) ([]byte, error) {
	switch h.Depth {
	case 16:
		samples, err := compression.DecodeChannelUint16(method, raw, width, height, h.Version)
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(samples)*2)
		for i, s := range samples {
			out[i*2] = byte(s >> 8)
			out[i*2+1] = byte(s)
		}
		return out, nil
	case 32:
		samples, err := compression.DecodeChannelFloat32(method, raw, width, height, h.Version)
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(samples)*4)
		for i, f := range samples {
			bits := float32ToBitsBE(f)
			out[i*4] = byte(bits >> 24)
			out[i*4+1] = byte(bits >> 16)
			out[i*4+2] = byte(bits >> 8)
			out[i*4+3] = byte(bits)
		}
		return out, nil
	default:
		return compression.DecodeChannelUint8(method, raw, width, height, h.Version)
	}
}

// WriteImageData emits the document-level composite under a single
// compression method for all planes.
func WriteImageData(w *binio.Writer, h *FileHeader, img *ImageData, zipLevel int) error {
	if (img.Method == compression.MethodZip || img.Method == compression.MethodZipPrediction) && h.Channels > 1 {
		return errors.Wrapf(ErrValidation, "document image: zip composite with %d channels has no unambiguous per-channel framing", h.Channels)
	}
	if err := w.WriteUint16(uint16(img.Method)); err != nil {
		return err
	}
	width, height := int(h.Width), int(h.Height)
	for i, plane := range img.Channels {
		encoded, err := encodeDocumentPlane(img.Method, plane, width, height, h, zipLevel)
		if err != nil {
			return errors.Wrapf(err, "document image channel %d", i)
		}
		if err := w.WriteBytes(encoded); err != nil {
			return err
		}
	}
	return nil
}

func encodeDocumentPlane(method compression.Method, plane []byte, width, height int, h *FileHeader, zipLevel int) ([]byte, error) {
	switch h.Depth {
	case 16:
		samples := make([]uint16, len(plane)/2)
		for i := range samples {
			samples[i] = uint16(plane[i*2])<<8 | uint16(plane[i*2+1])
		}
		return compression.EncodeChannelUint16(method, samples, width, height, h.Version, zipLevel)
	case 32:
		samples := make([]float32, len(plane)/4)
		for i := range samples {
			bits := uint32(plane[i*4])<<24 | uint32(plane[i*4+1])<<16 | uint32(plane[i*4+2])<<8 | uint32(plane[i*4+3])
			samples[i] = float32FromBitsBE(bits)
		}
		return compression.EncodeChannelFloat32(method, samples, width, height, h.Version, zipLevel)
	default:
		return compression.EncodeChannelUint8(method, plane, width, height, h.Version, zipLevel)
	}
}
