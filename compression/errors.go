// Package compression implements the four channel codecs a layer or
// document-level image section can be stored under: raw, PackBits/RLE,
// zlib (Zip), and zlib with horizontal delta prediction (ZipPrediction).
package compression

import "github.com/pkg/errors"

// Method identifies the on-disk compression marker preceding a channel's
// image data, per the closed four-member set the format defines.
type Method uint16

const (
	MethodRaw            Method = 0
	MethodRLE            Method = 1
	MethodZip            Method = 2
	MethodZipPrediction  Method = 3
)

func (m Method) String() string {
	switch m {
	case MethodRaw:
		return "raw"
	case MethodRLE:
		return "rle"
	case MethodZip:
		return "zip"
	case MethodZipPrediction:
		return "zip_prediction"
	default:
		return "unknown"
	}
}

// ErrInvalidMarker is returned when a 2-byte compression marker doesn't
// match one of the four known methods.
var ErrInvalidMarker = errors.New("compression: invalid marker")

// ErrBadData marks a payload that doesn't parse as the codec it claims
// to be (e.g. a PackBits stream that runs past the scanline boundary).
var ErrBadData = errors.New("compression: bad data")

// ErrShortOutput marks a decode that produced fewer bytes than the
// channel's declared width*height*elemSize demands.
var ErrShortOutput = errors.New("compression: short output")

// ErrInsufficientSpace marks an encode destination buffer too small for
// the worst-case output size.
var ErrInsufficientSpace = errors.New("compression: insufficient space")
