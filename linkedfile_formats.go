package psd

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func init() {
	RegisterLinkedFileDecoder("png", decodeStdlibImage(png.Decode))
	RegisterLinkedFileDecoder("jpg", decodeStdlibImage(jpeg.Decode))
	RegisterLinkedFileDecoder("jpeg", decodeStdlibImage(jpeg.Decode))
	RegisterLinkedFileDecoder("tif", decodeStdlibImage(tiff.Decode))
	RegisterLinkedFileDecoder("tiff", decodeStdlibImage(tiff.Decode))
	RegisterLinkedFileDecoder("bmp", decodeStdlibImage(bmp.Decode))
}

// decodeStdlibImage adapts any image.Decode-shaped function into a
// LinkedFileDecoder, splitting the result into separate R/G/B/A byte
// planes the way a channel store expects. Smart objects commonly embed
// PNG/JPEG/TIFF/BMP originals; these four cover the common raster
// formats Photoshop embeds as a linked file's source.
func decodeStdlibImage(decode func(r io.Reader) (image.Image, error)) LinkedFileDecoder {
	return func(raw []byte) (map[string][]byte, error) {
		img, err := decode(bytes.NewReader(raw))
		if err != nil {
			return nil, errors.Wrap(err, "linked file: decode")
		}
		bounds := img.Bounds()
		w, h := bounds.Dx(), bounds.Dy()
		r := make([]byte, w*h)
		g := make([]byte, w*h)
		b := make([]byte, w*h)
		a := make([]byte, w*h)
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				cr, cg, cb, ca := img.At(x, y).RGBA()
				r[i] = byte(cr >> 8)
				g[i] = byte(cg >> 8)
				b[i] = byte(cb >> 8)
				a[i] = byte(ca >> 8)
				i++
			}
		}
		return map[string][]byte{"R": r, "G": g, "B": b, "A": a}, nil
	}
}
