package psd

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/internal/binio"
)

// ColorMode identifies the document's color space, as declared in the
// FileHeader's 2-byte mode field.
type ColorMode uint16

const (
	ColorModeBitmap           ColorMode = 0
	ColorModeGrayscale        ColorMode = 1
	ColorModeIndexedColor     ColorMode = 2
	ColorModeRGBColor         ColorMode = 3
	ColorModeCMYKColor        ColorMode = 4
	ColorModeHSLColor         ColorMode = 5
	ColorModeHSBColor         ColorMode = 6
	ColorModeMultichannel     ColorMode = 7
	ColorModeDuotone          ColorMode = 8
	ColorModeLabColor         ColorMode = 9
	ColorModeGray16           ColorMode = 10
	ColorModeRGB48            ColorMode = 11
	ColorModeLab48            ColorMode = 12
	ColorModeCMYK64           ColorMode = 13
	ColorModeDeepMultichannel ColorMode = 14
	ColorModeDuotone16        ColorMode = 15
)

var colorModeNames = map[ColorMode]string{
	ColorModeBitmap:           "Bitmap",
	ColorModeGrayscale:        "Grayscale",
	ColorModeIndexedColor:     "IndexedColor",
	ColorModeRGBColor:         "RGBColor",
	ColorModeCMYKColor:        "CMYKColor",
	ColorModeHSLColor:         "HSLColor",
	ColorModeHSBColor:         "HSBColor",
	ColorModeMultichannel:     "Multichannel",
	ColorModeDuotone:          "Duotone",
	ColorModeLabColor:         "LabColor",
	ColorModeGray16:           "Gray16",
	ColorModeRGB48:            "RGB48",
	ColorModeLab48:            "Lab48",
	ColorModeCMYK64:           "CMYK64",
	ColorModeDeepMultichannel: "DeepMultichannel",
	ColorModeDuotone16:        "Duotone16",
}

func (m ColorMode) String() string {
	if name, ok := colorModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(m))
}

// RequiredChannelIDs returns the color channel role ids a layer of this
// color mode must always carry placeholder channels for, used when
// emitting group and section-divider sentinel records on write.
func (m ColorMode) RequiredChannelIDs() []int16 {
	switch m {
	case ColorModeCMYKColor, ColorModeCMYK64:
		return []int16{0, 1, 2, 3}
	case ColorModeGrayscale, ColorModeGray16, ColorModeDuotone, ColorModeDuotone16, ColorModeBitmap:
		return []int16{0}
	default:
		return []int16{0, 1, 2}
	}
}

const fileSignature = "8BPS"

// dimensionLimit returns the maximum allowed width/height for a version.
func dimensionLimit(v binio.Version) uint32 {
	if v == binio.VersionPSB {
		return 300000
	}
	return 30000
}

// FileHeader is the fixed 26-byte record every document opens with.
type FileHeader struct {
	Version  binio.Version
	Channels uint16
	Height   uint32
	Width    uint32
	Depth    uint16
	Mode     ColorMode
}

// IsBig reports whether this is the PSB large-document variant.
func (h *FileHeader) IsBig() bool { return h.Version == binio.VersionPSB }

// Validate checks the header against the invariants the format requires:
// channel count, dimension bounds (version-dependent), and bit depth.
func (h *FileHeader) Validate() error {
	if h.Channels < 1 || h.Channels > 56 {
		return errors.Wrapf(ErrValidation, "channel count %d out of range [1,56]", h.Channels)
	}
	limit := dimensionLimit(h.Version)
	if h.Width < 1 || h.Width > limit {
		return errors.Wrapf(ErrValidation, "width %d out of range [1,%d]", h.Width, limit)
	}
	if h.Height < 1 || h.Height > limit {
		return errors.Wrapf(ErrValidation, "height %d out of range [1,%d]", h.Height, limit)
	}
	switch h.Depth {
	case 1, 8, 16, 32:
	default:
		return errors.Wrapf(ErrValidation, "bit depth %d is not one of 1/8/16/32", h.Depth)
	}
	return nil
}

// ReadFileHeader parses the fixed header record and the ColorModeData
// blob that immediately follows it, returning both.
func ReadFileHeader(r *binio.Reader) (*FileHeader, *ColorModeData, error) {
	sig, err := r.ReadString(4)
	if err != nil {
		return nil, nil, errors.Wrap(ErrIO, err.Error())
	}
	if sig != fileSignature {
		return nil, nil, errors.Wrapf(ErrFormat, "bad signature %q", sig)
	}

	rawVersion, err := r.ReadUint16()
	if err != nil {
		return nil, nil, errors.Wrap(ErrIO, err.Error())
	}
	version := binio.Version(rawVersion)
	if version != binio.VersionPSD && version != binio.VersionPSB {
		return nil, nil, errors.Wrapf(ErrFormat, "unsupported version %d", rawVersion)
	}

	if err := r.Skip(6); err != nil {
		return nil, nil, errors.Wrap(ErrIO, err.Error())
	}

	h := &FileHeader{Version: version}

	channels, err := r.ReadUint16()
	if err != nil {
		return nil, nil, errors.Wrap(ErrIO, err.Error())
	}
	h.Channels = channels

	if h.Height, err = r.ReadUint32(); err != nil {
		return nil, nil, errors.Wrap(ErrIO, err.Error())
	}
	if h.Width, err = r.ReadUint32(); err != nil {
		return nil, nil, errors.Wrap(ErrIO, err.Error())
	}
	if h.Depth, err = r.ReadUint16(); err != nil {
		return nil, nil, errors.Wrap(ErrIO, err.Error())
	}

	mode, err := r.ReadUint16()
	if err != nil {
		return nil, nil, errors.Wrap(ErrIO, err.Error())
	}
	h.Mode = ColorMode(mode)

	if err := h.Validate(); err != nil {
		return nil, nil, err
	}

	cmd, err := ReadColorModeData(r)
	if err != nil {
		return nil, nil, err
	}

	return h, cmd, nil
}

// WriteFileHeader emits the fixed header record followed by cmd's raw
// bytes (length-prefixed), mirroring ReadFileHeader's pairing.
func WriteFileHeader(w *binio.Writer, h *FileHeader, cmd *ColorModeData) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if err := w.WriteString(fileSignature); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(h.Version)); err != nil {
		return err
	}
	if err := w.WriteZeros(6); err != nil {
		return err
	}
	if err := w.WriteUint16(h.Channels); err != nil {
		return err
	}
	if err := w.WriteUint32(h.Height); err != nil {
		return err
	}
	if err := w.WriteUint32(h.Width); err != nil {
		return err
	}
	if err := w.WriteUint16(h.Depth); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(h.Mode)); err != nil {
		return err
	}
	return WriteColorModeData(w, cmd)
}
