package psd

import (
	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/internal/binio"
)

// ColorModeData holds the length-prefixed blob that follows the header:
// a palette for indexed color, a duotone specification for duotone mode,
// and an empty pass-through for everything else. Kept as opaque bytes
// so indexed/duotone documents round-trip unchanged.
type ColorModeData struct {
	Raw []byte
}

func ReadColorModeData(r *binio.Reader) (*ColorModeData, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	if length == 0 {
		return &ColorModeData{}, nil
	}
	raw, err := r.ReadBytes(int(length))
	if err != nil {
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	return &ColorModeData{Raw: raw}, nil
}

func WriteColorModeData(w *binio.Writer, cmd *ColorModeData) error {
	var raw []byte
	if cmd != nil {
		raw = cmd.Raw
	}
	if err := w.WriteUint32(uint32(len(raw))); err != nil {
		return err
	}
	return w.WriteBytes(raw)
}
