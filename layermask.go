package psd

import (
	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/internal/binio"
)

// MaskFlags is the packed bit-flags byte carried by each mask record.
// Bits 0-3 are named; bits 4-7 are unspecified and must be preserved
// verbatim across a read/write round-trip rather than synthesized.
type MaskFlags uint8

const (
	maskFlagPositionRelative MaskFlags = 1 << 0
	maskFlagDisabled         MaskFlags = 1 << 1
	maskFlagInvert           MaskFlags = 1 << 2
	maskFlagHasParameters    MaskFlags = 1 << 3
)

func (f MaskFlags) PositionRelativeToLayer() bool { return f&maskFlagPositionRelative != 0 }
func (f MaskFlags) Disabled() bool                { return f&maskFlagDisabled != 0 }
func (f MaskFlags) Invert() bool                  { return f&maskFlagInvert != 0 }
func (f MaskFlags) HasParameters() bool           { return f&maskFlagHasParameters != 0 }

// MaskParamFlags gates which of the four optional parameter fields
// (user density/feather, vector density/feather) follow the mask
// record, present only when MaskFlags.HasParameters is set.
type MaskParamFlags uint8

const (
	maskParamUserDensity   MaskParamFlags = 1 << 0
	maskParamUserFeather   MaskParamFlags = 1 << 1
	maskParamVectorDensity MaskParamFlags = 1 << 2
	maskParamVectorFeather MaskParamFlags = 1 << 3
)

// MaskRecord is one mask's geometry and flags, shared by the pixel
// (user) mask and the vector mask sub-records.
type MaskRecord struct {
	Bounds       Rect
	DefaultColor uint8
	Flags        MaskFlags
	ParamFlags   MaskParamFlags
	UserDensity  *uint8
	UserFeather  *float64
	VecDensity   *uint8
	VecFeather   *float64
}

// Rect is a layer/mask bounding box in document pixel coordinates.
type Rect struct {
	Top, Left, Bottom, Right int32
}

func (r Rect) Width() int32  { return r.Right - r.Left }
func (r Rect) Height() int32 { return r.Bottom - r.Top }
func (r Rect) Empty() bool   { return r.Width() == 0 || r.Height() == 0 }

// LayerMaskData is the layer record's mask sub-section. When both a
// vector and a pixel mask are present the vector mask's record appears
// first on the wire, the pixel mask's second; one-vs-two is detected
// from the declared section length, not a flag bit.
type LayerMaskData struct {
	Mask     *MaskRecord
	RealMask *MaskRecord // set only when a vector mask accompanies a pixel mask
}

func readMaskRecord(r *binio.Reader) (*MaskRecord, error) {
	m := &MaskRecord{}
	var err error
	if m.Bounds.Top, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if m.Bounds.Left, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if m.Bounds.Bottom, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if m.Bounds.Right, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if m.DefaultColor, err = r.ReadByte(); err != nil {
		return nil, err
	}
	flags, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	m.Flags = MaskFlags(flags)

	if m.Flags.HasParameters() {
		pf, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		m.ParamFlags = MaskParamFlags(pf)
		if m.ParamFlags&maskParamUserDensity != 0 {
			v, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			m.UserDensity = &v
		}
		if m.ParamFlags&maskParamUserFeather != 0 {
			v, err := r.ReadFloat64()
			if err != nil {
				return nil, err
			}
			m.UserFeather = &v
		}
		if m.ParamFlags&maskParamVectorDensity != 0 {
			v, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			m.VecDensity = &v
		}
		if m.ParamFlags&maskParamVectorFeather != 0 {
			v, err := r.ReadFloat64()
			if err != nil {
				return nil, err
			}
			m.VecFeather = &v
		}
	}
	return m, nil
}

func writeMaskRecord(w *binio.Writer, m *MaskRecord) error {
	if err := w.WriteInt32(m.Bounds.Top); err != nil {
		return err
	}
	if err := w.WriteInt32(m.Bounds.Left); err != nil {
		return err
	}
	if err := w.WriteInt32(m.Bounds.Bottom); err != nil {
		return err
	}
	if err := w.WriteInt32(m.Bounds.Right); err != nil {
		return err
	}
	if err := w.WriteByte(m.DefaultColor); err != nil {
		return err
	}
	if err := w.WriteByte(byte(m.Flags)); err != nil {
		return err
	}
	if !m.Flags.HasParameters() {
		return nil
	}
	if err := w.WriteByte(byte(m.ParamFlags)); err != nil {
		return err
	}
	if m.ParamFlags&maskParamUserDensity != 0 {
		if err := w.WriteByte(*m.UserDensity); err != nil {
			return err
		}
	}
	if m.ParamFlags&maskParamUserFeather != 0 {
		if err := w.WriteFloat64(*m.UserFeather); err != nil {
			return err
		}
	}
	if m.ParamFlags&maskParamVectorDensity != 0 {
		if err := w.WriteByte(*m.VecDensity); err != nil {
			return err
		}
	}
	if m.ParamFlags&maskParamVectorFeather != 0 {
		if err := w.WriteFloat64(*m.VecFeather); err != nil {
			return err
		}
	}
	return nil
}

// maskRecordSize reports the on-wire size of m, needed to detect
// whether a second (real/vector) mask record follows the first within
// the section's declared length.
func maskRecordSize(m *MaskRecord) int64 {
	size := int64(4*4 + 1 + 1)
	if !m.Flags.HasParameters() {
		return size
	}
	size++
	if m.ParamFlags&maskParamUserDensity != 0 {
		size++
	}
	if m.ParamFlags&maskParamUserFeather != 0 {
		size += 8
	}
	if m.ParamFlags&maskParamVectorDensity != 0 {
		size++
	}
	if m.ParamFlags&maskParamVectorFeather != 0 {
		size += 8
	}
	return size
}

// ReadLayerMaskData reads the length-prefixed mask sub-section of a
// layer record. Zero length means no mask. A positive length with
// enough residual bytes after the first mask record for a second one
// means the vector mask preceded the pixel mask; the reader detects
// this from the byte count alone, per the format's own ambiguity here.
func ReadLayerMaskData(r *binio.Reader) (*LayerMaskData, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	if length == 0 {
		return nil, nil
	}

	start, err := r.Tell()
	if err != nil {
		return nil, err
	}
	end := start + int64(length)

	first, err := readMaskRecord(r)
	if err != nil {
		return nil, errors.Wrap(ErrFormat, "layer mask: first record")
	}

	data := &LayerMaskData{Mask: first}

	pos, err := r.Tell()
	if err != nil {
		return nil, err
	}
	if end-pos >= maskRecordSize(first) {
		second, err := readMaskRecord(r)
		if err != nil {
			return nil, errors.Wrap(ErrFormat, "layer mask: second record")
		}
		// On the wire the vector mask's record precedes the pixel
		// mask's; Mask always refers to the pixel mask, RealMask to
		// the vector mask when both are present.
		data.RealMask = first
		data.Mask = second
	}

	if pos, err = r.Tell(); err != nil {
		return nil, err
	}
	if pos < end {
		if err := r.Skip(end - pos); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// WriteLayerMaskData writes the mask sub-section back out, restoring
// the vector-then-pixel wire order when RealMask is present.
func WriteLayerMaskData(w *binio.Writer, data *LayerMaskData) error {
	if data == nil || data.Mask == nil {
		return w.WriteUint32(0)
	}

	lengthOffset, err := w.Tell()
	if err != nil {
		return err
	}
	if err := w.WriteUint32(0); err != nil {
		return err
	}
	bodyStart, err := w.Tell()
	if err != nil {
		return err
	}

	if data.RealMask != nil {
		if err := writeMaskRecord(w, data.RealMask); err != nil {
			return err
		}
	}
	if err := writeMaskRecord(w, data.Mask); err != nil {
		return err
	}

	bodyEnd, err := w.Tell()
	if err != nil {
		return err
	}
	return w.PatchUint32(lengthOffset, uint32(bodyEnd-bodyStart))
}
