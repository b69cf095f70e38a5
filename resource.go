package psd

import (
	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/internal/binio"
)

const resourceSignature = "8BIM"

// ResourceID identifies a well-known image-resource block. Only a
// handful of ids are structurally decoded; everything else round-trips
// as an opaque blob keyed by id.
type ResourceID uint16

const (
	ResourceIDResolutionInfo ResourceID = 1005
	ResourceIDICCProfile     ResourceID = 1039
)

// Resource is one "8BIM" block of the ImageResources section: a numeric
// id, an optional Pascal-string name, and a payload.
type Resource struct {
	ID   ResourceID
	Name string
	Data []byte
}

// ResourceSection is the length-prefixed sequence of resource blocks
// following ColorModeData.
type ResourceSection struct {
	Resources map[ResourceID]*Resource
}

func ReadResourceSection(r *binio.Reader) (*ResourceSection, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	section := &ResourceSection{Resources: make(map[ResourceID]*Resource)}
	if length == 0 {
		return section, nil
	}

	start, err := r.Tell()
	if err != nil {
		return nil, err
	}
	end := start + int64(length)

	for {
		pos, err := r.Tell()
		if err != nil {
			return nil, err
		}
		if pos >= end {
			break
		}
		res, err := readResource(r)
		if err != nil {
			return nil, errors.Wrap(err, "image resources")
		}
		section.Resources[res.ID] = res
	}
	return section, nil
}

func readResource(r *binio.Reader) (*Resource, error) {
	sig, err := r.ReadString(4)
	if err != nil {
		return nil, err
	}
	if sig != resourceSignature {
		return nil, errors.Wrapf(ErrFormat, "resource signature %q", sig)
	}

	id, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	name, err := r.ReadPascalString(2)
	if err != nil {
		return nil, err
	}

	dataLen, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	var data []byte
	if dataLen > 0 {
		data, err = r.ReadBytes(int(dataLen))
		if err != nil {
			return nil, err
		}
	}
	if dataLen%2 != 0 {
		if err := r.Skip(1); err != nil {
			return nil, err
		}
	}

	return &Resource{ID: ResourceID(id), Name: name, Data: data}, nil
}

// WriteResourceSection emits the length-prefixed resource sequence. The
// length prefix is written via a two-pass patch (reserve, write body,
// patch) since the total size isn't known until every block is emitted.
func WriteResourceSection(w *binio.Writer, section *ResourceSection) error {
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

	for _, res := range orderedResources(section.Resources) {
		if err := writeResource(w, res); err != nil {
			return err
		}
	}

	bodyEnd, err := w.Tell()
	if err != nil {
		return err
	}
	return w.PatchUint32(lengthOffset, uint32(bodyEnd-bodyStart))
}

func writeResource(w *binio.Writer, res *Resource) error {
	if err := w.WriteString(resourceSignature); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(res.ID)); err != nil {
		return err
	}
	if err := w.WritePascalString(res.Name, 2); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(res.Data))); err != nil {
		return err
	}
	if err := w.WriteBytes(res.Data); err != nil {
		return err
	}
	if len(res.Data)%2 != 0 {
		return w.WriteZeros(1)
	}
	return nil
}

// orderedResources returns resources sorted by id for deterministic
// output; map iteration order would otherwise make writes nondeterministic.
func orderedResources(m map[ResourceID]*Resource) []*Resource {
	out := make([]*Resource, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].ID > out[j].ID; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// ResolutionUnit is the unit enum carried alongside each fixed-point DPI
// value in the resolution resource.
type ResolutionUnit uint16

const (
	ResolutionUnitPixelsPerInch ResolutionUnit = 1
	ResolutionUnitPixelsPerCM   ResolutionUnit = 2
)

// ResolutionInfo is resource id 1005: horizontal/vertical DPI stored as
// 16.16 fixed point, plus display-unit enums for width/height.
type ResolutionInfo struct {
	HRes       float64
	HResUnit   ResolutionUnit
	WidthUnit  uint16
	VRes       float64
	VResUnit   ResolutionUnit
	HeightUnit uint16
}

func fixed16_16ToFloat(v int32) float64 {
	return float64(v) / 65536.0
}

func floatToFixed16_16(v float64) int32 {
	return int32(v*65536.0 + 0.5)
}

// ParseResolutionInfo decodes resource id 1005's payload.
func ParseResolutionInfo(data []byte) (*ResolutionInfo, error) {
	s := binio.NewMemStream(data)
	r := binio.NewReader(s)

	hres, err := r.ReadInt32()
	if err != nil {
		return nil, errors.Wrap(ErrFormat, "resolution info: hres")
	}
	hResUnit, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	widthUnit, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	vres, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	vResUnit, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	heightUnit, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	return &ResolutionInfo{
		HRes:       fixed16_16ToFloat(hres),
		HResUnit:   ResolutionUnit(hResUnit),
		WidthUnit:  widthUnit,
		VRes:       fixed16_16ToFloat(vres),
		VResUnit:   ResolutionUnit(vResUnit),
		HeightUnit: heightUnit,
	}, nil
}

// EncodeResolutionInfo serializes a ResolutionInfo back to its 16-byte
// payload, suitable for a Resource with ID ResourceIDResolutionInfo.
func EncodeResolutionInfo(info *ResolutionInfo) []byte {
	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	w.WriteInt32(floatToFixed16_16(info.HRes))
	w.WriteUint16(uint16(info.HResUnit))
	w.WriteUint16(info.WidthUnit)
	w.WriteInt32(floatToFixed16_16(info.VRes))
	w.WriteUint16(uint16(info.VResUnit))
	w.WriteUint16(info.HeightUnit)
	return s.Bytes()
}
