package psd

import (
	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/internal/binio"
)

// wideLengthKeys is the closed set of AdditionalLayerInfo keys whose
// length prefix is variant-width (uint32 for PSD, uint64 for PSB)
// rather than the fixed 4-byte length every other key uses.
var wideLengthKeys = map[string]bool{
	"Lr16": true, "Lr32": true, "Alph": true,
	"Mt16": true, "Mt32": true, "Mtrn": true,
	"LMsk": true, "FMsk": true,
	"lnk2": true, "lnk3": true, "lnkE": true,
	"FEid": true, "FXid": true, "PxSD": true, "cinf": true,
}

// TaggedBlock is one entry of an AdditionalLayerInfo sequence: a 4-byte
// key and its payload. Most keys round-trip opaquely; a handful can
// additionally be decoded on demand into the typed values below (for
// example by LayerRecord.SectionDivider and LayerRecord.UnicodeName);
// the decoded values are not stored back on the owning record.
type TaggedBlock struct {
	Signature string // "8BIM" or "8B64"
	Key       string
	Data      []byte
}

// TaggedBlockSet is the ordered AdditionalLayerInfo sequence attached to
// a layer record or to the LayerAndMaskInformation section itself.
// Order is preserved on write since some readers are sensitive to it.
type TaggedBlockSet struct {
	Blocks []TaggedBlock
}

func (s *TaggedBlockSet) Get(key string) (*TaggedBlock, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Blocks {
		if s.Blocks[i].Key == key {
			return &s.Blocks[i], true
		}
	}
	return nil, false
}

// ReadTaggedBlockSet reads a sequence of tagged blocks until end (an
// absolute stream offset), the shape shared by both the per-layer
// AdditionalLayerInfo and the LayerAndMaskInformation-level one.
func ReadTaggedBlockSet(r *binio.Reader, v binio.Version, end int64) (*TaggedBlockSet, error) {
	set := &TaggedBlockSet{}
	for {
		pos, err := r.Tell()
		if err != nil {
			return nil, err
		}
		if pos >= end {
			break
		}

		sig, err := r.ReadString(4)
		if err != nil {
			return nil, errors.Wrap(ErrIO, err.Error())
		}
		if sig != "8BIM" && sig != "8B64" {
			return nil, errors.Wrapf(ErrFormat, "tagged block signature %q", sig)
		}
		key, err := r.ReadString(4)
		if err != nil {
			return nil, err
		}

		var length uint64
		if wideLengthKeys[key] {
			length, err = r.ReadVariantSize32(v)
		} else {
			var l uint32
			l, err = r.ReadUint32()
			length = uint64(l)
		}
		if err != nil {
			return nil, err
		}

		var data []byte
		if length > 0 {
			data, err = r.ReadBytes(int(length))
			if err != nil {
				return nil, errors.Wrapf(ErrIO, "tagged block %q: %v", key, err)
			}
		}
		if pad := paddingForLen(int(length), 4); pad > 0 {
			if err := r.Skip(int64(pad)); err != nil {
				return nil, err
			}
		}

		set.Blocks = append(set.Blocks, TaggedBlock{Signature: sig, Key: key, Data: data})
	}
	return set, nil
}

// WriteTaggedBlockSet writes the sequence back, each block's length
// computed from its payload and its wideness class re-derived from the
// key, not from what was read (so a caller can append new blocks).
func WriteTaggedBlockSet(w *binio.Writer, v binio.Version, set *TaggedBlockSet) error {
	if set == nil {
		return nil
	}
	for _, b := range set.Blocks {
		sig := b.Signature
		if sig == "" {
			sig = "8BIM"
		}
		if err := w.WriteString(sig); err != nil {
			return err
		}
		if err := w.WriteString(b.Key); err != nil {
			return err
		}
		if wideLengthKeys[b.Key] {
			if err := w.WriteVariantSize32(v, uint64(len(b.Data))); err != nil {
				return err
			}
		} else {
			if err := w.WriteUint32(uint32(len(b.Data))); err != nil {
				return err
			}
		}
		if err := w.WriteBytes(b.Data); err != nil {
			return err
		}
		if pad := paddingForLen(len(b.Data), 4); pad > 0 {
			if err := w.WriteZeros(pad); err != nil {
				return err
			}
		}
	}
	return nil
}

func paddingForLen(n, align int) int {
	rem := n % align
	if rem == 0 {
		return 0
	}
	return align - rem
}

// SectionDividerKind is the lsct/lsdk tagged block's layer-section type.
type SectionDividerKind int32

const (
	SectionOther         SectionDividerKind = 0
	SectionOpenFolder    SectionDividerKind = 1
	SectionClosedFolder  SectionDividerKind = 2
	SectionBoundingEnd   SectionDividerKind = 3
)

// SectionDivider is the decoded form of the "lsct"/"lsdk" tagged block.
// BlendMode is only populated for groups whose blend mode is
// "Pass Through", which the format stores here rather than on the
// layer record itself (the record always carries "norm" in that case).
type SectionDivider struct {
	Kind      SectionDividerKind
	BlendMode string
	SubType   int32
}

// DecodeSectionDivider parses an "lsct"/"lsdk" tagged block payload.
func DecodeSectionDivider(data []byte) (*SectionDivider, error) {
	r := binio.NewReader(binio.NewMemStream(data))
	kind, err := r.ReadInt32()
	if err != nil {
		return nil, errors.Wrap(ErrFormat, "section divider: kind")
	}
	sd := &SectionDivider{Kind: SectionDividerKind(kind)}

	if len(data) >= 12 {
		sig, err := r.ReadString(4)
		if err == nil && sig == "8BIM" {
			mode, err := r.ReadString(4)
			if err != nil {
				return nil, err
			}
			sd.BlendMode = mode
		}
	}
	if len(data) >= 16 {
		sub, err := r.ReadInt32()
		if err == nil {
			sd.SubType = sub
		}
	}
	return sd, nil
}

// EncodeSectionDivider serializes a SectionDivider back to its tagged
// block payload.
func EncodeSectionDivider(sd *SectionDivider) []byte {
	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	w.WriteInt32(int32(sd.Kind))
	if sd.BlendMode != "" {
		w.WriteString("8BIM")
		bm := sd.BlendMode
		if len(bm) < 4 {
			bm = bm + "    "[:4-len(bm)]
		}
		w.WriteString(bm[:4])
		w.WriteInt32(sd.SubType)
	}
	return s.Bytes()
}

// DecodeUnicodeName parses the "luni" tagged block: a uint32 UTF-16BE
// code-unit count followed by that many 16-bit code units, overriding
// the layer record's truncated Pascal name.
func DecodeUnicodeName(data []byte) (string, error) {
	r := binio.NewReader(binio.NewMemStream(data))
	n, err := r.ReadUint32()
	if err != nil {
		return "", errors.Wrap(ErrFormat, "unicode name: length")
	}
	units := make([]uint16, n)
	for i := range units {
		u, err := r.ReadUint16()
		if err != nil {
			return "", errors.Wrap(ErrFormat, "unicode name: truncated")
		}
		units[i] = u
	}
	return decodeUTF16BE(units), nil
}

// EncodeUnicodeName serializes a name back to the "luni" payload shape.
func EncodeUnicodeName(name string) []byte {
	units := encodeUTF16BE(name)
	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	w.WriteUint32(uint32(len(units)))
	for _, u := range units {
		w.WriteUint16(u)
	}
	return s.Bytes()
}

// DecodeReferencePoint parses the "fxrp" tagged block: two float64s
// giving the layer's reference point in document-relative coordinates.
func DecodeReferencePoint(data []byte) (x, y float64, err error) {
	r := binio.NewReader(binio.NewMemStream(data))
	if x, err = r.ReadFloat64(); err != nil {
		return 0, 0, errors.Wrap(ErrFormat, "reference point: x")
	}
	if y, err = r.ReadFloat64(); err != nil {
		return 0, 0, errors.Wrap(ErrFormat, "reference point: y")
	}
	return x, y, nil
}

func EncodeReferencePoint(x, y float64) []byte {
	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	w.WriteFloat64(x)
	w.WriteFloat64(y)
	return s.Bytes()
}

// ProtectedSettings decodes the "lspf" tagged block's lock-flags bitset.
type ProtectedSettings struct {
	Transparency bool
	Composite    bool
	Position     bool
}

func DecodeProtectedSettings(data []byte) (*ProtectedSettings, error) {
	if len(data) < 4 {
		return nil, errors.Wrap(ErrFormat, "protected settings: short payload")
	}
	flags := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	return &ProtectedSettings{
		Transparency: flags&1 != 0,
		Composite:    flags&2 != 0,
		Position:     flags&4 != 0,
	}, nil
}

func EncodeProtectedSettings(p *ProtectedSettings) []byte {
	var flags uint32
	if p.Transparency {
		flags |= 1
	}
	if p.Composite {
		flags |= 2
	}
	if p.Position {
		flags |= 4
	}
	return []byte{byte(flags >> 24), byte(flags >> 16), byte(flags >> 8), byte(flags)}
}
