package psd

import (
	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/compression"
	"github.com/go-photoshop/gopsd/internal/binio"
)

// LayerFlags is the layer record's packed bit-flags byte. Bits 5-7 are
// unspecified by the format and must be preserved verbatim across a
// read/write round trip rather than synthesized.
type LayerFlags uint8

const (
	LayerFlagTransparencyProtected LayerFlags = 1 << 0
	LayerFlagHidden                LayerFlags = 1 << 1
	LayerFlagObsolete              LayerFlags = 1 << 2
	LayerFlagBit4Meaningful        LayerFlags = 1 << 3
	LayerFlagPixelDataIrrelevant   LayerFlags = 1 << 4
)

func (f LayerFlags) TransparencyProtected() bool { return f&LayerFlagTransparencyProtected != 0 }
func (f LayerFlags) Hidden() bool                { return f&LayerFlagHidden != 0 }
func (f LayerFlags) Visible() bool               { return !f.Hidden() }
func (f LayerFlags) Obsolete() bool              { return f&LayerFlagObsolete != 0 }
func (f LayerFlags) Bit4Meaningful() bool        { return f&LayerFlagBit4Meaningful != 0 }

// PixelDataIrrelevant is only meaningful when Bit4Meaningful is set.
func (f LayerFlags) PixelDataIrrelevant() bool {
	return f.Bit4Meaningful() && f&LayerFlagPixelDataIrrelevant != 0
}

// channelInfoEntry is one row of the layer record's channel-info table:
// a role id and the channel's total compressed size on disk, including
// its own 2-byte compression marker.
type channelInfoEntry struct {
	RoleID        ChannelRoleID
	CompressedLen uint64
}

// LayerRecord is one entry of the LayerInfo list: bounds, the channel
// table backing it, blend mode, opacity/clipping/flags, the optional
// mask and blending-ranges sub-records, the display name, and any
// trailing AdditionalLayerInfo tagged blocks.
//
// Backed by the typed Channel/ChannelStore and the four-codec
// compression package, rather than a raw byte map and RLE-only
// decompression.
type LayerRecord struct {
	Bounds Rect

	Channels *ChannelStore

	BlendModeKey string
	Opacity      uint8
	Clipping     uint8
	Flags        LayerFlags

	Mask            *LayerMaskData
	BlendingRanges  []byte // opaque passthrough, per spec's "2+4xN bytes, not decoded"
	Name            string
	AdditionalInfo  *TaggedBlockSet
}

func (l *LayerRecord) Width() int32  { return l.Bounds.Width() }
func (l *LayerRecord) Height() int32 { return l.Bounds.Height() }

// UnicodeName returns the luni tagged block's name when present,
// falling back to the Pascal name otherwise — luni overrides Name on
// names too long for the 255-byte Pascal string.
func (l *LayerRecord) UnicodeName() string {
	if b, ok := l.AdditionalInfo.Get("luni"); ok {
		if name, err := DecodeUnicodeName(b.Data); err == nil {
			return name
		}
	}
	return l.Name
}

// SectionDivider returns the decoded lsct/lsdk block, if present.
func (l *LayerRecord) SectionDivider() *SectionDivider {
	key := "lsct"
	b, ok := l.AdditionalInfo.Get(key)
	if !ok {
		key = "lsdk"
		b, ok = l.AdditionalInfo.Get(key)
	}
	if !ok {
		return nil
	}
	sd, err := DecodeSectionDivider(b.Data)
	if err != nil {
		return nil
	}
	return sd
}

// BlendModeName resolves the layer's effective blend mode, preferring
// the section-divider's "Pass Through" override for group layers.
func (l *LayerRecord) BlendModeName() string {
	if sd := l.SectionDivider(); sd != nil && sd.BlendMode != "" {
		return BlendModeName(sd.BlendMode)
	}
	return BlendModeName(l.BlendModeKey)
}

// readChannelInfoTable reads the channel-count/channel-info prefix of
// a layer record, returning the entries in on-disk order.
func readChannelInfoTable(r *binio.Reader, v binio.Version) ([]channelInfoEntry, error) {
	count, err := r.ReadUint16()
	if err != nil {
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	if count > 56 {
		return nil, errors.Wrapf(ErrValidation, "layer channel count %d exceeds 56", count)
	}
	entries := make([]channelInfoEntry, count)
	for i := range entries {
		id, err := r.ReadInt16()
		if err != nil {
			return nil, err
		}
		size, err := r.ReadVariantSize32(v)
		if err != nil {
			return nil, err
		}
		entries[i] = channelInfoEntry{RoleID: ChannelRoleID(id), CompressedLen: size}
	}
	return entries, nil
}

// ReadLayerRecord reads one LayerRecord's fixed prefix and extra-data
// block (mask, blending ranges, name, AdditionalLayerInfo). It does not
// read the channel image data that follows all layer records in the
// wire format — see ReadLayerChannelData.
func ReadLayerRecord(r *binio.Reader, v binio.Version) (*LayerRecord, []channelInfoEntry, error) {
	l := &LayerRecord{Channels: NewChannelStore()}

	var err error
	if l.Bounds.Top, err = r.ReadInt32(); err != nil {
		return nil, nil, err
	}
	if l.Bounds.Left, err = r.ReadInt32(); err != nil {
		return nil, nil, err
	}
	if l.Bounds.Bottom, err = r.ReadInt32(); err != nil {
		return nil, nil, err
	}
	if l.Bounds.Right, err = r.ReadInt32(); err != nil {
		return nil, nil, err
	}

	channelInfo, err := readChannelInfoTable(r, v)
	if err != nil {
		return nil, nil, err
	}

	sig, err := r.ReadString(4)
	if err != nil {
		return nil, nil, err
	}
	if sig != "8BIM" {
		return nil, nil, errors.Wrapf(ErrFormat, "layer record blend signature %q", sig)
	}
	if l.BlendModeKey, err = r.ReadString(4); err != nil {
		return nil, nil, err
	}
	if l.Opacity, err = r.ReadByte(); err != nil {
		return nil, nil, err
	}
	if l.Clipping, err = r.ReadByte(); err != nil {
		return nil, nil, err
	}
	flags, err := r.ReadByte()
	if err != nil {
		return nil, nil, err
	}
	l.Flags = LayerFlags(flags)
	if err := r.Skip(1); err != nil { // filler
		return nil, nil, err
	}

	extraLen, err := r.ReadUint32()
	if err != nil {
		return nil, nil, err
	}
	if extraLen > 0 {
		extraStart, err := r.Tell()
		if err != nil {
			return nil, nil, err
		}
		extraEnd := extraStart + int64(extraLen)

		if l.Mask, err = ReadLayerMaskData(r); err != nil {
			return nil, nil, errors.Wrap(err, "layer record: mask")
		}
		if l.BlendingRanges, err = readBlendingRanges(r); err != nil {
			return nil, nil, errors.Wrap(err, "layer record: blending ranges")
		}
		if l.Name, err = r.ReadPascalString(4); err != nil {
			return nil, nil, errors.Wrap(err, "layer record: name")
		}

		pos, err := r.Tell()
		if err != nil {
			return nil, nil, err
		}
		if pos < extraEnd {
			l.AdditionalInfo, err = ReadTaggedBlockSet(r, v, extraEnd)
			if err != nil {
				return nil, nil, errors.Wrap(err, "layer record: additional info")
			}
		} else {
			l.AdditionalInfo = &TaggedBlockSet{}
		}
	} else {
		l.AdditionalInfo = &TaggedBlockSet{}
	}

	return l, channelInfo, nil
}

func readBlendingRanges(r *binio.Reader) ([]byte, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	return r.ReadBytes(int(length))
}

// WriteLayerRecord writes the fixed prefix and extra-data block of l,
// deriving the channel-info table from l.Channels rather than a cached
// copy, so edits to the channel store are always reflected on write.
// channelSizes must give each channel's total on-disk size (including
// its 2-byte compression marker), keyed by channel role id, computed by
// the caller after encoding the channel data.
func WriteLayerRecord(w *binio.Writer, v binio.Version, l *LayerRecord, channelSizes map[ChannelRoleID]uint64) error {
	if err := w.WriteInt32(l.Bounds.Top); err != nil {
		return err
	}
	if err := w.WriteInt32(l.Bounds.Left); err != nil {
		return err
	}
	if err := w.WriteInt32(l.Bounds.Bottom); err != nil {
		return err
	}
	if err := w.WriteInt32(l.Bounds.Right); err != nil {
		return err
	}

	ids := l.Channels.IDs()
	if err := w.WriteUint16(uint16(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		if err := w.WriteInt16(int16(id)); err != nil {
			return err
		}
		if err := w.WriteVariantSize32(v, channelSizes[id]); err != nil {
			return err
		}
	}

	if err := w.WriteString("8BIM"); err != nil {
		return err
	}
	if err := w.WriteString(l.BlendModeKey); err != nil {
		return err
	}
	if err := w.WriteByte(l.Opacity); err != nil {
		return err
	}
	if err := w.WriteByte(l.Clipping); err != nil {
		return err
	}
	if err := w.WriteByte(byte(l.Flags)); err != nil {
		return err
	}
	if err := w.WriteZeros(1); err != nil {
		return err
	}

	extraLenOffset, err := w.Tell()
	if err != nil {
		return err
	}
	if err := w.WriteUint32(0); err != nil {
		return err
	}
	extraStart, err := w.Tell()
	if err != nil {
		return err
	}

	if err := WriteLayerMaskData(w, l.Mask); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(l.BlendingRanges))); err != nil {
		return err
	}
	if err := w.WriteBytes(l.BlendingRanges); err != nil {
		return err
	}
	if err := w.WritePascalString(l.Name, 4); err != nil {
		return err
	}
	if err := WriteTaggedBlockSet(w, v, l.AdditionalInfo); err != nil {
		return err
	}

	extraEnd, err := w.Tell()
	if err != nil {
		return err
	}
	return w.PatchUint32(extraLenOffset, uint32(extraEnd-extraStart))
}

// ReadLayerChannelData reads one layer's channel image data blobs, in
// channel-info order, attaching Channel objects to store that hold the
// still-compressed payload (decoded lazily by Channel.Decode).
// Mask channels (-2/-3) take their dimensions from mask.Bounds rather
// than the layer's own bounds.
func ReadLayerChannelData(r *binio.Reader, v binio.Version, bounds Rect, mask *LayerMaskData, infos []channelInfoEntry, depth uint16, store *ChannelStore) error {
	sampleType, _ := SampleTypeForDepth(depth)

	for _, info := range infos {
		width, height := int(bounds.Width()), int(bounds.Height())
		if info.RoleID.Kind() == ChannelRoleUserMask || info.RoleID.Kind() == ChannelRoleRealUserMask {
			if mb := maskBoundsFor(mask, info.RoleID); mb != nil {
				width, height = int(mb.Width()), int(mb.Height())
			}
		}

		start, err := r.Tell()
		if err != nil {
			return err
		}
		end := start + int64(info.CompressedLen)

		if info.CompressedLen < 2 {
			if info.CompressedLen > 0 {
				if err := r.Skip(int64(info.CompressedLen)); err != nil {
					return err
				}
			}
			continue
		}

		markerU, err := r.ReadUint16()
		if err != nil {
			return errors.Wrapf(ErrIO, "channel %d marker: %v", info.RoleID, err)
		}
		method := compression.Method(markerU)
		payloadLen := int(info.CompressedLen) - 2
		payload, err := r.ReadBytes(payloadLen)
		if err != nil {
			return errors.Wrapf(ErrIO, "channel %d payload: %v", info.RoleID, err)
		}

		ch := NewChannel(info.RoleID, width, height, sampleType, method)
		ch.payload = payload
		store.Put(ch)

		pos, err := r.Tell()
		if err != nil {
			return err
		}
		if pos != end {
			if _, err := r.Seek(end, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

func maskBoundsFor(mask *LayerMaskData, id ChannelRoleID) *Rect {
	if mask == nil {
		return nil
	}
	if id == ChannelRoleIDRealUserMask && mask.RealMask != nil {
		return &mask.RealMask.Bounds
	}
	if mask.Mask != nil {
		return &mask.Mask.Bounds
	}
	return nil
}

// WriteLayerChannelData encodes and writes every channel in store, in
// channel-id order, returning each channel's total on-disk size
// (2-byte marker included) so the caller can fill in the layer
// record's channel-info table.
func WriteLayerChannelData(w *binio.Writer, v binio.Version, store *ChannelStore, zipLevel int) (map[ChannelRoleID]uint64, error) {
	sizes := make(map[ChannelRoleID]uint64, store.Len())
	for _, id := range store.IDs() {
		ch, _ := store.Get(id)
		payload, err := ch.Encode(v, zipLevel)
		if err != nil {
			return nil, err
		}
		if err := w.WriteUint16(uint16(ch.Compression)); err != nil {
			return nil, err
		}
		if err := w.WriteBytes(payload); err != nil {
			return nil, err
		}
		sizes[id] = uint64(len(payload) + 2)
	}
	return sizes, nil
}
