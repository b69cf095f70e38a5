package psd

import (
	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/internal/binio"
)

// LayerInfo is the flat, on-disk-ordered list of layer records and
// their channel image data, plus the sign bit that marks whether the
// first alpha channel doubles as the merged-image's own alpha.
type LayerInfo struct {
	Records                 []*LayerRecord
	MergedAlphaInFirstChan  bool
}

// ReadLayerInfo reads the variant-width-length-prefixed LayerInfo
// block: a signed layer count (negative meaning the merged image's
// alpha lives in the first layer's first alpha channel), that many
// layer records, then that many channel-data blobs in the same order.
func ReadLayerInfo(r *binio.Reader, v binio.Version, depth uint16) (*LayerInfo, error) {
	length, err := r.ReadVariantSize32(v)
	if err != nil {
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	info := &LayerInfo{}
	if length == 0 {
		return info, nil
	}

	start, err := r.Tell()
	if err != nil {
		return nil, err
	}
	end := start + int64(length)

	count, err := r.ReadInt16()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		info.MergedAlphaInFirstChan = true
		count = -count
	}

	records := make([]*LayerRecord, count)
	channelInfos := make([][]channelInfoEntry, count)
	for i := range records {
		rec, chInfo, err := ReadLayerRecord(r, v)
		if err != nil {
			return nil, errors.Wrapf(err, "layer record %d", i)
		}
		records[i] = rec
		channelInfos[i] = chInfo
	}

	for i, rec := range records {
		if err := ReadLayerChannelData(r, v, rec.Bounds, rec.Mask, channelInfos[i], depth, rec.Channels); err != nil {
			return nil, errors.Wrapf(err, "layer %d channel data", i)
		}
	}

	info.Records = records

	pos, err := r.Tell()
	if err != nil {
		return nil, err
	}
	if pos < end {
		if err := r.Skip(end - pos); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// WriteLayerInfo writes the LayerInfo block: the variant-width length
// prefix (two-pass patched), the signed count, every layer record, and
// every layer's channel data, mirroring the read order exactly.
func WriteLayerInfo(w *binio.Writer, v binio.Version, info *LayerInfo, zipLevel int) error {
	lengthOffset, err := w.Tell()
	if err != nil {
		return err
	}
	if err := w.WriteVariantSize32(v, 0); err != nil {
		return err
	}
	bodyStart, err := w.Tell()
	if err != nil {
		return err
	}

	count := int16(len(info.Records))
	if info.MergedAlphaInFirstChan {
		count = -count
	}
	if err := w.WriteInt16(count); err != nil {
		return err
	}

	channelSizes := make([]map[ChannelRoleID]uint64, len(info.Records))
	// Layer records reference each channel's on-disk size, which is
	// only known after encoding; encode first into a scratch buffer
	// per layer so the record's channel-info table can be written
	// with correct sizes before its channel data follows.
	encodedChannels := make([][]byte, len(info.Records))
	for i, rec := range info.Records {
		scratch := binio.NewMemStream(nil)
		sw := binio.NewWriter(scratch)
		sizes, err := WriteLayerChannelData(sw, v, rec.Channels, zipLevel)
		if err != nil {
			return errors.Wrapf(err, "layer %d channel encode", i)
		}
		channelSizes[i] = sizes
		encodedChannels[i] = scratch.Bytes()
	}

	for i, rec := range info.Records {
		if err := WriteLayerRecord(w, v, rec, channelSizes[i]); err != nil {
			return errors.Wrapf(err, "layer record %d", i)
		}
	}
	for i, data := range encodedChannels {
		if err := w.WriteBytes(data); err != nil {
			return errors.Wrapf(err, "layer %d channel data", i)
		}
	}

	bodyEnd, err := w.Tell()
	if err != nil {
		return err
	}
	return w.PatchVariantSize32(v, lengthOffset, uint64(bodyEnd-bodyStart))
}

// LayerAndMaskInformation is the outer, variant-width-length-prefixed
// section containing the LayerInfo, an opaque GlobalLayerMaskInfo
// block (its internals are undocumented and round-trip as raw bytes),
// and a trailing document-level AdditionalLayerInfo sequence (this is
// where Lr16/Lr32 live for 16/32-bit documents, whose main LayerInfo
// above is then empty).
type LayerAndMaskInformation struct {
	Info                *LayerInfo
	GlobalLayerMaskInfo []byte
	AdditionalInfo      *TaggedBlockSet
}

func ReadLayerAndMaskInformation(r *binio.Reader, v binio.Version, depth uint16) (*LayerAndMaskInformation, error) {
	length, err := r.ReadVariantSize32(v)
	if err != nil {
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	result := &LayerAndMaskInformation{}
	if length == 0 {
		return result, nil
	}

	start, err := r.Tell()
	if err != nil {
		return nil, err
	}
	end := start + int64(length)

	info, err := ReadLayerInfo(r, v, depth)
	if err != nil {
		return nil, errors.Wrap(err, "layer info")
	}
	result.Info = info

	pos, err := r.Tell()
	if err != nil {
		return nil, err
	}
	if pos < end {
		gmLen, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		if gmLen > 0 {
			result.GlobalLayerMaskInfo, err = r.ReadBytes(int(gmLen))
			if err != nil {
				return nil, err
			}
		}
	}

	pos, err = r.Tell()
	if err != nil {
		return nil, err
	}
	if pos < end {
		result.AdditionalInfo, err = ReadTaggedBlockSet(r, v, end)
		if err != nil {
			return nil, errors.Wrap(err, "layer and mask: additional info")
		}
	} else {
		result.AdditionalInfo = &TaggedBlockSet{}
	}

	if pos, err = r.Tell(); err != nil {
		return nil, err
	}
	if pos < end {
		if err := r.Skip(end - pos); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func WriteLayerAndMaskInformation(w *binio.Writer, v binio.Version, section *LayerAndMaskInformation, zipLevel int) error {
	lengthOffset, err := w.Tell()
	if err != nil {
		return err
	}
	if err := w.WriteVariantSize32(v, 0); err != nil {
		return err
	}
	bodyStart, err := w.Tell()
	if err != nil {
		return err
	}

	info := section.Info
	if info == nil {
		info = &LayerInfo{}
	}
	if err := WriteLayerInfo(w, v, info, zipLevel); err != nil {
		return err
	}

	if err := w.WriteUint32(uint32(len(section.GlobalLayerMaskInfo))); err != nil {
		return err
	}
	if err := w.WriteBytes(section.GlobalLayerMaskInfo); err != nil {
		return err
	}

	if err := WriteTaggedBlockSet(w, v, section.AdditionalInfo); err != nil {
		return err
	}

	bodyEnd, err := w.Tell()
	if err != nil {
		return err
	}
	return w.PatchVariantSize32(v, lengthOffset, uint64(bodyEnd-bodyStart))
}
