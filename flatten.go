package psd

import "github.com/go-photoshop/gopsd/compression"

// FlattenLayerTree serializes root back into the flat, on-disk,
// bottom-of-stack-first LayerRecord order BuildLayerTree reconstructs
// a tree from. A group's content is bracketed by a bounding-divider
// sentinel record (written first, at the lowest index of the group's
// span) and the group's own layer record (written last, closing the
// span) — the mirror image of BuildLayerTree's reverse-iteration
// stack walk.
func FlattenLayerTree(root *LayerNode, mode ColorMode) []*LayerRecord {
	var out []*LayerRecord
	flattenChildren(root, mode, &out)
	return out
}

func flattenChildren(n *LayerNode, mode ColorMode, out *[]*LayerRecord) {
	for i := len(n.Children) - 1; i >= 0; i-- {
		c := n.Children[i]
		if c.Kind == LayerKindGroup || c.Kind == LayerKindArtboard {
			*out = append(*out, newBoundingDividerRecord(mode))
			flattenChildren(c, mode, out)
			*out = append(*out, c.Record)
			continue
		}
		*out = append(*out, c.Record)
	}
}

// newBoundingDividerRecord builds the zero-bounds sentinel layer record
// that marks the start of a group's child span on disk: empty color
// channels (present so channel-count bookkeeping stays uniform across
// every record) and an "lsct" block carrying SectionBoundingEnd.
func newBoundingDividerRecord(mode ColorMode) *LayerRecord {
	store := NewChannelStore()
	for _, id := range mode.RequiredChannelIDs() {
		store.Put(NewChannel(ChannelRoleID(id), 0, 0, SampleUint8, compression.MethodRaw))
	}
	return &LayerRecord{
		Bounds:       Rect{},
		Channels:     store,
		BlendModeKey: "norm",
		Opacity:      255,
		Name:         "",
		AdditionalInfo: &TaggedBlockSet{Blocks: []TaggedBlock{
			{Signature: "8BIM", Key: "lsct", Data: EncodeSectionDivider(&SectionDivider{Kind: SectionBoundingEnd})},
		}},
	}
}
