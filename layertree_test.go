package psd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedImageRecord(name string) *LayerRecord {
	return &LayerRecord{
		Name:           name,
		BlendModeKey:   "norm",
		Opacity:        255,
		Channels:       NewChannelStore(),
		AdditionalInfo: &TaggedBlockSet{},
	}
}

func groupRecord(name string, kind SectionDividerKind) *LayerRecord {
	r := namedImageRecord(name)
	r.AdditionalInfo = &TaggedBlockSet{Blocks: []TaggedBlock{
		{Signature: "8BIM", Key: "lsct", Data: EncodeSectionDivider(&SectionDivider{Kind: kind})},
	}}
	return r
}

func TestClassifyLayerRecordImage(t *testing.T) {
	assert.Equal(t, LayerKindImage, ClassifyLayerRecord(namedImageRecord("x")))
}

func TestClassifyLayerRecordAdjustment(t *testing.T) {
	rec := namedImageRecord("curves")
	rec.AdditionalInfo = &TaggedBlockSet{Blocks: []TaggedBlock{{Signature: "8BIM", Key: "curv", Data: nil}}}
	assert.Equal(t, LayerKindAdjustment, ClassifyLayerRecord(rec))
}

func TestClassifyLayerRecordShapeNeedsVectorMask(t *testing.T) {
	rec := namedImageRecord("fill")
	rec.AdditionalInfo = &TaggedBlockSet{Blocks: []TaggedBlock{
		{Signature: "8BIM", Key: "SoCo", Data: nil},
		{Signature: "8BIM", Key: "vmsk", Data: nil},
	}}
	assert.Equal(t, LayerKindShape, ClassifyLayerRecord(rec))
}

func TestClassifyLayerRecordFillWithoutMaskIsAdjustment(t *testing.T) {
	rec := namedImageRecord("fill")
	rec.AdditionalInfo = &TaggedBlockSet{Blocks: []TaggedBlock{{Signature: "8BIM", Key: "GdFl", Data: nil}}}
	assert.Equal(t, LayerKindAdjustment, ClassifyLayerRecord(rec))
}

func TestClassifyLayerRecordGroupVsSectionDivider(t *testing.T) {
	open := groupRecord("folder", SectionOpenFolder)
	assert.Equal(t, LayerKindGroup, ClassifyLayerRecord(open))

	end := groupRecord("", SectionBoundingEnd)
	assert.Equal(t, LayerKindSectionDivider, ClassifyLayerRecord(end))
}

func TestClassifyLayerRecordArtboard(t *testing.T) {
	rec := groupRecord("Artboard 1", SectionOpenFolder)
	rec.AdditionalInfo.Blocks = append(rec.AdditionalInfo.Blocks, TaggedBlock{Signature: "8BIM", Key: "artb", Data: nil})
	assert.Equal(t, LayerKindArtboard, ClassifyLayerRecord(rec))
}

// TestBuildLayerTreeNestedGroup reconstructs a tree from the on-disk flat
// order a single-level-nested group produces: background leaf first (bottom
// of stack), then the group's bounding-divider sentinel, the group's one
// child, and the group's own record last (closing the span).
func TestBuildLayerTreeNestedGroup(t *testing.T) {
	background := namedImageRecord("background")
	divider := groupRecord("", SectionBoundingEnd)
	inner := namedImageRecord("inner")
	group := groupRecord("folder", SectionOpenFolder)

	records := []*LayerRecord{background, divider, inner, group}
	root := BuildLayerTree(records, 100, 100)

	require.Len(t, root.Children, 2)
	assert.Equal(t, "folder", root.Children[0].Name)
	assert.Equal(t, LayerKindGroup, root.Children[0].Kind)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, "inner", root.Children[0].Children[0].Name)
	assert.Equal(t, "background", root.Children[1].Name)
}

func TestLayerNodePathAndFind(t *testing.T) {
	background := namedImageRecord("background")
	divider := groupRecord("", SectionBoundingEnd)
	inner := namedImageRecord("inner")
	group := groupRecord("folder", SectionOpenFolder)

	root := BuildLayerTree([]*LayerRecord{background, divider, inner, group}, 100, 100)
	innerNode := root.Children[0].Children[0]
	assert.Equal(t, "folder/inner", innerNode.Path())

	matches := root.Find("folder/inner")
	require.Len(t, matches, 1)
	assert.Same(t, innerNode, matches[0])

	assert.Empty(t, root.Find("nonexistent"))
}

func TestLayerNodeMoveAndRemove(t *testing.T) {
	background := namedImageRecord("background")
	divider := groupRecord("", SectionBoundingEnd)
	inner := namedImageRecord("inner")
	group := groupRecord("folder", SectionOpenFolder)

	root := BuildLayerTree([]*LayerRecord{background, divider, inner, group}, 100, 100)
	groupNode := root.Children[0]
	bgNode := root.Children[1]

	require.NoError(t, bgNode.Move(groupNode))
	assert.Len(t, root.Children, 1)
	assert.Len(t, groupNode.Children, 2)
	assert.Same(t, groupNode, bgNode.Parent)

	bgNode.Remove()
	assert.Nil(t, bgNode.Parent)
	assert.Len(t, groupNode.Children, 1)
}

func TestLayerNodeMoveRejectsCycle(t *testing.T) {
	background := namedImageRecord("background")
	divider := groupRecord("", SectionBoundingEnd)
	inner := namedImageRecord("inner")
	group := groupRecord("folder", SectionOpenFolder)

	root := BuildLayerTree([]*LayerRecord{background, divider, inner, group}, 100, 100)
	groupNode := root.Children[0]
	innerNode := groupNode.Children[0]

	err := groupNode.Move(innerNode)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Same(t, root, groupNode.Parent)

	err = groupNode.Move(groupNode)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}
