package psd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-photoshop/gopsd/compression"
	"github.com/go-photoshop/gopsd/internal/binio"
)

func buildSingleLayerRGBDocument() *Document {
	const w, h = 8, 8

	layerStore := NewChannelStore()
	for _, id := range []ChannelRoleID{0, 1, 2} {
		c := NewChannel(id, w, h, SampleUint8, compression.MethodRLE)
		_ = c.Set(make([]byte, w*h), compression.MethodRLE)
		layerStore.Put(c)
	}
	layer := &LayerRecord{
		Bounds:         Rect{Top: 0, Left: 0, Bottom: h, Right: w},
		Channels:       layerStore,
		BlendModeKey:   "norm",
		Opacity:        255,
		Name:           "gray-36",
		AdditionalInfo: &TaggedBlockSet{Blocks: []TaggedBlock{
			{Signature: "8BIM", Key: "luni", Data: EncodeUnicodeName("gray-36")},
		}},
	}

	tree := &LayerNode{Kind: LayerKindGroup, Bounds: Rect{Bottom: h, Right: w}}
	tree.Children = []*LayerNode{{Kind: LayerKindImage, Name: "gray-36", Record: layer, Bounds: layer.Bounds}}

	image := &ImageData{
		Method: compression.MethodRaw,
		Channels: [][]byte{
			make([]byte, w*h),
			make([]byte, w*h),
			make([]byte, w*h),
		},
	}

	return &Document{
		Header: &FileHeader{
			Version:  binio.VersionPSD,
			Channels: 3,
			Width:    w,
			Height:   h,
			Depth:    8,
			Mode:     ColorModeRGBColor,
		},
		ColorModeData: &ColorModeData{},
		Resources:     &ResourceSection{Resources: map[ResourceID]*Resource{}},
		LayerMask: &LayerAndMaskInformation{
			Info:           &LayerInfo{},
			AdditionalInfo: &TaggedBlockSet{},
		},
		Image: image,
		Tree:  tree,
	}
}

func TestDocumentRoundTrip8BitRGB(t *testing.T) {
	doc := buildSingleLayerRGBDocument()

	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	require.NoError(t, WriteDocument(w, doc, 6))

	_, err := s.Seek(0, 0)
	require.NoError(t, err)
	got, err := ReadDocument(s, nil)
	require.NoError(t, err)

	assert.Equal(t, doc.Header.Width, got.Header.Width)
	assert.Equal(t, doc.Header.Height, got.Header.Height)
	assert.Equal(t, ColorModeRGBColor, got.Header.Mode)

	require.Len(t, got.Tree.Children, 1)
	assert.Equal(t, "gray-36", got.Tree.Children[0].Name)
	assert.Equal(t, LayerKindImage, got.Tree.Children[0].Kind)

	require.Len(t, got.Image.Channels, 3)
	assert.Len(t, got.Image.Channels[0], 8*8)
}

func TestDocumentRoundTripCancelledByProgress(t *testing.T) {
	doc := buildSingleLayerRGBDocument()

	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	require.NoError(t, WriteDocument(w, doc, 6))

	_, err := s.Seek(0, 0)
	require.NoError(t, err)

	_, err = ReadDocument(s, func(task string, frac float64) ControlFlow {
		if task == "resources" {
			return Break
		}
		return Continue
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestDocumentRoundTripPSBNestedGroup(t *testing.T) {
	const w, h = 4, 4

	bgStore := NewChannelStore()
	fgStore := NewChannelStore()
	for _, id := range []ChannelRoleID{0} {
		bg := NewChannel(id, w, h, SampleUint8, compression.MethodRLE)
		_ = bg.Set(make([]byte, w*h), compression.MethodRLE)
		bgStore.Put(bg)

		fg := NewChannel(id, w, h, SampleUint8, compression.MethodRLE)
		_ = fg.Set(make([]byte, w*h), compression.MethodRLE)
		fgStore.Put(fg)
	}

	background := &LayerRecord{
		Bounds: Rect{Bottom: h, Right: w}, Channels: bgStore,
		BlendModeKey: "norm", Opacity: 255, Name: "background",
		AdditionalInfo: &TaggedBlockSet{},
	}
	inner := &LayerRecord{
		Bounds: Rect{Bottom: h, Right: w}, Channels: fgStore,
		BlendModeKey: "norm", Opacity: 255, Name: "inner",
		AdditionalInfo: &TaggedBlockSet{},
	}

	root := &LayerNode{Kind: LayerKindGroup, Bounds: Rect{Bottom: h, Right: w}}
	group := &LayerNode{Kind: LayerKindGroup, Name: "folder", Record: groupRecord("folder", SectionOpenFolder)}
	group.Children = []*LayerNode{{Kind: LayerKindImage, Name: "inner", Record: inner}}
	root.Children = []*LayerNode{group, {Kind: LayerKindImage, Name: "background", Record: background}}

	doc := &Document{
		Header: &FileHeader{
			Version: binio.VersionPSB, Channels: 1, Width: w, Height: h,
			Depth: 8, Mode: ColorModeGrayscale,
		},
		ColorModeData: &ColorModeData{},
		Resources:     &ResourceSection{Resources: map[ResourceID]*Resource{}},
		LayerMask:     &LayerAndMaskInformation{Info: &LayerInfo{}, AdditionalInfo: &TaggedBlockSet{}},
		Image:         &ImageData{Method: compression.MethodRaw, Channels: [][]byte{make([]byte, w*h)}},
		Tree:          root,
	}

	s := binio.NewMemStream(nil)
	wr := binio.NewWriter(s)
	require.NoError(t, WriteDocument(wr, doc, 6))

	_, err := s.Seek(0, 0)
	require.NoError(t, err)
	got, err := ReadDocument(s, nil)
	require.NoError(t, err)

	require.True(t, got.Header.IsBig())
	require.Len(t, got.Tree.Children, 2)
	assert.Equal(t, "folder", got.Tree.Children[0].Name)

	matches := got.Tree.Find("folder/inner")
	require.Len(t, matches, 1)
	assert.Equal(t, "inner", matches[0].Name)
}
