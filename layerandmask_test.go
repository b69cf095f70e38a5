package psd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-photoshop/gopsd/internal/binio"
)

func TestLayerInfoRoundTrip(t *testing.T) {
	info := &LayerInfo{
		Records: []*LayerRecord{
			buildTestImageRecord("background"),
			buildTestImageRecord("foreground"),
		},
		MergedAlphaInFirstChan: true,
	}

	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	require.NoError(t, WriteLayerInfo(w, binio.VersionPSD, info, 6))

	_, err := s.Seek(0, 0)
	require.NoError(t, err)
	r := binio.NewReader(s)
	got, err := ReadLayerInfo(r, binio.VersionPSD, 8)
	require.NoError(t, err)

	assert.True(t, got.MergedAlphaInFirstChan)
	require.Len(t, got.Records, 2)
	assert.Equal(t, "background", got.Records[0].Name)
	assert.Equal(t, "foreground", got.Records[1].Name)
}

func TestLayerInfoEmptyRoundTrip(t *testing.T) {
	info := &LayerInfo{}

	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	require.NoError(t, WriteLayerInfo(w, binio.VersionPSD, info, 6))

	_, err := s.Seek(0, 0)
	require.NoError(t, err)
	r := binio.NewReader(s)
	got, err := ReadLayerInfo(r, binio.VersionPSD, 8)
	require.NoError(t, err)
	assert.Empty(t, got.Records)
	assert.False(t, got.MergedAlphaInFirstChan)
}

func TestLayerAndMaskInformationRoundTrip(t *testing.T) {
	section := &LayerAndMaskInformation{
		Info: &LayerInfo{Records: []*LayerRecord{buildTestImageRecord("layer1")}},
		AdditionalInfo: &TaggedBlockSet{Blocks: []TaggedBlock{
			{Signature: "8BIM", Key: "luni", Data: EncodeUnicodeName("doc-level name")},
		}},
	}

	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	require.NoError(t, WriteLayerAndMaskInformation(w, binio.VersionPSD, section, 6))

	_, err := s.Seek(0, 0)
	require.NoError(t, err)
	r := binio.NewReader(s)
	got, err := ReadLayerAndMaskInformation(r, binio.VersionPSD, 8)
	require.NoError(t, err)

	require.Len(t, got.Info.Records, 1)
	assert.Equal(t, "layer1", got.Info.Records[0].Name)
	assert.Empty(t, got.GlobalLayerMaskInfo)

	b, ok := got.AdditionalInfo.Get("luni")
	require.True(t, ok)
	name, err := DecodeUnicodeName(b.Data)
	require.NoError(t, err)
	assert.Equal(t, "doc-level name", name)
}

func TestLayerAndMaskInformationWithGlobalMaskInfo(t *testing.T) {
	section := &LayerAndMaskInformation{
		Info:                &LayerInfo{},
		GlobalLayerMaskInfo: []byte{1, 2, 3, 4},
		AdditionalInfo:      &TaggedBlockSet{},
	}

	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	require.NoError(t, WriteLayerAndMaskInformation(w, binio.VersionPSD, section, 6))

	_, err := s.Seek(0, 0)
	require.NoError(t, err)
	r := binio.NewReader(s)
	got, err := ReadLayerAndMaskInformation(r, binio.VersionPSD, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got.GlobalLayerMaskInfo)
}
