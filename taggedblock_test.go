package psd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-photoshop/gopsd/internal/binio"
)

func TestTaggedBlockSetRoundTrip(t *testing.T) {
	set := &TaggedBlockSet{Blocks: []TaggedBlock{
		{Signature: "8BIM", Key: "lspf", Data: EncodeProtectedSettings(&ProtectedSettings{Transparency: true})},
		{Signature: "8BIM", Key: "luni", Data: EncodeUnicodeName("layer été")},
	}}

	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	require.NoError(t, WriteTaggedBlockSet(w, binio.VersionPSD, set))
	end, err := s.Seek(0, 1)
	require.NoError(t, err)

	_, err = s.Seek(0, 0)
	require.NoError(t, err)
	r := binio.NewReader(s)
	got, err := ReadTaggedBlockSet(r, binio.VersionPSD, end)
	require.NoError(t, err)
	require.Len(t, got.Blocks, 2)

	b, ok := got.Get("luni")
	require.True(t, ok)
	name, err := DecodeUnicodeName(b.Data)
	require.NoError(t, err)
	assert.Equal(t, "layer été", name)

	b, ok = got.Get("lspf")
	require.True(t, ok)
	ps, err := DecodeProtectedSettings(b.Data)
	require.NoError(t, err)
	assert.True(t, ps.Transparency)
	assert.False(t, ps.Composite)
}

func TestTaggedBlockSetGetMissingKeyOnNilSet(t *testing.T) {
	var set *TaggedBlockSet
	_, ok := set.Get("luni")
	assert.False(t, ok)
}

func TestSectionDividerRoundTrip(t *testing.T) {
	sd := &SectionDivider{Kind: SectionOpenFolder, BlendMode: "pass", SubType: 1}
	data := EncodeSectionDivider(sd)
	got, err := DecodeSectionDivider(data)
	require.NoError(t, err)
	assert.Equal(t, SectionOpenFolder, got.Kind)
	assert.Equal(t, "pass", got.BlendMode)
	assert.Equal(t, int32(1), got.SubType)
}

func TestSectionDividerWithoutBlendMode(t *testing.T) {
	sd := &SectionDivider{Kind: SectionBoundingEnd}
	data := EncodeSectionDivider(sd)
	got, err := DecodeSectionDivider(data)
	require.NoError(t, err)
	assert.Equal(t, SectionBoundingEnd, got.Kind)
	assert.Equal(t, "", got.BlendMode)
}

func TestReferencePointRoundTrip(t *testing.T) {
	data := EncodeReferencePoint(12.5, -3.25)
	x, y, err := DecodeReferencePoint(data)
	require.NoError(t, err)
	assert.Equal(t, 12.5, x)
	assert.Equal(t, -3.25, y)
}

func TestWideLengthKeysUseVariantWidthOnPSB(t *testing.T) {
	set := &TaggedBlockSet{Blocks: []TaggedBlock{
		{Signature: "8BIM", Key: "Alph", Data: make([]byte, 10)},
	}}
	s := binio.NewMemStream(nil)
	w := binio.NewWriter(s)
	require.NoError(t, WriteTaggedBlockSet(w, binio.VersionPSB, set))
	end, err := s.Seek(0, 1)
	require.NoError(t, err)
	assert.Greater(t, end, int64(4+4+8+10-1))

	_, err = s.Seek(0, 0)
	require.NoError(t, err)
	r := binio.NewReader(s)
	got, err := ReadTaggedBlockSet(r, binio.VersionPSB, end)
	require.NoError(t, err)
	require.Len(t, got.Blocks, 1)
	assert.Len(t, got.Blocks[0].Data, 10)
}
