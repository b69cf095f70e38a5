package psd

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDescriptorUnicodeString(buf *bytes.Buffer, s string) {
	units := []uint16(nil)
	for _, r := range s {
		units = append(units, uint16(r))
	}
	binary.Write(buf, binary.BigEndian, uint32(len(units)))
	for _, u := range units {
		binary.Write(buf, binary.BigEndian, u)
	}
}

// buildSoLdDescriptorBytes encodes a minimal "SoLd" placed-layer
// descriptor: an Idnt string, an 8-value Transform quad, a nested size
// object, and a nested named-style warp.
func buildSoLdDescriptorBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer

	binary.Write(&buf, binary.BigEndian, uint32(0)) // class name
	writeDescriptorCode(&buf, "sOLD")                // class id

	binary.Write(&buf, binary.BigEndian, uint32(4)) // numItems

	writeDescriptorID(&buf, "Idnt")
	buf.WriteString("TEXT")
	writeDescriptorUnicodeString(&buf, "idnt-42")

	writeDescriptorID(&buf, "Transform")
	buf.WriteString("VlLs")
	binary.Write(&buf, binary.BigEndian, uint32(8))
	corners := []float64{0, 0, 100, 0, 100, 100, 0, 100}
	for _, v := range corners {
		buf.WriteString("doub")
		binary.Write(&buf, binary.BigEndian, v)
	}

	writeDescriptorID(&buf, "Sz  ")
	buf.WriteString("Objc")
	binary.Write(&buf, binary.BigEndian, uint32(0)) // nested class name
	writeDescriptorCode(&buf, "Sz  ")                // nested class id
	binary.Write(&buf, binary.BigEndian, uint32(2))  // numItems
	writeDescriptorID(&buf, "Wdth")
	buf.WriteString("doub")
	binary.Write(&buf, binary.BigEndian, float64(100))
	writeDescriptorID(&buf, "Hght")
	buf.WriteString("doub")
	binary.Write(&buf, binary.BigEndian, float64(100))

	writeDescriptorID(&buf, "warp")
	buf.WriteString("Objc")
	binary.Write(&buf, binary.BigEndian, uint32(0)) // nested class name
	writeDescriptorCode(&buf, "warp")                // nested class id
	binary.Write(&buf, binary.BigEndian, uint32(1))  // numItems
	writeDescriptorID(&buf, "warpStyle")
	buf.WriteString("enum")
	writeDescriptorCode(&buf, "wrpS")
	writeDescriptorCode(&buf, "none")

	return buf.Bytes()
}

func TestDecodeSmartObjectFromSoLd(t *testing.T) {
	rec := namedImageRecord("placed")
	rec.AdditionalInfo = &TaggedBlockSet{Blocks: []TaggedBlock{
		{Signature: "8BIM", Key: "SoLd", Data: buildSoLdDescriptorBytes(t)},
	}}

	info := decodeSmartObject(rec)
	require.NotNil(t, info)
	assert.Equal(t, "idnt-42", info.LinkedHash)
	assert.Equal(t, [2]float64{0, 0}, info.Quad[0])
	assert.Equal(t, [2]float64{100, 100}, info.Quad[2])
	assert.Equal(t, 100.0, info.Width)
	assert.Equal(t, 100.0, info.Height)
	require.NotNil(t, info.Warp)
	assert.Equal(t, "none", info.Warp.Style)
}

// buildSoLdWithQuiltWarpBytes extends buildSoLdDescriptorBytes with a
// sibling "quiltWarp" descriptor, mirroring a custom-subdivision warp
// where the format leaves "warp" default-initialized.
func buildSoLdWithQuiltWarpBytes(t *testing.T) []byte {
	t.Helper()
	base := buildSoLdDescriptorBytes(t)

	var extra bytes.Buffer
	writeDescriptorID(&extra, "quiltWarp")
	extra.WriteString("Objc")
	binary.Write(&extra, binary.BigEndian, uint32(0)) // nested class name
	writeDescriptorCode(&extra, "warp")                // nested class id
	binary.Write(&extra, binary.BigEndian, uint32(3))  // numItems
	writeDescriptorID(&extra, "uOrder")
	extra.WriteString("long")
	binary.Write(&extra, binary.BigEndian, int32(3))
	writeDescriptorID(&extra, "vOrder")
	extra.WriteString("long")
	binary.Write(&extra, binary.BigEndian, int32(3))
	writeDescriptorID(&extra, "meshPoints")
	extra.WriteString("VlLs")
	binary.Write(&extra, binary.BigEndian, uint32(18)) // 3x3 points, x/y interleaved
	for i := 0; i < 18; i++ {
		extra.WriteString("doub")
		binary.Write(&extra, binary.BigEndian, float64(i))
	}

	// Patch the numItems field (after the empty class name's 4-byte
	// length and the class id's 4-byte length + 4-byte code) from 4 to
	// 5 to account for the appended item.
	patched := append([]byte(nil), base...)
	countOffset := 4 + 4 + 4
	binary.BigEndian.PutUint32(patched[countOffset:countOffset+4], 5)

	return append(patched, extra.Bytes()...)
}

func TestDecodeSmartObjectPrefersQuiltWarp(t *testing.T) {
	rec := namedImageRecord("placed")
	rec.AdditionalInfo = &TaggedBlockSet{Blocks: []TaggedBlock{
		{Signature: "8BIM", Key: "SoLd", Data: buildSoLdWithQuiltWarpBytes(t)},
	}}

	info := decodeSmartObject(rec)
	require.NotNil(t, info)
	require.NotNil(t, info.Warp)
	assert.True(t, info.Warp.IsQuilt())
	assert.Equal(t, int32(3), info.Warp.MeshUOrder)
	assert.Equal(t, int32(3), info.Warp.MeshVOrder)
}

func TestDecodeSmartObjectNoBlockReturnsNil(t *testing.T) {
	rec := namedImageRecord("plain")
	assert.Nil(t, decodeSmartObject(rec))
}

func TestDecodeSmartObjectMalformedDescriptorReturnsEmpty(t *testing.T) {
	rec := namedImageRecord("broken")
	rec.AdditionalInfo = &TaggedBlockSet{Blocks: []TaggedBlock{
		{Signature: "8BIM", Key: "SoLd", Data: []byte{0, 0}},
	}}
	info := decodeSmartObject(rec)
	require.NotNil(t, info)
	assert.Empty(t, info.LinkedHash)
}
