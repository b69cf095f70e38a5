package psd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-photoshop/gopsd/internal/binio"
)

// buildLinkedFileEntry encodes one "lnk2"-style row: a length-prefixed
// body (type signature, version, Idnt, unicode name, file type/creator,
// embedded size, descriptor flag, and raw bytes when embedded).
func buildLinkedFileEntry(t *testing.T, typeSig, idnt, name string, raw []byte, external bool) []byte {
	t.Helper()

	body := binio.NewMemStream(nil)
	bw := binio.NewWriter(body)
	require.NoError(t, bw.WriteString(typeSig))
	require.NoError(t, bw.WriteUint32(1)) // version
	require.NoError(t, bw.WritePascalString(idnt, 1))

	units := []uint16(nil)
	for _, r := range name {
		units = append(units, uint16(r))
	}
	require.NoError(t, bw.WriteUint32(uint32(len(units))))
	for _, u := range units {
		require.NoError(t, bw.WriteUint16(u))
	}

	require.NoError(t, bw.WriteString("    ")) // file type
	require.NoError(t, bw.WriteString("    ")) // file creator
	require.NoError(t, bw.WriteUint64(uint64(len(raw))))
	if external {
		require.NoError(t, bw.WriteByte(1))
	} else {
		require.NoError(t, bw.WriteByte(0))
		require.NoError(t, bw.WriteBytes(raw))
	}

	bodyBytes := body.Bytes()

	out := binio.NewMemStream(nil)
	ow := binio.NewWriter(out)
	require.NoError(t, ow.WriteUint64(uint64(len(bodyBytes))))
	require.NoError(t, ow.WriteBytes(bodyBytes))
	return out.Bytes()
}

func TestParseLinkedFileEntriesEmbedded(t *testing.T) {
	raw := []byte("fake embedded file bytes")
	data := buildLinkedFileEntry(t, "liFD", "idnt-1", "photo.tif", raw, false)

	entries := parseLinkedFileEntries(data)
	require.Len(t, entries, 1)
	assert.Equal(t, "idnt-1", entries[0].idnt)
	assert.Equal(t, "photo.tif", entries[0].filename)
	assert.False(t, entries[0].external)
	assert.Equal(t, raw, entries[0].raw)
}

func TestParseLinkedFileEntriesExternal(t *testing.T) {
	data := buildLinkedFileEntry(t, "liFA", "idnt-2", "bg.psd", nil, true)

	entries := parseLinkedFileEntries(data)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].external)
	assert.Nil(t, entries[0].raw)
}

func TestParseLinkedFileEntriesMultiple(t *testing.T) {
	a := buildLinkedFileEntry(t, "liFD", "idnt-1", "one.tif", []byte("aaa"), false)
	b := buildLinkedFileEntry(t, "liFD", "idnt-2", "two.tif", []byte("bbbbb"), false)
	data := append(a, b...)

	entries := parseLinkedFileEntries(data)
	require.Len(t, entries, 2)
	assert.Equal(t, "idnt-1", entries[0].idnt)
	assert.Equal(t, "idnt-2", entries[1].idnt)
	assert.Equal(t, []byte("aaa"), entries[0].raw)
	assert.Equal(t, []byte("bbbbb"), entries[1].raw)
}

func TestParseLinkedFileEntriesTruncatedStops(t *testing.T) {
	data := buildLinkedFileEntry(t, "liFD", "idnt-1", "one.tif", []byte("aaa"), false)
	entries := parseLinkedFileEntries(data[:len(data)-2])
	assert.Empty(t, entries)
}
