package psd

import (
	"github.com/go-photoshop/gopsd/internal/binio"
)

// linkedFileEntry is one decoded row of a "lnk2"/"lnk3"/"lnkE" tagged
// block: the document's own table of smart-object source files. Only
// the common, version-1-3 fixed layout (unique ID, unicode name, file
// type/creator, embedded size, raw bytes) is decoded; an entry with a
// file-open descriptor or child-document metadata (newer versions)
// still decodes its leading fields correctly since those extensions
// are appended after the fields this reads, not interleaved with them.
type linkedFileEntry struct {
	idnt     string
	filename string
	external bool
	path     string
	raw      []byte
}

// parseLinkedFileEntries walks a "lnk2"/"lnk3"/"lnkE" payload end to
// end, stopping at the first entry that fails to decode (for example a
// truncated one) and returning the entries decoded before it.
func parseLinkedFileEntries(data []byte) []linkedFileEntry {
	r := binio.NewReader(binio.NewMemStream(data))
	size, err := r.Stream().Size()
	if err != nil {
		return nil
	}

	var entries []linkedFileEntry
	for {
		pos, err := r.Tell()
		if err != nil || pos >= size {
			break
		}
		entry, consumed, ok := parseOneLinkedFileEntry(r)
		if !ok {
			break
		}
		if consumed <= 0 {
			break
		}
		entries = append(entries, entry)
	}
	return entries
}

func parseOneLinkedFileEntry(r *binio.Reader) (linkedFileEntry, int64, bool) {
	start, _ := r.Tell()

	length, err := r.ReadUint64()
	if err != nil {
		return linkedFileEntry{}, 0, false
	}
	entryEnd := start + 8 + int64(length)

	typeSig, err := r.ReadString(4)
	if err != nil {
		return linkedFileEntry{}, 0, false
	}
	if _, err := r.ReadUint32(); err != nil { // version
		return linkedFileEntry{}, 0, false
	}

	idnt, err := r.ReadPascalString(1)
	if err != nil {
		return linkedFileEntry{}, 0, false
	}

	nameLen, err := r.ReadUint32()
	if err != nil {
		return linkedFileEntry{}, 0, false
	}
	units := make([]uint16, nameLen)
	for i := range units {
		v, err := r.ReadUint16()
		if err != nil {
			return linkedFileEntry{}, 0, false
		}
		units[i] = v
	}
	name := decodeUTF16BE(units)

	if _, err := r.ReadString(4); err != nil { // file type
		return linkedFileEntry{}, 0, false
	}
	if _, err := r.ReadString(4); err != nil { // file creator
		return linkedFileEntry{}, 0, false
	}
	fileSize, err := r.ReadUint64()
	if err != nil {
		return linkedFileEntry{}, 0, false
	}
	hasDescriptor, err := r.ReadByte()
	if err != nil {
		return linkedFileEntry{}, 0, false
	}

	entry := linkedFileEntry{idnt: idnt, filename: name}
	entry.external = typeSig == "liFA" || hasDescriptor != 0

	if !entry.external && fileSize > 0 {
		raw, err := r.ReadBytes(int(fileSize))
		if err != nil {
			return linkedFileEntry{}, 0, false
		}
		entry.raw = raw
	}

	// Skip any trailing version-specific fields (timestamps, child
	// document tables, descriptors) this decode doesn't need.
	pos, _ := r.Tell()
	if entryEnd > pos {
		r.Skip(entryEnd - pos)
	}
	return entry, entryEnd - start, true
}
