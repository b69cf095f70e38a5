package psd

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"
)

// LinkedFileKind distinguishes a smart object whose source bytes are
// embedded in the document from one that only references an external
// path.
type LinkedFileKind int

const (
	LinkedFileEmbedded LinkedFileKind = iota
	LinkedFileExternal
)

// LinkedFile is one entry of the content-addressed linked-layer table,
// keyed by its PSD-native Idnt identifier (the same string a
// smart-object layer's placed-layer-data descriptor references): the
// source bytes (embedded) or only the Idnt and Filename (external; the
// path passed to InsertExternal is not stored), plus whatever channel
// data has been decoded from it on demand. ContentHash is a
// sha256 of RawBytes kept alongside Idnt so byte-identical entries
// under different Idnt values (e.g. the same asset placed twice before
// Photoshop's own dedup ran) can still be recognized as duplicates.
type LinkedFile struct {
	Idnt        string
	ContentHash string
	Filename    string
	Kind        LinkedFileKind
	RawBytes    []byte // nil for LinkedFileExternal

	decodedChannels map[string][]byte
}

// LinkedLayerStore is the document-level table smart-object layers
// reference by Idnt, deduplicating identical source content across
// multiple placements of the same asset: keyed primarily on the
// format's own Idnt string, with sha256 of the raw embedded bytes kept
// only as a secondary duplicate-detection signal.
type LinkedLayerStore struct {
	files       map[string]*LinkedFile // by Idnt
	byContentHash map[string]string    // content hash -> Idnt, for dedup detection
}

func NewLinkedLayerStore() *LinkedLayerStore {
	return &LinkedLayerStore{files: make(map[string]*LinkedFile), byContentHash: make(map[string]string)}
}

// InsertEmbedded registers raw under idnt, or returns the existing
// entry if idnt is already known.
func (s *LinkedLayerStore) InsertEmbedded(idnt, filename string, raw []byte) *LinkedFile {
	if existing, ok := s.files[idnt]; ok {
		return existing
	}
	hash := hashBytes(raw)
	f := &LinkedFile{Idnt: idnt, ContentHash: hash, Filename: filename, Kind: LinkedFileEmbedded, RawBytes: raw}
	s.files[idnt] = f
	s.byContentHash[hash] = idnt
	return f
}

// InsertExternal registers a reference-only entry under idnt.
func (s *LinkedLayerStore) InsertExternal(idnt, path, filename string) *LinkedFile {
	if existing, ok := s.files[idnt]; ok {
		return existing
	}
	f := &LinkedFile{Idnt: idnt, Filename: filename, Kind: LinkedFileExternal}
	s.files[idnt] = f
	return f
}

// DuplicateOf reports the Idnt of an existing entry whose content
// hash matches raw, if one was inserted earlier under a different
// Idnt.
func (s *LinkedLayerStore) DuplicateOf(raw []byte) (string, bool) {
	idnt, ok := s.byContentHash[hashBytes(raw)]
	return idnt, ok
}

func (s *LinkedLayerStore) Get(idnt string) (*LinkedFile, bool) {
	f, ok := s.files[idnt]
	return f, ok
}

func (s *LinkedLayerStore) Len() int { return len(s.files) }

// Cleanup removes every entry whose Idnt is not present in
// referencedIdents, the set of linked-hash values still named by a
// smart-object layer in the document's current tree, and returns how
// many entries it removed. WriteDocument does not call it.
func (s *LinkedLayerStore) Cleanup(referencedIdents map[string]bool) int {
	removed := 0
	for idnt, f := range s.files {
		if !referencedIdents[idnt] {
			delete(s.files, idnt)
			delete(s.byContentHash, f.ContentHash)
			removed++
		}
	}
	return removed
}

// ReferencedHashes walks the tree collecting every smart-object
// layer's LinkedHash (the Idnt it names).
func ReferencedHashes(root *LayerNode) map[string]bool {
	out := make(map[string]bool)
	for _, n := range root.Subtree() {
		if n.SmartObject != nil && n.SmartObject.LinkedHash != "" {
			out[n.SmartObject.LinkedHash] = true
		}
	}
	return out
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// LinkedFileDecoder decodes a linked file's raw bytes into named
// channel planes (e.g. "R", "G", "B", "A"), one implementation per
// supported embedded format.
type LinkedFileDecoder func(raw []byte) (map[string][]byte, error)

var linkedFileDecoders = map[string]LinkedFileDecoder{}

// RegisterLinkedFileDecoder installs the decoder used for a given file
// extension (without the leading dot, lowercase). The default registry
// is populated by the init function in linkedfile_formats.go.
func RegisterLinkedFileDecoder(ext string, dec LinkedFileDecoder) {
	linkedFileDecoders[ext] = dec
}

// DecodedChannels lazily decodes f's raw bytes using the decoder
// registered for ext, caching the result.
func (f *LinkedFile) DecodedChannels(ext string) (map[string][]byte, error) {
	if f.decodedChannels != nil {
		return f.decodedChannels, nil
	}
	if f.Kind == LinkedFileExternal {
		return nil, errors.Wrapf(ErrNotFound, "linked file %q: external reference has no embedded bytes", f.Filename)
	}
	dec, ok := linkedFileDecoders[ext]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "no linked-file decoder registered for %q", ext)
	}
	channels, err := dec(f.RawBytes)
	if err != nil {
		return nil, errors.Wrap(ErrCodec, err.Error())
	}
	f.decodedChannels = channels
	return channels, nil
}
