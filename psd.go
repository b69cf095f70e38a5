package psd

import (
	"os"

	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/compression"
	"github.com/go-photoshop/gopsd/internal/binio"
)

// Document is a fully parsed PSD/PSB file: the fixed header, the
// indexed/duotone color-mode blob, image resources, the layer/mask
// section (both its flat LayerInfo and the reconstructed tree), the
// document-level flattened composite, and the linked-layer store smart
// objects reference into.
type Document struct {
	Header        *FileHeader
	ColorModeData *ColorModeData
	Resources     *ResourceSection
	LayerMask     *LayerAndMaskInformation
	Image         *ImageData
	Tree          *LayerNode
	LinkedLayers  *LinkedLayerStore
}

// OpenDocument opens filename and parses it fully, driving progress
// (may be nil) as each top-level section completes.
func OpenDocument(filename string, progress ProgressFunc) (*Document, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	defer f.Close()
	return ReadDocument(f, progress)
}

// ReadDocument parses a full document from s: header, color-mode data,
// image resources, the layer-and-mask section, and the trailing
// document-level composite, in that fixed on-disk order.
func ReadDocument(s binio.Stream, progress ProgressFunc) (*Document, error) {
	r := binio.NewReader(s)
	doc := &Document{}

	if callProgress(progress, "header", 0) == Break {
		return nil, ErrCancelled
	}
	header, cmd, err := ReadFileHeader(r)
	if err != nil {
		return nil, errors.Wrap(err, "document: header")
	}
	doc.Header = header
	doc.ColorModeData = cmd

	if callProgress(progress, "resources", 0.2) == Break {
		return nil, ErrCancelled
	}
	resources, err := ReadResourceSection(r)
	if err != nil {
		return nil, errors.Wrap(err, "document: resources")
	}
	doc.Resources = resources

	if callProgress(progress, "layers", 0.4) == Break {
		return nil, ErrCancelled
	}
	layerMask, err := ReadLayerAndMaskInformation(r, header.Version, header.Depth)
	if err != nil {
		return nil, errors.Wrap(err, "document: layer and mask information")
	}
	doc.LayerMask = layerMask

	records := effectiveLayerRecords(layerMask, header)
	doc.Tree = BuildLayerTree(records, int32(header.Width), int32(header.Height))
	doc.LinkedLayers = collectLinkedLayers(doc.Tree, layerMask)

	if callProgress(progress, "image", 0.8) == Break {
		return nil, ErrCancelled
	}
	image, err := ReadImageData(r, header)
	if err != nil {
		return nil, errors.Wrap(err, "document: image data")
	}
	doc.Image = image

	callProgress(progress, "done", 1)
	return doc, nil
}

// effectiveLayerRecords returns the LayerInfo's records, except for
// 16/32-bit documents whose real layer list is carried inside the
// trailing AdditionalLayerInfo's Lr16/Lr32 block instead (the main
// LayerInfo is empty in that case, per the format's special case for
// those depths).
func effectiveLayerRecords(lm *LayerAndMaskInformation, h *FileHeader) []*LayerRecord {
	if lm.Info != nil && len(lm.Info.Records) > 0 {
		return lm.Info.Records
	}
	key := "Lr16"
	if h.Depth == 32 {
		key = "Lr32"
	}
	if lm.AdditionalInfo == nil {
		return nil
	}
	b, ok := lm.AdditionalInfo.Get(key)
	if !ok {
		return nil
	}
	nested, err := ReadLayerInfo(binio.NewReader(binio.NewMemStream(b.Data)), h.Version, h.Depth)
	if err != nil {
		return nil
	}
	return nested.Records
}

// collectLinkedLayers builds the content-addressed linked-file store
// from the document's "lnk2"/"lnk3"/"lnkE" tagged block (a sequence of
// embedded/external file entries), keyed the same way smart-object
// layers reference them.
func collectLinkedLayers(tree *LayerNode, lm *LayerAndMaskInformation) *LinkedLayerStore {
	store := NewLinkedLayerStore()
	if lm.AdditionalInfo == nil {
		return store
	}
	for _, key := range []string{"lnk2", "lnk3", "lnkE"} {
		b, ok := lm.AdditionalInfo.Get(key)
		if !ok {
			continue
		}
		for _, entry := range parseLinkedFileEntries(b.Data) {
			if entry.external {
				store.InsertExternal(entry.idnt, entry.path, entry.filename)
			} else {
				store.InsertEmbedded(entry.idnt, entry.filename, entry.raw)
			}
		}
	}
	return store
}

// WriteDocument serializes doc in the same fixed section order
// ReadDocument parses, patching every variant-width or fixed-width
// length prefix after its body is known. A document that fails
// validation is never partially written: the header and the composite's
// zip-versus-channel-count rule are checked before any byte reaches w.
func WriteDocument(w *binio.Writer, doc *Document, zipLevel int) error {
	if err := doc.Header.Validate(); err != nil {
		return err
	}
	if doc.Image != nil && (doc.Image.Method == compression.MethodZip || doc.Image.Method == compression.MethodZipPrediction) && doc.Header.Channels > 1 {
		return errors.Wrapf(ErrValidation, "document image: zip composite with %d channels has no unambiguous per-channel framing", doc.Header.Channels)
	}
	if err := WriteFileHeader(w, doc.Header, doc.ColorModeData); err != nil {
		return err
	}
	if err := WriteResourceSection(w, doc.Resources); err != nil {
		return err
	}

	lm := doc.LayerMask
	if lm == nil {
		lm = &LayerAndMaskInformation{}
	}
	if lm.Info == nil {
		lm.Info = &LayerInfo{}
	}
	if doc.Tree != nil {
		lm.Info.Records = FlattenLayerTree(doc.Tree, doc.Header.Mode)
	}
	if err := WriteLayerAndMaskInformation(w, doc.Header.Version, lm, zipLevel); err != nil {
		return err
	}

	if err := WriteImageData(w, doc.Header, doc.Image, zipLevel); err != nil {
		return err
	}
	return nil
}

// SetCompression re-targets every channel in the document's layer tree
// to method, recursing into every group, mask, and leaf layer. It does
// not touch the document-level flattened composite in doc.Image, which
// carries its own independent compression.
func (doc *Document) SetCompression(method compression.Method) {
	if doc.Tree != nil {
		doc.Tree.SetCompression(method)
	}
}
