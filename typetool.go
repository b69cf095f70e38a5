package psd

import (
	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/internal/binio"
)

// Transform is the 2x3 affine matrix a text layer's glyph run is drawn
// through.
type Transform struct {
	XX, XY, YX, YY, TX, TY float64
}

// TypeToolInfo is the decoded form of a text layer's "TySh" tagged
// block: the placement transform, the text engine's descriptor-encoded
// data, and (when present) the warp descriptor applied on top.
type TypeToolInfo struct {
	Version   uint16
	Transform Transform
	TextData  map[string]interface{}
	Warp      *WarpData
	Bounds    Rect
}

// Text returns the plain-text content from the "Txt " descriptor key.
func (t *TypeToolInfo) Text() string {
	if t.TextData == nil {
		return ""
	}
	if v, ok := t.TextData["Txt "].(string); ok {
		return v
	}
	return ""
}

// EngineData returns the raw engine-data blob (font runs, paragraph
// styles) the text engine stores under "EngineData", left undecoded —
// it is its own nested property-list format outside this package's
// scope.
func (t *TypeToolInfo) EngineData() []byte {
	if t.TextData == nil {
		return nil
	}
	if v, ok := t.TextData["EngineData"].([]byte); ok {
		return v
	}
	return nil
}

// ParseTypeTool decodes a "TySh" tagged-block payload.
func ParseTypeTool(data []byte) (*TypeToolInfo, error) {
	r := binio.NewReader(binio.NewMemStream(data))
	info := &TypeToolInfo{}

	var err error
	if info.Version, err = r.ReadUint16(); err != nil {
		return nil, errors.Wrap(ErrFormat, "type tool: version")
	}
	if info.Transform.XX, err = r.ReadFloat64(); err != nil {
		return nil, err
	}
	if info.Transform.XY, err = r.ReadFloat64(); err != nil {
		return nil, err
	}
	if info.Transform.YX, err = r.ReadFloat64(); err != nil {
		return nil, err
	}
	if info.Transform.YY, err = r.ReadFloat64(); err != nil {
		return nil, err
	}
	if info.Transform.TX, err = r.ReadFloat64(); err != nil {
		return nil, err
	}
	if info.Transform.TY, err = r.ReadFloat64(); err != nil {
		return nil, err
	}

	if _, err = r.ReadUint16(); err != nil { // text descriptor version, fixed at 50
		return nil, err
	}
	if _, err = r.ReadUint32(); err != nil { // descriptor version, fixed at 16
		return nil, err
	}

	rest := remainderFrom(r)
	parser := NewDescriptorParser(rest)
	textData, err := parser.Parse()
	if err != nil {
		textData = make(map[string]interface{})
	}
	info.TextData = textData
	consumed := len(rest) - parser.reader.Len()
	if err := r.Skip(int64(consumed)); err != nil {
		return nil, err
	}

	if _, err := r.ReadUint16(); err == nil { // warp version, fixed at 1
		warp, err := parseWarp(r)
		if err == nil {
			info.Warp = warp
		}
	}
	if top, err := r.ReadFloat64(); err == nil {
		left, _ := r.ReadFloat64()
		bottom, _ := r.ReadFloat64()
		right, _ := r.ReadFloat64()
		info.Bounds = Rect{Top: int32(top), Left: int32(left), Bottom: int32(bottom), Right: int32(right)}
	}

	return info, nil
}

// remainderFrom reads every byte still unread from r's underlying
// stream without moving its cursor permanently forward in a way the
// caller can't re-derive; callers that need to keep reading past the
// descriptor call r.Skip with the parser's own leftover count.
func remainderFrom(r *binio.Reader) []byte {
	s := r.Stream()
	size, err := s.Size()
	if err != nil {
		return nil
	}
	pos, err := r.Tell()
	if err != nil {
		return nil
	}
	n := size - pos
	if n <= 0 {
		return nil
	}
	buf, err := r.ReadBytes(int(n))
	if err != nil {
		return nil
	}
	if _, err := r.Seek(-int64(len(buf)), 1); err != nil {
		return nil
	}
	return buf
}
