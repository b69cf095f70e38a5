package psd

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/compression"
)

// LayerKind is the discriminant of the Layer tagged-variant sum type.
// A flat LayerRecord is classified into exactly one kind from its
// AdditionalLayerInfo fingerprint; see ClassifyLayerRecord.
type LayerKind int

const (
	LayerKindImage LayerKind = iota
	LayerKindGroup
	LayerKindAdjustment
	LayerKindShape
	LayerKindSmartObject
	LayerKindText
	LayerKindArtboard
	LayerKindSectionDivider
)

func (k LayerKind) String() string {
	switch k {
	case LayerKindGroup:
		return "group"
	case LayerKindAdjustment:
		return "adjustment"
	case LayerKindShape:
		return "shape"
	case LayerKindSmartObject:
		return "smart_object"
	case LayerKindText:
		return "text"
	case LayerKindArtboard:
		return "artboard"
	case LayerKindSectionDivider:
		return "section_divider"
	default:
		return "image"
	}
}

// adjustmentKeys is the closed set of tagged-block keys that identify
// an adjustment layer. Decoding stops at "this layer is an adjustment
// of this kind"; the family's per-adjustment parameters are passed
// through as opaque tagged-block payloads, per the minimal-recognition
// scope this package targets.
var adjustmentKeys = map[string]bool{
	"thrs": true, "curv": true, "levl": true, "hue2": true, "hue ": true,
	"blwh": true, "selc": true, "mixr": true, "grdm": true, "post": true,
	"invr": true, "blnc": true, "phfl": true, "expA": true, "vibA": true,
	"brit": true,
}

// fillKeys identify a solid-color/gradient/pattern fill, which becomes
// a shape layer when paired with a vector mask and an adjustment layer
// otherwise (a raw fill with no mask, uncommon but valid).
var fillKeys = map[string]bool{"SoCo": true, "GdFl": true, "PtFl": true}

// ClassifyLayerRecord determines a flat LayerRecord's LayerKind from
// its AdditionalLayerInfo fingerprint, in the priority order: section
// divider, text, smart object, adjustment, shape, image.
func ClassifyLayerRecord(rec *LayerRecord) LayerKind {
	if rec.AdditionalInfo == nil {
		return LayerKindImage
	}
	if _, ok := rec.AdditionalInfo.Get("lsct"); ok {
		return sectionOrArtboard(rec)
	}
	if _, ok := rec.AdditionalInfo.Get("lsdk"); ok {
		return sectionOrArtboard(rec)
	}
	if _, ok := rec.AdditionalInfo.Get("TySh"); ok {
		return LayerKindText
	}
	if _, ok := rec.AdditionalInfo.Get("SoLd"); ok {
		return LayerKindSmartObject
	}
	if _, ok := rec.AdditionalInfo.Get("PlLd"); ok {
		return LayerKindSmartObject
	}
	hasVectorMask := false
	for _, key := range []string{"vmsk", "vsms"} {
		if _, ok := rec.AdditionalInfo.Get(key); ok {
			hasVectorMask = true
			break
		}
	}
	for _, b := range rec.AdditionalInfo.Blocks {
		if adjustmentKeys[b.Key] {
			return LayerKindAdjustment
		}
		if fillKeys[b.Key] {
			if hasVectorMask {
				return LayerKindShape
			}
			return LayerKindAdjustment
		}
	}
	if hasVectorMask {
		return LayerKindShape
	}
	return LayerKindImage
}

// sectionOrArtboard distinguishes an artboard group from a plain group
// by the presence of the (undocumented but stably fingerprinted)
// artboard tagged block; "artb" marks the rectangle/background
// descriptor Photoshop attaches to artboard frames.
func sectionOrArtboard(rec *LayerRecord) LayerKind {
	sd := rec.SectionDivider()
	if sd != nil && sd.Kind == SectionBoundingEnd {
		return LayerKindSectionDivider
	}
	if _, ok := rec.AdditionalInfo.Get("artb"); ok {
		return LayerKindArtboard
	}
	return LayerKindGroup
}

// LayerNode is one node of the reconstructed layer tree: a shared
// header (name, bounds, visibility, blend mode) plus whichever variant
// payload its Kind implies. Group/Artboard nodes additionally own
// Children; every other kind is a leaf.
type LayerNode struct {
	Kind   LayerKind
	Record *LayerRecord // nil only for the synthetic tree root

	Name      string
	Bounds    Rect
	Visible   bool
	Opacity   uint8
	BlendMode string
	Clipping  bool

	Parent   *LayerNode
	Children []*LayerNode

	Text        *TypeToolInfo
	SmartObject *SmartObjectInfo
}

func newLeafNode(rec *LayerRecord, kind LayerKind) *LayerNode {
	n := &LayerNode{
		Kind:      kind,
		Record:    rec,
		Name:      rec.UnicodeName(),
		Bounds:    rec.Bounds,
		Visible:   rec.Flags.Visible(),
		Opacity:   rec.Opacity,
		BlendMode: rec.BlendModeName(),
		Clipping:  rec.Clipping != 0,
	}
	if kind == LayerKindText {
		if b, ok := rec.AdditionalInfo.Get("TySh"); ok {
			if tt, err := ParseTypeTool(b.Data); err == nil {
				n.Text = tt
			}
		}
	}
	if kind == LayerKindSmartObject {
		n.SmartObject = decodeSmartObject(rec)
	}
	return n
}

// BuildLayerTree reconstructs the hierarchy from the flat, on-disk
// layer-record order (bottom-of-stack first) the LayerInfo list
// stores them in. Iteration walks the records top-of-file to
// bottom-of-tree per spec, using a stack of in-progress group nodes;
// a bounding-type section-divider record pops the stack rather than
// becoming a node of its own (it is a sentinel, not a layer).
func BuildLayerTree(records []*LayerRecord, width, height int32) *LayerNode {
	root := &LayerNode{
		Kind:      LayerKindGroup,
		Name:      "",
		Bounds:    Rect{Top: 0, Left: 0, Bottom: height, Right: width},
		Visible:   true,
		Opacity:   255,
		BlendMode: "normal",
	}

	stack := []*LayerNode{root}

	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		kind := ClassifyLayerRecord(rec)

		if kind == LayerKindSectionDivider {
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		node := newLeafNode(rec, kind)
		parent := stack[len(stack)-1]
		node.Parent = parent
		parent.Children = append(parent.Children, node)

		if kind == LayerKindGroup || kind == LayerKindArtboard {
			stack = append(stack, node)
		}
	}

	updateGroupBounds(root)
	return root
}

func updateGroupBounds(n *LayerNode) {
	for _, c := range n.Children {
		updateGroupBounds(c)
	}
	if n.Parent == nil || (n.Kind != LayerKindGroup && n.Kind != LayerKindArtboard) {
		return
	}
	if len(n.Children) == 0 {
		return
	}
	first := true
	for _, c := range n.Children {
		if c.Bounds.Empty() {
			continue
		}
		if first {
			n.Bounds = c.Bounds
			first = false
			continue
		}
		if c.Bounds.Top < n.Bounds.Top {
			n.Bounds.Top = c.Bounds.Top
		}
		if c.Bounds.Left < n.Bounds.Left {
			n.Bounds.Left = c.Bounds.Left
		}
		if c.Bounds.Bottom > n.Bounds.Bottom {
			n.Bounds.Bottom = c.Bounds.Bottom
		}
		if c.Bounds.Right > n.Bounds.Right {
			n.Bounds.Right = c.Bounds.Right
		}
	}
}

// Descendants returns every node below n in traversal order.
func (n *LayerNode) Descendants() []*LayerNode {
	var out []*LayerNode
	for _, c := range n.Children {
		out = append(out, c)
		out = append(out, c.Descendants()...)
	}
	return out
}

// Path returns the "/"-joined path of layer names from the root to n.
func (n *LayerNode) Path() string {
	var parts []string
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		parts = append([]string{cur.Name}, parts...)
	}
	return strings.Join(parts, "/")
}

// Find returns every node in n's subtree whose path matches path
// exactly (leading "/" optional).
func (n *LayerNode) Find(path string) []*LayerNode {
	path = strings.TrimPrefix(path, "/")
	var out []*LayerNode
	for _, d := range n.Subtree() {
		if d.Path() == path {
			out = append(out, d)
		}
	}
	return out
}

// Subtree returns n followed by every descendant.
func (n *LayerNode) Subtree() []*LayerNode {
	return append([]*LayerNode{n}, n.Descendants()...)
}

// Move relocates n to be a child of newParent, removing it from its
// current parent's children first. It refuses the move, returning
// ErrValidation, when newParent is n itself or one of n's own
// descendants — reattaching there would make n its own ancestor, and
// Descendants/Subtree would recurse into that cycle forever.
func (n *LayerNode) Move(newParent *LayerNode) error {
	for cur := newParent; cur != nil; cur = cur.Parent {
		if cur == n {
			return errors.Wrapf(ErrValidation, "cannot move layer %q under itself or a descendant", n.Name)
		}
	}
	if n.Parent != nil {
		siblings := n.Parent.Children
		for i, s := range siblings {
			if s == n {
				n.Parent.Children = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}
	n.Parent = newParent
	newParent.Children = append(newParent.Children, n)
	return nil
}

// SetCompression re-targets every channel (color, alpha, and both mask
// kinds) of n and all of its descendants to method, recursing through
// Children the same way Descendants does. The synthetic tree root has
// no Record of its own and is skipped.
func (n *LayerNode) SetCompression(method compression.Method) {
	if n.Record != nil {
		n.Record.Channels.SetCompression(method)
	}
	for _, c := range n.Children {
		c.SetCompression(method)
	}
}

// Remove detaches n from its parent.
func (n *LayerNode) Remove() {
	if n.Parent == nil {
		return
	}
	siblings := n.Parent.Children
	for i, s := range siblings {
		if s == n {
			n.Parent.Children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	n.Parent = nil
}
