package psd

import "github.com/go-photoshop/gopsd/internal/binio"

// WarpData is the decoded form of a warp descriptor, shared by text
// layers ("TySh") and smart-object placed-layer data ("SoLd"/"PlLd").
// A warp is either a named-style 4x4 transform (arc, arch, bulge, ...)
// driven by a handful of scalar parameters, or a custom quilt mesh of
// uOrder x vOrder control points.
type WarpData struct {
	Style               string
	Value               float64
	Perspective         float64
	PerspectiveOther    float64
	Rotate              string
	MeshUOrder          int32
	MeshVOrder          int32
	MeshPoints          [][2]float64 // flattened row-major, len == uOrder*vOrder when a quilt
	Bounds              Rect

	dirty      bool
	cachedMesh [][2]float64
}

// warpApplyFunc is the external pure-function collaborator that turns
// a WarpData plus a source raster into a warped raster. Actual mesh
// math (bicubic patch evaluation, perspective divide) is a rendering
// concern outside this package; callers that need the warped pixels
// supply their own implementation here.
var warpApplyFunc func(w *WarpData, src []byte, width, height int) []byte

// SetWarpApplyFunc installs the external warp-evaluation collaborator.
func SetWarpApplyFunc(fn func(w *WarpData, src []byte, width, height int) []byte) {
	warpApplyFunc = fn
}

// MarkDirty invalidates any cached mesh, forcing the next Evaluate
// call to recompute it. Called whenever a mesh control point or a
// scalar warp parameter is edited.
func (w *WarpData) MarkDirty() { w.dirty = true }

// IsQuilt reports whether this warp is a custom control-point mesh
// rather than a named parametric style.
func (w *WarpData) IsQuilt() bool {
	return w.MeshUOrder > 0 && w.MeshVOrder > 0 && len(w.MeshPoints) > 0
}

// Evaluate returns the warp's effective control-point mesh, refreshing
// it on first use or after MarkDirty and reusing the cached mesh
// otherwise. For a quilt warp the mesh is MeshPoints; for a named style
// it returns nil, since no mesh is generated from the named style's
// parameters (Apply hands the WarpData to warpApplyFunc instead).
func (w *WarpData) Evaluate() [][2]float64 {
	if !w.dirty && w.cachedMesh != nil {
		return w.cachedMesh
	}
	if w.IsQuilt() {
		w.cachedMesh = w.MeshPoints
	} else {
		w.cachedMesh = nil
	}
	w.dirty = false
	return w.cachedMesh
}

// Apply runs the installed warp-evaluation collaborator against src,
// returning nil if none has been installed.
func (w *WarpData) Apply(src []byte, width, height int) []byte {
	if warpApplyFunc == nil {
		return nil
	}
	return warpApplyFunc(w, src, width, height)
}

// parseWarp decodes the warp descriptor that follows a "warp version"
// (fixed at 1) field in both the "TySh" and "SoLd"/"PlLd" tagged
// blocks: a descriptor-version uint32, then the descriptor itself,
// carrying the named-style parameters (warpStyle/warpValue/
// warpPerspective/warpPerspectiveOther/warpRotate) this decodes, and a
// custom quilt's uOrder/vOrder/meshPoints fields, read whenever present
// regardless of warpStyle.
func parseWarp(r *binio.Reader) (*WarpData, error) {
	if _, err := r.ReadUint32(); err != nil { // descriptor version, fixed at 16
		return nil, err
	}
	rest := remainderFrom(r)
	parser := NewDescriptorParser(rest)
	fields, err := parser.Parse()
	if err != nil {
		return nil, err
	}
	consumed := len(rest) - parser.reader.Len()
	if err := r.Skip(int64(consumed)); err != nil {
		return nil, err
	}
	return warpFromFields(fields), nil
}

// warpFromFields pulls the named-style warp parameters, or a quilt
// mesh's subdivision counts and control points, out of an already-
// decoded descriptor field map. Both shapes are read from the same map
// since a custom-subdivision quilt warp carries "uOrder"/"vOrder"/
// "meshPoints" directly alongside (or instead of a meaningful)
// "warpStyle", rather than through a separate decode path.
func warpFromFields(fields map[string]interface{}) *WarpData {
	w := &WarpData{dirty: true}
	if style, ok := fields["warpStyle"].(map[string]interface{}); ok {
		if v, ok := style["value"].(string); ok {
			w.Style = v
		}
	}
	if v, ok := fields["warpValue"].(float64); ok {
		w.Value = v
	}
	if v, ok := fields["warpPerspective"].(float64); ok {
		w.Perspective = v
	}
	if v, ok := fields["warpPerspectiveOther"].(float64); ok {
		w.PerspectiveOther = v
	}
	if rotate, ok := fields["warpRotate"].(map[string]interface{}); ok {
		if v, ok := rotate["value"].(string); ok {
			w.Rotate = v
		}
	}
	if v, ok := fields["uOrder"].(int32); ok {
		w.MeshUOrder = v
	}
	if v, ok := fields["vOrder"].(int32); ok {
		w.MeshVOrder = v
	}
	if points, ok := fields["meshPoints"].([]interface{}); ok {
		w.MeshPoints = meshPointsFromList(points)
	}
	return w
}

// meshPointsFromList pairs up a flat x0,y0,x1,y1,... descriptor list
// into control points, the same interleaving a smart object's
// "Transform" quad uses.
func meshPointsFromList(items []interface{}) [][2]float64 {
	points := make([][2]float64, 0, len(items)/2)
	for i := 0; i+1 < len(items); i += 2 {
		x, xOK := items[i].(float64)
		y, yOK := items[i+1].(float64)
		if xOK && yOK {
			points = append(points, [2]float64{x, y})
		}
	}
	return points
}
