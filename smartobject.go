package psd

// SmartObjectInfo is the decoded form of a smart-object layer's
// placed-layer-data tagged block ("SoLd", or the older "PlLd" which
// this package only partially understands). It carries the content-
// addressed linked-file reference, the placement quad, and an
// optional warp on top of it.
type SmartObjectInfo struct {
	LinkedHash string // Idnt: unique id matching a LinkedLayer entry
	Quad       [4][2]float64
	Width      float64
	Height     float64
	Warp       *WarpData
	Raw        map[string]interface{} // every descriptor field, decoded opaquely
}

// decodeSmartObject pulls the known fields out of a layer record's
// SoLd/PlLd tagged block. The older PlLd block predates the descriptor-
// based format and is only partially specified; if only PlLd is
// present (no SoLd) this returns a SmartObjectInfo with Raw populated
// from whatever fields PlLd's own older layout happens to share with
// SoLd's descriptor keys, and the caller should treat Quad/Warp as
// unreliable in that case.
func decodeSmartObject(rec *LayerRecord) *SmartObjectInfo {
	b, ok := rec.AdditionalInfo.Get("SoLd")
	if !ok {
		b, ok = rec.AdditionalInfo.Get("PlLd")
		if !ok {
			return nil
		}
	}

	parser := NewDescriptorParser(b.Data)
	fields, err := parser.Parse()
	if err != nil {
		return &SmartObjectInfo{}
	}

	info := &SmartObjectInfo{Raw: fields}
	if v, ok := fields["Idnt"].(string); ok {
		info.LinkedHash = v
	}
	if list, ok := fields["Transform"].([]interface{}); ok && len(list) == 8 {
		for i := 0; i < 4; i++ {
			x, xOK := list[i*2].(float64)
			y, yOK := list[i*2+1].(float64)
			if xOK && yOK {
				info.Quad[i] = [2]float64{x, y}
			}
		}
	}
	if sz, ok := fields["Sz  "].(map[string]interface{}); ok {
		if w, ok := sz["Wdth"].(float64); ok {
			info.Width = w
		}
		if h, ok := sz["Hght"].(float64); ok {
			info.Height = h
		}
	}
	if warpFields, ok := fields["warp"].(map[string]interface{}); ok {
		info.Warp = warpFromFields(warpFields)
	}
	// A custom-subdivision warp stores its mesh in a sibling "quiltWarp"
	// descriptor instead, leaving "warp" default-initialized; when
	// present it supersedes the named-style warp decoded above.
	if quilt, ok := fields["quiltWarp"].(map[string]interface{}); ok {
		info.Warp = warpFromFields(quilt)
	}
	return info
}
