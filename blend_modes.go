package psd

import "strings"

// blendModeNames maps the 4-byte on-disk blend-mode key to its
// human-readable name. No component in this package composites pixels
// across blend modes — the document's stored flat preview is read and
// written as-is, never re-derived — so only the key<->name table is
// kept, not any per-pixel blend math.
var blendModeNames = map[string]string{
	"norm": "normal",
	"pass": "passthrough",
	"dark": "darken",
	"lite": "lighten",
	"hue ": "hue",
	"sat ": "saturation",
	"colr": "color",
	"lum ": "luminosity",
	"mul ": "multiply",
	"scrn": "screen",
	"diss": "dissolve",
	"over": "overlay",
	"hLit": "hard_light",
	"sLit": "soft_light",
	"diff": "difference",
	"smud": "exclusion",
	"div ": "color_dodge",
	"idiv": "color_burn",
	"lbrn": "linear_burn",
	"lddg": "linear_dodge",
	"vLit": "vivid_light",
	"lLit": "linear_light",
	"pLit": "pin_light",
	"hMix": "hard_mix",
	"lgCl": "lighter_color",
	"dkCl": "darker_color",
	"fsub": "subtract",
	"fdiv": "divide",
}

var blendModeKeys = func() map[string]string {
	m := make(map[string]string, len(blendModeNames))
	for k, v := range blendModeNames {
		m[v] = k
	}
	return m
}()

// BlendModeName resolves a 4-byte on-disk blend-mode key to its
// human-readable name, falling back to the trimmed key itself for an
// unrecognized mode rather than failing.
func BlendModeName(key string) string {
	if name, ok := blendModeNames[key]; ok {
		return name
	}
	return strings.TrimSpace(key)
}

// BlendModeKeyFor is the reverse of BlendModeName, used when writing a
// layer record constructed from a human-readable mode name.
func BlendModeKeyFor(name string) string {
	if key, ok := blendModeKeys[name]; ok {
		return key
	}
	if len(name) >= 4 {
		return name[:4]
	}
	return name + strings.Repeat(" ", 4-len(name))
}
