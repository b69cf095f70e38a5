package psd

import (
	"math"

	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/compression"
	"github.com/go-photoshop/gopsd/internal/binio"
)

// ChannelRoleKind classifies what a channel represents, independent of
// its numeric role id — color data, the layer's alpha, or one of the two
// mask kinds.
type ChannelRoleKind int

const (
	ChannelRoleColor ChannelRoleKind = iota
	ChannelRoleAlpha
	ChannelRoleUserMask
	ChannelRoleRealUserMask
)

// ChannelRoleID is the signed channel identifier stored in a layer
// record's channel-info table: 0..n for color channels, -1 for alpha,
// -2 for the user mask, -3 for the "real" (vector-backed) user mask.
type ChannelRoleID int16

const (
	ChannelRoleIDAlpha        ChannelRoleID = -1
	ChannelRoleIDUserMask     ChannelRoleID = -2
	ChannelRoleIDRealUserMask ChannelRoleID = -3
)

func (id ChannelRoleID) Kind() ChannelRoleKind {
	switch id {
	case ChannelRoleIDAlpha:
		return ChannelRoleAlpha
	case ChannelRoleIDUserMask:
		return ChannelRoleUserMask
	case ChannelRoleIDRealUserMask:
		return ChannelRoleRealUserMask
	default:
		return ChannelRoleColor
	}
}

// SampleType is the per-channel sample width the document's bit depth
// implies.
type SampleType int

const (
	SampleUint8 SampleType = iota
	SampleUint16
	SampleFloat32
)

func SampleTypeForDepth(depth uint16) (SampleType, int) {
	switch depth {
	case 16:
		return SampleUint16, 2
	case 32:
		return SampleFloat32, 4
	default:
		return SampleUint8, 1
	}
}

// Channel is an owned, typed, compressed-in-memory channel buffer. The
// payload stays compressed until Decode is called; Extract moves the
// decoded samples out and nulls the channel's cached copy, matching the
// "extraction transfers ownership" rule.
type Channel struct {
	RoleID      ChannelRoleID
	Width       int
	Height      int
	CenterX     float32
	CenterY     float32
	Compression compression.Method
	SampleType  SampleType

	payload []byte // compressed wire bytes, compression-marker excluded
	decoded []byte // cached decode, each sample big-endian (high byte first)
}

func NewChannel(roleID ChannelRoleID, width, height int, sampleType SampleType, method compression.Method) *Channel {
	return &Channel{
		RoleID:      roleID,
		Width:       width,
		Height:      height,
		Compression: method,
		SampleType:  sampleType,
	}
}

func (c *Channel) Kind() ChannelRoleKind { return c.RoleID.Kind() }

// elemSize returns the byte width of one sample of this channel's type.
func (c *Channel) elemSize() int {
	switch c.SampleType {
	case SampleUint16:
		return 2
	case SampleFloat32:
		return 4
	default:
		return 1
	}
}

// byteSize is the decoded size in bytes: width*height*sizeof(T).
func (c *Channel) byteSize() int {
	return c.Width * c.Height * c.elemSize()
}

// Decode lazily inflates the compressed payload and caches the result.
// Returned bytes are shared with the cache; callers that mutate must
// clone first.
func (c *Channel) Decode(v binio.Version) ([]byte, error) {
	if c.decoded != nil {
		return c.decoded, nil
	}
	if c.Width == 0 || c.Height == 0 {
		c.decoded = []byte{}
		return c.decoded, nil
	}

	var out []byte
	var err error
	switch c.SampleType {
	case SampleUint16:
		var samples []uint16
		samples, err = compression.DecodeChannelUint16(c.Compression, c.payload, c.Width, c.Height, v)
		if err == nil {
			out = uint16SamplesToBytes(samples)
		}
	case SampleFloat32:
		var samples []float32
		samples, err = compression.DecodeChannelFloat32(c.Compression, c.payload, c.Width, c.Height, v)
		if err == nil {
			out = float32SamplesToBytes(samples)
		}
	default:
		out, err = compression.DecodeChannelUint8(c.Compression, c.payload, c.Width, c.Height, v)
	}
	if err != nil {
		return nil, errors.Wrap(ErrCodec, err.Error())
	}
	c.decoded = out
	return out, nil
}

// Extract moves the decoded samples out of the channel and nulls both
// the cached decode and the compressed payload, per the store's
// "extraction transfers ownership" rule.
func (c *Channel) Extract(v binio.Version) ([]byte, error) {
	data, err := c.Decode(v)
	if err != nil {
		return nil, err
	}
	c.decoded = nil
	c.payload = nil
	return data, nil
}

// Set replaces the channel's contents from a caller-supplied decoded
// buffer, validating its size against width*height*sizeof(T), and marks
// it for re-encode under the given compression method.
func (c *Channel) Set(data []byte, method compression.Method) error {
	if len(data) != c.byteSize() {
		return errors.Wrapf(ErrValidation, "channel %d: set %d bytes, want %d (w=%d h=%d)", c.RoleID, len(data), c.byteSize(), c.Width, c.Height)
	}
	c.decoded = data
	c.payload = nil
	c.Compression = method
	return nil
}

// SetCompression re-targets the channel's on-disk codec without
// altering its decoded contents; the next Encode call will re-run the
// new codec.
func (c *Channel) SetCompression(method compression.Method) {
	if c.Compression == method {
		return
	}
	c.Compression = method
	c.payload = nil
}

// Encode returns the channel's wire payload, compression marker
// excluded. When only a compressed payload is cached (nothing decoded)
// that payload is returned unchanged; otherwise the decoded contents are
// compressed under c.Compression.
func (c *Channel) Encode(v binio.Version, zipLevel int) ([]byte, error) {
	if c.payload != nil && c.decoded == nil {
		return c.payload, nil
	}
	if c.decoded == nil {
		if _, err := c.Decode(v); err != nil {
			return nil, err
		}
	}

	var out []byte
	var err error
	switch c.SampleType {
	case SampleUint16:
		out, err = compression.EncodeChannelUint16(c.Compression, bytesToUint16Samples(c.decoded), c.Width, c.Height, v, zipLevel)
	case SampleFloat32:
		out, err = compression.EncodeChannelFloat32(c.Compression, bytesToFloat32Samples(c.decoded), c.Width, c.Height, v, zipLevel)
	default:
		out, err = compression.EncodeChannelUint8(c.Compression, c.decoded, c.Width, c.Height, v, zipLevel)
	}
	if err != nil {
		return nil, errors.Wrap(ErrCodec, err.Error())
	}
	c.payload = out
	return out, nil
}

func uint16SamplesToBytes(s []uint16) []byte {
	out := make([]byte, len(s)*2)
	for i, v := range s {
		out[i*2] = byte(v >> 8)
		out[i*2+1] = byte(v)
	}
	return out
}

func bytesToUint16Samples(b []byte) []uint16 {
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = uint16(b[i*2])<<8 | uint16(b[i*2+1])
	}
	return out
}

func float32SamplesToBytes(s []float32) []byte {
	out := make([]byte, len(s)*4)
	for i, v := range s {
		bits := math.Float32bits(v)
		out[i*4] = byte(bits >> 24)
		out[i*4+1] = byte(bits >> 16)
		out[i*4+2] = byte(bits >> 8)
		out[i*4+3] = byte(bits)
	}
	return out
}

func bytesToFloat32Samples(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		bits := uint32(b[i*4])<<24 | uint32(b[i*4+1])<<16 | uint32(b[i*4+2])<<8 | uint32(b[i*4+3])
		out[i] = math.Float32frombits(bits)
	}
	return out
}
