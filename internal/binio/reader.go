package binio

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Reader layers big-endian primitive reads on top of a Stream, covering
// every width the format needs including PSB's 64-bit variants.
type Reader struct {
	s Stream
}

func NewReader(s Stream) *Reader {
	return &Reader{s: s}
}

func (r *Reader) Stream() Stream { return r.s }

func (r *Reader) Tell() (int64, error) {
	return r.s.Seek(0, io.SeekCurrent)
}

func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	return r.s.Seek(offset, whence)
}

func (r *Reader) Skip(n int64) error {
	_, err := r.s.Seek(n, io.SeekCurrent)
	return err
}

func (r *Reader) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.s, buf); err != nil {
		return nil, errors.Wrapf(err, "binio: short read (wanted %d bytes)", n)
	}
	return buf, nil
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.read(n)
}

func (r *Reader) ReadString(n int) (string, error) {
	b, err := r.read(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) ReadByte() (byte, error) {
	b, err := r.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.read(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	b, err := r.read(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func (r *Reader) ReadFloat32() (float32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

// ReadPascalString reads a 1-byte length-prefixed string, then pads the
// read to a multiple of align (including the length byte itself).
func (r *Reader) ReadPascalString(align int) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	var s string
	if n > 0 {
		s, err = r.ReadString(int(n))
		if err != nil {
			return "", err
		}
	}
	total := int(n) + 1
	if pad := paddingFor(total, align); pad > 0 {
		if err := r.Skip(int64(pad)); err != nil {
			return "", err
		}
	}
	return s, nil
}

func paddingFor(total, align int) int {
	if align <= 1 {
		return 0
	}
	rem := total % align
	if rem == 0 {
		return 0
	}
	return align - rem
}
