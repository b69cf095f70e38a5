package binio

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer is the write-side mirror of Reader: big-endian primitive writes
// plus the padding/pascal-string helpers the section writers need.
type Writer struct {
	s Stream
}

func NewWriter(s Stream) *Writer {
	return &Writer{s: s}
}

func (w *Writer) Stream() Stream { return w.s }

func (w *Writer) Tell() (int64, error) {
	return w.s.Seek(0, io.SeekCurrent)
}

func (w *Writer) Seek(offset int64, whence int) (int64, error) {
	return w.s.Seek(offset, whence)
}

func (w *Writer) WriteBytes(b []byte) error {
	_, err := w.s.Write(b)
	return err
}

func (w *Writer) WriteString(s string) error {
	_, err := w.s.Write([]byte(s))
	return err
}

func (w *Writer) WriteByte(b byte) error {
	_, err := w.s.Write([]byte{b})
	return err
}

func (w *Writer) WriteUint16(v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.s.Write(b[:])
	return err
}

func (w *Writer) WriteInt16(v int16) error {
	return w.WriteUint16(uint16(v))
}

func (w *Writer) WriteUint32(v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.s.Write(b[:])
	return err
}

func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

func (w *Writer) WriteUint64(v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.s.Write(b[:])
	return err
}

func (w *Writer) WriteInt64(v int64) error {
	return w.WriteUint64(uint64(v))
}

func (w *Writer) WriteFloat64(v float64) error {
	return w.WriteUint64(math.Float64bits(v))
}

func (w *Writer) WriteFloat32(v float32) error {
	return w.WriteUint32(math.Float32bits(v))
}

// WritePascalString writes a 1-byte length-prefixed string and pads the
// total (including the length byte) to a multiple of align.
func (w *Writer) WritePascalString(s string, align int) error {
	if len(s) > 255 {
		s = s[:255]
	}
	if err := w.WriteByte(byte(len(s))); err != nil {
		return err
	}
	if err := w.WriteString(s); err != nil {
		return err
	}
	if pad := paddingFor(len(s)+1, align); pad > 0 {
		return w.WriteZeros(pad)
	}
	return nil
}

func (w *Writer) WriteZeros(n int) error {
	if n <= 0 {
		return nil
	}
	zeros := make([]byte, n)
	return w.WriteBytes(zeros)
}

// PatchUint32 overwrites a previously reserved 4-byte length field at a
// fixed offset, restoring the stream's cursor afterwards. Section writers
// reserve the length field, write the body, then come back to patch it,
// since the body's size usually isn't known until it's been written.
func (w *Writer) PatchUint32(offset int64, v uint32) error {
	cur, err := w.Tell()
	if err != nil {
		return err
	}
	if _, err := w.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	if err := w.WriteUint32(v); err != nil {
		return err
	}
	_, err = w.Seek(cur, io.SeekStart)
	return err
}

func (w *Writer) PatchUint64(offset int64, v uint64) error {
	cur, err := w.Tell()
	if err != nil {
		return err
	}
	if _, err := w.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	if err := w.WriteUint64(v); err != nil {
		return err
	}
	_, err = w.Seek(cur, io.SeekStart)
	return err
}
