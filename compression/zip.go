package compression

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// DecodeZip inflates a zlib-wrapped payload, truncating/erroring against
// the caller's expected uncompressed size n.
func DecodeZip(src []byte, n int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, errors.Wrap(ErrBadData, err.Error())
	}
	defer r.Close()

	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, errors.Wrapf(ErrShortOutput, "zip: %s", err)
	}
	return out, nil
}

// EncodeZip deflates src at the given zlib compression level (the format
// doesn't record the level used, so any valid level round-trips).
func EncodeZip(src []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
