// Package binio provides the big-endian, width-variant byte I/O primitives
// shared by every section parser in the psd package: a file-backed stream,
// a zero-copy in-memory stream, and the PSD/PSB variant-width helpers.
package binio

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// Stream is the minimal random-access surface every section reader/writer
// needs. A *os.File and a *MemStream both satisfy it.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker
	Size() (int64, error)
}

// Position returns the stream's current offset from the start.
func Position(s Stream) (int64, error) {
	return s.Seek(0, io.SeekCurrent)
}

// MemStream is an in-memory, growable, thread-safe-for-reads stream backed
// by an owned buffer. Multiple readers may call ReadView concurrently;
// Write/Seek mutate shared cursor state and are not safe to call
// concurrently with each other (single-writer, as required by §5).
type MemStream struct {
	mu   sync.RWMutex
	buf  []byte
	pos  int64
}

// NewMemStream wraps an existing byte slice without copying it.
func NewMemStream(buf []byte) *MemStream {
	return &MemStream{buf: buf}
}

func (m *MemStream) Size() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.buf)), nil
}

func (m *MemStream) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (m *MemStream) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	n := copy(m.buf[m.pos:end], p)
	m.pos = end
	return n, nil
}

func (m *MemStream) Seek(offset int64, whence int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.pos + offset
	case io.SeekEnd:
		target = int64(len(m.buf)) + offset
	default:
		return 0, errors.Errorf("binio: invalid whence %d", whence)
	}
	if target < 0 {
		return 0, errors.Errorf("binio: negative seek position %d", target)
	}
	m.pos = target
	return m.pos, nil
}

// ReadView returns a read-only slice into the backing buffer without
// copying. It does not move the stream cursor and is safe to call
// concurrently with other ReadView calls.
func (m *MemStream) ReadView(offset int64, size int64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if offset < 0 || size < 0 || offset+size > int64(len(m.buf)) {
		return nil, errors.Errorf("binio: read_view out of range (offset=%d size=%d len=%d)", offset, size, len(m.buf))
	}
	return m.buf[offset : offset+size], nil
}

// Bytes returns the entire backing buffer without copying.
func (m *MemStream) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buf
}
