package psd

import "github.com/pkg/errors"

// The error taxonomy every operation in this package reports through:
// a caller can switch on errors.Is against these sentinels regardless
// of how much context has been wrapped around them.
var (
	// ErrIO wraps a failure from the underlying stream (short read,
	// write failure, seek out of range).
	ErrIO = errors.New("psd: io error")

	// ErrFormat marks a structural violation of the file format itself
	// (bad signature, version, or section framing).
	ErrFormat = errors.New("psd: format error")

	// ErrCodec wraps a channel-compression failure. See the
	// compression package's own sentinels for the finer-grained
	// BadData/ShortOutput/InsufficientSpace/InvalidMarker members.
	ErrCodec = errors.New("psd: codec error")

	// ErrValidation marks a document that fails validation before any
	// byte of a write is committed.
	ErrValidation = errors.New("psd: validation error")

	// ErrNotFound marks a lookup (layer path, linked-layer hash,
	// tagged-block key) that found nothing.
	ErrNotFound = errors.New("psd: not found")

	// ErrCancelled marks an operation stopped by a progress callback
	// returning Break.
	ErrCancelled = errors.New("psd: cancelled")
)
