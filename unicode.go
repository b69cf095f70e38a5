package psd

import "unicode/utf16"

// decodeUTF16BE converts UTF-16 code units (already byte-order-decoded
// by the caller) into a Go string, used for luni-style tagged blocks.
func decodeUTF16BE(units []uint16) string {
	return string(utf16.Decode(units))
}

// encodeUTF16BE converts a Go string into UTF-16 code units, surrogate
// pairs included, ready for big-endian serialization.
func encodeUTF16BE(s string) []uint16 {
	return utf16.Encode([]rune(s))
}
