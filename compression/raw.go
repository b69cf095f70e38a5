package compression

// DecodeRaw is the identity codec: the payload already is n bytes of
// sample data with no further framing.
func DecodeRaw(src []byte, n int) ([]byte, error) {
	if len(src) < n {
		return nil, ErrShortOutput
	}
	return src[:n], nil
}

// EncodeRaw is the identity codec's write side.
func EncodeRaw(src []byte) []byte {
	return src
}
