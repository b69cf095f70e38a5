package compression

import "github.com/pkg/errors"

// MaxPackBitsSize returns the worst-case PackBits output size for a single
// scanline of n bytes: one extra header byte per run of 3 identical bytes
// in the worst alternating case, rounded up to an even length.
func MaxPackBitsSize(n int) int {
	if n == 0 {
		return 0
	}
	worst := n / 3
	if n%3 != 0 {
		worst++
	}
	total := n + worst
	if total%2 != 0 {
		total++
	}
	return total
}

// EncodePackBits compresses a single scanline with the PackBits algorithm:
// an accumulator that switches between emitting runs of an identical byte
// and emitting literal runs of dissimilar bytes.
func EncodePackBits(scanline []byte) []byte {
	out := make([]byte, 0, MaxPackBitsSize(len(scanline)))
	if len(scanline) == 0 {
		return out
	}
	if len(scanline) == 1 {
		return append(out, 0, scanline[0])
	}

	var runLen, nonRunLen int
	flushNonRun := func(endExclusive int) {
		if nonRunLen == 0 {
			return
		}
		out = append(out, byte(nonRunLen-1))
		out = append(out, scanline[endExclusive-nonRunLen:endExclusive]...)
		nonRunLen = 0
	}

	for i := 1; i < len(scanline); i++ {
		prev, curr := scanline[i-1], scanline[i]
		if prev == curr {
			flushNonRun(i - 1)
			runLen++
			if runLen == 128 {
				out = append(out, byte(257-runLen), curr)
				runLen = 0
			}
		} else {
			if runLen != 0 {
				runLen++
				out = append(out, byte(257-runLen), prev)
				runLen = 0
			} else {
				nonRunLen++
			}
			if nonRunLen == 128 {
				flushNonRun(i)
			}
		}
	}

	if runLen != 0 {
		runLen++
		out = append(out, byte(257-runLen), scanline[len(scanline)-1])
	} else {
		nonRunLen++
		flushNonRun(len(scanline))
	}

	if len(out)%2 != 0 {
		out = append(out, 0x80)
	}
	return out
}

// DecodePackBits expands a single PackBits-compressed scanline into dst,
// which must already be sized to the scanline's uncompressed width.
// Expands one scanline's run/literal packets, shared by both the
// layer-channel and document-level image codec paths.
func DecodePackBits(src []byte, dst []byte) error {
	pos, dataIdx := 0, 0
	width := len(dst)
	for pos < width {
		if dataIdx >= len(src) {
			return errors.Wrapf(ErrBadData, "packbits: ran out of input at %d/%d output bytes", pos, width)
		}
		header := int8(src[dataIdx])
		dataIdx++
		switch {
		case header >= 0:
			n := int(header) + 1
			if dataIdx+n > len(src) || pos+n > width {
				return errors.Wrapf(ErrBadData, "packbits: literal run overruns buffer")
			}
			copy(dst[pos:pos+n], src[dataIdx:dataIdx+n])
			pos += n
			dataIdx += n
		case header != -128:
			n := 257 - int(uint8(header))
			if dataIdx >= len(src) || pos+n > width {
				return errors.Wrapf(ErrBadData, "packbits: repeat run overruns buffer")
			}
			val := src[dataIdx]
			dataIdx++
			for i := 0; i < n; i++ {
				dst[pos+i] = val
			}
			pos += n
		default:
			// -128 (0x80) is a no-op padding byte.
		}
	}
	return nil
}
