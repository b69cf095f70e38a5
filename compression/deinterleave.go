package compression

// Float32 channels stored under ZipPrediction are byte de-interleaved
// before compression: instead of the four bytes of each big-endian float
// appearing together (1234 1234 1234...), Photoshop groups same-position
// bytes across the row into four planes (1111 2222 3333 4444) to improve
// the deflate ratio, then delta-encodes across the whole planar row.

// RemoveFloatRowPrediction reverses the per-row byte-wise delta encoding
// applied to the planar (not yet de-interleaved) float32 byte buffer.
func RemoveFloatRowPrediction(buf []byte, width, height int) {
	rowBytes := width * 4
	for y := 0; y < height; y++ {
		row := buf[y*rowBytes : (y+1)*rowBytes]
		for x := 1; x < rowBytes; x++ {
			row[x] += row[x-1]
		}
	}
}

// ApplyFloatRowPrediction is the write-side mirror of
// RemoveFloatRowPrediction.
func ApplyFloatRowPrediction(buf []byte, width, height int) {
	rowBytes := width * 4
	for y := 0; y < height; y++ {
		row := buf[y*rowBytes : (y+1)*rowBytes]
		for x := rowBytes - 1; x >= 1; x-- {
			row[x] -= row[x-1]
		}
	}
}

// DeinterleaveFloatPlanes rearranges a prediction-decoded planar buffer
// (four byte-planes per row, each width bytes) into standard per-pixel
// big-endian float32 byte order.
func DeinterleaveFloatPlanes(planar []byte, width, height int) []byte {
	out := make([]byte, len(planar))
	for y := 0; y < height; y++ {
		rowOff := y * width * 4
		for x := 0; x < width; x++ {
			out[rowOff+x*4+0] = planar[rowOff+x]
			out[rowOff+x*4+1] = planar[rowOff+width+x]
			out[rowOff+x*4+2] = planar[rowOff+width*2+x]
			out[rowOff+x*4+3] = planar[rowOff+width*3+x]
		}
	}
	return out
}

// InterleaveFloatPlanes is the write-side mirror of
// DeinterleaveFloatPlanes: it takes standard per-pixel big-endian float32
// bytes and splits each row into the four byte-planes Photoshop expects.
func InterleaveFloatPlanes(pixels []byte, width, height int) []byte {
	out := make([]byte, len(pixels))
	for y := 0; y < height; y++ {
		rowOff := y * width * 4
		for x := 0; x < width; x++ {
			out[rowOff+x] = pixels[rowOff+x*4+0]
			out[rowOff+width+x] = pixels[rowOff+x*4+1]
			out[rowOff+width*2+x] = pixels[rowOff+x*4+2]
			out[rowOff+width*3+x] = pixels[rowOff+x*4+3]
		}
	}
	return out
}
