package oto

import (
	"encoding/binary"
	"math"

	"github.com/vsariola/polyvoice"
)

const bytesPerFrame = 8 // two float32 channels

// FloatBufferToLE writes the buffer as interleaved 32-bit little-endian floats
// into dst and returns the number of bytes written. dst must hold at least
// len(buffer)*8 bytes.
func FloatBufferToLE(buffer polyvoice.AudioBuffer, dst []byte) int {
	for i, frame := range buffer {
		binary.LittleEndian.PutUint32(dst[i*bytesPerFrame:], math.Float32bits(frame[0]))
		binary.LittleEndian.PutUint32(dst[i*bytesPerFrame+4:], math.Float32bits(frame[1]))
	}
	return len(buffer) * bytesPerFrame
}
