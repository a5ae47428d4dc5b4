package session

import (
	"encoding/binary"
	"math"
)

// float32sToBytes/bytesToFloat32s convert between the PCM sample batches
// application.SampleSource/SampleSink traffic in and the raw byte payloads
// the cipher and endpoint operate on.
func float32sToBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], math.Float32bits(s))
	}
	return out
}

func bytesToFloat32s(b []byte) []float32 {
	n := len(b) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : i*4+4]))
	}
	return out
}
