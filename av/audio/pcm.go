package audio

import (
	"encoding/binary"
	"fmt"
)

// EncodePCM16 converts samples to 16-bit little-endian bytes, the layout
// sound cards hand out for signed 16-bit capture.
func EncodePCM16(pcm []int16) []byte {
	data := make([]byte, len(pcm)*2)
	for i, sample := range pcm {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(sample))
	}
	return data
}

// DecodePCM16 converts 16-bit little-endian bytes back to samples.
func DecodePCM16(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("pcm data length must be even: %d", len(data))
	}
	pcm := make([]int16, len(data)/2)
	for i := range pcm {
		pcm[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return pcm, nil
}
