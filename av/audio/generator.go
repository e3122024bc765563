package audio

import (
	"fmt"
	"math"
	"sync"
)

// SilenceReader is an endless stream of zero bytes, i.e. digital silence in
// any linear PCM format.
type SilenceReader struct{}

// Read fills p with zeros.
func (SilenceReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// ToneReader is an endless stream of a sine tone as 16-bit little-endian mono
// samples. It is useful for checking a link without a microphone.
type ToneReader struct {
	mu        sync.Mutex
	step      float64 // phase increment per sample
	phase     float64
	amplitude float64
	pending   []byte // second byte of a sample split across Read calls
}

// NewToneReader creates a tone generator.
//
// Parameters:
//   - frequency: Tone frequency in Hz, below the Nyquist limit of sampleRate
//   - sampleRate: Output sample rate in Hz
//   - level: Peak amplitude as a fraction of full scale (0.0 to 1.0)
func NewToneReader(frequency float64, sampleRate uint32, level float64) (*ToneReader, error) {
	if sampleRate == 0 {
		return nil, fmt.Errorf("sample rate cannot be zero")
	}
	if frequency <= 0 || frequency >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("frequency %.1f Hz out of range for %d Hz sample rate", frequency, sampleRate)
	}
	if level < 0 || level > 1 {
		return nil, fmt.Errorf("level must be between 0.0 and 1.0: %f", level)
	}

	return &ToneReader{
		step:      2 * math.Pi * frequency / float64(sampleRate),
		amplitude: level * math.MaxInt16,
	}, nil
}

// Read fills p with the next samples of the tone.
func (t *ToneReader) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	if len(t.pending) > 0 && len(p) > 0 {
		p[0] = t.pending[0]
		t.pending = nil
		n = 1
	}

	for n < len(p) {
		sample := int16(math.Round(t.amplitude * math.Sin(t.phase)))
		t.phase += t.step
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}

		lo, hi := byte(uint16(sample)), byte(uint16(sample)>>8)
		p[n] = lo
		n++
		if n == len(p) {
			t.pending = []byte{hi}
			break
		}
		p[n] = hi
		n++
	}

	return n, nil
}
