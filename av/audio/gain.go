package audio

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// MaxGain is the largest accepted linear gain (+12 dB).
const MaxGain = 4.0

// GainCapture applies a linear gain to 16-bit little-endian samples read from
// another Capture.
//
// Gain values: 0.0 = silence, 1.0 = no change, >1.0 = amplification.
// Samples are clipped to the int16 range.
type GainCapture struct {
	source Capture
	gain   float64
}

// NewGainCapture wraps source with a gain stage.
func NewGainCapture(source Capture, gain float64) (*GainCapture, error) {
	if source == nil {
		return nil, fmt.Errorf("capture source cannot be nil")
	}
	if gain < 0.0 {
		return nil, fmt.Errorf("gain cannot be negative: %f", gain)
	}
	if gain > MaxGain {
		return nil, fmt.Errorf("gain too high (max %.1f): %f", MaxGain, gain)
	}

	return &GainCapture{source: source, gain: gain}, nil
}

// Read reads a chunk from the source and scales it.
func (g *GainCapture) Read(samples int) ([]byte, error) {
	data, err := g.source.Read(samples)
	if err != nil {
		return nil, err
	}
	if g.gain == 1.0 {
		return data, nil
	}

	pcm, err := DecodePCM16(data)
	if err != nil {
		return nil, err
	}

	clipped := applyGain(pcm, g.gain)
	if clipped > 0 {
		logrus.WithFields(logrus.Fields{
			"function":      "GainCapture.Read",
			"clipped_count": clipped,
			"total_samples": len(pcm),
			"gain":          g.gain,
		}).Debug("Audio clipping during gain processing")
	}

	return EncodePCM16(pcm), nil
}

// Close closes the source.
func (g *GainCapture) Close() error {
	return g.source.Close()
}

// applyGain scales samples in place and returns how many were clipped.
func applyGain(samples []int16, gain float64) int {
	clipped := 0
	for i, sample := range samples {
		v := float64(sample) * gain
		switch {
		case v > 32767.0:
			samples[i] = 32767
			clipped++
		case v < -32768.0:
			samples[i] = -32768
			clipped++
		default:
			samples[i] = int16(v)
		}
	}
	return clipped
}

// GainDevice applies a gain stage to every capture stream opened through the
// wrapped device. Playback is passed through.
type GainDevice struct {
	Device
	Gain float64
}

// OpenCapture opens a capture on the wrapped device and scales it by Gain.
func (d *GainDevice) OpenCapture(format Format) (Capture, error) {
	source, err := d.Device.OpenCapture(format)
	if err != nil {
		return nil, err
	}
	capture, err := NewGainCapture(source, d.Gain)
	if err != nil {
		source.Close()
		return nil, err
	}
	return capture, nil
}
