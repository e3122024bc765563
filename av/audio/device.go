package audio

import (
	"errors"
	"fmt"
	"time"
)

// Format describes linear PCM audio as it is captured and played back.
type Format struct {
	SampleRate  uint32 // samples per second per channel
	Channels    int
	SampleWidth int // bytes per sample
}

// DefaultFormat is 8 kHz mono 16-bit linear PCM, the narrowband voice format.
var DefaultFormat = Format{
	SampleRate:  8000,
	Channels:    1,
	SampleWidth: 2,
}

var (
	// ErrClosed is returned by Read and Write after Close.
	ErrClosed = errors.New("audio stream closed")

	// ErrNoInput indicates a device without a capture source.
	ErrNoInput = errors.New("no capture input configured")

	// ErrNoOutput indicates a device without a playback sink.
	ErrNoOutput = errors.New("no playback output configured")
)

// Validate rejects formats that cannot describe a sample stream.
func (f Format) Validate() error {
	if f.SampleRate == 0 {
		return fmt.Errorf("sample rate cannot be zero")
	}
	if f.Channels <= 0 {
		return fmt.Errorf("channel count must be positive: %d", f.Channels)
	}
	if f.SampleWidth <= 0 {
		return fmt.Errorf("sample width must be positive: %d", f.SampleWidth)
	}
	return nil
}

// FrameSize returns the number of bytes holding one sample for every channel.
func (f Format) FrameSize() int {
	return f.Channels * f.SampleWidth
}

// ChunkBytes returns the size in bytes of a chunk of the given sample count.
func (f Format) ChunkBytes(samples int) int {
	return samples * f.FrameSize()
}

// Samples returns the number of whole samples held in n bytes.
func (f Format) Samples(n int) int {
	if f.FrameSize() == 0 {
		return 0
	}
	return n / f.FrameSize()
}

// Duration returns the playing time of the given sample count.
func (f Format) Duration(samples int) time.Duration {
	if f.SampleRate == 0 {
		return 0
	}
	return time.Duration(samples) * time.Second / time.Duration(f.SampleRate)
}

// Capture is a blocking source of audio chunks.
type Capture interface {
	// Read blocks until exactly samples samples are available and returns them.
	Read(samples int) ([]byte, error)

	// Close releases the source. A blocked Read may return ErrClosed.
	Close() error
}

// Playback is a blocking sink for audio chunks.
type Playback interface {
	// Write blocks until data has been handed to the output.
	Write(data []byte) error

	// Close releases the sink.
	Close() error
}

// Device opens capture and playback streams.
type Device interface {
	OpenCapture(format Format) (Capture, error)
	OpenPlayback(format Format) (Playback, error)
}
