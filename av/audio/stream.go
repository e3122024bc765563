package audio

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// StreamDevice backs capture and playback with plain byte streams: files,
// pipes, stdin/stdout or one of the generators in this package.
//
// Input is read in whole chunks with io.ReadFull, so a short read at end of
// stream surfaces as io.ErrUnexpectedEOF. Close closes Input and Output when
// they implement io.Closer.
type StreamDevice struct {
	Input  io.Reader
	Output io.Writer
}

// NewStreamDevice creates a device reading from in and writing to out.
// Either may be nil if the corresponding direction is never opened.
func NewStreamDevice(in io.Reader, out io.Writer) *StreamDevice {
	return &StreamDevice{Input: in, Output: out}
}

// OpenCapture opens the input stream.
func (d *StreamDevice) OpenCapture(format Format) (Capture, error) {
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("invalid capture format: %w", err)
	}
	if d.Input == nil {
		return nil, ErrNoInput
	}

	logrus.WithFields(logrus.Fields{
		"function":    "StreamDevice.OpenCapture",
		"sample_rate": format.SampleRate,
		"channels":    format.Channels,
	}).Debug("Opening stream capture")

	return &streamCapture{r: d.Input, format: format}, nil
}

// OpenPlayback opens the output stream.
func (d *StreamDevice) OpenPlayback(format Format) (Playback, error) {
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("invalid playback format: %w", err)
	}
	if d.Output == nil {
		return nil, ErrNoOutput
	}

	logrus.WithFields(logrus.Fields{
		"function":    "StreamDevice.OpenPlayback",
		"sample_rate": format.SampleRate,
		"channels":    format.Channels,
	}).Debug("Opening stream playback")

	return &streamPlayback{w: d.Output}, nil
}

type streamCapture struct {
	r      io.Reader
	format Format
	closed atomic.Bool
	once   sync.Once
}

func (c *streamCapture) Read(samples int) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if samples <= 0 {
		return nil, fmt.Errorf("sample count must be positive: %d", samples)
	}

	buf := make([]byte, c.format.ChunkBytes(samples))
	if _, err := io.ReadFull(c.r, buf); err != nil {
		if c.closed.Load() {
			return nil, ErrClosed
		}
		return nil, err
	}
	return buf, nil
}

func (c *streamCapture) Close() error {
	var err error
	c.once.Do(func() {
		c.closed.Store(true)
		if closer, ok := c.r.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return err
}

// streamPlayback writes without holding a lock so that Close can close the
// writer under a Write blocked on a stalled sink.
type streamPlayback struct {
	w      io.Writer
	closed atomic.Bool
	once   sync.Once
}

func (p *streamPlayback) Write(data []byte) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if _, err := p.w.Write(data); err != nil {
		if p.closed.Load() {
			return ErrClosed
		}
		return err
	}
	return nil
}

func (p *streamPlayback) Close() error {
	var err error
	p.once.Do(func() {
		p.closed.Store(true)
		if closer, ok := p.w.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return err
}
