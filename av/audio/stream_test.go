package audio

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	bytes.Buffer
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestStreamDevice_OpenErrors(t *testing.T) {
	dev := NewStreamDevice(nil, nil)

	_, err := dev.OpenCapture(DefaultFormat)
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = dev.OpenPlayback(DefaultFormat)
	assert.ErrorIs(t, err, ErrNoOutput)

	dev = NewStreamDevice(SilenceReader{}, io.Discard)
	_, err = dev.OpenCapture(Format{})
	assert.Error(t, err)
	_, err = dev.OpenPlayback(Format{})
	assert.Error(t, err)
}

func TestStreamCapture_ReadChunks(t *testing.T) {
	input := make([]byte, 10)
	for i := range input {
		input[i] = byte(i)
	}
	dev := NewStreamDevice(bytes.NewReader(input), nil)

	capture, err := dev.OpenCapture(DefaultFormat)
	require.NoError(t, err)

	chunk, err := capture.Read(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3}, chunk)

	chunk, err = capture.Read(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5, 6, 7}, chunk)

	// Only two bytes left for a four byte chunk
	_, err = capture.Read(2)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = capture.Read(2)
	assert.ErrorIs(t, err, io.EOF)

	_, err = capture.Read(0)
	assert.Error(t, err)
}

func TestStreamCapture_Close(t *testing.T) {
	src := &closeRecorder{}
	src.Write(make([]byte, 64))

	capture, err := NewStreamDevice(src, nil).OpenCapture(DefaultFormat)
	require.NoError(t, err)

	require.NoError(t, capture.Close())
	require.NoError(t, capture.Close())
	assert.Equal(t, 1, src.closed)

	_, err = capture.Read(4)
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestStreamPlayback_WriteAndClose(t *testing.T) {
	out := &closeRecorder{}
	playback, err := NewStreamDevice(nil, out).OpenPlayback(DefaultFormat)
	require.NoError(t, err)

	require.NoError(t, playback.Write([]byte{1, 2}))
	require.NoError(t, playback.Write([]byte{3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4}, out.Bytes())

	require.NoError(t, playback.Close())
	require.NoError(t, playback.Close())
	assert.Equal(t, 1, out.closed)

	assert.ErrorIs(t, playback.Write([]byte{5}), ErrClosed)
}

func TestStreamPlayback_CloseUnblocksStalledWrite(t *testing.T) {
	_, w := io.Pipe()
	playback, err := NewStreamDevice(nil, w).OpenPlayback(DefaultFormat)
	require.NoError(t, err)

	writeErr := make(chan error, 1)
	go func() { writeErr <- playback.Write([]byte{1, 2}) }()

	// Let the write block on the pipe with no reader.
	time.Sleep(20 * time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- playback.Close() }()

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked behind a stalled Write")
	}

	select {
	case err := <-writeErr:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("stalled Write was not released by Close")
	}
}
