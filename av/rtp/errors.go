package rtp

import (
	"errors"
	"fmt"
)

// Sentinel errors for rtp package operations.
// These errors enable reliable error classification using errors.Is().

// Codec errors.
var (
	// ErrTooShort indicates a datagram shorter than the fixed header.
	// The receiver drops such datagrams and keeps going.
	ErrTooShort = errors.New("rtp packet too short")
)

// Session startup errors. A session that fails with one of these never starts.
var (
	// ErrBind indicates the local endpoint could not be bound.
	ErrBind = errors.New("failed to bind local endpoint")

	// ErrAudioInit indicates the capture or playback device could not be opened.
	ErrAudioInit = errors.New("failed to open audio device")

	// ErrInvalidConfig indicates a session configuration that cannot run.
	ErrInvalidConfig = errors.New("invalid session configuration")
)

// Loop errors.
var (
	// ErrIO indicates a capture, playback, send or receive failure. It is fatal
	// to the loop that hit it only.
	ErrIO = errors.New("session i/o failure")
)

// Loop names used in LoopError and log fields.
const (
	LoopSender   = "sender"
	LoopReceiver = "receiver"
)

// LoopError reports the failure that terminated one of the session loops.
type LoopError struct {
	Loop string
	Op   string
	Err  error
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("%s loop: %s: %v", e.Loop, e.Op, e.Err)
}

// Unwrap exposes both ErrIO and the underlying cause to errors.Is.
func (e *LoopError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}
