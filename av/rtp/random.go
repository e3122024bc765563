package rtp

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// RandomSource supplies the random values drawn at session start: first the
// initial sequence number, then the SSRC.
//
// Usage for deterministic testing:
//
//	type fixedSource struct{ values []uint32 }
//	func (f *fixedSource) Uint32() (uint32, error) {
//	    v := f.values[0]
//	    f.values = f.values[1:]
//	    return v, nil
//	}
type RandomSource interface {
	Uint32() (uint32, error)
}

// CryptoRandomSource draws values from crypto/rand. This is the production
// implementation used when Config.Random is nil.
type CryptoRandomSource struct{}

// Uint32 returns a uniformly distributed 32-bit value.
func (CryptoRandomSource) Uint32() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// drawSessionIdentity draws the initial sequence number and the SSRC as two
// independent values.
func drawSessionIdentity(src RandomSource) (seq uint16, ssrc uint32, err error) {
	v, err := src.Uint32()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to generate sequence number: %w", err)
	}
	seq = uint16(v)

	ssrc, err = src.Uint32()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to generate SSRC: %w", err)
	}
	return seq, ssrc, nil
}
