package limits

import (
	"errors"
	"fmt"
)

const (
	// HeaderSize is the size of the fixed RTP header (three 32-bit words).
	HeaderSize = 12

	// MaxDatagramSize is the receive buffer size used for a single datagram.
	// A full 1024-sample chunk of 16-bit mono audio (2048 bytes) plus the header
	// fits with room to spare.
	MaxDatagramSize = 8192

	// DefaultMTU is the path MTU assumed for fragmentation warnings.
	DefaultMTU = 1500

	// IPv4UDPOverhead is the size of the IPv4 (20) and UDP (8) headers.
	IPv4UDPOverhead = 28
)

var (
	// ErrPayloadEmpty indicates an empty payload was provided
	ErrPayloadEmpty = errors.New("empty payload")

	// ErrExceedsMTU indicates the packet will be fragmented on the path
	ErrExceedsMTU = errors.New("packet exceeds path MTU")

	// ErrDatagramTooLarge indicates the packet does not fit a receive buffer
	ErrDatagramTooLarge = errors.New("datagram too large")
)

// MaxPayloadForMTU returns the largest RTP payload that fits in one unfragmented
// IPv4 datagram on a path with the given MTU. Returns 0 if the MTU cannot even
// carry the headers.
func MaxPayloadForMTU(mtu int) int {
	n := mtu - IPv4UDPOverhead - HeaderSize
	if n < 0 {
		return 0
	}
	return n
}

// ValidatePayloadSize checks that header plus payload fits into one datagram on
// a path with the given MTU.
func ValidatePayloadSize(payload []byte, mtu int) error {
	if len(payload) == 0 {
		return ErrPayloadEmpty
	}
	if max := MaxPayloadForMTU(mtu); len(payload) > max {
		return fmt.Errorf("%w: payload %d exceeds %d for mtu %d", ErrExceedsMTU, len(payload), max, mtu)
	}
	return nil
}

// ValidateDatagram checks that header plus payload fits MaxDatagramSize.
func ValidateDatagram(payload []byte) error {
	if len(payload) == 0 {
		return ErrPayloadEmpty
	}
	if HeaderSize+len(payload) > MaxDatagramSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrDatagramTooLarge, HeaderSize+len(payload), MaxDatagramSize)
	}
	return nil
}
