package transport

import (
	"net"
)

// Transport defines the datagram endpoint a voice session sends and receives on.
// Send and Receive are each used from exactly one goroutine, so implementations
// only need to tolerate one concurrent sender and one concurrent receiver.
type Transport interface {
	// Send sends one datagram to the specified address.
	Send(data []byte, addr net.Addr) error

	// Receive blocks until one datagram arrives and copies it into buf.
	Receive(buf []byte) (int, net.Addr, error)

	// Close shuts down the transport. Blocked Receive calls return an error
	// wrapping net.ErrClosed.
	Close() error

	// LocalAddr returns the local address the transport is bound to.
	LocalAddr() net.Addr
}

// ListenPacketFunc has the signature of net.ListenPacket. Tests inject an
// in-memory network through it.
type ListenPacketFunc func(network, address string) (net.PacketConn, error)
