// Package transport provides the datagram transport used by voice sessions.
//
// # Architecture
//
// A session owns exactly one bound socket and talks to exactly one remote
// endpoint. The Transport interface is the narrow surface the session needs:
//
//	type Transport interface {
//	    Send(data []byte, addr net.Addr) error
//	    Receive(buf []byte) (int, net.Addr, error)
//	    Close() error
//	    LocalAddr() net.Addr
//	}
//
// It follows Go's interface-based design with net.Addr and net.PacketConn used
// throughout (no concrete *net.UDPAddr in signatures).
//
// # UDP Transport
//
//	t, err := transport.NewUDPTransport(":5004", transport.Options{TOS: transport.DefaultTOS})
//	remote, err := transport.ResolveUDPAddr("127.0.0.1", 5005)
//	err = t.Send(packet, remote)
//
// The socket is created through Options.ListenPacket, which defaults to
// net.ListenPacket. Tests substitute an in-memory network with the same
// signature.
//
// # Quality of Service
//
// When Options.TOS is non-zero the IPv4 type-of-service byte is set with
// golang.org/x/net/ipv4. DefaultTOS (0xb8) is DSCP Expedited Forwarding, the
// class routers expect for interactive voice. Failing to set it is logged and
// otherwise ignored.
//
// # Closing
//
// Close unblocks a pending Receive, which then returns an error that IsClosed
// recognises. Close is idempotent.
package transport
