// Package testing provides an in-memory datagram network for deterministic
// testing of voice sessions.
//
// # Overview
//
// SimulatedNetwork mirrors UDP on a single host but runs entirely in memory.
// Sessions and transports accept a ListenPacket function with the signature
// of net.ListenPacket; passing SimulatedNetwork.ListenPacket instead routes all
// traffic through the simulation, so tests are fast and need no free ports.
//
// # Usage
//
//	network := testing.NewSimulatedNetwork()
//	a, _ := network.ListenPacket("udp", "127.0.0.1:5004")
//	b, _ := network.ListenPacket("udp", "127.0.0.1:5005")
//
//	a.WriteTo([]byte("hello"), b.LocalAddr())
//	n, from, _ := b.ReadFrom(buf)
//
// # Fault Injection
//
// Inject places arbitrary bytes (for example a truncated RTP header) into a
// socket's receive queue. SimulatedConn.FailWrites makes a socket's sends fail,
// which lets tests drive a sender loop into its fatal error path.
//
// # Verification
//
// Every delivery attempt is recorded and available through GetDeliveryLog,
// including datagrams sent to unbound ports, which are dropped silently on the
// sending side like real UDP.
//
// Import with an alias to avoid clashing with the standard library:
//
//	import simnet "github.com/opd-ai/rtpvoice/testing"
package testing
