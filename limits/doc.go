// Package limits provides centralized datagram size constants and validation
// functions for the RTP voice transport. This package keeps the sender, the
// receiver and the configuration layer in agreement about how large a packet
// may get.
//
// # Size Hierarchy
//
//   - HeaderSize (12 bytes): The fixed RTP header this transport emits. No CSRC
//     list, no header extension.
//
//   - DefaultMTU (1500 bytes): The Ethernet path MTU assumed when nothing else is
//     configured. Payloads above DefaultMTU - IPv4UDPOverhead - HeaderSize will be
//     fragmented by IP.
//
//   - MaxDatagramSize (8192 bytes): The receive buffer size. Every packet this
//     transport emits with its default chunk size fits into it.
//
// # Validation Functions
//
//	err := limits.ValidatePayloadSize(payload, limits.DefaultMTU)
//	if errors.Is(err, limits.ErrExceedsMTU) {
//	    // the packet will still be sent, but IP will fragment it
//	}
//
//	err = limits.ValidateDatagram(payload)
//	if errors.Is(err, limits.ErrDatagramTooLarge) {
//	    // the remote receiver would truncate it
//	}
package limits
