// Package rtp implements a duplex RTP voice stream between two UDP endpoints.
//
// It uses the pion/rtp library for sequence numbering and header interop and
// pion/sdp for session descriptions.
//
// # Packet Format
//
// Every packet is the 12-byte fixed RTP header followed by the payload:
//
//	word0: V(2) P(1) X(1) CC(4) M(1) PT(7) sequence(16)
//	word1: timestamp
//	word2: SSRC
//
// All words are big-endian. Marshal masks each field to its width. Unmarshal
// rejects only datagrams shorter than the header (ErrTooShort); version,
// payload type, padding, extension and CSRC count are returned as received and
// never interpreted.
//
// # Sessions
//
//	session, err := rtp.Start(rtp.Config{
//	    LocalAddr:  ":5004",
//	    RemoteAddr: remote,
//	    Device:     audio.NewStreamDevice(os.Stdin, os.Stdout),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Stop()
//
// A session runs two goroutines. The Sender reads ChunkSize samples from the
// capture stream, frames them with payload type 0, sends them to RemoteAddr
// and sleeps out the rest of the chunk duration. The sequence number starts at
// a random value and wraps at 65535; the timestamp starts at 0 and advances by
// the number of samples sent; the SSRC is random and fixed for the session.
//
// The Receiver decodes every datagram arriving on the local socket, from any
// source, and writes the payload to the playback stream in arrival order.
// Datagrams that are too short are counted and dropped. There is no jitter
// buffer, reordering or loss concealment; sequence gaps are only counted.
//
// Payload type 0 nominally means G.711 mu-law, but the payload is raw 16-bit
// little-endian linear PCM. Peers expecting real PCMU will hear noise.
//
// # Errors
//
// Start fails with ErrInvalidConfig, ErrBind or ErrAudioInit. Once running, a
// capture, send, receive or playback failure terminates only the loop that hit
// it; the failure is logged, returned by Err and passed to Config.OnError as a
// *LoopError matching ErrIO. The other loop continues until Stop.
//
// # Deterministic Testing
//
// Config.Random fixes the initial sequence number and SSRC (drawn in that
// order) and Config.ListenPacket can route the socket through an in-memory
// network.
package rtp
