// rtpvoice runs one end of a two-way RTP voice call over UDP.
//
// # Overview
//
// The command binds a local UDP port, captures 16-bit mono PCM from the
// selected input, sends it to a single peer as RTP with payload type 0 and
// writes every payload it receives to the selected output.
//
// # Usage
//
// Two endpoints on one host:
//
//	rtpvoice -local-port 5004 -remote-port 5005 -input tone
//	rtpvoice -local-port 5005 -remote-port 5004 -output received.pcm
//
// Piping raw PCM in and out:
//
//	arecord -f S16_LE -r 8000 -c 1 -t raw | rtpvoice -input - -output - | aplay -f S16_LE -r 8000 -c 1
//
// # Configuration Options
//
// Network configuration:
//   - -local-port: Local UDP port (default: 5004)
//   - -remote-host: Peer host (default: 127.0.0.1)
//   - -remote-port: Peer port (default: 5005)
//   - -mtu: Path MTU for the fragmentation warning (default: 1500)
//   - -tos: IP TOS byte, 0 disables marking (default: 184, Expedited Forwarding)
//
// Audio configuration:
//   - -chunk-size: Samples per packet (default: 1024)
//   - -sample-rate: Sample rate in Hz (default: 8000)
//   - -input: silence, tone, - for stdin, or a raw PCM file (default: silence)
//   - -output: discard, - for stdout, or a file (default: discard)
//   - -tone-frequency: Tone source frequency in Hz (default: 440)
//   - -tone-level: Tone source amplitude, 0 to 1 (default: 0.5)
//   - -gain: Linear gain on captured audio (default: 1.0)
//
// Other options:
//   - -log-level: debug, info, warn or error (default: info)
//   - -env-file: Environment file to load (default: .env if present)
//   - -print-sdp: Print an SDP offer for the local endpoint
//   - -duration: Stop after this long (default: run until interrupted)
//
// Every network and audio option can also be set through an RTPVOICE_*
// environment variable; see package config. Flags win.
//
// # Shutdown
//
// Type q and Enter (unless the input is stdin), send SIGINT or SIGTERM, or let
// -duration elapse. The command prints packet counters on exit and returns 1
// if either streaming loop failed.
package main
