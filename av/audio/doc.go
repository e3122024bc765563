// Package audio provides the capture and playback collaborators used by voice
// sessions.
//
// The session never talks to a sound card directly. It opens a Capture and a
// Playback from a Device and moves raw chunks between them and the network:
//
//	Capture:  Device → Capture.Read(chunk) → RTP payload
//	Playback: RTP payload → Playback.Write(chunk) → Device
//
// # Audio Format
//
// Format describes linear PCM. DefaultFormat is 8000 Hz, mono, 16-bit, with
// samples in little-endian byte order:
//
//	f := audio.DefaultFormat
//	f.ChunkBytes(1024) // 2048
//	f.Duration(1024)   // 128ms
//
// # Devices
//
// StreamDevice turns any io.Reader/io.Writer pair into a device. Combined
// with the generators it covers files, pipes and test signals:
//
//	dev := audio.NewStreamDevice(os.Stdin, os.Stdout)
//
//	tone, _ := audio.NewToneReader(440, 8000, 0.5)
//	dev = audio.NewStreamDevice(tone, io.Discard)
//
//	dev = audio.NewStreamDevice(audio.SilenceReader{}, io.Discard)
//
// # Gain
//
// GainCapture scales captured 16-bit samples with clipping protection:
//
//	capture, _ := dev.OpenCapture(audio.DefaultFormat)
//	louder, err := audio.NewGainCapture(capture, 2.0) // +6 dB
//
// # Thread Safety
//
// A Capture is read by one goroutine and a Playback written by one goroutine.
// Close may be called concurrently with either and is idempotent.
package audio
