package rtp

import (
	"encoding/binary"
	"fmt"

	"github.com/opd-ai/rtpvoice/limits"
	"github.com/pion/rtp"
)

const (
	// Version is the RTP version emitted by this transport.
	Version = 2

	// PayloadTypePCMU is the static payload type for G.711 mu-law.
	PayloadTypePCMU = 0

	// HeaderSize is the size of the fixed header on the wire.
	HeaderSize = limits.HeaderSize
)

// Header holds the fixed RTP header fields.
//
// Flag fields are kept as raw bit values so that whatever a peer put on the
// wire survives a decode/encode cycle. Values are masked to their bit width
// on encode.
type Header struct {
	Version        uint8 // 2 bits
	Padding        uint8 // 1 bit
	Extension      uint8 // 1 bit
	CSRCCount      uint8 // 4 bits
	Marker         uint8 // 1 bit
	PayloadType    uint8 // 7 bits
	SequenceNumber uint16
	Timestamp      uint32
	SSRC           uint32
}

// Packet is a fixed RTP header followed by an opaque payload.
type Packet struct {
	Header
	Payload []byte
}

// Marshal encodes the header and payload into a new buffer of
// HeaderSize+len(payload) bytes. No length limit is enforced; callers keep the
// payload within the path MTU.
func Marshal(h Header, payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))

	word0 := uint32(h.Version&0x3)<<30 |
		uint32(h.Padding&0x1)<<29 |
		uint32(h.Extension&0x1)<<28 |
		uint32(h.CSRCCount&0xF)<<24 |
		uint32(h.Marker&0x1)<<23 |
		uint32(h.PayloadType&0x7F)<<16 |
		uint32(h.SequenceNumber)

	binary.BigEndian.PutUint32(buf[0:4], word0)
	binary.BigEndian.PutUint32(buf[4:8], h.Timestamp)
	binary.BigEndian.PutUint32(buf[8:12], h.SSRC)
	copy(buf[HeaderSize:], payload)

	return buf
}

// Marshal encodes the packet. See Marshal.
func (p *Packet) Marshal() []byte {
	return Marshal(p.Header, p.Payload)
}

// Unmarshal decodes a datagram into a Packet.
//
// The only rejection is a buffer shorter than HeaderSize, reported as
// ErrTooShort. Version and payload type are not validated, and the CSRC count,
// padding and extension bits are returned as-is without interpreting the
// payload. The payload is copied out of b.
func Unmarshal(b []byte) (*Packet, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrTooShort, len(b), HeaderSize)
	}

	word0 := binary.BigEndian.Uint32(b[0:4])

	p := &Packet{
		Header: Header{
			Version:        uint8(word0>>30) & 0x3,
			Padding:        uint8(word0>>29) & 0x1,
			Extension:      uint8(word0>>28) & 0x1,
			CSRCCount:      uint8(word0>>24) & 0xF,
			Marker:         uint8(word0>>23) & 0x1,
			PayloadType:    uint8(word0>>16) & 0x7F,
			SequenceNumber: uint16(word0),
			Timestamp:      binary.BigEndian.Uint32(b[4:8]),
			SSRC:           binary.BigEndian.Uint32(b[8:12]),
		},
		Payload: make([]byte, len(b)-HeaderSize),
	}
	copy(p.Payload, b[HeaderSize:])

	return p, nil
}

// RTPPacket converts the packet to a pion/rtp packet. The payload is shared.
func (p *Packet) RTPPacket() *rtp.Packet {
	return &rtp.Packet{Header: p.RTPHeader(), Payload: p.Payload}
}

// RTPHeader converts the header to a pion/rtp header. The CSRC list is not
// carried by this transport, so only headers with CSRCCount 0 round-trip
// through pion.
func (h Header) RTPHeader() rtp.Header {
	return rtp.Header{
		Version:        h.Version & 0x3,
		Padding:        h.Padding&0x1 == 1,
		Extension:      h.Extension&0x1 == 1,
		Marker:         h.Marker&0x1 == 1,
		PayloadType:    h.PayloadType & 0x7F,
		SequenceNumber: h.SequenceNumber,
		Timestamp:      h.Timestamp,
		SSRC:           h.SSRC,
	}
}
