package rtp

import "sync/atomic"

// Statistics is a snapshot of session counters.
type Statistics struct {
	PacketsSent      uint64
	BytesSent        uint64
	PacketsReceived  uint64
	BytesReceived    uint64
	PacketsDropped   uint64 // datagrams too short to decode
	SequenceGaps     uint64 // received packets whose sequence number did not follow the previous one
	SequenceRollover uint64 // times the outgoing sequence number wrapped to 0
}

// counters are written by one loop each and read by anyone.
type counters struct {
	packetsSent      atomic.Uint64
	bytesSent        atomic.Uint64
	packetsReceived  atomic.Uint64
	bytesReceived    atomic.Uint64
	packetsDropped   atomic.Uint64
	sequenceGaps     atomic.Uint64
	sequenceRollover atomic.Uint64
}

func (c *counters) snapshot() Statistics {
	return Statistics{
		PacketsSent:      c.packetsSent.Load(),
		BytesSent:        c.bytesSent.Load(),
		PacketsReceived:  c.packetsReceived.Load(),
		BytesReceived:    c.bytesReceived.Load(),
		PacketsDropped:   c.packetsDropped.Load(),
		SequenceGaps:     c.sequenceGaps.Load(),
		SequenceRollover: c.sequenceRollover.Load(),
	}
}
