package rtp

import (
	"github.com/opd-ai/rtpvoice/limits"
	"github.com/sirupsen/logrus"
)

// runReceiver decodes incoming datagrams and plays their payload in receipt
// order until the session stops or an I/O error occurs. Nothing is buffered,
// reordered or concealed.
func (s *Session) runReceiver() {
	defer s.wg.Done()

	buf := make([]byte, limits.MaxDatagramSize)
	var tracker sequenceTracker

	for s.running.Load() {
		n, from, err := s.transport.Receive(buf)
		if err != nil {
			s.fail(LoopReceiver, "receive", err)
			return
		}
		if !s.running.Load() {
			return
		}

		pkt, err := Unmarshal(buf[:n])
		if err != nil {
			s.stats.packetsDropped.Add(1)
			s.log.WithFields(logrus.Fields{
				"function": "Session.runReceiver",
				"from":     from.String(),
				"size":     n,
				"error":    err.Error(),
			}).Debug("Dropped malformed datagram")
			continue
		}

		if expected, gap := tracker.observe(pkt.SSRC, pkt.SequenceNumber); gap {
			s.stats.sequenceGaps.Add(1)
			s.log.WithFields(logrus.Fields{
				"function":          "Session.runReceiver",
				"ssrc":              pkt.SSRC,
				"expected_sequence": expected,
				"received_sequence": pkt.SequenceNumber,
			}).Debug("Sequence gap detected in RTP stream")
		}

		if err := s.playback.Write(pkt.Payload); err != nil {
			s.fail(LoopReceiver, "playback", err)
			return
		}

		s.stats.packetsReceived.Add(1)
		s.stats.bytesReceived.Add(uint64(n))

		s.log.WithFields(logrus.Fields{
			"function":     "Session.runReceiver",
			"ssrc":         pkt.SSRC,
			"sequence":     pkt.SequenceNumber,
			"payload_size": len(pkt.Payload),
		}).Debug("Played RTP packet")

		if s.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
			s.log.WithFields(logrus.Fields{
				"function": "Session.runReceiver",
				"from":     from.String(),
			}).Trace(pkt.RTPPacket().String())
		}
	}
}

// sequenceTracker remembers the last sequence number seen for the current
// source. It only observes; packets are never held back.
type sequenceTracker struct {
	ssrc    uint32
	lastSeq uint16
	seen    bool
}

// observe records seq and reports whether it did not directly follow the
// previous packet of the same source. A new SSRC restarts tracking.
func (t *sequenceTracker) observe(ssrc uint32, seq uint16) (expected uint16, gap bool) {
	if t.seen && t.ssrc == ssrc {
		expected = t.lastSeq + 1
		gap = seq != expected
	}
	t.ssrc = ssrc
	t.lastSeq = seq
	t.seen = true
	return expected, gap
}
