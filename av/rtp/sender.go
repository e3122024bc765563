package rtp

import (
	"errors"
	"time"

	"github.com/opd-ai/rtpvoice/limits"
	"github.com/sirupsen/logrus"
)

// runSender captures, frames and sends chunks until the session stops or an
// I/O error occurs.
func (s *Session) runSender() {
	defer s.wg.Done()

	next := time.Now()
	for s.running.Load() {
		chunk, err := s.capture.Read(s.cfg.ChunkSize)
		if err != nil {
			s.fail(LoopSender, "capture", err)
			return
		}
		if !s.running.Load() {
			return
		}

		if err := s.sendChunk(chunk); err != nil {
			s.fail(LoopSender, "send", err)
			return
		}

		next = next.Add(s.cfg.PacketInterval)
		if !s.pace(&next) {
			return
		}
	}
}

// sendChunk frames one chunk and advances the sequence number and timestamp.
func (s *Session) sendChunk(chunk []byte) error {
	seq := s.sequencer.NextSequenceNumber()

	pkt := Packet{
		Header: Header{
			Version:        Version,
			PayloadType:    PayloadTypePCMU,
			SequenceNumber: seq,
			Timestamp:      s.timestamp,
			SSRC:           s.ssrc,
		},
		Payload: chunk,
	}

	sent := s.stats.packetsSent.Load()
	if sent == 0 {
		s.checkPayloadSize(chunk)
	}

	data := pkt.Marshal()
	if err := s.transport.Send(data, s.cfg.RemoteAddr); err != nil {
		return err
	}

	if seq == 0 && sent > 0 {
		s.stats.sequenceRollover.Add(1)
	}
	s.timestamp += uint32(s.cfg.Format.Samples(len(chunk)))
	s.stats.packetsSent.Add(1)
	s.stats.bytesSent.Add(uint64(len(data)))

	s.log.WithFields(logrus.Fields{
		"function":  "Session.sendChunk",
		"sequence":  seq,
		"timestamp": pkt.Timestamp,
		"size":      len(data),
	}).Debug("Sent RTP packet")

	return nil
}

// checkPayloadSize warns when packets will not fit the path MTU or a peer's
// receive buffer. They are sent anyway.
func (s *Session) checkPayloadSize(chunk []byte) {
	if err := limits.ValidateDatagram(chunk); errors.Is(err, limits.ErrDatagramTooLarge) {
		s.log.WithFields(logrus.Fields{
			"function":     "Session.checkPayloadSize",
			"payload_size": len(chunk),
			"limit":        limits.MaxDatagramSize,
		}).Warn("RTP packets exceed the receive buffer size and will be truncated by peers")
		return
	}

	err := limits.ValidatePayloadSize(chunk, s.cfg.MTU)
	if errors.Is(err, limits.ErrExceedsMTU) {
		s.log.WithFields(logrus.Fields{
			"function":     "Session.checkPayloadSize",
			"payload_size": len(chunk),
			"mtu":          s.cfg.MTU,
			"max_payload":  limits.MaxPayloadForMTU(s.cfg.MTU),
		}).Warn("RTP packets exceed path MTU and will be fragmented")
	}
}

// pace sleeps until next. When the sender has fallen more than one interval
// behind, the schedule restarts from now instead of bursting to catch up.
// Returns false if the session was stopped while sleeping.
func (s *Session) pace(next *time.Time) bool {
	wait := time.Until(*next)
	if wait <= 0 {
		if -wait > s.cfg.PacketInterval {
			*next = time.Now()
		}
		return s.running.Load()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}
