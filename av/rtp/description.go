package rtp

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"

	"github.com/pion/sdp/v3"
)

// Description renders an SDP offer for the session: one sendrecv audio stream
// on the local port carrying payload type 0.
//
// The connection address is the bound IP; a wildcard bind advertises
// 127.0.0.1, so callers reachable from elsewhere should use DescriptionFor.
func (s *Session) Description() ([]byte, error) {
	host := "127.0.0.1"
	if udpAddr, ok := s.LocalAddr().(*net.UDPAddr); ok && udpAddr.IP != nil && !udpAddr.IP.IsUnspecified() {
		host = udpAddr.IP.String()
	}
	return s.DescriptionFor(host)
}

// DescriptionFor renders the SDP offer advertising host as the connection
// address.
func (s *Session) DescriptionFor(host string) ([]byte, error) {
	_, portStr, err := net.SplitHostPort(s.LocalAddr().String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse local address: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse local port: %w", err)
	}

	addressType := "IP4"
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		addressType = "IP6"
	}

	payloadType := strconv.Itoa(PayloadTypePCMU)
	ptime := s.cfg.Format.Duration(s.cfg.ChunkSize).Milliseconds()

	desc := &sdp.SessionDescription{
		Version: 0,
		Origin: sdp.Origin{
			Username:       "-",
			SessionID:      binary.BigEndian.Uint64(s.id[:8]) >> 1,
			SessionVersion: uint64(s.created.Unix()),
			NetworkType:    "IN",
			AddressType:    addressType,
			UnicastAddress: host,
		},
		SessionName: "rtpvoice",
		ConnectionInformation: &sdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: addressType,
			Address:     &sdp.Address{Address: host},
		},
		TimeDescriptions: []sdp.TimeDescription{
			{Timing: sdp.Timing{StartTime: 0, StopTime: 0}},
		},
		MediaDescriptions: []*sdp.MediaDescription{
			{
				MediaName: sdp.MediaName{
					Media:   "audio",
					Port:    sdp.RangedPort{Value: port},
					Protos:  []string{"RTP", "AVP"},
					Formats: []string{payloadType},
				},
				Attributes: []sdp.Attribute{
					{Key: "rtpmap", Value: fmt.Sprintf("%s PCMU/%d", payloadType, s.cfg.Format.SampleRate)},
					{Key: "ptime", Value: strconv.FormatInt(ptime, 10)},
					{Key: "ssrc", Value: fmt.Sprintf("%d cname:%s", s.ssrc, s.id.String())},
					{Key: "sendrecv"},
				},
			},
		},
	}

	return desc.Marshal()
}
