package rtp

import (
	"testing"

	simnet "github.com/opd-ai/rtpvoice/testing"
	"github.com/pion/sdp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Description(t *testing.T) {
	network := simnet.NewSimulatedNetwork()
	s := startSession(t, testConfig(network, unboundAddr(), &recordingWriter{}))

	raw, err := s.Description()
	require.NoError(t, err)

	var desc sdp.SessionDescription
	require.NoError(t, desc.Unmarshal(raw))

	assert.Equal(t, "IN", desc.Origin.NetworkType)
	assert.Equal(t, "127.0.0.1", desc.Origin.UnicastAddress)
	require.NotNil(t, desc.ConnectionInformation)
	assert.Equal(t, "127.0.0.1", desc.ConnectionInformation.Address.Address)

	require.Len(t, desc.MediaDescriptions, 1)
	media := desc.MediaDescriptions[0]
	assert.Equal(t, "audio", media.MediaName.Media)
	assert.Equal(t, 40000, media.MediaName.Port.Value)
	assert.Equal(t, []string{"RTP", "AVP"}, media.MediaName.Protos)
	assert.Equal(t, []string{"0"}, media.MediaName.Formats)

	rtpmap, ok := media.Attribute("rtpmap")
	require.True(t, ok)
	assert.Equal(t, "0 PCMU/8000", rtpmap)

	ptime, ok := media.Attribute("ptime")
	require.True(t, ok)
	assert.Equal(t, "10", ptime)

	_, ok = media.Attribute("sendrecv")
	assert.True(t, ok)
}

func TestSession_DescriptionFor(t *testing.T) {
	network := simnet.NewSimulatedNetwork()
	s := startSession(t, testConfig(network, unboundAddr(), &recordingWriter{}))

	tests := []struct {
		host        string
		addressType string
	}{
		{"192.0.2.10", "IP4"},
		{"2001:db8::1", "IP6"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			raw, err := s.DescriptionFor(tt.host)
			require.NoError(t, err)

			var desc sdp.SessionDescription
			require.NoError(t, desc.Unmarshal(raw))
			assert.Equal(t, tt.addressType, desc.ConnectionInformation.AddressType)
			assert.Equal(t, tt.host, desc.ConnectionInformation.Address.Address)
		})
	}
}
