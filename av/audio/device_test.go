package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat_Validate(t *testing.T) {
	tests := []struct {
		name      string
		format    Format
		expectErr bool
	}{
		{name: "default", format: DefaultFormat},
		{name: "zero_rate", format: Format{SampleRate: 0, Channels: 1, SampleWidth: 2}, expectErr: true},
		{name: "zero_channels", format: Format{SampleRate: 8000, Channels: 0, SampleWidth: 2}, expectErr: true},
		{name: "zero_width", format: Format{SampleRate: 8000, Channels: 1, SampleWidth: 0}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormat_Sizes(t *testing.T) {
	f := DefaultFormat

	assert.Equal(t, 2, f.FrameSize())
	assert.Equal(t, 2048, f.ChunkBytes(1024))
	assert.Equal(t, 1024, f.Samples(2048))
	assert.Equal(t, 1024, f.Samples(2049))
	assert.Equal(t, 128*time.Millisecond, f.Duration(1024))
	assert.Equal(t, 20*time.Millisecond, f.Duration(160))

	stereo := Format{SampleRate: 48000, Channels: 2, SampleWidth: 2}
	assert.Equal(t, 4, stereo.FrameSize())
	assert.Equal(t, 3840, stereo.ChunkBytes(960))
	assert.Equal(t, 20*time.Millisecond, stereo.Duration(960))

	assert.Zero(t, Format{}.Samples(10))
	assert.Zero(t, Format{}.Duration(10))
}

func TestPCM16RoundTrip(t *testing.T) {
	pcm := []int16{0, 1, -1, 32767, -32768, 1000}
	data := EncodePCM16(pcm)

	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x00, 0xff, 0xff, 0xff, 0x7f, 0x00, 0x80, 0xe8, 0x03}, data)

	decoded, err := DecodePCM16(data)
	assert.NoError(t, err)
	assert.Equal(t, pcm, decoded)

	_, err = DecodePCM16([]byte{0x01})
	assert.Error(t, err)
}
