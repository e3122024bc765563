package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/rtpvoice/av/audio"
	"github.com/sethvargo/go-envconfig"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLookuper_Defaults(t *testing.T) {
	cfg, err := FromLookuper(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, 5004, cfg.LocalPort)
	assert.Equal(t, "127.0.0.1", cfg.RemoteHost)
	assert.Equal(t, 5005, cfg.RemotePort)
	assert.Equal(t, 1024, cfg.ChunkSize)
	assert.Equal(t, uint32(8000), cfg.SampleRate)
	assert.Equal(t, 1500, cfg.MTU)
	assert.Equal(t, 0xb8, cfg.TOS)
	assert.Equal(t, SourceSilence, cfg.Input)
	assert.Equal(t, SinkDiscard, cfg.Output)
	assert.Equal(t, 1.0, cfg.Gain)
	assert.Equal(t, logrus.InfoLevel, cfg.Level())

	assert.Equal(t, audio.DefaultFormat, cfg.Format())
	assert.Equal(t, ":5004", cfg.LocalAddr())
}

func TestFromLookuper_Overrides(t *testing.T) {
	cfg, err := FromLookuper(context.Background(), envconfig.MapLookuper(map[string]string{
		"RTPVOICE_LOCAL_PORT":  "6000",
		"RTPVOICE_REMOTE_HOST": "192.0.2.7",
		"RTPVOICE_REMOTE_PORT": "6002",
		"RTPVOICE_CHUNK_SIZE":  "160",
		"RTPVOICE_INPUT":       "tone",
		"RTPVOICE_OUTPUT":      "-",
		"RTPVOICE_LOG_LEVEL":   "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.LocalPort)
	assert.Equal(t, "192.0.2.7", cfg.RemoteHost)
	assert.Equal(t, 6002, cfg.RemotePort)
	assert.Equal(t, 160, cfg.ChunkSize)
	assert.Equal(t, SourceTone, cfg.Input)
	assert.Equal(t, StdStream, cfg.Output)
	assert.Equal(t, logrus.DebugLevel, cfg.Level())
}

func TestFromLookuper_ParseError(t *testing.T) {
	_, err := FromLookuper(context.Background(), envconfig.MapLookuper(map[string]string{
		"RTPVOICE_LOCAL_PORT": "not-a-port",
	}))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			LocalPort:  5004,
			RemoteHost: "127.0.0.1",
			RemotePort: 5005,
			ChunkSize:  1024,
			SampleRate: 8000,
			MTU:        1500,
			TOS:        0xb8,
			Input:      SourceSilence,
			Output:     SinkDiscard,
			Gain:       1.0,
			LogLevel:   "info",
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{"valid", func(*Config) {}, ""},
		{"ephemeral local port", func(c *Config) { c.LocalPort = 0 }, ""},
		{"local port too large", func(c *Config) { c.LocalPort = 70000 }, "local port"},
		{"remote port zero", func(c *Config) { c.RemotePort = 0 }, "remote port"},
		{"empty host", func(c *Config) { c.RemoteHost = " " }, "remote host"},
		{"zero chunk", func(c *Config) { c.ChunkSize = 0 }, "chunk size"},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, "sample rate"},
		{"chunk exceeds datagram", func(c *Config) { c.ChunkSize = 4091 }, "datagram"},
		{"largest chunk", func(c *Config) { c.ChunkSize = 4090 }, ""},
		{"tiny mtu", func(c *Config) { c.MTU = 39 }, "mtu"},
		{"tos too large", func(c *Config) { c.TOS = 256 }, "tos"},
		{"empty input", func(c *Config) { c.Input = "" }, "input"},
		{"empty output", func(c *Config) { c.Output = "" }, "output"},
		{"negative gain", func(c *Config) { c.Gain = -1 }, "gain"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalid)
			assert.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voice.env")
	require.NoError(t, os.WriteFile(path, []byte("RTPVOICE_REMOTE_PORT=7005\n"), 0o600))
	t.Setenv("RTPVOICE_REMOTE_PORT", "")
	os.Unsetenv("RTPVOICE_REMOTE_PORT")

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 7005, cfg.RemotePort)
}

func TestLoad_MissingNamedFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 5004, cfg.LocalPort)
}
