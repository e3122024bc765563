package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/opd-ai/rtpvoice/av/audio"
	"github.com/opd-ai/rtpvoice/limits"
	"github.com/opd-ai/rtpvoice/transport"
	"github.com/sethvargo/go-envconfig"
	"github.com/sirupsen/logrus"
)

// ErrInvalid is returned by Validate for a configuration that cannot run.
var ErrInvalid = errors.New("invalid configuration")

// Input and output selectors understood by the CLI. Anything else is a file
// path; "-" is stdin or stdout.
const (
	SourceSilence = "silence"
	SourceTone    = "tone"
	SinkDiscard   = "discard"
	StdStream     = "-"
)

// Config holds the voice endpoint settings.
type Config struct {
	LocalPort  int    `env:"RTPVOICE_LOCAL_PORT, default=5004"`
	RemoteHost string `env:"RTPVOICE_REMOTE_HOST, default=127.0.0.1"`
	RemotePort int    `env:"RTPVOICE_REMOTE_PORT, default=5005"`

	ChunkSize  int    `env:"RTPVOICE_CHUNK_SIZE, default=1024"`
	SampleRate uint32 `env:"RTPVOICE_SAMPLE_RATE, default=8000"`
	MTU        int    `env:"RTPVOICE_MTU, default=1500"`
	TOS        int    `env:"RTPVOICE_TOS, default=184"`

	Input         string  `env:"RTPVOICE_INPUT, default=silence"`
	Output        string  `env:"RTPVOICE_OUTPUT, default=discard"`
	ToneFrequency float64 `env:"RTPVOICE_TONE_FREQUENCY, default=440"`
	ToneLevel     float64 `env:"RTPVOICE_TONE_LEVEL, default=0.5"`
	Gain          float64 `env:"RTPVOICE_GAIN, default=1.0"`

	LogLevel string `env:"RTPVOICE_LOG_LEVEL, default=info"`
}

// Load reads an optional .env file and then the process environment.
// envFile names the dotenv file; an empty name means ".env" in the working
// directory, which may be missing. A named file must exist.
func Load(ctx context.Context, envFile string) (*Config, error) {
	optional := envFile == ""
	if optional {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else {
		logrus.WithFields(logrus.Fields{
			"function": "Load",
			"file":     envFile,
		}).Debug("Loaded environment file")
	}

	return FromLookuper(ctx, envconfig.OsLookuper())
}

// FromLookuper builds a Config from an arbitrary variable source. The result
// is not validated: callers apply their overrides and then call Validate.
func FromLookuper(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges and cross-field constraints.
func (c *Config) Validate() error {
	if c.LocalPort < 0 || c.LocalPort > 65535 {
		return fmt.Errorf("%w: local port out of range: %d", ErrInvalid, c.LocalPort)
	}
	if c.RemotePort < 1 || c.RemotePort > 65535 {
		return fmt.Errorf("%w: remote port out of range: %d", ErrInvalid, c.RemotePort)
	}
	if strings.TrimSpace(c.RemoteHost) == "" {
		return fmt.Errorf("%w: remote host cannot be empty", ErrInvalid)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive: %d", ErrInvalid, c.ChunkSize)
	}
	if c.SampleRate == 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalid)
	}
	if payload := c.Format().ChunkBytes(c.ChunkSize); limits.HeaderSize+payload > limits.MaxDatagramSize {
		return fmt.Errorf("%w: %d-sample chunks do not fit a %d-byte datagram",
			ErrInvalid, c.ChunkSize, limits.MaxDatagramSize)
	}
	if c.MTU < limits.IPv4UDPOverhead+limits.HeaderSize {
		return fmt.Errorf("%w: mtu too small: %d", ErrInvalid, c.MTU)
	}
	if c.TOS < 0 || c.TOS > 255 {
		return fmt.Errorf("%w: tos must fit in one byte: %d", ErrInvalid, c.TOS)
	}
	if c.Input == "" {
		return fmt.Errorf("%w: input cannot be empty", ErrInvalid)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output cannot be empty", ErrInvalid)
	}
	if c.Gain < 0 || c.Gain > audio.MaxGain {
		return fmt.Errorf("%w: gain must be between 0 and %.1f: %g", ErrInvalid, audio.MaxGain, c.Gain)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Format returns the audio format: mono 16-bit at SampleRate.
func (c *Config) Format() audio.Format {
	return audio.Format{
		SampleRate:  c.SampleRate,
		Channels:    audio.DefaultFormat.Channels,
		SampleWidth: audio.DefaultFormat.SampleWidth,
	}
}

// LocalAddr returns the bind address for LocalPort on all interfaces.
func (c *Config) LocalAddr() string {
	return transport.ListenAddr(c.LocalPort)
}

// Level returns the parsed log level. Call after Validate.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
