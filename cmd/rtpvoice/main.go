package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/opd-ai/rtpvoice/av/audio"
	"github.com/opd-ai/rtpvoice/av/rtp"
	"github.com/opd-ai/rtpvoice/config"
	"github.com/opd-ai/rtpvoice/transport"
	"github.com/sirupsen/logrus"
)

// CLI configuration
type CLIConfig struct {
	localPort     int
	remoteHost    string
	remotePort    int
	chunkSize     int
	sampleRate    uint
	mtu           int
	tos           int
	input         string
	output        string
	toneFrequency float64
	toneLevel     float64
	gain          float64
	logLevel      string

	envFile  string
	printSDP bool
	duration time.Duration
	help     bool
}

// parseCLIFlags parses args into a CLIConfig. The returned FlagSet records
// which flags were given explicitly.
func parseCLIFlags(args []string, output io.Writer) (*CLIConfig, *flag.FlagSet, error) {
	cli := &CLIConfig{}
	fs := flag.NewFlagSet("rtpvoice", flag.ContinueOnError)
	fs.SetOutput(output)

	// Network configuration
	fs.IntVar(&cli.localPort, "local-port", 5004, "Local UDP port to bind (0 picks a free port)")
	fs.StringVar(&cli.remoteHost, "remote-host", "127.0.0.1", "Peer host")
	fs.IntVar(&cli.remotePort, "remote-port", 5005, "Peer UDP port")
	fs.IntVar(&cli.mtu, "mtu", 1500, "Path MTU used for the fragmentation warning")
	fs.IntVar(&cli.tos, "tos", 0xb8, "IP TOS byte for outgoing packets (0 disables marking)")

	// Audio configuration
	fs.IntVar(&cli.chunkSize, "chunk-size", rtp.DefaultChunkSize, "Samples per packet")
	fs.UintVar(&cli.sampleRate, "sample-rate", uint(audio.DefaultFormat.SampleRate), "Sample rate in Hz")
	fs.StringVar(&cli.input, "input", config.SourceSilence, "Capture source: silence, tone, - for stdin, or a file of raw PCM")
	fs.StringVar(&cli.output, "output", config.SinkDiscard, "Playback sink: discard, - for stdout, or a file")
	fs.Float64Var(&cli.toneFrequency, "tone-frequency", 440, "Frequency of the tone source in Hz")
	fs.Float64Var(&cli.toneLevel, "tone-level", 0.5, "Amplitude of the tone source, 0 to 1")
	fs.Float64Var(&cli.gain, "gain", 1.0, "Linear gain applied to captured audio")

	// Logging configuration
	fs.StringVar(&cli.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	fs.StringVar(&cli.envFile, "env-file", "", "Environment file to load (default: .env if present)")
	fs.BoolVar(&cli.printSDP, "print-sdp", false, "Print an SDP description of the local endpoint")
	fs.DurationVar(&cli.duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	fs.BoolVar(&cli.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return cli, fs, nil
}

// applyCLIFlags overrides cfg with every flag given on the command line.
func applyCLIFlags(cfg *config.Config, cli *CLIConfig, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "local-port":
			cfg.LocalPort = cli.localPort
		case "remote-host":
			cfg.RemoteHost = cli.remoteHost
		case "remote-port":
			cfg.RemotePort = cli.remotePort
		case "chunk-size":
			cfg.ChunkSize = cli.chunkSize
		case "sample-rate":
			cfg.SampleRate = uint32(cli.sampleRate)
		case "mtu":
			cfg.MTU = cli.mtu
		case "tos":
			cfg.TOS = cli.tos
		case "input":
			cfg.Input = cli.input
		case "output":
			cfg.Output = cli.output
		case "tone-frequency":
			cfg.ToneFrequency = cli.toneFrequency
		case "tone-level":
			cfg.ToneLevel = cli.toneLevel
		case "gain":
			cfg.Gain = cli.gain
		case "log-level":
			cfg.LogLevel = cli.logLevel
		}
	})
}

// printUsage prints the usage information.
func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "rtpvoice - two-way RTP voice over UDP")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Captures 16-bit mono PCM, sends it to one peer as RTP (payload type 0)")
	fmt.Fprintln(w, "and plays back whatever the peer sends.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  rtpvoice [options]\n")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every option can also be set with an RTPVOICE_* environment variable,")
	fmt.Fprintln(w, "e.g. RTPVOICE_REMOTE_PORT=5005. Flags win over the environment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  # Two endpoints on one host, sending a tone to each other")
	fmt.Fprintln(w, "  rtpvoice -local-port 5004 -remote-port 5005 -input tone")
	fmt.Fprintln(w, "  rtpvoice -local-port 5005 -remote-port 5004 -output received.pcm")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Type q and Enter, or press Ctrl+C, to quit.")
}

// pipeStdin copies stdin into a pipe. Closing the returned reader interrupts a
// pending capture read without closing the process stdin; the copying
// goroutine ends on the next read from stdin.
func pipeStdin(stdin io.Reader) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		_, err := io.Copy(pw, stdin)
		pw.CloseWithError(err)
	}()
	return pr
}

// openDevice builds the audio device selected by cfg.Input and cfg.Output.
func openDevice(cfg *config.Config, stdin io.Reader, stdout io.Writer) (audio.Device, error) {
	var in io.Reader
	switch cfg.Input {
	case config.SourceSilence:
		in = audio.SilenceReader{}
	case config.SourceTone:
		tone, err := audio.NewToneReader(cfg.ToneFrequency, cfg.SampleRate, cfg.ToneLevel)
		if err != nil {
			return nil, err
		}
		in = tone
	case config.StdStream:
		in = pipeStdin(stdin)
	default:
		f, err := os.Open(cfg.Input)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		in = f
	}

	var out io.Writer
	switch cfg.Output {
	case config.SinkDiscard:
		out = io.Discard
	case config.StdStream:
		out = stdout
	default:
		f, err := os.Create(cfg.Output)
		if err != nil {
			if closer, ok := in.(io.Closer); ok {
				closer.Close()
			}
			return nil, fmt.Errorf("failed to create output: %w", err)
		}
		out = f
	}

	var device audio.Device = audio.NewStreamDevice(in, out)
	if cfg.Gain != 1.0 {
		device = &audio.GainDevice{Device: device, Gain: cfg.Gain}
	}
	return device, nil
}

// watchQuit closes the returned channel when a line reading "q" arrives.
func watchQuit(r io.Reader) <-chan struct{} {
	quit := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if strings.EqualFold(strings.TrimSpace(scanner.Text()), "q") {
				close(quit)
				return
			}
		}
	}()
	return quit
}

// run is the whole program; it returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cli, fs, err := parseCLIFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if cli.help {
		printUsage(stderr, fs)
		return 0
	}

	cfg, err := config.Load(ctx, cli.envFile)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	applyCLIFlags(cfg, cli, fs)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		fmt.Fprintf(stderr, "Use -help for usage information.\n")
		return 1
	}

	logrus.SetOutput(stderr)
	logrus.SetLevel(cfg.Level())

	remote, err := transport.ResolveUDPAddr(cfg.RemoteHost, cfg.RemotePort)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid remote endpoint: %v\n", err)
		return 1
	}

	device, err := openDevice(cfg, stdin, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Audio setup failed: %v\n", err)
		return 1
	}

	session, err := rtp.Start(rtp.Config{
		LocalAddr:  cfg.LocalAddr(),
		RemoteAddr: remote,
		Device:     device,
		Format:     cfg.Format(),
		ChunkSize:  cfg.ChunkSize,
		MTU:        cfg.MTU,
		TOS:        cfg.TOS,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Failed to start session: %v\n", err)
		return 1
	}

	fmt.Fprintf(stderr, "Streaming %s -> %s (ssrc %d, %d samples/packet at %d Hz)\n",
		session.LocalAddr(), remote, session.SSRC(), cfg.ChunkSize, cfg.SampleRate)

	if cli.printSDP {
		desc, err := session.Description()
		if err != nil {
			fmt.Fprintf(stderr, "Failed to render SDP: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "%s", desc)
		}
	}

	var quit <-chan struct{}
	if cfg.Input != config.StdStream {
		fmt.Fprintln(stderr, "Type q and Enter to quit.")
		quit = watchQuit(stdin)
	}

	var timeout <-chan time.Time
	if cli.duration > 0 {
		timer := time.NewTimer(cli.duration)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(stderr, "Interrupted, shutting down...")
	case <-quit:
	case <-timeout:
	case <-session.Done():
	}

	if err := session.Stop(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "run",
			"error":    err.Error(),
		}).Warn("Error while closing session")
	}
	session.Wait()

	printSummary(stderr, session.Stats())

	if err := session.Err(); err != nil {
		fmt.Fprintf(stderr, "Session failed: %v\n", err)
		return 1
	}
	return 0
}

// printSummary prints the final session counters.
func printSummary(w io.Writer, stats rtp.Statistics) {
	fmt.Fprintf(w, "Summary: %d packets sent (%d bytes), %d received (%d bytes), %d dropped, %d sequence gaps\n",
		stats.PacketsSent, stats.BytesSent, stats.PacketsReceived, stats.BytesReceived,
		stats.PacketsDropped, stats.SequenceGaps)
}

// main is the entry point for the voice endpoint.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
