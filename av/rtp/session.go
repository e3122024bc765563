package rtp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/opd-ai/rtpvoice/av/audio"
	"github.com/opd-ai/rtpvoice/limits"
	"github.com/opd-ai/rtpvoice/transport"
	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"
)

// DefaultChunkSize is the number of samples carried by one packet.
const DefaultChunkSize = 1024

// Config configures a voice session.
type Config struct {
	// LocalAddr is the address the session socket binds to, e.g. ":5004".
	LocalAddr string

	// RemoteAddr is the single peer every packet is sent to.
	RemoteAddr net.Addr

	// Device opens the capture and playback streams.
	Device audio.Device

	// Format of captured and played samples. Defaults to audio.DefaultFormat.
	Format audio.Format

	// ChunkSize is the number of samples per packet. Defaults to DefaultChunkSize.
	ChunkSize int

	// PacketInterval is the target time between two sends. Defaults to the
	// playing time of one chunk.
	PacketInterval time.Duration

	// MTU is the path MTU used for the fragmentation warning. Defaults to
	// limits.DefaultMTU.
	MTU int

	// TOS marks outgoing packets, see transport.Options.
	TOS int

	// Random supplies the initial sequence number and SSRC. Defaults to
	// CryptoRandomSource.
	Random RandomSource

	// ListenPacket binds the socket. Defaults to net.ListenPacket.
	ListenPacket transport.ListenPacketFunc

	// OnError is called from the failing loop with a *LoopError when that loop
	// terminates on an I/O error.
	OnError func(err error)
}

func (c *Config) applyDefaults() {
	if c.Format == (audio.Format{}) {
		c.Format = audio.DefaultFormat
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.PacketInterval == 0 {
		c.PacketInterval = c.Format.Duration(c.ChunkSize)
	}
	if c.MTU == 0 {
		c.MTU = limits.DefaultMTU
	}
	if c.Random == nil {
		c.Random = CryptoRandomSource{}
	}
}

func (c *Config) validate() error {
	if c.RemoteAddr == nil {
		return fmt.Errorf("%w: remote address cannot be nil", ErrInvalidConfig)
	}
	if c.Device == nil {
		return fmt.Errorf("%w: audio device cannot be nil", ErrInvalidConfig)
	}
	if err := c.Format.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("%w: chunk size must be positive: %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.PacketInterval < 0 {
		return fmt.Errorf("%w: packet interval cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Session is a duplex RTP voice stream with one fixed peer.
//
// A Sender goroutine captures chunks, frames them and sends them; a Receiver
// goroutine decodes whatever arrives and plays the payload back in receipt
// order. The sequence number, timestamp and SSRC belong to the Sender alone.
// The two loops share only the running flag.
//
// A loop that hits an I/O error reports it and exits. The other loop keeps
// running until Stop is called.
type Session struct {
	id      uuid.UUID
	cfg     Config
	created time.Time
	log     *logrus.Entry

	transport transport.Transport
	capture   audio.Capture
	playback  audio.Playback

	// Sender-owned stream state.
	ssrc            uint32
	initialSequence uint16
	sequencer       rtp.Sequencer
	timestamp       uint32

	running  atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
	done     chan struct{}

	errMu sync.Mutex
	errs  []error

	stats counters
}

// Start binds the local socket, opens the audio streams and launches the
// Sender and Receiver loops.
//
// Returns an error matching ErrInvalidConfig, ErrBind or ErrAudioInit when the
// session cannot start. Nothing is left open in that case.
func Start(cfg Config) (*Session, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Start",
			"error":    err.Error(),
		}).Error("Invalid session configuration")
		return nil, err
	}

	seq, ssrc, err := drawSessionIdentity(cfg.Random)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	log := logrus.WithFields(logrus.Fields{
		"session_id": id.String(),
	})

	tr, err := transport.NewUDPTransport(cfg.LocalAddr, transport.Options{
		ListenPacket: cfg.ListenPacket,
		TOS:          cfg.TOS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBind, err)
	}

	capture, err := cfg.Device.OpenCapture(cfg.Format)
	if err != nil {
		tr.Close()
		log.WithFields(logrus.Fields{
			"function": "Start",
			"error":    err.Error(),
		}).Error("Failed to open capture stream")
		return nil, fmt.Errorf("%w: capture: %w", ErrAudioInit, err)
	}

	playback, err := cfg.Device.OpenPlayback(cfg.Format)
	if err != nil {
		capture.Close()
		tr.Close()
		log.WithFields(logrus.Fields{
			"function": "Start",
			"error":    err.Error(),
		}).Error("Failed to open playback stream")
		return nil, fmt.Errorf("%w: playback: %w", ErrAudioInit, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		id:              id,
		cfg:             cfg,
		created:         time.Now(),
		log:             log,
		transport:       tr,
		capture:         capture,
		playback:        playback,
		ssrc:            ssrc,
		initialSequence: seq,
		sequencer:       rtp.NewFixedSequencer(seq),
		timestamp:       0,
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
	}
	s.running.Store(true)

	s.wg.Add(2)
	go s.runSender()
	go s.runReceiver()
	go func() {
		s.wg.Wait()
		close(s.done)
	}()

	log.WithFields(logrus.Fields{
		"function":         "Start",
		"local_addr":       tr.LocalAddr().String(),
		"remote_addr":      cfg.RemoteAddr.String(),
		"ssrc":             ssrc,
		"initial_sequence": seq,
		"chunk_size":       cfg.ChunkSize,
		"sample_rate":      cfg.Format.SampleRate,
		"packet_interval":  cfg.PacketInterval.String(),
	}).Info("Voice session started")

	return s, nil
}

// Stop ends the session. Both loops exit once their current blocking call
// returns; closing the audio streams and the socket makes those calls return.
// Stop is idempotent: later calls do nothing and return nil.
func (s *Session) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		s.running.Store(false)
		s.cancel()

		err = errors.Join(
			s.capture.Close(),
			s.playback.Close(),
			s.transport.Close(),
		)

		stats := s.stats.snapshot()
		s.log.WithFields(logrus.Fields{
			"function":         "Session.Stop",
			"packets_sent":     stats.PacketsSent,
			"packets_received": stats.PacketsReceived,
			"packets_dropped":  stats.PacketsDropped,
			"duration":         time.Since(s.created).String(),
		}).Info("Voice session stopped")
	})
	return err
}

// Wait blocks until both loops have exited.
func (s *Session) Wait() {
	<-s.done
}

// Done is closed when both loops have exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Running reports whether Stop has not been called yet. A session whose loops
// both died on errors still reports true.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Err returns the errors that terminated the loops, joined, or nil.
func (s *Session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	return errors.Join(s.errs...)
}

// ID returns the session identifier used in logs and the SDP origin line.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// SSRC returns the synchronization source of outgoing packets.
func (s *Session) SSRC() uint32 {
	return s.ssrc
}

// InitialSequenceNumber returns the sequence number of the first packet sent.
func (s *Session) InitialSequenceNumber() uint16 {
	return s.initialSequence
}

// LocalAddr returns the bound local address.
func (s *Session) LocalAddr() net.Addr {
	return s.transport.LocalAddr()
}

// RemoteAddr returns the peer address.
func (s *Session) RemoteAddr() net.Addr {
	return s.cfg.RemoteAddr
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Statistics {
	return s.stats.snapshot()
}

// fail records the error that ends a loop. Errors caused by Stop closing the
// handles under a blocked call are not failures and are dropped.
func (s *Session) fail(loop, op string, err error) {
	if !s.running.Load() {
		s.log.WithFields(logrus.Fields{
			"function":      "Session.fail",
			"loop":          loop,
			"socket_closed": transport.IsClosed(err),
		}).Debug("Loop exiting after stop")
		return
	}

	loopErr := &LoopError{Loop: loop, Op: op, Err: err}

	s.errMu.Lock()
	s.errs = append(s.errs, loopErr)
	s.errMu.Unlock()

	s.log.WithFields(logrus.Fields{
		"function": "Session.fail",
		"loop":     loop,
		"op":       op,
		"error":    err.Error(),
	}).Error("Session loop terminated")

	if s.cfg.OnError != nil {
		s.cfg.OnError(loopErr)
	}
}
