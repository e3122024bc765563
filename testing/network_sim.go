package testing

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// firstEphemeralPort is where port 0 allocations start.
	firstEphemeralPort = 40000

	// inboxSize is the number of datagrams queued per socket before new ones
	// are dropped, like a full kernel receive buffer.
	inboxSize = 256
)

// DeliveryRecord represents a datagram delivery event for test verification.
type DeliveryRecord struct {
	From      net.Addr
	To        net.Addr
	Size      int
	Timestamp time.Time
	Delivered bool
	Reason    string // why the datagram was not delivered
}

// SimulatedNetwork is an in-memory, single-host datagram network. Its
// ListenPacket method has the signature of net.ListenPacket, so it can stand in
// for real UDP anywhere a socket factory is injected.
//
// Delivery is in order and lossless unless the destination is unbound or its
// inbox is full, matching UDP on loopback.
type SimulatedNetwork struct {
	mu          sync.RWMutex
	conns       map[int]*SimulatedConn
	nextPort    int
	deliveryLog []DeliveryRecord
}

// NewSimulatedNetwork creates an empty network.
func NewSimulatedNetwork() *SimulatedNetwork {
	logrus.WithFields(logrus.Fields{
		"function": "NewSimulatedNetwork",
	}).Debug("Creating simulated datagram network")

	return &SimulatedNetwork{
		conns:    make(map[int]*SimulatedConn),
		nextPort: firstEphemeralPort,
	}
}

// ListenPacket binds a simulated socket. Only "udp", "udp4" and "udp6" are
// accepted. Port 0 allocates a free port. Hosts are ignored: every socket
// lives on 127.0.0.1.
func (n *SimulatedNetwork) ListenPacket(network, address string) (net.PacketConn, error) {
	switch network {
	case "udp", "udp4", "udp6":
	default:
		return nil, fmt.Errorf("simulated network: unsupported network %q", network)
	}

	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, fmt.Errorf("simulated network: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return nil, fmt.Errorf("simulated network: invalid port %q", portStr)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if port == 0 {
		for n.conns[n.nextPort] != nil {
			n.nextPort++
		}
		port = n.nextPort
		n.nextPort++
	}

	if _, exists := n.conns[port]; exists {
		return nil, &net.OpError{
			Op:   "listen",
			Net:  network,
			Addr: loopback(port),
			Err:  fmt.Errorf("address already in use"),
		}
	}

	conn := &SimulatedConn{
		network: n,
		addr:    loopback(port),
		inbox:   make(chan datagram, inboxSize),
		closed:  make(chan struct{}),
	}
	n.conns[port] = conn

	logrus.WithFields(logrus.Fields{
		"function":   "SimulatedNetwork.ListenPacket",
		"local_addr": conn.addr.String(),
	}).Debug("Simulated socket bound")

	return conn, nil
}

// Inject delivers raw bytes to the socket bound on to, as if sent from from.
// It reports whether the datagram was queued.
func (n *SimulatedNetwork) Inject(data []byte, from, to net.Addr) bool {
	return n.deliver(data, from, to)
}

// GetDeliveryLog returns a copy of all delivery attempts.
func (n *SimulatedNetwork) GetDeliveryLog() []DeliveryRecord {
	n.mu.RLock()
	defer n.mu.RUnlock()

	log := make([]DeliveryRecord, len(n.deliveryLog))
	copy(log, n.deliveryLog)
	return log
}

// ClearDeliveryLog drops all recorded delivery attempts.
func (n *SimulatedNetwork) ClearDeliveryLog() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.deliveryLog = nil
}

func (n *SimulatedNetwork) deliver(data []byte, from, to net.Addr) bool {
	record := DeliveryRecord{
		From:      from,
		To:        to,
		Size:      len(data),
		Timestamp: time.Now(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	port, ok := portOf(to)
	dst := n.conns[port]
	switch {
	case !ok:
		record.Reason = "unsupported address"
	case dst == nil:
		record.Reason = "port unreachable"
	default:
		buf := make([]byte, len(data))
		copy(buf, data)
		select {
		case dst.inbox <- datagram{data: buf, from: from}:
			record.Delivered = true
		default:
			record.Reason = "inbox full"
		}
	}

	n.deliveryLog = append(n.deliveryLog, record)
	return record.Delivered
}

func (n *SimulatedNetwork) unbind(c *SimulatedConn) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conns[c.addr.Port] == c {
		delete(n.conns, c.addr.Port)
	}
}

type datagram struct {
	data []byte
	from net.Addr
}

// SimulatedConn is one bound socket on a SimulatedNetwork. It implements
// net.PacketConn.
type SimulatedConn struct {
	network *SimulatedNetwork
	addr    *net.UDPAddr
	inbox   chan datagram

	mu           sync.Mutex
	readDeadline time.Time
	writeErr     error

	closeOnce sync.Once
	closed    chan struct{}
}

// FailWrites makes every following WriteTo return err. Pass nil to restore.
func (c *SimulatedConn) FailWrites(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writeErr = err
}

// ReadFrom blocks until a datagram arrives, the read deadline passes or the
// socket is closed. Datagrams longer than p are truncated, like UDP.
func (c *SimulatedConn) ReadFrom(p []byte) (int, net.Addr, error) {
	c.mu.Lock()
	deadline := c.readDeadline
	c.mu.Unlock()

	var timeout <-chan time.Time
	if !deadline.IsZero() {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-c.closed:
		return 0, nil, c.opError("read", net.ErrClosed)
	default:
	}

	select {
	case dg := <-c.inbox:
		return copy(p, dg.data), dg.from, nil
	case <-c.closed:
		return 0, nil, c.opError("read", net.ErrClosed)
	case <-timeout:
		return 0, nil, c.opError("read", os.ErrDeadlineExceeded)
	}
}

// WriteTo sends one datagram. Sending to an unbound port succeeds silently.
func (c *SimulatedConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	select {
	case <-c.closed:
		return 0, c.opError("write", net.ErrClosed)
	default:
	}

	c.mu.Lock()
	writeErr := c.writeErr
	c.mu.Unlock()
	if writeErr != nil {
		return 0, c.opError("write", writeErr)
	}

	c.network.deliver(p, c.addr, addr)
	return len(p), nil
}

// Close unbinds the socket and unblocks pending reads.
func (c *SimulatedConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.network.unbind(c)
	})
	return nil
}

// LocalAddr returns the bound address.
func (c *SimulatedConn) LocalAddr() net.Addr {
	return c.addr
}

// SetDeadline sets the read deadline. Writes never block.
func (c *SimulatedConn) SetDeadline(t time.Time) error {
	return c.SetReadDeadline(t)
}

// SetReadDeadline sets the deadline for future ReadFrom calls.
func (c *SimulatedConn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.readDeadline = t
	return nil
}

// SetWriteDeadline is a no-op.
func (c *SimulatedConn) SetWriteDeadline(t time.Time) error {
	return nil
}

func (c *SimulatedConn) opError(op string, err error) error {
	return &net.OpError{Op: op, Net: "udp", Addr: c.addr, Err: err}
}

func loopback(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
}

func portOf(addr net.Addr) (int, bool) {
	if udpAddr, ok := addr.(*net.UDPAddr); ok {
		return udpAddr.Port, true
	}
	if addr == nil {
		return 0, false
	}
	_, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return 0, false
	}
	port, err := strconv.Atoi(portStr)
	return port, err == nil
}
