package transport

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"
)

// DefaultTOS marks voice packets as Expedited Forwarding (DSCP 46).
const DefaultTOS = 0xb8

// Options configures a UDPTransport.
type Options struct {
	// ListenPacket binds the socket. Defaults to net.ListenPacket.
	ListenPacket ListenPacketFunc

	// TOS is written to the IPv4 type-of-service byte of outgoing packets.
	// Zero leaves the system default.
	TOS int
}

// UDPTransport implements Transport over a single bound datagram socket.
type UDPTransport struct {
	conn       net.PacketConn
	listenAddr net.Addr

	closeOnce sync.Once
	closeErr  error
}

// NewUDPTransport binds a UDP socket on listenAddr.
func NewUDPTransport(listenAddr string, opts Options) (*UDPTransport, error) {
	listen := opts.ListenPacket
	if listen == nil {
		listen = net.ListenPacket
	}

	conn, err := listen("udp", listenAddr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "NewUDPTransport",
			"listen_addr": listenAddr,
			"error":       err.Error(),
		}).Error("Failed to bind UDP socket")
		return nil, fmt.Errorf("listen %s: %w", listenAddr, err)
	}

	t := &UDPTransport{
		conn:       conn,
		listenAddr: conn.LocalAddr(),
	}

	if opts.TOS != 0 {
		t.setTOS(opts.TOS)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NewUDPTransport",
		"local_addr": t.listenAddr.String(),
		"tos":        opts.TOS,
	}).Info("UDP transport bound")

	return t, nil
}

// setTOS marks outgoing packets. Failure is not fatal: the socket still works,
// the packets just carry the default TOS.
func (t *UDPTransport) setTOS(tos int) {
	udpConn, ok := t.conn.(*net.UDPConn)
	if !ok {
		return
	}

	if err := ipv4.NewPacketConn(udpConn).SetTOS(tos); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "UDPTransport.setTOS",
			"local_addr": t.listenAddr.String(),
			"tos":        tos,
			"error":      err.Error(),
		}).Warn("Failed to set TOS on UDP socket")
	}
}

// Send sends one datagram to addr.
func (t *UDPTransport) Send(data []byte, addr net.Addr) error {
	_, err := t.conn.WriteTo(data, addr)
	return err
}

// Receive blocks for one datagram.
func (t *UDPTransport) Receive(buf []byte) (int, net.Addr, error) {
	return t.conn.ReadFrom(buf)
}

// Close closes the socket. Calling it again returns the first result.
func (t *UDPTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

// LocalAddr returns the local address the transport is bound to.
func (t *UDPTransport) LocalAddr() net.Addr {
	return t.listenAddr
}

// IsClosed reports whether err is the result of using a closed transport.
func IsClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

// ResolveUDPAddr resolves host and port into a UDP address.
func ResolveUDPAddr(host string, port int) (net.Addr, error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("resolve %s:%d: %w", host, port, err)
	}
	return addr, nil
}

// ListenAddr formats the wildcard listen address for a port.
func ListenAddr(port int) string {
	return ":" + strconv.Itoa(port)
}
