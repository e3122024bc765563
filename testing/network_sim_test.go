package testing

import (
	"errors"
	"net"
	"os"
	"sync"
	"testing"
	"time"
)

func TestListenPacket_AllocatesPorts(t *testing.T) {
	n := NewSimulatedNetwork()

	a, err := n.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket failed: %v", err)
	}
	b, err := n.ListenPacket("udp", ":0")
	if err != nil {
		t.Fatalf("ListenPacket failed: %v", err)
	}

	if a.LocalAddr().String() == b.LocalAddr().String() {
		t.Errorf("expected distinct addresses, both got %s", a.LocalAddr())
	}
	if got := a.LocalAddr().String(); got != "127.0.0.1:40000" {
		t.Errorf("first ephemeral port = %s, want 127.0.0.1:40000", got)
	}
}

func TestListenPacket_Errors(t *testing.T) {
	n := NewSimulatedNetwork()

	if _, err := n.ListenPacket("tcp", "127.0.0.1:5004"); err == nil {
		t.Error("expected error for tcp network")
	}
	if _, err := n.ListenPacket("udp", "no-port"); err == nil {
		t.Error("expected error for address without port")
	}
	if _, err := n.ListenPacket("udp", "127.0.0.1:99999"); err == nil {
		t.Error("expected error for out of range port")
	}

	if _, err := n.ListenPacket("udp", "127.0.0.1:5004"); err != nil {
		t.Fatalf("first bind failed: %v", err)
	}
	if _, err := n.ListenPacket("udp", ":5004"); err == nil {
		t.Error("expected address in use error on second bind")
	}
}

func TestSimulatedConn_SendReceive(t *testing.T) {
	n := NewSimulatedNetwork()
	a, _ := n.ListenPacket("udp", "127.0.0.1:5004")
	b, _ := n.ListenPacket("udp", "127.0.0.1:5005")

	for _, msg := range []string{"one", "two", "three"} {
		if _, err := a.WriteTo([]byte(msg), b.LocalAddr()); err != nil {
			t.Fatalf("WriteTo failed: %v", err)
		}
	}

	buf := make([]byte, 16)
	for _, want := range []string{"one", "two", "three"} {
		k, from, err := b.ReadFrom(buf)
		if err != nil {
			t.Fatalf("ReadFrom failed: %v", err)
		}
		if string(buf[:k]) != want {
			t.Errorf("got %q, want %q", buf[:k], want)
		}
		if from.String() != a.LocalAddr().String() {
			t.Errorf("from = %s, want %s", from, a.LocalAddr())
		}
	}

	log := n.GetDeliveryLog()
	if len(log) != 3 {
		t.Fatalf("expected 3 delivery records, got %d", len(log))
	}
	for _, record := range log {
		if !record.Delivered {
			t.Errorf("expected delivered record, got %+v", record)
		}
	}

	n.ClearDeliveryLog()
	if len(n.GetDeliveryLog()) != 0 {
		t.Error("expected empty delivery log after clear")
	}
}

func TestSimulatedConn_Truncates(t *testing.T) {
	n := NewSimulatedNetwork()
	a, _ := n.ListenPacket("udp", "127.0.0.1:0")
	b, _ := n.ListenPacket("udp", "127.0.0.1:0")

	a.WriteTo([]byte("0123456789"), b.LocalAddr())

	buf := make([]byte, 4)
	k, _, err := b.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if k != 4 || string(buf) != "0123" {
		t.Errorf("got %d bytes %q, want 4 bytes \"0123\"", k, buf[:k])
	}
}

func TestSimulatedConn_UnboundDestination(t *testing.T) {
	n := NewSimulatedNetwork()
	a, _ := n.ListenPacket("udp", "127.0.0.1:0")

	dst := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 6000}
	if _, err := a.WriteTo([]byte("lost"), dst); err != nil {
		t.Errorf("expected silent drop, got %v", err)
	}

	log := n.GetDeliveryLog()
	if len(log) != 1 || log[0].Delivered || log[0].Reason != "port unreachable" {
		t.Errorf("unexpected delivery log: %+v", log)
	}
}

func TestSimulatedConn_Inject(t *testing.T) {
	n := NewSimulatedNetwork()
	b, _ := n.ListenPacket("udp", "127.0.0.1:5005")

	from := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 1234}
	if !n.Inject([]byte{0x80}, from, b.LocalAddr()) {
		t.Fatal("Inject reported drop")
	}

	buf := make([]byte, 16)
	k, got, err := b.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if k != 1 || got.String() != from.String() {
		t.Errorf("got %d bytes from %s", k, got)
	}
}

func TestSimulatedConn_CloseUnblocksRead(t *testing.T) {
	n := NewSimulatedNetwork()
	c, _ := n.ListenPacket("udp", "127.0.0.1:5004")

	var wg sync.WaitGroup
	var readErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _, readErr = c.ReadFrom(make([]byte, 8))
	}()

	time.Sleep(10 * time.Millisecond)
	c.Close()
	c.Close()
	wg.Wait()

	if !errors.Is(readErr, net.ErrClosed) {
		t.Errorf("expected net.ErrClosed, got %v", readErr)
	}
	if _, err := c.WriteTo([]byte("x"), c.LocalAddr()); !errors.Is(err, net.ErrClosed) {
		t.Errorf("expected net.ErrClosed on write, got %v", err)
	}

	// Port is free again
	if _, err := n.ListenPacket("udp", "127.0.0.1:5004"); err != nil {
		t.Errorf("rebind after close failed: %v", err)
	}
}

func TestSimulatedConn_ReadDeadline(t *testing.T) {
	n := NewSimulatedNetwork()
	c, _ := n.ListenPacket("udp", "127.0.0.1:0")

	c.SetReadDeadline(time.Now().Add(10 * time.Millisecond))
	_, _, err := c.ReadFrom(make([]byte, 8))
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestSimulatedConn_FailWrites(t *testing.T) {
	n := NewSimulatedNetwork()
	a, _ := n.ListenPacket("udp", "127.0.0.1:0")
	b, _ := n.ListenPacket("udp", "127.0.0.1:0")

	boom := errors.New("network is unreachable")
	a.(*SimulatedConn).FailWrites(boom)

	if _, err := a.WriteTo([]byte("x"), b.LocalAddr()); !errors.Is(err, boom) {
		t.Errorf("expected injected error, got %v", err)
	}

	a.(*SimulatedConn).FailWrites(nil)
	if _, err := a.WriteTo([]byte("x"), b.LocalAddr()); err != nil {
		t.Errorf("expected write to recover, got %v", err)
	}
}
