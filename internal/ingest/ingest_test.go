// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/tetrarx/tetrarx/internal/config"
)

type captureSink struct {
	mu   sync.Mutex
	bits []byte
}

func (c *captureSink) PushBit(bit byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bits = append(c.bits, bit)
}

func (c *captureSink) snapshot() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, len(c.bits))
	copy(out, c.bits)
	return out
}

func TestRunFeedsUnpackedBits(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	srv := New(config.Ingest{Bind: "127.0.0.1", Port: 0}, false, sink)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)

	// Bind an ephemeral port to learn a free port number, release it,
	// and run the server on that number; the dial below does not retry.
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("failed to reserve a port: %v", err)
	}
	port := listener.LocalAddr().(*net.UDPAddr).Port
	_ = listener.Close()

	srv.cfg.Port = port

	go func() {
		errCh <- srv.Run(ctx)
	}()

	// Give the listener a moment to bind.
	time.Sleep(20 * time.Millisecond)

	conn, err := net.Dial("udp", "127.0.0.1:"+strconv.Itoa(port))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte{0x01, 0x00, 0x01, 0x01}); err != nil {
		t.Fatalf("write: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-errCh

	got := sink.snapshot()
	want := []byte{1, 0, 1, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %d bits, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bit %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestFeedPackedUnpacksMSBFirst(t *testing.T) {
	t.Parallel()
	sink := &captureSink{}
	srv := New(config.Ingest{}, true, sink)

	srv.feed([]byte{0b10110000})

	got := sink.snapshot()
	want := []byte{1, 0, 1, 1, 0, 0, 0, 0}
	if len(got) != 8 {
		t.Fatalf("expected 8 bits, got %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bit %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}
