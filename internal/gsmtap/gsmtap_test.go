// SPDX-License-Identifier: AGPL-3.0-or-later

package gsmtap

import (
	"net"
	"testing"

	"github.com/tetrarx/tetrarx/internal/bitstream"
	"github.com/tetrarx/tetrarx/internal/config"
	"github.com/tetrarx/tetrarx/internal/tetra"
)

func TestEmitWritesGSMTAPHeader(t *testing.T) {
	t.Parallel()

	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("failed to reserve a port: %v", err)
	}
	defer listener.Close()
	port := listener.LocalAddr().(*net.UDPAddr).Port

	e, err := New(config.GSMTAP{Host: "127.0.0.1", Port: port})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	sdu := bitstream.New([]byte{1, 0, 1, 1, 0, 0, 0, 0, 1})
	if err := e.Emit("BSCH", tetra.Time{TN: 2, FN: 3, MN: 4}, sdu); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	buf := make([]byte, 64)
	n, _, err := listener.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}
	packet := buf[:n]

	if len(packet) != 16+2 {
		t.Fatalf("expected 16-byte header + 2 payload bytes, got %d bytes", len(packet))
	}
	if packet[0] != version {
		t.Errorf("version: expected %d, got %d", version, packet[0])
	}
	if packet[1] != headerWordsLen {
		t.Errorf("hdr_len: expected %d, got %d", headerWordsLen, packet[1])
	}
	if packet[2] != typeTetraI1 {
		t.Errorf("type: expected %d, got %d", typeTetraI1, packet[2])
	}
	if packet[3] != 2 {
		t.Errorf("timeslot: expected 2, got %d", packet[3])
	}
	if packet[12] != subType["BSCH"] {
		t.Errorf("sub_type: expected %d, got %d", subType["BSCH"], packet[12])
	}

	if packet[16] != 0b10110000 {
		t.Errorf("payload byte 0: expected %08b, got %08b", 0b10110000, packet[16])
	}
	if packet[17] != 0b10000000 {
		t.Errorf("payload byte 1: expected %08b, got %08b", 0b10000000, packet[17])
	}
}

func TestEmitSkipsUnknownChannel(t *testing.T) {
	t.Parallel()

	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("failed to reserve a port: %v", err)
	}
	defer listener.Close()
	port := listener.LocalAddr().(*net.UDPAddr).Port

	e, err := New(config.GSMTAP{Host: "127.0.0.1", Port: port})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	if err := e.Emit("UNKNOWN", tetra.Time{}, bitstream.New(nil)); err != nil {
		t.Fatalf("Emit: %v", err)
	}
}

func TestPackZeroPadsFinalByte(t *testing.T) {
	t.Parallel()

	got := pack(bitstream.New([]byte{1, 1, 1}))
	if len(got) != 1 {
		t.Fatalf("expected 1 byte, got %d", len(got))
	}
	if got[0] != 0b11100000 {
		t.Errorf("expected %08b, got %08b", 0b11100000, got[0])
	}
}
