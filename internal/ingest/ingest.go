// SPDX-License-Identifier: AGPL-3.0-or-later
// DMRHub - Run a DMR network server in a single binary
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/USA-RedDragon/DMRHub>

// Package ingest owns the inbound symbol stream: a byte-framed
// datagram socket carrying one demodulated bit per byte (or, with
// -P/--packed, eight bits packed MSB-first per byte). Each bit read is
// handed to a Pipeline in order; a zero-length datagram marks a clean
// end of stream.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/tetrarx/tetrarx/internal/config"
)

const bufferSize = 65536

// Sink receives one demodulated symbol bit at a time, in order.
// *pipeline.Pipeline satisfies this.
type Sink interface {
	PushBit(bit byte)
}

// Server owns the inbound UDP socket for the symbol stream.
type Server struct {
	cfg    config.Ingest
	packed bool
	sink   Sink
	conn   *net.UDPConn
}

var (
	ErrOpenSocket = errors.New("error opening ingest socket")
)

// New builds a Server bound to cfg, feeding every decoded bit to sink.
func New(cfg config.Ingest, packed bool, sink Sink) *Server {
	return &Server{cfg: cfg, packed: packed, sink: sink}
}

// Run opens the socket and reads datagrams until ctx is cancelled, the
// peer sends a zero-length datagram, or a read error occurs. Matches
// the error return used by the I/O-errors-are-fatal rule: any error
// other than context cancellation is returned to the caller to log
// and exit on.
func (s *Server) Run(ctx context.Context) error {
	addr := &net.UDPAddr{IP: net.ParseIP(s.cfg.Bind), Port: s.cfg.Port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenSocket, err)
	}
	s.conn = conn
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	slog.Info("ingest listening", "address", addr.String(), "packed", s.packed)

	buf := make([]byte, bufferSize)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("ingest read: %w", err)
		}
		if n == 0 {
			return nil
		}
		s.feed(buf[:n])
	}
}

func (s *Server) feed(data []byte) {
	if !s.packed {
		for _, b := range data {
			s.sink.PushBit(b & 1)
		}
		return
	}
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			s.sink.PushBit((b >> uint(i)) & 1)
		}
	}
}
