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

// Package config holds the receiver's configuration surface: one
// struct loaded by configulator from flags and environment variables,
// with a Validate method per sub-section mirroring the teacher's
// internal/config package.
package config

// Config is the root configuration loaded once at startup via
// configulator.FromContext / Load, mirroring the teacher's
// cmd/root.go runRoot wiring.
type Config struct {
	LogLevel LogLevel `name:"log-level" description:"logging verbosity" default:"info"`

	KeepFillBits bool `name:"keep-fill-bits" short:"f" description:"keep fill bits instead of stripping them" default:"false"`
	PackedInput  bool `name:"packed" short:"P" description:"inbound symbol stream is packed 8 bits per byte" default:"false"`

	Ingest  Ingest
	Sink    Sink
	GSMTAP  GSMTAP
	HTTP    HTTP
	Redis   Redis
	CallLog CallLog
	Metrics Metrics
}

// Ingest is the inbound symbol stream (spec §6: byte-framed datagram
// socket, default UDP 42000).
type Ingest struct {
	Bind string `name:"ingest-bind" description:"inbound symbol stream bind host" default:"0.0.0.0"`
	Port int    `name:"rx-port" short:"r" description:"inbound symbol stream UDP port" default:"42000"`
}

// Sink is the outbound event stream (spec §6: a push-style connection,
// default tcp://localhost:42100).
type Sink struct {
	Addr string `name:"sink-addr" short:"a" description:"outbound event sink address" default:"tcp://localhost:42100"`
}

// GSMTAP is the optional GSMTAP v2 mirror (spec §6).
type GSMTAP struct {
	Enabled bool   `name:"gsmtap" short:"w" description:"enable GSMTAP emission" default:"false"`
	Host    string `name:"gsmtap-host" description:"GSMTAP destination host" default:"127.0.0.1"`
	Port    int    `name:"gsmtap-port" description:"GSMTAP destination UDP port" default:"4729"`
}

// HTTP serves metrics, health and the live event-tail websocket.
type HTTP struct {
	Bind string `name:"http-bind" description:"HTTP API bind host" default:"0.0.0.0"`
	Port int    `name:"http-port" description:"HTTP API port" default:"8080"`
}

// Redis backs the shared key-value store that the acquired cell
// identity is published to when enabled; otherwise an in-process store
// is used.
type Redis struct {
	Enabled  bool   `name:"redis-enabled" description:"use redis for shared receiver state" default:"false"`
	Host     string `name:"redis-host" description:"redis host" default:"localhost"`
	Port     int    `name:"redis-port" description:"redis port" default:"6379"`
	Password string `name:"redis-password" description:"redis password"`
}

// CallLog is the optional SQLite-backed call attribution log.
type CallLog struct {
	Enabled  bool   `name:"calllog-enabled" description:"append call-attribution rows to a local log" default:"false"`
	Database string `name:"calllog-database" description:"sqlite database path" default:"tetrarx-calllog.db"`
}

// Metrics configures the Prometheus registry exposure and, if set, the
// OTLP tracing exporter.
type Metrics struct {
	OTLPEndpoint string `name:"otlp-endpoint" description:"OTLP gRPC collector endpoint; unset disables tracing"`
}
