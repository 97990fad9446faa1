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

package config_test

import (
	"errors"
	"testing"

	"github.com/tetrarx/tetrarx/internal/config"
)

func makeValidConfig() config.Config {
	return config.Config{
		LogLevel: config.LogLevelInfo,
		Ingest: config.Ingest{
			Bind: "0.0.0.0",
			Port: 42000,
		},
		Sink: config.Sink{
			Addr: "tcp://localhost:42100",
		},
		HTTP: config.HTTP{
			Bind: "0.0.0.0",
			Port: 8080,
		},
	}
}

// --- Ingest validation ---

func TestIngestValidateEmptyBind(t *testing.T) {
	t.Parallel()
	i := config.Ingest{Bind: "", Port: 42000}
	if !errors.Is(i.Validate(), config.ErrInvalidIngestHost) {
		t.Errorf("expected ErrInvalidIngestHost, got %v", i.Validate())
	}
}

func TestIngestValidateInvalidPort(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		port int
	}{
		{"zero", 0},
		{"negative", -1},
		{"too high", 70000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			i := config.Ingest{Bind: "0.0.0.0", Port: tt.port}
			if !errors.Is(i.Validate(), config.ErrInvalidIngestPort) {
				t.Errorf("expected ErrInvalidIngestPort for port %d, got %v", tt.port, i.Validate())
			}
		})
	}
}

func TestIngestValidateValid(t *testing.T) {
	t.Parallel()
	i := config.Ingest{Bind: "0.0.0.0", Port: 42000}
	if err := i.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- Sink validation ---

func TestSinkValidateEmptyAddr(t *testing.T) {
	t.Parallel()
	s := config.Sink{Addr: ""}
	if !errors.Is(s.Validate(), config.ErrInvalidSinkAddr) {
		t.Errorf("expected ErrInvalidSinkAddr, got %v", s.Validate())
	}
}

func TestSinkValidateValid(t *testing.T) {
	t.Parallel()
	s := config.Sink{Addr: "tcp://localhost:42100"}
	if err := s.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- GSMTAP validation ---

func TestGSMTAPValidateDisabled(t *testing.T) {
	t.Parallel()
	g := config.GSMTAP{Enabled: false}
	if err := g.Validate(); err != nil {
		t.Errorf("expected nil error for disabled gsmtap, got %v", err)
	}
}

func TestGSMTAPValidateEnabledEmptyHost(t *testing.T) {
	t.Parallel()
	g := config.GSMTAP{Enabled: true, Host: "", Port: 4729}
	if !errors.Is(g.Validate(), config.ErrInvalidGSMTAPHost) {
		t.Errorf("expected ErrInvalidGSMTAPHost, got %v", g.Validate())
	}
}

func TestGSMTAPValidateEnabledInvalidPort(t *testing.T) {
	t.Parallel()
	g := config.GSMTAP{Enabled: true, Host: "127.0.0.1", Port: 0}
	if !errors.Is(g.Validate(), config.ErrInvalidGSMTAPPort) {
		t.Errorf("expected ErrInvalidGSMTAPPort, got %v", g.Validate())
	}
}

func TestGSMTAPValidateEnabledValid(t *testing.T) {
	t.Parallel()
	g := config.GSMTAP{Enabled: true, Host: "127.0.0.1", Port: 4729}
	if err := g.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- HTTP validation ---

func TestHTTPValidateEmptyBind(t *testing.T) {
	t.Parallel()
	h := config.HTTP{Bind: "", Port: 8080}
	if !errors.Is(h.Validate(), config.ErrInvalidHTTPHost) {
		t.Errorf("expected ErrInvalidHTTPHost, got %v", h.Validate())
	}
}

func TestHTTPValidateInvalidPort(t *testing.T) {
	t.Parallel()
	h := config.HTTP{Bind: "0.0.0.0", Port: -1}
	if !errors.Is(h.Validate(), config.ErrInvalidHTTPPort) {
		t.Errorf("expected ErrInvalidHTTPPort, got %v", h.Validate())
	}
}

func TestHTTPValidateValid(t *testing.T) {
	t.Parallel()
	h := config.HTTP{Bind: "0.0.0.0", Port: 8080}
	if err := h.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- Redis validation ---

func TestRedisValidateDisabled(t *testing.T) {
	t.Parallel()
	r := config.Redis{Enabled: false}
	if err := r.Validate(); err != nil {
		t.Errorf("expected nil error for disabled redis, got %v", err)
	}
}

func TestRedisValidateEnabledEmptyHost(t *testing.T) {
	t.Parallel()
	r := config.Redis{Enabled: true, Host: "", Port: 6379}
	if !errors.Is(r.Validate(), config.ErrInvalidRedisHost) {
		t.Errorf("expected ErrInvalidRedisHost, got %v", r.Validate())
	}
}

func TestRedisValidateEnabledInvalidPort(t *testing.T) {
	t.Parallel()
	r := config.Redis{Enabled: true, Host: "localhost", Port: 0}
	if !errors.Is(r.Validate(), config.ErrInvalidRedisPort) {
		t.Errorf("expected ErrInvalidRedisPort, got %v", r.Validate())
	}
}

func TestRedisValidateEnabledValid(t *testing.T) {
	t.Parallel()
	r := config.Redis{Enabled: true, Host: "localhost", Port: 6379}
	if err := r.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- CallLog validation ---

func TestCallLogValidateDisabled(t *testing.T) {
	t.Parallel()
	c := config.CallLog{Enabled: false}
	if err := c.Validate(); err != nil {
		t.Errorf("expected nil error for disabled call log, got %v", err)
	}
}

func TestCallLogValidateEnabledEmptyDatabase(t *testing.T) {
	t.Parallel()
	c := config.CallLog{Enabled: true, Database: ""}
	if !errors.Is(c.Validate(), config.ErrInvalidCallLogDatabase) {
		t.Errorf("expected ErrInvalidCallLogDatabase, got %v", c.Validate())
	}
}

func TestCallLogValidateEnabledValid(t *testing.T) {
	t.Parallel()
	c := config.CallLog{Enabled: true, Database: "tetrarx-calllog.db"}
	if err := c.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- Full Config validation ---

func TestConfigValidateValid(t *testing.T) {
	t.Parallel()
	c := makeValidConfig()
	if err := c.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestConfigValidateInvalidLogLevel(t *testing.T) {
	t.Parallel()
	c := makeValidConfig()
	c.LogLevel = "invalid"
	if !errors.Is(c.Validate(), config.ErrInvalidLogLevel) {
		t.Errorf("expected ErrInvalidLogLevel, got %v", c.Validate())
	}
}

func TestConfigValidateAllLogLevels(t *testing.T) {
	t.Parallel()
	levels := []config.LogLevel{config.LogLevelDebug, config.LogLevelInfo, config.LogLevelWarn, config.LogLevelError}
	for _, level := range levels {
		t.Run(string(level), func(t *testing.T) {
			t.Parallel()
			c := makeValidConfig()
			c.LogLevel = level
			if err := c.Validate(); err != nil {
				t.Errorf("expected nil error for log level %s, got %v", level, err)
			}
		})
	}
}

func TestConfigValidateStopsAtIngest(t *testing.T) {
	t.Parallel()
	c := makeValidConfig()
	c.Ingest.Bind = ""
	if !errors.Is(c.Validate(), config.ErrInvalidIngestHost) {
		t.Errorf("expected ErrInvalidIngestHost, got %v", c.Validate())
	}
}

func TestConfigValidateWithFieldsCollectsAllErrors(t *testing.T) {
	t.Parallel()
	c := config.Config{
		LogLevel: config.LogLevelInfo,
		Ingest:   config.Ingest{Bind: "", Port: 0},
		Sink:     config.Sink{Addr: ""},
		GSMTAP:   config.GSMTAP{Enabled: true, Host: "", Port: 0},
		HTTP:     config.HTTP{Bind: "", Port: 0},
		Redis:    config.Redis{Enabled: true, Host: "", Port: 0},
		CallLog:  config.CallLog{Enabled: true, Database: ""},
	}
	errs := c.ValidateWithFields()
	if len(errs) != 6 {
		t.Fatalf("expected 6 validation errors, got %d: %v", len(errs), errs)
	}
}

func TestConfigValidateWithFieldsNoErrorsOnValid(t *testing.T) {
	t.Parallel()
	c := makeValidConfig()
	if errs := c.ValidateWithFields(); len(errs) != 0 {
		t.Errorf("expected no validation errors, got %v", errs)
	}
}
