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

package config

import "errors"

var (
	// ErrInvalidLogLevel indicates that the provided log level is not valid.
	ErrInvalidLogLevel = errors.New("invalid log level provided")
	// ErrInvalidIngestHost indicates that the provided ingest bind host is not valid.
	ErrInvalidIngestHost = errors.New("invalid ingest bind host provided")
	// ErrInvalidIngestPort indicates that the provided ingest port is not valid.
	ErrInvalidIngestPort = errors.New("invalid ingest port provided")
	// ErrInvalidSinkAddr indicates that the event sink address is empty.
	ErrInvalidSinkAddr = errors.New("invalid event sink address provided")
	// ErrInvalidGSMTAPHost indicates that the provided GSMTAP destination host is not valid.
	ErrInvalidGSMTAPHost = errors.New("invalid gsmtap host provided")
	// ErrInvalidGSMTAPPort indicates that the provided GSMTAP destination port is not valid.
	ErrInvalidGSMTAPPort = errors.New("invalid gsmtap port provided")
	// ErrInvalidHTTPHost indicates that the provided HTTP host is not valid.
	ErrInvalidHTTPHost = errors.New("invalid HTTP host provided")
	// ErrInvalidHTTPPort indicates that the provided HTTP port is not valid.
	ErrInvalidHTTPPort = errors.New("invalid HTTP port provided")
	// ErrInvalidRedisHost indicates that the provided Redis host is not valid.
	ErrInvalidRedisHost = errors.New("invalid Redis host provided")
	// ErrInvalidRedisPort indicates that the provided Redis port is not valid.
	ErrInvalidRedisPort = errors.New("invalid Redis port provided")
	// ErrInvalidCallLogDatabase indicates that the call log database path is empty.
	ErrInvalidCallLogDatabase = errors.New("invalid call log database path provided")
)

// Validate validates the Ingest configuration.
func (i Ingest) Validate() error {
	if i.Bind == "" {
		return ErrInvalidIngestHost
	}
	if i.Port <= 0 || i.Port > 65535 {
		return ErrInvalidIngestPort
	}
	return nil
}

// Validate validates the Sink configuration.
func (s Sink) Validate() error {
	if s.Addr == "" {
		return ErrInvalidSinkAddr
	}
	return nil
}

// Validate validates the GSMTAP configuration.
func (g GSMTAP) Validate() error {
	if !g.Enabled {
		return nil
	}
	if g.Host == "" {
		return ErrInvalidGSMTAPHost
	}
	if g.Port <= 0 || g.Port > 65535 {
		return ErrInvalidGSMTAPPort
	}
	return nil
}

// Validate validates the HTTP configuration.
func (h HTTP) Validate() error {
	if h.Bind == "" {
		return ErrInvalidHTTPHost
	}
	if h.Port <= 0 || h.Port > 65535 {
		return ErrInvalidHTTPPort
	}
	return nil
}

// Validate validates the Redis configuration.
func (r Redis) Validate() error {
	if !r.Enabled {
		return nil
	}
	if r.Host == "" {
		return ErrInvalidRedisHost
	}
	if r.Port <= 0 || r.Port > 65535 {
		return ErrInvalidRedisPort
	}
	return nil
}

// Validate validates the CallLog configuration.
func (c CallLog) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Database == "" {
		return ErrInvalidCallLogDatabase
	}
	return nil
}

// Validate validates the full Config, stopping at the first failure.
func (c Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return ErrInvalidLogLevel
	}
	if err := c.Ingest.Validate(); err != nil {
		return err
	}
	if err := c.Sink.Validate(); err != nil {
		return err
	}
	if err := c.GSMTAP.Validate(); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.CallLog.Validate(); err != nil {
		return err
	}
	return nil
}

// ValidateWithFields returns every validation failure rather than
// stopping at the first, for a setup UI to report all at once.
func (c Config) ValidateWithFields() []error {
	var errs []error
	for _, err := range []error{
		c.Ingest.Validate(),
		c.Sink.Validate(),
		c.GSMTAP.Validate(),
		c.HTTP.Validate(),
		c.Redis.Validate(),
		c.CallLog.Validate(),
	} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
