// SPDX-License-Identifier: AGPL-3.0-or-later

// Package event implements the C11 event-record sink: an accumulator
// of named key/value pairs per decoded PDU, serialized to exactly one
// line of UTF-8 JSON with field order preserved in the order the bits
// were read — that order is part of the external contract (human log
// readability), so the zero value of encoding/json's map-based
// marshaling (which does not preserve insertion order) cannot be used.
package event

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tetrarx/tetrarx/internal/tetra"
)

// Sink is anything that can accept one fully-built, newline-terminated
// JSON line. The outbound event stream (spec §6) is an external
// collaborator; Record depends only on this interface.
type Sink interface {
	WriteLine(line []byte) error
}

// kv is one ordered key/value pair in the record.
type kv struct {
	Key   string
	Value any
}

// Record accumulates the fields of a single decoded PDU. It is not
// safe for concurrent use — the single-threaded pipeline model means
// exactly one Record is ever in flight at a time.
type Record struct {
	sink   Sink
	fields []kv
	seen   map[string]bool
}

// New creates a Record bound to sink. Call Start to begin accumulating
// fields for a PDU.
func New(sink Sink) *Record {
	return &Record{sink: sink}
}

// Start resets the accumulator and records the mandatory leading
// fields common to every event: wall-clock time, service, PDU name,
// TetraTime and (if known) the current MAC address context.
func (r *Record) Start(service, pdu string, t tetra.Time, addr tetra.Address) {
	r.fields = r.fields[:0]
	r.seen = make(map[string]bool)
	r.add("time", time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	r.add("service", service)
	r.add("pdu", pdu)
	r.add("tn", t.TN)
	r.add("fn", t.FN)
	r.add("mn", t.MN)
	if addr.Type != tetra.AddressNone {
		r.add("address_type", addr.Type.String())
		if addr.SSI != 0 {
			r.add("ssi", addr.SSI)
		}
		if addr.UsageMarker != 0 {
			r.add("usage marker", addr.UsageMarker)
		}
		r.add("encryption mode", addr.EncryptionMode)
	}
}

// Add appends a key/value pair in the order called. Keys are
// case-insensitively unique within the record: a repeat Add for a key
// already present overwrites the prior value in place rather than
// duplicating it, matching the "case-insensitively unique" contract in
// spec §6.
func (r *Record) Add(key string, value any) {
	r.add(key, value)
}

func (r *Record) add(key string, value any) {
	lower := lowerASCII(key)
	if r.seen == nil {
		r.seen = make(map[string]bool)
	}
	if r.seen[lower] {
		for i := range r.fields {
			if lowerASCII(r.fields[i].Key) == lower {
				r.fields[i].Value = value
				return
			}
		}
	}
	r.seen[lower] = true
	r.fields = append(r.fields, kv{Key: key, Value: value})
}

// AddArray appends a named JSON array field.
func (r *Record) AddArray(name string, list any) {
	r.add(name, list)
}

// AddCompressed zlib-compresses data, base64-encodes the result, and
// appends {uzsize, zsize, <field>: base64} per spec §6's compressed-
// blob convention, used for binary payloads such as speech frames.
func (r *Record) AddCompressed(field string, data []byte) error {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("compress %s: %w", field, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("compress %s: %w", field, err)
	}
	r.add("uzsize", len(data))
	r.add("zsize", buf.Len())
	r.add(field, base64.StdEncoding.EncodeToString(buf.Bytes()))
	return nil
}

// Send serializes the accumulated fields to one line of JSON,
// preserving insertion order, and writes it to the sink exactly once.
// The accumulator is left empty; no state survives Send.
func (r *Record) Send() error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(f.Key)
		if err != nil {
			return err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(f.Value)
		if err != nil {
			return err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	buf.WriteByte('\n')

	r.fields = nil
	r.seen = nil

	if r.sink == nil {
		return nil
	}
	return r.sink.WriteLine(buf.Bytes())
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
