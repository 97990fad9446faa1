// SPDX-License-Identifier: AGPL-3.0-or-later

// Package calllog appends a row to a local sqlite database for every
// call-control event the CMCE service emits. It is a passive
// projection of the outbound event stream, not a state machine: it
// never tracks a call's lifecycle across PDUs, never looks up or
// updates an existing row, and has no notion of a call being "active".
// Each row stands on its own, exactly like the event record it was
// copied from.
package calllog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/tetrarx/tetrarx/internal/event"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// callControlPDUs is the set of CMCE PDU names that represent call
// setup/teardown signalling worth attributing, as opposed to status
// or short-data traffic CMCE also carries.
var callControlPDUs = map[string]bool{
	"D-SETUP":           true,
	"D-CALL-PROCEEDING": true,
	"D-CONNECT":         true,
	"D-CONNECT ACK":     true,
	"D-ALERT":           true,
	"D-DISCONNECT":      true,
	"D-RELEASE":         true,
	"D-CALL RESTORE":    true,
	"D-TX GRANTED":      true,
	"D-TX CEASED":       true,
	"D-TX CONTINUE":     true,
	"D-TX INTERRUPT":    true,
	"D-TX WAIT":         true,
}

// Row is one call-attribution log entry, one per qualifying CMCE event
// observed on the event stream.
type Row struct {
	ID           uint      `gorm:"primarykey"`
	ObservedAt   time.Time `gorm:"index"`
	PDU          string    `gorm:"index"`
	TN           int
	FN           int
	MN           int
	AddressType  string
	SSI          uint64 `gorm:"index"`
	UsageMarker  uint64
	Detail       string
}

// Open opens (creating if necessary) a sqlite database at path and
// migrates the Row schema into it.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("calllog open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Row{}); err != nil {
		return nil, fmt.Errorf("calllog migrate: %w", err)
	}
	return db, nil
}

// Sink wraps another event.Sink, writing a Row for every call-control
// CMCE event it observes before forwarding the line unchanged.
type Sink struct {
	db   *gorm.DB
	next event.Sink
}

// New returns a Sink that logs to db and forwards every line to next.
func New(db *gorm.DB, next event.Sink) *Sink {
	return &Sink{db: db, next: next}
}

// WriteLine parses line for a qualifying CMCE call-control event,
// appends a Row if it finds one, and always forwards line to next
// regardless of the parse outcome.
func (s *Sink) WriteLine(line []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(line, &fields); err == nil {
		if service, _ := fields["service"].(string); service == "CMCE" {
			if pdu, _ := fields["pdu"].(string); callControlPDUs[pdu] {
				s.db.Create(rowFrom(fields, pdu, line))
			}
		}
	}
	return s.next.WriteLine(line)
}

func rowFrom(fields map[string]any, pdu string, line []byte) *Row {
	return &Row{
		ObservedAt:  time.Now().UTC(),
		PDU:         pdu,
		TN:          intField(fields, "tn"),
		FN:          intField(fields, "fn"),
		MN:          intField(fields, "mn"),
		AddressType: stringField(fields, "address_type"),
		SSI:         uint64(intField(fields, "ssi")),
		UsageMarker: uint64(intField(fields, "usage marker")),
		Detail:      string(line),
	}
}

func intField(fields map[string]any, key string) int {
	v, ok := fields[key].(float64)
	if !ok {
		return 0
	}
	return int(v)
}

func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string)
	return v
}
