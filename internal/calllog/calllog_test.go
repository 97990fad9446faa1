// SPDX-License-Identifier: AGPL-3.0-or-later

package calllog

import (
	"testing"
)

type captureSink struct {
	lines [][]byte
}

func (c *captureSink) WriteLine(line []byte) error {
	c.lines = append(c.lines, append([]byte(nil), line...))
	return nil
}

func TestWriteLineLogsCallControlPDU(t *testing.T) {
	t.Parallel()

	db, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	next := &captureSink{}
	sink := New(db, next)

	line := []byte(`{"time":"2026-01-01T00:00:00.000Z","service":"CMCE","pdu":"D-SETUP","tn":1,"fn":2,"mn":3,"address_type":"SSI","ssi":1234}`)
	if err := sink.WriteLine(line); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}

	if len(next.lines) != 1 {
		t.Fatalf("expected line forwarded to next sink, got %d lines", len(next.lines))
	}

	var rows []Row
	if result := db.Find(&rows); result.Error != nil {
		t.Fatalf("Find: %v", result.Error)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 logged row, got %d", len(rows))
	}
	if rows[0].PDU != "D-SETUP" {
		t.Errorf("expected pdu D-SETUP, got %q", rows[0].PDU)
	}
	if rows[0].SSI != 1234 {
		t.Errorf("expected ssi 1234, got %d", rows[0].SSI)
	}
	if rows[0].TN != 1 || rows[0].FN != 2 || rows[0].MN != 3 {
		t.Errorf("expected TN/FN/MN 1/2/3, got %d/%d/%d", rows[0].TN, rows[0].FN, rows[0].MN)
	}
}

func TestWriteLineIgnoresNonCallControlEvents(t *testing.T) {
	t.Parallel()

	db, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	next := &captureSink{}
	sink := New(db, next)

	line := []byte(`{"service":"MM","pdu":"D-LOCATION-UPDATE-ACCEPT","tn":1,"fn":1,"mn":1}`)
	if err := sink.WriteLine(line); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}

	var rows []Row
	if result := db.Find(&rows); result.Error != nil {
		t.Fatalf("Find: %v", result.Error)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no logged rows for a non-call-control event, got %d", len(rows))
	}
}

func TestWriteLineAlwaysForwardsEvenOnParseFailure(t *testing.T) {
	t.Parallel()

	db, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	next := &captureSink{}
	sink := New(db, next)

	if err := sink.WriteLine([]byte("not json")); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}
	if len(next.lines) != 1 {
		t.Fatalf("expected malformed line still forwarded, got %d lines", len(next.lines))
	}
}
