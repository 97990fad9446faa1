// SPDX-License-Identifier: AGPL-3.0-or-later

package eventsink

import (
	"bufio"
	"fmt"
	"net"
	"testing"
	"time"
)

func TestDialRejectsUnsupportedScheme(t *testing.T) {
	t.Parallel()

	if _, err := Dial("zmq://localhost:42100"); err == nil {
		t.Fatal("expected an error for a non-tcp scheme")
	}
}

func TestWriteLineDeliversNewlineDelimitedJSON(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	received := make(chan string, 2)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			received <- scanner.Text()
		}
	}()

	addr := fmt.Sprintf("tcp://%s", listener.Addr().String())
	client, err := Dial(addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	if err := client.WriteLine([]byte(`{"event":"one"}`)); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}
	if err := client.WriteLine([]byte(`{"event":"two"}`)); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}

	select {
	case line := <-received:
		if line != `{"event":"one"}` {
			t.Errorf("expected first line %q, got %q", `{"event":"one"}`, line)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first line")
	}

	select {
	case line := <-received:
		if line != `{"event":"two"}` {
			t.Errorf("expected second line %q, got %q", `{"event":"two"}`, line)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for second line")
	}
}
