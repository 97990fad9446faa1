// SPDX-License-Identifier: AGPL-3.0-or-later

// Package eventsocket fans the outbound event stream out to connected
// websocket clients, so a browser can tail decode events live instead
// of only reading the sink file. Hub wraps another event.Sink: every
// line it receives is both forwarded downstream and broadcast to
// whichever clients are currently subscribed.
package eventsocket

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tetrarx/tetrarx/internal/event"
)

const clientBuffer = 64

// Hub is an event.Sink that mirrors every line to subscribed websocket
// clients before forwarding it to next.
type Hub struct {
	mu       sync.Mutex
	clients  map[chan []byte]struct{}
	next     event.Sink
	upgrader websocket.Upgrader
}

// New returns a Hub forwarding every line to next.
func New(next event.Sink) *Hub {
	return &Hub{
		clients: make(map[chan []byte]struct{}),
		next:    next,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  clientBuffer,
			WriteBufferSize: clientBuffer,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// WriteLine implements event.Sink: it broadcasts line to every
// subscriber, dropping it for any client whose buffer is full rather
// than blocking the decode pipeline, and always forwards to next.
func (h *Hub) WriteLine(line []byte) error {
	h.mu.Lock()
	for ch := range h.clients {
		select {
		case ch <- line:
		default:
		}
	}
	h.mu.Unlock()
	return h.next.WriteLine(line)
}

func (h *Hub) subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

// ServeHTTP upgrades the connection and streams every subsequently
// emitted event line to it until the client disconnects or a write
// fails.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("eventsocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	readFailed := make(chan struct{})
	go func() {
		defer close(readFailed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-readFailed:
			return
		case line, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, line); err != nil {
				return
			}
		}
	}
}
