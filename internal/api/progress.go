package api

import (
	"encoding/json"
	"sync"
)

// ProgressFrame is one progress notification pushed to WebSocket
// subscribers of a run, the concrete transport for spec.md §1's
// "progress reporting" external collaborator.
type ProgressFrame struct {
	Completed       int    `json:"completed"`
	Total           int    `json:"total"`
	CurrentStrategy string `json:"current_strategy"`
	ElapsedMs       int64  `json:"elapsed_ms"`
}

// ProgressHub fans out ProgressFrames to every subscriber of one run.
// Grounded on the reference backend's internal/api websocket.go Hub
// (register/unregister channels guarding a client set, broadcast channel
// feeding every client's buffered send channel), trimmed to one message
// type instead of the full order/position/signal taxonomy.
type ProgressHub struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}
}

// NewProgressHub returns an empty hub.
func NewProgressHub() *ProgressHub {
	return &ProgressHub{clients: make(map[chan []byte]struct{})}
}

// Subscribe registers a new buffered client channel and returns it along
// with an unsubscribe function the caller must invoke when done.
func (h *ProgressHub) Subscribe() (ch chan []byte, unsubscribe func()) {
	ch = make(chan []byte, 32)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
}

// Publish marshals frame and fans it out to every current subscriber,
// dropping it for any client whose buffer is full rather than blocking
// the batch worker that called it.
func (h *ProgressHub) Publish(frame ProgressFrame) {
	b, err := json.Marshal(frame)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- b:
		default:
		}
	}
}
