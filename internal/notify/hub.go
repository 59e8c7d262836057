package notify

import (
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// backlogSize bounds how many past toasts a reconnecting page can replay.
const backlogSize = 64

type subscription struct {
	conn  *websocket.Conn
	send  chan []byte
	after uint64
}

// Hub fans toasts out to every connected browser tab. Each toast gets a sequence
// number so a page that connects late (after a redirect) can ask for the ones it
// missed.
type Hub struct {
	logger *log.Logger

	mu      sync.Mutex
	seq     uint64
	backlog []Toast
	clients map[*websocket.Conn]*subscription

	broadcast  chan Toast
	register   chan *subscription
	unregister chan *websocket.Conn
	done       chan struct{}
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*websocket.Conn]*subscription),
		broadcast:  make(chan Toast, 64),
		register:   make(chan *subscription),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Seq is the sequence number of the latest toast.
func (h *Hub) Seq() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.seq
}

// Since returns the buffered toasts newer than after, oldest first.
func (h *Hub) Since(after uint64) []Toast {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sinceLocked(after)
}

func (h *Hub) sinceLocked(after uint64) []Toast {
	var out []Toast
	for _, t := range h.backlog {
		if t.Seq > after {
			out = append(out, t)
		}
	}
	return out
}

// Notify records t and queues it for delivery. It never blocks: when the queue is
// full the toast is still replayable from the backlog.
func (h *Hub) Notify(t Toast) {
	h.mu.Lock()
	h.seq++
	t.Seq = h.seq
	h.backlog = append(h.backlog, t)
	if len(h.backlog) > backlogSize {
		h.backlog = h.backlog[len(h.backlog)-backlogSize:]
	}
	h.mu.Unlock()

	select {
	case h.broadcast <- t:
	default:
		h.logger.Warn("toast queue full, live delivery skipped", "seq", t.Seq)
	}
}

// Run handles registration and broadcasting until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			missed := h.sinceLocked(sub.after)
			h.clients[sub.conn] = sub
			h.mu.Unlock()
			for _, t := range missed {
				h.deliver(sub, t)
			}
			h.logger.Debug("toast client connected", "remote", sub.conn.RemoteAddr().String(), "replayed", len(missed))

		case conn := <-h.unregister:
			h.mu.Lock()
			if sub, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				close(sub.send)
				h.logger.Debug("toast client disconnected", "remote", conn.RemoteAddr().String())
			}
			h.mu.Unlock()

		case t := <-h.broadcast:
			h.mu.Lock()
			for _, sub := range h.clients {
				h.deliver(sub, t)
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for conn, sub := range h.clients {
				delete(h.clients, conn)
				close(sub.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	close(h.done)
}

// Clients returns the number of connected tabs.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// deliver skips toasts the subscriber already has, so a replay racing a live
// broadcast never shows the same toast twice.
func (h *Hub) deliver(sub *subscription, t Toast) {
	if t.Seq <= sub.after {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		h.logger.Error("marshal toast", "err", err)
		return
	}
	select {
	case sub.send <- data:
		sub.after = t.Seq
	default:
		h.logger.Warn("toast client send channel full", "remote", sub.conn.RemoteAddr().String())
	}
}
