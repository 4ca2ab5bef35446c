package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/metrics"
)

// Hub tracks the connected websocket sessions
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex
	metrics *metrics.Metrics
	logger  *slog.Logger

	// ctx is the parent of every session context; Close cancels it
	ctx    context.Context
	cancel context.CancelFunc

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopped    chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub
func NewHub(metrics *metrics.Metrics, logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "realtime-hub")),
		ctx:        ctx,
		cancel:     cancel,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	defer close(h.stopped)
	h.logger.Info("realtime hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.metrics.SessionOpened()
			h.logger.Info("session registered",
				slog.String("session_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				clientCount := len(h.clients)
				h.mu.Unlock()
				client.shutdown()
				h.metrics.SessionClosed()
				h.logger.Info("session unregistered",
					slog.String("session_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				client.shutdown()
				delete(h.clients, client)
				h.metrics.SessionClosed()
			}
			h.mu.Unlock()
			h.logger.Info("realtime hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub. It reports false once the hub is closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Context returns the context sessions derive their request contexts from
func (h *Hub) Context() context.Context {
	return h.ctx
}

// Close disconnects every client and stops the hub. Safe to call repeatedly.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.cancel()
		close(h.done)
	})
}

// Wait blocks until Run has returned
func (h *Hub) Wait() {
	<-h.stopped
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
