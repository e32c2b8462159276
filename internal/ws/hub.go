package ws

import (
	"log/slog"
	"sync"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"
)

// Hub fans balance snapshots out to every live socket of a user
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	log     *slog.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		log:     logger.Component("ws_hub"),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	h.log.Debug("client registered", "user_id", c.UserID, "connections", len(set))
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; ok {
		delete(set, c)
		close(c.Send)
	}
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
}

// Connections returns the number of live sockets of a user
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Deliver sends a snapshot to this instance's sockets only
func (h *Hub) Deliver(rec domain.BalanceRecord) int {
	frame := BalanceFrame(rec)

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for c := range h.clients[rec.UserID] {
		select {
		case c.Send <- frame:
			sent++
		default:
			// slow consumer; its next poll catches up
			h.log.Warn("dropping balance frame for slow client", "user_id", rec.UserID)
		}
	}
	return sent
}

// Consume delivers every snapshot from ch until it is closed
func (h *Hub) Consume(ch <-chan domain.BalanceRecord) {
	go func() {
		for rec := range ch {
			h.Deliver(rec)
		}
	}()
}
