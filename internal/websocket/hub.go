// Package websocket pushes entry-created events to the importing user's
// open connections, so an upload screen can show records as they land.
package websocket

import (
	"encoding/json"
	"sync"
)

// EntryUpdate is one created subledger record, as broadcast after a batch
// commits.
type EntryUpdate struct {
	Kind          string `json:"kind"`
	EntryID       string `json:"entry_id"`
	TransactionID string `json:"transaction_id"`
	Date          string `json:"date"`
	Value         string `json:"value"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// BroadcastEntry fans an update out to the user's connections. Slow
// consumers are skipped rather than blocking the import response.
func (h *Hub) BroadcastEntry(userID string, update EntryUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
