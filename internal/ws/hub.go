package ws

import (
	"context"
	"sync"

	"shiftmatch/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type envelope struct {
	workerID uuid.UUID
	payload  []byte
}

// Hub tracks connected workers and routes each message to the connections of
// the worker it is addressed to.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	send       chan envelope
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		send:       make(chan envelope, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		log:        logger.Component(log, "ws"),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set, ok := h.clients[client.workerID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.workerID] = set
			}
			set[client] = true
			total := h.countLocked()
			h.mutex.Unlock()
			h.log.Debug("client connected",
				zap.String(logger.FieldWorkerID, client.workerID.String()),
				zap.Int(logger.FieldCount, total),
			)

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.removeLocked(client)
			total := h.countLocked()
			h.mutex.Unlock()
			h.log.Debug("client disconnected",
				zap.String(logger.FieldWorkerID, client.workerID.String()),
				zap.Int(logger.FieldCount, total),
			)

		case msg := <-h.send:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.clients[msg.workerID]))
			for c := range h.clients[msg.workerID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.payload:
				default:
					h.mutex.Lock()
					h.removeLocked(client)
					h.mutex.Unlock()
				}
			}
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.workerID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.workerID)
	}
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// SendTo queues payload for workerID. It never blocks; a full queue drops the
// message.
func (h *Hub) SendTo(workerID uuid.UUID, payload []byte) bool {
	if h == nil {
		return false
	}
	select {
	case h.send <- envelope{workerID: workerID, payload: payload}:
		return true
	default:
		h.log.Warn("message dropped, buffer full", zap.String(logger.FieldWorkerID, workerID.String()))
		return false
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.countLocked()
}
