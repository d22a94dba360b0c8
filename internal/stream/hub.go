package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans view updates out to every map client following a view session.
// Redis pub/sub bridges instances so all devices of a participant stay on
// the same map state regardless of which instance they connect to.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	ViewID string
	Send   chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(viewID string) *Client {
	client := &Client{
		ViewID: viewID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[viewID] == nil {
		h.clients[viewID] = map[*Client]struct{}{}
	}
	h.clients[viewID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if viewClients, ok := h.clients[client.ViewID]; ok {
		delete(viewClients, client)
		if len(viewClients) == 0 {
			delete(h.clients, client.ViewID)
		}
	}
	close(client.Send)
}

func (h *Hub) Broadcast(viewID string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[viewID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(viewID), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "view:*:updates")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		viewID := viewIDFromChannel(msg.Channel)
		h.mu.RLock()
		clients := h.clients[viewID]
		h.mu.RUnlock()
		for client := range clients {
			select {
			case client.Send <- []byte(msg.Payload):
			default:
			}
		}
	}
}

func redisChannel(viewID string) string {
	return "view:" + viewID + ":updates"
}

func viewIDFromChannel(ch string) string {
	// view:{id}:updates
	const prefix = "view:"
	const suffix = ":updates"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
