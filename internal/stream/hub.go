package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans live location updates out to watchers of a tracking token. With a
// redis client it also relays updates across instances via pub/sub.
type Hub struct {
	redis    *redis.Client
	watchers map[string]map[*Watcher]struct{}
	mu       sync.RWMutex
}

type Watcher struct {
	Token string
	Send  chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:    redisClient,
		watchers: map[string]map[*Watcher]struct{}{},
	}

	if redisClient != nil {
		go h.relayRedis()
	}
	return h
}

func (h *Hub) Register(token string) *Watcher {
	watcher := &Watcher{
		Token: token,
		Send:  make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[token] == nil {
		h.watchers[token] = map[*Watcher]struct{}{}
	}
	h.watchers[token][watcher] = struct{}{}
	return watcher
}

func (h *Hub) Unregister(watcher *Watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if tokenWatchers, ok := h.watchers[watcher.Token]; ok {
		delete(tokenWatchers, watcher)
		if len(tokenWatchers) == 0 {
			delete(h.watchers, watcher.Token)
		}
	}
	close(watcher.Send)
}

// Broadcast delivers payload to local watchers of token and publishes it for
// other instances. Slow watchers are skipped rather than blocked on.
func (h *Hub) Broadcast(token string, payload []byte) {
	h.mu.RLock()
	watchers := h.watchers[token]
	h.mu.RUnlock()

	for watcher := range watchers {
		select {
		case watcher.Send <- payload:
		default:
		}
	}

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), updateChannel(token), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) relayRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "location:*:updates")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		token := tokenFromChannel(msg.Channel)
		h.mu.RLock()
		watchers := h.watchers[token]
		h.mu.RUnlock()
		for watcher := range watchers {
			select {
			case watcher.Send <- []byte(msg.Payload):
			default:
			}
		}
	}
}

func updateChannel(token string) string {
	return "location:" + token + ":updates"
}

func tokenFromChannel(ch string) string {
	// location:{token}:updates
	const prefix = "location:"
	const suffix = ":updates"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
