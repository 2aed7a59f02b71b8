package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// subscriberBuffer bounds queued events per subscriber
const subscriberBuffer = 64

// Hub fans progress events out to subscribers.
// A subscriber whose buffer is full misses events instead of stalling the run.
type Hub struct {
	mu      sync.RWMutex
	subs    map[chan Event]struct{}
	closed  bool
	dropped uint64
	log     zerolog.Logger
}

// NewHub creates an event hub
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[chan Event]struct{}),
		log:  log.With().Str("component", "realtime.hub").Logger(),
	}
}

// Subscribe registers a new subscriber. The channel is closed by Unsubscribe or Close.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Publish implements Publisher
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.dropped++
			h.log.Debug().Str("type", string(ev.Type)).Str("run_id", ev.RunID).Msg("subscriber slow, event dropped")
		}
	}
}

// Subscribers returns the number of active subscribers
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped for slow subscribers
func (h *Hub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Close closes every subscriber. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		close(ch)
	}
	h.subs = nil
}
