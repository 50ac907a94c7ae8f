package broadcast

import (
	"FreshMart-Backend/domain"
	"sync"

	"github.com/rs/zerolog"
)

const subscriberBuffer = 16

// Hub fans freshness events out to subscribers. Publish never blocks: when a
// subscriber's buffer is full the event is dropped for that subscriber.
// Delivery is best-effort, at-most-once, with no replay.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan domain.FreshnessEvent]struct{}
	log         zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[chan domain.FreshnessEvent]struct{}),
		log:         log.With().Str("component", "broadcast").Logger(),
	}
}

func (h *Hub) Publish(event domain.FreshnessEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			h.log.Debug().
				Str("product_id", event.ProductID).
				Msg("Subscriber buffer full, event dropped")
		}
	}
}

// Subscribe registers a new listener. The returned func unregisters it and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan domain.FreshnessEvent, func()) {
	ch := make(chan domain.FreshnessEvent, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, unsubscribe
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
