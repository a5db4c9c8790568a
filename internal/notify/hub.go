package notify

import (
	"sync"
	"time"

	"awareness_bell/internal/logger"
	"awareness_bell/internal/models"
)

const subscriberBuffer = 16

// Hub is the display channel. Every notification is logged to the console
// and fanned out to live subscribers (the WebSocket feed).
type Hub struct {
	log *logger.Logger
	now func() time.Time

	mu   sync.RWMutex
	subs map[chan models.Notification]struct{}
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		log:  log,
		now:  time.Now,
		subs: make(map[chan models.Notification]struct{}),
	}
}

// Subscribe returns a buffered feed and a cancel func that must be called
// when the subscriber goes away.
func (h *Hub) Subscribe() (<-chan models.Notification, func()) {
	ch := make(chan models.Notification, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish never blocks; a subscriber with a full buffer misses the message.
func (h *Hub) Publish(n models.Notification) {
	if n.At.IsZero() {
		n.At = h.now()
	}
	switch n.Kind {
	case models.NotificationError:
		h.log.Warnw("notification", "kind", n.Kind, "text", n.Text)
	default:
		h.log.Infow("notification", "kind", n.Kind, "text", n.Text)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- n:
		default:
			h.log.Debugw("notification_dropped", "kind", n.Kind)
		}
	}
}

// Display shows a quote.
func (h *Hub) Display(text string) {
	h.Publish(models.Notification{Kind: models.NotificationQuote, Text: text})
}

// Subscribers reports the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
