package usecases

import (
	"sync"

	"github.com/sand/bot-marketplace/backend/internal/entities"
)

const subscriberBuffer = 32

// LogHub fans new system log entries out to live subscribers.
// Slow subscribers miss entries instead of blocking writers.
type LogHub struct {
	mu          sync.RWMutex
	subscribers map[chan entities.SystemLog]struct{}
}

func NewLogHub() *LogHub {
	return &LogHub{subscribers: make(map[chan entities.SystemLog]struct{})}
}

// Subscribe registers a subscriber. The returned function unregisters it and
// closes the channel.
func (h *LogHub) Subscribe() (<-chan entities.SystemLog, func()) {
	ch := make(chan entities.SystemLog, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers entry to every subscriber with room in its buffer.
func (h *LogHub) Publish(entry entities.SystemLog) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- entry:
		default:
		}
	}
}

// Subscribers returns the number of live subscribers.
func (h *LogHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
