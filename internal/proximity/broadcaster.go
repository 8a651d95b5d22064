package proximity

import (
	"sync"
	"sync/atomic"
)

const subscriberBuffer = 100

// Broadcaster fans warnings out to every subscriber. A subscriber whose
// buffer is full misses the warning instead of blocking the publisher.
type Broadcaster struct {
	subscribers map[uint64]chan *Warning
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *Warning),
	}
}

func (b *Broadcaster) Subscribe() (uint64, <-chan *Warning) {
	id := b.nextID.Add(1)
	ch := make(chan *Warning, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Publish returns how many subscribers received w.
func (b *Broadcaster) Publish(w *Warning) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, ch := range b.subscribers {
		select {
		case ch <- w:
			delivered++
		default:
		}
	}
	return delivered
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel so stream consumers exit.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
