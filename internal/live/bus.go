// Package live provides the real-time data-binding layer: a topic bus that
// fans out invalidation signals, and watchers that turn those signals into
// full snapshots of a collection or document.
package live

import "sync"

// Topic helpers. Every mutation publishes the room-scoped topic for the
// record kind plus the owner's rooms topic, so both per-room watchers and
// cross-room dashboards refresh.
func RoomTopic(roomID, kind string) string {
	return "rooms/" + roomID + "/" + kind
}

func OwnerRoomsTopic(ownerID string) string {
	return "users/" + ownerID + "/rooms"
}

// Bus is an in-process publish/subscribe channel for invalidation signals.
// Signals carry no payload; a subscriber re-reads its source on each one.
// Pending signals coalesce, so a slow subscriber sees at least one signal
// after the last publish rather than one per publish.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[chan struct{}]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers interest in a topic. The returned cancel func must be
// called exactly once when done; afterwards no further signals arrive.
func (b *Bus) Subscribe(topic string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan struct{}]struct{})
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[topic], ch)
			if len(b.subs[topic]) == 0 {
				delete(b.subs, topic)
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish signals every subscriber of the topic without blocking.
func (b *Bus) Publish(topic string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
			// A signal is already pending, coalesce
		}
	}
}

// SubscriberCount reports the number of active subscriptions on a topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
