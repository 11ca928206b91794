package events

import "sync"

// Kind identifies what changed.
type Kind int

const (
	// KindProgressInvalidated means cached progress was cleared in bulk;
	// observers should re-query rather than wait for a stale read.
	KindProgressInvalidated Kind = iota

	// KindTrashChanged means the pending-delete set changed
	// (recover, permanent delete, or external reconciliation).
	KindTrashChanged

	// KindOverlayReset means the whole triage overlay was cleared.
	KindOverlayReset
)

// Event is a change notification delivered to subscribers.
type Event struct {
	Kind Kind
}

// Bus broadcasts change notifications to decoupled observers.
// Publishers never know who is listening; sends never block (a slow
// subscriber misses events rather than stalling a swipe).
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new observer. The returned cancel func removes the
// subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, 8)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber (non-blocking if full).
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default: // Non-blocking if channel full
		}
	}
}
