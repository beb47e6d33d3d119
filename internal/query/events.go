package query

import (
	"context"
	"sync"
)

// EventType names a committed state transition.
type EventType string

const (
	EventFetching    EventType = "fetching"
	EventSuccess     EventType = "success"
	EventError       EventType = "error"
	EventCanceled    EventType = "canceled"
	EventInvalidated EventType = "invalidated"
	EventHydrated    EventType = "hydrated"
	EventRemoved     EventType = "removed"
)

// Event is delivered to Watch channels.
type Event struct {
	Type  EventType
	Key   Key
	State State
}

type eventBroadcaster struct {
	mu       sync.Mutex
	watchers map[uint64]chan Event
	nextID   uint64
}

func newEventBroadcaster() *eventBroadcaster {
	return &eventBroadcaster{watchers: make(map[uint64]chan Event)}
}

func (b *eventBroadcaster) Subscribe(ctx context.Context, buffer int) <-chan Event {
	if ctx == nil {
		ctx = context.Background()
	}
	if buffer < 1 {
		buffer = 1
	}
	if ctx.Err() != nil {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.watchers[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.watchers, id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch
}

// Broadcast never blocks; slow watchers miss events. Sends happen under the
// lock so a watcher cannot be closed mid-send.
func (b *eventBroadcaster) Broadcast(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.watchers {
		select {
		case ch <- evt:
		default:
		}
	}
}
