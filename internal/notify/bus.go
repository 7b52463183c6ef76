package notify

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType identifies a lifecycle event on the bus.
type EventType string

const (
	EventTaskRejected   EventType = "task_rejected"
	EventTaskAccepted   EventType = "task_accepted"
	EventSessionStarted EventType = "session_started"
	EventSessionStopped EventType = "session_stopped"
)

// Event is a bus message describing a lifecycle transition.
type Event struct {
	ID         string
	Type       EventType
	ResourceID string
	ActorID    string
	CreatedAt  time.Time
}

// Bus is an in-process fan-out of lifecycle events. Delivery is best effort:
// a subscriber with a full buffer misses the event rather than blocking the
// publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]chan Event),
	}
}

func (b *Bus) Subscribe(bufSize int) (string, <-chan Event) {
	id := ulid.Make().String()
	ch := make(chan Event, bufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Bus) Publish(eventType EventType, resourceID, actorID string) {
	event := Event{
		ID:         ulid.Make().String(),
		Type:       eventType,
		ResourceID: resourceID,
		ActorID:    actorID,
		CreatedAt:  time.Now().UTC(),
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// buffer full, drop event for this subscriber
		}
	}
}
