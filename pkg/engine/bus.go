package engine

import (
	"sync"

	"github.com/google/uuid"
)

// Bus is an in-process pub/sub channel for domain events such as
// EventItemUpdated. A component that mutates server state announces the
// change with Trigger; independent views listen and refetch without the
// mutating component knowing who they are.
type Bus struct {
	mu   sync.Mutex
	subs map[string]map[string]func(detail any)
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]map[string]func(detail any)),
	}
}

// Listen registers fn for event and returns a function revoking exactly
// this subscription. Owners must call it on teardown so discarded views
// do not leak callbacks.
func (b *Bus) Listen(event string, fn func(detail any)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	if b.subs[event] == nil {
		b.subs[event] = make(map[string]func(detail any))
	}
	b.subs[event][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		delete(b.subs[event], id)
	}
}

// Trigger invokes every callback registered for event. Callbacks run
// synchronously on the calling goroutine, outside the registry lock so
// they may Listen or unsubscribe themselves.
func (b *Bus) Trigger(event string, detail any) {
	b.mu.Lock()
	callbacks := make([]func(detail any), 0, len(b.subs[event]))
	for _, fn := range b.subs[event] {
		callbacks = append(callbacks, fn)
	}
	b.mu.Unlock()

	for _, fn := range callbacks {
		fn(detail)
	}
}

// Listeners reports how many subscriptions exist for event.
func (b *Bus) Listeners(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs[event])
}
