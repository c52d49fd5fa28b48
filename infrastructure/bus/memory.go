// Package bus provides integration-bus adapters: an in-memory bus for
// tests and memory persistence, and a Redis pub/sub bus.
package bus

import (
	"context"
	"sync"

	"github.com/praxisops/praxis/domain/ops"
)

// Memory is an in-process ops.IntegrationBus that records published
// events and fans them out to subscribers.
type Memory struct {
	mu          sync.RWMutex
	events      []ops.BusEvent
	subscribers []chan ops.BusEvent
}

// NewMemory creates an empty in-memory bus.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish records the event and delivers it to subscribers that are
// ready to receive. Slow subscribers miss events rather than block.
func (b *Memory) Publish(_ context.Context, event ops.BusEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, event)
	for _, sub := range b.subscribers {
		select {
		case sub <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a buffered channel receiving future events.
func (b *Memory) Subscribe() <-chan ops.BusEvent {
	ch := make(chan ops.BusEvent, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Events returns a copy of everything published so far.
func (b *Memory) Events() []ops.BusEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]ops.BusEvent, len(b.events))
	copy(out, b.events)
	return out
}

// Names returns the event names published so far, in order.
func (b *Memory) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, len(b.events))
	for i, e := range b.events {
		names[i] = e.Name
	}
	return names
}
