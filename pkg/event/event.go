// Package event implements the progress-notification bus a running
// Controller publishes to and a CLI output stream subscribes from. Unlike
// a general-purpose pub-sub bus, its payload is the pipeline's own
// ScanProgress shape rather than an opaque interface{}: there is exactly
// one kind of thing this bus ever carries.
package event

import (
	"context"
	"sync"
)

// ScanProgress is one coarse-grained progress notification (§4.5):
// losing one never affects correctness, so Publish fans it out without
// waiting for handlers to keep up.
type ScanProgress struct {
	ScanID  string
	Target  string
	Stage   string
	Message string
	Percent int
}

// Handler reacts to a ScanProgress notification.
type Handler func(ctx context.Context, progress ScanProgress)

// Bus is the progress event bus. A single Bus is shared by one Controller
// run (or a batch of them); topics let a future layer other than "scan
// progress" subscribe independently without consuming each other's events.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
}

// New creates a new, empty progress bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[string][]Handler),
	}
}

// Subscribe registers handler to run for every ScanProgress published on
// topic.
func (b *Bus) Subscribe(topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], handler)
}

// Publish fans progress out to every handler subscribed to topic. Handlers
// run concurrently and asynchronously: a slow or stuck subscriber never
// blocks the scan that produced the event.
func (b *Bus) Publish(ctx context.Context, topic string, progress ScanProgress) {
	b.mu.RLock()
	handlers := append([]Handler{}, b.subscribers[topic]...)
	b.mu.RUnlock()
	for _, handler := range handlers {
		go handler(ctx, progress)
	}
}
