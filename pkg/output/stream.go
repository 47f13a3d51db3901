// Copyright 2025 Reconcore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package output

import "sync"

// OutputSubscriber renders scan-progress OutputEvents. The CLI's
// `--progress` flag wires exactly one implementation (DiagnosticSubscriber)
// today, but Emit dispatches to however many are registered.
type OutputSubscriber interface {
	// Handle renders one event. Called synchronously from Emit.
	Handle(event OutputEvent)

	// Name identifies the subscriber for logging.
	Name() string

	// ShouldHandle lets a subscriber filter by verbosity or anything else
	// about the event before Handle is called.
	ShouldHandle(event OutputEvent) bool
}

// OutputEventStream fans a scan's progress events out to its subscribers,
// synchronously and in registration order. Events reach Emit from
// event.Bus handlers, each of which runs on its own goroutine, so the
// order of lines on stderr can differ from the order stages completed.
type OutputEventStream struct {
	subscribers []OutputSubscriber
	mu          sync.RWMutex
}

// NewOutputEventStream creates a stream with no subscribers.
func NewOutputEventStream() *OutputEventStream {
	return &OutputEventStream{}
}

// Subscribe registers sub to receive every event Emit is given from here on.
func (s *OutputEventStream) Subscribe(sub OutputSubscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, sub)
}

// Emit hands event to every subscriber whose ShouldHandle accepts it.
func (s *OutputEventStream) Emit(event OutputEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subscribers {
		if sub.ShouldHandle(event) {
			sub.Handle(event)
		}
	}
}

// SubscriberCount reports how many subscribers are registered.
func (s *OutputEventStream) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
