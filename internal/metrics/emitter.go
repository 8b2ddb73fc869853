package metrics

import (
	"sync"
	"sync/atomic"
)

// DefaultEventBuffer is the default capacity of the event channel.
const DefaultEventBuffer = 1024

// Emitter is the bounded, drop-on-full channel between request handlers and
// the Aggregator.
//
// TrySend never blocks: when the buffer is full the event is discarded and
// counted. Close must be called only after all producers have stopped
// sending; sends after Close are dropped rather than panicking.
type Emitter struct {
	ch      chan Event
	dropped atomic.Uint64

	mu     sync.RWMutex
	closed bool
}

// NewEmitter creates an emitter with the given buffer capacity.
func NewEmitter(capacity int) *Emitter {
	if capacity <= 0 {
		capacity = DefaultEventBuffer
	}
	return &Emitter{ch: make(chan Event, capacity)}
}

// TrySend enqueues ev without blocking. It reports whether the event was
// accepted.
func (e *Emitter) TrySend(ev Event) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		e.dropped.Add(1)
		return false
	}

	select {
	case e.ch <- ev:
		return true
	default:
		e.dropped.Add(1)
		return false
	}
}

// Events returns the receive side of the channel.
func (e *Emitter) Events() <-chan Event {
	return e.ch
}

// Dropped returns the number of events discarded so far.
func (e *Emitter) Dropped() uint64 {
	return e.dropped.Load()
}

// Close closes the channel. Buffered events remain readable.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	close(e.ch)
}
