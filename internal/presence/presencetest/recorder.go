// Package presencetest provides an in-memory presence.Conn for tests.
package presencetest

import (
	"sync"

	"github.com/oggyb/muzz-social/internal/events"
)

// Recorder is a presence.Conn that keeps everything delivered to it.
type Recorder struct {
	id string

	mu     sync.Mutex
	events []events.Event
}

func NewRecorder(id string) *Recorder {
	return &Recorder{id: id}
}

func (r *Recorder) ID() string { return r.id }

func (r *Recorder) Deliver(ev events.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return true
}

// Events returns a copy of everything delivered so far.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// Kinds returns the kinds delivered so far, in order.
func (r *Recorder) Kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Kind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind()
	}
	return out
}

// Count returns how many events of kind k were delivered.
func (r *Recorder) Count(k events.Kind) int {
	n := 0
	for _, got := range r.Kinds() {
		if got == k {
			n++
		}
	}
	return n
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
