// Package metrics keeps per-event-type processing counters. The real sink is
// an external collaborator; counters here back the log lines and tests.
package metrics

import (
	"io"
	"log"
	"sync"
)

type EventCounts struct {
	Attempted int64
	Succeeded int64
	Failed    int64
}

type Recorder struct {
	mu     sync.Mutex
	counts map[string]*EventCounts
	logger *log.Logger
}

func NewRecorder(logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Recorder{counts: make(map[string]*EventCounts), logger: logger}
}

func (r *Recorder) Attempt(eventType string) {
	r.bump(eventType, func(c *EventCounts) { c.Attempted++ })
}

func (r *Recorder) Success(eventType string) {
	r.bump(eventType, func(c *EventCounts) { c.Succeeded++ })
}

func (r *Recorder) Failure(eventType string) {
	r.bump(eventType, func(c *EventCounts) { c.Failed++ })
}

// Snapshot returns a copy of the current counters.
func (r *Recorder) Snapshot() map[string]EventCounts {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]EventCounts, len(r.counts))
	for k, v := range r.counts {
		out[k] = *v
	}
	return out
}

func (r *Recorder) bump(eventType string, f func(*EventCounts)) {
	r.mu.Lock()
	c, ok := r.counts[eventType]
	if !ok {
		c = &EventCounts{}
		r.counts[eventType] = c
	}
	f(c)
	snapshot := *c
	r.mu.Unlock()

	r.logger.Printf("metrics: event_type=%s attempted=%d succeeded=%d failed=%d",
		eventType, snapshot.Attempted, snapshot.Succeeded, snapshot.Failed)
}
