package agentgraph

import (
	"context"
	"sync"
	"time"
)

// Stream delivers the ordered events of one run to a single consumer.
//
// Events arrive in execution order. Every run ends with exactly one
// terminal event (EventRunCompleted or EventRunFailed), after which the
// channel is closed. The terminal event has a reserved slot of its own:
// buffer pressure from a slow consumer can delay it but never displace
// it.
type Stream struct {
	threadID string
	runID    string

	events   chan Event
	terminal chan Event
	out      chan Event
	cancel   context.CancelFunc
	once     sync.Once
}

func newStream(threadID, runID string, buffer int, cancel context.CancelFunc) *Stream {
	if buffer < 1 {
		buffer = 1
	}
	s := &Stream{
		threadID: threadID,
		runID:    runID,
		events:   make(chan Event, buffer),
		terminal: make(chan Event, 1),
		out:      make(chan Event, buffer),
		cancel:   cancel,
	}
	go s.forward()
	return s
}

// forward moves produced events to the consumer in order, then appends
// the terminal event once the producer is done. terminate fills the
// terminal slot before closing events, so the final receive cannot
// block.
func (s *Stream) forward() {
	for ev := range s.events {
		s.out <- ev
	}
	s.out <- <-s.terminal
	close(s.out)
}

// ThreadID returns the thread this run belongs to.
func (s *Stream) ThreadID() string { return s.threadID }

// RunID returns the unique identifier of this run.
func (s *Stream) RunID() string { return s.runID }

// Events returns the event channel. It is closed after the terminal
// event has been delivered.
func (s *Stream) Events() <-chan Event { return s.out }

// Cancel requests cooperative cancellation of the run. The run stops at
// its next suspension point and the stream ends with an EventRunFailed
// carrying the cancellation cause.
func (s *Stream) Cancel() { s.cancel() }

// Wait drains the stream until the terminal event and returns it.
// Useful for callers that don't care about intermediate events.
func (s *Stream) Wait() Event {
	var last Event
	for ev := range s.out {
		last = ev
	}
	return last
}

// emit delivers one event in order, blocking until there is room.
// Returns false if ctx was cancelled before delivery; the event is
// dropped and the run should wind down to its terminal event.
func (s *Stream) emit(ctx context.Context, ev Event) bool {
	ev.ThreadID = s.threadID
	ev.RunID = s.runID
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// terminate records the terminal event and closes the stream. The
// reserved slot means the send never blocks and is never dropped: a
// consumer still reading observes every buffered event and then the
// terminal event before the channel closes.
func (s *Stream) terminate(ev Event) {
	s.once.Do(func() {
		ev.ThreadID = s.threadID
		ev.RunID = s.runID
		if ev.At.IsZero() {
			ev.At = time.Now().UTC()
		}
		s.terminal <- ev
		close(s.events)
	})
}
