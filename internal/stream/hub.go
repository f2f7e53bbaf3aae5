package stream

import (
	"sync"
	"time"
)

const defaultSubscriberBufSize = 64

// Event is one state-change notification pushed to the page. Seq is assigned
// at publish time and is strictly increasing, so subscribers observe
// settlements in the order they were applied.
type Event struct {
	Seq    uint64 `json:"seq"`
	TS     string `json:"ts"`
	Type   string `json:"type"`
	RunID  string `json:"run_id,omitempty"`
	Year   int    `json:"year,omitempty"`
	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Event types published by the orchestrator.
const (
	TypeSnapshot    = "snapshot"
	TypeRunStarted  = "run.started"
	TypeCardUpdated = "card.updated"
	TypeRunFinished = "run.finished"
)

// Hub fans events out to SSE subscribers. Delivery to a subscriber is
// non-blocking: a subscriber that cannot keep up loses events rather than
// stalling the publisher.
type Hub struct {
	mu      sync.Mutex
	nextSeq uint64
	subs    map[chan Event]struct{}
	bufSize int
}

// NewHub creates a hub with the given per-subscriber buffer size.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = defaultSubscriberBufSize
	}
	return &Hub{
		subs:    make(map[chan Event]struct{}),
		bufSize: bufSize,
	}
}

// Publish stamps the event with a sequence number and timestamp and delivers
// it to every subscriber. The stamped event is returned. Delivery happens
// under the hub lock: unsubscribe closes channels under the same lock, so a
// publish can never race a close.
func (h *Hub) Publish(event Event) Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextSeq++
	event.Seq = h.nextSeq
	if event.TS == "" {
		event.TS = time.Now().UTC().Format(time.RFC3339Nano)
	}
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return event
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function. Unsubscribing closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.bufSize)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, unsubscribe
}
