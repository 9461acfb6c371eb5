package events

import (
	"context"
	"sync"
)

const defaultBufferSize = 16

// Channel delivers one-shot events to at most one consumer at a time.
//
// While no consumer is attached, events are buffered up to the configured
// bound; the oldest event is dropped when the bound is exceeded. Subscribing
// replaces any previous consumer. Unlike a state stream, nothing is replayed
// on resubscription beyond what is still sitting in the bounded buffer.
type Channel struct {
	mu      sync.Mutex
	pending []Event
	sub     chan Event
	size    int
}

// NewChannel builds a Channel with the given buffer bound.
func NewChannel(bufferSize int) *Channel {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Channel{size: bufferSize}
}

// Publish hands the event to the active consumer, or buffers it when none is
// attached. Delivery is best effort: a full consumer buffer drops the event.
func (c *Channel) Publish(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sub != nil {
		select {
		case c.sub <- event:
		default:
		}
		return
	}

	c.pending = append(c.pending, event)
	if len(c.pending) > c.size {
		c.pending = c.pending[len(c.pending)-c.size:]
	}
}

// Subscribe attaches the single consumer and returns its delivery channel.
// Any previously attached consumer is detached and its channel closed.
// Pending buffered events are flushed to the new consumer. The subscription
// ends when ctx is cancelled.
func (c *Channel) Subscribe(ctx context.Context) <-chan Event {
	c.mu.Lock()
	if c.sub != nil {
		close(c.sub)
	}
	sub := make(chan Event, c.size)
	for _, event := range c.pending {
		sub <- event
	}
	c.pending = nil
	c.sub = sub
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.sub == sub {
			c.sub = nil
			close(sub)
		}
	}()

	return sub
}
