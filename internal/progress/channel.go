package progress

// DefaultCapacity bounds the queue when the caller does not choose one.
const DefaultCapacity = 1000

// Channel is a bounded multi-producer, single-consumer event queue. Producers
// block when it is full; the consumer drains it without blocking, typically
// once per render frame.
type Channel struct {
	ch chan Event
}

// NewChannel returns a Channel holding up to capacity undelivered events.
func NewChannel(capacity int) *Channel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Channel{ch: make(chan Event, capacity)}
}

// Send enqueues ev, waiting for space when the queue is full.
func (c *Channel) Send(ev Event) {
	c.ch <- ev
}

// Drain returns up to limit queued events without blocking. A limit of zero
// or less drains everything queued at the time of the call.
func (c *Channel) Drain(limit int) []Event {
	n := len(c.ch)
	if limit > 0 && limit < n {
		n = limit
	}
	if n == 0 {
		return nil
	}
	out := make([]Event, 0, n)
	for len(out) < n {
		select {
		case ev := <-c.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
	return out
}

// C exposes the receive side for select-based consumers.
func (c *Channel) C() <-chan Event {
	return c.ch
}

// Len returns the number of queued events.
func (c *Channel) Len() int {
	return len(c.ch)
}

// Cap returns the queue capacity.
func (c *Channel) Cap() int {
	return cap(c.ch)
}
