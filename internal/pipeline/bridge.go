package pipeline

import "sync"

// Exported constants.
const (
	// BridgeBufferSize is how many events a Bridge queues before workers block.
	BridgeBufferSize = 256
)

// Bridge is a Listener that queues calls as events on a channel so a
// single goroutine can consume them. Sends block when the buffer is full;
// events are never dropped.
type Bridge struct {
	emitterListener

	events chan Event
	once   sync.Once
}

// NewBridge creates a Bridge with a BridgeBufferSize buffer.
func NewBridge() *Bridge {
	b := &Bridge{events: make(chan Event, BridgeBufferSize)}
	b.emit = b.send

	return b
}

// Close ends the event stream. No Listener call may follow it.
func (b *Bridge) Close() {
	b.once.Do(func() {
		close(b.events)
	})
}

// Drain delivers every queued event to target until the bridge is closed.
// target sees calls from this goroutine only.
func (b *Bridge) Drain(target Listener) {
	for event := range b.Subscribe() {
		Deliver(target, event)
	}
}

// Subscribe returns the event channel, for consumers that select over it
// alongside other channels. It is closed by Close.
func (b *Bridge) Subscribe() <-chan Event {
	return b.events
}

func (b *Bridge) send(event Event) {
	b.events <- event
}
