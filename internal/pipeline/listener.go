// Package pipeline runs scan and copy work over a fixed pool of workers and
// reports each item's lifecycle to a Listener.
package pipeline

import "sync"

// Listener receives progress from a run. Calls arrive concurrently from
// every worker; implementations must be safe for concurrent use. Wrap a
// single-threaded consumer in a Bridge.
type Listener interface {
	Init(threads int)
	ReportTotalItems(n int)
	ReportStart(thread int, item string, size int64)
	ReportBytesProgressed(thread int, delta int64)
	ReportSkip(thread int, item, reason string)
	ReportFailure(thread int, item, message string, cause error)
	ReportFinish(thread int, item string)
	ReportAllFinished()
}

// Deliver makes the Listener call an event stands for.
func Deliver(listener Listener, event Event) {
	switch e := event.(type) {
	case InitEvent:
		listener.Init(e.Threads)
	case TotalItemsEvent:
		listener.ReportTotalItems(e.Count)
	case StartedEvent:
		listener.ReportStart(e.Thread, e.Item, e.Size)
	case BytesProgressedEvent:
		listener.ReportBytesProgressed(e.Thread, e.Delta)
	case SkippedEvent:
		listener.ReportSkip(e.Thread, e.Item, e.Reason)
	case FailedEvent:
		listener.ReportFailure(e.Thread, e.Item, e.Message, e.Cause)
	case FinishedEvent:
		listener.ReportFinish(e.Thread, e.Item)
	case AllFinishedEvent:
		listener.ReportAllFinished()
	}
}

// emitterListener turns Listener calls into events.
type emitterListener struct {
	emit func(Event)
}

func (l emitterListener) Init(threads int) {
	l.emit(InitEvent{Threads: threads})
}

func (l emitterListener) ReportAllFinished() {
	l.emit(AllFinishedEvent{})
}

func (l emitterListener) ReportBytesProgressed(thread int, delta int64) {
	l.emit(BytesProgressedEvent{Thread: thread, Delta: delta})
}

func (l emitterListener) ReportFailure(thread int, item, message string, cause error) {
	l.emit(FailedEvent{Thread: thread, Item: item, Message: message, Cause: cause})
}

func (l emitterListener) ReportFinish(thread int, item string) {
	l.emit(FinishedEvent{Thread: thread, Item: item})
}

func (l emitterListener) ReportSkip(thread int, item, reason string) {
	l.emit(SkippedEvent{Thread: thread, Item: item, Reason: reason})
}

func (l emitterListener) ReportStart(thread int, item string, size int64) {
	l.emit(StartedEvent{Thread: thread, Item: item, Size: size})
}

func (l emitterListener) ReportTotalItems(n int) {
	l.emit(TotalItemsEvent{Count: n})
}

// Collector records every event it receives, in arrival order.
type Collector struct {
	emitterListener

	mu     sync.Mutex
	events []Event
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	c := &Collector{}
	c.emit = c.record

	return c
}

// Events returns a copy of the recorded events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Event(nil), c.events...)
}

func (c *Collector) record(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, event)
}

// Tee forwards every call to each listener in turn.
func Tee(listeners ...Listener) Listener {
	return emitterListener{emit: func(event Event) {
		for _, listener := range listeners {
			Deliver(listener, event)
		}
	}}
}

// Nop returns a Listener that ignores everything.
func Nop() Listener {
	return emitterListener{emit: func(Event) {}}
}
