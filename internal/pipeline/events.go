package pipeline

// Event is the interface implemented by all pipeline events. Each event
// mirrors one Listener call.
type Event interface {
	isEvent()
}

// Run lifecycle events

// InitEvent is emitted once before any item starts.
type InitEvent struct {
	Threads int
}

func (InitEvent) isEvent() {}

// TotalItemsEvent announces how many items the run will process.
type TotalItemsEvent struct {
	Count int
}

func (TotalItemsEvent) isEvent() {}

// AllFinishedEvent is emitted once after every item has ended.
type AllFinishedEvent struct{}

func (AllFinishedEvent) isEvent() {}

// Item events. For one item they always arrive as Started, zero or more
// BytesProgressed, then exactly one of Finished, Skipped or Failed, all from
// the same thread.

// StartedEvent is emitted when a worker picks up an item.
type StartedEvent struct {
	Thread int
	Item   string
	Size   int64
}

func (StartedEvent) isEvent() {}

// BytesProgressedEvent reports bytes processed by a worker since its last report.
type BytesProgressedEvent struct {
	Thread int
	Delta  int64
}

func (BytesProgressedEvent) isEvent() {}

// SkippedEvent ends an item that needed no work.
type SkippedEvent struct {
	Thread int
	Item   string
	Reason string
}

func (SkippedEvent) isEvent() {}

// FailedEvent ends an item that failed. Cause is the enriched error.
type FailedEvent struct {
	Thread  int
	Item    string
	Message string
	Cause   error
}

func (FailedEvent) isEvent() {}

// FinishedEvent ends an item that completed.
type FinishedEvent struct {
	Thread int
	Item   string
}

func (FinishedEvent) isEvent() {}
