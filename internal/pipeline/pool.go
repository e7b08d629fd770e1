package pipeline

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/remeh/sizedwaitgroup"
	"github.com/rs/zerolog"

	romerrors "github.com/joe/romio/pkg/errors"
)

// Exported variables.
var (
	ErrSkipped = errors.New("item skipped")
	ErrPanic   = errors.New("worker panicked")
)

// Item is one unit of work: a loose file, an archive or a destination to build.
type Item struct {
	Path string
	Size int64
}

// Task is handed to the work function for one item.
type Task struct {
	// Index is the item's position in the slice passed to Run.
	Index int
	// Thread is the 1-based index of the worker running the task.
	Thread int
	Item   Item

	listener Listener
}

// Progress reports bytes processed since the previous call.
func (t Task) Progress(delta int64) {
	if delta > 0 {
		t.listener.ReportBytesProgressed(t.Thread, delta)
	}
}

// WorkFunc processes one item. Returning a *SkipError reports a skip;
// any other error reports a failure.
type WorkFunc func(task Task) error

// SkipError ends an item as skipped rather than failed.
type SkipError struct {
	Reason string
}

// Skip returns a *SkipError with the given reason.
func Skip(reason string) error {
	return &SkipError{Reason: reason}
}

// Error implements the error interface.
func (e *SkipError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSkipped, e.Reason)
}

// Is makes errors.Is(err, ErrSkipped) match.
func (e *SkipError) Is(target error) bool {
	return target == ErrSkipped
}

// Result summarizes a run.
type Result struct {
	Finished  int
	Skipped   int
	Failed    int
	HadErrors bool
	// Errors holds the enriched failures in completion order.
	Errors []error
}

// Pool runs work over items with a fixed number of workers. A failing item
// never stops the others.
type Pool struct {
	// Workers is the pool size. Zero or less means runtime.NumCPU().
	Workers  int
	Listener Listener
	Logger   zerolog.Logger
}

// Run processes every item and blocks until all have ended.
func (p *Pool) Run(items []Item, work WorkFunc) Result {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	listener := p.Listener
	if listener == nil {
		listener = Nop()
	}

	listener.Init(workers)
	listener.ReportTotalItems(len(items))

	// Thread indexes are handed out from a fixed set so they stay stable.
	threads := make(chan int, workers)
	for i := 1; i <= workers; i++ {
		threads <- i
	}

	enricher := romerrors.NewEnricher()
	swg := sizedwaitgroup.New(workers)

	var (
		mu     sync.Mutex
		result Result
	)

	for index, item := range items {
		swg.Add()

		go func() {
			defer swg.Done()

			thread := <-threads
			defer func() { threads <- thread }()

			task := Task{Index: index, Thread: thread, Item: item, listener: listener}
			err := p.runOne(task, work)

			mu.Lock()
			defer mu.Unlock()

			var skip *SkipError

			switch {
			case err == nil:
				result.Finished++

				listener.ReportFinish(thread, item.Path)
			case errors.As(err, &skip):
				result.Skipped++

				listener.ReportSkip(thread, item.Path, skip.Reason)
			default:
				enriched := enricher.Enrich(err, item.Path)
				result.Failed++
				result.HadErrors = true
				result.Errors = append(result.Errors, enriched)

				listener.ReportFailure(thread, item.Path, err.Error(), enriched)
			}
		}()
	}

	swg.Wait()
	listener.ReportAllFinished()

	p.Logger.Debug().
		Int("finished", result.Finished).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("run complete")

	return result
}

// runOne starts the item and calls work, turning a panic into a failure.
func (p *Pool) runOne(task Task, work WorkFunc) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			p.Logger.Error().Str("item", task.Item.Path).Interface("panic", recovered).Msg("worker panicked")
			err = fmt.Errorf("%w: %v", ErrPanic, recovered)
		}
	}()

	task.listener.ReportStart(task.Thread, task.Item.Path, task.Item.Size)

	return work(task)
}
