package convert

import (
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
)

// Scheduler errors.
var (
	// ErrBusy is returned by Submit while a job is outstanding.
	ErrBusy = errors.New("convert: a job is already in flight")

	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("convert: converter is closed")
)

// Result is one finished job. Owner is whatever the submitter attached;
// Err is nil on success.
type Result[O any] struct {
	Owner O
	ID    string
	Err   error
}

type job[O any] struct {
	owner O
	id    string
	run   func() error
}

// Converter runs submitted jobs on a single background worker, one at a
// time. The slot model keeps conversion from competing with itself for
// CPU and gives the caller strict control over ordering: nothing starts
// until the previous result has been polled.
//
// Submit and Poll may be called from any goroutine, but Close must not
// race Submit.
type Converter[O any] struct {
	jobs    chan job[O]
	results chan Result[O]
	done    chan struct{}
	busy    atomic.Bool
	closed  atomic.Bool
}

// NewConverter starts the worker.
func NewConverter[O any]() *Converter[O] {
	c := &Converter[O]{
		jobs:    make(chan job[O], 1),
		results: make(chan Result[O], 1),
		done:    make(chan struct{}),
	}
	go c.work()
	return c
}

func (c *Converter[O]) work() {
	defer close(c.done)
	for j := range c.jobs {
		err := j.run()
		c.results <- Result[O]{Owner: j.owner, ID: j.id, Err: err}
	}
}

// Submit queues run for execution and returns its job ID. It fails with
// ErrBusy when a previous job has not been polled yet and ErrClosed after
// Close; it never blocks.
func (c *Converter[O]) Submit(owner O, run func() error) (string, error) {
	if c.closed.Load() {
		return "", ErrClosed
	}
	if !c.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	id := uuid.NewString()
	c.jobs <- job[O]{owner: owner, id: id, run: run}
	return id, nil
}

// Poll returns a finished job, if any, without blocking. Receiving a
// result frees the slot for the next Submit.
func (c *Converter[O]) Poll() (Result[O], bool) {
	select {
	case res := <-c.results:
		c.busy.Store(false)
		return res, true
	default:
		return Result[O]{}, false
	}
}

// Busy reports whether the slot is occupied.
func (c *Converter[O]) Busy() bool {
	return c.busy.Load()
}

// Close stops accepting work and waits for any outstanding job to finish.
// A final result may still be available through Poll afterwards.
func (c *Converter[O]) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.jobs)
		<-c.done
	}
}
