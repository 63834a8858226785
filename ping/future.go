// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ping

import (
	"context"
	"sync/atomic"
)

// The lifecycle states of a Future's probe job.
const (
	jobQueued    int32 = iota // waiting for a free worker.
	jobRunning                // picked up by a worker.
	jobAbandoned              // given up before any worker picked it up.
)

// Future is the result of an asynchronous probe call, becoming available
// later.
type Future[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	state  atomic.Int32
	value  T
	err    error
}

// newFuture returns a new Future together with the context for the job
// producing the Future's result. When the context gets done while the job is
// still queued, the Future completes immediately with the context's error.
func newFuture[T any](ctx context.Context) (*Future[T], context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		select {
		case <-ctx.Done():
			f.abandon(ctx.Err())
		case <-f.done:
		}
	}()
	return f, ctx
}

// start marks the Future's job as picked up by a worker, returning false if
// the job has already been abandoned and thus must be skipped.
func (f *Future[T]) start() bool {
	return f.state.CompareAndSwap(jobQueued, jobRunning)
}

// abandon a still queued job, completing the Future with the specified
// error. Jobs already running are left alone.
func (f *Future[T]) abandon(err error) {
	if !f.state.CompareAndSwap(jobQueued, jobAbandoned) {
		return
	}
	var zero T
	f.complete(zero, err)
}

// complete the Future with the specified result, releasing all waiters.
func (f *Future[T]) complete(value T, err error) {
	f.value = value
	f.err = err
	f.cancel()
	close(f.done)
}

// Done returns a channel that gets closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Poll returns the result if it is available, without blocking.
func (f *Future[T]) Poll() (T, bool, error) {
	select {
	case <-f.done:
		return f.value, true, f.err
	default:
		var zero T
		return zero, false, nil
	}
}

// Await waits for the result to become available and then returns it. If the
// specified context is done first, Await cancels the probe job, waits for a
// running job to tear down, and then returns the result so far together with
// the context's error. A job still queued is abandoned without waiting for a
// worker.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		f.cancel()
		f.abandon(ctx.Err())
		<-f.done
		return f.value, ctx.Err()
	}
}

// Cancel the probe job without waiting for a running job to tear down; use
// Done or Await for waiting. A job still queued is abandoned at once.
func (f *Future[T]) Cancel() {
	f.cancel()
	f.abandon(context.Canceled)
}
