// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package stream

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/siemens/pingbridge/adapter"
	"github.com/siemens/pingbridge/executor"
	"github.com/siemens/pingbridge/types"

	"github.com/gammazero/deque"
	"github.com/thediveo/lxkns/log"
)

// ErrEndOfStream is returned by [Stream.Recv] after the stream has been
// closed, or after the probe session ended and all outcomes have been
// received.
var ErrEndOfStream = errors.New("end of stream")

// Stream is a consumer handle onto a continuously running probe session. The
// outcomes produced by the probe session are queued without limit until
// received by the consumer.
//
// The probe session ends when the probe executor exits, when the maximum
// number of outcomes has been produced, when the context passed to Open gets
// cancelled, or when calling [Stream.Close]. A Stream that becomes unreachable
// without having been closed gets closed automatically; please don't rely on
// this but instead always Close a Stream when done with it.
type Stream struct {
	b *bridge
}

// bridge moves outcomes from a probe session into an unbounded queue. It
// must never reference its outer Stream, as otherwise the Stream would never
// become unreachable.
type bridge struct {
	session  *adapter.Session
	maxCount int

	mu       sync.Mutex
	queue    *deque.Deque[types.Outcome]
	changed  chan struct{} // closed and replaced whenever the state changes.
	finished bool          // no more outcomes will be produced.
	closed   bool          // closed by the consumer.
	done     chan struct{}
}

// Option can be passed to Open when opening new Streams.
type Option func(*bridge)

// WithMaxCount ends the probe session after the specified number of
// outcomes. A zero count means no limit.
func WithMaxCount(count int) Option {
	return func(b *bridge) {
		b.maxCount = count
	}
}

// Open starts a probe session against the specified target at the specified
// interval and returns a Stream for receiving the outcomes. Invalid
// configurations and start failures are reported immediately.
func Open(ctx context.Context, exec executor.Executor, target types.Target,
	interval time.Duration, options ...Option) (*Stream, error) {
	b := &bridge{
		queue:   deque.New[types.Outcome](),
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range options {
		opt(b)
	}
	if b.maxCount < 0 {
		return nil, types.ConfigErrorf("max count must not be negative, got: %d", b.maxCount)
	}
	session, err := adapter.Open(ctx, exec, executor.Request{Target: target, Interval: interval})
	if err != nil {
		return nil, err
	}
	b.session = session
	go b.pump()
	s := &Stream{b: b}
	runtime.SetFinalizer(s, func(s *Stream) {
		log.Warnf("unreachable stream of outcomes from %s has not been closed", target)
		// Don't block the finalizer goroutine while tearing down.
		go s.b.close()
	})
	return s, nil
}

// pump moves the outcomes from the probe session into the queue until the
// session ends.
func (b *bridge) pump() {
	defer close(b.done)
	count := 0
	for o := range b.session.Outcomes() {
		b.push(o)
		count++
		if b.maxCount > 0 && count >= b.maxCount {
			break
		}
	}
	b.session.Close()
	b.mu.Lock()
	b.finished = true
	b.broadcast()
	b.mu.Unlock()
}

func (b *bridge) push(o types.Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.queue.PushBack(o)
	b.broadcast()
}

// broadcast wakes up all waiting receivers; must be called with the lock
// held.
func (b *bridge) broadcast() {
	close(b.changed)
	b.changed = make(chan struct{})
}

func (b *bridge) close() {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		b.queue.Clear()
		b.broadcast()
	}
	b.mu.Unlock()
	b.session.Close()
	<-b.done
}

// TryRecv returns the next queued outcome, if any, without blocking.
func (s *Stream) TryRecv() (types.Outcome, bool) {
	b := s.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.queue.Len() == 0 {
		return types.Outcome{}, false
	}
	return b.queue.PopFront(), true
}

// Recv returns the next outcome, waiting for it if necessary. Recv returns
// [ErrEndOfStream] if there won't be any more outcomes, or the context's error
// if the context is done first.
func (s *Stream) Recv(ctx context.Context) (types.Outcome, error) {
	b := s.b
	for {
		b.mu.Lock()
		if b.queue.Len() > 0 {
			o := b.queue.PopFront()
			b.mu.Unlock()
			return o, nil
		}
		if b.finished || b.closed {
			b.mu.Unlock()
			return types.Outcome{}, ErrEndOfStream
		}
		changed := b.changed
		b.mu.Unlock()
		select {
		case <-changed:
		case <-ctx.Done():
			return types.Outcome{}, ctx.Err()
		}
	}
}

// IsActive returns true as long as there are outcomes queued or still to
// come, and the Stream hasn't been closed.
func (s *Stream) IsActive() bool {
	b := s.b
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && (!b.finished || b.queue.Len() > 0)
}

// Len returns the number of queued outcomes.
func (s *Stream) Len() int {
	b := s.b
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.Len()
}

// Done returns a channel that gets closed after the probe session ended and
// its probe executor has been torn down.
func (s *Stream) Done() <-chan struct{} { return s.b.done }

// Close ends the probe session, discarding all queued outcomes, and waits for
// the probe executor to be torn down. Close is idempotent.
func (s *Stream) Close() {
	runtime.SetFinalizer(s, nil)
	s.b.close()
}
