// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/siemens/pingbridge/executor"
	"github.com/siemens/pingbridge/types"

	"github.com/thediveo/lxkns/log"
)

// Session is a running probe session, streaming classified outcomes.
type Session struct {
	outcomes chan types.Outcome
	cancel   context.CancelFunc
	done     chan struct{}
}

// Open starts a new probe session using the specified executor, returning
// either the running session or an error. Invalid requests fail with an error
// wrapping [types.ErrInvalidConfig], all other start failures wrap
// [executor.ErrStart].
//
// The session ends when the executor exits, when the specified context gets
// cancelled, or when calling [Session.Close]. An Exited outcome is always the
// last outcome of a session.
func Open(ctx context.Context, exec executor.Executor, req executor.Request) (*Session, error) {
	if err := req.Target.Validate(); err != nil {
		return nil, err
	}
	if req.Interval <= 0 {
		return nil, types.ConfigErrorf("interval must be positive, got: %s", req.Interval)
	}
	ctx, cancel := context.WithCancel(ctx)
	events, err := exec.Start(ctx, req)
	if err != nil {
		cancel()
		if !errors.Is(err, types.ErrInvalidConfig) && !errors.Is(err, executor.ErrStart) {
			err = fmt.Errorf("%w: %s", executor.ErrStart, err)
		}
		return nil, err
	}
	s := &Session{
		outcomes: make(chan types.Outcome),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go s.run(ctx, events)
	return s, nil
}

// run classifies the raw events until the executor closes its event channel.
func (s *Session) run(ctx context.Context, events <-chan executor.Event) {
	defer close(s.done)
	defer close(s.outcomes)
	defer s.cancel()
	exited := false
	for ev := range events {
		if exited || ctx.Err() != nil {
			continue // ...just drain
		}
		outcome := Classify(ev)
		select {
		case s.outcomes <- outcome:
		case <-ctx.Done():
			continue
		}
		if outcome.IsExited() {
			exited = true
			s.cancel()
		}
	}
	if !exited && ctx.Err() == nil {
		log.Warnf("probe executor terminated without exit")
		select {
		case s.outcomes <- types.NewExited(-1, "probe executor terminated unexpectedly"):
		case <-ctx.Done():
		}
	}
}

// Outcomes returns the channel of classified outcomes. The channel gets
// closed after the session ended and the executor released its resources.
func (s *Session) Outcomes() <-chan types.Outcome { return s.outcomes }

// Done returns a channel that gets closed after the session ended and the
// executor released its resources.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close ends the session, discarding any outcomes not yet received, and waits
// for the executor to release its resources. Close is idempotent.
func (s *Session) Close() {
	s.cancel()
	<-s.done
}
