// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

/*
Package executortest provides a scripted [executor.Executor] for testing
consumers of probe executors without sending any packets.
*/
package executortest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/siemens/pingbridge/executor"
)

// Step is a scripted event, emitted After the specified delay relative to the
// previous step.
type Step struct {
	After time.Duration
	Event executor.Event
}

// Reply returns a step emitting a Linux ping command output line reporting an
// echo reply with the specified round-trip time.
func Reply(after time.Duration, seq int, rtt time.Duration) Step {
	return Line(after, fmt.Sprintf("64 bytes from 127.0.0.1: icmp_seq=%d ttl=64 time=%.3f ms",
		seq, float64(rtt)/float64(time.Millisecond)))
}

// NoAnswer returns a step emitting a Linux ping command output line reporting
// a missing echo reply.
func NoAnswer(after time.Duration, seq int) Step {
	return Line(after, fmt.Sprintf("no answer yet for icmp_seq=%d", seq))
}

// Line returns a step emitting the specified ping command output line.
func Line(after time.Duration, line string) Step {
	return Step{After: after, Event: executor.Event{Kind: executor.LineEvent, Line: line}}
}

// Exit returns a step emitting an exit event.
func Exit(after time.Duration, code int, stderr string) Step {
	return Step{After: after, Event: executor.Event{Kind: executor.ExitEvent, ExitCode: code, Stderr: stderr}}
}

// Executor plays back its scripted steps for each started probe session.
// After the last step the session idles until cancelled, unless the last step
// was an exit event.
type Executor struct {
	steps    []Step
	startErr error

	mu       sync.Mutex
	requests []executor.Request
	running  int
}

var _ executor.Executor = (*Executor)(nil)

// New returns a new scripted [Executor].
func New(steps ...Step) *Executor {
	return &Executor{steps: steps}
}

// Failing returns a new scripted [Executor] that fails to start with the
// specified error.
func Failing(err error) *Executor {
	return &Executor{startErr: err}
}

// Start plays back the script.
func (x *Executor) Start(ctx context.Context, req executor.Request) (<-chan executor.Event, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.requests = append(x.requests, req)
	if x.startErr != nil {
		return nil, x.startErr
	}
	x.running++
	events := make(chan executor.Event)
	go func() {
		defer func() {
			x.mu.Lock()
			x.running--
			x.mu.Unlock()
			close(events)
		}()
		for _, step := range x.steps {
			timer := time.NewTimer(step.After)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return
			}
			select {
			case events <- step.Event:
			case <-ctx.Done():
				return
			}
			if step.Event.Kind == executor.ExitEvent {
				return
			}
		}
		<-ctx.Done()
	}()
	return events, nil
}

// Starts returns the number of Start calls so far.
func (x *Executor) Starts() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.requests)
}

// Running returns the number of probe sessions not yet terminated.
func (x *Executor) Running() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.running
}

// LastRequest returns the most recent request passed to Start.
func (x *Executor) LastRequest() executor.Request {
	x.mu.Lock()
	defer x.mu.Unlock()
	if len(x.requests) == 0 {
		return executor.Request{}
	}
	return x.requests[len(x.requests)-1]
}
