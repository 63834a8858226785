// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/siemens/pingbridge/types"
)

// ErrStart is wrapped by errors reporting that a probe executor could not be
// started at all, such as when the ping binary is missing, the ICMP socket
// cannot be opened, or a host name doesn't resolve.
var ErrStart = errors.New("cannot start probe executor")

// startErrorf returns a new error wrapping [ErrStart].
func startErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrStart}, args...)...)
}

// EventKind tells the shape of a raw executor [Event].
type EventKind int

// The raw event shapes produced by probe executors.
const (
	LineEvent  EventKind = iota // a line of textual output, yet to be classified.
	ReplyEvent                  // an echo reply with its round-trip time.
	LossEvent                   // no echo reply in time for a particular sequence number.
	ExitEvent                   // the executor terminated on its own.
)

// String returns the clear-text representation of an EventKind value.
func (k EventKind) String() string {
	switch k {
	case LineEvent:
		return "line"
	case ReplyEvent:
		return "reply"
	case LossEvent:
		return "loss"
	case ExitEvent:
		return "exit"
	}
	return fmt.Sprintf("EventKind(%d)", k)
}

// Event is a raw, not yet classified event produced by a probe executor.
// Depending on the kind of event, only some fields are meaningful.
type Event struct {
	Kind     EventKind
	Line     string        // raw output line, or a synthesized one for reply and loss events.
	Seq      int           // ICMP sequence number of reply and loss events.
	RTT      time.Duration // round-trip time of reply events.
	ExitCode int           // exit code of exit events.
	Stderr   string        // diagnostic output of exit events.
}

// Request describes a probe session to start: what target to probe and at
// which interval to issue echo requests.
type Request struct {
	Target   types.Target
	Interval time.Duration
	// Single requests only ever get their first outcome consumed, so
	// executors unable to pace echo requests may ignore Interval.
	Single bool
}

// Executor starts probe sessions against targets, producing raw events.
//
// Start returns a channel of raw events or an error if the session cannot be
// started at all. The returned channel gets closed after the executor has
// terminated and released all its resources: either right after sending an
// [ExitEvent], or after the specified context has been cancelled. An executor
// never sends anything after an ExitEvent, and it doesn't send an ExitEvent
// when it got cancelled.
//
// Consumers must keep receiving from the event channel until it is closed.
type Executor interface {
	Start(ctx context.Context, req Request) (<-chan Event, error)
}

// send the specified event, unless the context is done first. It returns
// false if the context is done.
func send(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
