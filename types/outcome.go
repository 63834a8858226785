// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import (
	"fmt"
	"time"
)

// Kind tells which variant of an [Outcome] is populated.
type Kind int

// The variants of a probe [Outcome].
const (
	Pong    Kind = iota // echo reply received in time.
	Timeout             // no reply within the deadline.
	Unknown             // unclassifiable executor output.
	Exited              // the probe executor terminated; terminal for its series.
)

// String returns the type name of a Kind value, as used in the [Record]
// projection of an [Outcome].
func (k Kind) String() string {
	switch k {
	case Pong:
		return "Pong"
	case Timeout:
		return "Timeout"
	case Unknown:
		return "Unknown"
	case Exited:
		return "PingExited"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Outcome is the classified result of a single probe attempt. It is a tagged
// variant: exactly one of Pong, Timeout, Unknown, or Exited, as returned by
// [Outcome.Kind]. The duration is only present for Pong outcomes, while exit
// code and stderr are only present for Exited outcomes.
//
// Outcomes are immutable values and thus can be freely copied and shared
// between goroutines. Use the NewXXX constructors to create them; the zero
// value is a Pong of zero duration and should not be relied upon.
type Outcome struct {
	kind     Kind
	duration time.Duration // Pong only.
	line     string        // raw executor text, if any.
	exitCode int           // Exited only.
	stderr   string        // Exited only.
}

// NewPong returns a Pong outcome with the specified round-trip time and the
// raw line it was classified from. Negative durations are clamped to zero.
func NewPong(rtt time.Duration, line string) Outcome {
	if rtt < 0 {
		rtt = 0
	}
	return Outcome{kind: Pong, duration: rtt, line: line}
}

// NewTimeout returns a Timeout outcome.
func NewTimeout(line string) Outcome {
	return Outcome{kind: Timeout, line: line}
}

// NewUnknown returns an Unknown outcome preserving the unclassifiable raw line
// for diagnostics.
func NewUnknown(line string) Outcome {
	return Outcome{kind: Unknown, line: line}
}

// NewExited returns an Exited outcome with the exit code and stderr output of
// the terminated probe executor.
func NewExited(exitCode int, stderr string) Outcome {
	return Outcome{kind: Exited, exitCode: exitCode, stderr: stderr}
}

// Kind returns the variant of this outcome.
func (o Outcome) Kind() Kind { return o.kind }

// Duration returns the round-trip time of a Pong outcome; ok is false for all
// other variants.
func (o Outcome) Duration() (rtt time.Duration, ok bool) {
	if o.kind != Pong {
		return 0, false
	}
	return o.duration, true
}

// DurationMS returns the round-trip time of a Pong outcome in (fractional)
// milliseconds; ok is false for all other variants.
func (o Outcome) DurationMS() (ms float64, ok bool) {
	rtt, ok := o.Duration()
	if !ok {
		return 0, false
	}
	return float64(rtt) / float64(time.Millisecond), true
}

// Line returns the raw text associated with this outcome. For Exited outcomes
// this is the stderr output.
func (o Outcome) Line() string {
	if o.kind == Exited {
		return o.stderr
	}
	return o.line
}

// ExitCode returns the exit code of an Exited outcome; ok is false for all
// other variants.
func (o Outcome) ExitCode() (code int, ok bool) {
	if o.kind != Exited {
		return 0, false
	}
	return o.exitCode, true
}

// Stderr returns the stderr output of an Exited outcome; ok is false for all
// other variants.
func (o Outcome) Stderr() (stderr string, ok bool) {
	if o.kind != Exited {
		return "", false
	}
	return o.stderr, true
}

// IsSuccess returns true for Pong outcomes.
func (o Outcome) IsSuccess() bool { return o.kind == Pong }

// IsTimeout returns true for Timeout outcomes.
func (o Outcome) IsTimeout() bool { return o.kind == Timeout }

// IsUnknown returns true for Unknown outcomes.
func (o Outcome) IsUnknown() bool { return o.kind == Unknown }

// IsExited returns true for Exited outcomes.
func (o Outcome) IsExited() bool { return o.kind == Exited }

// TypeName returns the name of the outcome's variant: one of "Pong",
// "Timeout", "Unknown", or "PingExited".
func (o Outcome) TypeName() string { return o.kind.String() }

// String renders the outcome in a compact, diagnostics-friendly form.
func (o Outcome) String() string {
	switch o.kind {
	case Pong:
		ms, _ := o.DurationMS()
		return fmt.Sprintf("PingResult.Pong(duration_ms=%gms, line='%s')", ms, o.line)
	case Timeout:
		return fmt.Sprintf("PingResult.Timeout(line='%s')", o.line)
	case Exited:
		return fmt.Sprintf("PingResult.PingExited(exit_code=%d, stderr='%s')", o.exitCode, o.stderr)
	default:
		return fmt.Sprintf("PingResult.Unknown(line='%s')", o.line)
	}
}
