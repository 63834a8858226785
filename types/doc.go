/*
Package types defines pingbridge's information model. Which is rather simple and
mainly revolves around the [Outcome] of a single probe, the [Target] to probe,
as well as [Statistics] and the [Quality] verdict over a series of outcomes.

# Outcomes

An [Outcome] is a tagged variant: exactly one of [Pong], [Timeout], [Unknown],
or [Exited].

  - Pong carries the round-trip time, see [Outcome.Duration].
  - Timeout means no reply arrived within the deadline.
  - Unknown preserves a raw line the probe executor produced that couldn't be
    classified, see [Outcome.Line].
  - Exited carries the exit code and stderr output of a terminated probe
    executor; it is always the last outcome of its series.

Timeout, Unknown, and Exited are data, not errors: callers aggregate them
(for instance, using [Summarize]) without exception-driven control flow. Only
caller misuse gets reported as an error, and such errors always wrap
[ErrInvalidConfig].

# Design Rationale

Outcomes get passed around through channels and shared between the goroutine
driving a probe executor and any number of consumers. Instead of passing
pointers and locking, Outcome is a small value type with unexported fields and
getters only. This keeps the “exactly one variant populated” invariant in the
hands of the NewXXX constructors and avoids tons of subtle bugs.

For external consumption, [Outcome.Record] and [Outcome.ToMap] project an
outcome onto a flat record with a type name and the classification predicates.
*/
package types
