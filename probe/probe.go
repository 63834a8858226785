// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package probe

import (
	"context"
	"time"

	"github.com/siemens/pingbridge/adapter"
	"github.com/siemens/pingbridge/executor"
	"github.com/siemens/pingbridge/types"

	"github.com/thediveo/lxkns/log"
)

// OnceTimeoutLine is the line of the Timeout outcome returned by [Once] when
// no definite outcome arrives in time.
const OnceTimeoutLine = "Request timeout for icmp_seq 0"

// Once probes the target and returns the first definite outcome: either a
// Pong, a Timeout, or an Exited outcome. Unknown outcomes are skipped. If no
// definite outcome arrives within the timeout, Once returns a Timeout
// outcome. A zero timeout uses the target's timeout instead.
//
// The probe executor has been torn down when Once returns. If the context
// gets cancelled before a definite outcome arrives, Once returns the
// context's error.
func Once(ctx context.Context, exec executor.Executor, target types.Target, timeout time.Duration) (types.Outcome, error) {
	if timeout == 0 {
		timeout = target.Timeout
	}
	if timeout <= 0 {
		return types.Outcome{}, types.ConfigErrorf("timeout must be positive, got: %s", timeout)
	}
	session, err := adapter.Open(ctx, exec, executor.Request{Target: target, Interval: timeout, Single: true})
	if err != nil {
		return types.Outcome{}, err
	}
	defer session.Close()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		o, status := next(ctx, session.Outcomes(), deadline.C)
		switch status {
		case received:
			if o.IsUnknown() {
				log.Debugf("skipping %s", o)
				continue
			}
			return o, nil
		case expired, ended:
			return types.NewTimeout(OnceTimeoutLine), nil
		default:
			return types.Outcome{}, ctx.Err()
		}
	}
}

// Many probes the target at the specified interval, collecting up to count
// outcomes in the order they arrive. An Exited outcome is collected as the
// last one. A non-zero overall timeout ends the collection when reached.
// A zero count returns an empty collection without probing at all.
//
// The probe executor has been torn down when Many returns. If the context
// gets cancelled, Many returns the outcomes collected so far together with
// the context's error.
func Many(ctx context.Context, exec executor.Executor, target types.Target,
	count int, interval time.Duration, overall time.Duration) ([]types.Outcome, error) {
	if count < 0 {
		return nil, types.ConfigErrorf("count must not be negative, got: %d", count)
	}
	if interval <= 0 {
		return nil, types.ConfigErrorf("interval must be positive, got: %s", interval)
	}
	if overall < 0 {
		return nil, types.ConfigErrorf("overall timeout must not be negative, got: %s", overall)
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	outcomes := make([]types.Outcome, 0, count)
	if count == 0 {
		return outcomes, nil
	}
	session, err := adapter.Open(ctx, exec, executor.Request{Target: target, Interval: interval})
	if err != nil {
		return nil, err
	}
	defer session.Close()
	var deadline <-chan time.Time
	if overall > 0 {
		timer := time.NewTimer(overall)
		defer timer.Stop()
		deadline = timer.C
	}
	for len(outcomes) < count {
		o, status := next(ctx, session.Outcomes(), deadline)
		switch status {
		case received:
			outcomes = append(outcomes, o)
			if o.IsExited() {
				return outcomes, nil
			}
		case expired:
			log.Debugf("overall timeout of %s reached after %d outcomes", overall, len(outcomes))
			return outcomes, nil
		case ended:
			return outcomes, nil
		default:
			return outcomes, ctx.Err()
		}
	}
	return outcomes, nil
}
