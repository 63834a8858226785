// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package probe

import (
	"context"
	"time"

	"github.com/siemens/pingbridge/types"
)

// status tells why waiting for the next outcome ended.
type status int

const (
	received  status = iota // an outcome has been received.
	expired                 // the deadline has been reached.
	ended                   // the session ended without further outcomes.
	cancelled               // the context is done.
)

// next waits for the next outcome, unless the deadline is reached first or
// the context is done. A nil deadline never expires.
func next(ctx context.Context, outcomes <-chan types.Outcome, deadline <-chan time.Time) (types.Outcome, status) {
	select {
	case o, ok := <-outcomes:
		if !ok {
			if ctx.Err() != nil {
				return types.Outcome{}, cancelled
			}
			return types.Outcome{}, ended
		}
		return o, received
	case <-deadline:
		return types.Outcome{}, expired
	case <-ctx.Done():
		return types.Outcome{}, cancelled
	}
}
