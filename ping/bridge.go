// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ping

import (
	"context"

	"github.com/siemens/pingbridge/stream"
	"github.com/siemens/pingbridge/types"
)

// Once probes the specified host using a throw-away [Pinger] with default
// settings; see [Pinger.Once].
func Once(ctx context.Context, host string, options ...Option) (types.Outcome, error) {
	p := New(1)
	defer p.StopWait()
	return p.Once(ctx, host, options...)
}

// OnceAsync probes the specified host using a throw-away [Pinger] with default
// settings; see [Pinger.OnceAsync].
func OnceAsync(ctx context.Context, host string, options ...Option) (*Future[types.Outcome], error) {
	p := New(1)
	f, err := p.OnceAsync(ctx, host, options...)
	return f, stopWhenDone(p, f, err)
}

// Multiple probes the specified host using a throw-away [Pinger] with default
// settings; see [Pinger.Multiple].
func Multiple(ctx context.Context, host string, options ...Option) ([]types.Outcome, error) {
	p := New(1)
	defer p.StopWait()
	return p.Multiple(ctx, host, options...)
}

// MultipleAsync probes the specified host using a throw-away [Pinger] with
// default settings; see [Pinger.MultipleAsync].
func MultipleAsync(ctx context.Context, host string, options ...Option) (*Future[[]types.Outcome], error) {
	p := New(1)
	f, err := p.MultipleAsync(ctx, host, options...)
	return f, stopWhenDone(p, f, err)
}

// NewStream continuously probes the specified host using a throw-away
// [Pinger] with default settings; see [Pinger.Stream].
func NewStream(ctx context.Context, host string, options ...Option) (*stream.Stream, error) {
	p := New(1)
	defer p.StopWait()
	return p.Stream(ctx, host, options...)
}

// doner is implemented by all Futures.
type doner interface{ Done() <-chan struct{} }

// stopWhenDone stops the specified Pinger after the specified Future is done,
// or immediately in case of an error.
func stopWhenDone(p *Pinger, f doner, err error) error {
	if err != nil {
		p.StopWait()
		return err
	}
	go func() {
		<-f.Done()
		p.StopWait()
	}()
	return nil
}
