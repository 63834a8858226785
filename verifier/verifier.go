// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package verifier

import (
	"context"
	"sync"

	"github.com/siemens/pingbridge/ping"
	"github.com/siemens/pingbridge/types"

	"github.com/thediveo/lxkns/log"
)

// Verifier verifies a stream of hosts, caching verdicts as to avoid
// unnecessary duplicate probing. It uses a Pinger for probing the hosts.
type Verifier struct {
	news      chan Verdict
	pinger    *ping.Pinger
	threshold uint
	options   []ping.Option
}

// New returns a new Verifier that probes hosts using the specified Pinger,
// passing the specified probe options to [ping.Pinger.MultipleAsync]. A host
// is verified if at least the specified percentage of its probes got
// replies; the threshold must be within [0..100].
//
// The returned channel receives the verdicts: first a Verifying verdict for
// each host, then a final Verified or Invalid verdict.
func New(pinger *ping.Pinger, threshold uint, options ...ping.Option) (*Verifier, <-chan Verdict) {
	if threshold > 100 {
		threshold = 100
	}
	news := make(chan Verdict, 1)
	return &Verifier{
		news:      news,
		pinger:    pinger,
		threshold: threshold,
		options:   options,
	}, news
}

// Verify verifies the incoming stream of hosts until the input channel is
// closed. It then waits for all probing of hosts to complete and then closes
// the output channel returned by New, and finally returns.
//
// In case the specified context is cancelled, then Verify will stop pulling
// off new hosts and return as soon as possible, closing the output channel.
func (v *Verifier) Verify(ctx context.Context, in <-chan string) {
	cache := NewVerdictCache()
	checked := make(chan Verdict)
	// As soon as final verdicts trickle in, update the cache so that the cache
	// can inform the consumer of this Verifier about them.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case verdict, ok := <-checked:
				if !ok {
					return
				}
				cache.Update(ctx, verdict, v.news)
			case <-ctx.Done():
				return
			}
		}
	}()
	// Process incoming hosts and start probing a host only when it is seen
	// for the first time. Hosts we've already seen, but in a different
	// spelling, will be directly served if their verdict is already final.
	// Otherwise, these spellings are put on hold until the verdict becomes
	// available.
	var probing sync.WaitGroup
slurpHosts:
	for {
		select {
		case host, ok := <-in:
			if !ok {
				break slurpHosts
			}
			if host == "" {
				continue
			}
			if cache.Update(ctx, Verdict{Host: host, Quality: types.Verifying}, v.news) {
				probing.Add(1)
				go func() {
					defer probing.Done()
					v.check(ctx, host, checked)
				}()
			}
		case <-ctx.Done():
			break slurpHosts
		}
	}
	probing.Wait()
	close(checked)
	<-done
	close(v.news)
}

// check probes the specified host and sends the final verdict.
func (v *Verifier) check(ctx context.Context, host string, checked chan<- Verdict) {
	verdict := Verdict{Host: host, Quality: types.Invalid}
	f, err := v.pinger.MultipleAsync(ctx, host, v.options...)
	if err == nil {
		var outcomes []types.Outcome
		outcomes, err = f.Await(ctx)
		verdict.Stats = types.Summarize(outcomes)
	}
	if err != nil {
		log.Debugf("verifying %s failed: %s", host, err)
		verdict.Err = err
	} else {
		verdict.Quality = verdict.Stats.Quality(v.threshold)
	}
	select {
	case checked <- verdict:
	case <-ctx.Done():
	}
}
