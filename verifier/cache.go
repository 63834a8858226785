// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package verifier

import (
	"context"
	"sync"

	"github.com/siemens/pingbridge/types"
)

// VerdictCache caches verdicts so that unnecessary duplicate probing of the
// same host can be avoided, yet final verdicts distributed at once to all
// spellings of a host pending in verification.
type VerdictCache struct {
	mu sync.Mutex
	m  map[string]verdictConsumers // canonical host -> pending spellings
}

// NewVerdictCache returns a new VerdictCache object.
func NewVerdictCache() *VerdictCache {
	return &VerdictCache{
		m: map[string]verdictConsumers{},
	}
}

// verdictConsumers is a list of host spellings that map to the same host and
// thus want to learn about its final verdict.
type verdictConsumers struct {
	verdict   Verdict  // most recent verdict.
	consumers []string // waiting spellings that want to consume the final verdict.
}

// Update checks the specified verdict to see if it is about a new host which
// isn't cached yet. In this case it returns true to signal a new host to the
// caller, so that the caller can start probing the new host. Update returns
// false if the host has already been seen. If the host is already in the
// cache and its verdict is final, then the final verdict is immediately sent
// to the news consumer for the spelling in the specified verdict. A final
// verdict gets sent to all spellings waiting for it.
func (c *VerdictCache) Update(ctx context.Context, verdict Verdict, news chan<- Verdict) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(verdict.Host)
	vc, ok := c.m[k]
	if !ok {
		// This is the first time we see this host, so we add it to our cache
		// without any further ado. A new host always enters as unverified or
		// verifying, so there will always be a later final verdict.
		c.m[k] = verdictConsumers{
			verdict:   verdict,
			consumers: []string{verdict.Host},
		}
		send(ctx, news, verdict)
		return true
	}
	knownConsumer := false
	for _, consumer := range vc.consumers {
		if consumer == verdict.Host {
			knownConsumer = true
			break
		}
	}
	if verdict.Quality <= vc.verdict.Quality {
		// The verdict is stale, so send the most recent verdict known, but only
		// for this specific spelling.
		if !knownConsumer {
			if vc.verdict.Quality.IsPending() {
				vc.consumers = append(vc.consumers, verdict.Host)
				c.m[k] = vc
			}
			recent := vc.verdict
			recent.Host = verdict.Host
			send(ctx, news, recent)
		}
		return false
	}
	vc.verdict = verdict
	var consumers []string
	if verdict.Quality.IsPending() {
		if !knownConsumer {
			vc.consumers = append(vc.consumers, verdict.Host)
		}
		consumers = vc.consumers
	} else {
		// Final verdicts never change, so clear the registrations: all later
		// updates get the final verdict immediately.
		consumers, vc.consumers = vc.consumers, nil
	}
	c.m[k] = vc
	for _, consumer := range consumers {
		update := verdict
		update.Host = consumer
		if !send(ctx, news, update) {
			return false
		}
	}
	return false
}

// Quality returns the most recent quality of the specified host, or
// Unverified if the host hasn't been seen yet.
func (c *VerdictCache) Quality(host string) types.Quality {
	c.mu.Lock()
	defer c.mu.Unlock()
	if vc, ok := c.m[key(host)]; ok {
		return vc.verdict.Quality
	}
	return types.Unverified
}

// send a verdict to the news consumer, returning false if the context was
// done before.
func send(ctx context.Context, news chan<- Verdict, verdict Verdict) bool {
	select {
	case news <- verdict:
		return true
	case <-ctx.Done():
		return false
	}
}
