// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"net"
	"time"

	"github.com/siemens/pingbridge/types"
	"github.com/thediveo/lxkns/log"
)

// Resolver resolves host names into IP address literals, honoring IP version
// constraints.
type Resolver interface {
	Resolve(ctx context.Context, host string, ipv types.IPVersion) ([]string, error)
}

// Resolving is an [Executor] resolving host names first before handing over
// to another executor, so that name resolution problems surface as start
// errors and the probes aren't delayed by slow name resolution.
type Resolving struct {
	exec     Executor
	resolver Resolver
	timeout  time.Duration
}

// NewResolving returns a new [Resolving] executor that resolves host names
// using the specified resolver within the specified timeout before starting
// the specified executor. A zero timeout resolves within the request
// interval.
func NewResolving(exec Executor, resolver Resolver, timeout time.Duration) *Resolving {
	return &Resolving{
		exec:     exec,
		resolver: resolver,
		timeout:  timeout,
	}
}

// Start resolves the target host, unless it already is an IP address literal,
// and then starts the wrapped executor with the first resolved address.
func (r *Resolving) Start(ctx context.Context, req Request) (<-chan Event, error) {
	if err := req.Target.Validate(); err != nil {
		return nil, err
	}
	if net.ParseIP(req.Target.Host) != nil {
		return r.exec.Start(ctx, req)
	}
	timeout := r.timeout
	if timeout <= 0 {
		timeout = req.Interval
	}
	resolvectx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	addrs, err := r.resolver.Resolve(resolvectx, req.Target.Host, req.Target.IPVersion)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, startErrorf("cannot resolve %q: %s", req.Target.Host, err)
	}
	if len(addrs) == 0 {
		return nil, startErrorf("cannot resolve %q: no addresses", req.Target.Host)
	}
	log.Debugf("resolved %q to %v", req.Target.Host, addrs)
	req.Target = req.Target.WithHost(addrs[0])
	return r.exec.Start(ctx, req)
}
