// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package resolver

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/siemens/pingbridge/types"

	"github.com/gammazero/workerpool"
	"github.com/miekg/dns"
	"github.com/thediveo/lxkns/log"
	"github.com/thediveo/lxkns/ops"
	"github.com/thediveo/lxkns/ops/relations"
	"github.com/thediveo/lxkns/species"
)

// Pool is a (size-limited) pool of DNS client connections talking with the
// same DNS resolver address.
type Pool struct {
	netns    relations.Relation // network namespace to resolve from, or nil.
	dnsclnt  *dns.Client
	config   *dns.ClientConfig // search list and ndots, or nil.
	fallback bool              // if true, falls back to the system resolver.
	workers  *workerpool.WorkerPool
	mu       sync.Mutex // protects the pool of DNS connections
	free     []*dns.Conn
}

// PoolOption can be passed to New when creating new [Pool] objects.
type PoolOption func(*Pool)

// New returns a pool of the specified size of DNS client connections, with
// each connection using the specified context and talking to the same DNS
// resolver address.
//
// DNS tasks are submitted using [Pool.Submit] in form of task functions
// receiving a concrete [dns.Conn].
//
// The passed context is used for creating (dialing) the DNS client
// connections only. It is not directly passed to the submitted DNS tasks, so
// task submitters are themselves responsible for capturing the necessary
// context in their task function closure.
//
// To operate a Pool in a network namespace different to that of the OS-level
// thread of the caller specify the [InNetworkNamespace] option and pass it a
// filesystem path that must reference a network namespace (such as
// "/proc/666/ns/net").
func New(ctx context.Context, size int, dnsclnt *dns.Client, addr string, options ...PoolOption) (*Pool, error) {
	pool := &Pool{
		dnsclnt:  dnsclnt,
		fallback: true,
		workers:  workerpool.New(size),
	}
	for _, opt := range options {
		opt(pool)
	}
	free := make([]*dns.Conn, 0, size)
	dial := func() interface{} {
		for i := 0; i < size; i++ {
			conn, err := dnsclnt.DialContext(ctx, addr)
			if err != nil {
				// Immediately release all connections created so far.
				for _, conn := range free {
					conn.Close()
				}
				return err
			}
			free = append(free, conn)
		}
		return nil
	}
	// Dial the connections in the requested network namespace, if necessary.
	var err error
	var dialerr interface{}
	if pool.netns != nil {
		dialerr, err = ops.Execute(dial, pool.netns)
	} else {
		dialerr = dial()
	}
	if err == nil && dialerr != nil {
		err = dialerr.(error)
	}
	if err != nil {
		pool.workers.Stop()
		return nil, err
	}
	pool.free = free
	return pool, nil
}

// FromResolvConf returns a pool of the specified size of DNS client
// connections talking to the first name server configured in the specified
// resolv.conf file. Names to be resolved are qualified using the search list
// of the resolv.conf file.
func FromResolvConf(ctx context.Context, size int, path string, options ...PoolOption) (*Pool, error) {
	config, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	if len(config.Servers) == 0 {
		return nil, fmt.Errorf("no name servers in %s", path)
	}
	dnsclnt := &dns.Client{Net: "udp"}
	if config.Timeout > 0 {
		dnsclnt.Timeout = secs(config.Timeout)
	}
	options = append([]PoolOption{func(p *Pool) { p.config = config }}, options...)
	return New(ctx, size, dnsclnt, net.JoinHostPort(config.Servers[0], config.Port), options...)
}

// InNetworkNamespace optionally runs a Pool inside the network namespace
// referenced by the specified filesystem path.
func InNetworkNamespace(netnsref string) PoolOption {
	return func(p *Pool) {
		p.netns = ops.NewTypedNamespacePath(netnsref, species.CLONE_NEWNET)
	}
}

// WithoutFallback disables falling back onto the system resolver when a name
// cannot be resolved via DNS, such as names only listed in /etc/hosts.
func WithoutFallback() PoolOption {
	return func(p *Pool) {
		p.fallback = false
	}
}

// Submit a task to the DNS client connection pool, where it gets enqueued to
// be executed on an available DNS client connection.
func (p *Pool) Submit(task func(conn *dns.Conn)) {
	p.workers.Submit(func() { p.task(task) })
}

// ResolveName is a convenience method for submitting A and/or AAAA queries,
// depending on the specified IP version constraint, and gathering the
// results. The results (resolved IP addresses in textual format) or an error
// if resolution failed is passed to the specified callback function fn.
//
// fn is called only once after completing all queries, so fn always gets to
// see all IP addresses from all IP families to see (if any).
//
// Please note that when the passed context is cancelled this will cancel all
// in-flight as well as scheduled name resolution jobs.
func (p *Pool) ResolveName(ctx context.Context, name string, ipv types.IPVersion, fn func([]string, error)) {
	p.Submit(func(conn *dns.Conn) {
		var addrs []string
		var err error
		defer func() { fn(addrs, err) }() // ...ensure triggering the result callback on our way out

		for _, fqdn := range p.names(name) {
			for _, addrType := range queryTypes(ipv) {
				// don't try to resolve the name if the context has been
				// cancelled; trigger the callback immediately with the context
				// error.
				select {
				case <-ctx.Done():
					err = ctx.Err()
					return
				default:
				}

				msg := dns.Msg{
					MsgHdr: dns.MsgHdr{Id: dns.Id()},
				}
				msg.SetQuestion(fqdn, addrType)
				var r *dns.Msg
				r, _, err = p.dnsclnt.ExchangeWithConn(&msg, conn)
				if err != nil {
					return
				}
				for _, rr := range r.Answer {
					if addrRR, ok := rr.(*dns.A); ok {
						addrs = append(addrs, addrRR.A.String())
						continue
					}
					if addrRR, ok := rr.(*dns.AAAA); ok {
						addrs = append(addrs, addrRR.AAAA.String())
					}
				}
			}
			if len(addrs) > 0 {
				return
			}
		}
		// If we neither got A nor AAAA answers then we consider this to be an
		// error. This ensures to send an error to the callback together with
		// the nil list of resolved IP addresses.
		err = fmt.Errorf("query for %q yields no answers", name)
	})
}

// Resolve the specified host name into its IP addresses, honoring the IP
// version constraint. IP address literals resolve to themselves. Unless
// disabled, names not resolvable via DNS are resolved by the system resolver,
// so that names from /etc/hosts such as "localhost" resolve.
func (p *Pool) Resolve(ctx context.Context, host string, ipv types.IPVersion) ([]string, error) {
	if net.ParseIP(host) != nil {
		return []string{host}, nil
	}
	type result struct {
		addrs []string
		err   error
	}
	ch := make(chan result, 1)
	p.ResolveName(ctx, host, ipv, func(addrs []string, err error) {
		ch <- result{addrs: addrs, err: err}
	})
	var res result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err == nil || !p.fallback {
		return res.addrs, res.err
	}
	log.Debugf("DNS resolution of %q failed, falling back: %s", host, res.err)
	return System{}.Resolve(ctx, host, ipv)
}

// task grabs the next free DNS client and passes it to the specified
// function. After the function returns, the connection is put back into the
// free list.
func (p *Pool) task(task func(conn *dns.Conn)) {
	// pop off a free DNS client connection,
	// https://ueokande.github.io/go-slice-tricks/,
	p.mu.Lock()
	if len(p.free) == 0 {
		panic("no free DNS client connection available")
	}
	last := len(p.free) - 1
	conn := p.free[last]
	p.free = p.free[:last]
	p.mu.Unlock()
	// run the task with its assigned DNS client connection...
	task(conn)
	// ...and push the DNS client connection back into the free list.
	p.mu.Lock()
	p.free = append(p.free, conn)
	p.mu.Unlock()
}

// StopWait waits for all enqueued address lookup or generic DNS request tasks
// to finish, and then shuts down the pool.
func (p *Pool) StopWait() {
	p.workers.StopWait()
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, conn := range p.free {
		conn.Close()
	}
	p.free = nil
}

// names returns the fully qualified names to try for the specified name.
func (p *Pool) names(name string) []string {
	if p.config == nil {
		return []string{dns.Fqdn(name)}
	}
	return p.config.NameList(name)
}

func queryTypes(ipv types.IPVersion) []uint16 {
	switch ipv {
	case types.ForceV4:
		return []uint16{dns.TypeA}
	case types.ForceV6:
		return []uint16{dns.TypeAAAA}
	}
	return []uint16{dns.TypeA, dns.TypeAAAA}
}

func secs(s int) time.Duration { return time.Duration(s) * time.Second }
