// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ping

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/siemens/pingbridge/executor"
	"github.com/siemens/pingbridge/probe"
	"github.com/siemens/pingbridge/resolver"
	"github.com/siemens/pingbridge/stream"
	"github.com/siemens/pingbridge/types"

	"github.com/gammazero/workerpool"
	"github.com/thediveo/lxkns/log"
)

// ErrStopped is returned when submitting asynchronous probe calls to a
// stopped [Pinger].
var ErrStopped = errors.New("pinger has been stopped")

// Pinger probes targets synchronously, asynchronously, or as streams of
// outcomes. Asynchronous probe calls run on a goroutine-limited worker pool.
type Pinger struct {
	native         bool                   // if true, sends ICMP echo requests itself.
	unprivileged   bool                   // if true, uses UDP-based pings instead of privileged ICMPs.
	netnsref       string                 // network namespace to ping from, or empty.
	binary         string                 // ping command binary, or empty for the OS default.
	preResolve     bool                   // if true, resolves host names before probing.
	resolveTimeout time.Duration          // limit for resolving host names; zero for the probe interval.
	resolvconf     string                 // where to find the name server and search list.
	exec           executor.Executor      // probe executor for all probe calls.
	workers        *workerpool.WorkerPool // workers running asynchronous probe calls.
	dnspool        *resolver.Pool         // DNS workers for resolving host names, or nil.

	mu       sync.Mutex // protects stopped
	stopped  bool
	stopOnce sync.Once
}

// PingerOption can be passed to New when creating new Pinger objects.
type PingerOption func(*Pinger)

// New returns a new [Pinger] with a maximum worker pool of the specified size
// for running asynchronous probe calls.
//
// The new pinger defaults to running the operating system's ping command and
// resolving host names beforehand. The pinger can be configured during
// creation using several options:
//   - [AsNative]
//   - [AsUnprivileged]
//   - [InNetworkNamespace]
//   - [WithBinary]
//   - [WithExecutor]
//   - [WithoutDNSPreResolve]
//   - [WithDNSResolveTimeout]
//   - [WithResolvConf]
//
// Call [Pinger.StopWait] when done with the Pinger in order to release its
// workers.
func New(size int, options ...PingerOption) *Pinger {
	p := &Pinger{
		preResolve: true,
		resolvconf: "/etc/resolv.conf",
		workers:    workerpool.New(size),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.exec == nil {
		if p.native {
			var icmpopts []executor.ICMPOption
			if p.unprivileged {
				icmpopts = append(icmpopts, executor.Unprivileged())
			}
			if p.netnsref != "" {
				icmpopts = append(icmpopts, executor.InNetworkNamespace(p.netnsref))
			}
			p.exec = executor.NewICMP(icmpopts...)
		} else {
			p.exec = executor.NewCommand(executor.WithBinary(p.binary))
		}
	}
	if p.preResolve {
		var r executor.Resolver = resolver.System{}
		var poolopts []resolver.PoolOption
		if p.netnsref != "" {
			poolopts = append(poolopts, resolver.InNetworkNamespace(p.netnsref))
		}
		dnspool, err := resolver.FromResolvConf(context.Background(), size, p.resolvconf, poolopts...)
		if err != nil {
			log.Debugf("using system resolver only, as DNS is unavailable: %s", err)
		} else {
			p.dnspool = dnspool
			r = dnspool
		}
		p.exec = executor.NewResolving(p.exec, r, p.resolveTimeout)
	}
	return p
}

// AsNative tells the Pinger to send ICMP echo requests itself instead of
// running the operating system's ping command.
func AsNative() PingerOption {
	return func(p *Pinger) {
		p.native = true
	}
}

// AsUnprivileged tells the Pinger to carry out unprivileged pings using UDP
// instead of ICMP packets. Implies [AsNative].
func AsUnprivileged() PingerOption {
	return func(p *Pinger) {
		p.native = true
		p.unprivileged = true
	}
}

// InNetworkNamespace optionally runs a [Pinger] inside the network namespace
// referenced by the specified filesystem path. Implies [AsNative].
func InNetworkNamespace(netnsref string) PingerOption {
	return func(p *Pinger) {
		p.native = true
		p.netnsref = netnsref
	}
}

// WithBinary runs the specified ping command binary instead of the OS
// default.
func WithBinary(path string) PingerOption {
	return func(p *Pinger) {
		p.binary = path
	}
}

// WithExecutor uses the specified probe executor, ignoring [AsNative],
// [AsUnprivileged], [InNetworkNamespace], and [WithBinary].
func WithExecutor(exec executor.Executor) PingerOption {
	return func(p *Pinger) {
		p.exec = exec
	}
}

// WithoutDNSPreResolve leaves resolving host names to the probe executor.
func WithoutDNSPreResolve() PingerOption {
	return func(p *Pinger) {
		p.preResolve = false
	}
}

// WithDNSResolveTimeout limits resolving host names to the specified
// duration. It defaults to the probe interval.
func WithDNSResolveTimeout(timeout time.Duration) PingerOption {
	return func(p *Pinger) {
		p.resolveTimeout = timeout
	}
}

// WithResolvConf takes the name server and search list from the specified
// resolv.conf file instead of /etc/resolv.conf.
func WithResolvConf(path string) PingerOption {
	return func(p *Pinger) {
		p.resolvconf = path
	}
}

// Once probes the specified host and returns the first definite outcome:
// either a Pong, a Timeout, or an Exited outcome. If no definite outcome
// arrives within the timeout (see [WithTimeout], defaulting to
// [DefaultTimeout]), Once returns a Timeout outcome.
func (p *Pinger) Once(ctx context.Context, host string, options ...Option) (types.Outcome, error) {
	s, target, err := onceSettings(host, options)
	if err != nil {
		return types.Outcome{}, err
	}
	return probe.Once(ctx, p.exec, target, s.timeout)
}

// OnceAsync works like [Pinger.Once], but returns a [Future] for the outcome
// instead of waiting for it. Invalid configurations are reported
// immediately.
func (p *Pinger) OnceAsync(ctx context.Context, host string, options ...Option) (*Future[types.Outcome], error) {
	s, target, err := onceSettings(host, options)
	if err != nil {
		return nil, err
	}
	return submit(p, ctx, func(ctx context.Context) (types.Outcome, error) {
		return probe.Once(ctx, p.exec, target, s.timeout)
	})
}

// Multiple probes the specified host repeatedly and returns the collected
// outcomes; see [probe.Many] for the details. The number of outcomes to
// collect defaults to [DefaultCount] and the interval between probes to
// [DefaultInterval]. The optional overall timeout is set using
// [WithTimeout].
func (p *Pinger) Multiple(ctx context.Context, host string, options ...Option) ([]types.Outcome, error) {
	s, target, err := multipleSettings(host, options)
	if err != nil {
		return nil, err
	}
	return probe.Many(ctx, p.exec, target, s.count, s.interval, s.timeout)
}

// MultipleAsync works like [Pinger.Multiple], but returns a [Future] for the
// outcomes instead of waiting for them. Invalid configurations are reported
// immediately.
func (p *Pinger) MultipleAsync(ctx context.Context, host string, options ...Option) (*Future[[]types.Outcome], error) {
	s, target, err := multipleSettings(host, options)
	if err != nil {
		return nil, err
	}
	return submit(p, ctx, func(ctx context.Context) ([]types.Outcome, error) {
		return probe.Many(ctx, p.exec, target, s.count, s.interval, s.timeout)
	})
}

// Stream continuously probes the specified host at the interval set using
// [WithInterval], defaulting to [DefaultInterval], until either the probe
// executor exits, the maximum count set using [WithMaxCount] is reached, the
// specified context gets cancelled, or the returned Stream gets closed.
func (p *Pinger) Stream(ctx context.Context, host string, options ...Option) (*stream.Stream, error) {
	s := newSettings(settings{interval: DefaultInterval}, options)
	target, err := s.target(host)
	if err != nil {
		return nil, err
	}
	return stream.Open(ctx, p.exec, target, s.interval, stream.WithMaxCount(s.maxCount))
}

// StopWait waits for all queued asynchronous probe calls to finish and then
// releases the workers. Further asynchronous probe calls fail with
// [ErrStopped].
func (p *Pinger) StopWait() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
		p.workers.StopWait()
		if p.dnspool != nil {
			p.dnspool.StopWait()
		}
	})
}

// submit the specified probe job to the workers, returning a Future for its
// result.
func submit[T any](p *Pinger, ctx context.Context, job func(context.Context) (T, error)) (*Future[T], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return nil, ErrStopped
	}
	f, jobctx := newFuture[T](ctx)
	p.workers.Submit(func() {
		if !f.start() {
			return
		}
		f.complete(job(jobctx))
	})
	return f, nil
}

func onceSettings(host string, options []Option) (settings, types.Target, error) {
	s := newSettings(settings{timeout: DefaultTimeout}, options)
	target, err := s.target(host)
	if err != nil {
		return s, target, err
	}
	if s.timeout == 0 {
		return s, target, types.ConfigErrorf("timeout must be positive")
	}
	return s, target, nil
}

func multipleSettings(host string, options []Option) (settings, types.Target, error) {
	s := newSettings(settings{count: DefaultCount, interval: DefaultInterval}, options)
	target, err := s.target(host)
	if err != nil {
		return s, target, err
	}
	if s.count < 0 {
		return s, target, types.ConfigErrorf("count must not be negative, got: %d", s.count)
	}
	if s.interval <= 0 {
		return s, target, types.ConfigErrorf("interval must be positive, got: %s", s.interval)
	}
	return s, target, nil
}
