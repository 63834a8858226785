// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/siemens/pingbridge/types"

	"github.com/go-ping/ping"
	"github.com/thediveo/lxkns/log"
	"github.com/thediveo/lxkns/ops"
	"github.com/thediveo/lxkns/ops/relations"
	"github.com/thediveo/lxkns/species"
	"golang.org/x/net/icmp"
)

// ICMP is an [Executor] sending ICMP echo requests itself, without the help
// of any ping command. It emits [ReplyEvent] and [LossEvent] events in the
// order of the echo request sequence numbers.
type ICMP struct {
	unprivileged bool               // if true, uses UDP-based pings instead of privileged ICMPs.
	netns        relations.Relation // network namespace to ping from, or nil.
}

// ICMPOption can be passed to NewICMP when creating new ICMP executors.
type ICMPOption func(*ICMP)

// NewICMP returns a new [ICMP] executor, defaulting to privileged pings in
// the network namespace of the caller.
func NewICMP(options ...ICMPOption) *ICMP {
	x := &ICMP{}
	for _, opt := range options {
		opt(x)
	}
	return x
}

// Unprivileged tells the ICMP executor to carry out unprivileged pings using
// UDP instead of raw ICMP packets.
func Unprivileged() ICMPOption {
	return func(x *ICMP) {
		x.unprivileged = true
	}
}

// InNetworkNamespace optionally runs the ICMP executor inside the network
// namespace referenced by the specified filesystem path, such as
// "/proc/666/ns/net".
func InNetworkNamespace(netnsref string) ICMPOption {
	return func(x *ICMP) {
		x.netns = ops.NewTypedNamespacePath(netnsref, species.CLONE_NEWNET)
	}
}

// Start sends echo requests to the target at the requested interval until
// the context gets cancelled. Echo requests without a reply within the
// target's timeout (or the interval, if unset) are reported as [LossEvent].
// Replies arriving after the loss of their echo request has been reported are
// dropped.
func (x *ICMP) Start(ctx context.Context, req Request) (<-chan Event, error) {
	if err := req.Target.Validate(); err != nil {
		return nil, err
	}
	if req.Interval <= 0 {
		return nil, types.ConfigErrorf("interval must be positive, got: %s", req.Interval)
	}
	pinger := ping.New(req.Target.Host)
	switch req.Target.IPVersion {
	case types.ForceV4:
		pinger.SetNetwork("ip4")
	case types.ForceV6:
		pinger.SetNetwork("ip6")
	}
	if err := pinger.Resolve(); err != nil {
		return nil, startErrorf("cannot resolve %q: %s", req.Target.Host, err)
	}
	ipv4 := pinger.IPAddr().IP.To4() != nil
	if req.Target.Interface != "" {
		src, err := sourceAddress(req.Target.Interface, ipv4)
		if err != nil {
			return nil, err
		}
		pinger.Source = src
	}
	pinger.SetPrivileged(!x.unprivileged)
	pinger.Count = -1
	pinger.Interval = req.Interval
	deadline := req.Target.Timeout
	if deadline <= 0 {
		deadline = req.Interval
	}
	// Check that we're allowed to open the kind of socket needed, as
	// otherwise the pinger will fail only after we've returned.
	if err := x.execute(func() error { return probeSocket(!x.unprivileged, ipv4, pinger.Source) }); err != nil {
		return nil, startErrorf("%s", err)
	}

	events := make(chan Event)
	seqs := &sequencer{
		ctx:      ctx,
		events:   events,
		interval: req.Interval,
		deadline: deadline,
		replies:  map[int]ping.Packet{},
	}
	pinger.OnRecv = seqs.reply

	go func() {
		defer close(events)
		// While the pinger is running, we need to monitor the context in case
		// it becomes "done". The done channel here works "the other way round"
		// in the sense that it terminates the context monitoring.
		done := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			seqs.watch(done, pinger)
		}()
		seqs.start()
		err := x.execute(pinger.Run)
		close(done)
		wg.Wait()
		seqs.stop()
		if ctx.Err() != nil {
			log.Debugf("ICMP pinging %s terminated by cancellation", req.Target.Host)
			return
		}
		exit := Event{Kind: ExitEvent}
		if err != nil {
			exit.ExitCode = 2
			exit.Stderr = err.Error()
		}
		log.Debugf("ICMP pinging %s terminated with code %d", req.Target.Host, exit.ExitCode)
		send(ctx, events, exit)
	}()
	return events, nil
}

// execute the specified function in the network namespace of this executor,
// if necessary.
func (x *ICMP) execute(fn func() error) error {
	if x.netns == nil {
		return fn()
	}
	// lxkns' ops.Execute differentiates between a namespace switching error
	// and the result of the function called in the switched namespaces.
	res, err := ops.Execute(func() interface{} { return fn() }, x.netns)
	if err != nil {
		return err
	}
	if fnerr, ok := res.(error); ok && fnerr != nil {
		return fnerr
	}
	return nil
}

// sourceAddress returns the first address of the named network interface in
// the requested IP family.
func sourceAddress(nif string, ipv4 bool) (string, error) {
	netif, err := net.InterfaceByName(nif)
	if err != nil {
		return "", types.ConfigErrorf("unsupported interface %q: %s", nif, err)
	}
	addrs, err := netif.Addrs()
	if err != nil {
		return "", types.ConfigErrorf("unsupported interface %q: %s", nif, err)
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if (ipnet.IP.To4() != nil) == ipv4 {
			return ipnet.IP.String(), nil
		}
	}
	return "", types.ConfigErrorf("interface %q has no suitable source address", nif)
}

// probeSocket opens and immediately closes the kind of socket a pinger is
// going to use.
func probeSocket(privileged bool, ipv4 bool, source string) error {
	var network string
	switch {
	case privileged && ipv4:
		network = "ip4:icmp"
	case privileged:
		network = "ip6:ipv6-icmp"
	case ipv4:
		network = "udp4"
	default:
		network = "udp6"
	}
	if source == "" {
		source = "0.0.0.0"
		if !ipv4 {
			source = "::"
		}
	}
	conn, err := icmp.ListenPacket(network, source)
	if err != nil {
		return err
	}
	return conn.Close()
}

// sequencer turns echo replies into events in echo request order, and reports
// echo requests as lost when their replies don't arrive in time.
type sequencer struct {
	ctx      context.Context
	events   chan<- Event
	interval time.Duration
	deadline time.Duration

	mu      sync.Mutex
	started time.Time
	next    int                 // lowest sequence number not yet reported.
	replies map[int]ping.Packet // early replies waiting for their predecessors.
	stopped bool
}

func (s *sequencer) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = time.Now()
}

func (s *sequencer) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// reply receives an echo reply from the pinger.
func (s *sequencer) reply(pkt *ping.Packet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	seq := s.unwrap(pkt.Seq)
	if seq < s.next {
		log.Debugf("dropping late reply from %s for icmp_seq %d", pkt.IPAddr, pkt.Seq)
		return
	}
	s.replies[seq] = *pkt
	s.flush()
}

// unwrap maps a 16 bit ICMP sequence number to the echo request count,
// assuming it is close to the next sequence number not yet reported.
func (s *sequencer) unwrap(seq int) int {
	full := s.next&^0xffff | seq&0xffff
	switch {
	case full < s.next-0x8000:
		full += 0x10000
	case full > s.next+0x8000 && full >= 0x10000:
		full -= 0x10000
	}
	return full
}

// flush emits all replies that are due in order.
func (s *sequencer) flush() {
	for {
		pkt, ok := s.replies[s.next]
		if !ok {
			return
		}
		seq := s.next
		delete(s.replies, seq)
		s.next++
		s.emit(Event{
			Kind: ReplyEvent,
			Line: fmt.Sprintf("%d bytes from %s: icmp_seq=%d time=%.3f ms",
				pkt.Nbytes, pkt.IPAddr, pkt.Seq, float64(pkt.Rtt)/float64(time.Millisecond)),
			Seq: seq,
			RTT: pkt.Rtt,
		})
	}
}

// expire reports all sent echo requests as lost that are overdue.
func (s *sequencer) expire(sent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	elapsed := time.Since(s.started)
	for s.next < sent {
		due := time.Duration(s.next)*s.interval + s.deadline
		if elapsed < due {
			return
		}
		seq := s.next
		s.next++
		s.emit(Event{
			Kind: LossEvent,
			Line: fmt.Sprintf("Request timeout for icmp_seq %d", seq),
			Seq:  seq,
		})
		s.flush()
	}
}

// emit must be called with the lock held.
func (s *sequencer) emit(ev Event) {
	if !send(s.ctx, s.events, ev) {
		s.stopped = true
	}
}

// watch stops the pinger when the context is done, and otherwise
// periodically checks for lost echo requests, until the done channel closes.
func (s *sequencer) watch(done <-chan struct{}, pinger *ping.Pinger) {
	period := s.interval
	if s.deadline < period {
		period = s.deadline
	}
	period /= 4
	if period < 10*time.Millisecond {
		period = 10 * time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			pinger.Stop()
			return
		case <-done:
			return
		case <-ticker.C:
			s.expire(pinger.Statistics().PacketsSent)
		}
	}
}
