// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"os"
	"time"

	"github.com/siemens/pingbridge/types"

	"github.com/go-ping/ping"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
	. "github.com/thediveo/namspill"
)

var _ = Describe("native ICMP executor", func() {

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).WithTimeout(3 * time.Second).WithPolling(250 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
			Expect(Tasks()).To(BeUniformlyNamespaced())
		})
	})

	It("rejects invalid requests", func(ctx context.Context) {
		_, err := NewICMP().Start(ctx, Request{Target: types.Target{Host: "localhost"}})
		Expect(err).To(MatchError(types.ErrInvalidConfig))
		_, err = NewICMP().Start(ctx, Request{Target: types.Target{Host: ""}, Interval: time.Second})
		Expect(err).To(MatchError(types.ErrInvalidConfig))
	})

	It("fails to start on unresolvable hosts", func(ctx context.Context) {
		_, err := NewICMP().Start(ctx, Request{Target: types.Target{Host: "foo.invalid"}, Interval: time.Second})
		Expect(err).To(MatchError(ErrStart))
	})

	It("pings the loopback in sequence until cancelled", NodeTimeout(10*time.Second), func(ctx context.Context) {
		if os.Getuid() != 0 {
			Skip("needs root")
		}
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		events, err := NewICMP().Start(ctx, Request{
			Target:   types.Target{Host: "127.0.0.1"},
			Interval: 100 * time.Millisecond,
		})
		Expect(err).NotTo(HaveOccurred())
		for seq := 0; seq < 3; seq++ {
			var ev Event
			Eventually(events).WithTimeout(2 * time.Second).Should(Receive(&ev))
			Expect(ev.Kind).To(Equal(ReplyEvent))
			Expect(ev.Seq).To(Equal(seq))
			Expect(ev.Line).To(ContainSubstring("bytes from 127.0.0.1"))
		}
		cancel()
		Expect(drain(events)).NotTo(ContainElement(HaveField("Kind", ExitEvent)))
	})

	It("reports lost echo requests", func() {
		events := make(chan Event, 10)
		s := &sequencer{
			ctx:      context.Background(),
			events:   events,
			interval: 10 * time.Millisecond,
			deadline: 10 * time.Millisecond,
			replies:  map[int]ping.Packet{},
		}
		s.start()
		s.reply(&ping.Packet{Seq: 1, Rtt: time.Millisecond})
		Expect(events).NotTo(Receive())
		time.Sleep(50 * time.Millisecond)
		s.expire(3)
		Expect(events).To(Receive(And(HaveField("Kind", LossEvent), HaveField("Seq", 0))))
		Expect(events).To(Receive(And(HaveField("Kind", ReplyEvent), HaveField("Seq", 1))))
		Expect(events).To(Receive(And(HaveField("Kind", LossEvent), HaveField("Seq", 2))))
		By("dropping late replies")
		s.reply(&ping.Packet{Seq: 2, Rtt: time.Millisecond})
		Expect(events).NotTo(Receive())
	})

	It("unwraps sequence numbers", func() {
		s := &sequencer{next: 0xfffe}
		Expect(s.unwrap(0xffff)).To(Equal(0xffff))
		Expect(s.unwrap(1)).To(Equal(0x10001))
		s.next = 0x10002
		Expect(s.unwrap(0xffff)).To(Equal(0xffff))
		Expect(s.unwrap(3)).To(Equal(0x10003))
	})

})
