// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package verifier

import (
	"context"
	"errors"
	"time"

	"github.com/siemens/pingbridge/executor"
	xt "github.com/siemens/pingbridge/executor/executortest"
	"github.com/siemens/pingbridge/ping"
	"github.com/siemens/pingbridge/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
)

// sweep feeds the specified hosts into a new Verifier and returns the
// verdicts tracked until the Verifier is done.
func sweep(ctx context.Context, x executor.Executor, threshold uint, hosts ...string) []Verdict {
	pinger := ping.New(2, ping.WithExecutor(x), ping.WithoutDNSPreResolve())
	defer pinger.StopWait()
	v, news := New(pinger, threshold, ping.WithCount(2), ping.WithInterval(100*time.Millisecond))
	in := make(chan string)
	go func() {
		defer close(in)
		for _, host := range hosts {
			in <- host
		}
	}()
	go v.Verify(ctx, in)
	verdicts := NewVerdictMap()
	Expect(verdicts.Track(ctx, news)).To(Succeed())
	return verdicts.Get()
}

var _ = Describe("verifier", func() {

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).WithTimeout(3 * time.Second).WithPolling(250 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
		})
	})

	It("verifies hosts, probing each host only once", func(ctx context.Context) {
		x := xt.New(
			xt.Reply(0, 1, time.Millisecond),
			xt.NoAnswer(10*time.Millisecond, 2))
		verdicts := sweep(ctx, x, 50, "localhost", "LOCALHOST.", "127.0.0.1", "", "localhost")
		Expect(verdicts).To(HaveLen(3))
		Expect(verdicts).To(HaveEach(HaveField("Quality", types.Verified)))
		Expect(verdicts[0].Host).To(Equal("127.0.0.1"))
		Expect(verdicts[2].Stats.Sent).To(Equal(2))
		Expect(verdicts[2].Stats.Received).To(Equal(1))
		Expect(x.Starts()).To(Equal(2))
		Expect(x.Running()).To(BeZero())
	})

	It("invalidates hosts below the threshold", func(ctx context.Context) {
		x := xt.New(
			xt.Reply(0, 1, time.Millisecond),
			xt.NoAnswer(10*time.Millisecond, 2))
		verdicts := sweep(ctx, x, 100, "localhost")
		Expect(verdicts).To(ConsistOf(HaveField("Quality", types.Invalid)))
	})

	It("invalidates hosts failing to be probed", func(ctx context.Context) {
		x := xt.Failing(errors.New("D'OH!"))
		verdicts := sweep(ctx, x, 0, "localhost")
		Expect(verdicts).To(HaveLen(1))
		Expect(verdicts[0].Quality).To(Equal(types.Invalid))
		Expect(verdicts[0].Err).To(MatchError(executor.ErrStart))
	})

	It("stops when cancelled", func() {
		x := xt.New()
		pinger := ping.New(1, ping.WithExecutor(x), ping.WithoutDNSPreResolve())
		defer pinger.StopWait()
		v, news := New(pinger, 50)
		ctx, cancel := context.WithCancel(context.Background())
		in := make(chan string, 1)
		in <- "localhost"
		done := make(chan struct{})
		go func() {
			defer close(done)
			v.Verify(ctx, in)
		}()
		Eventually(news).Should(Receive(HaveField("Quality", types.Verifying)))
		Eventually(x.Running).Should(Equal(1))
		cancel()
		Eventually(done).Should(BeClosed())
		Eventually(news).Should(BeClosed())
		Eventually(x.Running).Should(BeZero())
	})

})
