// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package stream

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	xt "github.com/siemens/pingbridge/executor/executortest"
	"github.com/siemens/pingbridge/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
)

var localhost = types.Target{Host: "127.0.0.1"}

var _ = Describe("streams", func() {

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).WithTimeout(3 * time.Second).WithPolling(250 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
		})
	})

	It("queues outcomes until received", func(ctx context.Context) {
		x := xt.New(
			xt.Reply(0, 1, time.Millisecond),
			xt.NoAnswer(0, 2),
			xt.Reply(0, 3, time.Millisecond))
		s, err := Open(ctx, x, localhost, time.Second)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		Eventually(s.Len).Should(Equal(3))
		Expect(s.IsActive()).To(BeTrue())

		o, ok := s.TryRecv()
		Expect(ok).To(BeTrue())
		Expect(o.IsSuccess()).To(BeTrue())
		o, err = s.Recv(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(o.IsTimeout()).To(BeTrue())
		o, err = s.Recv(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(o.IsSuccess()).To(BeTrue())

		_, ok = s.TryRecv()
		Expect(ok).To(BeFalse())
		Expect(s.IsActive()).To(BeTrue())
	})

	It("doesn't block when trying to receive from a fresh stream", func(ctx context.Context) {
		x := xt.New(xt.Reply(500*time.Millisecond, 1, time.Millisecond))
		s, err := Open(ctx, x, localhost, time.Second)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		start := time.Now()
		_, ok := s.TryRecv()
		Expect(ok).To(BeFalse())
		Expect(time.Since(start)).To(BeNumerically("<", 100*time.Millisecond))
		Expect(s.IsActive()).To(BeTrue())
		Eventually(func() bool {
			o, ok := s.TryRecv()
			return ok && o.IsSuccess()
		}).Should(BeTrue())
	})

	It("hands each outcome to exactly one of many concurrent receivers", func(ctx context.Context) {
		const outcomes = 50
		const receivers = 5
		steps := []xt.Step{}
		expected := []string{}
		for seq := 1; seq <= outcomes; seq++ {
			step := xt.Reply(time.Duration(seq%3)*time.Millisecond, seq, time.Millisecond)
			steps = append(steps, step)
			expected = append(expected, step.Event.Line)
		}
		steps = append(steps, xt.Exit(0, 0, ""))
		s, err := Open(ctx, xt.New(steps...), localhost, time.Second)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		var mu sync.Mutex
		received := []string{}
		exits := 0
		var wg sync.WaitGroup
		for r := 0; r < receivers; r++ {
			wg.Add(1)
			go func(polling bool) {
				defer GinkgoRecover()
				defer wg.Done()
				for {
					o, ok := types.Outcome{}, false
					if polling {
						o, ok = s.TryRecv()
					}
					if !ok {
						var err error
						o, err = s.Recv(ctx)
						if errors.Is(err, ErrEndOfStream) {
							return
						}
						Expect(err).NotTo(HaveOccurred())
					}
					mu.Lock()
					if o.IsExited() {
						exits++
					} else {
						received = append(received, o.Line())
					}
					mu.Unlock()
				}
			}(r%2 == 0)
		}
		wg.Wait()
		Expect(received).To(ConsistOf(expected))
		Expect(exits).To(Equal(1))
		Expect(s.IsActive()).To(BeFalse())
	})

	It("waits for outcomes to arrive", func(ctx context.Context) {
		x := xt.New(xt.Reply(200*time.Millisecond, 1, time.Millisecond))
		s, err := Open(ctx, x, localhost, time.Second)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		o, err := s.Recv(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(o.IsSuccess()).To(BeTrue())
	})

	It("lets receivers give up waiting", func(ctx context.Context) {
		s, err := Open(ctx, xt.New(), localhost, time.Second)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		waitctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		_, err = s.Recv(waitctx)
		Expect(err).To(MatchError(context.DeadlineExceeded))
		Expect(s.IsActive()).To(BeTrue())
	})

	It("drains after the probe executor exited", func(ctx context.Context) {
		x := xt.New(
			xt.Reply(0, 1, time.Millisecond),
			xt.Exit(0, 1, "oops"))
		s, err := Open(ctx, x, localhost, time.Second)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		Eventually(s.Done()).Should(BeClosed())
		Expect(x.Running()).To(BeZero())
		Expect(s.IsActive()).To(BeTrue())

		o, err := s.Recv(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(o.IsSuccess()).To(BeTrue())
		o, err = s.Recv(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(o.IsExited()).To(BeTrue())

		Expect(s.IsActive()).To(BeFalse())
		_, err = s.Recv(ctx)
		Expect(err).To(MatchError(ErrEndOfStream))
	})

	It("ends after the maximum count", func(ctx context.Context) {
		x := xt.New(
			xt.Reply(0, 1, time.Millisecond),
			xt.Reply(0, 2, time.Millisecond),
			xt.Reply(0, 3, time.Millisecond))
		s, err := Open(ctx, x, localhost, time.Second, WithMaxCount(2))
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		Eventually(s.Done()).Should(BeClosed())
		Expect(x.Running()).To(BeZero())
		Expect(s.Len()).To(Equal(2))
	})

	It("discards queued outcomes and tears down when closed", func(ctx context.Context) {
		x := xt.New(xt.Reply(0, 1, time.Millisecond))
		s, err := Open(ctx, x, localhost, time.Second)
		Expect(err).NotTo(HaveOccurred())
		Eventually(s.Len).Should(Equal(1))
		s.Close()
		Expect(x.Running()).To(BeZero())
		Expect(s.IsActive()).To(BeFalse())
		_, ok := s.TryRecv()
		Expect(ok).To(BeFalse())
		_, err = s.Recv(ctx)
		Expect(err).To(MatchError(ErrEndOfStream))
		s.Close()
	})

	It("tears down when the context gets cancelled", func(ctx context.Context) {
		x := xt.New()
		ctx, cancel := context.WithCancel(ctx)
		s, err := Open(ctx, x, localhost, time.Second)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		cancel()
		Eventually(s.Done()).Should(BeClosed())
		Expect(x.Running()).To(BeZero())
		Expect(s.IsActive()).To(BeFalse())
	})

	It("tears down unreachable streams", func(ctx context.Context) {
		x := xt.New()
		func() {
			_, err := Open(ctx, x, localhost, time.Second)
			Expect(err).NotTo(HaveOccurred())
		}()
		Expect(x.Running()).To(Equal(1))
		Eventually(func() int {
			runtime.GC()
			return x.Running()
		}).WithTimeout(5 * time.Second).WithPolling(100 * time.Millisecond).Should(BeZero())
	})

	It("rejects invalid configurations", func(ctx context.Context) {
		x := xt.New()
		_, err := Open(ctx, x, localhost, 0)
		Expect(err).To(MatchError(types.ErrInvalidConfig))
		_, err = Open(ctx, x, localhost, time.Second, WithMaxCount(-1))
		Expect(err).To(MatchError(types.ErrInvalidConfig))
		Expect(x.Starts()).To(BeZero())
	})

})
