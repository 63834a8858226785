// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/siemens/pingbridge/executor"
	"github.com/siemens/pingbridge/executor/executortest"
	"github.com/siemens/pingbridge/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
)

var localhost = types.Target{Host: "127.0.0.1"}

type closingExecutor struct{}

func (closingExecutor) Start(context.Context, executor.Request) (<-chan executor.Event, error) {
	events := make(chan executor.Event)
	close(events)
	return events, nil
}

var _ = Describe("probe sessions", func() {

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).WithTimeout(3 * time.Second).WithPolling(250 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
		})
	})

	It("rejects invalid requests without starting", func(ctx context.Context) {
		x := executortest.New()
		_, err := Open(ctx, x, executor.Request{Target: types.Target{Host: ""}, Interval: time.Second})
		Expect(err).To(MatchError(types.ErrInvalidConfig))
		_, err = Open(ctx, x, executor.Request{Target: localhost})
		Expect(err).To(MatchError(types.ErrInvalidConfig))
		Expect(x.Starts()).To(BeZero())
	})

	It("wraps executor start failures", func(ctx context.Context) {
		_, err := Open(ctx, executortest.Failing(errors.New("D'oh!")),
			executor.Request{Target: localhost, Interval: time.Second})
		Expect(err).To(MatchError(executor.ErrStart))
		_, err = Open(ctx, executortest.Failing(types.ConfigErrorf("D'oh!")),
			executor.Request{Target: localhost, Interval: time.Second})
		Expect(err).To(MatchError(types.ErrInvalidConfig))
	})

	It("streams outcomes and ends after exit", func(ctx context.Context) {
		x := executortest.New(
			executortest.Reply(0, 1, time.Millisecond),
			executortest.NoAnswer(0, 2),
			executortest.Line(0, "foobar"),
			executortest.Exit(0, 1, ""),
		)
		s, err := Open(ctx, x, executor.Request{Target: localhost, Interval: time.Second})
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		var kinds []types.Kind
		for o := range s.Outcomes() {
			kinds = append(kinds, o.Kind())
		}
		Expect(kinds).To(HaveExactElements(types.Pong, types.Timeout, types.Unknown, types.Exited))
		Eventually(s.Done()).Should(BeClosed())
		Expect(x.Running()).To(BeZero())
	})

	It("synthesizes an exit when the executor vanishes", func(ctx context.Context) {
		s, err := Open(ctx, closingExecutor{}, executor.Request{Target: localhost, Interval: time.Second})
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		var o types.Outcome
		Eventually(s.Outcomes()).Should(Receive(&o))
		Expect(o.IsExited()).To(BeTrue())
		Eventually(s.Outcomes()).Should(BeClosed())
	})

	It("tears down the executor when closed", func(ctx context.Context) {
		x := executortest.New(executortest.Reply(0, 1, time.Millisecond))
		s, err := Open(ctx, x, executor.Request{Target: localhost, Interval: time.Second})
		Expect(err).NotTo(HaveOccurred())
		Eventually(s.Outcomes()).Should(Receive())
		Expect(x.Running()).To(Equal(1))
		s.Close()
		Expect(x.Running()).To(BeZero())
		Expect(s.Outcomes()).To(BeClosed())
		s.Close()
	})

	It("tears down the executor when the context gets cancelled", func(ctx context.Context) {
		ctx, cancel := context.WithCancel(ctx)
		x := executortest.New()
		s, err := Open(ctx, x, executor.Request{Target: localhost, Interval: time.Second})
		Expect(err).NotTo(HaveOccurred())
		cancel()
		Eventually(s.Done()).Should(BeClosed())
		Expect(x.Running()).To(BeZero())
		Expect(s.Outcomes()).To(BeClosed())
	})

})
