// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package adapter

import (
	"time"

	"github.com/siemens/pingbridge/executor"
	"github.com/siemens/pingbridge/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("classifying", func() {

	DescribeTable("ping command output lines",
		func(line string, kind types.Kind, rtt time.Duration) {
			o := ClassifyLine(line)
			Expect(o.Kind()).To(Equal(kind))
			Expect(o.Line()).To(Equal(line))
			if kind == types.Pong {
				d, ok := o.Duration()
				Expect(ok).To(BeTrue())
				Expect(d).To(BeNumerically("~", rtt, time.Microsecond))
			}
		},
		Entry("linux reply", "64 bytes from localhost (127.0.0.1): icmp_seq=1 ttl=64 time=0.042 ms",
			types.Pong, 42*time.Microsecond),
		Entry("darwin reply", "64 bytes from 127.0.0.1: icmp_seq=0 ttl=64 time=12.345 ms",
			types.Pong, 12345*time.Microsecond),
		Entry("windows reply", "Reply from 127.0.0.1: bytes=32 time=7ms TTL=128",
			types.Pong, 7*time.Millisecond),
		Entry("windows sub-millisecond reply", "Reply from ::1: time<1ms",
			types.Pong, time.Millisecond),
		Entry("linux no answer", "no answer yet for icmp_seq=2", types.Timeout, time.Duration(0)),
		Entry("darwin timeout", "Request timeout for icmp_seq 0", types.Timeout, time.Duration(0)),
		Entry("windows timeout", "Request timed out.", types.Timeout, time.Duration(0)),
		Entry("unreachable", "From 10.0.0.1 icmp_seq=1 Destination Host Unreachable", types.Unknown, time.Duration(0)),
		Entry("windows unreachable", "Reply from 10.0.0.1: Destination host unreachable.", types.Unknown, time.Duration(0)),
		Entry("gibberish", "foobar", types.Unknown, time.Duration(0)),
	)

	It("classifies raw events", func() {
		o := Classify(executor.Event{Kind: executor.ReplyEvent, RTT: time.Millisecond, Line: "pong"})
		Expect(o.IsSuccess()).To(BeTrue())
		Expect(o.Line()).To(Equal("pong"))

		Expect(Classify(executor.Event{Kind: executor.LossEvent, Line: "lost"}).IsTimeout()).To(BeTrue())

		o = Classify(executor.Event{Kind: executor.ExitEvent, ExitCode: 2, Stderr: "oops"})
		Expect(o.IsExited()).To(BeTrue())
		code, ok := o.ExitCode()
		Expect(ok).To(BeTrue())
		Expect(code).To(Equal(2))

		Expect(Classify(executor.Event{Kind: 42, Line: "?"}).IsUnknown()).To(BeTrue())
	})

})
