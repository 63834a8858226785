// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("outcomes", func() {

	It("stringifies kinds", func() {
		Expect(Pong.String()).To(Equal("Pong"))
		Expect(Timeout.String()).To(Equal("Timeout"))
		Expect(Unknown.String()).To(Equal("Unknown"))
		Expect(Exited.String()).To(Equal("PingExited"))
		Expect(Kind(42).String()).To(Equal("Kind(42)"))
	})

	It("populates only the pong variant fields", func() {
		o := NewPong(1500*time.Microsecond, "64 bytes from 127.0.0.1: icmp_seq=1 ttl=64 time=1.50 ms")
		Expect(o.Kind()).To(Equal(Pong))
		rtt, ok := o.Duration()
		Expect(ok).To(BeTrue())
		Expect(rtt).To(Equal(1500 * time.Microsecond))
		ms, ok := o.DurationMS()
		Expect(ok).To(BeTrue())
		Expect(ms).To(BeNumerically("~", 1.5, 1e-9))
		_, ok = o.ExitCode()
		Expect(ok).To(BeFalse())
		_, ok = o.Stderr()
		Expect(ok).To(BeFalse())
		Expect(o.Line()).To(ContainSubstring("icmp_seq=1"))
		Expect(o.String()).To(HavePrefix("PingResult.Pong(duration_ms=1.5ms"))
	})

	It("clamps negative round-trip times", func() {
		rtt, ok := NewPong(-time.Second, "").Duration()
		Expect(ok).To(BeTrue())
		Expect(rtt).To(BeZero())
	})

	It("populates only the exited variant fields", func() {
		o := NewExited(2, "ping: unknown host")
		_, ok := o.Duration()
		Expect(ok).To(BeFalse())
		code, ok := o.ExitCode()
		Expect(ok).To(BeTrue())
		Expect(code).To(Equal(2))
		stderr, ok := o.Stderr()
		Expect(ok).To(BeTrue())
		Expect(stderr).To(Equal("ping: unknown host"))
		Expect(o.Line()).To(Equal("ping: unknown host"))
		Expect(o.String()).To(Equal("PingResult.PingExited(exit_code=2, stderr='ping: unknown host')"))
	})

	DescribeTable("has exactly one true classification predicate matching its type name",
		func(o Outcome, typename string) {
			preds := map[string]bool{
				"Pong":       o.IsSuccess(),
				"Timeout":    o.IsTimeout(),
				"Unknown":    o.IsUnknown(),
				"PingExited": o.IsExited(),
			}
			trues := 0
			for name, pred := range preds {
				if pred {
					trues++
					Expect(name).To(Equal(typename))
				}
			}
			Expect(trues).To(Equal(1))

			m := o.ToMap()
			Expect(m).To(HaveKeyWithValue("type_name", typename))
			Expect(o.Record().TypeName).To(Equal(typename))
			var back map[string]any
			Expect(json.Unmarshal(Successful(json.Marshal(o)), &back)).To(Succeed())
			Expect(back).To(HaveKeyWithValue("type_name", typename))
		},
		Entry("pong", NewPong(time.Millisecond, "pong"), "Pong"),
		Entry("timeout", NewTimeout("Request timeout for icmp_seq 0"), "Timeout"),
		Entry("unknown", NewUnknown("foobar"), "Unknown"),
		Entry("exited", NewExited(1, "boom"), "PingExited"),
	)

	It("projects optional fields only where present", func() {
		Expect(NewPong(2*time.Millisecond, "x").ToMap()).To(And(
			HaveKeyWithValue("duration_ms", 2.0),
			Not(HaveKey("exit_code")),
			Not(HaveKey("stderr"))))
		Expect(NewTimeout("t").ToMap()).NotTo(Or(
			HaveKey("duration_ms"), HaveKey("exit_code"), HaveKey("stderr")))
		Expect(NewExited(0, "").ToMap()).To(And(
			HaveKeyWithValue("exit_code", 0),
			HaveKeyWithValue("stderr", ""),
			Not(HaveKey("duration_ms"))))
	})

})
