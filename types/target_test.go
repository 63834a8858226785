// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("targets", func() {

	It("maps IP version hints", func() {
		Expect(IPVersionFromFlags(false, false)).To(Equal(Unconstrained))
		Expect(IPVersionFromFlags(true, false)).To(Equal(ForceV4))
		Expect(IPVersionFromFlags(false, true)).To(Equal(ForceV6))
		_, err := IPVersionFromFlags(true, true)
		Expect(err).To(MatchError(ErrInvalidConfig))
	})

	It("accepts valid targets", func() {
		Expect(Target{Host: "127.0.0.1"}.Validate()).To(Succeed())
		Expect(Target{Host: "::1", IPVersion: ForceV6}.Validate()).To(Succeed())
		Expect(Target{Host: "example.org", Timeout: time.Second, IPVersion: ForceV4}.Validate()).To(Succeed())
		Expect(Target{Host: "localhost", Interface: "lo"}.Validate()).To(Succeed())
	})

	DescribeTable("rejects invalid targets",
		func(t Target) {
			Expect(t.Validate()).To(MatchError(ErrInvalidConfig))
		},
		Entry("empty", Target{}),
		Entry("option injection", Target{Host: "-f"}),
		Entry("whitespace", Target{Host: "foo bar"}),
		Entry("bracketed IPv6 literal", Target{Host: "[::1]"}),
		Entry("negative timeout", Target{Host: "localhost", Timeout: -time.Second}),
		Entry("bogus IP version", Target{Host: "localhost", IPVersion: 42}),
		Entry("IPv6 literal forced to IPv4", Target{Host: "::1", IPVersion: ForceV4}),
		Entry("IPv4 literal forced to IPv6", Target{Host: "127.0.0.1", IPVersion: ForceV6}),
		Entry("missing interface", Target{Host: "127.0.0.1", Interface: "nonexisting-nif0"}),
	)

	It("replaces the host in a copy", func() {
		t := Target{Host: "localhost", Timeout: time.Second}
		t2 := t.WithHost("127.0.0.1")
		Expect(t.Host).To(Equal("localhost"))
		Expect(t2.Host).To(Equal("127.0.0.1"))
		Expect(t2.Timeout).To(Equal(time.Second))
		Expect(t2.String()).To(Equal("127.0.0.1"))
	})

})
