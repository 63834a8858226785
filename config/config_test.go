// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/siemens/pingbridge/journal"
	"github.com/siemens/pingbridge/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

func profileFile(yaml string) string {
	path := filepath.Join(GinkgoT().TempDir(), "profile.yaml")
	Expect(os.WriteFile(path, []byte(yaml), 0644)).To(Succeed())
	return path
}

var _ = Describe("profiles", func() {

	It("falls back to defaults", func() {
		Expect(Load("")).To(Equal(Defaults()))
		Expect(Load("/nonexisting/profile.yaml")).To(Equal(Defaults()))
		Expect(Defaults().Validate()).To(Succeed())
	})

	It("loads settings, keeping defaults for unspecified ones", func() {
		p := Successful(Load(profileFile(`
interval: 500ms
count: 10
ipv6: true
dns_pre_resolve: false
journal:
  path: /tmp/journal.log
  max_backups: 2
`)))
		Expect(p.Interval).To(Equal(500 * time.Millisecond))
		Expect(p.Timeout).To(Equal(5 * time.Second))
		Expect(p.Count).To(Equal(10))
		Expect(p.IPv6).To(BeTrue())
		Expect(p.DNSPreResolve).To(BeFalse())
		Expect(p.Threshold).To(Equal(uint(50)))
		Expect(p.Journal.Path).To(Equal("/tmp/journal.log"))
		Expect(p.Journal.MaxBackups).To(Equal(2))
		Expect(p.Journal.MaxSizeMB).To(Equal(journal.DefaultRotation.MaxSizeMB))
	})

	It("reports malformed files", func() {
		Expect(Load(profileFile("interval: [}"))).Error().To(MatchError(ContainSubstring("parse config")))
	})

	DescribeTable("rejects invalid settings",
		func(yaml string) {
			Expect(Load(profileFile(yaml))).Error().To(MatchError(types.ErrInvalidConfig))
		},
		Entry(nil, "interval: 0s"),
		Entry(nil, "timeout: -1s"),
		Entry(nil, "count: -1"),
		Entry(nil, "ipv4: true\nipv6: true"),
		Entry(nil, "dns_resolve_timeout: -1s"),
		Entry(nil, "threshold: 101"),
	)

})
