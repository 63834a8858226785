// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ping

import (
	"time"

	"github.com/siemens/pingbridge/types"
)

// Defaults applied to individual probe calls.
const (
	DefaultTimeout  = 5 * time.Second // per probe of [Pinger.Once].
	DefaultCount    = 4               // probes of [Pinger.Multiple].
	DefaultInterval = time.Second     // between probes of [Pinger.Multiple] and [Pinger.Stream].
)

// settings of an individual probe call.
type settings struct {
	timeout  time.Duration
	count    int
	interval time.Duration
	nif      string
	ipv4     bool
	ipv6     bool
	maxCount int
}

// Option can be passed to the probe calls of a [Pinger], such as
// [Pinger.Once].
type Option func(*settings)

// WithTimeout sets the time to wait for a reply with [Pinger.Once], or the
// overall time limit of [Pinger.Multiple].
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

// WithCount sets the number of outcomes to collect with [Pinger.Multiple].
func WithCount(count int) Option {
	return func(s *settings) {
		s.count = count
	}
}

// WithInterval sets the interval between consecutive probes.
func WithInterval(interval time.Duration) Option {
	return func(s *settings) {
		s.interval = interval
	}
}

// WithInterface binds probes to the named network interface.
func WithInterface(nif string) Option {
	return func(s *settings) {
		s.nif = nif
	}
}

// WithIPv4 forces probing over IPv4.
func WithIPv4() Option {
	return func(s *settings) {
		s.ipv4 = true
	}
}

// WithIPv6 forces probing over IPv6.
func WithIPv6() Option {
	return func(s *settings) {
		s.ipv6 = true
	}
}

// WithMaxCount ends a [Pinger.Stream] after the specified number of outcomes.
func WithMaxCount(count int) Option {
	return func(s *settings) {
		s.maxCount = count
	}
}

// newSettings returns the settings resulting from applying the specified
// options to the specified defaults.
func newSettings(defaults settings, options []Option) settings {
	s := defaults
	for _, opt := range options {
		opt(&s)
	}
	return s
}

// target returns the validated target for the specified host. The timeout
// isn't part of the target, as its meaning depends on the kind of probe call.
func (s settings) target(host string) (types.Target, error) {
	ipv, err := types.IPVersionFromFlags(s.ipv4, s.ipv6)
	if err != nil {
		return types.Target{}, err
	}
	if s.timeout < 0 {
		return types.Target{}, types.ConfigErrorf("timeout must not be negative, got: %s", s.timeout)
	}
	t := types.Target{
		Host:      host,
		Interface: s.nif,
		IPVersion: ipv,
	}
	if err := t.Validate(); err != nil {
		return types.Target{}, err
	}
	return t, nil
}
