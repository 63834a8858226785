// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ErrInvalidConfig is wrapped by all configuration errors, such as invalid
// target syntax, conflicting IP version constraints, non-positive intervals
// and timeouts, or unusable network interfaces. Configuration errors are
// always reported before any probe starts.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigErrorf returns a new configuration error wrapping [ErrInvalidConfig].
func ConfigErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// IPVersion constrains the IP address family used to probe a target.
type IPVersion int

// The IP version constraints.
const (
	Unconstrained IPVersion = iota // whatever the target resolves to.
	ForceV4                        // IPv4 only.
	ForceV6                        // IPv6 only.
)

// String returns the clear-text representation of an IPVersion value.
func (v IPVersion) String() string {
	switch v {
	case Unconstrained:
		return "unconstrained"
	case ForceV4:
		return "ipv4"
	case ForceV6:
		return "ipv6"
	}
	return fmt.Sprintf("IPVersion(%d)", v)
}

// IPVersionFromFlags returns the IP version constraint corresponding with a
// pair of ipv4/ipv6 hints. Setting both hints is a configuration error.
func IPVersionFromFlags(ipv4, ipv6 bool) (IPVersion, error) {
	switch {
	case ipv4 && ipv6:
		return Unconstrained, ConfigErrorf("ipv4 and ipv6 are mutually exclusive")
	case ipv4:
		return ForceV4, nil
	case ipv6:
		return ForceV6, nil
	}
	return Unconstrained, nil
}

// Target describes what to probe and how: the host name or address literal, an
// optional per-probe reply timeout, an optional network interface to bind to,
// and the IP version constraint. Targets are values; pass them around by copy.
type Target struct {
	Host      string        `json:"host"`                // host name or IP address literal
	Timeout   time.Duration `json:"timeout,omitempty"`   // optional per-probe reply deadline
	Interface string        `json:"interface,omitempty"` // optional network interface name
	IPVersion IPVersion     `json:"ip_version"`
}

// Validate the target, returning a configuration error if the host is
// syntactically unusable, the timeout negative, the IP version unknown, or the
// named network interface doesn't exist on this system.
func (t Target) Validate() error {
	if t.Host == "" {
		return ConfigErrorf("empty target")
	}
	if strings.HasPrefix(t.Host, "-") {
		return ConfigErrorf("target %q must not start with a dash", t.Host)
	}
	if strings.ContainsAny(t.Host, " \t\r\n/\\[]") {
		return ConfigErrorf("invalid target %q", t.Host)
	}
	if t.Timeout < 0 {
		return ConfigErrorf("timeout must be positive, got %s", t.Timeout)
	}
	switch t.IPVersion {
	case Unconstrained, ForceV4, ForceV6:
	default:
		return ConfigErrorf("invalid IP version %d", t.IPVersion)
	}
	if ip := net.ParseIP(t.Host); ip != nil {
		isV4 := ip.To4() != nil
		if (t.IPVersion == ForceV4 && !isV4) || (t.IPVersion == ForceV6 && isV4) {
			return ConfigErrorf("address %s conflicts with %s constraint", t.Host, t.IPVersion)
		}
	}
	if t.Interface != "" {
		if _, err := net.InterfaceByName(t.Interface); err != nil {
			return ConfigErrorf("unusable interface %q: %s", t.Interface, err.Error())
		}
	}
	return nil
}

// WithHost returns a copy of the target with its host replaced, such as after
// resolving a host name into an address literal.
func (t Target) WithHost(host string) Target {
	t.Host = host
	return t
}

// String returns the target's host.
func (t Target) String() string { return t.Host }
