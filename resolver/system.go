// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package resolver

import (
	"context"
	"fmt"
	"net"

	"github.com/siemens/pingbridge/types"
)

// System resolves host names using the system resolver.
type System struct{}

// Resolve the specified host name into its IP addresses, honoring the IP
// version constraint.
func (System) Resolve(ctx context.Context, host string, ipv types.IPVersion) ([]string, error) {
	network := "ip"
	switch ipv {
	case types.ForceV4:
		network = "ip4"
	case types.ForceV6:
		network = "ip6"
	}
	ips, err := net.DefaultResolver.LookupIP(ctx, network, host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("query for %q yields no answers", host)
	}
	addrs := make([]string, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, ip.String())
	}
	return addrs, nil
}
