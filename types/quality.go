// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import "fmt"

// Quality indicates the reachability verdict about a probed target, such as
// unverified, verified, et cetera.
type Quality int

// The reachability qualities of a probed target.
const (
	Unverified Quality = iota // target not probed yet.
	Verifying                 // probe series still in progress.
	Invalid                   // too few replies, or the executor exited.
	Verified                  // enough replies received.
)

// String returns the clear-text representation of a Quality value.
func (q Quality) String() string {
	switch q {
	case Unverified:
		return "unverified"
	case Verifying:
		return "verifying"
	case Verified:
		return "verified"
	case Invalid:
		return "invalid"
	}
	return fmt.Sprintf("Quality(%d)", q)
}

// IsPending returns true as long as a target hasn't been either successfully
// or unsuccessfully verified.
func (q Quality) IsPending() bool {
	switch q {
	case Unverified, Verifying:
		return true
	default:
		return false
	}
}
