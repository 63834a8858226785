// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

/*
Package verifier sweeps a stream of hosts for their reachability, caching
verdicts as to avoid probing the same host multiple times when it is
spelled differently, such as "localhost" and "LOCALHOST.".

	          hosts         ┌──────────┐  MultipleAsync  ┌────────┐
	 ────────────────────►  │ Verifier ├────────────────►│ Pinger │
	                        │  + cache │◄────────────────┤        │
	                        └────┬─────┘    outcomes     └────────┘
	                             │ Verdicts (Verifying, Verified/Invalid)
	                             ▼
	                        VerdictMap

The concrete probing is carried out by a [ping.Pinger], so the Pinger's
worker pool limits the number of hosts being probed in parallel.
*/
package verifier
