// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

/*
Package probe orchestrates single and multiple probes against a target.

[Once] returns the first definite outcome, synthesizing a Timeout outcome
when nothing definite arrives in time. [Many] collects a bounded series of
outcomes, ending early on an Exited outcome, on reaching its overall timeout,
or on cancellation. Both tear down their probe executors before returning.
*/
package probe
