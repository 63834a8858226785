// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

/*
Package ping probes hosts using ICMP echo requests, either once, multiple
times, or continuously as a stream of outcomes, synchronously as well as
asynchronously.

[Pinger] objects support concurrent asynchronous probe calls with maximum
goroutine limits. Each probe call runs its own probe session, using either the
operating system's ping command or, with [AsNative], sending ICMP echo requests
itself.

	             +---+
	host ------->| P +--> Outcome              Once, OnceAsync
	             +---+
	host ------->| P +--> []Outcome            Multiple, MultipleAsync
	             +---+
	host ------->| P +--> Stream of Outcomes   Stream
	             +---+

Asynchronous probe calls return a [Future] which can be awaited, polled, or
cancelled. Configuration errors are always reported immediately when making a
probe call, before any probe has been sent.

For one-off probes there are package-level functions, such as [Once] and
[NewStream], which use a throw-away Pinger with default settings.

⚠ Please note that a [Pinger] by default resolves host names before probing,
so that name resolution problems are reported as start errors instead of
appearing as (ping command specific) Exited outcomes. Use
[WithoutDNSPreResolve] to leave name resolution to the probe executor.

# Acknowledgements

Under its hood, [Pinger] leverages [gammazero/workerpool] as the limiting
goroutine pool and [go-ping/ping] for native pings.

[gammazero/workerpool]: https://github.com/gammazero/workerpool
[go-ping/ping]: https://github.com/go-ping/ping
*/
package ping
