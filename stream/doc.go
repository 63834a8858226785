// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

/*
Package stream bridges a continuously running probe session to consumers
receiving outcomes at their own pace.

	            ┌─────────┐ Outcome ┌────────┐       ┌────────┐
	Request ───►│ Session ├────────►│ bridge ├──────►│ Stream │◄─── Recv/TryRecv
	            └─────────┘         │ (deque)│       └────────┘
	                                └────────┘

The bridge runs in its own goroutine and queues outcomes without limit in a
[gammazero/deque], so a slow consumer never stalls the probe executor. A
[Stream] that becomes unreachable without having been closed gets closed by a
finalizer, tearing down its probe executor.

[gammazero/deque]: https://github.com/gammazero/deque
*/
package stream
