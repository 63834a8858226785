// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

/*
Package executor runs probe sessions against targets, producing raw,
unclassified events.

	 ┌──────────┐  Request   ┌─────────────┐  raw Event    ┌──────────┐
	 │ caller   ├───────────►│  Executor   ├──────────────►│ adapter  │
	 └──────────┘            └─────────────┘   (channel)   └──────────┘
	                           │  │  │
	            ┌──────────────┘  │  └──────────────┐
	            ▼                 ▼                 ▼
	       Command             ICMP            Resolving
	    (ping binary)      (go-ping, netns)   (pre-resolves,
	                                           then delegates)

The [Command] executor runs the operating system's ping command and emits
its output lines as [LineEvent] events, leaving their classification to its
consumer. Header and summary lines are dropped.

The [ICMP] executor instead sends echo requests itself, optionally from
inside a different network namespace, emitting [ReplyEvent] and [LossEvent]
events.

All executors terminate their probe sessions when the context passed to
Start gets cancelled, and close their event channels only after having
released their resources, such as reaping ping processes.
*/
package executor
