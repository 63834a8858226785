// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

/*
Package adapter turns the raw events of a probe executor into classified
outcomes.

	            ┌─────────┐ Event ┌─────────┐ Outcome
	Request ───►│executor ├──────►│ Session ├────────►
	            └─────────┘       └─────────┘

[Classify] is total: every raw event maps to exactly one outcome, with output
lines not understood becoming Unknown outcomes. A [Session] never emits
anything after an Exited outcome.
*/
package adapter
