// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

/*
Package journal records probe outcomes as structured JSON lines into rotated
journal files, for later analysis of a target's reachability over time.

Under its hood, [Journal] uses [zap] for encoding and [lumberjack] for
rotating the journal files.

[zap]: https://github.com/uber-go/zap
[lumberjack]: https://github.com/natefinch/lumberjack
*/
package journal
