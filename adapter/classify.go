// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package adapter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/siemens/pingbridge/executor"
	"github.com/siemens/pingbridge/types"
)

var (
	// echo replies of the different ping command flavors, such as
	// "64 bytes from 127.0.0.1: icmp_seq=1 ttl=64 time=0.042 ms" and
	// "Reply from ::1: time<1ms".
	replyLine = regexp.MustCompile(`(bytes from|Reply from) .*time[=<]\s*([0-9]+(?:\.[0-9]+)?)\s*ms`)
	// missing echo replies, such as "no answer yet for icmp_seq=2",
	// "Request timeout for icmp_seq 0", and "Request timed out.".
	timeoutLine = regexp.MustCompile(`(?i)(no answer yet|request timeout|request timed out)`)
)

// Classify turns a raw executor event into its outcome. Classify is total:
// lines that cannot be understood become Unknown outcomes carrying the line.
func Classify(ev executor.Event) types.Outcome {
	switch ev.Kind {
	case executor.ReplyEvent:
		return types.NewPong(ev.RTT, ev.Line)
	case executor.LossEvent:
		return types.NewTimeout(ev.Line)
	case executor.ExitEvent:
		return types.NewExited(ev.ExitCode, ev.Stderr)
	case executor.LineEvent:
		return ClassifyLine(ev.Line)
	}
	return types.NewUnknown(ev.Line)
}

// ClassifyLine turns a single ping command output line into its outcome.
func ClassifyLine(line string) types.Outcome {
	line = strings.TrimSpace(line)
	if m := replyLine.FindStringSubmatch(line); m != nil {
		if ms, err := strconv.ParseFloat(m[2], 64); err == nil {
			return types.NewPong(time.Duration(ms*float64(time.Millisecond)), line)
		}
	}
	if timeoutLine.MatchString(line) {
		return types.NewTimeout(line)
	}
	return types.NewUnknown(line)
}
