// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package executor

import (
	"regexp"
	"strings"
)

// chatter matches the headers and summaries of the different ping command
// flavors, which don't say anything about individual echo requests.
var chatter = regexp.MustCompile(`^(` +
	`PING |PING6\(|Pinging |` +
	`--- .* ping statistics ---|` +
	`\d+ packets transmitted|` +
	`(rtt|round-trip) min/avg/max|` +
	`Ping statistics for |` +
	`\s+Packets: Sent|` +
	`Approximate round trip|` +
	`\s+Minimum = )`)

// IsChatter returns true if the specified ping command output line is either
// empty, or a header, or a summary line.
func IsChatter(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	return chatter.MatchString(line)
}
