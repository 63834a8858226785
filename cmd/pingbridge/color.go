// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import "github.com/muesli/termenv"

var (
	pendingStyle = termenv.Style{}.Foreground(termenv.ANSIYellow)
	pongStyle    = termenv.Style{}.Foreground(termenv.ANSIGreen)
	failStyle    = termenv.Style{}.Foreground(termenv.ANSIRed)
)

var hostStyle = termenv.Style{}.Bold()
