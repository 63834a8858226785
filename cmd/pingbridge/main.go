// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes, following ping(8): 1 if a host didn't reply, 2 for any other
// error, such as invalid settings.
const (
	exitUnreachable = 1
	exitError       = 2
)

func main() {
	// This is cobra boilerplate documentation, except for the missing call to
	// fmt.Println(err) which in the original boilerplate is just plain wrong:
	// it renders the error message twice, see also:
	// https://github.com/spf13/cobra/issues/304
	if err := newRootCmd().Execute(); err != nil {
		osExit(exitCode(err))
	}
}

// exitCode returns the process exit code for the specified error.
func exitCode(err error) int {
	var unreachable *unreachableError
	if errors.As(err, &unreachable) {
		return exitUnreachable
	}
	return exitError
}

// unreachableError reports hosts not replying (enough).
type unreachableError struct {
	msg string
}

func unreachablef(format string, a ...any) error {
	return &unreachableError{msg: fmt.Sprintf(format, a...)}
}

func (e *unreachableError) Error() string { return e.msg }

// For CLI unit tests...
var osExit = os.Exit
