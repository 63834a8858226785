// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package executor

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/siemens/pingbridge/types"
	"github.com/thediveo/lxkns/log"
)

// MinCommandInterval is the smallest interval supported by ping commands,
// which all want their intervals in (fractions of) seconds with one decimal.
const MinCommandInterval = 100 * time.Millisecond

// Command is an [Executor] running the operating system's ping command,
// emitting its output lines as [LineEvent] events.
type Command struct {
	binary  string // ping binary to run; empty for the OS default.
	dialect string // command-line dialect: "linux", "darwin", "windows", ...
}

// CommandOption can be passed to NewCommand when creating new Command
// executors.
type CommandOption func(*Command)

// NewCommand returns a new [Command] executor, using the OS ping binary and
// command-line dialect by default.
func NewCommand(options ...CommandOption) *Command {
	c := &Command{
		dialect: runtime.GOOS,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// WithBinary runs the specified ping binary instead of the OS default.
func WithBinary(path string) CommandOption {
	return func(c *Command) {
		c.binary = path
	}
}

// WithDialect uses the command-line dialect of the specified OS, such as
// "linux", "darwin", or "windows".
func WithDialect(goos string) CommandOption {
	return func(c *Command) {
		c.dialect = goos
	}
}

// Cmdline returns the ping binary and its arguments for the specified
// request, or an error if the request cannot be expressed using the ping
// command.
func (c *Command) Cmdline(req Request) (string, []string, error) {
	if req.Interval < MinCommandInterval || req.Interval%MinCommandInterval != 0 {
		return "", nil, types.ConfigErrorf(
			"ping command interval must be a multiple of %s, got: %s", MinCommandInterval, req.Interval)
	}
	binary := c.binary
	if binary == "" {
		binary = "ping"
	}
	t := req.Target
	secs := strconv.FormatFloat(req.Interval.Seconds(), 'f', 1, 64)
	var args []string
	switch c.dialect {
	case "windows":
		if t.Interface != "" {
			return "", nil, types.ConfigErrorf("binding to an interface is unsupported on %s", c.dialect)
		}
		// Windows ping always sends one echo request per second.
		if !req.Single && req.Interval != time.Second {
			return "", nil, types.ConfigErrorf("intervals other than 1s are unsupported on %s, got: %s",
				c.dialect, req.Interval)
		}
		args = []string{"-t"}
		if t.Timeout > 0 {
			args = append(args, "-w", strconv.FormatInt(t.Timeout.Milliseconds(), 10))
		}
		args = append(args, ipVersionArg(t.IPVersion)...)
	case "darwin", "freebsd", "netbsd", "openbsd":
		// BSD pings are IPv4-only, with ping6 for IPv6.
		if t.IPVersion == types.ForceV6 && c.binary == "" {
			binary = "ping6"
		}
		args = []string{"-i", secs}
		if t.Interface != "" {
			args = append(args, "-b", t.Interface)
		}
	default:
		args = []string{"-O", "-i", secs}
		if t.Timeout > 0 {
			// -W wants full seconds.
			args = append(args, "-W", strconv.FormatInt(int64((t.Timeout+time.Second-1)/time.Second), 10))
		}
		if t.Interface != "" {
			args = append(args, "-I", t.Interface)
		}
		args = append(args, ipVersionArg(t.IPVersion)...)
	}
	return binary, append(args, t.Host), nil
}

func ipVersionArg(v types.IPVersion) []string {
	switch v {
	case types.ForceV4:
		return []string{"-4"}
	case types.ForceV6:
		return []string{"-6"}
	}
	return nil
}

// Start runs the ping command for the specified request, emitting its output
// lines except for headers and summaries. When the ping command terminates
// on its own, an [ExitEvent] carries its exit code and diagnostic output.
// When the context gets cancelled, the ping command gets killed and reaped
// before closing the event channel.
func (c *Command) Start(ctx context.Context, req Request) (<-chan Event, error) {
	if err := req.Target.Validate(); err != nil {
		return nil, err
	}
	binary, args, err := c.Cmdline(req)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, startErrorf("%s", err)
	}
	stderr := &lockedBuffer{}
	cmd.Stderr = stderr
	// Don't let orphaned grandchildren holding onto our pipes block us.
	cmd.WaitDelay = time.Second
	if err := cmd.Start(); err != nil {
		return nil, startErrorf("%s", err)
	}
	log.Debugf("started %s %s, PID %d", binary, strings.Join(args, " "), cmd.Process.Pid)

	events := make(chan Event)
	go func() {
		defer close(events)
		// Kill the ping command when the context is done; the done channel
		// instead ends this monitoring when the command terminated on its own.
		done := make(chan struct{})
		killed := make(chan struct{})
		go func() {
			defer close(killed)
			select {
			case <-ctx.Done():
				_ = cmd.Process.Kill()
				_ = stdout.Close()
			case <-done:
			}
		}()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := strings.TrimRight(scanner.Text(), "\r")
			if IsChatter(line) {
				continue
			}
			if !send(ctx, events, Event{Kind: LineEvent, Line: line}) {
				break
			}
		}
		err := cmd.Wait()
		close(done)
		<-killed
		if ctx.Err() != nil {
			log.Debugf("ping command PID %d terminated by cancellation", cmd.Process.Pid)
			return
		}
		exitcode := -1
		if cmd.ProcessState != nil {
			exitcode = cmd.ProcessState.ExitCode()
		}
		log.Debugf("ping command PID %d exited with code %d (%v)", cmd.Process.Pid, exitcode, err)
		send(ctx, events, Event{
			Kind:     ExitEvent,
			ExitCode: exitcode,
			Stderr:   strings.TrimSpace(stderr.String()),
		})
	}()
	return events, nil
}

// lockedBuffer collects diagnostic output written by the exec package's
// copying goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
