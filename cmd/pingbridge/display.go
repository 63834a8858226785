// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/siemens/pingbridge/journal"
	"github.com/siemens/pingbridge/types"
)

// renderer renders outcomes and the live status footer, recording the
// outcomes into an optional journal.
type renderer struct {
	host    string
	asJSON  bool
	w       io.Writer
	spinner spinner
	journal *journal.Journal
	stats   types.Statistics
	seq     int
}

// newRenderer returns a renderer rendering outcomes of probing the specified
// host to the specified io.Writer.
func newRenderer(w io.Writer, host string, j *journal.Journal) *renderer {
	return &renderer{
		host:    host,
		asJSON:  *jsonOutput,
		w:       w,
		spinner: newSpinner(time.Now(), *spinnerInterval),
		journal: j,
	}
}

// Outcome renders the specified outcome as the next in its series.
func (r *renderer) Outcome(o types.Outcome) {
	seq := r.seq
	r.seq++
	r.stats = r.stats.Add(o)
	if r.journal != nil {
		r.journal.Record(r.host, seq, o)
	}
	if r.asJSON {
		m := o.ToMap()
		m["seq"] = seq
		m["target"] = r.host
		b, _ := json.Marshal(m)
		fmt.Fprintln(r.w, string(b))
		return
	}
	fmt.Fprintln(r.w, renderOutcome(seq, o))
}

// Footer renders the live status while waiting for outcomes.
func (r *renderer) Footer(w io.Writer) {
	fmt.Fprintf(w, "%s %s: %s\n",
		pendingStyle.Styled(r.spinner.At(time.Now())), hostStyle.Styled(r.host), r.stats)
}

// Summary renders the statistics, unless rendering JSON.
func (r *renderer) Summary() {
	if r.journal != nil {
		r.journal.Summarize(r.host, r.stats)
	}
	if r.asJSON {
		return
	}
	fmt.Fprintf(r.w, "--- %s ping statistics ---\n%s\n", hostStyle.Styled(r.host), r.stats)
}

// renderOutcome returns the single-line display of an outcome.
func renderOutcome(seq int, o types.Outcome) string {
	switch o.Kind() {
	case types.Pong:
		ms, _ := o.DurationMS()
		return pongStyle.Styled(fmt.Sprintf(" ✔ #%d %.3f ms", seq, ms)) + "  " + o.Line()
	case types.Timeout:
		return failStyle.Styled(fmt.Sprintf(" × #%d timeout", seq)) + "  " + o.Line()
	case types.Exited:
		code, _ := o.ExitCode()
		stderr, _ := o.Stderr()
		return failStyle.Styled(fmt.Sprintf(" × ping exited with code %d", code)) +
			"  " + strings.TrimSpace(stderr)
	default:
		return pendingStyle.Styled(fmt.Sprintf(" ? #%d", seq)) + "  " + o.Line()
	}
}

var spinnerPhases = []string{"⠉", "⠘", "⠰", "⠤", "⠆", "⠃"}

// spinner derives its braille phase from the time passed since it was
// created, so it needs no background ticker of its own: whoever redraws the
// display often enough keeps it spinning.
type spinner struct {
	since time.Time
	every time.Duration
}

func newSpinner(since time.Time, every time.Duration) spinner {
	return spinner{since: since, every: every}
}

// At returns the phase to display at the specified time.
func (s spinner) At(now time.Time) string {
	step := 0
	if elapsed := now.Sub(s.since); elapsed > 0 && s.every > 0 {
		step = int(elapsed / s.every)
	}
	return spinnerPhases[step%len(spinnerPhases)] + " "
}
