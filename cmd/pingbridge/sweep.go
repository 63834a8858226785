// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/siemens/pingbridge/ping"
	"github.com/siemens/pingbridge/types"
	"github.com/siemens/pingbridge/verifier"

	"github.com/gosuri/uilive"
	"github.com/spf13/cobra"
)

var (
	sweepCount     *int
	sweepInterval  *time.Duration
	sweepTimeout   *time.Duration
	sweepThreshold *uint
	workerNumber   *uint
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [flags] host...",
		Short: "probe multiple hosts in parallel and judge their reachability",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if *sweepThreshold > 100 {
				return fmt.Errorf("--threshold out of range [0..100]")
			}
			if *workerNumber < 1 || *workerNumber > 128 {
				return fmt.Errorf("--workers out of range [1..128]")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			return sweepHosts(ctx, cmd, args)
		},
	}
	sweepCount = cmd.Flags().IntP("count", "c", ping.DefaultCount, "number of outcomes to collect per host")
	sweepInterval = cmd.Flags().DurationP("interval", "i", ping.DefaultInterval, "interval between echo requests")
	sweepTimeout = cmd.Flags().Duration("timeout", 0, "overall time limit per host; zero for none")
	sweepThreshold = cmd.Flags().Uint("threshold", 50, "percentage of replies required for a host to be reachable")
	workerNumber = cmd.Flags().UintP("workers", "w", 8, "number of hosts to probe in parallel")
	return cmd
}

// sweepHosts probes the specified hosts in parallel, showing their verdicts
// live as they come in, and fails if any host turns out to be unreachable.
func sweepHosts(ctx context.Context, cmd *cobra.Command, hosts []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}
	pinger := ping.New(int(*workerNumber), pingerOptions()...)
	defer pinger.StopWait()

	// Put the required processing elements and their plumbing in place:
	//
	//   - Verifier consuming the hosts and probing them, producing verdicts.
	//   - VerdictMap consuming these verdicts.
	//
	// Rendering is done on the information collected by the VerdictMap.
	v, news := verifier.New(pinger, *sweepThreshold, append(probeOptions(),
		ping.WithCount(*sweepCount),
		ping.WithInterval(*sweepInterval),
		ping.WithTimeout(*sweepTimeout))...)
	verdicts := verifier.NewVerdictMap()
	trackingDone := make(chan struct{})
	go func() {
		_ = verdicts.Track(ctx, news)
		close(trackingDone)
	}()
	in := make(chan string)
	go v.Verify(ctx, in)
	go func() {
		defer close(in)
		for _, host := range hosts {
			select {
			case in <- host:
			case <-ctx.Done():
				return
			}
		}
	}()

	term := uilive.New()
	term.Out = cmd.OutOrStdout()
	sp := newSpinner(time.Now(), *spinnerInterval)
	ticker := time.NewTicker(*spinnerInterval)
	defer ticker.Stop()
tracking:
	for {
		if !*jsonOutput {
			renderVerdicts(term, sp, len(hosts), verdicts.Get())
			_ = term.Flush()
		}
		select {
		case <-trackingDone:
			break tracking
		case <-ticker.C:
		}
	}

	final := verdicts.Get()
	if *jsonOutput {
		renderVerdictsJSON(cmd.OutOrStdout(), final)
	} else {
		renderVerdicts(term, sp, len(hosts), final)
		_ = term.Flush()
	}
	unreachable := 0
	for _, verdict := range final {
		if j != nil {
			j.Summarize(verdict.Host, verdict.Stats)
		}
		if verdict.Quality != types.Verified {
			unreachable++
		}
	}
	if unreachable > 0 {
		return unreachablef("%d of %d hosts unreachable", unreachable, len(final))
	}
	return nil
}

// renderVerdicts renders the specified verdicts, one host per line.
func renderVerdicts(w io.Writer, sp spinner, hosts int, verdicts []verifier.Verdict) {
	if len(verdicts) == 0 {
		fmt.Fprintf(w, "sweeping %d hosts...\n", hosts)
		return
	}
	// Determine the length of the longest host name so that the verdict
	// column doesn't zig-zag around.
	maxlen := 0
	for _, verdict := range verdicts {
		if l := len(verdict.Host); l > maxlen {
			maxlen = l
		}
	}
	for _, verdict := range verdicts {
		fmt.Fprintf(w, "%-*s ", maxlen, verdict.Host)
		switch verdict.Quality {
		case types.Verified:
			fmt.Fprintf(w, "%s %s\n", pongStyle.Styled("✔"), verdict.Stats)
		case types.Invalid:
			if verdict.Err != nil {
				fmt.Fprintf(w, "%s %s\n", failStyle.Styled("×"), verdict.Err)
				continue
			}
			fmt.Fprintf(w, "%s %s\n", failStyle.Styled("×"), verdict.Stats)
		default:
			fmt.Fprintln(w, pendingStyle.Styled(sp.At(time.Now())+verdict.Quality.String()))
		}
	}
}

// renderVerdictsJSON renders the specified verdicts as JSON lines.
func renderVerdictsJSON(w io.Writer, verdicts []verifier.Verdict) {
	for _, verdict := range verdicts {
		m := map[string]any{
			"host":    verdict.Host,
			"quality": verdict.Quality.String(),
			"stats":   verdict.Stats,
		}
		if verdict.Err != nil {
			m["error"] = verdict.Err.Error()
		}
		b, _ := json.Marshal(m)
		fmt.Fprintln(w, string(b))
	}
}
