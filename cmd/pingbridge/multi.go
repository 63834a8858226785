// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/siemens/pingbridge/ping"
	"github.com/siemens/pingbridge/types"

	"github.com/gosuri/uilive"
	"github.com/spf13/cobra"
)

var (
	multiCount    *int
	multiInterval *time.Duration
	multiTimeout  *time.Duration
	threshold     *uint
)

func newMultiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "multi [flags] host",
		Short: "probe a host multiple times and judge its reachability",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if *threshold > 100 {
				return fmt.Errorf("--threshold out of range [0..100]")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			return probeMultiple(ctx, cmd, args[0])
		},
	}
	multiCount = cmd.Flags().IntP("count", "c", ping.DefaultCount, "number of outcomes to collect")
	multiInterval = cmd.Flags().DurationP("interval", "i", ping.DefaultInterval, "interval between echo requests")
	multiTimeout = cmd.Flags().Duration("timeout", 0, "overall time limit; zero for none")
	threshold = cmd.Flags().Uint("threshold", 50, "percentage of replies required for the host to be reachable")
	return cmd
}

// probeMultiple probes the specified host multiple times, showing a live
// status while waiting, and then reports the outcomes and the verdict.
func probeMultiple(ctx context.Context, cmd *cobra.Command, host string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}
	pinger := ping.New(1, pingerOptions()...)
	defer pinger.StopWait()
	f, err := pinger.MultipleAsync(ctx, host, append(probeOptions(),
		ping.WithCount(*multiCount),
		ping.WithInterval(*multiInterval),
		ping.WithTimeout(*multiTimeout))...)
	if err != nil {
		return err
	}

	term := uilive.New()
	term.Out = cmd.OutOrStdout()
	r := newRenderer(term.Bypass(), host, j)
	// Dunno what uilive's background updating mode using Start() is good
	// for? It may trigger anytime with the rendering into the buffer not yet
	// complete, thus making the terminal output very flickery. So we avoid
	// Start() and instead trigger an explicit flush to the terminal after
	// having completed the rendering.
	ticker := time.NewTicker(*spinnerInterval)
	defer ticker.Stop()
waiting:
	for {
		r.Footer(term)
		_ = term.Flush()
		select {
		case <-f.Done():
			break waiting
		case <-ticker.C:
		}
	}
	outcomes, err := f.Await(ctx)
	_ = term.Flush() // ...clears the footer
	for _, o := range outcomes {
		r.Outcome(o)
	}
	r.Summary()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if r.stats.Quality(*threshold) == types.Invalid {
		fmt.Fprintln(cmd.OutOrStdout(), failStyle.Styled("verdict: "+types.Invalid.String()))
		return unreachablef("%s is unreachable", host)
	}
	fmt.Fprintln(cmd.OutOrStdout(), pongStyle.Styled("verdict: "+types.Verified.String()))
	return nil
}
