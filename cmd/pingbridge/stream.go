// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/siemens/pingbridge/ping"
	"github.com/siemens/pingbridge/stream"

	"github.com/gosuri/uilive"
	"github.com/spf13/cobra"
)

var (
	streamMaxCount *int
	streamInterval *time.Duration
)

func newStreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream [flags] host",
		Short: "probe a host continuously until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			return probeStream(ctx, cmd, args[0])
		},
	}
	streamMaxCount = cmd.Flags().Int("max-count", 0, "stop after this many outcomes; zero for never")
	streamInterval = cmd.Flags().DurationP("interval", "i", ping.DefaultInterval, "interval between echo requests")
	return cmd
}

// probeStream continuously probes the specified host, showing outcomes as
// they arrive, until interrupted or the probing ends.
func probeStream(ctx context.Context, cmd *cobra.Command, host string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}
	pinger := ping.New(1, pingerOptions()...)
	defer pinger.StopWait()
	s, err := pinger.Stream(ctx, host, append(probeOptions(),
		ping.WithInterval(*streamInterval),
		ping.WithMaxCount(*streamMaxCount))...)
	if err != nil {
		return err
	}
	defer s.Close()

	term := uilive.New()
	term.Out = cmd.OutOrStdout()
	r := newRenderer(term.Bypass(), host, j)
	for {
		// Wake up regularly to keep the spinner in the footer spinning.
		recvctx, cancel := context.WithTimeout(ctx, *spinnerInterval)
		o, err := s.Recv(recvctx)
		cancel()
		switch {
		case err == nil:
			r.Outcome(o)
		case errors.Is(err, stream.ErrEndOfStream), ctx.Err() != nil:
			_ = term.Flush() // ...clears the footer
			r.Summary()
			return nil
		}
		r.Footer(term)
		_ = term.Flush()
	}
}
