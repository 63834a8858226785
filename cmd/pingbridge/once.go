// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/siemens/pingbridge/ping"

	"github.com/spf13/cobra"
)

var onceTimeout *time.Duration

func newOnceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "once [flags] host",
		Short: "probe a host once, waiting for a reply or timeout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			return probeOnce(ctx, cmd, args[0])
		},
	}
	onceTimeout = cmd.Flags().Duration("timeout", ping.DefaultTimeout, "time to wait for a reply")
	return cmd
}

// probeOnce probes the specified host once and reports the outcome, failing
// unless there was a reply.
func probeOnce(ctx context.Context, cmd *cobra.Command, host string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}
	pinger := ping.New(1, pingerOptions()...)
	defer pinger.StopWait()
	o, err := pinger.Once(ctx, host, append(probeOptions(), ping.WithTimeout(*onceTimeout))...)
	if err != nil {
		return err
	}
	r := newRenderer(cmd.OutOrStdout(), host, j)
	r.Outcome(o)
	if !o.IsSuccess() {
		return unreachablef("%s did not reply", host)
	}
	return nil
}
