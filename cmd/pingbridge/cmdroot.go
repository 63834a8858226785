// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/siemens/pingbridge/config"
	"github.com/siemens/pingbridge/journal"
	"github.com/siemens/pingbridge/ping"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/lxkns/log"
)

var (
	debug           *bool
	configPath      *string
	spinnerInterval *time.Duration
	jsonOutput      *bool
	nif             *string
	ipv4            *bool
	ipv6            *bool
	native          *bool
	unprivileged    *bool
	netns           *string
	binary          *string
	noPreResolve    *bool
	dnsTimeout      *time.Duration
	journalPath     *string

	// profile as loaded from --config, for the settings without flags.
	profile = config.Defaults()
)

func newRootCmd() (rootCmd *cobra.Command) {
	rootCmd = &cobra.Command{
		Use:          "pingbridge",
		Short:        "pingbridge probes hosts using ICMP echo requests",
		Version:      "0.9",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if *debug {
				log.SetLevel(log.DebugLevel)
				log.Debugf("debug logging enabled")
			}
			profile = config.Defaults()
			if *configPath != "" {
				var err error
				if profile, err = config.Load(*configPath); err != nil {
					return err
				}
				if err := applyProfile(cmd.Flags(), profile); err != nil {
					return err
				}
			}
			if *ipv4 && *ipv6 {
				return fmt.Errorf("--ipv4 and --ipv6 are mutually exclusive")
			}
			if *spinnerInterval < 10*time.Millisecond {
				return fmt.Errorf("--spinner must be at least 10ms")
			}
			return nil
		},
	}
	// Sets up the flags.
	pf := rootCmd.PersistentFlags()
	debug = pf.Bool("debug", false, "enable debugging output")
	configPath = pf.String("config", "", "YAML profile with default settings; flags take precedence")
	spinnerInterval = pf.Duration("spinner", 100*time.Millisecond, "spinner interval")
	jsonOutput = pf.Bool("json", false, "print outcomes as JSON lines")
	nif = pf.String("interface", "", "network interface to send echo requests from")
	ipv4 = pf.BoolP("ipv4", "4", false, "use IPv4 only")
	ipv6 = pf.BoolP("ipv6", "6", false, "use IPv6 only")
	native = pf.Bool("native", false, "send ICMP echo requests without the ping command")
	unprivileged = pf.Bool("unprivileged", false, "send UDP-based echo requests; implies --native")
	netns = pf.String("netns", "", "network namespace path to send echo requests from; implies --native")
	binary = pf.String("binary", "", "ping command binary to use instead of the system's default")
	noPreResolve = pf.Bool("no-dns-pre-resolve", false, "leave resolving host names to the ping command")
	dnsTimeout = pf.Duration("dns-timeout", 0, "limit for resolving host names; defaults to the interval")
	journalPath = pf.String("journal", "", "file to record outcomes into")

	rootCmd.AddCommand(newOnceCmd(), newMultiCmd(), newStreamCmd(), newSweepCmd())
	return
}

// applyProfile sets the flags not explicitly specified on the command line
// from the specified profile.
func applyProfile(flags *pflag.FlagSet, p config.Profile) error {
	settings := map[string]string{
		"interval":           p.Interval.String(),
		"timeout":            p.Timeout.String(),
		"count":              strconv.Itoa(p.Count),
		"threshold":          strconv.FormatUint(uint64(p.Threshold), 10),
		"interface":          p.Interface,
		"ipv4":               strconv.FormatBool(p.IPv4),
		"ipv6":               strconv.FormatBool(p.IPv6),
		"native":             strconv.FormatBool(p.Native),
		"unprivileged":       strconv.FormatBool(p.Unprivileged),
		"netns":              p.NetNS,
		"no-dns-pre-resolve": strconv.FormatBool(!p.DNSPreResolve),
		"dns-timeout":        p.DNSResolveTimeout.String(),
		"journal":            p.Journal.Path,
	}
	for name, value := range settings {
		f := flags.Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		if err := flags.Set(name, value); err != nil {
			return fmt.Errorf("invalid profile setting %s: %w", name, err)
		}
	}
	return nil
}

// pingerOptions returns the Pinger options as set by the flags.
func pingerOptions() []ping.PingerOption {
	opts := []ping.PingerOption{}
	if *native {
		opts = append(opts, ping.AsNative())
	}
	if *unprivileged {
		opts = append(opts, ping.AsUnprivileged())
	}
	if *netns != "" {
		opts = append(opts, ping.InNetworkNamespace(*netns))
	}
	if *binary != "" {
		opts = append(opts, ping.WithBinary(*binary))
	}
	if *noPreResolve {
		opts = append(opts, ping.WithoutDNSPreResolve())
	}
	if *dnsTimeout > 0 {
		opts = append(opts, ping.WithDNSResolveTimeout(*dnsTimeout))
	}
	return opts
}

// probeOptions returns the probe call options common to all subcommands, as
// set by the flags.
func probeOptions() []ping.Option {
	opts := []ping.Option{}
	if *nif != "" {
		opts = append(opts, ping.WithInterface(*nif))
	}
	if *ipv4 {
		opts = append(opts, ping.WithIPv4())
	}
	if *ipv6 {
		opts = append(opts, ping.WithIPv6())
	}
	return opts
}

// openJournal returns the journal to record outcomes into, or nil if no
// journal has been requested.
func openJournal() (*journal.Journal, error) {
	if *journalPath == "" {
		return nil, nil
	}
	j, err := journal.New(*journalPath, profile.Journal.Rotation)
	if err != nil {
		return nil, fmt.Errorf("cannot open journal: %w", err)
	}
	return j, nil
}
