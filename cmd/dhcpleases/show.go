package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"dhcpdleases/internal/config"
	"dhcpdleases/internal/leases"
)

type showOptions struct {
	file   string
	ip     string
	mac    string
	after  string
	active bool
	latest bool
}

func newShowCmd(cfgFile *string) *cobra.Command {
	var opts showOptions

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the leases of a lease file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.file == "" {
				cfg, err := config.New(*cfgFile)
				if err != nil {
					return err
				}
				opts.file = cfg.LeasesFile
				if !cfg.Warnings {
					leases.DisableWarnings()
				}
			}
			return runShow(cmd.OutOrStdout(), opts, time.Now())
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "lease file to read (default from configuration)")
	cmd.Flags().StringVar(&opts.ip, "ip", "", "keep leases whose address starts with this prefix")
	cmd.Flags().StringVar(&opts.mac, "mac", "", "keep leases whose hardware address starts with this prefix")
	cmd.Flags().StringVar(&opts.after, "after", "", "keep leases ending after this RFC 3339 time, or \"now\"")
	cmd.Flags().BoolVar(&opts.active, "active", false, "keep active leases")
	cmd.Flags().BoolVar(&opts.latest, "latest", false, "keep only the lease that ends last")
	return cmd
}

func runShow(out io.Writer, opts showOptions, now time.Time) error {
	content, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("failed to read leases file: %w", err)
	}
	result, err := leases.Parse(string(content))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", opts.file, err)
	}

	filter := leases.NewFilter(result.Leases)
	if opts.ip != "" {
		filter.OnIP(opts.ip)
	}
	if opts.mac != "" {
		filter.OnMAC(opts.mac)
	}
	if opts.active {
		filter.OnActive()
	}
	if opts.after != "" {
		var at time.Time
		if opts.after != "now" {
			if at, err = time.Parse(time.RFC3339, opts.after); err != nil {
				return fmt.Errorf("invalid --after: %w", err)
			}
		}
		filter.OnActiveNow(at)
	}
	if opts.latest {
		filter.Latest()
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IP\tMAC\tHOSTNAME\tENDS\tSTATE")
	for _, l := range filter.Collect().All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.IP, orDash(l.Client()), orDash(hostname(l)), ends(l), state(l, now))
	}
	return tw.Flush()
}

func hostname(l leases.Lease) string {
	if l.Hostname != "" {
		return l.Hostname
	}
	return l.ClientHostname
}

func ends(l leases.Lease) string {
	if l.Dates.Ends == nil {
		return "never"
	}
	return l.Dates.Ends.String()
}

func state(l leases.Lease, now time.Time) string {
	switch active, _ := l.Activity(now); {
	case l.Abandoned:
		return "abandoned"
	case active:
		return "active"
	case l.BindingState != "" && l.BindingState != leases.StateActive:
		return l.BindingState
	}
	return "expired"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
