// Package cli implements the lcdash command line.
//
// There is a single root command. It loads configuration from the
// environment and an optional .env file, wires the telemetry sources to a
// display driver and runs the refresh loop until interrupted.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds the root command's flags.
type RootOptions struct {
	EnvFile string
	Once    bool
}

// NewRootCmd creates the lcdash command.
func NewRootCmd() *cobra.Command {
	var opts RootOptions

	cmd := &cobra.Command{
		Use:   "lcdash",
		Short: "Homelab telemetry dashboard for a small LCD panel",
		Long: `lcdash polls a time-series store, public IP and geolocation services and the
local host, then draws a fixed dashboard on a small display. Only the regions
whose text or colour changed are redrawn each tick.

Configuration comes from the environment and an optional .env file.
Environment variables win over the file.

Examples:
  lcdash
  lcdash --env-file /etc/lcdash/lcdash.env
  lcdash --once`,
		Args:          cobra.NoArgs,
		Version:       GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.SetVersionTemplate(versionTemplate())

	cmd.Flags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to read (ignored when missing)")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "run a single refresh and exit")

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
