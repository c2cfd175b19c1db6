// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "friendsfixer",
		Short: "Konglish correction chat client",
		Long: `friendsfixer talks to a FriendsFixer correction service and helps you
turn Konglish into natural English.

Run without arguments to start the full-screen chat.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, a)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.url, "url", "", "correction service URL (overrides config)")
	flags.StringVar(&a.flags.configPath, "config", "", "config file (default ~/.friendsfixer/config.toml)")
	flags.BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newTUICmd(a),
		newChatCmd(a),
		newAskCmd(a),
		newStatusCmd(a),
		newStatsCmd(a),
		newConfigCmd(a),
		newStubCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// Main runs the CLI and exits with a non-zero status on error.
func Main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprint("Error:"), err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "friendsfixer %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
