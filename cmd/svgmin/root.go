package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for svgmin.
// Running it without a subcommand minifies the input directory.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "svgmin",
		Short: "Batch SVG minifier",
		Long: `svgmin minifies every SVG file of an input directory and writes the
smaller copies to an output directory.

It removes comments, metadata and whitespace, rounds numbers to a fixed
precision and minifies inline CSS while keeping ids, classes, data-* and
aria-* attributes intact. Output is never larger than the input.

By default the tdewolff/minify optimizer is used. Builds with the nominify
tag use the built-in optimizer instead.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBatchCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	addRunFlags(cmd)

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
