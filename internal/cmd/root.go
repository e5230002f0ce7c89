// Package cmd implements the clientstage command line.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

type globalOptions struct {
	logLevel  string
	logFormat string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "clientstage",
		Short: "Stage generated client sources and open a pull request",
		Long: `clientstage takes a generated client-sources archive, replaces the client
folders it carries inside the staging repository, optionally builds and tests
them, commits and pushes the staging branch, opens a pull request and writes
its URL to output.yaml for the next pipeline step.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newInventoryCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// ExecuteContext runs the command line with ctx.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
