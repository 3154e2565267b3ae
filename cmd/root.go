// Package cmd wires the collector into a CLI.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/canonical/capi-log-collector/internal/logging"
	"github.com/canonical/capi-log-collector/pkg/cluster"
	"github.com/canonical/capi-log-collector/pkg/collector"
)

// CommandFlags holds all root command flag values.
type CommandFlags struct {
	OutputDir        string
	Kubeconfig       string
	ConfigFile       string
	IgnoreNamespaces []string
	Debug            bool
	NoProgress       bool
}

// DefaultFlags returns the flag defaults.
func DefaultFlags() *CommandFlags {
	return &CommandFlags{
		OutputDir: "logs",
	}
}

// NewRootCommand builds the root command.
func NewRootCommand() *cobra.Command {
	flags := DefaultFlags()

	cmd := &cobra.Command{
		Use:          "capi-log-collector",
		Short:        "Collect logs and resource dumps from a management cluster and its CAPI workload clusters.",
		Long: "capi-log-collector gathers pod logs, pod and node YAML dumps, and Cluster API " +
			"resource YAML from a management cluster and every workload cluster it manages, " +
			"writing everything to a local directory for post-incident debugging. " +
			"Collection is best effort: individual failures are warnings, and the process " +
			"always exits 0 once the output directory exists.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.SetDebug(flags.Debug)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := collector.LoadConfig(flags.ConfigFile)
			if err != nil {
				return err
			}
			if flags.IgnoreNamespaces != nil {
				cfg.IgnoredNamespaces = flags.IgnoreNamespaces
			}

			backend, err := cluster.New(flags.Kubeconfig)
			if err != nil {
				return err
			}

			col := collector.New(backend, cfg, flags.OutputDir)
			col.Progress = !flags.NoProgress
			return col.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&flags.OutputDir, "output-dir", "o", flags.OutputDir, "Directory to write collected files to")
	cmd.Flags().StringVar(&flags.Kubeconfig, "kubeconfig", "", "Path to the management cluster kubeconfig (default: standard kubeconfig resolution)")
	cmd.Flags().StringVar(&flags.ConfigFile, "config", "", "Path to a YAML file overriding ignored namespaces and CAPI resource types")
	cmd.Flags().StringSliceVar(&flags.IgnoreNamespaces, "ignore-namespace", nil, "Namespace to skip on the management cluster (repeatable, replaces defaults)")
	cmd.Flags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Disable the progress bar")

	cmd.AddCommand(newVersionCommand())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		logging.Error("%v", err)
		os.Exit(1)
	}
}
