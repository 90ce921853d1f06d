package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/The-Promised-Neverland/sysdata/internal/config"
	"github.com/The-Promised-Neverland/sysdata/pkg/logger"
)

// Commands annotated with logToStderr keep stdout free for their own output.
const (
	logAnnotation = "sysdata/log"
	logToStderr   = "stderr"
)

// NewRootCommand returns the sysdata command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sysdata",
		Short: "Host telemetry producer and sampler",
		Long: `sysdata renders host telemetry (CPU times, memory, swap, disk and network
counters, load averages, CPU frequency and temperature) as a line-oriented text
snapshot, and samples that snapshot into a comma-separated file at a fixed
interval.

Quick start:
  sysdata snapshot                          # Print one snapshot
  sysdata sample --max-ticks 60             # Sample once a second for a minute
  sysdata sample --source /proc/read_system_data
  sysdata serve --addr :9465                # Expose the snapshot over HTTP
  sysdata install                           # Sample as an OS service`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "YAML config file (default $SYSDATA_CONFIG or sysdata.yaml)")
	cmd.PersistentFlags().String("workdir", "", "Change to this directory before loading config")

	cmd.AddCommand(SampleCommand())
	cmd.AddCommand(SnapshotCommand())
	cmd.AddCommand(ServeCommand())
	cmd.AddCommand(InstallCommand())
	cmd.AddCommand(UninstallCommand())
	cmd.AddCommand(RunCommand())
	cmd.AddCommand(RestartCommand())
	cmd.AddCommand(StopCommand())

	return cmd
}

// Execute runs the root command and exits 1 on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and initializes the logger from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if dir, _ := cmd.Flags().GetString("workdir"); dir != "" {
		if err := os.Chdir(dir); err != nil {
			return nil, fmt.Errorf("change to working directory: %w", err)
		}
	}

	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.NewFromFile(path)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		return nil, err
	}

	console := cmd.OutOrStdout()
	if cmd.Annotations[logAnnotation] == logToStderr {
		console = cmd.ErrOrStderr()
	}
	logger.InitTo(console, cfg.LogFile(), logger.ParseLevel(cfg.LogLevel()))
	return cfg, nil
}

// stringOverride returns the flag value only when it was set on the command line.
func stringOverride(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}
