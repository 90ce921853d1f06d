package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/The-Promised-Neverland/sysdata/internal/config"
	"github.com/The-Promised-Neverland/sysdata/internal/daemon"
)

func SampleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Sample snapshots into the sink file",
		Long: `Sample the snapshot once per interval and append one row per tick to the
sink file. The sink is truncated and gets a header row first. Stops after
--max-ticks ticks or on SIGINT/SIGTERM.

Examples:
  sysdata sample
  sysdata sample --interval 500ms --max-ticks 20 --sink /tmp/load.csv
  sysdata sample --source http://127.0.0.1:9465/read_system_data`,
		Args:         cobra.NoArgs,
		RunE:         runSample,
		SilenceUsage: true,
	}

	cmd.Flags().String("interval", config.DefaultInterval.String(), "Pause between ticks, in seconds or as a duration")
	cmd.Flags().Int("max-ticks", config.DefaultMaxTicks, "Number of ticks to sample")
	cmd.Flags().String("sink", config.DefaultSinkPath, "Output file")
	cmd.Flags().String("source", config.DefaultSource, "Snapshot source: builtin, a file path or an http(s) URL")

	return cmd
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	overrides := config.Overrides{
		SinkPath:       stringOverride(cmd, "sink"),
		SnapshotSource: stringOverride(cmd, "source"),
	}
	if cmd.Flags().Changed("interval") {
		raw, _ := cmd.Flags().GetString("interval")
		d, err := config.ParseInterval(raw)
		if err != nil {
			return err
		}
		overrides.SampleInterval = &d
	}
	if cmd.Flags().Changed("max-ticks") {
		n, _ := cmd.Flags().GetInt("max-ticks")
		overrides.MaxTicks = &n
	}
	if cfg, err = cfg.With(overrides); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := daemon.NewApplication(cfg, daemon.NewProducer(cfg))
	if _, err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
