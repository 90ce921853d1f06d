package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/The-Promised-Neverland/sysdata/internal/config"
	"github.com/The-Promised-Neverland/sysdata/internal/daemon"
	"github.com/The-Promised-Neverland/sysdata/internal/snapshot"
	"github.com/The-Promised-Neverland/sysdata/internal/source"
)

func SnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print one snapshot",
		Long: `Print one snapshot with highlighted labels. The text is parsed and
re-rendered, so lines the parser does not know are dropped; use --raw to print
the source text unchanged.

Examples:
  sysdata snapshot
  sysdata snapshot --source /proc/read_system_data --raw`,
		Args:         cobra.NoArgs,
		RunE:         runSnapshot,
		SilenceUsage: true,
		Annotations:  map[string]string{logAnnotation: logToStderr},
	}

	cmd.Flags().String("source", config.DefaultSource, "Snapshot source: builtin, a file path or an http(s) URL")
	cmd.Flags().Bool("raw", false, "Print the source text unchanged")
	cmd.Flags().Bool("no-color", false, "Disable colored labels")

	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg, err = cfg.With(config.Overrides{SnapshotSource: stringOverride(cmd, "source")}); err != nil {
		return err
	}

	src, err := source.New(cfg.SnapshotSource(), daemon.NewProducer(cfg))
	if err != nil {
		return err
	}
	rc, err := src.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	defer rc.Close()

	out := cmd.OutOrStdout()
	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		_, err = io.Copy(out, rc)
		return err
	}

	snap, err := snapshot.Parse(rc)
	if err != nil {
		return err
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}
	return printSnapshot(out, snap)
}

func printSnapshot(w io.Writer, s snapshot.Snapshot) error {
	label := color.New(color.FgCyan, color.Bold)
	for _, line := range strings.Split(strings.TrimSuffix(snapshot.Format(s), "\n"), "\n") {
		name, value, _ := strings.Cut(line, ": ")
		if _, err := label.Fprint(w, name+":"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, " "+value); err != nil {
			return err
		}
	}
	return nil
}
