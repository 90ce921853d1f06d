package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/The-Promised-Neverland/sysdata/internal/config"
	"github.com/The-Promised-Neverland/sysdata/internal/daemon"
	"github.com/The-Promised-Neverland/sysdata/internal/server"
	"github.com/The-Promised-Neverland/sysdata/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func ServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the snapshot text over HTTP",
		Long: `Serve a fresh snapshot on every GET /read_system_data until SIGINT or
SIGTERM. Another sampler can read it with --source http://HOST:PORT/read_system_data.

Examples:
  sysdata serve
  sysdata serve --addr 127.0.0.1:8080`,
		Args:         cobra.NoArgs,
		RunE:         runServe,
		SilenceUsage: true,
	}

	cmd.Flags().String("addr", config.DefaultServeAddr, "Listen address")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg, err = cfg.With(config.Overrides{ServeAddr: stringOverride(cmd, "addr")}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(daemon.NewProducer(cfg), cfg.ServeAddr())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down server", "addr", cfg.ServeAddr())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
