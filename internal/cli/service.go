package cli

import (
	"github.com/spf13/cobra"

	"github.com/The-Promised-Neverland/sysdata/internal/config"
	"github.com/The-Promised-Neverland/sysdata/internal/daemon"
	"github.com/The-Promised-Neverland/sysdata/pkg/logger"
)

func newManager(cmd *cobra.Command) (*daemon.DaemonManager, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	app := daemon.NewApplication(cfg, daemon.NewProducer(cfg))
	return daemon.NewDaemonManager(cfg, app), cfg, nil
}

func InstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install sysdata as an OS service",
		Long: `Register sysdata with the service manager (systemd, launchd or the Windows
service control manager), enable it at boot and restart it on failure. Usually
requires root or administrator privileges.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cfg, err := newManager(cmd)
			if err != nil {
				return err
			}
			if err := m.InstallDaemon(); err != nil {
				logger.Log.Error("Install failed", "err", err)
				return err
			}
			logger.Log.Info("Service installed", "name", cfg.ServiceName())
			return nil
		},
	}
}

func UninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "uninstall",
		Short:        "Stop and remove the OS service",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cfg, err := newManager(cmd)
			if err != nil {
				return err
			}
			if err := m.UninstallDaemon(); err != nil {
				logger.Log.Error("Uninstall failed", "err", err)
				return err
			}
			logger.Log.Info("Service uninstalled", "name", cfg.ServiceName())
			return nil
		},
	}
}

// RunCommand is what the installed service executes.
func RunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the sampler under the service manager",
		Long: `Run the sampler as a service. The service manager invokes this command;
started from a terminal it behaves like "sample" and stops on Ctrl+C.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := newManager(cmd)
			if err != nil {
				return err
			}
			if err := m.StartDaemon(); err != nil {
				logger.Log.Error("Service failed", "err", err)
				return err
			}
			return nil
		},
	}
}

func RestartCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "restart",
		Short:        "Restart the installed service",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := newManager(cmd)
			if err != nil {
				return err
			}
			return m.RestartDaemon()
		},
	}
}

func StopCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "stop",
		Short:        "Stop the installed service",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := newManager(cmd)
			if err != nil {
				return err
			}
			return m.StopDaemon()
		},
	}
}
