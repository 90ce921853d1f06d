package policy

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/The-Promised-Neverland/sysdata/internal/config"
	"github.com/The-Promised-Neverland/sysdata/pkg/logger"
	"github.com/The-Promised-Neverland/sysdata/pkg/utils"
)

// LinuxPolicy installs a systemd unit running the service with the install-time
// arguments and working directory.
type LinuxPolicy struct {
	serviceName string
	binaryPath  string
	args        []string
	workDir     string
	unitDir     string
	run         func(name string, args ...string) (string, error)
}

func NewLinuxPolicy(cfg *config.Config) *LinuxPolicy {
	return &LinuxPolicy{
		serviceName: cfg.ServiceName(),
		binaryPath:  cfg.BinaryPath(),
		args:        cfg.ServiceArguments(),
		workDir:     cfg.WorkingDirectory(),
		unitDir:     "/etc/systemd/system",
		run:         utils.RunCommand,
	}
}

func (p *LinuxPolicy) unitPath() string {
	return filepath.Join(p.unitDir, p.serviceName+".service")
}

// unit restarts only on failure: a finished sampling run must not restart and
// truncate its own output.
func (p *LinuxPolicy) unit() string {
	var workDir string
	if p.workDir != "" {
		workDir = "WorkingDirectory=" + unitQuote(p.workDir) + "\n"
	}
	execStart := []string{unitQuote(p.binaryPath)}
	for _, a := range p.args {
		execStart = append(execStart, unitQuote(a))
	}
	return `[Unit]
Description=sysdata host telemetry sampler
After=local-fs.target

[Service]
Type=simple
` + workDir + `ExecStart=` + strings.Join(execStart, " ") + `
Restart=on-failure
RestartSec=5
KillSignal=SIGTERM
TimeoutStopSec=30
NoNewPrivileges=true

[Install]
WantedBy=multi-user.target
`
}

func (p *LinuxPolicy) ConfigureAutoStart() error {
	if err := os.WriteFile(p.unitPath(), []byte(p.unit()), 0644); err != nil {
		return err
	}
	_, _ = p.run("systemctl", "daemon-reload")
	_, _ = p.run("systemctl", "enable", p.serviceName)
	logger.Log.Info("systemd unit installed", "path", p.unitPath())
	return nil
}

func (p *LinuxPolicy) ConfigureRestartPolicy() error {
	logger.Log.Info("systemd restart policy enforced via unit")
	return nil
}

// unitQuote double-quotes a systemd command line word when it needs it.
func unitQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'\\") {
		return s
	}
	return strconv.Quote(s)
}
