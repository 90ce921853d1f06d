package daemon

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/The-Promised-Neverland/sysdata/internal/config"
	"github.com/The-Promised-Neverland/sysdata/pkg/logger"
	"github.com/The-Promised-Neverland/sysdata/pkg/policy"
	kardianos "github.com/kardianos/service"
)

// DaemonManager runs the sampler under the OS service manager.
type DaemonManager struct {
	cfg       *config.Config
	app       *Application
	mu        sync.Mutex
	appCancel context.CancelFunc
	done      chan struct{}
}

func NewDaemonManager(cfg *config.Config, app *Application) *DaemonManager {
	return &DaemonManager{
		cfg: cfg,
		app: app,
	}
}

func (m *DaemonManager) newService() (kardianos.Service, error) {
	if m.app == nil {
		return nil, fmt.Errorf("application cannot be nil")
	}
	return kardianos.New(m, m.serviceConfig())
}

// serviceConfig registers the service with the config file and working
// directory of the install-time invocation.
func (m *DaemonManager) serviceConfig() *kardianos.Config {
	return &kardianos.Config{
		Name:             m.cfg.ServiceName(),
		DisplayName:      m.cfg.ServiceDisplayName(),
		Description:      m.cfg.ServiceDescription(),
		Arguments:        m.cfg.ServiceArguments(),
		WorkingDirectory: m.cfg.WorkingDirectory(),
	}
}

// Start opens the sink synchronously so a sink failure fails the service
// start, then samples in the background.
func (m *DaemonManager) Start(s kardianos.Service) error {
	if s != nil {
		logger.Log.Info("Kardianos starting service", "service", s.String(), "platform", s.Platform())
	}
	session, err := m.app.NewSession()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, cancel := context.WithCancel(context.Background())
	m.appCancel = cancel
	m.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		if _, err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.Error("Sampling failed", "err", err)
			return
		}
		logger.Log.Info("Sampling finished, service idle until stopped")
	}(m.done)
	return nil
}

// Stop cancels sampling and waits for the sink to be closed.
func (m *DaemonManager) Stop(s kardianos.Service) error {
	if s != nil {
		logger.Log.Info("Kardianos stopping service", "service", s.String())
	}
	m.mu.Lock()
	cancel, done := m.appCancel, m.done
	m.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (m *DaemonManager) InstallDaemon() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	if err := s.Install(); err != nil {
		if runtime.GOOS == "windows" {
			return fmt.Errorf("failed to install Windows service (requires administrator privileges): %w\nPlease run PowerShell or Command Prompt as Administrator", err)
		}
		return fmt.Errorf("failed to install service: %w", err)
	}
	p, err := policy.NewServicePolicy(m.cfg)
	if err != nil {
		return err
	}
	if err := p.ConfigureAutoStart(); err != nil {
		return fmt.Errorf("failed to configure auto-start: %w", err)
	}
	if err := p.ConfigureRestartPolicy(); err != nil {
		return fmt.Errorf("failed to configure restart policy: %w", err)
	}
	return nil
}

func (m *DaemonManager) UninstallDaemon() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	if err := s.Stop(); err != nil {
		logger.Log.Warn("Failed to stop service before uninstall", "err", err)
	}
	return s.Uninstall()
}

func (m *DaemonManager) RestartDaemon() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	return s.Restart()
}

// StartDaemon runs under the service manager, or interactively when launched
// from a terminal, until stopped.
func (m *DaemonManager) StartDaemon() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	return s.Run()
}

func (m *DaemonManager) StopDaemon() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	return s.Stop()
}
