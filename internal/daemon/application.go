package daemon

import (
	"context"
	"fmt"

	"github.com/The-Promised-Neverland/sysdata/internal/config"
	"github.com/The-Promised-Neverland/sysdata/internal/producer"
	"github.com/The-Promised-Neverland/sysdata/internal/sampler"
	"github.com/The-Promised-Neverland/sysdata/internal/sink"
	"github.com/The-Promised-Neverland/sysdata/internal/source"
	"github.com/The-Promised-Neverland/sysdata/pkg/logger"
)

// Application wires the configured source and sink into a sampler.
type Application struct {
	config   *config.Config
	producer *producer.Producer
}

func NewApplication(cfg *config.Config, p *producer.Producer) *Application {
	return &Application{
		config:   cfg,
		producer: p,
	}
}

// NewProducer builds a producer reading the local host as cfg describes.
func NewProducer(cfg *config.Config) *producer.Producer {
	return producer.New(producer.NewSystemHost(producer.SystemOptions{
		NetInterface: cfg.NetInterface(),
		DiskDevices:  cfg.DiskDevices(),
		CPUFreqPath:  cfg.CPUFreqPath(),
		ThermalPath:  cfg.ThermalPath(),
	}))
}

// Session is one sampling run holding its own sink.
type Session struct {
	sink    *sink.CSV
	sampler *sampler.Sampler
}

// NewSession opens the sink and resolves the source. A sink that cannot be
// created fails the session before any tick runs.
func (app *Application) NewSession() (*Session, error) {
	src, err := source.New(app.config.SnapshotSource(), app.producer)
	if err != nil {
		return nil, fmt.Errorf("resolve snapshot source: %w", err)
	}
	out, err := sink.Create(app.config.SinkPath())
	if err != nil {
		return nil, err
	}
	smp := sampler.New(src, out, sampler.Options{
		Interval: app.config.SampleInterval(),
		MaxTicks: app.config.MaxTicks(),
	})
	return &Session{sink: out, sampler: smp}, nil
}

// Run samples until the configured tick count is reached or ctx is done, then
// closes the sink.
func (s *Session) Run(ctx context.Context) (sampler.Stats, error) {
	stats, runErr := s.sampler.Run(ctx)
	if err := s.sink.Close(); err != nil {
		logger.Log.Error("Error closing sink", "path", s.sink.Path(), "err", err)
		if runErr == nil {
			runErr = err
		}
	}
	return stats, runErr
}

// Run is NewSession followed by Session.Run.
func (app *Application) Run(ctx context.Context) (sampler.Stats, error) {
	session, err := app.NewSession()
	if err != nil {
		return sampler.Stats{}, err
	}
	return session.Run(ctx)
}
