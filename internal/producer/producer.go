// Package producer gathers raw host counters and renders them as snapshot text.
package producer

import (
	"context"
	"errors"
	"fmt"

	"github.com/The-Promised-Neverland/sysdata/internal/snapshot"
	"github.com/The-Promised-Neverland/sysdata/pkg/logger"
)

// ErrSourceUnavailable marks a single metric source that could not be read.
var ErrSourceUnavailable = errors.New("metric source unavailable")

type Producer struct {
	host Host
}

func New(host Host) *Producer {
	return &Producer{host: host}
}

// Collect builds a fresh snapshot. Sources that fail are logged and leave their
// fields at zero; Collect itself never fails.
func (p *Producer) Collect(ctx context.Context) snapshot.Snapshot {
	var s snapshot.Snapshot

	if t, err := p.host.CPUTimes(ctx); report("cpu", err) {
		s.CPUUser, s.CPUSystem, s.CPUIdle = t.User, t.System, t.Idle
	}
	if m, err := p.host.Memory(ctx); report("memory", err) {
		s.MemTotal, s.MemFree = m.Total, m.Free
	}
	if m, err := p.host.Swap(ctx); report("swap", err) {
		s.SwapTotal, s.SwapFree = m.Total, m.Free
	}
	if io, err := p.host.DiskIO(ctx); report("disk", err) {
		s.DiskRead, s.DiskWrite = io.In, io.Out
	}
	if io, err := p.host.NetIO(ctx); report("network", err) {
		s.NetRX, s.NetTX = io.In, io.Out
	}
	if l, err := p.host.LoadAvg(ctx); report("loadavg", err) {
		s.Load1, s.Load5, s.Load15 = l.Load1, l.Load5, l.Load15
	}
	if f, err := p.host.CPUFreqKHz(ctx); report("cpufreq", err) {
		s.CPUFreqKHz = f
	}
	if c, err := p.host.CPUTempC(ctx); report("temperature", err) {
		s.CPUTempC = c
	}
	return s
}

// Render returns the snapshot text of a fresh Collect.
func (p *Producer) Render(ctx context.Context) string {
	return snapshot.Format(p.Collect(ctx))
}

// report logs a failed source and returns whether its values may be used.
func report(source string, err error) bool {
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrSourceUnavailable) {
		err = fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, source, err)
	}
	logger.Log.Warn("Metric source unavailable", "source", source, "err", err)
	return false
}
