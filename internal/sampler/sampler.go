// Package sampler runs the fixed-interval sampling loop: obtain one snapshot
// text, parse it, append one row.
package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/The-Promised-Neverland/sysdata/internal/snapshot"
	"github.com/The-Promised-Neverland/sysdata/internal/source"
	"github.com/The-Promised-Neverland/sysdata/pkg/logger"
)

// RowWriter receives one row per successful tick.
type RowWriter interface {
	Append(s snapshot.Snapshot) error
	Path() string
}

type Options struct {
	Interval time.Duration
	MaxTicks int
}

// Stats summarises a finished run.
type Stats struct {
	Ticks   int
	Rows    int
	Skipped int
}

type Sampler struct {
	src  source.Source
	sink RowWriter
	opts Options
}

func New(src source.Source, sink RowWriter, opts Options) *Sampler {
	return &Sampler{src: src, sink: sink, opts: opts}
}

// Run performs opts.MaxTicks ticks, waiting opts.Interval between them. A tick
// whose snapshot cannot be obtained, parsed or written is logged and skipped.
// Run returns early with ctx.Err() when ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	logger.Log.Info("Starting data collection",
		"source", s.src.String(),
		"sink", s.sink.Path(),
		"interval", s.opts.Interval.String(),
		"max_ticks", s.opts.MaxTicks,
	)

	var err error
	for tick := 1; tick <= s.opts.MaxTicks; tick++ {
		if err = ctx.Err(); err != nil {
			break
		}
		stats.Ticks++
		logger.Log.Info("Collecting data entry", "tick", tick)
		if tickErr := s.tick(ctx); tickErr != nil {
			stats.Skipped++
			logger.Log.Error("Skipping tick", "tick", tick, "err", tickErr)
		} else {
			stats.Rows++
		}
		if tick == s.opts.MaxTicks {
			break
		}
		if err = wait(ctx, s.opts.Interval); err != nil {
			break
		}
	}

	if err != nil {
		logger.Log.Info("Data collection stopped", "sink", s.sink.Path(), "ticks", stats.Ticks, "rows", stats.Rows, "skipped", stats.Skipped)
		return stats, err
	}
	logger.Log.Info("Data collection completed", "sink", s.sink.Path(), "ticks", stats.Ticks, "rows", stats.Rows, "skipped", stats.Skipped)
	return stats, nil
}

func (s *Sampler) tick(ctx context.Context) error {
	rc, err := s.src.Snapshot(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()

	snap, err := snapshot.Parse(rc)
	if err != nil {
		return fmt.Errorf("%w: %w", source.ErrSnapshotUnavailable, err)
	}
	return s.sink.Append(snap)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
