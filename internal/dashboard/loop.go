// Package dashboard drives the fixed-interval refresh cycle:
// collect, merge, map, render, sleep.
package dashboard

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/lcdash/internal/errors"
	"github.com/rileyhilliard/lcdash/internal/logger"
	"github.com/rileyhilliard/lcdash/internal/present"
	"github.com/rileyhilliard/lcdash/internal/render"
	"github.com/rileyhilliard/lcdash/internal/sources"
	"github.com/rileyhilliard/lcdash/internal/telemetry"
)

// DefaultInterval is the pause between ticks.
const DefaultInterval = 30 * time.Second

// Options tune a Loop. Zero values take defaults.
type Options struct {
	Interval     time.Duration
	FetchTimeout time.Duration
	Log          logger.Logger
	Now          func() time.Time
}

// Loop owns the per-process state that survives between ticks: the source
// cache (inside the merger) and the render state (inside the renderer).
type Loop struct {
	sources  []sources.Source
	merger   *telemetry.Merger
	mapper   *present.Mapper
	renderer *render.Renderer

	interval time.Duration
	timeout  time.Duration
	log      logger.Logger
	now      func() time.Time

	needInit bool
	running  atomic.Bool
}

// New creates an idle loop. The display is initialized on the first tick.
func New(srcs []sources.Source, merger *telemetry.Merger, mapper *present.Mapper, renderer *render.Renderer, opts Options) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = sources.DefaultTimeout
	}
	if opts.Log == nil {
		opts.Log = logger.Noop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Loop{
		sources:  srcs,
		merger:   merger,
		mapper:   mapper,
		renderer: renderer,
		interval: opts.Interval,
		timeout:  opts.FetchTimeout,
		log:      opts.Log,
		now:      opts.Now,
		needInit: true,
	}
}

// Run ticks until ctx is cancelled. Cancellation is only observed between
// ticks; a tick in progress always finishes. Tick errors are logged and the
// loop carries on. Run returns nil on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New(errors.ErrConfig, "dashboard loop is already running", "")
	}
	defer l.running.Store(false)

	l.log.Info("refreshing every %s", l.interval)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Debug("refresh loop stopped")
			return nil
		case <-timer.C:
		}

		_, _ = l.Tick(context.WithoutCancel(ctx))
		timer.Reset(l.interval)
	}
}

// Tick runs one full cycle. Sources are always collected and merged so the
// cache stays current even while the display is down. A display failure
// schedules re-initialization for the next tick.
func (l *Loop) Tick(ctx context.Context) (render.Stats, error) {
	started := l.now()

	results := sources.Collect(ctx, l.sources, l.timeout)
	for _, r := range results {
		if r.Err != nil {
			l.log.Warn("%s", errors.Short(r.Err))
		}
	}
	snap := l.merger.Merge(results, started)
	updates := l.mapper.Map(snap)

	if l.needInit {
		if err := l.renderer.Init(); err != nil {
			l.log.Error("%s", errors.Short(err))
			return render.Stats{}, err
		}
		l.needInit = false
	}

	stats, err := l.renderer.Render(updates)
	if err != nil {
		l.needInit = true
		l.log.Error("%s", errors.Short(err))
		return stats, err
	}

	l.log.Debug("tick took %s: %d drawn, %d unchanged", l.now().Sub(started).Round(time.Millisecond), stats.Drawn, stats.Skipped)
	return stats, nil
}
