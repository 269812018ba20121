package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"

	"github.com/rileyhilliard/lcdash/internal/config"
	"github.com/rileyhilliard/lcdash/internal/dashboard"
	"github.com/rileyhilliard/lcdash/internal/errors"
	"github.com/rileyhilliard/lcdash/internal/logger"
	"github.com/rileyhilliard/lcdash/internal/present"
	"github.com/rileyhilliard/lcdash/internal/render"
	"github.com/rileyhilliard/lcdash/internal/sources"
	"github.com/rileyhilliard/lcdash/internal/telemetry"
	"github.com/rileyhilliard/lcdash/pkg/display"
	"github.com/rileyhilliard/lcdash/pkg/display/console"
	displayterm "github.com/rileyhilliard/lcdash/pkg/display/term"
)

// app is a fully wired dashboard.
type app struct {
	loop *dashboard.Loop
	// quit is closed when the display asks to stop. Nil for drivers without input.
	quit    <-chan struct{}
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func runDashboard(ctx context.Context, opts RootOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	layout, err := config.LoadLayout(cfg.Display.LayoutFile)
	if err != nil {
		return err
	}

	driverName := selectDriver(cfg.Display.Driver, isTerminal(out), opts.Once)
	if driverName == config.DriverTerminal {
		// The preview owns the terminal; hold log lines until it is gone.
		flush := holdLogs()
		defer flush()
	}

	a, err := buildApp(cfg, layout, driverName, out)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Once {
		_, err := a.loop.Tick(ctx)
		return err
	}

	if a.quit != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			select {
			case <-a.quit:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return a.loop.Run(ctx)
}

// buildApp wires sources, merger, mapper, renderer and loop for cfg.
func buildApp(cfg *config.Config, layout present.Layout, driverName string, out io.Writer) (*app, error) {
	mapper, err := present.NewMapper(layout, cfg.ScreenLabels(), cfg.ColorRules())
	if err != nil {
		return nil, err
	}

	a := &app{}
	srcLog := logger.NewEnvLogger("[sources]")

	var srcs []sources.Source
	if cfg.Influx.URL == "" {
		srcLog.Warn("INFLUXDB_URL is not set; server, UPS and internet fields will show defaults")
	} else {
		querier := sources.NewInfluxQuerier(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.FetchTimeout)
		a.closers = append(a.closers, querier.Close)
		srcs = append(srcs, sources.NewTimeSeries(querier, sources.Probes(cfg.ProbeSettings()), srcLog))
	}
	srcs = append(srcs,
		sources.NewIdentity(cfg.Identity.PublicIPURL, cfg.Identity.GeoURLTemplate, cfg.FetchTimeout, srcLog),
		sources.NewHost(),
	)

	drv, quit, err := openDriver(driverName, out)
	if err != nil {
		a.close()
		return nil, err
	}
	a.quit = quit
	a.closers = append(a.closers, func() { _ = drv.Close() })

	merger := telemetry.NewMerger(telemetry.DefaultCatalog(), telemetry.NewSourceCache(), logger.NewEnvLogger("[merge]"))
	renderer := render.New(drv, layout.Bounds(), cfg.RenderOptions(), logger.NewEnvLogger("[render]"))

	a.loop = dashboard.New(srcs, merger, mapper, renderer, dashboard.Options{
		Interval:     cfg.RefreshInterval,
		FetchTimeout: cfg.FetchTimeout,
		Log:          logger.NewEnvLogger("[loop]"),
	})
	return a, nil
}

// selectDriver resolves "auto". The terminal preview needs an interactive
// stdout, and a single refresh is more useful as console lines that stay
// on screen.
func selectDriver(name string, interactive, once bool) string {
	if name != config.DriverAuto {
		return name
	}
	if interactive && !once {
		return config.DriverTerminal
	}
	return config.DriverConsole
}

func openDriver(name string, out io.Writer) (display.Driver, <-chan struct{}, error) {
	switch name {
	case config.DriverTerminal:
		d := displayterm.New()
		return d, d.Done(), nil
	case config.DriverConsole:
		return console.New(out), nil, nil
	default:
		return nil, nil, errors.New(errors.ErrConfig,
			"unknown display driver "+name,
			"Set DISPLAY_DRIVER to auto, terminal or console")
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// maxHeldLogLines bounds what is kept while the terminal preview runs.
const maxHeldLogLines = 200

// holdLogs buffers the standard logger and returns a func that restores
// stderr and replays what was held.
func holdLogs() func() {
	held := newLineRing(maxHeldLogLines)
	log.SetOutput(held)
	return func() {
		log.SetOutput(os.Stderr)
		_, _ = held.WriteTo(os.Stderr)
	}
}

// lineRing keeps the most recent log entries. The standard logger issues
// one Write per entry.
type lineRing struct {
	mu      sync.Mutex
	lines   [][]byte
	next    int
	full    bool
	dropped int
}

func newLineRing(size int) *lineRing {
	return &lineRing{lines: make([][]byte, size)}
}

func (r *lineRing) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		r.dropped++
	}
	r.lines[r.next] = bytes.Clone(p)
	r.next = (r.next + 1) % len(r.lines)
	if r.next == 0 {
		r.full = true
	}
	return len(p), nil
}

// WriteTo writes a note about dropped entries, then the kept entries oldest first.
func (r *lineRing) WriteTo(w io.Writer) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var buf bytes.Buffer
	if r.dropped > 0 {
		fmt.Fprintf(&buf, "(%d earlier log lines dropped)\n", r.dropped)
	}
	start := 0
	if r.full {
		start = r.next
	}
	for i := 0; i < len(r.lines); i++ {
		line := r.lines[(start+i)%len(r.lines)]
		if line == nil {
			break
		}
		buf.Write(line)
	}
	return buf.WriteTo(w)
}
