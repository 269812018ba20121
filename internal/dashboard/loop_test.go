package dashboard

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/lcdash/internal/errors"
	"github.com/rileyhilliard/lcdash/internal/logger"
	"github.com/rileyhilliard/lcdash/internal/present"
	"github.com/rileyhilliard/lcdash/internal/render"
	"github.com/rileyhilliard/lcdash/internal/sources"
	"github.com/rileyhilliard/lcdash/internal/telemetry"
	displaytest "github.com/rileyhilliard/lcdash/pkg/display/testing"
)

var fixedNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

type fakeSource struct {
	name   string
	values map[string]any
	err    error
	calls  atomic.Int32
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Fetch(context.Context) telemetry.Result {
	s.calls.Add(1)
	return telemetry.Result{Source: s.name, Values: s.values, Err: s.err}
}

type fixture struct {
	drv  *displaytest.Recorder
	log  *logger.BufferLogger
	loop *Loop
}

func newFixture(t *testing.T, interval time.Duration, srcs ...sources.Source) *fixture {
	t.Helper()
	mapper, err := present.NewMapper(present.DefaultLayout(), present.DefaultLabels(), present.DefaultColorRules())
	require.NoError(t, err)

	drv := displaytest.NewRecorder()
	log := logger.NewBufferLogger()
	merger := telemetry.NewMerger(telemetry.DefaultCatalog(), telemetry.NewSourceCache(), log)
	renderer := render.New(drv, mapper.Layout().Bounds(), render.DefaultOptions(), log)

	loop := New(srcs, merger, mapper, renderer, Options{
		Interval:     interval,
		FetchTimeout: time.Second,
		Log:          log,
		Now:          func() time.Time { return fixedNow },
	})
	return &fixture{drv: drv, log: log, loop: loop}
}

func TestNew_Defaults(t *testing.T) {
	l := New(nil, nil, nil, nil, Options{})
	assert.Equal(t, DefaultInterval, l.interval)
	assert.Equal(t, sources.DefaultTimeout, l.timeout)
	assert.NotNil(t, l.log)
	assert.NotNil(t, l.now)
	assert.True(t, l.needInit)
}

func TestTick_FirstTickInitializesAndDrawsEverything(t *testing.T) {
	src := &fakeSource{name: "influxdb", values: map[string]any{telemetry.FieldSmallCPUTemp: 72.4}}
	f := newFixture(t, time.Second, src)

	stats, err := f.loop.Tick(context.Background())
	require.NoError(t, err)

	assert.True(t, stats.Full)
	assert.Positive(t, stats.Drawn)
	assert.Len(t, f.drv.CallsTo("Reset"), 1)
	assert.Len(t, f.drv.CallsTo("InitializeComm"), 1)
	assert.Len(t, f.drv.CallsTo("DrawBitmap"), 1)
	assert.Equal(t, int32(1), src.calls.Load())

	var found bool
	for _, op := range f.drv.Texts() {
		if op.Text == "72.4C" {
			found = true
		}
	}
	assert.True(t, found, "merged value reaches the display")
}

func TestTick_UnchangedTickDrawsNothing(t *testing.T) {
	src := &fakeSource{name: "influxdb", values: map[string]any{telemetry.FieldSmallCPUTemp: 48.0}}
	f := newFixture(t, time.Second, src)

	_, err := f.loop.Tick(context.Background())
	require.NoError(t, err)
	f.drv.Clear()

	stats, err := f.loop.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, stats.Full)
	assert.Zero(t, stats.Drawn)
	assert.Empty(t, f.drv.Calls(), "no re-init and no draws")
}

func TestTick_ChangedValueRedrawsOneRegion(t *testing.T) {
	src := &fakeSource{name: "influxdb", values: map[string]any{telemetry.FieldSmallCPUTemp: 48.0}}
	f := newFixture(t, time.Second, src)

	_, err := f.loop.Tick(context.Background())
	require.NoError(t, err)
	f.drv.Clear()

	src.values = map[string]any{telemetry.FieldSmallCPUTemp: 85.0}
	stats, err := f.loop.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Drawn)
	texts := f.drv.Texts()
	require.Len(t, texts, 1)
	assert.Equal(t, "85.0C", texts[0].Text)
}

func TestTick_DisplayFailureReinitializesNextTick(t *testing.T) {
	src := &fakeSource{name: "host", values: map[string]any{telemetry.FieldLocalCPU: 12.5}}
	f := newFixture(t, time.Second, src)

	_, err := f.loop.Tick(context.Background())
	require.NoError(t, err)

	f.drv.FailOn("DrawText", stderrors.New("usb unplugged"))
	src.values = map[string]any{telemetry.FieldLocalCPU: 99.0}
	_, err = f.loop.Tick(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDisplay))
	assert.True(t, f.log.HasLevel("error"))

	f.drv.Heal()
	f.drv.Clear()
	stats, err := f.loop.Tick(context.Background())
	require.NoError(t, err)

	assert.True(t, stats.Full, "display state was lost, so everything is redrawn")
	assert.Len(t, f.drv.CallsTo("InitializeComm"), 1)
	assert.Len(t, f.drv.CallsTo("DrawBitmap"), 1)
}

func TestTick_InitFailureStillCollects(t *testing.T) {
	src := &fakeSource{name: "host", values: map[string]any{telemetry.FieldLocalCPU: 12.5}}
	f := newFixture(t, time.Second, src)
	f.drv.FailOn("InitializeComm", stderrors.New("no device"))

	_, err := f.loop.Tick(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Empty(t, f.drv.Texts())

	f.drv.Heal()
	stats, err := f.loop.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.Full)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestTick_LogsSourceFailures(t *testing.T) {
	ok := &fakeSource{name: "host", values: map[string]any{telemetry.FieldLocalCPU: 10.0}}
	bad := &fakeSource{name: "identity", err: stderrors.New("public ip: connection refused")}
	f := newFixture(t, time.Second, ok, bad)

	_, err := f.loop.Tick(context.Background())
	require.NoError(t, err, "source failures never fail the tick")

	assert.True(t, f.log.Contains("warn", "identity"))
	assert.True(t, f.log.Contains("warn", "connection refused"))
	assert.False(t, f.log.Contains("warn", "host"))
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	src := &fakeSource{name: "host"}
	f := newFixture(t, 10*time.Millisecond, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.loop.Run(ctx) }()

	require.Eventually(t, func() bool { return src.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Len(t, f.drv.CallsTo("InitializeComm"), 1, "display is initialized once")
}

func TestRun_RejectsConcurrentRun(t *testing.T) {
	f := newFixture(t, time.Hour, &fakeSource{name: "host"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.loop.Run(ctx) }()

	require.Eventually(t, f.loop.running.Load, time.Second, time.Millisecond)
	err := f.loop.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	cancel()
	assert.NoError(t, <-done)
}

type blockingSource struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (s *blockingSource) Name() string { return "slow" }

func (s *blockingSource) Fetch(ctx context.Context) telemetry.Result {
	s.once.Do(func() {
		close(s.started)
		<-s.release
		s.ctxErr <- ctx.Err()
	})
	return telemetry.Result{Source: "slow"}
}

func TestRun_CancelDoesNotInterruptTick(t *testing.T) {
	src := &blockingSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 1),
	}
	f := newFixture(t, time.Hour, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.loop.Run(ctx) }()

	<-src.started
	cancel()
	close(src.release)

	assert.NoError(t, <-src.ctxErr, "in-flight fetch keeps a live context")
	assert.NoError(t, <-done)
	assert.Len(t, f.drv.CallsTo("DrawBitmap"), 1, "the tick still rendered")
}
