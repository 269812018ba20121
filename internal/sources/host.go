package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/rileyhilliard/lcdash/internal/telemetry"
)

// Host reads CPU and memory usage of the machine driving the display.
type Host struct {
	cpuPercent func(ctx context.Context) (float64, error)
	memPercent func(ctx context.Context) (float64, error)
}

// NewHost creates a host adapter backed by gopsutil.
func NewHost() *Host {
	return &Host{cpuPercent: cpuPercent, memPercent: memPercent}
}

func (h *Host) Name() string { return "host" }

// Fetch samples each counter independently; one failing leaves the other.
func (h *Host) Fetch(ctx context.Context) telemetry.Result {
	values := make(map[string]any)
	var errs []error

	if v, err := h.cpuPercent(ctx); err != nil {
		errs = append(errs, fmt.Errorf("cpu: %w", err))
	} else {
		values[telemetry.FieldLocalCPU] = v
	}
	if v, err := h.memPercent(ctx); err != nil {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	} else {
		values[telemetry.FieldLocalRAM] = v
	}

	return telemetry.Result{Source: h.Name(), Values: values, Err: errors.Join(errs...)}
}

// cpuPercent returns usage since the previous call; the first call measures
// since boot.
func cpuPercent(ctx context.Context) (float64, error) {
	pct, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}
	if len(pct) == 0 {
		return 0, errors.New("no cpu samples")
	}
	return pct[0], nil
}

func memPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}
