// Package sources fetches raw telemetry. Every adapter reports through a
// telemetry.Result and never returns an error or panics past Fetch.
package sources

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rileyhilliard/lcdash/internal/errors"
	"github.com/rileyhilliard/lcdash/internal/telemetry"
)

// DefaultTimeout bounds each adapter per tick.
const DefaultTimeout = 5 * time.Second

// Source is one telemetry adapter.
type Source interface {
	Name() string
	Fetch(ctx context.Context) telemetry.Result
}

// Collect runs every source in parallel, each under its own timeout, and
// waits for all of them. Results come back in source order. A source that
// panics yields an unavailable result instead of taking the loop down.
// Every failure is returned as a SOURCE error naming the adapter.
func Collect(ctx context.Context, sources []Source, timeout time.Duration) []telemetry.Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	results := make([]telemetry.Result, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = telemetry.Unavailable(src.Name(),
						errors.Wrap(fmt.Errorf("panic: %v", r), src.Name()+" unavailable"))
				}
			}()

			srcCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			res := src.Fetch(srcCtx)
			if res.Source == "" {
				res.Source = src.Name()
			}
			if res.Err != nil && !errors.IsCode(res.Err, errors.ErrSource) {
				res.Err = errors.Wrap(res.Err, failureMessage(res))
			}
			results[i] = res
		}(i, src)
	}

	wg.Wait()
	return results
}

func failureMessage(r telemetry.Result) string {
	if len(r.Values) == 0 {
		return r.Source + " unavailable"
	}
	return fmt.Sprintf("%s partially unavailable (%d fields resolved)", r.Source, len(r.Values))
}
