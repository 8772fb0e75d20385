package aggregate

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// Progress is a snapshot of the work done by a walker.
type Progress struct {
	// Files is the number of files measured.
	Files int64 `json:"files"`
	// Bytes is the cumulative size of the measured files.
	Bytes int64 `json:"bytes"`
	// Errors is the number of listing or stat failures that were absorbed.
	Errors int64 `json:"errors"`
}

// ProgressSource is implemented by walkers that expose running counters.
type ProgressSource interface {
	Progress() Progress
}

// counters are shared by all walks running on the same walker.
type counters struct {
	files  atomic.Int64
	bytes  atomic.Int64
	errors atomic.Int64
}

func (c *counters) addFile(size uint64) {
	c.files.Add(1)
	c.bytes.Add(int64(size)) //nolint:gosec // File sizes fit in int64
}

func (c *counters) addError() {
	c.errors.Add(1)
}

func (c *counters) snapshot() Progress {
	return Progress{
		Files:  c.files.Load(),
		Bytes:  c.bytes.Load(),
		Errors: c.errors.Load(),
	}
}

// StartProgressReporter invokes hook with a snapshot of source on each tick until ctx is done.
func StartProgressReporter(ctx context.Context, source ProgressSource, hook func(Progress), interval time.Duration) {
	if hook == nil || source == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(source.Progress())
			case <-ctx.Done():
				return
			}
		}
	}()
}
