package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/idelchi/dirsize/internal/aggregate"
	"github.com/idelchi/dirsize/internal/catalog"
	"github.com/idelchi/dirsize/internal/config"
	"github.com/idelchi/dirsize/internal/fsys"
	"github.com/idelchi/dirsize/internal/logging"
)

// walkCount returns how many items are sized by a background walk. Walks may already
// have finished by the time the listing returns, so this counts kinds, not cell states.
func walkCount(items []catalog.Item) int64 {
	var n int64

	for _, item := range items {
		if item.Kind != fsys.KindFile {
			n++
		}
	}

	return n
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

//nolint:funlen // Orchestration of session, progress and output.
func logic(ctx context.Context, options config.Options, stdout, stderr io.Writer) error {
	log, err := logging.New(logging.Config{Level: options.LogLevel, Format: options.LogFormat})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	enableProgress := options.Output == "table" &&
		!options.Debug &&
		isTerminal(stderr)

	provider := fsys.OS{}

	var walker interface {
		aggregate.Walker
		aggregate.ProgressSource
	}

	if options.Fast {
		walker = aggregate.NewFastWalker(aggregate.WithLogger(log))
	} else {
		walker = aggregate.New(provider, aggregate.WithLogger(log))
	}

	var (
		mu       sync.Mutex // Serializes writes to stderr
		resolved atomic.Int64
		pending  atomic.Int64
	)

	observer := func(item catalog.Item) {
		if !item.Size.IsResolved() {
			return
		}

		resolved.Add(1)

		if options.Live {
			mu.Lock()
			defer mu.Unlock()

			if enableProgress {
				fmt.Fprint(stderr, "\r\033[2K")
			}

			fmt.Fprintf(stderr, "%s\t%s\n", item.Size.Label(), item.Path)
		}
	}

	session := catalog.New(provider,
		catalog.WithWalker(walker),
		catalog.WithLogger(log),
		catalog.WithWorkers(options.Workers),
		catalog.WithObserver(observer),
	)

	start := time.Now()

	items, err := session.ListEntries(options.Path)
	if err != nil {
		return err
	}

	pending.Store(walkCount(items))

	log.Debug("listing scheduled",
		zap.String("path", options.Path),
		zap.Int("entries", len(items)),
		zap.Int64("pending", pending.Load()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		aggregate.StartProgressReporter(ctx, walker, func(p aggregate.Progress) {
			mu.Lock()
			defer mu.Unlock()

			msg := fmt.Sprintf("Scanning… %d files, %s, %d/%d entries",
				p.Files, humanize.IBytes(uint64(p.Bytes)), //nolint:gosec // Bytes is always positive
				resolved.Load(), pending.Load())
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}, options.ProgressInterval)
	}

	waitErr := session.Wait(ctx)

	cancel()

	// Clear the status line
	if enableProgress {
		mu.Lock()
		fmt.Fprint(stderr, "\r\033[2K\r")
		mu.Unlock()
	}

	if waitErr != nil {
		return fmt.Errorf("waiting for sizes: %w", waitErr)
	}

	listing := newListing(options.Path, items, walker.Progress(), time.Since(start))

	switch options.Output {
	case "json":
		return PrintJSON(listing, stdout)
	case "tsv":
		return PrintTSV(listing, stdout)
	case "table":
		return PrintTable(listing, stdout)
	default:
		return fmt.Errorf("unknown output format: %s", options.Output)
	}
}
