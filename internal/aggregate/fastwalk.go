package aggregate

import (
	"io/fs"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// FastWalker measures subtrees of the local filesystem with fastwalk.
//
// Unlike Aggregator it fans out inside a single walk, so each call may use several
// goroutines. Symbolic links are not followed and unreadable entries are skipped.
type FastWalker struct {
	conf     fastwalk.Config
	log      *zap.Logger
	counters counters
}

// NewFastWalker creates a FastWalker.
func NewFastWalker(opts ...Option) *FastWalker {
	o := newOptions(opts)

	conf := fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}
	if o.numWorkers > 0 {
		conf.NumWorkers = o.numWorkers
	}

	return &FastWalker{
		conf: conf,
		log:  o.log,
	}
}

// SizeOfSubtree returns the total size of all regular files below path.
func (w *FastWalker) SizeOfSubtree(path string) uint64 {
	var total atomic.Uint64

	//nolint:varnamelen // d is standard for DirEntry
	err := fastwalk.Walk(&w.conf, path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			w.counters.addError()
			w.log.Debug("skipping unreadable branch", zap.String("path", p), zap.Error(err))

			return nil // Silently skip errors
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			w.counters.addError()

			return nil //nolint:nilerr // Intentionally skip errors during walk
		}

		size := uint64(info.Size()) //nolint:gosec // Sizes reported by the OS are never negative
		w.counters.addFile(size)
		total.Add(size)

		return nil
	})
	if err != nil {
		w.counters.addError()
		w.log.Debug("walk aborted", zap.String("path", path), zap.Error(err))
	}

	return total.Load()
}

// Progress returns the counters accumulated over all walks so far.
func (w *FastWalker) Progress() Progress {
	return w.counters.snapshot()
}
