package aggregate

import (
	"go.uber.org/zap"

	"github.com/idelchi/dirsize/internal/fsys"
)

// Walker computes the total size of the subtree rooted at path.
type Walker interface {
	SizeOfSubtree(path string) uint64
}

// Option configures a walker.
type Option func(*options)

type options struct {
	log        *zap.Logger
	numWorkers int
}

// WithLogger sets the logger used for absorbed errors. The default discards output.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithNumWorkers sets the number of goroutines FastWalker uses inside one walk.
// Values <= 0 keep the fastwalk default.
func WithNumWorkers(n int) Option {
	return func(o *options) {
		o.numWorkers = n
	}
}

func newOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Aggregator walks subtrees sequentially through a Provider.
// One Aggregator may serve many concurrent walks.
type Aggregator struct {
	provider fsys.Provider
	log      *zap.Logger
	counters counters
}

// New creates an Aggregator reading through provider.
func New(provider fsys.Provider, opts ...Option) *Aggregator {
	o := newOptions(opts)

	return &Aggregator{
		provider: provider,
		log:      o.log,
	}
}

// SizeOfSubtree returns the total size of all files below path, depth first.
//
// Errors never escape: a file or directory listing that fails is treated as empty and
// a file whose size cannot be read contributes zero. A fully unreadable directory
// therefore reports the same total as an empty one.
func (a *Aggregator) SizeOfSubtree(path string) uint64 {
	var total uint64

	for _, file := range a.orEmpty(a.provider.Files(path)) {
		size, err := a.provider.FileSize(file)
		if err != nil {
			a.absorb(file, err)

			continue
		}

		a.counters.addFile(size)

		total += size
	}

	for _, dir := range a.orEmpty(a.provider.Directories(path)) {
		total += a.SizeOfSubtree(dir)
	}

	return total
}

// Progress returns the counters accumulated over all walks so far.
func (a *Aggregator) Progress() Progress {
	return a.counters.snapshot()
}

// orEmpty maps a failed listing to an empty one.
func (a *Aggregator) orEmpty(paths []string, err error) []string {
	if err != nil {
		a.absorb("", err)

		return nil
	}

	return paths
}

func (a *Aggregator) absorb(path string, err error) {
	a.counters.addError()

	if path == "" {
		a.log.Debug("skipping unreadable branch", zap.Error(err))
	} else {
		a.log.Debug("skipping unreadable file", zap.String("path", path), zap.Error(err))
	}
}
