// Package catalog lists the entries of a location and computes their sizes in the
// background.
//
// Each listed entry gets a sizecell.Cell. Files are resolved immediately; drives and
// directories start as placeholders and are resolved by one background walk each.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/idelchi/dirsize/internal/aggregate"
	"github.com/idelchi/dirsize/internal/fsys"
	"github.com/idelchi/dirsize/internal/sizecell"
)

// ErrListing matches every error returned when a requested location cannot be listed.
var ErrListing = errors.New("listing failed")

// ListingError reports that the requested location itself could not be enumerated.
type ListingError struct {
	// Path is the requested location, empty for the drive list.
	Path string
	// Err is the collaborator's error.
	Err error
}

func (e *ListingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("listing drives: %v", e.Err)
	}

	return fmt.Sprintf("listing %q: %v", e.Path, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrListing) hold for every ListingError.
func (e *ListingError) Is(target error) bool { return target == ErrListing }

// Item is a listed entry together with its size.
type Item struct {
	fsys.Entry

	Size *sizecell.Cell `json:"-"`
}

// Option configures a Session.
type Option func(*Session)

// WithWalker replaces the default sequential Aggregator.
func WithWalker(w aggregate.Walker) Option {
	return func(s *Session) {
		s.walker = w
	}
}

// WithLogger sets the session logger. The default discards output.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// Observer receives an item each time its size cell changes.
type Observer func(Item)

// WithObserver subscribes h to every cell the session creates, before any walk for
// that cell is scheduled.
func WithObserver(h Observer) Option {
	return func(s *Session) {
		s.observers = append(s.observers, h)
	}
}

// WithWorkers limits how many walks run at once. Zero runs one walk per entry.
func WithWorkers(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// Session lists locations and resolves the sizes of their entries.
type Session struct {
	provider  fsys.Provider
	walker    aggregate.Walker
	log       *zap.Logger
	observers []Observer
	sem       *semaphore.Weighted
	group     errgroup.Group
}

// New creates a Session reading through provider.
func New(provider fsys.Provider, opts ...Option) *Session {
	s := &Session{
		provider: provider,
		log:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.walker == nil {
		s.walker = aggregate.New(provider, aggregate.WithLogger(s.log))
	}

	return s
}

// Walker returns the walker computing subtree sizes.
func (s *Session) Walker() aggregate.Walker {
	return s.walker
}

// ListEntries lists the children of path: directories first, then files.
// An empty path lists the logical drives instead.
//
// It returns without waiting for any directory size. If path itself cannot be listed
// the whole request fails with a *ListingError and no walk is scheduled.
func (s *Session) ListEntries(path string) ([]Item, error) {
	if path == "" {
		return s.ListDrives()
	}

	dirs, err := s.provider.Directories(path)
	if err != nil {
		return nil, &ListingError{Path: path, Err: err}
	}

	files, err := s.provider.Files(path)
	if err != nil {
		return nil, &ListingError{Path: path, Err: err}
	}

	items := make([]Item, 0, len(dirs)+len(files))

	for _, dir := range dirs {
		items = append(items, s.placeholder(dir, fsys.KindDirectory, sizecell.Folder))
	}

	for _, file := range files {
		items = append(items, s.file(file))
	}

	s.schedule(items)

	return items, nil
}

// ListDrives lists the logical drives, each with a pending size.
func (s *Session) ListDrives() ([]Item, error) {
	drives, err := s.provider.LogicalDrives()
	if err != nil {
		return nil, &ListingError{Err: err}
	}

	items := make([]Item, 0, len(drives))

	for _, drive := range drives {
		items = append(items, s.placeholder(drive, fsys.KindDrive, sizecell.Drive))
	}

	s.schedule(items)

	return items, nil
}

// Wait blocks until every walk scheduled so far has finished or ctx is done.
// Walks are not cancelled when ctx ends; their results are simply no longer awaited.
func (s *Session) Wait(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		_ = s.group.Wait()

		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) placeholder(path string, kind fsys.Kind, label string) Item {
	return s.item(path, kind, sizecell.NewWithLabel(label))
}

func (s *Session) file(path string) Item {
	size, err := s.provider.FileSize(path)
	if err != nil {
		s.log.Debug("reading file size", zap.String("path", path), zap.Error(err))
	}

	return s.item(path, fsys.KindFile, sizecell.NewResolved(size))
}

func (s *Session) item(path string, kind fsys.Kind, cell *sizecell.Cell) Item {
	item := Item{
		Entry: fsys.Entry{Path: path, Name: s.provider.Name(path), Kind: kind},
		Size:  cell,
	}

	for _, h := range s.observers {
		cell.Subscribe(func(*sizecell.Cell) { h(item) })
	}

	return item
}

// schedule starts one walk per unresolved item. It never blocks.
func (s *Session) schedule(items []Item) {
	for _, item := range items {
		if item.Kind == fsys.KindFile {
			continue
		}

		s.group.Go(func() error {
			if s.sem != nil {
				// Background never cancels, so Acquire cannot fail.
				_ = s.sem.Acquire(context.Background(), 1)
				defer s.sem.Release(1)
			}

			total := s.walker.SizeOfSubtree(item.Path)

			s.log.Debug("size resolved", zap.String("path", item.Path), zap.Uint64("bytes", total))

			item.Size.Change(total)

			return nil
		})
	}
}
