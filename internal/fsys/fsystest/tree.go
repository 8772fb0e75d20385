// Package fsystest provides an in-memory fsys.Provider for tests.
package fsystest

import (
	"fmt"
	"path"
	"slices"
	"sync"

	"github.com/idelchi/dirsize/internal/fsys"
)

// Tree is an in-memory directory tree using slash-separated paths.
// It is safe for concurrent use.
type Tree struct {
	mu     sync.Mutex
	drives []string
	dirs   map[string]struct{}
	files  map[string]uint64
	denied map[string]struct{}
	gates  map[string]chan struct{}
	calls  map[string]int
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		dirs:   make(map[string]struct{}),
		files:  make(map[string]uint64),
		denied: make(map[string]struct{}),
		gates:  make(map[string]chan struct{}),
		calls:  make(map[string]int),
	}
}

// Drive adds a drive root.
func (t *Tree) Drive(p string) *Tree {
	t.mu.Lock()
	t.drives = append(t.drives, p)
	t.mu.Unlock()

	return t.Dir(p)
}

// Dir adds a directory and all its parents.
func (t *Tree) Dir(p string) *Tree {
	t.mu.Lock()
	defer t.mu.Unlock()

	for p = path.Clean(p); ; p = path.Dir(p) {
		t.dirs[p] = struct{}{}

		if parent := path.Dir(p); parent == p {
			return t
		}
	}
}

// File adds a file of the given size, creating its parents.
func (t *Tree) File(p string, size uint64) *Tree {
	p = path.Clean(p)
	t.Dir(path.Dir(p))

	t.mu.Lock()
	t.files[p] = size
	t.mu.Unlock()

	return t
}

// Deny makes every listing of p fail with fsys.ErrPermissionDenied.
func (t *Tree) Deny(p string) *Tree {
	t.mu.Lock()
	t.denied[path.Clean(p)] = struct{}{}
	t.mu.Unlock()

	return t
}

// Gate makes the first file listing of p block until the returned function is called.
func (t *Tree) Gate(p string) (release func()) {
	ch := make(chan struct{})

	t.mu.Lock()
	t.gates[path.Clean(p)] = ch
	t.mu.Unlock()

	var once sync.Once

	return func() { once.Do(func() { close(ch) }) }
}

// FileListings returns how many times Files was called for p.
func (t *Tree) FileListings(p string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.calls[path.Clean(p)]
}

// LogicalDrives implements fsys.Provider.
func (t *Tree) LogicalDrives() ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Clone(t.drives), nil
}

// Directories implements fsys.Provider.
func (t *Tree) Directories(p string) ([]string, error) {
	p = path.Clean(p)

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.check(p); err != nil {
		return nil, err
	}

	var children []string

	for d := range t.dirs {
		if d != p && path.Dir(d) == p {
			children = append(children, d)
		}
	}

	slices.Sort(children)

	return children, nil
}

// Files implements fsys.Provider.
func (t *Tree) Files(p string) ([]string, error) {
	p = path.Clean(p)

	t.mu.Lock()
	t.calls[p]++
	gate := t.gates[p]
	delete(t.gates, p)
	t.mu.Unlock()

	if gate != nil {
		<-gate
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.check(p); err != nil {
		return nil, err
	}

	var children []string

	for f := range t.files {
		if path.Dir(f) == p {
			children = append(children, f)
		}
	}

	slices.Sort(children)

	return children, nil
}

// Name implements fsys.Provider.
func (t *Tree) Name(p string) string {
	return path.Base(p)
}

// FileSize implements fsys.Provider.
func (t *Tree) FileSize(p string) (uint64, error) {
	p = path.Clean(p)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.denied[p]; ok {
		return 0, fmt.Errorf("reading size of %q: %w", p, fsys.ErrPermissionDenied)
	}

	size, ok := t.files[p]
	if !ok {
		return 0, fmt.Errorf("reading size of %q: %w", p, fsys.ErrNotFound)
	}

	return size, nil
}

func (t *Tree) check(p string) error {
	if _, ok := t.denied[p]; ok {
		return fmt.Errorf("listing %q: %w", p, fsys.ErrPermissionDenied)
	}

	if _, ok := t.dirs[p]; !ok {
		return fmt.Errorf("listing %q: %w", p, fsys.ErrNotFound)
	}

	return nil
}
