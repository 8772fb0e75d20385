// Package sizecell holds the observable size of a single filesystem entry.
//
// A Cell starts with a placeholder label and becomes resolved once its numeric size
// is known. Every change is pushed to the cell's subscribers.
package sizecell

import (
	"sync"

	"github.com/idelchi/dirsize/internal/size"
)

// Reserved placeholder labels. A cell showing one of them is not resolved.
const (
	Folder      = "<Folder>"
	Drive       = "<Drive>"
	Calculating = "Calculating"
)

// Handler is invoked with the cell after each change.
type Handler func(c *Cell)

type subscription struct {
	id      uint64
	handler Handler
}

// Cell is the size state of one entry.
type Cell struct {
	mu     sync.RWMutex
	size   uint64
	label  string
	subs   []subscription
	nextID uint64
}

// NewWithLabel returns an unresolved cell showing label.
func NewWithLabel(label string) *Cell {
	return &Cell{label: label}
}

// NewResolved returns a cell that already holds size.
func NewResolved(size uint64) *Cell {
	c := &Cell{}
	c.set(size)

	return c
}

// Change stores size, resolves the cell and notifies subscribers.
// Repeated calls notify every time.
func (c *Cell) Change(size uint64) {
	c.mu.Lock()
	c.set(size)
	subs := c.snapshot()
	c.mu.Unlock()

	notify(c, subs)
}

// ChangeLabel replaces the display label and notifies subscribers.
// A resolved cell never goes back to a placeholder: a reserved label is ignored
// once the cell is resolved and false is returned without notifying.
func (c *Cell) ChangeLabel(label string) bool {
	c.mu.Lock()
	if resolved(c.label) && !resolved(label) {
		c.mu.Unlock()

		return false
	}

	c.label = label
	subs := c.snapshot()
	c.mu.Unlock()

	notify(c, subs)

	return true
}

// IsResolved reports whether the label is anything other than a reserved placeholder.
func (c *Cell) IsResolved() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return resolved(c.label)
}

// Size returns the numeric size. ok is false while the cell is unresolved, in which
// case the returned size carries no meaning.
func (c *Cell) Size() (size uint64, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !resolved(c.label) {
		return 0, false
	}

	return c.size, true
}

// Label returns the current display label.
func (c *Cell) Label() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.label
}

// String implements fmt.Stringer.
func (c *Cell) String() string {
	return c.Label()
}

// Subscribe registers h for future changes and returns a function removing it.
// Handlers run in registration order on the goroutine that made the change.
func (c *Cell) Subscribe(h Handler) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscription{id: id, handler: h})

	var once sync.Once

	return func() {
		once.Do(func() { c.remove(id) })
	}
}

func (c *Cell) remove(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i:i], c.subs[i+1:]...)

			return
		}
	}
}

// set must be called with mu held or before the cell is shared.
func (c *Cell) set(n uint64) {
	c.size = n
	c.label = size.Format(n)
}

func (c *Cell) snapshot() []Handler {
	handlers := make([]Handler, len(c.subs))
	for i, s := range c.subs {
		handlers[i] = s.handler
	}

	return handlers
}

func notify(c *Cell, handlers []Handler) {
	for _, h := range handlers {
		h(c)
	}
}

func resolved(label string) bool {
	return label != Calculating && label != Drive && label != Folder
}
