// Package hooks is a request-scoped event bus: named extension points with
// callbacks ordered by priority, ties broken by registration order.
package hooks

import (
	"context"
	"io"
	"sort"
	"sync"
)

// Well-known extension points of the page lifecycle.
const (
	PointInit   = "init"
	PointHead   = "head"
	PointFooter = "footer"
)

type Callback func(ctx context.Context, w io.Writer)

type handler struct {
	priority int
	seq      int
	once     bool
	cb       Callback
}

type Bus struct {
	mu       sync.Mutex
	seq      int
	handlers map[string][]*handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]*handler)}
}

// On registers cb at the named point. Lower priority runs first.
func (b *Bus) On(name string, priority int, cb Callback) {
	b.add(name, priority, cb, false)
}

// Once registers cb to run on the next firing of name only.
func (b *Bus) Once(name string, priority int, cb Callback) {
	b.add(name, priority, cb, true)
}

func (b *Bus) add(name string, priority int, cb Callback, once bool) {
	if cb == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	b.handlers[name] = append(b.handlers[name], &handler{
		priority: priority,
		seq:      b.seq,
		once:     once,
		cb:       cb,
	})
}

// Has reports whether anything is registered at name.
func (b *Bus) Has(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[name]) > 0
}

// Do fires name immediately, writing callback output to w. Callbacks
// registered while name is firing wait for the next firing.
func (b *Bus) Do(ctx context.Context, name string, w io.Writer) {
	for _, h := range b.snapshot(name) {
		h.cb(ctx, w)
	}
}

func (b *Bus) snapshot(name string) []*handler {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.handlers[name]
	if len(list) == 0 {
		return nil
	}

	run := append([]*handler(nil), list...)
	sort.SliceStable(run, func(i, j int) bool {
		if run[i].priority != run[j].priority {
			return run[i].priority < run[j].priority
		}
		return run[i].seq < run[j].seq
	})

	kept := list[:0]
	for _, h := range list {
		if !h.once {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		delete(b.handlers, name)
	} else {
		b.handlers[name] = kept
	}
	return run
}
