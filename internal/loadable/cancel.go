package loadable

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Handle aborts the delivery of one in-flight request. It owns a context that
// is cancelled together with the handle so I/O started under it can stop
// early, but cancellation is cooperative: producers must still check
// Cancelled before writing a result.
type Handle struct {
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	onStop func()
}

// NewHandle returns a live handle whose context derives from parent.
func NewHandle(parent context.Context) *Handle {
	return NewHandleFunc(parent, nil)
}

// NewHandleFunc is NewHandle with a callback run exactly once on cancel.
func NewHandleFunc(parent context.Context, fn func()) *Handle {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Handle{id: uuid.New(), ctx: ctx, cancel: cancel, onStop: fn}
}

// ID identifies the handle. Two Loading values never share one.
func (h *Handle) ID() uuid.UUID {
	if h == nil {
		return uuid.Nil
	}
	return h.id
}

// Context is cancelled when the handle is.
func (h *Handle) Context() context.Context {
	if h == nil {
		return context.Background()
	}
	return h.ctx
}

// Cancel stops delivery. Safe to call more than once.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.cancel()
		if h.onStop != nil {
			h.onStop()
		}
	})
}

// Cancelled reports whether the handle or its parent context was cancelled.
func (h *Handle) Cancelled() bool {
	if h == nil {
		return false
	}
	return h.ctx.Err() != nil
}

// CancelBag collects handles that are released together when the owner is
// done with them.
type CancelBag struct {
	mu       sync.Mutex
	ctx      context.Context
	handles  []*Handle
	released bool
}

// NewCancelBag creates a bag whose handles derive from parent.
func NewCancelBag(parent context.Context) *CancelBag {
	if parent == nil {
		parent = context.Background()
	}
	return &CancelBag{ctx: parent}
}

// Context is the parent context for handles created by the bag.
func (b *CancelBag) Context() context.Context {
	return b.ctx
}

// Add stores h in the bag. Adding to a released bag cancels h immediately.
func (b *CancelBag) Add(h *Handle) {
	if h == nil {
		return
	}
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		h.Cancel()
		return
	}
	b.handles = append(b.handles, h)
	b.mu.Unlock()
}

// NewHandle creates a handle parented to the bag and adds it.
func (b *CancelBag) NewHandle() *Handle {
	h := NewHandle(b.ctx)
	b.Add(h)
	return h
}

// Len returns the number of handles held.
func (b *CancelBag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handles)
}

// Released reports whether Release has run.
func (b *CancelBag) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

// Release cancels every held handle once. Later calls are no-ops.
func (b *CancelBag) Release() {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return
	}
	b.released = true
	handles := b.handles
	b.handles = nil
	b.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}
