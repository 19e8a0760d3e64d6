package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/logfields"
	"github.com/five82/ava/internal/state"
)

// Engine runs service operations against the store. It owns one cancel bag
// per slot, released when a newer operation takes the slot over, and
// remembers the last operation per slot for Retry.
type Engine struct {
	ctx    context.Context
	store  *state.Store
	logger *slog.Logger

	mu      sync.Mutex
	bags    map[string]*loadable.CancelBag
	replays map[string]func() *Request
	closed  bool
	wg      sync.WaitGroup
}

// NewEngine creates an engine whose requests derive from ctx.
func NewEngine(ctx context.Context, store *state.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		ctx:     ctx,
		store:   store,
		logger:  logger,
		bags:    make(map[string]*loadable.CancelBag),
		replays: make(map[string]func() *Request),
	}
}

// Store returns the engine's store.
func (e *Engine) Store() *state.Store { return e.store }

// Retry replays the last operation issued on the slot at key from the start.
func (e *Engine) Retry(key string) (*Request, error) {
	e.mu.Lock()
	replay, ok := e.replays[key]
	e.mu.Unlock()
	if !ok {
		return nil, averrors.Validation("slot", fmt.Sprintf("no operation to retry for %q", key))
	}
	e.logger.Info("retrying operation", logfields.Slot(key))
	return replay(), nil
}

// remember replaces the replay recorded for key while h still owns the slot.
// It reports whether the replay was recorded.
func (e *Engine) remember(key string, h *loadable.Handle, replay func() *Request) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if h.Cancelled() || e.store.InFlight(key) != h {
		return false
	}
	e.replays[key] = replay
	return true
}

// CanRetry reports whether an operation was recorded for key.
func (e *Engine) CanRetry(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.replays[key]
	return ok
}

// Close cancels every in-flight operation and waits for their goroutines.
// Slots of cancelled operations stay Loading.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	bags := e.bags
	e.bags = make(map[string]*loadable.CancelBag)
	e.mu.Unlock()

	for _, bag := range bags {
		bag.Release()
	}
	e.wg.Wait()
}

// Op produces the terminal value of an operation. h owns the slot while op
// runs; its context is cancelled when the operation is superseded.
type Op[T any] func(ctx context.Context, h *loadable.Handle) loadable.Loadable[T]

// run moves slot to Loading synchronously, then resolves it with op's result
// on a goroutine. replay is recorded for Retry.
func run[T any](e *Engine, slot *state.Slot[T], replay func() *Request, op Op[T]) *Request {
	key := slot.Key()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return finished(key, averrors.New(averrors.CategoryInternal, "service engine closed"))
	}
	if prev := e.bags[key]; prev != nil {
		prev.Release()
	}
	bag := loadable.NewCancelBag(e.ctx)
	e.bags[key] = bag
	if replay != nil {
		e.replays[key] = replay
	}
	h := slot.Loading(bag)
	e.wg.Add(1)
	e.mu.Unlock()

	req := &Request{key: key, handle: h, done: make(chan struct{})}
	go func() {
		defer e.wg.Done()
		start := time.Now()
		result := op(h.Context(), h)
		err := slot.Resolve(h, result)
		if err == nil {
			err = result.Err()
		}
		e.release(key, bag)
		e.logger.Debug("operation finished",
			logfields.Slot(key),
			logfields.RequestID(h.ID().String()),
			logfields.State(result.Kind().String()),
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
		)
		req.finish(err)
	}()
	return req
}

// release drops bag once its operation is done, unless a newer one replaced it.
func (e *Engine) release(key string, bag *loadable.CancelBag) {
	e.mu.Lock()
	if e.bags[key] == bag {
		delete(e.bags, key)
	}
	e.mu.Unlock()
}

// Request tracks one issued operation.
type Request struct {
	key    string
	handle *loadable.Handle
	done   chan struct{}
	err    error
}

func finished(key string, err error) *Request {
	r := &Request{key: key, done: make(chan struct{})}
	r.finish(err)
	return r
}

func (r *Request) finish(err error) {
	r.err = err
	close(r.done)
}

// Key is the slot the request writes.
func (r *Request) Key() string { return r.key }

// Handle is the request's cancellation handle.
func (r *Request) Handle() *loadable.Handle { return r.handle }

// Done is closed when the request has finished.
func (r *Request) Done() <-chan struct{} { return r.done }

// Wait blocks until the request finishes or ctx is done. It returns the
// failure written to the slot, a superseded error when the result was
// discarded, or nil.
func (r *Request) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// holdBack delays until at least d has passed since start, so a loading state
// stays visible long enough to register.
func holdBack(ctx context.Context, start time.Time, d time.Duration) {
	remaining := d - time.Since(start)
	if remaining <= 0 {
		return
	}
	t := time.NewTimer(remaining)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
