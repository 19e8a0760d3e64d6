package state

import (
	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/logfields"
)

// Slot is a live binding to a Loadable inside the store. It holds no copy of
// the value; every read and write goes through its path. At most one request
// owns a slot at a time: starting a new one cancels the previous handle and
// the previous request's completion is rejected as superseded.
type Slot[T any] struct {
	store *Store
	path  Path[loadable.Loadable[T]]
}

// Bind returns the slot at p.
func Bind[T any](s *Store, p Path[loadable.Loadable[T]]) *Slot[T] {
	return &Slot[T]{store: s, path: p}
}

// Key is the slot's path key.
func (sl *Slot[T]) Key() string { return sl.path.key }

// Path returns the slot's path, for observers.
func (sl *Slot[T]) Path() Path[loadable.Loadable[T]] { return sl.path }

// Value reads the current state.
func (sl *Slot[T]) Value() loadable.Loadable[T] {
	return Get(sl.store, sl.path)
}

// Loading moves the slot to Loading with a fresh handle registered in bag,
// cancelling the handle of any request still in flight on the slot.
func (sl *Slot[T]) Loading(bag *loadable.CancelBag) *loadable.Handle {
	s := sl.store
	s.mu.Lock()
	cur, _ := sl.path.get(&s.root)
	next, h := cur.SetLoading(bag)
	prev := s.inflight[sl.path.key]
	s.inflight[sl.path.key] = h
	s.setLocked(sl.path.key, func(root *AppState) bool { return sl.path.set(root, next) })
	s.mu.Unlock()

	s.recorder.IncSlotTransition(sl.path.key, loadable.KindLoading.String())
	if prev != nil {
		prev.Cancel()
	}
	return h
}

// Complete delivers the result of the request owning h as Loaded or Failed.
// It returns a superseded error, and writes nothing, when h no longer owns
// the slot or was cancelled.
func (sl *Slot[T]) Complete(h *loadable.Handle, v T, err error) error {
	return sl.Resolve(h, loadable.FromResult(v, err))
}

// CompletePartial delivers a PartialLoaded result for h.
func (sl *Slot[T]) CompletePartial(h *loadable.Handle, v T) error {
	return sl.Resolve(h, loadable.PartialLoaded(v))
}

// Resolve writes a terminal value on behalf of h.
func (sl *Slot[T]) Resolve(h *loadable.Handle, result loadable.Loadable[T]) error {
	s := sl.store
	key := sl.path.key

	s.mu.Lock()
	if s.inflight[key] != h || h.Cancelled() {
		s.mu.Unlock()
		s.recorder.IncSuperseded(key)
		s.logger.Debug("discarding superseded completion",
			logfields.Slot(key),
			logfields.RequestID(h.ID().String()),
		)
		return averrors.Superseded(key)
	}
	delete(s.inflight, key)
	s.setLocked(key, func(root *AppState) bool { return sl.path.set(root, result) })
	s.mu.Unlock()

	s.recorder.IncSlotTransition(key, result.Kind().String())
	if result.Kind() == loadable.KindFailed {
		s.logger.Warn("request failed", logfields.Slot(key), logfields.Error(result.Err()))
	}
	return nil
}

// Progress rewrites the value on behalf of the request owning h without
// completing it, for example to show an optimistic insert while Loading.
func (sl *Slot[T]) Progress(h *loadable.Handle, fn func(loadable.Loadable[T]) loadable.Loadable[T]) error {
	s := sl.store
	key := sl.path.key

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[key] != h || h.Cancelled() {
		return averrors.Superseded(key)
	}
	cur, _ := sl.path.get(&s.root)
	next := fn(cur)
	s.setLocked(key, func(root *AppState) bool { return sl.path.set(root, next) })
	return nil
}

// Update replaces the slot value with fn(current). It does not touch the
// in-flight request, if any.
func (sl *Slot[T]) Update(fn func(loadable.Loadable[T]) loadable.Loadable[T]) {
	Update(sl.store, sl.path, fn)
}

// Set overwrites the slot value directly.
func (sl *Slot[T]) Set(v loadable.Loadable[T]) {
	Set(sl.store, sl.path, v)
}

// Cancel cancels the in-flight request on the slot. The slot keeps its
// Loading value.
func (sl *Slot[T]) Cancel() {
	s := sl.store
	s.mu.Lock()
	h := s.inflight[sl.path.key]
	s.mu.Unlock()
	if h != nil {
		h.Cancel()
		s.logger.Debug("slot request cancelled", logfields.Slot(sl.path.key))
	}
}
