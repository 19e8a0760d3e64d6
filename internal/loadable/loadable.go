// Package loadable models the lifecycle of one asynchronous value.
//
// A Loadable is exactly one of NotRequested, Loading, Loaded, PartialLoaded or
// Failed. Loading keeps the last good value so consumers can keep showing
// stale data while a refresh runs, together with the Handle that can stop
// the refresh from delivering. PartialLoaded marks an incremental fetch where
// more data may follow and is deliberately never equal to Loaded.
package loadable

import (
	"errors"
	"fmt"
	"reflect"
)

// Kind enumerates the variants.
type Kind int

const (
	KindNotRequested Kind = iota
	KindLoading
	KindLoaded
	KindPartialLoaded
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindNotRequested:
		return "not_requested"
	case KindLoading:
		return "loading"
	case KindLoaded:
		return "loaded"
	case KindPartialLoaded:
		return "partial_loaded"
	case KindFailed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Loadable is the sum type. The zero value is NotRequested.
type Loadable[T any] struct {
	kind     Kind
	value    T
	hasValue bool
	err      error
	handle   *Handle
}

// NotRequested is the initial state.
func NotRequested[T any]() Loadable[T] {
	return Loadable[T]{}
}

// Loading builds an in-flight state. previous may be nil.
func Loading[T any](previous *T, h *Handle) Loadable[T] {
	l := Loadable[T]{kind: KindLoading, handle: h}
	if previous != nil {
		l.value = *previous
		l.hasValue = true
	}
	return l
}

// Loaded is terminal success.
func Loaded[T any](v T) Loadable[T] {
	return Loadable[T]{kind: KindLoaded, value: v, hasValue: true}
}

// PartialLoaded is terminal success for a paged fetch that may continue.
func PartialLoaded[T any](v T) Loadable[T] {
	return Loadable[T]{kind: KindPartialLoaded, value: v, hasValue: true}
}

// Failed is terminal failure.
func Failed[T any](err error) Loadable[T] {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return Loadable[T]{kind: KindFailed, err: err}
}

// FromResult converts a Go result pair into Loaded or Failed.
func FromResult[T any](v T, err error) Loadable[T] {
	if err != nil {
		return Failed[T](err)
	}
	return Loaded(v)
}

func (l Loadable[T]) Kind() Kind { return l.kind }

// Value returns the Loaded or PartialLoaded payload, or the previous value
// carried by Loading.
func (l Loadable[T]) Value() (T, bool) {
	return l.value, l.hasValue
}

// Err is non-nil only for Failed.
func (l Loadable[T]) Err() error { return l.err }

// Handle is non-nil only for Loading.
func (l Loadable[T]) Handle() *Handle { return l.handle }

func (l Loadable[T]) IsLoading() bool { return l.kind == KindLoading }

// Ready reports whether the value is complete and displayable without opt-in.
func (l Loadable[T]) Ready() bool { return l.kind == KindLoaded }

// SetLoading moves l into Loading, keeping the current value as previous and
// registering a fresh handle in bag.
func (l Loadable[T]) SetLoading(bag *CancelBag) (Loadable[T], *Handle) {
	var h *Handle
	if bag != nil {
		h = bag.NewHandle()
	} else {
		h = NewHandle(nil)
	}
	var prev *T
	if v, ok := l.Value(); ok {
		prev = &v
	}
	return Loading(prev, h), h
}

// Cancel invokes the Loading handle, if any. No terminal state is produced.
func (l Loadable[T]) Cancel() {
	if l.kind == KindLoading {
		l.handle.Cancel()
	}
}

func (l Loadable[T]) String() string {
	switch l.kind {
	case KindLoading:
		if l.hasValue {
			return fmt.Sprintf("loading(previous=%v)", l.value)
		}
		return "loading"
	case KindLoaded, KindPartialLoaded:
		return fmt.Sprintf("%s(%v)", l.kind, l.value)
	case KindFailed:
		return fmt.Sprintf("failed(%v)", l.err)
	default:
		return l.kind.String()
	}
}

// Map transforms the payload of Loaded, PartialLoaded and Loading's previous
// value. NotRequested and Failed pass through.
func Map[T, U any](l Loadable[T], f func(T) U) Loadable[U] {
	out := Loadable[U]{kind: l.kind, err: l.err, handle: l.handle}
	if l.hasValue {
		out.value = f(l.value)
		out.hasValue = true
	}
	return out
}

// Equal compares two loadables. eq compares payloads; nil uses reflect.DeepEqual.
// Loading values are never equal and Loaded never equals PartialLoaded.
func Equal[T any](a, b Loadable[T], eq func(x, y T) bool) bool {
	if a.kind != b.kind {
		return false
	}
	if eq == nil {
		eq = func(x, y T) bool { return reflect.DeepEqual(x, y) }
	}
	switch a.kind {
	case KindNotRequested:
		return true
	case KindLoading:
		return false
	case KindLoaded, KindPartialLoaded:
		return eq(a.value, b.value)
	case KindFailed:
		return sameError(a.err, b.err)
	default:
		return false
	}
}

func sameError(a, b error) bool {
	if errors.Is(a, b) || errors.Is(b, a) {
		return true
	}
	return a.Error() == b.Error()
}
