package state

import (
	"fmt"
	"maps"
	"strings"
)

// Path addresses one value inside AppState. Paths compose: a child path reads
// through its parent and writes by replacing the parent value.
type Path[V any] struct {
	key string
	get func(*AppState) (V, bool)
	set func(*AppState, V) bool
}

// Key is the dotted address of the path, "" for the root.
func (p Path[V]) Key() string { return p.key }

func (p Path[V]) String() string {
	if p.key == "" {
		return "<root>"
	}
	return p.key
}

// Root addresses the whole AppState.
func Root() Path[AppState] {
	return Path[AppState]{
		get: func(s *AppState) (AppState, bool) { return *s, true },
		set: func(s *AppState, v AppState) bool { *s = v; return true },
	}
}

// Field derives a struct field path from parent.
func Field[P, V any](parent Path[P], name string, get func(P) V, set func(*P, V)) Path[V] {
	return Path[V]{
		key: joinKey(parent.key, name),
		get: func(s *AppState) (V, bool) {
			pv, ok := parent.get(s)
			if !ok {
				var zero V
				return zero, false
			}
			return get(pv), true
		},
		set: func(s *AppState, v V) bool {
			pv, ok := parent.get(s)
			if !ok {
				return false
			}
			set(&pv, v)
			return parent.set(s, pv)
		},
	}
}

// Entry derives the path of one key of a map-valued parent. Writing an entry
// may create the key but never the map itself; the map is copied on write so
// values handed out by Get are never mutated afterwards.
func Entry[K comparable, V any](parent Path[map[K]V], key K) Path[V] {
	return Path[V]{
		key: fmt.Sprintf("%s[%v]", parent.key, key),
		get: func(s *AppState) (V, bool) {
			m, ok := parent.get(s)
			if !ok || m == nil {
				var zero V
				return zero, false
			}
			return m[key], true
		},
		set: func(s *AppState, v V) bool {
			m, ok := parent.get(s)
			if !ok || m == nil {
				return false
			}
			next := maps.Clone(m)
			next[key] = v
			return parent.set(s, next)
		},
	}
}

func joinKey(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// related reports whether a write at one key must notify an observer at the
// other: equal keys, or one is an ancestor of the other.
func related(a, b string) bool {
	return a == b || isAncestor(a, b) || isAncestor(b, a)
}

func isAncestor(anc, key string) bool {
	if anc == "" {
		return true
	}
	if !strings.HasPrefix(key, anc) || len(key) == len(anc) {
		return false
	}
	next := key[len(anc)]
	return next == '.' || next == '['
}
