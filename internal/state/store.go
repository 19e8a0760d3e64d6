package state

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/metrics"
)

// Store coordinates concurrent access to the AppState root. Writes are
// serialized in issue order and notify observers while the lock is held, so
// every subscriber sees events in the order the writes happened.
type Store struct {
	mu       sync.RWMutex
	root     AppState
	subs     map[uint64]*subscriber
	nextSub  uint64
	inflight map[string]*loadable.Handle

	logger   *slog.Logger
	recorder metrics.Recorder
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Store) { s.recorder = metrics.OrNoop(r) }
}

// NewStore creates a store holding NewAppState.
func NewStore(opts ...Option) *Store {
	s := &Store{
		root:     NewAppState(),
		subs:     make(map[uint64]*subscriber),
		inflight: make(map[string]*loadable.Handle),
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the whole root.
func (s *Store) Snapshot() AppState {
	return Get(s, Root())
}

// Get reads the latest value at p. Values are shared with the store and must
// be treated as read-only.
func Get[V any](s *Store, p Path[V]) V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, _ := p.get(&s.root)
	return v
}

// Set writes v at p and notifies related observers. Writing below a parent
// that does not exist is a programming error and panics.
func Set[V any](s *Store, p Path[V], v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(p.key, func(root *AppState) bool { return p.set(root, v) })
}

// Update applies fn to the value at p under the write lock.
func Update[V any](s *Store, p Path[V], fn func(V) V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, _ := p.get(&s.root)
	next := fn(cur)
	s.setLocked(p.key, func(root *AppState) bool { return p.set(root, next) })
}

func (s *Store) setLocked(key string, write func(*AppState) bool) {
	if !write(&s.root) {
		panic(fmt.Sprintf("state: set %q: parent does not exist", key))
	}
	s.notifyLocked(key)
}

func (s *Store) notifyLocked(key string) {
	for _, sub := range s.subs {
		if related(sub.key, key) {
			sub.deliver(&s.root)
		}
	}
}

func (s *Store) addSubscriber(sub *subscriber) uint64 {
	s.nextSub++
	id := s.nextSub
	s.subs[id] = sub
	return id
}

func (s *Store) removeSubscriber(id uint64) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

// Subscribers returns the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// InFlight returns the handle currently owning the slot at key, if any.
func (s *Store) InFlight(key string) *loadable.Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight[key]
}
