package state

import (
	"context"
	"sync"
)

type subscriber struct {
	key     string
	deliver func(*AppState)
}

// Subscription streams the values at one path. The current value is sent
// first, then one value per related write. Events are queued without bound
// and never dropped; C is closed after Cancel.
type Subscription[V any] struct {
	C <-chan V

	once   sync.Once
	cancel func()
}

// Cancel stops the subscription. Safe to call more than once.
func (sub *Subscription[V]) Cancel() {
	sub.once.Do(sub.cancel)
}

// Observe subscribes to p. The subscription ends when ctx is done or Cancel
// is called.
func Observe[V any](ctx context.Context, s *Store, p Path[V]) *Subscription[V] {
	if ctx == nil {
		ctx = context.Background()
	}
	q := newQueue[V]()
	read := func(root *AppState) {
		v, _ := p.get(root)
		q.push(v)
	}

	s.mu.Lock()
	read(&s.root)
	id := s.addSubscriber(&subscriber{key: p.key, deliver: read})
	s.mu.Unlock()

	go q.pump()

	sub := &Subscription[V]{C: q.out}
	sub.cancel = func() {
		s.removeSubscriber(id)
		q.close()
	}
	go func() {
		select {
		case <-ctx.Done():
			sub.Cancel()
		case <-q.done:
		}
	}()
	return sub
}

// queue is an unbounded FIFO drained into out by pump.
type queue[V any] struct {
	mu     sync.Mutex
	items  []V
	wake   chan struct{}
	out    chan V
	done   chan struct{}
	closed sync.Once
}

func newQueue[V any]() *queue[V] {
	return &queue[V]{
		wake: make(chan struct{}, 1),
		out:  make(chan V),
		done: make(chan struct{}),
	}
}

func (q *queue[V]) push(v V) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *queue[V]) close() {
	q.closed.Do(func() { close(q.done) })
}

func (q *queue[V]) pump() {
	defer close(q.out)
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
				continue
			case <-q.done:
				return
			}
		}
		next := q.items[0]
		var zero V
		q.items[0] = zero
		q.items = q.items[1:]
		q.mu.Unlock()

		select {
		case q.out <- next:
		case <-q.done:
			return
		}
	}
}
