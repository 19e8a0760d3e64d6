package service

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/five82/ava/internal/cache"
	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/model"
	"github.com/five82/ava/internal/remote"
	"github.com/five82/ava/internal/repository"
	"github.com/five82/ava/internal/state"
)

type harness struct {
	store *state.Store
	eng   *Engine
	db    *cache.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := cache.Open(cache.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := state.NewStore()
	eng := NewEngine(context.Background(), store, nil)
	t.Cleanup(eng.Close)
	return &harness{store: store, eng: eng, db: db}
}

func newRepo[E cache.Record[E]](h *harness, kind model.Kind, src repository.RemoteSource[E], w repository.RemoteWriter[E]) *repository.Repository[E] {
	return repository.New[E](string(kind), src, w, cache.NewTable[E](h.db, kind), nil)
}

func wait(t *testing.T, req *Request) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	select {
	case <-req.Done():
	case <-ctx.Done():
		t.Fatalf("request %s did not finish", req.Key())
	}
	return req.Wait(ctx)
}

func recv[V any](t *testing.T, sub *state.Subscription[V]) V {
	t.Helper()
	select {
	case v := <-sub.C:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("no notification")
	}
	var zero V
	return zero
}

// authFake answers login and registration with a fixed user.
type authFake struct {
	mu     sync.Mutex
	result remote.AuthResult
	err    error
	calls  int
}

func (f *authFake) Login(_ context.Context, _ remote.Credentials) (remote.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func (f *authFake) Register(_ context.Context, reg remote.Registration) (remote.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	res := f.result
	res.User.Email = reg.Email
	return res, f.err
}

func (f *authFake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type tokenRecorder struct {
	mu    sync.Mutex
	token string
}

func (r *tokenRecorder) SetToken(token string) {
	r.mu.Lock()
	r.token = token
	r.mu.Unlock()
}

func (r *tokenRecorder) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

// conversationFake is a paging remote. A non-nil gate holds List until it
// is closed or the caller gives up.
type conversationFake struct {
	mu         sync.Mutex
	items      []model.Conversation
	gate       chan struct{}
	lists      int
	deletes    int
	deleteErrs []error
}

func (f *conversationFake) List(ctx context.Context, q repository.Query) ([]model.Conversation, error) {
	f.mu.Lock()
	f.lists++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if q.Offset >= len(f.items) {
		return nil, nil
	}
	items := f.items[q.Offset:]
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return slices.Clone(items), nil
}

func (f *conversationFake) Get(_ context.Context, id int64) (model.Conversation, error) {
	return model.Conversation{}, averrors.NotFound(string(model.KindConversation), id)
}

func (f *conversationFake) Create(_ context.Context, c model.Conversation) (model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = int64(100 + len(f.items))
	f.items = append(f.items, c)
	return c, nil
}

func (f *conversationFake) Delete(_ context.Context, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if len(f.deleteErrs) > 0 {
		err := f.deleteErrs[0]
		f.deleteErrs = f.deleteErrs[1:]
		return err
	}
	return nil
}

func (f *conversationFake) Lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func (f *conversationFake) Deletes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes
}

// senderFake replies to every message. Errors are returned one per call.
type senderFake struct {
	mu    sync.Mutex
	gate  chan struct{}
	errs  []error
	sent  []model.Chat
	reply string
}

func (f *senderFake) Send(ctx context.Context, c model.Chat) (model.Chat, error) {
	f.mu.Lock()
	f.sent = append(f.sent, c)
	gate := f.gate
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return model.Chat{}, ctx.Err()
		}
	}
	if err != nil {
		return model.Chat{}, err
	}
	return model.Chat{ID: 900, ConversationID: c.ConversationID, Message: f.reply}, nil
}

func (f *senderFake) Sent() []model.Chat {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.sent)
}

type journalFake struct {
	mu      sync.Mutex
	byDate  []model.Journal
	lookups int
}

func (f *journalFake) List(context.Context, repository.Query) ([]model.Journal, error) {
	return nil, nil
}

func (f *journalFake) Get(_ context.Context, id int64) (model.Journal, error) {
	return model.Journal{}, averrors.NotFound(string(model.KindJournal), id)
}

func (f *journalFake) Create(_ context.Context, j model.Journal) (model.Journal, error) {
	j.ID = 100
	return j, nil
}

func (f *journalFake) Delete(context.Context, int64) error { return nil }

func (f *journalFake) ByDate(_ context.Context, day time.Time) ([]model.Journal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	var out []model.Journal
	for _, j := range f.byDate {
		if j.SameDay(day) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *journalFake) Lookups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}
