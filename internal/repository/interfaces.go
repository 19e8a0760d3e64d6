package repository

import (
	"context"

	"github.com/five82/ava/internal/cache"
	"github.com/five82/ava/internal/model"
)

// Query selects a page of entities. Zero ParentID matches all parents and
// zero Limit means no limit.
type Query struct {
	ParentID int64
	Offset   int
	Limit    int
}

// RemoteSource reads entities from the remote service.
type RemoteSource[E any] interface {
	List(ctx context.Context, q Query) ([]E, error)
	Get(ctx context.Context, id int64) (E, error)
}

// RemoteWriter creates and deletes entities on the remote service.
type RemoteWriter[E any] interface {
	Create(ctx context.Context, e E) (E, error)
	Delete(ctx context.Context, id int64) error
}

// LocalCache is the upsertable local store for one kind.
type LocalCache[E any] interface {
	Get(ctx context.Context, id int64) (E, bool, error)
	List(ctx context.Context, parentID int64, offset, limit int) ([]E, error)
	Count(ctx context.Context, parentID int64) (int, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Put(ctx context.Context, items ...E) ([]E, error)
	Delete(ctx context.Context, id int64) error
	DeleteByParent(ctx context.Context, parentID int64) error
	NextID(ctx context.Context) (int64, error)
}

// Compile-time checks that the SQLite tables satisfy LocalCache.
var (
	_ LocalCache[model.User]         = (*cache.Table[model.User])(nil)
	_ LocalCache[model.Setting]      = (*cache.Table[model.Setting])(nil)
	_ LocalCache[model.Conversation] = (*cache.Table[model.Conversation])(nil)
	_ LocalCache[model.Chat]         = (*cache.Table[model.Chat])(nil)
	_ LocalCache[model.Journal]      = (*cache.Table[model.Journal])(nil)
)
