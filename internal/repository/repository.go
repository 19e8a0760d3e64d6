// Package repository reconciles the remote service with the local cache.
//
// Reads go through the cache: a query answered by cached rows is returned
// without a remote call unless the caller forces a refresh. Remote results
// are upserted in one transaction before they are returned, so the cache
// never holds half of a response. Writes go to the remote service first and
// reach the cache only on success.
package repository

import (
	"context"
	"log/slog"

	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/logfields"
)

// Repository composes a remote source, an optional remote writer and a local
// cache for one entity kind.
type Repository[E any] struct {
	kind   string
	remote RemoteSource[E]
	writer RemoteWriter[E]
	local  LocalCache[E]
	logger *slog.Logger
}

// New builds a repository. writer may be nil for read-only kinds.
func New[E any](kind string, remote RemoteSource[E], writer RemoteWriter[E], local LocalCache[E], logger *slog.Logger) *Repository[E] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository[E]{
		kind:   kind,
		remote: remote,
		writer: writer,
		local:  local,
		logger: logger.With(logfields.Kind(kind)),
	}
}

// FetchAll answers q from the cache when possible, otherwise from the remote
// service. A remote failure leaves the cache untouched.
func (r *Repository[E]) FetchAll(ctx context.Context, q Query, force bool) loadable.Loadable[[]E] {
	if !force {
		cached, err := r.local.List(ctx, q.ParentID, q.Offset, q.Limit)
		if err != nil {
			return loadable.Failed[[]E](err)
		}
		if len(cached) > 0 {
			r.logger.Debug("served from cache", logfields.Count(len(cached)))
			return loadable.Loaded(cached)
		}
	}
	if r.remote == nil {
		return loadable.Loaded([]E{})
	}

	items, err := r.remote.List(ctx, q)
	if err != nil {
		return loadable.Failed[[]E](err)
	}
	stored, err := r.local.Put(ctx, items...)
	if err != nil {
		return loadable.Failed[[]E](err)
	}
	r.logger.Debug("refreshed from remote", logfields.Count(len(stored)))
	return loadable.Loaded(stored)
}

// FetchPage reads one page of q for paging forward. The cache answers only
// with a full page. A short cached page can be a gap left by rows cached
// outside paging, so the remote decides where the sequence ends.
func (r *Repository[E]) FetchPage(ctx context.Context, q Query) loadable.Loadable[[]E] {
	if q.Limit <= 0 || r.remote == nil {
		return r.FetchAll(ctx, q, false)
	}
	cached, err := r.local.List(ctx, q.ParentID, q.Offset, q.Limit)
	if err != nil {
		return loadable.Failed[[]E](err)
	}
	if len(cached) >= q.Limit {
		r.logger.Debug("page served from cache", logfields.Count(len(cached)))
		return loadable.Loaded(cached)
	}
	return r.FetchAll(ctx, q, true)
}

// FetchOne answers a single-entity query the same way FetchAll does.
func (r *Repository[E]) FetchOne(ctx context.Context, id int64, force bool) loadable.Loadable[E] {
	if !force {
		e, ok, err := r.local.Get(ctx, id)
		if err != nil {
			return loadable.Failed[E](err)
		}
		if ok {
			return loadable.Loaded(e)
		}
	}
	if r.remote == nil {
		return loadable.Failed[E](averrors.NotFound(r.kind, id))
	}

	e, err := r.remote.Get(ctx, id)
	if err != nil {
		return loadable.Failed[E](err)
	}
	stored, err := r.local.Put(ctx, e)
	if err != nil {
		return loadable.Failed[E](err)
	}
	return loadable.Loaded(stored[0])
}

// Cached reads every cached entity for parentID without touching the remote.
func (r *Repository[E]) Cached(ctx context.Context, parentID int64) ([]E, error) {
	return r.local.List(ctx, parentID, 0, 0)
}

// Count returns the number of cached entities for parentID.
func (r *Repository[E]) Count(ctx context.Context, parentID int64) (int, error) {
	return r.local.Count(ctx, parentID)
}

// Upsert stores e locally, replacing any row with the same id. A zero id is
// replaced by the next local id.
func (r *Repository[E]) Upsert(ctx context.Context, e E) (E, error) {
	stored, err := r.local.Put(ctx, e)
	if err != nil {
		var zero E
		return zero, err
	}
	return stored[0], nil
}

// UpsertAll stores items in one transaction.
func (r *Repository[E]) UpsertAll(ctx context.Context, items ...E) ([]E, error) {
	return r.local.Put(ctx, items...)
}

// Delete removes id from the cache. A missing id is not an error. Dependent
// entities of other kinds are left alone.
func (r *Repository[E]) Delete(ctx context.Context, id int64) error {
	return r.local.Delete(ctx, id)
}

// DeleteByParent removes every cached entity belonging to parentID.
func (r *Repository[E]) DeleteByParent(ctx context.Context, parentID int64) error {
	return r.local.DeleteByParent(ctx, parentID)
}

// Exists reports whether id is cached. Storage errors report false.
func (r *Repository[E]) Exists(ctx context.Context, id int64) bool {
	ok, err := r.local.Exists(ctx, id)
	if err != nil {
		r.logger.Warn("exists check failed", logfields.EntityID(id), logfields.Error(err))
		return false
	}
	return ok
}

// NextID reserves a local id that no stored entity uses.
func (r *Repository[E]) NextID(ctx context.Context) (int64, error) {
	return r.local.NextID(ctx)
}

// Create sends e to the remote service and caches the entity it returns.
func (r *Repository[E]) Create(ctx context.Context, e E) (E, error) {
	var zero E
	if r.writer == nil {
		return zero, averrors.New(averrors.CategoryInternal, r.kind+" repository is read-only")
	}
	created, err := r.writer.Create(ctx, e)
	if err != nil {
		return zero, err
	}
	return r.Upsert(ctx, created)
}

// Remove deletes id remotely, then locally. On remote failure the cache is
// not touched.
func (r *Repository[E]) Remove(ctx context.Context, id int64) error {
	if r.writer == nil {
		return averrors.New(averrors.CategoryInternal, r.kind+" repository is read-only")
	}
	if err := r.writer.Delete(ctx, id); err != nil {
		return err
	}
	return r.Delete(ctx, id)
}
