package service

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/repository"
)

type keyed interface {
	Key() int64
}

// pager tracks rows appended to a paged list by local writes. Those rows sit
// past the remote offset of the last page, so they do not count toward it.
type pager struct {
	mu       sync.Mutex
	appended map[int64]struct{}
}

func (p *pager) reset() {
	p.mu.Lock()
	p.appended = nil
	p.mu.Unlock()
}

func (p *pager) add(id int64) {
	p.mu.Lock()
	if p.appended == nil {
		p.appended = make(map[int64]struct{})
	}
	p.appended[id] = struct{}{}
	p.mu.Unlock()
}

func (p *pager) forget(id int64) {
	p.mu.Lock()
	delete(p.appended, id)
	p.mu.Unlock()
}

// offset is the remote offset of the page after current.
func offset[E keyed](p *pager, current []E) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(current)
	for _, e := range current {
		if _, ok := p.appended[e.Key()]; ok {
			n--
		}
	}
	return n
}

// paged records that items arrived through paging.
func paged[E keyed](p *pager, items []E) {
	p.mu.Lock()
	for _, e := range items {
		delete(p.appended, e.Key())
	}
	p.mu.Unlock()
}

// firstPage marks a full first page as partial: more may follow.
func firstPage[E any](l loadable.Loadable[[]E], pageSize int) loadable.Loadable[[]E] {
	items, ok := l.Value()
	if l.Kind() != loadable.KindLoaded || !ok {
		return l
	}
	if pageSize > 0 && len(items) >= pageSize {
		return loadable.PartialLoaded(items)
	}
	return l
}

// nextPage reads the page after current and merges it by key. A short page
// means the list is complete.
func nextPage[E keyed](ctx context.Context, repo *repository.Repository[E], p *pager, current []E, parentID int64, pageSize int) loadable.Loadable[[]E] {
	if pageSize <= 0 {
		return loadable.Loaded(current)
	}
	page := repo.FetchPage(ctx, repository.Query{ParentID: parentID, Offset: offset(p, current), Limit: pageSize})
	if page.Kind() == loadable.KindFailed {
		return page
	}
	items, _ := page.Value()
	paged(p, items)
	merged := mergeByKey(current, items)
	if len(items) >= pageSize {
		return loadable.PartialLoaded(merged)
	}
	return loadable.Loaded(merged)
}

// mergeByKey adds the items of more missing from current and orders the
// result by key, the order the cache and the remote list in.
func mergeByKey[E keyed](current, more []E) []E {
	out := slices.Clone(current)
	for _, e := range more {
		if !slices.ContainsFunc(out, func(c E) bool { return c.Key() == e.Key() }) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b E) int { return cmp.Compare(a.Key(), b.Key()) })
	return out
}

func keepKind[E any](kind loadable.Kind, items []E) loadable.Loadable[[]E] {
	if kind == loadable.KindPartialLoaded {
		return loadable.PartialLoaded(items)
	}
	return loadable.Loaded(items)
}
