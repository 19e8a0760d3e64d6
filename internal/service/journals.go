package service

import (
	"context"
	"slices"
	"strings"
	"time"

	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/model"
	"github.com/five82/ava/internal/repository"
	"github.com/five82/ava/internal/state"
)

// JournalsByDate looks journals up by the day they were written.
type JournalsByDate interface {
	ByDate(ctx context.Context, day time.Time) ([]model.Journal, error)
}

// JournalService manages the journal list and the by-date lookup.
type JournalService struct {
	eng      *Engine
	repo     *repository.Repository[model.Journal]
	byDate   JournalsByDate
	pageSize int

	list  *state.Slot[[]model.Journal]
	day   *state.Slot[[]model.Journal]
	pages pager
}

func NewJournalService(eng *Engine, repo *repository.Repository[model.Journal], byDate JournalsByDate, pageSize int) *JournalService {
	return &JournalService{
		eng:      eng,
		repo:     repo,
		byDate:   byDate,
		pageSize: max(pageSize, 0),
		list:     state.Bind(eng.Store(), state.JournalsPath),
		day:      state.Bind(eng.Store(), state.JournalsByDatePath),
	}
}

// Slot returns the journal list slot.
func (s *JournalService) Slot() *state.Slot[[]model.Journal] { return s.list }

// LoadList loads the first page of journals.
func (s *JournalService) LoadList(force bool) *Request {
	return run(s.eng, s.list, func() *Request { return s.LoadList(force) },
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[[]model.Journal] {
			result := firstPage(s.repo.FetchAll(ctx, repository.Query{Limit: s.pageSize}, force), s.pageSize)
			if result.Kind() != loadable.KindFailed {
				s.pages.reset()
			}
			return result
		})
}

// LoadMore appends the next page of journals.
func (s *JournalService) LoadMore() *Request {
	return run(s.eng, s.list, s.LoadMore,
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[[]model.Journal] {
			current, _ := s.list.Value().Value()
			return nextPage(ctx, s.repo, &s.pages, current, 0, s.pageSize)
		})
}

// Add creates a journal remotely and appends it to the list. A missing user
// id is taken from the signed-in user. A list with more pages stays
// PartialLoaded.
func (s *JournalService) Add(j model.Journal) *Request {
	j.Name = strings.TrimSpace(j.Name)
	prevKind := s.list.Value().Kind()
	return run(s.eng, s.list, func() *Request { return s.Add(j) },
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[[]model.Journal] {
			if j.Name == "" && strings.TrimSpace(j.Message) == "" {
				return loadable.Failed[[]model.Journal](averrors.Validation("message", "journal entry is empty"))
			}
			if j.UserID == 0 {
				if u, ok := state.Get(s.eng.Store(), state.UserPath).Value(); ok {
					j.UserID = u.ID
				}
			}
			if j.DateCreated.IsZero() {
				j.DateCreated = time.Now().UTC()
			}
			created, err := s.repo.Create(ctx, j)
			if err != nil {
				return loadable.Failed[[]model.Journal](err)
			}
			s.pages.add(created.ID)
			current, _ := s.list.Value().Value()
			return keepKind(prevKind, append(slices.Clone(current), created))
		})
}

// Delete removes a journal remotely, then locally, and filters it out of
// the list.
func (s *JournalService) Delete(id int64) *Request {
	prevKind := s.list.Value().Kind()
	return run(s.eng, s.list, func() *Request { return s.Delete(id) },
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[[]model.Journal] {
			if err := s.repo.Remove(ctx, id); err != nil {
				return loadable.Failed[[]model.Journal](err)
			}
			s.pages.forget(id)
			current, ok := s.list.Value().Value()
			if !ok {
				// No list to filter after a failed attempt; the cache already
				// reflects the delete.
				cached, err := s.repo.Cached(ctx, 0)
				if err != nil {
					return loadable.Failed[[]model.Journal](err)
				}
				return keepKind(prevKind, cached)
			}
			remaining := slices.DeleteFunc(slices.Clone(current), func(j model.Journal) bool { return j.ID == id })
			return keepKind(prevKind, remaining)
		})
}

// LoadByDate loads the journals written on day into the by-date slot. Cached
// entries for the day are used unless force is set.
func (s *JournalService) LoadByDate(day time.Time, force bool) *Request {
	return run(s.eng, s.day, func() *Request { return s.LoadByDate(day, force) },
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[[]model.Journal] {
			if !force {
				cached, err := s.repo.Cached(ctx, 0)
				if err != nil {
					return loadable.Failed[[]model.Journal](err)
				}
				matched := slices.DeleteFunc(cached, func(j model.Journal) bool { return !j.SameDay(day) })
				if len(matched) > 0 {
					return loadable.Loaded(matched)
				}
			}
			items, err := s.byDate.ByDate(ctx, day)
			if err != nil {
				return loadable.Failed[[]model.Journal](err)
			}
			stored, err := s.repo.UpsertAll(ctx, items...)
			return loadable.FromResult(stored, err)
		})
}
