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

// ConversationService manages the conversation list slot.
type ConversationService struct {
	eng      *Engine
	repo     *repository.Repository[model.Conversation]
	chats    *repository.Repository[model.Chat]
	pageSize int
	slot     *state.Slot[[]model.Conversation]
	pages    pager
}

// NewConversationService builds the service. chats is used to drop the
// cached chats of deleted conversations. pageSize 0 disables paging.
func NewConversationService(eng *Engine, repo *repository.Repository[model.Conversation], chats *repository.Repository[model.Chat], pageSize int) *ConversationService {
	return &ConversationService{
		eng:      eng,
		repo:     repo,
		chats:    chats,
		pageSize: max(pageSize, 0),
		slot:     state.Bind(eng.Store(), state.ConversationsPath),
	}
}

// Slot returns the conversation list slot.
func (s *ConversationService) Slot() *state.Slot[[]model.Conversation] { return s.slot }

// LoadList loads the first page of conversations. force bypasses the cache.
func (s *ConversationService) LoadList(force bool) *Request {
	return run(s.eng, s.slot, func() *Request { return s.LoadList(force) },
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[[]model.Conversation] {
			result := firstPage(s.repo.FetchAll(ctx, repository.Query{Limit: s.pageSize}, force), s.pageSize)
			if result.Kind() != loadable.KindFailed {
				s.pages.reset()
			}
			return result
		})
}

// LoadMore appends the next page to the current list.
func (s *ConversationService) LoadMore() *Request {
	return run(s.eng, s.slot, s.LoadMore,
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[[]model.Conversation] {
			current, _ := s.slot.Value().Value()
			return nextPage(ctx, s.repo, &s.pages, current, 0, s.pageSize)
		})
}

// Create adds a conversation remotely and appends it to the list. A list
// with more pages stays PartialLoaded.
func (s *ConversationService) Create(name string) *Request {
	name = strings.TrimSpace(name)
	prevKind := s.slot.Value().Kind()
	return run(s.eng, s.slot, func() *Request { return s.Create(name) },
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[[]model.Conversation] {
			if name == "" {
				return loadable.Failed[[]model.Conversation](averrors.Validation("name", "conversation name is required"))
			}
			created, err := s.repo.Create(ctx, model.Conversation{Name: name, DateCreated: time.Now().UTC()})
			if err != nil {
				return loadable.Failed[[]model.Conversation](err)
			}
			s.pages.add(created.ID)
			current, _ := s.slot.Value().Value()
			return keepKind(prevKind, append(slices.Clone(current), created))
		})
}

// Delete removes a conversation remotely, then from the cache together with
// its chats, and drops it from the list. The list is filtered, not
// re-fetched.
func (s *ConversationService) Delete(id int64) *Request {
	prevKind := s.slot.Value().Kind()
	return run(s.eng, s.slot, func() *Request { return s.Delete(id) },
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[[]model.Conversation] {
			if err := s.repo.Remove(ctx, id); err != nil {
				return loadable.Failed[[]model.Conversation](err)
			}
			s.pages.forget(id)
			if s.chats != nil {
				if err := s.chats.DeleteByParent(ctx, id); err != nil {
					return loadable.Failed[[]model.Conversation](err)
				}
			}
			current, ok := s.slot.Value().Value()
			if !ok {
				// No list to filter after a failed attempt; the cache already
				// reflects the delete.
				cached, err := s.repo.Cached(ctx, 0)
				if err != nil {
					return loadable.Failed[[]model.Conversation](err)
				}
				return keepKind(prevKind, cached)
			}
			remaining := slices.DeleteFunc(slices.Clone(current), func(c model.Conversation) bool { return c.ID == id })
			return keepKind(prevKind, remaining)
		})
}
