package service

import (
	"cmp"
	"context"
	"slices"
	"strings"

	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/model"
	"github.com/five82/ava/internal/repository"
	"github.com/five82/ava/internal/state"
)

// ChatSender posts a user message and returns the assistant's reply.
type ChatSender interface {
	Send(ctx context.Context, chat model.Chat) (model.Chat, error)
}

// ChatService manages one chat list slot per conversation.
type ChatService struct {
	eng    *Engine
	repo   *repository.Repository[model.Chat]
	sender ChatSender
}

func NewChatService(eng *Engine, repo *repository.Repository[model.Chat], sender ChatSender) *ChatService {
	return &ChatService{eng: eng, repo: repo, sender: sender}
}

// Slot returns the chat list slot of a conversation.
func (s *ChatService) Slot(conversationID int64) *state.Slot[[]model.Chat] {
	return state.Bind(s.eng.Store(), state.ChatsFor(conversationID))
}

// LoadChats loads the chats of a conversation. force bypasses the cache.
func (s *ChatService) LoadChats(conversationID int64, force bool) *Request {
	return run(s.eng, s.Slot(conversationID), func() *Request { return s.LoadChats(conversationID, force) },
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[[]model.Chat] {
			return loadable.Map(s.repo.FetchAll(ctx, repository.Query{ParentID: conversationID}, force), sortChats)
		})
}

// Send stores the message locally as being sent, shows it right away, posts
// it and stores the reply. On failure the message stays cached as failed and
// Retry resends the same message.
func (s *ChatService) Send(conversationID int64, message string) *Request {
	return s.send(model.Chat{
		ConversationID: conversationID,
		Message:        strings.TrimSpace(message),
		IsUserMessage:  true,
	})
}

// Resend posts a cached message again under its local id, for messages left
// failed by a request that is no longer the slot's last operation.
func (s *ChatService) Resend(chat model.Chat) *Request {
	return s.send(chat)
}

func (s *ChatService) send(chat model.Chat) *Request {
	slot := s.Slot(chat.ConversationID)
	return run(s.eng, slot, func() *Request { return s.send(chat) },
		func(ctx context.Context, h *loadable.Handle) loadable.Loadable[[]model.Chat] {
			c := chat
			if c.Message == "" {
				return loadable.Failed[[]model.Chat](averrors.Validation("message", "message is required"))
			}
			existing, err := s.repo.Cached(ctx, c.ConversationID)
			if err != nil {
				return loadable.Failed[[]model.Chat](err)
			}
			if c.Sequence == 0 {
				c.Sequence = nextSequence(existing)
			}
			c.SendState = model.SendStateSending
			c, err = s.repo.Upsert(ctx, c)
			if err != nil {
				return loadable.Failed[[]model.Chat](err)
			}
			// A retry resends this message under its local id.
			stored := c
			s.eng.remember(slot.Key(), h, func() *Request { return s.send(stored) })
			err = slot.Progress(h, func(cur loadable.Loadable[[]model.Chat]) loadable.Loadable[[]model.Chat] {
				list, ok := cur.Value()
				if !ok {
					list = existing
				}
				next := sortChats(replaceChat(list, c))
				return loadable.Loading(&next, h)
			})
			if err != nil {
				return s.failSend(ctx, c, err)
			}

			reply, sendErr := s.sender.Send(ctx, c)
			if sendErr != nil {
				return s.failSend(ctx, c, sendErr)
			}

			c.SendState = model.SendStateNone
			reply.ID = 0
			reply.ConversationID = c.ConversationID
			reply.Sequence = c.Sequence + 1
			// The remote has the message; store it even if the request was
			// cancelled meanwhile.
			if _, err := s.repo.UpsertAll(context.WithoutCancel(ctx), c, reply); err != nil {
				return loadable.Failed[[]model.Chat](err)
			}
			all, err := s.repo.Cached(ctx, c.ConversationID)
			return loadable.FromResult(sortChats(all), err)
		})
}

// failSend keeps c cached as failed so it can be resent. The write outlives
// the request, which may have been cancelled.
func (s *ChatService) failSend(ctx context.Context, c model.Chat, cause error) loadable.Loadable[[]model.Chat] {
	c.SendState = model.SendStateFailed
	if _, err := s.repo.Upsert(context.WithoutCancel(ctx), c); err != nil {
		return loadable.Failed[[]model.Chat](err)
	}
	return loadable.Failed[[]model.Chat](cause)
}

func sortChats(chats []model.Chat) []model.Chat {
	out := slices.Clone(chats)
	slices.SortStableFunc(out, func(a, b model.Chat) int {
		if c := cmp.Compare(a.Sequence, b.Sequence); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func nextSequence(chats []model.Chat) int {
	n := 0
	for _, c := range chats {
		n = max(n, c.Sequence)
	}
	return n + 1
}

func replaceChat(list []model.Chat, chat model.Chat) []model.Chat {
	out := slices.Clone(list)
	for i := range out {
		if out[i].ID == chat.ID {
			out[i] = chat
			return out
		}
	}
	return append(out, chat)
}
