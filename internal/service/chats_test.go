package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/model"
	"github.com/five82/ava/internal/repository"
	"github.com/five82/ava/internal/state"
)

func newChats(h *harness, sender *senderFake) (*ChatService, *repository.Repository[model.Chat]) {
	repo := newRepo[model.Chat](h, model.KindChat, nil, nil)
	return NewChatService(h.eng, repo, sender), repo
}

func TestSendStoresMessageAndReply(t *testing.T) {
	h := newHarness(t)
	sender := &senderFake{reply: "hello back"}
	svc, repo := newChats(h, sender)

	require.NoError(t, wait(t, svc.Send(3, " hello ")))

	got := svc.Slot(3).Value()
	require.Equal(t, loadable.KindLoaded, got.Kind())
	chats, _ := got.Value()
	require.Len(t, chats, 2)

	require.Equal(t, "hello", chats[0].Message)
	require.True(t, chats[0].IsUserMessage)
	require.Equal(t, model.SendStateNone, chats[0].SendState)
	require.Equal(t, 1, chats[0].Sequence)

	require.Equal(t, "hello back", chats[1].Message)
	require.False(t, chats[1].IsUserMessage)
	require.Equal(t, 2, chats[1].Sequence)
	require.NotEqual(t, chats[0].ID, chats[1].ID)

	cached, err := repo.Cached(t.Context(), 3)
	require.NoError(t, err)
	require.Len(t, cached, 2)
}

func TestSendShowsMessageWhileSending(t *testing.T) {
	h := newHarness(t)
	gate := make(chan struct{})
	sender := &senderFake{gate: gate, reply: "ok"}
	svc, _ := newChats(h, sender)

	req := svc.Send(3, "pending")
	require.Eventually(t, func() bool {
		l := svc.Slot(3).Value()
		chats, ok := l.Value()
		return l.IsLoading() && ok && len(chats) == 1 && chats[0].SendState == model.SendStateSending
	}, 2*time.Second, 5*time.Millisecond)

	close(gate)
	require.NoError(t, wait(t, req))
	require.True(t, svc.Slot(3).Value().Ready())
}

func TestSendFailureMarksMessageAndRetryResends(t *testing.T) {
	h := newHarness(t)
	sender := &senderFake{
		errs:  []error{averrors.Transport("chat/addUserChat", errors.New("timeout"))},
		reply: "finally",
	}
	svc, repo := newChats(h, sender)

	err := wait(t, svc.Send(5, "are you there"))
	require.ErrorIs(t, err, averrors.ErrTransport)
	require.Equal(t, loadable.KindFailed, svc.Slot(5).Value().Kind())

	cached, err := repo.Cached(t.Context(), 5)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	require.Equal(t, model.SendStateFailed, cached[0].SendState)
	failedID := cached[0].ID

	req, err := h.eng.Retry(state.ChatsFor(5).Key())
	require.NoError(t, err)
	require.NoError(t, wait(t, req))

	sent := sender.Sent()
	require.Len(t, sent, 2)
	require.Equal(t, failedID, sent[1].ID)

	chats, ok := svc.Slot(5).Value().Value()
	require.True(t, ok)
	require.Len(t, chats, 2)
	require.Equal(t, failedID, chats[0].ID)
	require.Equal(t, model.SendStateNone, chats[0].SendState)
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	h := newHarness(t)
	sender := &senderFake{}
	svc, _ := newChats(h, sender)

	err := wait(t, svc.Send(1, "   "))
	require.ErrorIs(t, err, averrors.ErrValidation)
	require.Empty(t, sender.Sent())
}

func TestLoadChatsSortsBySequence(t *testing.T) {
	h := newHarness(t)
	svc, repo := newChats(h, &senderFake{})
	_, err := repo.UpsertAll(t.Context(),
		model.Chat{ID: 1, ConversationID: 2, Sequence: 3, Message: "c"},
		model.Chat{ID: 2, ConversationID: 2, Sequence: 1, Message: "a"},
		model.Chat{ID: 3, ConversationID: 2, Sequence: 2, Message: "b"},
		model.Chat{ID: 4, ConversationID: 9, Sequence: 1, Message: "other"},
	)
	require.NoError(t, err)

	require.NoError(t, wait(t, svc.LoadChats(2, false)))
	chats, ok := svc.Slot(2).Value().Value()
	require.True(t, ok)
	var messages []string
	for _, c := range chats {
		messages = append(messages, c.Message)
	}
	require.Equal(t, []string{"a", "b", "c"}, messages)

	// Other conversations are untouched.
	require.Equal(t, loadable.KindNotRequested, svc.Slot(9).Value().Kind())
}

func TestSupersededSendLeavesMessageFailed(t *testing.T) {
	h := newHarness(t)
	gate := make(chan struct{})
	sender := &senderFake{gate: gate, reply: "late"}
	svc, repo := newChats(h, sender)

	send := svc.Send(1, "hello")
	require.Eventually(t, func() bool {
		chats, ok := svc.Slot(1).Value().Value()
		return ok && len(chats) == 1 && chats[0].SendState == model.SendStateSending
	}, 2*time.Second, 5*time.Millisecond)

	load := svc.LoadChats(1, false)
	require.ErrorIs(t, wait(t, send), averrors.ErrSuperseded)
	require.NoError(t, wait(t, load))

	cached, err := repo.Cached(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	require.Equal(t, model.SendStateFailed, cached[0].SendState)

	// The newer load keeps the slot's retry.
	req, err := h.eng.Retry(state.ChatsFor(1).Key())
	require.NoError(t, err)
	require.NoError(t, wait(t, req))
	require.Len(t, sender.Sent(), 1)

	close(gate)
	require.NoError(t, wait(t, svc.Resend(cached[0])))
	chats, ok := svc.Slot(1).Value().Value()
	require.True(t, ok)
	require.Len(t, chats, 2)
	require.Equal(t, cached[0].ID, chats[0].ID)
	require.Equal(t, model.SendStateNone, chats[0].SendState)
	require.Equal(t, "late", chats[1].Message)
}
