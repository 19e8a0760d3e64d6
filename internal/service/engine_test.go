package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/model"
	"github.com/five82/ava/internal/state"
)

func TestRetryWithoutOperation(t *testing.T) {
	h := newHarness(t)
	require.False(t, h.eng.CanRetry(state.ConversationsPath.Key()))

	_, err := h.eng.Retry(state.ConversationsPath.Key())
	require.ErrorIs(t, err, averrors.ErrValidation)
}

func TestCloseCancelsInFlight(t *testing.T) {
	h := newHarness(t)
	fake := &conversationFake{items: []model.Conversation{{ID: 1}}, gate: make(chan struct{})}
	s := newConversations(h, fake, 0)

	req := s.svc.LoadList(true)
	require.True(t, h.eng.CanRetry(state.ConversationsPath.Key()))
	h.eng.Close()

	require.ErrorIs(t, wait(t, req), averrors.ErrSuperseded)
	require.True(t, req.Handle().Cancelled())
	require.Equal(t, loadable.KindLoading, s.svc.Slot().Value().Kind())

	err := wait(t, s.svc.LoadList(true))
	require.Error(t, err)
	require.Equal(t, averrors.CategoryInternal, averrors.CategoryOf(err))
}

func TestOperationsOnDifferentSlotsRunIndependently(t *testing.T) {
	h := newHarness(t)
	gate := make(chan struct{})
	conversations := newConversations(h, &conversationFake{items: []model.Conversation{{ID: 1}}, gate: gate}, 0)
	chats, _ := newChats(h, &senderFake{reply: "r"})

	list := conversations.svc.LoadList(true)
	require.NoError(t, wait(t, chats.Send(1, "hi")))
	require.False(t, list.Handle().Cancelled())

	close(gate)
	require.NoError(t, wait(t, list))
}

func TestRememberIgnoresSupersededHandle(t *testing.T) {
	h := newHarness(t)
	slot := state.Bind(h.store, state.ConversationsPath)
	key := slot.Key()

	var replayed []string
	replay := func(name string) func() *Request {
		return func() *Request {
			replayed = append(replayed, name)
			return finished(key, nil)
		}
	}
	hold := func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[[]model.Conversation] {
		<-ctx.Done()
		return loadable.Failed[[]model.Conversation](ctx.Err())
	}

	first := run(h.eng, slot, replay("first"), hold)
	require.True(t, h.eng.remember(key, first.Handle(), replay("first resend")))

	second := run(h.eng, slot, replay("second"), hold)
	require.ErrorIs(t, wait(t, first), averrors.ErrSuperseded)
	require.False(t, h.eng.remember(key, first.Handle(), replay("stale")))

	_, err := h.eng.Retry(key)
	require.NoError(t, err)
	require.Equal(t, []string{"second"}, replayed)

	slot.Cancel()
	require.ErrorIs(t, wait(t, second), averrors.ErrSuperseded)
}
