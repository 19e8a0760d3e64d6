package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/model"
	"github.com/five82/ava/internal/repository"
	"github.com/five82/ava/internal/state"
)

func newJournals(h *harness, fake *journalFake) (*JournalService, *repository.Repository[model.Journal]) {
	repo := newRepo[model.Journal](h, model.KindJournal, fake, fake)
	return NewJournalService(h.eng, repo, fake, 0), repo
}

func TestLoadByDateUsesCachedDay(t *testing.T) {
	h := newHarness(t)
	fake := &journalFake{}
	svc, repo := newJournals(h, fake)
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err := repo.UpsertAll(t.Context(),
		model.Journal{ID: 1, UserID: 1, Name: "morning", DateCreated: day},
		model.Journal{ID: 2, UserID: 1, Name: "yesterday", DateCreated: day.AddDate(0, 0, -1)},
	)
	require.NoError(t, err)

	require.NoError(t, wait(t, svc.LoadByDate(day.Add(10*time.Hour), false)))

	journals, ok := state.Get(h.store, state.JournalsByDatePath).Value()
	require.True(t, ok)
	require.Len(t, journals, 1)
	require.Equal(t, "morning", journals[0].Name)
	require.Zero(t, fake.Lookups())
}

func TestLoadByDateFetchesMissingDay(t *testing.T) {
	h := newHarness(t)
	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	fake := &journalFake{byDate: []model.Journal{{ID: 9, UserID: 1, Name: "remote", DateCreated: day.Add(time.Hour)}}}
	svc, repo := newJournals(h, fake)

	require.NoError(t, wait(t, svc.LoadByDate(day, false)))
	require.Equal(t, 1, fake.Lookups())
	require.True(t, repo.Exists(t.Context(), 9))

	// Now cached.
	require.NoError(t, wait(t, svc.LoadByDate(day, false)))
	require.Equal(t, 1, fake.Lookups())

	require.NoError(t, wait(t, svc.LoadByDate(day, true)))
	require.Equal(t, 2, fake.Lookups())
}

func TestAddFillsUserFromSlot(t *testing.T) {
	h := newHarness(t)
	svc, repo := newJournals(h, &journalFake{})
	state.Set(h.store, state.UserPath, loadable.Loaded(model.User{ID: 42}))

	require.NoError(t, wait(t, svc.Add(model.Journal{Name: "day one", Message: "walked"})))

	journals, ok := svc.Slot().Value().Value()
	require.True(t, ok)
	require.Len(t, journals, 1)
	require.Equal(t, int64(42), journals[0].UserID)
	require.False(t, journals[0].DateCreated.IsZero())
	require.True(t, repo.Exists(t.Context(), 100))
}

func TestJournalDelete(t *testing.T) {
	h := newHarness(t)
	svc, repo := newJournals(h, &journalFake{})
	_, err := repo.UpsertAll(t.Context(), model.Journal{ID: 1, UserID: 1}, model.Journal{ID: 2, UserID: 1})
	require.NoError(t, err)
	require.NoError(t, wait(t, svc.LoadList(false)))

	require.NoError(t, wait(t, svc.Delete(1)))

	journals, _ := svc.Slot().Value().Value()
	require.Len(t, journals, 1)
	require.Equal(t, int64(2), journals[0].ID)
	require.False(t, repo.Exists(t.Context(), 1))
}
