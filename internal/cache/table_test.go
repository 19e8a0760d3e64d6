package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/model"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "cache.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	require.Equal(t, path, db.Path())
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate())
}

func TestTable_PutIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := t.Context()
	chats := NewTable[model.Chat](db, model.KindChat)

	c := model.Chat{ID: 3, ConversationID: 1, Message: "hi", IsUserMessage: true}
	_, err := chats.Put(ctx, c)
	require.NoError(t, err)
	_, err = chats.Put(ctx, c)
	require.NoError(t, err)

	n, err := chats.Count(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, ok, err := chats.Get(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, c, got)
}

func TestTable_PutReplacesExistingRow(t *testing.T) {
	db := setupTestDB(t)
	ctx := t.Context()
	convs := NewTable[model.Conversation](db, model.KindConversation)

	_, err := convs.Put(ctx, model.Conversation{ID: 1, Name: "old"})
	require.NoError(t, err)
	_, err = convs.Put(ctx, model.Conversation{ID: 1, Name: "new"})
	require.NoError(t, err)

	got, ok, err := convs.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "new", got.Name)
}

func TestTable_PutAssignsLocalIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := t.Context()
	chats := NewTable[model.Chat](db, model.KindChat)

	_, err := chats.Put(ctx, model.Chat{ID: 10, ConversationID: 1})
	require.NoError(t, err)

	stored, err := chats.Put(ctx, model.Chat{ConversationID: 1}, model.Chat{ConversationID: 1})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, int64(11), stored[0].ID)
	require.Equal(t, int64(12), stored[1].ID)

	next, err := chats.NextID(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(13), next)
}

func TestTable_NextIDNeverReused(t *testing.T) {
	db := setupTestDB(t)
	ctx := t.Context()
	journals := NewTable[model.Journal](db, model.KindJournal)

	first, err := journals.NextID(ctx)
	require.NoError(t, err)
	second, err := journals.NextID(ctx)
	require.NoError(t, err)
	require.Greater(t, second, first)

	// Sequences are per kind.
	convID, err := NewTable[model.Conversation](db, model.KindConversation).NextID(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), convID)
}

func TestTable_DeleteMissingIsNoop(t *testing.T) {
	db := setupTestDB(t)
	ctx := t.Context()
	journals := NewTable[model.Journal](db, model.KindJournal)

	require.NoError(t, journals.Delete(ctx, 99))

	_, err := journals.Put(ctx, model.Journal{ID: 1, UserID: 4})
	require.NoError(t, err)
	require.NoError(t, journals.Delete(ctx, 1))

	ok, err := journals.Exists(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTable_ListByParentWithPaging(t *testing.T) {
	db := setupTestDB(t)
	ctx := t.Context()
	chats := NewTable[model.Chat](db, model.KindChat)

	for i := int64(1); i <= 5; i++ {
		_, err := chats.Put(ctx, model.Chat{ID: i, ConversationID: 1 + i%2})
		require.NoError(t, err)
	}

	odd, err := chats.List(ctx, 2, 0, 0)
	require.NoError(t, err)
	require.Len(t, odd, 3)
	require.Equal(t, int64(1), odd[0].ID)

	page, err := chats.List(ctx, 0, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, int64(2), page[0].ID)
	require.Equal(t, int64(3), page[1].ID)

	rest, err := chats.List(ctx, 0, 3, 0)
	require.NoError(t, err)
	require.Len(t, rest, 2)
}

func TestTable_DeleteByParentLeavesOtherParents(t *testing.T) {
	db := setupTestDB(t)
	ctx := t.Context()
	chats := NewTable[model.Chat](db, model.KindChat)

	_, err := chats.Put(ctx,
		model.Chat{ID: 1, ConversationID: 7},
		model.Chat{ID: 2, ConversationID: 7},
		model.Chat{ID: 3, ConversationID: 8},
	)
	require.NoError(t, err)
	require.NoError(t, chats.DeleteByParent(ctx, 7))

	n, err := chats.Count(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestTable_ClosedDBReportsStorageError(t *testing.T) {
	db, err := Open(MemoryPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = NewTable[model.User](db, model.KindUser).Put(t.Context(), model.User{ID: 1})
	require.ErrorIs(t, err, averrors.ErrStorage)
}
