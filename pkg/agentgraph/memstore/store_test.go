package memstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storeFactories = map[string]func(t *testing.T) memstore.Store{
	"memory": func(t *testing.T) memstore.Store {
		return memstore.NewMemoryStore()
	},
	"sqlite": func(t *testing.T) memstore.Store {
		store, err := memstore.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return store
	},
}

func TestStore_UpsertAndGet(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()
			ctx := context.Background()

			require.NoError(t, store.Upsert(ctx, "u1", "favorite_color", "blue"))

			rec, err := store.Get(ctx, "u1", "favorite_color")
			require.NoError(t, err)
			assert.Equal(t, "blue", rec.Value)
			assert.False(t, rec.UpdatedAt.IsZero())
		})
	}
}

func TestStore_LastWriteWins(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()
			ctx := context.Background()

			require.NoError(t, store.Upsert(ctx, "u1", "city", "Paris"))
			require.NoError(t, store.Upsert(ctx, "u1", "city", "Tokyo"))

			rec, err := store.Get(ctx, "u1", "city")
			require.NoError(t, err)
			assert.Equal(t, "Tokyo", rec.Value)

			records, err := store.List(ctx, "u1")
			require.NoError(t, err)
			assert.Len(t, records, 1)
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			_, err := store.Get(context.Background(), "u1", "missing")
			assert.ErrorIs(t, err, memstore.ErrNotFound)
		})
	}
}

func TestStore_ListOrderedByKey(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()
			ctx := context.Background()

			require.NoError(t, store.Upsert(ctx, "u1", "c", "3"))
			require.NoError(t, store.Upsert(ctx, "u1", "a", "1"))
			require.NoError(t, store.Upsert(ctx, "u1", "b", "2"))
			require.NoError(t, store.Upsert(ctx, "u2", "z", "other user"))

			records, err := store.List(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, records, 3)
			assert.Equal(t, "a", records[0].Key)
			assert.Equal(t, "b", records[1].Key)
			assert.Equal(t, "c", records[2].Key)
		})
	}
}

func TestStore_UseAfterClose(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			require.NoError(t, store.Close())

			err := store.Upsert(context.Background(), "u1", "k", "v")
			assert.ErrorIs(t, err, memstore.ErrStoreClosed)
		})
	}
}

func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memory.db")
	ctx := context.Background()

	store1, err := memstore.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store1.Upsert(ctx, "u1", "language", "Go"))
	require.NoError(t, store1.Close())

	store2, err := memstore.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	rec, err := store2.Get(ctx, "u1", "language")
	require.NoError(t, err)
	assert.Equal(t, "Go", rec.Value)
}
