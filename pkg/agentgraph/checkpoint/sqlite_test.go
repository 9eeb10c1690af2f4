package checkpoint_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/checkpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	ctx := context.Background()

	// First store instance
	store1, err := checkpoint.NewSQLiteStore(dbPath)
	require.NoError(t, err)

	require.NoError(t, store1.Append(ctx, checkpoint.New("t1", 1, []byte(`{"persistent":true}`), "reasoning", "tools")))
	require.NoError(t, store1.Close())

	// Second store instance (reopening the database)
	store2, err := checkpoint.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	latest, err := store2.Latest(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, latest.Step)
	assert.JSONEq(t, `{"persistent":true}`, string(latest.State))
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := checkpoint.NewSQLiteStore("/nonexistent/path/db.sqlite")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := checkpoint.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_ConcurrentThreads(t *testing.T) {
	store, err := checkpoint.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	const numThreads = 20
	const numSteps = 10

	var wg sync.WaitGroup
	wg.Add(numThreads)

	for i := 0; i < numThreads; i++ {
		go func(id int) {
			defer wg.Done()

			threadID := "thread-" + string(rune('a'+id%26))
			for step := 1; step <= numSteps; step++ {
				cp := checkpoint.New(threadID, id*100+step, []byte(`{}`), "reasoning", "tools")
				_ = store.Append(context.Background(), cp)
				_, _ = store.Latest(context.Background(), threadID)
			}
		}(i)
	}

	wg.Wait()
}

func TestSQLiteStore_LargeState(t *testing.T) {
	store, err := checkpoint.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	// 1MB of state
	large := make([]byte, 1024*1024)
	for i := range large {
		large[i] = byte('a' + i%26)
	}

	require.NoError(t, store.Append(ctx, checkpoint.New("t1", 1, large, "reasoning", "__end__")))

	latest, err := store.Latest(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, large, []byte(latest.State))

	infos, err := store.List(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, int64(1024*1024), infos[0].Size)
}
