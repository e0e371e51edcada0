package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguatranslate/internal/config"
	"linguatranslate/internal/models"
	"linguatranslate/internal/storage"
)

func newTestContextStore(t *testing.T) *SessionContextStore {
	t.Helper()
	return NewSessionContextStore(storage.NewMemoryStore(100), &config.ContextStoreConfig{
		MaxHistory:    10,
		ContextWindow: 3,
		TTL:           time.Minute,
	}, testLogger())
}

func TestSessionContextStore_EmptySession(t *testing.T) {
	ctx := context.Background()
	store := newTestContextStore(t)

	rendered, err := store.GetContext(ctx, "unknown-session")
	require.NoError(t, err)
	assert.Empty(t, rendered)

	history, err := store.GetHistory(ctx, "unknown-session")
	require.NoError(t, err)
	require.NotNil(t, history)
	assert.Empty(t, history.Exchanges)
}

func TestSessionContextStore_BlankSessionIDIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newTestContextStore(t)

	require.NoError(t, store.AddExchange(ctx, "", models.Exchange{UserText: "hello", Translation: "hola"}))

	rendered, err := store.GetContext(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, rendered)
}

func TestSessionContextStore_RendersRecentExchanges(t *testing.T) {
	ctx := context.Background()
	store := newTestContextStore(t)

	require.NoError(t, store.AddExchange(ctx, "s1", models.Exchange{UserText: "hello", Translation: "hola", TargetLang: "es"}))
	require.NoError(t, store.AddExchange(ctx, "s1", models.Exchange{UserText: "goodbye", Translation: "adios", TargetLang: "es"}))

	rendered, err := store.GetContext(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Previous: hello -> hola | Previous: goodbye -> adios", rendered)
}

func TestSessionContextStore_ContextWindowLimitsRendering(t *testing.T) {
	ctx := context.Background()
	store := newTestContextStore(t)

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.AddExchange(ctx, "s1", models.Exchange{
			UserText:    fmt.Sprintf("text%d", i),
			Translation: fmt.Sprintf("trans%d", i),
		}))
	}

	rendered, err := store.GetContext(ctx, "s1")
	require.NoError(t, err)
	// Only the 3 most recent exchanges are rendered, oldest first
	assert.Equal(t, "Previous: text3 -> trans3 | Previous: text4 -> trans4 | Previous: text5 -> trans5", rendered)
}

func TestSessionContextStore_HistoryBounded(t *testing.T) {
	ctx := context.Background()
	store := NewSessionContextStore(storage.NewMemoryStore(100), &config.ContextStoreConfig{
		MaxHistory:    3,
		ContextWindow: 2,
		TTL:           time.Minute,
	}, testLogger())

	for i := 1; i <= 6; i++ {
		require.NoError(t, store.AddExchange(ctx, "s1", models.Exchange{
			UserText:    fmt.Sprintf("text%d", i),
			Translation: fmt.Sprintf("trans%d", i),
		}))
	}

	history, err := store.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history.Exchanges, 3)
	assert.Equal(t, "text4", history.Exchanges[0].UserText)
	assert.Equal(t, "text6", history.Exchanges[2].UserText)
}

func TestSessionContextStore_ConcurrentExchangesAllRetained(t *testing.T) {
	ctx := context.Background()
	store := NewSessionContextStore(storage.NewMemoryStore(100), &config.ContextStoreConfig{
		MaxHistory:    50,
		ContextWindow: 3,
		TTL:           time.Minute,
	}, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			require.NoError(t, store.AddExchange(ctx, "s1", models.Exchange{
				UserText:    fmt.Sprintf("text %d", i),
				Translation: fmt.Sprintf("translation %d", i),
			}))
		}(i)
	}
	wg.Wait()

	// Concurrent appends to one session must not overwrite each other
	history, err := store.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history.Exchanges, 20)
}

func TestSessionContextStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := newTestContextStore(t)

	require.NoError(t, store.AddExchange(ctx, "s1", models.Exchange{UserText: "hello", Translation: "hola"}))
	require.NoError(t, store.AddExchange(ctx, "s2", models.Exchange{UserText: "goodbye", Translation: "adios"}))

	rendered, err := store.GetContext(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, "Previous: goodbye -> adios", rendered)
}

func TestSessionContextStore_StoreFailuresDegrade(t *testing.T) {
	ctx := context.Background()
	store := NewSessionContextStore(&failingStore{}, &config.ContextStoreConfig{
		MaxHistory:    10,
		ContextWindow: 3,
		TTL:           time.Minute,
	}, testLogger())

	rendered, err := store.GetContext(ctx, "s1")
	assert.NoError(t, err)
	assert.Empty(t, rendered)

	assert.NoError(t, store.AddExchange(ctx, "s1", models.Exchange{UserText: "hello", Translation: "hola"}))
}

func TestSessionContextStore_ExchangeTimestamped(t *testing.T) {
	ctx := context.Background()
	store := newTestContextStore(t)

	before := time.Now().UTC()
	require.NoError(t, store.AddExchange(ctx, "s1", models.Exchange{UserText: "hello", Translation: "hola"}))

	history, err := store.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history.Exchanges, 1)
	assert.False(t, history.Exchanges[0].CreatedAt.Before(before.Truncate(time.Second)))
}
