package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/tenderwatch/internal/testutil"
)

func TestResponseCache_SetGet(t *testing.T) {
	mr, client := testutil.SetupTestRedis(t)
	cache := NewResponseCache(client, 30*time.Second)
	ctx := context.Background()

	resp := CachedResponse{Status: 200, ContentType: "application/json", Body: []byte(`{"data":[]}`)}
	require.NoError(t, cache.Set(ctx, "/tenders?limit=10", resp))

	got, ok, err := cache.Get(ctx, "/tenders?limit=10")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, resp, got)
	assert.Equal(t, 30*time.Second, mr.TTL(DefaultResponsePrefix+"/tenders?limit=10"))
}

func TestResponseCache_MissAndExpiry(t *testing.T) {
	mr, client := testutil.SetupTestRedis(t)
	cache := NewResponseCache(client, 0)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "/tenders")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "/tenders", CachedResponse{Status: 200}))
	mr.FastForward(2 * time.Minute)

	_, ok, err = cache.Get(ctx, "/tenders")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResponseCache_EmptyKey(t *testing.T) {
	_, client := testutil.SetupTestRedis(t)
	cache := NewResponseCache(client, time.Minute)

	_, _, err := cache.Get(context.Background(), "")
	require.Error(t, err)
	require.Error(t, cache.Set(context.Background(), "", CachedResponse{}))
}
