package redis

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agriconnect/user-service/internal/core/domain"
)

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestNewAccountCache_DefaultTTL(t *testing.T) {
	c := NewAccountCache(nil, 0)
	assert.Equal(t, defaultCacheTTL, c.ttl)

	c = NewAccountCache(nil, time.Minute)
	assert.Equal(t, time.Minute, c.ttl)
}

func TestAccountCache_Key(t *testing.T) {
	c := NewAccountCache(nil, 0)
	assert.Equal(t, "account:abc", c.key("abc"))
	assert.Equal(t, "account:abc:gen", c.genKey("abc"))
	assert.Equal(t, 2*defaultCacheTTL, c.generationTTL())
}

func TestAccountCache_SnapshotOmitsPasswordHash(t *testing.T) {
	a := &domain.Account{ID: "1", Email: "a@x.com", PasswordHash: "$2a$10$secret", Role: domain.RoleFarmer}

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "secret"))

	var back domain.Account
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, a.Email, back.Email)
	assert.Empty(t, back.PasswordHash)
}

func TestAccountCache_UnreachableServer(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	c := NewAccountCache(client, time.Minute)
	ctx := context.Background()

	_, _, ok, err := c.Get(ctx, "1")
	assert.False(t, ok)
	assert.Error(t, err)

	assert.Error(t, c.Set(ctx, &domain.Account{ID: "1"}, 0))
	assert.Error(t, c.Invalidate(ctx, "1"))
}

func TestParseGeneration(t *testing.T) {
	gen, err := parseGeneration(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	gen, err = parseGeneration("7")
	require.NoError(t, err)
	assert.Equal(t, int64(7), gen)

	_, err = parseGeneration("seven")
	assert.Error(t, err)
}

// liveClient connects to the server named by REDIS_TEST_ADDR and skips the
// test when it is unset.
func liveClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client, err := Connect(context.Background(), Config{Addr: addr, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestAccountCache_Live_FillHitInvalidate(t *testing.T) {
	client := liveClient(t)
	c := NewAccountCache(client, time.Minute)
	ctx := context.Background()
	id := "live-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	t.Cleanup(func() { client.Del(ctx, c.key(id), c.genKey(id)) })

	_, gen, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, &domain.Account{ID: id, Email: "l@x.io"}, gen))
	got, _, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "l@x.io", got.Email)

	require.NoError(t, c.Invalidate(ctx, id))
	_, next, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, gen+1, next)
}

func TestAccountCache_Live_FillAfterInvalidateIsDropped(t *testing.T) {
	client := liveClient(t)
	c := NewAccountCache(client, time.Minute)
	ctx := context.Background()
	id := "race-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	t.Cleanup(func() { client.Del(ctx, c.key(id), c.genKey(id)) })

	_, gen, _, err := c.Get(ctx, id)
	require.NoError(t, err)

	// A writer invalidates between the lookup and the fill.
	require.NoError(t, c.Invalidate(ctx, id))
	require.NoError(t, c.Set(ctx, &domain.Account{ID: id, FirstName: "Old"}, gen))

	_, _, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok, "stale fill must not be stored")
}
