package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheWithClient(client)
}

func TestSetAndGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", "value", time.Minute))

	val, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", val)
}

func TestGetMissingKeyReturnsEmpty(t *testing.T) {
	c := newTestCache(t)

	val, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestSetJSONRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	type row struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	stored := []row{{ID: 1, Name: "City Clinic"}, {ID: 2, Name: "Green Hospital"}}
	require.NoError(t, c.SetJSON(ctx, "locations_cache:7", stored, time.Minute))

	var loaded []row
	ok, err := c.GetJSON(ctx, "locations_cache:7", &loaded)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, stored, loaded)
}

func TestGetJSONAbsentKey(t *testing.T) {
	c := newTestCache(t)

	var out []string
	ok, err := c.GetJSON(context.Background(), "absent", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetJSONUndecodablePayloadMisses(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", "not json at all", time.Minute))

	var out map[string]string
	ok, err := c.GetJSON(ctx, "key", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, c.Delete(ctx, "key"))

	val, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestDeleteAllByPattern(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "appointments_cache:1", "a", time.Minute))
	require.NoError(t, c.Set(ctx, "appointments_cache:2", "b", time.Minute))
	require.NoError(t, c.Set(ctx, "patients_cache:1", "c", time.Minute))

	require.NoError(t, c.DeleteAll(ctx, "appointments_cache:*"))

	val, err := c.Get(ctx, "appointments_cache:1")
	require.NoError(t, err)
	assert.Empty(t, val)

	val, err = c.Get(ctx, "patients_cache:1")
	require.NoError(t, err)
	assert.Equal(t, "c", val)
}
