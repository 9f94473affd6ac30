package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnny-stegall/Digital-Assistant/internal/place"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	sess := NewSearchSession()
	sess.Query = place.NewSearchQuery("steakhouse")
	sess.Pages = [][]place.Record{{{ID: "id-1", Name: "Alinea"}}}
	sess.PageIndex = 0
	sess.ContinuationToken = "token-1"

	require.NoError(t, store.Save(ctx, conv, sess))

	got, err := store.Get(ctx, conv)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.Pages, got.Pages)
	assert.Equal(t, 0, got.PageIndex)
	assert.Equal(t, "token-1", got.ContinuationToken)
	assert.Equal(t, "steakhouse", got.Query.PointOfInterest)
}

func TestRedisStore_MissingSession(t *testing.T) {
	store, _ := newRedisStore(t)

	got, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, conv, NewSearchSession()))
	require.NoError(t, store.Delete(ctx, conv))

	got, err := store.Get(ctx, conv)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_SessionsExpire(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, conv, NewSearchSession()))
	mr.FastForward(2 * time.Hour)

	got, err := store.Get(ctx, conv)
	require.NoError(t, err)
	assert.Nil(t, got)
}
