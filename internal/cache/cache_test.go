package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	require.NotNil(t, InitRedis("redis://"+mr.Addr()+"/0"))
	t.Cleanup(func() {
		if c := GetClient(); c != nil {
			_ = c.Close()
		}
		SetClient(nil)
	})
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			*dest = payload{Name: "fresh", Count: calls}
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, PostKey("p1"), &first, PostTTL, fetch(&first)))
	assert.Equal(t, payload{Name: "fresh", Count: 1}, first)
	assert.True(t, mr.Exists("post:p1"))
	assert.Equal(t, PostTTL, mr.TTL("post:p1"))

	var second payload
	require.NoError(t, Aside(ctx, PostKey("p1"), &second, PostTTL, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	InvalidatePost(ctx, "p1")
	assert.False(t, mr.Exists("post:p1"))
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := setupRedis(t)
	boom := errors.New("boom")

	var dest payload
	err := Aside(context.Background(), UserKey("u1"), &dest, UserTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("user:u1"))
}

func TestAside_WithoutRedis(t *testing.T) {
	SetClient(nil)

	var dest payload
	err := Aside(context.Background(), "k", &dest, time.Minute, func() error {
		dest.Name = "db"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "db", dest.Name)

	found, err := GetJSON(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside_CorruptEntryFallsBackToFetch(t *testing.T) {
	mr := setupRedis(t)
	require.NoError(t, mr.Set("user:u2", "{not json"))

	var dest payload
	require.NoError(t, Aside(context.Background(), UserKey("u2"), &dest, UserTTL, func() error {
		dest.Name = "db"
		return nil
	}))
	assert.Equal(t, "db", dest.Name)
}

func TestInitRedis(t *testing.T) {
	t.Run("empty address disables cache", func(t *testing.T) {
		assert.Nil(t, InitRedis(""))
		assert.Nil(t, GetClient())
	})

	t.Run("unreachable server disables cache", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		assert.Nil(t, InitRedis(addr))
		assert.Nil(t, GetClient())
	})
}
