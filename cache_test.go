package sqldatabase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sterbis/sqldatabase"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		cache := sqldatabase.NewMemoryCache()
		value, err := cache.Get(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()
		cache := sqldatabase.NewMemoryCache()
		require.NoError(t, cache.Set(ctx, "k", []byte("v"), 0))
		value, err := cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), value)

		require.NoError(t, cache.Set(ctx, "k", []byte("v2"), 0))
		value, err = cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), value)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		cache := sqldatabase.NewMemoryCache()
		require.NoError(t, cache.Set(ctx, "k", []byte("v"), 0))
		require.NoError(t, cache.Delete(ctx, "k"))
		value, err := cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("delete prefix", func(t *testing.T) {
		t.Parallel()
		cache := sqldatabase.NewMemoryCache()
		require.NoError(t, cache.Set(ctx, "words:a", []byte("1"), 0))
		require.NoError(t, cache.Set(ctx, "words:b", []byte("2"), 0))
		require.NoError(t, cache.Set(ctx, "meanings:c", []byte("3"), 0))
		require.NoError(t, cache.DeletePrefix(ctx, "words:"))

		value, err := cache.Get(ctx, "words:a")
		require.NoError(t, err)
		assert.Nil(t, value)
		value, err = cache.Get(ctx, "meanings:c")
		require.NoError(t, err)
		assert.Equal(t, []byte("3"), value)
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()
		cache := sqldatabase.NewMemoryCache()
		require.NoError(t, cache.Set(ctx, "a", []byte("1"), 0))
		require.NoError(t, cache.Set(ctx, "b", []byte("2"), 0))
		require.NoError(t, cache.Clear(ctx))
		value, err := cache.Get(ctx, "a")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("ttl expires entries", func(t *testing.T) {
		t.Parallel()
		cache := sqldatabase.NewMemoryCache()
		require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Nanosecond))
		time.Sleep(5 * time.Millisecond)
		value, err := cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		t.Parallel()
		cache := sqldatabase.NewMemoryCache()
		require.NoError(t, cache.Set(ctx, "k", []byte("v"), 0))
		time.Sleep(5 * time.Millisecond)
		value, err := cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), value)
	})
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	key := sqldatabase.CacheKey{
		Table: "words",
		SQL:   "SELECT 1",
		Args:  "[en]",
	}
	assert.Equal(t, "words:SELECT 1:[en]", key.String())

	prefix := sqldatabase.TableCachePrefix("words")
	assert.Equal(t, "words:", prefix)
	assert.True(t, len(key.String()) > len(prefix))
	assert.Equal(t, prefix, key.String()[:len(prefix)])
}
