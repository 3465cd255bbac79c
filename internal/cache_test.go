package internal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	t.Parallel()
	cache := NewCache(0)
	src := []byte("int 1\nreturn\n")
	report := &Report{Filename: "a.teal"}

	t.Run("NotFound", func(t *testing.T) {
		_, found := cache.Get("nonexistent.teal", src)
		assert.False(t, found)
	})

	t.Run("Hit", func(t *testing.T) {
		cache.Set("a.teal", src, report)
		got, found := cache.Get("a.teal", src)
		require.True(t, found)
		assert.Same(t, report, got)
	})

	t.Run("ContentModified", func(t *testing.T) {
		cache.Set("b.teal", src, report)
		_, found := cache.Get("b.teal", []byte("int 2\nreturn\n"))
		assert.False(t, found)

		// the stale entry is evicted
		_, found = cache.Get("b.teal", src)
		assert.False(t, found)
	})
}

func TestCacheMaxAge(t *testing.T) {
	t.Parallel()
	cache := NewCache(time.Nanosecond)
	src := []byte("err\n")
	cache.Set("a.teal", src, &Report{})
	time.Sleep(time.Millisecond)

	_, found := cache.Get("a.teal", src)
	assert.False(t, found)
	assert.Zero(t, cache.Len())
}

func TestCacheInvalidateAll(t *testing.T) {
	t.Parallel()
	cache := NewCache(0)
	cache.Set("a.teal", []byte("err\n"), &Report{})
	cache.Set("b.teal", []byte("err\n"), &Report{})
	require.Equal(t, 2, cache.Len())

	cache.InvalidateAll()
	assert.Zero(t, cache.Len())
}

func TestCacheWithEngine(t *testing.T) {
	t.Parallel()
	cache := NewCache(0)
	engine := NewEngine(WithCache(cache), WithoutExports())
	src := []byte("int 1\nreturn\nint 2\nerr\n")

	first, err := engine.RunSource("dead.teal", src)
	require.NoError(t, err)
	require.Len(t, first.Findings, 1)

	second, err := engine.RunSource("dead.teal", src)
	require.NoError(t, err)
	assert.Same(t, first, second)

	third, err := engine.RunSource("dead.teal", []byte("int 1\nreturn\n"))
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Empty(t, third.Findings)
}

func TestCacheConcurrency(t *testing.T) {
	t.Parallel()
	cache := NewCache(0)
	src := []byte("int 1\nreturn\n")
	report := &Report{}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			cache.Set("a.teal", src, report)
		}()
		go func() {
			defer wg.Done()
			_, _ = cache.Get("a.teal", src)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cache.Len())
}
