package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaches(t *testing.T) map[string]Cache {
	t.Helper()

	mem, err := NewMemoryCache(8)
	require.NoError(t, err)

	sqlite, err := NewSQLiteCache(filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		mem.Close()
		sqlite.Close()
	})
	return map[string]Cache{"memory": mem, "sqlite": sqlite}
}

func TestCache_SetGet(t *testing.T) {
	for name, c := range newCaches(t) {
		t.Run(name, func(t *testing.T) {
			_, found := c.Get("missing")
			assert.False(t, found)

			require.NoError(t, c.Set("k", []byte(`{"results":[]}`), time.Minute))
			data, found := c.Get("k")
			require.True(t, found)
			assert.Equal(t, `{"results":[]}`, string(data))

			require.NoError(t, c.Set("k", []byte("v2"), time.Minute))
			data, _ = c.Get("k")
			assert.Equal(t, "v2", string(data))
		})
	}
}

func TestCache_Expiry(t *testing.T) {
	for name, c := range newCaches(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set("k", []byte("v"), -time.Second))
			_, found := c.Get("k")
			assert.False(t, found)
		})
	}
}

func TestCache_Clear(t *testing.T) {
	for name, c := range newCaches(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set("a", []byte("1"), time.Minute))
			require.NoError(t, c.Set("b", []byte("2"), time.Minute))
			require.NoError(t, c.Clear())

			_, found := c.Get("a")
			assert.False(t, found)
			_, found = c.Get("b")
			assert.False(t, found)
		})
	}
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	c, err := NewMemoryCache(2)
	require.NoError(t, err)

	require.NoError(t, c.Set("a", []byte("1"), time.Minute))
	require.NoError(t, c.Set("b", []byte("2"), time.Minute))
	require.NoError(t, c.Set("c", []byte("3"), time.Minute))

	_, found := c.Get("a")
	assert.False(t, found)
	_, found = c.Get("c")
	assert.True(t, found)
}

func TestSQLiteCache_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := NewSQLiteCache(path)
	require.NoError(t, err)
	require.NoError(t, c.Set("k", []byte("v"), time.Hour))
	require.NoError(t, c.Close())

	reopened, err := NewSQLiteCache(path)
	require.NoError(t, err)
	defer reopened.Close()

	data, found := reopened.Get("k")
	require.True(t, found)
	assert.Equal(t, "v", string(data))
}
