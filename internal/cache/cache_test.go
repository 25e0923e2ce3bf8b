package cache

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

func TestFileCacheMissingFileIsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	c, err := Open(fs, "state/cache.json", internal.NopLogger())
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get("entries:u1")
	assert.False(t, ok)
}

func TestFileCacheEmptyFileIsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "cache.json", nil, 0o600))
	c, err := Open(fs, "cache.json", internal.NopLogger())
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get("anything")
	assert.False(t, ok)
}

func TestFileCachePersistsAcrossReopen(t *testing.T) {
	fs := afero.NewMemMapFs()
	c, err := Open(fs, "state/cache.json", internal.NopLogger())
	require.NoError(t, err)

	c.Set("prefs:language", []byte("pt"))
	c.Set("baby:u1", []byte(`{"name":"Ana"}`))
	c.Delete("baby:u1")
	require.NoError(t, c.Close())

	exists, err := afero.Exists(fs, "state/cache.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)

	reopened, err := Open(fs, "state/cache.json", internal.NopLogger())
	require.NoError(t, err)
	defer reopened.Close()

	v, ok := reopened.Get("prefs:language")
	require.True(t, ok)
	assert.Equal(t, "pt", string(v))
	_, ok = reopened.Get("baby:u1")
	assert.False(t, ok)
}

func TestFileCacheBackgroundSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	c, err := Open(fs, "cache.json", internal.NopLogger(), WithSaveDelay(10*time.Millisecond))
	require.NoError(t, err)
	defer c.Close()

	c.Set("k", []byte("v"))
	assert.Eventually(t, func() bool {
		ok, _ := afero.Exists(fs, "cache.json")
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestGetReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.Set("k", []byte("abc"))
	v, _ := m.Get("k")
	v[0] = 'z'
	v, _ = m.Get("k")
	assert.Equal(t, "abc", string(v))

	fs := afero.NewMemMapFs()
	c, err := Open(fs, "c.json", internal.NopLogger())
	require.NoError(t, err)
	defer c.Close()
	c.Set("k", []byte("abc"))
	got, _ := c.Get("k")
	got[0] = 'z'
	again, _ := c.Get("k")
	assert.Equal(t, "abc", string(again))
}
