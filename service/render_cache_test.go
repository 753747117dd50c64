package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mifoto-print/models"
)

func sampleResult() *models.CompositionResult {
	return &models.CompositionResult{
		SizeID:        "kiosco",
		PixelWidth:    1181,
		PixelHeight:   1772,
		MimeType:      "image/jpeg",
		QualityFactor: 0.95,
		Raster:        []byte{0xff, 0xd8, 0x01, 0x02},
	}
}

func keyFor(copyID string) RenderKey {
	return RenderKey{CopyID: copyID, SettingsHash: models.DefaultCopySettings().Hash(), SizeID: "kiosco", Scale: 1}
}

func TestRenderKeyChangesWithSettings(t *testing.T) {
	a := keyFor("c1")
	b := a
	b.SettingsHash = settingsWith(models.MarginWhiteNarrow, 0, models.FitFill).Hash()
	c := a
	c.Scale = 0.25

	assert.NotEqual(t, a.String(), b.String())
	assert.NotEqual(t, a.String(), c.String())
	assert.Equal(t, a.String(), keyFor("c1").String())
}

func TestMemoryRenderCacheEvictsOldest(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryRenderCache(2)

	require.NoError(t, cache.Put(ctx, keyFor("a"), sampleResult()))
	require.NoError(t, cache.Put(ctx, keyFor("b"), sampleResult()))
	require.NoError(t, cache.Put(ctx, keyFor("c"), sampleResult()))

	assert.Equal(t, 2, cache.Len())
	_, ok, _ := cache.Get(ctx, keyFor("a"))
	assert.False(t, ok)
	_, ok, _ = cache.Get(ctx, keyFor("c"))
	assert.True(t, ok)
}

func TestDiskRenderCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, err := NewDiskRenderCache(t.TempDir())
	require.NoError(t, err)

	_, ok, err := cache.Get(ctx, keyFor("c1"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, keyFor("c1"), sampleResult()))
	got, ok, err := cache.Get(ctx, keyFor("c1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)

	_, err = os.Stat(cache.CachePath(keyFor("c1")))
	assert.NoError(t, err)
}

func TestDiskRenderCacheReportsCorruptEntry(t *testing.T) {
	cache, err := NewDiskRenderCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cache.CachePath(keyFor("c1")), []byte("{"), 0644))

	_, ok, err := cache.Get(context.Background(), keyFor("c1"))
	assert.Error(t, err)
	assert.False(t, ok)
}

type fakeRedis struct {
	values map[string][]byte
	ttls   map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = value.([]byte)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func TestRedisRenderCache(t *testing.T) {
	ctx := context.Background()
	store := newFakeRedis()
	cache := &RedisRenderCache{store: store, ttl: time.Hour}

	_, ok, err := cache.Get(ctx, keyFor("c1"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, keyFor("c1"), sampleResult()))
	assert.Equal(t, time.Hour, store.ttls[redisKeyPrefix+keyFor("c1").String()])

	got, ok, err := cache.Get(ctx, keyFor("c1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)
}
