package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mifoto-print/logger"
	"mifoto-print/models"
)

// RenderKey identifies one composition. A change to the copy's settings changes the key.
type RenderKey struct {
	CopyID       string
	SettingsHash string
	SizeID       string
	Scale        float64
}

func (k RenderKey) String() string {
	return fmt.Sprintf("%s_%s_%s_%s", k.CopyID, k.SettingsHash, k.SizeID, strconv.FormatFloat(k.Scale, 'f', -1, 64))
}

// RenderCache stores rendered compositions. Implementations are safe for concurrent use.
type RenderCache interface {
	Get(ctx context.Context, key RenderKey) (*models.CompositionResult, bool, error)
	Put(ctx context.Context, key RenderKey, result *models.CompositionResult) error
}

// cacheEntry is the serialized form used by the disk and redis backends.
type cacheEntry struct {
	SizeID        string  `json:"sizeId"`
	PixelWidth    int     `json:"pixelWidth"`
	PixelHeight   int     `json:"pixelHeight"`
	MimeType      string  `json:"mimeType"`
	QualityFactor float64 `json:"qualityFactor"`
	Raster        []byte  `json:"raster"`
}

func encodeEntry(r *models.CompositionResult) ([]byte, error) {
	return json.Marshal(cacheEntry{
		SizeID:        r.SizeID,
		PixelWidth:    r.PixelWidth,
		PixelHeight:   r.PixelHeight,
		MimeType:      r.MimeType,
		QualityFactor: r.QualityFactor,
		Raster:        r.Raster,
	})
}

func decodeEntry(data []byte) (*models.CompositionResult, error) {
	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return &models.CompositionResult{
		SizeID:        e.SizeID,
		PixelWidth:    e.PixelWidth,
		PixelHeight:   e.PixelHeight,
		MimeType:      e.MimeType,
		QualityFactor: e.QualityFactor,
		Raster:        e.Raster,
	}, nil
}

// MemoryRenderCache keeps up to capacity results and evicts the oldest first.
type MemoryRenderCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*models.CompositionResult
	order    []string
}

func NewMemoryRenderCache(capacity int) *MemoryRenderCache {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryRenderCache{capacity: capacity, entries: make(map[string]*models.CompositionResult)}
}

func (c *MemoryRenderCache) Get(_ context.Context, key RenderKey) (*models.CompositionResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key.String()]
	return r, ok, nil
}

func (c *MemoryRenderCache) Put(_ context.Context, key RenderKey, result *models.CompositionResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key.String()
	if _, ok := c.entries[k]; !ok {
		c.order = append(c.order, k)
	}
	c.entries[k] = result
	for len(c.order) > c.capacity {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	return nil
}

func (c *MemoryRenderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// DiskRenderCache stores one file per composition under dir.
type DiskRenderCache struct {
	dir string
}

// NewDiskRenderCache ensures dir exists.
func NewDiskRenderCache(dir string) (*DiskRenderCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DiskRenderCache{dir: dir}, nil
}

// CachePath returns the file path for key.
func (c *DiskRenderCache) CachePath(key RenderKey) string {
	return filepath.Join(c.dir, "render_"+safeFileName(key.String())+".json")
}

func (c *DiskRenderCache) Get(_ context.Context, key RenderKey) (*models.CompositionResult, bool, error) {
	data, err := os.ReadFile(c.CachePath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read from cache: %w", err)
	}
	r, err := decodeEntry(data)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// Put writes through a temp file so readers never see a partial entry.
func (c *DiskRenderCache) Put(_ context.Context, key RenderKey, result *models.CompositionResult) error {
	data, err := encodeEntry(result)
	if err != nil {
		return err
	}
	path := c.CachePath(key)
	tmp, err := os.CreateTemp(c.dir, "render-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	logger.L().Debugf("✓ Render cached: %s", path)
	return nil
}

func safeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.', r == '~':
			return r
		}
		return '_'
	}, s)
}

const redisKeyPrefix = "mifoto:render:"

type redisCmdable interface {
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
}

// RedisRenderCache shares compositions between instances with a TTL.
type RedisRenderCache struct {
	store redisCmdable
	ttl   time.Duration
}

func NewRedisRenderCache(client *redis.Client, ttl time.Duration) *RedisRenderCache {
	return &RedisRenderCache{store: client, ttl: ttl}
}

func (c *RedisRenderCache) Get(ctx context.Context, key RenderKey) (*models.CompositionResult, bool, error) {
	data, err := c.store.Get(ctx, redisKeyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	r, err := decodeEntry(data)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

func (c *RedisRenderCache) Put(ctx context.Context, key RenderKey, result *models.CompositionResult) error {
	data, err := encodeEntry(result)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, redisKeyPrefix+key.String(), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
