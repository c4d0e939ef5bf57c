package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/example/outfit-stylist/internal/logging"
	"github.com/example/outfit-stylist/internal/predictor"
	"github.com/example/outfit-stylist/internal/retry"
)

// ErrPreviewNotFound is returned for released or unknown preview ids.
var ErrPreviewNotFound = errors.New("preview not found")

// PreviewStore holds the bytes behind preview references.
type PreviewStore interface {
	Put(ctx context.Context, previewID string, image predictor.Image) error
	Get(ctx context.Context, previewID string) (*predictor.Image, error)
	Delete(ctx context.Context, previewID string) error
}

// MemoryPreviewStore keeps previews in process memory.
type MemoryPreviewStore struct {
	mu       sync.RWMutex
	previews map[string]predictor.Image
}

// NewMemoryPreviewStore creates an empty in-memory store.
func NewMemoryPreviewStore() *MemoryPreviewStore {
	return &MemoryPreviewStore{previews: make(map[string]predictor.Image)}
}

func (m *MemoryPreviewStore) Put(_ context.Context, previewID string, image predictor.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.previews[previewID] = image
	return nil
}

func (m *MemoryPreviewStore) Get(_ context.Context, previewID string) (*predictor.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	image, ok := m.previews[previewID]
	if !ok {
		return nil, ErrPreviewNotFound
	}
	return &image, nil
}

func (m *MemoryPreviewStore) Delete(_ context.Context, previewID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.previews, previewID)
	return nil
}

// Len reports how many previews are held.
func (m *MemoryPreviewStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.previews)
}

// Cache abstracts the Redis operations used by RedisPreviewStore to make
// testing easier.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

// RedisCache is a concrete implementation backed by go-redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache constructs a new Redis-backed cache adapter.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Set writes a value to Redis.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a cached value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

// Del removes a key from Redis.
func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

type cachedPreview struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// RedisPreviewStore keeps previews in Redis with a TTL backstop.
type RedisPreviewStore struct {
	cache  Cache
	ttl    time.Duration
	retry  retry.Policy
	logger *zap.Logger
}

// NewRedisPreviewStore creates a store writing previews with the given TTL.
func NewRedisPreviewStore(cache Cache, ttl time.Duration, logger *zap.Logger) *RedisPreviewStore {
	return &RedisPreviewStore{
		cache:  cache,
		ttl:    ttl,
		retry:  retry.DefaultPolicy,
		logger: logger.Named("redis_preview_store"),
	}
}

func previewKey(previewID string) string {
	return fmt.Sprintf("preview:%s", previewID)
}

func (r *RedisPreviewStore) Put(ctx context.Context, previewID string, image predictor.Image) error {
	serialized, err := json.Marshal(cachedPreview{
		Filename:    image.Filename,
		ContentType: image.ContentType,
		Data:        image.Data,
	})
	if err != nil {
		return logging.NewOperationError("preview.encode", previewID, err)
	}
	return r.retry.Do(ctx, r.logger, "cache.set.preview", previewID, func() error {
		return r.cache.Set(ctx, previewKey(previewID), string(serialized), r.ttl)
	})
}

func (r *RedisPreviewStore) Get(ctx context.Context, previewID string) (*predictor.Image, error) {
	var value string
	err := r.retry.Do(ctx, r.logger, "cache.get.preview", previewID, func() error {
		v, err := r.cache.Get(ctx, previewKey(previewID))
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, ErrPreviewNotFound
	}
	if err != nil {
		return nil, err
	}

	var payload cachedPreview
	if err := json.Unmarshal([]byte(value), &payload); err != nil {
		logging.WithOperation(r.logger, "cache.get.preview", previewID).Warn("failed to decode cached preview", zap.Error(err))
		return nil, ErrPreviewNotFound
	}
	return &predictor.Image{
		Filename:    payload.Filename,
		ContentType: payload.ContentType,
		Data:        payload.Data,
	}, nil
}

func (r *RedisPreviewStore) Delete(ctx context.Context, previewID string) error {
	return r.retry.Do(ctx, r.logger, "cache.del.preview", previewID, func() error {
		return r.cache.Del(ctx, previewKey(previewID))
	})
}
