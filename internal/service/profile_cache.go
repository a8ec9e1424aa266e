package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"branch-api/internal/domain"
)

// ProfileCache guarda vistas públicas de perfil por username normalizado.
// Es best effort: un fallo del cache nunca debe fallar la request.
type ProfileCache interface {
	Get(key string) (domain.PublicProfile, bool)
	Set(key string, profile domain.PublicProfile)
	Invalidate(key string)
}

type cachedProfile struct {
	profile   domain.PublicProfile
	expiresAt time.Time
}

type memoryProfileCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]cachedProfile
}

func NewMemoryProfileCache(ttl time.Duration) ProfileCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &memoryProfileCache{
		ttl:   ttl,
		items: make(map[string]cachedProfile),
	}
}

func (c *memoryProfileCache) Get(key string) (domain.PublicProfile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return domain.PublicProfile{}, false
	}
	if time.Now().UTC().After(item.expiresAt) {
		delete(c.items, key)
		return domain.PublicProfile{}, false
	}
	return item.profile, true
}

func (c *memoryProfileCache) Set(key string, profile domain.PublicProfile) {
	if strings.TrimSpace(key) == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cachedProfile{
		profile:   profile,
		expiresAt: time.Now().UTC().Add(c.ttl),
	}
}

func (c *memoryProfileCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

type redisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisProfileCache(client *redis.Client, ttl time.Duration) ProfileCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &redisProfileCache{
		client: client,
		ttl:    ttl,
		prefix: "profile:pub:",
	}
}

func (c *redisProfileCache) Get(key string) (domain.PublicProfile, bool) {
	if strings.TrimSpace(key) == "" {
		return domain.PublicProfile{}, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return domain.PublicProfile{}, false
	}
	var profile domain.PublicProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return domain.PublicProfile{}, false
	}
	return profile, true
}

func (c *redisProfileCache) Set(key string, profile domain.PublicProfile) {
	if strings.TrimSpace(key) == "" {
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err()
}

func (c *redisProfileCache) Invalidate(key string) {
	if strings.TrimSpace(key) == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = c.client.Del(ctx, c.prefix+key).Err()
}
