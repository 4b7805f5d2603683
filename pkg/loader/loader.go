// Package loader provides generic interfaces for loading values from a
// remote source by key, with an optional local cache in front of it.
// The catalog detail view and the dev API service use it to avoid
// refetching data that was loaded moments ago.
//
// Package loader 提供按键从远程数据源加载值的通用接口，
// 并可选地在其前面加一层本地缓存。
// 目录详情视图和开发API服务使用它来避免重复获取刚刚加载过的数据。
package loader

import (
	"context"
	"sync"
	"time"
)

// Loader is the interface that wraps the basic Load method.
//
// Load retrieves data for the given key from a data source.
// It returns the loaded value, a TTL hint for caching, and any error encountered.
// A zero TTL means the caller's default applies.
//
// Loader 是包装基本Load方法的接口。
//
// Load 从数据源检索给定键的数据。
// 它返回加载的值、用于缓存的TTL提示以及遇到的任何错误。
// TTL为零表示使用调用方的默认值。
type Loader[T any] interface {
	Load(ctx context.Context, key string) (value T, ttl time.Duration, err error)
}

// LoaderFunc is a function type that implements the Loader interface.
//
// LoaderFunc 是实现Loader接口的函数类型。
type LoaderFunc[T any] func(ctx context.Context, key string) (T, time.Duration, error)

// Load calls the function itself.
//
// Load 调用函数本身。
func (f LoaderFunc[T]) Load(ctx context.Context, key string) (T, time.Duration, error) {
	return f(ctx, key)
}

// NewFunctionLoader creates a new Loader from a function that retrieves data.
// The TTL hint is always zero.
//
// NewFunctionLoader 从检索数据的函数创建一个新的Loader。
// TTL提示始终为零。
func NewFunctionLoader[T any](fn func(ctx context.Context, key string) (T, error)) Loader[T] {
	return LoaderFunc[T](func(ctx context.Context, key string) (T, time.Duration, error) {
		value, err := fn(ctx, key)
		return value, 0, err
	})
}

// CachedLoader wraps a loader with a local cache to reduce load on the backend.
// Errors are never cached.
//
// CachedLoader 用本地缓存包装加载器，以减轻后端负载。
// 错误永远不会被缓存。
type CachedLoader[T any] struct {
	Backend Loader[T]
	TTL     time.Duration
	// MaxEntries caps the number of cached keys; zero means no cap.
	// MaxEntries 限制缓存键的数量，为零表示不限制。
	MaxEntries int

	mu        sync.RWMutex
	items     map[string]cachedItem[T]
	now       func() time.Time
	lastSweep time.Time
}

// cachedItem represents an item in the local cache with its expiration time.
//
// cachedItem 表示本地缓存中的项目及其过期时间。
type cachedItem[T any] struct {
	Value      T
	Expiration time.Time
}

// Load attempts to retrieve the value from the local cache first.
// If the value is not in the cache or has expired, it loads from the backend.
// A non-zero TTL returned by the backend overrides the loader's TTL for that entry.
//
// Load 首先尝试从本地缓存检索值。
// 如果值不在缓存中或已过期，它会从后端加载。
// 后端返回的非零TTL会覆盖该条目的加载器TTL。
func (c *CachedLoader[T]) Load(ctx context.Context, key string) (T, time.Duration, error) {
	now := c.now()

	c.mu.RLock()
	if item, ok := c.items[key]; ok && now.Before(item.Expiration) {
		c.mu.RUnlock()
		return item.Value, item.Expiration.Sub(now), nil
	}
	c.mu.RUnlock()

	value, ttl, err := c.Backend.Load(ctx, key)
	if err != nil {
		return value, ttl, err
	}
	if ttl <= 0 {
		ttl = c.TTL
	}
	if ttl <= 0 {
		return value, 0, nil
	}

	c.mu.Lock()
	c.storeLocked(key, cachedItem[T]{Value: value, Expiration: now.Add(ttl)}, now)
	c.mu.Unlock()

	return value, ttl, nil
}

// storeLocked writes an entry. Expired entries are swept at most once per TTL,
// and when the cap is reached the entry closest to expiry is dropped.
//
// storeLocked 写入一个条目。过期条目每个TTL周期最多清理一次，
// 达到上限时淘汰最接近过期的条目。
func (c *CachedLoader[T]) storeLocked(key string, item cachedItem[T], now time.Time) {
	if c.TTL <= 0 || !now.Before(c.lastSweep.Add(c.TTL)) {
		c.sweepLocked(now)
	}
	if _, exists := c.items[key]; !exists && c.MaxEntries > 0 && len(c.items) >= c.MaxEntries {
		c.sweepLocked(now)
		for len(c.items) >= c.MaxEntries {
			c.evictSoonestLocked()
		}
	}
	c.items[key] = item
}

func (c *CachedLoader[T]) sweepLocked(now time.Time) {
	for k, item := range c.items {
		if !now.Before(item.Expiration) {
			delete(c.items, k)
		}
	}
	c.lastSweep = now
}

func (c *CachedLoader[T]) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	first := true
	for k, item := range c.items {
		if first || item.Expiration.Before(soonest) {
			victim, soonest, first = k, item.Expiration, false
		}
	}
	delete(c.items, victim)
}

// Invalidate removes one key from the local cache.
//
// Invalidate 从本地缓存中删除一个键。
func (c *CachedLoader[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Purge removes every entry from the local cache.
//
// Purge 删除本地缓存中的所有条目。
func (c *CachedLoader[T]) Purge() {
	c.mu.Lock()
	c.items = make(map[string]cachedItem[T])
	c.mu.Unlock()
}

// Len returns the number of cached entries. Expired entries count until
// the next sweep.
//
// Len 返回缓存条目的数量。过期条目在下一次清理前仍计入。
func (c *CachedLoader[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// NewCachedLoader creates a new CachedLoader with the given backend loader and TTL.
// A TTL of zero disables caching unless the backend supplies one.
//
// NewCachedLoader 使用给定的后端加载器和TTL创建一个新的CachedLoader。
// TTL为零时禁用缓存，除非后端提供了TTL。
//
// Parameters:
//   - backend: The loader to call on a cache miss
//   - ttl: Default lifetime of a cached value
//
// Returns:
//   - *CachedLoader[T]: A new cached loader instance
func NewCachedLoader[T any](backend Loader[T], ttl time.Duration) *CachedLoader[T] {
	return &CachedLoader[T]{
		Backend: backend,
		TTL:     ttl,
		items:   make(map[string]cachedItem[T]),
		now:     time.Now,
	}
}
