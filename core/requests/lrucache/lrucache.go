// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package lrucache provides a thread-safe, fixed-capacity least-recently-used (LRU) cache
of byte slices with a per-entry time to live.

When created with compression enabled via [New], values are stored zstd-compressed
whenever that saves space and are transparently decompressed by [LRUCache.Get].
*/
package lrucache

import (
	"container/list"
	"errors"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

var (
	ErrInvalidSize = errors.New("must provide a positive size")
	ErrInvalidTTL  = errors.New("must provide a positive TTL")
)

// LRUCache is a fixed-capacity, least-recently-used cache that is safe for concurrent use.
// Instances must be constructed with [New]; the zero value is not ready for use.
type LRUCache struct {
	size      int
	ttl       time.Duration
	evictList *list.List
	items     map[string]*list.Element
	lock      sync.Mutex
	zstdEnc   *zstd.Encoder // nil when compression is disabled
	zstdDec   *zstd.Decoder

	now func() time.Time
}

type cacheEntry struct {
	key        string
	value      []byte
	compressed bool
	expiresAt  time.Time
}

// New creates a cache holding at most size entries, each valid for ttl.
func New(size int, ttl time.Duration, compress bool) (*LRUCache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	c := &LRUCache{
		size:      size,
		ttl:       ttl,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
		now:       time.Now,
	}

	if compress {
		// A nil writer/reader lets us use EncodeAll/DecodeAll without streams.
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}

		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}

		c.zstdEnc = enc
		c.zstdDec = dec
	}

	return c, nil
}

// Add stores a copy of value under key, resetting its expiry.
//
// If the cache is at capacity, the least recently used item is evicted.
// Add reports whether an eviction occurred.
func (c *LRUCache) Add(key string, value []byte) bool {
	// Compress before acquiring the lock; EncodeAll is safe for concurrent use.
	stored, compressed := c.encode(value)

	c.lock.Lock()
	defer c.lock.Unlock()

	expiresAt := c.now().Add(c.ttl)

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)

		cacheEnt := ent.Value.(*cacheEntry)
		cacheEnt.value = stored
		cacheEnt.compressed = compressed
		cacheEnt.expiresAt = expiresAt

		return false
	}

	c.items[key] = c.evictList.PushFront(&cacheEntry{
		key:        key,
		value:      stored,
		compressed: compressed,
		expiresAt:  expiresAt,
	})

	evicted := c.evictList.Len() > c.size
	if evicted {
		c.removeElement(c.evictList.Back())
	}

	return evicted
}

// Get returns a copy of the value for key and marks it as most recently used.
//
// Expired entries are removed and reported as missing.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.lock.Lock()

	ent, ok := c.items[key]
	if !ok {
		c.lock.Unlock()

		return nil, false
	}

	cacheEnt := ent.Value.(*cacheEntry)
	if !c.now().Before(cacheEnt.expiresAt) {
		c.removeElement(ent)
		c.lock.Unlock()

		return nil, false
	}

	c.evictList.MoveToFront(ent)

	stored, compressed := cacheEnt.value, cacheEnt.compressed

	c.lock.Unlock()

	return c.decode(stored, compressed)
}

// Remove deletes the entry associated with key and reports whether it was present.
func (c *LRUCache) Remove(key string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if ent, ok := c.items[key]; ok {
		c.removeElement(ent)

		return true
	}

	return false
}

// Len returns the current number of items in the cache, including expired ones not yet evicted.
func (c *LRUCache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.evictList.Len()
}

func (c *LRUCache) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	delete(c.items, e.Value.(*cacheEntry).key)
}

// encode returns the representation to store. Compression is kept only when it saves space;
// otherwise the value is copied so callers cannot mutate the cache.
func (c *LRUCache) encode(value []byte) ([]byte, bool) {
	if c.zstdEnc != nil && len(value) > 0 {
		if compressed := c.zstdEnc.EncodeAll(value, nil); len(compressed) < len(value) {
			return compressed, true
		}
	}

	return append([]byte(nil), value...), false
}

func (c *LRUCache) decode(stored []byte, compressed bool) ([]byte, bool) {
	if !compressed {
		return append([]byte(nil), stored...), true
	}

	decoded, err := c.zstdDec.DecodeAll(stored, nil)
	if err != nil {
		return nil, false
	}

	return decoded, true
}
