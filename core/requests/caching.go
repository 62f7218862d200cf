// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/petbonk/petbonk/core/requests/lrucache"
)

// ResponseCache holds successful upstream response bodies keyed by URL.
//
// A nil *ResponseCache is valid and caches nothing.
type ResponseCache struct {
	lru *lrucache.LRUCache
}

// NewResponseCache sets up an LRU cache of size entries, each kept for ttl.
func NewResponseCache(size int, ttl time.Duration, compress bool) (*ResponseCache, error) {
	lru, err := lrucache.New(size, ttl, compress)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("size", size).
		Dur("ttl", ttl).
		Bool("compress", compress).
		Msg("Initialized upstream response cache")

	return &ResponseCache{lru: lru}, nil
}

func generateCacheKey(url string) string {
	hasher := fnv.New64a()

	_, _ = hasher.Write([]byte(url))

	return strconv.FormatUint(hasher.Sum64(), 16)
}

func (c *ResponseCache) get(url string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	return c.lru.Get(generateCacheKey(url))
}

func (c *ResponseCache) add(url string, body []byte) {
	if c == nil {
		return
	}

	c.lru.Add(generateCacheKey(url), body)
}

// Len returns the number of cached responses.
func (c *ResponseCache) Len() int {
	if c == nil {
		return 0
	}

	return c.lru.Len()
}
