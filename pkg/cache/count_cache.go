/*
Copyright 2025 The Aibrix Team.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cache

import (
	"github.com/cespare/xxhash/v2"
	"k8s.io/utils/lru"

	"github.com/vllm-project/aibrix-tokenizer/pkg/bpe"
)

type countKey struct {
	encoding string
	sum      uint64
	length   int
}

type countEntry struct {
	text  string
	count int
}

// CountCache memoizes token counts of recently seen texts. Entries are keyed
// by the xxhash64 of the text and keep the text itself, so a hash collision
// is detected on lookup and treated as a miss.
type CountCache struct {
	entries *lru.Cache
	metrics *CacheMetrics
}

// NewCountCache creates a cache of at most size counts. A non-positive size
// disables caching.
func NewCountCache(name string, size int) *CountCache {
	c := &CountCache{metrics: NewCacheMetrics(name, KindCount)}
	if size > 0 {
		c.entries = lru.NewWithEvictionFunc(size, func(lru.Key, interface{}) {
			c.metrics.IncrementEvictions()
		})
	}
	return c
}

// Count returns the number of tokens tok produces for text.
func (c *CountCache) Count(tok *bpe.Tokenizer, text string) int {
	if c.entries == nil {
		return tok.CountTokens(text)
	}

	key := countKey{
		encoding: tok.Encoding().Name(),
		sum:      xxhash.Sum64String(text),
		length:   len(text),
	}
	if value, ok := c.entries.Get(key); ok {
		if entry := value.(countEntry); entry.text == text {
			c.metrics.IncrementHits()
			return entry.count
		}
	}
	c.metrics.IncrementMisses()

	count := tok.CountTokens(text)
	c.entries.Add(key, countEntry{text: text, count: count})
	c.metrics.SetEntries(c.entries.Len())
	return count
}

// Counter binds the cache to one tokenizer.
func (c *CountCache) Counter(tok *bpe.Tokenizer) *CachedCounter {
	return &CachedCounter{cache: c, tokenizer: tok}
}

// Len returns the number of cached counts.
func (c *CountCache) Len() int {
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

// Close drops every entry and unregisters the cache metrics.
func (c *CountCache) Close() {
	if c.entries != nil {
		c.entries.Clear()
	}
	c.metrics.Delete()
}

// CachedCounter counts tokens of one tokenizer through a CountCache.
type CachedCounter struct {
	cache     *CountCache
	tokenizer *bpe.Tokenizer
}

func (c *CachedCounter) CountTokens(text string) int {
	return c.cache.Count(c.tokenizer, text)
}
