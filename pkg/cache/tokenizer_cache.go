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

// Package cache memoizes tokenizers and token counts behind bounded LRUs.
package cache

import (
	"sync"
	"time"

	"k8s.io/klog/v2"
	"k8s.io/utils/lru"

	"github.com/vllm-project/aibrix-tokenizer/pkg/bpe"
)

// DefaultTokenizerCacheSize is used when a non-positive size is configured.
// There are only a handful of encodings so this holds all of them.
const DefaultTokenizerCacheSize = 8

// TokenizerCache builds tokenizers from a registry on first use and keeps the
// most recently used ones.
type TokenizerCache struct {
	name     string
	registry *bpe.Registry
	entries  *lru.Cache
	metrics  *CacheMetrics

	// serializes construction so concurrent misses build an engine once
	buildMu sync.Mutex
}

// NewTokenizerCache creates a cache holding at most size tokenizers built
// from registry.
func NewTokenizerCache(name string, registry *bpe.Registry, size int) *TokenizerCache {
	if size <= 0 {
		size = DefaultTokenizerCacheSize
	}
	c := &TokenizerCache{
		name:     name,
		registry: registry,
		metrics:  NewCacheMetrics(name, KindTokenizer),
	}
	c.entries = lru.NewWithEvictionFunc(size, func(key lru.Key, _ interface{}) {
		c.metrics.IncrementEvictions()
		klog.V(4).Infof("Evicted tokenizer %v from cache %s", key, name)
	})
	return c
}

// Get returns the tokenizer of the named encoding.
func (c *TokenizerCache) Get(encoding string) (*bpe.Tokenizer, error) {
	enc, err := c.registry.ForName(encoding)
	if err != nil {
		return nil, err
	}
	key := enc.Name()

	// Fast path: check existing tokenizer
	if tok, ok := c.lookup(key); ok {
		c.metrics.IncrementHits()
		return tok, nil
	}

	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	// Double-check after acquiring the build lock
	if tok, ok := c.lookup(key); ok {
		c.metrics.IncrementHits()
		return tok, nil
	}
	c.metrics.IncrementMisses()

	startTime := time.Now()
	tok, err := bpe.NewTokenizer(enc)
	c.metrics.RecordBuild(time.Since(startTime), err)
	if err != nil {
		klog.Warningf("Failed to build tokenizer %s: %v", key, err)
		return nil, err
	}

	c.entries.Add(key, tok)
	c.metrics.SetEntries(c.entries.Len())
	klog.V(3).Infof("Built tokenizer %s in %v", key, time.Since(startTime))
	return tok, nil
}

// ForModel returns the tokenizer of the encoding used by model.
func (c *TokenizerCache) ForModel(model string) (*bpe.Tokenizer, error) {
	name, err := bpe.EncodingNameForModel(model)
	if err != nil {
		return nil, err
	}
	return c.Get(name)
}

func (c *TokenizerCache) lookup(key string) (*bpe.Tokenizer, bool) {
	value, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return value.(*bpe.Tokenizer), true
}

// Len returns the number of cached tokenizers.
func (c *TokenizerCache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached tokenizer. Rank tables stay loaded in the
// registry so rebuilding is cheap.
func (c *TokenizerCache) Purge() {
	c.entries.Clear()
	c.metrics.SetEntries(0)
}

// Close purges the cache and unregisters its metrics.
func (c *TokenizerCache) Close() {
	c.Purge()
	c.metrics.Delete()
}
