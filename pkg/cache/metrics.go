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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric labels
const (
	LabelCache = "cache"
	LabelKind  = "kind"
)

// Cache kinds reported in LabelKind.
const (
	KindTokenizer = "tokenizer"
	KindCount     = "count"
)

// CacheMetrics holds the metrics of one named cache instance
type CacheMetrics struct {
	name string
	kind string

	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	entries   prometheus.Gauge

	buildFailures prometheus.Counter
	buildTime     prometheus.Observer
}

var (
	cacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aibrix_tokenizer_cache_hits_total",
			Help: "Total number of cache lookups served from the cache",
		},
		[]string{LabelCache, LabelKind},
	)

	cacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aibrix_tokenizer_cache_misses_total",
			Help: "Total number of cache lookups that had to compute the value",
		},
		[]string{LabelCache, LabelKind},
	)

	cacheEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aibrix_tokenizer_cache_evictions_total",
			Help: "Total number of entries removed from the cache",
		},
		[]string{LabelCache, LabelKind},
	)

	cacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aibrix_tokenizer_cache_entries",
			Help: "Current number of entries held by the cache",
		},
		[]string{LabelCache, LabelKind},
	)

	tokenizerBuildFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aibrix_tokenizer_build_failures_total",
			Help: "Total number of failed tokenizer constructions",
		},
		[]string{LabelCache, LabelKind},
	)

	tokenizerBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aibrix_tokenizer_build_duration_seconds",
			Help:    "Time taken to load rank files and build a tokenizer",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{LabelCache, LabelKind},
	)
)

// NewCacheMetrics creates a new metrics instance for a cache
func NewCacheMetrics(name, kind string) *CacheMetrics {
	return &CacheMetrics{
		name:          name,
		kind:          kind,
		hits:          cacheHitsTotal.WithLabelValues(name, kind),
		misses:        cacheMissesTotal.WithLabelValues(name, kind),
		evictions:     cacheEvictionsTotal.WithLabelValues(name, kind),
		entries:       cacheEntries.WithLabelValues(name, kind),
		buildFailures: tokenizerBuildFailuresTotal.WithLabelValues(name, kind),
		buildTime:     tokenizerBuildDuration.WithLabelValues(name, kind),
	}
}

func (m *CacheMetrics) IncrementHits() {
	m.hits.Inc()
}

func (m *CacheMetrics) IncrementMisses() {
	m.misses.Inc()
}

func (m *CacheMetrics) IncrementEvictions() {
	m.evictions.Inc()
}

// SetEntries updates the current entry count
func (m *CacheMetrics) SetEntries(n int) {
	m.entries.Set(float64(n))
}

// RecordBuild records the duration of a tokenizer construction and whether it failed
func (m *CacheMetrics) RecordBuild(duration time.Duration, err error) {
	m.buildTime.Observe(duration.Seconds())
	if err != nil {
		m.buildFailures.Inc()
	}
}

// Delete removes all metrics for this cache (useful for cleanup)
func (m *CacheMetrics) Delete() {
	cacheHitsTotal.DeleteLabelValues(m.name, m.kind)
	cacheMissesTotal.DeleteLabelValues(m.name, m.kind)
	cacheEvictionsTotal.DeleteLabelValues(m.name, m.kind)
	cacheEntries.DeleteLabelValues(m.name, m.kind)
	tokenizerBuildFailuresTotal.DeleteLabelValues(m.name, m.kind)
	tokenizerBuildDuration.DeleteLabelValues(m.name, m.kind)
}
