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

package bpe

import (
	"fmt"
	"sync"

	"github.com/dlclark/regexp2"
	"go.uber.org/atomic"
	"k8s.io/klog/v2"
)

// rankCell holds a lazily loaded rank table. Encodings that share a resource
// share a cell, so the file is loaded once per registry.
type rankCell struct {
	resource string
	loader   RankLoader

	mu    sync.Mutex
	ranks atomic.Pointer[Ranks]
}

func newRankCell(resource string, loader RankLoader) *rankCell {
	return &rankCell{resource: resource, loader: loader}
}

func newLoadedRankCell(resource string, ranks Ranks) *rankCell {
	c := &rankCell{resource: resource}
	c.ranks.Store(&ranks)
	return c
}

// get returns the table, loading it on first use. A failed load leaves the
// cell empty so the next caller retries.
func (c *rankCell) get() (Ranks, error) {
	if r := c.ranks.Load(); r != nil {
		return *r, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if r := c.ranks.Load(); r != nil {
		return *r, nil
	}
	if c.loader == nil {
		return nil, ErrRankFileUnavailable{Resource: c.resource, Err: fmt.Errorf("no rank loader configured")}
	}

	ranks, err := c.loader.LoadRanks(c.resource)
	if err != nil {
		klog.Errorf("Failed to load rank file %s: %v", c.resource, err)
		return nil, err
	}
	c.ranks.Store(&ranks)
	klog.InfoS("rank table loaded", "resource", c.resource, "entries", len(ranks))
	return ranks, nil
}

func (c *rankCell) loaded() bool {
	return c.ranks.Load() != nil
}

// Encoding describes one vocabulary: its rank table, reserved special tokens
// and the pattern used to pre-segment ordinary text.
type Encoding struct {
	name          string
	specialTokens map[string]int
	patternText   string
	pattern       *regexp2.Regexp
	ranks         *rankCell
}

// NewEncoding creates an encoding whose ranks are read from resource through
// loader on first use.
func NewEncoding(name string, loader RankLoader, resource string, specialTokens map[string]int, pattern string) (*Encoding, error) {
	return newEncoding(name, newRankCell(resource, loader), specialTokens, pattern)
}

// NewEncodingFromRanks creates an encoding over an in-memory rank table.
func NewEncodingFromRanks(name string, ranks Ranks, specialTokens map[string]int, pattern string) (*Encoding, error) {
	return newEncoding(name, newLoadedRankCell(name, ranks), specialTokens, pattern)
}

func newEncoding(name string, cell *rankCell, specialTokens map[string]int, pattern string) (*Encoding, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, ErrInvalidVocabulary{Encoding: name, Message: fmt.Sprintf("invalid pattern: %v", err)}
	}

	specials := make(map[string]int, len(specialTokens))
	for literal, id := range specialTokens {
		if literal == "" {
			return nil, ErrInvalidVocabulary{Encoding: name, Message: "empty special token"}
		}
		specials[literal] = id
	}

	return &Encoding{
		name:          name,
		specialTokens: specials,
		patternText:   pattern,
		pattern:       re,
		ranks:         cell,
	}, nil
}

func (e *Encoding) Name() string {
	return e.name
}

// Resource is the name of the rank file backing this encoding.
func (e *Encoding) Resource() string {
	return e.ranks.resource
}

func (e *Encoding) Pattern() string {
	return e.patternText
}

// SpecialTokens returns a copy of the special token table.
func (e *Encoding) SpecialTokens() map[string]int {
	out := make(map[string]int, len(e.specialTokens))
	for k, v := range e.specialTokens {
		out[k] = v
	}
	return out
}

// MergeableRanks returns the rank table, loading it at most once. The
// returned map is shared and must not be modified.
func (e *Encoding) MergeableRanks() (Ranks, error) {
	return e.ranks.get()
}

// Loaded reports whether the rank table is already in memory.
func (e *Encoding) Loaded() bool {
	return e.ranks.loaded()
}

func (e *Encoding) String() string {
	return e.name
}
