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
	"sort"
	"strings"
	"sync"

	"github.com/vllm-project/aibrix-tokenizer/pkg/constants"
)

const (
	cl100kPattern = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+(?!\S)|\s+`
	p50kPattern   = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`
)

type builtinEncoding struct {
	name          string
	specialTokens map[string]int
	pattern       string
}

var builtinEncodings = []builtinEncoding{
	{
		name: constants.EncodingCL100kBase,
		specialTokens: map[string]int{
			constants.EndOfText:   100257,
			constants.FimPrefix:   100258,
			constants.FimMiddle:   100259,
			constants.FimSuffix:   100260,
			constants.EndOfPrompt: 100276,
		},
		pattern: cl100kPattern,
	},
	{
		name: constants.EncodingP50kBase,
		specialTokens: map[string]int{
			constants.EndOfText: 50256,
		},
		pattern: p50kPattern,
	},
	{
		name: constants.EncodingP50kEdit,
		specialTokens: map[string]int{
			constants.EndOfText: 50256,
			constants.FimPrefix: 50281,
			constants.FimMiddle: 50282,
			constants.FimSuffix: 50283,
		},
		pattern: p50kPattern,
	},
	{
		name: constants.EncodingR50kBase,
		specialTokens: map[string]int{
			constants.EndOfText: 50256,
		},
		pattern: p50kPattern,
	},
}

var modelToEncoding = map[string]string{
	// chat
	"gpt-4":         constants.EncodingCL100kBase,
	"gpt-3.5-turbo": constants.EncodingCL100kBase,
	// text
	"text-davinci-003": constants.EncodingP50kBase,
	"text-davinci-002": constants.EncodingP50kBase,
	"text-davinci-001": constants.EncodingR50kBase,
	"text-curie-001":   constants.EncodingR50kBase,
	"text-babbage-001": constants.EncodingR50kBase,
	"text-ada-001":     constants.EncodingR50kBase,
	"davinci":          constants.EncodingR50kBase,
	"curie":            constants.EncodingR50kBase,
	"babbage":          constants.EncodingR50kBase,
	"ada":              constants.EncodingR50kBase,
	// code
	"code-davinci-002": constants.EncodingP50kBase,
	"code-davinci-001": constants.EncodingP50kBase,
	"code-cushman-002": constants.EncodingP50kBase,
	"code-cushman-001": constants.EncodingP50kBase,
	"davinci-codex":    constants.EncodingP50kBase,
	"cushman-codex":    constants.EncodingP50kBase,
	// edit
	"text-davinci-edit-001": constants.EncodingP50kEdit,
	"code-davinci-edit-001": constants.EncodingP50kEdit,
	// embeddings
	"text-embedding-ada-002": constants.EncodingCL100kBase,
	// old embeddings
	"text-similarity-davinci-001":  constants.EncodingR50kBase,
	"text-similarity-curie-001":    constants.EncodingR50kBase,
	"text-similarity-babbage-001":  constants.EncodingR50kBase,
	"text-similarity-ada-001":      constants.EncodingR50kBase,
	"text-search-davinci-doc-001":  constants.EncodingR50kBase,
	"text-search-curie-doc-001":    constants.EncodingR50kBase,
	"text-search-babbage-doc-001":  constants.EncodingR50kBase,
	"text-search-ada-doc-001":      constants.EncodingR50kBase,
	"code-search-babbage-code-001": constants.EncodingR50kBase,
	"code-search-ada-code-001":     constants.EncodingR50kBase,
}

// modelPrefixToEncoding is checked in order after the exact table misses.
var modelPrefixToEncoding = []struct {
	prefix   string
	encoding string
}{
	{"gpt-4-", constants.EncodingCL100kBase},
	{"gpt-3.5-turbo-", constants.EncodingCL100kBase},
}

// EncodingNameForModel resolves a model name to its encoding name: exact
// names first, then known prefixes such as dated snapshots ("gpt-4-0613").
func EncodingNameForModel(model string) (string, error) {
	if name, ok := modelToEncoding[model]; ok {
		return name, nil
	}
	for _, p := range modelPrefixToEncoding {
		if strings.HasPrefix(model, p.prefix) {
			return p.encoding, nil
		}
	}
	return "", ErrUnknownModel{Model: model}
}

// Registry holds the built-in encodings over a single RankLoader. Encodings
// reading the same rank file share one lazily loaded table.
type Registry struct {
	encodings map[string]*Encoding
}

// NewRegistry creates a registry of the built-in encodings. No rank file is
// read until an encoding's ranks are first needed.
func NewRegistry(loader RankLoader) *Registry {
	cells := make(map[string]*rankCell)
	encodings := make(map[string]*Encoding, len(builtinEncodings))
	for _, b := range builtinEncodings {
		resource, _ := constants.RankFileName(b.name)
		cell, ok := cells[resource]
		if !ok {
			cell = newRankCell(resource, loader)
			cells[resource] = cell
		}
		// Built-in patterns are constants; a compile failure is a programming error.
		enc, err := newEncoding(b.name, cell, b.specialTokens, b.pattern)
		if err != nil {
			panic(err)
		}
		encodings[b.name] = enc
	}
	return &Registry{encodings: encodings}
}

// ForName returns the encoding with the given name, ignoring case.
func (r *Registry) ForName(name string) (*Encoding, error) {
	if enc, ok := r.encodings[strings.ToLower(name)]; ok {
		return enc, nil
	}
	return nil, ErrUnknownEncoding{Name: name}
}

// ForModel returns the encoding used by a model.
func (r *Registry) ForModel(model string) (*Encoding, error) {
	name, err := EncodingNameForModel(model)
	if err != nil {
		return nil, err
	}
	return r.ForName(name)
}

// Names returns the registered encoding names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.encodings))
	for name := range r.encodings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewRegistry(NewOfflineLoader())
})

// Default returns the process-wide registry backed by the embedded rank files.
func Default() *Registry {
	return defaultRegistry()
}
