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

// Package models lists the OpenAI models the tokenizer knows about together
// with their encoding and context window.
package models

import (
	"github.com/dlclark/regexp2"

	"github.com/vllm-project/aibrix-tokenizer/pkg/bpe"
	"github.com/vllm-project/aibrix-tokenizer/pkg/constants"
)

// CompletionType tells whether a model is served by the chat or the text
// completion API.
type CompletionType string

const (
	CompletionChat CompletionType = "chat"
	CompletionText CompletionType = "text"
)

// Model describes one model family.
type Model struct {
	Name       string         `json:"name"`
	Encoding   string         `json:"encoding"`
	MaxTokens  int            `json:"max_tokens"`
	Completion CompletionType `json:"completion"`
}

var (
	// chat
	GPT4Turbo          = Model{"gpt-4-turbo-preview", constants.EncodingCL100kBase, 128000, CompletionChat}
	GPT4               = Model{"gpt-4", constants.EncodingCL100kBase, 8192, CompletionChat}
	GPT432K            = Model{"gpt-4-32k", constants.EncodingCL100kBase, 32768, CompletionChat}
	GPT35Turbo         = Model{"gpt-3.5-turbo", constants.EncodingCL100kBase, 16384, CompletionChat}
	GPT35TurboLegacy   = Model{"gpt-3.5-turbo", constants.EncodingCL100kBase, 4096, CompletionChat}
	GPT35Turbo16K      = Model{"gpt-3.5-turbo-16k", constants.EncodingCL100kBase, 16384, CompletionChat}
	GPT35TurboInstruct = Model{"gpt-3.5-turbo-instruct", constants.EncodingCL100kBase, 4097, CompletionText}

	// text
	TextDavinci003 = Model{"text-davinci-003", constants.EncodingP50kBase, 4097, CompletionText}
	TextDavinci002 = Model{"text-davinci-002", constants.EncodingP50kBase, 4097, CompletionText}
	TextDavinci001 = Model{"text-davinci-001", constants.EncodingR50kBase, 2049, CompletionText}
	TextCurie001   = Model{"text-curie-001", constants.EncodingR50kBase, 2049, CompletionText}
	TextBabbage001 = Model{"text-babbage-001", constants.EncodingR50kBase, 2049, CompletionText}
	TextAda001     = Model{"text-ada-001", constants.EncodingR50kBase, 2049, CompletionText}
	Davinci        = Model{"davinci", constants.EncodingR50kBase, 2049, CompletionText}
	Curie          = Model{"curie", constants.EncodingR50kBase, 2049, CompletionText}
	Babbage        = Model{"babbage", constants.EncodingR50kBase, 2049, CompletionText}
	Ada            = Model{"ada", constants.EncodingR50kBase, 2049, CompletionText}

	// code
	CodeDavinci002 = Model{"code-davinci-002", constants.EncodingP50kBase, 8001, CompletionText}

	// edit
	TextDavinciEdit001 = Model{"text-davinci-edit-001", constants.EncodingP50kEdit, 2049, CompletionText}
	CodeDavinciEdit001 = Model{"code-davinci-edit-001", constants.EncodingP50kEdit, 2049, CompletionText}

	// embeddings
	TextEmbeddingAda002 = Model{"text-embedding-ada-002", constants.EncodingCL100kBase, 8192, CompletionText}
)

// all is in lookup order: the first entry with a matching name wins, so the
// current gpt-3.5-turbo shadows its legacy variant.
var all = []Model{
	GPT4Turbo, GPT4, GPT432K, GPT35Turbo, GPT35TurboLegacy, GPT35Turbo16K,
	GPT35TurboInstruct, TextDavinci003, TextDavinci002, TextDavinci001,
	TextCurie001, TextBabbage001, TextAda001, Davinci, Curie, Babbage, Ada,
	CodeDavinci002, TextDavinciEdit001, CodeDavinciEdit001, TextEmbeddingAda002,
}

// Snapshots whose limits differ from the family they would otherwise resolve to.
var specialVariants = map[string]Model{
	"gpt-3.5-turbo-0301":  GPT35TurboLegacy,
	"gpt-3.5-turbo-0613":  GPT35TurboLegacy,
	"gpt-4-turbo-preview": GPT4Turbo,
	"gpt-4-1106-preview":  GPT4Turbo,
	"gpt-4-0125-preview":  GPT4Turbo,
}

var (
	versionSuffix = regexp2.MustCompile(`-[0-9]{4}\z`, regexp2.None)
	dateSuffix    = regexp2.MustCompile(`-[0-9]{4}-[0-9]{2}-[0-9]{2}\z`, regexp2.None)
)

// All returns every known model in lookup order.
func All() []Model {
	out := make([]Model, len(all))
	copy(out, all)
	return out
}

// ForModel resolves a model name. Exact names are tried first, then the name
// with a trailing "-NNNN" version or "-YYYY-MM-DD" date removed.
func ForModel(name string) (Model, error) {
	if m, ok := forModelExact(name); ok {
		return m, nil
	}
	if trimmed, ok := trimVersion(name); ok {
		if m, ok := forModelExact(trimmed); ok {
			return m, nil
		}
	}
	return Model{}, bpe.ErrUnknownModel{Model: name}
}

func forModelExact(name string) (Model, bool) {
	if m, ok := specialVariants[name]; ok {
		return m, true
	}
	for _, m := range all {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

func trimVersion(name string) (string, bool) {
	if ok, _ := versionSuffix.MatchString(name); ok {
		return name[:len(name)-5], true
	}
	if ok, _ := dateSuffix.MatchString(name); ok {
		return name[:len(name)-11], true
	}
	return "", false
}

// EncodingFor returns the encoding of m from registry.
func (m Model) EncodingFor(registry *bpe.Registry) (*bpe.Encoding, error) {
	return registry.ForName(m.Encoding)
}
