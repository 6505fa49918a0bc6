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

// Package tokenizer gives callers one interface over an in-process BPE
// engine and a remote tokenizer service.
package tokenizer

import (
	"context"
	"time"

	"github.com/vllm-project/aibrix-tokenizer/pkg/utils"
)

// Tokenizer turns text into token ids packed as big-endian int32s.
type Tokenizer interface {
	TokenizeInputText(text string) ([]byte, error)
}

// ExtendedTokenizer adds option-aware tokenization and detokenization.
type ExtendedTokenizer interface {
	Tokenizer
	TokenizeWithOptions(ctx context.Context, input TokenizeInput) (*TokenizeResult, error)
	Detokenize(ctx context.Context, tokens []int) (string, error)
}

// TokenizeInput carries the text and options of one tokenize call.
type TokenizeInput struct {
	Text string
	// AddSpecialTokens allows special token literals in Text to be emitted
	// as their special ids instead of ordinary text.
	AddSpecialTokens   bool
	ReturnTokenStrings bool
}

// TokenizeResult is the outcome of a tokenize call.
type TokenizeResult struct {
	Count        int
	MaxModelLen  int
	Tokens       []int
	TokenStrings []string
}

// HTTPClientConfig configures the HTTP client of a remote tokenizer.
type HTTPClientConfig struct {
	Timeout    time.Duration
	MaxRetries int
	// MaxConcurrency bounds in-flight requests. Zero means unbounded.
	MaxConcurrency int
}

// RemoteTokenizerConfig configures a tokenizer backed by the tokenizer service.
type RemoteTokenizerConfig struct {
	Endpoint       string
	Model          string
	Timeout        time.Duration
	MaxRetries     int
	MaxConcurrency int
	// AddSpecialTokens and ReturnTokenStrings apply to TokenizeInputText.
	AddSpecialTokens   bool
	ReturnTokenStrings bool
}

// ErrHTTPRequest is returned when the service answers with a non-2xx status.
type ErrHTTPRequest = utils.ErrHTTPRequest
