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

package constants_test

import (
	"testing"

	"github.com/vllm-project/aibrix-tokenizer/pkg/constants"
)

// TestSpecialTokenValues verifies that the special token literals are byte-exact
func TestSpecialTokenValues(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "EndOfText has correct value",
			got:      constants.EndOfText,
			expected: "<|endoftext|>",
		},
		{
			name:     "FimPrefix has correct value",
			got:      constants.FimPrefix,
			expected: "<|fim_prefix|>",
		},
		{
			name:     "FimMiddle has correct value",
			got:      constants.FimMiddle,
			expected: "<|fim_middle|>",
		},
		{
			name:     "FimSuffix has correct value",
			got:      constants.FimSuffix,
			expected: "<|fim_suffix|>",
		},
		{
			name:     "EndOfPrompt has correct value",
			got:      constants.EndOfPrompt,
			expected: "<|endofprompt|>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}

// TestRankFileName tests the encoding to rank resource mapping
func TestRankFileName(t *testing.T) {
	tests := []struct {
		name         string
		encoding     string
		wantResource string
		wantOk       bool
	}{
		{
			name:         "cl100k_base",
			encoding:     constants.EncodingCL100kBase,
			wantResource: "cl100k_base.tiktoken",
			wantOk:       true,
		},
		{
			name:         "p50k_base",
			encoding:     constants.EncodingP50kBase,
			wantResource: "p50k_base.tiktoken",
			wantOk:       true,
		},
		{
			name:         "p50k_edit shares the p50k_base file",
			encoding:     constants.EncodingP50kEdit,
			wantResource: "p50k_base.tiktoken",
			wantOk:       true,
		},
		{
			name:         "r50k_base",
			encoding:     constants.EncodingR50kBase,
			wantResource: "r50k_base.tiktoken",
			wantOk:       true,
		},
		{
			name:         "unknown encoding",
			encoding:     "o200k_base",
			wantResource: "",
			wantOk:       false,
		},
		{
			name:         "empty name",
			encoding:     "",
			wantResource: "",
			wantOk:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource, ok := constants.RankFileName(tt.encoding)
			if resource != tt.wantResource {
				t.Errorf("RankFileName(%q) resource = %q, want %q", tt.encoding, resource, tt.wantResource)
			}
			if ok != tt.wantOk {
				t.Errorf("RankFileName(%q) ok = %v, want %v", tt.encoding, ok, tt.wantOk)
			}
		})
	}
}
