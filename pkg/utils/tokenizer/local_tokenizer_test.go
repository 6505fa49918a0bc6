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

package tokenizer

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vllm-project/aibrix-tokenizer/pkg/bpe"
	"github.com/vllm-project/aibrix-tokenizer/pkg/constants"
)

func decodeTokenBytes(t *testing.T, data []byte) []int {
	t.Helper()
	require.Zero(t, len(data)%4)
	tokens := make([]int, len(data)/4)
	for i := range tokens {
		tokens[i] = int(int32(binary.BigEndian.Uint32(data[i*4:])))
	}
	return tokens
}

func encodeWith(t *testing.T, encoding, text string) []int {
	t.Helper()
	enc, err := bpe.Default().ForName(encoding)
	require.NoError(t, err)
	tok, err := bpe.NewTokenizer(enc)
	require.NoError(t, err)
	return tok.EncodeOrdinary(text)
}

func TestIntToByteArray(t *testing.T) {
	assert.Equal(t, []byte{}, intToByteArray(nil))
	assert.Equal(t, []byte{0, 0, 0x2a, 0x57, 0, 0, 0, 0}, intToByteArray([]int{10839, 0}))
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, intToByteArray([]int{-1}))
}

func TestNewTokenizer(t *testing.T) {
	tests := []struct {
		name          string
		tokenizerType string
		config        interface{}
		expected      []int
		errContains   string
	}{
		{
			name:          "tiktoken default encoding",
			tokenizerType: "tiktoken",
			expected:      []int{10903, 0},
		},
		{
			name:          "tiktoken named encoding",
			tokenizerType: "tiktoken",
			config:        constants.EncodingR50kBase,
			expected:      encodeWith(t, constants.EncodingR50kBase, "Stop!"),
		},
		{
			name:          "tiktoken bad config",
			tokenizerType: "tiktoken",
			config:        42,
			errContains:   "invalid config type",
		},
		{
			name:          "tiktoken unknown encoding",
			tokenizerType: "tiktoken",
			config:        "o200k_base",
			errContains:   "unknown encoding",
		},
		{
			name:          "remote bad config",
			tokenizerType: "remote",
			config:        "http://localhost:8000",
			errContains:   "invalid config type",
		},
		{
			name:          "unsupported tokenizer",
			tokenizerType: "character",
			errContains:   "unsupported tokenizer type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := NewTokenizer(tt.tokenizerType, tt.config)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, tok)
				return
			}
			require.NoError(t, err)

			data, err := tok.TokenizeInputText("Stop!")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, decodeTokenBytes(t, data))
		})
	}
}

func TestLocalTokenizer(t *testing.T) {
	tok, err := NewLocalTokenizerForModel("gpt-4")
	require.NoError(t, err)
	ctx := context.Background()

	result, err := tok.TokenizeWithOptions(ctx, TokenizeInput{
		Text:               "Stop!" + constants.EndOfText,
		AddSpecialTokens:   true,
		ReturnTokenStrings: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{10903, 0, 100257}, result.Tokens)
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, []string{"Stop", "!", constants.EndOfText}, result.TokenStrings)

	result, err = tok.TokenizeWithOptions(ctx, TokenizeInput{Text: constants.EndOfText})
	require.NoError(t, err)
	assert.NotContains(t, result.Tokens, 100257)
	assert.Nil(t, result.TokenStrings)

	text, err := tok.Detokenize(ctx, []int{10903, 0, 100257})
	require.NoError(t, err)
	assert.Equal(t, "Stop!"+constants.EndOfText, text)

	_, err = tok.Detokenize(ctx, []int{1 << 30})
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = tok.TokenizeWithOptions(cancelled, TokenizeInput{Text: "hi"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewLocalTokenizerForModel("not-a-model")
	assert.Error(t, err)
}

var _ ExtendedTokenizer = (*LocalTokenizer)(nil)
var _ ExtendedTokenizer = (*RemoteTokenizer)(nil)
