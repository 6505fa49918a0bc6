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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vllm-project/aibrix-tokenizer/pkg/constants"
)

func newSyntheticTokenizer(t *testing.T) *Tokenizer {
	t.Helper()
	ranks := withMerges(map[string]int{"he": 256, "ll": 257, "llo": 258, " w": 259})
	specials := map[string]int{
		constants.EndOfText: 1000,
		"<s>":               1001,
		"<s><t>":            1002,
	}
	enc, err := NewEncodingFromRanks("synthetic", ranks, specials, p50kPattern)
	require.NoError(t, err)
	tok, err := NewTokenizer(enc)
	require.NoError(t, err)
	return tok
}

func TestTokenizerEncode(t *testing.T) {
	tok := newSyntheticTokenizer(t)

	tokens := tok.EncodeOrdinary("hello world")
	assert.Equal(t, []int{256, 258, 259, 'o', 'r', 'l', 'd'}, tokens)

	text, err := tok.Decode(tokens)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, 7, tok.CountTokens("hello world"))

	assert.Empty(t, tok.EncodeOrdinary(""))
	assert.Empty(t, tok.Encode("", tok.AllSpecial()))
}

func TestTokenizerSpecialGating(t *testing.T) {
	tok := newSyntheticTokenizer(t)

	tests := []struct {
		name     string
		text     string
		allowed  SpecialSet
		expected func() []int
	}{
		{
			name:    "special text is ordinary when nothing is allowed",
			text:    "a<|endoftext|>b",
			allowed: nil,
			expected: func() []int {
				return tok.EncodeOrdinary("a<|endoftext|>b")
			},
		},
		{
			name:    "allowed special emits its id",
			text:    "a<|endoftext|>b",
			allowed: NewSpecialSet(constants.EndOfText),
			expected: func() []int {
				return []int{'a', 1000, 'b'}
			},
		},
		{
			name:    "adjacent specials",
			text:    "<|endoftext|><|endoftext|>",
			allowed: tok.AllSpecial(),
			expected: func() []int {
				return []int{1000, 1000}
			},
		},
		{
			name:    "longest literal wins",
			text:    "<s><t>",
			allowed: tok.AllSpecial(),
			expected: func() []int {
				return []int{1002}
			},
		},
		{
			name:    "rejected candidate resumes after its start",
			text:    "<s><t>",
			allowed: NewSpecialSet("<s>"),
			expected: func() []int {
				return tok.EncodeOrdinary("<s><t>")
			},
		},
		{
			name:    "later allowed special is still found",
			text:    "x<s><t>y<s>",
			allowed: NewSpecialSet("<s>"),
			expected: func() []int {
				return append(tok.EncodeOrdinary("x<s><t>y"), 1001)
			},
		},
		{
			name:    "unrelated allowed set",
			text:    "<s>",
			allowed: NewSpecialSet("<|unknown|>"),
			expected: func() []int {
				return tok.EncodeOrdinary("<s>")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tok.Encode(tt.text, tt.allowed)
			assert.Equal(t, tt.expected(), tokens)

			text, err := tok.Decode(tokens)
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)
		})
	}

	ordinary := tok.EncodeOrdinary(constants.EndOfText)
	assert.NotContains(t, ordinary, 1000)
	assert.Greater(t, len(ordinary), 1)
}

func TestTokenizerByteConservation(t *testing.T) {
	tok := newSyntheticTokenizer(t)
	texts := []string{
		"hello world",
		"  leading and trailing  ",
		"tabs\tand\nnewlines\r\n",
		"ünïcödé 😊 テキスト",
		"a\xffb\xc3",
		"digits 1234567890",
	}

	for _, text := range texts {
		tokens := tok.EncodeOrdinary(text)
		raw, err := tok.DecodeBytes(tokens)
		require.NoError(t, err)
		assert.Equal(t, []byte(text), raw)
	}
}

func TestTokenizerDecode(t *testing.T) {
	tok := newSyntheticTokenizer(t)

	raw, err := tok.DecodeBytes([]int{0xf0})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xf0}, raw)

	text, err := tok.Decode([]int{0xf0, 0x9f, 0x98, 0x8a})
	require.NoError(t, err)
	assert.Equal(t, "😊", text)

	text, err = tok.Decode([]int{1000})
	require.NoError(t, err)
	assert.Equal(t, constants.EndOfText, text)

	b, err := tok.DecodeToken(258)
	require.NoError(t, err)
	assert.Equal(t, ByteSequence("llo"), b)

	_, err = tok.Decode([]int{'a', 5000})
	var unknown ErrUnknownToken
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, 5000, unknown.Token)
	assert.True(t, errors.Is(err, ErrCorruptTokenStream))
	assert.False(t, errors.Is(err, ErrConfiguration))
}

func TestTokenizerAccessors(t *testing.T) {
	tok := newSyntheticTokenizer(t)

	assert.Equal(t, "synthetic", tok.Encoding().Name())
	assert.Equal(t, 1003, tok.NVocab())
	assert.True(t, tok.IsSpecial(1001))
	assert.False(t, tok.IsSpecial(256))

	id, ok := tok.SpecialTokenID(constants.EndOfText)
	assert.True(t, ok)
	assert.Equal(t, 1000, id)
	_, ok = tok.SpecialTokenID("<|nope|>")
	assert.False(t, ok)

	assert.Len(t, tok.AllSpecial(), 3)
	assert.False(t, SpecialSet(nil).Contains(constants.EndOfText))
}

func TestNewTokenizerValidation(t *testing.T) {
	tests := []struct {
		name     string
		ranks    func() Ranks
		specials map[string]int
		message  string
	}{
		{
			name: "missing single byte",
			ranks: func() Ranks {
				r := byteRanks()
				delete(r, ByteSequence([]byte{0}))
				return r
			},
		},
		{
			name: "rank assigned twice",
			ranks: func() Ranks {
				return withMerges(map[string]int{"ab": 'a'})
			},
		},
		{
			name:     "special reuses a rank",
			ranks:    byteRanks,
			specials: map[string]int{constants.EndOfText: 'a'},
		},
		{
			name:     "special ids collide",
			ranks:    byteRanks,
			specials: map[string]int{constants.EndOfText: 300, constants.FimPrefix: 300},
		},
		{
			name:     "special outside latin-1",
			ranks:    byteRanks,
			specials: map[string]int{"<|日|>": 300},
			message:  "not Latin-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewEncodingFromRanks("broken", tt.ranks(), tt.specials, p50kPattern)
			require.NoError(t, err)

			_, err = NewTokenizer(enc)
			var invalid ErrInvalidVocabulary
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, "broken", invalid.Encoding)
			assert.True(t, errors.Is(err, ErrConfiguration))
			if tt.message != "" {
				assert.Contains(t, invalid.Message, tt.message)
			}
		})
	}
}

func TestSpecialTokenLatin1Bytes(t *testing.T) {
	enc, err := NewEncodingFromRanks("latin", byteRanks(), map[string]int{"<|é|>": 300}, p50kPattern)
	require.NoError(t, err)
	tok, err := NewTokenizer(enc)
	require.NoError(t, err)

	b, err := tok.DecodeToken(300)
	require.NoError(t, err)
	assert.Equal(t, ByteSequence("<|\xe9|>"), b)
	assert.Equal(t, []int{300}, tok.Encode("<|é|>", tok.AllSpecial()))
}

func TestNewTokenizerPropagatesLoadError(t *testing.T) {
	loader := &countingLoader{}
	loader.fail.Store(true)
	enc, err := NewEncoding("test", loader, "test.tiktoken", nil, p50kPattern)
	require.NoError(t, err)

	_, err = NewTokenizer(enc)
	var unavailable ErrRankFileUnavailable
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "test.tiktoken", unavailable.Resource)
}
