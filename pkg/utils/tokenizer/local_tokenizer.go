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

	"github.com/vllm-project/aibrix-tokenizer/pkg/bpe"
)

// LocalTokenizer tokenizes in-process with a BPE engine
type LocalTokenizer struct {
	tokenizer   *bpe.Tokenizer
	maxModelLen int
}

// NewLocalTokenizer wraps tok. maxModelLen is reported in results and may be zero.
func NewLocalTokenizer(tok *bpe.Tokenizer, maxModelLen int) *LocalTokenizer {
	return &LocalTokenizer{tokenizer: tok, maxModelLen: maxModelLen}
}

// NewLocalTokenizerForModel builds a local tokenizer for model from the
// default registry.
func NewLocalTokenizerForModel(model string) (*LocalTokenizer, error) {
	enc, err := bpe.Default().ForModel(model)
	if err != nil {
		return nil, err
	}
	tok, err := bpe.NewTokenizer(enc)
	if err != nil {
		return nil, err
	}
	return NewLocalTokenizer(tok, 0), nil
}

// TokenizeInputText encodes text treating special literals as ordinary text
func (t *LocalTokenizer) TokenizeInputText(text string) ([]byte, error) {
	return intToByteArray(t.tokenizer.EncodeOrdinary(text)), nil
}

func (t *LocalTokenizer) TokenizeWithOptions(ctx context.Context, input TokenizeInput) (*TokenizeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Tokenize(t.tokenizer, input, t.maxModelLen)
}

func (t *LocalTokenizer) Detokenize(ctx context.Context, tokens []int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return t.tokenizer.Decode(tokens)
}

// Tokenize runs input through tok. Token strings are the raw bytes of each
// token and may hold partial UTF-8 sequences.
func Tokenize(tok *bpe.Tokenizer, input TokenizeInput, maxModelLen int) (*TokenizeResult, error) {
	var allowed bpe.SpecialSet
	if input.AddSpecialTokens {
		allowed = tok.AllSpecial()
	}
	tokens := tok.Encode(input.Text, allowed)
	if tokens == nil {
		tokens = []int{}
	}

	result := &TokenizeResult{
		Count:       len(tokens),
		MaxModelLen: maxModelLen,
		Tokens:      tokens,
	}
	if input.ReturnTokenStrings {
		result.TokenStrings = make([]string, len(tokens))
		for i, token := range tokens {
			piece, err := tok.DecodeToken(token)
			if err != nil {
				return nil, err
			}
			result.TokenStrings[i] = piece.String()
		}
	}
	return result, nil
}
