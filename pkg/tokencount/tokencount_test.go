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

package tokencount

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vllm-project/aibrix-tokenizer/pkg/bpe"
	"github.com/vllm-project/aibrix-tokenizer/pkg/chatformat"
	"github.com/vllm-project/aibrix-tokenizer/pkg/constants"
)

// wordCounter counts whitespace separated words.
type wordCounter struct{}

func (wordCounter) CountTokens(text string) int {
	return len(strings.Fields(text))
}

func cl100k(t *testing.T) *bpe.Tokenizer {
	t.Helper()
	enc, err := bpe.Default().ForName(constants.EncodingCL100kBase)
	require.NoError(t, err)
	tok, err := bpe.NewTokenizer(enc)
	require.NoError(t, err)
	return tok
}

func TestFromLinesJoined(t *testing.T) {
	tok := cl100k(t)

	assert.Equal(t, 0, FromLinesJoined(nil, tok))
	assert.Equal(t, 1, FromLinesJoined([]string{"1"}, tok))
	assert.Equal(t, 3, FromLinesJoined([]string{"1", "2"}, tok))
	assert.Equal(t, 5, FromLinesJoined([]string{"1", "2", "3"}, tok))
	assert.Equal(t, 0, FromLinesJoined([]string{""}, tok))
}

func TestFromString(t *testing.T) {
	assert.Equal(t, 2, FromString("Stop!", cl100k(t)))
	assert.Equal(t, 0, FromString("", wordCounter{}))
}

var cookbookMessages = []Message{
	{Role: "system", Content: "You are a helpful, pattern-following assistant that translates corporate jargon into plain English."},
	{Role: "user", Content: "New synergies will help drive top-line growth."},
	{Role: "assistant", Content: "Things working well together will increase revenue."},
	{Role: "user", Content: "Let's circle back when we have more bandwidth to touch base on opportunities for increased leverage."},
	{Role: "assistant", Content: "Let's talk later when we're less busy about how to do better."},
	{Role: "user", Content: "This late pivot means we don't have time to boil the ocean for the client deliverable."},
}

func TestFromMessagesCookbook(t *testing.T) {
	tok := cl100k(t)
	tests := []struct {
		model    string
		expected int
	}{
		{model: "gpt-3.5-turbo-0301", expected: 121},
		{model: "gpt-3.5-turbo-0613", expected: 115},
		{model: "gpt-3.5-turbo-16k-0613", expected: 115},
		{model: "gpt-4-0314", expected: 115},
		{model: "gpt-4-0613", expected: 115},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			format, err := chatformat.ForModel(tt.model)
			require.NoError(t, err)

			count, err := FromMessages(cookbookMessages, nil, format, tok)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, count)
		})
	}
}

func TestFromMessagesWithTools(t *testing.T) {
	format := chatformat.New("test", constants.EncodingCL100kBase, 3, 3, -1, 3)
	tools := []Tool{Function{Name: "lookup", Description: "Look something up"}}
	doc, err := GenerateDocumentation(tools)
	require.NoError(t, err)
	docWords := len(strings.Fields(doc))

	t.Run("documentation joins the leading system message", func(t *testing.T) {
		messages := []Message{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hi there"},
		}
		count, err := FromMessages(messages, tools, format, wordCounter{})
		require.NoError(t, err)
		// (3 + 1 + 2 + doc) + (3 + 1 + 2) + 3 - 1
		assert.Equal(t, 14+docWords, count)
	})

	t.Run("documentation becomes its own system message", func(t *testing.T) {
		messages := []Message{
			{Role: "user", Content: "hi there"},
		}
		count, err := FromMessages(messages, tools, format, wordCounter{})
		require.NoError(t, err)
		// (3 + 1 + 2) + 3 + (3 + 1 + doc) - 1
		assert.Equal(t, 12+docWords, count)
	})

	t.Run("function calls add their own overhead", func(t *testing.T) {
		messages := []Message{
			{Role: "assistant", FunctionCall: FunctionCall{Name: "lookup", Arguments: `{"q": "go"}`}},
		}
		count, err := FromMessages(messages, nil, format, wordCounter{})
		require.NoError(t, err)
		// 3 + 1 + 0 + (1 + 2 + 3) + 3
		assert.Equal(t, 13, count)
	})

	t.Run("model without functions", func(t *testing.T) {
		legacy, err := chatformat.ForModel("gpt-4-0314")
		require.NoError(t, err)
		_, err = FromMessages([]Message{{Role: "user", Content: "hi"}}, tools, legacy, wordCounter{})
		assert.True(t, errors.Is(err, chatformat.ErrFunctionsUnsupported))
	})
}

type externalMessage struct {
	author string
	text   string
}

type externalFunction struct {
	id string
}

func TestFromMessagesFunc(t *testing.T) {
	format := chatformat.New("test", constants.EncodingCL100kBase, 3, 3, -1, 3)
	messages := []externalMessage{{author: "user", text: "hello world"}}
	functions := []externalFunction{{id: "ping"}}

	count, err := FromMessagesFunc(messages,
		func(m externalMessage) Message { return Message{Role: m.author, Content: m.text} },
		functions,
		func(f externalFunction) Tool { return Function{Name: f.id} },
		format, wordCounter{})
	require.NoError(t, err)

	expected, err := FromMessages(
		[]Message{{Role: "user", Content: "hello world"}},
		[]Tool{Function{Name: "ping"}},
		format, wordCounter{})
	require.NoError(t, err)
	assert.Equal(t, expected, count)
}
