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

// Package tokencount estimates the prompt size of chat requests the same way
// the OpenAI API bills them.
package tokencount

import (
	"fmt"

	"github.com/vllm-project/aibrix-tokenizer/pkg/chatformat"
	"github.com/vllm-project/aibrix-tokenizer/pkg/constants"
)

// Counter counts the tokens of plain text. Special token literals are
// counted as ordinary text. *bpe.Tokenizer implements it.
type Counter interface {
	CountTokens(text string) int
}

// FunctionCall is a function invocation emitted by the assistant.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// IsPresent reports whether the call has a name.
func (f FunctionCall) IsPresent() bool {
	return f.Name != ""
}

// Message is the part of a chat message that contributes to the token count.
type Message struct {
	Role         string       `json:"role"`
	Content      string       `json:"content"`
	Name         string       `json:"name,omitempty"`
	FunctionCall FunctionCall `json:"function_call"`
}

// FromString returns the token count of text.
func FromString(text string, counter Counter) int {
	return counter.CountTokens(text)
}

// FromLinesJoined counts lines as if joined with "\n", assuming the newline
// is a token of its own.
func FromLinesJoined(lines []string, counter Counter) int {
	count := 0
	for _, line := range lines {
		count += counter.CountTokens(line) + 1
	}
	return max(0, count-1)
}

// FromMessages counts the prompt tokens of a chat request. The tool
// documentation is rendered into the first message when it is a system
// message, otherwise it is counted as an extra system message.
func FromMessages(messages []Message, tools []Tool, format chatformat.Descriptor, counter Counter) (int, error) {
	toolsPrompt := ""
	if len(tools) > 0 {
		doc, err := GenerateDocumentation(tools)
		if err != nil {
			return 0, err
		}
		toolsPrompt = doc
	}

	count := 0
	for i, msg := range messages {
		count += format.PerMessage
		if msg.Role != "" {
			count += counter.CountTokens(msg.Role)
		}

		content := msg.Content
		if i == 0 && msg.Role == constants.RoleSystem {
			content += "\n\n" + toolsPrompt
			toolsPrompt = ""
		}
		count += counter.CountTokens(content)

		if msg.FunctionCall.IsPresent() {
			count += counter.CountTokens(msg.FunctionCall.Name)
			count += counter.CountTokens(msg.FunctionCall.Arguments)
			count += format.PerFunctionCall
		}
	}
	// every reply is primed with <|im_start|>assistant<|im_sep|>
	count += format.PerRequest

	if len(tools) > 0 {
		if toolsPrompt != "" {
			count += format.PerMessage
			count += counter.CountTokens(constants.RoleSystem)
			count += counter.CountTokens(toolsPrompt)
		}
		overhead, err := format.FunctionsOverhead()
		if err != nil {
			return 0, fmt.Errorf("failed to count tools: %w", err)
		}
		count += overhead
	}
	return count, nil
}

// FromMessagesFunc counts messages and tools of arbitrary types, converting
// each with the supplied mapping functions.
func FromMessagesFunc[M, T any](
	messages []M, toMessage func(M) Message,
	tools []T, toTool func(T) Tool,
	format chatformat.Descriptor, counter Counter,
) (int, error) {
	msgs := make([]Message, len(messages))
	for i, m := range messages {
		msgs[i] = toMessage(m)
	}
	var ts []Tool
	if len(tools) > 0 {
		ts = make([]Tool, len(tools))
		for i, t := range tools {
			ts[i] = toTool(t)
		}
	}
	return FromMessages(msgs, ts, format, counter)
}
