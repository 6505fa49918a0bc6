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

// Package types holds the JSON wire types of the tokenizer service. The
// tokenize and detokenize shapes follow vLLM's so existing clients can talk
// to either.
package types

import (
	"encoding/json"

	"github.com/vllm-project/aibrix-tokenizer/pkg/tokencount"
)

// TokenizeRequest is the body of POST /tokenize.
type TokenizeRequest struct {
	Model  string `json:"model" validate:"required"`
	Prompt string `json:"prompt"`
	// AddSpecialTokens allows every special token literal in Prompt to be
	// emitted as its special id.
	AddSpecialTokens *bool `json:"add_special_tokens,omitempty"`
	ReturnTokenStrs  *bool `json:"return_token_strs,omitempty"`
}

// TokenizeResponse is returned by POST /tokenize.
type TokenizeResponse struct {
	Count       int      `json:"count"`
	MaxModelLen int      `json:"max_model_len"`
	Tokens      []int    `json:"tokens"`
	TokenStrs   []string `json:"token_strs,omitempty"`
}

// DetokenizeRequest is the body of POST /detokenize.
type DetokenizeRequest struct {
	Model  string `json:"model" validate:"required"`
	Tokens []int  `json:"tokens" validate:"dive,gte=0"`
}

// DetokenizeResponse is returned by POST /detokenize.
type DetokenizeResponse struct {
	Prompt string `json:"prompt"`
}

// FunctionDefinition describes a callable function offered to a chat model.
type FunctionDefinition struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	// Parameters is kept raw so property order survives to the documenter.
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

// ToolDefinition wraps a function the way the chat completions API does.
type ToolDefinition struct {
	Type     string             `json:"type" validate:"omitempty,eq=function"`
	Function FunctionDefinition `json:"function"`
}

// TokenCountRequest is the body of POST /v1/token_count.
type TokenCountRequest struct {
	Model    string               `json:"model" validate:"required"`
	Messages []tokencount.Message `json:"messages" validate:"required,min=1"`
	Tools    []ToolDefinition     `json:"tools,omitempty" validate:"dive"`
}

// TokenCountResponse is returned by POST /v1/token_count.
type TokenCountResponse struct {
	Model string `json:"model"`
	Count int    `json:"count"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// Error types reported in ErrorInfo.Type.
const (
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeInternal       = "internal_error"
)

// Tool converts the definition into the form the token counter documents.
func (t ToolDefinition) Tool() tokencount.Tool {
	return tokencount.Function{
		Name:        t.Function.Name,
		Description: t.Function.Description,
		Parameters:  t.Function.Parameters,
	}
}
