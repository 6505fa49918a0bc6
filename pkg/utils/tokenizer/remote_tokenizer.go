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
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/vllm-project/aibrix-tokenizer/pkg/types"
)

const (
	tokenizePath   = "/tokenize"
	detokenizePath = "/detokenize"
	healthPath     = "/health"
)

// RemoteTokenizer calls the vLLM-compatible endpoints of a tokenizer service
type RemoteTokenizer struct {
	client *HTTPClient
	config RemoteTokenizerConfig
}

// NewRemoteTokenizer validates config and creates a remote tokenizer
func NewRemoteTokenizer(config RemoteTokenizerConfig) (*RemoteTokenizer, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	u, err := url.Parse(config.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint URL: %s", config.Endpoint)
	}

	client := NewHTTPClient(strings.TrimSuffix(config.Endpoint, "/"), HTTPClientConfig{
		Timeout:        config.Timeout,
		MaxRetries:     config.MaxRetries,
		MaxConcurrency: config.MaxConcurrency,
	})
	return &RemoteTokenizer{client: client, config: config}, nil
}

// TokenizeInputText tokenizes text with the configured options
func (t *RemoteTokenizer) TokenizeInputText(text string) ([]byte, error) {
	result, err := t.TokenizeWithOptions(context.Background(), TokenizeInput{
		Text:               text,
		AddSpecialTokens:   t.config.AddSpecialTokens,
		ReturnTokenStrings: t.config.ReturnTokenStrings,
	})
	if err != nil {
		return nil, err
	}
	return intToByteArray(result.Tokens), nil
}

// TokenizeWithOptions tokenizes input.Text on the remote service
func (t *RemoteTokenizer) TokenizeWithOptions(ctx context.Context, input TokenizeInput) (*TokenizeResult, error) {
	req := types.TokenizeRequest{
		Model:            t.config.Model,
		Prompt:           input.Text,
		AddSpecialTokens: &input.AddSpecialTokens,
		ReturnTokenStrs:  &input.ReturnTokenStrings,
	}
	body, err := t.client.Post(ctx, tokenizePath, req)
	if err != nil {
		return nil, fmt.Errorf("tokenize failed: %w", err)
	}

	var resp types.TokenizeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse tokenize response: %w", err)
	}
	return &TokenizeResult{
		Count:        resp.Count,
		MaxModelLen:  resp.MaxModelLen,
		Tokens:       resp.Tokens,
		TokenStrings: resp.TokenStrs,
	}, nil
}

// Detokenize turns tokens back into text on the remote service
func (t *RemoteTokenizer) Detokenize(ctx context.Context, tokens []int) (string, error) {
	req := types.DetokenizeRequest{
		Model:  t.config.Model,
		Tokens: tokens,
	}
	body, err := t.client.Post(ctx, detokenizePath, req)
	if err != nil {
		return "", fmt.Errorf("detokenize failed: %w", err)
	}

	var resp types.DetokenizeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse detokenize response: %w", err)
	}
	return resp.Prompt, nil
}

// IsHealthy reports whether the service answers its health check
func (t *RemoteTokenizer) IsHealthy(ctx context.Context) bool {
	_, err := t.client.Get(ctx, healthPath)
	return err == nil
}

// Close releases idle connections
func (t *RemoteTokenizer) Close() error {
	t.client.Close()
	return nil
}
