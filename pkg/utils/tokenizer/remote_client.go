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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"k8s.io/klog/v2"

	"github.com/vllm-project/aibrix-tokenizer/pkg/utils"
)

// HTTPClient sends JSON requests to the tokenizer service
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	config     HTTPClientConfig
	// nil when concurrency is unbounded
	slots chan struct{}
}

// NewHTTPClient creates a pooled HTTP client for baseURL
func NewHTTPClient(baseURL string, config HTTPClientConfig) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	c := &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		config: config,
	}
	if config.MaxConcurrency > 0 {
		c.slots = make(chan struct{}, config.MaxConcurrency)
	}
	return c
}

func (c *HTTPClient) acquire(ctx context.Context) error {
	if c.slots == nil {
		return nil
	}
	select {
	case c.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *HTTPClient) release() {
	if c.slots != nil {
		<-c.slots
	}
}

// Post sends request as JSON to path. 5xx responses and transport errors are
// retried, 4xx responses are returned immediately as ErrHTTPRequest.
func (c *HTTPClient) Post(ctx context.Context, path string, request interface{}) ([]byte, error) {
	url := c.baseURL + path

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			klog.V(4).Infof("Retrying POST %s (attempt %d/%d): %v", url, attempt, c.config.MaxRetries, lastErr)
			select {
			case <-time.After(utils.Backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("request to %s aborted: %w", path, ctx.Err())
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, utils.ErrHTTPRequest{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("client error on %s", path),
				Body:       string(body),
			}
		}
		lastErr = utils.ErrHTTPRequest{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("server error on %s", path),
			Body:       string(body),
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

// Get sends a single GET request, used for health checks
func (c *HTTPClient) Get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, utils.ErrHTTPRequest{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("GET request failed on %s", path),
		Body:       string(body),
	}
}

// Close closes idle connections
func (c *HTTPClient) Close() {
	c.httpClient.CloseIdleConnections()
}
