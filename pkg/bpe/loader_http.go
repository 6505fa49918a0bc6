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
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/vllm-project/aibrix-tokenizer/pkg/utils"
)

const (
	defaultHTTPTimeout    = 60 * time.Second
	defaultHTTPMaxRetries = 3
)

// HTTPLoaderConfig configures HTTPLoader.
type HTTPLoaderConfig struct {
	// BaseURL is joined with the resource name. Defaults to the public
	// OpenAI encodings bucket.
	BaseURL string
	// CacheDir keeps downloaded files between runs. Empty disables caching.
	// Entries are named by the sha1 of the URL, as tiktoken names them, so
	// a TIKTOKEN_CACHE_DIR can be shared.
	CacheDir   string
	Timeout    time.Duration
	MaxRetries int
}

// HTTPLoader downloads rank files, retrying server errors with exponential
// backoff, and parses them with ParseRanks.
type HTTPLoader struct {
	config     HTTPLoaderConfig
	httpClient *http.Client
}

// NewHTTPLoader creates an HTTPLoader, filling unset config fields with defaults.
func NewHTTPLoader(config HTTPLoaderConfig) *HTTPLoader {
	if config.BaseURL == "" {
		config.BaseURL = openaiPublicURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultHTTPTimeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = defaultHTTPMaxRetries
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPLoader{
		config: config,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}
}

func (l *HTTPLoader) url(resource string) string {
	return strings.TrimSuffix(l.config.BaseURL, "/") + "/" + resource
}

func (l *HTTPLoader) LoadRanks(resource string) (Ranks, error) {
	url := l.url(resource)

	if cachePath := l.cachePath(url); cachePath != "" {
		if contents, err := os.ReadFile(cachePath); err == nil {
			ranks, err := ParseRanks(resource, bytes.NewReader(contents))
			if err == nil {
				klog.V(2).InfoS("loaded cached rank file", "resource", resource, "path", cachePath)
				return ranks, nil
			}
			klog.Warningf("Discarding unreadable cached rank file %s: %v", cachePath, err)
			_ = os.Remove(cachePath)
		}
	}

	contents, err := l.fetch(context.Background(), url)
	if err != nil {
		return nil, ErrRankFileUnavailable{Resource: resource, Err: err}
	}
	ranks, err := ParseRanks(resource, bytes.NewReader(contents))
	if err != nil {
		return nil, err
	}

	if cachePath := l.cachePath(url); cachePath != "" {
		if err := writeCacheFile(cachePath, contents); err != nil {
			klog.Warningf("Failed to cache rank file %s: %v", resource, err)
		}
	}
	klog.V(2).InfoS("downloaded rank file", "resource", resource, "url", url, "entries", len(ranks))
	return ranks, nil
}

func (l *HTTPLoader) cachePath(url string) string {
	if l.config.CacheDir == "" {
		return ""
	}
	return filepath.Join(l.config.CacheDir, fmt.Sprintf("%x", sha1.Sum([]byte(url))))
}

// writeCacheFile writes through a uniquely named temp file so concurrent
// writers never expose a truncated entry.
func writeCacheFile(cachePath string, contents []byte) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return err
	}
	tmp := cachePath + "." + uuid.New().String() + ".tmp"
	if err := os.WriteFile(tmp, contents, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, cachePath)
}

// fetch sends a GET request with retry logic. 4xx responses are not retried.
func (l *HTTPLoader) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= l.config.MaxRetries; attempt++ {
		if attempt > 0 {
			klog.V(4).Infof("Retrying GET %s (attempt %d/%d): %v", url, attempt, l.config.MaxRetries, lastErr)
			select {
			case <-time.After(utils.Backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := l.httpClient.Do(req)
		if err != nil {
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
				Message:    fmt.Sprintf("client error on %s", url),
				Body:       string(body),
			}
		}

		lastErr = utils.ErrHTTPRequest{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("server error on %s", url),
			Body:       string(body),
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", l.config.MaxRetries+1, lastErr)
}

// Close closes idle connections.
func (l *HTTPLoader) Close() {
	l.httpClient.CloseIdleConnections()
}
