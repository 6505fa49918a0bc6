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

package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{attempt: 0, expected: 0},
		{attempt: 1, expected: 100 * time.Millisecond},
		{attempt: 2, expected: 200 * time.Millisecond},
		{attempt: 3, expected: 400 * time.Millisecond},
		{attempt: 6, expected: 3200 * time.Millisecond},
		{attempt: 7, expected: MaxBackoff},
		{attempt: 8, expected: MaxBackoff},
		{attempt: 64, expected: MaxBackoff},
		{attempt: 1000, expected: MaxBackoff},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt %d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, Backoff(tt.attempt))
		})
	}
}

func TestErrHTTPRequest(t *testing.T) {
	err := fmt.Errorf("fetch failed: %w", ErrHTTPRequest{
		StatusCode: http.StatusForbidden,
		Message:    "client error on /x",
		Body:       "denied",
	})

	var httpErr ErrHTTPRequest
	assert.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "denied")
}
