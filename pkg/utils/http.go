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
	"fmt"
	"time"
)

const (
	// InitialBackoff is the delay before the first retry.
	InitialBackoff = 100 * time.Millisecond
	// MaxBackoff caps the delay between retries.
	MaxBackoff = 5 * time.Second
)

// Backoff returns the delay before retry number attempt, counting from 1.
// The delay doubles per attempt starting at InitialBackoff and is capped at
// MaxBackoff.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	// 2^7 * 100ms already exceeds the cap; also keeps the shift in range
	if attempt > 8 {
		return MaxBackoff
	}
	return min(InitialBackoff<<uint(attempt-1), MaxBackoff)
}

// ErrHTTPRequest reports a non-2xx response from an HTTP endpoint.
type ErrHTTPRequest struct {
	StatusCode int
	Message    string
	Body       string
}

func (e ErrHTTPRequest) Error() string {
	return fmt.Sprintf("http request failed with status %d: %s (body: %s)", e.StatusCode, e.Message, e.Body)
}
