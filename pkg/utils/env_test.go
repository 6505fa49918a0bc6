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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv("AIBRIX_TEST_STRING", "offline")
	assert.Equal(t, "offline", LoadEnv("AIBRIX_TEST_STRING", "http"))
	assert.Equal(t, "http", LoadEnv("AIBRIX_TEST_UNSET", "http"))
}

func TestLoadEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{name: "unset", value: "", expected: 8},
		{name: "valid", value: "16", expected: 16},
		{name: "padded", value: " 4 ", expected: 4},
		{name: "invalid", value: "many", expected: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AIBRIX_TEST_INT", tt.value)
			assert.Equal(t, tt.expected, LoadEnvInt("AIBRIX_TEST_INT", 8))
		})
	}
}

func TestLoadEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected bool
	}{
		{name: "unset", value: "", expected: true},
		{name: "false", value: "false", expected: false},
		{name: "numeric", value: "0", expected: false},
		{name: "invalid", value: "maybe", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AIBRIX_TEST_BOOL", tt.value)
			assert.Equal(t, tt.expected, LoadEnvBool("AIBRIX_TEST_BOOL", true))
		})
	}
}

func TestLoadEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{name: "unset", value: "", expected: time.Minute},
		{name: "seconds", value: "30", expected: 30 * time.Second},
		{name: "duration string", value: "1500ms", expected: 1500 * time.Millisecond},
		{name: "invalid", value: "soon", expected: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AIBRIX_TEST_DURATION", tt.value)
			assert.Equal(t, tt.expected, LoadEnvDuration("AIBRIX_TEST_DURATION", time.Minute))
		})
	}
}
