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
	"os"
	"strconv"
	"strings"
	"time"

	"k8s.io/klog/v2"
)

// LoadEnv returns the value of the environment variable key, or defaultValue
// when it is unset or empty.
func LoadEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		klog.V(4).Infof("environment variable %s is not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func LoadEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		klog.Warningf("invalid int value %q for %s, using default value: %d", value, key, defaultValue)
		return defaultValue
	}
	return intValue
}

func LoadEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		klog.Warningf("invalid bool value %q for %s, using default value: %t", value, key, defaultValue)
		return defaultValue
	}
	return boolValue
}

// LoadEnvDuration accepts Go duration strings ("30s") or a bare number of seconds.
func LoadEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		klog.Warningf("invalid duration value %q for %s, using default value: %s", value, key, defaultValue)
		return defaultValue
	}
	return d
}
