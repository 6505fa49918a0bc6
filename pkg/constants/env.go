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

package constants

// Environment variables read at startup.
const (
	// EnvRanksSource selects where rank files come from: "offline" (embedded,
	// the default), "dir" or "http".
	EnvRanksSource = "AIBRIX_TOKENIZER_RANKS_SOURCE"

	// EnvRanksDir is the directory holding <encoding>.tiktoken files when the
	// source is "dir".
	EnvRanksDir = "AIBRIX_TOKENIZER_RANKS_DIR"

	// EnvRanksURL is the base URL rank files are fetched from when the source is "http".
	EnvRanksURL = "AIBRIX_TOKENIZER_RANKS_URL"

	// EnvTiktokenCacheDir is shared with tiktoken so both reuse one download cache.
	EnvTiktokenCacheDir = "TIKTOKEN_CACHE_DIR"

	EnvHTTPTimeout    = "AIBRIX_TOKENIZER_HTTP_TIMEOUT"
	EnvHTTPMaxRetries = "AIBRIX_TOKENIZER_HTTP_MAX_RETRIES"

	// EnvCacheSize bounds the number of tokenizer engines kept alive.
	EnvCacheSize = "AIBRIX_TOKENIZER_CACHE_SIZE"

	// EnvCountCacheSize bounds the number of memoized token counts; 0 disables it.
	EnvCountCacheSize = "AIBRIX_TOKENIZER_COUNT_CACHE_SIZE"

	// EnvListenAddr is the address the HTTP service binds to.
	EnvListenAddr = "AIBRIX_TOKENIZER_LISTEN_ADDR"

	// EnvPreload builds every tokenizer before the service starts accepting requests.
	EnvPreload = "AIBRIX_TOKENIZER_PRELOAD"
)

// Rank sources accepted by EnvRanksSource.
const (
	RanksSourceOffline = "offline"
	RanksSourceDir     = "dir"
	RanksSourceHTTP    = "http"
)
