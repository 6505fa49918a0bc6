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
	"fmt"

	"github.com/vllm-project/aibrix-tokenizer/pkg/bpe"
	"github.com/vllm-project/aibrix-tokenizer/pkg/constants"
)

// NewTokenizer creates a tokenizer by type.
//
//   - "tiktoken": config is an optional encoding name (string), cl100k_base by default
//   - "remote": config must be a RemoteTokenizerConfig
func NewTokenizer(tokenizerType string, config interface{}) (Tokenizer, error) {
	switch tokenizerType {
	case "tiktoken":
		name := constants.EncodingCL100kBase
		if config != nil {
			s, ok := config.(string)
			if !ok {
				return nil, fmt.Errorf("invalid config type for tiktoken tokenizer")
			}
			name = s
		}
		enc, err := bpe.Default().ForName(name)
		if err != nil {
			return nil, err
		}
		tok, err := bpe.NewTokenizer(enc)
		if err != nil {
			return nil, err
		}
		return NewLocalTokenizer(tok, 0), nil

	case "remote":
		remoteConfig, ok := config.(RemoteTokenizerConfig)
		if !ok {
			return nil, fmt.Errorf("invalid config type for remote tokenizer")
		}
		tok, err := NewRemoteTokenizer(remoteConfig)
		if err != nil {
			return nil, err
		}
		return tok, nil

	default:
		return nil, fmt.Errorf("unsupported tokenizer type: %s", tokenizerType)
	}
}
