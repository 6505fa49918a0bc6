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

// Package constants defines common constants used throughout the tokenizer.
package constants

// Encoding names.
// Each name identifies one built-in BPE vocabulary: a rank table, a special-token
// table and a pre-segmentation pattern.
const (
	// EncodingCL100kBase is the 100k-token vocabulary used by the gpt-4 and
	// gpt-3.5-turbo families and by text-embedding-ada-002.
	EncodingCL100kBase = "cl100k_base"

	// EncodingP50kBase is the 50k-token vocabulary used by text-davinci-002/003
	// and the codex models.
	EncodingP50kBase = "p50k_base"

	// EncodingP50kEdit shares the p50k_base rank table but adds the
	// fill-in-the-middle special tokens used by the edit models.
	EncodingP50kEdit = "p50k_edit"

	// EncodingR50kBase is the legacy GPT-3 vocabulary (davinci, curie, babbage, ada).
	EncodingR50kBase = "r50k_base"
)

// Special token literals.
// These strings are only ever emitted as their reserved ids when the caller
// explicitly allows them; otherwise they are tokenized as ordinary text.
const (
	EndOfText   = "<|endoftext|>"
	FimPrefix   = "<|fim_prefix|>"
	FimMiddle   = "<|fim_middle|>"
	FimSuffix   = "<|fim_suffix|>"
	EndOfPrompt = "<|endofprompt|>"
)

// Chat roles understood by the token counter.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
	RoleTool      = "tool"
)

// RankFileName returns the rank resource backing an encoding name. The edit
// variant reads the p50k_base file. It returns ("", false) for unknown names.
func RankFileName(encoding string) (string, bool) {
	switch encoding {
	case EncodingCL100kBase, EncodingP50kBase, EncodingR50kBase:
		return encoding + ".tiktoken", true
	case EncodingP50kEdit:
		return EncodingP50kBase + ".tiktoken", true
	default:
		return "", false
	}
}
