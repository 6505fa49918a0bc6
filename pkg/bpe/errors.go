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
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the category of every error caused by a bad encoding
	// name, model name or rank file. Such errors surface at resolve or load time.
	ErrConfiguration = errors.New("tokenizer configuration error")

	// ErrCorruptTokenStream is the category of errors raised while decoding a
	// token sequence that the vocabulary cannot account for.
	ErrCorruptTokenStream = errors.New("corrupt token stream")
)

// ErrUnknownEncoding is returned when no built-in encoding has the given name.
type ErrUnknownEncoding struct {
	Name string
}

func (e ErrUnknownEncoding) Error() string {
	return fmt.Sprintf("unknown encoding: %s", e.Name)
}

func (e ErrUnknownEncoding) Unwrap() error { return ErrConfiguration }

// ErrUnknownModel is returned when a model name matches neither the exact
// model table nor any model prefix.
type ErrUnknownModel struct {
	Model string
}

func (e ErrUnknownModel) Error() string {
	return fmt.Sprintf("unknown model name: %s", e.Model)
}

func (e ErrUnknownModel) Unwrap() error { return ErrConfiguration }

// ErrMalformedRankFile reports the first bad line of a rank file. Line is
// 1-based; it is zero when the failure is not tied to a line (e.g. I/O).
type ErrMalformedRankFile struct {
	Resource string
	Line     int
	Reason   string
	Err      error
}

func (e ErrMalformedRankFile) Error() string {
	msg := fmt.Sprintf("malformed rank file %s", e.Resource)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at line %d", msg, e.Line)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e ErrMalformedRankFile) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfiguration, e.Err}
	}
	return []error{ErrConfiguration}
}

// ErrRankFileUnavailable is returned when a rank resource cannot be opened or
// fetched at all.
type ErrRankFileUnavailable struct {
	Resource string
	Err      error
}

func (e ErrRankFileUnavailable) Error() string {
	return fmt.Sprintf("rank file %s unavailable: %v", e.Resource, e.Err)
}

func (e ErrRankFileUnavailable) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}

// ErrInvalidVocabulary is returned when a loaded vocabulary breaks one of the
// invariants the engine relies on.
type ErrInvalidVocabulary struct {
	Encoding string
	Message  string
}

func (e ErrInvalidVocabulary) Error() string {
	return fmt.Sprintf("invalid vocabulary %s: %s", e.Encoding, e.Message)
}

func (e ErrInvalidVocabulary) Unwrap() error { return ErrConfiguration }

// ErrUnknownToken is returned by Decode for an id that is neither a rank nor
// a special token id of the encoding.
type ErrUnknownToken struct {
	Token int
}

func (e ErrUnknownToken) Error() string {
	return fmt.Sprintf("unknown token id: %d", e.Token)
}

func (e ErrUnknownToken) Unwrap() error { return ErrCorruptTokenStream }
