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

// Package chatformat describes the fixed token overhead that chat models add
// around messages, requests and function definitions.
package chatformat

import (
	"errors"
	"fmt"

	"github.com/vllm-project/aibrix-tokenizer/pkg/bpe"
)

// ErrFunctionsUnsupported is returned for models that predate function calling.
var ErrFunctionsUnsupported = errors.New("functions aren't supported by this model")

// Descriptor holds the per-model token surcharges used when counting chat
// prompts.
type Descriptor struct {
	Model    string
	Encoding string

	// PerMessage is added for every message.
	PerMessage int
	// PerRequest primes the reply with the assistant header.
	PerRequest int
	// PerFunctionCall is added for every message carrying a function call.
	PerFunctionCall int

	forFunctions       int
	functionsSupported bool
}

// FunctionsOverhead is added once when function definitions are sent.
func (d Descriptor) FunctionsOverhead() (int, error) {
	if !d.functionsSupported {
		return 0, fmt.Errorf("%s: %w", d.Model, ErrFunctionsUnsupported)
	}
	return d.forFunctions, nil
}

// SupportsFunctions reports whether FunctionsOverhead succeeds.
func (d Descriptor) SupportsFunctions() bool {
	return d.functionsSupported
}

// New builds a descriptor for a model that supports functions.
func New(model, encoding string, perMessage, perRequest, forFunctions, perFunctionCall int) Descriptor {
	return Descriptor{
		Model:              model,
		Encoding:           encoding,
		PerMessage:         perMessage,
		PerRequest:         perRequest,
		PerFunctionCall:    perFunctionCall,
		forFunctions:       forFunctions,
		functionsSupported: true,
	}
}

func withoutFunctions(model, encoding string, perMessage, perRequest, perFunctionCall int) Descriptor {
	d := New(model, encoding, perMessage, perRequest, 0, perFunctionCall)
	d.functionsSupported = false
	return d
}

// ForModel returns the descriptor for a chat model. Family names resolve to
// the snapshot they currently alias.
func ForModel(model string) (Descriptor, error) {
	switch model {
	case "gpt-3.5-turbo":
		return ForModel("gpt-3.5-turbo-0613")
	case "gpt-3.5-turbo-16k", "gpt-4", "gpt-4-32k":
		return ForModel("gpt-4-0613")
	}

	encoding, err := bpe.EncodingNameForModel(model)
	if err != nil {
		return Descriptor{}, err
	}

	switch model {
	case "gpt-3.5-turbo-0301":
		return withoutFunctions(model, encoding, 4, 3, 3), nil
	case "gpt-4-0314", "gpt-4-32k-0314":
		return withoutFunctions(model, encoding, 3, 3, 3), nil
	case "gpt-3.5-turbo-0613", "gpt-3.5-turbo-16k-0613", "gpt-4-0613", "gpt-4-32k-0613":
		return New(model, encoding, 3, 3, -1, 3), nil
	default:
		return Descriptor{}, bpe.ErrUnknownModel{Model: model}
	}
}
