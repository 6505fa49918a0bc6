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

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"k8s.io/klog/v2"

	"github.com/vllm-project/aibrix-tokenizer/pkg/bpe"
	"github.com/vllm-project/aibrix-tokenizer/pkg/chatformat"
	"github.com/vllm-project/aibrix-tokenizer/pkg/types"
)

// statusFor maps an engine error to an HTTP status. Rank files that cannot be
// loaded are a server fault even though they are configuration errors.
func statusFor(err error) int {
	var unavailable bpe.ErrRankFileUnavailable
	var malformed bpe.ErrMalformedRankFile
	var invalid bpe.ErrInvalidVocabulary
	switch {
	case errors.As(err, &unavailable), errors.As(err, &malformed), errors.As(err, &invalid):
		return http.StatusInternalServerError
	case errors.Is(err, bpe.ErrConfiguration),
		errors.Is(err, bpe.ErrCorruptTokenStream),
		errors.Is(err, chatformat.ErrFunctionsUnsupported):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	errType := types.ErrorTypeInvalidRequest
	if status >= http.StatusInternalServerError {
		errType = types.ErrorTypeInternal
		klog.ErrorS(err, "tokenizer_request_failed")
	}
	writeErrorResponse(w, status, errType, err.Error())
}

func writeErrorResponse(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, types.ErrorResponse{
		Error: types.ErrorInfo{
			Message: message,
			Type:    errType,
			Code:    status,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.Errorf("Failed to write response: %v", err)
	}
}
