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

// Package server exposes the tokenizer over HTTP. The tokenize and detokenize
// endpoints mirror vLLM's so remote tokenizer clients work unchanged.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	"github.com/vllm-project/aibrix-tokenizer/pkg/bpe"
	"github.com/vllm-project/aibrix-tokenizer/pkg/cache"
	"github.com/vllm-project/aibrix-tokenizer/pkg/chatformat"
	"github.com/vllm-project/aibrix-tokenizer/pkg/models"
	"github.com/vllm-project/aibrix-tokenizer/pkg/tokencount"
	"github.com/vllm-project/aibrix-tokenizer/pkg/types"
	"github.com/vllm-project/aibrix-tokenizer/pkg/utils/tokenizer"
)

const (
	maxRequestBodyBytes = 8 << 20
	shutdownTimeout     = 10 * time.Second
)

// Server serves tokenize, detokenize and token count requests.
type Server struct {
	tokenizers *cache.TokenizerCache
	counts     *cache.CountCache
	validate   *validator.Validate
	router     *mux.Router
}

// New creates a server resolving engines through tokenizers and memoizing
// chat counts in counts.
func New(tokenizers *cache.TokenizerCache, counts *cache.CountCache) *Server {
	s := &Server{
		tokenizers: tokenizers,
		counts:     counts,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		router:     mux.NewRouter(),
	}

	s.router.Use(instrument)
	s.router.HandleFunc("/tokenize", s.handleTokenize).Methods(http.MethodPost)
	s.router.HandleFunc("/detokenize", s.handleDetokenize).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/token_count", s.handleTokenCount).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		klog.InfoS("tokenizer_server_listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	klog.InfoS("tokenizer_server_shutting_down", "addr", addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// resolve returns the engine for model, which may be an encoding name or a
// model name, together with the model's context window when known.
func (s *Server) resolve(model string) (*bpe.Tokenizer, int, error) {
	if tok, err := s.tokenizers.Get(model); err == nil {
		return tok, 0, nil
	} else if !errors.As(err, new(bpe.ErrUnknownEncoding)) {
		return nil, 0, err
	}

	if m, err := models.ForModel(model); err == nil {
		tok, err := s.tokenizers.Get(m.Encoding)
		return tok, m.MaxTokens, err
	}
	tok, err := s.tokenizers.ForModel(model)
	return tok, 0, err
}

func (s *Server) handleTokenize(w http.ResponseWriter, r *http.Request) {
	var req types.TokenizeRequest
	if !s.decode(w, r, &req) {
		return
	}

	tok, maxModelLen, err := s.resolve(req.Model)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := tokenizer.Tokenize(tok, tokenizer.TokenizeInput{
		Text:               req.Prompt,
		AddSpecialTokens:   req.AddSpecialTokens != nil && *req.AddSpecialTokens,
		ReturnTokenStrings: req.ReturnTokenStrs != nil && *req.ReturnTokenStrs,
	}, maxModelLen)
	if err != nil {
		writeError(w, err)
		return
	}
	tokensProcessedTotal.WithLabelValues(tok.Encoding().Name(), "tokenize").Add(float64(result.Count))
	klog.V(4).InfoS("tokenize_request", "model", req.Model, "encoding", tok.Encoding().Name(), "count", result.Count)

	writeJSON(w, http.StatusOK, types.TokenizeResponse{
		Count:       result.Count,
		MaxModelLen: result.MaxModelLen,
		Tokens:      result.Tokens,
		TokenStrs:   result.TokenStrings,
	})
}

func (s *Server) handleDetokenize(w http.ResponseWriter, r *http.Request) {
	var req types.DetokenizeRequest
	if !s.decode(w, r, &req) {
		return
	}

	tok, _, err := s.resolve(req.Model)
	if err != nil {
		writeError(w, err)
		return
	}

	text, err := tok.Decode(req.Tokens)
	if err != nil {
		writeError(w, err)
		return
	}
	tokensProcessedTotal.WithLabelValues(tok.Encoding().Name(), "detokenize").Add(float64(len(req.Tokens)))

	writeJSON(w, http.StatusOK, types.DetokenizeResponse{Prompt: text})
}

func (s *Server) handleTokenCount(w http.ResponseWriter, r *http.Request) {
	var req types.TokenCountRequest
	if !s.decode(w, r, &req) {
		return
	}

	format, err := chatformat.ForModel(req.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	tok, err := s.tokenizers.Get(format.Encoding)
	if err != nil {
		writeError(w, err)
		return
	}

	count, err := tokencount.FromMessagesFunc(
		req.Messages, func(m tokencount.Message) tokencount.Message { return m },
		req.Tools, types.ToolDefinition.Tool,
		format, s.counts.Counter(tok))
	if err != nil {
		writeError(w, err)
		return
	}
	tokensProcessedTotal.WithLabelValues(tok.Encoding().Name(), "count").Add(float64(count))
	klog.V(4).InfoS("token_count_request", "model", req.Model, "messages", len(req.Messages), "tools", len(req.Tools), "count", count)

	writeJSON(w, http.StatusOK, types.TokenCountResponse{Model: format.Model, Count: count})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// decode reads and validates a JSON body into v. On failure it writes a 400
// response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(v); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, types.ErrorTypeInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, types.ErrorTypeInvalidRequest, err.Error())
		return false
	}
	return true
}
