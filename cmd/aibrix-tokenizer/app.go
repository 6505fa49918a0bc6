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

package main

import (
	"context"
	"encoding/json"
	"errors"
	goflag "flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/vllm-project/aibrix-tokenizer/pkg/bpe"
	"github.com/vllm-project/aibrix-tokenizer/pkg/cache"
	"github.com/vllm-project/aibrix-tokenizer/pkg/chatformat"
	"github.com/vllm-project/aibrix-tokenizer/pkg/constants"
	"github.com/vllm-project/aibrix-tokenizer/pkg/server"
	"github.com/vllm-project/aibrix-tokenizer/pkg/tokencount"
	"github.com/vllm-project/aibrix-tokenizer/pkg/types"
	"github.com/vllm-project/aibrix-tokenizer/pkg/utils"
)

const usage = `usage: aibrix-tokenizer <command> [flags] [args]

commands:
  encode   print the token ids of the text in args or stdin
  decode   print the text of the token ids in args
  count    print the token count of the text in args or stdin, or of a chat
           request read from stdin with --chat
  serve    run the HTTP tokenizer service
`

type options struct {
	ranksSource    string
	ranksDir       string
	ranksURL       string
	cacheDir       string
	httpTimeout    time.Duration
	httpMaxRetries int
	cacheSize      int
	countCacheSize int
	listenAddr     string
	preload        bool

	encoding     string
	model        string
	allowSpecial []string
	chat         bool
}

func defaultOptions() options {
	return options{
		ranksSource:    utils.LoadEnv(constants.EnvRanksSource, constants.RanksSourceOffline),
		ranksDir:       utils.LoadEnv(constants.EnvRanksDir, ""),
		ranksURL:       utils.LoadEnv(constants.EnvRanksURL, ""),
		cacheDir:       utils.LoadEnv(constants.EnvTiktokenCacheDir, ""),
		httpTimeout:    utils.LoadEnvDuration(constants.EnvHTTPTimeout, 60*time.Second),
		httpMaxRetries: utils.LoadEnvInt(constants.EnvHTTPMaxRetries, 3),
		cacheSize:      utils.LoadEnvInt(constants.EnvCacheSize, cache.DefaultTokenizerCacheSize),
		countCacheSize: utils.LoadEnvInt(constants.EnvCountCacheSize, 4096),
		listenAddr:     utils.LoadEnv(constants.EnvListenAddr, ":8000"),
		preload:        utils.LoadEnvBool(constants.EnvPreload, false),
	}
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ranksSource, "ranks-source", o.ranksSource, "where rank files are read from: offline, dir or http")
	fs.StringVar(&o.ranksDir, "ranks-dir", o.ranksDir, "directory of .tiktoken files for --ranks-source=dir")
	fs.StringVar(&o.ranksURL, "ranks-url", o.ranksURL, "base URL of .tiktoken files for --ranks-source=http")
	fs.StringVar(&o.cacheDir, "cache-dir", o.cacheDir, "download cache for --ranks-source=http")
	fs.DurationVar(&o.httpTimeout, "http-timeout", o.httpTimeout, "timeout of one rank file download")
	fs.IntVar(&o.httpMaxRetries, "http-max-retries", o.httpMaxRetries, "retries of a failed rank file download")
	fs.IntVar(&o.cacheSize, "cache-size", o.cacheSize, "number of tokenizers kept in memory")

	fs.StringVar(&o.encoding, "encoding", constants.EncodingCL100kBase, "encoding name")
	fs.StringVar(&o.model, "model", "", "model name, overrides --encoding")
	fs.StringSliceVar(&o.allowSpecial, "allow-special", nil, `special tokens encoded as such, or "all"`)
}

// newLoader returns the rank loader selected by o and a function releasing it.
func newLoader(o options) (bpe.RankLoader, func(), error) {
	switch o.ranksSource {
	case constants.RanksSourceOffline, "":
		return bpe.NewOfflineLoader(), func() {}, nil
	case constants.RanksSourceDir:
		if o.ranksDir == "" {
			return nil, nil, fmt.Errorf("--ranks-dir is required for ranks source %q", o.ranksSource)
		}
		return bpe.NewDirLoader(o.ranksDir), func() {}, nil
	case constants.RanksSourceHTTP:
		loader := bpe.NewHTTPLoader(bpe.HTTPLoaderConfig{
			BaseURL:    o.ranksURL,
			CacheDir:   o.cacheDir,
			Timeout:    o.httpTimeout,
			MaxRetries: o.httpMaxRetries,
		})
		return loader, loader.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown ranks source %q", o.ranksSource)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	command := args[0]

	opts := defaultOptions()
	fs := pflag.NewFlagSet(command, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts.addFlags(fs)
	switch command {
	case "count":
		fs.BoolVar(&opts.chat, "chat", false, "read a token count request (model, messages, tools) as JSON from stdin")
	case "serve":
		fs.StringVar(&opts.listenAddr, "listen-addr", opts.listenAddr, "address to serve HTTP on")
		fs.IntVar(&opts.countCacheSize, "count-cache-size", opts.countCacheSize, "number of memoized token counts")
		fs.BoolVar(&opts.preload, "preload", opts.preload, "build every tokenizer before serving")
	case "encode", "decode":
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}

	klogFlags := goflag.NewFlagSet("klog", goflag.ContinueOnError)
	klog.InitFlags(klogFlags)
	fs.AddGoFlagSet(klogFlags)
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}

	loader, release, err := newLoader(opts)
	if err != nil {
		return err
	}
	defer release()
	registry := bpe.NewRegistry(loader)

	tokenizers := cache.NewTokenizerCache(command, registry, opts.cacheSize)
	defer tokenizers.Close()

	switch command {
	case "encode":
		return runEncode(opts, fs.Args(), stdin, stdout, tokenizers)
	case "decode":
		return runDecode(opts, fs.Args(), stdout, tokenizers)
	case "count":
		return runCount(opts, fs.Args(), stdin, stdout, tokenizers)
	default:
		return runServe(ctx, opts, registry, tokenizers)
	}
}

func selectTokenizer(opts options, tokenizers *cache.TokenizerCache) (*bpe.Tokenizer, error) {
	if opts.model != "" {
		return tokenizers.ForModel(opts.model)
	}
	return tokenizers.Get(opts.encoding)
}

// inputText joins args, or reads stdin when there are none.
func inputText(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func runEncode(opts options, args []string, stdin io.Reader, stdout io.Writer, tokenizers *cache.TokenizerCache) error {
	tok, err := selectTokenizer(opts, tokenizers)
	if err != nil {
		return err
	}
	text, err := inputText(args, stdin)
	if err != nil {
		return err
	}

	var allowed bpe.SpecialSet
	for _, literal := range opts.allowSpecial {
		if literal == "all" {
			allowed = tok.AllSpecial()
			break
		}
		if allowed == nil {
			allowed = bpe.NewSpecialSet()
		}
		allowed[literal] = struct{}{}
	}

	tokens := tok.Encode(text, allowed)
	if tokens == nil {
		tokens = []int{}
	}
	return json.NewEncoder(stdout).Encode(tokens)
}

func runDecode(opts options, args []string, stdout io.Writer, tokenizers *cache.TokenizerCache) error {
	tok, err := selectTokenizer(opts, tokenizers)
	if err != nil {
		return err
	}

	tokens := make([]int, 0, len(args))
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			token, err := strconv.Atoi(field)
			if err != nil {
				return fmt.Errorf("invalid token %q: %w", field, err)
			}
			tokens = append(tokens, token)
		}
	}

	text, err := tok.Decode(tokens)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, text)
	return err
}

func runCount(opts options, args []string, stdin io.Reader, stdout io.Writer, tokenizers *cache.TokenizerCache) error {
	if !opts.chat {
		tok, err := selectTokenizer(opts, tokenizers)
		if err != nil {
			return err
		}
		text, err := inputText(args, stdin)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, tokencount.FromString(text, tok))
		return err
	}

	var req types.TokenCountRequest
	if err := json.NewDecoder(stdin).Decode(&req); err != nil {
		return fmt.Errorf("invalid token count request: %w", err)
	}
	if req.Model == "" {
		req.Model = opts.model
	}
	format, err := chatformat.ForModel(req.Model)
	if err != nil {
		return err
	}
	tok, err := tokenizers.Get(format.Encoding)
	if err != nil {
		return err
	}

	tools := make([]tokencount.Tool, len(req.Tools))
	for i, t := range req.Tools {
		tools[i] = t.Tool()
	}
	count, err := tokencount.FromMessages(req.Messages, tools, format, tok)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, count)
	return err
}

func runServe(ctx context.Context, opts options, registry *bpe.Registry, tokenizers *cache.TokenizerCache) error {
	if opts.preload {
		for _, name := range registry.Names() {
			if _, err := tokenizers.Get(name); err != nil {
				return fmt.Errorf("failed to preload %s: %w", name, err)
			}
		}
		klog.InfoS("tokenizers_preloaded", "encodings", registry.Names())
	}

	counts := cache.NewCountCache("serve", opts.countCacheSize)
	defer counts.Close()

	klog.InfoS("tokenizer_server_config",
		"ranks_source", opts.ranksSource,
		"cache_size", opts.cacheSize,
		"count_cache_size", opts.countCacheSize)
	return server.New(tokenizers, counts).ListenAndServe(ctx, opts.listenAddr)
}
