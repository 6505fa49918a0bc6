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
	"io/fs"
	"os"
	"time"

	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
	"k8s.io/klog/v2"
)

// openaiPublicURL is where the reference rank files are published. The
// embedded loader keys its files by this URL.
const openaiPublicURL = "https://openaipublic.blob.core.windows.net/encodings/"

// RankLoader produces the rank table stored under a resource name such as
// "cl100k_base.tiktoken".
type RankLoader interface {
	LoadRanks(resource string) (Ranks, error)
}

// RankLoaderFunc adapts a function to RankLoader.
type RankLoaderFunc func(resource string) (Ranks, error)

func (f RankLoaderFunc) LoadRanks(resource string) (Ranks, error) {
	return f(resource)
}

type tiktokenBpeLoader interface {
	LoadTiktokenBpe(tiktokenBpeFile string) (map[string]int, error)
}

// OfflineLoader serves the rank files embedded in tiktoken-go-loader, so no
// network or disk access is needed at runtime.
type OfflineLoader struct {
	loader tiktokenBpeLoader
}

// NewOfflineLoader creates a loader backed by the embedded rank files.
func NewOfflineLoader() *OfflineLoader {
	return &OfflineLoader{loader: tiktoken_loader.NewOfflineLoader()}
}

func (l *OfflineLoader) LoadRanks(resource string) (Ranks, error) {
	start := time.Now()
	raw, err := l.loader.LoadTiktokenBpe(openaiPublicURL + resource)
	if err != nil {
		return nil, ErrRankFileUnavailable{Resource: resource, Err: err}
	}

	ranks := make(Ranks, len(raw))
	for token, rank := range raw {
		ranks[ByteSequence(token)] = rank
	}
	klog.V(2).InfoS("loaded embedded rank file", "resource", resource, "entries", len(ranks), "elapsed", time.Since(start))
	return ranks, nil
}

// FSLoader parses rank files read from a filesystem.
type FSLoader struct {
	fsys fs.FS
}

// NewFSLoader creates a loader reading "<resource>" from fsys.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// NewDirLoader creates a loader reading rank files from a local directory.
func NewDirLoader(dir string) *FSLoader {
	return NewFSLoader(os.DirFS(dir))
}

func (l *FSLoader) LoadRanks(resource string) (Ranks, error) {
	f, err := l.fsys.Open(resource)
	if err != nil {
		return nil, ErrRankFileUnavailable{Resource: resource, Err: err}
	}
	defer f.Close()

	ranks, err := ParseRanks(resource, f)
	if err != nil {
		return nil, err
	}
	klog.V(2).InfoS("loaded rank file", "resource", resource, "entries", len(ranks))
	return ranks, nil
}
