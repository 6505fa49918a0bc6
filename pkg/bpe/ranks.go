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
	"bufio"
	"encoding/base64"
	"io"
	"strconv"
	"strings"
)

// Ranks maps a mergeable byte sequence to its rank. The rank is both the token
// id and the merge priority: lower ranks merge first.
type Ranks map[ByteSequence]int

// maxRankLine bounds a single line of a rank file.
const maxRankLine = 1 << 20

// ParseRanks reads a rank file: one "<base64 bytes> <decimal rank>" entry per
// line, blank lines ignored. Any malformed line fails the whole parse.
func ParseRanks(resource string, r io.Reader) (Ranks, error) {
	ranks := make(Ranks)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRankLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		encoded, rankText, ok := strings.Cut(line, " ")
		if !ok {
			return nil, ErrMalformedRankFile{Resource: resource, Line: lineNo, Reason: "missing separator"}
		}
		if strings.Contains(rankText, " ") {
			return nil, ErrMalformedRankFile{Resource: resource, Line: lineNo, Reason: "unexpected extra field"}
		}

		token, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, ErrMalformedRankFile{Resource: resource, Line: lineNo, Reason: "invalid base64 token", Err: err}
		}
		rank, err := strconv.Atoi(rankText)
		if err != nil {
			return nil, ErrMalformedRankFile{Resource: resource, Line: lineNo, Reason: "invalid rank", Err: err}
		}
		if rank < 0 {
			return nil, ErrMalformedRankFile{Resource: resource, Line: lineNo, Reason: "negative rank " + rankText}
		}
		ranks[NewByteSequence(token)] = rank
	}
	if err := scanner.Err(); err != nil {
		return nil, ErrMalformedRankFile{Resource: resource, Reason: "read failed", Err: err}
	}
	return ranks, nil
}
