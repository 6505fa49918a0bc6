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
	"fmt"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/encoding/charmap"
)

// SpecialSet is a set of special token literals a caller allows Encode to emit.
// A nil set allows nothing.
type SpecialSet map[string]struct{}

func NewSpecialSet(literals ...string) SpecialSet {
	s := make(SpecialSet, len(literals))
	for _, l := range literals {
		s[l] = struct{}{}
	}
	return s
}

func (s SpecialSet) Contains(literal string) bool {
	_, ok := s[literal]
	return ok
}

// Tokenizer encodes text to token ids and back for one encoding. It is
// immutable after construction and safe for concurrent use.
type Tokenizer struct {
	encoding *Encoding

	encoder        Ranks
	decoder        map[int]ByteSequence
	specialEncoder map[string]int
	specialDecoder map[int]ByteSequence
	specialPattern *regexp2.Regexp
	maxTokenID     int
}

// NewTokenizer builds the engine for enc, loading its ranks if needed. It
// fails if the rank table is not a valid byte-level vocabulary.
func NewTokenizer(enc *Encoding) (*Tokenizer, error) {
	ranks, err := enc.MergeableRanks()
	if err != nil {
		return nil, err
	}

	maxTokenID := -1
	decoder := make(map[int]ByteSequence, len(ranks))
	for token, rank := range ranks {
		if prev, ok := decoder[rank]; ok {
			return nil, ErrInvalidVocabulary{
				Encoding: enc.name,
				Message:  fmt.Sprintf("rank %d assigned to both %q and %q", rank, prev, token),
			}
		}
		decoder[rank] = token
		maxTokenID = max(maxTokenID, rank)
	}

	for b := 0; b < 256; b++ {
		if _, ok := ranks[ByteSequence([]byte{byte(b)})]; !ok {
			return nil, ErrInvalidVocabulary{
				Encoding: enc.name,
				Message:  fmt.Sprintf("missing single byte token 0x%02x", b),
			}
		}
	}

	// Special token bytes are the Latin-1 encoding of the literal.
	latin1 := charmap.ISO8859_1.NewEncoder()
	specialDecoder := make(map[int]ByteSequence, len(enc.specialTokens))
	literals := make([]string, 0, len(enc.specialTokens))
	for literal, id := range enc.specialTokens {
		if _, ok := decoder[id]; ok {
			return nil, ErrInvalidVocabulary{
				Encoding: enc.name,
				Message:  fmt.Sprintf("special token %q reuses rank %d", literal, id),
			}
		}
		if _, ok := specialDecoder[id]; ok {
			return nil, ErrInvalidVocabulary{
				Encoding: enc.name,
				Message:  fmt.Sprintf("special token id %d assigned twice", id),
			}
		}
		raw, err := latin1.Bytes([]byte(literal))
		if err != nil {
			return nil, ErrInvalidVocabulary{
				Encoding: enc.name,
				Message:  fmt.Sprintf("special token %q is not Latin-1: %v", literal, err),
			}
		}
		specialDecoder[id] = NewByteSequence(raw)
		literals = append(literals, literal)
		maxTokenID = max(maxTokenID, id)
	}

	t := &Tokenizer{
		encoding:       enc,
		encoder:        ranks,
		decoder:        decoder,
		specialEncoder: enc.specialTokens,
		specialDecoder: specialDecoder,
		maxTokenID:     maxTokenID,
	}

	if len(literals) > 0 {
		// Longest literal first so a special that prefixes another never shadows it.
		sort.Slice(literals, func(i, j int) bool {
			if len(literals[i]) != len(literals[j]) {
				return len(literals[i]) > len(literals[j])
			}
			return literals[i] < literals[j]
		})
		quoted := make([]string, len(literals))
		for i, l := range literals {
			quoted[i] = regexp2.Escape(l)
		}
		re, err := regexp2.Compile(strings.Join(quoted, "|"), regexp2.None)
		if err != nil {
			return nil, ErrInvalidVocabulary{Encoding: enc.name, Message: fmt.Sprintf("special token pattern: %v", err)}
		}
		t.specialPattern = re
	}

	return t, nil
}

// Encoding returns the encoding this engine was built from.
func (t *Tokenizer) Encoding() *Encoding {
	return t.encoding
}

// AllSpecial returns a set allowing every special token of the encoding.
func (t *Tokenizer) AllSpecial() SpecialSet {
	s := make(SpecialSet, len(t.specialEncoder))
	for literal := range t.specialEncoder {
		s[literal] = struct{}{}
	}
	return s
}

func (t *Tokenizer) SpecialTokenID(literal string) (int, bool) {
	id, ok := t.specialEncoder[literal]
	return id, ok
}

func (t *Tokenizer) IsSpecial(token int) bool {
	_, ok := t.specialDecoder[token]
	return ok
}

// NVocab is one more than the largest token id, ordinary or special.
func (t *Tokenizer) NVocab() int {
	return t.maxTokenID + 1
}

// EncodeOrdinary encodes text treating special token literals as plain text.
func (t *Tokenizer) EncodeOrdinary(text string) []int {
	return t.Encode(text, nil)
}

// CountTokens returns len(EncodeOrdinary(text)).
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.EncodeOrdinary(text))
}

// Encode converts text to token ids. Occurrences of special token literals in
// allowedSpecial are emitted as their reserved ids; every other byte of text
// goes through pre-segmentation and byte pair merging.
func (t *Tokenizer) Encode(text string, allowedSpecial SpecialSet) []int {
	runes, offsets := splitRunes(text)
	tokens := make([]int, 0, len(text)/4+1)

	start := 0
	for {
		specialStart, specialEnd := -1, -1
		if t.specialPattern != nil && len(allowedSpecial) > 0 {
			for startFind := start; startFind <= len(runes); {
				m, _ := t.specialPattern.FindRunesMatchStartingAt(runes, startFind)
				if m == nil {
					break
				}
				if allowedSpecial.Contains(m.String()) {
					specialStart, specialEnd = m.Index, m.Index+m.Length
					break
				}
				// Not allowed: resume one character after the candidate's start.
				// Quadratic in the number of rejected near-matches. A single
				// pass can pick a different match when specials overlap.
				startFind = m.Index + 1
			}
		}

		end := len(runes)
		if specialStart >= 0 {
			end = specialStart
		}
		tokens = t.encodeSegment(text, runes, offsets, start, end, tokens)

		if specialStart < 0 {
			break
		}
		literal := text[offsets[specialStart]:offsets[specialEnd]]
		tokens = append(tokens, t.specialEncoder[literal])
		start = specialEnd
	}
	return tokens
}

// encodeSegment encodes runes[start:end], which contains no allowed special token.
func (t *Tokenizer) encodeSegment(text string, runes []rune, offsets []int, start, end int, tokens []int) []int {
	if start >= end {
		return tokens
	}
	// Matching on the subslice keeps lookahead from seeing past the segment.
	m, _ := t.encoding.pattern.FindRunesMatch(runes[start:end])
	for m != nil {
		pieceStart := start + m.Index
		pieceEnd := pieceStart + m.Length
		piece := ByteSequence(text[offsets[pieceStart]:offsets[pieceEnd]])
		if rank, ok := t.encoder[piece]; ok {
			tokens = append(tokens, rank)
		} else {
			tokens = append(tokens, BytePairEncode(piece, t.encoder)...)
		}
		m, _ = t.encoding.pattern.FindNextMatch(m)
	}
	return tokens
}

// splitRunes returns the runes of text and the byte offset of each rune, with
// a final entry equal to len(text). Invalid UTF-8 bytes each become one rune.
func splitRunes(text string) ([]rune, []int) {
	runes := make([]rune, 0, len(text))
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		runes = append(runes, r)
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	return runes, offsets
}

// DecodeToken returns the bytes of a single token.
func (t *Tokenizer) DecodeToken(token int) (ByteSequence, error) {
	if b, ok := t.decoder[token]; ok {
		return b, nil
	}
	if b, ok := t.specialDecoder[token]; ok {
		return b, nil
	}
	return "", ErrUnknownToken{Token: token}
}

// DecodeBytes concatenates the bytes of every token. It fails on the first
// id that belongs to neither the ranks nor the special tokens.
func (t *Tokenizer) DecodeBytes(tokens []int) ([]byte, error) {
	out := make([]byte, 0, len(tokens)*4)
	for _, token := range tokens {
		b, err := t.DecodeToken(token)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// Decode converts tokens back to text. The bytes are joined before conversion
// because one character may span several tokens. Invalid UTF-8 is kept as is.
func (t *Tokenizer) Decode(tokens []int) (string, error) {
	b, err := t.DecodeBytes(tokens)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
