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

import "math"

// noRank marks a cut whose two-ahead range is not in the rank table.
const noRank = math.MaxInt

// cut is a boundary inside a piece. rank caches the rank of the byte range
// from this cut to the cut two positions ahead.
type cut struct {
	start int
	rank  int
}

// BytePairMerge runs the greedy BPE merge over piece and maps every resulting
// byte range [start, end) through f, left to right.
//
// The lowest rank merges first; equal ranks resolve to the leftmost cut.
func BytePairMerge[T any](piece ByteSequence, ranks Ranks, f func(start, end int) T) []T {
	cuts := make([]cut, len(piece)+1)
	for i := range cuts {
		cuts[i] = cut{start: i, rank: noRank}
	}

	rankAt := func(i int) int {
		if i+2 < len(cuts) {
			if rank, ok := ranks[piece[cuts[i].start:cuts[i+2].start]]; ok {
				return rank
			}
		}
		return noRank
	}

	for i := 0; i < len(cuts)-2; i++ {
		cuts[i].rank = rankAt(i)
	}

	for len(cuts) > 2 {
		minRank, minIdx := noRank, -1
		for i := 0; i < len(cuts)-1; i++ {
			if cuts[i].rank < minRank {
				minRank, minIdx = cuts[i].rank, i
			}
		}
		if minIdx < 0 {
			break
		}

		cuts = append(cuts[:minIdx+1], cuts[minIdx+2:]...)
		cuts[minIdx].rank = rankAt(minIdx)
		if minIdx > 0 {
			cuts[minIdx-1].rank = rankAt(minIdx - 1)
		}
	}

	out := make([]T, len(cuts)-1)
	for i := range out {
		out[i] = f(cuts[i].start, cuts[i+1].start)
	}
	return out
}

// BytePairEncode returns the ranks of the merged ranges of piece. Every range
// left by the merge is a single byte or a ranked sequence, so the lookup
// always succeeds for a vocabulary that covers all 256 single bytes.
func BytePairEncode(piece ByteSequence, ranks Ranks) []int {
	if len(piece) == 1 {
		return []int{ranks[piece]}
	}
	return BytePairMerge(piece, ranks, func(start, end int) int {
		return ranks[piece[start:end]]
	})
}

// BytePairSplit returns the byte sequences the merge leaves for piece.
func BytePairSplit(piece ByteSequence, ranks Ranks) []ByteSequence {
	switch len(piece) {
	case 0:
		return nil
	case 1:
		return []ByteSequence{piece}
	}
	return BytePairMerge(piece, ranks, func(start, end int) ByteSequence {
		return piece[start:end]
	})
}
