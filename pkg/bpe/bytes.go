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

// ByteSequence is an immutable run of raw bytes. It compares and hashes by
// content, so it is used directly as the key of a rank table. The bytes need
// not be valid UTF-8: a vocabulary entry may hold part of a codepoint.
type ByteSequence string

// NewByteSequence copies b into a new ByteSequence.
func NewByteSequence(b []byte) ByteSequence {
	return ByteSequence(b)
}

// Len returns the number of bytes in the sequence.
func (s ByteSequence) Len() int {
	return len(s)
}

// Slice returns the bytes in [start, end) as a new sequence.
func (s ByteSequence) Slice(start, end int) ByteSequence {
	return s[start:end]
}

// Bytes returns a copy of the underlying bytes.
func (s ByteSequence) Bytes() []byte {
	return []byte(s)
}

func (s ByteSequence) String() string {
	return string(s)
}
