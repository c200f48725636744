// Copyright 2025 The Outline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wire

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Buffer is an owned, resizable byte sequence. Writes past the end grow the buffer; the zero value is an empty
// buffer ready to use.
type Buffer struct {
	data []byte
}

// NewBuffer creates a [Buffer] holding a copy of b.
func NewBuffer(b []byte) *Buffer {
	buf := &Buffer{}
	buf.Assign(b)
	return buf
}

// Allocate replaces the content with n zero bytes.
func (b *Buffer) Allocate(n int) {
	b.data = make([]byte, n)
}

// Assign replaces the content with a copy of data.
func (b *Buffer) Assign(data []byte) {
	b.data = append(make([]byte, 0, len(data)), data...)
}

// Bytes returns the content. The slice aliases the buffer until the next mutation.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Write copies data at offset, growing the buffer if needed, and returns the offset just past the written bytes.
// It panics if offset is negative.
func (b *Buffer) Write(offset int, data []byte) int {
	checkOffset(offset)
	end := offset + len(data)
	b.grow(end)
	copy(b.data[offset:end], data)
	return end
}

// WriteUint writes v at offset as a width-byte big-endian integer and returns the offset just past it.
// Only the low width bytes of v are written. It panics if width is not in range 1 to 4 or offset is negative.
func (b *Buffer) WriteUint(offset int, v uint32, width int) int {
	checkOffset(offset)
	if width < 1 || width > 4 {
		panic(fmt.Sprintf("wire: invalid integer width %d", width))
	}
	b.grow(offset + width)
	for i := width - 1; i >= 0; i-- {
		b.data[offset+i] = byte(v)
		v >>= 8
	}
	return offset + width
}

// Read reads a width-byte big-endian integer at offset without changing the buffer. It fails if the integer is not
// entirely inside the buffer.
func (b *Buffer) Read(offset, width int, out *uint32) bool {
	if width < 1 || width > 4 || offset < 0 || offset+width > b.Len() {
		return false
	}
	var v uint32
	for _, c := range b.data[offset : offset+width] {
		v = v<<8 | uint32(c)
	}
	*out = v
	return true
}

// Append adds data to the end of the buffer.
func (b *Buffer) Append(data []byte) {
	b.data = append(b.data, data...)
}

// Splice inserts data at offset, moving the bytes at and after offset towards the end. If offset is past the end,
// the gap is zero-filled. It panics if offset is negative.
func (b *Buffer) Splice(data []byte, offset int) {
	checkOffset(offset)
	b.grow(offset)
	out := make([]byte, 0, len(b.data)+len(data))
	out = append(out, b.data[:offset]...)
	out = append(out, data...)
	out = append(out, b.data[offset:]...)
	b.data = out
}

// Truncate shortens the buffer to n bytes. It does nothing if the buffer is already n bytes or shorter.
func (b *Buffer) Truncate(n int) {
	if n < len(b.data) {
		b.data = b.data[:max(n, 0)]
	}
}

// Equal reports whether both buffers hold the same bytes. A nil buffer equals an empty one.
func (b *Buffer) Equal(other *Buffer) bool {
	return bytes.Equal(b.Bytes(), other.Bytes())
}

// Clone returns an independent copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	return NewBuffer(b.Bytes())
}

// String returns the content in hex, for logs and test failures.
func (b *Buffer) String() string {
	return fmt.Sprintf("[%d] %s", b.Len(), hex.EncodeToString(b.Bytes()))
}

func (b *Buffer) grow(n int) {
	if n > len(b.data) {
		b.data = append(b.data, make([]byte, n-len(b.data))...)
	}
}

func checkOffset(offset int) {
	if offset < 0 {
		panic(fmt.Sprintf("wire: negative offset %d", offset))
	}
}
