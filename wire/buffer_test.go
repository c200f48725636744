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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferNewBufferCopies(t *testing.T) {
	src := []byte{1, 2, 3}
	b := NewBuffer(src)
	src[0] = 9
	require.Equal(t, []byte{1, 2, 3}, b.Bytes())
	require.Equal(t, 3, b.Len())
}

func TestBufferZeroValue(t *testing.T) {
	var b Buffer
	require.Equal(t, 0, b.Len())
	require.Empty(t, b.Bytes())

	var nilBuf *Buffer
	require.Equal(t, 0, nilBuf.Len())
	require.Nil(t, nilBuf.Bytes())
	require.True(t, nilBuf.Equal(&b))
}

func TestBufferAllocate(t *testing.T) {
	b := NewBuffer([]byte{1, 2})
	b.Allocate(4)
	require.Equal(t, []byte{0, 0, 0, 0}, b.Bytes())
}

func TestBufferWrite(t *testing.T) {
	var b Buffer
	b.Allocate(4)
	off := b.Write(1, []byte{0xaa, 0xbb})
	require.Equal(t, 3, off)
	require.Equal(t, []byte{0, 0xaa, 0xbb, 0}, b.Bytes())

	off = b.Write(3, []byte{0xcc, 0xdd, 0xee})
	require.Equal(t, 6, off)
	require.Equal(t, []byte{0, 0xaa, 0xbb, 0xcc, 0xdd, 0xee}, b.Bytes())
}

func TestBufferWriteUint(t *testing.T) {
	var b Buffer
	off := b.WriteUint(0, 0x1234, 2)
	off = b.WriteUint(off, 0xab, 1)
	off = b.WriteUint(off, 0x010203, 3)
	off = b.WriteUint(off, 0xdeadbeef, 4)
	require.Equal(t, 10, off)
	require.Equal(t, []byte{0x12, 0x34, 0xab, 0x01, 0x02, 0x03, 0xde, 0xad, 0xbe, 0xef}, b.Bytes())

	// Only the low bytes are kept.
	b.WriteUint(0, 0x10203, 2)
	require.Equal(t, []byte{0x02, 0x03}, b.Bytes()[:2])

	require.Panics(t, func() { b.WriteUint(0, 1, 0) })
	require.Panics(t, func() { b.WriteUint(0, 1, 5) })
}

func TestBufferRead(t *testing.T) {
	b := NewBuffer([]byte{0x00, 0x04, 0x06, 0x01})
	var v uint32
	require.True(t, b.Read(0, 2, &v))
	require.Equal(t, uint32(4), v)
	require.True(t, b.Read(2, 1, &v))
	require.Equal(t, uint32(6), v)
	require.False(t, b.Read(3, 2, &v))
	require.False(t, b.Read(-1, 1, &v))
	require.False(t, b.Read(0, 0, &v))
	require.Equal(t, uint32(6), v)
}

func TestBufferNegativeOffset(t *testing.T) {
	b := NewBuffer([]byte{1, 2, 3})
	require.PanicsWithValue(t, "wire: negative offset -1", func() { b.Write(-1, []byte{9}) })
	require.PanicsWithValue(t, "wire: negative offset -1", func() { b.WriteUint(-1, 9, 1) })
	require.PanicsWithValue(t, "wire: negative offset -2", func() { b.Splice([]byte{9}, -2) })
	var v uint32
	require.False(t, b.Read(-1, 1, &v))
	require.Equal(t, []byte{1, 2, 3}, b.Bytes())
}

func TestBufferSplice(t *testing.T) {
	b := NewBuffer([]byte{1, 2, 5, 6})
	b.Splice([]byte{3, 4}, 2)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, b.Bytes())

	b.Splice([]byte{0}, 0)
	require.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6}, b.Bytes())

	b.Splice([]byte{7}, b.Len())
	require.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7}, b.Bytes())

	b.Splice([]byte{9}, 10)
	require.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 0, 0, 9}, b.Bytes())
}

func TestBufferSpliceDoesNotAlias(t *testing.T) {
	orig := NewBuffer([]byte{1, 2, 3})
	view := orig.Bytes()
	orig.Splice([]byte{9}, 1)
	require.Equal(t, []byte{1, 2, 3}, view)
	require.Equal(t, []byte{1, 9, 2, 3}, orig.Bytes())
}

func TestBufferAppendTruncate(t *testing.T) {
	var b Buffer
	b.Append([]byte{1, 2, 3})
	b.Append(nil)
	b.Append([]byte{4})
	require.Equal(t, []byte{1, 2, 3, 4}, b.Bytes())

	b.Truncate(10)
	require.Equal(t, 4, b.Len())
	b.Truncate(2)
	require.Equal(t, []byte{1, 2}, b.Bytes())
	b.Truncate(-1)
	require.Equal(t, 0, b.Len())
}

func TestBufferEqualClone(t *testing.T) {
	a := NewBuffer([]byte{1, 2, 3})
	c := a.Clone()
	require.True(t, a.Equal(c))
	c.Write(0, []byte{9})
	require.False(t, a.Equal(c))
	require.Equal(t, []byte{1, 2, 3}, a.Bytes())
	require.True(t, NewBuffer(nil).Equal(&Buffer{}))
}

func TestBufferString(t *testing.T) {
	require.Equal(t, "[3] 0a0b0c", NewBuffer([]byte{0x0a, 0x0b, 0x0c}).String())
}
