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
	"golang.org/x/crypto/cryptobyte"
)

// Cursor reads big-endian fields from a borrowed byte slice. The read position only moves forward; to start over,
// create a new Cursor over the same slice.
//
// Every read reports success as a bool. A failed read leaves the position where it was, so the caller decides what
// a short or malformed input means.
type Cursor struct {
	data []byte
	rest cryptobyte.String
}

// NewCursor creates a [Cursor] positioned at the start of b. The Cursor does not copy b.
func NewCursor(b []byte) *Cursor {
	return &Cursor{data: b, rest: cryptobyte.String(b)}
}

// Consumed returns the number of bytes read or skipped so far.
func (c *Cursor) Consumed() int {
	return len(c.data) - len(c.rest)
}

// Remaining returns the number of bytes left to read.
func (c *Cursor) Remaining() int {
	return len(c.rest)
}

// Empty reports whether all bytes have been consumed.
func (c *Cursor) Empty() bool {
	return c.rest.Empty()
}

// Skip advances the position by n bytes. It fails if fewer than n bytes remain.
func (c *Cursor) Skip(n int) bool {
	if n < 0 {
		return false
	}
	return c.rest.Skip(n)
}

// SkipVariable reads a lenWidth-byte length L and then skips L bytes.
func (c *Cursor) SkipVariable(lenWidth int) bool {
	s := c.rest
	var length uint32
	if !readUint(&s, &length, lenWidth) || !s.Skip(int(length)) {
		return false
	}
	c.rest = s
	return true
}

// Read reads a width-byte big-endian unsigned integer into out. width must be in range 1 to 4.
func (c *Cursor) Read(out *uint32, width int) bool {
	s := c.rest
	if !readUint(&s, out, width) {
		return false
	}
	c.rest = s
	return true
}

// ReadVariable reads a lenWidth-byte length L followed by L bytes, and stores a copy of those bytes in out.
func (c *Cursor) ReadVariable(out *Buffer, lenWidth int) bool {
	s := c.rest
	var length uint32
	var data []byte
	if !readUint(&s, &length, lenWidth) || !s.ReadBytes(&data, int(length)) {
		return false
	}
	out.Assign(data)
	c.rest = s
	return true
}

func readUint(s *cryptobyte.String, out *uint32, width int) bool {
	switch width {
	case 1:
		var v uint8
		if !s.ReadUint8(&v) {
			return false
		}
		*out = uint32(v)
	case 2:
		var v uint16
		if !s.ReadUint16(&v) {
			return false
		}
		*out = uint32(v)
	case 3:
		return s.ReadUint24(out)
	case 4:
		return s.ReadUint32(out)
	default:
		return false
	}
	return true
}
