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

package extfilter

import (
	"encoding/hex"
	"log/slog"

	"github.com/Jigsaw-Code/tlsmutate/handshake"
	"github.com/Jigsaw-Code/tlsmutate/wire"
	"golang.org/x/crypto/cryptobyte"
)

// maxExtensionsLen is the largest value the 2-byte extensions length field can hold.
const maxExtensionsLen = 0xffff

// DecideFunc decides the fate of one extension. payload is owned by the caller for the duration of the call; a
// [ActionChange] verdict must carry its own slice.
type DecideFunc func(t handshake.ExtensionType, payload []byte) Verdict

// FilterExtensions rebuilds the extensions block of a ClientHello or ServerHello body, asking decide about each
// extension in order.
//
// The message is returned unchanged ([ActionKeep]) when it is not a hello, has no extensions, declares an
// extensions length that does not match the bytes that follow, contains a truncated record, or when the rebuilt
// block would not fit its 16-bit length fields. Otherwise, if decide dropped or changed anything, the result is
// [ActionChange] with a new body whose extensions length matches the rebuilt records.
func FilterExtensions(h handshake.Header, msg []byte, decide DecideFunc) Verdict {
	c := wire.NewCursor(msg)
	if !handshake.LocateExtensions(c, h) {
		return Keep()
	}
	lengthOffset := c.Consumed()
	var total uint32
	if !c.Read(&total, 2) || int(total) != c.Remaining() {
		return Keep()
	}

	var out wire.Buffer
	out.Allocate(len(msg))
	pos := out.Write(0, msg[:c.Consumed()])
	changed := false
	for !c.Empty() {
		var code uint32
		var payload wire.Buffer
		if !c.Read(&code, 2) || !c.ReadVariable(&payload, 2) {
			return Keep()
		}
		t := handshake.ExtensionType(code)
		data := payload.Bytes()

		switch v := decide(t, data); v.Action {
		case ActionDrop:
			slog.Debug("extfilter: drop extension", "header", h, "extension", t, "payload", hex.EncodeToString(data))
			changed = true
			continue
		case ActionChange:
			slog.Debug("extfilter: change extension", "header", h, "extension", t,
				"old", hex.EncodeToString(data), "new", hex.EncodeToString(v.Data))
			data = v.Data
			changed = true
		}

		record, ok := encodeExtension(t, data)
		if !ok {
			slog.Debug("extfilter: extension payload too long", "extension", t, "len", len(data))
			return Keep()
		}
		pos = out.Write(pos, record)
	}
	if !changed {
		return Keep()
	}

	out.Truncate(pos)
	newTotal := out.Len() - lengthOffset - 2
	if newTotal > maxExtensionsLen {
		slog.Debug("extfilter: extensions block too long", "header", h, "len", newTotal)
		return Keep()
	}
	out.WriteUint(lengthOffset, uint32(newTotal), 2)
	return Change(out.Bytes())
}

// encodeExtension returns the type, length and payload record. It fails if payload does not fit the 2-byte length.
func encodeExtension(t handshake.ExtensionType, payload []byte) ([]byte, bool) {
	var b cryptobyte.Builder
	b.AddUint16(uint16(t))
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(payload)
	})
	record, err := b.Bytes()
	return record, err == nil
}

type extensionFilter struct {
	decide DecideFunc
}

// NewExtensionFilter returns a [Filter] that runs [FilterExtensions] with decide on every message.
func NewExtensionFilter(decide DecideFunc) Filter {
	return &extensionFilter{decide: decide}
}

func (f *extensionFilter) FilterHandshake(h handshake.Header, msg []byte) Verdict {
	return FilterExtensions(h, msg, f.decide)
}
