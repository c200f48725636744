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
	"log/slog"
	"sync"

	"github.com/Jigsaw-Code/tlsmutate/handshake"
	"github.com/Jigsaw-Code/tlsmutate/wire"
)

// DamageIncrement is added, modulo 256, to the byte a [Damager] corrupts.
const DamageIncrement = 73

// Truncator shortens the payload of every extension of type t to at most maxLen bytes.
func Truncator(t handshake.ExtensionType, maxLen int) Filter {
	maxLen = max(maxLen, 0)
	return NewExtensionFilter(func(et handshake.ExtensionType, payload []byte) Verdict {
		if et != t || len(payload) <= maxLen {
			return Keep()
		}
		return Change(append([]byte(nil), payload[:maxLen]...))
	})
}

// Damager adds [DamageIncrement] to the byte at index in the payload of every extension of type t. Extensions whose
// payload is too short to have that byte are kept as they are.
func Damager(t handshake.ExtensionType, index int) Filter {
	return NewExtensionFilter(func(et handshake.ExtensionType, payload []byte) Verdict {
		if et != t {
			return Keep()
		}
		if index < 0 || index >= len(payload) {
			slog.Debug("extfilter: damage index out of range", "extension", t, "index", index, "len", len(payload))
			return Keep()
		}
		out := append([]byte(nil), payload...)
		out[index] += DamageIncrement
		return Change(out)
	})
}

type replacer struct {
	t    handshake.ExtensionType
	data []byte
}

// Replacer replaces the payload of the first extension of type t in each message with data. data may be empty.
// Later extensions of the same type are kept.
func Replacer(t handshake.ExtensionType, data []byte) Filter {
	return &replacer{t: t, data: append([]byte{}, data...)}
}

func (f *replacer) FilterHandshake(h handshake.Header, msg []byte) Verdict {
	done := false
	return FilterExtensions(h, msg, func(et handshake.ExtensionType, payload []byte) Verdict {
		if et != f.t || done {
			return Keep()
		}
		done = true
		return Change(f.data)
	})
}

// Dropper removes every extension of type t.
func Dropper(t handshake.ExtensionType) Filter {
	return NewExtensionFilter(func(et handshake.ExtensionType, payload []byte) Verdict {
		if et != t {
			return Keep()
		}
		return Drop()
	})
}

// CaptureFilter records the payload of an extension type without changing anything. Create it with [Capture].
// It is safe to read the capture from another goroutine than the one running the handshake.
type CaptureFilter struct {
	t handshake.ExtensionType

	mu       sync.Mutex
	captured *wire.Buffer
}

// Capture returns a filter that remembers the most recent payload of an extension of type t.
func Capture(t handshake.ExtensionType) *CaptureFilter {
	return &CaptureFilter{t: t}
}

// Type returns the extension type being captured.
func (f *CaptureFilter) Type() handshake.ExtensionType {
	return f.t
}

// FilterHandshake implements [Filter]. It always returns [ActionKeep].
func (f *CaptureFilter) FilterHandshake(h handshake.Header, msg []byte) Verdict {
	FilterExtensions(h, msg, f.decide)
	return Keep()
}

func (f *CaptureFilter) decide(t handshake.ExtensionType, payload []byte) Verdict {
	if t == f.t {
		f.mu.Lock()
		f.captured = wire.NewBuffer(payload)
		f.mu.Unlock()
	}
	return Keep()
}

// Captured returns a copy of the last captured payload, and false if no matching extension has been seen.
func (f *CaptureFilter) Captured() (*wire.Buffer, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.captured == nil {
		return nil, false
	}
	return f.captured.Clone(), true
}

type injector struct {
	t    handshake.ExtensionType
	data []byte
}

// Injector inserts an extension of type t with payload data as the first extension of every hello message. It does
// not check for an existing extension of the same type, so it can be used to send duplicates.
//
// Only the extensions length field is updated. Messages without an extensions block, and messages whose
// extensions would no longer fit that field, are kept.
func Injector(t handshake.ExtensionType, data []byte) Filter {
	return &injector{t: t, data: append([]byte{}, data...)}
}

func (f *injector) FilterHandshake(h handshake.Header, msg []byte) Verdict {
	c := wire.NewCursor(msg)
	if !handshake.LocateExtensions(c, h) {
		return Keep()
	}
	lengthOffset := c.Consumed()
	out := wire.NewBuffer(msg)
	var total uint32
	if !out.Read(lengthOffset, 2, &total) {
		return Keep()
	}
	newTotal := int(total) + len(f.data) + 4
	if newTotal > maxExtensionsLen {
		slog.Debug("extfilter: injected extension does not fit", "extension", f.t, "len", newTotal)
		return Keep()
	}
	record, ok := encodeExtension(f.t, f.data)
	if !ok {
		return Keep()
	}
	out.WriteUint(lengthOffset, uint32(newTotal), 2)
	out.Splice(record, lengthOffset+2)
	slog.Debug("extfilter: inject extension", "header", h, "extension", f.t, "len", len(f.data))
	return Change(out.Bytes())
}

var (
	_ Filter = (*injector)(nil)
	_ Filter = (*CaptureFilter)(nil)
)
