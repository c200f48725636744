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

package tlsmutate

import (
	"bytes"
	"errors"
	"io"
	"log/slog"

	"github.com/Jigsaw-Code/tlsmutate/extfilter"
	"github.com/Jigsaw-Code/tlsmutate/handshake"
	"golang.org/x/crypto/cryptobyte"
)

// TLS record layout from [RFC 8446]:
//
//	+-------------+ 0
//	| RecordType  |
//	+-------------+ 1
//	|  Protocol   |
//	|  Version    |
//	+-------------+ 3
//	|   Record    |
//	|   Length    |
//	+-------------+ 5
//	|   Message   |
//	|    Data     |
//	|     ...     |
//	+-------------+ Message Length + 5
//
// Handshake messages inside a record have a 1-byte type and a 3-byte length.
//
// [RFC 8446]: https://datatracker.ietf.org/doc/html/rfc8446#section-5.1
const (
	recordHeaderLen     = 5
	maxRecordPayloadLen = 1 << 14

	recordTypeChangeCipherSpec = 20
	recordTypeHandshake        = 22
)

var changeCipherSpecPayload = []byte{1}

// mutateWriter runs the handshake messages written to it through a filter before passing them to base.
//
// It has three states:
//   - H: collecting complete plaintext handshake records, filtering each message in them and writing the result
//   - C: a ChangeCipherSpec has been sent; only a record holding exactly one ClientHello or ServerHello is still
//     filtered, as in the second flight of a TLS 1.3 HelloRetryRequest exchange
//   - T: forwarding everything without modification
//
// H -> C happens at a ChangeCipherSpec record. H -> T and C -> T happen at any other record that is not a handshake
// record, at a record that is not well formed, or at a handshake message split across records. In C, a handshake
// record that is not a lone hello is taken to be encrypted and also moves to T. Bytes of an incomplete record stay
// buffered until the rest arrives.
type mutateWriter struct {
	base      io.Writer
	filter    extfilter.Filter
	done      bool
	cipherSet bool
	buf       []byte
}

var _ io.Writer = (*mutateWriter)(nil)

func newMutateWriter(base io.Writer, filter extfilter.Filter) (*mutateWriter, error) {
	if base == nil {
		return nil, errors.New("base writer must not be nil")
	}
	if filter == nil {
		return nil, errors.New("filter must not be nil")
	}
	return &mutateWriter{base: base, filter: filter}, nil
}

// Write implements io.Writer.Write. On success it reports len(p), whatever the size of the rewritten output.
func (w *mutateWriter) Write(p []byte) (int, error) {
	// T
	if w.done {
		return w.base.Write(p)
	}

	// H
	w.buf = append(w.buf, p...)
	out := w.process()
	if len(out) == 0 {
		return len(p), nil
	}
	if _, err := w.base.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

// process consumes the complete records in w.buf and returns the bytes to send.
func (w *mutateWriter) process() []byte {
	var out []byte
	s := cryptobyte.String(w.buf)
	for !w.done {
		rest := s
		var contentType uint8
		var version uint16
		var payload cryptobyte.String
		if !rest.ReadUint8(&contentType) || !rest.ReadUint16(&version) || !rest.ReadUint16LengthPrefixed(&payload) {
			// Incomplete record, unless the length is already known to be bad.
			if len(s) >= recordHeaderLen && int(s[3])<<8|int(s[4]) > maxRecordPayloadLen {
				slog.Debug("tlsmutate: oversized record, pass through")
				w.done = true
			}
			break
		}
		record := s[:len(s)-len(rest)]
		if contentType == recordTypeChangeCipherSpec && bytes.Equal(payload, changeCipherSpecPayload) {
			// C
			w.cipherSet = true
			out = append(out, record...)
			s = rest
			continue
		}
		if contentType != recordTypeHandshake || len(payload) == 0 || len(payload) > maxRecordPayloadLen {
			slog.Debug("tlsmutate: end of plaintext handshake, pass through", "record_type", contentType)
			w.done = true
			break
		}
		if w.cipherSet && !isSingleHello(payload) {
			slog.Debug("tlsmutate: handshake record after ChangeCipherSpec, pass through")
			w.done = true
			break
		}
		out = append(out, w.filterRecord(contentType, version, record, payload)...)
		s = rest
	}
	if w.done {
		out = append(out, s...)
		w.buf = nil
		return out
	}
	w.buf = append(w.buf[:0], s...)
	return out
}

// filterRecord returns the record with every handshake message in it run through the filter, or the original
// record if nothing changed or the result cannot be framed.
func (w *mutateWriter) filterRecord(contentType uint8, version uint16, record, payload []byte) []byte {
	s := cryptobyte.String(payload)
	var messages cryptobyte.Builder
	changed := false
	for !s.Empty() {
		var msgType uint8
		var body cryptobyte.String
		if !s.ReadUint8(&msgType) || !s.ReadUint24LengthPrefixed(&body) {
			slog.Debug("tlsmutate: handshake message spans records, pass through")
			w.done = true
			return record
		}
		h := handshake.Header{Type: handshake.Type(msgType)}
		if len(body) >= 2 {
			h.Version = uint16(body[0])<<8 | uint16(body[1])
		}
		v := w.filter.FilterHandshake(h, body)
		if v.Action == extfilter.ActionChange {
			body = v.Data
			changed = true
		}
		messages.AddUint8(msgType)
		messages.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(body)
		})
	}
	if !changed {
		return record
	}

	msgs, err := messages.Bytes()
	if err != nil || len(msgs) > maxRecordPayloadLen {
		slog.Debug("tlsmutate: rewritten record does not fit, sending original", "len", len(msgs), "err", err)
		return record
	}
	var b cryptobyte.Builder
	b.AddUint8(contentType)
	b.AddUint16(version)
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(msgs)
	})
	return b.BytesOrPanic()
}

// isSingleHello reports whether payload is exactly one complete ClientHello or ServerHello message.
func isSingleHello(payload []byte) bool {
	s := cryptobyte.String(payload)
	var msgType uint8
	var body cryptobyte.String
	if !s.ReadUint8(&msgType) || !s.ReadUint24LengthPrefixed(&body) || !s.Empty() {
		return false
	}
	t := handshake.Type(msgType)
	return t == handshake.TypeClientHello || t == handshake.TypeServerHello
}
