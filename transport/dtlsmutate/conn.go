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

package dtlsmutate

import (
	"errors"
	"log/slog"
	"net"

	"github.com/Jigsaw-Code/tlsmutate/extfilter"
	"github.com/Jigsaw-Code/tlsmutate/handshake"
	"golang.org/x/crypto/cryptobyte"
)

// DTLS record layout from [RFC 6347]:
//
//	+-------------+ 0
//	| RecordType  |
//	+-------------+ 1
//	|  Version    |
//	+-------------+ 3
//	|   Epoch     |
//	+-------------+ 5
//	|  Sequence   |
//	|  Number     |
//	+-------------+ 11
//	|   Length    |
//	+-------------+ 13
//	|  Fragment   |
//	+-------------+
//
// Handshake messages carry a 12-byte header: type(1), length(3), message_seq(2), fragment_offset(3) and
// fragment_length(3).
//
// [RFC 6347]: https://datatracker.ietf.org/doc/html/rfc6347#section-4.1
const (
	sequenceLen = 6

	maxRecordPayloadLen = 1 << 14
	maxMessageLen       = 1<<24 - 1

	recordTypeHandshake = 22
)

type mutateConn struct {
	net.Conn
	filter extfilter.Filter
}

var _ net.Conn = (*mutateConn)(nil)

// WrapConn wraps a datagram connection so that the plaintext handshake messages in each datagram written to it are
// filtered. Every Write must carry exactly one datagram. Reads are not affected.
func WrapConn(base net.Conn, filter extfilter.Filter) (net.Conn, error) {
	if base == nil {
		return nil, errors.New("base connection must not be nil")
	}
	if filter == nil {
		return nil, errors.New("filter must not be nil")
	}
	return &mutateConn{Conn: base, filter: filter}, nil
}

// Write implements [net.Conn].Write. On success it reports len(p), whatever the size of the datagram sent.
func (c *mutateConn) Write(p []byte) (int, error) {
	if _, err := c.Conn.Write(FilterDatagram(c.filter, p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// FilterDatagram runs the unfragmented handshake messages in the epoch 0 records of datagram through filter and
// returns the datagram to send. A datagram that is not a well formed sequence of DTLS records is returned unchanged.
func FilterDatagram(filter extfilter.Filter, datagram []byte) []byte {
	s := cryptobyte.String(datagram)
	var b cryptobyte.Builder
	changed := false
	for !s.Empty() {
		var contentType uint8
		var version, epoch uint16
		var sequence []byte
		var payload cryptobyte.String
		if !s.ReadUint8(&contentType) || !s.ReadUint16(&version) || !s.ReadUint16(&epoch) ||
			!s.ReadBytes(&sequence, sequenceLen) || !s.ReadUint16LengthPrefixed(&payload) {
			slog.Debug("dtlsmutate: malformed datagram, sending unchanged", "len", len(datagram))
			return datagram
		}
		if contentType == recordTypeHandshake && epoch == 0 {
			if msgs, ok := filterRecord(filter, payload); ok {
				payload = msgs
				changed = true
			}
		}
		b.AddUint8(contentType)
		b.AddUint16(version)
		b.AddUint16(epoch)
		b.AddBytes(sequence)
		b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(payload)
		})
	}
	if !changed {
		return datagram
	}
	out, err := b.Bytes()
	if err != nil {
		slog.Debug("dtlsmutate: rewritten datagram does not fit, sending unchanged", "err", err)
		return datagram
	}
	return out
}

// filterRecord returns the rewritten messages of a handshake record, and false if nothing changed or the record
// cannot be rewritten.
func filterRecord(filter extfilter.Filter, payload []byte) ([]byte, bool) {
	s := cryptobyte.String(payload)
	var b cryptobyte.Builder
	changed := false
	for !s.Empty() {
		var msgType uint8
		var length, offset, fragmentLength uint32
		var seq uint16
		var body []byte
		if !s.ReadUint8(&msgType) || !s.ReadUint24(&length) || !s.ReadUint16(&seq) || !s.ReadUint24(&offset) ||
			!s.ReadUint24(&fragmentLength) || !s.ReadBytes(&body, int(fragmentLength)) {
			return nil, false
		}
		if offset == 0 && fragmentLength == length {
			h := handshake.Header{Type: handshake.Type(msgType), Datagram: true}
			if len(body) >= 2 {
				h.Version = uint16(body[0])<<8 | uint16(body[1])
			}
			v := filter.FilterHandshake(h, body)
			if v.Action == extfilter.ActionChange {
				if len(v.Data) > maxMessageLen {
					return nil, false
				}
				body = v.Data
				length = uint32(len(body))
				changed = true
			}
		}
		b.AddUint8(msgType)
		b.AddUint24(length)
		b.AddUint16(seq)
		b.AddUint24(offset)
		b.AddUint24(uint32(len(body)))
		b.AddBytes(body)
	}
	if !changed {
		return nil, false
	}
	out, err := b.Bytes()
	if err != nil || len(out) > maxRecordPayloadLen {
		slog.Debug("dtlsmutate: rewritten record does not fit, sending original", "len", len(out), "err", err)
		return nil, false
	}
	return out, true
}
