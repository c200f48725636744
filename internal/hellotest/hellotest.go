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

// Package hellotest builds ClientHello and ServerHello messages, and the TLS and DTLS framing around them, for
// tests.
package hellotest

import (
	"github.com/Jigsaw-Code/tlsmutate/handshake"
	"golang.org/x/crypto/cryptobyte"
)

// Extension is one extension record.
type Extension struct {
	Type handshake.ExtensionType
	Data []byte
}

// ClientHello describes a ClientHello body. Zero fields get usable defaults.
type ClientHello struct {
	Version            uint16
	Random             []byte
	SessionID          []byte
	Cookie             []byte
	Datagram           bool
	CipherSuites       []uint16
	CompressionMethods []uint8
	Extensions         []Extension
	// NoExtensions omits the extensions block, including its length.
	NoExtensions bool
}

// Marshal returns the handshake body, without the message header.
func (m ClientHello) Marshal() []byte {
	version := m.Version
	if version == 0 {
		version = handshake.VersionTLS12
		if m.Datagram {
			version = handshake.VersionDTLS12
		}
	}
	suites := m.CipherSuites
	if suites == nil {
		suites = []uint16{0x1301, 0xc02b, 0x009c}
	}
	compression := m.CompressionMethods
	if compression == nil {
		compression = []uint8{0}
	}

	var b cryptobyte.Builder
	b.AddUint16(version)
	b.AddBytes(random(m.Random))
	b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(m.SessionID) })
	if m.Datagram {
		b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(m.Cookie) })
	}
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, s := range suites {
			b.AddUint16(s)
		}
	})
	b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(compression) })
	if !m.NoExtensions {
		b.AddBytes(ExtensionsBlock(m.Extensions...))
	}
	return b.BytesOrPanic()
}

// ServerHello describes a ServerHello body. The compression method is written only when Version is TLS 1.2 or
// earlier.
type ServerHello struct {
	Version           uint16
	Random            []byte
	SessionID         []byte
	CipherSuite       uint16
	CompressionMethod uint8
	Extensions        []Extension
	NoExtensions      bool
}

// Marshal returns the handshake body, without the message header.
func (m ServerHello) Marshal() []byte {
	version := m.Version
	if version == 0 {
		version = handshake.VersionTLS12
	}
	suite := m.CipherSuite
	if suite == 0 {
		suite = 0xc02f
	}
	var b cryptobyte.Builder
	b.AddUint16(version)
	b.AddBytes(random(m.Random))
	b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(m.SessionID) })
	b.AddUint16(suite)
	if handshake.NormalizeVersion(version) <= handshake.VersionTLS12 {
		b.AddUint8(m.CompressionMethod)
	}
	if !m.NoExtensions {
		b.AddBytes(ExtensionsBlock(m.Extensions...))
	}
	return b.BytesOrPanic()
}

// ExtensionsBlock encodes the 2-byte total length followed by the extension records.
func ExtensionsBlock(exts ...Extension) []byte {
	var b cryptobyte.Builder
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, e := range exts {
			b.AddBytes(ExtensionRecord(e.Type, e.Data))
		}
	})
	return b.BytesOrPanic()
}

// ExtensionRecord encodes a single type, length and payload record.
func ExtensionRecord(t handshake.ExtensionType, data []byte) []byte {
	var b cryptobyte.Builder
	b.AddUint16(uint16(t))
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(data) })
	return b.BytesOrPanic()
}

// Message prepends the 4-byte TLS handshake header to body.
func Message(t handshake.Type, body []byte) []byte {
	var b cryptobyte.Builder
	b.AddUint8(uint8(t))
	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(body) })
	return b.BytesOrPanic()
}

// Record wraps payload in a TLS record.
func Record(contentType uint8, version uint16, payload []byte) []byte {
	var b cryptobyte.Builder
	b.AddUint8(contentType)
	b.AddUint16(version)
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(payload) })
	return b.BytesOrPanic()
}

// DatagramMessage prepends an unfragmented 12-byte DTLS handshake header to body.
func DatagramMessage(t handshake.Type, seq uint16, body []byte) []byte {
	var b cryptobyte.Builder
	b.AddUint8(uint8(t))
	b.AddUint24(uint32(len(body)))
	b.AddUint16(seq)
	b.AddUint24(0)
	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(body) })
	return b.BytesOrPanic()
}

// DatagramRecord wraps payload in a DTLS record with the given epoch and 48-bit sequence number.
func DatagramRecord(contentType uint8, version uint16, epoch uint16, seq uint64, payload []byte) []byte {
	var b cryptobyte.Builder
	b.AddUint8(contentType)
	b.AddUint16(version)
	b.AddUint16(epoch)
	b.AddUint16(uint16(seq >> 32))
	b.AddUint32(uint32(seq))
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(payload) })
	return b.BytesOrPanic()
}

// ExampleClientHelloRecord is the TLS 1.3 ClientHello record from https://tls13.xargs.org/#client-hello.
// The first 5 bytes are the record header, the next 4 the handshake header. It offers server name
// "example.ulfheim.net" and no ALPN.
var ExampleClientHelloRecord = []byte{
	0x16, 0x03, 0x01, 0x00, 0xf8, 0x01, 0x00, 0x00, 0xf4, 0x03, 0x03, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18, 0x19, 0x1a, 0x1b, 0x1c,
	0x1d, 0x1e, 0x1f, 0x20, 0xe0, 0xe1, 0xe2, 0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9, 0xea, 0xeb, 0xec, 0xed, 0xee, 0xef,
	0xf0, 0xf1, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8, 0xf9, 0xfa, 0xfb, 0xfc, 0xfd, 0xfe, 0xff, 0x00, 0x08, 0x13, 0x02,
	0x13, 0x03, 0x13, 0x01, 0x00, 0xff, 0x01, 0x00, 0x00, 0xa3, 0x00, 0x00, 0x00, 0x18, 0x00, 0x16, 0x00, 0x00, 0x13, 0x65,
	0x78, 0x61, 0x6d, 0x70, 0x6c, 0x65, 0x2e, 0x75, 0x6c, 0x66, 0x68, 0x65, 0x69, 0x6d, 0x2e, 0x6e, 0x65, 0x74, 0x00, 0x0b,
	0x00, 0x04, 0x03, 0x00, 0x01, 0x02, 0x00, 0x0a, 0x00, 0x16, 0x00, 0x14, 0x00, 0x1d, 0x00, 0x17, 0x00, 0x1e, 0x00, 0x19,
	0x00, 0x18, 0x01, 0x00, 0x01, 0x01, 0x01, 0x02, 0x01, 0x03, 0x01, 0x04, 0x00, 0x23, 0x00, 0x00, 0x00, 0x16, 0x00, 0x00,
	0x00, 0x17, 0x00, 0x00, 0x00, 0x0d, 0x00, 0x1e, 0x00, 0x1c, 0x04, 0x03, 0x05, 0x03, 0x06, 0x03, 0x08, 0x07, 0x08, 0x08,
	0x08, 0x09, 0x08, 0x0a, 0x08, 0x0b, 0x08, 0x04, 0x08, 0x05, 0x08, 0x06, 0x04, 0x01, 0x05, 0x01, 0x06, 0x01, 0x00, 0x2b,
	0x00, 0x03, 0x02, 0x03, 0x04, 0x00, 0x2d, 0x00, 0x02, 0x01, 0x01, 0x00, 0x33, 0x00, 0x26, 0x00, 0x24, 0x00, 0x1d, 0x00,
	0x20, 0x35, 0x80, 0x72, 0xd6, 0x36, 0x58, 0x80, 0xd1, 0xae, 0xea, 0x32, 0x9a, 0xdf, 0x91, 0x21, 0x38, 0x38, 0x51, 0xed,
	0x21, 0xa2, 0x8e, 0x3b, 0x75, 0xe9, 0x65, 0xd0, 0xd2, 0xcd, 0x16, 0x62, 0x54,
}

// SimpleSNI returns a server_name payload for "host.name", laid out by hand so tests do not depend on the code
// under test: list length, name type 0, name length, name.
func SimpleSNI() []byte {
	const name = "host.name"
	out := []byte{0, byte(len(name) + 3), 0, 0, byte(len(name))}
	return append(out, name...)
}

func random(r []byte) []byte {
	if r != nil {
		return r
	}
	out := make([]byte, 32)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}
