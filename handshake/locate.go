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

package handshake

import "github.com/Jigsaw-Code/tlsmutate/wire"

// ClientHello body layout up to the extensions, from [RFC 8446] and [RFC 6347]:
//
//	+------------------------+
//	| ProtocolVersion (2)    |
//	+------------------------+
//	| Random (32)            |
//	+------------------------+
//	| SessionID <0..32>      |  1-byte length
//	+------------------------+
//	| Cookie <0..2^8-1>      |  1-byte length, DTLS only
//	+------------------------+
//	| CipherSuites <2..2^16> |  2-byte length
//	+------------------------+
//	| Compression <1..2^8>   |  1-byte length
//	+------------------------+
//	| Extensions <0..2^16>   |  2-byte length
//	+------------------------+
//
// [RFC 8446]: https://datatracker.ietf.org/doc/html/rfc8446#section-4.1.2
// [RFC 6347]: https://datatracker.ietf.org/doc/html/rfc6347#section-4.2.1
const (
	versionLen = 2
	randomLen  = 32
)

// LocateClientHelloExtensions skips the ClientHello fields that precede the extensions. c must be positioned at the
// start of the handshake body, after the message header. On success c is positioned at the 2-byte total length of
// the extensions block.
//
// It returns false if the message ends early. That is not an error: a ClientHello may legitimately have no
// extensions.
func LocateClientHelloExtensions(c *wire.Cursor, datagram bool) bool {
	if !c.Skip(versionLen + randomLen) {
		return false
	}
	if !c.SkipVariable(1) { // session ID
		return false
	}
	if datagram && !c.SkipVariable(1) { // DTLS cookie
		return false
	}
	if !c.SkipVariable(2) { // cipher suites
		return false
	}
	if !c.SkipVariable(1) { // compression methods
		return false
	}
	return true
}

// LocateServerHelloExtensions skips the ServerHello fields that precede the extensions, given the negotiated
// version. The single compression method byte is only skipped for TLS 1.2 and earlier (or their DTLS equivalents).
// On success c is positioned at the 2-byte total length of the extensions block.
func LocateServerHelloExtensions(c *wire.Cursor, version uint16) bool {
	if !c.Skip(versionLen + randomLen) {
		return false
	}
	if !c.SkipVariable(1) { // session ID
		return false
	}
	if !c.Skip(2) { // cipher suite
		return false
	}
	if NormalizeVersion(version) <= VersionTLS12 {
		if !c.Skip(1) { // compression method
			return false
		}
	}
	return true
}

// LocateExtensions dispatches to [LocateClientHelloExtensions] or [LocateServerHelloExtensions] according to the
// message type. It returns false for every other handshake message.
func LocateExtensions(c *wire.Cursor, h Header) bool {
	switch h.Type {
	case TypeClientHello:
		return LocateClientHelloExtensions(c, h.Datagram)
	case TypeServerHello:
		return LocateServerHelloExtensions(c, h.Version)
	default:
		return false
	}
}
