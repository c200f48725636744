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

import "fmt"

// Type is the msg_type of a [handshake message].
//
// [handshake message]: https://datatracker.ietf.org/doc/html/rfc8446#section-4
type Type uint8

const (
	TypeHelloRequest        Type = 0
	TypeClientHello         Type = 1
	TypeServerHello         Type = 2
	TypeHelloVerifyRequest  Type = 3
	TypeNewSessionTicket    Type = 4
	TypeEndOfEarlyData      Type = 5
	TypeEncryptedExtensions Type = 8
	TypeCertificate         Type = 11
	TypeServerKeyExchange   Type = 12
	TypeCertificateRequest  Type = 13
	TypeServerHelloDone     Type = 14
	TypeCertificateVerify   Type = 15
	TypeClientKeyExchange   Type = 16
	TypeFinished            Type = 20
	TypeKeyUpdate           Type = 24
)

var typeNames = map[Type]string{
	TypeHelloRequest:        "hello_request",
	TypeClientHello:         "client_hello",
	TypeServerHello:         "server_hello",
	TypeHelloVerifyRequest:  "hello_verify_request",
	TypeNewSessionTicket:    "new_session_ticket",
	TypeEndOfEarlyData:      "end_of_early_data",
	TypeEncryptedExtensions: "encrypted_extensions",
	TypeCertificate:         "certificate",
	TypeServerKeyExchange:   "server_key_exchange",
	TypeCertificateRequest:  "certificate_request",
	TypeServerHelloDone:     "server_hello_done",
	TypeCertificateVerify:   "certificate_verify",
	TypeClientKeyExchange:   "client_key_exchange",
	TypeFinished:            "finished",
	TypeKeyUpdate:           "key_update",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("handshake(%d)", uint8(t))
}

// Protocol versions as they appear on the wire.
const (
	VersionTLS10 uint16 = 0x0301
	VersionTLS11 uint16 = 0x0302
	VersionTLS12 uint16 = 0x0303
	VersionTLS13 uint16 = 0x0304

	VersionDTLS10 uint16 = 0xfeff
	VersionDTLS12 uint16 = 0xfefd
	VersionDTLS13 uint16 = 0xfefc
)

// NormalizeVersion maps a DTLS wire version to the TLS version it is based on, so versions of both transports can
// be compared with each other. TLS versions and unknown values are returned unchanged.
func NormalizeVersion(v uint16) uint16 {
	switch v {
	case VersionDTLS10:
		return VersionTLS11
	case VersionDTLS12:
		return VersionTLS12
	case VersionDTLS13:
		return VersionTLS13
	}
	return v
}

// Header describes an intercepted handshake message. It is produced by the record framer and is read-only to
// filters.
type Header struct {
	// Type is the handshake message type.
	Type Type
	// Version is the protocol version the message is sent under. The record framers fill it from the legacy_version
	// field at the start of the body, so a TLS 1.3 hello reports 0x0303 (0xfefd for DTLS 1.3) and the
	// supported_versions extension has to be read to tell TLS 1.3 apart.
	Version uint16
	// Datagram is true when the message travels over DTLS.
	Datagram bool
}

func (h Header) String() string {
	transport := "stream"
	if h.Datagram {
		transport = "datagram"
	}
	return fmt.Sprintf("%v/%#04x/%s", h.Type, h.Version, transport)
}
