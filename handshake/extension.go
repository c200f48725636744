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

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ExtensionType is a code point from the [TLS ExtensionType Values] registry. The named constants are the
// extensions this module knows about; any other value is still a valid ExtensionType and prints as ext(0x....).
//
// [TLS ExtensionType Values]: https://www.iana.org/assignments/tls-extensiontype-values/tls-extensiontype-values.xhtml
type ExtensionType uint16

const (
	ExtensionServerName                 ExtensionType = 0
	ExtensionMaxFragmentLength          ExtensionType = 1
	ExtensionStatusRequest              ExtensionType = 5
	ExtensionSupportedGroups            ExtensionType = 10
	ExtensionECPointFormats             ExtensionType = 11
	ExtensionSignatureAlgorithms        ExtensionType = 13
	ExtensionUseSRTP                    ExtensionType = 14
	ExtensionHeartbeat                  ExtensionType = 15
	ExtensionALPN                       ExtensionType = 16
	ExtensionSignedCertificateTimestamp ExtensionType = 18
	ExtensionPadding                    ExtensionType = 21
	ExtensionEncryptThenMAC             ExtensionType = 22
	ExtensionExtendedMasterSecret       ExtensionType = 23
	ExtensionCompressCertificate        ExtensionType = 27
	ExtensionSessionTicket              ExtensionType = 35
	ExtensionPreSharedKey               ExtensionType = 41
	ExtensionEarlyData                  ExtensionType = 42
	ExtensionSupportedVersions          ExtensionType = 43
	ExtensionCookie                     ExtensionType = 44
	ExtensionPSKKeyExchangeModes        ExtensionType = 45
	ExtensionCertificateAuthorities     ExtensionType = 47
	ExtensionPostHandshakeAuth          ExtensionType = 49
	ExtensionSignatureAlgorithmsCert    ExtensionType = 50
	ExtensionKeyShare                   ExtensionType = 51
	ExtensionEncryptedClientHello       ExtensionType = 0xfe0d
	ExtensionRenegotiationInfo          ExtensionType = 0xff01

	// ExtensionEllipticCurves is the pre-TLS 1.3 name of supported_groups.
	ExtensionEllipticCurves = ExtensionSupportedGroups
)

var extensionNames = map[ExtensionType]string{
	ExtensionServerName:                 "server_name",
	ExtensionMaxFragmentLength:          "max_fragment_length",
	ExtensionStatusRequest:              "status_request",
	ExtensionSupportedGroups:            "supported_groups",
	ExtensionECPointFormats:             "ec_point_formats",
	ExtensionSignatureAlgorithms:        "signature_algorithms",
	ExtensionUseSRTP:                    "use_srtp",
	ExtensionHeartbeat:                  "heartbeat",
	ExtensionALPN:                       "application_layer_protocol_negotiation",
	ExtensionSignedCertificateTimestamp: "signed_certificate_timestamp",
	ExtensionPadding:                    "padding",
	ExtensionEncryptThenMAC:             "encrypt_then_mac",
	ExtensionExtendedMasterSecret:       "extended_master_secret",
	ExtensionCompressCertificate:        "compress_certificate",
	ExtensionSessionTicket:              "session_ticket",
	ExtensionPreSharedKey:               "pre_shared_key",
	ExtensionEarlyData:                  "early_data",
	ExtensionSupportedVersions:          "supported_versions",
	ExtensionCookie:                     "cookie",
	ExtensionPSKKeyExchangeModes:        "psk_key_exchange_modes",
	ExtensionCertificateAuthorities:     "certificate_authorities",
	ExtensionPostHandshakeAuth:          "post_handshake_auth",
	ExtensionSignatureAlgorithmsCert:    "signature_algorithms_cert",
	ExtensionKeyShare:                   "key_share",
	ExtensionEncryptedClientHello:       "encrypted_client_hello",
	ExtensionRenegotiationInfo:          "renegotiation_info",
}

// Short names accepted in addition to the registry names.
var extensionAliases = map[string]ExtensionType{
	"sni":             ExtensionServerName,
	"alpn":            ExtensionALPN,
	"elliptic_curves": ExtensionEllipticCurves,
	"sct":             ExtensionSignedCertificateTimestamp,
	"ems":             ExtensionExtendedMasterSecret,
	"ech":             ExtensionEncryptedClientHello,
}

// ErrUnknownExtension is returned by [ParseExtensionType] for names that are neither registered nor numeric.
var ErrUnknownExtension = errors.New("unknown extension")

// Known reports whether t is one of the named extension types.
func (t ExtensionType) Known() bool {
	_, ok := extensionNames[t]
	return ok
}

func (t ExtensionType) String() string {
	if name, ok := extensionNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ext(%#04x)", uint16(t))
}

// ParseExtensionType resolves a registry name (server_name), a short alias (alpn), or a decimal or 0x-prefixed
// hexadecimal code point.
func ParseExtensionType(s string) (ExtensionType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if t, ok := extensionAliases[name]; ok {
		return t, nil
	}
	for t, n := range extensionNames {
		if n == name {
			return t, nil
		}
	}
	code, err := strconv.ParseUint(name, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownExtension, s)
	}
	return ExtensionType(code), nil
}
