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

// Package alert records the TLS and DTLS alerts a peer sends, so tests can check how a mutated handshake was
// rejected.
package alert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Level is the AlertLevel of an alert.
type Level uint8

const (
	Warning Level = 1
	Fatal   Level = 2
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Fatal:
		return "fatal"
	default:
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
}

// Description is the AlertDescription of an alert, from [RFC 8446] and [RFC 5246].
//
// [RFC 8446]: https://datatracker.ietf.org/doc/html/rfc8446#section-6
// [RFC 5246]: https://datatracker.ietf.org/doc/html/rfc5246#section-7.2
type Description uint8

const (
	CloseNotify                  Description = 0
	EndOfEarlyData               Description = 1
	UnexpectedMessage            Description = 10
	BadRecordMAC                 Description = 20
	DecryptionFailed             Description = 21
	RecordOverflow               Description = 22
	DecompressionFailure         Description = 30
	HandshakeFailure             Description = 40
	NoCertificate                Description = 41
	BadCertificate               Description = 42
	UnsupportedCertificate       Description = 43
	CertificateRevoked           Description = 44
	CertificateExpired           Description = 45
	CertificateUnknown           Description = 46
	IllegalParameter             Description = 47
	UnknownCA                    Description = 48
	AccessDenied                 Description = 49
	DecodeError                  Description = 50
	DecryptError                 Description = 51
	ProtocolVersion              Description = 70
	InsufficientSecurity         Description = 71
	InternalError                Description = 80
	InappropriateFallback        Description = 86
	UserCanceled                 Description = 90
	NoRenegotiation              Description = 100
	MissingExtension             Description = 109
	UnsupportedExtension         Description = 110
	UnrecognizedName             Description = 112
	BadCertificateStatusResponse Description = 113
	UnknownPSKIdentity           Description = 115
	CertificateRequired          Description = 116
	NoApplicationProtocol        Description = 120
)

var descriptionNames = map[Description][2]string{
	CloseNotify:                  {"close_notify", "close notify"},
	EndOfEarlyData:               {"end_of_early_data", "end of early data"},
	UnexpectedMessage:            {"unexpected_message", "unexpected message"},
	BadRecordMAC:                 {"bad_record_mac", "bad record MAC"},
	DecryptionFailed:             {"decryption_failed", "decryption failed"},
	RecordOverflow:               {"record_overflow", "record overflow"},
	DecompressionFailure:         {"decompression_failure", "decompression failure"},
	HandshakeFailure:             {"handshake_failure", "handshake failure"},
	NoCertificate:                {"no_certificate", "no certificate"},
	BadCertificate:               {"bad_certificate", "bad certificate"},
	UnsupportedCertificate:       {"unsupported_certificate", "unsupported certificate"},
	CertificateRevoked:           {"certificate_revoked", "revoked certificate"},
	CertificateExpired:           {"certificate_expired", "expired certificate"},
	CertificateUnknown:           {"certificate_unknown", "unknown certificate"},
	IllegalParameter:             {"illegal_parameter", "illegal parameter"},
	UnknownCA:                    {"unknown_ca", "unknown certificate authority"},
	AccessDenied:                 {"access_denied", "access denied"},
	DecodeError:                  {"decode_error", "error decoding message"},
	DecryptError:                 {"decrypt_error", "error decrypting message"},
	ProtocolVersion:              {"protocol_version", "protocol version not supported"},
	InsufficientSecurity:         {"insufficient_security", "insufficient security level"},
	InternalError:                {"internal_error", "internal error"},
	InappropriateFallback:        {"inappropriate_fallback", "inappropriate fallback"},
	UserCanceled:                 {"user_canceled", "user canceled"},
	NoRenegotiation:              {"no_renegotiation", "no renegotiation"},
	MissingExtension:             {"missing_extension", "missing extension"},
	UnsupportedExtension:         {"unsupported_extension", "unsupported extension"},
	UnrecognizedName:             {"unrecognized_name", "unrecognized name"},
	BadCertificateStatusResponse: {"bad_certificate_status_response", "bad certificate status response"},
	UnknownPSKIdentity:           {"unknown_psk_identity", "unknown PSK identity"},
	CertificateRequired:          {"certificate_required", "certificate required"},
	NoApplicationProtocol:        {"no_application_protocol", "no application protocol"},
}

// ErrUnknownDescription is returned by [ParseDescription] for names it does not know.
var ErrUnknownDescription = errors.New("unknown alert description")

// String returns the registry name, like decode_error.
func (d Description) String() string {
	if names, ok := descriptionNames[d]; ok {
		return names[0]
	}
	return "alert(" + strconv.Itoa(int(d)) + ")"
}

// Error returns a human readable text, so a Description can be returned as an error.
func (d Description) Error() string {
	if names, ok := descriptionNames[d]; ok {
		return names[1]
	}
	return d.String()
}

// ParseDescription accepts a registry name (decode_error) or a decimal code.
func ParseDescription(s string) (Description, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d, names := range descriptionNames {
		if names[0] == name {
			return d, nil
		}
	}
	code, err := strconv.ParseUint(name, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDescription, s)
	}
	return Description(code), nil
}
