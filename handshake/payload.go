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

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/net/idna"
)

// serverNameTypeHostName is the NameType of a DNS host name in a ServerNameList.
const serverNameTypeHostName = 0

// ServerNamePayload builds the payload of a server_name extension ([RFC 6066]) carrying a single host name.
// Internationalized names are converted to their ASCII (punycode) form first.
//
// [RFC 6066]: https://datatracker.ietf.org/doc/html/rfc6066#section-3
func ServerNamePayload(host string) ([]byte, error) {
	if host == "" {
		return nil, errors.New("host name must not be empty")
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host name %q: %w", host, err)
	}
	var b cryptobyte.Builder
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddUint8(serverNameTypeHostName)
		b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes([]byte(ascii))
		})
	})
	return b.Bytes()
}

// ALPNPayload builds the payload of an application_layer_protocol_negotiation extension ([RFC 7301]) listing the
// given protocols in order. Protocol names are not validated, so empty names can be encoded on purpose.
//
// [RFC 7301]: https://datatracker.ietf.org/doc/html/rfc7301#section-3.1
func ALPNPayload(protocols ...string) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, p := range protocols {
			b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
				b.AddBytes([]byte(p))
			})
		}
	})
	return b.Bytes()
}
