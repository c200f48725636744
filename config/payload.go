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

package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Jigsaw-Code/tlsmutate/handshake"
)

// ParsePayload decodes an extension payload. It accepts:
//   - hex digits, like "0000"
//   - "sni:<host>", a server_name list with a single host name
//   - "alpn:<p1>,<p2>", a protocol name list, where "alpn:" is a list with one empty name
//
// The empty string is the empty payload.
func ParsePayload(text string) ([]byte, error) {
	if host, ok := strings.CutPrefix(text, "sni:"); ok {
		return handshake.ServerNamePayload(host)
	}
	if list, ok := strings.CutPrefix(text, "alpn:"); ok {
		return handshake.ALPNPayload(strings.Split(list, ",")...)
	}
	data, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid payload %q: %w", text, err)
	}
	return data, nil
}
