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

/*
Package handshake describes the parts of TLS and DTLS handshake messages that the extension filters need to
understand: message types, protocol versions, extension code points, and the fixed ClientHello and ServerHello
fields that precede the extensions block.

The locate functions take a [wire.Cursor] positioned at the start of a handshake body and move it to the 2-byte
length of the extensions block:

	c := wire.NewCursor(body)
	if handshake.LocateExtensions(c, handshake.Header{Type: handshake.TypeClientHello}) {
		// c.Consumed() is the offset of the extensions length.
	}
*/
package handshake
