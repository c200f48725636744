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
Package extfilter rewrites the extensions of ClientHello and ServerHello messages on their way to the wire.

A [Filter] receives one handshake message body and returns a [Verdict]: keep the message, or change it to new
bytes. [FilterExtensions] does the work common to all extension mutations. It finds the extensions block, asks a
[DecideFunc] about each extension and reassembles the block with a consistent length. Messages it cannot parse
are always kept, so the peer sees exactly what the sender produced.

The mutators cover the usual negative tests:

	extfilter.Truncator(handshake.ExtensionServerName, 7)   // cut the payload short
	extfilter.Damager(handshake.ExtensionServerName, 1)     // corrupt one byte
	extfilter.Replacer(handshake.ExtensionALPN, []byte{})   // swap the payload
	extfilter.Injector(handshake.ExtensionServerName, sni)  // add a duplicate
	extfilter.Dropper(handshake.ExtensionECPointFormats)    // remove it
	extfilter.Capture(handshake.ExtensionSignatureAlgorithms)

Filters compose with [Chain] and are installed on a connection by the framers in transport/tlsmutate and
transport/dtlsmutate.
*/
package extfilter
